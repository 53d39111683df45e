package tui

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/example/bistrobook/internal/wizard"
)

// Run takes over the terminal until the guest quits or leaves for the
// landing page.
func Run(ctx context.Context, svc wizard.Service, landingURL string, log *slog.Logger, in io.Reader, out io.Writer) error {
	p := tea.NewProgram(New(ctx, svc, landingURL, log),
		tea.WithContext(ctx),
		tea.WithInput(in),
		tea.WithOutput(out),
		tea.WithAltScreen(),
	)
	final, err := p.Run()
	if err != nil {
		return fmt.Errorf("tui: %w", err)
	}
	if m, ok := final.(Model); ok && m.Home() {
		fmt.Fprintf(out, "Continue at %s\n", landingURL)
	}
	return nil
}
