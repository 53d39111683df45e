package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/example/bistrobook/internal/slots"
	"github.com/example/bistrobook/internal/wizard"
)

const slotColumns = 5

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#4D96FF")).MarginBottom(1)
	doneStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#6BCB77"))
	currentStyle  = lipgloss.NewStyle().Bold(true)
	mutedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFFFFF")).Background(lipgloss.Color("#2E7D32"))
	bookedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#555555")).Strikethrough(true)
	bannerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B")).Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#FF6B6B")).Padding(0, 1)
	alertStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFD93D"))
	spinnerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#4D96FF"))
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	st := m.wz.State()
	var b strings.Builder
	b.WriteString(titleStyle.Render("BistroBook - book a table"))
	b.WriteString("\n")
	b.WriteString(progressLine(st.Step))
	b.WriteString("\n\n")

	if st.Error != "" {
		b.WriteString(bannerStyle.Render(st.Error))
		b.WriteString("\n\n")
	}

	if m.pending > 0 {
		b.WriteString(m.spinner.View() + " Talking to the restaurant...\n")
		return b.String()
	}

	switch st.Step {
	case wizard.StepDate:
		b.WriteString("Reservation date\n\n")
		b.WriteString(m.date.View())
		b.WriteString("\n")
	case wizard.StepGuests:
		b.WriteString("How many guests?\n\n")
		for n := 1; n <= wizard.MaxGuests; n++ {
			b.WriteString(choice(fmt.Sprintf(" %d ", n), m.cursor == n-1))
			b.WriteString(" ")
		}
		b.WriteString("\n")
	case wizard.StepTable:
		b.WriteString("Choose a table\n\n")
		if len(st.AvailableTables) == 0 {
			b.WriteString(mutedStyle.Render(fmt.Sprintf("No tables are available for %d guests.", st.GuestCount)))
			b.WriteString("\n")
		}
		for i, t := range st.AvailableTables {
			b.WriteString(choice(fmt.Sprintf("Table %d - Seats: %d", t.TableNumber, t.SeatCount), m.cursor == i))
			b.WriteString("\n")
		}
	case wizard.StepTime:
		b.WriteString("Pick a start time\n\n")
		grid := st.Slots()
		if slots.AllBooked(grid) {
			b.WriteString(alertStyle.Render(wizard.MsgNoTimes))
			b.WriteString("\n")
			break
		}
		for i, s := range grid {
			label := " " + s.Time + " "
			switch {
			case i == m.cursor:
				b.WriteString(selectedStyle.Render(label))
			case s.IsBooked:
				b.WriteString(bookedStyle.Render(label))
			default:
				b.WriteString(label)
			}
			if (i+1)%slotColumns == 0 {
				b.WriteString("\n")
			} else {
				b.WriteString(" ")
			}
		}
		b.WriteString("\n")
	case wizard.StepContact:
		b.WriteString("Your details\n\n")
		for _, in := range m.contact {
			b.WriteString(in.View())
			b.WriteString("\n")
		}
	case wizard.StepPreview:
		b.WriteString("Check your booking\n\n")
		_ = wizard.WritePreview(&b, st.Summary())
	case wizard.StepConfirmed:
		b.WriteString(doneStyle.Render("Reservation confirmed"))
		b.WriteString("\n\n")
		_ = wizard.WritePreview(&b, st.Summary())
		b.WriteString("\n")
		b.WriteString(mutedStyle.Render("Home: " + m.landingURL))
		b.WriteString("\n")
	}

	if m.alert != "" {
		b.WriteString("\n")
		b.WriteString(alertStyle.Render(m.alert))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(mutedStyle.Render(help(st.Step)))
	b.WriteString("\n")
	return b.String()
}

func choice(label string, selected bool) string {
	if selected {
		return selectedStyle.Render(label)
	}
	return label
}

func progressLine(cur wizard.Step) string {
	parts := make([]string, 0, int(wizard.StepConfirmed))
	for s := wizard.StepDate; s <= wizard.StepConfirmed; s++ {
		label := fmt.Sprintf("%d %s", int(s), s)
		switch {
		case s < cur:
			parts = append(parts, doneStyle.Render(label))
		case s == cur:
			parts = append(parts, currentStyle.Render(label))
		default:
			parts = append(parts, mutedStyle.Render(label))
		}
	}
	return strings.Join(parts, mutedStyle.Render(" > "))
}

func help(s wizard.Step) string {
	switch s {
	case wizard.StepDate:
		return "enter: next  ctrl+c: quit"
	case wizard.StepContact:
		return "tab: next field  enter: continue  esc: back  ctrl+c: quit"
	case wizard.StepPreview:
		return "enter: confirm  esc: back  ctrl+c: quit"
	case wizard.StepConfirmed:
		return "h: home  n: new reservation  q: quit"
	default:
		return "arrows: move  enter: select  esc: back  ctrl+c: quit"
	}
}
