// Package tui drives the reservation wizard from the terminal.
package tui

import (
	"context"
	"errors"
	"log/slog"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/example/bistrobook/internal/slots"
	"github.com/example/bistrobook/internal/wizard"
)

// Contact form fields, in focus order.
const (
	fieldFirstName = iota
	fieldLastName
	fieldPhone
	fieldEmail
	fieldCount
)

// outcomeMsg carries the result of a performed effect back into Update.
type outcomeMsg struct{ o wizard.Outcome }

// Model is the bubbletea model for one wizard run.
type Model struct {
	ctx        context.Context
	svc        wizard.Service
	landingURL string
	log        *slog.Logger

	wz    *wizard.Wizard
	shown wizard.Step

	cursor  int
	date    textinput.Model
	contact []textinput.Model
	focus   int
	spinner spinner.Model
	pending int
	alert   string

	home     bool
	quitting bool
	width    int
}

func New(ctx context.Context, svc wizard.Service, landingURL string, log *slog.Logger) Model {
	date := textinput.New()
	date.Placeholder = "YYYY-MM-DD"
	date.CharLimit = 10
	date.Width = 12

	labels := []string{"First name", "Last name", "Phone number", "Email"}
	contact := make([]textinput.Model, fieldCount)
	for i := range contact {
		ti := textinput.New()
		ti.Placeholder = labels[i]
		ti.CharLimit = 100
		ti.Width = 40
		contact[i] = ti
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = spinnerStyle

	if log == nil {
		log = slog.Default()
	}
	m := Model{
		ctx:        ctx,
		svc:        svc,
		landingURL: landingURL,
		log:        log,
		wz:         wizard.New(),
		date:       date,
		contact:    contact,
		spinner:    sp,
	}
	m.enter()
	return m
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// State exposes the wizard state for callers inspecting a finished run.
func (m Model) State() wizard.State { return m.wz.State() }

// Home reports whether the run ended with the guest choosing "Home".
func (m Model) Home() bool { return m.home }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case spinner.TickMsg:
		if m.pending == 0 {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case outcomeMsg:
		m.pending--
		if msg.o.Err != nil {
			m.log.Warn("reservation api call failed", "call", msg.o.Effect.String(), "err", msg.o.Err)
		}
		m.wz.Apply(msg.o)
		var cmd tea.Cmd
		if e, ok := msg.o.Effect.(wizard.FetchReservations); ok {
			st := m.wz.State()
			if st.Step == wizard.StepTable && st.Error == "" && st.TableID == e.TableID {
				cmd = m.advance(m.wz.Next())
			}
		}
		m.enter()
		return m, cmd

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.quitting = true
			return m, tea.Quit
		}
		if m.pending > 0 {
			return m, nil
		}
		m.alert = ""
		if msg.String() == "esc" {
			if err := m.wz.Back(); err != nil && !errors.Is(err, wizard.ErrInvalidTransition) {
				m.alert = err.Error()
			}
			m.enter()
			return m, nil
		}
		cmd := m.handleKey(msg)
		m.enter()
		return m, cmd
	}

	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch m.wz.Step() {
	case wizard.StepDate:
		if msg.Type == tea.KeyEnter {
			if err := m.wz.SetDate(m.date.Value()); err != nil {
				return m.fail(err)
			}
			return m.advance(m.wz.Next())
		}
		var cmd tea.Cmd
		m.date, cmd = m.date.Update(msg)
		return cmd

	case wizard.StepGuests:
		switch msg.String() {
		case "up", "left", "k", "h":
			m.move(-1, wizard.MaxGuests)
		case "down", "right", "j", "l":
			m.move(1, wizard.MaxGuests)
		case "1", "2", "3", "4", "5", "6", "7", "8":
			m.cursor = int(msg.Runes[0] - '1')
		case "enter":
			if err := m.wz.SetGuestCount(m.cursor + 1); err != nil {
				return m.fail(err)
			}
			return m.advance(m.wz.Next())
		}

	case wizard.StepTable:
		tables := m.wz.State().AvailableTables
		switch msg.String() {
		case "up", "k":
			m.move(-1, len(tables))
		case "down", "j":
			m.move(1, len(tables))
		case "enter":
			id := 0
			if m.cursor < len(tables) {
				id = tables[m.cursor].ID
			}
			return m.advance(m.wz.SelectTable(id))
		}

	case wizard.StepTime:
		grid := m.wz.State().Slots()
		switch msg.String() {
		case "left", "h":
			m.moveSlot(grid, -1)
		case "right", "l":
			m.moveSlot(grid, 1)
		case "up", "k":
			m.moveSlot(grid, -slotColumns)
		case "down", "j":
			m.moveSlot(grid, slotColumns)
		case "enter":
			if slots.AllBooked(grid) {
				// the view already shows the no times message
				return nil
			}
			if err := m.wz.SetStartTime(grid[m.cursor].Time); err != nil {
				return m.fail(err)
			}
			return m.advance(m.wz.Next())
		}

	case wizard.StepContact:
		switch msg.String() {
		case "tab", "down":
			return m.focusField((m.focus + 1) % fieldCount)
		case "shift+tab", "up":
			return m.focusField((m.focus + fieldCount - 1) % fieldCount)
		case "enter":
			if m.focus < fieldCount-1 {
				return m.focusField(m.focus + 1)
			}
			err := m.wz.SetContact(wizard.Contact{
				FirstName:   m.contact[fieldFirstName].Value(),
				LastName:    m.contact[fieldLastName].Value(),
				PhoneNumber: m.contact[fieldPhone].Value(),
				Email:       m.contact[fieldEmail].Value(),
			})
			if err != nil {
				return m.fail(err)
			}
			return m.advance(m.wz.Next())
		}
		var cmd tea.Cmd
		m.contact[m.focus], cmd = m.contact[m.focus].Update(msg)
		return cmd

	case wizard.StepPreview:
		switch msg.String() {
		case "enter", "c":
			return m.advance(m.wz.Confirm())
		}

	case wizard.StepConfirmed:
		switch msg.String() {
		case "h", "enter":
			m.home = true
			m.quitting = true
			return tea.Quit
		case "n":
			m.wz.Reset()
		case "q":
			m.quitting = true
			return tea.Quit
		}
	}
	return nil
}

// advance turns a transition result into the follow up command.
func (m *Model) advance(eff wizard.Effect, err error) tea.Cmd {
	if err != nil {
		return m.fail(err)
	}
	if eff == nil {
		return nil
	}
	m.pending++
	ctx, svc := m.ctx, m.svc
	perform := func() tea.Msg {
		return outcomeMsg{o: wizard.Perform(ctx, svc, eff)}
	}
	return tea.Batch(perform, m.spinner.Tick)
}

func (m *Model) fail(err error) tea.Cmd {
	var verr *wizard.ValidationError
	if errors.As(err, &verr) {
		m.alert = verr.Message
		return nil
	}
	m.log.Debug("ignored wizard action", "err", err)
	return nil
}

func (m *Model) move(delta, n int) {
	if n == 0 {
		m.cursor = 0
		return
	}
	c := m.cursor + delta
	if c < 0 || c >= n {
		return
	}
	m.cursor = c
}

// moveSlot jumps delta slots and then on in the same direction until it finds
// an open one. The cursor stays put when there is none.
func (m *Model) moveSlot(grid []slots.TimeSlot, delta int) {
	step := 1
	if delta < 0 {
		step = -1
	}
	for i := m.cursor + delta; i >= 0 && i < len(grid); i += step {
		if !grid[i].IsBooked {
			m.cursor = i
			return
		}
	}
}

func (m *Model) focusField(i int) tea.Cmd {
	m.contact[m.focus].Blur()
	m.focus = i
	return m.contact[i].Focus()
}

// enter resets cursor and focus whenever the wizard lands on a new step.
func (m *Model) enter() {
	st := m.wz.State()
	if st.Step == m.shown {
		return
	}
	m.shown = st.Step
	m.cursor = 0
	m.date.Blur()
	for i := range m.contact {
		m.contact[i].Blur()
	}

	switch st.Step {
	case wizard.StepDate:
		m.date.SetValue(st.Date)
		m.date.Focus()
	case wizard.StepGuests:
		if st.GuestCount > 0 {
			m.cursor = st.GuestCount - 1
		}
	case wizard.StepTable:
		for i, t := range st.AvailableTables {
			if t.ID == st.TableID {
				m.cursor = i
			}
		}
	case wizard.StepTime:
		grid := st.Slots()
		m.cursor = -1
		for i, s := range grid {
			if s.Time == st.StartTime {
				m.cursor = i
			}
		}
		if m.cursor < 0 {
			m.cursor = 0
			for i, s := range grid {
				if !s.IsBooked {
					m.cursor = i
					break
				}
			}
		}
	case wizard.StepContact:
		c := st.Contact()
		m.contact[fieldFirstName].SetValue(c.FirstName)
		m.contact[fieldLastName].SetValue(c.LastName)
		m.contact[fieldPhone].SetValue(c.PhoneNumber)
		m.contact[fieldEmail].SetValue(c.Email)
		m.focus = fieldFirstName
		m.contact[m.focus].Focus()
	}
}
