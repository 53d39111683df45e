package wizard

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidTransition is returned for moves the step table does not allow,
// such as backing out of the first step or editing a field owned by another
// step.
var ErrInvalidTransition = errors.New("invalid wizard transition")

// ValidationError is a blocking alert for the user. It never changes the step.
type ValidationError struct {
	Step    Step
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func invalid(step Step, msg string) error {
	return &ValidationError{Step: step, Message: msg}
}

// Wizard owns one State. All mutation goes through its methods.
type Wizard struct {
	s State
}

// New starts a wizard at the date step.
func New() *Wizard {
	return &Wizard{s: newState()}
}

// Restore rebuilds a wizard from a stored State. Out of range steps restart
// the wizard.
func Restore(s State) *Wizard {
	if !s.Step.Valid() {
		return New()
	}
	return &Wizard{s: s}
}

// State returns a copy of the current state.
func (w *Wizard) State() State {
	s := w.s
	s.AvailableTables = append(s.AvailableTables[:0:0], w.s.AvailableTables...)
	s.AvailableTimes = append(s.AvailableTimes[:0:0], w.s.AvailableTimes...)
	return s
}

// Step is the current step.
func (w *Wizard) Step() Step { return w.s.Step }

func (w *Wizard) at(step Step, field string) error {
	if w.s.Step != step {
		return fmt.Errorf("%w: %s belongs to step %d, wizard is at step %d", ErrInvalidTransition, field, step, w.s.Step)
	}
	return nil
}

// SetDate records the reservation date (YYYY-MM-DD).
func (w *Wizard) SetDate(date string) error {
	if err := w.at(StepDate, "date"); err != nil {
		return err
	}
	w.s.Date = strings.TrimSpace(date)
	return nil
}

// SetGuestCount records the party size. Range is checked on Next.
func (w *Wizard) SetGuestCount(n int) error {
	if err := w.at(StepGuests, "guest count"); err != nil {
		return err
	}
	w.s.GuestCount = n
	return nil
}

// SelectTable picks one of the offered tables and asks for its existing
// reservations on the chosen date.
func (w *Wizard) SelectTable(id int) (Effect, error) {
	if err := w.at(StepTable, "table"); err != nil {
		return nil, err
	}
	if _, ok := w.s.Table(id); !ok {
		return nil, invalid(StepTable, MsgNoTable)
	}
	if id != w.s.TableID {
		w.s.AvailableTimes = nil
	}
	w.s.TableID = id
	return FetchReservations{TableID: id, Date: w.s.Date}, nil
}

// SetStartTime records the chosen slot. Availability is checked on Next.
func (w *Wizard) SetStartTime(t string) error {
	if err := w.at(StepTime, "start time"); err != nil {
		return err
	}
	w.s.StartTime = strings.TrimSpace(t)
	return nil
}

// SetContact records the step 5 form. Names and email are trimmed.
func (w *Wizard) SetContact(c Contact) error {
	if err := w.at(StepContact, "contact details"); err != nil {
		return err
	}
	w.s.FirstName = strings.TrimSpace(c.FirstName)
	w.s.LastName = strings.TrimSpace(c.LastName)
	// the phone number is checked exactly as typed
	w.s.PhoneNumber = c.PhoneNumber
	w.s.Email = strings.TrimSpace(c.Email)
	return nil
}

// Next validates the current step and moves forward. The returned Effect, if
// any, must be performed and its Outcome applied. On the preview step Next
// submits the reservation and the step only changes once Apply sees a
// successful create.
func (w *Wizard) Next() (Effect, error) {
	if w.s.Step == StepConfirmed {
		return nil, fmt.Errorf("%w: booking is already confirmed", ErrInvalidTransition)
	}
	def := steps[w.s.Step]
	if def.check != nil {
		if err := def.check(w.s); err != nil {
			return nil, err
		}
	}
	var eff Effect
	if def.enter != nil {
		eff = def.enter(&w.s)
	}
	if w.s.Step != StepPreview {
		w.s.Step++
	}
	return eff, nil
}

// Confirm submits the booking from the preview step.
func (w *Wizard) Confirm() (Effect, error) {
	if w.s.Step != StepPreview {
		return nil, fmt.Errorf("%w: confirm is only possible from the preview", ErrInvalidTransition)
	}
	return w.Next()
}

// Back returns to the previous step and clears the fields of the step being
// left. Date and the table list survive.
func (w *Wizard) Back() error {
	switch w.s.Step {
	case StepDate:
		return fmt.Errorf("%w: already at the first step", ErrInvalidTransition)
	case StepConfirmed:
		return fmt.Errorf("%w: booking is confirmed, start a new reservation", ErrInvalidTransition)
	}
	if clear := steps[w.s.Step].clear; clear != nil {
		clear(&w.s)
	}
	w.s.Step--
	return nil
}

// Reset throws the state away and starts over at step 1.
func (w *Wizard) Reset() {
	w.s = newState()
}

// Apply folds the result of a performed Effect into the state. Outcomes for a
// guest count, table or date the user has since moved away from are dropped.
func (w *Wizard) Apply(o Outcome) {
	switch e := o.Effect.(type) {
	case SearchTables:
		if e.GuestCount != w.s.GuestCount {
			return
		}
		if o.Err != nil {
			w.s.Error = MsgTablesFailed
			return
		}
		w.s.AvailableTables = o.Tables
		w.s.Error = ""
	case FetchReservations:
		if e.TableID != w.s.TableID || e.Date != w.s.Date {
			return
		}
		if o.Err != nil {
			w.s.Error = MsgTimesFailed
			return
		}
		w.s.AvailableTimes = o.Reservations
		w.s.Error = ""
	case CreateReservation:
		if w.s.Step != StepPreview {
			return
		}
		if o.Err != nil {
			w.s.Error = MsgCreateFailed
			return
		}
		w.s.Confirmed = true
		w.s.Step = StepConfirmed
		w.s.Error = ""
	}
}
