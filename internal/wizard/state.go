// Package wizard holds the reservation wizard: one owned State, an explicit
// step table and the remote calls (effects) that transitions ask for.
//
// The wizard performs no I/O. A driver takes the Effect returned by a
// transition, runs it with Perform and hands the Outcome back to Apply.
package wizard

import (
	"fmt"

	"github.com/example/bistrobook/internal/bistro"
	"github.com/example/bistrobook/internal/slots"
)

// Step is a wizard screen, 1 through 7.
type Step int

const (
	StepDate Step = iota + 1
	StepGuests
	StepTable
	StepTime
	StepContact
	StepPreview
	StepConfirmed
)

// MaxGuests is the largest party the wizard books.
const MaxGuests = 8

func (s Step) String() string {
	if d, ok := steps[s]; ok {
		return d.name
	}
	return fmt.Sprintf("Step(%d)", int(s))
}

// Valid reports whether s is one of the seven wizard steps.
func (s Step) Valid() bool { return s >= StepDate && s <= StepConfirmed }

// State is everything the wizard knows. It round-trips through JSON so session
// stores can keep it between requests.
type State struct {
	Step        Step   `json:"step"`
	Date        string `json:"date"`
	GuestCount  int    `json:"guestCount"`
	TableID     int    `json:"tableId"`
	StartTime   string `json:"startTime"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	PhoneNumber string `json:"phoneNumber"`
	Email       string `json:"email"`

	AvailableTables []bistro.Table       `json:"availableTables"`
	AvailableTimes  []bistro.Reservation `json:"availableTimes"`

	// Error is the service failure banner. It survives until the next service
	// call or a reset.
	Error     string `json:"error,omitempty"`
	Confirmed bool   `json:"confirmed"`
}

// Contact is the step 5 form.
type Contact struct {
	FirstName   string
	LastName    string
	PhoneNumber string
	Email       string
}

func newState() State { return State{Step: StepDate} }

// Slots derives the start time grid for the selected table and date.
func (s State) Slots() []slots.TimeSlot {
	starts := make([]string, 0, len(s.AvailableTimes))
	for _, r := range s.AvailableTimes {
		starts = append(starts, r.StartTime)
	}
	return slots.Availability(starts)
}

// Table looks id up among the tables offered for the current guest count.
func (s State) Table(id int) (bistro.Table, bool) {
	for _, t := range s.AvailableTables {
		if t.ID == id {
			return t, true
		}
	}
	return bistro.Table{}, false
}

// SelectedTable is the chosen table, if it is still offered.
func (s State) SelectedTable() (bistro.Table, bool) {
	if s.TableID == 0 {
		return bistro.Table{}, false
	}
	return s.Table(s.TableID)
}

// Contact returns the step 5 fields.
func (s State) Contact() Contact {
	return Contact{FirstName: s.FirstName, LastName: s.LastName, PhoneNumber: s.PhoneNumber, Email: s.Email}
}

// Reservation assembles the create request from the collected fields.
func (s State) Reservation() bistro.NewReservation {
	return bistro.NewReservation{
		TableID:     s.TableID,
		FirstName:   s.FirstName,
		LastName:    s.LastName,
		PhoneNumber: s.PhoneNumber,
		Email:       s.Email,
		GuestCount:  s.GuestCount,
		Date:        s.Date,
		StartTime:   bistro.NormalizeStartTime(s.StartTime),
	}
}
