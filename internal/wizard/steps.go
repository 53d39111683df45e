package wizard

import (
	"net/mail"
	"regexp"
	"strings"
	"time"

	"github.com/example/bistrobook/internal/slots"
)

// User facing alert texts.
const (
	MsgNoDate         = "Please select a date."
	MsgBadDate        = "Please enter a valid date (YYYY-MM-DD)."
	MsgBadGuests      = "Please pick a valid number of guests (1-8)."
	MsgNoTable        = "Please select a table."
	MsgNoStartTime    = "Please select a start time."
	MsgTimeTaken      = "That start time is not available. Please pick another."
	MsgNoTimes        = "Sorry, there are no available times. Please go back and try selecting a different table."
	MsgMissingContact = "Please fill in all fields."
	MsgBadPhone       = "Phone number must contain at least 7 digits and can only be numbers."
	MsgBadEmail       = "Please enter a valid email address."
	MsgIncomplete     = "Please ensure all booking information is complete."
	MsgTablesFailed   = "Error fetching available tables! Please try again."
	MsgTimesFailed    = "Error fetching available times! Please try again."
	MsgCreateFailed   = "Error creating reservation"
)

const dateLayout = "2006-01-02"

var phoneRe = regexp.MustCompile(`^\d{7,}$`)

// stepDef declares one state of the wizard.
type stepDef struct {
	name string
	// check guards the forward transition out of the step.
	check func(State) error
	// enter runs as the wizard moves forward out of the step and may ask the
	// driver for a remote call.
	enter func(*State) Effect
	// clear resets the fields the step owns when the user backs out of it.
	clear func(*State)
}

var steps = map[Step]stepDef{
	StepDate: {
		name:  "Date",
		check: checkDate,
	},
	StepGuests: {
		name:  "Guests",
		check: checkGuests,
		enter: func(s *State) Effect {
			s.AvailableTables = nil
			return SearchTables{GuestCount: s.GuestCount}
		},
		clear: func(s *State) { s.GuestCount = 0 },
	},
	StepTable: {
		name:  "Table",
		check: checkTable,
		clear: func(s *State) { s.TableID = 0 },
	},
	StepTime: {
		name:  "Start time",
		check: checkTime,
		clear: func(s *State) { s.StartTime = "" },
	},
	StepContact: {
		name:  "Contact",
		check: checkContact,
		clear: func(s *State) {
			s.FirstName = ""
			s.LastName = ""
			s.PhoneNumber = ""
			s.Email = ""
		},
	},
	StepPreview: {
		name:  "Preview",
		check: checkComplete,
		enter: func(s *State) Effect {
			return CreateReservation{Reservation: s.Reservation()}
		},
		clear: func(*State) {},
	},
	StepConfirmed: {
		name: "Confirmed",
	},
}

func blank(v string) bool { return strings.TrimSpace(v) == "" }

func checkDate(s State) error {
	if blank(s.Date) {
		return invalid(StepDate, MsgNoDate)
	}
	if _, err := time.Parse(dateLayout, strings.TrimSpace(s.Date)); err != nil {
		return invalid(StepDate, MsgBadDate)
	}
	return nil
}

func checkGuests(s State) error {
	if s.GuestCount < 1 || s.GuestCount > MaxGuests {
		return invalid(StepGuests, MsgBadGuests)
	}
	return nil
}

func checkTable(s State) error {
	if _, ok := s.SelectedTable(); !ok {
		return invalid(StepTable, MsgNoTable)
	}
	return nil
}

func checkTime(s State) error {
	grid := s.Slots()
	if slots.AllBooked(grid) {
		return invalid(StepTime, MsgNoTimes)
	}
	if blank(s.StartTime) {
		return invalid(StepTime, MsgNoStartTime)
	}
	if !slots.IsOpen(grid, s.StartTime) {
		return invalid(StepTime, MsgTimeTaken)
	}
	return nil
}

func checkContact(s State) error {
	if blank(s.FirstName) || blank(s.LastName) || blank(s.PhoneNumber) || blank(s.Email) {
		return invalid(StepContact, MsgMissingContact)
	}
	if !phoneRe.MatchString(s.PhoneNumber) {
		return invalid(StepContact, MsgBadPhone)
	}
	email := strings.TrimSpace(s.Email)
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		return invalid(StepContact, MsgBadEmail)
	}
	return nil
}

func checkComplete(s State) error {
	if blank(s.Date) || s.GuestCount == 0 || s.TableID == 0 || blank(s.StartTime) ||
		blank(s.FirstName) || blank(s.LastName) || blank(s.PhoneNumber) || blank(s.Email) {
		return invalid(StepPreview, MsgIncomplete)
	}
	return nil
}
