package wizard

import (
	"io"
	"text/template"
)

// Summary is the booking as shown on the preview step.
type Summary struct {
	Date        string
	GuestCount  int
	TableNumber int
	SeatCount   int
	StartTime   string
	FirstName   string
	LastName    string
	PhoneNumber string
	Email       string
}

// Summary collects the preview fields. Table details are empty when the chosen
// table is no longer in the offered list.
func (s State) Summary() Summary {
	sum := Summary{
		Date:        s.Date,
		GuestCount:  s.GuestCount,
		StartTime:   s.StartTime,
		FirstName:   s.FirstName,
		LastName:    s.LastName,
		PhoneNumber: s.PhoneNumber,
		Email:       s.Email,
	}
	if t, ok := s.SelectedTable(); ok {
		sum.TableNumber = t.TableNumber
		sum.SeatCount = t.SeatCount
	}
	return sum
}

var previewTmpl = template.Must(template.New("preview").Parse(`Date:         {{.Date}}
Guests:       {{.GuestCount}}
Table:        {{if .TableNumber}}{{.TableNumber}} - Seats: {{.SeatCount}}{{else}}-{{end}}
Reservation:  {{.StartTime}}
First Name:   {{.FirstName}}
Last Name:    {{.LastName}}
Phone Number: {{.PhoneNumber}}
Email:        {{.Email}}
`))

// WritePreview renders the plain text booking preview.
func WritePreview(w io.Writer, s Summary) error {
	return previewTmpl.Execute(w, s)
}
