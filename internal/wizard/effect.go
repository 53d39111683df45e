package wizard

import (
	"context"
	"fmt"

	"github.com/example/bistrobook/internal/bistro"
)

// Service is the part of the reservation API the wizard needs.
// *bistro.Client satisfies it.
type Service interface {
	AvailableTables(ctx context.Context, guestCount int) ([]bistro.Table, error)
	Reservations(ctx context.Context, tableID int, date string) ([]bistro.Reservation, error)
	CreateReservation(ctx context.Context, r bistro.NewReservation) error
}

// Effect is a remote call requested by a transition.
type Effect interface {
	effect()
	fmt.Stringer
}

// SearchTables asks for tables seating at least GuestCount.
type SearchTables struct{ GuestCount int }

// FetchReservations asks for the bookings already on TableID for Date.
type FetchReservations struct {
	TableID int
	Date    string
}

// CreateReservation submits the assembled booking.
type CreateReservation struct{ Reservation bistro.NewReservation }

func (SearchTables) effect()      {}
func (FetchReservations) effect() {}
func (CreateReservation) effect() {}

func (e SearchTables) String() string { return fmt.Sprintf("search tables for %d", e.GuestCount) }
func (e FetchReservations) String() string {
	return fmt.Sprintf("fetch reservations for table %d on %s", e.TableID, e.Date)
}
func (e CreateReservation) String() string {
	return fmt.Sprintf("create reservation on table %d at %s %s", e.Reservation.TableID, e.Reservation.Date, e.Reservation.StartTime)
}

// Outcome is the result of performing an Effect.
type Outcome struct {
	Effect       Effect
	Tables       []bistro.Table
	Reservations []bistro.Reservation
	Err          error
}

// Perform runs eff against svc. A nil effect yields a zero Outcome.
func Perform(ctx context.Context, svc Service, eff Effect) Outcome {
	o := Outcome{Effect: eff}
	switch e := eff.(type) {
	case SearchTables:
		o.Tables, o.Err = svc.AvailableTables(ctx, e.GuestCount)
	case FetchReservations:
		o.Reservations, o.Err = svc.Reservations(ctx, e.TableID, e.Date)
	case CreateReservation:
		o.Err = svc.CreateReservation(ctx, e.Reservation)
	}
	return o
}
