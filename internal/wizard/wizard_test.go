package wizard

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/bistrobook/internal/bistro"
)

type fakeService struct {
	tables       []bistro.Table
	reservations map[int][]bistro.Reservation
	createErr    error
	tablesErr    error
	resErr       error

	created []bistro.NewReservation
	asked   []int
}

func (f *fakeService) AvailableTables(_ context.Context, n int) ([]bistro.Table, error) {
	f.asked = append(f.asked, n)
	if f.tablesErr != nil {
		return nil, f.tablesErr
	}
	var out []bistro.Table
	for _, t := range f.tables {
		if t.SeatCount >= n {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeService) Reservations(_ context.Context, tableID int, _ string) ([]bistro.Reservation, error) {
	if f.resErr != nil {
		return nil, f.resErr
	}
	return f.reservations[tableID], nil
}

func (f *fakeService) CreateReservation(_ context.Context, r bistro.NewReservation) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, r)
	return nil
}

func newFake() *fakeService {
	return &fakeService{
		tables: []bistro.Table{
			{ID: 1, TableNumber: 10, SeatCount: 2},
			{ID: 2, TableNumber: 20, SeatCount: 4},
			{ID: 3, TableNumber: 30, SeatCount: 8},
		},
		reservations: map[int][]bistro.Reservation{
			2: {{StartTime: "13:30:00"}},
			3: {{StartTime: "11:00:00"}, {StartTime: "14:00:00"}, {StartTime: "17:00:00"}, {StartTime: "20:00:00"}},
		},
	}
}

func run(t *testing.T, w *Wizard, svc Service, eff Effect, err error) {
	t.Helper()
	require.NoError(t, err)
	if eff != nil {
		w.Apply(Perform(context.Background(), svc, eff))
	}
}

// advanceTo drives a fresh wizard with valid input up to step.
func advanceTo(t *testing.T, svc Service, step Step) *Wizard {
	t.Helper()
	w := New()
	for w.Step() < step {
		switch w.Step() {
		case StepDate:
			require.NoError(t, w.SetDate("2026-11-02"))
		case StepGuests:
			require.NoError(t, w.SetGuestCount(4))
		case StepTable:
			eff, err := w.SelectTable(2)
			run(t, w, svc, eff, err)
		case StepTime:
			require.NoError(t, w.SetStartTime("18:00"))
		case StepContact:
			require.NoError(t, w.SetContact(Contact{FirstName: "Ada", LastName: "Lovelace", PhoneNumber: "5551234", Email: "ada@example.com"}))
		}
		eff, err := w.Next()
		run(t, w, svc, eff, err)
	}
	require.Equal(t, step, w.Step())
	return w
}

func alert(t *testing.T, err error) string {
	t.Helper()
	var ve *ValidationError
	require.True(t, errors.As(err, &ve), "want ValidationError, got %v", err)
	return ve.Message
}

func TestNew(t *testing.T) {
	w := New()
	assert.Equal(t, StepDate, w.Step())
	assert.False(t, w.State().Confirmed)
	assert.Equal(t, "Date", StepDate.String())
	assert.Equal(t, "Step(9)", Step(9).String())
}

func TestDateStep(t *testing.T) {
	w := New()
	_, err := w.Next()
	assert.Equal(t, MsgNoDate, alert(t, err))
	assert.Equal(t, StepDate, w.Step())

	require.NoError(t, w.SetDate("02/11/2026"))
	_, err = w.Next()
	assert.Equal(t, MsgBadDate, alert(t, err))

	require.NoError(t, w.SetDate(" 2026-11-02 "))
	eff, err := w.Next()
	require.NoError(t, err)
	assert.Nil(t, eff)
	assert.Equal(t, StepGuests, w.Step())
	assert.Equal(t, "2026-11-02", w.State().Date)
}

func TestGuestCountRange(t *testing.T) {
	svc := newFake()
	for _, n := range []int{0, -1, 9, 12} {
		w := advanceTo(t, svc, StepGuests)
		require.NoError(t, w.SetGuestCount(n))
		_, err := w.Next()
		assert.Equal(t, MsgBadGuests, alert(t, err), "guests=%d", n)
		assert.Equal(t, StepGuests, w.Step())
	}
	for _, n := range []int{1, 8} {
		w := advanceTo(t, svc, StepGuests)
		require.NoError(t, w.SetGuestCount(n))
		eff, err := w.Next()
		require.NoError(t, err)
		assert.Equal(t, SearchTables{GuestCount: n}, eff)
		assert.Equal(t, StepTable, w.Step())
	}
}

func TestSearchTablesOnAdvance(t *testing.T) {
	svc := newFake()
	w := advanceTo(t, svc, StepTable)
	assert.Equal(t, []int{4}, svc.asked)
	assert.Equal(t, []bistro.Table{{ID: 2, TableNumber: 20, SeatCount: 4}, {ID: 3, TableNumber: 30, SeatCount: 8}}, w.State().AvailableTables)
}

func TestSearchTablesFailure(t *testing.T) {
	svc := newFake()
	svc.tablesErr = errors.New("connection refused")
	w := advanceTo(t, svc, StepTable)
	st := w.State()
	assert.Equal(t, MsgTablesFailed, st.Error)
	assert.Empty(t, st.AvailableTables)
	assert.Equal(t, 4, st.GuestCount)
}

func TestTableStep(t *testing.T) {
	svc := newFake()
	w := advanceTo(t, svc, StepGuests)
	require.NoError(t, w.SetGuestCount(4))
	next(t, w, svc)

	_, err := w.Next()
	assert.Equal(t, MsgNoTable, alert(t, err))

	_, err = w.SelectTable(1)
	assert.Equal(t, MsgNoTable, alert(t, err), "table 1 seats two and was not offered")

	eff, err := w.SelectTable(2)
	require.NoError(t, err)
	assert.Equal(t, FetchReservations{TableID: 2, Date: "2026-11-02"}, eff)
	w.Apply(Perform(context.Background(), svc, eff))
	assert.Equal(t, []bistro.Reservation{{StartTime: "13:30:00"}}, w.State().AvailableTimes)

	next(t, w, svc)
	assert.Equal(t, StepTime, w.Step())
}

func next(t *testing.T, w *Wizard, svc Service) {
	t.Helper()
	eff, err := w.Next()
	run(t, w, svc, eff, err)
}

func TestFetchReservationsFailure(t *testing.T) {
	svc := newFake()
	w := advanceTo(t, svc, StepTable)
	svc.resErr = errors.New("boom")
	eff, err := w.SelectTable(3)
	run(t, w, svc, eff, err)
	st := w.State()
	assert.Equal(t, MsgTimesFailed, st.Error)
	assert.Equal(t, 3, st.TableID)
	assert.Empty(t, st.AvailableTimes)
}

func TestStaleOutcomesAreDropped(t *testing.T) {
	svc := newFake()
	w := advanceTo(t, svc, StepTable)
	effOld, err := w.SelectTable(2)
	require.NoError(t, err)
	effNew, err := w.SelectTable(3)
	require.NoError(t, err)

	w.Apply(Perform(context.Background(), svc, effNew))
	w.Apply(Perform(context.Background(), svc, effOld))
	assert.Len(t, w.State().AvailableTimes, 4, "reservations for table 2 must not replace table 3's")
}

func TestTimeStep(t *testing.T) {
	svc := newFake()
	w := advanceTo(t, svc, StepTime)

	_, err := w.Next()
	assert.Equal(t, MsgNoStartTime, alert(t, err))

	require.NoError(t, w.SetStartTime("14:00"))
	_, err = w.Next()
	assert.Equal(t, MsgTimeTaken, alert(t, err), "13:30 reservation blocks 14:00")

	require.NoError(t, w.SetStartTime("15:30"))
	eff, err := w.Next()
	require.NoError(t, err)
	assert.Nil(t, eff)
	assert.Equal(t, StepContact, w.Step())
}

func TestTimeStepAllBooked(t *testing.T) {
	svc := newFake()
	w := advanceTo(t, svc, StepTable)
	eff, err := w.SelectTable(3)
	run(t, w, svc, eff, err)
	next(t, w, svc)
	require.Equal(t, StepTime, w.Step())

	require.NoError(t, w.SetStartTime("12:00"))
	_, err = w.Next()
	assert.Equal(t, MsgNoTimes, alert(t, err))
	assert.Equal(t, StepTime, w.Step())
}

func TestContactStep(t *testing.T) {
	tests := []struct {
		name    string
		contact Contact
		want    string
	}{
		{"missing first name", Contact{LastName: "L", PhoneNumber: "5551234", Email: "a@b.co"}, MsgMissingContact},
		{"missing email", Contact{FirstName: "F", LastName: "L", PhoneNumber: "5551234"}, MsgMissingContact},
		{"short phone", Contact{FirstName: "F", LastName: "L", PhoneNumber: "555123", Email: "a@b.co"}, MsgBadPhone},
		{"phone with dashes", Contact{FirstName: "F", LastName: "L", PhoneNumber: "555-1234", Email: "a@b.co"}, MsgBadPhone},
		{"phone with plus", Contact{FirstName: "F", LastName: "L", PhoneNumber: "+4655512345", Email: "a@b.co"}, MsgBadPhone},
		{"phone with leading space", Contact{FirstName: "F", LastName: "L", PhoneNumber: " 5551234", Email: "a@b.co"}, MsgBadPhone},
		{"phone with trailing space", Contact{FirstName: "F", LastName: "L", PhoneNumber: "5551234 ", Email: "a@b.co"}, MsgBadPhone},
		{"blank phone", Contact{FirstName: "F", LastName: "L", PhoneNumber: "   ", Email: "a@b.co"}, MsgMissingContact},
		{"bad email", Contact{FirstName: "F", LastName: "L", PhoneNumber: "5551234", Email: "not-an-email"}, MsgBadEmail},
		{"display name email", Contact{FirstName: "F", LastName: "L", PhoneNumber: "5551234", Email: "Ada <a@b.co>"}, MsgBadEmail},
	}
	svc := newFake()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := advanceTo(t, svc, StepContact)
			require.NoError(t, w.SetContact(tt.contact))
			_, err := w.Next()
			assert.Equal(t, tt.want, alert(t, err))
			assert.Equal(t, StepContact, w.Step())
		})
	}

	for _, phone := range []string{"5551234", "46701234567"} {
		w := advanceTo(t, svc, StepContact)
		require.NoError(t, w.SetContact(Contact{FirstName: "F", LastName: "L", PhoneNumber: phone, Email: "a@b.co"}))
		_, err := w.Next()
		require.NoError(t, err, phone)
		assert.Equal(t, StepPreview, w.Step())
	}
}

func TestBackClearsOwnFields(t *testing.T) {
	svc := newFake()

	w := advanceTo(t, svc, StepGuests)
	require.NoError(t, w.SetGuestCount(3))
	require.NoError(t, w.Back())
	assert.Equal(t, StepDate, w.Step())
	assert.Zero(t, w.State().GuestCount)
	assert.Equal(t, "2026-11-02", w.State().Date)

	w = advanceTo(t, svc, StepTable)
	eff, err := w.SelectTable(2)
	run(t, w, svc, eff, err)
	require.NoError(t, w.Back())
	st := w.State()
	assert.Equal(t, StepGuests, st.Step)
	assert.Zero(t, st.TableID)
	assert.NotEmpty(t, st.AvailableTables, "tables list survives back navigation")
	assert.Equal(t, 4, st.GuestCount)

	w = advanceTo(t, svc, StepTime)
	require.NoError(t, w.SetStartTime("18:00"))
	require.NoError(t, w.Back())
	assert.Empty(t, w.State().StartTime)
	assert.Equal(t, 2, w.State().TableID)

	w = advanceTo(t, svc, StepContact)
	require.NoError(t, w.SetContact(Contact{FirstName: "F", LastName: "L", PhoneNumber: "5551234", Email: "a@b.co"}))
	require.NoError(t, w.Back())
	st = w.State()
	assert.Equal(t, StepTime, st.Step)
	assert.Equal(t, Contact{}, st.Contact())
	assert.Equal(t, "18:00", st.StartTime)

	w = advanceTo(t, svc, StepPreview)
	require.NoError(t, w.Back())
	st = w.State()
	assert.Equal(t, StepContact, st.Step)
	assert.Equal(t, "Ada", st.FirstName, "leaving the preview clears nothing")
}

func TestBackRejected(t *testing.T) {
	w := New()
	assert.ErrorIs(t, w.Back(), ErrInvalidTransition)

	svc := newFake()
	w = advanceTo(t, svc, StepConfirmed)
	assert.ErrorIs(t, w.Back(), ErrInvalidTransition)
	assert.Equal(t, StepConfirmed, w.Step())
}

func TestSettersGuardedByStep(t *testing.T) {
	w := New()
	assert.ErrorIs(t, w.SetGuestCount(2), ErrInvalidTransition)
	_, err := w.SelectTable(1)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.ErrorIs(t, w.SetStartTime("12:00"), ErrInvalidTransition)
	assert.ErrorIs(t, w.SetContact(Contact{}), ErrInvalidTransition)
	_, err = w.Confirm()
	assert.ErrorIs(t, err, ErrInvalidTransition)

	w = advanceTo(t, newFake(), StepGuests)
	assert.ErrorIs(t, w.SetDate("2026-12-24"), ErrInvalidTransition)
}

func TestConfirmSuccess(t *testing.T) {
	svc := newFake()
	w := advanceTo(t, svc, StepPreview)

	eff, err := w.Confirm()
	require.NoError(t, err)
	assert.Equal(t, StepPreview, w.Step(), "step waits for the create outcome")

	w.Apply(Perform(context.Background(), svc, eff))
	st := w.State()
	assert.Equal(t, StepConfirmed, st.Step)
	assert.True(t, st.Confirmed)
	assert.Empty(t, st.Error)
	require.Len(t, svc.created, 1)
	assert.Equal(t, bistro.NewReservation{
		TableID:     2,
		FirstName:   "Ada",
		LastName:    "Lovelace",
		PhoneNumber: "5551234",
		Email:       "ada@example.com",
		GuestCount:  4,
		Date:        "2026-11-02",
		StartTime:   "18:00:00",
	}, svc.created[0])

	_, err = w.Next()
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestConfirmFailureStaysOnPreview(t *testing.T) {
	svc := newFake()
	svc.createErr = &bistro.APIError{Op: "create reservation", Status: 500}
	w := advanceTo(t, svc, StepPreview)

	eff, err := w.Confirm()
	require.NoError(t, err)
	w.Apply(Perform(context.Background(), svc, eff))
	st := w.State()
	assert.Equal(t, StepPreview, st.Step)
	assert.False(t, st.Confirmed)
	assert.Equal(t, MsgCreateFailed, st.Error)

	svc.createErr = nil
	eff, err = w.Confirm()
	require.NoError(t, err)
	w.Apply(Perform(context.Background(), svc, eff))
	assert.Equal(t, StepConfirmed, w.Step())
	assert.Empty(t, w.State().Error, "a successful call replaces the banner")
}

func TestPreviewRequiresEverything(t *testing.T) {
	w := Restore(State{Step: StepPreview, Date: "2026-11-02", GuestCount: 2, TableID: 1, StartTime: "12:00", FirstName: "F", LastName: "L", PhoneNumber: "5551234"})
	_, err := w.Confirm()
	assert.Equal(t, MsgIncomplete, alert(t, err))
}

func TestReset(t *testing.T) {
	svc := newFake()
	w := advanceTo(t, svc, StepConfirmed)
	w.Reset()
	assert.Equal(t, New().State(), w.State())
}

func TestRestoreAndJSON(t *testing.T) {
	svc := newFake()
	w := advanceTo(t, svc, StepContact)

	b, err := json.Marshal(w.State())
	require.NoError(t, err)
	var st State
	require.NoError(t, json.Unmarshal(b, &st))
	assert.Equal(t, w.State(), st)

	r := Restore(st)
	assert.Equal(t, StepContact, r.Step())

	assert.Equal(t, StepDate, Restore(State{Step: 0}).Step())
	assert.Equal(t, StepDate, Restore(State{Step: 12}).Step())
}

func TestStateCopyIsDetached(t *testing.T) {
	svc := newFake()
	w := advanceTo(t, svc, StepTable)
	st := w.State()
	st.AvailableTables[0].TableNumber = 99
	assert.Equal(t, 20, w.State().AvailableTables[0].TableNumber)
}
