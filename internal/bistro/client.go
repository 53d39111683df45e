package bistro

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// DefaultBaseURL is where the reservation API listens in a local checkout.
const DefaultBaseURL = "https://localhost:7042/api"

// Table is a bookable table as reported by the reservation API.
type Table struct {
	ID          int `json:"id"`
	TableNumber int `json:"tableNumber"`
	SeatCount   int `json:"seatCount"`
}

// Reservation is an existing booking. Only StartTime feeds availability.
type Reservation struct {
	ID         int    `json:"id,omitempty"`
	TableID    int    `json:"tableId,omitempty"`
	Date       string `json:"date,omitempty"`
	StartTime  string `json:"startTime"`
	GuestCount int    `json:"guestCount,omitempty"`
}

// NewReservation is the body posted to AddReservation.
type NewReservation struct {
	TableID     int    `json:"tableId"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	PhoneNumber string `json:"phoneNumber"`
	Email       string `json:"email"`
	GuestCount  int    `json:"guestCount"`
	Date        string `json:"date"`
	StartTime   string `json:"startTime"`
}

// APIError is a non-2xx answer from the reservation API.
type APIError struct {
	Op     string
	Status int
	Body   string
}

func (e *APIError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s failed (status=%d)", e.Op, e.Status)
	}
	return fmt.Sprintf("%s failed (status=%d): %s", e.Op, e.Status, e.Body)
}

// Options tune the underlying HTTP client.
type Options struct {
	Timeout     time.Duration
	InsecureTLS bool
	HTTPClient  *http.Client
}

// Client talks JSON over HTTP to the reservation API.
type Client struct {
	hc   *http.Client
	base string
}

func New(baseURL string, opts Options) *Client {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}
	hc := opts.HTTPClient
	if hc == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		hc = &http.Client{Timeout: timeout}
		if opts.InsecureTLS {
			// the API ships with a self-signed development certificate
			hc.Transport = &http.Transport{TLSClientConfig: &tls.Config{InsecureSkipVerify: true}} //nolint:gosec
		}
	}
	return &Client{hc: hc, base: strings.TrimRight(baseURL, "/")}
}

// AvailableTables lists tables seating at least guestCount.
func (c *Client) AvailableTables(ctx context.Context, guestCount int) ([]Table, error) {
	var out []Table
	path := "/Tables/GetAvailableTables/" + strconv.Itoa(guestCount)
	if err := c.getJSON(ctx, "fetch tables", path, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Reservations lists the bookings already held on tableID for date (YYYY-MM-DD).
func (c *Client) Reservations(ctx context.Context, tableID int, date string) ([]Reservation, error) {
	var out []Reservation
	path := "/Reservations/GetReservationsByTableIdAndDate/" + strconv.Itoa(tableID) + "/" + url.PathEscape(date)
	if err := c.getJSON(ctx, "fetch reservations", path, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateReservation books r. StartTime may be "HH:MM" or "HH:MM:SS".
func (c *Client) CreateReservation(ctx context.Context, r NewReservation) error {
	r.StartTime = NormalizeStartTime(r.StartTime)
	body, err := json.Marshal(r)
	if err != nil {
		return err
	}
	_, status, resp, err := c.do(ctx, http.MethodPost, "/Reservations/AddReservation", body)
	if err != nil {
		return fmt.Errorf("create reservation: %w", err)
	}
	if status < 200 || status >= 300 {
		return &APIError{Op: "create reservation", Status: status, Body: trimBody(resp)}
	}
	return nil
}

// NormalizeStartTime turns "18:30" into "18:30:00"; longer forms pass through.
func NormalizeStartTime(t string) string {
	t = strings.TrimSpace(t)
	if len(t) == 5 && strings.Count(t, ":") == 1 {
		return t + ":00"
	}
	return t
}

func (c *Client) getJSON(ctx context.Context, op, path string, dst any) error {
	_, status, body, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if status != http.StatusOK {
		return &APIError{Op: op, Status: status, Body: trimBody(body)}
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return fmt.Errorf("%s: decode: %w", op, err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, body []byte) (*http.Response, int, []byte, error) {
	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, rd)
	if err != nil {
		return nil, 0, nil, err
	}
	req.Header.Set("accept", "application/json")
	if body != nil {
		req.Header.Set("content-type", "application/json")
	}

	res, err := c.hc.Do(req)
	if err != nil {
		return nil, 0, nil, err
	}
	defer res.Body.Close()
	b, err := io.ReadAll(res.Body)
	if err != nil {
		return res, res.StatusCode, nil, err
	}
	return res, res.StatusCode, b, nil
}

// maxErrBody caps how many characters of an error body end up in APIError.
const maxErrBody = 200

func trimBody(b []byte) string {
	s := strings.TrimSpace(string(b))
	if r := []rune(s); len(r) > maxErrBody {
		s = string(r[:maxErrBody]) + "..."
	}
	return s
}
