package slots

import (
	"fmt"
	"strings"
)

const (
	// FirstStart and LastStart bound the bookable grid in minutes after midnight.
	FirstStart = 10 * 60
	LastStart  = 20 * 60

	// Interval is the spacing between consecutive grid slots.
	Interval = 30

	// Buffer is how many neighbouring slots on each side a reservation blocks.
	// Three half-hour slots make a two hour sitting.
	Buffer = 3
)

// TimeSlot is one start time on the grid. It is derived, never stored.
type TimeSlot struct {
	Time     string `json:"time"`
	IsBooked bool   `json:"isBooked"`
}

// Grid returns the start times of the day as "HH:MM", in order.
func Grid() []string {
	out := make([]string, 0, (LastStart-FirstStart)/Interval+1)
	for m := FirstStart; m <= LastStart; m += Interval {
		out = append(out, fmt.Sprintf("%02d:%02d", m/60, m%60))
	}
	return out
}

// Normalize trims a service start time ("13:30:00") to grid form ("13:30").
func Normalize(start string) string {
	parts := strings.Split(strings.TrimSpace(start), ":")
	if len(parts) < 2 {
		return strings.TrimSpace(start)
	}
	return parts[0] + ":" + parts[1]
}

// Availability marks every grid slot whose two hour sitting would overlap one
// of the existing reservation start times. Starts off the grid block nothing.
func Availability(existing []string) []TimeSlot {
	grid := Grid()
	taken := make(map[string]bool, len(existing))
	for _, s := range existing {
		taken[Normalize(s)] = true
	}

	out := make([]TimeSlot, len(grid))
	for i, t := range grid {
		booked := false
		for off := -Buffer; off <= Buffer && !booked; off++ {
			j := i + off
			if j < 0 || j >= len(grid) {
				continue
			}
			booked = taken[grid[j]]
		}
		out[i] = TimeSlot{Time: t, IsBooked: booked}
	}
	return out
}

// Open filters to the slots that can still be picked.
func Open(ss []TimeSlot) []TimeSlot {
	var out []TimeSlot
	for _, s := range ss {
		if !s.IsBooked {
			out = append(out, s)
		}
	}
	return out
}

// AllBooked reports whether nothing on the grid can be picked.
func AllBooked(ss []TimeSlot) bool {
	for _, s := range ss {
		if !s.IsBooked {
			return false
		}
	}
	return true
}

// IsOpen reports whether t is on the grid and not booked.
func IsOpen(ss []TimeSlot, t string) bool {
	t = Normalize(t)
	for _, s := range ss {
		if s.Time == t {
			return !s.IsBooked
		}
	}
	return false
}
