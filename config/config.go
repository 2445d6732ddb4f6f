package config

import "time"

// AdmissionPolicy holds the business rules the admission and penalty paths
// enforce. Defaults are documented on the environment variables in cmd/main.go.
type AdmissionPolicy struct {
	// SlotCapacity is the maximum number of non-terminal bookings one doctor
	// may hold at the same appointment time.
	SlotCapacity int
	// BreakStartHour/BreakEndHour bound the daily break window; appointment
	// times whose local hour falls in [start, end) are rejected.
	BreakStartHour int
	BreakEndHour   int
	// GracePeriod is how long past the slot a patient may check in before the
	// penalty sweep counts a miss.
	GracePeriod time.Duration
	// MissedThreshold is the missedCount at which a booking is auto-cancelled.
	MissedThreshold int
	// SweepInterval is how often the background penalty sweeper runs. The
	// sweep also runs on every queue read, so this only bounds staleness
	// between reads.
	SweepInterval time.Duration
	// Location is the clinic's timezone, used to read the wall-clock hour for
	// the break window. Nil means UTC.
	Location *time.Location
}

func (p AdmissionPolicy) location() *time.Location {
	if p.Location == nil {
		return time.UTC
	}
	return p.Location
}

// InBreakWindow reports whether t falls inside the daily break window. The
// hour is taken on the clinic's wall clock, so two encodings of the same
// instant always get the same verdict.
func (p AdmissionPolicy) InBreakWindow(t time.Time) bool {
	hour := t.In(p.location()).Hour()
	return hour >= p.BreakStartHour && hour < p.BreakEndHour
}

// SlotFull reports whether an occupancy count exhausts a slot.
func (p AdmissionPolicy) SlotFull(occupied int64) bool {
	return occupied >= int64(p.SlotCapacity)
}

// AppConfig holds the application configuration
type AppConfig struct {
	DBURL        string
	RedisAddress string
	BearerToken  string
	Admission    AdmissionPolicy
}

// GetBearerToken returns the BearerToken from the config
func (c *AppConfig) GetBearerToken() string {
	return c.BearerToken
}
