// internal/app/schedule.go
package app

import "time"

// Schedule is the published data refresh plan.
type Schedule struct {
	LastUpdate time.Time
	NextUpdate time.Time
}

type Countdown struct {
	Days    int  `json:"days"`
	Hours   int  `json:"hours"`
	Minutes int  `json:"minutes"`
	Seconds int  `json:"seconds"`
	Expired bool `json:"expired"`
}

// Countdown is the time left until the next update, or Expired once it has passed.
// An unset next update counts as expired.
func (s Schedule) Countdown(now time.Time) Countdown {
	if s.NextUpdate.IsZero() {
		return Countdown{Expired: true}
	}
	left := s.NextUpdate.Sub(now)
	if left <= 0 {
		return Countdown{Expired: true}
	}

	secs := int64(left / time.Second)
	return Countdown{
		Days:    int(secs / 86400),
		Hours:   int(secs % 86400 / 3600),
		Minutes: int(secs % 3600 / 60),
		Seconds: int(secs % 60),
	}
}

type UpdateInfo struct {
	LastUpdate *time.Time `json:"lastUpdate"`
	NextUpdate *time.Time `json:"nextUpdate"`
	Countdown  Countdown  `json:"countdown"`
}

func optionalTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
