// internal/stats/stats.go
package stats

import (
	"math"

	"visa-tracker/internal/models"
)

// SummaryStats are the headline counters shown on the home page and dashboard.
type SummaryStats struct {
	Total             int     `json:"total"`
	UnderProcess      int     `json:"underProcess"`
	Granted           int     `json:"granted"`
	Refused           int     `json:"refused"`
	GrantedToday      int     `json:"grantedToday"`
	RefusedToday      int     `json:"refusedToday"`
	GrantedYesterday  int     `json:"grantedYesterday"`
	RefusedYesterday  int     `json:"refusedYesterday"`
	AvgWaitingDays    int     `json:"avgWaitingDays"`
	GrantRatioPercent float64 `json:"grantRatioPercent"`
	TotalFinalised    int     `json:"totalFinalised"`
}

// Summary aggregates records relative to the civil date today.
func Summary(records []models.ApplicationRecord, today models.Date) SummaryStats {
	yesterday := today.AddDays(-1)
	s := SummaryStats{Total: len(records)}

	waitSum, waitCount := 0, 0
	for _, r := range records {
		switch r.Status {
		case models.StatusUnderProcess:
			s.UnderProcess++
		case models.StatusGranted:
			s.Granted++
		case models.StatusRefused:
			s.Refused++
		}

		if r.FinalisedDate == nil {
			continue
		}
		fin := *r.FinalisedDate
		switch {
		case r.Status == models.StatusGranted && fin.Equal(today):
			s.GrantedToday++
		case r.Status == models.StatusRefused && fin.Equal(today):
			s.RefusedToday++
		case r.Status == models.StatusGranted && fin.Equal(yesterday):
			s.GrantedYesterday++
		case r.Status == models.StatusRefused && fin.Equal(yesterday):
			s.RefusedYesterday++
		}

		if r.Status != models.StatusUnderProcess && !r.LodgeDate.IsZero() {
			waitSum += fin.DaysSince(r.LodgeDate)
			waitCount++
		}
	}

	if waitCount > 0 {
		s.AvgWaitingDays = roundHalfUp(float64(waitSum) / float64(waitCount))
	}
	s.TotalFinalised = s.Granted + s.Refused
	s.GrantRatioPercent = percent(s.Granted, s.TotalFinalised)
	return s
}

// roundHalfUp rounds to the nearest integer with halves going towards +Inf.
func roundHalfUp(x float64) int {
	return int(math.Floor(x + 0.5))
}

// WaitingDays is the whole number of days from lodge to the finalised date, or to now
// when the record is not finalised. It is 0 without a lodge date and is not clamped.
func WaitingDays(lodge models.Date, finalised *models.Date, now models.Date) int {
	if lodge.IsZero() {
		return 0
	}
	end := now
	if finalised != nil && !finalised.IsZero() {
		end = *finalised
	}
	return end.DaysSince(lodge)
}

// FinalisedOn returns the records finalised on day, in input order.
func FinalisedOn(records []models.ApplicationRecord, day models.Date) []models.ApplicationRecord {
	out := make([]models.ApplicationRecord, 0)
	for _, r := range records {
		if r.FinalisedDate != nil && r.FinalisedDate.Equal(day) {
			out = append(out, r.Clone())
		}
	}
	return out
}

// Recent returns the records finalised today or yesterday, in input order.
func Recent(records []models.ApplicationRecord, today models.Date) []models.ApplicationRecord {
	yesterday := today.AddDays(-1)
	out := make([]models.ApplicationRecord, 0)
	for _, r := range records {
		if r.FinalisedDate == nil {
			continue
		}
		if r.FinalisedDate.Equal(today) || r.FinalisedDate.Equal(yesterday) {
			out = append(out, r.Clone())
		}
	}
	return out
}
