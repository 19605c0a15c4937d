// internal/stats/trend.go
package stats

import "visa-tracker/internal/models"

const (
	ShortTrendDays = 7
	LongTrendDays  = 30

	trendLabelLayout = "Jan 02"
)

// TrendPoint counts the decisions made on one day.
type TrendPoint struct {
	Date    models.Date `json:"date"`
	Label   string      `json:"label"`
	Granted int         `json:"granted"`
	Refused int         `json:"refused"`
	Total   int         `json:"total"`
}

// DailyTrend returns one point per day for the window ending on now, oldest first.
// A non-positive window yields no points.
func DailyTrend(records []models.ApplicationRecord, now models.Date, windowDays int) []TrendPoint {
	if windowDays <= 0 {
		return []TrendPoint{}
	}

	start := now.AddDays(-(windowDays - 1))
	points := make([]TrendPoint, windowDays)
	for i := range points {
		d := start.AddDays(i)
		points[i] = TrendPoint{Date: d, Label: d.Format(trendLabelLayout)}
	}

	for _, r := range records {
		if r.FinalisedDate == nil {
			continue
		}
		i := r.FinalisedDate.DaysSince(start)
		if i < 0 || i >= windowDays {
			continue
		}
		switch r.Status {
		case models.StatusGranted:
			points[i].Granted++
		case models.StatusRefused:
			points[i].Refused++
		default:
			continue
		}
		points[i].Total++
	}
	return points
}

// WindowSummary totals a trend window.
type WindowSummary struct {
	Days               int     `json:"days"`
	TotalGranted       int     `json:"totalGranted"`
	TotalRefused       int     `json:"totalRefused"`
	TotalProcessed     int     `json:"totalProcessed"`
	SuccessRatePercent float64 `json:"successRatePercent"`
	AvgPerDay          float64 `json:"avgPerDay"`
}

// Summarize totals trend points.
func Summarize(points []TrendPoint) WindowSummary {
	w := WindowSummary{Days: len(points)}
	for _, p := range points {
		w.TotalGranted += p.Granted
		w.TotalRefused += p.Refused
	}
	w.TotalProcessed = w.TotalGranted + w.TotalRefused
	w.SuccessRatePercent = percent(w.TotalGranted, w.TotalProcessed)
	if w.Days > 0 {
		w.AvgPerDay = round1(float64(w.TotalProcessed) / float64(w.Days))
	}
	return w
}

// Window builds the trend for the window ending on now and totals it.
func Window(records []models.ApplicationRecord, now models.Date, days int) ([]TrendPoint, WindowSummary) {
	points := DailyTrend(records, now, days)
	return points, Summarize(points)
}
