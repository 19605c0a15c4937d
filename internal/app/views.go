// internal/app/views.go
package app

import (
	"visa-tracker/internal/models"
	"visa-tracker/internal/query"
	"visa-tracker/internal/stats"
	"visa-tracker/pkg/catalog"
)

const (
	featuredUniversities = 12
	dashboardTopGroups   = 5
)

// ListOptions selects and orders the applications listing.
type ListOptions struct {
	Criteria query.Criteria
	SortBy   query.SortField
	Order    query.Order
}

// Applications returns the filtered, sorted list and the store version it was taken from.
func (a *App) Applications(opts ListOptions) ([]models.ApplicationRecord, string) {
	records, version := a.Store.SnapshotWithVersion()
	filtered := query.Filter(records, opts.Criteria)
	return query.Sort(filtered, opts.SortBy, opts.Order), version
}

type FiltersView struct {
	Universities []string `json:"universities"`
	Courses      []string `json:"courses"`
	Statuses     []string `json:"statuses"`
}

// Filters lists the values present in the data, for filter dropdowns.
func (a *App) Filters() FiltersView {
	records := a.Store.Snapshot()
	unis, _ := query.UniqueValues(records, query.SortByUniversity)
	courses, _ := query.UniqueValues(records, query.SortByCourse)

	statuses := make([]string, 0, len(models.Statuses))
	for _, s := range models.Statuses {
		statuses = append(statuses, string(s))
	}
	return FiltersView{Universities: unis, Courses: courses, Statuses: statuses}
}

type HomeView struct {
	Summary      stats.SummaryStats         `json:"summary"`
	Today        []models.ApplicationRecord `json:"today"`
	Yesterday    []models.ApplicationRecord `json:"yesterday"`
	Recent       []models.ApplicationRecord `json:"recent"`
	Trend        []stats.TrendPoint         `json:"trend"`
	Universities []catalog.Entry            `json:"universities"`
	DarkMode     bool                       `json:"darkMode"`
}

// Home builds the landing page. search narrows the recent decisions only.
func (a *App) Home(search string) HomeView {
	records := a.Store.Snapshot()
	today := a.Today()

	return HomeView{
		Summary:      stats.Summary(records, today),
		Today:        stats.FinalisedOn(records, today),
		Yesterday:    stats.FinalisedOn(records, today.AddDays(-1)),
		Recent:       query.Filter(stats.Recent(records, today), query.Criteria{Search: search}),
		Trend:        stats.DailyTrend(records, today, stats.ShortTrendDays),
		Universities: a.featured(records),
		DarkMode:     a.DarkMode(),
	}
}

// featured lists the first distinct universities in record order with their logos.
func (a *App) featured(records []models.ApplicationRecord) []catalog.Entry {
	seen := make(map[string]struct{})
	out := make([]catalog.Entry, 0, featuredUniversities)
	for _, r := range records {
		if len(out) == featuredUniversities {
			break
		}
		if _, ok := seen[r.University]; ok {
			continue
		}
		seen[r.University] = struct{}{}
		out = append(out, catalog.Entry{Name: r.University, Asset: a.Catalog.LogoFor(r.University)})
	}
	return out
}

type DashboardView struct {
	Summary         stats.SummaryStats `json:"summary"`
	Trend           []stats.TrendPoint `json:"trend"`
	TopUniversities []stats.GroupStat  `json:"topUniversities"`
	TopCourses      []stats.GroupStat  `json:"topCourses"`
}

func (a *App) Dashboard() DashboardView {
	records, version := a.Store.SnapshotWithVersion()
	today := a.Today()

	return DashboardView{
		Summary:         stats.Summary(records, today),
		Trend:           stats.DailyTrend(records, today, stats.ShortTrendDays),
		TopUniversities: stats.TopGroups(a.groups.get(version, stats.GroupByUniversity, records), dashboardTopGroups),
		TopCourses:      stats.TopGroups(a.groups.get(version, stats.GroupByCourse, records), dashboardTopGroups),
	}
}

// GroupSort orders one statistics table.
type GroupSort struct {
	Field      stats.GroupSortField
	Descending bool
}

// DefaultGroupSort is total, descending.
var DefaultGroupSort = GroupSort{Field: stats.GroupSortTotal, Descending: true}

type StatisticsView struct {
	Summary      stats.SummaryStats `json:"summary"`
	Universities []stats.GroupStat  `json:"universities"`
	Courses      []stats.GroupStat  `json:"courses"`
}

func (a *App) Statistics(uni, course GroupSort) StatisticsView {
	records, version := a.Store.SnapshotWithVersion()
	return StatisticsView{
		Summary:      stats.Summary(records, a.Today()),
		Universities: stats.SortGroups(a.groups.get(version, stats.GroupByUniversity, records), uni.Field, uni.Descending),
		Courses:      stats.SortGroups(a.groups.get(version, stats.GroupByCourse, records), course.Field, course.Descending),
	}
}

type TrendView struct {
	Points  []stats.TrendPoint  `json:"points"`
	Summary stats.WindowSummary `json:"summary"`
}

func (a *App) Trend(days int) TrendView {
	points, summary := stats.Window(a.Store.Snapshot(), a.Today(), days)
	return TrendView{Points: points, Summary: summary}
}
