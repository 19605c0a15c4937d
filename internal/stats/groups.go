// internal/stats/groups.go
package stats

import (
	"errors"
	"fmt"
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"visa-tracker/internal/models"
)

type GroupKey string

const (
	GroupByUniversity GroupKey = "university"
	GroupByCourse     GroupKey = "course"
)

// GroupStat is the status breakdown of one university or course.
type GroupStat struct {
	Key                string `json:"key"`
	Total              int    `json:"total"`
	Granted            int    `json:"granted"`
	Refused            int    `json:"refused"`
	UnderProcess       int    `json:"underProcess"`
	SuccessRatePercent Rate   `json:"successRatePercent"`
}

var ErrUnknownGroupKey = errors.New("unknown group key")

func keyOf(key GroupKey, r models.ApplicationRecord) string {
	if key == GroupByCourse {
		return r.Course
	}
	return r.University
}

// GroupStats returns one entry per distinct key value in first-seen order.
// Any status other than Granted or Refused counts as under process.
func GroupStats(records []models.ApplicationRecord, key GroupKey) ([]GroupStat, error) {
	if key != GroupByUniversity && key != GroupByCourse {
		return nil, fmt.Errorf("%w: %s", ErrUnknownGroupKey, key)
	}

	index := make(map[string]int)
	groups := make([]GroupStat, 0)
	for _, r := range records {
		k := keyOf(key, r)
		i, ok := index[k]
		if !ok {
			i = len(groups)
			index[k] = i
			groups = append(groups, GroupStat{Key: k})
		}

		g := &groups[i]
		g.Total++
		switch r.Status {
		case models.StatusGranted:
			g.Granted++
		case models.StatusRefused:
			g.Refused++
		default:
			g.UnderProcess++
		}
	}

	for i := range groups {
		groups[i].SuccessRatePercent = RateOf(groups[i].Granted, groups[i].Granted+groups[i].Refused)
	}
	return groups, nil
}

type GroupSortField string

const (
	GroupSortKey          GroupSortField = "key"
	GroupSortTotal        GroupSortField = "total"
	GroupSortGranted      GroupSortField = "granted"
	GroupSortRefused      GroupSortField = "refused"
	GroupSortUnderProcess GroupSortField = "underProcess"
	GroupSortSuccessRate  GroupSortField = "successRate"
)

var ErrUnknownGroupSortField = errors.New("unknown group sort field")

// ParseGroupSortField accepts the field names above; the group key's own name
// ("university" or "course") is an alias of "key". "" yields "total".
func ParseGroupSortField(s string) (GroupSortField, error) {
	switch GroupSortField(s) {
	case "":
		return GroupSortTotal, nil
	case GroupSortKey, GroupSortField(GroupByUniversity), GroupSortField(GroupByCourse):
		return GroupSortKey, nil
	case GroupSortTotal, GroupSortGranted, GroupSortRefused, GroupSortUnderProcess, GroupSortSuccessRate:
		return GroupSortField(s), nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownGroupSortField, s)
}

// SortGroups returns a stably sorted copy. Keys compare with English collation; a
// not-applicable success rate ranks below 0%.
func SortGroups(groups []GroupStat, field GroupSortField, descending bool) []GroupStat {
	out := append([]GroupStat(nil), groups...)
	col := collate.New(language.English)

	cmp := func(a, b GroupStat) float64 {
		switch field {
		case GroupSortKey:
			return float64(col.CompareString(a.Key, b.Key))
		case GroupSortTotal:
			return float64(a.Total - b.Total)
		case GroupSortGranted:
			return float64(a.Granted - b.Granted)
		case GroupSortRefused:
			return float64(a.Refused - b.Refused)
		case GroupSortUnderProcess:
			return float64(a.UnderProcess - b.UnderProcess)
		case GroupSortSuccessRate:
			return a.SuccessRatePercent.rank() - b.SuccessRatePercent.rank()
		}
		return 0
	}

	sort.SliceStable(out, func(i, j int) bool {
		c := cmp(out[i], out[j])
		if descending {
			return c > 0
		}
		return c < 0
	})
	return out
}

// TopGroups returns the n groups with the most records.
func TopGroups(groups []GroupStat, n int) []GroupStat {
	sorted := SortGroups(groups, GroupSortTotal, true)
	if n < 0 {
		n = 0
	}
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}
