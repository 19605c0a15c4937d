// internal/query/sort.go
package query

import (
	"errors"
	"fmt"
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"visa-tracker/internal/models"
)

type SortField string

const (
	SortByLodgeDate     SortField = "lodgeDate"
	SortByApplicantName SortField = "applicantName"
	SortByUniversity    SortField = "university"
	SortByCourse        SortField = "course"
	SortByStatus        SortField = "status"
	SortByFinalisedDate SortField = "finalisedDate"
)

var SortFields = []SortField{
	SortByLodgeDate, SortByApplicantName, SortByUniversity,
	SortByCourse, SortByStatus, SortByFinalisedDate,
}

type Order string

const (
	Asc  Order = "asc"
	Desc Order = "desc"
)

// Defaults used by the applications listing.
const (
	DefaultSortField = SortByLodgeDate
	DefaultOrder     = Desc
)

var (
	ErrUnknownSortField = errors.New("unknown sort field")
	ErrUnknownOrder     = errors.New("unknown sort order")
	ErrUnknownStatus    = errors.New("unknown status filter")
	ErrUnknownField     = errors.New("field has no distinct values")
)

// ParseSortField parses a sort field; "" yields the default.
func ParseSortField(s string) (SortField, error) {
	if s == "" {
		return DefaultSortField, nil
	}
	for _, f := range SortFields {
		if string(f) == s {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownSortField, s)
}

// ParseOrder parses a sort direction; "" yields the default.
func ParseOrder(s string) (Order, error) {
	switch Order(s) {
	case "":
		return DefaultOrder, nil
	case Asc, Desc:
		return Order(s), nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownOrder, s)
}

// ParseStatusFilter accepts a status wire value, All, or "".
func ParseStatusFilter(s string) (string, error) {
	if unconstrained(s) {
		return s, nil
	}
	if _, err := models.ParseStatus(s); err != nil {
		return "", fmt.Errorf("%w: %s", ErrUnknownStatus, s)
	}
	return s, nil
}

func newCollator() *collate.Collator {
	return collate.New(language.English)
}

// compareOptional orders present dates chronologically and puts absent dates last
// regardless of direction. The bool reports whether the result is direction-independent.
func compareOptional(a, b *models.Date) (int, bool) {
	switch {
	case a == nil && b == nil:
		return 0, true
	case a == nil:
		return 1, true
	case b == nil:
		return -1, true
	}
	return a.Compare(*b), false
}

// Sort returns a sorted copy of records. Strings use English collation and dates compare
// chronologically. The sort is stable; an unknown field keeps input order.
func Sort(records []models.ApplicationRecord, field SortField, order Order) []models.ApplicationRecord {
	out := models.CloneRecords(records)
	col := newCollator()

	sign := 1
	if order == Desc {
		sign = -1
	}

	cmp := func(a, b models.ApplicationRecord) int {
		switch field {
		case SortByLodgeDate:
			return sign * a.LodgeDate.Compare(b.LodgeDate)
		case SortByApplicantName:
			return sign * col.CompareString(a.ApplicantName, b.ApplicantName)
		case SortByUniversity:
			return sign * col.CompareString(a.University, b.University)
		case SortByCourse:
			return sign * col.CompareString(a.Course, b.Course)
		case SortByStatus:
			return sign * col.CompareString(string(a.Status), string(b.Status))
		case SortByFinalisedDate:
			c, fixed := compareOptional(a.FinalisedDate, b.FinalisedDate)
			if fixed {
				return c
			}
			return sign * c
		}
		return 0
	}

	sort.SliceStable(out, func(i, j int) bool {
		return cmp(out[i], out[j]) < 0
	})
	return out
}

// UniqueValues returns the distinct values of a string field, sorted.
func UniqueValues(records []models.ApplicationRecord, field SortField) ([]string, error) {
	var get func(models.ApplicationRecord) string
	switch field {
	case SortByUniversity:
		get = func(r models.ApplicationRecord) string { return r.University }
	case SortByCourse:
		get = func(r models.ApplicationRecord) string { return r.Course }
	case SortByStatus:
		get = func(r models.ApplicationRecord) string { return string(r.Status) }
	case SortByApplicantName:
		get = func(r models.ApplicationRecord) string { return r.ApplicantName }
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownField, field)
	}

	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, r := range records {
		v := get(r)
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out, nil
}
