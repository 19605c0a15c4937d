// internal/query/filter.go
package query

import (
	"strings"

	"visa-tracker/internal/models"
)

// All is the filter value meaning "no constraint".
const All = "all"

// Criteria narrows a record list. Empty fields and All place no constraint.
type Criteria struct {
	University string
	Course     string
	Status     string
	Search     string
}

func unconstrained(v string) bool {
	return v == "" || v == All
}

// Filter returns the records matching every criterion, in input order.
// Search is a case-insensitive substring match on applicant name, university or course.
func Filter(records []models.ApplicationRecord, c Criteria) []models.ApplicationRecord {
	term := strings.ToLower(c.Search)
	out := make([]models.ApplicationRecord, 0, len(records))

	for _, r := range records {
		if term != "" &&
			!strings.Contains(strings.ToLower(r.ApplicantName), term) &&
			!strings.Contains(strings.ToLower(r.University), term) &&
			!strings.Contains(strings.ToLower(r.Course), term) {
			continue
		}
		if !unconstrained(c.University) && r.University != c.University {
			continue
		}
		if !unconstrained(c.Course) && r.Course != c.Course {
			continue
		}
		if !unconstrained(c.Status) && string(r.Status) != c.Status {
			continue
		}
		out = append(out, r.Clone())
	}
	return out
}
