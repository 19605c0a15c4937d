// internal/stats/rate.go
package stats

import (
	"math"
	"strconv"
)

// Rate is a percentage that may be not applicable. An invalid Rate is never the same as 0%.
type Rate struct {
	Value float64
	Valid bool
}

// NotApplicable is the rate of a group with no finalised records.
var NotApplicable = Rate{}

// RateOf returns num/den as a percentage rounded to one decimal, or NotApplicable when den is 0.
func RateOf(num, den int) Rate {
	if den == 0 {
		return NotApplicable
	}
	return Rate{Value: percent(num, den), Valid: true}
}

func (r Rate) String() string {
	if !r.Valid {
		return "N/A"
	}
	return strconv.FormatFloat(r.Value, 'f', 1, 64)
}

func (r Rate) MarshalJSON() ([]byte, error) {
	if !r.Valid {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatFloat(r.Value, 'f', -1, 64)), nil
}

// rank orders rates with not-applicable below every real rate.
func (r Rate) rank() float64 {
	if !r.Valid {
		return -1
	}
	return r.Value
}

// percent is num/den*100 rounded half away from zero to one decimal; 0 when den is 0.
func percent(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return round1(float64(num) / float64(den) * 100)
}

func round1(x float64) float64 {
	return math.Round(x*10) / 10
}
