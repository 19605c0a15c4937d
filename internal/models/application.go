// internal/models/application.go
package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

type Status string

const (
	StatusUnderProcess Status = "Under Process"
	StatusGranted      Status = "Granted"
	StatusRefused      Status = "Refused"
)

// Statuses lists every status in display order.
var Statuses = []Status{StatusUnderProcess, StatusGranted, StatusRefused}

func ParseStatus(s string) (Status, error) {
	for _, st := range Statuses {
		if string(st) == s {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown status %q", s)
}

func (s Status) Valid() bool {
	_, err := ParseStatus(string(s))
	return err == nil
}

// Finalised reports whether the status is terminal (Granted or Refused).
func (s Status) Finalised() bool {
	return s == StatusGranted || s == StatusRefused
}

// ApplicationRecord is one student visa application.
type ApplicationRecord struct {
	ID                    string `json:"id" validate:"required"`
	LodgeDate             Date   `json:"lodgeDate" validate:"required"`
	ApplicantName         string `json:"applicantName" validate:"notblank"`
	FurtherAssessmentDate *Date  `json:"furtherAssessmentDate"`
	University            string `json:"university" validate:"required,university"`
	Course                string `json:"course" validate:"required,course"`
	Status                Status `json:"status" validate:"required,status"`
	FinalisedDate         *Date  `json:"finalisedDate"`
}

// Clone returns a deep copy; the optional dates are not shared.
func (r ApplicationRecord) Clone() ApplicationRecord {
	r.FurtherAssessmentDate = OptionalDate(r.FurtherAssessmentDate)
	r.FinalisedDate = OptionalDate(r.FinalisedDate)
	return r
}

// Normalize applies the record defaults: a blank status becomes Under Process and
// zero optional dates become absent.
func (r *ApplicationRecord) Normalize() {
	if r.Status == "" {
		r.Status = StatusUnderProcess
	}
	r.FurtherAssessmentDate = OptionalDate(r.FurtherAssessmentDate)
	r.FinalisedDate = OptionalDate(r.FinalisedDate)
}

// CloneRecords deep-copies a record list. A nil input yields an empty, non-nil slice.
func CloneRecords(in []ApplicationRecord) []ApplicationRecord {
	out := make([]ApplicationRecord, len(in))
	for i, r := range in {
		out[i] = r.Clone()
	}
	return out
}

// ==========================
// Partial updates
// ==========================

// OptionalDateField is a tri-state JSON field: absent, explicit null, or a date.
type OptionalDateField struct {
	Set   bool
	Value *Date
}

func (f *OptionalDateField) UnmarshalJSON(data []byte) error {
	f.Set = true
	var d Date
	if err := d.UnmarshalJSON(data); err != nil {
		return err
	}
	f.Value = DatePtr(d)
	return nil
}

// ClearDate is a patch value that removes an optional date.
func ClearDate() OptionalDateField { return OptionalDateField{Set: true} }

// SetDate is a patch value that sets an optional date.
func SetDate(d Date) OptionalDateField { return OptionalDateField{Set: true, Value: DatePtr(d)} }

// Patch is a JSON merge patch over an ApplicationRecord. The id is never patched.
type Patch struct {
	LodgeDate             *Date             `json:"lodgeDate,omitempty"`
	ApplicantName         *string           `json:"applicantName,omitempty"`
	FurtherAssessmentDate OptionalDateField `json:"furtherAssessmentDate"`
	University            *string           `json:"university,omitempty"`
	Course                *string           `json:"course,omitempty"`
	Status                *Status           `json:"status,omitempty"`
	FinalisedDate         OptionalDateField `json:"finalisedDate"`
}

// DecodePatch decodes a merge patch, rejecting unknown keys and an attempt to change the id.
func DecodePatch(data []byte) (Patch, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return Patch{}, fmt.Errorf("patch must be a JSON object: %w", err)
	}
	if _, ok := raw["id"]; ok {
		return Patch{}, fmt.Errorf("id cannot be changed")
	}

	var p Patch
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&p); err != nil {
		return Patch{}, fmt.Errorf("invalid patch: %w", err)
	}
	return p, nil
}

// Apply returns r with the patch merged in. Moving the status to Under Process without
// naming finalisedDate clears the finalised date.
func (p Patch) Apply(r ApplicationRecord) ApplicationRecord {
	out := r.Clone()
	if p.LodgeDate != nil {
		out.LodgeDate = *p.LodgeDate
	}
	if p.ApplicantName != nil {
		out.ApplicantName = *p.ApplicantName
	}
	if p.FurtherAssessmentDate.Set {
		out.FurtherAssessmentDate = OptionalDate(p.FurtherAssessmentDate.Value)
	}
	if p.University != nil {
		out.University = *p.University
	}
	if p.Course != nil {
		out.Course = *p.Course
	}
	if p.Status != nil {
		out.Status = *p.Status
		if out.Status == StatusUnderProcess && !p.FinalisedDate.Set {
			out.FinalisedDate = nil
		}
	}
	if p.FinalisedDate.Set {
		out.FinalisedDate = OptionalDate(p.FinalisedDate.Value)
	}
	return out
}

// Empty reports whether the patch changes nothing.
func (p Patch) Empty() bool {
	return p.LodgeDate == nil && p.ApplicantName == nil && !p.FurtherAssessmentDate.Set &&
		p.University == nil && p.Course == nil && p.Status == nil && !p.FinalisedDate.Set
}
