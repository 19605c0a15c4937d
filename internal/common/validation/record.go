// internal/common/validation/record.go
package validation

import (
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	apperrors "visa-tracker/internal/common/errors"
	"visa-tracker/internal/models"
)

// Catalog is the membership check for universities and courses.
type Catalog interface {
	HasUniversity(name string) bool
	HasCourse(name string) bool
}

// Field error codes.
const (
	CodeRequired        = "REQUIRED_FIELD_MISSING"
	CodeNotInCatalog    = "NOT_IN_CATALOG"
	CodeInvalidEnum     = "INVALID_ENUM_VALUE"
	CodeDateBeforeLodge = "DATE_BEFORE_LODGE"
	CodeForbidden       = "FIELD_NOT_ALLOWED"
	CodeInvalid         = "INVALID_VALUE"
)

// struct-level tags
const (
	tagFinalisedRequired  = "finalised_required"
	tagFinalisedForbidden = "finalised_forbidden"
	tagNotBeforeLodge     = "not_before_lodge"
)

// RecordValidator checks the ApplicationRecord invariants.
type RecordValidator struct {
	v       *validator.Validate
	catalog Catalog
}

// NewRecordValidator builds a validator. A nil catalog disables the membership checks.
func NewRecordValidator(catalog Catalog) *RecordValidator {
	rv := &RecordValidator{v: validator.New(), catalog: catalog}

	rv.v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	// Dates validate as their YYYY-MM-DD string so "required" treats the zero date as missing.
	rv.v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(models.Date); ok {
			return d.String()
		}
		return nil
	}, models.Date{})

	_ = rv.v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	_ = rv.v.RegisterValidation("status", func(fl validator.FieldLevel) bool {
		return models.Status(fl.Field().String()).Valid()
	})
	_ = rv.v.RegisterValidation("university", func(fl validator.FieldLevel) bool {
		return rv.catalog == nil || rv.catalog.HasUniversity(fl.Field().String())
	})
	_ = rv.v.RegisterValidation("course", func(fl validator.FieldLevel) bool {
		return rv.catalog == nil || rv.catalog.HasCourse(fl.Field().String())
	})

	rv.v.RegisterStructValidation(recordDateRules, models.ApplicationRecord{})
	return rv
}

func recordDateRules(sl validator.StructLevel) {
	r := sl.Current().Interface().(models.ApplicationRecord)

	switch {
	case r.Status.Finalised() && r.FinalisedDate == nil:
		sl.ReportError(r.FinalisedDate, "finalisedDate", "FinalisedDate", tagFinalisedRequired, "")
	case r.Status == models.StatusUnderProcess && r.FinalisedDate != nil:
		sl.ReportError(r.FinalisedDate, "finalisedDate", "FinalisedDate", tagFinalisedForbidden, "")
	}

	if r.LodgeDate.IsZero() {
		return
	}
	if r.FinalisedDate != nil && r.FinalisedDate.Before(r.LodgeDate) {
		sl.ReportError(r.FinalisedDate, "finalisedDate", "FinalisedDate", tagNotBeforeLodge, "")
	}
	if r.FurtherAssessmentDate != nil && r.FurtherAssessmentDate.Before(r.LodgeDate) {
		sl.ReportError(r.FurtherAssessmentDate, "furtherAssessmentDate", "FurtherAssessmentDate", tagNotBeforeLodge, "")
	}
}

// Validate returns nil or a VALIDATION_FAILED StandardError listing every broken rule.
func (rv *RecordValidator) Validate(r models.ApplicationRecord) error {
	fields := rv.FieldErrors(r)
	if len(fields) == 0 {
		return nil
	}
	return apperrors.NewValidationError(fields)
}

// ValidateAll checks every record of an imported list. Field names are prefixed with the
// record's position, e.g. "records[2].finalisedDate".
func (rv *RecordValidator) ValidateAll(records []models.ApplicationRecord) error {
	var fields []apperrors.FieldError
	for i, r := range records {
		for _, fe := range rv.FieldErrors(r) {
			fe.Field = "records[" + strconv.Itoa(i) + "]." + fe.Field
			fields = append(fields, fe)
		}
	}
	if len(fields) == 0 {
		return nil
	}
	return apperrors.NewValidationError(fields)
}

// FieldErrors lists the broken rules of r, in field order.
func (rv *RecordValidator) FieldErrors(r models.ApplicationRecord) []apperrors.FieldError {
	err := rv.v.Struct(r)
	if err == nil {
		return nil
	}
	ves, ok := err.(validator.ValidationErrors)
	if !ok {
		return []apperrors.FieldError{{Field: "record", Message: err.Error(), Code: CodeInvalid}}
	}

	out := make([]apperrors.FieldError, 0, len(ves))
	for _, fe := range ves {
		out = append(out, toFieldError(fe))
	}
	return out
}

func toFieldError(fe validator.FieldError) apperrors.FieldError {
	field := fe.Field()
	msg, code := "", CodeInvalid

	switch fe.Tag() {
	case "required", "notblank":
		msg, code = requiredMessages[field], CodeRequired
		if msg == "" {
			msg = field + " is required"
		}
	case "university":
		msg, code = "University is not in the catalog", CodeNotInCatalog
	case "course":
		msg, code = "Course is not in the catalog", CodeNotInCatalog
	case "status":
		msg, code = "Status must be one of Under Process, Granted, Refused", CodeInvalidEnum
	case tagFinalisedRequired:
		msg, code = "Finalised date is required for Granted/Refused status", CodeRequired
	case tagFinalisedForbidden:
		msg, code = "Finalised date must be empty while the application is Under Process", CodeForbidden
	case tagNotBeforeLodge:
		code = CodeDateBeforeLodge
		if field == "finalisedDate" {
			msg = "Finalised date cannot be before lodge date"
		} else {
			msg = "Assessment date cannot be before lodge date"
		}
	default:
		msg = "failed rule " + fe.Tag()
	}

	return apperrors.FieldError{Field: field, Message: msg, Code: code}
}

var requiredMessages = map[string]string{
	"id":            "ID is required",
	"lodgeDate":     "Lodge date is required",
	"applicantName": "Applicant name is required",
	"university":    "University is required",
	"course":        "Course is required",
	"status":        "Status is required",
}
