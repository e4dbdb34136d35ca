package schema

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/phambaophuc/image-export/internal/models"
)

// FolderPathField is only checked at export time.
const FolderPathField = "exportLocation.folderPath"

type Violation struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

type Result struct {
	Violations []Violation `json:"violations,omitempty"`
}

func (r Result) Valid() bool {
	return len(r.Violations) == 0
}

// Has reports whether field has a violation.
func (r Result) Has(field string) bool {
	for _, v := range r.Violations {
		if v.Field == field {
			return true
		}
	}
	return false
}

// Err returns a *ValidationError for a failed result and nil otherwise.
func (r Result) Err() error {
	if r.Valid() {
		return nil
	}
	return &ValidationError{Violations: r.Violations}
}

type ValidationError struct {
	Violations []Violation
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, v.Field+" "+v.Reason)
	}
	return "invalid export settings: " + strings.Join(parts, "; ")
}

type Schema struct {
	validate *validator.Validate
}

func New() *Schema {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// min/max alone let +Inf through a lower bound
	if err := v.RegisterValidation("finite", func(fl validator.FieldLevel) bool {
		f := fl.Field().Float()
		return !math.IsNaN(f) && !math.IsInf(f, 0)
	}); err != nil {
		panic(fmt.Sprintf("schema: register finite rule: %v", err))
	}

	return &Schema{validate: v}
}

// Validate checks every field, folder path included. It is the gate in
// front of an export request.
func (s *Schema) Validate(settings models.ExportSettings) Result {
	err := s.validate.Struct(settings)
	if err == nil {
		return Result{}
	}

	var invalid *validator.InvalidValidationError
	if errors.As(err, &invalid) {
		panic(fmt.Sprintf("schema: %v", err))
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		panic(fmt.Sprintf("schema: unexpected validator error: %v", err))
	}

	violations := make([]Violation, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		violations = append(violations, Violation{
			Field:  fieldPath(fe),
			Reason: reason(fe),
		})
	}
	return Result{Violations: violations}
}

// ValidateDraft is Validate without the folder path, which is only chosen
// when the export starts.
func (s *Schema) ValidateDraft(settings models.ExportSettings) Result {
	full := s.Validate(settings)
	if full.Valid() {
		return full
	}

	var kept []Violation
	for _, v := range full.Violations {
		if v.Field != FolderPathField {
			kept = append(kept, v)
		}
	}
	return Result{Violations: kept}
}

// fieldPath drops the root type name from the json namespace.
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func reason(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "oneof":
		return fmt.Sprintf("must be one of [%s]", fe.Param())
	case "min":
		return "must be >= " + fe.Param()
	case "max":
		return "must be <= " + fe.Param()
	case "finite":
		return "must be a finite number"
	default:
		return "failed " + fe.Tag() + " check"
	}
}
