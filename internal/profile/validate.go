package profile

import (
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/jonathan/profile-builder/internal/types"
)

// ValidationError maps wire field names to human-readable messages.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// AsValidationError unwraps err into a *ValidationError if it is one.
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	// Registration only fails for empty tags or nil funcs.
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	_ = v.RegisterValidation("httpurl", func(fl validator.FieldLevel) bool {
		return IsHTTPURL(fl.Field().String())
	})
	v.RegisterStructValidation(experienceRules, types.Experience{})
	v.RegisterStructValidation(educationRules, types.Education{})
	v.RegisterStructValidation(certificationRules, types.Certification{})
	return v
}

// IsHTTPURL reports whether s is an absolute http or https URL with a host.
func IsHTTPURL(s string) bool {
	u, err := url.Parse(strings.TrimSpace(s))
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func experienceRules(sl validator.StructLevel) {
	e := sl.Current().Interface().(types.Experience)
	if e.StartDate.IsZero() {
		sl.ReportError(e.StartDate, "startDate", "StartDate", "required", "")
		return
	}
	if !e.IsCurrentPosition && e.EndDate != nil && !e.EndDate.IsZero() && e.EndDate.Before(e.StartDate) {
		sl.ReportError(e.EndDate, "endDate", "EndDate", "afterstart", "")
	}
}

func educationRules(sl validator.StructLevel) {
	e := sl.Current().Interface().(types.Education)
	if e.EndYear != nil && e.StartYear != 0 && *e.EndYear < e.StartYear {
		sl.ReportError(e.EndYear, "endYear", "EndYear", "afterstartyear", "")
	}
}

func certificationRules(sl validator.StructLevel) {
	c := sl.Current().Interface().(types.Certification)
	if c.IssueDate.IsZero() {
		sl.ReportError(c.IssueDate, "issueDate", "IssueDate", "required", "")
		return
	}
	if c.ExpirationDate != nil && !c.ExpirationDate.IsZero() && c.ExpirationDate.Before(c.IssueDate) {
		sl.ReportError(c.ExpirationDate, "expirationDate", "ExpirationDate", "afterissue", "")
	}
}

// ValidateStruct validates a request body against its validate tags. labels
// maps JSON field names to display labels; unlisted fields use their name.
func ValidateStruct(v any, labels map[string]string) error {
	return structErrors(v, func(name string) string {
		if l, ok := labels[name]; ok {
			return l
		}
		return name
	})
}

// structErrors runs the validator over v and converts failures to a
// *ValidationError, using label to name each field.
func structErrors(v any, label func(string) string) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("validation failed: %w", err)
	}

	out := &ValidationError{Fields: make(map[string]string, len(fieldErrs))}
	for _, fe := range fieldErrs {
		name := fe.Field()
		if _, seen := out.Fields[name]; seen {
			continue
		}
		out.Fields[name] = message(fe, label(baseField(name)))
	}
	return out
}

// baseField strips a slice index ("technologies[2]" -> "technologies").
func baseField(name string) string {
	if i := strings.IndexByte(name, '['); i >= 0 {
		return name[:i]
	}
	return name
}

func message(fe validator.FieldError, label string) string {
	isText := fe.Kind() == reflect.String
	switch fe.Tag() {
	case "required", "notblank":
		return label + " is required"
	case "min":
		if isText {
			return fmt.Sprintf("%s must be at least %s characters", label, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", label, fe.Param())
	case "max":
		if isText {
			return fmt.Sprintf("%s must be at most %s characters", label, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", label, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", label, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "httpurl":
		return label + " must be a valid http(s) URL"
	case "email":
		return label + " must be a valid email address"
	case "afterstart":
		return label + " cannot be before the start date"
	case "afterstartyear":
		return label + " cannot be before the start year"
	case "afterissue":
		return label + " cannot be before the issue date"
	default:
		return label + " is invalid"
	}
}
