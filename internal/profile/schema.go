// Package profile describes the editable profile sections: the fields of each
// entity, how they are parsed from form input, how they are validated, and
// where they live in the REST API.
package profile

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/jonathan/profile-builder/internal/types"
)

// ErrUnknownField is returned when a field name is not part of a schema.
var ErrUnknownField = errors.New("unknown field")

// Field is one editable attribute of an entity, addressed by its wire name.
type Field[T any] struct {
	Name     string
	Label    string
	Required bool
	Get      func(*T) string
	Set      func(*T, string) error
}

// Schema describes one profile section.
type Schema[T any] struct {
	// Section is the URL segment under /api/users/{userId}/.
	Section string
	Title   string
	Fields  []Field[T]

	// Record exposes the identity fields embedded in T.
	Record func(*T) *types.Record
	// Normalize trims input and applies derived rules before validation and save.
	Normalize func(*T)
	// Summary renders a one-line description for listings.
	Summary func(*T) string
}

// Endpoint returns the collection URL path for a user's section.
func (s *Schema[T]) Endpoint(userID uuid.UUID) string {
	return fmt.Sprintf("/api/users/%s/%s", userID, s.Section)
}

// ItemEndpoint returns the URL path of a single entity.
func (s *Schema[T]) ItemEndpoint(userID, id uuid.UUID) string {
	return fmt.Sprintf("/api/users/%s/%s/%s", userID, s.Section, id)
}

// Lookup finds a field by wire name.
func (s *Schema[T]) Lookup(name string) (*Field[T], bool) {
	for i := range s.Fields {
		if s.Fields[i].Name == name {
			return &s.Fields[i], true
		}
	}
	return nil, false
}

// Label returns the display label for a field, falling back to its name.
func (s *Schema[T]) Label(name string) string {
	if f, ok := s.Lookup(name); ok {
		return f.Label
	}
	return name
}

// Set parses value into the named field of item.
func (s *Schema[T]) Set(item *T, name, value string) error {
	f, ok := s.Lookup(name)
	if !ok {
		return fmt.Errorf("%w %q in %s", ErrUnknownField, name, s.Section)
	}
	if err := f.Set(item, value); err != nil {
		return &ValidationError{Fields: map[string]string{name: fmt.Sprintf("%s: %v", f.Label, err)}}
	}
	return nil
}

// ID returns the entity id.
func (s *Schema[T]) ID(item *T) uuid.UUID {
	return s.Record(item).ID
}

// Validate checks item against every rule of the section without modifying it.
// It returns nil or a *ValidationError.
func (s *Schema[T]) Validate(item *T) error {
	candidate := *item
	if s.Normalize != nil {
		s.Normalize(&candidate)
	}
	return structErrors(&candidate, s.Label)
}

// ValidateField returns the message for the named field, or "" when it is valid.
func (s *Schema[T]) ValidateField(item *T, name string) string {
	err := s.Validate(item)
	ve, ok := AsValidationError(err)
	if !ok {
		return ""
	}
	if msg, ok := ve.Fields[name]; ok {
		return msg
	}
	for key, msg := range ve.Fields {
		if baseField(key) == name {
			return msg
		}
	}
	return ""
}

// Prepare normalizes item in place and validates it, ready to be stored.
func (s *Schema[T]) Prepare(item *T) error {
	if s.Normalize != nil {
		s.Normalize(item)
	}
	return structErrors(item, s.Label)
}

// Field constructors. Each derives Get and Set from a pointer into T so
// section definitions stay declarative.

func textField[T any](name, label string, required bool, ptr func(*T) *string) Field[T] {
	return Field[T]{
		Name:     name,
		Label:    label,
		Required: required,
		Get:      func(t *T) string { return *ptr(t) },
		Set: func(t *T, v string) error {
			*ptr(t) = v
			return nil
		},
	}
}

func optionalTextField[T any](name, label string, ptr func(*T) **string) Field[T] {
	return Field[T]{
		Name:  name,
		Label: label,
		Get: func(t *T) string {
			if p := *ptr(t); p != nil {
				return *p
			}
			return ""
		},
		Set: func(t *T, v string) error {
			*ptr(t) = types.StringPtr(strings.TrimSpace(v))
			return nil
		},
	}
}

func dateField[T any](name, label string, ptr func(*T) *types.Date) Field[T] {
	return Field[T]{
		Name:     name,
		Label:    label,
		Required: true,
		Get:      func(t *T) string { return ptr(t).String() },
		Set: func(t *T, v string) error {
			if strings.TrimSpace(v) == "" {
				*ptr(t) = types.Date{}
				return nil
			}
			d, err := types.ParseDate(v)
			if err != nil {
				return err
			}
			*ptr(t) = d
			return nil
		},
	}
}

func optionalDateField[T any](name, label string, ptr func(*T) **types.Date) Field[T] {
	return Field[T]{
		Name:  name,
		Label: label,
		Get: func(t *T) string {
			if d := *ptr(t); d != nil {
				return d.String()
			}
			return ""
		},
		Set: func(t *T, v string) error {
			d, err := types.ParseOptionalDate(v)
			if err != nil {
				return err
			}
			*ptr(t) = d
			return nil
		},
	}
}

func intField[T any](name, label string, required bool, ptr func(*T) *int) Field[T] {
	return Field[T]{
		Name:     name,
		Label:    label,
		Required: required,
		Get: func(t *T) string {
			if n := *ptr(t); n != 0 {
				return strconv.Itoa(n)
			}
			return ""
		},
		Set: func(t *T, v string) error {
			v = strings.TrimSpace(v)
			if v == "" {
				*ptr(t) = 0
				return nil
			}
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("%q is not a whole number", v)
			}
			*ptr(t) = n
			return nil
		},
	}
}

func optionalIntField[T any](name, label string, ptr func(*T) **int) Field[T] {
	return Field[T]{
		Name:  name,
		Label: label,
		Get: func(t *T) string {
			if p := *ptr(t); p != nil {
				return strconv.Itoa(*p)
			}
			return ""
		},
		Set: func(t *T, v string) error {
			v = strings.TrimSpace(v)
			if v == "" {
				*ptr(t) = nil
				return nil
			}
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("%q is not a whole number", v)
			}
			*ptr(t) = &n
			return nil
		},
	}
}

func boolField[T any](name, label string, ptr func(*T) *bool) Field[T] {
	return Field[T]{
		Name:  name,
		Label: label,
		Get:   func(t *T) string { return strconv.FormatBool(*ptr(t)) },
		Set: func(t *T, v string) error {
			v = strings.TrimSpace(v)
			if v == "" {
				*ptr(t) = false
				return nil
			}
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("%q is not true or false", v)
			}
			*ptr(t) = b
			return nil
		},
	}
}

func listField[T any](name, label string, ptr func(*T) *[]string) Field[T] {
	return Field[T]{
		Name:  name,
		Label: label,
		Get:   func(t *T) string { return strings.Join(*ptr(t), ", ") },
		Set: func(t *T, v string) error {
			var items []string
			for _, part := range strings.Split(v, ",") {
				if part = strings.TrimSpace(part); part != "" {
					items = append(items, part)
				}
			}
			*ptr(t) = items
			return nil
		},
	}
}

func trim(fields ...*string) {
	for _, f := range fields {
		*f = strings.TrimSpace(*f)
	}
}

// trimOptional trims an optional string, replacing it with a fresh pointer
// (nil when blank) so a shallow copy never aliases the caller's value.
func trimOptional(p **string) {
	if *p == nil {
		return
	}
	*p = types.StringPtr(strings.TrimSpace(**p))
}
