package models

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// FieldError: одна ошибка валидации; Field указан в JSON-нотации.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError возвращается при любом невалидном входе (HTTP 400).
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

// Err возвращает nil, если ошибок не накопилось.
func (e *ValidationError) Err() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}

// NewValidationError: ошибка по одному полю.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: []FieldError{{Field: field, Message: message}}}
}

// Validator проверяет сущности против закрытых перечислений и активного набора ролей.
type Validator struct {
	validate *validator.Validate
	roles    RoleSet
}

func NewValidator(roles RoleSet) *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	mustRegister(v, "role", func(fl validator.FieldLevel) bool {
		return roles.Contains(Role(fl.Field().String()))
	})
	mustRegister(v, "availability_option", func(fl validator.FieldLevel) bool {
		return AvailabilityOption(fl.Field().String()).IsValid()
	})
	mustRegister(v, "event_type", func(fl validator.FieldLevel) bool {
		return oneOf(EventType(fl.Field().String()), EventTypes)
	})
	mustRegister(v, "event_result", func(fl validator.FieldLevel) bool {
		return oneOf(EventResult(fl.Field().String()), EventResults)
	})
	mustRegister(v, "attendance_status", func(fl validator.FieldLevel) bool {
		return oneOf(AttendanceStatus(fl.Field().String()), AttendanceStatuses)
	})
	mustRegister(v, "calendar_date", func(fl validator.FieldLevel) bool {
		_, err := time.Parse(DateLayout, fl.Field().String())
		return err == nil
	})
	mustRegister(v, "clock_time", func(fl validator.FieldLevel) bool {
		_, err := time.Parse(TimeLayout, fl.Field().String())
		return err == nil
	})

	return &Validator{validate: v, roles: roles}
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register validation %q: %v", tag, err))
	}
}

func oneOf[T comparable](value T, allowed []T) bool {
	for _, a := range allowed {
		if a == value {
			return true
		}
	}
	return false
}

// Roles: активный набор ролей.
func (v *Validator) Roles() RoleSet {
	return v.roles
}

// Struct проверяет теги validate у сущности.
func (v *Validator) Struct(s interface{}) error {
	verr := &ValidationError{}
	v.collect(verr, s)
	return verr.Err()
}

// Schedule дополнительно проверяет каждую ячейку сетки доступности.
func (v *Validator) Schedule(s *Schedule) error {
	verr := &ValidationError{}
	v.collect(verr, s)
	for i, p := range s.ScheduleData.Players {
		for _, d := range Days() {
			if opt := p.Availability.On(d); !opt.IsValid() {
				verr.Add(
					fmt.Sprintf("scheduleData.players[%d].availability.%s", i, d),
					"must be one of: "+joinValues(AvailabilityOptions),
				)
			}
		}
	}
	return verr.Err()
}

func (v *Validator) collect(verr *ValidationError, s interface{}) {
	err := v.validate.Struct(s)
	if err == nil {
		return
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		// InvalidValidationError: в Struct передали не структуру.
		panic(err)
	}
	for _, fe := range fieldErrs {
		verr.Add(fieldPath(fe.Namespace()), v.message(fe))
	}
}

// fieldPath отрезает имя корневого типа: "Event.title" -> "title".
func fieldPath(namespace string) string {
	if i := strings.IndexByte(namespace, '.'); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}

func (v *Validator) message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "role":
		return "must be one of: " + joinValues(v.roles.Roles)
	case "availability_option":
		return "must be one of: " + joinValues(AvailabilityOptions)
	case "event_type":
		return "must be one of: " + joinValues(EventTypes)
	case "event_result":
		return "must be one of: " + joinValues(EventResults)
	case "attendance_status":
		return "must be one of: " + joinValues(AttendanceStatuses)
	case "calendar_date":
		return "must be a date in YYYY-MM-DD format"
	case "clock_time":
		return "must be a time in HH:MM format"
	case "startswith":
		return "must start with " + fe.Param()
	default:
		return "failed on the '" + fe.Tag() + "' rule"
	}
}

func joinValues[T ~string](values []T) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = string(v)
	}
	return strings.Join(parts, ", ")
}
