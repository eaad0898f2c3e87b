package services

import (
	"strings"

	"github.com/google/uuid"
)

func newID() string {
	return uuid.NewString()
}

// trimmedOrNil: пустая после обрезки строка хранится как NULL.
func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

// mergeString и mergeOptional применяют частичное обновление: nil означает "поле не передано".
func mergeString(dst *string, src *string) {
	if src != nil {
		*dst = strings.TrimSpace(*src)
	}
}

func mergeOptional(dst **string, src *string) {
	if src != nil {
		*dst = trimmedOrNil(src)
	}
}
