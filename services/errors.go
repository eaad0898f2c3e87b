package services

import "errors"

// Общие ошибки, используемые в разных сервисах и маппинге HTTP.
var (
	// Не найдено (404)
	ErrPlayerNotFound           = errors.New("player not found")
	ErrEventNotFound            = errors.New("event not found")
	ErrGameNotFound             = errors.New("game not found")
	ErrAttendanceNotFound       = errors.New("attendance record not found")
	ErrTeamNoteNotFound         = errors.New("team note not found")
	ErrScheduleNotFound         = errors.New("schedule not found")
	ErrObjectNotFound           = errors.New("object not found")
	ErrSpreadsheetNotConfigured = errors.New("spreadsheet is not configured")

	// Удаление запрещено политикой связи (Restrict)
	ErrPlayerInUse = errors.New("player still has attendance records")
	ErrEventInUse  = errors.New("event still has games")

	// Сбой внешней системы: таблица или объектное хранилище
	ErrExternalService = errors.New("external service failure")
)
