package models

// Schedule: недельное расписание, однозначно определяется парой (WeekStartDate, WeekEndDate).
// Ключи свободные строки: клиент может держать одно "вечное" расписание под константным ключом.
type Schedule struct {
	ID            string       `json:"id" db:"id"`
	WeekStartDate string       `json:"weekStartDate" db:"week_start_date" validate:"required"`
	WeekEndDate   string       `json:"weekEndDate" db:"week_end_date" validate:"required"`
	ScheduleData  ScheduleData `json:"scheduleData" db:"schedule_data"`
	GoogleSheetID *string      `json:"googleSheetId" db:"google_sheet_id"`
}
