package models

const SettingSpreadsheetID = "google_spreadsheet_id"

type Setting struct {
	Key   string `json:"key" db:"key" validate:"required"`
	Value string `json:"value" db:"value"`
}
