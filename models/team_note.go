package models

// TeamNote: запись в общем журнале команды. Журнал только дополняется.
type TeamNote struct {
	ID         string `json:"id" db:"id"`
	SenderName string `json:"senderName" db:"sender_name" validate:"required"`
	Message    string `json:"message" db:"message" validate:"required"`
	Timestamp  string `json:"timestamp" db:"timestamp" validate:"required"`
}
