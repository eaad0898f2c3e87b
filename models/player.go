package models

// Player: участник состава (справочник), не путать с PlayerAvailability.
type Player struct {
	ID       string  `json:"id" db:"id"`
	Name     string  `json:"name" db:"name" validate:"required"`
	Role     Role    `json:"role" db:"role" validate:"required,role"`
	FullName *string `json:"fullName" db:"full_name"`
	Phone    *string `json:"phone" db:"phone"`
	Snapchat *string `json:"snapchat" db:"snapchat"`
}

type AttendanceStatus string

const (
	AttendanceAttended AttendanceStatus = "attended"
	AttendanceLate     AttendanceStatus = "late"
	AttendanceAbsent   AttendanceStatus = "absent"
)

var AttendanceStatuses = []AttendanceStatus{AttendanceAttended, AttendanceLate, AttendanceAbsent}

type Attendance struct {
	ID       string           `json:"id" db:"id"`
	PlayerID string           `json:"playerId" db:"player_id" validate:"required"`
	Date     string           `json:"date" db:"date" validate:"required,calendar_date"`
	Status   AttendanceStatus `json:"status" db:"status" validate:"required,attendance_status"`
	Notes    *string          `json:"notes" db:"notes"`
	Ringer   *string          `json:"ringer" db:"ringer"`
}

// AttendanceSummary: счётчики посещаемости одного игрока.
type AttendanceSummary struct {
	PlayerID   string `json:"playerId"`
	PlayerName string `json:"playerName"`
	Attended   int    `json:"attended"`
	Late       int    `json:"late"`
	Absent     int    `json:"absent"`
	Total      int    `json:"total"`
}
