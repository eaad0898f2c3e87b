package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
)

// Day: день недели в сетке доступности. Порядок Monday..Sunday канонический.
type Day int

const (
	Monday Day = iota
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

const DaysInWeek = 7

var dayNames = [DaysInWeek]string{
	"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday",
}

// Days возвращает все дни в каноническом порядке.
func Days() []Day {
	return []Day{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}
}

func (d Day) String() string {
	if d < Monday || d > Sunday {
		return fmt.Sprintf("Day(%d)", int(d))
	}
	return dayNames[d]
}

func (d Day) MarshalText() ([]byte, error) {
	if d < Monday || d > Sunday {
		return nil, fmt.Errorf("invalid day %d", int(d))
	}
	return []byte(dayNames[d]), nil
}

func (d *Day) UnmarshalText(text []byte) error {
	day, ok := ParseDay(string(text))
	if !ok {
		return fmt.Errorf("unknown day %q", string(text))
	}
	*d = day
	return nil
}

// ParseDay принимает английское имя дня ("Monday").
func ParseDay(name string) (Day, bool) {
	for i, n := range dayNames {
		if n == name {
			return Day(i), true
		}
	}
	return 0, false
}

// AvailabilityOption: значение ячейки сетки (игрок × день).
type AvailabilityOption string

const (
	AvailabilityUnknown   AvailabilityOption = "unknown"
	AvailabilityEarly     AvailabilityOption = "18:00-20:00 CEST"
	AvailabilityLate      AvailabilityOption = "20:00-22:00 CEST"
	AvailabilityAllBlocks AvailabilityOption = "All blocks"
	AvailabilityCannot    AvailabilityOption = "cannot"
)

// AvailabilityOptions перечисляет допустимые значения в порядке выпадающего списка.
var AvailabilityOptions = []AvailabilityOption{
	AvailabilityUnknown,
	AvailabilityEarly,
	AvailabilityLate,
	AvailabilityAllBlocks,
	AvailabilityCannot,
}

// TimeBlocks: конкретные двухчасовые блоки, по которым строится аналитика.
var TimeBlocks = []AvailabilityOption{AvailabilityEarly, AvailabilityLate}

func (o AvailabilityOption) IsValid() bool {
	for _, opt := range AvailabilityOptions {
		if o == opt {
			return true
		}
	}
	return false
}

// Covers сообщает, закрывает ли значение указанный блок ("All blocks" закрывает любой).
func (o AvailabilityOption) Covers(block AvailabilityOption) bool {
	return o == block || o == AvailabilityAllBlocks
}

// Committed: игрок указал хоть какое-то конкретное время.
func (o AvailabilityOption) Committed() bool {
	return o != AvailabilityUnknown && o != AvailabilityCannot && o != ""
}

// WeekAvailability: тотальное отображение день → значение.
// Пустая ячейка читается как "unknown"; в JSON всегда выводятся все 7 дней.
type WeekAvailability [DaysInWeek]AvailabilityOption

// NewWeekAvailability строит неделю из частичного набора; отсутствующие дни становятся "unknown".
func NewWeekAvailability(values map[Day]AvailabilityOption) WeekAvailability {
	var w WeekAvailability
	for _, d := range Days() {
		w[d] = AvailabilityUnknown
		if v, ok := values[d]; ok && v != "" {
			w[d] = v
		}
	}
	return w
}

func (w WeekAvailability) On(d Day) AvailabilityOption {
	if w[d] == "" {
		return AvailabilityUnknown
	}
	return w[d]
}

func (w *WeekAvailability) Set(d Day, o AvailabilityOption) {
	w[d] = o
}

func (w WeekAvailability) MarshalJSON() ([]byte, error) {
	out := make(map[string]AvailabilityOption, DaysInWeek)
	for _, d := range Days() {
		out[d.String()] = w.On(d)
	}
	return json.Marshal(out)
}

func (w *WeekAvailability) UnmarshalJSON(data []byte) error {
	var raw map[string]AvailabilityOption
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	values := make(map[Day]AvailabilityOption, len(raw))
	for name, v := range raw {
		d, ok := ParseDay(name)
		if !ok {
			return fmt.Errorf("availability contains unknown day %q", name)
		}
		values[d] = v
	}
	*w = NewWeekAvailability(values)
	return nil
}

// PlayerAvailability: строка недельного расписания одного игрока.
type PlayerAvailability struct {
	PlayerID     string           `json:"playerId" validate:"required"`
	PlayerName   string           `json:"playerName" validate:"required"`
	Role         Role             `json:"role" validate:"required,role"`
	Availability WeekAvailability `json:"availability"`
}

// ScheduleData хранится в колонке schedule_data (jsonb).
type ScheduleData struct {
	Players []PlayerAvailability `json:"players" validate:"dive"`
}

func (d ScheduleData) MarshalJSON() ([]byte, error) {
	type alias ScheduleData
	if d.Players == nil {
		d.Players = []PlayerAvailability{}
	}
	return json.Marshal(alias(d))
}

// Value отдаёт JSON строкой: lib/pq кодирует []byte как bytea, что jsonb не принимает.
func (d ScheduleData) Value() (driver.Value, error) {
	b, err := json.Marshal(d)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (d *ScheduleData) Scan(src interface{}) error {
	var b []byte
	switch v := src.(type) {
	case []byte:
		b = v
	case string:
		b = []byte(v)
	case nil:
		*d = ScheduleData{Players: []PlayerAvailability{}}
		return nil
	default:
		return errors.New("schedule_data: unsupported column type")
	}
	return json.Unmarshal(b, d)
}
