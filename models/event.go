package models

type EventType string

const (
	EventTournament EventType = "Tournament"
	EventScrim      EventType = "Scrim"
	EventVODReview  EventType = "VOD Review"
)

var EventTypes = []EventType{EventTournament, EventScrim, EventVODReview}

type EventResult string

const (
	ResultWin     EventResult = "win"
	ResultLoss    EventResult = "loss"
	ResultDraw    EventResult = "draw"
	ResultPending EventResult = "pending"
)

var EventResults = []EventResult{ResultWin, ResultLoss, ResultDraw, ResultPending}

// Event: турнир, скрим или разбор записей.
type Event struct {
	ID           string       `json:"id" db:"id"`
	Title        string       `json:"title" db:"title" validate:"required"`
	EventType    EventType    `json:"eventType" db:"event_type" validate:"required,event_type"`
	Date         string       `json:"date" db:"date" validate:"required,calendar_date"`
	Time         *string      `json:"time" db:"time" validate:"omitempty,clock_time"`
	Description  *string      `json:"description" db:"description"`
	Result       *EventResult `json:"result" db:"result" validate:"omitempty,event_result"`
	OpponentName *string      `json:"opponentName" db:"opponent_name"`
	Notes        *string      `json:"notes" db:"notes"`
}

// Game: отдельная карта/матч внутри события.
type Game struct {
	ID             string  `json:"id" db:"id"`
	EventID        string  `json:"eventId" db:"event_id" validate:"required"`
	GameCode       string  `json:"gameCode" db:"game_code" validate:"required"`
	Score          string  `json:"score" db:"score" validate:"required"`
	ScoreboardPath *string `json:"scoreboardPath" db:"scoreboard_path" validate:"omitempty,startswith=/objects/"`
}

// EventRecord: сводка результатов по всем событиям.
type EventRecord struct {
	Wins    int `json:"wins"`
	Losses  int `json:"losses"`
	Draws   int `json:"draws"`
	Pending int `json:"pending"`
	Total   int `json:"total"`
}
