package models

// DeletePolicy описывает, что происходит с дочерними записями при удалении родителя.
type DeletePolicy int

const (
	// Cascade: дочерние записи принадлежат родителю и удаляются вместе с ним.
	Cascade DeletePolicy = iota
	// Restrict: удаление родителя запрещено, пока есть ссылки.
	Restrict
)

type Relation struct {
	Parent string
	Child  string
	Policy DeletePolicy
}

var (
	EventGames = Relation{Parent: "events", Child: "games", Policy: Cascade}
	// Посещаемость без игрока смысла не имеет, поэтому тоже каскад.
	PlayerAttendance = Relation{Parent: "players", Child: "attendance", Policy: Cascade}
)
