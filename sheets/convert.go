package sheets

import (
	"fmt"

	"github.com/Dosada05/team-schedule/models"
)

const (
	// Данные игроков начинаются с 4-й строки: заголовок, пустая строка, шапка.
	headerRows = 3
	// Role, Players + 7 дней.
	columnCount = 2 + models.DaysInWeek
)

// TabName: имя вкладки для недели.
func TabName(weekStart string) string {
	return "Week_" + weekStart
}

// Title: текст первой строки вкладки.
func Title(weekStart, weekEnd string) string {
	return fmt.Sprintf("Team Schedule %s - %s", weekStart, weekEnd)
}

// HeaderRow: шапка таблицы (3-я строка).
func HeaderRow() []string {
	row := make([]string, 0, columnCount)
	row = append(row, "Role", "Players")
	for _, d := range models.Days() {
		row = append(row, d.String())
	}
	return row
}

// ToSheetRows раскладывает расписание в прямоугольную таблицу строк.
// Игроки группируются по ролям в порядке приоритета набора; роли вне набора идут следом
// в порядке первого появления. Внутри роли порядок входного списка сохраняется.
func ToSheetRows(data models.ScheduleData, weekStart, weekEnd string, roles models.RoleSet) [][]string {
	rows := make([][]string, 0, headerRows+len(data.Players))
	rows = append(rows,
		[]string{Title(weekStart, weekEnd)},
		[]string{},
		HeaderRow(),
	)

	for _, p := range groupByRole(data.Players, roles) {
		row := make([]string, 0, columnCount)
		row = append(row, string(p.Role), p.PlayerName)
		for _, d := range models.Days() {
			row = append(row, string(p.Availability.On(d)))
		}
		rows = append(rows, row)
	}
	return rows
}

func groupByRole(players []models.PlayerAvailability, roles models.RoleSet) []models.PlayerAvailability {
	order := make([]models.Role, 0, len(roles.Roles))
	order = append(order, roles.Roles...)

	groups := make(map[models.Role][]models.PlayerAvailability)
	for _, p := range players {
		if _, seen := groups[p.Role]; !seen && !roles.Contains(p.Role) {
			order = append(order, p.Role)
		}
		groups[p.Role] = append(groups[p.Role], p)
	}

	out := make([]models.PlayerAvailability, 0, len(players))
	for _, role := range order {
		out = append(out, groups[role]...)
	}
	return out
}

// ImportedPlayer: строка, прочитанная из таблицы. Своего идентификатора у неё нет:
// Row: позиция в конкретном импорте и между импортами не стабильна.
type ImportedPlayer struct {
	Row          int
	Role         models.Role
	PlayerName   string
	Availability models.WeekAvailability
}

// PositionalID: синтетический идентификатор, который получает строка при сохранении.
func (p ImportedPlayer) PositionalID() string {
	return fmt.Sprintf("player-%d", p.Row)
}

// PlayerAvailability переводит импортированную строку в запись расписания
// с позиционным идентификатором.
func (p ImportedPlayer) PlayerAvailability() models.PlayerAvailability {
	return models.PlayerAvailability{
		PlayerID:     p.PositionalID(),
		PlayerName:   p.PlayerName,
		Role:         p.Role,
		Availability: p.Availability,
	}
}

// FromSheetRows восстанавливает игроков из таблицы. Меньше четырёх строк, пустой результат.
// Строка учитывается, если в ней хотя бы две ячейки; пустые ячейки заменяются значениями по умолчанию.
func FromSheetRows(rows [][]string, roles models.RoleSet) []ImportedPlayer {
	players := []ImportedPlayer{}
	if len(rows) <= headerRows {
		return players
	}

	for i := headerRows; i < len(rows); i++ {
		row := rows[i]
		if len(row) < 2 {
			continue
		}

		p := ImportedPlayer{
			Row:        i,
			Role:       models.Role(cell(row, 0)),
			PlayerName: cell(row, 1),
		}
		if p.Role == "" {
			p.Role = roles.Fallback
		}
		if p.PlayerName == "" {
			p.PlayerName = fmt.Sprintf("Player %d", i)
		}

		values := make(map[models.Day]models.AvailabilityOption, models.DaysInWeek)
		for _, d := range models.Days() {
			values[d] = models.AvailabilityOption(cell(row, 2+int(d)))
		}
		p.Availability = models.NewWeekAvailability(values)

		players = append(players, p)
	}
	return players
}

// ToScheduleData собирает импортированные строки в данные расписания.
func ToScheduleData(players []ImportedPlayer) models.ScheduleData {
	data := models.ScheduleData{Players: make([]models.PlayerAvailability, 0, len(players))}
	for _, p := range players {
		data.Players = append(data.Players, p.PlayerAvailability())
	}
	return data
}

func cell(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}
