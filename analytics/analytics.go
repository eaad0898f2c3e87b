// Package analytics считает лучшие слоты для тренировок по недельной сетке доступности.
// Все функции чистые: без ввода-вывода и без ошибок.
package analytics

import (
	"math"
	"slices"

	"github.com/Dosada05/team-schedule/models"
)

// MaxRankedSlots: сколько лучших слотов возвращает RankTimeSlots.
const MaxRankedSlots = 5

// SlotRanking: один слот (день × блок) и кто в него попадает.
type SlotRanking struct {
	Day        models.Day                `json:"day"`
	TimeSlot   models.AvailabilityOption `json:"timeSlot"`
	Count      int                       `json:"availableCount"`
	Players    []string                  `json:"availablePlayers"`
	Percentage float64                   `json:"percentage"`
}

// DayCount: день и число игроков, указавших любое конкретное время.
type DayCount struct {
	Day   models.Day `json:"day"`
	Count int        `json:"count"`
}

// Summary: то, что отдаёт /api/schedule/analytics.
type Summary struct {
	BestTimeSlots    []SlotRanking `json:"bestTimeSlots"`
	MostAvailableDay *DayCount     `json:"mostAvailableDay"`
}

// RankTimeSlots перебирает все пары день × слот, считает совпадения
// (значение равно слоту или "All blocks") и возвращает до пяти лучших с count > 0.
// Сортировка стабильная: при равенстве сохраняется порядок обхода.
func RankTimeSlots(players []models.PlayerAvailability, slots []models.AvailabilityOption) []SlotRanking {
	if len(players) == 0 {
		return []SlotRanking{}
	}

	all := make([]SlotRanking, 0, models.DaysInWeek*len(slots))
	for _, day := range models.Days() {
		for _, slot := range slots {
			names := make([]string, 0, len(players))
			for _, p := range players {
				if p.Availability.On(day).Covers(slot) {
					names = append(names, p.PlayerName)
				}
			}
			all = append(all, SlotRanking{
				Day:        day,
				TimeSlot:   slot,
				Count:      len(names),
				Players:    names,
				Percentage: percentage(len(names), len(players)),
			})
		}
	}

	slices.SortStableFunc(all, func(a, b SlotRanking) int {
		return b.Count - a.Count
	})

	ranked := make([]SlotRanking, 0, MaxRankedSlots)
	for _, s := range all {
		if s.Count == 0 || len(ranked) == MaxRankedSlots {
			break
		}
		ranked = append(ranked, s)
	}
	return ranked
}

// MostAvailableDay возвращает день с максимумом "занятых" ячеек (всё, кроме unknown и cannot).
// При равенстве побеждает более ранний день. ok == false для пустого списка.
func MostAvailableDay(players []models.PlayerAvailability) (DayCount, bool) {
	if len(players) == 0 {
		return DayCount{}, false
	}

	best := DayCount{Day: models.Monday, Count: -1}
	for _, day := range models.Days() {
		count := 0
		for _, p := range players {
			if p.Availability.On(day).Committed() {
				count++
			}
		}
		if count > best.Count {
			best = DayCount{Day: day, Count: count}
		}
	}
	return best, true
}

// Summarize собирает обе метрики по стандартным блокам.
func Summarize(players []models.PlayerAvailability) Summary {
	summary := Summary{BestTimeSlots: RankTimeSlots(players, models.TimeBlocks)}
	if day, ok := MostAvailableDay(players); ok {
		summary.MostAvailableDay = &day
	}
	return summary
}

func percentage(count, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(count)/float64(total)*100*100) / 100
}
