package handlers

import (
	"net/http"

	"github.com/Dosada05/team-schedule/services"
)

type ScheduleHandler struct {
	scheduleService services.ScheduleService
}

func NewScheduleHandler(ss services.ScheduleService) *ScheduleHandler {
	return &ScheduleHandler{scheduleService: ss}
}

// GetSchedule отдаёт расписание недели; при отсутствии локальной копии оно подтягивается из таблицы.
func (h *ScheduleHandler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	start, end, err := weekQuery(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	schedule, err := h.scheduleService.GetSchedule(r.Context(), start, end)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, schedule)
}

func (h *ScheduleHandler) SaveSchedule(w http.ResponseWriter, r *http.Request) {
	var input services.SaveScheduleInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	schedule, err := h.scheduleService.SaveSchedule(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, schedule)
}

func (h *ScheduleHandler) GetAnalytics(w http.ResponseWriter, r *http.Request) {
	start, end, err := weekQuery(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	summary, err := h.scheduleService.GetAnalytics(r.Context(), start, end)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, summary)
}

func (h *ScheduleHandler) GetSpreadsheetInfo(w http.ResponseWriter, r *http.Request) {
	info, err := h.scheduleService.GetSpreadsheetInfo(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, info)
}
