package event

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/fundflow/fundflow/internal/rest"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

type EventDTO struct {
	Id            int64           `json:"id"`
	Name          string          `json:"name"`
	Date          string          `json:"date"`
	Start         TimeOfDay       `json:"start"`
	End           TimeOfDay       `json:"end"`
	Alloted       decimal.Decimal `json:"alloted"`
	BudgetLimit   decimal.Decimal `json:"budgetLimit"`
	CurrentBudget decimal.Decimal `json:"currentBudget"`
}

type NewEventDTO struct {
	Name        string          `json:"name"`
	Date        string          `json:"date"`
	Start       TimeOfDay       `json:"start"`
	End         TimeOfDay       `json:"end"`
	Alloted     decimal.Decimal `json:"alloted"`
	BudgetLimit decimal.Decimal `json:"budgetLimit"`
}

type EventUpdateDTO struct {
	Name  string    `json:"name"`
	Date  string    `json:"date"`
	Start TimeOfDay `json:"start"`
	End   TimeOfDay `json:"end"`
}

type TodaysEventsDTO struct {
	TotalCount int        `json:"totalCount"`
	Events     []EventDTO `json:"events"`
}

type EventHandler struct {
	eventService EventService
}

func NewEventHandler(eventService EventService) *EventHandler {
	return &EventHandler{eventService}
}

func (h *EventHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var dto NewEventDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body format", err.Error())
		return
	}
	date, err := ParseDate(dto.Date)
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid date format", err.Error())
		return
	}
	log.Debugf("New event request: %+v", dto)

	created, err := h.eventService.AddEvent(r.Context(), NewEvent{
		Name:        dto.Name,
		Date:        date,
		Start:       dto.Start,
		End:         dto.End,
		Alloted:     dto.Alloted,
		BudgetLimit: dto.BudgetLimit,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusCreated, EventToDTO(created))
}

func (h *EventHandler) GetTodaysEvents(w http.ResponseWriter, r *http.Request) {
	log.Trace("Getting today's events")
	today, err := h.eventService.GetTodaysEvents(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, TodaysEventsDTO{
		TotalCount: today.TotalCount,
		Events:     eventsToDTO(today.Events),
	})
}

func (h *EventHandler) GetUpcomingEvents(w http.ResponseWriter, r *http.Request) {
	h.getEventsInMonth(w, r, Upcoming)
}

func (h *EventHandler) GetEventHistory(w http.ResponseWriter, r *http.Request) {
	h.getEventsInMonth(w, r, History)
}

func (h *EventHandler) getEventsInMonth(w http.ResponseWriter, r *http.Request, period Period) {
	month, err := strconv.Atoi(r.URL.Query().Get("month"))
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid month", "'month' must be a number between 1 and 12")
		return
	}

	var events []Event
	if yearString := r.URL.Query().Get("year"); yearString != "" {
		year, err := strconv.Atoi(yearString)
		if err != nil {
			rest.WriteError(w, http.StatusBadRequest, "Invalid year", "'year' must be a number")
			return
		}
		events, err = h.eventService.GetEventsInMonth(r.Context(), year, month, period)
		if err != nil {
			writeServiceError(w, err)
			return
		}
	} else if period == History {
		events, err = h.eventService.GetEventHistory(r.Context(), month)
	} else {
		events, err = h.eventService.GetEventsForMonth(r.Context(), month)
	}
	if err != nil {
		writeServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, eventsToDTO(events))
}

func (h *EventHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	events, err := h.eventService.GetAll(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, eventsToDTO(events))
}

func (h *EventHandler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := eventIdFromPath(w, r)
	if !ok {
		return
	}
	var dto EventUpdateDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body format", err.Error())
		return
	}
	date, err := ParseDate(dto.Date)
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid date format", err.Error())
		return
	}

	updated, err := h.eventService.EditEvent(r.Context(), id, EventUpdate{
		Name:  dto.Name,
		Date:  date,
		Start: dto.Start,
		End:   dto.End,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, EventToDTO(updated))
}

func (h *EventHandler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := eventIdFromPath(w, r)
	if !ok {
		return
	}
	if _, err := h.eventService.DeleteEvent(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func eventIdFromPath(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["eventId"], 10, 64)
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid event id", "'eventId' must be a number")
		return 0, false
	}
	return id, true
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidEvent):
		rest.WriteError(w, http.StatusBadRequest, "Invalid event", err.Error())
	case errors.Is(err, ErrEventNotFound):
		rest.WriteError(w, http.StatusNotFound, "Event not found", err.Error())
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func EventToDTO(e Event) EventDTO {
	return EventDTO{
		Id:            e.Id,
		Name:          e.Name,
		Date:          e.Date.Format(DateLayout),
		Start:         e.Start,
		End:           e.End,
		Alloted:       e.Alloted,
		BudgetLimit:   e.BudgetLimit,
		CurrentBudget: e.CurrentBudget,
	}
}

func eventsToDTO(events []Event) []EventDTO {
	dtos := make([]EventDTO, 0, len(events))
	for _, e := range events {
		dtos = append(dtos, EventToDTO(e))
	}
	return dtos
}
