package event

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fundflow/fundflow/internal/utils"
	"github.com/fundflow/fundflow/pkg/budget"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupHandlerTest() (*EventHandler, *budget.StubBudgetRepo) {
	budgets := budget.NewStubBudgetRepo(decimal.NewFromInt(1000))
	clock := &utils.MockClock{FixedNow: time.Date(2026, time.March, 14, 10, 0, 0, 0, time.UTC)}
	service := NewEventService(NewStubEventRepository(budgets), nil, clock, time.UTC)
	return NewEventHandler(service), budgets
}

func postEvent(t *testing.T, handler *EventHandler, body string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	handler.CreateEvent(w, httptest.NewRequest(http.MethodPost, "/api/event", bytes.NewBufferString(body)))
	return w
}

func TestEventHandler_CreateEvent(t *testing.T) {
	// given
	handler, budgets := setupHandlerTest()

	// when
	w := postEvent(t, handler, `{"name":"Dinner","date":"2026-03-20","start":"7:00 pm","end":"9:30 PM","alloted":"45.5","budgetLimit":"300"}`)

	// then
	require.Equal(t, http.StatusCreated, w.Code)
	var dto EventDTO
	require.NoError(t, json.NewDecoder(w.Body).Decode(&dto))
	assert.Equal(t, int64(1), dto.Id)
	assert.Equal(t, "2026-03-20", dto.Date)
	assert.Equal(t, "7:00 PM", dto.Start.String())
	assert.Equal(t, "9:30 PM", dto.End.String())
	assert.Equal(t, "45.5", dto.CurrentBudget.String())
	assert.Equal(t, "954.5", budgets.Snapshot().String())
}

func TestEventHandler_CreateEventBadInput(t *testing.T) {
	handler, budgets := setupHandlerTest()

	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"name":`},
		{"bad date", `{"name":"Dinner","date":"20/03/2026","alloted":"1"}`},
		{"bad time", `{"name":"Dinner","date":"2026-03-20","start":"25:00 AM","alloted":"1"}`},
		{"missing name", `{"name":"","date":"2026-03-20","alloted":"1"}`},
		{"negative alloted", `{"name":"Dinner","date":"2026-03-20","alloted":"-1"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postEvent(t, handler, tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
	assert.Equal(t, "1000", budgets.Snapshot().String())
}

func TestEventHandler_GetTodaysEvents(t *testing.T) {
	// given
	handler, _ := setupHandlerTest()
	postEvent(t, handler, `{"name":"Lunch","date":"2026-03-14","start":"1:00 PM","alloted":"1"}`)
	postEvent(t, handler, `{"name":"Coffee","date":"2026-03-14","start":"8:30 AM","alloted":"1"}`)
	postEvent(t, handler, `{"name":"Next week","date":"2026-03-21","alloted":"1"}`)
	w := httptest.NewRecorder()

	// when
	handler.GetTodaysEvents(w, httptest.NewRequest(http.MethodGet, "/api/event/today", nil))

	// then
	require.Equal(t, http.StatusOK, w.Code)
	var dto TodaysEventsDTO
	require.NoError(t, json.NewDecoder(w.Body).Decode(&dto))
	assert.Equal(t, 2, dto.TotalCount)
	require.Len(t, dto.Events, 2)
	assert.Equal(t, "Coffee", dto.Events[0].Name)
	assert.Equal(t, "Lunch", dto.Events[1].Name)
}

func TestEventHandler_UpcomingAndHistory(t *testing.T) {
	handler, _ := setupHandlerTest()
	postEvent(t, handler, `{"name":"Past","date":"2026-03-01","alloted":"1"}`)
	postEvent(t, handler, `{"name":"Future","date":"2026-03-30","alloted":"1"}`)

	get := func(handle http.HandlerFunc, target string) []EventDTO {
		w := httptest.NewRecorder()
		handle(w, httptest.NewRequest(http.MethodGet, target, nil))
		require.Equal(t, http.StatusOK, w.Code)
		var dtos []EventDTO
		require.NoError(t, json.NewDecoder(w.Body).Decode(&dtos))
		return dtos
	}

	upcoming := get(handler.GetUpcomingEvents, "/api/event/upcoming?month=3")
	history := get(handler.GetEventHistory, "/api/event/history?month=3")
	outOfRange := get(handler.GetUpcomingEvents, "/api/event/upcoming?month=13")
	otherYear := get(handler.GetUpcomingEvents, "/api/event/upcoming?month=3&year=2027")

	require.Len(t, upcoming, 1)
	assert.Equal(t, "Future", upcoming[0].Name)
	require.Len(t, history, 1)
	assert.Equal(t, "Past", history[0].Name)
	assert.Empty(t, outOfRange)
	assert.Empty(t, otherYear)
}

func TestEventHandler_UpcomingInvalidQuery(t *testing.T) {
	handler, _ := setupHandlerTest()

	for _, target := range []string{"/api/event/upcoming", "/api/event/upcoming?month=march", "/api/event/upcoming?month=3&year=next"} {
		w := httptest.NewRecorder()
		handler.GetUpcomingEvents(w, httptest.NewRequest(http.MethodGet, target, nil))
		assert.Equal(t, http.StatusBadRequest, w.Code, target)
	}
}

func TestEventHandler_UpdateEvent(t *testing.T) {
	// given
	handler, budgets := setupHandlerTest()
	postEvent(t, handler, `{"name":"Concert","date":"2026-03-20","start":"8:00 PM","alloted":"80"}`)
	req := httptest.NewRequest(http.MethodPut, "/api/event/1", bytes.NewBufferString(`{"name":"Concert","date":"2026-03-21","start":"7:00 PM"}`))
	req = mux.SetURLVars(req, map[string]string{"eventId": "1"})
	w := httptest.NewRecorder()

	// when
	handler.UpdateEvent(w, req)

	// then
	require.Equal(t, http.StatusOK, w.Code)
	var dto EventDTO
	require.NoError(t, json.NewDecoder(w.Body).Decode(&dto))
	assert.Equal(t, "2026-03-21", dto.Date)
	assert.Equal(t, "7:00 PM", dto.Start.String())
	assert.Equal(t, "80", dto.Alloted.String())
	assert.Equal(t, "920", budgets.Snapshot().String())
}

func TestEventHandler_MissingEvent(t *testing.T) {
	handler, _ := setupHandlerTest()

	update := mux.SetURLVars(
		httptest.NewRequest(http.MethodPut, "/api/event/9", bytes.NewBufferString(`{"name":"x","date":"2026-03-21"}`)),
		map[string]string{"eventId": "9"},
	)
	w := httptest.NewRecorder()
	handler.UpdateEvent(w, update)
	assert.Equal(t, http.StatusNotFound, w.Code)

	del := mux.SetURLVars(httptest.NewRequest(http.MethodDelete, "/api/event/9", nil), map[string]string{"eventId": "9"})
	w = httptest.NewRecorder()
	handler.DeleteEvent(w, del)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestEventHandler_InvalidEventId(t *testing.T) {
	handler, _ := setupHandlerTest()
	req := mux.SetURLVars(httptest.NewRequest(http.MethodDelete, "/api/event/abc", nil), map[string]string{"eventId": "abc"})
	w := httptest.NewRecorder()

	handler.DeleteEvent(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestEventHandler_DeleteEvent(t *testing.T) {
	// given
	handler, budgets := setupHandlerTest()
	postEvent(t, handler, `{"name":"Trip","date":"2026-03-20","alloted":"300"}`)
	require.Equal(t, "700", budgets.Snapshot().String())
	req := mux.SetURLVars(httptest.NewRequest(http.MethodDelete, "/api/event/1", nil), map[string]string{"eventId": "1"})
	w := httptest.NewRecorder()

	// when
	handler.DeleteEvent(w, req)

	// then
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "1000", budgets.Snapshot().String())
}

func TestEventHandler_GetAll(t *testing.T) {
	handler, _ := setupHandlerTest()
	postEvent(t, handler, `{"name":"B","date":"2026-03-21","alloted":"1"}`)
	postEvent(t, handler, `{"name":"A","date":"2026-03-20","alloted":"1"}`)
	w := httptest.NewRecorder()

	handler.GetAll(w, httptest.NewRequest(http.MethodGet, "/api/event", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var dtos []EventDTO
	require.NoError(t, json.NewDecoder(w.Body).Decode(&dtos))
	require.Len(t, dtos, 2)
	assert.Equal(t, "A", dtos[0].Name)
}
