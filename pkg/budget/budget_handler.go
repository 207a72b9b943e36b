package budget

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/fundflow/fundflow/internal/rest"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

type BudgetHandler struct {
	budgetService BudgetService
}

type BudgetDTO struct {
	CurrentBudget decimal.Decimal `json:"currentBudget"`
	UpdatedAt     *time.Time      `json:"updatedAt,omitempty"`
}

type AdjustmentDTO struct {
	Delta decimal.Decimal `json:"delta"`
}

func NewBudgetHandler(budgetService BudgetService) *BudgetHandler {
	return &BudgetHandler{budgetService}
}

func (h *BudgetHandler) GetCurrent(w http.ResponseWriter, r *http.Request) {
	log.Trace("Getting current budget")
	b, err := h.budgetService.GetCurrentBudget(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	rest.WriteJSON(w, http.StatusOK, budgetToDTO(b))
}

func (h *BudgetHandler) SetCurrent(w http.ResponseWriter, r *http.Request) {
	var dto BudgetDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid budget", err.Error())
		return
	}
	b, err := h.budgetService.SetCurrentBudget(r.Context(), dto.CurrentBudget)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	rest.WriteJSON(w, http.StatusOK, budgetToDTO(b))
}

func (h *BudgetHandler) Adjust(w http.ResponseWriter, r *http.Request) {
	var dto AdjustmentDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid adjustment", err.Error())
		return
	}
	b, err := h.budgetService.AdjustBudget(r.Context(), dto.Delta)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	rest.WriteJSON(w, http.StatusOK, budgetToDTO(b))
}

func budgetToDTO(b Budget) BudgetDTO {
	dto := BudgetDTO{CurrentBudget: b.Current}
	if !b.UpdatedAt.IsZero() {
		updatedAt := b.UpdatedAt
		dto.UpdatedAt = &updatedAt
	}
	return dto
}
