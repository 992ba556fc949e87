// src/handlers/history_handler.go
package handlers

import (
	"net/http"
	"regexp"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/catearacil/facturas/src/logger"
	"github.com/catearacil/facturas/src/models"
	"github.com/catearacil/facturas/src/services"
	"github.com/catearacil/facturas/src/utils"
)

var monthPattern = regexp.MustCompile(`^\d{4}-\d{2}$`)

type HistoryHandler struct {
	historyService services.HistoryService
}

func NewHistoryHandler(service services.HistoryService) *HistoryHandler {
	return &HistoryHandler{
		historyService: service,
	}
}

// HandleListRecords returns every processing record, newest first.
func (h *HistoryHandler) HandleListRecords(w http.ResponseWriter, r *http.Request) {
	records, err := h.historyService.ListRecords()
	if err != nil {
		logger.FromContext(r.Context()).Error("Failed to list history records", "error", err)
		utils.SendJSONError(w, "failed to load history", http.StatusInternalServerError)
		return
	}
	if records == nil {
		records = []models.HistoryRecord{}
	}
	utils.SendJSON(w, records, http.StatusOK)
}

// HandleMonthSummaries returns the history grouped by calendar month with
// per-month totals.
func (h *HistoryHandler) HandleMonthSummaries(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.historyService.MonthSummaries()
	if err != nil {
		logger.FromContext(r.Context()).Error("Failed to build month summaries", "error", err)
		utils.SendJSONError(w, "failed to load history summaries", http.StatusInternalServerError)
		return
	}
	if summaries == nil {
		summaries = []models.MonthSummary{}
	}
	utils.SendJSON(w, summaries, http.StatusOK)
}

// HandleDeleteRecord removes a single processing record.
func (h *HistoryHandler) HandleDeleteRecord(w http.ResponseWriter, r *http.Request) {
	idStr := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		utils.SendJSONError(w, "invalid history record id", http.StatusBadRequest)
		return
	}

	deleted, err := h.historyService.DeleteRecord(id)
	if err != nil {
		logger.FromContext(r.Context()).Error("Failed to delete history record", "id", id, "error", err)
		utils.SendJSONError(w, "failed to delete history record", http.StatusInternalServerError)
		return
	}
	if !deleted {
		utils.SendJSONError(w, "history record not found", http.StatusNotFound)
		return
	}
	utils.SendJSON(w, map[string]any{"deleted": true, "id": id}, http.StatusOK)
}

// HandleDeleteMonth removes every record of one calendar month ("2026-08").
func (h *HistoryHandler) HandleDeleteMonth(w http.ResponseWriter, r *http.Request) {
	month := chi.URLParam(r, "month")
	if !monthPattern.MatchString(month) {
		utils.SendJSONError(w, "invalid month, expected YYYY-MM", http.StatusBadRequest)
		return
	}

	count, err := h.historyService.DeleteMonth(month)
	if err != nil {
		logger.FromContext(r.Context()).Error("Failed to delete history month", "month", month, "error", err)
		utils.SendJSONError(w, "failed to delete history month", http.StatusInternalServerError)
		return
	}
	utils.SendJSON(w, map[string]any{"month": month, "deleted": count}, http.StatusOK)
}

// HandleNumberingStatus reports the last used and next invoice sequence.
func (h *HistoryHandler) HandleNumberingStatus(w http.ResponseWriter, r *http.Request) {
	status, err := h.historyService.NumberingStatus()
	if err != nil {
		logger.FromContext(r.Context()).Error("Failed to compute numbering status", "error", err)
		utils.SendJSONError(w, "failed to compute numbering status", http.StatusInternalServerError)
		return
	}
	utils.SendJSON(w, status, http.StatusOK)
}
