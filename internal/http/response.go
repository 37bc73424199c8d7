package http

import (
	"encoding/json"
	"net/http"

	"expensetracker/internal/core"
)

type expenseResponse struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Amount      string `json:"amount"`
	AmountCents int64  `json:"amount_cents"`
	Category    string `json:"category"`
	Notes       string `json:"notes"`
}

type listResponse struct {
	Items      []expenseResponse `json:"items"`
	HasRecords bool              `json:"has_records"`
}

type categoryResponse struct {
	Category    string `json:"category"`
	Amount      string `json:"amount"`
	AmountCents int64  `json:"amount_cents"`
}

type summaryResponse struct {
	Count          int                `json:"count"`
	Total          string             `json:"total"`
	TotalCents     int64              `json:"total_cents"`
	ByCategory     []categoryResponse `json:"by_category"`
	Budget         string             `json:"budget"`
	HasBudget      bool               `json:"has_budget"`
	Remaining      *string            `json:"remaining,omitempty"`
	RemainingCents *int64             `json:"remaining_cents,omitempty"`
	OverBudget     bool               `json:"over_budget"`
}

type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

type exportResponse struct {
	Ref string `json:"ref"`
}

func toExpenseResponse(e core.Expense) expenseResponse {
	return expenseResponse{
		ID:          e.ID,
		Name:        e.Name,
		Amount:      e.Amount.Fixed(),
		AmountCents: e.Amount.Cents,
		Category:    e.Category.String(),
		Notes:       e.Notes,
	}
}

func toListResponse(items []core.Expense, hasRecords bool) listResponse {
	out := listResponse{
		Items:      make([]expenseResponse, 0, len(items)),
		HasRecords: hasRecords,
	}
	for _, e := range items {
		out.Items = append(out.Items, toExpenseResponse(e))
	}
	return out
}

func toSummaryResponse(ov core.Overview) summaryResponse {
	out := summaryResponse{
		Count:      ov.Count,
		Total:      ov.Total.Fixed(),
		TotalCents: ov.Total.Cents,
		ByCategory: make([]categoryResponse, 0, len(ov.ByCategory)),
		Budget:     ov.Budget.Raw,
		HasBudget:  ov.HasBudget,
		OverBudget: ov.OverBudget,
	}
	for _, c := range ov.ByCategory {
		out.ByCategory = append(out.ByCategory, categoryResponse{
			Category:    c.Category.String(),
			Amount:      c.Amount.Fixed(),
			AmountCents: c.Amount.Cents,
		})
	}
	if ov.HasBudget {
		remaining := ov.Remaining.Fixed()
		cents := ov.Remaining.Cents
		out.Remaining = &remaining
		out.RemainingCents = &cents
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}
