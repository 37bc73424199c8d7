package http

import (
	"errors"
	"net/http"

	"expensetracker/internal/core"
	"expensetracker/internal/export"
	"expensetracker/internal/filter"
	applog "expensetracker/internal/log"
	"expensetracker/internal/services"
)

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	criteria := filter.ParseCriteria(q.Get("min_amount"), q.Get("category"))
	view := s.svc.List(criteria)
	writeJSON(w, http.StatusOK, toListResponse(view.Items, view.HasRecords))
}

func (s *Server) handleGetExpense(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	e, ok := s.svc.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, core.ErrNotFound.Error())
		return
	}
	writeJSON(w, http.StatusOK, toExpenseResponse(e))
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	p := NewRequestBodyParser(w, r)
	if err := p.Parse(); err != nil {
		s.badRequest(w, r, err)
		return
	}

	e, err := s.svc.CreateExpense(r.Context(), p.ExpenseInput())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toExpenseResponse(e))
}

func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	p := NewRequestBodyParser(w, r)
	if err := p.Parse(); err != nil {
		s.badRequest(w, r, err)
		return
	}

	e, err := s.svc.UpdateExpense(r.Context(), id, p.ExpenseInput())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toExpenseResponse(e))
}

// handleDeleteExpense answers 204 whether or not the record existed.
func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.svc.DeleteExpense(r.Context(), id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, toSummaryResponse(s.svc.Overview()))
}

func (s *Server) handleSetBudget(w http.ResponseWriter, r *http.Request) {
	p := NewRequestBodyParser(w, r)
	if err := p.Parse(); err != nil {
		s.badRequest(w, r, err)
		return
	}
	s.svc.SetBudget(r.Context(), p.Get("budget"))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("confirm") != "true" {
		writeError(w, http.StatusBadRequest, "reset requires confirm=true")
		return
	}
	s.svc.Reset(r.Context())
	applog.FromContext(r.Context()).InfoContext(r.Context(), "Store reset",
		applog.FieldOperation, applog.OpReset)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.Filename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(s.svc.CSV()))
}

func (s *Server) handleExportSheets(w http.ResponseWriter, r *http.Request) {
	if !s.svc.SheetsEnabled() {
		writeError(w, http.StatusServiceUnavailable, services.ErrSheetsDisabled.Error())
		return
	}
	ref, err := s.svc.ExportToSheet(r.Context())
	switch {
	case errors.Is(err, services.ErrSheetsDisabled):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	case err != nil:
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Sheets export failed", "error", err)
		writeError(w, http.StatusBadGateway, "sheets export failed")
	default:
		writeJSON(w, http.StatusOK, exportResponse{Ref: ref})
	}
}

func (s *Server) badRequest(w http.ResponseWriter, r *http.Request, err error) {
	applog.FromContext(r.Context()).WarnContext(r.Context(), "Invalid request body", "error", err)
	writeError(w, http.StatusBadRequest, "invalid request body")
}

// writeServiceError maps domain errors to 422 and 404, anything else to 500.
func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var ve *core.ValidationError
	switch {
	case errors.As(err, &ve):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: ve.Error(), Field: ve.Field})
	case errors.Is(err, core.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Request failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
