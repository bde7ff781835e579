package http

import (
	"encoding/csv"
	"errors"
	"net/http"
	"strconv"
	"time"

	"kakeibo/internal/core"
	appLog "kakeibo/internal/log"
)

type indexPage struct {
	Authenticated     bool
	Summary           core.DisplaySummary
	MaxCategoryLength int
}

type historyPage struct {
	Authenticated bool
	Filter        string
	Rows          []historyRow
	Totals        historyTotals
}

// historyTotals are the whole-ledger figures shown under the history table.
type historyTotals struct {
	Income  string
	Expense string
	Net     string
}

// summaryResponse is the body of GET /api/summary.
type summaryResponse struct {
	Authenticated bool `json:"authenticated"`
	core.DisplaySummary
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	scope, err := s.openLedger(r)
	if err != nil {
		s.pageError(w, r, appLog.OpSummary, err)
		return
	}
	defer s.closeScope(ctx, scope)

	summary, err := s.service.Summary(ctx, scope)
	if err != nil {
		s.pageError(w, r, appLog.OpSummary, err)
		return
	}

	s.render(w, r, http.StatusOK, "index.html", indexPage{
		Authenticated:     scope.authenticated(),
		Summary:           summary.Display(),
		MaxCategoryLength: core.MaxCategoryLength,
	})
}

// handleAdd answers with the JSON envelope in every case. Input errors keep
// status 200; only infrastructure failures change it.
func (s *Server) handleAdd(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := appLog.FromContext(ctx).WithComponent(appLog.ComponentHTTP)

	form, err := ParseAddForm(w, r)
	if err != nil {
		logger.WarnContext(ctx, "Invalid add request", appLog.FieldError, err)
		AddFailure(http.StatusBadRequest, MsgBadRequest).Write(w)
		return
	}

	scope, err := s.openLedger(r)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to open ledger",
			appLog.FieldOperation, appLog.OpRecord,
			appLog.FieldError, err)
		AddFailure(http.StatusInternalServerError, MsgSaveFailed).Write(w)
		return
	}
	defer s.closeScope(ctx, scope)

	result, err := s.service.Add(ctx, scope, scope.accountID, form.Type, form.Category, form.Amount)
	if err != nil {
		var verr *core.ValidationError
		if errors.As(err, &verr) {
			AddFailure(http.StatusOK, verr.Message).Write(w)
			return
		}
		logger.ErrorContext(ctx, "Failed to add transaction",
			appLog.FieldOperation, appLog.OpRecord,
			appLog.FieldAuthenticated, scope.authenticated(),
			appLog.FieldError, err)
		AddFailure(http.StatusInternalServerError, MsgSaveFailed).Write(w)
		return
	}

	if err := scope.commit(w, r); err != nil {
		logger.ErrorContext(ctx, "Failed to save guest ledger",
			appLog.FieldOperation, appLog.OpRecord,
			appLog.FieldError, err)
		AddFailure(http.StatusInternalServerError, MsgSessionError).Write(w)
		return
	}

	s.countRecorded()
	AddSuccess(result.Summary).Write(w)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	filter, err := typeFilter(r)
	if err != nil {
		http.Error(w, MsgBadRequest, http.StatusBadRequest)
		return
	}

	scope, err := s.openLedger(r)
	if err != nil {
		s.pageError(w, r, appLog.OpHistory, err)
		return
	}
	defer s.closeScope(ctx, scope)

	items, err := s.service.History(ctx, scope)
	if err != nil {
		s.pageError(w, r, appLog.OpHistory, err)
		return
	}

	totals := core.TotalsOf(items)
	s.render(w, r, http.StatusOK, "history.html", historyPage{
		Authenticated: scope.authenticated(),
		Filter:        string(filter),
		Rows:          historyRows(core.FilterByType(items, filter)),
		Totals: historyTotals{
			Income:  core.FormatDisplay(totals.Income),
			Expense: core.FormatDisplay(totals.Expense),
			Net:     core.FormatDisplay(totals.Net()),
		},
	})
}

func (s *Server) handleAPISummary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	scope, err := s.openLedger(r)
	if err != nil {
		s.apiError(w, r, appLog.OpSummary, err)
		return
	}
	defer s.closeScope(ctx, scope)

	summary, err := s.service.Summary(ctx, scope)
	if err != nil {
		s.apiError(w, r, appLog.OpSummary, err)
		return
	}

	NewJSONResponse().Payload(summaryResponse{
		Authenticated:  scope.authenticated(),
		DisplaySummary: summary.Display(),
	}).Write(w)
}

func (s *Server) handleAPIHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	filter, err := typeFilter(r)
	if err != nil {
		NewJSONResponse().
			Status(http.StatusBadRequest).
			Payload(map[string]string{"error": core.MsgInvalidType}).
			Write(w)
		return
	}

	scope, err := s.openLedger(r)
	if err != nil {
		s.apiError(w, r, appLog.OpHistory, err)
		return
	}
	defer s.closeScope(ctx, scope)

	items, err := s.service.History(ctx, scope)
	if err != nil {
		s.apiError(w, r, appLog.OpHistory, err)
		return
	}

	NewJSONResponse().Payload(apiTransactions(core.FilterByType(items, filter))).Write(w)
}

// handleExportCSV streams the active ledger in history order, optionally
// restricted to one type.
func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	filter, err := typeFilter(r)
	if err != nil {
		http.Error(w, MsgBadRequest, http.StatusBadRequest)
		return
	}

	scope, err := s.openLedger(r)
	if err != nil {
		s.pageError(w, r, appLog.OpExport, err)
		return
	}
	defer s.closeScope(ctx, scope)

	items, err := s.service.History(ctx, scope)
	if err != nil {
		s.pageError(w, r, appLog.OpExport, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="kakeibo.csv"`)
	w.WriteHeader(http.StatusOK)

	cw := csv.NewWriter(w)
	_ = cw.Write([]string{"id", "type", "category", "amount", "date"})
	for _, tx := range core.FilterByType(items, filter) {
		id := ""
		if tx.ID > 0 {
			id = strconv.FormatInt(tx.ID, 10)
		}
		_ = cw.Write([]string{
			id,
			string(tx.Type),
			tx.Category,
			tx.Amount.StringFixed(core.AmountPlaces),
			tx.Date.Format(time.RFC3339),
		})
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		appLog.FromContext(ctx).ErrorContext(ctx, "Failed to write CSV export",
			appLog.FieldOperation, appLog.OpExport,
			appLog.FieldError, err)
	}
}

func (s *Server) pageError(w http.ResponseWriter, r *http.Request, op string, err error) {
	ctx := r.Context()
	appLog.FromContext(ctx).WithComponent(appLog.ComponentHTTP).
		ErrorContext(ctx, "Request failed", appLog.FieldOperation, op, appLog.FieldError, err)
	http.Error(w, MsgPageFailed, http.StatusInternalServerError)
}

func (s *Server) apiError(w http.ResponseWriter, r *http.Request, op string, err error) {
	ctx := r.Context()
	appLog.FromContext(ctx).WithComponent(appLog.ComponentHTTP).
		ErrorContext(ctx, "Request failed", appLog.FieldOperation, op, appLog.FieldError, err)
	NewJSONResponse().
		Status(http.StatusInternalServerError).
		Payload(map[string]string{"error": MsgPageFailed}).
		Write(w)
}
