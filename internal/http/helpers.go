package http

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"kakeibo/internal/auth"
	"kakeibo/internal/core"
	"kakeibo/internal/ledger"
	appLog "kakeibo/internal/log"
)

// historyDateLayout is how both ledgers show dates in the history view.
const historyDateLayout = "2006-01-02 15:04:05"

// ledgerScope is the ledger selected for one request: the store for an
// authenticated session, the session's guest ledger otherwise.
type ledgerScope struct {
	ledger.Ledger
	session   *auth.Session
	guest     *ledger.GuestLedger
	accountID string
	release   ledger.Release
}

// openLedger resolves identity and acquires the matching ledger. The caller
// must call closeScope on every path once err is nil.
func (s *Server) openLedger(r *http.Request) (*ledgerScope, error) {
	ctx := r.Context()
	sess := s.gate.Session(r)

	if sess.Authenticated() {
		l, release, err := s.ledgers.Open(ctx)
		if err != nil {
			return nil, err
		}
		return &ledgerScope{Ledger: l, session: sess, accountID: sess.AccountID(), release: release}, nil
	}

	g, err := sess.GuestLedger()
	if err != nil {
		appLog.FromContext(ctx).WithComponent(appLog.ComponentLedger).
			WarnContext(ctx, "Ignoring unreadable guest ledger", appLog.FieldError, err)
	}
	if s.clock != nil {
		g.WithClock(s.clock, time.Local)
	}
	return &ledgerScope{Ledger: g, session: sess, guest: g, release: ledger.NopRelease}, nil
}

func (sc *ledgerScope) authenticated() bool {
	return sc.guest == nil
}

// commit writes a changed guest ledger back to the session cookie. It must
// run before the response header is written.
func (sc *ledgerScope) commit(w http.ResponseWriter, r *http.Request) error {
	if sc.guest == nil || !sc.guest.Dirty() {
		return nil
	}
	if err := sc.session.SetGuestLedger(sc.guest); err != nil {
		return err
	}
	return sc.session.Save(w, r)
}

func (s *Server) closeScope(ctx context.Context, sc *ledgerScope) {
	if err := sc.release(); err != nil {
		appLog.FromContext(ctx).WithComponent(appLog.ComponentStorage).
			ErrorContext(ctx, "Failed to release ledger", appLog.FieldError, err)
	}
}

// typeFilter reads the optional ?type= history filter.
func typeFilter(r *http.Request) (core.TransactionType, error) {
	return core.ParseTypeFilter(r.URL.Query().Get("type"))
}

// historyRow is a transaction formatted for the history view.
type historyRow struct {
	ID        string
	Type      string
	TypeLabel string
	Category  string
	Amount    string
	Date      string
}

func historyRows(items []core.Transaction) []historyRow {
	rows := make([]historyRow, 0, len(items))
	for _, tx := range items {
		row := historyRow{
			Type:      string(tx.Type),
			TypeLabel: tx.Type.Label(),
			Category:  tx.Category,
			Amount:    core.FormatAmount(tx.Amount),
			Date:      tx.Date.In(time.Local).Format(historyDateLayout),
		}
		if tx.ID > 0 {
			row.ID = strconv.FormatInt(tx.ID, 10)
		}
		rows = append(rows, row)
	}
	return rows
}

// apiTransaction is the JSON shape of a transaction. Guest entries have no id.
type apiTransaction struct {
	ID       int64     `json:"id,omitempty"`
	Type     string    `json:"type"`
	Category string    `json:"category"`
	Amount   string    `json:"amount"`
	Date     time.Time `json:"date"`
}

func apiTransactions(items []core.Transaction) []apiTransaction {
	out := make([]apiTransaction, 0, len(items))
	for _, tx := range items {
		out = append(out, apiTransaction{
			ID:       tx.ID,
			Type:     string(tx.Type),
			Category: tx.Category,
			Amount:   tx.Amount.StringFixed(core.AmountPlaces),
			Date:     tx.Date,
		})
	}
	return out
}
