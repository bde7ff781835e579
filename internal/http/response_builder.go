// Package http provides HTTP server and handler implementations.
//
// This file implements the builder for JSON responses, including the
// add-transaction result envelope read by static/js/main.js.

package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"kakeibo/internal/core"
)

// Messages for failures that are not input validation.
const (
	MsgBadRequest   = "エラー: リクエストの形式が正しくありません。"
	MsgSaveFailed   = "エラー: 取引を保存できませんでした。しばらくしてから再度お試しください。"
	MsgRateLimited  = "エラー: リクエストが多すぎます。しばらくしてから再度お試しください。"
	MsgLoginFailed  = "パスワードが正しくありません。"
	MsgPageFailed   = "エラー: データを読み込めませんでした。"
	MsgSessionError = "エラー: セッションを保存できませんでした。"
)

// AddResponse is the envelope returned by POST /add. Totals are present only
// on success.
type AddResponse struct {
	Success         bool   `json:"success"`
	Message         string `json:"message"`
	TotalIncome     string `json:"total_income,omitempty"`
	TotalExpense    string `json:"total_expense,omitempty"`
	RemainingBudget string `json:"remaining_budget,omitempty"`
}

// JSONResponseBuilder provides a fluent API for building JSON responses.
type JSONResponseBuilder struct {
	statusCode int
	headers    map[string]string
	payload    any
}

// NewJSONResponse creates a builder with a 200 status.
func NewJSONResponse() *JSONResponseBuilder {
	return &JSONResponseBuilder{
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
	}
}

func (b *JSONResponseBuilder) Status(code int) *JSONResponseBuilder {
	b.statusCode = code
	return b
}

func (b *JSONResponseBuilder) Header(name, value string) *JSONResponseBuilder {
	b.headers[name] = value
	return b
}

func (b *JSONResponseBuilder) Payload(v any) *JSONResponseBuilder {
	b.payload = v
	return b
}

// Write sends the response. An encoding failure after the header is sent can
// only be logged.
func (b *JSONResponseBuilder) Write(w http.ResponseWriter) {
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(b.statusCode)
	if b.payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(b.payload); err != nil {
		slog.Error("Failed to encode JSON response", "error", err)
	}
}

// AddSuccess builds the success envelope from the recomputed summary.
func AddSuccess(summary core.Summary) *JSONResponseBuilder {
	d := summary.Display()
	return NewJSONResponse().Payload(AddResponse{
		Success:         true,
		Message:         core.MsgRecorded,
		TotalIncome:     d.TotalIncome,
		TotalExpense:    d.TotalExpense,
		RemainingBudget: d.RemainingBudget,
	})
}

// AddFailure builds the failure envelope. Validation failures use 200 so the
// browser script handles both outcomes alike.
func AddFailure(statusCode int, message string) *JSONResponseBuilder {
	return NewJSONResponse().
		Status(statusCode).
		Payload(AddResponse{Success: false, Message: message})
}
