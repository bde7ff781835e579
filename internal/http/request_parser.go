// Package http provides HTTP server and handler implementations.
//
// This file implements parsing of the add and login forms. Both accept
// form-encoded bodies as sent by the browser and JSON bodies as sent by
// scripts.

package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// maxFormBytes bounds request bodies; the forms have three short fields.
const maxFormBytes = 64 << 10

// AddForm holds the raw add-transaction fields. Values are sanitized but not
// validated; validation belongs to the domain.
type AddForm struct {
	Type     string
	Category string
	Amount   string
}

// ParseAddForm reads type, category and amount from r.
func ParseAddForm(w http.ResponseWriter, r *http.Request) (AddForm, error) {
	values, err := parseBody(w, r)
	if err != nil {
		return AddForm{}, err
	}
	return AddForm{
		Type:     sanitizeInput(values.Get("type")),
		Category: sanitizeInput(values.Get("category")),
		Amount:   sanitizeInput(values.Get("amount")),
	}, nil
}

// ParsePassword reads the login password from r. It is not trimmed.
func ParsePassword(w http.ResponseWriter, r *http.Request) (string, error) {
	values, err := parseBody(w, r)
	if err != nil {
		return "", err
	}
	return values.Get("password"), nil
}

func parseBody(w http.ResponseWriter, r *http.Request) (url.Values, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "application/json":
	case "multipart/form-data":
		if err := r.ParseMultipartForm(maxFormBytes); err != nil {
			return nil, fmt.Errorf("parse multipart form: %w", err)
		}
		return r.PostForm, nil
	default:
		if err := r.ParseForm(); err != nil {
			return nil, fmt.Errorf("parse form: %w", err)
		}
		return r.PostForm, nil
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	values := url.Values{}
	if len(body) == 0 {
		return values, nil
	}
	var data map[string]any
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, fmt.Errorf("parse json: %w", err)
	}
	for k, v := range data {
		s, ok := stringValue(v)
		if !ok {
			return nil, errors.New("parse json: field " + strconv.Quote(k) + " must be a string or number")
		}
		values.Set(k, s)
	}
	return values, nil
}

// stringValue converts a decoded JSON scalar to its form representation.
func stringValue(v any) (string, bool) {
	switch val := v.(type) {
	case string:
		return val, true
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), true
	case json.Number:
		return val.String(), true
	case nil:
		return "", true
	default:
		return "", false
	}
}

// sanitizeInput removes control characters except tab, newline and carriage return, then trims.
func sanitizeInput(s string) string {
	s = strings.Map(func(r rune) rune {
		if r < 32 && r != '\t' && r != '\n' && r != '\r' {
			return -1
		}
		if r == 127 {
			return -1
		}
		return r
	}, s)
	return strings.TrimSpace(s)
}
