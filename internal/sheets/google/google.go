package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"kakeibo/internal/cache"
	"kakeibo/internal/core"
	ports "kakeibo/internal/sheets"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// Mirrored rows are remembered so a redelivered event skips the column read.
const (
	mirroredCacheSize = 1024
	mirroredCacheTTL  = 6 * time.Hour
)

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
	mirrored      *cache.LRU[int64, string]
}

var _ ports.TransactionMirror = (*Client)(nil)

// Options configures New. Exactly one of CredentialsJSON or CredentialsFile
// is expected; CredentialsJSON wins when both are set.
type Options struct {
	SpreadsheetID   string
	SheetName       string
	CredentialsJSON string
	CredentialsFile string
}

// New creates a Sheets client authenticated with a service account.
func New(ctx context.Context, opts Options) (*Client, error) {
	spreadsheetID := strings.TrimSpace(opts.SpreadsheetID)
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	sheetName := strings.TrimSpace(opts.SheetName)
	if sheetName == "" {
		sheetName = "Ledger"
	}

	credentials, err := loadCredentials(opts.CredentialsJSON, opts.CredentialsFile)
	if err != nil {
		return nil, err
	}

	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentials),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	slog.InfoContext(ctx, "Google Sheets service created",
		"spreadsheet_id", spreadsheetID,
		"sheet", sheetName)

	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
		mirrored:      cache.New[int64, string](mirroredCacheSize, mirroredCacheTTL),
	}, nil
}

func loadCredentials(inline, file string) ([]byte, error) {
	inline = strings.TrimSpace(inline)
	file = strings.TrimSpace(file)
	if inline == "" && file == "" {
		file = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	switch {
	case inline != "":
		return []byte(inline), nil
	case file != "":
		b, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		return b, nil
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}
}

// AppendTransaction adds tx as a new row unless its id is already in column A,
// so redelivered events do not duplicate rows.
func (c *Client) AppendTransaction(ctx context.Context, tx core.Transaction) (string, error) {
	if tx.ID <= 0 {
		return "", errors.New("only stored transactions can be mirrored")
	}
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}
	if ref, ok := c.cachedRef(tx.ID); ok {
		return ref, nil
	}

	colRange := fmt.Sprintf("%s!A:A", c.sheetName)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, colRange).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("read ids from %s: %w", c.sheetName, err)
	}

	if len(resp.Values) == 0 {
		if err := c.writeHeader(ctx); err != nil {
			return "", err
		}
	} else if row := findIDRow(resp.Values, tx.ID); row > 0 {
		ref := fmt.Sprintf("%s!A%d:E%d", c.sheetName, row, row)
		slog.InfoContext(ctx, "Transaction already mirrored", "id", tx.ID, "ref", ref)
		c.remember(tx.ID, ref)
		return ref, nil
	}

	vr := &gsheet.ValueRange{Values: [][]any{transactionRow(tx)}}
	appendResp, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, fmt.Sprintf("%s!A:E", c.sheetName), vr).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("append to %s: %w", c.sheetName, err)
	}

	ref := ""
	if appendResp.Updates != nil {
		ref = appendResp.Updates.UpdatedRange
	}
	c.remember(tx.ID, ref)
	return ref, nil
}

func (c *Client) cachedRef(id int64) (string, bool) {
	if c.mirrored == nil {
		return "", false
	}
	return c.mirrored.Get(id)
}

func (c *Client) remember(id int64, ref string) {
	if c.mirrored != nil {
		c.mirrored.Set(id, ref)
	}
}

func (c *Client) writeHeader(ctx context.Context) error {
	row := make([]any, len(ports.Header))
	for i, h := range ports.Header {
		row[i] = h
	}
	vr := &gsheet.ValueRange{Values: [][]any{row}}
	_, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, fmt.Sprintf("%s!A1:E1", c.sheetName), vr).
		ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("write header to %s: %w", c.sheetName, err)
	}
	return nil
}
