package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"budgetzero/internal/core"
	ports "budgetzero/internal/sheets"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	// Base name without year (e.g. "Ledger"); code prefixes the year.
	sheetBase string
}

// Ensure interface conformance
var _ ports.MonthWriter = (*Client)(nil)

// New creates a Sheets client for the given spreadsheet.
// sheetBase is the tab name without the year prefix (default "Ledger").
// Credentials come from GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE,
// or GOOGLE_APPLICATION_CREDENTIALS.
func New(ctx context.Context, spreadsheetID, sheetBase string) (*Client, error) {
	spreadsheetID = strings.TrimSpace(spreadsheetID)
	if spreadsheetID == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	sheetBase = strings.TrimSpace(sheetBase)
	if sheetBase == "" {
		sheetBase = "Ledger"
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetBase:     sheetBase,
	}, nil
}

// newSheetsService initializes a Sheets Service using Service Account credentials.
// Uses GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS.
func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))

	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	var err error

	switch {
	case serviceAccountJSON != "":
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		credentialsJSON, err = os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	return service, nil
}

// ExportMonth appends the month's block to the year tab: a marker row, one
// row per entry, then an ending-balance row. Re-exports append a newer block;
// readers take the last block for a month as current.
func (c *Client) ExportMonth(ctx context.Context, year, month int, entries []core.Entry, ending core.Money) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}
	if month < 1 || month > 12 {
		return fmt.Errorf("invalid month: %d", month)
	}

	sheetName := fmt.Sprintf("%d %s", year, c.sheetBase)

	// Find where to write: after the last used row.
	rng := fmt.Sprintf("%s!A:A", sheetName)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("read sheet dimensions for %s: %w", sheetName, err)
	}
	nextRow := len(resp.Values) + 1

	rows := make([][]any, 0, len(entries)+2)
	rows = append(rows, []any{monthMarker(year, month), "", "", "", "", ""})
	for _, e := range entries {
		kind := "expense"
		if e.IsIncome {
			kind = "income"
		}
		paid := ""
		if e.IsPaid {
			paid = e.ActualPaymentDate.Format("2006-01-02")
		}
		rows = append(rows, []any{
			e.DueDate.Format("2006-01-02"),
			e.Title,
			e.Amount.String(),
			kind,
			string(e.Category),
			paid,
		})
	}
	rows = append(rows, []any{"ending balance", "", ending.String(), "", "", ""})

	dataRange := fmt.Sprintf("%s!A%d:F%d", sheetName, nextRow, nextRow+len(rows)-1)
	vr := &gsheet.ValueRange{Values: rows}
	_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, dataRange, vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("write month block to %s: %w", sheetName, err)
	}

	slog.InfoContext(ctx, "Exported month to sheet",
		"sheet", sheetName, "month", month, "year", year, "rows", len(rows))
	return nil
}

func monthMarker(year, month int) string {
	return "month " + strconv.Itoa(year) + "-" + fmt.Sprintf("%02d", month)
}
