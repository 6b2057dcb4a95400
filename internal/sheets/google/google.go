package google

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"lifeos/internal/core"
	"lifeos/internal/log"
	ports "lifeos/internal/sheets"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// Row columns: Timestamp, Domain, Content, Tags, Metrics, Sentiment, Summary.
const columns = "A:G"

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	entriesSheet  string
	logger        *log.Logger
}

var _ ports.EntryWriter = (*Client)(nil)

type Options struct {
	SpreadsheetID string
	// SheetName is the base name; the current year is prefixed unless the
	// name already starts with one.
	SheetName       string
	CredentialsJSON string
	CredentialsFile string
	Logger          *log.Logger
}

// New creates a Sheets client authenticated with a service account.
func New(ctx context.Context, opts Options) (*Client, error) {
	spreadsheetID := strings.TrimSpace(opts.SpreadsheetID)
	if spreadsheetID == "" {
		return nil, errors.New("missing spreadsheet ID")
	}

	svc, err := newSheetsService(ctx, opts.CredentialsJSON, opts.CredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return NewWithService(svc, spreadsheetID, opts.SheetName, time.Now().Year(), opts.Logger), nil
}

// NewWithService wraps an existing service, typically one pointed at a test
// endpoint.
func NewWithService(svc *gsheet.Service, spreadsheetID, sheetName string, year int, logger *log.Logger) *Client {
	if logger == nil {
		logger = log.Discard()
	}
	base := strings.TrimSpace(sheetName)
	if base == "" {
		base = "Entries"
	}
	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		entriesSheet:  yearPrefixedName(base, year),
		logger:        logger.WithComponent(log.ComponentSheets),
	}
}

func newSheetsService(ctx context.Context, credentialsJSON, credentialsFile string) (*gsheet.Service, error) {
	var creds []byte
	switch {
	case strings.TrimSpace(credentialsJSON) != "":
		creds = []byte(credentialsJSON)
	case strings.TrimSpace(credentialsFile) != "":
		b, err := os.ReadFile(credentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		creds = b
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(creds),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

// SheetName is the year-prefixed tab entries are written to.
func (c *Client) SheetName() string {
	return c.entriesSheet
}

// AppendEntry writes e as a new row and returns the updated range.
func (c *Client) AppendEntry(ctx context.Context, e core.DomainEntry) (string, error) {
	if err := e.Validate(); err != nil {
		return "", fmt.Errorf("validation failed: %w", err)
	}
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}

	rng := fmt.Sprintf("%s!%s", c.entriesSheet, columns)
	vr := &gsheet.ValueRange{Values: [][]any{entryRow(e)}}

	resp, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, rng, vr).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("append to sheet %s: %w", c.entriesSheet, err)
	}

	ref := rng
	if resp.Updates != nil && resp.Updates.UpdatedRange != "" {
		ref = resp.Updates.UpdatedRange
	}
	c.logger.DebugContext(ctx, "Appended entry row", log.FieldSheetsRef, ref, log.FieldDomain, string(e.Domain))
	return ref, nil
}

// entryRow flattens an entry into the sheet's columns.
func entryRow(e core.DomainEntry) []any {
	return []any{
		e.Timestamp,
		e.Domain.Label(),
		e.Content,
		strings.Join(e.Tags, ", "),
		formatMetrics(e.Metrics),
		string(e.Sentiment),
		e.Summary,
	}
}

func formatMetrics(metrics []core.Metric) string {
	parts := make([]string, 0, len(metrics))
	for _, m := range metrics {
		v := strings.TrimSpace(m.Name + "=" + m.Value)
		if m.Unit != "" {
			v += " " + m.Unit
		}
		parts = append(parts, v)
	}
	return strings.Join(parts, "; ")
}

// yearPrefixedName returns "<year> <base>" unless base already starts with a 4-digit year.
func yearPrefixedName(base string, year int) string {
	base = strings.TrimSpace(base)
	if base == "" {
		return base
	}
	if len(base) >= 5 {
		if y, err := strconv.Atoi(base[0:4]); err == nil && base[4] == ' ' && y > 1900 && y < 3000 {
			return base
		}
	}
	return fmt.Sprintf("%d %s", year, base)
}
