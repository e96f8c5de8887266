package sheets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/Veraticus/sift/internal/common"
	"github.com/Veraticus/sift/internal/table"
)

// TableWriter exports a table and reports where it went.
type TableWriter interface {
	Write(ctx context.Context, t *table.Table) (Result, error)
}

// Result describes a completed export.
type Result struct {
	SpreadsheetID string
	URL           string
	Rows          int
}

// Writer writes tables to a Google Sheets spreadsheet.
type Writer struct {
	service *sheets.Service
	logger  *slog.Logger
	config  Config
}

// NewWriter creates a new Google Sheets writer.
func NewWriter(ctx context.Context, config Config, logger *slog.Logger) (*Writer, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	service, err := createSheetsService(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	return newWriterWithService(service, config, logger), nil
}

func newWriterWithService(service *sheets.Service, config Config, logger *slog.Logger) *Writer {
	if config.SheetTitle == "" {
		config.SheetTitle = DefaultConfig().SheetTitle
	}
	if config.BatchSize <= 0 {
		config.BatchSize = DefaultConfig().BatchSize
	}
	return &Writer{
		config:  config,
		service: service,
		logger:  common.LoggerOrDefault(logger),
	}
}

// Write replaces the contents of the configured sheet with t.
func (w *Writer) Write(ctx context.Context, t *table.Table) (Result, error) {
	if t == nil {
		return Result{}, fmt.Errorf("%w: nil table", common.ErrInvalidInput)
	}

	w.logger.Info("starting sheets export",
		"table", t.Name,
		"rows", t.NumRows(),
		"columns", t.NumColumns())

	target, err := w.getOrCreateSpreadsheet(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("failed to get spreadsheet: %w", err)
	}

	retryOpts := common.RetryOptions{
		MaxAttempts:  max(w.config.RetryAttempts, 1),
		InitialDelay: w.config.RetryDelay,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
	}

	err = common.WithRetry(ctx, func() error {
		return classifyAPIError(w.clearSheet(ctx, target))
	}, retryOpts)
	if err != nil {
		return Result{}, fmt.Errorf("failed to clear sheet: %w", err)
	}

	values := tableValues(t)
	err = common.WithRetry(ctx, func() error {
		return classifyAPIError(w.writeData(ctx, target, values))
	}, retryOpts)
	if err != nil {
		return Result{}, fmt.Errorf("failed to write data: %w", err)
	}

	if w.config.EnableFormatting {
		err = common.WithRetry(ctx, func() error {
			return classifyAPIError(w.applyFormatting(ctx, target, t.NumColumns()))
		}, retryOpts)
		if err != nil {
			// Don't fail the export if formatting fails
			w.logger.Warn("failed to apply formatting", "error", err)
		}
	}

	w.logger.Info("sheets export completed",
		"spreadsheet_id", target.spreadsheetID,
		"rows_written", len(values))

	return Result{
		SpreadsheetID: target.spreadsheetID,
		URL:           target.url,
		Rows:          t.NumRows(),
	}, nil
}

// createSheetsService creates a Google Sheets API service.
func createSheetsService(ctx context.Context, config Config) (*sheets.Service, error) {
	var tokenSource oauth2.TokenSource

	if config.ServiceAccountPath != "" {
		jsonKey, err := os.ReadFile(config.ServiceAccountPath) // #nosec G304
		if err != nil {
			return nil, fmt.Errorf("unable to read service account key file: %w", err)
		}

		jwtConfig, err := google.JWTConfigFromJSON(jsonKey, sheets.SpreadsheetsScope)
		if err != nil {
			return nil, fmt.Errorf("unable to parse service account key: %w", err)
		}

		tokenSource = jwtConfig.TokenSource(ctx)
	} else {
		token := &oauth2.Token{
			RefreshToken: config.RefreshToken,
			TokenType:    "Bearer",
		}
		if token.RefreshToken == "" {
			saved, err := LoadToken(config.TokenFile)
			if err != nil {
				return nil, fmt.Errorf("unable to load token file: %w", err)
			}
			token = saved
		}

		tokenSource = oauthConfig(config.ClientID, config.ClientSecret, "").TokenSource(ctx, token)
	}

	httpClient := oauth2.NewClient(ctx, tokenSource)
	srv, err := sheets.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("unable to create sheets service: %w", err)
	}

	return srv, nil
}

type sheetTarget struct {
	spreadsheetID string
	url           string
	title         string
	sheetID       int64
}

// getOrCreateSpreadsheet resolves the target sheet, creating the spreadsheet
// or the sheet tab when missing.
func (w *Writer) getOrCreateSpreadsheet(ctx context.Context) (sheetTarget, error) {
	title := w.config.SheetTitle

	if w.config.SpreadsheetID != "" {
		existing, err := w.service.Spreadsheets.Get(w.config.SpreadsheetID).Context(ctx).Do()
		if err != nil {
			return sheetTarget{}, fmt.Errorf("unable to access spreadsheet %s: %w", w.config.SpreadsheetID, err)
		}

		target := sheetTarget{
			spreadsheetID: existing.SpreadsheetId,
			url:           existing.SpreadsheetUrl,
			title:         title,
		}
		for _, sheet := range existing.Sheets {
			if sheet.Properties != nil && sheet.Properties.Title == title {
				target.sheetID = sheet.Properties.SheetId
				return target, nil
			}
		}

		resp, err := w.service.Spreadsheets.BatchUpdate(existing.SpreadsheetId, &sheets.BatchUpdateSpreadsheetRequest{
			Requests: []*sheets.Request{{
				AddSheet: &sheets.AddSheetRequest{
					Properties: &sheets.SheetProperties{Title: title},
				},
			}},
		}).Context(ctx).Do()
		if err != nil {
			return sheetTarget{}, fmt.Errorf("unable to add sheet %q: %w", title, err)
		}
		if len(resp.Replies) > 0 && resp.Replies[0].AddSheet != nil && resp.Replies[0].AddSheet.Properties != nil {
			target.sheetID = resp.Replies[0].AddSheet.Properties.SheetId
		}
		w.logger.Info("added sheet", "spreadsheet_id", target.spreadsheetID, "sheet", title)
		return target, nil
	}

	spreadsheet := &sheets.Spreadsheet{
		Properties: &sheets.SpreadsheetProperties{
			Title:    w.config.SpreadsheetName,
			TimeZone: w.config.TimeZone,
		},
		Sheets: []*sheets.Sheet{
			{
				Properties: &sheets.SheetProperties{
					Title: title,
				},
			},
		},
	}

	created, err := w.service.Spreadsheets.Create(spreadsheet).Context(ctx).Do()
	if err != nil {
		return sheetTarget{}, fmt.Errorf("unable to create spreadsheet: %w", err)
	}

	w.logger.Info("created new spreadsheet",
		"id", created.SpreadsheetId,
		"url", created.SpreadsheetUrl)

	target := sheetTarget{
		spreadsheetID: created.SpreadsheetId,
		url:           created.SpreadsheetUrl,
		title:         title,
	}
	if len(created.Sheets) > 0 && created.Sheets[0].Properties != nil {
		target.sheetID = created.Sheets[0].Properties.SheetId
	}
	return target, nil
}

// sheetRange quotes the sheet title for A1 notation.
func sheetRange(title, cells string) string {
	quoted := "'" + strings.ReplaceAll(title, "'", "''") + "'"
	if cells == "" {
		return quoted
	}
	return quoted + "!" + cells
}

func (w *Writer) clearSheet(ctx context.Context, target sheetTarget) error {
	_, err := w.service.Spreadsheets.Values.Clear(target.spreadsheetID, sheetRange(target.title, ""), &sheets.ClearValuesRequest{}).Context(ctx).Do()
	return err
}

func tableValues(t *table.Table) [][]any {
	values := make([][]any, 0, t.NumRows()+1)
	values = append(values, toRow(t.Headers))
	for _, row := range t.Rows {
		values = append(values, toRow(row))
	}
	return values
}

func toRow(cells []string) []any {
	row := make([]any, len(cells))
	for i, c := range cells {
		row[i] = c
	}
	return row
}

// writeData writes values in batches. RAW input keeps values such as
// "+1 555 0100" from being parsed as formulas.
func (w *Writer) writeData(ctx context.Context, target sheetTarget, values [][]any) error {
	for i := 0; i < len(values); i += w.config.BatchSize {
		end := min(i+w.config.BatchSize, len(values))

		batch := values[i:end]
		valueRange := &sheets.ValueRange{
			Values: batch,
		}

		_, err := w.service.Spreadsheets.Values.Update(target.spreadsheetID, sheetRange(target.title, fmt.Sprintf("A%d", i+1)), valueRange).
			ValueInputOption("RAW").
			Context(ctx).
			Do()

		if err != nil {
			return fmt.Errorf("failed to write batch starting at row %d: %w", i+1, err)
		}

		w.logger.Debug("wrote batch", "start_row", i+1, "rows", len(batch))
	}

	return nil
}

// applyFormatting bolds and freezes the header row and sizes the columns.
func (w *Writer) applyFormatting(ctx context.Context, target sheetTarget, columns int) error {
	requests := []*sheets.Request{
		{
			RepeatCell: &sheets.RepeatCellRequest{
				Range: &sheets.GridRange{
					SheetId:          target.sheetID,
					StartRowIndex:    0,
					EndRowIndex:      1,
					StartColumnIndex: 0,
					EndColumnIndex:   int64(columns),
				},
				Cell: &sheets.CellData{
					UserEnteredFormat: &sheets.CellFormat{
						TextFormat: &sheets.TextFormat{
							Bold: true,
						},
					},
				},
				Fields: "userEnteredFormat.textFormat",
			},
		},
		{
			AutoResizeDimensions: &sheets.AutoResizeDimensionsRequest{
				Dimensions: &sheets.DimensionRange{
					SheetId:    target.sheetID,
					Dimension:  "COLUMNS",
					StartIndex: 0,
					EndIndex:   int64(columns),
				},
			},
		},
		{
			UpdateSheetProperties: &sheets.UpdateSheetPropertiesRequest{
				Properties: &sheets.SheetProperties{
					SheetId: target.sheetID,
					GridProperties: &sheets.GridProperties{
						FrozenRowCount: 1,
					},
				},
				Fields: "gridProperties.frozenRowCount",
			},
		},
	}

	batchUpdate := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: requests,
	}

	_, err := w.service.Spreadsheets.BatchUpdate(target.spreadsheetID, batchUpdate).Context(ctx).Do()
	return err
}

// classifyAPIError marks client errors permanent and tags quota errors so
// WithRetry backs off harder.
func classifyAPIError(err error) error {
	if err == nil {
		return nil
	}
	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) {
		return err
	}
	switch {
	case apiErr.Code == http.StatusTooManyRequests:
		return fmt.Errorf("%w: %w", common.ErrRateLimit, err)
	case apiErr.Code >= http.StatusInternalServerError:
		return err
	default:
		return common.Permanent(err)
	}
}
