package sheets

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"

	"github.com/pfrederiksen/boxscore-sync/internal/logger"
	"github.com/pfrederiksen/boxscore-sync/internal/merge"
)

// Scopes requested for the service account.
var Scopes = []string{
	"https://www.googleapis.com/auth/spreadsheets",
	"https://www.googleapis.com/auth/drive",
}

// Header is the first row written to the sheet.
var Header = []string{"Game_ID", "Player", "playerId", "R", "AB", "H", "HR", "RBI"}

// ErrNoSheets is returned when the spreadsheet has no sheets to write to.
var ErrNoSheets = errors.New("spreadsheet has no sheets")

// Publisher writes merged rows to the first sheet of one spreadsheet.
type Publisher struct {
	svc           *gsheets.Service
	spreadsheetID string
}

// NewPublisher authenticates with the service-account key at credsPath.
// Extra options are appended after the credentials option.
func NewPublisher(ctx context.Context, credsPath, spreadsheetID string, opts ...option.ClientOption) (*Publisher, error) {
	data, err := os.ReadFile(credsPath)
	if err != nil {
		return nil, fmt.Errorf("reading credentials file: %w", err)
	}

	creds, err := google.CredentialsFromJSON(ctx, data, Scopes...)
	if err != nil {
		return nil, fmt.Errorf("parsing credentials: %w", err)
	}

	svc, err := gsheets.NewService(ctx, append([]option.ClientOption{option.WithCredentials(creds)}, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("creating sheets service: %w", err)
	}

	return NewPublisherWithService(svc, spreadsheetID), nil
}

// NewPublisherWithService wraps an existing Sheets service.
func NewPublisherWithService(svc *gsheets.Service, spreadsheetID string) *Publisher {
	return &Publisher{
		svc:           svc,
		spreadsheetID: spreadsheetID,
	}
}

// Rows converts merged records into sheet rows: Header followed by one row per record.
func Rows(records []merge.Record) [][]interface{} {
	rows := make([][]interface{}, 0, len(records)+1)

	header := make([]interface{}, len(Header))
	for i, h := range Header {
		header[i] = h
	}
	rows = append(rows, header)

	for _, r := range records {
		var id interface{} = ""
		if r.PlayerID != nil {
			id = r.PlayerID.CellValue()
		}
		rows = append(rows, []interface{}{
			r.GameID,
			r.Player,
			id,
			r.Runs,
			r.AtBats,
			r.Hits,
			r.HomeRuns,
			r.RunsBattedIn,
		})
	}
	return rows
}

// Publish clears the first sheet and writes Rows(records). It returns the
// number of rows written, header included. A failed write after a successful
// clear leaves the sheet empty.
func (p *Publisher) Publish(ctx context.Context, records []merge.Record) (int, error) {
	title, err := p.firstSheetTitle(ctx)
	if err != nil {
		return 0, err
	}
	sheetRange := quoteSheetName(title)

	if _, err := p.svc.Spreadsheets.Values.Clear(p.spreadsheetID, sheetRange, &gsheets.ClearValuesRequest{}).
		Context(ctx).Do(); err != nil {
		return 0, fmt.Errorf("clearing sheet %q: %w", title, err)
	}

	rows := Rows(records)
	body := &gsheets.ValueRange{
		MajorDimension: "ROWS",
		Values:         rows,
	}
	if _, err := p.svc.Spreadsheets.Values.Update(p.spreadsheetID, sheetRange+"!A1", body).
		ValueInputOption("RAW").
		Context(ctx).Do(); err != nil {
		return 0, fmt.Errorf("writing sheet %q: %w", title, err)
	}

	logger.Info("Published rows to spreadsheet", logger.Fields{
		"sheet": title,
		"rows":  len(rows),
	})
	return len(rows), nil
}

func (p *Publisher) firstSheetTitle(ctx context.Context) (string, error) {
	ss, err := p.svc.Spreadsheets.Get(p.spreadsheetID).
		Fields("sheets.properties.title").
		Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("opening spreadsheet: %w", err)
	}
	if len(ss.Sheets) == 0 || ss.Sheets[0].Properties == nil {
		return "", ErrNoSheets
	}
	return ss.Sheets[0].Properties.Title, nil
}

// quoteSheetName quotes a sheet title for A1 notation.
func quoteSheetName(title string) string {
	return "'" + strings.ReplaceAll(title, "'", "''") + "'"
}
