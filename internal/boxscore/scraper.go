package boxscore

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/cockroachdb/errors"
	"golang.org/x/net/html"

	"github.com/pfrederiksen/boxscore-sync/internal/logger"
)

const (
	UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64)"
	Timeout   = 30 * time.Second
)

var (
	// ErrInvalidGameURL is returned when a URL has no contests/<id>/individual_stats segment.
	ErrInvalidGameURL = errors.New("invalid game URL")
	// ErrUnexpectedStatus is returned when a stats page does not answer 200 OK.
	ErrUnexpectedStatus = errors.New("unexpected status code")
)

var gameIDPattern = regexp.MustCompile(`contests/(\d+)/individual_stats`)

// DefaultGameURLs are the games synced when no URLs are configured.
var DefaultGameURLs = []string{
	"https://stats.ncaa.org/contests/5336663/individual_stats",
	"https://stats.ncaa.org/contests/5336814/individual_stats",
	"https://stats.ncaa.org/contests/5336815/individual_stats",
}

// Scraper handles fetching and parsing box-score pages
type Scraper struct {
	client  *http.Client
	columns ColumnMap
}

// New creates a Scraper. A nil client gets a default one with Timeout.
func New(client *http.Client, columns ColumnMap) *Scraper {
	if client == nil {
		client = &http.Client{Timeout: Timeout}
	}
	return &Scraper{
		client:  client,
		columns: columns,
	}
}

// GameID extracts the numeric contest id from a game URL.
func GameID(url string) (string, error) {
	matches := gameIDPattern.FindStringSubmatch(url)
	if matches == nil {
		return "", errors.Wrapf(ErrInvalidGameURL, "%q", url)
	}
	return matches[1], nil
}

// Fetch downloads the raw page body for a game URL.
func (s *Scraper) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", UserAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading page: %w", err)
	}
	return body, nil
}

// ScrapeGame fetches one game page and parses its batting tables.
func (s *Scraper) ScrapeGame(ctx context.Context, url string) ([]Record, error) {
	gameID, err := GameID(url)
	if err != nil {
		return nil, err
	}

	body, err := s.Fetch(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("game %s: %w", gameID, err)
	}

	records, err := Parse(bytes.NewReader(body), gameID, s.columns)
	if err != nil {
		return nil, fmt.Errorf("game %s: %w", gameID, err)
	}

	logger.Info("Scraped box score", logger.Fields{
		"game_id": gameID,
		"rows":    len(records),
	})
	return records, nil
}

// ScrapeAll scrapes every URL in order and concatenates the results.
// The first failure aborts the run.
func (s *Scraper) ScrapeAll(ctx context.Context, urls []string) ([]Record, error) {
	tables := make([][]Record, 0, len(urls))
	for _, url := range urls {
		records, err := s.ScrapeGame(ctx, url)
		if err != nil {
			return nil, err
		}
		tables = append(tables, records)
	}
	return Aggregate(tables...), nil
}

// Parse extracts batting records from a box-score page.
func Parse(r io.Reader, gameID string, columns ColumnMap) ([]Record, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}

	minCells := columns.minCells()
	records := make([]Record, 0)

	doc.Find("table").Each(func(_ int, table *goquery.Selection) {
		if !strings.Contains(table.Text(), StatsTableMarker) {
			return
		}

		// first row is the header, last row is the totals line
		rows := table.Find("tr")
		if rows.Length() <= 2 {
			return
		}

		rows.Slice(1, rows.Length()-1).Each(func(_ int, row *goquery.Selection) {
			cells := row.Find("td")
			if cells.Length() < minCells {
				return
			}

			records = append(records, Record{
				GameID:       gameID,
				Player:       cellText(cells, columns.Player),
				AtBats:       cellText(cells, columns.AtBats),
				Runs:         cellText(cells, columns.Runs),
				Hits:         cellText(cells, columns.Hits),
				HomeRuns:     cellText(cells, columns.HomeRuns),
				RunsBattedIn: cellText(cells, columns.RunsBattedIn),
			})
		})
	})

	return records, nil
}

// cellText returns the text of the i-th cell with every text fragment trimmed
// and the fragments joined without a separator.
func cellText(cells *goquery.Selection, i int) string {
	cell := cells.Eq(i)
	if cell.Length() == 0 {
		return ""
	}

	var b strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(strings.TrimSpace(n.Data))
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(cell.Get(0))

	return b.String()
}
