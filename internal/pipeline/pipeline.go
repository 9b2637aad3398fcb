package pipeline

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/pfrederiksen/boxscore-sync/internal/boxscore"
	"github.com/pfrederiksen/boxscore-sync/internal/config"
	"github.com/pfrederiksen/boxscore-sync/internal/logger"
	"github.com/pfrederiksen/boxscore-sync/internal/lookup"
	"github.com/pfrederiksen/boxscore-sync/internal/merge"
	"github.com/pfrederiksen/boxscore-sync/internal/sheets"
)

// Scraper produces the aggregated batting table for a list of game URLs.
type Scraper interface {
	ScrapeAll(ctx context.Context, urls []string) ([]boxscore.Record, error)
}

// Resolver produces the player lookup table.
type Resolver interface {
	FetchPlayers(ctx context.Context) ([]lookup.Entry, error)
}

// Publisher writes merged records and reports how many rows it wrote.
type Publisher interface {
	Publish(ctx context.Context, records []merge.Record) (int, error)
}

// Pipeline wires the sync steps together.
type Pipeline struct {
	Scraper   Scraper
	Resolver  Resolver
	Publisher Publisher
	GameURLs  []string
	DryRun    bool

	metrics *logger.Metrics
}

// Summary describes a finished run.
type Summary struct {
	Games         int               `json:"games"`
	Records       int               `json:"records"`
	LookupEntries int               `json:"lookup_entries"`
	Matched       int               `json:"matched"`
	Unmatched     int               `json:"unmatched"`
	Ambiguous     []merge.Ambiguity `json:"ambiguous,omitempty"`
	RowsWritten   int               `json:"rows_written"`
	DryRun        bool              `json:"dry_run"`
}

// Result is the merged table plus its summary.
type Result struct {
	Summary Summary        `json:"summary"`
	Records []merge.Record `json:"records"`
}

// New builds a pipeline backed by the real scraper, lookup client and, unless
// cfg.DryRun is set, the Sheets publisher.
func New(ctx context.Context, cfg config.Config) (*Pipeline, error) {
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}

	p := &Pipeline{
		Scraper: boxscore.New(httpClient, boxscore.DefaultColumns),
		Resolver: lookup.NewClient(lookup.ClientConfig{
			HTTPClient:  httpClient,
			BaseURL:     cfg.BaseURL,
			MasterKey:   cfg.MasterToken,
			PlayersPath: cfg.PlayersPath,
			TokenTTL:    cfg.TokenTTL,
		}),
		GameURLs: cfg.GameURLs,
		DryRun:   cfg.DryRun,
	}

	if !cfg.DryRun {
		publisher, err := sheets.NewPublisher(ctx, cfg.CredsPath, cfg.SheetID)
		if err != nil {
			return nil, fmt.Errorf("initializing publisher: %w", err)
		}
		p.Publisher = publisher
	}

	return p, nil
}

// Metrics returns the counters and timings recorded by the last Run.
func (p *Pipeline) Metrics() logger.Snapshot {
	if p.metrics == nil {
		return logger.NewMetrics().GetSnapshot()
	}
	return p.metrics.GetSnapshot()
}

// Run executes one sync.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	if !p.DryRun && p.Publisher == nil {
		return nil, fmt.Errorf("no publisher configured")
	}
	p.metrics = logger.NewMetrics()

	start := time.Now()
	records, err := p.Scraper.ScrapeAll(ctx, p.GameURLs)
	if err != nil {
		return nil, fmt.Errorf("scraping box scores: %w", err)
	}
	p.metrics.RecordTiming("pipeline.scrape", time.Since(start))
	p.metrics.AddCounter("records.scraped", int64(len(records)))

	start = time.Now()
	entries, err := p.Resolver.FetchPlayers(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolving player ids: %w", err)
	}
	p.metrics.RecordTiming("pipeline.lookup", time.Since(start))
	p.metrics.AddCounter("lookup.entries", int64(len(entries)))

	merged := merge.Merge(records, entries)
	p.metrics.AddCounter("players.matched", int64(merged.Matched))
	p.metrics.AddCounter("players.unmatched", int64(merged.Unmatched))

	for _, a := range merged.Ambiguous {
		ids := make([]string, 0, len(a.PlayerIDs))
		for _, id := range a.PlayerIDs {
			ids = append(ids, id.String())
		}
		logger.Warn("Ambiguous player name in lookup table, using first id", logger.Fields{
			"name":       a.Name,
			"player_ids": ids,
		})
	}

	result := &Result{
		Summary: Summary{
			Games:         len(p.GameURLs),
			Records:       len(merged.Records),
			LookupEntries: len(entries),
			Matched:       merged.Matched,
			Unmatched:     merged.Unmatched,
			Ambiguous:     merged.Ambiguous,
			DryRun:        p.DryRun,
		},
		Records: merged.Records,
	}

	if p.DryRun {
		logger.Info("Dry run, skipping publish", logger.Fields{"records": len(merged.Records)})
		return result, nil
	}

	start = time.Now()
	written, err := p.Publisher.Publish(ctx, merged.Records)
	if err != nil {
		return nil, fmt.Errorf("publishing to spreadsheet: %w", err)
	}
	p.metrics.RecordTiming("pipeline.publish", time.Since(start))
	p.metrics.AddCounter("rows.written", int64(written))
	result.Summary.RowsWritten = written

	return result, nil
}
