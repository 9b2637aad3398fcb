package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/bytedance/sonic"

	"github.com/pfrederiksen/boxscore-sync/internal/pipeline"
	"github.com/pfrederiksen/boxscore-sync/internal/sheets"
)

// OutputFormat specifies the output format
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
)

// WriteOutput writes the result in the specified format. Text output includes
// the merged table only when showTable is set; JSON always carries it.
func WriteOutput(w io.Writer, result *pipeline.Result, format OutputFormat, showTable bool) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, result)
	case FormatText:
		return writeText(w, result, showTable)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// writeJSON outputs results as indented JSON
func writeJSON(w io.Writer, result *pipeline.Result) error {
	out, err := sonic.ConfigStd.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}

// writeText outputs results as human-readable text
func writeText(w io.Writer, result *pipeline.Result, showTable bool) error {
	s := result.Summary

	if showTable {
		if err := writeTable(w, result); err != nil {
			return err
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "Games scraped:   %d\n", s.Games)
	fmt.Fprintf(w, "Batting rows:    %d\n", s.Records)
	fmt.Fprintf(w, "Lookup entries:  %d\n", s.LookupEntries)
	fmt.Fprintf(w, "Matched:         %d\n", s.Matched)
	fmt.Fprintf(w, "Unmatched:       %d\n", s.Unmatched)

	if len(s.Ambiguous) > 0 {
		fmt.Fprintf(w, "Ambiguous names: %d\n", len(s.Ambiguous))
		for _, a := range s.Ambiguous {
			ids := make([]string, 0, len(a.PlayerIDs))
			for _, id := range a.PlayerIDs {
				ids = append(ids, id.String())
			}
			fmt.Fprintf(w, "  %s: %s\n", a.Name, strings.Join(ids, ", "))
		}
	}

	if s.DryRun {
		fmt.Fprintln(w, "Dry run: spreadsheet not updated.")
	} else {
		fmt.Fprintf(w, "Rows written:    %d\n", s.RowsWritten)
	}
	return nil
}

// writeTable prints the merged records under the spreadsheet header.
func writeTable(w io.Writer, result *pipeline.Result) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, row := range sheets.Rows(result.Records) {
		cells := make([]string, len(row))
		for i, v := range row {
			cells[i] = fmt.Sprint(v)
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	return tw.Flush()
}
