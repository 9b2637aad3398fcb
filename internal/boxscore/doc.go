// Package boxscore fetches NCAA individual-stats pages and extracts per-player batting lines.
//
// Each game page carries one batting table per team. The parser treats any table
// whose text contains the "AB" column header as a batting table, drops its header
// and totals rows, and reads player and stat cells by fixed position (see ColumnMap).
// Values are kept as the scraped text; nothing is coerced to numbers.
package boxscore
