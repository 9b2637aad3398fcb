// Package pipeline runs one sync: scrape every game, fetch the player lookup
// table, merge, and publish to the spreadsheet. Steps run strictly in sequence
// and the first error ends the run.
package pipeline
