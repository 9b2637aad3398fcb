// Package merge joins scraped batting lines to lookup-table player ids.
package merge
