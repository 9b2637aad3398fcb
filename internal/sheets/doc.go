// Package sheets publishes merged box-score rows to a Google Sheets spreadsheet.
//
// A publish clears the first sheet of the target spreadsheet and writes the
// header plus every data row in one values.update call. There is no locking:
// two concurrent publishes to the same spreadsheet race and the last writer wins.
package sheets
