package boxscore

// StatsTableMarker identifies a batting table: any table whose text contains it.
const StatsTableMarker = "AB"

// ColumnMap holds the zero-based td positions read from each batting row.
// Markup changes on the stats site should only require editing this mapping.
type ColumnMap struct {
	Player       int
	Runs         int
	AtBats       int
	Hits         int
	HomeRuns     int
	RunsBattedIn int

	// MinCells is the number of td cells a row needs to count as a player row.
	MinCells int
}

// DefaultColumns matches the stats.ncaa.org individual_stats batting layout.
var DefaultColumns = ColumnMap{
	Player:       1,
	Runs:         3,
	AtBats:       4,
	Hits:         5,
	HomeRuns:     9,
	RunsBattedIn: 10,
	MinCells:     11,
}

// maxIndex returns the highest column position referenced by the mapping.
func (c ColumnMap) maxIndex() int {
	highest := c.Player
	for _, idx := range []int{c.Runs, c.AtBats, c.Hits, c.HomeRuns, c.RunsBattedIn} {
		if idx > highest {
			highest = idx
		}
	}
	return highest
}

// minCells is the effective row width: never narrower than the columns read.
func (c ColumnMap) minCells() int {
	if need := c.maxIndex() + 1; need > c.MinCells {
		return need
	}
	return c.MinCells
}
