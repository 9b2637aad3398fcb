package boxscore

// Record is one batting line for one player in one game.
type Record struct {
	GameID       string `json:"Game_ID"`
	Player       string `json:"Player"`
	AtBats       string `json:"AB"`
	Runs         string `json:"R"`
	Hits         string `json:"H"`
	HomeRuns     string `json:"HR"`
	RunsBattedIn string `json:"RBI"`
}

// Aggregate concatenates per-game tables, keeping game order and row order.
func Aggregate(tables ...[]Record) []Record {
	total := 0
	for _, t := range tables {
		total += len(t)
	}

	out := make([]Record, 0, total)
	for _, t := range tables {
		out = append(out, t...)
	}
	return out
}
