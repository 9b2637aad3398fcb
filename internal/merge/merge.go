package merge

import (
	"sort"
	"strings"

	"github.com/pfrederiksen/boxscore-sync/internal/boxscore"
	"github.com/pfrederiksen/boxscore-sync/internal/lookup"
)

// Record is a batting line with its resolved player id.
// PlayerID is nil when the player's name has no match in the lookup table.
type Record struct {
	boxscore.Record
	PlayerID *lookup.PlayerID `json:"playerId"`
}

// Ambiguity describes a normalized name shared by several lookup entries.
// The first id (API order) is the one attached to records.
type Ambiguity struct {
	Name      string            `json:"name"`
	PlayerIDs []lookup.PlayerID `json:"player_ids"`
}

// Result is the outcome of a merge.
type Result struct {
	Records   []Record    `json:"records"`
	Matched   int         `json:"matched"`
	Unmatched int         `json:"unmatched"`
	Ambiguous []Ambiguity `json:"ambiguous,omitempty"`
}

// Normalize is the join key applied to both sides: lowercase, trimmed.
func Normalize(name string) string {
	return strings.TrimSpace(strings.ToLower(name))
}

// Merge left-joins records to entries on normalized name. Every input record
// appears in the output, in input order, with its Player replaced by the
// normalized name. Entries without an id are ignored.
func Merge(records []boxscore.Record, entries []lookup.Entry) Result {
	index := make(map[string]lookup.PlayerID, len(entries))
	dupes := make(map[string][]lookup.PlayerID)

	for _, e := range entries {
		if e.PlayerID.IsZero() {
			continue
		}
		key := Normalize(e.FullName)
		if first, ok := index[key]; ok {
			if len(dupes[key]) == 0 {
				dupes[key] = []lookup.PlayerID{first}
			}
			dupes[key] = append(dupes[key], e.PlayerID)
			continue
		}
		index[key] = e.PlayerID
	}

	result := Result{Records: make([]Record, 0, len(records))}
	for _, r := range records {
		r.Player = Normalize(r.Player)
		merged := Record{Record: r}

		if id, ok := index[r.Player]; ok {
			id := id
			merged.PlayerID = &id
			result.Matched++
		} else {
			result.Unmatched++
		}
		result.Records = append(result.Records, merged)
	}

	for name, ids := range dupes {
		result.Ambiguous = append(result.Ambiguous, Ambiguity{Name: name, PlayerIDs: ids})
	}
	sort.Slice(result.Ambiguous, func(i, j int) bool {
		return result.Ambiguous[i].Name < result.Ambiguous[j].Name
	})

	return result
}
