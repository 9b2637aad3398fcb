package lookup

import (
	"bytes"
	"strconv"

	"github.com/bytedance/sonic"
	"github.com/cockroachdb/errors"
)

// Entry is one row of the player lookup table.
type Entry struct {
	FullName string   `json:"fullName"`
	PlayerID PlayerID `json:"playerId"`
}

// PlayerID is an opaque identifier that the API returns either as a JSON
// string or as a JSON number. The original representation is preserved.
type PlayerID struct {
	value   string
	numeric bool
}

// NewPlayerID builds a string-typed id.
func NewPlayerID(value string) PlayerID {
	return PlayerID{value: value}
}

// NewNumericPlayerID builds a number-typed id.
func NewNumericPlayerID(value int64) PlayerID {
	return PlayerID{value: strconv.FormatInt(value, 10), numeric: true}
}

// IsZero reports whether the id is absent (missing or JSON null).
func (id PlayerID) IsZero() bool {
	return id.value == ""
}

// IsNumeric reports whether the API sent the id as a JSON number.
func (id PlayerID) IsNumeric() bool {
	return id.numeric
}

func (id PlayerID) String() string {
	return id.value
}

// CellValue returns the id as a spreadsheet cell: integers stay numbers.
func (id PlayerID) CellValue() interface{} {
	if id.numeric {
		if n, err := strconv.ParseInt(id.value, 10, 64); err == nil {
			return n
		}
		if f, err := strconv.ParseFloat(id.value, 64); err == nil {
			return f
		}
	}
	return id.value
}

// UnmarshalJSON accepts a string, a number or null.
func (id *PlayerID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*id = PlayerID{}
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := sonic.Unmarshal(data, &s); err != nil {
			return errors.Wrap(err, "decoding playerId string")
		}
		*id = PlayerID{value: s}
		return nil
	}

	if _, err := strconv.ParseFloat(string(data), 64); err != nil {
		return errors.Newf("unsupported playerId value %s", data)
	}
	*id = PlayerID{value: string(data), numeric: true}
	return nil
}

// MarshalJSON writes the id back in its original JSON type.
func (id PlayerID) MarshalJSON() ([]byte, error) {
	if id.IsZero() {
		return []byte("null"), nil
	}
	if id.numeric {
		return []byte(id.value), nil
	}
	return sonic.Marshal(id.value)
}
