package main

import (
	"database/sql"
	"encoding/json"
	"math"
)

// nullFloatJSON marshals as number or null. SQLite stores NaN as NULL and keeps
// infinities, neither of which JSON can carry, so both become null.
type nullFloatJSON struct{ sql.NullFloat64 }

func (n nullFloatJSON) MarshalJSON() ([]byte, error) {
	if !n.Valid || math.IsInf(n.Float64, 0) || math.IsNaN(n.Float64) {
		return []byte("null"), nil
	}
	return json.Marshal(n.Float64)
}

func (n *nullFloatJSON) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		n.Valid = false
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	n.Float64, n.Valid = f, true
	return nil
}

// DB wraps *sql.DB and provides result-table query helpers.
type DB struct {
	*sql.DB
	q queries
}

// NewDB returns a DB wrapper reading the given results table.
func NewDB(db *sql.DB, table string) *DB {
	return &DB{DB: db, q: newQueries(table)}
}

// Pair is one row of the results table.
type Pair struct {
	X       string        `json:"x"`
	Y       string        `json:"y"`
	Px      int64         `json:"px"`
	Py      int64         `json:"py"`
	Pxy     int64         `json:"pxy"`
	CPxy    nullFloatJSON `json:"cp_xy"`
	CPyx    nullFloatJSON `json:"cp_yx"`
	MIxy    nullFloatJSON `json:"mi_xy"`
	Metric1 nullFloatJSON `json:"metric1"`
	Metric2 nullFloatJSON `json:"metric2"`
}

// Implication says that files tagged Antecedent are (nearly) always also
// tagged Consequent, which makes the pair a candidate for a tag parent or sibling.
type Implication struct {
	Antecedent      string  `json:"antecedent"`
	Consequent      string  `json:"consequent"`
	Confidence      float64 `json:"confidence"`       // Pxy / count(antecedent)
	Support         int64   `json:"support"`          // Pxy
	AntecedentCount int64   `json:"antecedent_count"` // files carrying the antecedent
}

// Summary describes the results table as a whole.
type Summary struct {
	Table string `json:"table"`
	Rows  int64  `json:"rows"`
	Tags  int64  `json:"tags"`
}

const (
	defaultLimit = 50
	maxLimit     = 500
)

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultLimit
	}
	if limit > maxLimit {
		return maxLimit
	}
	return limit
}
