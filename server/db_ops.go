package main

import (
	"database/sql"
	"fmt"
)

// Summary counts rows and distinct tags.
func (db *DB) Summary() (*Summary, error) {
	s := &Summary{Table: db.q.name}
	if err := db.QueryRow(db.q.summary).Scan(&s.Rows, &s.Tags); err != nil {
		return nil, err
	}
	return s, nil
}

// PairsForTag returns rows where tag is either side, largest shared file count first.
func (db *DB) PairsForTag(tag string, limit int) ([]Pair, error) {
	rows, err := db.Query(db.q.pairsForTag, tag, tag, clampLimit(limit))
	if err != nil {
		return nil, err
	}
	return scanPairs(rows)
}

// Top returns the rows with the highest value of metric (a key of metricColumns).
func (db *DB) Top(metric string, limit int) ([]Pair, error) {
	col, ok := metricColumns[metric]
	if !ok {
		return nil, fmt.Errorf("unknown metric %q", metric)
	}
	rows, err := db.Query(db.q.top(col), clampLimit(limit))
	if err != nil {
		return nil, err
	}
	return scanPairs(rows)
}

// Implications lists directed pairs whose conditional probability is at least
// minCP and whose shared file count is at least minPxy.
func (db *DB) Implications(minCP float64, minPxy int64, limit int) ([]Implication, error) {
	rows, err := db.Query(db.q.implications, minCP, minPxy, minCP, minPxy, clampLimit(limit))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Implication{}
	for rows.Next() {
		var im Implication
		if err := rows.Scan(&im.Antecedent, &im.Consequent, &im.Confidence, &im.Support, &im.AntecedentCount); err != nil {
			return nil, err
		}
		out = append(out, im)
	}
	return out, rows.Err()
}

func scanPairs(rows *sql.Rows) ([]Pair, error) {
	defer rows.Close()
	out := []Pair{}
	for rows.Next() {
		var p Pair
		if err := rows.Scan(&p.X, &p.Y, &p.Px, &p.Py, &p.Pxy,
			&p.CPxy.NullFloat64, &p.CPyx.NullFloat64, &p.MIxy.NullFloat64,
			&p.Metric1.NullFloat64, &p.Metric2.NullFloat64); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
