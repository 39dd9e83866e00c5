package main

import "strings"

// queries holds the SQL for one results table. The table name is checked
// against validTable before it gets here.
type queries struct {
	name         string
	table        string // quoted
	summary      string
	pairsForTag  string
	implications string
}

// metricColumns maps the ?metric= values of /api/top to result columns.
var metricColumns = map[string]string{
	"mi":      "MIxy",
	"cpxy":    "CPxy",
	"cpyx":    "CPyx",
	"metric1": "test_metric_1",
	"metric2": "test_metric_2",
	"pxy":     "Pxy",
}

const pairColumns = `x, y, Px, Py, Pxy, CPxy, CPyx, MIxy, test_metric_1, test_metric_2`

func newQueries(table string) queries {
	t := `"` + strings.ReplaceAll(table, `"`, `""`) + `"`
	return queries{
		name:  table,
		table: t,
		summary: `
SELECT (SELECT COUNT(*) FROM ` + t + `),
       (SELECT COUNT(*) FROM (SELECT x FROM ` + t + ` UNION SELECT y FROM ` + t + `))`,
		pairsForTag: `
SELECT ` + pairColumns + ` FROM ` + t + `
WHERE x = ? OR y = ?
ORDER BY Pxy DESC, x, y
LIMIT ?`,
		// CPxy = Pxy/Py: the share of y's files that also carry x, so y implies x.
		implications: `
SELECT y, x, CPxy, Pxy, Py FROM ` + t + ` WHERE CPxy >= ? AND CPxy <= 1 AND Pxy >= ?
UNION ALL
SELECT x, y, CPyx, Pxy, Px FROM ` + t + ` WHERE CPyx >= ? AND CPyx <= 1 AND Pxy >= ?
ORDER BY 3 DESC, 4 DESC, 1, 2
LIMIT ?`,
	}
}

// top ranks rows by one metric column, skipping NULL and infinite values.
func (q queries) top(column string) string {
	return `
SELECT ` + pairColumns + ` FROM ` + q.table + `
WHERE ` + column + ` IS NOT NULL AND abs(` + column + `) < 1e308
ORDER BY ` + column + ` DESC, x, y
LIMIT ?`
}
