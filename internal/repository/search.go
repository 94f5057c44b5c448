package repository

import (
	"strings"

	"gorm.io/gorm"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern turns q into a LIKE pattern that matches q as a literal substring.
func containsPattern(q string) string {
	return "%" + likeEscaper.Replace(q) + "%"
}

// likeOp picks the case-insensitive match operator for the dialect. SQLite's
// LIKE already ignores ASCII case.
func likeOp(db *gorm.DB) string {
	if db.Dialector.Name() == "postgres" {
		return "ILIKE"
	}
	return "LIKE"
}

// anyContains builds "(col1 ILIKE ? OR col2 ILIKE ? ...)" with one bound
// pattern per column.
func anyContains(db *gorm.DB, q string, columns ...string) (string, []any) {
	op := likeOp(db)
	pattern := containsPattern(q)
	conds := make([]string, len(columns))
	args := make([]any, len(columns))
	for i, col := range columns {
		conds[i] = col + " " + op + ` ? ESCAPE '\'`
		args[i] = pattern
	}
	return "(" + strings.Join(conds, " OR ") + ")", args
}
