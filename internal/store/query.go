package store

import (
	"strings"

	"github.com/Zachkp/portfolio/internal/schema"
)

// Order preferences per content type. A leading "-" sorts descending; terms
// whose column the schema lacks are dropped, and the fallback column is used
// when none survive.
var (
	projectOrder     = []string{"sort_order", "-created_at"}
	skillOrder       = []string{"sort_order", "name"}
	experienceOrder  = []string{"sort_order", "-is_current", "-start_date"}
	educationOrder   = []string{"sort_order", "-end_year"}
	certificateOrder = []string{"sort_order", "-issued_date"}
	resumeOrder      = []string{"-updated_at"}
)

// orderClause assembles the ORDER BY terms for the columns present in fields.
// The chain always ends on the primary key so equal rows keep a stable order.
func orderClause(fields schema.Fields, prefer []string, fallback string) string {
	var terms []string
	seenID := false
	add := func(term string) {
		desc := strings.HasPrefix(term, "-")
		col := strings.TrimPrefix(term, "-")
		if col == "id" {
			seenID = true
		}
		if desc {
			terms = append(terms, col+" DESC NULLS LAST")
		} else {
			terms = append(terms, col+" ASC")
		}
	}

	for _, term := range prefer {
		if fields.Has(strings.TrimPrefix(term, "-")) {
			add(term)
		}
	}
	if len(terms) == 0 {
		add(fallback)
	}
	if !seenID {
		add("id")
	}
	return strings.Join(terms, ", ")
}

// featuredColumn names the boolean featured flag, preferring is_featured.
func featuredColumn(fields schema.Fields) string {
	switch {
	case fields.Has("is_featured"):
		return "is_featured"
	case fields.Has("featured"):
		return "featured"
	default:
		return ""
	}
}

// plan is a resolved read of one content table.
type plan[T any] struct {
	table   string
	columns []column[T]
	orderBy string
}

func newPlan[T any](table string, fields schema.Fields, cols []column[T], prefer []string, fallback string) plan[T] {
	return plan[T]{
		table:   table,
		columns: present(fields, cols),
		orderBy: orderClause(fields, prefer, fallback),
	}
}

// selectSQL renders the query; where is optional and limit <= 0 means none.
func (p plan[T]) selectSQL(where string, limit int) (string, []any) {
	var args []any
	var b strings.Builder
	b.WriteString("SELECT ")
	b.WriteString(columnNames(p.columns))
	b.WriteString(" FROM ")
	b.WriteString(p.table)
	if where != "" {
		b.WriteString(" WHERE ")
		b.WriteString(where)
	}
	b.WriteString(" ORDER BY ")
	b.WriteString(p.orderBy)
	if limit > 0 {
		b.WriteString(" LIMIT ?")
		args = append(args, limit)
	}
	return b.String(), args
}
