package storage

import (
	"strconv"
	"strings"
)

// Filter is the parameter set of the presentation boundary: every condition
// is optional and all active conditions are combined with AND. Queries built
// from it run against vw_card_details.
type Filter struct {
	MinPrice     *float64
	MaxPrice     *float64
	CardTypes    []string
	RarityLevels []string
	Generation   string
	Expansion    string
	NameSearch   string // case-insensitive substring match on pokemon_name
}

// Placeholder renders the i-th (1-based) bind parameter for a backend:
// "?" for database/sql + sqlite, "$1" style for pgx.
type Placeholder func(i int) string

// WhereClause renders the filter as a SQL WHERE clause (including the
// leading " WHERE", empty when no condition is active) plus the bind
// arguments in placeholder order.
func (f Filter) WhereClause(ph Placeholder) (string, []any) {
	var (
		conds []string
		args  []any
	)
	next := func(v any) string {
		args = append(args, v)
		return ph(len(args))
	}

	if f.MinPrice != nil {
		conds = append(conds, "price >= "+next(*f.MinPrice))
	}
	if f.MaxPrice != nil {
		conds = append(conds, "price <= "+next(*f.MaxPrice))
	}
	if len(f.CardTypes) > 0 {
		conds = append(conds, inList("card_type", f.CardTypes, next))
	}
	if len(f.RarityLevels) > 0 {
		conds = append(conds, inList("rarity_level", f.RarityLevels, next))
	}
	if f.Generation != "" {
		conds = append(conds, "generation = "+next(f.Generation))
	}
	if f.Expansion != "" {
		conds = append(conds, "expansion_name = "+next(f.Expansion))
	}
	if s := strings.TrimSpace(f.NameSearch); s != "" {
		conds = append(conds, "LOWER(pokemon_name) LIKE "+next("%"+strings.ToLower(s)+"%"))
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func inList(column string, values []string, next func(any) string) string {
	phs := make([]string, len(values))
	for i, v := range values {
		phs[i] = next(v)
	}
	return column + " IN (" + strings.Join(phs, ", ") + ")"
}

// QuestionPlaceholder is the database/sql "?" style.
func QuestionPlaceholder(int) string { return "?" }

// DollarPlaceholder is the pgx "$1" style.
func DollarPlaceholder(i int) string { return "$" + strconv.Itoa(i) }
