package query

import (
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Expression translates p into a gorm clause expression. MatchAll yields
// nil, meaning no condition.
func Expression(p Predicate) clause.Expression {
	switch v := p.(type) {
	case nil, MatchAll:
		return nil
	case Never:
		return clause.Expr{SQL: "1 = 0"}
	case Eq:
		return clause.Eq{Column: clause.Column{Name: v.Field}, Value: v.Value}
	case ContainsFold:
		return clause.Expr{
			SQL:  `LOWER(CAST(? AS TEXT)) LIKE ? ESCAPE '\'`,
			Vars: []any{clause.Column{Name: v.Field}, "%" + likeEscaper.Replace(strings.ToLower(v.Term)) + "%"},
		}
	case And:
		exprs := expressions(v)
		switch len(exprs) {
		case 0:
			return nil
		case 1:
			return exprs[0]
		}
		return clause.And(exprs...)
	case Or:
		exprs := expressions(v)
		switch len(exprs) {
		case 0:
			return clause.Expr{SQL: "1 = 0"}
		case 1:
			// gorm joins a lone OrConditions to its neighbours with OR.
			return exprs[0]
		}
		return clause.Or(exprs...)
	default:
		return clause.Expr{SQL: "1 = 0"}
	}
}

func expressions(ps []Predicate) []clause.Expression {
	out := make([]clause.Expression, 0, len(ps))
	for _, p := range ps {
		if e := Expression(p); e != nil {
			out = append(out, e)
		}
	}
	return out
}

// Apply adds p as a WHERE condition on db.
func Apply(db *gorm.DB, p Predicate) *gorm.DB {
	if e := Expression(p); e != nil {
		return db.Where(e)
	}
	return db
}

// ApplySort adds ORDER BY terms for every key whose field passes allowed.
// A nil allowed keeps every key.
func ApplySort(db *gorm.DB, keys []SortKey, allowed func(field string) bool) *gorm.DB {
	for _, k := range keys {
		field := strings.TrimSpace(k.Field)
		if field == "" || (allowed != nil && !allowed(field)) {
			continue
		}
		db = db.Order(clause.OrderByColumn{
			Column: clause.Column{Name: field},
			Desc:   k.Direction == SortDesc,
		})
	}
	return db
}
