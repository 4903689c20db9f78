package database

import (
	"fmt"

	"github.com/uptrace/bun"
)

// buildBunQuery renders the accumulated clauses into a bun SelectQuery with a
// nil model, suitable for Scan(ctx, &dest) and Count.
func (q *QueryBuilder[T]) buildBunQuery() *bun.SelectQuery {
	query := q.db.NewSelect().Model((*T)(nil))
	return q.applySelectClauses(query)
}

// buildBunQueryWithModel binds the destination slice as the model so bun can
// resolve has-many relations during Scan.
func (q *QueryBuilder[T]) buildBunQueryWithModel(dest any) *bun.SelectQuery {
	query := q.db.NewSelect().Model(dest)
	for _, rel := range q.relations {
		query = query.Relation(rel)
	}
	return q.applySelectClauses(query)
}

func (q *QueryBuilder[T]) applySelectClauses(query *bun.SelectQuery) *bun.SelectQuery {
	if q.tableName != "" {
		query = query.ModelTableExpr("?", bun.Ident(q.tableName))
	}

	if len(q.selectCols) > 0 {
		query = query.Column(q.selectCols...)
	}

	if q.distinct {
		query = query.Distinct()
	}

	for _, where := range q.wheres {
		query = applyWhereToSelect(query, where)
	}

	for _, group := range q.whereGroups {
		query = applyWhereGroupToSelect(query, group)
	}

	for _, order := range q.orders {
		query = query.Order(fmt.Sprintf("%s %s", order.Column, order.Direction))
	}

	if q.limitVal != nil {
		query = query.Limit(*q.limitVal)
	}
	if q.offsetVal != nil {
		query = query.Offset(*q.offsetVal)
	}

	return query
}

func applyWhereToSelect(query *bun.SelectQuery, where *WhereClause) *bun.SelectQuery {
	if where.IsRaw {
		return query.Where(where.RawSQL, where.RawArgs...)
	}

	switch where.Operator {
	case "IS NULL", "IS NOT NULL":
		return query.Where(fmt.Sprintf("%s %s", where.Column, where.Operator))
	case "IN":
		values, _ := where.Value.([]any)
		if where.Negate {
			return query.Where(fmt.Sprintf("%s NOT IN (?)", where.Column), bun.In(values))
		}
		return query.Where(fmt.Sprintf("%s IN (?)", where.Column), bun.In(values))
	default:
		if where.Negate {
			return query.Where(fmt.Sprintf("NOT (%s %s ?)", where.Column, where.Operator), where.Value)
		}
		return query.Where(fmt.Sprintf("%s %s ?", where.Column, where.Operator), where.Value)
	}
}

func applyWhereGroupToSelect(query *bun.SelectQuery, group *WhereGroup) *bun.SelectQuery {
	if len(group.Conditions) == 0 {
		return query
	}

	var conditions []string
	var args []any

	for _, cond := range group.Conditions {
		if cond.IsRaw {
			conditions = append(conditions, cond.RawSQL)
			args = append(args, cond.RawArgs...)
			continue
		}
		if cond.Operator == "IS NULL" || cond.Operator == "IS NOT NULL" {
			conditions = append(conditions, fmt.Sprintf("%s %s", cond.Column, cond.Operator))
			continue
		}
		conditions = append(conditions, fmt.Sprintf("%s %s ?", cond.Column, cond.Operator))
		args = append(args, cond.Value)
	}

	groupSQL := "(" + joinStrings(conditions, " "+group.Connector+" ") + ")"
	if group.Negate {
		groupSQL = "NOT " + groupSQL
	}

	return query.Where(groupSQL, args...)
}

func joinStrings(parts []string, sep string) string {
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += sep
		}
		out += p
	}
	return out
}
