package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/uptrace/bun"
)

// queryContext applies the per-query timeout when one was configured.
func (q *QueryBuilder[T]) queryContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if q.timeout > 0 {
		return context.WithTimeout(ctx, q.timeout)
	}
	return ctx, func() {}
}

// All executes the query and returns every matching record, retrying on
// transient driver errors.
func (q *QueryBuilder[T]) All(ctx context.Context) ([]T, error) {
	start := time.Now()
	ctx, cancel := q.queryContext(ctx)
	defer cancel()

	var data []T
	err := WithRetry(ctx, func() error {
		data = nil // reset on retry

		// Preloaded relations need Model() with the destination slice,
		// otherwise bun cannot wire up has-many joins.
		if len(q.relations) > 0 {
			return q.buildBunQueryWithModel(&data).Scan(ctx)
		}
		return q.buildBunQuery().Scan(ctx, &data)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to execute select query: %w (took %v)", err, time.Since(start))
	}

	return data, nil
}

// First returns the first matching record, or nil when nothing matches.
func (q *QueryBuilder[T]) First(ctx context.Context) (*T, error) {
	start := time.Now()
	ctx, cancel := q.queryContext(ctx)
	defer cancel()

	var data T
	err := WithRetry(ctx, func() error {
		// Preloaded relations need Model() with the destination,
		// otherwise bun cannot wire up has-many joins.
		if len(q.relations) > 0 {
			return q.buildBunQueryWithModel(&data).Limit(1).Scan(ctx)
		}
		return q.buildBunQuery().Limit(1).Scan(ctx, &data)
	})
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to execute first query: %w (took %v)", err, time.Since(start))
	}

	return &data, nil
}

// Count returns the number of matching records.
func (q *QueryBuilder[T]) Count(ctx context.Context) (int, error) {
	start := time.Now()
	ctx, cancel := q.queryContext(ctx)
	defer cancel()

	var count int
	err := WithRetry(ctx, func() error {
		var err error
		count, err = q.buildBunQuery().Count(ctx)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("failed to execute count query: %w (took %v)", err, time.Since(start))
	}

	return count, nil
}

// Exists reports whether any record matches the query.
func (q *QueryBuilder[T]) Exists(ctx context.Context) (bool, error) {
	count, err := q.Count(ctx)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Insert inserts one record and returns it.
func (q *QueryBuilder[T]) Insert(ctx context.Context, data *T) (*T, error) {
	start := time.Now()
	ctx, cancel := q.queryContext(ctx)
	defer cancel()

	err := WithRetry(ctx, func() error {
		query := q.db.NewInsert().Model(data)
		if q.tableName != "" {
			query = query.Table(q.tableName)
		}
		_, err := query.Exec(ctx)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to execute insert query: %w (took %v)", err, time.Since(start))
	}

	return data, nil
}

// InsertMany inserts a batch of records in one statement.
func (q *QueryBuilder[T]) InsertMany(ctx context.Context, data []T) ([]T, error) {
	if len(data) == 0 {
		return data, nil
	}

	start := time.Now()
	ctx, cancel := q.queryContext(ctx)
	defer cancel()

	err := WithRetry(ctx, func() error {
		query := q.db.NewInsert().Model(&data)
		if q.tableName != "" {
			query = query.Table(q.tableName)
		}
		_, err := query.Exec(ctx)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to execute bulk insert query: %w (took %v)", err, time.Since(start))
	}

	return data, nil
}

// Update writes the given data to every matching record and returns the number
// of affected rows. Data is either a column map or a full model.
func (q *QueryBuilder[T]) Update(ctx context.Context, data any) (int, error) {
	start := time.Now()
	ctx, cancel := q.queryContext(ctx)
	defer cancel()

	var rowsAffected int64
	err := WithRetry(ctx, func() error {
		var model T
		query := q.db.NewUpdate().Model(&model)
		if q.tableName != "" {
			query = query.Table(q.tableName)
		}
		query = applyClauses(query, q.wheres, q.whereGroups)

		switch v := data.(type) {
		case map[string]any:
			for key, value := range v {
				query = query.Set("? = ?", bun.Ident(key), value)
			}
		case *T:
			query = query.Model(v)
		default:
			return fmt.Errorf("unsupported data type for update: %T", data)
		}

		res, err := query.Exec(ctx)
		if err != nil {
			return err
		}
		rowsAffected, _ = res.RowsAffected()
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to execute update query: %w (took %v)", err, time.Since(start))
	}

	return int(rowsAffected), nil
}

// Delete removes every matching record and returns the number of affected rows.
func (q *QueryBuilder[T]) Delete(ctx context.Context) (int, error) {
	start := time.Now()
	ctx, cancel := q.queryContext(ctx)
	defer cancel()

	var rowsAffected int64
	err := WithRetry(ctx, func() error {
		var model T
		query := q.db.NewDelete().Model(&model)
		if q.tableName != "" {
			query = query.Table(q.tableName)
		}
		query = applyClauses(query, q.wheres, q.whereGroups)

		res, err := query.Exec(ctx)
		if err != nil {
			return err
		}
		rowsAffected, _ = res.RowsAffected()
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to execute delete query: %w (took %v)", err, time.Since(start))
	}

	return int(rowsAffected), nil
}

// applyClauses renders the collected WHERE clauses onto a bun update or delete
// builder. Bun's mutation builders share the Where signature but not a common
// interface, hence the self-referential constraint.
func applyClauses[Q interface {
	Where(string, ...any) Q
}](query Q, wheres []*WhereClause, groups []*WhereGroup) Q {
	for _, where := range wheres {
		switch {
		case where.IsRaw:
			query = query.Where(where.RawSQL, where.RawArgs...)
		case where.Operator == "IS NULL" || where.Operator == "IS NOT NULL":
			query = query.Where(fmt.Sprintf("%s %s", where.Column, where.Operator))
		case where.Negate:
			query = query.Where(fmt.Sprintf("NOT (%s %s ?)", where.Column, where.Operator), where.Value)
		default:
			query = query.Where(fmt.Sprintf("%s %s ?", where.Column, where.Operator), where.Value)
		}
	}

	for _, group := range groups {
		if len(group.Conditions) == 0 {
			continue
		}

		var conditions []string
		var args []any
		for _, cond := range group.Conditions {
			switch {
			case cond.IsRaw:
				conditions = append(conditions, cond.RawSQL)
				args = append(args, cond.RawArgs...)
			case cond.Operator == "IS NULL" || cond.Operator == "IS NOT NULL":
				conditions = append(conditions, fmt.Sprintf("%s %s", cond.Column, cond.Operator))
			default:
				conditions = append(conditions, fmt.Sprintf("%s %s ?", cond.Column, cond.Operator))
				args = append(args, cond.Value)
			}
		}

		groupSQL := "(" + strings.Join(conditions, " "+group.Connector+" ") + ")"
		if group.Negate {
			groupSQL = "NOT " + groupSQL
		}
		query = query.Where(groupSQL, args...)
	}

	return query
}
