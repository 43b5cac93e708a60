// Package mysql implements the table-store port on MySQL, for deployments
// that own their data instead of delegating to the hosted record API.
package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"stayscape/internal/domain"
)

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

// EnsureSchema creates the backing tables when absent.
func (r *Repo) EnsureSchema(ctx context.Context, tables ...string) error {
	for _, t := range tables {
		name, err := ident(t)
		if err != nil {
			return err
		}
		if _, err := r.db.ExecContext(ctx, fmt.Sprintf(createTableSQL, name)); err != nil {
			return fmt.Errorf("mysql: create table %s: %w", name, err)
		}
	}
	return nil
}

func (r *Repo) Fetch(ctx context.Context, table string, q domain.Query) ([]domain.Record, error) {
	name, err := ident(table)
	if err != nil {
		return nil, err
	}

	var sb strings.Builder
	var args []any
	sb.WriteString(fmt.Sprintf(selectDocsSQL, name))

	where, whereArgs, err := whereClause(q)
	if err != nil {
		return nil, err
	}
	if where != "" {
		sb.WriteString(" WHERE ")
		sb.WriteString(where)
		args = append(args, whereArgs...)
	}

	order, err := orderClause(q.OrderBy)
	if err != nil {
		return nil, err
	}
	if order != "" {
		sb.WriteString(" ORDER BY ")
		sb.WriteString(order)
	} else {
		sb.WriteString(" ORDER BY id")
	}

	if q.Limit > 0 {
		sb.WriteString(" LIMIT ?")
		args = append(args, q.Limit)
		if q.Offset > 0 {
			sb.WriteString(" OFFSET ?")
			args = append(args, q.Offset)
		}
	}

	rows, err := r.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("mysql: fetch %s: %w", name, err)
	}
	defer rows.Close()

	out := []domain.Record{}
	for rows.Next() {
		var id int
		var doc []byte
		if err := rows.Scan(&id, &doc); err != nil {
			return nil, err
		}
		rec, err := decodeDoc(id, doc)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *Repo) Get(ctx context.Context, table string, id int, q domain.Query) (domain.Record, error) {
	name, err := ident(table)
	if err != nil {
		return nil, err
	}
	var doc []byte
	err = r.db.QueryRowContext(ctx, fmt.Sprintf(selectDocSQL, name), id).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("mysql: %s/%d: %w", name, id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("mysql: get %s/%d: %w", name, id, err)
	}
	return decodeDoc(id, doc)
}

func (r *Repo) Create(ctx context.Context, table string, records []domain.Record) ([]domain.WriteResult, error) {
	name, err := ident(table)
	if err != nil {
		return nil, err
	}
	results := make([]domain.WriteResult, 0, len(records))
	for _, rec := range records {
		doc, err := json.Marshal(stripID(rec))
		if err != nil {
			results = append(results, domain.WriteResult{Success: false, Message: err.Error()})
			continue
		}
		res, err := r.db.ExecContext(ctx, fmt.Sprintf(insertDocSQL, name), string(doc))
		if err != nil {
			results = append(results, domain.WriteResult{Success: false, Message: err.Error()})
			continue
		}
		id, err := res.LastInsertId()
		if err != nil {
			results = append(results, domain.WriteResult{Success: false, Message: err.Error()})
			continue
		}
		stored, err := r.Get(ctx, table, int(id), domain.Query{})
		if err != nil {
			results = append(results, domain.WriteResult{Success: false, Message: err.Error()})
			continue
		}
		results = append(results, domain.WriteResult{Success: true, Data: stored})
	}
	return results, nil
}

func (r *Repo) Update(ctx context.Context, table string, records []domain.Record) ([]domain.WriteResult, error) {
	name, err := ident(table)
	if err != nil {
		return nil, err
	}
	results := make([]domain.WriteResult, 0, len(records))
	for _, patch := range records {
		id := recordID(patch)
		var one int
		err := r.db.QueryRowContext(ctx, fmt.Sprintf(existsSQL, name), id).Scan(&one)
		if errors.Is(err, sql.ErrNoRows) {
			results = append(results, domain.WriteResult{
				Success: false,
				Message: fmt.Sprintf("record %d does not exist", id),
			})
			continue
		}
		if err != nil {
			results = append(results, domain.WriteResult{Success: false, Message: err.Error()})
			continue
		}

		doc, err := json.Marshal(stripID(patch))
		if err != nil {
			results = append(results, domain.WriteResult{Success: false, Message: err.Error()})
			continue
		}
		if _, err := r.db.ExecContext(ctx, fmt.Sprintf(mergeDocSQL, name), string(doc), id); err != nil {
			results = append(results, domain.WriteResult{Success: false, Message: err.Error()})
			continue
		}
		stored, err := r.Get(ctx, table, id, domain.Query{})
		if err != nil {
			results = append(results, domain.WriteResult{Success: false, Message: err.Error()})
			continue
		}
		results = append(results, domain.WriteResult{Success: true, Data: stored})
	}
	return results, nil
}

func (r *Repo) Delete(ctx context.Context, table string, ids []int) ([]domain.WriteResult, error) {
	name, err := ident(table)
	if err != nil {
		return nil, err
	}
	results := make([]domain.WriteResult, 0, len(ids))
	for _, id := range ids {
		res, err := r.db.ExecContext(ctx, fmt.Sprintf(deleteByIDSQL, name), id)
		if err != nil {
			results = append(results, domain.WriteResult{Success: false, Message: err.Error()})
			continue
		}
		if n, _ := res.RowsAffected(); n == 0 {
			results = append(results, domain.WriteResult{
				Success: false,
				Message: fmt.Sprintf("record %d does not exist", id),
			})
			continue
		}
		results = append(results, domain.WriteResult{Success: true})
	}
	return results, nil
}

/********** query compilation **********/

func whereClause(q domain.Query) (string, []any, error) {
	var parts []string
	var args []any
	for _, c := range q.Where {
		sqlStr, a, err := condSQL(c)
		if err != nil {
			return "", nil, err
		}
		parts = append(parts, sqlStr)
		args = append(args, a...)
	}
	for _, g := range q.WhereGroups {
		sqlStr, a, err := groupSQL(g)
		if err != nil {
			return "", nil, err
		}
		parts = append(parts, sqlStr)
		args = append(args, a...)
	}
	return strings.Join(parts, " AND "), args, nil
}

func groupSQL(g domain.ConditionGroup) (string, []any, error) {
	join := " AND "
	if strings.EqualFold(g.Operator, "OR") {
		join = " OR "
	}
	var parts []string
	var args []any
	for _, c := range g.Conditions {
		sqlStr, a, err := condSQL(c)
		if err != nil {
			return "", nil, err
		}
		parts = append(parts, sqlStr)
		args = append(args, a...)
	}
	for _, sub := range g.Groups {
		sqlStr, a, err := groupSQL(sub)
		if err != nil {
			return "", nil, err
		}
		parts = append(parts, sqlStr)
		args = append(args, a...)
	}
	if len(parts) == 0 {
		return "TRUE", nil, nil
	}
	return "(" + strings.Join(parts, join) + ")", args, nil
}

func condSQL(c domain.Condition) (string, []any, error) {
	if c.Field == "Id" {
		return idCondSQL(c)
	}
	unquoted, raw, err := docField(c.Field)
	if err != nil {
		return "", nil, err
	}
	switch c.Op {
	case domain.EqualTo:
		if len(c.Values) != 1 {
			return "", nil, fmt.Errorf("mysql: EqualTo wants one value, got %d", len(c.Values))
		}
		return unquoted + " = ?", []any{c.Values[0]}, nil
	case domain.GreaterThanOrEqualTo:
		if len(c.Values) != 1 {
			return "", nil, fmt.Errorf("mysql: GreaterThanOrEqualTo wants one value, got %d", len(c.Values))
		}
		return raw + " >= CAST(? AS JSON)", []any{jsonArg(c.Values[0])}, nil
	case domain.LessThanOrEqualTo:
		if len(c.Values) != 1 {
			return "", nil, fmt.Errorf("mysql: LessThanOrEqualTo wants one value, got %d", len(c.Values))
		}
		return raw + " <= CAST(? AS JSON)", []any{jsonArg(c.Values[0])}, nil
	case domain.Contains:
		if len(c.Values) != 1 {
			return "", nil, fmt.Errorf("mysql: Contains wants one value, got %d", len(c.Values))
		}
		return "LOWER(" + unquoted + ") LIKE CONCAT('%', LOWER(?), '%')", []any{c.Values[0]}, nil
	case domain.ExactMatch:
		if len(c.Values) == 0 {
			return "FALSE", nil, nil
		}
		ph := strings.TrimSuffix(strings.Repeat("?,", len(c.Values)), ",")
		return unquoted + " IN (" + ph + ")", c.Values, nil
	}
	return "", nil, fmt.Errorf("mysql: unsupported operator %q", c.Op)
}

func idCondSQL(c domain.Condition) (string, []any, error) {
	switch c.Op {
	case domain.EqualTo:
		return "id = ?", []any{c.Values[0]}, nil
	case domain.ExactMatch:
		if len(c.Values) == 0 {
			return "FALSE", nil, nil
		}
		ph := strings.TrimSuffix(strings.Repeat("?,", len(c.Values)), ",")
		return "id IN (" + ph + ")", c.Values, nil
	}
	return "", nil, fmt.Errorf("mysql: unsupported operator %q on Id", c.Op)
}

func orderClause(orderBy []domain.Sort) (string, error) {
	var parts []string
	for _, srt := range orderBy {
		dir := "ASC"
		if srt.Desc {
			dir = "DESC"
		}
		if srt.Field == "Id" {
			parts = append(parts, "id "+dir)
			continue
		}
		// raw JSON extraction keeps numeric ordering numeric
		_, raw, err := docField(srt.Field)
		if err != nil {
			return "", err
		}
		parts = append(parts, raw+" "+dir)
	}
	return strings.Join(parts, ", "), nil
}

/********** record plumbing **********/

// jsonArg renders a scalar for CAST(? AS JSON) comparison.
func jsonArg(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "null"
	}
	return string(b)
}

func decodeDoc(id int, doc []byte) (domain.Record, error) {
	var rec domain.Record
	if err := json.Unmarshal(doc, &rec); err != nil {
		return nil, fmt.Errorf("mysql: decode doc %d: %w", id, err)
	}
	if rec == nil {
		rec = domain.Record{}
	}
	rec["Id"] = id
	return rec, nil
}

func stripID(rec domain.Record) domain.Record {
	out := make(domain.Record, len(rec))
	for k, v := range rec {
		if k == "Id" {
			continue
		}
		out[k] = v
	}
	return out
}

func recordID(rec domain.Record) int {
	switch t := rec["Id"].(type) {
	case int:
		return t
	case int64:
		return int(t)
	case float64:
		return int(t)
	}
	return 0
}
