// Package memory is an in-process table store implementing the same port
// and query model as the remote backends. It backs local development and
// gives tests an injectable fake with real predicate evaluation.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"stayscape/internal/domain"
)

type Store struct {
	mu     sync.RWMutex
	tables map[string]map[int]domain.Record
	nextID map[string]int
}

func New() *Store {
	return &Store{
		tables: make(map[string]map[int]domain.Record),
		nextID: make(map[string]int),
	}
}

func (s *Store) Fetch(ctx context.Context, table string, q domain.Query) ([]domain.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.Record
	for _, rec := range s.tables[table] {
		if matchesQuery(rec, q) {
			out = append(out, clone(rec))
		}
	}

	sortRecords(out, q.OrderBy)

	if q.Offset > 0 {
		if q.Offset >= len(out) {
			return []domain.Record{}, nil
		}
		out = out[q.Offset:]
	}
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	if out == nil {
		out = []domain.Record{}
	}
	return out, nil
}

func (s *Store) Get(ctx context.Context, table string, id int, q domain.Query) (domain.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.tables[table][id]
	if !ok {
		return nil, fmt.Errorf("memory: %s/%d: %w", table, id, domain.ErrNotFound)
	}
	return clone(rec), nil
}

func (s *Store) Create(ctx context.Context, table string, records []domain.Record) ([]domain.WriteResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.tables[table] == nil {
		s.tables[table] = make(map[int]domain.Record)
	}
	results := make([]domain.WriteResult, 0, len(records))
	for _, rec := range records {
		s.nextID[table]++
		id := s.nextID[table]
		stored := clone(rec)
		stored["Id"] = id
		s.tables[table][id] = stored
		results = append(results, domain.WriteResult{Success: true, Data: clone(stored)})
	}
	return results, nil
}

func (s *Store) Update(ctx context.Context, table string, records []domain.Record) ([]domain.WriteResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	results := make([]domain.WriteResult, 0, len(records))
	for _, patch := range records {
		id := toInt(patch["Id"])
		stored, ok := s.tables[table][id]
		if !ok {
			results = append(results, domain.WriteResult{
				Success: false,
				Message: fmt.Sprintf("record %d does not exist", id),
			})
			continue
		}
		for k, v := range patch {
			if k == "Id" {
				continue
			}
			stored[k] = v
		}
		results = append(results, domain.WriteResult{Success: true, Data: clone(stored)})
	}
	return results, nil
}

func (s *Store) Delete(ctx context.Context, table string, ids []int) ([]domain.WriteResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	results := make([]domain.WriteResult, 0, len(ids))
	for _, id := range ids {
		if _, ok := s.tables[table][id]; !ok {
			results = append(results, domain.WriteResult{
				Success: false,
				Message: fmt.Sprintf("record %d does not exist", id),
			})
			continue
		}
		delete(s.tables[table], id)
		results = append(results, domain.WriteResult{Success: true})
	}
	return results, nil
}

/********** query evaluation **********/

func matchesQuery(rec domain.Record, q domain.Query) bool {
	for _, c := range q.Where {
		if !matchesCondition(rec, c) {
			return false
		}
	}
	for _, g := range q.WhereGroups {
		if !matchesGroup(rec, g) {
			return false
		}
	}
	return true
}

func matchesGroup(rec domain.Record, g domain.ConditionGroup) bool {
	or := strings.EqualFold(g.Operator, "OR")
	seen := false
	for _, c := range g.Conditions {
		seen = true
		ok := matchesCondition(rec, c)
		if or && ok {
			return true
		}
		if !or && !ok {
			return false
		}
	}
	for _, sub := range g.Groups {
		seen = true
		ok := matchesGroup(rec, sub)
		if or && ok {
			return true
		}
		if !or && !ok {
			return false
		}
	}
	if !seen {
		return true
	}
	return !or
}

func matchesCondition(rec domain.Record, c domain.Condition) bool {
	v := fieldValue(rec, c.Field)
	switch c.Op {
	case domain.EqualTo:
		return len(c.Values) > 0 && looseEqual(v, c.Values[0])
	case domain.ExactMatch:
		for _, want := range c.Values {
			if looseEqual(v, want) {
				return true
			}
		}
		return false
	case domain.GreaterThanOrEqualTo:
		return len(c.Values) > 0 && compare(v, c.Values[0]) >= 0
	case domain.LessThanOrEqualTo:
		return len(c.Values) > 0 && compare(v, c.Values[0]) <= 0
	case domain.Contains:
		return len(c.Values) > 0 &&
			strings.Contains(strings.ToLower(str(v)), strings.ToLower(str(c.Values[0])))
	}
	return false
}

// fieldValue unwraps lookup-object foreign keys so predicates can match on
// the bare id.
func fieldValue(rec domain.Record, field string) any {
	v := rec[field]
	if m, ok := v.(map[string]any); ok {
		if id, ok := m["Id"]; ok {
			return id
		}
	}
	return v
}

func looseEqual(a, b any) bool {
	if na, aok := num(a); aok {
		if nb, bok := num(b); bok {
			return na == nb
		}
	}
	if ba, aok := a.(bool); aok {
		if bb, bok := b.(bool); bok {
			return ba == bb
		}
	}
	return str(a) == str(b)
}

// compare orders numerically when both sides are numeric, else by string
// (RFC 3339 timestamps order correctly as strings).
func compare(a, b any) int {
	if na, aok := num(a); aok {
		if nb, bok := num(b); bok {
			switch {
			case na < nb:
				return -1
			case na > nb:
				return 1
			default:
				return 0
			}
		}
	}
	return strings.Compare(str(a), str(b))
}

func num(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	}
	return 0, false
}

func str(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case nil:
		return ""
	}
	return fmt.Sprintf("%v", v)
}

func toInt(v any) int {
	if n, ok := num(v); ok {
		return int(n)
	}
	if s, ok := v.(string); ok {
		if n, err := strconv.Atoi(s); err == nil {
			return n
		}
	}
	return 0
}

func sortRecords(recs []domain.Record, orderBy []domain.Sort) {
	if len(orderBy) == 0 {
		// stable order for callers that pass no sort
		sort.SliceStable(recs, func(i, j int) bool {
			return toInt(recs[i]["Id"]) < toInt(recs[j]["Id"])
		})
		return
	}
	sort.SliceStable(recs, func(i, j int) bool {
		for _, srt := range orderBy {
			c := compare(fieldValue(recs[i], srt.Field), fieldValue(recs[j], srt.Field))
			if c == 0 {
				continue
			}
			if srt.Desc {
				return c > 0
			}
			return c < 0
		}
		return false
	})
}

func clone(rec domain.Record) domain.Record {
	out := make(domain.Record, len(rec))
	for k, v := range rec {
		out[k] = v
	}
	return out
}
