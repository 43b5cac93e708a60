package domain

import "context"

// Record is a raw table row as the backing store sees it: flat, with
// suffix-tagged field names ("check_in_c") and "Id" set by the store.
type Record = map[string]any

type Operator string

const (
	EqualTo              Operator = "EqualTo"
	GreaterThanOrEqualTo Operator = "GreaterThanOrEqualTo"
	LessThanOrEqualTo    Operator = "LessThanOrEqualTo"
	Contains             Operator = "Contains"
	ExactMatch           Operator = "ExactMatch"
)

type Condition struct {
	Field  string   `json:"fieldName"`
	Op     Operator `json:"operator"`
	Values []any    `json:"values"`
}

// ConditionGroup combines conditions and nested groups under one logical
// operator ("AND" or "OR").
type ConditionGroup struct {
	Operator   string           `json:"operator"`
	Conditions []Condition      `json:"conditions,omitempty"`
	Groups     []ConditionGroup `json:"subGroups,omitempty"`
}

type Sort struct {
	Field string `json:"fieldName"`
	Desc  bool   `json:"descending"`
}

// Query is the portable query shape every TableStore implementation accepts.
// Limit == 0 means "no limit".
type Query struct {
	Fields      []string         `json:"fields,omitempty"`
	Where       []Condition      `json:"where,omitempty"`
	WhereGroups []ConditionGroup `json:"whereGroups,omitempty"`
	OrderBy     []Sort           `json:"orderBy,omitempty"`
	Limit       int              `json:"limit,omitempty"`
	Offset      int              `json:"offset,omitempty"`
}

type FieldError struct {
	Field   string `json:"field"`
	Label   string `json:"fieldLabel"`
	Message string `json:"message"`
}

// WriteResult is the per-record outcome of a batch write. Writes always
// travel in a batch envelope, even for a single logical record.
type WriteResult struct {
	Success bool         `json:"success"`
	Data    Record       `json:"data,omitempty"`
	Message string       `json:"message,omitempty"`
	Errors  []FieldError `json:"errors,omitempty"`
}

// TableStore is the generic table-oriented backend every service talks to.
// Get returns ErrNotFound on a zero-row read; any other error is a
// transport or remote-reported failure.
type TableStore interface {
	Fetch(ctx context.Context, table string, q Query) ([]Record, error)
	Get(ctx context.Context, table string, id int, q Query) (Record, error)
	Create(ctx context.Context, table string, records []Record) ([]WriteResult, error)
	Update(ctx context.Context, table string, records []Record) ([]WriteResult, error)
	Delete(ctx context.Context, table string, ids []int) ([]WriteResult, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}

// Notifier receives user-facing failure messages (the toast channel).
// Services report errors through their return values; Notify is a
// side channel only.
type Notifier interface {
	Notify(msg string)
}

// NopNotifier discards notifications.
type NopNotifier struct{}

func (NopNotifier) Notify(string) {}
