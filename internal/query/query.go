// Package query filters, sorts and paginates record collections the way the console's
// backend endpoints do.
package query

import (
	"errors"
	"regexp"
	"sort"
	"strings"
)

type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

var (
	ErrInvalidLimit = errors.New("pagination limit must be positive")
	ErrInvalidPage  = errors.New("pagination page must be >= 1")
)

type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

// Options is the request half of the query contract.
type Options struct {
	Filters    map[string]string    `json:"filters,omitempty"`
	Sorting    map[string]Direction `json:"sorting,omitempty"`
	Pagination *Pagination          `json:"pagination,omitempty"`
}

// Result holds one page of items and the number of records that matched the filters.
type Result[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
}

// SortKey is a numeric sort field.
type SortKey[T any] struct {
	Field string
	Value func(T) float64
}

// Schema tells Run which fields of T can be filtered and sorted.
//
// Text fields match case-insensitively as a pattern (falling back to a literal substring when
// the value is not a valid pattern). Enum fields match on exact equality.
type Schema[T any] struct {
	Text map[string]func(T) string
	Enum map[string]func(T) string
	Sort []SortKey[T]
}

type predicate[T any] func(T) bool

func (s Schema[T]) predicates(filters map[string]string) []predicate[T] {
	// Sorted for deterministic evaluation order.
	fields := make([]string, 0, len(filters))
	for f := range filters {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	var out []predicate[T]
	for _, field := range fields {
		value := strings.TrimSpace(filters[field])
		if value == "" {
			continue
		}
		if get, ok := s.Text[field]; ok {
			out = append(out, textPredicate(get, value))
			continue
		}
		if get, ok := s.Enum[field]; ok {
			out = append(out, func(rec T) bool { return get(rec) == value })
		}
		// Unknown fields impose no constraint.
	}
	return out
}

func textPredicate[T any](get func(T) string, value string) predicate[T] {
	re, err := regexp.Compile("(?i)" + value)
	if err != nil {
		needle := strings.ToLower(value)
		return func(rec T) bool { return strings.Contains(strings.ToLower(get(rec)), needle) }
	}
	return func(rec T) bool { return re.MatchString(get(rec)) }
}

// sortKey picks the first schema sort field named in sorting with a usable direction.
func (s Schema[T]) sortKey(sorting map[string]Direction) (SortKey[T], Direction, bool) {
	for _, k := range s.Sort {
		dir, ok := sorting[k.Field]
		if !ok {
			continue
		}
		switch Direction(strings.ToLower(string(dir))) {
		case Asc:
			return k, Asc, true
		case Desc:
			return k, Desc, true
		}
	}
	return SortKey[T]{}, "", false
}

// Run applies filters, then sorting, then pagination. records is not modified.
func Run[T any](records []T, schema Schema[T], opts Options) (Result[T], error) {
	if p := opts.Pagination; p != nil {
		if p.Limit <= 0 {
			return Result[T]{}, ErrInvalidLimit
		}
		if p.Page < 1 {
			return Result[T]{}, ErrInvalidPage
		}
	}

	preds := schema.predicates(opts.Filters)
	matched := make([]T, 0, len(records))
	for _, rec := range records {
		ok := true
		for _, p := range preds {
			if !p(rec) {
				ok = false
				break
			}
		}
		if ok {
			matched = append(matched, rec)
		}
	}

	if key, dir, ok := schema.sortKey(opts.Sorting); ok {
		sort.SliceStable(matched, func(i, j int) bool {
			a, b := key.Value(matched[i]), key.Value(matched[j])
			if dir == Desc {
				return a > b
			}
			return a < b
		})
	}

	total := len(matched)
	if p := opts.Pagination; p != nil {
		// Compare pages before multiplying so huge page numbers cannot wrap start.
		if p.Page-1 >= TotalPages(total, p.Limit) {
			return Result[T]{Items: []T{}, Total: total}, nil
		}
		start := (p.Page - 1) * p.Limit
		end := total
		if p.Limit < total-start {
			end = start + p.Limit
		}
		matched = matched[start:end]
	}
	return Result[T]{Items: matched, Total: total}, nil
}

// TotalPages is ceil(total/limit); zero when there is nothing to show.
func TotalPages(total, limit int) int {
	if total <= 0 || limit <= 0 {
		return 0
	}
	n := total / limit
	if total%limit != 0 {
		n++
	}
	return n
}
