package model

import "strings"

// Filter selects which items a view shows. It is local UI state and never sent.
type Filter string

const (
	FilterAll       Filter = "all"
	FilterActive    Filter = "active"
	FilterCompleted Filter = "completed"
)

// Filters lists the filters in display order.
var Filters = []Filter{FilterAll, FilterActive, FilterCompleted}

// ParseFilter accepts any casing; an empty string means all.
func ParseFilter(s string) (Filter, error) {
	switch f := Filter(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FilterAll, nil
	case FilterAll, FilterActive, FilterCompleted:
		return f, nil
	}
	return "", &ValidationError{Field: "filter", Reason: "must be one of all, active, completed"}
}

// Match reports whether it is visible under f. Unknown filters show everything.
func (f Filter) Match(it Item) bool {
	switch f {
	case FilterActive:
		return !it.Completed
	case FilterCompleted:
		return it.Completed
	}
	return true
}

// Next cycles all -> active -> completed -> all.
func (f Filter) Next() Filter {
	switch f {
	case FilterAll:
		return FilterActive
	case FilterActive:
		return FilterCompleted
	}
	return FilterAll
}

func (f Filter) Label() string {
	if f == "" {
		return "All"
	}
	return strings.ToUpper(string(f[:1])) + string(f[1:])
}
