package model

import (
	"strings"
	"time"
)

// Item is the domain model for a todo entry as the remote store returns it.
// ID is assigned by the store and never changes after creation.
type Item struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Priority    Priority `json:"priority"`
	DueDate     Date     `json:"dueDate"`
	Completed   bool     `json:"completed"`

	// Set by the store; carried through untouched.
	CreatedAt *time.Time `json:"createdAt,omitempty"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
}

// Fields are the user-editable parts of an Item.
type Fields struct {
	Title       string
	Description string
	Priority    Priority
	DueDate     Date
}

// NewFields returns the defaults of the create form: medium priority, due today.
func NewFields() Fields {
	return Fields{Priority: PriorityMedium, DueDate: Today()}
}

// Fields copies the editable fields out of the item.
func (i Item) Fields() Fields {
	return Fields{
		Title:       i.Title,
		Description: i.Description,
		Priority:    i.Priority,
		DueDate:     i.DueDate,
	}
}

// WithFields returns a copy of i with its editable fields replaced by f.
func (i Item) WithFields(f Fields) Item {
	i.Title = f.Title
	i.Description = f.Description
	i.Priority = f.Priority
	i.DueDate = f.DueDate
	return i
}

// Normalize trims the title and fills in the default priority.
func (f Fields) Normalize() Fields {
	f.Title = strings.TrimSpace(f.Title)
	if f.Priority == "" {
		f.Priority = PriorityMedium
	}
	return f
}

// Validate reports whether f can be sent to the store.
func (f Fields) Validate() error {
	if strings.TrimSpace(f.Title) == "" {
		return ErrEmptyTitle
	}
	if f.Priority != "" && !f.Priority.Valid() {
		return &ValidationError{Field: "priority", Reason: "unknown value " + quote(string(f.Priority))}
	}
	return nil
}

func quote(s string) string { return `"` + s + `"` }
