// Package state holds the client-side view state of the todo list and the
// transitions between its states.
//
// State changes are expressed as Actions folded into a State by Reduce, a pure
// function. ListController and ItemEditController are the only writers; they
// talk to the remote store and feed the confirmed results through Reduce.
package state

import "github.com/Makepad-fr/tada/internal/model"

// State is everything the presentation layer renders from.
type State struct {
	// Items in the order the store returned or confirmed them. IDs are unique.
	Items  []model.Item
	Filter model.Filter
	Edit   EditState
}

// EditState is either viewing (Draft nil) or editing the item Draft.ID.
type EditState struct {
	Draft *EditDraft
}

// EditDraft is a private copy of an item's editable fields.
type EditDraft struct {
	ID string
	model.Fields
}

// Editing reports the id being edited, if any.
func (e EditState) Editing() (string, bool) {
	if e.Draft == nil {
		return "", false
	}
	return e.Draft.ID, true
}

// Initial is the state before the first load.
func Initial() State {
	return State{Items: []model.Item{}, Filter: model.FilterAll}
}

// Index returns the position of id in s.Items, or -1.
func (s State) Index(id string) int {
	for i, it := range s.Items {
		if it.ID == id {
			return i
		}
	}
	return -1
}

// Visible returns the items matching the current filter, in collection order.
func (s State) Visible() []model.Item {
	out := make([]model.Item, 0, len(s.Items))
	for _, it := range s.Items {
		if s.Filter.Match(it) {
			out = append(out, it)
		}
	}
	return out
}

// Stats counts completed and open items across the whole collection.
func (s State) Stats() (done, pending int) {
	for _, it := range s.Items {
		if it.Completed {
			done++
		} else {
			pending++
		}
	}
	return
}
