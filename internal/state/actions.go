package state

import "github.com/Makepad-fr/tada/internal/model"

// Action is a state transition. Only the types in this file implement it.
type Action interface {
	action()
}

// Loaded replaces the collection with a fresh listing from the store.
type Loaded struct{ Items []model.Item }

// Created appends an item the store has just assigned an id to.
type Created struct{ Item model.Item }

// Removed drops the item the store has just deleted.
type Removed struct{ ID string }

// Replaced swaps in the store's representation of an updated item.
type Replaced struct{ Item model.Item }

// FilterSet changes the active filter.
type FilterSet struct{ Filter model.Filter }

// EditStarted opens the editor on Item, discarding any other draft.
type EditStarted struct{ Item model.Item }

// DraftUpdated overwrites the draft fields of item ID.
type DraftUpdated struct {
	ID     string
	Fields model.Fields
}

// EditCancelled closes the editor without saving.
type EditCancelled struct{}

// EditSaved closes the editor after the store accepted the draft of ID.
type EditSaved struct{ ID string }

func (Loaded) action()        {}
func (Created) action()       {}
func (Removed) action()       {}
func (Replaced) action()      {}
func (FilterSet) action()     {}
func (EditStarted) action()   {}
func (DraftUpdated) action()  {}
func (EditCancelled) action() {}
func (EditSaved) action()     {}
