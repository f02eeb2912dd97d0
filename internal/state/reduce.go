package state

import "github.com/Makepad-fr/tada/internal/model"

// Reduce applies a to s and returns the new state. s is never modified: the
// item slice and the draft are copied whenever they change.
func Reduce(s State, a Action) State {
	switch a := a.(type) {
	case Loaded:
		s.Items = dedupe(a.Items)
		if id, ok := s.Edit.Editing(); ok && s.Index(id) < 0 {
			s.Edit = EditState{}
		}

	case Created:
		if i := s.Index(a.Item.ID); i >= 0 {
			s.Items = replaceAt(s.Items, i, a.Item)
		} else {
			items := make([]model.Item, len(s.Items), len(s.Items)+1)
			copy(items, s.Items)
			s.Items = append(items, a.Item)
		}

	case Removed:
		if i := s.Index(a.ID); i >= 0 {
			items := make([]model.Item, 0, len(s.Items)-1)
			items = append(items, s.Items[:i]...)
			s.Items = append(items, s.Items[i+1:]...)
		}
		if id, ok := s.Edit.Editing(); ok && id == a.ID {
			s.Edit = EditState{}
		}

	case Replaced:
		if i := s.Index(a.Item.ID); i >= 0 {
			s.Items = replaceAt(s.Items, i, a.Item)
		}

	case FilterSet:
		s.Filter = a.Filter

	case EditStarted:
		s.Edit = EditState{Draft: &EditDraft{ID: a.Item.ID, Fields: a.Item.Fields()}}

	case DraftUpdated:
		if id, ok := s.Edit.Editing(); ok && id == a.ID {
			s.Edit = EditState{Draft: &EditDraft{ID: id, Fields: a.Fields}}
		}

	case EditCancelled:
		s.Edit = EditState{}

	case EditSaved:
		// A different item may have been opened while the save was in flight.
		if id, ok := s.Edit.Editing(); ok && id == a.ID {
			s.Edit = EditState{}
		}
	}
	return s
}

func replaceAt(items []model.Item, i int, it model.Item) []model.Item {
	out := make([]model.Item, len(items))
	copy(out, items)
	out[i] = it
	return out
}

// dedupe keeps the first occurrence of every id.
func dedupe(items []model.Item) []model.Item {
	seen := make(map[string]struct{}, len(items))
	out := make([]model.Item, 0, len(items))
	for _, it := range items {
		if _, dup := seen[it.ID]; dup {
			continue
		}
		seen[it.ID] = struct{}{}
		out = append(out, it)
	}
	return out
}
