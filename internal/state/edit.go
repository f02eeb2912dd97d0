package state

import (
	"context"
	"errors"
	"fmt"

	"github.com/Makepad-fr/tada/internal/model"
)

// ErrNotEditing is returned by draft operations while no item is open.
var ErrNotEditing = errors.New("no item is being edited")

// Field names an editable field of a draft.
type Field string

const (
	FieldTitle       Field = "title"
	FieldDescription Field = "description"
	FieldPriority    Field = "priority"
	FieldDueDate     Field = "dueDate"
)

// EditFields lists the draft fields in form order.
var EditFields = []Field{FieldTitle, FieldDescription, FieldPriority, FieldDueDate}

// ItemEditController keeps at most one item open for editing. Its draft lives
// in the list controller's state and is written back through ApplyUpdate.
type ItemEditController struct {
	list *ListController
}

func NewItemEditController(list *ListController) *ItemEditController {
	return &ItemEditController{list: list}
}

// StartEditing opens it. Any other open draft is dropped first.
func (e *ItemEditController) StartEditing(it model.Item) {
	if id, ok := e.Editing(); ok && id != it.ID {
		e.list.logger.Debug("edit abandoned", "id", id)
	}
	e.list.dispatch(EditStarted{Item: it})
}

// Editing returns the id of the open item.
func (e *ItemEditController) Editing() (string, bool) {
	return e.list.Snapshot().Edit.Editing()
}

// Draft returns a copy of the open draft.
func (e *ItemEditController) Draft() (EditDraft, bool) {
	d := e.list.Snapshot().Edit.Draft
	if d == nil {
		return EditDraft{}, false
	}
	return *d, true
}

// EditField changes one draft field. Priority and due date are parsed; a
// value that does not parse leaves the draft as it was.
func (e *ItemEditController) EditField(field Field, value string) error {
	e.list.mu.Lock()
	defer e.list.mu.Unlock()

	d := e.list.state.Edit.Draft
	if d == nil {
		return ErrNotEditing
	}
	f := d.Fields
	switch field {
	case FieldTitle:
		f.Title = value
	case FieldDescription:
		f.Description = value
	case FieldPriority:
		p, err := model.ParsePriority(value)
		if err != nil {
			return err
		}
		f.Priority = p
	case FieldDueDate:
		dd, err := model.ParseDate(value)
		if err != nil {
			return err
		}
		f.DueDate = dd
	default:
		return &model.ValidationError{Field: string(field), Reason: "is not editable"}
	}
	e.list.state = Reduce(e.list.state, DraftUpdated{ID: d.ID, Fields: f})
	return nil
}

// SetDraft replaces all draft fields at once.
func (e *ItemEditController) SetDraft(f model.Fields) error {
	e.list.mu.Lock()
	defer e.list.mu.Unlock()

	d := e.list.state.Edit.Draft
	if d == nil {
		return ErrNotEditing
	}
	e.list.state = Reduce(e.list.state, DraftUpdated{ID: d.ID, Fields: f})
	return nil
}

// Cancel drops the draft. It is a no-op when nothing is open.
func (e *ItemEditController) Cancel() {
	e.list.dispatch(EditCancelled{})
}

// Save sends the draft through ApplyUpdate. The editor closes only after the
// store accepts it; on any error the draft stays open and unchanged.
func (e *ItemEditController) Save(ctx context.Context) (model.Item, error) {
	d, ok := e.Draft()
	if !ok {
		return model.Item{}, ErrNotEditing
	}
	updated, err := e.list.ApplyUpdate(ctx, d.ID, d.Fields)
	if err != nil {
		return model.Item{}, fmt.Errorf("save: %w", err)
	}
	e.list.dispatch(EditSaved{ID: d.ID})
	return updated, nil
}
