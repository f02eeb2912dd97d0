package state

import (
	"context"
	"fmt"
	"iter"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/Makepad-fr/tada/internal/logging"
	"github.com/Makepad-fr/tada/internal/model"
	"github.com/Makepad-fr/tada/internal/remote"
)

// ListController owns the local copy of the collection and the active filter.
//
// The store is the source of truth: local state only changes from a
// successful store response, never ahead of it. Network calls run without the
// lock held, so overlapping calls are allowed and the last response applied
// wins for a given id.
type ListController struct {
	store  remote.Store
	logger *log.Logger

	mu    sync.Mutex
	state State
}

func NewListController(store remote.Store, logger *log.Logger) *ListController {
	if logger == nil {
		logger = logging.Discard()
	}
	return &ListController{store: store, logger: logger, state: Initial()}
}

// Snapshot returns the current state. The caller must not modify its slices.
func (c *ListController) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *ListController) dispatch(a Action) State {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = Reduce(c.state, a)
	return c.state
}

// Load replaces the local collection with the store's. On error nothing changes.
func (c *ListController) Load(ctx context.Context) error {
	items, err := c.store.List(ctx)
	if err != nil {
		c.logger.Warn("load failed", "err", err)
		return fmt.Errorf("load: %w", err)
	}
	c.dispatch(Loaded{Items: items})
	c.logger.Debug("loaded", "items", len(items))
	return nil
}

// Create sends a new item and appends what the store returns. A blank title
// is rejected locally with model.ErrEmptyTitle and nothing is sent. A zero
// due date defaults to today.
func (c *ListController) Create(ctx context.Context, f model.Fields) (model.Item, error) {
	f = f.Normalize()
	if err := f.Validate(); err != nil {
		return model.Item{}, err
	}
	if f.DueDate.IsZero() {
		f.DueDate = model.Today()
	}

	created, err := c.store.Create(ctx, model.Item{}.WithFields(f))
	if err != nil {
		c.logger.Warn("create failed", "title", f.Title, "err", err)
		return model.Item{}, fmt.Errorf("create: %w", err)
	}
	c.dispatch(Created{Item: created})
	c.logger.Debug("created", "id", created.ID)
	return created, nil
}

// Remove deletes id from the store, then from the local collection.
func (c *ListController) Remove(ctx context.Context, id string) error {
	if err := c.store.Delete(ctx, id); err != nil {
		c.logger.Warn("delete failed", "id", id, "err", err)
		return fmt.Errorf("delete %s: %w", id, err)
	}
	c.dispatch(Removed{ID: id})
	c.logger.Debug("deleted", "id", id)
	return nil
}

// ToggleCompleted asks the store to flip completion and stores its answer.
func (c *ListController) ToggleCompleted(ctx context.Context, id string) (model.Item, error) {
	toggled, err := c.store.Toggle(ctx, id)
	if err != nil {
		c.logger.Warn("toggle failed", "id", id, "err", err)
		return model.Item{}, fmt.Errorf("toggle %s: %w", id, err)
	}
	c.dispatch(Replaced{Item: toggled})
	c.logger.Debug("toggled", "id", id, "completed", toggled.Completed)
	return toggled, nil
}

// ApplyUpdate sends every editable field of id and stores the store's answer.
// The completion flag is sent as currently known locally.
func (c *ListController) ApplyUpdate(ctx context.Context, id string, f model.Fields) (model.Item, error) {
	f = f.Normalize()
	if err := f.Validate(); err != nil {
		return model.Item{}, err
	}

	current, _ := c.Item(id)
	current.ID = id
	updated, err := c.store.Update(ctx, id, current.WithFields(f))
	if err != nil {
		c.logger.Warn("update failed", "id", id, "err", err)
		return model.Item{}, fmt.Errorf("update %s: %w", id, err)
	}
	c.dispatch(Replaced{Item: updated})
	c.logger.Debug("updated", "id", id)
	return updated, nil
}

func (c *ListController) SetFilter(f model.Filter) {
	c.dispatch(FilterSet{Filter: f})
}

func (c *ListController) Filter() model.Filter {
	return c.Snapshot().Filter
}

// Items returns a copy of the whole collection.
func (c *ListController) Items() []model.Item {
	s := c.Snapshot()
	out := make([]model.Item, len(s.Items))
	copy(out, s.Items)
	return out
}

// Item looks id up in the local collection.
func (c *ListController) Item(id string) (model.Item, bool) {
	s := c.Snapshot()
	if i := s.Index(id); i >= 0 {
		return s.Items[i], true
	}
	return model.Item{}, false
}

// VisibleItems yields the items passing the current filter in collection
// order. Each iteration reads the state afresh, so a sequence can be ranged
// over again after SetFilter and reflects the new filter.
func (c *ListController) VisibleItems() iter.Seq[model.Item] {
	return func(yield func(model.Item) bool) {
		s := c.Snapshot()
		for _, it := range s.Items {
			if !s.Filter.Match(it) {
				continue
			}
			if !yield(it) {
				return
			}
		}
	}
}

func (c *ListController) Stats() (done, pending int) {
	return c.Snapshot().Stats()
}
