package state

import (
	"context"
	"net/http"
	"strconv"
	"sync"

	"github.com/Makepad-fr/tada/internal/model"
	"github.com/Makepad-fr/tada/internal/remote"
)

// fakeStore is an in-memory remote.Store that records calls and can be told to fail.
type fakeStore struct {
	mu     sync.Mutex
	items  []model.Item
	nextID int
	calls  map[string]int
	fail   map[string]error

	lastCreate model.Item
	lastUpdate model.Item
}

func newFakeStore(items ...model.Item) *fakeStore {
	return &fakeStore{
		items:  append([]model.Item(nil), items...),
		nextID: 100,
		calls:  map[string]int{},
		fail:   map[string]error{},
	}
}

func (f *fakeStore) failWith(op string, err error) { f.fail[op] = err }

func (f *fakeStore) totalCalls() int {
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

func (f *fakeStore) enter(op string) error {
	f.calls[op]++
	return f.fail[op]
}

func (f *fakeStore) index(id string) int {
	for i, it := range f.items {
		if it.ID == id {
			return i
		}
	}
	return -1
}

func notFound(op string) error {
	return &remote.RemoteError{Op: op, StatusCode: http.StatusNotFound}
}

func (f *fakeStore) List(context.Context) ([]model.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("list"); err != nil {
		return nil, err
	}
	return append([]model.Item(nil), f.items...), nil
}

func (f *fakeStore) Create(_ context.Context, it model.Item) (model.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastCreate = it
	if err := f.enter("create"); err != nil {
		return model.Item{}, err
	}
	it.ID = strconv.Itoa(f.nextID)
	it.Completed = false
	f.nextID++
	f.items = append(f.items, it)
	return it, nil
}

func (f *fakeStore) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("delete"); err != nil {
		return err
	}
	i := f.index(id)
	if i < 0 {
		return notFound("delete todo")
	}
	f.items = append(f.items[:i], f.items[i+1:]...)
	return nil
}

func (f *fakeStore) Toggle(_ context.Context, id string) (model.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("toggle"); err != nil {
		return model.Item{}, err
	}
	i := f.index(id)
	if i < 0 {
		return model.Item{}, notFound("toggle todo")
	}
	f.items[i].Completed = !f.items[i].Completed
	return f.items[i], nil
}

func (f *fakeStore) Update(_ context.Context, id string, it model.Item) (model.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastUpdate = it
	if err := f.enter("update"); err != nil {
		return model.Item{}, err
	}
	i := f.index(id)
	if i < 0 {
		return model.Item{}, notFound("update todo")
	}
	it.ID = id
	f.items[i] = it
	return it, nil
}
