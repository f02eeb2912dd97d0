package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Makepad-fr/tada/internal/model"
)

func twoItems() []model.Item {
	return []model.Item{
		{ID: "1", Title: "A", Priority: model.PriorityMedium},
		{ID: "2", Title: "B", Priority: model.PriorityHigh, Completed: true},
	}
}

func ids(items []model.Item) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.ID)
	}
	return out
}

func TestReduceVisiblePerFilter(t *testing.T) {
	s := Reduce(Initial(), Loaded{Items: twoItems()})

	s = Reduce(s, FilterSet{Filter: model.FilterActive})
	assert.Equal(t, []string{"1"}, ids(s.Visible()))

	s = Reduce(s, FilterSet{Filter: model.FilterCompleted})
	assert.Equal(t, []string{"2"}, ids(s.Visible()))

	s = Reduce(s, FilterSet{Filter: model.FilterAll})
	assert.Equal(t, []string{"1", "2"}, ids(s.Visible()))
}

func TestReduceDoesNotModifyInput(t *testing.T) {
	before := Reduce(Initial(), Loaded{Items: twoItems()})

	after := Reduce(before, Replaced{Item: model.Item{ID: "1", Title: "A2"}})
	after = Reduce(after, Removed{ID: "2"})
	after = Reduce(after, Created{Item: model.Item{ID: "3", Title: "C"}})

	assert.Equal(t, "A", before.Items[0].Title)
	assert.Len(t, before.Items, 2)
	assert.Equal(t, []string{"1", "3"}, ids(after.Items))
	assert.Equal(t, "A2", after.Items[0].Title)
}

func TestReduceLoadedKeepsFirstOfDuplicateIDs(t *testing.T) {
	s := Reduce(Initial(), Loaded{Items: []model.Item{{ID: "1", Title: "first"}, {ID: "1", Title: "second"}, {ID: "2"}}})
	assert.Equal(t, []string{"1", "2"}, ids(s.Items))
	assert.Equal(t, "first", s.Items[0].Title)
}

func TestReduceCreatedWithKnownIDReplaces(t *testing.T) {
	s := Reduce(Initial(), Loaded{Items: twoItems()})
	s = Reduce(s, Created{Item: model.Item{ID: "2", Title: "B again"}})
	assert.Equal(t, []string{"1", "2"}, ids(s.Items))
	assert.Equal(t, "B again", s.Items[1].Title)
}

func TestReduceReplacedUnknownIDIsIgnored(t *testing.T) {
	s := Reduce(Initial(), Loaded{Items: twoItems()})
	next := Reduce(s, Replaced{Item: model.Item{ID: "9", Title: "ghost"}})
	assert.Equal(t, s.Items, next.Items)
}

func TestReduceEditLifecycle(t *testing.T) {
	items := twoItems()
	s := Reduce(Initial(), Loaded{Items: items})

	s = Reduce(s, EditStarted{Item: items[0]})
	id, ok := s.Edit.Editing()
	require.True(t, ok)
	assert.Equal(t, "1", id)
	assert.Equal(t, items[0].Fields(), s.Edit.Draft.Fields)

	// A draft update for another id is ignored.
	s = Reduce(s, DraftUpdated{ID: "2", Fields: model.Fields{Title: "nope"}})
	assert.Equal(t, "A", s.Edit.Draft.Title)

	s = Reduce(s, DraftUpdated{ID: "1", Fields: model.Fields{Title: "A*"}})
	assert.Equal(t, "A*", s.Edit.Draft.Title)
	assert.Equal(t, "A", s.Items[0].Title, "drafts never touch the collection")

	// Saving a stale id leaves the current edit open.
	s = Reduce(s, EditSaved{ID: "2"})
	_, ok = s.Edit.Editing()
	assert.True(t, ok)

	s = Reduce(s, EditSaved{ID: "1"})
	_, ok = s.Edit.Editing()
	assert.False(t, ok)
}

func TestReduceRemovingEditedItemClosesEditor(t *testing.T) {
	items := twoItems()
	s := Reduce(Initial(), Loaded{Items: items})
	s = Reduce(s, EditStarted{Item: items[1]})

	s = Reduce(s, Removed{ID: "2"})
	assert.Nil(t, s.Edit.Draft)

	s = Reduce(s, EditStarted{Item: items[0]})
	s = Reduce(s, Loaded{Items: []model.Item{items[0]}})
	assert.NotNil(t, s.Edit.Draft, "reload keeps a draft whose item still exists")
	s = Reduce(s, Loaded{Items: nil})
	assert.Nil(t, s.Edit.Draft)
}

func TestStats(t *testing.T) {
	s := Reduce(Initial(), Loaded{Items: twoItems()})
	done, pending := s.Stats()
	assert.Equal(t, 1, done)
	assert.Equal(t, 1, pending)
}
