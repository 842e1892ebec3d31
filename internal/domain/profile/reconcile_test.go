package profile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func projectKey(p Project) string { return p.Title }

func TestReconcileEmpty(t *testing.T) {
	items := Reconcile[Project](nil, nil, nil)
	require.NotNil(t, items)
	assert.Empty(t, items)
}

func TestReconcileClassification(t *testing.T) {
	original := []Project{
		{Title: "A", Role: "dev"},
		{Title: "B", Role: "dev"},
		{Title: "C", Role: "dev"},
	}
	draft := []Project{
		{Title: "B", Role: "lead"},
		{Title: "A", Role: "dev"},
		{Title: "D", Role: "dev"},
	}

	items := Reconcile(original, draft, projectKey)
	require.Len(t, items, 4)

	assert.Equal(t, "A", items[0].Key)
	assert.Equal(t, StatusUnchanged, items[0].Status)

	assert.Equal(t, "B", items[1].Key)
	assert.Equal(t, StatusModified, items[1].Status)
	assert.Equal(t, "lead", items[1].Draft.Role)

	assert.Equal(t, "C", items[2].Key)
	assert.Equal(t, StatusDeleted, items[2].Status)
	assert.Nil(t, items[2].Draft)

	assert.Equal(t, "D", items[3].Key)
	assert.Equal(t, StatusAdded, items[3].Status)
	assert.Nil(t, items[3].Original)
}

func TestReconcileAllAdded(t *testing.T) {
	draft := []Project{{Title: "A"}, {Title: "B"}}
	items := Reconcile(nil, draft, projectKey)
	require.Len(t, items, 2)
	for i, item := range items {
		assert.Equal(t, StatusAdded, item.Status)
		assert.Equal(t, draft[i].Title, item.Draft.Title)
	}
}

func TestReconcileAllDeleted(t *testing.T) {
	original := []Project{{Title: "A"}, {Title: "B"}}
	items := Reconcile(original, nil, projectKey)
	require.Len(t, items, 2)
	for i, item := range items {
		assert.Equal(t, StatusDeleted, item.Status)
		assert.Equal(t, original[i].Title, item.Original.Title)
	}
}

func TestReconcileDefaultKeyIsContent(t *testing.T) {
	original := []Language{{Name: "English", Level: "C1"}}
	draft := []Language{{Name: "English", Level: "C2"}}

	items := Reconcile(original, draft, nil)
	require.Len(t, items, 2)
	assert.Equal(t, StatusDeleted, items[0].Status)
	assert.Equal(t, StatusAdded, items[1].Status)

	same := Reconcile(original, []Language{{Name: "English", Level: "C1"}}, nil)
	require.Len(t, same, 1)
	assert.Equal(t, StatusUnchanged, same[0].Status)
}

func TestReconcileDuplicateKeys(t *testing.T) {
	original := []Project{{Title: "A", Role: "dev"}, {Title: "A", Role: "qa"}}
	draft := []Project{{Title: "A", Role: "first"}, {Title: "A", Role: "second"}}

	items := Reconcile(original, draft, projectKey)
	require.Len(t, items, 3)

	// last draft wins the key
	assert.Equal(t, StatusModified, items[0].Status)
	assert.Equal(t, "second", items[0].Draft.Role)
	assert.Equal(t, StatusDeleted, items[1].Status)
	assert.Equal(t, "qa", items[1].Original.Role)
	assert.Equal(t, StatusAdded, items[2].Status)
	assert.Equal(t, "first", items[2].Draft.Role)
}

func TestReconcileCompleteness(t *testing.T) {
	original := []Project{{Title: "A"}, {Title: "B"}, {Title: "B"}, {Title: "C"}}
	draft := []Project{{Title: "B"}, {Title: "D"}, {Title: "D"}, {Title: "A", Role: "x"}}

	items := Reconcile(original, draft, projectKey)

	seenOriginal := map[*Project]bool{}
	seenDraft := map[*Project]bool{}
	for _, item := range items {
		if item.Original != nil {
			assert.False(t, seenOriginal[item.Original])
			seenOriginal[item.Original] = true
		}
		if item.Draft != nil {
			assert.False(t, seenDraft[item.Draft])
			seenDraft[item.Draft] = true
		}
	}
	assert.Len(t, seenOriginal, len(original))
	assert.Len(t, seenDraft, len(draft))
}

func TestKeyByRecordID(t *testing.T) {
	stored := Project{Identity: Identity{ID: 7}, Title: "A"}
	assert.Equal(t, "id:7", KeyByRecordID(stored))

	fresh := Project{Title: "A"}
	key := KeyByRecordID(fresh)
	assert.Equal(t, "content:"+canonicalKey(fresh), key)
	assert.NotEqual(t, KeyByRecordID(Project{Title: "B"}), key)
}
