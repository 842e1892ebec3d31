package profile

import "strconv"

const (
	StatusUnchanged = "unchanged"
	StatusModified  = "modified"
	StatusAdded     = "added"
	StatusDeleted   = "deleted"
)

// MatchedItem pairs an element of the original list with its counterpart in
// the draft list. Added items have no Original and deleted items have no Draft.
type MatchedItem[T any] struct {
	Key      string `json:"key"`
	Original *T     `json:"original,omitempty"`
	Draft    *T     `json:"draft,omitempty"`
	Status   string `json:"status"`
}

// Reconcile matches original against draft by key. A nil keyOf keys every
// element by its canonical serialization.
//
// When several drafts share a key the last one is matched and the others are
// reported as added. An original whose key was already consumed by an earlier
// original is reported as deleted. Every input element appears in exactly one
// result; originals come first in their order, then added drafts in theirs.
func Reconcile[T any](original, draft []T, keyOf func(T) string) []MatchedItem[T] {
	if keyOf == nil {
		keyOf = canonicalKey[T]
	}

	byKey := make(map[string]int, len(draft))
	draftKeys := make([]string, len(draft))
	for i, item := range draft {
		key := keyOf(item)
		draftKeys[i] = key
		byKey[key] = i
	}

	consumed := make([]bool, len(draft))
	out := make([]MatchedItem[T], 0, len(original)+len(draft))

	for i := range original {
		key := keyOf(original[i])
		orig := &original[i]

		idx, ok := byKey[key]
		if !ok || consumed[idx] {
			out = append(out, MatchedItem[T]{Key: key, Original: orig, Status: StatusDeleted})
			continue
		}
		consumed[idx] = true

		status := StatusUnchanged
		if IsChanged(original[i], draft[idx]) {
			status = StatusModified
		}
		out = append(out, MatchedItem[T]{Key: key, Original: orig, Draft: &draft[idx], Status: status})
	}

	for i := range draft {
		if consumed[i] {
			continue
		}
		out = append(out, MatchedItem[T]{Key: draftKeys[i], Draft: &draft[i], Status: StatusAdded})
	}
	return out
}

// KeyByRecordID keys stored records by their id and unsaved records by
// content, so a new draft row never collides with an existing one.
func KeyByRecordID[T interface{ RecordID() int64 }](item T) string {
	if id := item.RecordID(); id > 0 {
		return "id:" + strconv.FormatInt(id, 10)
	}
	return "content:" + canonicalKey(item)
}

func canonicalKey[T any](item T) string {
	key, err := Canonical(item)
	if err != nil {
		return "unserializable"
	}
	return key
}
