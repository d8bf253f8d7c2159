package hierarchy

import "sync"

// Snapshot holds one session's read-mostly copy of the hierarchy and
// implements the two-phase delete reconciliation: Prune applies the
// speculative local removal for latency hiding, Replace supersedes
// whatever the speculative state was with the server's authoritative
// copy. Selection is tracked alongside so pruning the selected node
// clears it.
type Snapshot struct {
	mu       sync.Mutex
	forest   Forest
	selected string
	selKind  Kind
}

// NewSnapshot creates an empty snapshot.
func NewSnapshot() *Snapshot {
	return &Snapshot{}
}

// Replace installs the server's copy of the forest, superseding any
// speculative local edits.
func (s *Snapshot) Replace(f Forest) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.forest = f
}

// Forest returns the current forest. The returned slice must be
// treated as read-only; mutations go through Prune and Replace.
func (s *Snapshot) Forest() Forest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.forest
}

// Prune speculatively removes the node with the given kind and id and
// clears the selection if it pointed at the removed node. It reports
// whether a node was removed.
func (s *Snapshot) Prune(kind Kind, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := Remove(&s.forest, kind, id)
	if removed && s.selected == id {
		s.selected = ""
		s.selKind = ""
	}
	return removed
}

// Select records the current selection and reports whether the node
// was already selected; re-selecting the same id is the caller's cue
// to refetch.
func (s *Snapshot) Select(kind Kind, id string) (reselected bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	reselected = s.selected != "" && s.selected == id
	s.selected = id
	s.selKind = kind
	return reselected
}

// Selected returns the current selection, if any.
func (s *Snapshot) Selected() (Kind, string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selKind, s.selected, s.selected != ""
}

// ClearSelection drops the current selection.
func (s *Snapshot) ClearSelection() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = ""
	s.selKind = ""
}
