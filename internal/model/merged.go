package model

// SourceRef identifies one contributing record in a merged group.
type SourceRef struct {
	Provider     string `json:"provider"`
	ConnectionID string `json:"connectionId"`
}

// MergedRecord is the deduplication envelope: the merged view of a group of
// canonical records believed to represent the same clinical fact, with full
// provenance. len(Sources) always equals len(Originals), and both are >= 1;
// Sources[i] refers to Originals[i]. CodeSystems retains every distinct
// terminology system observed across the group.
type MergedRecord[T any] struct {
	Merged      T            `json:"merged"`
	Sources     []SourceRef  `json:"sources"`
	Originals   []T          `json:"originals"`
	CodeSystems []CodeSystem `json:"codeSystems,omitempty"`
}

// SourceCount returns the number of source records merged into this group.
func (m MergedRecord[T]) SourceCount() int {
	return len(m.Sources)
}
