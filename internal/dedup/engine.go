// Package dedup groups canonical records from different source connections
// that describe the same clinical fact and merges each group into one
// record with full provenance. Grouping works on the most specific signal
// available: an identical resolved code plus a type-appropriate date
// window, falling back to fuzzy normalized-name matching for records
// without a resolvable code. The engine performs no I/O; its working set is
// one request's already-normalized records.
package dedup

import (
	"sort"
	"time"

	"github.com/gyeh/chartmerge/internal/model"
	"github.com/gyeh/chartmerge/internal/normalize"
)

// groupKey is the per-record signal the grouping pass compares.
type groupKey struct {
	code   string
	system model.CodeSystem
	name   string // normalized fuzzy key
	date   string
}

// hasCode reports whether the record resolved to a usable code.
func (k groupKey) hasCode() bool {
	return k.code != "" && k.system != model.CodeSystemUnknown
}

// dateMatch decides whether two record dates are close enough to be the
// same fact. Two absent dates are vacuously coincident; an absent date
// never matches a present one.
type dateMatch func(a, b string) bool

func sameDay(a, b string) bool {
	if a == "" && b == "" {
		return true
	}
	return normalize.SameCalendarDay(a, b)
}

// withinWindow tolerates re-submission lag between sources.
func withinWindow(days int) dateMatch {
	return func(a, b string) bool {
		if a == "" && b == "" {
			return true
		}
		return normalize.WithinDays(a, b, days)
	}
}

func anyDate(a, b string) bool {
	return true
}

// group clusters record indexes into equivalence groups. Each record joins
// the first group whose representative it matches; records with neither
// code, date, nor name always form singleton groups.
func group[T any](records []T, key func(T) groupKey, dates dateMatch) [][]int {
	keys := make([]groupKey, len(records))
	for i, r := range records {
		keys[i] = key(r)
	}

	var groups [][]int
	for i := range records {
		k := keys[i]

		if k.code == "" && k.date == "" && k.name == "" {
			groups = append(groups, []int{i})
			continue
		}

		joined := false
		for gi, g := range groups {
			rep := keys[g[0]]
			if matches(k, rep, dates) {
				groups[gi] = append(groups[gi], i)
				joined = true
				break
			}
		}
		if !joined {
			groups = append(groups, []int{i})
		}
	}
	return groups
}

func matches(a, b groupKey, dates dateMatch) bool {
	if a.hasCode() != b.hasCode() {
		return false
	}
	if a.hasCode() {
		return a.code == b.code && a.system == b.system && dates(a.date, b.date)
	}
	return a.name != "" && a.name == b.name && dates(a.date, b.date)
}

// sourced is what the engine needs from any canonical record type.
type sourced interface {
	Ref() model.SourceRef
	Synced() time.Time
}

// assemble builds the merged envelope for one group: originals ordered
// most-recently-synced first, the merged view built by fill starting from
// the latest record, and every distinct code system retained.
func assemble[T sourced](records []T, idx []int, system func(T) model.CodeSystem, fill func(base T, other T) T) model.MergedRecord[T] {
	members := make([]T, len(idx))
	for i, j := range idx {
		members[i] = records[j]
	}
	// Latest-synced first: its record is authoritative for display and
	// status fields; older records only fill gaps.
	sort.SliceStable(members, func(i, j int) bool {
		return members[i].Synced().After(members[j].Synced())
	})

	merged := members[0]
	for _, other := range members[1:] {
		merged = fill(merged, other)
	}

	out := model.MergedRecord[T]{
		Merged:    merged,
		Sources:   make([]model.SourceRef, len(members)),
		Originals: members,
	}
	seen := make(map[model.CodeSystem]bool)
	for i, m := range members {
		out.Sources[i] = m.Ref()
		if sys := system(m); sys != model.CodeSystemUnknown && !seen[sys] {
			seen[sys] = true
			out.CodeSystems = append(out.CodeSystems, sys)
		}
	}
	return out
}

// deduplicate is the group-then-merge core shared by all record types.
func deduplicate[T sourced](records []T, key func(T) groupKey, dates dateMatch, system func(T) model.CodeSystem, fill func(T, T) T) []model.MergedRecord[T] {
	out := make([]model.MergedRecord[T], 0, len(records))
	for _, idx := range group(records, key, dates) {
		out = append(out, assemble(records, idx, system, fill))
	}
	return out
}
