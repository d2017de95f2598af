package domain

import "sort"

// ResolvedRange is an anchor's location in one TextIndex's coordinate
// space. Ephemeral: recomputed on every load or rebuild, never persisted.
type ResolvedRange struct {
	// AnchorID is the anchor this range resolves.
	AnchorID string

	// Start is the inclusive raw byte offset in the index text.
	Start int

	// End is the exclusive raw byte offset in the index text.
	End int
}

// ConsolidatedBlock is a merged group of overlapping or touching resolved
// ranges, rendered as a single marker run so the tree never carries two
// overlapping markers.
type ConsolidatedBlock struct {
	// Start is the inclusive raw byte offset in the index text.
	Start int

	// End is the exclusive raw byte offset in the index text.
	End int

	// MemberIDs are the anchor ids superimposed on this block, in
	// resolution order, duplicates removed.
	MemberIDs []string
}

// HasMember reports whether the block represents the given anchor.
func (b ConsolidatedBlock) HasMember(id string) bool {
	for _, m := range b.MemberIDs {
		if m == id {
			return true
		}
	}
	return false
}

// Consolidate sorts resolved ranges by start offset and merges any that
// overlap or are adjacent. The result is sorted and pairwise disjoint.
func Consolidate(ranges []ResolvedRange) []ConsolidatedBlock {
	if len(ranges) == 0 {
		return nil
	}

	sorted := make([]ResolvedRange, len(ranges))
	copy(sorted, ranges)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Start != sorted[j].Start {
			return sorted[i].Start < sorted[j].Start
		}
		return sorted[i].End < sorted[j].End
	})

	blocks := []ConsolidatedBlock{{
		Start:     sorted[0].Start,
		End:       sorted[0].End,
		MemberIDs: []string{sorted[0].AnchorID},
	}}
	for _, r := range sorted[1:] {
		last := &blocks[len(blocks)-1]
		if r.Start <= last.End {
			if r.End > last.End {
				last.End = r.End
			}
			if !last.HasMember(r.AnchorID) {
				last.MemberIDs = append(last.MemberIDs, r.AnchorID)
			}
			continue
		}
		blocks = append(blocks, ConsolidatedBlock{
			Start:     r.Start,
			End:       r.End,
			MemberIDs: []string{r.AnchorID},
		})
	}
	return blocks
}

// ApplyReport summarises one full render pass.
type ApplyReport struct {
	// Resolved is the number of anchors that resolved and rendered.
	Resolved int `json:"resolved"`

	// Blocks is the number of consolidated blocks rendered.
	Blocks int `json:"blocks"`

	// Dropped are the ids of anchors that failed to resolve, in set order.
	Dropped []string `json:"dropped,omitempty"`
}

// Progress is the navigation snapshot emitted after every step.
type Progress struct {
	// Current is the 1-based index of the focused block; 0 when there are
	// no rendered blocks.
	Current int `json:"current"`

	// Total is the number of rendered blocks.
	Total int `json:"total"`

	// CurrentID is the first member anchor id of the focused block; empty
	// when there are no rendered blocks.
	CurrentID string `json:"current_id,omitempty"`
}
