// Package blocks validates the raw analysis blocks coerced from a model
// response and packs them into the display grid budget: at most 6 blocks
// whose sizes sum to at most 8 grid units, the summary block always first.
// Packing never fails on overflow; it demotes and finally drops
// lowest-priority blocks until the list fits.
package blocks

import (
	"errors"
	"fmt"
	"sort"

	"github.com/jonesrussell/docify/internal/domain"
)

// ErrNoValidBlocks is returned when not even a summary block survives
// validation.
var ErrNoValidBlocks = errors.New("no valid analysis blocks")

// ValidateAndPack filters malformed blocks, deduplicates ids, orders the
// list by type priority with the summary first, and enforces the grid
// invariant. Instructions feed the priority boosts used for demotion and
// truncation decisions.
func ValidateAndPack(raw []domain.AnalysisBlock, instructions string) ([]domain.AnalysisBlock, error) {
	valid := validate(raw)
	if len(valid) == 0 {
		return nil, ErrNoValidBlocks
	}

	scores := priorities(instructions)
	ordered := order(valid, scores)

	if ordered[0].Type != domain.BlockSummary {
		return nil, fmt.Errorf("%w: summary block missing", ErrNoValidBlocks)
	}

	packed := pack(ordered)

	return packed, nil
}

// validate drops blocks with unknown type or size or missing required
// fields, and deduplicates ids with deterministic numeric suffixes.
func validate(raw []domain.AnalysisBlock) []domain.AnalysisBlock {
	seen := map[string]int{}
	valid := make([]domain.AnalysisBlock, 0, len(raw))

	for _, b := range raw {
		if b.ID == "" || b.Title == "" || b.Content == "" {
			continue
		}
		if !domain.IsValidBlockType(b.Type) || !domain.IsValidBlockSize(b.Size) {
			continue
		}

		seen[b.ID]++
		if n := seen[b.ID]; n > 1 {
			b.ID = fmt.Sprintf("%s-%d", b.ID, n)
		}

		if b.Metadata == nil {
			b.Metadata = map[string]any{}
		}

		valid = append(valid, b)
	}

	return valid
}

// order sorts blocks by effective priority, the summary block first. Among
// equal scores the tie-break order decides; among identical types the
// original model order is kept.
func order(valid []domain.AnalysisBlock, scores map[domain.BlockType]int) []domain.AnalysisBlock {
	ordered := make([]domain.AnalysisBlock, len(valid))
	copy(ordered, valid)

	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]
		if (a.Type == domain.BlockSummary) != (b.Type == domain.BlockSummary) {
			return a.Type == domain.BlockSummary
		}
		if scores[a.Type] != scores[b.Type] {
			return scores[a.Type] > scores[b.Type]
		}
		return tieBreakRank(a.Type) < tieBreakRank(b.Type)
	})

	return ordered
}

// pack enforces the block-count and grid-unit caps by truncation, then
// large→medium demotion, then medium→small demotion, then dropping blocks
// outright. The summary block (position 0) is never demoted or dropped.
func pack(ordered []domain.AnalysisBlock) []domain.AnalysisBlock {
	packed := ordered
	if len(packed) > domain.MaxBlocks {
		packed = packed[:domain.MaxBlocks]
	}

	// Demote from the back of the priority order so low-priority blocks
	// shrink first.
	for _, from := range []domain.BlockSize{domain.SizeLarge, domain.SizeMedium} {
		to := domain.SizeMedium
		if from == domain.SizeMedium {
			to = domain.SizeSmall
		}

		for domain.TotalUnits(packed) > domain.MaxGridUnits {
			demoted := false
			for i := len(packed) - 1; i >= 1; i-- {
				if packed[i].Size == from {
					packed[i].Size = to
					demoted = true
					break
				}
			}
			if !demoted {
				break
			}
		}
	}

	// Structurally impossible to fit by demotion alone: drop from the back.
	for domain.TotalUnits(packed) > domain.MaxGridUnits && len(packed) > 1 {
		packed = packed[:len(packed)-1]
	}

	return packed
}
