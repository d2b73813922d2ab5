package blocks

import (
	"strings"

	"github.com/jonesrussell/docify/internal/domain"
)

// basePriority scores each block type for demotion and truncation
// decisions. Higher scores survive longer. The summary block is handled
// specially and never demoted or dropped regardless of score.
var basePriority = map[domain.BlockType]int{
	domain.BlockSummary:         10,
	domain.BlockAPIReference:    9,
	domain.BlockKeyPoints:       8,
	domain.BlockMermaid:         7,
	domain.BlockGuide:           7,
	domain.BlockArchitecture:    6,
	domain.BlockBestPractices:   6,
	domain.BlockCode:            5,
	domain.BlockTroubleshooting: 5,
	domain.BlockComparison:      4,
}

// tieBreakOrder resolves equal scores deterministically; earlier entries
// survive longer.
var tieBreakOrder = []domain.BlockType{
	domain.BlockSummary,
	domain.BlockAPIReference,
	domain.BlockGuide,
	domain.BlockArchitecture,
	domain.BlockMermaid,
	domain.BlockKeyPoints,
	domain.BlockCode,
	domain.BlockBestPractices,
	domain.BlockTroubleshooting,
	domain.BlockComparison,
}

// Instruction keyword boosts, mirroring the block-type bias the analyzer
// applies when requesting blocks.
const (
	apiBoostPrimary   = 3
	apiBoostSecondary = 2
	keywordBoost      = 3
)

var visualKeywords = []string{"visual", "diagram", "flow"}
var guideKeywords = []string{"step", "guide", "tutorial"}

// priorities computes the effective score per block type, applying boosts
// derived from the user's instructions.
func priorities(instructions string) map[domain.BlockType]int {
	scores := make(map[domain.BlockType]int, len(basePriority))
	for bt, score := range basePriority {
		scores[bt] = score
	}

	lower := strings.ToLower(instructions)

	if strings.Contains(lower, "api") {
		scores[domain.BlockAPIReference] += apiBoostPrimary
		scores[domain.BlockCode] += apiBoostSecondary
	}

	for _, kw := range visualKeywords {
		if strings.Contains(lower, kw) {
			scores[domain.BlockMermaid] += keywordBoost
			break
		}
	}

	for _, kw := range guideKeywords {
		if strings.Contains(lower, kw) {
			scores[domain.BlockGuide] += keywordBoost
			break
		}
	}

	return scores
}

// tieBreakRank returns the position of a type in the tie-break order.
func tieBreakRank(bt domain.BlockType) int {
	for i, t := range tieBreakOrder {
		if t == bt {
			return i
		}
	}
	return len(tieBreakOrder)
}
