// Package domain provides domain models used across the application.
package domain

import (
	"time"
)

// Status represents the lifecycle state of a document analysis run.
type Status string

const (
	StatusPending   Status = "pending"
	StatusScraping  Status = "scraping"
	StatusAnalyzing Status = "analyzing"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// IsTerminal reports whether the status permits no further transitions.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// MaxInstructionsLength bounds user-supplied analysis instructions.
const MaxInstructionsLength = 2000

// MaxSummaryLength bounds the stored analysis summary.
const MaxSummaryLength = 200

// Document is the unit of work: one URL submitted for analysis.
type Document struct {
	ID               string    `db:"id"                 json:"id"`
	URL              string    `db:"url"                json:"url"`
	Instructions     string    `db:"instructions"       json:"instructions"`
	Status           Status    `db:"status"             json:"status"`
	Title            string    `db:"title"              json:"title"`
	ScrapedContent   string    `db:"scraped_content"    json:"scraped_content"`
	AnalysisSummary  string    `db:"analysis_summary"   json:"analysis_summary"`
	AnalysisBlocks   BlockList `db:"analysis_blocks"    json:"analysis_blocks"`
	ErrorDetail      *string   `db:"error_detail"       json:"error_detail,omitempty"`
	WordCount        int       `db:"word_count"         json:"word_count"`
	PagesCrawled     int       `db:"pages_crawled"      json:"pages_crawled"`
	ProcessingTimeMs int64     `db:"processing_time_ms" json:"processing_time_ms"`
	CreatedAt        time.Time `db:"created_at"         json:"created_at"`
	UpdatedAt        time.Time `db:"updated_at"         json:"updated_at"`
}

// BlockType is the fixed vocabulary of analysis block types.
type BlockType string

const (
	BlockSummary         BlockType = "summary"
	BlockKeyPoints       BlockType = "key_points"
	BlockArchitecture    BlockType = "architecture"
	BlockMermaid         BlockType = "mermaid"
	BlockCode            BlockType = "code"
	BlockAPIReference    BlockType = "api_reference"
	BlockGuide           BlockType = "guide"
	BlockComparison      BlockType = "comparison"
	BlockBestPractices   BlockType = "best_practices"
	BlockTroubleshooting BlockType = "troubleshooting"
)

// BlockTypes lists every valid block type.
func BlockTypes() []BlockType {
	return []BlockType{
		BlockSummary,
		BlockKeyPoints,
		BlockArchitecture,
		BlockMermaid,
		BlockCode,
		BlockAPIReference,
		BlockGuide,
		BlockComparison,
		BlockBestPractices,
		BlockTroubleshooting,
	}
}

// IsValidBlockType reports whether t is in the block type vocabulary.
func IsValidBlockType(t BlockType) bool {
	for _, valid := range BlockTypes() {
		if t == valid {
			return true
		}
	}
	return false
}

// BlockSize is the grid footprint of a block.
type BlockSize string

const (
	SizeSmall  BlockSize = "small"
	SizeMedium BlockSize = "medium"
	SizeLarge  BlockSize = "large"
)

// Units returns the grid unit cost of a size. Unknown sizes cost medium
// so a malformed value can never understate capacity usage.
func (s BlockSize) Units() int {
	switch s {
	case SizeSmall:
		return 1
	case SizeMedium:
		return 2
	case SizeLarge:
		return 3
	default:
		return 2
	}
}

// IsValidBlockSize reports whether s is a recognized size.
func IsValidBlockSize(s BlockSize) bool {
	return s == SizeSmall || s == SizeMedium || s == SizeLarge
}

// Grid capacity limits for one document's block list.
// Derived from a 3-column display grid with one row reserved for a header.
const (
	MaxBlocks     = 6
	MaxGridUnits  = 8
	GridColumns   = 3
	GridBodyRows  = 3
	GridTitleRows = 1
)

// AnalysisBlock is one typed, sized content unit produced for display.
// Content holds diagram source for mermaid blocks and source code for
// code blocks.
type AnalysisBlock struct {
	ID       string         `json:"id"`
	Type     BlockType      `json:"type"`
	Size     BlockSize      `json:"size"`
	Title    string         `json:"title"`
	Content  string         `json:"content"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// TotalUnits sums the grid unit cost of the given blocks.
func TotalUnits(blocks []AnalysisBlock) int {
	total := 0
	for _, b := range blocks {
		total += b.Size.Units()
	}
	return total
}
