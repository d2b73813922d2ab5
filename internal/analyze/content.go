package analyze

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// maxContentChars bounds the content handed to the model, leaving room
// for the prompt scaffolding inside the model's context window.
const maxContentChars = 50000

// maxSections bounds how many paragraph sections survive budgeting.
const maxSections = 10

// sectionKeywordPattern marks sections worth keeping when the content has
// to be cut down.
var sectionKeywordPattern = regexp.MustCompile(`(?i)\b(introduction|overview|getting started|api|examples|guide|tutorial|architecture|system)\b`)

// prepareContent fits content into the model budget. Oversized content is
// truncated at the character cap, then reduced to at most maxSections
// paragraph sections with keyword-bearing sections kept first. Text is
// never rewritten, only cut.
func prepareContent(content string) string {
	if content == "" {
		return ""
	}

	if len(content) > maxContentChars {
		content = truncateValid(content, maxContentChars) + "..."
	}

	sections := strings.Split(content, "\n\n")
	if len(sections) <= maxSections {
		return content
	}

	kept := make([]string, 0, maxSections)
	used := make([]bool, len(sections))

	for i, section := range sections {
		if len(kept) >= maxSections {
			break
		}
		if sectionKeywordPattern.MatchString(section) {
			kept = append(kept, section)
			used[i] = true
		}
	}

	for i, section := range sections {
		if len(kept) >= maxSections {
			break
		}
		if !used[i] {
			kept = append(kept, section)
		}
	}

	return strings.Join(kept, "\n\n")
}

// recommendedBlockTypes biases the prompt toward block types suggested by
// the content and the user's instructions.
func recommendedBlockTypes(content, instructions string) []string {
	contentLower := strings.ToLower(content)
	instructionsLower := strings.ToLower(instructions)

	if containsAny(contentLower, "api", "endpoint", "authentication", "oauth") ||
		strings.Contains(instructionsLower, "api") {
		return []string{"api_reference", "code", "guide"}
	}

	if containsAny(contentLower, "tutorial", "guide", "getting started", "setup", "step") ||
		containsAny(instructionsLower, "guide", "tutorial", "step") {
		return []string{"guide", "code", "troubleshooting"}
	}

	if containsAny(contentLower, "architecture", "system", "component", "infrastructure") ||
		strings.Contains(instructionsLower, "architecture") {
		return []string{"architecture", "mermaid", "key_points"}
	}

	return []string{"key_points", "summary", "best_practices"}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// truncateValid cuts s to at most max bytes, backing the cut up so it
// never lands inside a multi-byte rune. The result is always valid UTF-8
// when the input is.
func truncateValid(s string, max int) string {
	if len(s) <= max {
		return s
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max]
}
