package analyze

import (
	"fmt"
	"strings"
)

// Input carries the extracted document handed to the analyzer.
type Input struct {
	Title        string
	Description  string
	Content      string
	Instructions string
}

// defaultInstructions is used when the caller supplies none.
const defaultInstructions = "Analyze this documentation comprehensively"

const promptTemplate = `You are an expert technical documentation analyzer. Analyze the following web content and create a comprehensive explanation with visual elements.

CONTENT TITLE: %s
CONTENT DESCRIPTION: %s
USER INSTRUCTIONS: %s
RECOMMENDED BLOCK TYPES: %s

SCRAPED CONTENT:
%s

TASK: Create a structured analysis with summary and visual elements to explain this documentation. Return a JSON response with the following structure:

{
  "summary": "A comprehensive summary of the document content",
  "blocks": [
    {
      "id": "unique-id-1",
      "type": "summary|key_points|architecture|mermaid|code|api_reference|guide|comparison|best_practices|troubleshooting",
      "size": "small|medium|large",
      "title": "Block title",
      "content": "Block content (mermaid syntax for mermaid type)",
      "metadata": {
        "language": "javascript|python|etc (for code blocks)",
        "priority": "high|medium|low"
      }
    }
  ]
}

CONTENT BLOCK TYPES:
- summary: Overview explanation
- key_points: Important highlights
- architecture: System/component structure
- mermaid: Visual diagrams using mermaid syntax
- code: Code examples with language specification
- api_reference: API documentation
- guide: Step-by-step instructions
- comparison: Compare different approaches
- best_practices: Recommendations
- troubleshooting: Common issues and solutions

SIZE GUIDELINES:
- small: Quick facts, simple explanations (1 grid unit)
- medium: Detailed explanations, moderate diagrams (2 grid units)
- large: Complex diagrams, comprehensive guides (3 grid units)

ANALYSIS STRATEGY:
1. First, analyze the content type and structure
2. Identify the most important concepts and relationships
3. Choose appropriate visualization types (mermaid for flows, code for examples, etc.)
4. Prioritize content based on user instructions
5. Ensure summary is comprehensive but concise

MAXIMUM 6 BLOCKS TOTAL. Choose the most appropriate content types and sizes for this specific document.

For mermaid diagrams, use proper mermaid syntax. For code blocks, specify the programming language in metadata.

Ensure the response is valid JSON.`

// buildPrompt renders the analysis prompt for one document.
func buildPrompt(in Input) string {
	title := in.Title
	if title == "" {
		title = "Untitled Document"
	}

	description := in.Description
	if description == "" {
		description = "No description available"
	}

	instructions := in.Instructions
	if instructions == "" {
		instructions = defaultInstructions
	}

	recommended := recommendedBlockTypes(in.Content, instructions)

	return fmt.Sprintf(promptTemplate,
		title,
		description,
		instructions,
		strings.Join(recommended, ", "),
		in.Content,
	)
}
