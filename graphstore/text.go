package graphstore

import "strings"

// Stop words to filter out when extracting question terms
var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "be": true, "is": true, "are": true,
	"was": true, "to": true, "of": true, "and": true, "in": true, "that": true,
	"have": true, "it": true, "for": true, "not": true, "on": true, "with": true,
	"as": true, "you": true, "do": true, "at": true, "this": true, "but": true,
	"by": true, "from": true, "what": true, "who": true, "how": true,
	"where": true, "when": true, "why": true, "which": true,
}

// QuestionTerms splits a question into lowercase terms, trims punctuation,
// and removes stop words. The relevance heuristic of both graphstore
// implementations counts how many of these terms a chunk contains.
func QuestionTerms(question string) []string {
	words := strings.Fields(question)
	terms := make([]string, 0, len(words))

	for _, word := range words {
		cleaned := strings.ToLower(strings.Trim(word, ".,!?;:'\"-()[]{}"))
		if cleaned != "" && !stopWords[cleaned] {
			terms = append(terms, cleaned)
		}
	}

	return terms
}

// ScoreContainment counts how many terms appear in the content.
// Matching is case-insensitive substring containment.
func ScoreContainment(content string, terms []string) int {
	lowered := strings.ToLower(content)
	score := 0
	for _, term := range terms {
		if strings.Contains(lowered, term) {
			score++
		}
	}
	return score
}
