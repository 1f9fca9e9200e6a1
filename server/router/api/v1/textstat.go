package v1

import "strings"

// countWords returns the whitespace-separated word count.
func countWords(s string) int {
	return len(strings.Fields(s))
}

// countSentences approximates the sentence count by terminal punctuation.
func countSentences(s string) int {
	count := 0
	for _, r := range s {
		if r == '.' || r == '!' || r == '?' {
			count++
		}
	}
	return count
}

// countParagraphs counts non-empty blocks separated by blank lines.
func countParagraphs(s string) int {
	count := 0
	for _, block := range strings.Split(s, "\n\n") {
		if strings.TrimSpace(block) != "" {
			count++
		}
	}
	return count
}
