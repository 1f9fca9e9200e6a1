package v1

import "testing"

func TestTextStats(t *testing.T) {
	text := "First sentence. Second one!\n\nNew paragraph? Yes.\n\n\n"

	if got := countWords(text); got != 7 {
		t.Errorf("countWords = %d, want 7", got)
	}
	if got := countSentences(text); got != 4 {
		t.Errorf("countSentences = %d, want 4", got)
	}
	if got := countParagraphs(text); got != 2 {
		t.Errorf("countParagraphs = %d, want 2", got)
	}
}

func TestTextStats_Empty(t *testing.T) {
	if countWords("") != 0 || countSentences("") != 0 || countParagraphs("") != 0 {
		t.Error("empty text should produce zero counts")
	}
}
