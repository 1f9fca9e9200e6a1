// Package humanize applies a local post-processing pass to generated text:
// a literal find/replace of stock LLM phrasing plus a small number of
// randomly placed connective sentences.
package humanize

import (
	"hash/fnv"
	"math/rand"
	"strings"
)

// replacement is an ordered find/replace pair. Order matters: longer phrases
// must be replaced before their substrings.
type replacement struct {
	from string
	to   string
}

var replacements = []replacement{
	{"It is important to note that", "Notably,"},
	{"it is important to note that", "notably,"},
	{"It is worth noting that", "Worth noting:"},
	{"delve into", "examine"},
	{"delves into", "examines"},
	{"delving into", "examining"},
	{"In conclusion,", "To conclude,"},
	{"Furthermore,", "Further,"},
	{"furthermore,", "further,"},
	{"Moreover,", "Also,"},
	{"moreover,", "also,"},
	{"Additionally,", "In addition,"},
	{"a myriad of", "many"},
	{"plays a crucial role", "is central"},
	{"plays a pivotal role", "is central"},
	{"In today's world", "Today"},
	{"ever-evolving", "changing"},
	{"landscape of", "field of"},
	{"utilize", "use"},
	{"utilizes", "uses"},
	{"utilizing", "using"},
}

// insertionTemplates are connective asides inserted at paragraph boundaries.
// %TOPIC% is substituted with the document topic.
var insertionTemplates = []string{
	"This point deserves a closer look in the context of %TOPIC%.",
	"The practical implications of this for %TOPIC% are considerable.",
	"Scholars continue to debate this aspect of %TOPIC%.",
	"This observation aligns with broader trends seen in research on %TOPIC%.",
	"Such findings carry particular weight when applied to %TOPIC%.",
}

// maxInsertions caps how many sentences a single pass may add.
const maxInsertions = 3

// Pass holds the configuration for one humanization run.
type Pass struct {
	rng   *rand.Rand
	topic string
}

// NewPass creates a humanization pass seeded from the given key so the output
// is reproducible per document.
func NewPass(seedKey, topic string) *Pass {
	h := fnv.New64a()
	h.Write([]byte(seedKey))
	return &Pass{
		rng:   rand.New(rand.NewSource(int64(h.Sum64()))),
		topic: topic,
	}
}

// Apply runs the find/replace table and inserts connective sentences at random
// paragraph boundaries. The input is returned unchanged when it is blank.
func (p *Pass) Apply(text string) string {
	if strings.TrimSpace(text) == "" {
		return text
	}

	for _, r := range replacements {
		text = strings.ReplaceAll(text, r.from, r.to)
	}

	return p.insertSentences(text)
}

// insertSentences appends a templated aside to up to maxInsertions randomly
// chosen paragraphs. Headings and very short paragraphs are skipped.
func (p *Pass) insertSentences(text string) string {
	paragraphs := strings.Split(text, "\n\n")

	var candidates []int
	for i, para := range paragraphs {
		trimmed := strings.TrimSpace(para)
		if len(trimmed) < 200 || strings.HasPrefix(trimmed, "#") {
			continue
		}
		candidates = append(candidates, i)
	}
	if len(candidates) == 0 {
		return text
	}

	count := len(candidates) / 3
	if count < 1 {
		count = 1
	}
	if count > maxInsertions {
		count = maxInsertions
	}

	p.rng.Shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})

	for _, idx := range candidates[:count] {
		sentence := insertionTemplates[p.rng.Intn(len(insertionTemplates))]
		sentence = strings.ReplaceAll(sentence, "%TOPIC%", p.topic)
		paragraphs[idx] = strings.TrimRight(paragraphs[idx], " ") + " " + sentence
	}

	return strings.Join(paragraphs, "\n\n")
}
