// Package chunker splits plain document text into fragments for annotation.
package chunker

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// DefaultMaxRunes is the fragment budget used when none is configured.
const DefaultMaxRunes = 1000

// Splitter packs whole sentences into fragments of at most maxRunes runes,
// repeating the last overlap sentences of a fragment at the start of the next.
type Splitter struct {
	maxRunes int
	overlap  int
}

// New creates a Splitter. maxRunes <= 0 selects DefaultMaxRunes.
func New(maxRunes, overlapSentences int) *Splitter {
	if maxRunes <= 0 {
		maxRunes = DefaultMaxRunes
	}
	return &Splitter{maxRunes: maxRunes, overlap: max(overlapSentences, 0)}
}

// Split returns the fragments of text in reading order. Blank text yields none.
func (s *Splitter) Split(text string) []string {
	var sents []string
	for _, sent := range sentences(text) {
		sents = append(sents, s.hardSplit(sent)...)
	}
	if len(sents) == 0 {
		return nil
	}

	var out []string
	prevEnd := 0
	for i := 0; i < len(sents); {
		end := s.fill(sents, i)
		if end <= prevEnd {
			// The repeated sentences alone fill the budget.
			i = prevEnd
			end = s.fill(sents, i)
		}
		out = append(out, strings.Join(sents[i:end], " "))
		if end == len(sents) {
			break
		}
		prevEnd = end
		i = max(end-s.overlap, i+1)
	}
	return out
}

// fill returns the end of the longest run of sentences from start that fits
// the budget. At least one sentence is always taken.
func (s *Splitter) fill(sents []string, start int) int {
	n := utf8.RuneCountInString(sents[start])
	end := start + 1
	for end < len(sents) {
		l := utf8.RuneCountInString(sents[end]) + 1
		if n+l > s.maxRunes {
			break
		}
		n += l
		end++
	}
	return end
}

// hardSplit cuts a sentence longer than the budget, preferring the last
// space of each window.
func (s *Splitter) hardSplit(sent string) []string {
	runes := []rune(sent)
	var out []string
	for len(runes) > s.maxRunes {
		cut := s.maxRunes
		for j := s.maxRunes; j > s.maxRunes/2; j-- {
			if unicode.IsSpace(runes[j]) {
				cut = j
				break
			}
		}
		out = append(out, strings.TrimSpace(string(runes[:cut])))
		runes = []rune(strings.TrimLeftFunc(string(runes[cut:]), unicode.IsSpace))
	}
	if len(runes) > 0 {
		out = append(out, string(runes))
	}
	return out
}

// sentences splits on terminal punctuation followed by whitespace and on
// blank lines, so decimals such as "ZOT 8.2" stay intact.
func sentences(text string) []string {
	runes := []rune(text)
	var out []string
	start := 0
	for i, r := range runes {
		last := i == len(runes)-1
		boundary := last
		switch r {
		case '.', '!', '?':
			boundary = boundary || unicode.IsSpace(runes[i+1])
		case '\n':
			boundary = boundary || runes[i+1] == '\n'
		}
		if !boundary {
			continue
		}
		if sent := strings.Join(strings.Fields(string(runes[start:i+1])), " "); sent != "" {
			out = append(out, sent)
		}
		start = i + 1
	}
	return out
}
