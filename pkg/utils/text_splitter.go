package utils

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var defaultSeparators = []string{"\n\n", "\n", " ", ""}

// SplitText splits text into chunks of at most chunkSize characters,
// preferring paragraph, then line, then word boundaries. Neighbouring
// chunks share up to overlap characters.
func SplitText(text string, chunkSize int, overlap int) []string {
	if chunkSize <= 0 {
		return []string{text}
	}
	if overlap < 0 || overlap >= chunkSize {
		overlap = 0
	}
	if strings.TrimSpace(text) == "" {
		return nil
	}
	s := splitter{size: chunkSize, overlap: overlap}
	return s.split(text, defaultSeparators)
}

type splitter struct {
	size    int
	overlap int
}

func runeLen(s string) int { return utf8.RuneCountInString(s) }

func (s splitter) split(text string, separators []string) []string {
	sep := separators[len(separators)-1]
	var rest []string
	for i, candidate := range separators {
		if candidate == "" || strings.Contains(text, candidate) {
			sep = candidate
			rest = separators[i+1:]
			break
		}
	}

	var pieces []string
	if sep == "" {
		for _, r := range text {
			pieces = append(pieces, string(r))
		}
	} else {
		pieces = strings.Split(text, sep)
	}

	var chunks, pending []string
	for _, p := range pieces {
		if p == "" {
			continue
		}
		if runeLen(p) < s.size {
			pending = append(pending, p)
			continue
		}
		if len(pending) > 0 {
			chunks = append(chunks, s.merge(pending, sep)...)
			pending = nil
		}
		if len(rest) == 0 {
			chunks = append(chunks, p)
		} else {
			chunks = append(chunks, s.split(p, rest)...)
		}
	}
	if len(pending) > 0 {
		chunks = append(chunks, s.merge(pending, sep)...)
	}
	return chunks
}

// merge packs small pieces into chunks, carrying a tail of at most
// overlap characters into the next chunk.
func (s splitter) merge(pieces []string, sep string) []string {
	sepLen := runeLen(sep)
	var chunks, current []string
	total := 0

	joinedLen := func(extra int) int {
		if len(current) == 0 {
			return extra
		}
		return total + sepLen + extra
	}

	for _, p := range pieces {
		n := runeLen(p)
		if len(current) > 0 && joinedLen(n) > s.size {
			if doc := strings.TrimSpace(strings.Join(current, sep)); doc != "" {
				chunks = append(chunks, doc)
			}
			for len(current) > 0 && (total > s.overlap || joinedLen(n) > s.size) {
				total -= runeLen(current[0])
				if len(current) > 1 {
					total -= sepLen
				}
				current = current[1:]
			}
		}
		total = joinedLen(n)
		current = append(current, p)
	}
	if doc := strings.TrimSpace(strings.Join(current, sep)); doc != "" {
		chunks = append(chunks, doc)
	}
	return chunks
}

var (
	whitespaceRun = regexp.MustCompile(`\s+`)
	nonASCII      = regexp.MustCompile(`[^\x00-\x7F]+`)
)

// CleanText collapses whitespace runs to single spaces, trims, and drops
// non-ASCII characters.
func CleanText(text string) string {
	text = strings.TrimSpace(whitespaceRun.ReplaceAllString(text, " "))
	return nonASCII.ReplaceAllString(text, "")
}
