package intent

import (
	"fmt"
	"strings"

	"github.com/kljensen/snowball"
)

// Analyzer reduces a word to a base form so that inflected verbs
// ("filing", "submitted") match their dictionary entry ("file", "submit").
type Analyzer interface {
	Lemma(word string) string
}

// SnowballAnalyzer stems words with the Snowball algorithm.
type SnowballAnalyzer struct {
	language string
}

// NewSnowballAnalyzer probes the stemmer once so that an unsupported
// language is reported at startup instead of on every turn.
func NewSnowballAnalyzer(language string) (*SnowballAnalyzer, error) {
	language = strings.ToLower(strings.TrimSpace(language))
	if _, err := snowball.Stem("running", language, true); err != nil {
		return nil, fmt.Errorf("snowball stemmer unavailable for %q: %w", language, err)
	}
	return &SnowballAnalyzer{language: language}, nil
}

func (a *SnowballAnalyzer) Lemma(word string) string {
	stemmed, err := snowball.Stem(word, a.language, true)
	if err != nil {
		return strings.ToLower(word)
	}
	return stemmed
}
