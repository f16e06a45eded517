package intent

import (
	"regexp"
	"strings"
)

// DefaultThreshold is the minimum fuzzy similarity, as a fraction of 100,
// for a canonical phrase to count as a match.
const DefaultThreshold = 0.7

// Kind names the complaint intent being tested.
type Kind string

const (
	KindFiling    Kind = "FILING"
	KindRetrieval Kind = "RETRIEVAL"
)

// Method names the evidence that produced a positive signal.
type Method string

const (
	MethodNone    Method = "NONE"
	MethodPattern Method = "PATTERN"
	MethodFuzzy   Method = "FUZZY"
	MethodKeyword Method = "KEYWORD"
)

// Signal is the outcome of testing one utterance for one intent.
type Signal struct {
	Kind    Kind    `json:"kind"`
	Matched bool    `json:"matched"`
	Method  Method  `json:"method"`
	Score   float64 `json:"score"`  // best fuzzy score, 0-100
	Phrase  string  `json:"phrase"` // canonical phrase behind Score
}

type rules struct {
	patterns []*regexp.Regexp
	examples []string
	keywords map[string]struct{}
	verbs    []string
}

var filingRules = rules{
	patterns: compileAll(
		`file\s+a\s+complaint`,
		`submit\s+a\s+complaint`,
		`make\s+a\s+complaint`,
		`register\s+a\s+complaint`,
		`lodge\s+a\s+complaint`,
		`raise\s+a\s+complaint`,
		`complain\s+about`,
		`report\s+an?\s+issue`,
		`report\s+a\s+problem`,
	),
	examples: []string{
		"file a complaint", "submit a complaint", "make a complaint",
		"register a complaint", "lodge a complaint", "raise a complaint",
		"complain about", "report an issue", "report a problem",
		"I want to complain", "I need to report", "I have an issue",
		"I'm having a problem", "not satisfied with", "unhappy with",
	},
	keywords: setOf("complaint", "report", "issue", "problem", "concern"),
	verbs:    []string{"file", "submit", "make", "register", "lodge", "raise"},
}

var retrievalRules = rules{
	patterns: compileAll(
		`(get|show|view|check|retrieve)\s+(my\s+)?(details|status|info)?\s*(for|of|about)?\s*(complaint|issue|ticket)`,
		`(what|where)\s+is\s+(my\s+)?(complaint|issue|ticket)`,
		`track\s+(my\s+)?(complaint|issue|ticket)`,
	),
	examples: []string{
		"show me complaint", "view complaint", "check complaint",
		"retrieve complaint", "what is my complaint", "where is my complaint",
		"track my complaint", "status of complaint", "complaint status",
		"find my complaint", "look up my complaint", "see my complaint details",
	},
	keywords: setOf("complaint", "ticket", "case", "issue", "status"),
	verbs:    []string{"show", "see", "find", "get", "check", "track", "view", "retrieve"},
}

func compileAll(exprs ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(exprs))
	for i, e := range exprs {
		out[i] = regexp.MustCompile(`(?i)` + e)
	}
	return out
}

func setOf(words ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}

// Classifier decides whether an utterance asks to file or to look up a
// complaint. Three signals are combined with OR: case-insensitive
// patterns, fuzzy similarity to canonical phrases, and a keyword plus
// action verb co-occurrence. The last one needs an Analyzer and is
// skipped when none is configured.
type Classifier struct {
	threshold float64
	analyzer  Analyzer

	filingVerbs    map[string]struct{}
	retrievalVerbs map[string]struct{}
}

type Option func(*Classifier)

// WithThreshold sets the fuzzy threshold as a fraction in (0, 1].
// Out-of-range values keep DefaultThreshold.
func WithThreshold(threshold float64) Option {
	return func(c *Classifier) {
		if threshold > 0 && threshold <= 1 {
			c.threshold = threshold
		}
	}
}

// WithAnalyzer enables the keyword/verb signal.
func WithAnalyzer(a Analyzer) Option {
	return func(c *Classifier) {
		c.analyzer = a
	}
}

func NewClassifier(opts ...Option) *Classifier {
	c := &Classifier{threshold: DefaultThreshold}
	for _, opt := range opts {
		opt(c)
	}
	if c.analyzer != nil {
		c.filingVerbs = c.lemmaSet(filingRules.verbs)
		c.retrievalVerbs = c.lemmaSet(retrievalRules.verbs)
	}
	return c
}

func (c *Classifier) lemmaSet(words []string) map[string]struct{} {
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[c.analyzer.Lemma(w)] = struct{}{}
	}
	return m
}

// Threshold returns the active fuzzy threshold fraction.
func (c *Classifier) Threshold() float64 {
	return c.threshold
}

// NLPEnabled reports whether the keyword/verb signal is active.
func (c *Classifier) NLPEnabled() bool {
	return c.analyzer != nil
}

func (c *Classifier) IsFiling(text string) bool {
	return c.Classify(text, KindFiling).Matched
}

func (c *Classifier) IsRetrieving(text string) bool {
	return c.Classify(text, KindRetrieval).Matched
}

// Classify tests text for one intent and reports which signal fired
// first. Score and Phrase always carry the best fuzzy candidate, even
// when another signal decided the outcome.
func (c *Classifier) Classify(text string, kind Kind) Signal {
	r, verbs := filingRules, c.filingVerbs
	if kind == KindRetrieval {
		r, verbs = retrievalRules, c.retrievalVerbs
	}

	sig := Signal{Kind: kind, Method: MethodNone}
	// Only the utterance is normalized. Canonical phrases keep their case,
	// so a user's "i" never counts as overlap with a phrase's "I".
	utterance := tokenSet(text)
	for _, ex := range r.examples {
		if score := tokenSetRatio(utterance, fieldSet(ex)); score > sig.Score {
			sig.Score, sig.Phrase = score, ex
		}
	}

	for _, p := range r.patterns {
		if p.MatchString(text) {
			sig.Matched, sig.Method = true, MethodPattern
			return sig
		}
	}

	if sig.Score >= c.threshold*100 {
		sig.Matched, sig.Method = true, MethodFuzzy
		return sig
	}

	if c.analyzer != nil && c.keywordAndVerb(text, r.keywords, verbs) {
		sig.Matched, sig.Method = true, MethodKeyword
	}
	return sig
}

func (c *Classifier) keywordAndVerb(text string, keywords, verbs map[string]struct{}) bool {
	var hasKeyword, hasVerb bool
	for _, tok := range strings.Fields(normalize(text)) {
		if _, ok := keywords[tok]; ok {
			hasKeyword = true
		}
		if _, ok := verbs[c.analyzer.Lemma(tok)]; ok {
			hasVerb = true
		}
		if hasKeyword && hasVerb {
			return true
		}
	}
	return false
}
