package intent

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// suffixAnalyzer is a tiny stand-in stemmer for tests that must not depend
// on Snowball's exact output.
type suffixAnalyzer struct{}

func (suffixAnalyzer) Lemma(word string) string {
	w := strings.ToLower(word)
	for _, suffix := range []string{"ted", "ed", "ing", "s"} {
		if strings.HasSuffix(w, suffix) && len(w) > len(suffix)+2 {
			return strings.TrimSuffix(w, suffix)
		}
	}
	return w
}

func TestClassifier_IsFiling(t *testing.T) {
	c := NewClassifier(WithAnalyzer(suffixAnalyzer{}))

	tests := []struct {
		name       string
		text       string
		want       bool
		wantMethod Method
	}{
		{"explicit pattern", "I want to file a complaint about billing", true, MethodPattern},
		{"report an issue", "I'd like to REPORT AN ISSUE", true, MethodPattern},
		{"fuzzy near miss", "I wanna complain", true, MethodFuzzy},
		{"fuzzy contained phrase", "I have an issue with my order", true, MethodFuzzy},
		{"keyword and verb", "we submitted the concern yesterday", true, MethodKeyword},
		{"greeting", "hello there", false, MethodNone},
		{"unrelated question", "what are your opening hours", false, MethodNone},
		{"shared first person prefix", "I need to know the opening hours", false, MethodNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sig := c.Classify(tt.text, KindFiling)
			assert.Equal(t, tt.want, sig.Matched)
			assert.Equal(t, tt.wantMethod, sig.Method)
			assert.Equal(t, tt.want, c.IsFiling(tt.text))
		})
	}
}

func TestClassifier_IsRetrieving(t *testing.T) {
	c := NewClassifier(WithAnalyzer(suffixAnalyzer{}))

	tests := []struct {
		name       string
		text       string
		want       bool
		wantMethod Method
	}{
		{"track", "track my complaint", true, MethodPattern},
		{"what is", "what is my complaint", true, MethodPattern},
		{"check status for ticket", "check status for ticket", true, MethodPattern},
		{"fuzzy status of complaint", "Show me the status of complaint ABC123", true, MethodFuzzy},
		{"greeting", "hello there", false, MethodNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sig := c.Classify(tt.text, KindRetrieval)
			assert.Equal(t, tt.want, sig.Matched)
			assert.Equal(t, tt.wantMethod, sig.Method)
			assert.Equal(t, tt.want, c.IsRetrieving(tt.text))
		})
	}
}

func TestClassifier_WithoutAnalyzer(t *testing.T) {
	c := NewClassifier()
	assert.False(t, c.NLPEnabled())

	// Only the keyword/verb signal could catch this one.
	assert.False(t, c.IsFiling("we submitted the concern yesterday"))
	// The other signals keep working.
	assert.True(t, c.IsFiling("file a complaint"))
	assert.True(t, c.IsRetrieving("track my complaint"))
}

func TestClassifier_Negation(t *testing.T) {
	// Negation is not understood; the pattern still fires.
	c := NewClassifier()
	assert.True(t, c.IsFiling("I don't want to file a complaint"))
}

func TestWithThreshold(t *testing.T) {
	assert.Equal(t, 0.9, NewClassifier(WithThreshold(0.9)).Threshold())
	assert.Equal(t, DefaultThreshold, NewClassifier(WithThreshold(0)).Threshold())
	assert.Equal(t, DefaultThreshold, NewClassifier(WithThreshold(1.5)).Threshold())

	// About 76 clears the default threshold but not a strict one.
	assert.True(t, NewClassifier().IsFiling("I wanna complain"))
	assert.False(t, NewClassifier(WithThreshold(0.9)).IsFiling("I wanna complain"))
}

func TestClassifier_PhrasesKeepCase(t *testing.T) {
	c := NewClassifier()

	// "need to" is the only overlap; the phrase's "I" does not match "i".
	sig := c.Classify("I need to know the opening hours", KindFiling)
	assert.False(t, sig.Matched)
	assert.Equal(t, "I need to report", sig.Phrase)
	assert.InDelta(t, 100-100*9.0/23.0, sig.Score, 0.001)

	// Typing the phrase still scores well above the threshold.
	sig = c.Classify("I want to complain", KindFiling)
	assert.True(t, sig.Matched)
	assert.Equal(t, MethodFuzzy, sig.Method)
	assert.InDelta(t, 100-100*2.0/36.0, sig.Score, 0.001)
}

func TestTokenSetRatio(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{"identical", "file a complaint", "file a complaint", 100},
		{"reordered", "complaint a file", "File a Complaint", 100},
		{"subset", "I want to file a complaint today", "file a complaint", 100},
		{"disjoint", "abc", "xyz", 0},
		{"empty", "", "file a complaint", 0},
		{"punctuation only", "?!", "file", 0},
		{"partial overlap", "I wanna complain", "I want to complain", 100 - 100*6.0/34.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, TokenSetRatio(tt.a, tt.b), 0.001)
			assert.InDelta(t, tt.want, TokenSetRatio(tt.b, tt.a), 0.001)
		})
	}
}

func TestSnowballAnalyzer(t *testing.T) {
	a, err := NewSnowballAnalyzer("English")
	require.NoError(t, err)

	assert.Equal(t, a.Lemma("submit"), a.Lemma("submitted"))
	assert.Equal(t, a.Lemma("file"), a.Lemma("filing"))
	assert.Equal(t, a.Lemma("track"), a.Lemma("tracking"))

	_, err = NewSnowballAnalyzer("klingon")
	assert.Error(t, err)
}

func TestClassifier_SnowballKeywordSignal(t *testing.T) {
	a, err := NewSnowballAnalyzer("english")
	require.NoError(t, err)

	c := NewClassifier(WithAnalyzer(a))
	sig := c.Classify("we submitted the concern yesterday", KindFiling)
	assert.True(t, sig.Matched)
	assert.Equal(t, MethodKeyword, sig.Method)
}
