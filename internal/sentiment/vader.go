package sentiment

import (
	"github.com/jonreiter/govader"
)

// Vader scores text with the VADER rule-based model.  The compound score is
// already normalised to [-1, 1]; the analyzer only reads its lexicon after
// construction, so one Vader may be shared between goroutines.
type Vader struct {
	analyzer *govader.SentimentIntensityAnalyzer
}

// NewVader loads the bundled VADER lexicon.  Loading parses a few thousand
// entries, so build one at startup and reuse it.
func NewVader() *Vader {
	return &Vader{analyzer: govader.NewSentimentIntensityAnalyzer()}
}

// Polarity implements Scorer.
func (v *Vader) Polarity(text string) float64 {
	return v.analyzer.PolarityScores(text).Compound
}
