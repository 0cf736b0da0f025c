// Package sentiment turns free-text feedback into polarity scores and the
// coarse labels reported by the review API.
package sentiment

import (
	"github.com/shopspring/decimal"
)

// Labels derived from a single score.
const (
	Positive = "positive"
	Negative = "negative"
	Neutral  = "neutral"
)

// Ratings derived from an aggregate score.
const (
	Excellent = "excellent"
	Good      = "good"
	Average   = "average"
	Poor      = "poor"
	VeryPoor  = "very_poor"
)

// Label thresholds are exclusive: exactly 0.1 is still neutral.
const (
	positiveAbove = 0.1
	negativeBelow = -0.1
)

// Scorer computes a polarity in [-1, 1] for a piece of text.  The same text
// must always produce the same score.
type Scorer interface {
	Polarity(text string) float64
}

// Result is a score together with its label.
type Result struct {
	Score     float64 `json:"score"`
	Sentiment string  `json:"sentiment"`
}

// Analyze scores text with s and labels the raw score.  The returned score
// is rounded for presentation.
func Analyze(s Scorer, text string) Result {
	p := s.Polarity(text)
	return Result{Score: Round(p), Sentiment: Label(p)}
}

// Label maps a score to positive, negative or neutral.
func Label(score float64) string {
	switch {
	case score > positiveAbove:
		return Positive
	case score < negativeBelow:
		return Negative
	default:
		return Neutral
	}
}

// Rating maps an aggregate score to one of the five rating bands.
func Rating(score float64) string {
	switch {
	case score >= 0.6:
		return Excellent
	case score >= 0.3:
		return Good
	case score >= 0.0:
		return Average
	case score >= -0.3:
		return Poor
	default:
		return VeryPoor
	}
}

// Mean is the arithmetic mean of scores, 0 when there are none.
func Mean(scores []float64) float64 {
	if len(scores) == 0 {
		return 0
	}
	sum := decimal.Zero
	for _, s := range scores {
		sum = sum.Add(decimal.NewFromFloat(s))
	}
	return sum.Div(decimal.NewFromInt(int64(len(scores)))).InexactFloat64()
}

// Round rounds a score to four decimal places.
func Round(score float64) float64 {
	return decimal.NewFromFloat(score).Round(4).InexactFloat64()
}
