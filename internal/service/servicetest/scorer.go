package servicetest

// Scorer returns a preset polarity for each exact text and 0 for anything
// else.
type Scorer map[string]float64

// Polarity implements sentiment.Scorer.
func (s Scorer) Polarity(text string) float64 { return s[text] }
