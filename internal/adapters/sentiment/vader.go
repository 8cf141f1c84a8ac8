// Package sentiment adapts the VADER lexicon scorer to domain.SentimentScorer.
package sentiment

import (
	"github.com/jonreiter/govader"

	"review_analyzer/internal/domain"
)

type Vader struct{ sia *govader.SentimentIntensityAnalyzer }

// NewVader loads the embedded lexicon once; the analyzer is read-only afterwards
// and safe to share across goroutines.
func NewVader() *Vader {
	return &Vader{sia: govader.NewSentimentIntensityAnalyzer()}
}

func (v *Vader) Score(text string) domain.Sentiment {
	s := v.sia.PolarityScores(text)
	return domain.Sentiment{
		Neg:      s.Negative,
		Neu:      s.Neutral,
		Pos:      s.Positive,
		Compound: s.Compound,
	}
}
