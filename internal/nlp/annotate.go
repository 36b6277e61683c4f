package nlp

import "review_sentiment/internal/domain"

// Annotation is the derived triple appended to each review.
type Annotation struct {
	CleanedText    string
	SentimentScore float64
	SentimentLabel domain.Label
}

// Annotate cleans text and scores it with est.
func Annotate(est domain.PolarityEstimator, text *string) Annotation {
	cleaned := CleanPtr(text)
	score := 0.0
	if cleaned != "" {
		score = est.Polarity(cleaned)
	}
	return Annotation{
		CleanedText:    cleaned,
		SentimentScore: score,
		SentimentLabel: domain.LabelFor(score),
	}
}
