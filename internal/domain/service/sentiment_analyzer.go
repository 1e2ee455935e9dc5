package service

import (
	"pulse/internal/domain/entity"
	"pulse/internal/errors"
)

// ErrEmptyReviewText is returned when classification is asked to score empty
// or whitespace-only text. It fails fast rather than producing a meaningless
// neutral score, and is never retried.
var ErrEmptyReviewText = errors.New("review text is empty")

// TagDraft is a derived review tag before it is bound to a review id.
type TagDraft struct {
	Name     string             // Human-readable tag name, e.g. "negative staff".
	Category entity.TagCategory // Reporting bucket for the tag.
}

// Analysis is the full outcome of scoring one review text.
type Analysis struct {
	Label      entity.SentimentLabel // Categorical label, consistent with Score.
	Score      float64               // Sentiment score in [-1.0, 1.0].
	Confidence float64               // Confidence proxy in [0.0, 0.95].
	Topics     []string              // Detected topic groups, in lexicon order.
	KeyPhrases []string              // Extracted key phrases, capped at five.
	Tags       []TagDraft            // Derived tags for the detected topics and overall label.
	Metadata   map[string]string     // Analyzer version and diagnostic counts.
}

// SentimentAnalyzer scores review text. Implementations must be deterministic:
// the same text always yields an identical Analysis, which is what makes
// classification safely re-runnable. The baseline is a keyword lexicon; any
// scoring backend honoring this contract can be substituted.
type SentimentAnalyzer interface {
	Analyze(text string) (*Analysis, error)
}
