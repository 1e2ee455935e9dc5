// Package sentiment implements the keyword-lexicon baseline of the
// SentimentAnalyzer contract. Scoring is fully deterministic: no randomness,
// no wall-clock reads, identical text always yields an identical analysis.
package sentiment

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"pulse/internal/domain/entity"
	"pulse/internal/domain/service"
)

// Policy constants for the baseline classifier. Tune-able without changing
// the SentimentAnalyzer contract.
const (
	// Version identifies the lexicon algorithm revision in result metadata.
	Version = "lexicon/1.0"

	positiveThreshold = 0.2
	negativeThreshold = -0.2

	baseConfidence  = 0.5
	confidenceSlope = 0.3
	maxConfidence   = 0.95

	minPhraseWords = 3
	maxPhraseWords = 8
	maxKeyPhrases  = 5
)

// LexiconAnalyzer scores review text against fixed positive/negative word
// lists and topic keyword groups.
type LexiconAnalyzer struct {
	positive map[string]struct{}
	negative map[string]struct{}
}

var _ service.SentimentAnalyzer = (*LexiconAnalyzer)(nil)

// NewLexiconAnalyzer builds the baseline analyzer from the fixed lexicons.
func NewLexiconAnalyzer() service.SentimentAnalyzer {
	return &LexiconAnalyzer{
		positive: toSet(positiveLexicon),
		negative: toSet(negativeLexicon),
	}
}

// Analyze scores one review text. Empty or whitespace-only input fails fast
// with service.ErrEmptyReviewText.
func (a *LexiconAnalyzer) Analyze(text string) (*service.Analysis, error) {
	if strings.TrimSpace(text) == "" {
		return nil, service.ErrEmptyReviewText
	}

	tokens := tokenize(text)

	var positiveHits, negativeHits int
	for _, token := range tokens {
		if _, ok := a.positive[token]; ok {
			positiveHits++
		}
		if _, ok := a.negative[token]; ok {
			negativeHits++
		}
	}

	score := 0.0
	if total := positiveHits + negativeHits; total > 0 {
		score = clamp(float64(positiveHits-negativeHits)/float64(total), -1.0, 1.0)
	}

	label := entity.SentimentNeutral
	switch {
	case score > positiveThreshold:
		label = entity.SentimentPositive
	case score < negativeThreshold:
		label = entity.SentimentNegative
	}

	confidence := baseConfidence + confidenceSlope*abs(score)
	if confidence > maxConfidence {
		confidence = maxConfidence
	}

	topics, tags := detectTopics(tokens, label)

	return &service.Analysis{
		Label:      label,
		Score:      score,
		Confidence: confidence,
		Topics:     topics,
		KeyPhrases: extractKeyPhrases(text),
		Tags:       tags,
		Metadata: map[string]string{
			"analyzer_version": Version,
			"positive_hits":    strconv.Itoa(positiveHits),
			"negative_hits":    strconv.Itoa(negativeHits),
			"token_count":      strconv.Itoa(len(tokens)),
		},
	}, nil
}

// detectTopics walks the fixed topic groups in order and derives one tag per
// detected topic, named after the overall label.
func detectTopics(tokens []string, label entity.SentimentLabel) ([]string, []service.TagDraft) {
	present := make(map[string]struct{}, len(tokens))
	for _, token := range tokens {
		present[token] = struct{}{}
	}

	var topics []string
	var tags []service.TagDraft
	for _, group := range topicGroups {
		for _, keyword := range group.keywords {
			if _, ok := present[keyword]; !ok {
				continue
			}

			topics = append(topics, group.name)
			tags = append(tags, service.TagDraft{
				Name:     fmt.Sprintf("%s %s", label, group.tagWord),
				Category: group.category,
			})

			break
		}
	}

	return topics, tags
}

// extractKeyPhrases splits the text into sentences and keeps the ones with a
// word count in [minPhraseWords, maxPhraseWords], capped at maxKeyPhrases.
func extractKeyPhrases(text string) []string {
	sentences := strings.FieldsFunc(text, func(r rune) bool {
		return r == '.' || r == '!' || r == '?' || r == '\n'
	})

	var phrases []string
	for _, sentence := range sentences {
		sentence = strings.TrimSpace(sentence)
		words := len(strings.Fields(sentence))
		if words < minPhraseWords || words > maxPhraseWords {
			continue
		}

		phrases = append(phrases, sentence)
		if len(phrases) == maxKeyPhrases {
			break
		}
	}

	return phrases
}

// tokenize lowercases the text and splits it into letter/digit runs.
func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func toSet(words []string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, word := range words {
		set[word] = struct{}{}
	}

	return set
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}

	return v
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}

	return v
}
