package sentiment

import (
	"strings"
	"testing"

	"pulse/internal/domain/entity"
	"pulse/internal/domain/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLexiconAnalyzer_PositiveReview(t *testing.T) {
	analyzer := NewLexiconAnalyzer()

	analysis, err := analyzer.Analyze("Amazing coffee and friendly staff, highly recommend")
	require.NoError(t, err)

	assert.Equal(t, entity.SentimentPositive, analysis.Label)
	assert.Greater(t, analysis.Score, 0.2)
	assert.Contains(t, analysis.Topics, "service")
	assert.Contains(t, analysis.Topics, "coffee")

	var staffTag *service.TagDraft
	for i := range analysis.Tags {
		if analysis.Tags[i].Category == entity.TagCategoryStaff {
			staffTag = &analysis.Tags[i]
		}
	}
	require.NotNil(t, staffTag, "expected a staff tag")
	assert.Equal(t, "positive staff", staffTag.Name)
}

func TestLexiconAnalyzer_NegativeReview(t *testing.T) {
	analyzer := NewLexiconAnalyzer()

	analysis, err := analyzer.Analyze("Terrible, slow, rude staff, avoid this place")
	require.NoError(t, err)

	assert.Equal(t, entity.SentimentNegative, analysis.Label)
	assert.Less(t, analysis.Score, -0.2)

	var staffTag *service.TagDraft
	for i := range analysis.Tags {
		if analysis.Tags[i].Category == entity.TagCategoryStaff {
			staffTag = &analysis.Tags[i]
		}
	}
	require.NotNil(t, staffTag, "expected a staff tag")
	assert.Equal(t, "negative staff", staffTag.Name)
}

func TestLexiconAnalyzer_NeutralReviewWithoutSignal(t *testing.T) {
	analyzer := NewLexiconAnalyzer()

	analysis, err := analyzer.Analyze("It was a place. We went there on Tuesday.")
	require.NoError(t, err)

	assert.Equal(t, entity.SentimentNeutral, analysis.Label)
	assert.Zero(t, analysis.Score)
	assert.InDelta(t, 0.5, analysis.Confidence, 1e-9)
	assert.Empty(t, analysis.Topics)
	assert.Empty(t, analysis.Tags)
}

func TestLexiconAnalyzer_EmptyTextFailsFast(t *testing.T) {
	analyzer := NewLexiconAnalyzer()

	_, err := analyzer.Analyze("   \n\t ")
	assert.ErrorIs(t, err, service.ErrEmptyReviewText)
}

func TestLexiconAnalyzer_Deterministic(t *testing.T) {
	analyzer := NewLexiconAnalyzer()
	text := "Great food but slow service. The coffee was cold and the prices expensive. Would not recommend to a friend."

	first, err := analyzer.Analyze(text)
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		again, err := analyzer.Analyze(text)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestLexiconAnalyzer_ScoreLabelConsistency(t *testing.T) {
	analyzer := NewLexiconAnalyzer()

	texts := []string{
		"Amazing coffee and friendly staff, highly recommend",
		"Terrible, slow, rude staff, avoid this place",
		"It was a place. We went there on Tuesday.",
		"Good food but terrible service",
		"Great great great but bad",
		"bad bad bad but good",
		"The best breakfast in the neighborhood, fresh and delicious",
		"Dirty tables, cold food, horrible experience, worst place ever",
		"Nice enough, nothing special",
	}

	for _, text := range texts {
		analysis, err := analyzer.Analyze(text)
		require.NoError(t, err, text)

		// Range invariants.
		assert.GreaterOrEqual(t, analysis.Score, -1.0, text)
		assert.LessOrEqual(t, analysis.Score, 1.0, text)
		assert.GreaterOrEqual(t, analysis.Confidence, 0.0, text)
		assert.LessOrEqual(t, analysis.Confidence, 0.95, text)

		// Label must agree with the score thresholds.
		switch {
		case analysis.Score > 0.2:
			assert.Equal(t, entity.SentimentPositive, analysis.Label, text)
		case analysis.Score < -0.2:
			assert.Equal(t, entity.SentimentNegative, analysis.Label, text)
		default:
			assert.Equal(t, entity.SentimentNeutral, analysis.Label, text)
		}
	}
}

func TestLexiconAnalyzer_WordBoundaryMatching(t *testing.T) {
	analyzer := NewLexiconAnalyzer()

	// "badge" contains "bad" and "goodness" contains "good"; neither should
	// count as a lexicon hit.
	analysis, err := analyzer.Analyze("The badge on the wall mentioned goodness")
	require.NoError(t, err)

	assert.Equal(t, entity.SentimentNeutral, analysis.Label)
	assert.Equal(t, "0", analysis.Metadata["positive_hits"])
	assert.Equal(t, "0", analysis.Metadata["negative_hits"])
}

func TestLexiconAnalyzer_KeyPhrases(t *testing.T) {
	analyzer := NewLexiconAnalyzer()

	t.Run("keeps sentences of three to eight words", func(t *testing.T) {
		analysis, err := analyzer.Analyze("Too short. The coffee here is consistently excellent. " +
			"This sentence is unfortunately far too long to ever qualify as a key phrase for anyone.")
		require.NoError(t, err)

		assert.Equal(t, []string{"The coffee here is consistently excellent"}, analysis.KeyPhrases)
	})

	t.Run("caps the phrase list at five", func(t *testing.T) {
		text := strings.Repeat("A perfectly fine little sentence. ", 8)
		analysis, err := analyzer.Analyze(text)
		require.NoError(t, err)

		assert.Len(t, analysis.KeyPhrases, 5)
	})
}
