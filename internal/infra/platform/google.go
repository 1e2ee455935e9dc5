package platform

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"time"

	"pulse/internal/domain/entity"
	"pulse/internal/domain/service"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
)

const googleBaseURL = "https://maps.googleapis.com"

// GoogleSource fetches reviews through the Google Places Details API.
type GoogleSource struct {
	client  *resty.Client
	apiKey  string
	baseURL string
}

type googleDetailsResponse struct {
	Result struct {
		Reviews []googleReview `json:"reviews"`
	} `json:"result"`
	Status string `json:"status"`
}

type googleReview struct {
	AuthorName string `json:"author_name"`
	AuthorURL  string `json:"author_url"`
	Rating     int    `json:"rating"`
	Text       string `json:"text"`
	Time       int64  `json:"time"`
}

// NewGoogleSource is the constructor for GoogleSource.
func NewGoogleSource(apiKey string, timeout time.Duration) *GoogleSource {
	return &GoogleSource{
		client:  newClient(timeout),
		apiKey:  apiKey,
		baseURL: googleBaseURL,
	}
}

// Platform identifies this source as the Google client.
func (s *GoogleSource) Platform() entity.Platform {
	return entity.PlatformGoogle
}

// FetchReviews retrieves the reviews of a place by its place id.
func (s *GoogleSource) FetchReviews(ctx context.Context, externalID string) ([]service.RawReview, error) {
	resp, err := s.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"place_id": externalID,
			"fields":   "reviews",
			"key":      s.apiKey,
		}).
		Get(s.baseURL + "/maps/api/place/details/json")
	if err != nil {
		return nil, transportError(s.Platform(), err)
	}
	if resp.IsError() {
		return nil, statusError(s.Platform(), resp)
	}

	var details googleDetailsResponse
	if err := json.Unmarshal(resp.Body(), &details); err != nil {
		return nil, errors.Wrap(err, "failed to parse Google Places response")
	}

	// The Places API reports request-level failures inside a 200 body.
	switch details.Status {
	case "OK", "ZERO_RESULTS":
	case "NOT_FOUND", "INVALID_REQUEST":
		return nil, service.ErrListingNotFound
	case "OVER_QUERY_LIMIT", "UNKNOWN_ERROR":
		return nil, service.NewTransientError(errors.Errorf("google place details status %s", details.Status))
	default:
		return nil, errors.Errorf("google place details status %s", details.Status)
	}

	reviews := make([]service.RawReview, 0, len(details.Result.Reviews))
	for _, review := range details.Result.Reviews {
		reviews = append(reviews, service.RawReview{
			// Google does not expose a review id; derive a stable one from
			// the author and timestamp so re-fetches dedup correctly.
			PlatformReviewID: googleReviewID(review),
			ReviewerName:     review.AuthorName,
			Rating:           review.Rating,
			Text:             review.Text,
			Permalink:        review.AuthorURL,
			ReviewedAt:       time.Unix(review.Time, 0).UTC(),
		})
	}

	return reviews, nil
}

func googleReviewID(review googleReview) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%d", review.AuthorName, review.Time)))

	return fmt.Sprintf("%x", sum[:16])
}
