package platform

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"pulse/internal/domain/entity"
	"pulse/internal/domain/service"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
)

const tripAdvisorBaseURL = "https://api.content.tripadvisor.com"

// TripAdvisorSource fetches reviews through the TripAdvisor Content API.
type TripAdvisorSource struct {
	client  *resty.Client
	apiKey  string
	baseURL string
}

type tripAdvisorReviewsResponse struct {
	Data []tripAdvisorReview `json:"data"`
}

type tripAdvisorReview struct {
	ID            int64  `json:"id"`
	Rating        int    `json:"rating"`
	Text          string `json:"text"`
	PublishedDate string `json:"published_date"`
	URL           string `json:"url"`
	User          struct {
		Username string `json:"username"`
	} `json:"user"`
}

// NewTripAdvisorSource is the constructor for TripAdvisorSource.
func NewTripAdvisorSource(apiKey string, timeout time.Duration) *TripAdvisorSource {
	return &TripAdvisorSource{
		client:  newClient(timeout),
		apiKey:  apiKey,
		baseURL: tripAdvisorBaseURL,
	}
}

// Platform identifies this source as the TripAdvisor client.
func (s *TripAdvisorSource) Platform() entity.Platform {
	return entity.PlatformTripAdvisor
}

// FetchReviews retrieves the reviews of a location by its location id.
func (s *TripAdvisorSource) FetchReviews(ctx context.Context, externalID string) ([]service.RawReview, error) {
	resp, err := s.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"key":      s.apiKey,
			"language": "en",
		}).
		Get(s.baseURL + "/api/v1/location/" + externalID + "/reviews")
	if err != nil {
		return nil, transportError(s.Platform(), err)
	}
	if resp.IsError() {
		return nil, statusError(s.Platform(), resp)
	}

	var body tripAdvisorReviewsResponse
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		return nil, errors.Wrap(err, "failed to parse TripAdvisor response")
	}

	reviews := make([]service.RawReview, 0, len(body.Data))
	for _, review := range body.Data {
		reviewedAt, err := time.Parse(time.RFC3339, review.PublishedDate)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to parse TripAdvisor review time %q", review.PublishedDate)
		}

		reviews = append(reviews, service.RawReview{
			PlatformReviewID: strconv.FormatInt(review.ID, 10),
			ReviewerName:     review.User.Username,
			Rating:           review.Rating,
			Text:             review.Text,
			Permalink:        review.URL,
			ReviewedAt:       reviewedAt.UTC(),
		})
	}

	return reviews, nil
}
