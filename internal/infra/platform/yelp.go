package platform

import (
	"context"
	"encoding/json"
	"time"

	"pulse/internal/domain/entity"
	"pulse/internal/domain/service"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
)

const (
	yelpBaseURL    = "https://api.yelp.com"
	yelpTimeLayout = "2006-01-02 15:04:05"
)

// YelpSource fetches reviews through the Yelp Fusion API.
type YelpSource struct {
	client  *resty.Client
	apiKey  string
	baseURL string
}

type yelpReviewsResponse struct {
	Reviews []yelpReview `json:"reviews"`
}

type yelpReview struct {
	ID          string `json:"id"`
	Rating      int    `json:"rating"`
	Text        string `json:"text"`
	TimeCreated string `json:"time_created"`
	URL         string `json:"url"`
	User        struct {
		Name string `json:"name"`
	} `json:"user"`
}

// NewYelpSource is the constructor for YelpSource.
func NewYelpSource(apiKey string, timeout time.Duration) *YelpSource {
	return &YelpSource{
		client:  newClient(timeout),
		apiKey:  apiKey,
		baseURL: yelpBaseURL,
	}
}

// Platform identifies this source as the Yelp client.
func (s *YelpSource) Platform() entity.Platform {
	return entity.PlatformYelp
}

// FetchReviews retrieves the reviews of a business by its Yelp business id.
func (s *YelpSource) FetchReviews(ctx context.Context, externalID string) ([]service.RawReview, error) {
	resp, err := s.client.R().
		SetContext(ctx).
		SetAuthToken(s.apiKey).
		Get(s.baseURL + "/v3/businesses/" + externalID + "/reviews")
	if err != nil {
		return nil, transportError(s.Platform(), err)
	}
	if resp.IsError() {
		return nil, statusError(s.Platform(), resp)
	}

	var body yelpReviewsResponse
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		return nil, errors.Wrap(err, "failed to parse Yelp response")
	}

	reviews := make([]service.RawReview, 0, len(body.Reviews))
	for _, review := range body.Reviews {
		reviewedAt, err := time.Parse(yelpTimeLayout, review.TimeCreated)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to parse Yelp review time %q", review.TimeCreated)
		}

		reviews = append(reviews, service.RawReview{
			PlatformReviewID: review.ID,
			ReviewerName:     review.User.Name,
			Rating:           review.Rating,
			Text:             review.Text,
			Permalink:        review.URL,
			ReviewedAt:       reviewedAt.UTC(),
		})
	}

	return reviews, nil
}
