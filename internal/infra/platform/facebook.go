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

const facebookBaseURL = "https://graph.facebook.com"

// FacebookSource fetches page recommendations through the Facebook Graph API.
type FacebookSource struct {
	client      *resty.Client
	accessToken string
	baseURL     string
}

type facebookRatingsResponse struct {
	Data []facebookRating `json:"data"`
}

type facebookRating struct {
	OpenGraphStoryID string `json:"open_graph_story_id"`
	ReviewText       string `json:"review_text"`
	Rating           int    `json:"rating"`
	CreatedTime      string `json:"created_time"`
	Reviewer         struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"reviewer"`
}

// NewFacebookSource is the constructor for FacebookSource.
func NewFacebookSource(accessToken string, timeout time.Duration) *FacebookSource {
	return &FacebookSource{
		client:      newClient(timeout),
		accessToken: accessToken,
		baseURL:     facebookBaseURL,
	}
}

// Platform identifies this source as the Facebook client.
func (s *FacebookSource) Platform() entity.Platform {
	return entity.PlatformFacebook
}

// FetchReviews retrieves the ratings of a page by its page id.
func (s *FacebookSource) FetchReviews(ctx context.Context, externalID string) ([]service.RawReview, error) {
	resp, err := s.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"fields":       "open_graph_story_id,review_text,rating,created_time,reviewer",
			"access_token": s.accessToken,
		}).
		Get(s.baseURL + "/v19.0/" + externalID + "/ratings")
	if err != nil {
		return nil, transportError(s.Platform(), err)
	}
	if resp.IsError() {
		return nil, statusError(s.Platform(), resp)
	}

	var body facebookRatingsResponse
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		return nil, errors.Wrap(err, "failed to parse Facebook response")
	}

	reviews := make([]service.RawReview, 0, len(body.Data))
	for _, rating := range body.Data {
		reviewedAt, err := time.Parse(time.RFC3339, rating.CreatedTime)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to parse Facebook review time %q", rating.CreatedTime)
		}

		reviews = append(reviews, service.RawReview{
			PlatformReviewID: rating.OpenGraphStoryID,
			ReviewerName:     rating.Reviewer.Name,
			Rating:           rating.Rating,
			Text:             rating.ReviewText,
			Permalink:        "https://www.facebook.com/" + rating.OpenGraphStoryID,
			ReviewedAt:       reviewedAt.UTC(),
		})
	}

	return reviews, nil
}
