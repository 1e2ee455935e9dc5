package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"pulse/internal/delivery/http/middleware"
	"pulse/internal/delivery/http/response"
	"pulse/internal/domain/entity"
	"pulse/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// AddListingRequest links a business to its identity on one review platform.
type AddListingRequest struct {
	Platform   string `json:"platform" validate:"required"`
	ExternalID string `json:"external_id" validate:"required"`
}

// BusinessHandler holds dependencies for business and review handlers.
type BusinessHandler struct {
	businessUC       usecase.BusinessUsecase
	ingestionUC      usecase.IngestionUsecase
	classificationUC usecase.ClassificationUsecase
	logger           *slog.Logger
}

// NewBusinessHandler is the constructor for BusinessHandler, injected by Fx.
func NewBusinessHandler(
	businessUC usecase.BusinessUsecase,
	ingestionUC usecase.IngestionUsecase,
	classificationUC usecase.ClassificationUsecase,
	logger *slog.Logger,
) *BusinessHandler {
	return &BusinessHandler{
		businessUC:       businessUC,
		ingestionUC:      ingestionUC,
		classificationUC: classificationUC,
		logger:           logger,
	}
}

// Create registers a new monitored business.
func (h *BusinessHandler) Create(c echo.Context) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return response.Unauthorized(c, "UNAUTHENTICATED", "Missing authenticated user")
	}

	var input usecase.CreateBusinessInput
	if err := c.Bind(&input); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid business input")
	}
	if input.Name == "" {
		return response.BadRequest(c, "INVALID_INPUT", "Business name is required")
	}

	business, err := h.businessUC.CreateBusiness(c.Request().Context(), userID, input)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusCreated, business, "Business created successfully")
}

// List returns every business owned by the calling user.
func (h *BusinessHandler) List(c echo.Context) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return response.Unauthorized(c, "UNAUTHENTICATED", "Missing authenticated user")
	}

	businesses, err := h.businessUC.ListBusinesses(c.Request().Context(), userID)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, businesses, "")
}

// Get returns one business.
func (h *BusinessHandler) Get(c echo.Context) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return response.Unauthorized(c, "UNAUTHENTICATED", "Missing authenticated user")
	}

	businessID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return response.BadRequest(c, "INVALID_BUSINESS_ID", "Business id must be a UUID")
	}

	business, err := h.businessUC.GetBusiness(c.Request().Context(), userID, businessID)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, business, "")
}

// Update applies a partial update to a business.
func (h *BusinessHandler) Update(c echo.Context) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return response.Unauthorized(c, "UNAUTHENTICATED", "Missing authenticated user")
	}

	businessID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return response.BadRequest(c, "INVALID_BUSINESS_ID", "Business id must be a UUID")
	}

	var input usecase.UpdateBusinessInput
	if err := c.Bind(&input); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid business input")
	}

	business, err := h.businessUC.UpdateBusiness(c.Request().Context(), userID, businessID, input)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, business, "Business updated successfully")
}

// AddListing links the business to one platform.
func (h *BusinessHandler) AddListing(c echo.Context) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return response.Unauthorized(c, "UNAUTHENTICATED", "Missing authenticated user")
	}

	businessID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return response.BadRequest(c, "INVALID_BUSINESS_ID", "Business id must be a UUID")
	}

	var req AddListingRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid listing input")
	}
	if err := c.Validate(&req); err != nil {
		return errors.WithStack(err)
	}

	listing, err := h.businessUC.AddListing(c.Request().Context(), userID, businessID, usecase.AddListingInput{
		Platform:   entity.Platform(req.Platform),
		ExternalID: req.ExternalID,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusCreated, listing, "Listing added successfully")
}

// TriggerIngest runs an on-demand retrieval pass for one platform listing.
// The force query parameter bypasses the freshness window.
func (h *BusinessHandler) TriggerIngest(c echo.Context) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return response.Unauthorized(c, "UNAUTHENTICATED", "Missing authenticated user")
	}

	businessID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return response.BadRequest(c, "INVALID_BUSINESS_ID", "Business id must be a UUID")
	}

	platform := entity.Platform(c.Param("platform"))
	force := c.QueryParam("force") == "true"

	result, err := h.ingestionUC.IngestBusinessPlatform(c.Request().Context(), userID, businessID, platform, force)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, result, "Ingestion pass completed")
}

// ListReviews returns the reviews of a business, newest first.
func (h *BusinessHandler) ListReviews(c echo.Context) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return response.Unauthorized(c, "UNAUTHENTICATED", "Missing authenticated user")
	}

	businessID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return response.BadRequest(c, "INVALID_BUSINESS_ID", "Business id must be a UUID")
	}

	limit, offset := pagination(c)

	reviews, err := h.businessUC.ListReviews(c.Request().Context(), userID, businessID, limit, offset)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, reviews, "")
}

// GetReview returns one review with its sentiment result and tags.
func (h *BusinessHandler) GetReview(c echo.Context) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return response.Unauthorized(c, "UNAUTHENTICATED", "Missing authenticated user")
	}

	reviewID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return response.BadRequest(c, "INVALID_REVIEW_ID", "Review id must be a UUID")
	}

	detail, err := h.businessUC.GetReview(c.Request().Context(), userID, reviewID)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, detail, "")
}

// ReclassifyReview forces a classification re-run for one review.
func (h *BusinessHandler) ReclassifyReview(c echo.Context) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return response.Unauthorized(c, "UNAUTHENTICATED", "Missing authenticated user")
	}

	reviewID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return response.BadRequest(c, "INVALID_REVIEW_ID", "Review id must be a UUID")
	}

	output, err := h.classificationUC.ReclassifyReview(c.Request().Context(), userID, reviewID)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, output, "Review reclassified successfully")
}

// pagination reads limit/offset query parameters with sane bounds.
func pagination(c echo.Context) (limit, offset int) {
	limit = defaultPageSize
	if raw := c.QueryParam("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = min(parsed, maxPageSize)
		}
	}

	if raw := c.QueryParam("offset"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed >= 0 {
			offset = parsed
		}
	}

	return limit, offset
}
