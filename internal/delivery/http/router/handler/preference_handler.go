package handler

import (
	"log/slog"
	"net/http"

	"pulse/internal/delivery/http/middleware"
	"pulse/internal/delivery/http/response"
	"pulse/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// UpdatePreferenceRequest carries the full replacement preference.
type UpdatePreferenceRequest struct {
	EmailNotifications   bool    `json:"email_notifications"`
	NewReviewAlerts      bool    `json:"new_review_alerts"`
	RatingAlertThreshold int     `json:"rating_alert_threshold" validate:"required,min=1,max=5"`
	SentimentThreshold   float64 `json:"sentiment_threshold" validate:"min=-1,max=0"`
	QuietHoursStart      string  `json:"quiet_hours_start"`
	QuietHoursEnd        string  `json:"quiet_hours_end"`
	Timezone             string  `json:"timezone"`
	WeeklySummary        bool    `json:"weekly_summary"`
	MonthlyReport        bool    `json:"monthly_report"`
}

// PreferenceHandler holds dependencies for notification preference handlers.
type PreferenceHandler struct {
	uc     usecase.PreferenceUsecase
	logger *slog.Logger
}

// NewPreferenceHandler is the constructor for PreferenceHandler, injected by Fx.
func NewPreferenceHandler(uc usecase.PreferenceUsecase, logger *slog.Logger) *PreferenceHandler {
	return &PreferenceHandler{
		uc:     uc,
		logger: logger,
	}
}

// Get returns the calling user's notification preference, defaults included.
func (h *PreferenceHandler) Get(c echo.Context) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return response.Unauthorized(c, "UNAUTHENTICATED", "Missing authenticated user")
	}

	pref, err := h.uc.GetPreference(c.Request().Context(), userID)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, pref, "")
}

// Update replaces the calling user's notification preference.
func (h *PreferenceHandler) Update(c echo.Context) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return response.Unauthorized(c, "UNAUTHENTICATED", "Missing authenticated user")
	}

	var req UpdatePreferenceRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid preference input")
	}
	if err := c.Validate(&req); err != nil {
		return errors.WithStack(err)
	}

	pref, err := h.uc.UpdatePreference(c.Request().Context(), userID, usecase.UpdatePreferenceInput{
		EmailNotifications:   req.EmailNotifications,
		NewReviewAlerts:      req.NewReviewAlerts,
		RatingAlertThreshold: req.RatingAlertThreshold,
		SentimentThreshold:   req.SentimentThreshold,
		QuietHoursStart:      req.QuietHoursStart,
		QuietHoursEnd:        req.QuietHoursEnd,
		Timezone:             req.Timezone,
		WeeklySummary:        req.WeeklySummary,
		MonthlyReport:        req.MonthlyReport,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, pref, "Preference updated successfully")
}
