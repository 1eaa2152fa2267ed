package user

import (
	"errors"
	"net/http"
	"time"

	"eyeglaze/internal/analytics"
	"eyeglaze/internal/recommend"
	"eyeglaze/internal/utility"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

/* =================================================================================
								HANDLERS
=================================================================================*/

// GetRecommendationsHandler is the main entry point.
// It orchestrates: Validation -> Aggregation -> AI Generation -> Parsing -> Storing -> Response.
func GetRecommendationsHandler(c echo.Context) error {
	ctx := c.Request().Context()

	username := c.Param("username")
	if username == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"status": "error", "message": "Username is required",
		})
	}

	log.Info().Str("username", username).Msg("Processing recommendation request")

	result, err := engine.Produce(ctx, username, time.Now())
	switch {
	case err == nil:
	case errors.Is(err, recommend.ErrUserNotFound):
		return c.JSON(http.StatusNotFound, map[string]string{
			"status": "error", "message": "User not found",
		})
	case errors.Is(err, analytics.ErrNoAnalyses):
		return c.JSON(http.StatusNotFound, map[string]string{
			"status": "error", "message": "No analysis found for this user",
		})
	case errors.Is(err, recommend.ErrGenerationUnavailable):
		log.Error().Err(err).Msg("Generation service failed")
		return c.JSON(http.StatusServiceUnavailable, map[string]string{
			"status": "error", "message": "AI service temporarily unavailable. Please try again later.",
		})
	default:
		log.Error().Err(err).Msg("Error generating recommendations")
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"status": "error", "message": "Error generating recommendations",
		})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":  "success",
		"message": "Recommendations generated successfully",
		"data":    result,
	})
}

// GetEyeHealthSummaryHandler returns full-history statistics plus the weekly
// trend series. Read-only; nothing is persisted.
func GetEyeHealthSummaryHandler(c echo.Context) error {
	ctx := c.Request().Context()

	username := c.Param("username")
	if username == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"status": "error", "message": "Username is required",
		})
	}

	summary, err := engine.Summary(ctx, username)
	switch {
	case err == nil:
	case errors.Is(err, recommend.ErrUserNotFound):
		return c.JSON(http.StatusNotFound, map[string]string{
			"status": "error", "message": "User not found",
		})
	case errors.Is(err, recommend.ErrNoHistory):
		return c.JSON(http.StatusNotFound, map[string]string{
			"status": "error", "message": "No analysis history found for this user",
		})
	default:
		log.Error().Err(err).Msg("Error generating eye health summary")
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"status": "error", "message": "Error generating eye health summary",
		})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":  "success",
		"message": "Eye health summary retrieved successfully",
		"data":    summary,
	})
}

// GetRecommendationHistoryHandler returns paginated saved recommendations.
func GetRecommendationHistoryHandler(c echo.Context) error {
	ctx := c.Request().Context()

	username := c.Param("username")
	if username == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"status": "error", "message": "Username is required",
		})
	}

	limit := utility.ParseIntParam(c.QueryParam("limit"), 10)
	skip := utility.ParseIntParam(c.QueryParam("skip"), 0)

	page, err := engine.History(ctx, username, limit, skip)
	switch {
	case err == nil:
	case errors.Is(err, recommend.ErrUserNotFound):
		return c.JSON(http.StatusNotFound, map[string]string{
			"status": "error", "message": "User not found",
		})
	default:
		log.Error().Err(err).Msg("Error retrieving recommendations history")
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"status": "error", "message": "Error retrieving recommendations history",
		})
	}

	if len(page.Recommendations) == 0 {
		return c.JSON(http.StatusNotFound, map[string]string{
			"status": "error", "message": "No recommendations found for this user",
		})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":  "success",
		"message": "Recommendations history retrieved successfully",
		"data":    page,
	})
}
