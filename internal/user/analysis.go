package user

import (
	"net/http"

	"eyeglaze/internal/analytics"
	"eyeglaze/internal/database"
	"eyeglaze/internal/geminiservice"
	"eyeglaze/internal/recommend"
	"eyeglaze/internal/utility"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

var (
	queries *database.Queries
	engine  *recommend.Engine
)

// InitUserPackage prepares the package for operation by configuring database
// queries and wiring the recommendation engine to its collaborators.
func InitUserPackage(q *database.Queries) {
	queries = q
	engine = recommend.NewEngine(queries, queries, queries, geminiservice.NewClient())
	log.Info().Msg("User package initialized.")
}

/* =================================================================================
							DTOs (Data Transfer Objects)
=================================================================================*/

// SubmitAnalysisRequest defines the payload expected from the client.
// HasStress is a pointer so a missing field is distinguishable from false;
// a non-boolean value fails JSON binding outright.
type SubmitAnalysisRequest struct {
	Username  string `json:"username"`
	HasStress *bool  `json:"hasStress"`
	ImageURL  string `json:"imageUrl,omitempty"`
}

/* =================================================================================
								HANDLERS
=================================================================================*/

// SubmitAnalysisHandler appends one stress observation for a user and pushes
// it to the user's live feed.
func SubmitAnalysisHandler(c echo.Context) error {
	ctx := c.Request().Context()

	var req SubmitAnalysisRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"status": "error", "message": "hasStress must be a boolean value (true or false)",
		})
	}

	if req.Username == "" || req.HasStress == nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"status": "error", "message": "Username and stress status (hasStress) are required",
		})
	}

	exists, err := queries.UserExists(ctx, req.Username)
	if err != nil {
		log.Error().Err(err).Msg("Failed to check user existence")
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"status": "error", "message": "Internal server error",
		})
	}
	if !exists {
		return c.JSON(http.StatusNotFound, map[string]string{
			"status": "error", "message": "User not found",
		})
	}

	params := database.CreateAnalysisParams{
		Username:  req.Username,
		HasStress: *req.HasStress,
	}
	if req.ImageURL != "" {
		params.ImageURL = &req.ImageURL
	}

	analysis, err := queries.CreateAnalysis(ctx, params)
	if err != nil {
		log.Error().Err(err).Msg("Failed to store analysis")
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"status": "error", "message": "Internal server error",
		})
	}

	utility.NotifyAnalysisSubmitted(analysis.Username, analysis)

	return c.JSON(http.StatusCreated, map[string]interface{}{
		"status":  "success",
		"message": "Analysis submitted successfully",
		"data":    analysis,
	})
}

// GetUserAnalysesHandler returns all analyses for a user, newest first.
func GetUserAnalysesHandler(c echo.Context) error {
	ctx := c.Request().Context()

	username := c.Param("username")
	if username == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"status": "error", "message": "Username is required",
		})
	}

	analyses, err := queries.ListAnalyses(ctx, username)
	if err != nil {
		log.Error().Err(err).Msg("Failed to fetch analyses")
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"status": "error", "message": "Internal server error",
		})
	}
	if analyses == nil {
		analyses = []analytics.Analysis{}
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":  "success",
		"message": "User analyses retrieved successfully",
		"count":   len(analyses),
		"data":    analyses,
	})
}

// GetLatestAnalysisHandler returns the most recent analysis for a user.
func GetLatestAnalysisHandler(c echo.Context) error {
	ctx := c.Request().Context()

	username := c.Param("username")
	if username == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"status": "error", "message": "Username is required",
		})
	}

	analyses, err := queries.ListAnalyses(ctx, username)
	if err != nil {
		log.Error().Err(err).Msg("Failed to fetch latest analysis")
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"status": "error", "message": "Internal server error",
		})
	}

	latest, ok := analytics.Latest(analyses)
	if !ok {
		return c.JSON(http.StatusNotFound, map[string]string{
			"status": "error", "message": "No analysis found for this user",
		})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":  "success",
		"message": "Latest analysis retrieved successfully",
		"data":    latest,
	})
}

// GetAnalysisCountHandler returns how many analyses a user has submitted.
func GetAnalysisCountHandler(c echo.Context) error {
	ctx := c.Request().Context()

	username := c.Param("username")
	if username == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"status": "error", "message": "Username is required",
		})
	}

	exists, err := queries.UserExists(ctx, username)
	if err != nil {
		log.Error().Err(err).Msg("Failed to check user existence")
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"status": "error", "message": "Internal server error",
		})
	}
	if !exists {
		return c.JSON(http.StatusNotFound, map[string]string{
			"status": "error", "message": "User not found",
		})
	}

	count, err := queries.CountAnalyses(ctx, username)
	if err != nil {
		log.Error().Err(err).Msg("Failed to count analyses")
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"status": "error", "message": "Internal server error",
		})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":  "success",
		"message": "Analysis count retrieved successfully",
		"data": map[string]interface{}{
			"username":      username,
			"totalAnalyses": count,
		},
	})
}

// AnalysisFeedHandler maintains the live websocket feed for the
// authenticated user. New analyses are pushed as they are submitted.
func AnalysisFeedHandler(c echo.Context) error {
	username, err := utility.GetUsernameFromContext(c)
	if err != nil {
		return echo.ErrUnauthorized
	}

	ws, err := utility.Upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}
	defer ws.Close()

	utility.RegisterClient(username, ws)
	defer utility.UnregisterClient(username)

	// Keep the socket open; we never expect messages from the client.
	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			break
		}
	}
	return nil
}
