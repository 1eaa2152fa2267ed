/*
Package auth implements account registration, login and the JWT middleware
guarding the API routes. Passwords are stored as bcrypt hashes; access
tokens are HS256-signed with SESSION_SECRET.
*/
package auth

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"eyeglaze/internal/database"
	"eyeglaze/internal/utility"
	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

const AccessTokenDuration = 24 * time.Hour

var queries *database.Queries

// InitAuthPackage prepares the package by configuring database queries.
func InitAuthPackage(q *database.Queries) {
	queries = q
	log.Info().Msg("Auth package initialized.")
}

type JwtCustomClaims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

/* =================================================================================
								DTOs
=================================================================================*/

type RegisterRequest struct {
	Username  string `json:"username"`
	Password  string `json:"password"`
	BirthDate string `json:"birthDate"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

/* =================================================================================
								HANDLERS
=================================================================================*/

// RegisterHandler creates a new account. Username must be unique; birth date
// uses YYYY-MM-DD.
func RegisterHandler(c echo.Context) error {
	ctx := c.Request().Context()

	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"status": "error", "message": "Invalid request format",
		})
	}

	if req.Username == "" || req.Password == "" || req.BirthDate == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"status": "error", "message": "Username, password, and birth date are required",
		})
	}

	birthDate, err := time.Parse("2006-01-02", req.BirthDate)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"status": "error", "message": "Invalid birth date format. Please use YYYY-MM-DD format",
		})
	}

	if _, err := queries.GetUserByUsername(ctx, req.Username); err == nil {
		return c.JSON(http.StatusConflict, map[string]string{
			"status": "error", "message": "Username already exists",
		})
	} else if !errors.Is(err, database.ErrNotFound) {
		log.Error().Err(err).Msg("Failed to check existing user")
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"status": "error", "message": "Internal server error",
		})
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Error().Err(err).Msg("Failed to hash password")
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"status": "error", "message": "Internal server error",
		})
	}

	user, err := queries.CreateUser(ctx, database.CreateUserParams{
		Username:     req.Username,
		PasswordHash: string(hash),
		BirthDate:    birthDate,
	})
	if err != nil {
		log.Error().Err(err).Msg("Failed to create user")
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"status": "error", "message": "Internal server error",
		})
	}

	log.Info().Str("username", user.Username).Msg("User registered")

	return c.JSON(http.StatusCreated, map[string]interface{}{
		"status":  "success",
		"message": "User registered successfully",
		"data": map[string]interface{}{
			"id":        user.UserID,
			"username":  user.Username,
			"age":       ageFromBirthDate(birthDate),
			"createdAt": user.CreatedAt,
		},
	})
}

// LoginHandler verifies credentials and issues an access token. Failed
// lookups and bad passwords return the same message.
func LoginHandler(c echo.Context) error {
	ctx := c.Request().Context()

	if err := utility.CheckIPRateLimit(utility.GetRealIP(c)); err != nil {
		return c.JSON(http.StatusTooManyRequests, map[string]string{
			"status": "error", "message": "Too many login attempts. Please try again later",
		})
	}

	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"status": "error", "message": "Invalid request format",
		})
	}

	if req.Username == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"status": "error", "message": "Username and password are required",
		})
	}

	user, err := queries.GetUserByUsername(ctx, req.Username)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{
			"status": "error", "message": "Invalid username or password",
		})
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{
			"status": "error", "message": "Invalid username or password",
		})
	}

	token, err := generateAccessToken(user.Username)
	if err != nil {
		log.Error().Err(err).Msg("Failed to sign access token")
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"status": "error", "message": "Internal server error",
		})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":  "success",
		"message": "Login successful",
		"data": map[string]interface{}{
			"username":    user.Username,
			"age":         ageFromBirthDate(user.BirthDate),
			"createdAt":   user.CreatedAt,
			"accessToken": token,
		},
	})
}

/* =================================================================================
							TOKENS & MIDDLEWARE
=================================================================================*/

func generateAccessToken(username string) (string, error) {
	claims := JwtCustomClaims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(AccessTokenDuration)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(os.Getenv("SESSION_SECRET")))
}

// JwtAuthMiddleware validates the Bearer token and stores the authenticated
// username in the request context.
func JwtAuthMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		authHeader := c.Request().Header.Get("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			return c.JSON(http.StatusUnauthorized, map[string]string{
				"status": "error", "message": "Missing or malformed token",
			})
		}
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")

		sessionSecret := os.Getenv("SESSION_SECRET")
		token, err := jwt.ParseWithClaims(tokenString, &JwtCustomClaims{}, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(sessionSecret), nil
		})
		if err != nil || !token.Valid {
			return c.JSON(http.StatusUnauthorized, map[string]string{
				"status": "error", "message": "Invalid or expired token",
			})
		}

		claims, ok := token.Claims.(*JwtCustomClaims)
		if !ok || claims.Username == "" {
			return c.JSON(http.StatusUnauthorized, map[string]string{
				"status": "error", "message": "Invalid token claims",
			})
		}

		c.Set("username", claims.Username)
		return next(c)
	}
}

// ageFromBirthDate mirrors the client-facing age computation: whole years
// including leap days.
func ageFromBirthDate(birthDate time.Time) int {
	return int(time.Since(birthDate).Hours() / (365.25 * 24))
}
