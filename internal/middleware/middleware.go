package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/joshua-takyi/printer-admin/internal/helpers"
	"github.com/joshua-takyi/printer-admin/internal/metrics"
	"github.com/joshua-takyi/printer-admin/internal/models"
	"github.com/joshua-takyi/printer-admin/internal/services"
	"github.com/supabase-community/gotrue-go/types"
)

const (
	AccessTokenCookie  = "access_token"
	RefreshTokenCookie = "refresh_token"
	refreshCookieTTL   = 3600 * 24 * 30

	userKey = "user"
)

// RequestID middleware adds a unique request ID to each request
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set("request_id", requestID)
		c.Header("X-Request-ID", requestID)
		c.Next()
	}
}

// StructuredLogger logs every request and counts it by route template.
func StructuredLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)
		statusCode := c.Writer.Status()

		if raw != "" {
			path = path + "?" + raw
		}

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.IncHTTP(c.Request.Method, route, strconv.Itoa(statusCode))

		requestID, _ := c.Get("request_id")

		logger.Info("HTTP Request",
			"request_id", requestID,
			"method", c.Request.Method,
			"path", path,
			"status", statusCode,
			"latency", latency,
			"client_ip", c.ClientIP(),
		)
	}
}

// ErrorHandler logs errors attached with c.Error and answers with a generic 500
// when the handler has not written a response yet.
func ErrorHandler(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 {
			err := c.Errors.Last()
			requestID, _ := c.Get("request_id")

			logger.Error("Request error",
				"request_id", requestID,
				"error", err.Error(),
				"method", c.Request.Method,
				"path", c.Request.URL.Path,
			)

			if !c.Writer.Written() {
				c.JSON(http.StatusInternalServerError, models.ErrorResponse("Internal server error"))
			}
		}
	}
}

type TokenVerifier interface {
	Validate(token string) (*helpers.CustomClaims, error)
}

// SessionService is the part of the user service the auth middleware needs.
type SessionService interface {
	RefreshToken(ctx context.Context, refreshToken string) (*types.TokenResponse, error)
	GetProfile(ctx context.Context, id uuid.UUID, accessToken string) (*models.AdminProfile, error)
}

// SetSessionCookies stores the Supabase session in http-only cookies.
func SetSessionCookies(c *gin.Context, tok *types.TokenResponse, secure bool) {
	c.SetCookie(AccessTokenCookie, tok.AccessToken, tok.ExpiresIn, "/", "", secure, true)
	c.SetCookie(RefreshTokenCookie, tok.RefreshToken, refreshCookieTTL, "/", "", secure, true)
}

func ClearSessionCookies(c *gin.Context, secure bool) {
	c.SetCookie(AccessTokenCookie, "", -1, "/", "", secure, true)
	c.SetCookie(RefreshTokenCookie, "", -1, "/", "", secure, true)
}

func unauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse(msg))
}

// AuthMiddleware accepts the access token from the cookie or a Bearer header. An
// invalid cookie token is refreshed once with the refresh cookie. Only admin
// profiles pass.
func AuthMiddleware(verifier TokenVerifier, sessions SessionService, secureCookies bool, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := helpers.BearerToken(c.GetHeader("Authorization"))
		fromCookie := false
		if token == "" {
			cookie, err := c.Cookie(AccessTokenCookie)
			if err != nil || cookie == "" {
				unauthorized(c, "Unauthorized access")
				return
			}
			token = cookie
			fromCookie = true
		}

		claims, err := verifier.Validate(token)
		if err != nil && fromCookie {
			refreshToken, refreshErr := c.Cookie(RefreshTokenCookie)
			if refreshErr != nil || refreshToken == "" {
				unauthorized(c, "Unauthorized access")
				return
			}

			tok, refreshErr := sessions.RefreshToken(c.Request.Context(), refreshToken)
			if refreshErr != nil || tok == nil || tok.AccessToken == "" {
				logger.Error("Token refresh failed", "error", refreshErr)
				unauthorized(c, "Token expired and refresh failed")
				return
			}

			logger.Info("Token refreshed successfully",
				"user_id", tok.User.ID,
				"expires_in", tok.ExpiresIn,
			)
			SetSessionCookies(c, tok, secureCookies)
			token = tok.AccessToken
			claims, err = verifier.Validate(token)
		}
		if err != nil {
			unauthorized(c, "Unauthorized access")
			return
		}

		userID, err := uuid.Parse(claims.Subject)
		if err != nil {
			logger.Error("Invalid user ID in token", "user_id", claims.Subject, "error", err)
			unauthorized(c, "Invalid token subject")
			return
		}

		profile, err := sessions.GetProfile(c.Request.Context(), userID, token)
		if err != nil {
			if errors.Is(err, models.ErrNotFound) {
				logger.Info("Profile not found", "user_id", claims.Subject)
			} else {
				logger.Error("Profile lookup failed", "user_id", claims.Subject, "error", err)
			}
			c.AbortWithStatusJSON(http.StatusForbidden, models.ErrorResponse("Admin access required"))
			return
		}

		adminClaims := &helpers.AdminClaims{
			CustomClaims: claims,
			Role:         profile.Role,
			UserID:       claims.Subject,
			Email:        claims.Email,
			FullName:     profile.FullName,
		}
		if !adminClaims.IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, models.ErrorResponse("Admin access required"))
			return
		}

		c.Set(userKey, adminClaims)
		c.Request = c.Request.WithContext(services.WithActor(c.Request.Context(), adminClaims.Actor()))
		c.Next()
	}
}

// CurrentAdmin returns the claims stored by AuthMiddleware.
func CurrentAdmin(c *gin.Context) (*helpers.AdminClaims, bool) {
	v, ok := c.Get(userKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*helpers.AdminClaims)
	return claims, ok
}
