package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/printer-admin/internal/middleware"
	"github.com/joshua-takyi/printer-admin/internal/models"
	"github.com/joshua-takyi/printer-admin/internal/services"
)

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func Login(us *services.UserService, secureCookies bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req loginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("email and password are required"))
			return
		}

		tok, profile, err := us.AuthenticateUser(c.Request.Context(), req.Email, req.Password)
		if err != nil {
			status := statusFor(err)
			if status == http.StatusInternalServerError {
				status = http.StatusUnauthorized
			}
			c.JSON(status, models.ErrorResponse(err.Error()))
			return
		}

		middleware.SetSessionCookies(c, tok, secureCookies)
		c.JSON(http.StatusOK, models.SuccessResponse(gin.H{
			"profile":    profile,
			"expires_in": tok.ExpiresIn,
		}, "Logged in successfully"))
	}
}

func Logout(secureCookies bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		middleware.ClearSessionCookies(c, secureCookies)
		c.JSON(http.StatusOK, models.SuccessResponse(nil, "Logged out successfully"))
	}
}

func Me() gin.HandlerFunc {
	return func(c *gin.Context) {
		admin, ok := middleware.CurrentAdmin(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, models.ErrorResponse("unauthorized"))
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(gin.H{
			"id":        admin.UserID,
			"email":     admin.Email,
			"full_name": admin.FullName,
			"role":      admin.GetSafeRole(),
		}, ""))
	}
}
