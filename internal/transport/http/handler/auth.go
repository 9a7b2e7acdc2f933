package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"nlustudio/internal/app"
	"nlustudio/internal/model"
	"nlustudio/internal/transport/http/middleware"
	"nlustudio/internal/transport/http/response"
)

type AuthHandler struct {
	authService *app.AuthService
	cookieTTL   time.Duration
}

type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email,max=128"`
	Password string `json:"password" binding:"required,min=8,max=128"`
	FullName string `json:"fullName" binding:"max=128"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email,max=128"`
	Password string `json:"password" binding:"required,max=128"`
}

func NewAuthHandler(authService *app.AuthService, cookieTTL time.Duration) *AuthHandler {
	return &AuthHandler{authService: authService, cookieTTL: cookieTTL}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeInvalidPayload, "invalid request payload")
		return
	}

	result, err := h.authService.Register(app.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
	})
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, response.CodeInvalidPayload, "invalid email or password")
		case errors.Is(err, app.ErrEmailExists):
			response.Error(c, http.StatusBadRequest, response.CodeEmailExists, "email already registered")
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalError, "register failed")
		}
		return
	}

	h.setSessionCookie(c, result.Token)
	c.JSON(http.StatusCreated, gin.H{
		"token": result.Token,
		"user":  userView(result.User),
	})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeInvalidPayload, "invalid request payload")
		return
	}

	result, err := h.authService.Login(app.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, response.CodeInvalidPayload, "invalid request payload")
		case errors.Is(err, app.ErrInvalidCredential):
			response.Error(c, http.StatusUnauthorized, response.CodeInvalidCredentials, "invalid email or password")
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalError, "login failed")
		}
		return
	}

	h.setSessionCookie(c, result.Token)
	c.JSON(http.StatusOK, gin.H{
		"token": result.Token,
		"user":  userView(result.User),
	})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	tok := c.GetHeader("Authorization")
	const prefix = "Bearer "
	if len(tok) > len(prefix) && tok[:len(prefix)] == prefix {
		tok = tok[len(prefix):]
	} else if cookie, err := c.Cookie(middleware.SessionCookieName); err == nil {
		tok = cookie
	}

	if err := h.authService.Logout(tok); err != nil && !errors.Is(err, app.ErrInvalidInput) {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalError, "logout failed")
		return
	}

	c.SetCookie(middleware.SessionCookieName, "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "authentication required")
		return
	}

	user, err := h.authService.GetUserByID(userID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalError, "fetch current user failed")
		return
	}
	if user == nil {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "user not found")
		return
	}

	c.JSON(http.StatusOK, userView(user))
}

func (h *AuthHandler) setSessionCookie(c *gin.Context, tok string) {
	c.SetCookie(middleware.SessionCookieName, tok, int(h.cookieTTL.Seconds()), "/", "", false, true)
}

func userView(user *model.User) gin.H {
	return gin.H{
		"id":       user.ID,
		"email":    user.Email,
		"fullName": user.FullName,
	}
}
