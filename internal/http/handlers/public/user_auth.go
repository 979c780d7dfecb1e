package public

import (
	"errors"

	"github.com/hornada/hornada/internal/http/response"
	"github.com/hornada/hornada/internal/models"
	"github.com/hornada/hornada/internal/service"

	"github.com/gin-gonic/gin"
)

// RegisterRequest creates a customer account.
type RegisterRequest struct {
	Email       string `json:"email" binding:"required"`
	Password    string `json:"password" binding:"required"`
	DisplayName string `json:"display_name"`
	CaptchaID   string `json:"captcha_id"`
	CaptchaCode string `json:"captcha_code"`
}

// LoginRequest authenticates a customer.
type LoginRequest struct {
	Email       string `json:"email" binding:"required"`
	Password    string `json:"password" binding:"required"`
	RememberMe  bool   `json:"remember_me"`
	CaptchaID   string `json:"captcha_id"`
	CaptchaCode string `json:"captcha_code"`
}

// ChangePasswordRequest rotates a customer's password.
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

// UpdateProfileRequest patches profile fields; nil fields stay unchanged.
type UpdateProfileRequest struct {
	DisplayName *string `json:"display_name"`
	Phone       *string `json:"phone"`
}

var userAuthErrorRules = []mappedHandlerError{
	{target: service.ErrInvalidInput, code: response.CodeBadRequest, msg: "invalid email"},
	{target: service.ErrEmailTaken, code: response.CodeConflict, msg: "email already registered"},
	{target: service.ErrInvalidCredentials, code: response.CodeUnauthorized, msg: "wrong email or password"},
	{target: service.ErrUserDisabled, code: response.CodeForbidden, msg: "account disabled"},
	{target: service.ErrPasswordPolicy, code: response.CodeBadRequest, msg: "password does not meet requirements"},
	{target: service.ErrCaptchaRequired, code: response.CodeBadRequest, msg: "captcha required"},
	{target: service.ErrCaptchaInvalid, code: response.CodeBadRequest, msg: "captcha verification failed"},
}

func respondUserAuthError(c *gin.Context, err error) {
	// Policy violations carry a human message describing the failed rule.
	if errors.Is(err, service.ErrPasswordPolicy) {
		respondError(c, response.CodeBadRequest, err.Error(), nil)
		return
	}
	respondWithMappedError(c, err, userAuthErrorRules, response.CodeInternal, "request failed")
}

// Register creates a customer account and signs them in.
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	if err := h.CaptchaService.Verify(req.CaptchaID, req.CaptchaCode); err != nil {
		respondUserAuthError(c, err)
		return
	}
	user, token, expiresAt, err := h.UserAuthService.Register(req.Email, req.Password, req.DisplayName)
	if err != nil {
		respondUserAuthError(c, err)
		return
	}
	response.Success(c, gin.H{
		"user":       userProfileView(user),
		"token":      token,
		"expires_at": expiresAt,
	})
}

// Login authenticates a customer and issues a token.
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	if err := h.CaptchaService.Verify(req.CaptchaID, req.CaptchaCode); err != nil {
		respondUserAuthError(c, err)
		return
	}
	user, token, expiresAt, err := h.UserAuthService.LoginWithRememberMe(req.Email, req.Password, req.RememberMe)
	if err != nil {
		respondUserAuthError(c, err)
		return
	}
	response.Success(c, gin.H{
		"user":       userProfileView(user),
		"token":      token,
		"expires_at": expiresAt,
	})
}

// GetProfile returns the signed-in customer's profile.
func (h *Handler) GetProfile(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	user, err := h.UserAuthService.GetUserByID(userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			respondError(c, response.CodeNotFound, "user not found", nil)
			return
		}
		respondError(c, response.CodeInternal, "profile fetch failed", err)
		return
	}
	response.Success(c, userProfileView(user))
}

// UpdateProfile patches the signed-in customer's profile.
func (h *Handler) UpdateProfile(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	user, err := h.UserAuthService.UpdateProfile(userID, req.DisplayName, req.Phone)
	if err != nil {
		if errors.Is(err, service.ErrInvalidInput) {
			respondError(c, response.CodeBadRequest, "nothing to update", nil)
			return
		}
		respondUserAuthError(c, err)
		return
	}
	response.Success(c, userProfileView(user))
}

// ChangePassword rotates the signed-in customer's password. Existing
// tokens stop working.
func (h *Handler) ChangePassword(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	if err := h.UserAuthService.ChangePassword(userID, req.OldPassword, req.NewPassword); err != nil {
		if errors.Is(err, service.ErrInvalidPassword) {
			respondError(c, response.CodeBadRequest, "current password is wrong", nil)
			return
		}
		respondUserAuthError(c, err)
		return
	}
	response.SuccessWithMsg(c, "password updated", nil)
}

func userProfileView(user *models.User) gin.H {
	if user == nil {
		return gin.H{}
	}
	return gin.H{
		"id":           user.ID,
		"email":        user.Email,
		"display_name": user.DisplayName,
		"phone":        user.Phone,
		"status":       user.Status,
		"created_at":   user.CreatedAt,
	}
}
