package admin

import (
	"errors"

	"github.com/hornada/hornada/internal/cache"
	"github.com/hornada/hornada/internal/constants"
	"github.com/hornada/hornada/internal/http/response"
	"github.com/hornada/hornada/internal/logger"
	"github.com/hornada/hornada/internal/service"

	"github.com/gin-gonic/gin"
)

// LoginRequest authenticates a back-office account.
type LoginRequest struct {
	Username    string `json:"username" binding:"required"`
	Password    string `json:"password" binding:"required"`
	CaptchaID   string `json:"captcha_id"`
	CaptchaCode string `json:"captcha_code"`
}

// LoginResponse carries the issued token and account summary.
type LoginResponse struct {
	Token     string                 `json:"token"`
	User      map[string]interface{} `json:"user"`
	ExpiresAt string                 `json:"expires_at"`
}

// AdminLogin signs in a back-office account.
func (h *Handler) AdminLogin(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	if err := h.CaptchaService.Verify(req.CaptchaID, req.CaptchaCode); err != nil {
		switch {
		case errors.Is(err, service.ErrCaptchaRequired):
			respondError(c, response.CodeBadRequest, "captcha required", nil)
		case errors.Is(err, service.ErrCaptchaInvalid):
			respondError(c, response.CodeBadRequest, "captcha verification failed", nil)
		default:
			respondError(c, response.CodeInternal, "captcha verification failed", err)
		}
		return
	}

	admin, token, expiresAt, err := h.AuthService.Login(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			respondError(c, response.CodeUnauthorized, "wrong username or password", nil)
			return
		}
		respondError(c, response.CodeInternal, "login failed", err)
		return
	}

	logger.Infow("admin_login",
		"admin_id", admin.ID,
		"username", admin.Username,
		"client_ip", c.ClientIP(),
	)
	response.Success(c, LoginResponse{
		Token: token,
		User: map[string]interface{}{
			"id":        admin.ID,
			"username":  admin.Username,
			"branch_id": admin.BranchID,
			"is_super":  admin.IsSuper,
		},
		ExpiresAt: expiresAt.Format("2006-01-02T15:04:05Z07:00"),
	})
}

// UpdatePasswordRequest rotates the caller's password.
type UpdatePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

// UpdateAdminPassword rotates the signed-in admin's password. Existing
// tokens stop working.
func (h *Handler) UpdateAdminPassword(c *gin.Context) {
	id, ok := getAdminID(c)
	if !ok {
		return
	}
	var req UpdatePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	if err := h.AuthService.ChangePassword(id, req.OldPassword, req.NewPassword); err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidPassword):
			respondError(c, response.CodeBadRequest, "current password is wrong", nil)
		case errors.Is(err, service.ErrPasswordPolicy):
			respondError(c, response.CodeBadRequest, err.Error(), nil)
		case errors.Is(err, service.ErrAdminNotFound):
			respondError(c, response.CodeNotFound, "admin not found", nil)
		default:
			respondError(c, response.CodeInternal, "password update failed", err)
		}
		return
	}
	response.SuccessWithMsg(c, "password updated", nil)
}

// GetSettings returns one settings document.
func (h *Handler) GetSettings(c *gin.Context) {
	key := c.DefaultQuery("key", constants.SettingKeySiteConfig)

	value, err := h.SettingService.GetByKey(key)
	if err != nil {
		respondError(c, response.CodeInternal, "settings fetch failed", err)
		return
	}
	if value == nil {
		response.Success(c, gin.H{})
		return
	}
	response.Success(c, value)
}

// UpdateSettingsRequest replaces a settings document.
type UpdateSettingsRequest struct {
	Key   string                 `json:"key" binding:"required"`
	Value map[string]interface{} `json:"value" binding:"required"`
}

// UpdateSettings replaces a settings document and drops the cached public
// config.
func (h *Handler) UpdateSettings(c *gin.Context) {
	var req UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	value, err := h.SettingService.Update(req.Key, req.Value)
	if err != nil {
		respondError(c, response.CodeInternal, "settings save failed", err)
		return
	}

	if req.Key == constants.SettingKeySiteConfig {
		_ = cache.Del(c.Request.Context(), constants.CacheKeyPublicConfig)
	}
	response.Success(c, value)
}
