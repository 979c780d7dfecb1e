package admin

import (
	"errors"
	"strings"

	"github.com/hornada/hornada/internal/cache"
	"github.com/hornada/hornada/internal/http/response"
	"github.com/hornada/hornada/internal/logger"
	"github.com/hornada/hornada/internal/models"
	"github.com/hornada/hornada/internal/service"

	"github.com/gin-gonic/gin"
)

// protectedSuperAdminUsername is the bootstrap account; it cannot be
// demoted or deleted.
const protectedSuperAdminUsername = "admin"

// CreateAdminRequest creates a back-office account.
type CreateAdminRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
	BranchID uint   `json:"branch_id"`
	IsSuper  *bool  `json:"is_super"`
}

// UpdateAdminRequest patches a back-office account; nil fields stay
// unchanged.
type UpdateAdminRequest struct {
	Password *string `json:"password"`
	BranchID *uint   `json:"branch_id"`
	IsSuper  *bool   `json:"is_super"`
}

// SetAdminRolesRequest replaces an account's role set.
type SetAdminRolesRequest struct {
	Roles []string `json:"roles"`
}

// ListAdmins returns all back-office accounts with their roles.
func (h *Handler) ListAdmins(c *gin.Context) {
	admins, err := h.AdminRepo.List()
	if err != nil {
		respondError(c, response.CodeInternal, "admin fetch failed", err)
		return
	}

	list := make([]gin.H, 0, len(admins))
	for i := range admins {
		roles, rolesErr := h.AuthzService.GetAdminRoles(admins[i].ID)
		if rolesErr != nil {
			roles = []string{}
		}
		list = append(list, gin.H{
			"admin": admins[i],
			"roles": roles,
		})
	}
	response.Success(c, list)
}

// CreateAdmin creates a back-office account.
func (h *Handler) CreateAdmin(c *gin.Context) {
	var req CreateAdminRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	username := strings.ToLower(strings.TrimSpace(req.Username))
	if username == "" {
		respondError(c, response.CodeBadRequest, "username required", nil)
		return
	}

	existing, err := h.AdminRepo.GetByUsername(username)
	if err != nil {
		respondError(c, response.CodeInternal, "admin create failed", err)
		return
	}
	if existing != nil {
		respondError(c, response.CodeConflict, "username already taken", nil)
		return
	}

	if err := h.AuthService.ValidatePassword(req.Password); err != nil {
		if errors.Is(err, service.ErrPasswordPolicy) {
			respondError(c, response.CodeBadRequest, err.Error(), nil)
			return
		}
		respondError(c, response.CodeBadRequest, "password does not meet requirements", err)
		return
	}

	hash, err := h.AuthService.HashPassword(req.Password)
	if err != nil {
		respondError(c, response.CodeInternal, "admin create failed", err)
		return
	}

	if req.BranchID != 0 {
		branch, branchErr := h.BranchRepo.GetByID(req.BranchID)
		if branchErr != nil {
			respondError(c, response.CodeInternal, "admin create failed", branchErr)
			return
		}
		if branch == nil {
			respondError(c, response.CodeBadRequest, "branch not found", nil)
			return
		}
	}

	admin := &models.Admin{
		Username:     username,
		PasswordHash: hash,
		BranchID:     req.BranchID,
		IsSuper:      req.IsSuper != nil && *req.IsSuper,
	}
	if strings.EqualFold(username, protectedSuperAdminUsername) {
		admin.IsSuper = true
	}
	if err := h.AdminRepo.Create(admin); err != nil {
		respondError(c, response.CodeInternal, "admin create failed", err)
		return
	}

	_ = cache.SetAdminAuthState(c.Request.Context(), cache.BuildAdminAuthState(admin))

	logger.Infow("admin_account_created",
		"operator_username", currentUsername(c),
		"target_admin_id", admin.ID,
		"target_username", admin.Username,
		"branch_id", admin.BranchID,
		"is_super", admin.IsSuper,
	)
	response.Success(c, admin)
}

// UpdateAdmin patches a back-office account. Password changes invalidate
// the target's tokens.
func (h *Handler) UpdateAdmin(c *gin.Context) {
	adminID, ok := parseIDParam(c)
	if !ok {
		return
	}

	admin, err := h.AdminRepo.GetByID(adminID)
	if err != nil {
		respondError(c, response.CodeInternal, "admin update failed", err)
		return
	}
	if admin == nil {
		respondError(c, response.CodeNotFound, "admin not found", nil)
		return
	}

	var req UpdateAdminRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	if req.Password != nil {
		if err := h.AuthService.ValidatePassword(*req.Password); err != nil {
			if errors.Is(err, service.ErrPasswordPolicy) {
				respondError(c, response.CodeBadRequest, err.Error(), nil)
				return
			}
			respondError(c, response.CodeBadRequest, "password does not meet requirements", err)
			return
		}
		hash, hashErr := h.AuthService.HashPassword(*req.Password)
		if hashErr != nil {
			respondError(c, response.CodeInternal, "admin update failed", hashErr)
			return
		}
		admin.PasswordHash = hash
		admin.TokenVersion++
	}
	if req.BranchID != nil {
		if *req.BranchID != 0 {
			branch, branchErr := h.BranchRepo.GetByID(*req.BranchID)
			if branchErr != nil {
				respondError(c, response.CodeInternal, "admin update failed", branchErr)
				return
			}
			if branch == nil {
				respondError(c, response.CodeBadRequest, "branch not found", nil)
				return
			}
		}
		admin.BranchID = *req.BranchID
	}
	if req.IsSuper != nil {
		if strings.EqualFold(admin.Username, protectedSuperAdminUsername) && !*req.IsSuper {
			respondError(c, response.CodeBadRequest, "bootstrap admin cannot be demoted", nil)
			return
		}
		admin.IsSuper = *req.IsSuper
	}

	if err := h.AdminRepo.Update(admin); err != nil {
		respondError(c, response.CodeInternal, "admin update failed", err)
		return
	}

	_ = cache.SetAdminAuthState(c.Request.Context(), cache.BuildAdminAuthState(admin))

	logger.Infow("admin_account_updated",
		"operator_username", currentUsername(c),
		"target_admin_id", admin.ID,
	)
	response.Success(c, admin)
}

// DeleteAdmin removes a back-office account and its role bindings.
func (h *Handler) DeleteAdmin(c *gin.Context) {
	adminID, ok := parseIDParam(c)
	if !ok {
		return
	}
	if callerID, callerOK := getAdminID(c); callerOK && callerID == adminID {
		respondError(c, response.CodeBadRequest, "cannot delete your own account", nil)
		return
	}

	admin, err := h.AdminRepo.GetByID(adminID)
	if err != nil {
		respondError(c, response.CodeInternal, "admin delete failed", err)
		return
	}
	if admin == nil {
		respondError(c, response.CodeNotFound, "admin not found", nil)
		return
	}
	if strings.EqualFold(admin.Username, protectedSuperAdminUsername) {
		respondError(c, response.CodeBadRequest, "bootstrap admin cannot be deleted", nil)
		return
	}

	if err := h.AuthzService.SetAdminRoles(adminID, nil); err != nil {
		respondError(c, response.CodeInternal, "admin delete failed", err)
		return
	}
	if err := h.AdminRepo.Delete(adminID); err != nil {
		respondError(c, response.CodeInternal, "admin delete failed", err)
		return
	}

	_ = cache.DelAdminAuthState(c.Request.Context(), adminID)

	logger.Infow("admin_account_deleted",
		"operator_username", currentUsername(c),
		"target_admin_id", adminID,
		"target_username", admin.Username,
	)
	response.Success(c, nil)
}

// GetAdminRoles returns an account's role set.
func (h *Handler) GetAdminRoles(c *gin.Context) {
	adminID, ok := parseIDParam(c)
	if !ok {
		return
	}
	roles, err := h.AuthzService.GetAdminRoles(adminID)
	if err != nil {
		respondError(c, response.CodeInternal, "role fetch failed", err)
		return
	}
	response.Success(c, gin.H{"roles": roles})
}

// SetAdminRoles replaces an account's role set.
func (h *Handler) SetAdminRoles(c *gin.Context) {
	adminID, ok := parseIDParam(c)
	if !ok {
		return
	}

	admin, err := h.AdminRepo.GetByID(adminID)
	if err != nil {
		respondError(c, response.CodeInternal, "role update failed", err)
		return
	}
	if admin == nil {
		respondError(c, response.CodeNotFound, "admin not found", nil)
		return
	}

	var req SetAdminRolesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	if err := h.AuthzService.SetAdminRoles(adminID, req.Roles); err != nil {
		respondError(c, response.CodeBadRequest, "role update failed", err)
		return
	}

	logger.Infow("admin_roles_updated",
		"operator_username", currentUsername(c),
		"target_admin_id", adminID,
		"roles", req.Roles,
	)
	response.Success(c, gin.H{"roles": req.Roles})
}

// ListRoles returns every known role with its policies.
func (h *Handler) ListRoles(c *gin.Context) {
	roles, err := h.AuthzService.ListRoles()
	if err != nil {
		respondError(c, response.CodeInternal, "role fetch failed", err)
		return
	}

	list := make([]gin.H, 0, len(roles))
	for _, role := range roles {
		policies, policyErr := h.AuthzService.GetRolePolicies(role)
		if policyErr != nil {
			policies = nil
		}
		list = append(list, gin.H{
			"role":     role,
			"policies": policies,
		})
	}
	response.Success(c, list)
}
