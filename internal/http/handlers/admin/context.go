package admin

import (
	"strconv"

	handlershared "github.com/hornada/hornada/internal/http/handlers/shared"
	"github.com/hornada/hornada/internal/http/response"

	"github.com/gin-gonic/gin"
)

func respondError(c *gin.Context, code int, msg string, err error) {
	handlershared.RespondError(c, code, msg, err)
}

func normalizePagination(page, pageSize int) (int, int) {
	return handlershared.NormalizePagination(page, pageSize)
}

func getAdminID(c *gin.Context) (uint, bool) {
	return handlershared.GetContextUint(c, "admin_id")
}

// adminBranchScope reads the branch restriction set by the auth middleware.
// Zero means unrestricted.
func adminBranchScope(c *gin.Context) uint {
	value, exists := c.Get("admin_branch_id")
	if !exists {
		return 0
	}
	if id, ok := value.(uint); ok {
		return id
	}
	return 0
}

func isSuperAdmin(c *gin.Context) bool {
	value, exists := c.Get("admin_is_super")
	if !exists {
		return false
	}
	flag, ok := value.(bool)
	return ok && flag
}

func currentUsername(c *gin.Context) string {
	value, exists := c.Get("admin_username")
	if !exists {
		return ""
	}
	if username, ok := value.(string); ok {
		return username
	}
	return ""
}

func parseIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "invalid id", err)
		return 0, false
	}
	return uint(id), true
}

func parseUintQuery(c *gin.Context, name string) uint {
	raw := c.Query(name)
	if raw == "" {
		return 0
	}
	value, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0
	}
	return uint(value)
}

func buildPagination(page, pageSize int, total int64) response.Pagination {
	return response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: (total + int64(pageSize) - 1) / int64(pageSize),
	}
}
