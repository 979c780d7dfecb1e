package public

import (
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

func getUserID(c *gin.Context) (uint, bool) {
	return handlershared.GetContextUint(c, "user_id")
}

// optionalUserID reads the user id without failing the request; guests
// resolve to zero.
func optionalUserID(c *gin.Context) uint {
	value, exists := c.Get("user_id")
	if !exists {
		return 0
	}
	if id, ok := value.(uint); ok {
		return id
	}
	return 0
}

// getOwnerKey reads the cart owner key resolved by the middleware.
func getOwnerKey(c *gin.Context) (string, bool) {
	value, exists := c.Get("cart_owner")
	if !exists {
		respondError(c, response.CodeInternal, "cart owner not resolved", nil)
		return "", false
	}
	owner, ok := value.(string)
	if !ok || owner == "" {
		respondError(c, response.CodeInternal, "cart owner not resolved", nil)
		return "", false
	}
	return owner, true
}

func getGuestToken(c *gin.Context) string {
	value, exists := c.Get("guest_token")
	if !exists {
		return ""
	}
	if token, ok := value.(string); ok {
		return token
	}
	return ""
}
