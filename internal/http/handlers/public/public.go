package public

import (
	"strconv"
	"strings"
	"time"

	"github.com/hornada/hornada/internal/cache"
	"github.com/hornada/hornada/internal/constants"
	"github.com/hornada/hornada/internal/http/response"
	"github.com/hornada/hornada/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	publicConfigCacheKey = constants.CacheKeyPublicConfig
	publicConfigCacheTTL = 60 * time.Second
)

// GetConfig returns the public site configuration.
func (h *Handler) GetConfig(c *gin.Context) {
	defaults := map[string]interface{}{
		constants.SettingFieldSiteCurrency: constants.SiteCurrencyDefault,
		"site_name":                        "Hornada",
		"contact": map[string]interface{}{
			"phone":    "",
			"whatsapp": "",
		},
	}

	var cached map[string]interface{}
	if hit, err := cache.GetJSON(c.Request.Context(), publicConfigCacheKey, &cached); err == nil && hit {
		response.Success(c, cached)
		return
	}

	data, err := h.SettingService.GetConfig(defaults)
	if err != nil {
		respondError(c, response.CodeInternal, "config fetch failed", err)
		return
	}
	data["captcha_enabled"] = h.CaptchaService.Enabled()

	_ = cache.SetJSON(c.Request.Context(), publicConfigCacheKey, data, publicConfigCacheTTL)
	response.Success(c, data)
}

// GetBranches returns active branches.
func (h *Handler) GetBranches(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "50"))
	page, pageSize = normalizePagination(page, pageSize)

	branches, total, err := h.BranchService.ListPublic(page, pageSize)
	if err != nil {
		respondError(c, response.CodeInternal, "branch fetch failed", err)
		return
	}

	pagination := response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: (total + int64(pageSize) - 1) / int64(pageSize),
	}
	response.SuccessWithPage(c, branches, pagination)
}

// GetBranchBySlug returns one active branch.
func (h *Handler) GetBranchBySlug(c *gin.Context) {
	branch, err := h.BranchService.GetPublicBySlug(c.Param("slug"))
	if err != nil {
		respondCatalogFetchError(c, err, "branch")
		return
	}
	response.Success(c, branch)
}

// GetProducts returns active products, optionally scoped to a branch.
func (h *Handler) GetProducts(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	branchID := parseUintQuery(c, "branch_id")
	search := strings.TrimSpace(c.Query("search"))
	inStock := c.Query("in_stock") == "1" || strings.EqualFold(c.Query("in_stock"), "true")

	products, total, err := h.ProductService.ListPublic(branchID, search, inStock, page, pageSize)
	if err != nil {
		respondError(c, response.CodeInternal, "product fetch failed", err)
		return
	}

	pagination := response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: (total + int64(pageSize) - 1) / int64(pageSize),
	}
	response.SuccessWithPage(c, products, pagination)
}

// GetProductBySlug returns one active product.
func (h *Handler) GetProductBySlug(c *gin.Context) {
	product, err := h.ProductService.GetPublicBySlug(c.Param("slug"))
	if err != nil {
		respondCatalogFetchError(c, err, "product")
		return
	}
	response.Success(c, product)
}

// GetOffers returns active offers with availability, optionally scoped to
// a branch.
func (h *Handler) GetOffers(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	branchID := parseUintQuery(c, "branch_id")

	offers, total, err := h.OfferService.ListPublic(branchID, page, pageSize)
	if err != nil {
		respondError(c, response.CodeInternal, "offer fetch failed", err)
		return
	}

	decorated := make([]gin.H, 0, len(offers))
	for i := range offers {
		decorated = append(decorated, gin.H{
			"offer":             offers[i],
			"available_bundles": service.AvailableBundles(&offers[i]),
		})
	}

	pagination := response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: (total + int64(pageSize) - 1) / int64(pageSize),
	}
	response.SuccessWithPage(c, decorated, pagination)
}

// GetOfferBySlug returns one active offer with availability.
func (h *Handler) GetOfferBySlug(c *gin.Context) {
	offer, err := h.OfferService.GetPublicBySlug(c.Param("slug"))
	if err != nil {
		respondCatalogFetchError(c, err, "offer")
		return
	}
	response.Success(c, gin.H{
		"offer":             offer,
		"available_bundles": service.AvailableBundles(offer),
	})
}

func parseUintQuery(c *gin.Context, name string) uint {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return 0
	}
	value, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0
	}
	return uint(value)
}
