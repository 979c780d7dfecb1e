package public

import (
	"errors"

	"github.com/hornada/hornada/internal/http/response"
	"github.com/hornada/hornada/internal/service"

	"github.com/gin-gonic/gin"
)

// mappedHandlerError binds a service error to a response code and message.
type mappedHandlerError struct {
	target error
	code   int
	msg    string
}

func respondWithMappedError(c *gin.Context, err error, rules []mappedHandlerError, fallbackCode int, fallbackMsg string) {
	for _, rule := range rules {
		if errors.Is(err, rule.target) {
			respondError(c, rule.code, rule.msg, nil)
			return
		}
	}
	respondError(c, fallbackCode, fallbackMsg, err)
}

var cartMutationErrorRules = []mappedHandlerError{
	{target: service.ErrInvalidInput, code: response.CodeBadRequest, msg: "invalid request"},
	{target: service.ErrProductNotAvailable, code: response.CodeBadRequest, msg: "product not available"},
	{target: service.ErrOfferNotAvailable, code: response.CodeBadRequest, msg: "offer not available"},
	{target: service.ErrOfferEmpty, code: response.CodeBadRequest, msg: "offer has no items"},
	{target: service.ErrCartItemNotFound, code: response.CodeNotFound, msg: "cart item not found"},
	{target: service.ErrBranchNotAvailable, code: response.CodeBadRequest, msg: "branch not available"},
}

var orderSubmitErrorRules = []mappedHandlerError{
	{target: service.ErrCartEmpty, code: response.CodeBadRequest, msg: "cart is empty"},
	{target: service.ErrCartHasStockIssues, code: response.CodeConflict, msg: "cart has stock issues"},
	{target: service.ErrBranchNotSelected, code: response.CodeBadRequest, msg: "no branch selected"},
	{target: service.ErrStockDepleted, code: response.CodeConflict, msg: "stock changed during submission"},
	{target: service.ErrSubmissionInFlight, code: response.CodeTooManyRequests, msg: "order submission already in progress"},
	{target: service.ErrInvalidInput, code: response.CodeBadRequest, msg: "invalid request"},
}

// respondCartMutationError handles cart mutation failures, reporting stock
// violations with their full shortage detail.
func respondCartMutationError(c *gin.Context, err error) {
	if stockErr, ok := service.AsStockExceeded(err); ok {
		response.ErrorWithData(c, response.CodeConflict, stockErr.Error(), gin.H{
			"item_key":    stockErr.ItemKey,
			"item_name":   stockErr.ItemName,
			"requested":   stockErr.Requested,
			"max_allowed": stockErr.MaxAllowed,
			"shortages":   stockErr.Shortages,
		})
		return
	}
	respondWithMappedError(c, err, cartMutationErrorRules, response.CodeInternal, "cart update failed")
}

func respondOrderSubmitError(c *gin.Context, err error) {
	respondWithMappedError(c, err, orderSubmitErrorRules, response.CodeInternal, "order submission failed")
}

// respondCatalogFetchError maps catalog lookups onto not-found vs internal.
func respondCatalogFetchError(c *gin.Context, err error, kind string) {
	switch {
	case errors.Is(err, service.ErrBranchNotFound),
		errors.Is(err, service.ErrProductNotFound),
		errors.Is(err, service.ErrOfferNotFound):
		respondError(c, response.CodeNotFound, kind+" not found", nil)
	default:
		respondError(c, response.CodeInternal, kind+" fetch failed", err)
	}
}
