package public

import (
	"errors"

	"github.com/compoundrx/storefront/internal/http/response"
	"github.com/compoundrx/storefront/internal/service"

	"github.com/gin-gonic/gin"
)

// mappedHandlerError maps one service error onto its API response.
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

func concatMappedHandlerErrors(groups ...[]mappedHandlerError) []mappedHandlerError {
	total := 0
	for _, group := range groups {
		total += len(group)
	}
	result := make([]mappedHandlerError, 0, total)
	for _, group := range groups {
		result = append(result, group...)
	}
	return result
}

var cartErrorRules = []mappedHandlerError{
	{target: service.ErrInvalidCartItem, code: response.CodeBadRequest, msg: "invalid cart item"},
	{target: service.ErrProductNotFound, code: response.CodeNotFound, msg: "product not found"},
	{target: service.ErrProductNotAvailable, code: response.CodeBadRequest, msg: "product not available"},
}

var guestErrorRules = []mappedHandlerError{
	{target: service.ErrGuestTokenInvalid, code: response.CodeBadRequest, msg: "guest token missing or invalid"},
	{target: service.ErrGuestStateUnavailable, code: response.CodeInternal, msg: "guest state unavailable"},
}

var orderCreateErrorRules = []mappedHandlerError{
	{target: service.ErrShippingAddressInvalid, code: response.CodeBadRequest, msg: "shipping address incomplete"},
	{target: service.ErrCartEmpty, code: response.CodeBadRequest, msg: "cart is empty"},
	{target: service.ErrStockInsufficient, code: response.CodeBadRequest, msg: "insufficient stock"},
	{target: service.ErrProductNotAvailable, code: response.CodeBadRequest, msg: "product not available"},
	{target: service.ErrOrderCreateInFlight, code: response.CodeTooManyRequests, msg: "another checkout is in progress"},
}

var orderReadErrorRules = []mappedHandlerError{
	{target: service.ErrOrderNotFound, code: response.CodeNotFound, msg: "order not found"},
}

var orderCancelErrorRules = []mappedHandlerError{
	{target: service.ErrOrderNotFound, code: response.CodeNotFound, msg: "order not found"},
	{target: service.ErrOrderCancelNotAllowed, code: response.CodeBadRequest, msg: "order can no longer be cancelled"},
}

var paymentErrorRules = []mappedHandlerError{
	{target: service.ErrOrderNotFound, code: response.CodeNotFound, msg: "order not found"},
	{target: service.ErrOrderNotPayable, code: response.CodeBadRequest, msg: "order is not payable"},
	{target: service.ErrPaymentAmountInvalid, code: response.CodeBadRequest, msg: "payment amount invalid"},
	{target: service.ErrPaymentConfigInvalid, code: response.CodeInternal, msg: "payment platform not configured"},
	{target: service.ErrPaymentGatewayRequestFailed, code: response.CodeBadRequest, msg: "payment gateway request failed"},
	{target: service.ErrPaymentGatewayResponseInvalid, code: response.CodeBadRequest, msg: "payment gateway response invalid"},
}

func respondCartError(c *gin.Context, err error) {
	respondWithMappedError(c, err, cartErrorRules, response.CodeInternal, "cart update failed")
}

func respondGuestError(c *gin.Context, err error) {
	respondWithMappedError(c, err, concatMappedHandlerErrors(guestErrorRules, cartErrorRules), response.CodeInternal, "guest state update failed")
}

func respondOrderCreateError(c *gin.Context, err error) {
	respondWithMappedError(c, err, orderCreateErrorRules, response.CodeInternal, "order creation failed")
}

func respondPaymentError(c *gin.Context, err error) {
	respondWithMappedError(c, err, paymentErrorRules, response.CodeInternal, "payment operation failed")
}
