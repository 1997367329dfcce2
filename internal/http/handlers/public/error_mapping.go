package public

import (
	"errors"

	"github.com/shopizen/internal/catalog"
	handlershared "github.com/shopizen/internal/http/handlers/shared"
	"github.com/shopizen/internal/http/response"
	"github.com/shopizen/internal/service"

	"github.com/gin-gonic/gin"
)

type mappedHandlerError = handlershared.MappedError

func respondWithMappedError(c *gin.Context, err error, rules []mappedHandlerError, fallbackCode int, fallbackKey string) {
	handlershared.RespondMappedError(c, err, rules, fallbackCode, fallbackKey)
}

var storageErrorRules = []mappedHandlerError{
	{Target: service.ErrStorageWrite, Code: response.CodeUnavailable, Key: "error.storage_unavailable"},
}

var sessionErrorRules = []mappedHandlerError{
	{Target: service.ErrNotAuthenticated, Code: response.CodeUnauthorized, Key: "error.unauthorized"},
	{Target: service.ErrInvalidIdentity, Code: response.CodeBadRequest, Key: "error.identity_invalid"},
	{Target: service.ErrInvalidActivity, Code: response.CodeBadRequest, Key: "error.activity_invalid"},
}

var accountErrorRules = []mappedHandlerError{
	{Target: service.ErrInvalidCredentials, Code: response.CodeUnauthorized, Key: "error.login_invalid"},
	{Target: service.ErrInvalidEmail, Code: response.CodeBadRequest, Key: "error.email_invalid"},
	{Target: service.ErrInvalidMobile, Code: response.CodeBadRequest, Key: "error.mobile_invalid"},
	{Target: service.ErrNameRequired, Code: response.CodeBadRequest, Key: "error.name_required"},
	{Target: service.ErrEmailExists, Code: response.CodeConflict, Key: "error.email_exists"},
	{Target: service.ErrCaptchaRequired, Code: response.CodeBadRequest, Key: "error.captcha_required"},
	{Target: service.ErrCaptchaInvalid, Code: response.CodeBadRequest, Key: "error.captcha_invalid"},
}

var cartErrorRules = []mappedHandlerError{
	{Target: catalog.ErrProductNotFound, Code: response.CodeNotFound, Key: "error.product_not_found"},
	{Target: service.ErrSizeRequired, Code: response.CodeBadRequest, Key: "error.size_required"},
	{Target: service.ErrCartLineNotFound, Code: response.CodeNotFound, Key: "error.cart_line_not_found"},
}

var checkoutErrorRules = []mappedHandlerError{
	{Target: service.ErrEmptyCheckout, Code: response.CodeBadRequest, Key: "error.checkout_empty"},
	{Target: service.ErrDetailsNotConfirmed, Code: response.CodeBadRequest, Key: "error.details_not_confirmed"},
	{Target: service.ErrCustomerInfoIncomplete, Code: response.CodeBadRequest, Key: "error.customer_info_incomplete"},
	{Target: service.ErrInvalidEmail, Code: response.CodeBadRequest, Key: "error.email_invalid"},
	{Target: service.ErrPaymentMethodInvalid, Code: response.CodeBadRequest, Key: "error.payment_method_invalid"},
	{Target: service.ErrSizeRequired, Code: response.CodeBadRequest, Key: "error.size_required"},
	{Target: catalog.ErrProductNotFound, Code: response.CodeNotFound, Key: "error.product_not_found"},
}

var orderErrorRules = []mappedHandlerError{
	{Target: service.ErrOrderNotFound, Code: response.CodeNotFound, Key: "error.order_not_found"},
	{Target: service.ErrOrderItemNotFound, Code: response.CodeNotFound, Key: "error.order_item_not_found"},
	{Target: service.ErrOrderItemTerminal, Code: response.CodeBadRequest, Key: "error.order_item_terminal"},
	{Target: service.ErrCancelNotAllowed, Code: response.CodeBadRequest, Key: "error.cancel_not_allowed"},
	{Target: service.ErrReturnNotAllowed, Code: response.CodeBadRequest, Key: "error.return_not_allowed"},
	{Target: service.ErrInvalidOrderAction, Code: response.CodeBadRequest, Key: "error.bad_request"},
	{Target: service.ErrReasonRequired, Code: response.CodeBadRequest, Key: "error.reason_required"},
}

func respondSessionError(c *gin.Context, err error) {
	respondWithMappedError(c, err, handlershared.ConcatMappedErrors(sessionErrorRules, storageErrorRules), response.CodeInternal, "error.internal")
}

func respondAccountError(c *gin.Context, err error) {
	var policyErr interface {
		Key() string
		Args() []interface{}
	}
	if errors.As(err, &policyErr) {
		respondError(c, response.CodeBadRequest, policyErr.Key(), nil, policyErr.Args()...)
		return
	}
	respondWithMappedError(c, err, handlershared.ConcatMappedErrors(accountErrorRules, sessionErrorRules, storageErrorRules), response.CodeInternal, "error.internal")
}

func respondCartError(c *gin.Context, err error) {
	respondWithMappedError(c, err, handlershared.ConcatMappedErrors(cartErrorRules, storageErrorRules), response.CodeInternal, "error.internal")
}

func respondCheckoutError(c *gin.Context, err error) {
	respondWithMappedError(c, err, handlershared.ConcatMappedErrors(checkoutErrorRules, storageErrorRules), response.CodeInternal, "error.internal")
}

func respondOrderError(c *gin.Context, err error) {
	respondWithMappedError(c, err, handlershared.ConcatMappedErrors(orderErrorRules, storageErrorRules), response.CodeInternal, "error.internal")
}
