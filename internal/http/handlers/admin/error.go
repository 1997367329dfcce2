package admin

import (
	handlershared "github.com/shopizen/internal/http/handlers/shared"
	"github.com/shopizen/internal/http/response"
	"github.com/shopizen/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func requestLog(c *gin.Context) *zap.SugaredLogger {
	return handlershared.RequestLog(c)
}

func respondError(c *gin.Context, code int, key string, err error) {
	handlershared.RespondError(c, code, key, err)
}

var adminOrderErrorRules = []handlershared.MappedError{
	{Target: service.ErrOrderNotFound, Code: response.CodeNotFound, Key: "error.order_not_found"},
	{Target: service.ErrOrderItemNotFound, Code: response.CodeNotFound, Key: "error.order_item_not_found"},
	{Target: service.ErrOrderItemTerminal, Code: response.CodeBadRequest, Key: "error.order_item_terminal"},
	{Target: service.ErrCancelNotAllowed, Code: response.CodeBadRequest, Key: "error.cancel_not_allowed"},
	{Target: service.ErrReturnNotAllowed, Code: response.CodeBadRequest, Key: "error.return_not_allowed"},
	{Target: service.ErrInvalidOrderAction, Code: response.CodeBadRequest, Key: "error.bad_request"},
	{Target: service.ErrReasonRequired, Code: response.CodeBadRequest, Key: "error.reason_required"},
	{Target: service.ErrStorageWrite, Code: response.CodeUnavailable, Key: "error.storage_unavailable"},
}

func respondOrderError(c *gin.Context, err error) {
	handlershared.RespondMappedError(c, err, adminOrderErrorRules, response.CodeInternal, "error.internal")
}
