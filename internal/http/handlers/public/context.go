package public

import (
	handlershared "github.com/shopizen/internal/http/handlers/shared"
	"github.com/shopizen/internal/models"
	"github.com/shopizen/internal/workspace"

	"github.com/gin-gonic/gin"
)

func getWorkspace(c *gin.Context) (*workspace.Workspace, bool) {
	return handlershared.GetWorkspace(c)
}

func getIdentity(c *gin.Context) (*models.Identity, bool) {
	return handlershared.GetIdentity(c)
}

func respondError(c *gin.Context, code int, key string, err error, args ...interface{}) {
	handlershared.RespondError(c, code, key, err, args...)
}
