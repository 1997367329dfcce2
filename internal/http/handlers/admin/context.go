package admin

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

func currentIdentityKey(c *gin.Context) string {
	value, ok := c.Get(handlershared.IdentityContextKey)
	if !ok {
		return ""
	}
	identity, _ := value.(*models.Identity)
	if identity == nil {
		return ""
	}
	return models.IdentityKey(identity)
}
