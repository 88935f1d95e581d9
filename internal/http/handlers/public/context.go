package public

import (
	handlershared "github.com/storefront-next/internal/http/handlers/shared"

	"github.com/gin-gonic/gin"
)

func getUserID(c *gin.Context) (uint, bool) {
	return handlershared.UserID(c)
}

func optionalUserID(c *gin.Context) uint {
	return handlershared.OptionalUserID(c)
}
