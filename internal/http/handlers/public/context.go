package public

import (
	"strings"

	"github.com/compoundrx/storefront/internal/constants"
	handlershared "github.com/compoundrx/storefront/internal/http/handlers/shared"

	"github.com/gin-gonic/gin"
)

func getUserID(c *gin.Context) (uint, bool) {
	return handlershared.GetContextUint(c, "user_id")
}

func normalizePagination(page, pageSize int) (int, int) {
	return handlershared.NormalizePagination(page, pageSize)
}

// guestToken reads the caller's guest token from the request header.
func guestToken(c *gin.Context) string {
	return strings.TrimSpace(c.GetHeader(constants.GuestTokenHeader))
}
