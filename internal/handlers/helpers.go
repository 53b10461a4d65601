package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// parseIDParam parses the :id path parameter. ok=false means the
// caller already responded.
func parseIDParam(c *gin.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}
