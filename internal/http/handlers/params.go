package handlers

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/brokerage-backend/internal/platform/apierr"
)

func transactionIDParam(c *gin.Context) (uint, error) {
	raw := strings.TrimSpace(c.Param("id"))
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, apierr.BadRequest("invalid_transaction_id", fmt.Errorf("invalid transaction id %q", raw))
	}
	return uint(id), nil
}
