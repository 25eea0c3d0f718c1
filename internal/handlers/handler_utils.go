package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// parseUintParam - вспомогательная функция для чтения числового параметра пути.
func parseUintParam(c *gin.Context, name string) uint {
	v, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		return 0
	}
	return uint(v)
}
