// internal/handlers/pagination.go
package handlers

import (
	"math"
	"strconv"

	"github.com/gin-gonic/gin"
)

// PaginatedResponse defines the structure for any paginated API response.
type PaginatedResponse struct {
	Data        interface{} `json:"data"`
	TotalRows   int64       `json:"totalRows"`
	TotalPages  int         `json:"totalPages"`
	CurrentPage int         `json:"currentPage"`
	PageSize    int         `json:"pageSize"`
}

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// pageParams extracts and clamps "page" and "pageSize" query parameters.
func pageParams(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.Query("page"))
	if page <= 0 {
		page = 1
	}

	pageSize, _ := strconv.Atoi(c.Query("pageSize"))
	switch {
	case pageSize > MaxPageSize:
		pageSize = MaxPageSize
	case pageSize <= 0:
		pageSize = DefaultPageSize
	}
	return page, pageSize
}

// CreatePaginatedResponse constructs the standard paginated response object.
func CreatePaginatedResponse(c *gin.Context, data interface{}, totalRows int64) PaginatedResponse {
	page, pageSize := pageParams(c)

	totalPages := 0
	if totalRows > 0 {
		totalPages = int(math.Ceil(float64(totalRows) / float64(pageSize)))
	}

	return PaginatedResponse{
		Data:        data,
		TotalRows:   totalRows,
		TotalPages:  totalPages,
		CurrentPage: page,
		PageSize:    pageSize,
	}
}
