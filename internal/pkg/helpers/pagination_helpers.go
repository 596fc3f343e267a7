package helpers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/fahad-nakib/CareerCompass-sub000/internal/app/models/dto"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
	DefaultPage     = 1
)

// CalculateOffsetLimit converts a 1-based page and a size into SQL offset and limit.
func CalculateOffsetLimit(page, size int) (offset uint64, limit int) {
	limit = size
	if limit <= 0 || limit > MaxPageSize {
		limit = DefaultPageSize
	}
	if page < 1 {
		page = DefaultPage
	}
	return uint64((page - 1) * limit), limit
}

// NewPaginationInfo creates a standard PaginationInfo DTO for a 1-based page.
func NewPaginationInfo(totalItems int64, page, size int) dto.PaginationInfo {
	if size <= 0 {
		size = DefaultPageSize
	}
	if page < 1 {
		page = DefaultPage
	}

	totalPages := int((totalItems + int64(size) - 1) / int64(size))
	if totalPages == 0 {
		totalPages = 1
	}
	if page > totalPages {
		page = totalPages
	}

	return dto.PaginationInfo{
		CurrentPage: page,
		TotalPages:  totalPages,
		PageSize:    size,
		TotalItems:  totalItems,
	}
}

// ParsePaginationParams reads page and size query parameters, falling back to defaults
func ParsePaginationParams(c *gin.Context) (page, size int) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = DefaultPage
	}

	size, err = strconv.Atoi(c.DefaultQuery("size", strconv.Itoa(DefaultPageSize)))
	if err != nil || size <= 0 || size > MaxPageSize {
		size = DefaultPageSize
	}

	return page, size
}

// HasPaginationParams reports whether the request asked for a page explicitly
func HasPaginationParams(c *gin.Context) bool {
	_, hasPage := c.GetQuery("page")
	_, hasSize := c.GetQuery("size")
	return hasPage || hasSize
}

// ParseOptionalInt64Query returns nil when the query parameter is absent and an
// error when it is present but not a positive integer.
func ParseOptionalInt64Query(c *gin.Context, name string) (*int64, error) {
	raw, ok := c.GetQuery(name)
	if !ok || raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v <= 0 {
		return nil, strconv.ErrSyntax
	}
	return &v, nil
}
