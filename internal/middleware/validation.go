package middleware

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
)

var errNotPositive = errors.New("value must be a positive integer")

func parsePositiveInt(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, err
	}
	if id <= 0 {
		return 0, errNotPositive
	}
	return id, nil
}

// QueryBool reads a boolean query parameter; anything unparsable counts as false
func QueryBool(c *gin.Context, name string) bool {
	v, err := strconv.ParseBool(c.Query(name))
	return err == nil && v
}
