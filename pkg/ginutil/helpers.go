package ginutil

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// QueryInt extracts an integer from query parameters with default value.
// The first non-empty key wins, so aliases like skip/offset can share one call.
func QueryInt(c *gin.Context, defaultValue int, keys ...string) int {
	for _, key := range keys {
		valueStr := c.Query(key)
		if valueStr == "" {
			continue
		}
		value, err := strconv.Atoi(valueStr)
		if err != nil {
			return defaultValue
		}
		return value
	}
	return defaultValue
}

// QueryBool reports whether the query parameter is "true" or "1"
func QueryBool(c *gin.Context, key string) bool {
	v, err := strconv.ParseBool(c.Query(key))
	return err == nil && v
}

// ParamInt extracts an integer from path parameters
// Returns the parsed int and error if parsing fails
func ParamInt(c *gin.Context, key string) (int, error) {
	return strconv.Atoi(c.Param(key))
}
