package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/damoang/angple-cms/internal/common"
	"github.com/damoang/angple-cms/internal/middleware"
	"github.com/damoang/angple-cms/pkg/ginutil"
)

const fieldFilterPrefix = "field."

// bindJSON binds the body and writes a 400 with per-field details on failure
func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			details := make([]gin.H, 0, len(verrs))
			for _, fe := range verrs {
				details = append(details, gin.H{"field": fe.Field(), "rule": fe.Tag()})
			}
			common.ErrorResponse(c, http.StatusBadRequest, "invalid request body", details)
			return false
		}
		common.ErrorResponse(c, http.StatusBadRequest, "invalid request body", nil)
		return false
	}
	return true
}

// pagination reads limit and skip (offset is accepted as an alias)
func pagination(c *gin.Context) (limit, skip int) {
	return ginutil.QueryInt(c, 0, "limit"), ginutil.QueryInt(c, 0, "skip", "offset")
}

// fieldFilters collects field.<fieldId>=value query params.
// true/false become booleans and numeric values become numbers.
func fieldFilters(c *gin.Context) map[string]interface{} {
	var out map[string]interface{}
	for key, values := range c.Request.URL.Query() {
		if !strings.HasPrefix(key, fieldFilterPrefix) || len(values) == 0 {
			continue
		}
		if out == nil {
			out = make(map[string]interface{})
		}
		out[strings.TrimPrefix(key, fieldFilterPrefix)] = coerceQueryValue(values[0])
	}
	return out
}

func coerceQueryValue(v string) interface{} {
	switch v {
	case "true":
		return true
	case "false":
		return false
	}
	if n, err := strconv.ParseFloat(v, 64); err == nil {
		return n
	}
	return v
}

// actor returns the authenticated user id for audit columns
func actor(c *gin.Context) string {
	return middleware.GetUserID(c)
}
