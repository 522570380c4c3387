package ginutil

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newContext(target string) *gin.Context {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, target, nil)
	return c
}

func TestQueryInt(t *testing.T) {
	assert.Equal(t, 20, QueryInt(newContext("/x"), 20, "limit"))
	assert.Equal(t, 5, QueryInt(newContext("/x?limit=5"), 20, "limit"))
	assert.Equal(t, 20, QueryInt(newContext("/x?limit=abc"), 20, "limit"))
	assert.Equal(t, 7, QueryInt(newContext("/x?offset=7"), 0, "skip", "offset"))
	assert.Equal(t, 2, QueryInt(newContext("/x?skip=2&offset=7"), 0, "skip", "offset"))
}

func TestQueryBool(t *testing.T) {
	assert.True(t, QueryBool(newContext("/x?hard=true"), "hard"))
	assert.True(t, QueryBool(newContext("/x?hard=1"), "hard"))
	assert.False(t, QueryBool(newContext("/x?hard=yes"), "hard"))
	assert.False(t, QueryBool(newContext("/x"), "hard"))
}

func TestParamInt(t *testing.T) {
	c := newContext("/x")
	c.Params = gin.Params{{Key: "version", Value: "3"}}
	v, err := ParamInt(c, "version")
	require.NoError(t, err)
	assert.Equal(t, 3, v)

	c.Params = gin.Params{{Key: "version", Value: "v3"}}
	_, err = ParamInt(c, "version")
	assert.Error(t, err)
}
