package elasticsearch

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSearchResponse(t *testing.T) {
	raw := `{
		"hits": {
			"total": {"value": 2},
			"hits": [
				{"_id": "c1", "_score": 1.5, "_source": {"title": "Hello", "site_id": "acme"}},
				{"_id": "c2", "_score": 0.7, "_source": {"title": "World", "site_id": "acme"}},
				"garbage"
			]
		}
	}`
	var m map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(raw), &m))

	resp := parseSearchResponse(m)
	assert.Equal(t, int64(2), resp.Total)
	require.Len(t, resp.Results, 2)
	assert.Equal(t, "c1", resp.Results[0].ID)
	assert.Equal(t, 1.5, resp.Results[0].Score)
	assert.Equal(t, "Hello", resp.Results[0].Source["title"])
}

func TestParseSearchResponse_Empty(t *testing.T) {
	resp := parseSearchResponse(map[string]interface{}{})
	assert.Equal(t, int64(0), resp.Total)
	assert.Empty(t, resp.Results)
}

func TestContentQuery_FiltersTenantAndStatus(t *testing.T) {
	q := ContentQuery("acme", "pricing")

	data, err := json.Marshal(q)
	require.NoError(t, err)
	s := string(data)

	assert.Contains(t, s, `{"term":{"site_id":"acme"}}`)
	assert.Contains(t, s, `{"term":{"status":"published"}}`)
	assert.Contains(t, s, `"query":"pricing"`)
}
