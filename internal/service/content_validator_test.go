package service

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/damoang/angple-cms/internal/domain"
)

func intPtr(v int) *int { return &v }

func typeWith(fields ...domain.ContentTypeField) *domain.ContentType {
	return &domain.ContentType{SiteID: "acme", ContentTypeID: "test", Name: "Test", Fields: fields}
}

func fieldIDs(errs []FieldError) []string {
	ids := make([]string, 0, len(errs))
	for _, e := range errs {
		ids = append(ids, e.FieldID)
	}
	return ids
}

func TestValidateContent_TeamMissingRole(t *testing.T) {
	team := &domain.ContentType{
		SiteID:        "acme",
		ContentTypeID: "team",
		Name:          "team",
		Fields: []domain.ContentTypeField{
			{FieldID: "name", Name: "Name", Type: domain.FieldText, Required: true},
			{FieldID: "role", Name: "Role", Type: domain.FieldText, Required: true},
		},
	}

	res := ValidateContent(team, map[string]interface{}{"name": "Sam"})

	assert.False(t, res.Valid)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, "role", res.Errors[0].FieldID)
	assert.Equal(t, "required", res.Errors[0].Rule)
}

func TestValidateContent_Required(t *testing.T) {
	ct := typeWith(domain.ContentTypeField{FieldID: "title", Type: domain.FieldText, Required: true})

	for name, v := range map[string]interface{}{
		"nil":          nil,
		"empty string": "",
		"whitespace":   "   \t",
		"empty array":  []interface{}{},
		"empty object": map[string]interface{}{},
	} {
		res := ValidateContent(ct, map[string]interface{}{"title": v})
		assert.False(t, res.Valid, name)
		assert.Equal(t, []string{"title"}, fieldIDs(res.Errors), name)
	}

	res := ValidateContent(ct, map[string]interface{}{})
	assert.False(t, res.Valid)

	res = ValidateContent(ct, map[string]interface{}{"title": "ok"})
	assert.True(t, res.Valid)
	assert.Empty(t, res.Errors)
}

func TestValidateContent_OptionalEmptySkipsTypeCheck(t *testing.T) {
	ct := typeWith(
		domain.ContentTypeField{FieldID: "age", Type: domain.FieldNumber},
		domain.ContentTypeField{FieldID: "site", Type: domain.FieldURL},
	)
	res := ValidateContent(ct, map[string]interface{}{"age": "", "site": nil})
	assert.True(t, res.Valid)
}

func TestValidateContent_Rules(t *testing.T) {
	tests := []struct {
		name  string
		field domain.ContentTypeField
		value interface{}
		rule  string // empty means valid
	}{
		{"text ok", domain.ContentTypeField{Type: domain.FieldText}, "hello", ""},
		{"text coerces number", domain.ContentTypeField{Type: domain.FieldText, MaxLength: intPtr(3)}, float64(123), ""},
		{"text rejects object", domain.ContentTypeField{Type: domain.FieldText}, map[string]interface{}{"a": 1}, "type"},
		{"minLength", domain.ContentTypeField{Type: domain.FieldTextarea, MinLength: intPtr(5)}, "abc", "minLength"},
		{"maxLength", domain.ContentTypeField{Type: domain.FieldRichText, MaxLength: intPtr(3)}, "abcd", "maxLength"},
		{"maxLength counts runes", domain.ContentTypeField{Type: domain.FieldText, MaxLength: intPtr(2)}, "한글", ""},
		{"pattern full match", domain.ContentTypeField{Type: domain.FieldText, Pattern: `[a-z]+`}, "abc", ""},
		{"pattern anchored", domain.ContentTypeField{Type: domain.FieldText, Pattern: `[a-z]+`}, "abc1", "pattern"},
		{"pattern alternation anchored", domain.ContentTypeField{Type: domain.FieldText, Pattern: `a|b`}, "ab", "pattern"},
		{"email ok", domain.ContentTypeField{Type: domain.FieldEmail}, "sam@example.com", ""},
		{"email bad", domain.ContentTypeField{Type: domain.FieldEmail}, "sam@", "email"},
		{"url ok", domain.ContentTypeField{Type: domain.FieldURL}, "https://example.com/a", ""},
		{"url bad", domain.ContentTypeField{Type: domain.FieldURL}, "not a url", "url"},
		{"number float", domain.ContentTypeField{Type: domain.FieldNumber}, 3.5, ""},
		{"number string", domain.ContentTypeField{Type: domain.FieldNumber}, " 42 ", ""},
		{"number garbage", domain.ContentTypeField{Type: domain.FieldNumber}, "4x", "number"},
		{"number NaN string", domain.ContentTypeField{Type: domain.FieldNumber}, "NaN", "number"},
		{"number inf", domain.ContentTypeField{Type: domain.FieldNumber}, math.Inf(1), "number"},
		{"number bool", domain.ContentTypeField{Type: domain.FieldNumber}, true, "number"},
		{"boolean ok", domain.ContentTypeField{Type: domain.FieldBoolean}, false, ""},
		{"boolean string", domain.ContentTypeField{Type: domain.FieldBoolean}, "true", "boolean"},
		{"boolean number", domain.ContentTypeField{Type: domain.FieldBoolean}, float64(1), "boolean"},
		{"date ymd", domain.ContentTypeField{Type: domain.FieldDate}, "2024-02-29", ""},
		{"date rfc3339", domain.ContentTypeField{Type: domain.FieldDate}, "2024-02-29T10:00:00Z", ""},
		{"date invalid day", domain.ContentTypeField{Type: domain.FieldDate}, "2023-02-29", "date"},
		{"date garbage", domain.ContentTypeField{Type: domain.FieldDate}, "yesterday", "date"},
		{"date number", domain.ContentTypeField{Type: domain.FieldDate}, float64(20240101), "date"},
		{"select ok", domain.ContentTypeField{Type: domain.FieldSelect, Options: []string{"a", "b"}}, "b", ""},
		{"select miss", domain.ContentTypeField{Type: domain.FieldSelect, Options: []string{"a", "b"}}, "c", "options"},
		{"reference ok", domain.ContentTypeField{Type: domain.FieldReference}, "c0ffee", ""},
		{"image number", domain.ContentTypeField{Type: domain.FieldImage}, float64(7), "identifier"},
		{"file object", domain.ContentTypeField{Type: domain.FieldFile}, map[string]interface{}{"id": "x"}, "identifier"},
		{"json anything", domain.ContentTypeField{Type: domain.FieldJSON}, []interface{}{1, "a"}, ""},
		{"unknown type", domain.ContentTypeField{Type: "color"}, "red", "type"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.field.FieldID = "f"
			res := ValidateContent(typeWith(tt.field), map[string]interface{}{"f": tt.value})
			if tt.rule == "" {
				assert.True(t, res.Valid, res.Errors)
				return
			}
			assert.False(t, res.Valid)
			require.Len(t, res.Errors, 1)
			assert.Equal(t, tt.rule, res.Errors[0].Rule)
		})
	}
}

func TestValidateContent_AccumulatesAcrossFields(t *testing.T) {
	ct := typeWith(
		domain.ContentTypeField{FieldID: "name", Type: domain.FieldText, Required: true},
		domain.ContentTypeField{FieldID: "age", Type: domain.FieldNumber},
		domain.ContentTypeField{FieldID: "email", Type: domain.FieldEmail, Required: true, MinLength: intPtr(50)},
	)

	res := ValidateContent(ct, map[string]interface{}{"age": "old", "email": "bad", "unknown": "ignored"})

	assert.False(t, res.Valid)
	assert.Equal(t, []string{"name", "age", "email"}, fieldIDs(res.Errors))
	// first failing rule only
	assert.Equal(t, "minLength", res.Errors[2].Rule)
}

func TestValidateContent_UnknownKeysIgnored(t *testing.T) {
	ct := typeWith(domain.ContentTypeField{FieldID: "name", Type: domain.FieldText})
	res := ValidateContent(ct, map[string]interface{}{"name": "x", "other": map[string]interface{}{"deep": true}})
	assert.True(t, res.Valid)
}

func TestValidateDefinition(t *testing.T) {
	good := []domain.ContentTypeField{
		{FieldID: "name", Type: domain.FieldText, MinLength: intPtr(1), MaxLength: intPtr(10), Pattern: `[A-Z].*`},
		{FieldID: "tier", Type: domain.FieldSelect, Options: []string{"gold"}},
	}
	assert.Empty(t, ValidateDefinition(good))

	bad := []domain.ContentTypeField{
		{FieldID: "", Type: domain.FieldText},
		{FieldID: "a", Type: domain.FieldText},
		{FieldID: "a", Type: domain.FieldText},
		{FieldID: "b", Type: "color"},
		{FieldID: "c", Type: domain.FieldText, MinLength: intPtr(5), MaxLength: intPtr(2)},
		{FieldID: "d", Type: domain.FieldSelect},
		{FieldID: "e", Type: domain.FieldText, Pattern: `(`},
		{FieldID: "has space", Type: domain.FieldText},
	}
	errs := ValidateDefinition(bad)
	rules := make([]string, 0, len(errs))
	for _, e := range errs {
		rules = append(rules, e.Rule)
	}
	assert.Equal(t, []string{"fieldId", "unique", "type", "length", "options", "pattern", "fieldId"}, rules)
	assert.Equal(t, "fields[0]", errs[0].FieldID)
}
