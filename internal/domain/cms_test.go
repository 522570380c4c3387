package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWebhook_Tracks(t *testing.T) {
	all := Webhook{Active: true}
	assert.True(t, all.Tracks([]string{"title"}))

	w := Webhook{Active: true, TrackedFields: []string{"title", "price"}}
	assert.True(t, w.Tracks([]string{"title"}))
	assert.True(t, w.Tracks([]string{"data.price"}))
	assert.False(t, w.Tracks([]string{"slug", "data.body"}))

	data := Webhook{Active: true, TrackedFields: []string{"data"}}
	assert.True(t, data.Tracks([]string{"data.body"}))
	assert.False(t, data.Tracks([]string{"status"}))
}

func TestWebhook_Subscribes(t *testing.T) {
	w := Webhook{Active: true, Events: []string{EventContentUpdated}}
	assert.True(t, w.Subscribes(EventContentUpdated))
	assert.False(t, w.Subscribes(EventContentCreated))

	w.Active = false
	assert.False(t, w.Subscribes(EventContentUpdated))

	wildcard := Webhook{Active: true, Events: []string{"*"}}
	assert.True(t, wildcard.Subscribes(EventFormSubmissionCreated))
}

func TestContentType_StripUnknown(t *testing.T) {
	ct := ContentType{Fields: []ContentTypeField{{FieldID: "name", Type: FieldText}, {FieldID: "role", Type: FieldText}}}

	out := ct.StripUnknown(map[string]interface{}{"name": "Sam", "extra": 1})

	assert.Equal(t, map[string]interface{}{"name": "Sam"}, out)
}

func TestFieldType_Valid(t *testing.T) {
	for _, ft := range FieldTypes {
		assert.True(t, ft.Valid(), ft)
	}
	assert.False(t, FieldType("color").Valid())
}

func TestSlugPattern(t *testing.T) {
	assert.True(t, SlugPattern.MatchString("site-content"))
	assert.True(t, SlugPattern.MatchString("team_members2"))
	assert.False(t, SlugPattern.MatchString("-leading"))
	assert.False(t, SlugPattern.MatchString("Upper"))
	assert.False(t, SlugPattern.MatchString(""))
}
