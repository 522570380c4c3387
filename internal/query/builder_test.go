package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/damoang/angple-cms/internal/common"
)

func statusPredicates(s Spec) []Predicate {
	var out []Predicate
	for _, p := range s.Predicates() {
		if p.Field == FieldStatus {
			out = append(out, p)
		}
	}
	return out
}

func TestBuild_RequiresSite(t *testing.T) {
	_, err := Build("", "team", AudienceAdmin, Filters{})
	assert.ErrorIs(t, err, common.ErrMissingSite)

	_, err = Build("   ", "", AudiencePublic, Filters{})
	assert.ErrorIs(t, err, common.ErrMissingSite)
}

func TestBuild_SiteIsFirstPredicate(t *testing.T) {
	s, err := Build("acme", "team", AudienceAdmin, Filters{Status: "draft", Search: "x"})
	require.NoError(t, err)

	preds := s.Predicates()
	require.NotEmpty(t, preds)
	assert.Equal(t, Predicate{Field: FieldSiteID, Op: OpEq, Value: "acme"}, preds[0])
	assert.Equal(t, "acme", s.SiteID())
	assert.True(t, s.Valid())
}

func TestSpec_ZeroValueIsInvalid(t *testing.T) {
	assert.False(t, Spec{}.Valid())
}

func TestBuild_PublicAlwaysPublished(t *testing.T) {
	for _, requested := range []string{"", "draft", "archived", "published", "bogus"} {
		s, err := Build("acme", "team", AudiencePublic, Filters{Status: requested})
		require.NoError(t, err, requested)

		sp := statusPredicates(s)
		require.Len(t, sp, 1, requested)
		assert.Equal(t, "published", sp[0].Value, requested)
	}
}

func TestBuild_AdminStatus(t *testing.T) {
	s, err := Build("acme", "team", AudienceAdmin, Filters{})
	require.NoError(t, err)
	assert.Empty(t, statusPredicates(s))

	s, err = Build("acme", "team", AudienceAdmin, Filters{Status: "draft"})
	require.NoError(t, err)
	assert.Equal(t, "draft", statusPredicates(s)[0].Value)

	_, err = Build("acme", "team", AudienceAdmin, Filters{Status: "deleted"})
	assert.Equal(t, common.KindValidation, common.KindOf(err))
}

func TestBuild_Pagination(t *testing.T) {
	tests := []struct {
		limit, skip         int
		wantLimit, wantSkip int
	}{
		{0, 0, DefaultLimit, 0},
		{-5, -1, DefaultLimit, 0},
		{50, 40, 50, 40},
		{1000, 0, MaxLimit, 0},
	}
	for _, tt := range tests {
		s, err := Build("acme", "", AudienceAdmin, Filters{Limit: tt.limit, Skip: tt.skip})
		require.NoError(t, err)
		assert.Equal(t, tt.wantLimit, s.Limit())
		assert.Equal(t, tt.wantSkip, s.Skip())
	}
}

func TestBuild_DeterministicOrder(t *testing.T) {
	s, err := Build("acme", "", AudiencePublic, Filters{})
	require.NoError(t, err)
	assert.Equal(t, []Sort{{Field: FieldCreatedAt, Desc: true}, {Field: FieldID, Desc: true}}, s.Sorts())
}

func TestBuild_SearchAndFields(t *testing.T) {
	s, err := Build("acme", "team", AudienceAdmin, Filters{
		Search: "  Sam ",
		Fields: map[string]interface{}{"role": "CTO", "age": float64(30)},
	})
	require.NoError(t, err)

	preds := s.Predicates()
	assert.Contains(t, preds, Predicate{Field: FieldTitle, Op: OpContains, Value: "Sam"})
	assert.Contains(t, preds, Predicate{Field: "data.role", Op: OpEq, Value: "CTO"})

	var dataFields []string
	for _, p := range preds {
		if id, ok := p.DataField(); ok {
			dataFields = append(dataFields, id)
		}
	}
	assert.Equal(t, []string{"age", "role"}, dataFields)
}

func TestBuild_RejectsUnsafeFieldID(t *testing.T) {
	_, err := Build("acme", "team", AudienceAdmin, Filters{Fields: map[string]interface{}{"a'); DROP": "x"}})
	assert.Equal(t, common.KindValidation, common.KindOf(err))
}

func TestSpec_AccessorsReturnCopies(t *testing.T) {
	s, err := Build("acme", "", AudiencePublic, Filters{})
	require.NoError(t, err)

	preds := s.Predicates()
	preds[0].Value = "other"
	assert.Equal(t, "acme", s.Predicates()[0].Value)
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, "50!% off!_now!!", EscapeLike("50% off_now!"))
	assert.Equal(t, "plain", EscapeLike("plain"))
}
