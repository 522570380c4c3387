// Package query builds tenant-scoped content queries.
//
// A Spec can only be produced by Build, and Build refuses to produce one
// without a site predicate, so every content listing is tenant-scoped.
package query

import (
	"regexp"
	"slices"
	"strings"

	"github.com/damoang/angple-cms/internal/common"
	"github.com/damoang/angple-cms/internal/domain"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// Audience decides draft visibility
type Audience int

const (
	// AudiencePublic only ever sees published documents
	AudiencePublic Audience = iota
	// AudienceAdmin sees any status unless one is requested
	AudienceAdmin
)

// Op is a predicate operator
type Op string

const (
	OpEq       Op = "eq"
	OpContains Op = "contains" // case-insensitive substring
)

// Columns a predicate or sort may reference
const (
	FieldSiteID        = "site_id"
	FieldContentTypeID = "content_type_id"
	FieldStatus        = "status"
	FieldTitle         = "title"
	FieldCreatedAt     = "created_at"
	FieldID            = "id"

	dataPrefix = "data."
)

var fieldIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// Predicate is one filter condition
type Predicate struct {
	Field string
	Op    Op
	Value interface{}
}

// DataField returns the fieldId when the predicate targets content data
func (p Predicate) DataField() (string, bool) {
	if strings.HasPrefix(p.Field, dataPrefix) {
		return strings.TrimPrefix(p.Field, dataPrefix), true
	}
	return "", false
}

// Sort is one ordering term
type Sort struct {
	Field string
	Desc  bool
}

// Filters are the caller supplied narrowing options
type Filters struct {
	Status string
	Search string
	Fields map[string]interface{}
	Limit  int
	Skip   int
}

// Spec is an abstract query: predicates, ordering and a page window
type Spec struct {
	predicates []Predicate
	sorts      []Sort
	limit      int
	skip       int
	siteID     string
}

// Build composes a tenant-scoped query. siteID is required and always the first predicate;
// contentTypeID is optional.
func Build(siteID, contentTypeID string, audience Audience, f Filters) (Spec, error) {
	siteID = strings.TrimSpace(siteID)
	if siteID == "" {
		return Spec{}, common.ErrMissingSite
	}

	s := Spec{siteID: siteID}
	s.predicates = append(s.predicates, Predicate{Field: FieldSiteID, Op: OpEq, Value: siteID})

	if contentTypeID != "" {
		s.predicates = append(s.predicates, Predicate{Field: FieldContentTypeID, Op: OpEq, Value: contentTypeID})
	}

	switch audience {
	case AudienceAdmin:
		if f.Status != "" {
			status := domain.ContentStatus(f.Status)
			if !status.Valid() {
				return Spec{}, common.NewValidationError("invalid status filter", map[string]string{"status": f.Status})
			}
			s.predicates = append(s.predicates, Predicate{Field: FieldStatus, Op: OpEq, Value: string(status)})
		}
	default:
		// public callers never see drafts, whatever they ask for
		s.predicates = append(s.predicates, Predicate{Field: FieldStatus, Op: OpEq, Value: string(domain.ContentStatusPublished)})
	}

	if search := strings.TrimSpace(f.Search); search != "" {
		s.predicates = append(s.predicates, Predicate{Field: FieldTitle, Op: OpContains, Value: search})
	}

	for _, id := range sortedKeys(f.Fields) {
		if !fieldIDPattern.MatchString(id) {
			return Spec{}, common.NewValidationError("invalid field filter", map[string]string{"field": id})
		}
		s.predicates = append(s.predicates, Predicate{Field: dataPrefix + id, Op: OpEq, Value: f.Fields[id]})
	}

	s.sorts = []Sort{{Field: FieldCreatedAt, Desc: true}, {Field: FieldID, Desc: true}}
	s.limit = ClampLimit(f.Limit)
	s.skip = ClampSkip(f.Skip)

	return s, nil
}

// Predicates returns a copy of the filter conditions, site predicate first
func (s Spec) Predicates() []Predicate {
	return append([]Predicate(nil), s.predicates...)
}

// Sorts returns a copy of the ordering terms
func (s Spec) Sorts() []Sort {
	return append([]Sort(nil), s.sorts...)
}

func (s Spec) Limit() int { return s.limit }

func (s Spec) Skip() int { return s.skip }

// SiteID returns the tenant the query is scoped to
func (s Spec) SiteID() string { return s.siteID }

// Valid reports whether s came from Build
func (s Spec) Valid() bool {
	return s.siteID != "" && len(s.predicates) > 0 && s.predicates[0].Field == FieldSiteID
}

// ClampLimit applies the default and the maximum page size
func ClampLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// ClampSkip keeps skip non-negative
func ClampSkip(skip int) int {
	if skip < 0 {
		return 0
	}
	return skip
}

// LikeEscape is the escape character used by EscapeLike
const LikeEscape = "!"

// EscapeLike escapes LIKE wildcards so s matches literally
func EscapeLike(s string) string {
	r := strings.NewReplacer(LikeEscape, LikeEscape+LikeEscape, "%", LikeEscape+"%", "_", LikeEscape+"_")
	return r.Replace(s)
}

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
