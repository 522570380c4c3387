package service

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"github.com/damoang/angple-cms/internal/domain"
)

// FieldError is one field-level validation failure
type FieldError struct {
	FieldID string `json:"fieldId"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

// ValidationResult is the outcome of validating a payload against a content type
type ValidationResult struct {
	Valid  bool         `json:"valid"`
	Errors []FieldError `json:"errors"`
}

// fieldRule checks a non-empty value; it returns the failed rule name and a message
type fieldRule func(f domain.ContentTypeField, v interface{}) (rule, msg string)

var (
	formatValidator = validator.New()

	fieldRules map[domain.FieldType]fieldRule

	fieldIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)
)

// date layouts accepted for date fields
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func init() {
	fieldRules = map[domain.FieldType]fieldRule{
		domain.FieldText:      textRule(""),
		domain.FieldTextarea:  textRule(""),
		domain.FieldRichText:  textRule(""),
		domain.FieldURL:       textRule("url"),
		domain.FieldEmail:     textRule("email"),
		domain.FieldNumber:    numberRule,
		domain.FieldBoolean:   booleanRule,
		domain.FieldDate:      dateRule,
		domain.FieldSelect:    selectRule,
		domain.FieldReference: identifierRule,
		domain.FieldImage:     identifierRule,
		domain.FieldFile:      identifierRule,
		domain.FieldJSON:      func(domain.ContentTypeField, interface{}) (string, string) { return "", "" },
	}
}

// ValidateContent 콘텐츠 타입 스키마 기반 payload 검증.
// Unknown payload keys are ignored; every declared field reports at most one error.
func ValidateContent(ct *domain.ContentType, payload map[string]interface{}) ValidationResult {
	result := ValidationResult{Valid: true, Errors: []FieldError{}}

	for _, f := range ct.Fields {
		v := payload[f.FieldID]
		if isEmptyValue(v) {
			if f.Required {
				result.Errors = append(result.Errors, FieldError{FieldID: f.FieldID, Rule: "required", Message: fmt.Sprintf("%s is required", label(f))})
			}
			continue
		}

		rule, ok := fieldRules[f.Type]
		if !ok {
			result.Errors = append(result.Errors, FieldError{FieldID: f.FieldID, Rule: "type", Message: fmt.Sprintf("unsupported field type %q", f.Type)})
			continue
		}
		if name, msg := rule(f, v); name != "" {
			result.Errors = append(result.Errors, FieldError{FieldID: f.FieldID, Rule: name, Message: msg})
		}
	}

	result.Valid = len(result.Errors) == 0
	return result
}

func textRule(format string) fieldRule {
	return func(f domain.ContentTypeField, v interface{}) (string, string) {
		s, ok := coerceString(v)
		if !ok {
			return "type", fmt.Sprintf("%s must be text", label(f))
		}

		n := utf8.RuneCountInString(s)
		if f.MinLength != nil && n < *f.MinLength {
			return "minLength", fmt.Sprintf("%s must be at least %d characters", label(f), *f.MinLength)
		}
		if f.MaxLength != nil && n > *f.MaxLength {
			return "maxLength", fmt.Sprintf("%s must be at most %d characters", label(f), *f.MaxLength)
		}

		if format != "" {
			if err := formatValidator.Var(strings.TrimSpace(s), format); err != nil {
				return format, fmt.Sprintf("%s must be a valid %s", label(f), format)
			}
		}

		if f.Pattern != "" {
			re, err := compileAnchored(f.Pattern)
			if err != nil {
				return "pattern", fmt.Sprintf("%s has an invalid pattern", label(f))
			}
			if !re.MatchString(s) {
				return "pattern", fmt.Sprintf("%s does not match the required format", label(f))
			}
		}
		return "", ""
	}
}

func numberRule(f domain.ContentTypeField, v interface{}) (string, string) {
	var n float64
	switch val := v.(type) {
	case float64:
		n = val
	case float32:
		n = float64(val)
	case int, int32, int64, uint, uint32, uint64:
		return "", ""
	case json.Number:
		parsed, err := val.Float64()
		if err != nil {
			return "number", fmt.Sprintf("%s must be a number", label(f))
		}
		n = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return "number", fmt.Sprintf("%s must be a number", label(f))
		}
		n = parsed
	default:
		return "number", fmt.Sprintf("%s must be a number", label(f))
	}

	if math.IsNaN(n) || math.IsInf(n, 0) {
		return "number", fmt.Sprintf("%s must be a finite number", label(f))
	}
	return "", ""
}

func booleanRule(f domain.ContentTypeField, v interface{}) (string, string) {
	if _, ok := v.(bool); !ok {
		return "boolean", fmt.Sprintf("%s must be true or false", label(f))
	}
	return "", ""
}

func dateRule(f domain.ContentTypeField, v interface{}) (string, string) {
	switch val := v.(type) {
	case time.Time:
		return "", ""
	case string:
		s := strings.TrimSpace(val)
		for _, layout := range dateLayouts {
			if _, err := time.Parse(layout, s); err == nil {
				return "", ""
			}
		}
	}
	return "date", fmt.Sprintf("%s must be a valid date", label(f))
}

func selectRule(f domain.ContentTypeField, v interface{}) (string, string) {
	s, ok := coerceString(v)
	if ok {
		for _, opt := range f.Options {
			if opt == s {
				return "", ""
			}
		}
	}
	return "options", fmt.Sprintf("%s must be one of: %s", label(f), strings.Join(f.Options, ", "))
}

func identifierRule(f domain.ContentTypeField, v interface{}) (string, string) {
	s, ok := v.(string)
	if !ok || strings.TrimSpace(s) == "" {
		return "identifier", fmt.Sprintf("%s must be an identifier string", label(f))
	}
	return "", ""
}

// ValidateDefinition checks a content type's own field list
func ValidateDefinition(fields []domain.ContentTypeField) []FieldError {
	errs := []FieldError{}
	seen := make(map[string]bool, len(fields))

	for i, f := range fields {
		id := f.FieldID
		if id == "" {
			id = fmt.Sprintf("fields[%d]", i)
		}
		fail := func(rule, msg string) {
			errs = append(errs, FieldError{FieldID: id, Rule: rule, Message: msg})
		}

		switch {
		case !fieldIDPattern.MatchString(f.FieldID):
			fail("fieldId", "fieldId must be 1-64 letters, digits, '-' or '_'")
		case seen[f.FieldID]:
			fail("unique", fmt.Sprintf("duplicate fieldId %q", f.FieldID))
		case !f.Type.Valid():
			fail("type", fmt.Sprintf("unknown field type %q", f.Type))
		case f.MinLength != nil && *f.MinLength < 0, f.MaxLength != nil && *f.MaxLength < 0:
			fail("length", "minLength and maxLength must not be negative")
		case f.MinLength != nil && f.MaxLength != nil && *f.MinLength > *f.MaxLength:
			fail("length", "minLength must not exceed maxLength")
		case f.Type == domain.FieldSelect && len(f.Options) == 0:
			fail("options", "select fields need at least one option")
		case f.Pattern != "":
			if _, err := compileAnchored(f.Pattern); err != nil {
				fail("pattern", fmt.Sprintf("invalid pattern: %v", err))
			}
		}
		seen[f.FieldID] = true
	}
	return errs
}

func compileAnchored(pattern string) (*regexp.Regexp, error) {
	return regexp.Compile(`^(?:` + pattern + `)$`)
}

// coerceString converts scalars to text; objects and arrays are not text
func coerceString(v interface{}) (string, bool) {
	switch val := v.(type) {
	case string:
		return val, true
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(val), true
	case json.Number:
		return val.String(), true
	case int, int64, int32:
		return fmt.Sprint(val), true
	}
	return "", false
}

// isEmptyValue nil, blank strings and empty arrays/objects count as missing
func isEmptyValue(v interface{}) bool {
	if v == nil {
		return true
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s) == ""
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Map, reflect.Array:
		return rv.Len() == 0
	case reflect.Ptr, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

func label(f domain.ContentTypeField) string {
	if f.Name != "" {
		return f.Name
	}
	return f.FieldID
}
