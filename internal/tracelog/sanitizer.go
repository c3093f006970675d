package tracelog

import (
	"encoding"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"reflect"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/goccy/go-json"
)

// Markers written in place of values that cannot or must not be logged.
const (
	Mask                     = "******"
	SerializationErrorMarker = "[Serialization Error]"
	EmptyBody                = "[empty]"
	UnreadableBody           = "[unreadable]"
	TruncationMarker         = "...[truncated]"
)

// Sanitizer applies a [Policy] to names, values and bodies. It holds no
// mutable state after construction and is safe for concurrent use.
type Sanitizer struct {
	excludedHeaders map[string]struct{}
	excludedTypes   map[string]struct{}
	markers         []string
	maxBody         int
	shortString     int
}

// NewSanitizer compiles p into a Sanitizer.
func NewSanitizer(p Policy) *Sanitizer {
	s := &Sanitizer{
		excludedHeaders: make(map[string]struct{}, len(p.ExcludedHeaders)),
		excludedTypes:   make(map[string]struct{}, len(p.ExcludedParamTypes)),
		maxBody:         p.MaxBodyLength,
		shortString:     p.ShortStringLimit,
	}
	for _, h := range p.ExcludedHeaders {
		s.excludedHeaders[strings.ToLower(strings.TrimSpace(h))] = struct{}{}
	}
	for _, t := range p.ExcludedParamTypes {
		s.excludedTypes[strings.TrimSpace(t)] = struct{}{}
	}
	for _, m := range p.SensitiveKeyMarkers {
		if m = strings.ToLower(strings.TrimSpace(m)); m != "" {
			s.markers = append(s.markers, m)
		}
	}

	return s
}

// MaxBodyLength returns the configured body bound.
func (s *Sanitizer) MaxBodyLength() int { return s.maxBody }

// ExcludedHeader reports whether the header name is never logged.
func (s *Sanitizer) ExcludedHeader(name string) bool {
	_, ok := s.excludedHeaders[strings.ToLower(name)]
	return ok
}

// ExcludedParamType reports whether arguments of the declared type are skipped.
func (s *Sanitizer) ExcludedParamType(declaredType string) bool {
	_, ok := s.excludedTypes[declaredType]
	return ok
}

// Sensitive reports whether text contains any sensitive marker.
func (s *Sanitizer) Sensitive(text string) bool {
	if len(s.markers) == 0 || text == "" {
		return false
	}
	lower := strings.ToLower(text)
	for _, m := range s.markers {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return false
}

// Sanitize turns a named value into something safe to log. A nil value stays
// nil, sensitive names or values become [Mask], scalars pass through and
// everything else is serialized to JSON text. It never panics.
func (s *Sanitizer) Sanitize(name string, value any, declaredType string) (out any) {
	defer func() {
		if r := recover(); r != nil {
			out = SerializationErrorMarker
		}
	}()

	if isNil(value) {
		return nil
	}
	if s.Sensitive(name) {
		return Mask
	}

	switch v := value.(type) {
	case []byte:
		return s.SanitizeBody(v)
	case string:
		if s.Sensitive(v) {
			return Mask
		}
		if s.shortString > 0 && utf8.RuneCountInString(v) > s.shortString {
			return s.BoundBody(v)
		}
		return v
	case error:
		text := v.Error()
		if s.Sensitive(text) {
			return Mask
		}
		return s.BoundBody(text)
	case encoding.TextMarshaler:
		b, err := v.MarshalText()
		if err != nil {
			return SerializationErrorMarker
		}
		if s.Sensitive(string(b)) {
			return Mask
		}
		return s.BoundBody(string(b))
	}

	if isScalar(value) {
		if s.Sensitive(fmt.Sprint(value)) {
			return Mask
		}
		if text, ok := nonFinite(value); ok {
			return text
		}
		return value
	}

	text, err := Serialize(value)
	if err != nil {
		return SerializationErrorMarker
	}
	if s.Sensitive(text) {
		return Mask
	}
	return s.BoundBody(text)
}

// SanitizeBody renders raw body bytes: [EmptyBody] for nothing,
// [UnreadableBody] for invalid UTF-8, [Mask] for sensitive content, and the
// bounded text otherwise.
func (s *Sanitizer) SanitizeBody(raw []byte) string {
	if len(raw) == 0 {
		return EmptyBody
	}
	if !utf8.Valid(raw) {
		return UnreadableBody
	}
	text := string(raw)
	if s.Sensitive(text) {
		return Mask
	}
	return s.BoundBody(text)
}

// SanitizeResponse renders a call's return value as body text.
func (s *Sanitizer) SanitizeResponse(value any) string {
	switch v := value.(type) {
	case nil:
		return EmptyBody
	case []byte:
		return s.SanitizeBody(v)
	case string:
		return s.SanitizeBody([]byte(v))
	}

	text, err := Serialize(value)
	if err != nil {
		return SerializationErrorMarker
	}
	return s.SanitizeBody([]byte(text))
}

// BoundBody truncates text to the configured number of characters and
// appends [TruncationMarker] once. Empty text becomes [EmptyBody].
func (s *Sanitizer) BoundBody(text string) string {
	if text == "" {
		return EmptyBody
	}
	if s.maxBody <= 0 || utf8.RuneCountInString(text) <= s.maxBody {
		return text
	}

	n := 0
	for i := range text {
		if n == s.maxBody {
			return text[:i] + TruncationMarker
		}
		n++
	}
	return text
}

// Headers copies h without excluded names. Multiple values are joined with
// a comma; sensitive names are masked.
func (s *Sanitizer) Headers(h http.Header) map[string]string {
	if len(h) == 0 {
		return nil
	}
	out := make(map[string]string, len(h))
	for name, values := range h {
		if s.ExcludedHeader(name) {
			continue
		}
		if s.Sensitive(name) {
			out[name] = Mask
			continue
		}
		out[name] = strings.Join(values, ",")
	}
	return out
}

// Query keeps the first value of every query key.
func (s *Sanitizer) Query(q url.Values) map[string]string {
	if len(q) == 0 {
		return nil
	}
	out := make(map[string]string, len(q))
	for key, values := range q {
		var v string
		if len(values) > 0 {
			v = values[0]
		}
		if s.Sensitive(key) || s.Sensitive(v) {
			v = Mask
		}
		out[key] = v
	}
	return out
}

// Serialize renders v as canonical JSON text. Marshaling is stateless and
// safe for concurrent use; a panicking MarshalJSON is reported as an error.
func Serialize(v any) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: panic: %v", ErrSerializationFailure, r)
		}
	}()

	b, err := json.Marshal(v)
	if err != nil {
		return "", errors.Join(ErrSerializationFailure, err)
	}
	return string(b), nil
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

// nonFinite renders NaN and infinite floats as text, since JSON has no
// literal for them.
func nonFinite(v any) (string, bool) {
	rv := reflect.ValueOf(v)
	if k := rv.Kind(); k != reflect.Float32 && k != reflect.Float64 {
		return "", false
	}
	f := rv.Float()
	if !math.IsNaN(f) && !math.IsInf(f, 0) {
		return "", false
	}
	return strconv.FormatFloat(f, 'g', -1, 64), true
}

func isScalar(v any) bool {
	switch reflect.ValueOf(v).Kind() {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64, reflect.String:
		return true
	}
	return false
}
