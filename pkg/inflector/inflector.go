// Package inflector converts names between underscore_style and camelCaseStyle.
//
// Results are memoized per conversion direction. The cache is additive only and
// is never evicted, which is fine for the small, repeated set of field names it
// is used for. All methods are safe for concurrent use.
package inflector

import (
	"strings"
	"sync"
)

// Inflector memoizes underscore and camelCase conversions.
type Inflector struct {
	mu         sync.RWMutex
	underscore map[string]string
	camelCase  map[string]string
}

var defaultInflector = New()

// New creates an Inflector with empty caches.
func New() *Inflector {
	return &Inflector{
		underscore: make(map[string]string),
		camelCase:  make(map[string]string),
	}
}

// Default returns the process-wide Inflector.
func Default() *Inflector {
	return defaultInflector
}

// Underscore converts value using the process-wide Inflector.
func Underscore(value string) string {
	return defaultInflector.Underscore(value)
}

// CamelCase converts value using the process-wide Inflector.
func CamelCase(value string) string {
	return defaultInflector.CamelCase(value)
}

// Underscore inserts an underscore before every uppercase ASCII letter and
// lowercases the result, e.g. "deviceId" -> "device_id".
// A leading uppercase letter yields a leading underscore: "DeviceId" -> "_device_id".
func (i *Inflector) Underscore(value string) string {
	return i.lookup(i.underscore, value, underscore)
}

// CamelCase converts "device_id" to "deviceId".
func (i *Inflector) CamelCase(value string) string {
	return i.lookup(i.camelCase, value, camelCase)
}

// Len returns the number of cached underscore and camelCase conversions.
func (i *Inflector) Len() (underscored, camelCased int) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return len(i.underscore), len(i.camelCase)
}

func (i *Inflector) lookup(cache map[string]string, value string, convert func(string) string) string {
	i.mu.RLock()
	cached, ok := cache[value]
	i.mu.RUnlock()
	if ok {
		return cached
	}

	converted := convert(value)

	i.mu.Lock()
	cache[value] = converted
	i.mu.Unlock()

	return converted
}

func underscore(value string) string {
	var b strings.Builder
	b.Grow(len(value) + 4)
	for j := 0; j < len(value); j++ {
		c := value[j]
		if c >= 'A' && c <= 'Z' {
			b.WriteByte('_')
			c += 'a' - 'A'
		}
		b.WriteByte(c)
	}
	return b.String()
}

// camelCase treats underscores as spaces, capitalizes the first letter of every
// word, drops the spaces and lowercases the first letter of the result.
func camelCase(value string) string {
	var b strings.Builder
	b.Grow(len(value))
	wordStart := true
	for j := 0; j < len(value); j++ {
		c := value[j]
		if c == '_' {
			c = ' '
		}
		if isWordSeparator(c) {
			wordStart = true
			if c != ' ' {
				b.WriteByte(c)
			}
			continue
		}
		if wordStart {
			c = toUpper(c)
			wordStart = false
		}
		b.WriteByte(c)
	}

	out := []byte(b.String())
	if len(out) > 0 {
		out[0] = toLower(out[0])
	}
	return string(out)
}

func isWordSeparator(c byte) bool {
	switch c {
	case ' ', '\t', '\r', '\n', '\f', '\v':
		return true
	}
	return false
}

func toUpper(c byte) byte {
	if c >= 'a' && c <= 'z' {
		return c - ('a' - 'A')
	}
	return c
}

func toLower(c byte) byte {
	if c >= 'A' && c <= 'Z' {
		return c + ('a' - 'A')
	}
	return c
}
