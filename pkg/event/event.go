package event

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"

	"github.com/jittakal/kafanalytics/pkg/inflector"
)

// inflectable matches names eligible for case-style normalization.
var inflectable = regexp.MustCompile(`^[a-zA-Z_]+$`)

// Event holds the properties of a single analytics event.
//
// Known fields are stored under their canonical wire name with a value coerced
// to the declared type. Every other name is stored verbatim in the
// event_properties mapping. An Event is not safe for concurrent mutation.
type Event struct {
	fields    map[string]interface{}
	inflector *inflector.Inflector
}

// Option configures an Event.
type Option func(*Event)

// WithInflector makes the Event normalize names through inf instead of the
// process-wide inflector.
func WithInflector(inf *inflector.Inflector) Option {
	return func(e *Event) {
		if inf != nil {
			e.inflector = inf
		}
	}
}

// New creates an Event and applies properties through SetProperties.
func New(properties map[string]interface{}, opts ...Option) *Event {
	e := &Event{
		fields:    make(map[string]interface{}),
		inflector: inflector.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e.SetProperties(properties)
}

// Set stores value under name. Known fields are coerced to their declared
// type; unknown names become custom event properties. Values stored under an
// equivalent spelling are replaced, not merged.
func (e *Event) Set(name string, value interface{}) *Event {
	e.init()

	normalized := e.normalize(name)
	if fieldType, ok := knownFields[normalized]; ok {
		e.fields[normalized] = coerce(fieldType, value)
		return e
	}

	e.customProperties(true)[name] = value
	return e
}

// SetProperties calls Set for every pair in properties, in ascending key order.
func (e *Event) SetProperties(properties map[string]interface{}) *Event {
	keys := make([]string, 0, len(properties))
	for k := range properties {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		e.Set(k, properties[k])
	}
	return e
}

// SetUserProperties shallow-merges properties into user_properties.
func (e *Event) SetUserProperties(properties map[string]interface{}) *Event {
	existing, _ := e.GetMap(FieldUserProperties)

	merged := make(map[string]interface{}, len(existing)+len(properties))
	for k, v := range existing {
		merged[k] = v
	}
	for k, v := range properties {
		merged[k] = v
	}
	return e.Set(FieldUserProperties, merged)
}

// Get returns the value stored for name and whether it was present.
// A stored nil, empty string or zero is reported as present. Mapping values
// are returned as shallow copies; use Set to change them.
func (e *Event) Get(name string) (interface{}, bool) {
	normalized := e.normalize(name)
	if v, ok := e.fields[normalized]; ok {
		return copyMapping(v), true
	}
	if props := e.customProperties(false); props != nil {
		if v, ok := props[normalized]; ok {
			return copyMapping(v), true
		}
	}
	return nil, false
}

// GetString returns a known string field or a custom string property.
func (e *Event) GetString(name string) (string, bool) {
	v, ok := e.Get(name)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// GetInt returns a known integer field or a custom int64 property.
func (e *Event) GetInt(name string) (int64, bool) {
	v, ok := e.Get(name)
	if !ok {
		return 0, false
	}
	n, ok := v.(int64)
	return n, ok
}

// GetFloat returns a known float field or a custom float64 property.
func (e *Event) GetFloat(name string) (float64, bool) {
	v, ok := e.Get(name)
	if !ok {
		return 0, false
	}
	f, ok := v.(float64)
	return f, ok
}

// GetMap returns a known mapping field or a custom mapping property.
func (e *Event) GetMap(name string) (map[string]interface{}, bool) {
	v, ok := e.Get(name)
	if !ok {
		return nil, false
	}
	m, ok := v.(map[string]interface{})
	return m, ok
}

// UnsetProperty removes name. It is a no-op when name is not set.
func (e *Event) UnsetProperty(name string) *Event {
	normalized := e.normalize(name)
	if _, ok := knownFields[normalized]; ok {
		delete(e.fields, normalized)
		return e
	}
	if props := e.customProperties(false); props != nil {
		delete(props, normalized)
	}
	return e
}

// IsPropertySet reports whether Get(name) would find a value.
func (e *Event) IsPropertySet(name string) bool {
	_, ok := e.Get(name)
	return ok
}

// Len returns the number of top-level fields, event_properties included.
func (e *Event) Len() int {
	return len(e.fields)
}

// ToArray exports the event as a plain mapping keyed by wire names.
// The top-level map and the mappings directly under it are copies, so callers
// may mutate the result without affecting the Event.
func (e *Event) ToArray() map[string]interface{} {
	out := make(map[string]interface{}, len(e.fields))
	for k, v := range e.fields {
		out[k] = copyMapping(v)
	}
	return out
}

// MarshalJSON encodes the exported mapping.
func (e *Event) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.ToArray())
}

// UnmarshalJSON decodes a JSON object and applies it through SetProperties.
// Existing fields are kept unless overwritten. Integral numbers that fit in
// int64 decode as int64, other numbers as float64.
func (e *Event) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var properties map[string]interface{}
	if err := dec.Decode(&properties); err != nil {
		return fmt.Errorf("failed to decode event: %w", err)
	}
	for k, v := range properties {
		properties[k] = fromJSONNumbers(v)
	}
	e.SetProperties(properties)
	return nil
}

// normalize resolves name to a known field name when either its underscore or
// camelCase spelling is known. Anything else is returned unchanged.
func (e *Event) normalize(name string) string {
	if _, ok := knownFields[name]; ok {
		return name
	}
	if !inflectable.MatchString(name) {
		return name
	}

	inf := e.inflector
	if inf == nil {
		inf = inflector.Default()
	}
	if underscored := inf.Underscore(name); IsKnownField(underscored) {
		return underscored
	}
	if camelCased := inf.CamelCase(name); IsKnownField(camelCased) {
		return camelCased
	}
	return name
}

// customProperties returns the event_properties mapping, creating it when
// create is set.
func (e *Event) customProperties(create bool) map[string]interface{} {
	if props, ok := e.fields[FieldEventProperties].(map[string]interface{}); ok {
		return props
	}
	if !create {
		return nil
	}
	e.init()
	props := make(map[string]interface{})
	e.fields[FieldEventProperties] = props
	return props
}

// copyMapping returns a shallow copy of v when it is a mapping, v otherwise.
func copyMapping(v interface{}) interface{} {
	m, ok := v.(map[string]interface{})
	if !ok {
		return v
	}
	cp := make(map[string]interface{}, len(m))
	for k, item := range m {
		cp[k] = item
	}
	return cp
}

// fromJSONNumbers replaces json.Number values in a decoded tree with int64 or
// float64. Numbers neither can hold are left as json.Number.
func fromJSONNumbers(v interface{}) interface{} {
	switch t := v.(type) {
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return n
		}
		if f, err := t.Float64(); err == nil {
			return f
		}
		return t
	case map[string]interface{}:
		for k, item := range t {
			t[k] = fromJSONNumbers(item)
		}
		return t
	case []interface{}:
		for i, item := range t {
			t[i] = fromJSONNumbers(item)
		}
		return t
	}
	return v
}

// init allows the zero Event to be used.
func (e *Event) init() {
	if e.fields == nil {
		e.fields = make(map[string]interface{})
	}
	if e.inflector == nil {
		e.inflector = inflector.Default()
	}
}
