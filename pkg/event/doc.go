// Package event models a single analytics event as accepted by the remote
// ingestion HTTP API.
//
// # Known fields and custom properties
//
// The API recognizes a fixed set of top-level fields (user_id, device_id,
// event_type, time, price, ...). Names passed to Set, Get, UnsetProperty and
// IsPropertySet are normalized against that set, so either spelling works:
//
//	e := event.New(nil)
//	e.Set("userId", "u1")
//	v, _ := e.Get("user_id") // "u1"
//
// Names made only of ASCII letters and underscores are tried in underscore
// form first and camelCase form second. Any other name, or one that resolves
// to nothing known, is a custom property and is stored byte-for-byte under
// event_properties:
//
//	e.Set("Page Title", "Home")
//	e.ToArray() // {"user_id": "u1", "event_properties": {"Page Title": "Home"}}
//
// # Coercion
//
// Values for known fields are coerced to the declared type when set:
//
//	string   any value to its string form, nil to ""
//	integer  int64; strings use their leading number ("42abc" -> 42), else 0
//	float    float64; same string rule ("3.5" -> 3.5), else 0
//	mapping  map[string]interface{}; scalars become {"0": value}
//
// Coercion never fails and no operation on Event returns an error.
//
// # Absent values
//
// Get reports presence separately from the value, so a stored "" or 0 is
// distinguishable from a property that was never set.
//
// # Export
//
// ToArray returns the wire-shaped mapping and MarshalJSON encodes it. The
// transport that sends events is not part of this package.
package event
