package event

import "sort"

// FieldType is the declared type of a known field.
type FieldType string

const (
	TypeString  FieldType = "string"
	TypeInteger FieldType = "integer"
	TypeFloat   FieldType = "float"
	TypeMapping FieldType = "mapping"
)

// Field names that the record or the producer refer to directly.
const (
	FieldEventProperties = "event_properties"
	FieldUserProperties  = "user_properties"
	FieldEventType       = "event_type"
	FieldUserID          = "user_id"
	FieldDeviceID        = "device_id"
	FieldTime            = "time"
	FieldInsertID        = "insert_id"
)

// knownFields maps each wire name accepted by the ingestion API to its type.
// productId and revenueType are camelCase on the wire.
var knownFields = map[string]FieldType{
	"adid":                TypeString,
	"app_version":         TypeString,
	"carrier":             TypeString,
	"city":                TypeString,
	"country":             TypeString,
	"device_brand":        TypeString,
	"device_id":           TypeString,
	"device_manufacturer": TypeString,
	"device_model":        TypeString,
	"device_type":         TypeString,
	"dma":                 TypeString,
	"event_id":            TypeInteger,
	"event_properties":    TypeMapping,
	"event_type":          TypeString,
	"groups":              TypeMapping,
	"idfa":                TypeString,
	"insert_id":           TypeString,
	"ip":                  TypeString,
	"language":            TypeString,
	"location_lat":        TypeFloat,
	"location_lng":        TypeFloat,
	"os_name":             TypeString,
	"os_version":          TypeString,
	"platform":            TypeString,
	"price":               TypeFloat,
	"productId":           TypeString,
	"quantity":            TypeInteger,
	"region":              TypeString,
	"revenue":             TypeFloat,
	"revenueType":         TypeString,
	"session_id":          TypeInteger,
	"start_version":       TypeString,
	"time":                TypeInteger,
	"user_id":             TypeString,
	"user_properties":     TypeMapping,
}

// IsKnownField reports whether name is a canonical known field name.
// No normalization is applied.
func IsKnownField(name string) bool {
	_, ok := knownFields[name]
	return ok
}

// KnownFieldType returns the declared type of a canonical field name.
func KnownFieldType(name string) (FieldType, bool) {
	t, ok := knownFields[name]
	return t, ok
}

// KnownFields returns all canonical field names in sorted order.
func KnownFields() []string {
	names := make([]string, 0, len(knownFields))
	for name := range knownFields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
