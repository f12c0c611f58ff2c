package events

// Analytics event types emitted by the generator
const (
	EventTypePageView    = "page_view"
	EventTypeButtonClick = "button_click"
	EventTypeSignUp      = "sign_up"
	EventTypePurchase    = "purchase"
)

// CloudEvents envelope defaults
const (
	CloudEventType   = "com.analytics.event.tracked"
	CloudEventSource = "kafanalytics"

	// CloudEvents content type
	ContentTypeJSON = "application/json"
)

// Kafka header keys carried alongside each message
const (
	HeaderSpecVersion = "ce_specversion"
	HeaderType        = "ce_type"
	HeaderSource      = "ce_source"
	HeaderID          = "ce_id"
	HeaderSubject     = "ce_subject"
)

// DefaultEventTypes lists the event types generated when none are configured
var DefaultEventTypes = []string{
	EventTypePageView,
	EventTypeButtonClick,
	EventTypeSignUp,
	EventTypePurchase,
}
