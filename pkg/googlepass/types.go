// Package googlepass builds Google Wallet save links for event tickets.
//
// Unlike the Apple path there is no archive: the pass objects are embedded
// in a signed JWT and validated by Google when the holder opens the
// resulting https://pay.google.com/gp/v/save/ URL. No network call is made
// while building the link.
package googlepass

// TranslatedString is one language/value pair.
type TranslatedString struct {
	Language string `json:"language"`
	Value    string `json:"value"`
}

// LocalizedString wraps a default translation.
type LocalizedString struct {
	DefaultValue TranslatedString `json:"defaultValue"`
}

// Image references an absolute image URI. Google rejects relative paths.
type Image struct {
	SourceURI ImageURI `json:"sourceUri"`
}

// ImageURI is the inner URI holder of an Image.
type ImageURI struct {
	URI string `json:"uri"`
}

// Barcode carries the scannable payload; Value must be byte-identical to
// the ticket code used everywhere else.
type Barcode struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// TextModule is one header/body row on the pass detail view.
type TextModule struct {
	Header string `json:"header"`
	Body   string `json:"body"`
}

// EventVenue names the venue on the ticket class.
type EventVenue struct {
	Name *LocalizedString `json:"name,omitempty"`
}

// EventDateTime carries the event schedule in RFC 3339 form.
type EventDateTime struct {
	DoorsOpen string `json:"doorsOpen,omitempty"`
	Start     string `json:"start,omitempty"`
}

// Class is the event-ticket class. It is embedded inline in each object so
// no provisioning call to the Wallet API is needed before issuing a link.
type Class struct {
	ID                 string           `json:"id"`
	IssuerName         string           `json:"issuerName"`
	EventName          LocalizedString  `json:"eventName"`
	Venue              *EventVenue      `json:"venue,omitempty"`
	DateTime           *EventDateTime   `json:"dateTime,omitempty"`
	ReviewStatus       string           `json:"reviewStatus"`
	HexBackgroundColor string           `json:"hexBackgroundColor,omitempty"`
	Logo               *Image           `json:"logo,omitempty"`
}

// Object is one event-ticket object, one per ticket.
type Object struct {
	ID                 string       `json:"id"`
	ClassID            string       `json:"classId"`
	ClassReference     *Class       `json:"classReference,omitempty"`
	State              string       `json:"state"`
	Barcode            Barcode      `json:"barcode"`
	HexBackgroundColor string       `json:"hexBackgroundColor,omitempty"`
	TextModulesData    []TextModule `json:"textModulesData,omitempty"`
}

const (
	barcodeTypeQR      = "QR_CODE"
	objectStateActive  = "ACTIVE"
	reviewStatusUnder  = "UNDER_REVIEW"
	defaultLanguage    = "en-US"
)
