package pass

import (
	"fmt"
	"time"
)

// TicketData is the per-ticket input to pass generation. It is built by the
// order subsystem and consumed once; nothing here is persisted.
//
// Code is the exact barcode payload. The same string is burned into the PDF
// and email QR codes, so it must pass through both wallet providers
// unchanged for a single scanner to resolve all of them.
type TicketData struct {
	Code        string `json:"code"`
	EventName   string `json:"eventName"`
	VenueName   string `json:"venueName,omitempty"`
	EventDate   string `json:"eventDate,omitempty"`
	DoorsTime   string `json:"doorsTime,omitempty"`
	TicketType  string `json:"ticketType,omitempty"`
	HolderName  string `json:"holderName,omitempty"`
	OrderNumber string `json:"orderNumber"`
	MerchName   string `json:"merchName,omitempty"`
	MerchSize   string `json:"merchSize,omitempty"`
	HasMerch    bool   `json:"hasMerch,omitempty"`
	Currency    string `json:"currency,omitempty"`
}

// eventDateLayouts are the accepted EventDate formats, tried in order.
var eventDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
}

// Validate reports whether the ticket carries the fields every pass needs.
func (t TicketData) Validate() error {
	if t.Code == "" {
		return fmt.Errorf("ticket is missing a barcode code")
	}
	if t.OrderNumber == "" {
		return fmt.Errorf("ticket %s is missing an order number", t.Code)
	}
	return nil
}

// SerialNumber is the pass serial: "<orderNumber>-<code>".
func (t TicketData) SerialNumber() string {
	return t.OrderNumber + "-" + t.Code
}

// ParsedEventDate parses EventDate against the accepted layouts. ok is
// false when the field is empty or unparseable; callers then omit
// date-dependent pass fields instead of rendering garbage.
func (t TicketData) ParsedEventDate() (time.Time, bool) {
	if t.EventDate == "" {
		return time.Time{}, false
	}
	for _, layout := range eventDateLayouts {
		if ts, err := time.Parse(layout, t.EventDate); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}

// DateLine renders the human-readable date row shown on the pass, with the
// doors time appended when present. Empty when the date does not parse.
func (t TicketData) DateLine() string {
	ts, ok := t.ParsedEventDate()
	if !ok {
		return ""
	}
	line := ts.Format("Mon, Jan 2, 2006 3:04 PM")
	if t.DoorsTime != "" {
		line += " (Doors " + t.DoorsTime + ")"
	}
	return line
}

// MerchLine renders the merchandise row, e.g. "Tour Tee (L)".
// Empty when the ticket has no merch attached.
func (t TicketData) MerchLine() string {
	if !t.HasMerch && t.MerchName == "" {
		return ""
	}
	name := t.MerchName
	if name == "" {
		name = "Merch item"
	}
	if t.MerchSize != "" {
		return name + " (" + t.MerchSize + ")"
	}
	return name
}
