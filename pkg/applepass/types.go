// Package applepass generates signed Apple Wallet (.pkpass) archives from
// ticket data.
//
// A .pkpass is a stored-only ZIP holding pass.json, the image slots, a
// manifest.json mapping every file to its SHA-1 digest, and a detached
// PKCS#7 signature over the manifest bytes. Multiple tickets from one order
// are wrapped as complete .pkpass members of an outer .pkpasses archive.
package applepass

// Field is one key/label/value row of a pass.
type Field struct {
	Key   string `json:"key"`
	Label string `json:"label,omitempty"`
	Value string `json:"value"`
}

// Barcode describes the scannable payload. Message must be byte-identical
// to the ticket code used in the PDF and email QR codes.
type Barcode struct {
	Format          string `json:"format"`
	Message         string `json:"message"`
	MessageEncoding string `json:"messageEncoding"`
}

// TicketFields groups the event-ticket field slots.
type TicketFields struct {
	PrimaryFields   []Field `json:"primaryFields,omitempty"`
	SecondaryFields []Field `json:"secondaryFields,omitempty"`
	AuxiliaryFields []Field `json:"auxiliaryFields,omitempty"`
	BackFields      []Field `json:"backFields,omitempty"`
}

// Definition is the pass.json document.
//
// Barcode is the legacy single-barcode field kept for old iOS versions;
// Barcodes carries the same entry in the modern array form.
type Definition struct {
	FormatVersion      int           `json:"formatVersion"`
	PassTypeIdentifier string        `json:"passTypeIdentifier"`
	SerialNumber       string        `json:"serialNumber"`
	TeamIdentifier     string        `json:"teamIdentifier"`
	OrganizationName   string        `json:"organizationName"`
	Description        string        `json:"description"`
	ForegroundColor    string        `json:"foregroundColor,omitempty"`
	BackgroundColor    string        `json:"backgroundColor,omitempty"`
	LabelColor         string        `json:"labelColor,omitempty"`
	RelevantDate       string        `json:"relevantDate,omitempty"`
	Barcode            *Barcode      `json:"barcode,omitempty"`
	Barcodes           []Barcode     `json:"barcodes,omitempty"`
	EventTicket        *TicketFields `json:"eventTicket"`
}

const (
	barcodeFormatQR = "PKBarcodeFormatQR"
	barcodeEncoding = "iso-8859-1"
)
