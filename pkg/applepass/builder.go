package applepass

import (
	"time"

	"github.com/feralclo/walletpass/pkg/pass"
)

// BuildDefinition maps a ticket and the merged visual settings to a
// pass.json definition. Pure: no I/O, no clock access beyond formatting the
// event date already carried by the ticket.
func BuildDefinition(t pass.TicketData, s pass.VisualSettings) *Definition {
	barcode := Barcode{
		Format:          barcodeFormatQR,
		Message:         t.Code,
		MessageEncoding: barcodeEncoding,
	}

	fields := &TicketFields{
		PrimaryFields: []Field{
			{Key: "event", Label: "EVENT", Value: t.EventName},
		},
	}
	if t.VenueName != "" {
		fields.SecondaryFields = append(fields.SecondaryFields, Field{
			Key: "venue", Label: "VENUE", Value: t.VenueName,
		})
	}
	if line := t.DateLine(); line != "" {
		fields.SecondaryFields = append(fields.SecondaryFields, Field{
			Key: "date", Label: "DATE", Value: line,
		})
	}
	if t.TicketType != "" {
		fields.AuxiliaryFields = append(fields.AuxiliaryFields, Field{
			Key: "type", Label: "TICKET", Value: t.TicketType,
		})
	}
	if merch := t.MerchLine(); merch != "" {
		fields.AuxiliaryFields = append(fields.AuxiliaryFields, Field{
			Key: "merch", Label: "INCLUDES", Value: merch,
		})
	}
	if s.DisplayHolderName() && t.HolderName != "" {
		fields.BackFields = append(fields.BackFields, Field{
			Key: "holder", Label: "TICKET HOLDER", Value: t.HolderName,
		})
	}
	if s.DisplayOrderNumber() {
		fields.BackFields = append(fields.BackFields, Field{
			Key: "order", Label: "ORDER", Value: t.OrderNumber,
		})
	}
	if s.DisplayTerms() {
		fields.BackFields = append(fields.BackFields, Field{
			Key: "terms", Label: "TERMS", Value: s.TermsText,
		})
	}

	def := &Definition{
		FormatVersion:      1,
		PassTypeIdentifier: s.ApplePassTypeID,
		SerialNumber:       t.SerialNumber(),
		TeamIdentifier:     s.AppleTeamID,
		OrganizationName:   s.OrganizationName,
		Description:        s.Description,
		ForegroundColor:    pass.HexToRGB(s.TextColor),
		BackgroundColor:    pass.HexToRGB(s.BackgroundColor),
		LabelColor:         pass.HexToRGB(s.LabelColor),
		Barcode:            &barcode,
		Barcodes:           []Barcode{barcode},
		EventTicket:        fields,
	}
	if ts, ok := t.ParsedEventDate(); ok {
		def.RelevantDate = ts.Format(time.RFC3339)
	}
	return def
}
