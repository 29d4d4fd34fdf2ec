package googlepass

import (
	"fmt"
	"strings"
	"time"

	"github.com/feralclo/walletpass/pkg/pass"
)

// BuildObject maps a ticket and the merged visual settings to an
// event-ticket object with its class inlined.
func BuildObject(t pass.TicketData, s pass.VisualSettings, cfg Config) (*Object, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	if cfg.IssuerID == "" {
		return nil, ErrNotConfigured
	}

	classID := cfg.IssuerID + "." + s.GoogleClassSuffix
	class := &Class{
		ID:           classID,
		IssuerName:   s.OrganizationName,
		EventName:    localized(t.EventName),
		ReviewStatus: reviewStatusUnder,
	}
	if t.VenueName != "" {
		venue := localized(t.VenueName)
		class.Venue = &EventVenue{Name: &venue}
	}
	if ts, ok := t.ParsedEventDate(); ok {
		class.DateTime = &EventDateTime{Start: ts.Format(time.RFC3339)}
	}
	if hex := normalizeHex(s.BackgroundColor); hex != "" {
		class.HexBackgroundColor = hex
	}
	if uri := cfg.absoluteURL(s.LogoRef); uri != "" {
		class.Logo = &Image{SourceURI: ImageURI{URI: uri}}
	}

	obj := &Object{
		ID:             cfg.IssuerID + "." + sanitizeID(t.SerialNumber()),
		ClassID:        classID,
		ClassReference: class,
		State:          objectStateActive,
		Barcode:        Barcode{Type: barcodeTypeQR, Value: t.Code},
	}
	if hex := normalizeHex(s.BackgroundColor); hex != "" {
		obj.HexBackgroundColor = hex
	}

	if t.TicketType != "" {
		obj.TextModulesData = append(obj.TextModulesData, TextModule{Header: "Ticket", Body: t.TicketType})
	}
	if merch := t.MerchLine(); merch != "" {
		obj.TextModulesData = append(obj.TextModulesData, TextModule{Header: "Includes", Body: merch})
	}
	if s.DisplayHolderName() && t.HolderName != "" {
		obj.TextModulesData = append(obj.TextModulesData, TextModule{Header: "Ticket holder", Body: t.HolderName})
	}
	if s.DisplayOrderNumber() {
		obj.TextModulesData = append(obj.TextModulesData, TextModule{Header: "Order", Body: t.OrderNumber})
	}
	return obj, nil
}

func localized(value string) LocalizedString {
	return LocalizedString{DefaultValue: TranslatedString{Language: defaultLanguage, Value: value}}
}

// sanitizeID maps a serial number onto Google's object-ID alphabet
// (alphanumerics plus '.', '_', '-').
func sanitizeID(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.' || r == '_' || r == '-':
			return r
		default:
			return '_'
		}
	}, s)
}

// normalizeHex returns a "#rrggbb" colour or empty when unparseable.
func normalizeHex(hex string) string {
	r, g, b, err := pass.ParseHexColor(hex)
	if err != nil {
		return ""
	}
	return fmt.Sprintf("#%02x%02x%02x", r, g, b)
}
