// Package pass holds the data model shared by the Apple and Google pass
// generators: the per-ticket input record, the tenant-scoped visual
// settings, and the image resolution helper.
package pass

import (
	"fmt"
	"strconv"
	"strings"
)

// VisualSettings is the tenant-scoped customization record. Every field has
// a default (see DefaultSettings); caller-supplied values override defaults
// field by field via MergeSettings. The three display toggles are pointers
// so that an explicit false survives the merge.
type VisualSettings struct {
	OrganizationName string `json:"organizationName,omitempty"`
	Description      string `json:"description,omitempty"`

	// Colours are hex strings, "#rgb" or "#rrggbb".
	TextColor       string `json:"textColor,omitempty"`
	BackgroundColor string `json:"backgroundColor,omitempty"`
	LabelColor      string `json:"labelColor,omitempty"`

	// Image references: data URI, absolute URL, or internal media key.
	LogoRef  string `json:"logoRef,omitempty"`
	StripRef string `json:"stripRef,omitempty"`

	ShowHolderName  *bool  `json:"showHolderName,omitempty"`
	ShowOrderNumber *bool  `json:"showOrderNumber,omitempty"`
	ShowTerms       *bool  `json:"showTerms,omitempty"`
	TermsText       string `json:"termsText,omitempty"`

	ApplePassTypeID   string `json:"applePassTypeId,omitempty"`
	AppleTeamID       string `json:"appleTeamId,omitempty"`
	GoogleIssuerID    string `json:"googleIssuerId,omitempty"`
	GoogleClassSuffix string `json:"googleClassSuffix,omitempty"`
}

// DefaultSettings returns the baseline applied underneath every tenant's
// overrides.
func DefaultSettings() VisualSettings {
	yes := true
	return VisualSettings{
		OrganizationName:  "FERAL PRESENTS",
		Description:       "Event ticket",
		TextColor:         "#ffffff",
		BackgroundColor:   "#0a0a0a",
		LabelColor:        "#9ca3af",
		ShowHolderName:    &yes,
		ShowOrderNumber:   &yes,
		ShowTerms:         &yes,
		GoogleClassSuffix: "event-ticket",
	}
}

// MergeSettings lays overrides on top of the defaults. The merge is flat:
// a non-empty string or non-nil toggle wins, everything else keeps its
// default.
func MergeSettings(overrides VisualSettings) VisualSettings {
	merged := DefaultSettings()
	if overrides.OrganizationName != "" {
		merged.OrganizationName = overrides.OrganizationName
	}
	if overrides.Description != "" {
		merged.Description = overrides.Description
	}
	if overrides.TextColor != "" {
		merged.TextColor = overrides.TextColor
	}
	if overrides.BackgroundColor != "" {
		merged.BackgroundColor = overrides.BackgroundColor
	}
	if overrides.LabelColor != "" {
		merged.LabelColor = overrides.LabelColor
	}
	if overrides.LogoRef != "" {
		merged.LogoRef = overrides.LogoRef
	}
	if overrides.StripRef != "" {
		merged.StripRef = overrides.StripRef
	}
	if overrides.ShowHolderName != nil {
		merged.ShowHolderName = overrides.ShowHolderName
	}
	if overrides.ShowOrderNumber != nil {
		merged.ShowOrderNumber = overrides.ShowOrderNumber
	}
	if overrides.ShowTerms != nil {
		merged.ShowTerms = overrides.ShowTerms
	}
	if overrides.TermsText != "" {
		merged.TermsText = overrides.TermsText
	}
	if overrides.ApplePassTypeID != "" {
		merged.ApplePassTypeID = overrides.ApplePassTypeID
	}
	if overrides.AppleTeamID != "" {
		merged.AppleTeamID = overrides.AppleTeamID
	}
	if overrides.GoogleIssuerID != "" {
		merged.GoogleIssuerID = overrides.GoogleIssuerID
	}
	if overrides.GoogleClassSuffix != "" {
		merged.GoogleClassSuffix = overrides.GoogleClassSuffix
	}
	return merged
}

// DisplayHolderName reports the toggle with its default applied.
func (s VisualSettings) DisplayHolderName() bool { return s.ShowHolderName == nil || *s.ShowHolderName }

// DisplayOrderNumber reports the toggle with its default applied.
func (s VisualSettings) DisplayOrderNumber() bool {
	return s.ShowOrderNumber == nil || *s.ShowOrderNumber
}

// DisplayTerms reports whether a terms back field should be emitted: the
// toggle must be on and there must be terms text to show.
func (s VisualSettings) DisplayTerms() bool {
	return (s.ShowTerms == nil || *s.ShowTerms) && s.TermsText != ""
}

// ParseHexColor parses "#rgb" or "#rrggbb" (leading # optional) into its
// components.
func ParseHexColor(hex string) (r, g, b uint8, err error) {
	h := strings.TrimPrefix(strings.TrimSpace(hex), "#")
	switch len(h) {
	case 3:
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	case 6:
	default:
		return 0, 0, 0, fmt.Errorf("invalid hex colour %q", hex)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("invalid hex colour %q", hex)
	}
	return uint8(v >> 16), uint8(v >> 8), uint8(v), nil
}

// HexToRGB converts a hex colour to the "rgb(r,g,b)" textual form Apple
// passes use. Unparseable input falls back to white.
func HexToRGB(hex string) string {
	r, g, b, err := ParseHexColor(hex)
	if err != nil {
		return "rgb(255,255,255)"
	}
	return fmt.Sprintf("rgb(%d,%d,%d)", r, g, b)
}
