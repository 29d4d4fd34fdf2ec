package applepass

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/feralclo/walletpass/pkg/pass"
	"github.com/feralclo/walletpass/pkg/pngicon"
	"github.com/feralclo/walletpass/pkg/zipstore"
)

const (
	// ContentTypePass is the media type of a single .pkpass archive.
	ContentTypePass = "application/vnd.apple.pkpass"
	// ContentTypeBundle is the media type of a multi-pass .pkpasses archive.
	ContentTypeBundle = "application/vnd.apple.pkpasses"

	iconSize = 87
)

// Artifact is a finished archive ready to hand to the download layer.
type Artifact struct {
	Data        []byte
	ContentType string
	Filename    string
}

// Generator assembles .pkpass archives. Media may be nil when the tenant
// has no internal media storage; image references then resolve only as data
// URIs or absolute URLs.
type Generator struct {
	Config Config
	Media  pass.MediaStore
}

// Generate builds the wallet artifact for an order's tickets. One ticket
// yields a single .pkpass; several yield a .pkpasses bundle whose members
// are each independently manifested and signed. A ticket that fails is
// logged and dropped from the bundle rather than failing the order; if
// nothing can be generated the error reports why.
//
// ErrNotConfigured (possibly wrapped) means the Apple path is unavailable
// for this tenant; treat it as "no artifact", not as a failure.
func (g *Generator) Generate(ctx context.Context, tickets []pass.TicketData, settings pass.VisualSettings) (*Artifact, error) {
	if len(tickets) == 0 {
		return nil, errors.New("no tickets supplied")
	}

	creds, err := LoadCredentials(ctx, g.Config)
	if err != nil {
		return nil, err
	}

	if len(tickets) == 1 {
		data, err := g.buildPass(ctx, tickets[0], settings, creds)
		if err != nil {
			return nil, err
		}
		return &Artifact{
			Data:        data,
			ContentType: ContentTypePass,
			Filename:    tickets[0].Code + ".pkpass",
		}, nil
	}

	var members []zipstore.Entry
	for _, t := range tickets {
		data, err := g.buildPass(ctx, t, settings, creds)
		if err != nil {
			log.Warn().Err(err).Str("ticket", t.Code).Msg("skipping ticket in wallet bundle")
			continue
		}
		members = append(members, zipstore.Entry{Name: t.Code + ".pkpass", Data: data})
	}
	if len(members) == 0 {
		return nil, errors.New("no passes could be generated for this order")
	}

	data, err := zipstore.Archive(members)
	if err != nil {
		return nil, fmt.Errorf("failed to assemble pass bundle: %w", err)
	}
	return &Artifact{
		Data:        data,
		ContentType: ContentTypeBundle,
		Filename:    tickets[0].OrderNumber + "-tickets.pkpasses",
	}, nil
}

// buildPass produces one complete, signed .pkpass archive.
func (g *Generator) buildPass(ctx context.Context, t pass.TicketData, settings pass.VisualSettings, creds *Credentials) ([]byte, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}

	def := BuildDefinition(t, settings)
	def.PassTypeIdentifier = creds.PassTypeID
	def.TeamIdentifier = creds.TeamID

	passJSON, err := json.MarshalIndent(def, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal pass.json: %w", err)
	}

	entries := []zipstore.Entry{{Name: "pass.json", Data: passJSON}}

	icon, err := resolveIcon(ctx, settings, g.Media)
	if err != nil {
		return nil, err
	}
	// Apple accepts the same pixels for the base and @2x slots.
	entries = append(entries,
		zipstore.Entry{Name: "icon.png", Data: icon},
		zipstore.Entry{Name: "icon@2x.png", Data: icon},
	)
	if logo := pass.FetchImage(ctx, settings.LogoRef, g.Media); logo != nil {
		entries = append(entries,
			zipstore.Entry{Name: "logo.png", Data: logo},
			zipstore.Entry{Name: "logo@2x.png", Data: logo},
		)
	}
	if strip := pass.FetchImage(ctx, settings.StripRef, g.Media); strip != nil {
		entries = append(entries,
			zipstore.Entry{Name: "strip.png", Data: strip},
			zipstore.Entry{Name: "strip@2x.png", Data: strip},
		)
	}

	manifest := BuildManifest(entries)
	manifestJSON, err := MarshalManifest(manifest)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal manifest: %w", err)
	}

	signature, err := SignManifest(manifestJSON, creds)
	if err != nil {
		return nil, fmt.Errorf("failed to sign manifest: %w", err)
	}

	entries = append(entries,
		zipstore.Entry{Name: "manifest.json", Data: manifestJSON},
		zipstore.Entry{Name: "signature", Data: signature},
	)
	return zipstore.Archive(entries)
}

// resolveIcon uses the tenant logo when one resolves, otherwise a flat tile
// in the pass background colour.
func resolveIcon(ctx context.Context, settings pass.VisualSettings, media pass.MediaStore) ([]byte, error) {
	if logo := pass.FetchImage(ctx, settings.LogoRef, media); logo != nil {
		return logo, nil
	}
	r, g, b, err := pass.ParseHexColor(settings.BackgroundColor)
	if err != nil {
		r, g, b = 10, 10, 10
	}
	icon, err := pngicon.Flat(r, g, b, iconSize)
	if err != nil {
		return nil, fmt.Errorf("failed to generate placeholder icon: %w", err)
	}
	return icon, nil
}
