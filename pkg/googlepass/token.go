package googlepass

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jws"
	"github.com/rs/zerolog/log"

	"github.com/feralclo/walletpass/pkg/pass"
)

// SaveURLPrefix is where every save link points; the token follows it.
const SaveURLPrefix = "https://pay.google.com/gp/v/save/"

// savePayload is the object container inside the token payload.
type savePayload struct {
	EventTicketObjects []*Object `json:"eventTicketObjects"`
}

// saveClaims is the "save to wallet" JWT claim set.
type saveClaims struct {
	Iss     string      `json:"iss"`
	Aud     string      `json:"aud"`
	Typ     string      `json:"typ"`
	Iat     int64       `json:"iat"`
	Origins []string    `json:"origins,omitempty"`
	Payload savePayload `json:"payload"`
}

// BuildSaveURL builds one pass object per ticket, embeds them in a signed
// save token and returns the full save link. Signing is RS256 over the
// base64url header and payload, exactly the compact JWS serialization.
//
// A missing issuer id or service-account key returns ErrNotConfigured; a
// ticket that cannot be mapped is logged and skipped, and the call fails
// only when no object could be built.
func BuildSaveURL(tickets []pass.TicketData, settings pass.VisualSettings, cfg Config) (string, error) {
	if len(tickets) == 0 {
		return "", fmt.Errorf("no tickets supplied")
	}
	if !cfg.Configured() {
		return "", ErrNotConfigured
	}

	account, err := ParseServiceAccount(cfg.ServiceAccountKey)
	if err != nil {
		log.Error().Err(err).Msg("google service account key is present but unusable")
		return "", fmt.Errorf("parsing service account: %v: %w", err, ErrNotConfigured)
	}

	var objects []*Object
	for _, t := range tickets {
		obj, err := BuildObject(t, settings, cfg)
		if err != nil {
			log.Warn().Err(err).Str("ticket", t.Code).Msg("skipping ticket in google wallet token")
			continue
		}
		objects = append(objects, obj)
	}
	if len(objects) == 0 {
		return "", fmt.Errorf("no pass objects could be built for this order")
	}

	claims := saveClaims{
		Iss:     account.ClientEmail,
		Aud:     "google",
		Typ:     "savetowallet",
		Iat:     time.Now().Unix(),
		Payload: savePayload{EventTicketObjects: objects},
	}
	if cfg.SiteOrigin != "" {
		claims.Origins = []string{cfg.SiteOrigin}
	}
	payload, err := json.Marshal(claims)
	if err != nil {
		return "", fmt.Errorf("failed to marshal token claims: %w", err)
	}

	headers := jws.NewHeaders()
	if err := headers.Set(jws.TypeKey, "JWT"); err != nil {
		return "", err
	}
	token, err := jws.Sign(payload, jws.WithKey(jwa.RS256, account.PrivateKey, jws.WithProtectedHeaders(headers)))
	if err != nil {
		return "", fmt.Errorf("failed to sign save token: %w", err)
	}
	return SaveURLPrefix + string(token), nil
}
