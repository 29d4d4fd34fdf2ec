package googlepass

import (
	"crypto/rsa"
	"encoding/json"
	"errors"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jws"

	"github.com/feralclo/walletpass/pkg/pass"
)

var saveURLPattern = regexp.MustCompile(`^https://pay\.google\.com/gp/v/save/[A-Za-z0-9_-]+\.[A-Za-z0-9_-]+\.[A-Za-z0-9_-]+$`)

func signingConfig(t *testing.T) (Config, *rsa.PrivateKey) {
	t.Helper()

	blob, key := serviceAccountJSON(t, "issuer@test.iam.gserviceaccount.com")
	return Config{
		IssuerID:          "3388000000012345",
		ServiceAccountKey: blob,
		SiteOrigin:        "https://tickets.example.com",
	}, key
}

func TestBuildSaveURLShape(t *testing.T) {
	cfg, _ := signingConfig(t)
	url, err := BuildSaveURL([]pass.TicketData{sampleTicket()}, pass.DefaultSettings(), cfg)
	if err != nil {
		t.Fatalf("BuildSaveURL failed: %v", err)
	}
	if !saveURLPattern.MatchString(url) {
		t.Errorf("save URL %q does not match the expected shape", url)
	}
}

func TestBuildSaveURLTokenVerifies(t *testing.T) {
	cfg, key := signingConfig(t)
	url, err := BuildSaveURL([]pass.TicketData{sampleTicket()}, pass.DefaultSettings(), cfg)
	if err != nil {
		t.Fatal(err)
	}

	token := strings.TrimPrefix(url, SaveURLPrefix)
	payload, err := jws.Verify([]byte(token), jws.WithKey(jwa.RS256, &key.PublicKey))
	if err != nil {
		t.Fatalf("token does not verify with the service account public key: %v", err)
	}

	var claims saveClaims
	if err := json.Unmarshal(payload, &claims); err != nil {
		t.Fatalf("claims do not parse: %v", err)
	}
	if claims.Iss != "issuer@test.iam.gserviceaccount.com" {
		t.Errorf("iss %q", claims.Iss)
	}
	if claims.Aud != "google" {
		t.Errorf("aud %q", claims.Aud)
	}
	if claims.Typ != "savetowallet" {
		t.Errorf("typ %q", claims.Typ)
	}
	if now := time.Now().Unix(); claims.Iat < now-60 || claims.Iat > now+60 {
		t.Errorf("iat %d is not near now", claims.Iat)
	}
	if len(claims.Origins) != 1 || claims.Origins[0] != "https://tickets.example.com" {
		t.Errorf("origins %v", claims.Origins)
	}
	if len(claims.Payload.EventTicketObjects) != 1 {
		t.Fatalf("payload has %d objects", len(claims.Payload.EventTicketObjects))
	}
	obj := claims.Payload.EventTicketObjects[0]
	if obj.ID != "3388000000012345.FERAL-00001-FERAL-A1B2C3D4" {
		t.Errorf("object id %q", obj.ID)
	}
	if obj.Barcode.Value != "FERAL-A1B2C3D4" {
		t.Errorf("barcode value %q", obj.Barcode.Value)
	}
}

func TestBuildSaveURLHeader(t *testing.T) {
	cfg, _ := signingConfig(t)
	url, err := BuildSaveURL([]pass.TicketData{sampleTicket()}, pass.DefaultSettings(), cfg)
	if err != nil {
		t.Fatal(err)
	}

	token := strings.TrimPrefix(url, SaveURLPrefix)
	msg, err := jws.ParseString(token)
	if err != nil {
		t.Fatalf("token does not parse as JWS: %v", err)
	}
	sigs := msg.Signatures()
	if len(sigs) != 1 {
		t.Fatalf("expected 1 signature, got %d", len(sigs))
	}
	headers := sigs[0].ProtectedHeaders()
	if headers.Algorithm() != jwa.RS256 {
		t.Errorf("alg %v", headers.Algorithm())
	}
	if headers.Type() != "JWT" {
		t.Errorf("typ header %q", headers.Type())
	}
}

func TestBuildSaveURLMultipleTickets(t *testing.T) {
	cfg, key := signingConfig(t)
	tickets := []pass.TicketData{
		{Code: "FERAL-AAAA0001", EventName: "Night One", OrderNumber: "FERAL-00042"},
		{Code: "FERAL-BBBB0002", EventName: "Night One", OrderNumber: "FERAL-00042"},
		{OrderNumber: "FERAL-00042"}, // invalid, dropped
	}
	url, err := BuildSaveURL(tickets, pass.DefaultSettings(), cfg)
	if err != nil {
		t.Fatal(err)
	}

	payload, err := jws.Verify([]byte(strings.TrimPrefix(url, SaveURLPrefix)), jws.WithKey(jwa.RS256, &key.PublicKey))
	if err != nil {
		t.Fatal(err)
	}
	var claims saveClaims
	if err := json.Unmarshal(payload, &claims); err != nil {
		t.Fatal(err)
	}
	if len(claims.Payload.EventTicketObjects) != 2 {
		t.Errorf("payload has %d objects, expected the 2 valid tickets", len(claims.Payload.EventTicketObjects))
	}
}

func TestBuildSaveURLUnavailable(t *testing.T) {
	tickets := []pass.TicketData{sampleTicket()}
	settings := pass.DefaultSettings()

	for name, cfg := range map[string]Config{
		"empty":   {},
		"no key":  {IssuerID: "3388000000012345"},
		"no id":   {ServiceAccountKey: []byte("{}")},
		"bad key": {IssuerID: "3388000000012345", ServiceAccountKey: []byte("not a key")},
	} {
		_, err := BuildSaveURL(tickets, settings, cfg)
		if !errors.Is(err, ErrNotConfigured) {
			t.Errorf("%s: error = %v, expected ErrNotConfigured", name, err)
		}
	}
}

func TestBuildSaveURLNoTickets(t *testing.T) {
	cfg, _ := signingConfig(t)
	if _, err := BuildSaveURL(nil, pass.DefaultSettings(), cfg); err == nil {
		t.Error("expected an error for an empty ticket list")
	}
}

func TestBuildSaveURLAllTicketsInvalid(t *testing.T) {
	cfg, _ := signingConfig(t)
	tickets := []pass.TicketData{{OrderNumber: "FERAL-00001"}}
	if _, err := BuildSaveURL(tickets, pass.DefaultSettings(), cfg); err == nil {
		t.Error("expected an error when no object can be built")
	}
}
