package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/docopt/docopt-go"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/feralclo/walletpass/pkg/applepass"
	"github.com/feralclo/walletpass/pkg/googlepass"
	"github.com/feralclo/walletpass/pkg/pass"
)

const version = "1.0.0"

const usage = `walletpass - Apple & Google Wallet pass generator

Generates signed Apple Wallet (.pkpass/.pkpasses) archives and Google Wallet
save links from ticket data.

Usage:
  walletpass apple --tickets=<path> [--settings=<path>] [--output=<path>]
  walletpass google --tickets=<path> [--settings=<path>]
  walletpass status [--settings=<path>]
  walletpass -h | --help
  walletpass --version

Commands:
  apple     Build a .pkpass (one ticket) or .pkpasses bundle (several) and
            write it to --output
  google    Build a Google Wallet save URL and print it
  status    Report which wallet providers are configured

Options:
  --tickets=<path>   Path to a JSON file holding a ticket object or an array
                     of ticket objects
  --settings=<path>  Path to a JSON file with visual settings overrides
  --output=<path>    Output path (defaults to the pass filename convention)
  -h --help          Show this help message
  --version          Show version

Environment Variables:
  WALLETPASS_APPLE_CERT           Path to the signer bundle (PKCS#12 or PEM)
  WALLETPASS_APPLE_CERT_PASSWORD  Password for a PKCS#12 bundle
  WALLETPASS_APPLE_CERT_FORMAT    Force bundle format: p12 or pem
  WALLETPASS_APPLE_WWDR           Path to a WWDR intermediate override
  WALLETPASS_APPLE_PASS_TYPE_ID   Apple pass type identifier
  WALLETPASS_APPLE_TEAM_ID        Apple team identifier
  WALLETPASS_GOOGLE_ISSUER_ID     Google Wallet issuer id
  WALLETPASS_GOOGLE_KEY           Path to the service-account key (JSON,
                                  optionally base64-wrapped)
  WALLETPASS_SITE_ORIGIN          Origin used to absolutize image URLs
  WALLETPASS_LOG                  Log level (debug, info, warn, error)

Examples:
  # Single ticket to a .pkpass
  walletpass apple --tickets=ticket.json --settings=tenant.json

  # Whole order to a .pkpasses bundle
  walletpass apple --tickets=order-tickets.json --output=order.pkpasses

  # Google Wallet save link
  walletpass google --tickets=ticket.json
`

func main() {
	godotenv.Load()
	setupLogging()

	opts, err := docopt.ParseArgs(usage, os.Args[1:], version)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing arguments: %v\n", err)
		os.Exit(1)
	}

	var runErr error
	switch {
	case command(opts, "apple"):
		runErr = runApple(opts)
	case command(opts, "google"):
		runErr = runGoogle(opts)
	case command(opts, "status"):
		runErr = runStatus(opts)
	}
	if runErr != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", runErr)
		os.Exit(1)
	}
}

func command(opts docopt.Opts, name string) bool {
	v, _ := opts.Bool(name)
	return v
}

func setupLogging() {
	level, err := zerolog.ParseLevel(strings.ToLower(envOr("WALLETPASS_LOG", "info")))
	if err != nil {
		level = zerolog.InfoLevel
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// readFileEnv reads the file named by an env var, returning nil when the
// variable is unset. A set-but-unreadable path is a hard error: silently
// ignoring it would masquerade as "not configured".
func readFileEnv(key string) ([]byte, error) {
	path := os.Getenv(key)
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return data, nil
}

func loadTickets(opts docopt.Opts) ([]pass.TicketData, error) {
	path, _ := opts.String("--tickets")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read tickets file: %w", err)
	}
	// Accept either a single object or an array.
	var tickets []pass.TicketData
	if err := json.Unmarshal(data, &tickets); err != nil {
		var single pass.TicketData
		if err := json.Unmarshal(data, &single); err != nil {
			return nil, fmt.Errorf("tickets file is not a ticket object or array: %w", err)
		}
		tickets = []pass.TicketData{single}
	}
	return tickets, nil
}

func loadSettings(opts docopt.Opts) (pass.VisualSettings, error) {
	path, _ := opts.String("--settings")
	if path == "" {
		return pass.DefaultSettings(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return pass.VisualSettings{}, fmt.Errorf("failed to read settings file: %w", err)
	}
	var overrides pass.VisualSettings
	if err := json.Unmarshal(data, &overrides); err != nil {
		return pass.VisualSettings{}, fmt.Errorf("failed to parse settings file: %w", err)
	}
	return pass.MergeSettings(overrides), nil
}

func appleConfig(settings pass.VisualSettings) (applepass.Config, error) {
	certData, err := readFileEnv("WALLETPASS_APPLE_CERT")
	if err != nil {
		return applepass.Config{}, err
	}
	wwdr, err := readFileEnv("WALLETPASS_APPLE_WWDR")
	if err != nil {
		return applepass.Config{}, err
	}
	return applepass.Config{
		CertificateData:     certData,
		CertificatePassword: os.Getenv("WALLETPASS_APPLE_CERT_PASSWORD"),
		CertificateFormat:   os.Getenv("WALLETPASS_APPLE_CERT_FORMAT"),
		IntermediatePEM:     string(wwdr),
		PassTypeID:          envOr("WALLETPASS_APPLE_PASS_TYPE_ID", settings.ApplePassTypeID),
		TeamID:              envOr("WALLETPASS_APPLE_TEAM_ID", settings.AppleTeamID),
	}, nil
}

func googleConfig(settings pass.VisualSettings) (googlepass.Config, error) {
	key, err := readFileEnv("WALLETPASS_GOOGLE_KEY")
	if err != nil {
		return googlepass.Config{}, err
	}
	return googlepass.Config{
		IssuerID:          envOr("WALLETPASS_GOOGLE_ISSUER_ID", settings.GoogleIssuerID),
		ServiceAccountKey: key,
		SiteOrigin:        os.Getenv("WALLETPASS_SITE_ORIGIN"),
	}, nil
}

func runApple(opts docopt.Opts) error {
	tickets, err := loadTickets(opts)
	if err != nil {
		return err
	}
	settings, err := loadSettings(opts)
	if err != nil {
		return err
	}
	cfg, err := appleConfig(settings)
	if err != nil {
		return err
	}

	gen := &applepass.Generator{Config: cfg}
	artifact, err := gen.Generate(context.Background(), tickets, settings)
	if errors.Is(err, applepass.ErrNotConfigured) {
		return fmt.Errorf("apple wallet is not configured (set WALLETPASS_APPLE_CERT, WALLETPASS_APPLE_PASS_TYPE_ID and WALLETPASS_APPLE_TEAM_ID)")
	}
	if err != nil {
		return err
	}

	output, _ := opts.String("--output")
	if output == "" {
		output = artifact.Filename
	}
	if err := os.WriteFile(output, artifact.Data, 0644); err != nil {
		return fmt.Errorf("failed to write pass: %w", err)
	}
	fmt.Printf("Wrote %s (%s, %d bytes)\n", output, artifact.ContentType, len(artifact.Data))
	return nil
}

func runGoogle(opts docopt.Opts) error {
	tickets, err := loadTickets(opts)
	if err != nil {
		return err
	}
	settings, err := loadSettings(opts)
	if err != nil {
		return err
	}
	cfg, err := googleConfig(settings)
	if err != nil {
		return err
	}

	url, err := googlepass.BuildSaveURL(tickets, settings, cfg)
	if errors.Is(err, googlepass.ErrNotConfigured) {
		return fmt.Errorf("google wallet is not configured (set WALLETPASS_GOOGLE_ISSUER_ID and WALLETPASS_GOOGLE_KEY)")
	}
	if err != nil {
		return err
	}
	fmt.Println(url)
	return nil
}

func runStatus(opts docopt.Opts) error {
	settings, err := loadSettings(opts)
	if err != nil {
		return err
	}
	aCfg, err := appleConfig(settings)
	if err != nil {
		return err
	}
	gCfg, err := googleConfig(settings)
	if err != nil {
		return err
	}

	report := struct {
		Apple  applepass.Status  `json:"apple"`
		Google googlepass.Status `json:"google"`
	}{
		Apple:  aCfg.Report(),
		Google: gCfg.Report(),
	}
	out, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
