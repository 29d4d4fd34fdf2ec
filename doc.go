// Package main provides the walletpass CLI for generating wallet passes.
//
// For the library API, see the provider subpackages:
//
//	import "github.com/feralclo/walletpass/pkg/applepass"
//	import "github.com/feralclo/walletpass/pkg/googlepass"
//
// # Installation
//
// Install the CLI:
//
//	go install github.com/feralclo/walletpass@latest
package main
