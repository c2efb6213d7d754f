// Package main provides the entry point for the CipherGuard2 CLI.
//
// Usage:
//
//	cipherguard2 [-v|--verbose]
//
// See --help for all available options.
package main

func main() {
	Execute()
}
