// Package cli implements the interactive FlashRead command line client:
// a small REPL over the local library, the presentation engine and the
// sync services.
package cli
