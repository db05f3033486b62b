package config

import (
	"flag"
	"os"
	"time"

	"github.com/dkrasnov/flashread/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   base URL of the sync backend (default from Config)
//	-d string   path of the local database file (default from Config)
//	-w int      presentation pace in words per minute (default from Config)
//	-p int      punctuation pause in milliseconds (default from Config)
//
// Note: The function filters os.Args to only include the flags it knows about,
// using flagx.FilterArgs, to avoid interference with other components.
func parseFlags(cfg *Config) {
	// Filter args to include only those handled here.
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-w", "-p"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerEndpointAddr, "a", cfg.ServerEndpointAddr, "base URL of the sync backend")
	fs.StringVar(&cfg.DatabasePath, "d", cfg.DatabasePath, "path of the local database file")
	fs.IntVar(&cfg.WPM, "w", cfg.WPM, "presentation pace in words per minute")
	punctuationPause := fs.Int("p", int(cfg.PunctuationPause.Milliseconds()), "punctuation pause (in milliseconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.PunctuationPause = time.Duration(*punctuationPause) * time.Millisecond
}
