package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/sitescribe/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-d string   SQLite DSN of the local evidence database
//	-o string   evidence directory for recordings and photos
//	-r string   PostgreSQL DSN of the remote document store
//	-u string   S3 access key
//	-p string   S3 secret key
//	-b string   S3 bucket name
//	-g string   S3 region
//	-e string   S3 base endpoint (e.g., "http://127.0.0.1:9000/")
//	-i int      sync worker poll interval in seconds
//	-s string   speech-to-text endpoint
//	-l string   caption language-service endpoint
//
// Notes:
//   - The function first filters os.Args to only the flags it recognizes using
//     flagx.FilterArgs, avoiding collisions with other components.
//   - Duration flags are accepted as integers in seconds and then converted
//     to time.Duration values.
func parseFlags(config *Config) {
	// Filter args to include only the flags handled here.
	args := flagx.FilterArgs(os.Args[1:], []string{"-d", "-o", "-r", "-u", "-p", "-b", "-g", "-e", "-i", "-s", "-l"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "local evidence database DSN")
	fs.StringVar(&config.EvidenceDir, "o", config.EvidenceDir, "evidence directory")
	fs.StringVar(&config.RemoteDSN, "r", config.RemoteDSN, "remote document store DSN")

	fs.StringVar(&config.S3AccessKey, "u", config.S3AccessKey, "S3 access key")
	fs.StringVar(&config.S3SecretKey, "p", config.S3SecretKey, "S3 secret key")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")

	syncPollInterval := fs.Int("i", int(config.SyncPollInterval.Seconds()), "sync poll interval (in seconds)")

	fs.StringVar(&config.SpeechEndpoint, "s", config.SpeechEndpoint, "speech-to-text endpoint")
	fs.StringVar(&config.CaptionEndpoint, "l", config.CaptionEndpoint, "caption service endpoint")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.SyncPollInterval = time.Duration(*syncPollInterval) * time.Second
}
