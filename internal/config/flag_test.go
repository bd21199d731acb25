package config

import (
	"flag"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {

	// Test cases
	tests := []struct {
		expected    *Config
		name        string
		args        []string
		expectPanic bool
	}{
		{name: "Test1 OK", args: []string{"cmd",
			"-d", "local.db", "-o", "/data/evidence", "-r", "postgres://remote/db",
			"-u", "user", "-p", "password", "-b", "bucket", "-g", "us-west-1", "-e", "http://endpoint",
			"-i", "15", "-s", "http://speech", "-l", "http://llm",
		}, expectPanic: false,
			expected: &Config{
				DatabaseDSN:      "local.db",
				EvidenceDir:      "/data/evidence",
				RemoteDSN:        "postgres://remote/db",
				S3AccessKey:      "user",
				S3SecretKey:      "password",
				S3Bucket:         "bucket",
				S3Region:         "us-west-1",
				S3BaseEndpoint:   "http://endpoint",
				SyncPollInterval: 15 * time.Second,
				SpeechEndpoint:   "http://speech",
				CaptionEndpoint:  "http://llm",
			}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flag.CommandLine = flag.NewFlagSet(os.Args[0], flag.PanicOnError)

			os.Args = tt.args

			config := &Config{}

			if !tt.expectPanic {
				require.NotPanics(t, func() { parseFlags(config) })
				assert.Equal(t, tt.expected, config)
			} else {
				require.Panics(t, func() { parseFlags(config) })
			}
		})
	}
}
