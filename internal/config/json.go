package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/sitescribe/internal/flagx"
	"github.com/dmitrijs2005/sitescribe/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling.
// It relies on timex.Duration so JSON can specify intervals either as
// strings like "5s" or as integer nanoseconds. After parsing, values
// are copied into the runtime Config (which uses time.Duration).
type JsonConfig struct {
	DatabaseDSN      string         `json:"database_dsn"`
	EvidenceDir      string         `json:"evidence_dir"`
	RemoteDSN        string         `json:"remote_dsn"`
	S3AccessKey      string         `json:"s3_access_key"`
	S3SecretKey      string         `json:"s3_secret_key"`
	S3Bucket         string         `json:"s3_bucket"`
	S3Region         string         `json:"s3_region"`
	S3BaseEndpoint   string         `json:"s3_base_endpoint"`
	SyncPollInterval timex.Duration `json:"sync_poll_interval"`
	SyncBatchSize    int            `json:"sync_batch_size"`
	SpeechEndpoint   string         `json:"speech_endpoint"`
	SpeechAPIKey     string         `json:"speech_api_key"`
	SpeechModel      string         `json:"speech_model"`
	CaptionEndpoint  string         `json:"caption_endpoint"`
	CaptionAPIKey    string         `json:"caption_api_key"`
	CaptionModel     string         `json:"caption_model"`
	CaptionBatchSize int            `json:"caption_batch_size"`
	CaptionCooldown  timex.Duration `json:"caption_cooldown"`
}

// parseJson overlays Config with values loaded from a JSON file.
//
// Lookup order for the JSON file path:
//  1. Command-line flags (-c or -config) via flagx.JsonConfigFlags().
//  2. If empty, no JSON is loaded and the function returns.
//
// Behavior:
//   - Reads and unmarshals the JSON into JsonConfig.
//   - Copies known fields into the provided Config.
//   - Panics on read or unmarshal errors (caller should recover if desired).
//
// Intended usage is: defaults -> parseJson -> parseFlags, where later stages
// override earlier ones.
func parseJson(config *Config) {

	// try flags
	jsonConfigFile := flagx.JsonConfigFlags()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	err = json.Unmarshal(file, c)
	if err != nil {
		panic(err)
	}

	config.DatabaseDSN = c.DatabaseDSN
	config.EvidenceDir = c.EvidenceDir
	config.RemoteDSN = c.RemoteDSN
	config.S3AccessKey = c.S3AccessKey
	config.S3SecretKey = c.S3SecretKey
	config.S3Bucket = c.S3Bucket
	config.S3Region = c.S3Region
	config.S3BaseEndpoint = c.S3BaseEndpoint
	config.SyncPollInterval = time.Duration(c.SyncPollInterval.Duration)
	config.SyncBatchSize = c.SyncBatchSize
	config.SpeechEndpoint = c.SpeechEndpoint
	config.SpeechAPIKey = c.SpeechAPIKey
	config.SpeechModel = c.SpeechModel
	config.CaptionEndpoint = c.CaptionEndpoint
	config.CaptionAPIKey = c.CaptionAPIKey
	config.CaptionModel = c.CaptionModel
	config.CaptionBatchSize = c.CaptionBatchSize
	config.CaptionCooldown = time.Duration(c.CaptionCooldown.Duration)
}
