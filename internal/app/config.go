package app

import (
	"github.com/yungbote/walsgraph/internal/platform/envutil"
	"github.com/yungbote/walsgraph/internal/wals"
)

// Config holds the pipeline settings read from the environment. Service
// credentials (Neo4j, OpenAI, Redis) are read by their own clients.
type Config struct {
	Mode string

	DataDir      string
	OutputDir    string
	BatchSize    int
	DownloadBase string
	FeaturesFile string

	PreserveGraph bool
}

func LoadConfig() Config {
	return Config{
		Mode:          envutil.Str("APP_MODE", "dev"),
		DataDir:       envutil.Str("WALS_DATA_DIR", "data"),
		OutputDir:     envutil.Str("WALS_OUTPUT_DIR", "output"),
		BatchSize:     envutil.Int("WALS_BATCH_SIZE", wals.DefaultBatchSize),
		DownloadBase:  envutil.Str("WALS_DOWNLOAD_BASE_URL", wals.DefaultCLDFBaseURL),
		FeaturesFile:  envutil.Str("WALS_FEATURES_FILE", ""),
		PreserveGraph: envutil.Bool("WALS_PRESERVE_GRAPH", false),
	}
}
