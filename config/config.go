package config

import (
	"os"
	"path/filepath"

	"github.com/kelseyhightower/envconfig"
)

// Congestion engine config
const CACHE_TTL_CONGESTION_SECONDS = 3600
const CONGESTION_DEFAULT_BASE_SCORE = 50
const CONGESTION_PER_PERSON_WEIGHT = 2

// Level thresholds (upper bounds, exclusive)
const CONGESTION_LEVEL_LOW_MAX = 30
const CONGESTION_LEVEL_MODERATE_MAX = 60
const CONGESTION_LEVEL_HIGH_MAX = 80

// Visit tracking config
const VISIT_INTENTION_WINDOW_MINUTES = 30
const MIN_STAY_TIME_MINUTES = 5

// Patterns refresher config
const PATTERNS_REFRESHER_SCHEDULE_MINUTES = 60

// Env holds the runtime endpoints, loaded from environment variables.
type Env struct {
	HTTPPort         string `envconfig:"HTTP_PORT" default:"8080"`
	DatabaseURL      string `envconfig:"DATABASE_URL" required:"true"`
	RedisAddr        string `envconfig:"REDIS_ADDR" default:"redis:6379"`
	RedisPassword    string `envconfig:"REDIS_PASSWORD" default:""`
	RedisDB          int    `envconfig:"REDIS_DB" default:"0"`
	AnalyticsAPIBase string `envconfig:"ANALYTICS_API_BASE" default:"http://analytics:9090/api/v1"`
}

// LoadEnv reads the runtime Env from environment variables.
func LoadEnv() (*Env, error) {
	var env Env
	if err := envconfig.Process("", &env); err != nil {
		return nil, err
	}
	return &env, nil
}

// Resources file paths
const RESOURCES_PATH_PREFIX = "resources"
const PATTERNS_SNAPSHOT_RESOURCE = "patterns_snapshot.json"
const VENUES_SEED_RESOURCE = "venues_seed.json"

// BaseDir returns the absolute path of the project root directory
func BaseDir() string {
	// Check if PROJECT_ROOT is set
	if root := os.Getenv("PROJECT_ROOT"); root != "" {
		return root
	}

	// Default to the current working directory
	wd, err := os.Getwd()
	if err != nil {
		panic("Unable to determine working directory: " + err.Error())
	}

	return wd
}

func GetResourcePath(resourceFile string) string {
	return filepath.Join(BaseDir(), RESOURCES_PATH_PREFIX, resourceFile)
}
