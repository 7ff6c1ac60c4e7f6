package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix prefixes every variable, e.g. VIBIN_PORT, VIBIN_STORE_DRIVER.
const EnvPrefix = "VIBIN"

// Store drivers
const (
	StoreDynamo = "dynamo"
	StoreMemory = "memory"
)

// Change feeds
const (
	FeedLocal = "local"
	FeedRedis = "redis"
)

// Config holds the service configuration, parsed from VIBIN_ variables.
type Config struct {
	Port      int    `envconfig:"PORT" default:"8080"`
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogPretty bool   `envconfig:"LOG_PRETTY" default:"false"`

	StoreDriver string `envconfig:"STORE_DRIVER" default:"dynamo"`
	ChangeFeed  string `envconfig:"CHANGE_FEED" default:"local"`

	// AWS
	AWSRegion      string `envconfig:"AWS_REGION" default:"us-east-1"`
	DynamoEndpoint string `envconfig:"DYNAMO_ENDPOINT"`

	UsersTable         string `envconfig:"USERS_TABLE" default:"Users"`
	SwipesTable        string `envconfig:"SWIPES_TABLE" default:"Swipes"`
	ThreadsTable       string `envconfig:"THREADS_TABLE" default:"MatchThreads"`
	MessagesTable      string `envconfig:"MESSAGES_TABLE" default:"Messages"`
	NotificationsTable string `envconfig:"NOTIFICATIONS_TABLE" default:"Notifications"`

	// Photos stored as S3 keys are served through presigned URLs when a
	// bucket is set.
	S3Bucket        string        `envconfig:"S3_BUCKET_NAME"`
	PhotoURLTTL     time.Duration `envconfig:"PHOTO_URL_TTL" default:"15m"`
	NotificationTTL time.Duration `envconfig:"NOTIFICATION_TTL" default:"168h"`

	// Redis change feed
	RedisAddr     string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD"`
	RedisChannel  string `envconfig:"REDIS_CHANNEL" default:"vibin:changes"`

	CORSOrigins     []string      `envconfig:"CORS_ORIGINS" default:"*"`
	RequestTimeout  time.Duration `envconfig:"REQUEST_TIMEOUT" default:"5s"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
}

// Validate rejects unknown drivers and nonsensical durations.
func (c *Config) Validate() error {
	c.StoreDriver = strings.ToLower(c.StoreDriver)
	c.ChangeFeed = strings.ToLower(c.ChangeFeed)

	switch c.StoreDriver {
	case StoreDynamo, StoreMemory:
	default:
		return fmt.Errorf("unsupported STORE_DRIVER: %s", c.StoreDriver)
	}
	switch c.ChangeFeed {
	case FeedLocal, FeedRedis:
	default:
		return fmt.Errorf("unsupported CHANGE_FEED: %s", c.ChangeFeed)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid PORT: %d", c.Port)
	}
	if c.NotificationTTL <= 0 {
		return fmt.Errorf("NOTIFICATION_TTL must be positive")
	}
	return nil
}

// New parses the environment into a validated Config.
func New() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
