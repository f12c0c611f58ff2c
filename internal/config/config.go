package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/jittakal/kafanalytics/internal/events"
	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	Kafka     KafkaConfig     `mapstructure:"kafka"`
	Topics    TopicsConfig    `mapstructure:"topics"`
	Generator GeneratorConfig `mapstructure:"generator"`
	Event     EventConfig     `mapstructure:"event"`
}

// KafkaConfig represents Kafka connection configuration
type KafkaConfig struct {
	Brokers          []string       `mapstructure:"brokers"`
	SecurityProtocol string         `mapstructure:"securityProtocol"` // PLAINTEXT, SASL_SSL, SASL_PLAINTEXT
	SASLMechanism    string         `mapstructure:"saslMechanism"`    // PLAIN, SCRAM-SHA-256, SCRAM-SHA-512, AWS_MSK_IAM
	SASLUsername     string         `mapstructure:"saslUsername"`
	SASLPassword     string         `mapstructure:"saslPassword"`
	TLS              TLSConfig      `mapstructure:"tls"`
	Producer         ProducerConfig `mapstructure:"producer"`
	AWSMSK           AWSMSKConfig   `mapstructure:"awsMsk"`
}

// TLSConfig represents TLS configuration
type TLSConfig struct {
	Enabled            bool   `mapstructure:"enabled"`
	CACertFile         string `mapstructure:"caCertFile"`
	ClientCertFile     string `mapstructure:"clientCertFile"`
	ClientKeyFile      string `mapstructure:"clientKeyFile"`
	InsecureSkipVerify bool   `mapstructure:"insecureSkipVerify"`
}

// ProducerConfig represents Kafka producer configuration
type ProducerConfig struct {
	RequiredAcks     int    `mapstructure:"requiredAcks"`    // 0=NoResponse, 1=WaitForLocal, -1=WaitForAll
	CompressionType  string `mapstructure:"compressionType"` // none, gzip, snappy, lz4, zstd
	MaxMessageBytes  int    `mapstructure:"maxMessageBytes"`
	IdempotentWrites bool   `mapstructure:"idempotentWrites"`
	RetryMax         int    `mapstructure:"retryMax"`
	RetryBackoffMs   int    `mapstructure:"retryBackoffMs"`
}

// AWSMSKConfig represents AWS MSK specific configuration
type AWSMSKConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Region  string `mapstructure:"region"`
}

// TopicsConfig represents topic configuration
type TopicsConfig struct {
	Events string `mapstructure:"events"`
}

// GeneratorConfig represents analytics traffic generator configuration
type GeneratorConfig struct {
	IntervalMs          int      `mapstructure:"intervalMs"` // Interval between event generations in milliseconds
	EventTypes          []string `mapstructure:"eventTypes"`
	Platforms           []string `mapstructure:"platforms"`
	PurchaseProbability float64  `mapstructure:"purchaseProbability"` // 0.0 to 1.0
	AnonymousRatio      float64  `mapstructure:"anonymousRatio"`      // share of events sent with device_id only
}

// EventConfig represents the CloudEvents envelope settings
type EventConfig struct {
	Source string `mapstructure:"source"`
	Type   string `mapstructure:"type"`
}

// Load loads configuration from a file
func Load(configFile string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	// Set config file
	v.SetConfigFile(configFile)
	v.SetConfigType("yaml")

	// Read environment variables
	v.AutomaticEnv()

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Unmarshal config
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Override with environment variables if set
	overrideFromEnv(&config)

	// Validate configuration
	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults registers fallback values for optional settings
func setDefaults(v *viper.Viper) {
	v.SetDefault("kafka.securityProtocol", "PLAINTEXT")
	v.SetDefault("kafka.producer.requiredAcks", -1)
	v.SetDefault("kafka.producer.compressionType", "none")
	v.SetDefault("kafka.producer.maxMessageBytes", 1000000)
	v.SetDefault("kafka.producer.retryMax", 3)
	v.SetDefault("kafka.producer.retryBackoffMs", 100)
	v.SetDefault("topics.events", "analytics-events")
	v.SetDefault("generator.intervalMs", 1000)
	v.SetDefault("generator.eventTypes", events.DefaultEventTypes)
	v.SetDefault("generator.platforms", []string{"Web", "iOS", "Android"})
	v.SetDefault("generator.purchaseProbability", 0.2)
	v.SetDefault("generator.anonymousRatio", 0.1)
	v.SetDefault("event.source", events.CloudEventSource)
	v.SetDefault("event.type", events.CloudEventType)
}

// validate validates the configuration
func validate(config *Config) error {
	if len(config.Kafka.Brokers) == 0 {
		return fmt.Errorf("at least one Kafka broker must be configured")
	}

	if config.Topics.Events == "" {
		return fmt.Errorf("events topic must be configured")
	}

	if config.Generator.IntervalMs <= 0 {
		return fmt.Errorf("generator intervalMs must be greater than 0")
	}

	if len(config.Generator.EventTypes) == 0 {
		return fmt.Errorf("generator eventTypes must not be empty")
	}

	if p := config.Generator.PurchaseProbability; p < 0 || p > 1 {
		return fmt.Errorf("generator purchaseProbability must be between 0 and 1, got %v", p)
	}

	if r := config.Generator.AnonymousRatio; r < 0 || r > 1 {
		return fmt.Errorf("generator anonymousRatio must be between 0 and 1, got %v", r)
	}

	if config.Event.Source == "" || config.Event.Type == "" {
		return fmt.Errorf("event source and type must be configured")
	}

	return nil
}

// overrideFromEnv overrides configuration with environment variables
func overrideFromEnv(config *Config) {
	// Kafka overrides
	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		config.Kafka.Brokers = splitList(brokers)
	}

	if username := os.Getenv("KAFKA_SASL_USERNAME"); username != "" {
		config.Kafka.SASLUsername = username
	}

	if password := os.Getenv("KAFKA_SASL_PASSWORD"); password != "" {
		config.Kafka.SASLPassword = password
	}

	// Topic overrides
	if topic := os.Getenv("TOPIC_EVENTS"); topic != "" {
		config.Topics.Events = topic
	}
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
