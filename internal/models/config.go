package models

import (
	"fmt"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

type Config struct {
	Seed       int  `mapstructure:"seed"`
	Continuous bool `mapstructure:"continuous"`

	// storefront session
	SessionOrders      int           `mapstructure:"session_orders"`
	InvalidOrderRatio  float64       `mapstructure:"invalid_order_ratio"`
	TickInterval       time.Duration `mapstructure:"tick_interval"`
	DriverSpeedKmh     float64       `mapstructure:"driver_speed_kmh"`
	DriverStepInterval time.Duration `mapstructure:"driver_step_interval"`

	// geography
	BusinessLat           float64 `mapstructure:"business_latitude"`
	BusinessLon           float64 `mapstructure:"business_longitude"`
	UrbanRadius           float64 `mapstructure:"urban_radius"` // km, drop-off sampling radius
	NearLocationThreshold float64 `mapstructure:"near_location_threshold"`

	// webhooks
	WebhooksEnabled    bool          `mapstructure:"webhooks_enabled"`
	OrderWebhookURL    string        `mapstructure:"order_webhook_url"`
	OnOurWayWebhookURL string        `mapstructure:"on_our_way_webhook_url"`
	DeliveryWebhookURL string        `mapstructure:"delivery_webhook_url"`
	WebhookTimeout     time.Duration `mapstructure:"webhook_timeout"`

	// event sinks
	KafkaEnabled    bool   `mapstructure:"kafka_enabled"`
	KafkaBrokerList string `mapstructure:"kafka_broker_list"`
	OutputFile      string `mapstructure:"output_file_path"`
	OutputFolder    string `mapstructure:"output_folder"`

	// catalog
	CatalogFile string `mapstructure:"catalog_file"`
	PostgresDSN string `mapstructure:"postgres_dsn"`

	// telemetry
	MetricsAddr string `mapstructure:"metrics_addr"` // empty disables the /metrics listener
	LogCapacity int    `mapstructure:"log_capacity"`
}

// LoadConfig initializes and reads the configuration using Viper
func LoadConfig(cfgFile string) (*Config, error) {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath("examples")
		viper.SetConfigName("config")
		viper.SetConfigType("json")
	}

	viper.AutomaticEnv() // read in environment variables that match

	if err := viper.ReadInConfig(); err != nil {
		// the default config file is optional; flags and env cover everything
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	decoderConfigOption := viper.DecoderConfigOption(func(config *mapstructure.DecoderConfig) {
		config.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			config.DecodeHook,
			mapstructure.StringToTimeHookFunc(time.RFC3339),
			mapstructure.StringToTimeDurationHookFunc(),
		)
	})
	if err := viper.Unmarshal(&config, decoderConfigOption); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %w", err)
	}

	config.applyDefaults()
	return &config, nil
}

func (cfg *Config) applyDefaults() {
	if cfg.SessionOrders == 0 {
		cfg.SessionOrders = 50
	}
	if cfg.TickInterval == 0 {
		cfg.TickInterval = time.Second
	}
	if cfg.DriverSpeedKmh == 0 {
		cfg.DriverSpeedKmh = 30
	}
	if cfg.DriverStepInterval == 0 {
		cfg.DriverStepInterval = 200 * time.Millisecond
	}
	if cfg.UrbanRadius == 0 {
		cfg.UrbanRadius = 12
	}
	if cfg.NearLocationThreshold == 0 {
		cfg.NearLocationThreshold = 1.0
	}
	if cfg.WebhookTimeout == 0 {
		cfg.WebhookTimeout = 10 * time.Second
	}
	if cfg.KafkaBrokerList == "" {
		cfg.KafkaBrokerList = "localhost:9092"
	}
	if cfg.LogCapacity == 0 {
		cfg.LogCapacity = 1000
	}
	if cfg.BusinessLat == 0 && cfg.BusinessLon == 0 {
		cfg.BusinessLat = DefaultBusinessLat
		cfg.BusinessLon = DefaultBusinessLon
	}
}

// Default business origin: the rental depot all delivery distances are
// measured from.
const (
	DefaultBusinessLat = 13.7563
	DefaultBusinessLon = 100.5018
)
