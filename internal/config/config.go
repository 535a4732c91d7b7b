package config

import (
	"fmt"
	"log"

	"github.com/spf13/viper"
)

const (
	ModeTest = "test"
	ModeLive = "live"
)

// Gateway holds the merchant agreement with the processor. Validated once
// at load; the rest of the code assumes a well-formed value.
type Gateway struct {
	Mode                     string `mapstructure:"mode"`
	MerchantID               string `mapstructure:"merchant-id"`
	Token                    string `mapstructure:"token"`
	Language                 string `mapstructure:"language"`
	OrderDescriptionTemplate string `mapstructure:"order-description-template"`
	TransactionIDTemplate    string `mapstructure:"transaction-id-template"`
	AccountNumber            string `mapstructure:"account-number"`
	CompanyName              string `mapstructure:"company-name"`
}

type Database struct {
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	SSLMode  string `mapstructure:"ssl-mode"`
}

type KafkaWriter struct {
	BatchSize      int `mapstructure:"batch-size"`
	BatchTimeoutMs int `mapstructure:"batch-timeout-ms"`
}

type KafkaBroker struct {
	URL string `mapstructure:"url"`
}

type KafkaTopic struct {
	TransactionEvents string `mapstructure:"transaction-events"`
}

type Kafka struct {
	Writer KafkaWriter `mapstructure:"writer"`
	Broker KafkaBroker `mapstructure:"broker"`
	Topic  KafkaTopic  `mapstructure:"topic"`
}

type Client struct {
	TimeoutMs int `mapstructure:"timeout-ms"`
}

type Server struct {
	Port string `mapstructure:"port"`
}

type Metrics struct {
	URL          string `mapstructure:"url"`
	IntervalMs   int    `mapstructure:"interval-ms"`
	CommonLabels string `mapstructure:"common-labels"`
}

type Logs struct {
	URL string `mapstructure:"url"`
}

type Config struct {
	Gateway  Gateway  `mapstructure:"gateway"`
	Database Database `mapstructure:"database"`
	Kafka    Kafka    `mapstructure:"kafka"`
	Client   Client   `mapstructure:"client"`
	Server   Server   `mapstructure:"server"`
	Metrics  Metrics  `mapstructure:"metrics"`
	Logs     Logs     `mapstructure:"logs"`
}

func LoadConfig(path string) (*Config, error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	// Secrets can be kept out of the config file.
	config.Gateway.Token = Get("NETS_TOKEN", config.Gateway.Token)
	config.Database.Password = Get("DATABASE_PASSWORD", config.Database.Password)
	config.Client.TimeoutMs = GetInt("NETS_TIMEOUT_MS", config.Client.TimeoutMs)

	if err := config.Gateway.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func MustLoadConfig(path string) *Config {
	config, err := LoadConfig(path)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	return config
}

// Validate reports the first missing or malformed gateway setting.
func (g Gateway) Validate() error {
	if g.Mode != ModeTest && g.Mode != ModeLive {
		return &ConfigurationError{
			Setting: "gateway.mode",
			Reason:  fmt.Sprintf("must be %q or %q, got %q", ModeTest, ModeLive, g.Mode),
		}
	}
	if g.MerchantID == "" {
		return &ConfigurationError{Setting: "gateway.merchant-id", Reason: "required"}
	}
	if g.Token == "" {
		return &ConfigurationError{Setting: "gateway.token", Reason: "required"}
	}
	return nil
}

func (g Gateway) Live() bool {
	return g.Mode == ModeLive
}
