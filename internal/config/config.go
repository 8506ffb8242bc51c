package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

var singleConfig *Config = nil

type Config struct {
	Service   *svcConfig
	Generate  *generateConfig
	Mail      *mailConfig
	RateLimit *rateLimitConfig
}

type svcConfig struct {
	Address        string `envconfig:"FOREMOST_ADDRESS" default:":3443"`
	MetricsAddress string `envconfig:"FOREMOST_METRICS_ADDRESS" default:":8080"`
	LogLevel       string `envconfig:"FOREMOST_LOG_LEVEL" default:"info"`
	DataFile       string `envconfig:"FOREMOST_DATA_FILE" default:"/tmp/foremost.db"`
}

type generateConfig struct {
	BaseUrl string        `envconfig:"FOREMOST_GENERATE_BASE_URL" default:"https://generativelanguage.googleapis.com"`
	ApiKey  string        `envconfig:"FOREMOST_GENERATE_API_KEY" default:""`
	Model   string        `envconfig:"FOREMOST_GENERATE_MODEL" default:"gemini-2.0-flash"`
	Timeout time.Duration `envconfig:"FOREMOST_GENERATE_TIMEOUT" default:"90s"`
}

type mailConfig struct {
	BaseUrl string `envconfig:"FOREMOST_MAIL_BASE_URL" default:"https://api.resend.com"`
	ApiKey  string `envconfig:"FOREMOST_MAIL_API_KEY" default:""`
	From    string `envconfig:"FOREMOST_MAIL_FROM" default:"noreply@foremost.so"`
	To      string `envconfig:"FOREMOST_MAIL_TO" default:"hello@foremost.so"`
}

type rateLimitConfig struct {
	Window          time.Duration `envconfig:"FOREMOST_RATE_LIMIT_WINDOW" default:"1m"`
	ScanRequests    int           `envconfig:"FOREMOST_RATE_LIMIT_SCAN" default:"3"`
	StreamRequests  int           `envconfig:"FOREMOST_RATE_LIMIT_STREAM" default:"5"`
	SummaryRequests int           `envconfig:"FOREMOST_RATE_LIMIT_SUMMARY" default:"10"`
	SweepInterval   time.Duration `envconfig:"FOREMOST_RATE_LIMIT_SWEEP_INTERVAL" default:"5m"`
}

func New() (*Config, error) {
	if singleConfig == nil {
		singleConfig = new(Config)

		if err := envconfig.Process("", singleConfig); err != nil {
			singleConfig = nil
			return nil, err
		}
	}

	return singleConfig, nil
}
