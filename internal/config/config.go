package config

import (
	"flag"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Env        string           `yaml:"env" env:"APP_ENV" env-default:"local"`
	HTTP       HTTPConfig       `yaml:"http"`
	Database   DatabaseConfig   `yaml:"database"`
	Auth       AuthConfig       `yaml:"auth"`
	Payments   PaymentsConfig   `yaml:"payments"`
	Billing    BillingConfig    `yaml:"billing"`
	Visibility VisibilityConfig `yaml:"visibility"`
	Events     EventsConfig     `yaml:"events"`
}

type HTTPConfig struct {
	Address        string   `yaml:"address" env:"HTTP_ADDRESS" env-default:""`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type DatabaseConfig struct {
	DSN             string        `yaml:"dsn" env:"DATABASE_DSN"`
	MaxIdleConns    int           `yaml:"max_idle_conns" env-default:"10"`
	MaxOpenConns    int           `yaml:"max_open_conns" env-default:"25"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" env-default:"30m"`
}

type AuthConfig struct {
	JWTSecret string `yaml:"jwt_secret" env:"JWT_SECRET"`
}

type PaymentsConfig struct {
	CallbackSecret string `yaml:"callback_secret" env:"PAYMENT_CALLBACK_SECRET"`
}

type BillingConfig struct {
	DueDay         int           `yaml:"due_day" env-default:"5"`
	InitialDueDays int           `yaml:"initial_due_days" env-default:"3"`
	GraceDays      int           `yaml:"grace_days" env-default:"5"`
	SweepInterval  time.Duration `yaml:"sweep_interval" env-default:"1h"`
}

type VisibilityConfig struct {
	Concurrency int `yaml:"concurrency" env-default:"8"`
}

type EventsConfig struct {
	Buffer int `yaml:"buffer" env-default:"64"`
}

func MustLoad() *Config {
	configPath := fetchConfigPath()
	if configPath == "" {
		panic("config path is empty")
	}

	return MustLoadPath(configPath)
}

func MustLoadPath(configPath string) *Config {
	cfg, err := LoadPath(configPath)
	if err != nil {
		panic(err.Error())
	}
	return cfg
}

// LoadPath reads the yaml file and lets the environment override it.
func LoadPath(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, &os.PathError{Op: "config", Path: configPath, Err: os.ErrNotExist}
	}

	var cfg Config

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		return nil, err
	}

	cfg.setDefaults()

	return &cfg, nil
}

func fetchConfigPath() string {
	var res string

	flag.StringVar(&res, "config", "", "path to config file")
	flag.Parse()

	if res == "" {
		res = os.Getenv("CONFIG_PATH")
	}

	if res == "" {
		res = "config/local.yaml"
	}

	return res
}

func (c *Config) setDefaults() {
	if c.HTTP.Address == "" {
		c.HTTP.Address = ":8080"
	}
	if len(c.HTTP.AllowedOrigins) == 0 {
		c.HTTP.AllowedOrigins = []string{"http://localhost:3000"}
	}
	if c.Billing.DueDay < 1 || c.Billing.DueDay > 28 {
		c.Billing.DueDay = 5
	}
	if c.Billing.SweepInterval <= 0 {
		c.Billing.SweepInterval = time.Hour
	}
	if c.Visibility.Concurrency <= 0 {
		c.Visibility.Concurrency = 8
	}
	if c.Events.Buffer <= 0 {
		c.Events.Buffer = 64
	}
}
