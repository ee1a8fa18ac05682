package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

//go:embed config.yml
var embeddedConfig []byte

type Config struct {
	Mode     string `mapstructure:"mode"`
	Dotenv   string `mapstructure:"dotenv"`
	Handlers struct {
		ExternalAPI struct {
			Port      string `mapstructure:"port"`
			CertFile  string `mapstructure:"certFile"`
			KeyFile   string `mapstructure:"keyFile"`
			EnableTLS bool   `mapstructure:"enableTLS"`
		} `mapstructure:"externalAPI"`
		Prometheus struct {
			Port      string `mapstructure:"port"`
			CertFile  string `mapstructure:"certFile"`
			KeyFile   string `mapstructure:"keyFile"`
			EnableTLS bool   `mapstructure:"enableTLS"`
		} `mapstructure:"prometheus"`
	} `mapstructure:"handlers"`
	Repositories struct {
		Postgres struct {
			Host              string `mapstructure:"host"`
			Password          string `mapstructure:"password"`
			Port              string `mapstructure:"port"`
			Username          string `mapstructure:"username"`
			DB                string `mapstructure:"db"`
			SSLMODE           string `mapstructure:"SSLMODE"`
			MAXCONWAITINGTIME int    `mapstructure:"MAXCONWAITINGTIME"`
		} `mapstructure:"postgres"`
	} `mapstructure:"repositories"`
	Server struct {
		HTTPPort string        `mapstructure:"HTTPPort"`
		Timeout  time.Duration `mapstructure:"HTTPTimeout"`
	} `mapstructure:"server"`
	Cache struct {
		// Store selects the cache backend: "memory" (default) or
		// "postgres". Postgres needs the repositories.postgres block.
		Store string `mapstructure:"store"`
		// JanitorInterval is how often the postgres store sweeps
		// expired rows.
		JanitorInterval time.Duration `mapstructure:"janitorInterval"`
	} `mapstructure:"cache"`
	AI struct {
		Model string `mapstructure:"model"`
	} `mapstructure:"ai"`
	Providers struct {
		// Search selects the place search provider: "google", "naver"
		// or "mock". The mock keeps the planner runnable without keys.
		Search string `mapstructure:"search"`
	} `mapstructure:"providers"`
	Planner struct {
		// Bounding box for sane coordinates; defaults cover Korea.
		Bounds struct {
			MinLat float64 `mapstructure:"minLat"`
			MaxLat float64 `mapstructure:"maxLat"`
			MinLng float64 `mapstructure:"minLng"`
			MaxLng float64 `mapstructure:"maxLng"`
		} `mapstructure:"bounds"`
		MinPlacesPerDay     int     `mapstructure:"minPlacesPerDay"`
		DailyPlaceTarget    int     `mapstructure:"dailyPlaceTarget"`
		RefreshThreshold    int     `mapstructure:"refreshThreshold"`
		EscalationThreshold int     `mapstructure:"escalationThreshold"`
		RadiusMultiplier    float64 `mapstructure:"radiusMultiplier"`
		MaxKeywordsPerSlot  int     `mapstructure:"maxKeywordsPerSlot"`
	} `mapstructure:"planner"`
}

func InitConfig() (Config, error) {
	var config Config
	v := viper.New()

	// Add file-based config paths
	v.AddConfigPath(".")
	v.AddConfigPath("config")
	v.AddConfigPath("/app/config")

	v.SetConfigName("config")
	v.SetConfigType("yml")

	// Try to load file-based config
	err := v.ReadInConfig()
	if err != nil {
		fmt.Printf("Warning: Failed to find file-based config: %s. Falling back to embedded config.\n", err)
		if err = v.ReadConfig(bytes.NewReader(embeddedConfig)); err != nil {
			return Config{}, fmt.Errorf("failed to read embedded config: %s", err)
		}
	}

	// Unmarshal the config into the Config struct
	if err = v.Unmarshal(&config); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %s", err)
	}
	fmt.Println("Successfully loaded app configs...")
	return config, nil
}
