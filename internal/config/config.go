package config

import (
	"fmt"
	"os"

	"github.com/spf13/viper"
)

type Config struct {
	Server struct {
		Port    int
		BaseURL string
	}
	Database struct {
		Path string
	}
	Auth struct {
		JWTSecret string
	}
	SMTP struct {
		Host     string
		Port     int
		From     string
		Password string
	}
	Alert struct {
		Slack struct {
			Token      string
			Channel    string
			WebhookURL string
		}
		Email struct {
			ToReceivers []string
		}
	}
	Artifacts struct {
		Dir     string
		BaseURL string
	}
	Monitor struct {
		FailureThreshold int
	}
	Log struct {
		Level string
	}
}

// LoadConfig loads the configuration from config.yaml
func LoadConfig() *Config {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")

	var config Config
	setDefaults(&config)

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found, write one with the defaults
			viper.Set("server.port", config.Server.Port)
			viper.Set("server.baseurl", config.Server.BaseURL)
			viper.Set("database.path", config.Database.Path)
			viper.Set("artifacts.dir", config.Artifacts.Dir)
			viper.Set("artifacts.baseurl", config.Artifacts.BaseURL)
			viper.Set("monitor.failurethreshold", config.Monitor.FailureThreshold)
			viper.Set("log.level", config.Log.Level)

			if err := os.MkdirAll("data", 0755); err != nil {
				fmt.Printf("Warning: Failed to create data directory: %v\n", err)
			}

			if err := viper.SafeWriteConfig(); err != nil {
				fmt.Printf("Warning: Failed to write default config: %v\n", err)
			}
		} else {
			fmt.Printf("Error reading config file: %v\n", err)
		}
	} else {
		if err := viper.Unmarshal(&config); err != nil {
			fmt.Printf("Error unmarshaling config: %v\n", err)
		}
	}

	return &config
}

func setDefaults(config *Config) {
	config.Server.Port = 8080
	config.Server.BaseURL = "http://localhost:8080"
	config.Database.Path = "data/reportdeck.db"
	config.Auth.JWTSecret = "change-me"
	config.Artifacts.Dir = "data/artifacts"
	config.Artifacts.BaseURL = "http://localhost:8080/artifacts"
	config.Monitor.FailureThreshold = 2
	config.Log.Level = "info"
}
