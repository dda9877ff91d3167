package config

import (
	"fmt"
	"os"

	"github.com/spf13/viper"
)

type Config struct {
	Database struct {
		Path string
		URL  string // optional postgres DSN, overrides Path
	}
	Server struct {
		Port int
	}
	Uploads struct {
		Dir string
	}
	Report struct {
		BannerPath   string
		Activities   []string
		Descriptions map[string]string
		Regions      map[string][]string
	}
	Admin struct {
		Username string
		Password string
	}
	Notify struct {
		Slack struct {
			Token   string
			Channel string
		}
		Email struct {
			SMTPHost    string
			SMTPPort    int
			From        string
			Password    string
			ToReceivers []string
		}
	}
}

// LoadConfig loads the configuration from config.yaml
func LoadConfig() *Config {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")

	viper.SetDefault("database.path", "data/reportdesk.db")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("uploads.dir", "uploads")
	viper.SetDefault("report.bannerpath", "static/pdf_header_template.png")
	viper.SetDefault("admin.username", "admin")
	viper.SetDefault("admin.password", "supersecret")

	var config Config

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found, write one with the defaults
			if err := os.MkdirAll("data", 0755); err != nil {
				fmt.Printf("Warning: Failed to create data directory: %v\n", err)
			}

			if err := viper.SafeWriteConfig(); err != nil {
				fmt.Printf("Warning: Failed to write default config: %v\n", err)
			}
		} else {
			fmt.Printf("Error reading config file: %v\n", err)
		}
	}

	if err := viper.Unmarshal(&config); err != nil {
		fmt.Printf("Error unmarshaling config: %v\n", err)
	}

	// DATABASE_URL always wins so deployments can point at postgres
	// without touching config.yaml.
	if url := os.Getenv("DATABASE_URL"); url != "" {
		config.Database.URL = url
	}
	if user := os.Getenv("ADMIN_USERNAME"); user != "" {
		config.Admin.Username = user
	}
	if pass := os.Getenv("ADMIN_PASSWORD"); pass != "" {
		config.Admin.Password = pass
	}

	if len(config.Report.Activities) == 0 {
		config.Report.Activities = DefaultActivities()
	}
	if len(config.Report.Descriptions) == 0 {
		config.Report.Descriptions = DefaultDescriptions()
	}
	if len(config.Report.Regions) == 0 {
		config.Report.Regions = DefaultRegions()
	}

	return &config
}

// DefaultActivities returns the built-in activity dropdown entries.
func DefaultActivities() []string {
	return []string{"Receiving", "Stocking", "Picking", "Shipping", "Housekeeping"}
}

// DefaultDescriptions maps each activity to the descriptive line printed
// under the report heading.
func DefaultDescriptions() map[string]string {
	return map[string]string{
		"Receiving":    "Inbound goods received and verified against purchase orders",
		"Stocking":     "Received goods put away to assigned storage locations",
		"Picking":      "Order lines picked from storage for outbound dispatch",
		"Shipping":     "Packed orders staged and handed over to carriers",
		"Housekeeping": "Cleanliness and safety walkthrough of the facility",
	}
}

// DefaultRegions maps each region to the warehouses it operates.
func DefaultRegions() map[string][]string {
	return map[string][]string{
		"North": {"Warehouse N1", "Warehouse N2"},
		"South": {"Warehouse S1", "Warehouse S2", "Warehouse S3"},
		"East":  {"Warehouse E1"},
		"West":  {"Warehouse W1", "Warehouse W2"},
	}
}
