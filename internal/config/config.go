package config

import (
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration
type Config struct {
	DBURL               string `mapstructure:"DB_URL"`
	StoreDriver         string `mapstructure:"STORE_DRIVER"`
	RedisAddr           string `mapstructure:"REDIS_ADDR"`
	MQTTBroker          string `mapstructure:"MQTT_BROKER"`
	MQTTClientID        string `mapstructure:"MQTT_CLIENT_ID"`
	JWTSecret           string `mapstructure:"JWT_SECRET"`
	ListenAddr          string `mapstructure:"LISTEN_ADDR"`
	ParkingSpotCount    int    `mapstructure:"PARKING_SPOT_COUNT"`
	MDNSLocalName       string `mapstructure:"MDNS_LOCAL_NAME"`
	RemoteWS            string `mapstructure:"REMOTE_WS"`
	AgentID             string `mapstructure:"AGENT_ID"`
	RemoteAccessEnabled bool   `mapstructure:"REMOTE_ACCESS_ENABLED"`
}

// LoadConfig reads configuration from .env and environment variables.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		println("Error loading .env file: ", err.Error())
	}

	viper.AutomaticEnv()

	viper.SetDefault("STORE_DRIVER", "postgres")
	viper.SetDefault("LISTEN_ADDR", ":8080")
	viper.SetDefault("PARKING_SPOT_COUNT", 20)
	viper.SetDefault("MQTT_CLIENT_ID", "officehub-backend")

	cfg := &Config{
		DBURL:               viper.GetString("DB_URL"),
		StoreDriver:         viper.GetString("STORE_DRIVER"),
		RedisAddr:           viper.GetString("REDIS_ADDR"),
		MQTTBroker:          viper.GetString("MQTT_BROKER"),
		MQTTClientID:        viper.GetString("MQTT_CLIENT_ID"),
		JWTSecret:           viper.GetString("JWT_SECRET"),
		ListenAddr:          viper.GetString("LISTEN_ADDR"),
		ParkingSpotCount:    viper.GetInt("PARKING_SPOT_COUNT"),
		MDNSLocalName:       viper.GetString("MDNS_LOCAL_NAME"),
		RemoteWS:            viper.GetString("REMOTE_WS"),
		AgentID:             viper.GetString("AGENT_ID"),
		RemoteAccessEnabled: viper.GetBool("REMOTE_ACCESS_ENABLED"),
	}
	return cfg, nil
}
