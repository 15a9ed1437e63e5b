package infrastructures

import (
	"os"

	"github.com/joho/godotenv"
)

type AppConfig struct {
	DATABASE_URL    string
	REDIS_ADDRESS   string
	REDIS_PASSWORD  string
	MAINTENANCE_KEY string
	PORT            string
}

var Config *AppConfig

func LoadConfig() *AppConfig {
	godotenv.Load()

	Config = &AppConfig{
		DATABASE_URL:    os.Getenv("DATABASE_URL"),
		REDIS_ADDRESS:   os.Getenv("REDIS_ADDRESS"),
		REDIS_PASSWORD:  os.Getenv("REDIS_PASSWORD"),
		MAINTENANCE_KEY: os.Getenv("MAINTENANCE_KEY"),
		PORT:            os.Getenv("PORT"),
	}

	if Config.PORT == "" {
		Config.PORT = "8080"
	}

	return Config
}
