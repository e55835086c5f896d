package configs

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	RedisAddr string
	RedisDB   int

	SandboxURL            string
	SandboxTimeoutSeconds int

	NumberOfWorkers  int
	SubmissionStream string
	SubmissionGroup  string

	JWTSecret string

	ScoreAwardPoints    int
	TelemetryBufferSize int
}

func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	return &Config{
		ServerPort: getEnv("SERVER_PORT", "8080"),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "3306"),
		DBUser:     getEnv("DB_USER", "root"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "codecrackers"),

		RedisAddr: getEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:   getEnvAsInt("REDIS_DB", 0),

		SandboxURL:            getEnv("SANDBOX_URL", "https://emkc.org/api/v2/piston/execute"),
		SandboxTimeoutSeconds: getEnvAsInt("SANDBOX_TIMEOUT_SECONDS", 30),

		NumberOfWorkers:  getEnvAsInt("NUM_OF_WORKERS", 4),
		SubmissionStream: getEnv("SUBMISSION_STREAM", "code_submissions"),
		SubmissionGroup:  getEnv("SUBMISSION_GROUP", "judgers"),

		JWTSecret: getEnv("JWT_SECRET", "defaultsecret"),

		ScoreAwardPoints:    getEnvAsInt("SCORE_AWARD_POINTS", 100),
		TelemetryBufferSize: getEnvAsInt("TELEMETRY_BUFFER_SIZE", 1024),
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if value, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return value
	}
	return fallback
}
