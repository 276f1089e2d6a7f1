package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv" // 引入這個庫來讀取 .env 檔案
)

// Config 結構體用於儲存應用程式的配置
type Config struct {
	MongoDBURI       string
	DBName           string
	Port             string
	JWTSecret        string
	RedisAddr        string
	RedisPassword    string
	ChatHistoryLimit int64  // 新加入者一次最多回放的歷史訊息數量
	AllowedOrigin    string // 前端網域 (CORS)
	AppURL           string // 重設密碼連結使用的前端網址
	SMTPHost         string
	SMTPPort         string
	SMTPUser         string
	SMTPPassword     string
	SMTPFrom         string
}

// LoadConfig 載入配置，優先從環境變數讀取，其次從 .env 檔案讀取
func LoadConfig() *Config {
	// 嘗試載入 .env 檔案，如果不存在也不會報錯
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found, relying on environment variables.")
	}

	cfg := &Config{
		MongoDBURI:       getEnv("MONGODB_URI", "mongodb://localhost:27017"),
		DBName:           getEnv("DB_NAME", "job_portal_db"),
		Port:             getEnv("PORT", "8080"),
		JWTSecret:        getEnv("JWT_SECRET", "dev-secret-change-me"),
		RedisAddr:        getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:    getEnv("REDIS_PASSWORD", ""),
		ChatHistoryLimit: getEnvInt64("CHAT_HISTORY_LIMIT", 200),
		AllowedOrigin:    getEnv("ALLOWED_ORIGIN", "http://localhost:3000"),
		AppURL:           getEnv("APP_URL", "http://localhost:3000"),
		SMTPHost:         getEnv("SMTP_HOST", ""),
		SMTPPort:         getEnv("SMTP_PORT", "587"),
		SMTPUser:         getEnv("SMTP_USER", ""),
		SMTPPassword:     getEnv("SMTP_PASSWORD", ""),
		SMTPFrom:         getEnv("SMTP_FROM", "no-reply@jobportal.local"),
	}
	return cfg
}

// getEnv 輔助函數，用於從環境變數獲取值，如果不存在則使用預設值
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvInt64 輔助函數，解析整數型的環境變數，解析失敗時退回預設值
func getEnvInt64(key string, defaultValue int64) int64 {
	if value, exists := os.LookupEnv(key); exists {
		if n, err := strconv.ParseInt(value, 10, 64); err == nil {
			return n
		}
		log.Printf("Invalid integer value for %s, using default %d", key, defaultValue)
	}
	return defaultValue
}
