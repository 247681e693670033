package config

import (
	"os"
	"strconv"
	"strings"
)

// Config holds runtime settings for the server.
type Config struct {
	ServerAddr    string
	DataDir       string
	WorkDir       string
	PublicBaseURL string
	YtDlpPath     string
	SubtitleLangs string
	AudioBitrate  string
	MaxConcurrent int
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// Load reads environment variables and returns normalized runtime config.
// An empty RedisAddr selects the in-memory job store.
func Load() Config {
	return Config{
		ServerAddr:    getEnv("SERVER_ADDR", ":8080"),
		DataDir:       getEnv("DATA_DIR", "./data"),
		WorkDir:       getEnv("WORK_DIR", "./work"),
		PublicBaseURL: getEnv("PUBLIC_BASE_URL", "http://localhost:8080"),
		YtDlpPath:     getEnv("YTDLP_PATH", "yt-dlp"),
		SubtitleLangs: getEnv("SUBTITLE_LANGS", "en,es,fr,de,it,pt,ru,ja,ko,zh"),
		AudioBitrate:  getEnv("AUDIO_BITRATE", "320K"),
		MaxConcurrent: getEnvInt("MAX_CONCURRENT", 3),
		RedisAddr:     strings.TrimSpace(os.Getenv("REDIS_ADDR")),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getEnvInt("REDIS_DB", 0),
	}
}

func getEnv(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func getEnvInt(key string, fallback int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	out, err := strconv.Atoi(value)
	if err != nil || out < 0 {
		return fallback
	}
	return out
}
