package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/safar/safar-go/internal/storage"
)

// Store and media backends selectable through STORE_DRIVER and MEDIA_DRIVER.
const (
	StoreMongo  = "mongo"
	StoreMySQL  = "mysql"
	StoreMemory = "memory"

	MediaDisk = "disk"
	MediaS3   = "s3"
)

var ErrSecretRequired = errors.New("ACCESS_TOKEN_SECRET must be set")

type Config struct {
	Port          string
	Env           string
	PublicBaseURL string
	JWTSecret     string

	StoreDriver   string
	MongoURI      string
	MongoDatabase string
	DatabaseDSN   string

	MediaDriver    string
	UploadDir      string
	AssetsDir      string
	MaxUploadBytes int64
	S3             storage.S3Config

	CORSOrigins []string
}

// PlaceholderURL is the image stored on stories saved without one.
func (c Config) PlaceholderURL() string {
	return c.PublicBaseURL + "/assets/placeholder.jpeg"
}

func Load() (Config, error) {
	cfg := Config{
		Port:          getEnv("PORT", "8080"),
		Env:           getEnv("ENV", "development"),
		JWTSecret:     os.Getenv("ACCESS_TOKEN_SECRET"),
		StoreDriver:   getEnv("STORE_DRIVER", StoreMongo),
		MongoURI:      getEnv("MONGO_URI", "mongodb://127.0.0.1:27017"),
		MongoDatabase: getEnv("MONGO_DATABASE", "safar"),
		DatabaseDSN:   getEnv("DATABASE_DSN", "root:password@tcp(127.0.0.1:3306)/safar?parseTime=true"),
		MediaDriver:   getEnv("MEDIA_DRIVER", MediaDisk),
		UploadDir:     getEnv("UPLOAD_DIR", "uploads"),
		AssetsDir:     getEnv("ASSETS_DIR", "assets"),
		S3: storage.S3Config{
			Bucket:    os.Getenv("S3_BUCKET"),
			Region:    getEnv("S3_REGION", "us-east-1"),
			Endpoint:  os.Getenv("S3_ENDPOINT"),
			AccessKey: os.Getenv("S3_ACCESS_KEY"),
			SecretKey: os.Getenv("S3_SECRET_KEY"),
			PublicURL: os.Getenv("S3_PUBLIC_URL"),
			Prefix:    getEnv("S3_PREFIX", "uploads/"),
		},
		CORSOrigins: splitList(getEnv("CORS_ORIGINS", "*")),
	}
	cfg.PublicBaseURL = strings.TrimRight(getEnv("PUBLIC_BASE_URL", "http://localhost:"+cfg.Port), "/")

	if cfg.JWTSecret == "" {
		return Config{}, ErrSecretRequired
	}

	maxMB, err := strconv.Atoi(getEnv("MAX_UPLOAD_MB", "10"))
	if err != nil || maxMB <= 0 {
		return Config{}, errors.New("MAX_UPLOAD_MB must be a positive integer")
	}
	cfg.MaxUploadBytes = int64(maxMB) << 20

	switch cfg.StoreDriver {
	case StoreMongo, StoreMySQL, StoreMemory:
	default:
		return Config{}, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}

	switch cfg.MediaDriver {
	case MediaDisk:
	case MediaS3:
		if cfg.S3.Bucket == "" || cfg.S3.PublicURL == "" {
			return Config{}, errors.New("S3_BUCKET and S3_PUBLIC_URL must be set for MEDIA_DRIVER=s3")
		}
	default:
		return Config{}, fmt.Errorf("unknown MEDIA_DRIVER %q", cfg.MediaDriver)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
