package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config contient toutes les configurations de l'application
type Config struct {
	Port                    string
	Host                    string
	MongoURI                string
	MongoDB                 string
	JWTSecret               string
	JWTExpire               time.Duration
	Environment             string
	CORSOrigins             []string
	UploadDir               string
	MaxUploadSize           int64
	VAPIDPublicKey          string
	VAPIDPrivateKey         string
	VAPIDSubject            string
	FirebaseCredentialsFile string
	SlackWebhookURL         string
	CleanupSchedule         string
}

// Load charge la configuration depuis les variables d'environnement
func Load() (*Config, error) {
	// Charger le fichier .env s'il existe
	_ = godotenv.Load()

	config := &Config{
		Port:                    getEnv("PORT", "5000"),
		Host:                    getEnv("HOST", "0.0.0.0"),
		MongoURI:                getEnv("MONGO_URI", getEnv("MONGODB_URI", "mongodb://localhost:27017")),
		MongoDB:                 getEnv("MONGO_DB", "monpetitchef"),
		JWTSecret:               getEnv("JWT_SECRET", ""),
		Environment:             getEnv("ENVIRONMENT", getEnv("NODE_ENV", "development")),
		UploadDir:               getEnv("UPLOAD_DIR", "uploads"),
		VAPIDPublicKey:          getEnv("VAPID_PUBLIC_KEY", ""),
		VAPIDPrivateKey:         getEnv("VAPID_PRIVATE_KEY", ""),
		VAPIDSubject:            getEnv("VAPID_SUBJECT", "mailto:contact@monpetitchef.fr"),
		FirebaseCredentialsFile: getEnv("FIREBASE_CREDENTIALS_FILE", ""),
		SlackWebhookURL:         getEnv("SLACK_WEBHOOK_URL", ""),
		CleanupSchedule:         getEnv("CLEANUP_SCHEDULE", "@every 6h"),
	}

	expire, err := ParseExpire(getEnv("JWT_EXPIRE", "30d"))
	if err != nil {
		return nil, fmt.Errorf("JWT_EXPIRE invalide: %w", err)
	}
	config.JWTExpire = expire

	maxSize, err := strconv.ParseInt(getEnv("MAX_FILE_UPLOAD", "5242880"), 10, 64)
	if err != nil || maxSize <= 0 {
		return nil, fmt.Errorf("MAX_FILE_UPLOAD invalide: %q", os.Getenv("MAX_FILE_UPLOAD"))
	}
	config.MaxUploadSize = maxSize

	// Parser les origines CORS
	origins := getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	config.CORSOrigins = splitList(origins)

	// Valider les configurations critiques
	if config.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET est requis")
	}

	return config, nil
}

// IsDevelopment indique si les détails d'erreur peuvent être exposés
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// ParseExpire accepte une durée Go ("720h") ou un nombre de jours ("30d")
func ParseExpire(value string) (time.Duration, error) {
	value = strings.TrimSpace(value)
	if strings.HasSuffix(value, "d") {
		days, err := strconv.Atoi(strings.TrimSuffix(value, "d"))
		if err != nil || days <= 0 {
			return 0, fmt.Errorf("nombre de jours invalide: %q", value)
		}
		return time.Duration(days) * 24 * time.Hour, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("durée négative ou nulle: %q", value)
	}
	return d, nil
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	list := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			list = append(list, trimmed)
		}
	}
	return list
}

// getEnv récupère une variable d'environnement avec une valeur par défaut
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
