package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/joho/godotenv"
)

const (
	defaultDatabaseDriver = "mongo"
	defaultDatabaseName   = "scrambled-cubeshop"
	defaultDatabaseHost   = "cluster0.lmhyi.mongodb.net"
	defaultMongoURI       = "mongodb://localhost:27017"
	defaultRedisAddr      = "localhost:6379"
	defaultJWTSecret      = "change-me-in-production"
	defaultAuthMode       = "firebase"
	defaultAppPort        = "5000"
	defaultAppEnv         = "local"
	defaultRateLimit      = 200
	defaultFirebaseJWKS   = "https://www.googleapis.com/service_accounts/v1/jwk/securetoken@system.gserviceaccount.com"
)

var (
	loadOnce sync.Once
	loadErr  error

	mu     sync.RWMutex
	values = defaultValues()
)

// Load merges config/app.json, .env and the process environment, in that
// order of increasing priority. It runs once per process.
func Load() error {
	loadOnce.Do(func() {
		loadErr = loadFromFiles("config/app.json", ".env")
	})
	return loadErr
}

func defaultValues() map[string]string {
	return map[string]string{
		"DB_DRIVER":  defaultDatabaseDriver,
		"DB_NAME":    defaultDatabaseName,
		"DB_HOST":    defaultDatabaseHost,
		"REDIS_ADDR": defaultRedisAddr,
		"JWT_SECRET": defaultJWTSecret,
		"AUTH_MODE":  defaultAuthMode,
		"APP_ENV":    defaultAppEnv,
	}
}

// ── Application ──────────────────────────────────────────────────────────────

func AppEnv() string {
	_ = Load()
	return get("APP_ENV", defaultAppEnv)
}

// AppPort honours PORT first (what most PaaS runtimes inject), then APP_PORT.
func AppPort() string {
	_ = Load()
	if p := get("PORT", ""); p != "" {
		return p
	}
	return get("APP_PORT", defaultAppPort)
}

func IsProduction() bool {
	switch strings.ToLower(AppEnv()) {
	case "production", "prod":
		return true
	}
	return false
}

// ── Database ─────────────────────────────────────────────────────────────────

func DatabaseDriver() string {
	_ = Load()

	driver := strings.ToLower(get("DB_DRIVER", defaultDatabaseDriver))
	switch driver {
	case "mongo", "memory":
		return driver
	default:
		return defaultDatabaseDriver
	}
}

func DatabaseName() string {
	_ = Load()
	return get("DB_NAME", defaultDatabaseName)
}

// MongoURI returns MONGO_URI when set. Otherwise, when DB_USER is present the
// Atlas SRV URI is assembled from DB_USER, DB_PASS and DB_HOST; failing that
// a local server is assumed.
func MongoURI() string {
	_ = Load()

	if override := get("MONGO_URI", ""); override != "" {
		return override
	}

	user := get("DB_USER", "")
	if user == "" {
		return defaultMongoURI
	}

	u := url.URL{
		Scheme:   "mongodb+srv",
		User:     url.UserPassword(user, get("DB_PASS", "")),
		Host:     get("DB_HOST", defaultDatabaseHost),
		Path:     "/" + DatabaseName(),
		RawQuery: "retryWrites=true&w=majority",
	}
	return u.String()
}

// ── Redis ────────────────────────────────────────────────────────────────────

func RedisAddr() string {
	_ = Load()
	return get("REDIS_ADDR", defaultRedisAddr)
}

func RedisPassword() string {
	_ = Load()
	return get("REDIS_PASSWORD", "")
}

// ── Identity ─────────────────────────────────────────────────────────────────

// AuthMode is "firebase" (RS256 ID tokens checked against a JWKS) or "hmac"
// (HS256 tokens signed with JWT_SECRET).
func AuthMode() string {
	_ = Load()

	mode := strings.ToLower(get("AUTH_MODE", defaultAuthMode))
	switch mode {
	case "firebase", "hmac":
		return mode
	default:
		return defaultAuthMode
	}
}

func JWTSecret() string {
	_ = Load()
	return get("JWT_SECRET", defaultJWTSecret)
}

func AuthJWKSURL() string {
	_ = Load()
	return get("AUTH_JWKS_URL", defaultFirebaseJWKS)
}

// FirebaseProjectID prefers FIREBASE_PROJECT_ID and falls back to the
// project_id field of the FIREBASE_SERVICE_ACCOUNT JSON blob.
func FirebaseProjectID() string {
	_ = Load()

	if id := get("FIREBASE_PROJECT_ID", ""); id != "" {
		return id
	}

	raw := get("FIREBASE_SERVICE_ACCOUNT", "")
	if raw == "" {
		return ""
	}

	var account struct {
		ProjectID string `json:"project_id"`
	}
	if err := json.Unmarshal([]byte(raw), &account); err != nil {
		return ""
	}
	return account.ProjectID
}

// ── HTTP ─────────────────────────────────────────────────────────────────────

func RateLimitPerMinute() int {
	_ = Load()
	return getInt("RATE_LIMIT_PER_MINUTE", defaultRateLimit)
}

func CORSAllowedOrigins() []string {
	_ = Load()

	raw := get("CORS_ALLOWED_ORIGINS", "*")
	var out []string
	for _, o := range strings.Split(raw, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// TrustProxy makes the rate limiter and request log key clients by the
// first X-Forwarded-For hop. Enable it only behind a proxy that overwrites
// the header.
func TrustProxy() bool {
	_ = Load()
	return getBool("TRUST_PROXY", false)
}

func MaxBodyBytes() int64 {
	_ = Load()

	n, err := strconv.ParseInt(get("MAX_BODY_BYTES", ""), 10, 64)
	if err != nil || n <= 0 {
		return 4 << 20
	}
	return n
}

// ── Behaviour switches ───────────────────────────────────────────────────────

// OrdersBindOwner makes order creation overwrite the client-supplied
// userEmail with the verified requester.
func OrdersBindOwner() bool {
	_ = Load()
	return getBool("ORDERS_BIND_OWNER", false)
}

func LogMongoURI() string {
	_ = Load()
	return get("LOG_MONGO_URI", "")
}

// ── Loading ──────────────────────────────────────────────────────────────────

func loadFromFiles(configPath, envPath string) error {
	loaded := defaultValues()

	if err := mergeJSONConfig(configPath, loaded); err != nil {
		if !os.IsNotExist(err) {
			return err
		}
	}

	if err := mergeDotEnv(envPath, loaded); err != nil {
		if !os.IsNotExist(err) {
			return err
		}
	}

	mergeEnviron(loaded)

	mu.Lock()
	values = loaded
	mu.Unlock()

	return nil
}

func mergeJSONConfig(path string, out map[string]string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	var raw map[string]interface{}
	if err := json.NewDecoder(file).Decode(&raw); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}

	for key, val := range raw {
		s, ok := val.(string)
		if !ok {
			continue
		}

		k := strings.ToUpper(strings.TrimSpace(key))
		if k == "" {
			continue
		}
		out[k] = strings.TrimSpace(s)
	}

	return nil
}

func mergeDotEnv(path string, out map[string]string) error {
	if _, err := os.Stat(path); err != nil {
		return err
	}

	env, err := godotenv.Read(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	for key, value := range env {
		k := strings.ToUpper(strings.TrimSpace(key))
		if k == "" {
			continue
		}
		out[k] = strings.TrimSpace(value)
	}
	return nil
}

func mergeEnviron(out map[string]string) {
	for _, kv := range os.Environ() {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || key == "" {
			continue
		}
		out[strings.ToUpper(key)] = value
	}
}

func get(key, fallback string) string {
	mu.RLock()
	defer mu.RUnlock()

	if value := strings.TrimSpace(values[key]); value != "" {
		return value
	}

	return fallback
}

func getInt(key string, fallback int) int {
	n, err := strconv.Atoi(get(key, ""))
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func getBool(key string, fallback bool) bool {
	b, err := strconv.ParseBool(get(key, ""))
	if err != nil {
		return fallback
	}
	return b
}

// Get reads any config key by name with an optional fallback.
func Get(key, fallback string) string {
	_ = Load()
	return get(key, fallback)
}

// Set overrides a single key for the lifetime of the process. Tests use it
// to pin values without touching the environment.
func Set(key, value string) {
	_ = Load()

	mu.Lock()
	values[strings.ToUpper(key)] = value
	mu.Unlock()
}
