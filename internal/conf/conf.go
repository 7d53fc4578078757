package conf

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/softclay/ana-bridge/internal/biz/domain"
	"github.com/softclay/ana-bridge/internal/biz/usecase"
)

// Config represents application configuration
type Config struct {
	// Gateway configuration
	Gateway GatewayConfig

	// Groq configuration
	Groq GroqConfig

	// Storage configuration
	Storage StorageConfig

	// HTTP server configuration
	HTTP HTTPConfig

	// Persona configuration (loaded from YAML)
	Persona *PersonaConfig

	// Privileged sender IDs (role classification only, no admission effect)
	AdminIDs []string

	// Debug mode
	Debug bool
}

// GatewayConfig contains transport gateway configuration
type GatewayConfig struct {
	URL            string        // WebSocket URL of the gateway sidecar
	CredsPath      string        // where rotated credentials are persisted
	ReconnectDelay time.Duration // fixed backoff between reconnect attempts
}

// GroqConfig contains generation backend configuration
type GroqConfig struct {
	APIKey  string
	Model   string
	Timeout time.Duration
}

// StorageConfig contains persistence configuration
type StorageConfig struct {
	DBPath string
}

// HTTPConfig contains health server configuration
type HTTPConfig struct {
	Port              int
	KeepaliveInterval time.Duration
}

// LoadFromEnv loads configuration from environment variables
func LoadFromEnv() *Config {
	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		homeDir, _ := os.UserHomeDir()
		dbPath = filepath.Join(homeDir, ".ana-bridge", "state.db")
	}

	credsPath := os.Getenv("CREDS_PATH")
	if credsPath == "" {
		credsPath = filepath.Join(filepath.Dir(dbPath), "auth", "creds.json")
	}

	gatewayURL := os.Getenv("GATEWAY_URL")
	if gatewayURL == "" {
		gatewayURL = "ws://127.0.0.1:3001/ws"
	}

	port := 3000
	if val := os.Getenv("PORT"); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			port = parsed
		}
	}

	reconnectSec := 5
	if val := os.Getenv("RECONNECT_SECONDS"); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil && parsed > 0 {
			reconnectSec = parsed
		}
	}

	keepaliveMin := 5
	if val := os.Getenv("KEEPALIVE_MINUTES"); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil && parsed > 0 {
			keepaliveMin = parsed
		}
	}

	genTimeoutSec := 30
	if val := os.Getenv("GROQ_TIMEOUT_SECONDS"); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil && parsed > 0 {
			genTimeoutSec = parsed
		}
	}

	var adminIDs []string
	for _, id := range strings.Split(os.Getenv("ADMIN_IDS"), ",") {
		if id = strings.TrimSpace(id); id != "" {
			adminIDs = append(adminIDs, id)
		}
	}

	persona, err := LoadPersonaConfig(os.Getenv("PERSONA_CONFIG_PATH"))
	if err != nil {
		fmt.Printf("[Config] Persona config unusable (%v), using defaults\n", err)
		persona = DefaultPersonaConfig()
	}

	return &Config{
		Gateway: GatewayConfig{
			URL:            gatewayURL,
			CredsPath:      credsPath,
			ReconnectDelay: time.Duration(reconnectSec) * time.Second,
		},
		Groq: GroqConfig{
			APIKey:  os.Getenv("GROQ_API_KEY"),
			Model:   os.Getenv("GROQ_MODEL"),
			Timeout: time.Duration(genTimeoutSec) * time.Second,
		},
		Storage: StorageConfig{
			DBPath: dbPath,
		},
		HTTP: HTTPConfig{
			Port:              port,
			KeepaliveInterval: time.Duration(keepaliveMin) * time.Minute,
		},
		Persona:  persona,
		AdminIDs: adminIDs,
		Debug:    os.Getenv("DEBUG") == "true",
	}
}

// ToSessionConfig converts to the session controller policy
func (c *Config) ToSessionConfig() usecase.SessionConfig {
	p := c.Persona
	privileged := make(map[string]bool, len(c.AdminIDs))
	for _, id := range c.AdminIDs {
		privileged[id] = true
	}
	return usecase.SessionConfig{
		BotName:             p.BotName,
		ActivateCmd:         p.Commands.Activate,
		DeactivateCmd:       p.Commands.Deactivate,
		CommandContains:     p.Commands.Contains,
		ActivateAck:         p.Commands.ActivateAck,
		DeactivateAck:       p.Commands.DeactivateAck,
		AllowInvocationName: p.Policy.AllowInvocationName,
		AllowMention:        p.Policy.AllowMention,
		AllowQuote:          p.Policy.AllowQuote,
		DefaultActive:       p.Policy.DefaultActive,
		Privileged:          privileged,
	}
}

// ToReplyConfig converts to the reply orchestrator configuration
func (c *Config) ToReplyConfig() usecase.ReplyConfig {
	cfg := usecase.DefaultReplyConfig()
	cfg.Persona = c.Persona.Persona
	cfg.HistoryCapacity = c.Persona.History.Capacity
	cfg.Timeout = c.Groq.Timeout
	return cfg
}

// ToAffectConfig converts to the affect transition parameters
func (c *Config) ToAffectConfig() domain.AffectConfig {
	return domain.AffectConfig{
		MaxLevel:        c.Persona.Affect.MaxLevel,
		ApologyDiscount: c.Persona.Affect.ApologyDiscount,
		DecayWindow:     c.Persona.DecayWindow(),
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Groq.APIKey == "" {
		return &ConfigError{Field: "GROQ_API_KEY", Message: "required"}
	}
	return nil
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Field + ": " + e.Message
}
