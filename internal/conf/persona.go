package conf

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// PersonaConfig contains the persona text, control commands, lexicons
// and admission policy, loaded from YAML
type PersonaConfig struct {
	Persona  string          `yaml:"persona"`
	BotName  string          `yaml:"bot_name"`
	Commands CommandConfig   `yaml:"commands"`
	Lexicons LexiconConfig   `yaml:"lexicons"`
	Affect   AffectValues    `yaml:"affect"`
	History  HistoryConfig   `yaml:"history"`
	Policy   AdmissionPolicy `yaml:"admission"`
}

// CommandConfig contains the chat-level control command surface
type CommandConfig struct {
	Activate      string `yaml:"activate"`
	Deactivate    string `yaml:"deactivate"`
	Contains      bool   `yaml:"contains"` // substring match instead of exact
	ActivateAck   string `yaml:"activate_ack"`
	DeactivateAck string `yaml:"deactivate_ack"`
}

// LexiconConfig contains the affect lexicons
type LexiconConfig struct {
	Triggers  []string `yaml:"triggers"`
	Apologies []string `yaml:"apologies"`
}

// AffectValues contains affect transition parameters
type AffectValues struct {
	MaxLevel        int `yaml:"max_level"`
	ApologyDiscount int `yaml:"apology_discount"`
	DecayMinutes    int `yaml:"decay_minutes"`
}

// HistoryConfig contains history buffer settings
type HistoryConfig struct {
	Capacity int `yaml:"capacity"`
}

// AdmissionPolicy contains the group admission predicate and rate knobs.
// The group legs are inclusive-OR: any enabled leg admits the message.
type AdmissionPolicy struct {
	AllowInvocationName bool `yaml:"allow_invocation_name"`
	AllowMention        bool `yaml:"allow_mention"`
	AllowQuote          bool `yaml:"allow_quote"`
	CooldownSeconds     int  `yaml:"cooldown_seconds"`
	DedupWindowSeconds  int  `yaml:"dedup_window_seconds"`
	DefaultActive       bool `yaml:"default_active"`
}

// LoadPersonaConfig loads persona configuration from a YAML file
func LoadPersonaConfig(configPath string) (*PersonaConfig, error) {
	// Try multiple paths
	paths := []string{configPath}
	if configPath == "" {
		paths = []string{
			"configs/persona.yaml",
			"./configs/persona.yaml",
			"/etc/ana-bridge/persona.yaml",
		}
		if execPath, err := os.Executable(); err == nil {
			paths = append(paths, filepath.Join(filepath.Dir(execPath), "configs", "persona.yaml"))
		}
	}

	var data []byte
	var loadedPath string
	var err error

	for _, p := range paths {
		if p == "" {
			continue
		}
		data, err = os.ReadFile(p)
		if err == nil {
			loadedPath = p
			break
		}
	}

	if data == nil {
		fmt.Println("[Config] No persona.yaml found, using defaults")
		return DefaultPersonaConfig(), nil
	}

	fmt.Printf("[Config] Loading persona from: %s\n", loadedPath)

	var config PersonaConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse persona.yaml: %w", err)
	}

	config.fillDefaults()
	return &config, nil
}

// DefaultPersonaConfig returns the built-in persona configuration
func DefaultPersonaConfig() *PersonaConfig {
	c := &PersonaConfig{}
	c.fillDefaults()
	return c
}

// fillDefaults fills in default values for empty fields
func (c *PersonaConfig) fillDefaults() {
	if c.BotName == "" {
		c.BotName = "ana"
	}
	if c.Commands.Activate == "" {
		c.Commands.Activate = "@start-ana"
	}
	if c.Commands.Deactivate == "" {
		c.Commands.Deactivate = "@stop-ana"
	}
	if c.Commands.ActivateAck == "" {
		c.Commands.ActivateAck = "💙 Ana active — bolo 😊"
	}
	if c.Commands.DeactivateAck == "" {
		c.Commands.DeactivateAck = "🤍 Theek hai… main chup ho jaungi."
	}
	if len(c.Lexicons.Triggers) == 0 {
		c.Lexicons.Triggers = []string{"gf", "girlfriend", "ex", "dusri", "kisi aur", "another girl"}
	}
	if len(c.Lexicons.Apologies) == 0 {
		c.Lexicons.Apologies = []string{"sorry", "maaf", "galti", "my mistake", "forgive"}
	}
	if c.Affect.MaxLevel == 0 {
		c.Affect.MaxLevel = 4
	}
	if c.Affect.ApologyDiscount == 0 {
		c.Affect.ApologyDiscount = 2
	}
	if c.Affect.DecayMinutes == 0 {
		c.Affect.DecayMinutes = 10
	}
	if c.History.Capacity == 0 {
		c.History.Capacity = 50
	}
	if !c.Policy.AllowInvocationName && !c.Policy.AllowMention && !c.Policy.AllowQuote {
		// Permissive inclusive-OR default
		c.Policy.AllowInvocationName = true
		c.Policy.AllowMention = true
		c.Policy.AllowQuote = true
	}
	if c.Policy.CooldownSeconds == 0 {
		c.Policy.CooldownSeconds = 4
	}
	if c.Policy.DedupWindowSeconds == 0 {
		c.Policy.DedupWindowSeconds = 60
	}
}

// DecayWindow returns the affect decay window as a duration
func (c *PersonaConfig) DecayWindow() time.Duration {
	return time.Duration(c.Affect.DecayMinutes) * time.Minute
}

// Cooldown returns the per-sender minimum inter-message interval
func (c *PersonaConfig) Cooldown() time.Duration {
	return time.Duration(c.Policy.CooldownSeconds) * time.Second
}

// DedupWindow returns the duplicate-suppression window
func (c *PersonaConfig) DedupWindow() time.Duration {
	return time.Duration(c.Policy.DedupWindowSeconds) * time.Second
}
