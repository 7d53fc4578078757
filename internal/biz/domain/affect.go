package domain

import (
	"strings"
	"time"
)

// Classifier decides which lexicon class a lowercased text belongs to.
// Pluggable so trigger/apology lexicons are swappable without touching
// the transition rules.
type Classifier interface {
	IsApology(lower string) bool
	IsTrigger(lower string) bool
}

// LexiconClassifier matches by substring containment on lowercased text.
// Partial-word hits (e.g. "expect" containing "ex") are accepted
// behavior inherited from the deployed lexicons, not tokenized away.
type LexiconClassifier struct {
	Triggers  []string
	Apologies []string
}

// DefaultTriggerLexicon lists third-person/rival references that raise jealousy
func DefaultTriggerLexicon() []string {
	return []string{"gf", "girlfriend", "ex", "dusri", "kisi aur", "another girl"}
}

// DefaultApologyLexicon lists apology tokens that lower jealousy
func DefaultApologyLexicon() []string {
	return []string{"sorry", "maaf", "galti", "my mistake", "forgive"}
}

// NewLexiconClassifier creates a classifier; empty lists fall back to defaults
func NewLexiconClassifier(triggers, apologies []string) *LexiconClassifier {
	if len(triggers) == 0 {
		triggers = DefaultTriggerLexicon()
	}
	if len(apologies) == 0 {
		apologies = DefaultApologyLexicon()
	}
	return &LexiconClassifier{Triggers: triggers, Apologies: apologies}
}

// IsApology reports whether text contains any apology token
func (c *LexiconClassifier) IsApology(lower string) bool {
	return containsAny(lower, c.Apologies)
}

// IsTrigger reports whether text contains any jealousy-trigger token
func (c *LexiconClassifier) IsTrigger(lower string) bool {
	return containsAny(lower, c.Triggers)
}

func containsAny(s string, tokens []string) bool {
	for _, t := range tokens {
		if t != "" && strings.Contains(s, t) {
			return true
		}
	}
	return false
}

// AffectConfig holds the transition parameters
type AffectConfig struct {
	MaxLevel        int           // jealousy cap
	ApologyDiscount int           // subtracted on apology
	DecayWindow     time.Duration // idle time before passive decay
}

// DefaultAffectConfig returns the observed production parameters
func DefaultAffectConfig() AffectConfig {
	return AffectConfig{
		MaxLevel:        4,
		ApologyDiscount: 2,
		DecayWindow:     10 * time.Minute,
	}
}

// AffectResult reports which transition rules fired in one evaluation
type AffectResult struct {
	Apologized bool
	Triggered  bool
	Decayed    bool
}

// AffectEngine evolves a sender's jealousy level from message content
// and elapsed time
type AffectEngine struct {
	classifier Classifier
	cfg        AffectConfig
}

// NewAffectEngine creates an engine with the given classifier and config
func NewAffectEngine(classifier Classifier, cfg AffectConfig) *AffectEngine {
	if classifier == nil {
		classifier = NewLexiconClassifier(nil, nil)
	}
	if cfg.MaxLevel <= 0 {
		cfg = DefaultAffectConfig()
	}
	return &AffectEngine{classifier: classifier, cfg: cfg}
}

// Apply evaluates one inbound message against the current state and
// mutates it in place. Apology and trigger are mutually exclusive per
// message; passive decay is evaluated after either, on the resulting
// level, and fires at most once per call. lastTriggerAt is not reset by
// decay, so each later evaluation past the window decays one more step.
func (e *AffectEngine) Apply(m *SenderMemory, lowerText string, now time.Time) AffectResult {
	var res AffectResult

	switch {
	case m.Jealousy > 0 && e.classifier.IsApology(lowerText):
		m.Jealousy -= e.cfg.ApologyDiscount
		if m.Jealousy < 0 {
			m.Jealousy = 0
		}
		res.Apologized = true
	case e.classifier.IsTrigger(lowerText):
		if m.Jealousy < e.cfg.MaxLevel {
			m.Jealousy++
		}
		m.LastTriggerAt = now
		m.LastTriggerText = lowerText
		res.Triggered = true
	}

	if m.Jealousy > 0 && !m.LastTriggerAt.IsZero() && now.Sub(m.LastTriggerAt) > e.cfg.DecayWindow {
		m.Jealousy--
		res.Decayed = true
	}

	m.UpdatedAt = now
	return res
}
