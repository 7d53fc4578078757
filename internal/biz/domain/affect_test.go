package domain

import (
	"testing"
	"time"
)

func newTestEngine() *AffectEngine {
	return NewAffectEngine(NewLexiconClassifier(nil, nil), DefaultAffectConfig())
}

func TestTriggerIncreasesLevel(t *testing.T) {
	e := newTestEngine()
	m := NewSenderMemory("user-1")
	now := time.Now()

	res := e.Apply(m, "i met my ex today", now)

	if !res.Triggered {
		t.Error("Expected trigger to fire")
	}
	if m.Jealousy != 1 {
		t.Errorf("Jealousy = %d, want 1", m.Jealousy)
	}
	if !m.LastTriggerAt.Equal(now) {
		t.Error("LastTriggerAt not set to evaluation time")
	}
	if m.LastTriggerText != "i met my ex today" {
		t.Errorf("LastTriggerText = %q", m.LastTriggerText)
	}
}

func TestTriggerCapsAtMax(t *testing.T) {
	e := newTestEngine()
	m := NewSenderMemory("user-1")
	now := time.Now()

	for i := 0; i < 10; i++ {
		e.Apply(m, "another girl texted me", now)
	}

	if m.Jealousy != 4 {
		t.Errorf("Jealousy = %d, want cap 4", m.Jealousy)
	}
}

func TestApologyDiscountsLevel(t *testing.T) {
	e := newTestEngine()
	m := NewSenderMemory("user-1")
	m.Jealousy = 3
	m.LastTriggerAt = time.Now()

	res := e.Apply(m, "sorry, forgive me", time.Now())

	if !res.Apologized {
		t.Error("Expected apology to fire")
	}
	if m.Jealousy != 1 {
		t.Errorf("Jealousy = %d, want 1 (3 - 2)", m.Jealousy)
	}
}

func TestApologyFlooredAtZero(t *testing.T) {
	e := newTestEngine()
	m := NewSenderMemory("user-1")
	m.Jealousy = 1
	m.LastTriggerAt = time.Now()

	e.Apply(m, "maaf kar do", time.Now())

	if m.Jealousy != 0 {
		t.Errorf("Jealousy = %d, want floor 0", m.Jealousy)
	}
}

func TestApologyIgnoredAtZeroLevel(t *testing.T) {
	e := newTestEngine()
	m := NewSenderMemory("user-1")

	res := e.Apply(m, "sorry yaar", time.Now())

	if res.Apologized {
		t.Error("Apology must not fire at level 0")
	}
	if m.Jealousy != 0 {
		t.Errorf("Jealousy = %d, want 0", m.Jealousy)
	}
}

// A message containing both an apology and a trigger applies only the
// apology when the level is nonzero.
func TestApologyAndTriggerMutuallyExclusive(t *testing.T) {
	e := newTestEngine()
	m := NewSenderMemory("user-1")
	m.Jealousy = 3
	m.LastTriggerAt = time.Now()

	res := e.Apply(m, "sorry about my ex", time.Now())

	if !res.Apologized || res.Triggered {
		t.Errorf("got apologized=%v triggered=%v, want apology only", res.Apologized, res.Triggered)
	}
	if m.Jealousy != 1 {
		t.Errorf("Jealousy = %d, want 1", m.Jealousy)
	}
}

// At level 0 the apology leg cannot fire, so the trigger leg applies.
func TestTriggerWinsAtZeroLevel(t *testing.T) {
	e := newTestEngine()
	m := NewSenderMemory("user-1")

	res := e.Apply(m, "sorry about my ex", time.Now())

	if !res.Triggered {
		t.Error("Expected trigger at level 0")
	}
	if m.Jealousy != 1 {
		t.Errorf("Jealousy = %d, want 1", m.Jealousy)
	}
}

func TestPassiveDecayAfterWindow(t *testing.T) {
	e := newTestEngine()
	m := NewSenderMemory("user-1")
	now := time.Now()

	e.Apply(m, "your ex called", now)
	if m.Jealousy != 1 {
		t.Fatalf("Jealousy = %d, want 1", m.Jealousy)
	}

	// Neutral message past the decay window cools one step
	res := e.Apply(m, "what's for dinner", now.Add(11*time.Minute))
	if !res.Decayed {
		t.Error("Expected decay to fire")
	}
	if m.Jealousy != 0 {
		t.Errorf("Jealousy = %d, want 0", m.Jealousy)
	}
}

func TestDecayFiresOncePerEvaluation(t *testing.T) {
	e := newTestEngine()
	m := NewSenderMemory("user-1")
	now := time.Now()

	for i := 0; i < 4; i++ {
		e.Apply(m, "kisi aur se baat", now)
	}
	if m.Jealousy != 4 {
		t.Fatalf("Jealousy = %d, want 4", m.Jealousy)
	}

	// Many windows elapse, but one evaluation decays exactly one step
	e.Apply(m, "hello", now.Add(100*time.Minute))
	if m.Jealousy != 3 {
		t.Errorf("Jealousy = %d, want 3 after one evaluation", m.Jealousy)
	}

	// Decay does not reset LastTriggerAt, so each later evaluation
	// continues cooling one step at a time
	e.Apply(m, "hello again", now.Add(200*time.Minute))
	if m.Jealousy != 2 {
		t.Errorf("Jealousy = %d, want 2 after second evaluation", m.Jealousy)
	}
}

func TestDecayAppliesToTriggerResult(t *testing.T) {
	e := newTestEngine()
	m := NewSenderMemory("user-1")
	now := time.Now()

	e.Apply(m, "gf gf gf", now)
	e.Apply(m, "gf again", now)
	if m.Jealousy != 2 {
		t.Fatalf("Jealousy = %d, want 2", m.Jealousy)
	}

	// Trigger past the window: +1 then decay is not evaluated against
	// the old trigger time because the trigger refreshed it
	res := e.Apply(m, "dusri ladki", now.Add(20*time.Minute))
	if !res.Triggered {
		t.Error("Expected trigger")
	}
	if res.Decayed {
		t.Error("Decay must not fire when the trigger just refreshed LastTriggerAt")
	}
	if m.Jealousy != 3 {
		t.Errorf("Jealousy = %d, want 3", m.Jealousy)
	}
}

func TestLevelStaysInBounds(t *testing.T) {
	e := newTestEngine()
	m := NewSenderMemory("user-1")
	now := time.Now()

	inputs := []string{
		"gf", "sorry", "ex", "ex", "ex", "ex", "ex",
		"maaf", "maaf", "hello", "another girl", "forgive me",
	}
	for i, text := range inputs {
		e.Apply(m, text, now.Add(time.Duration(i)*time.Minute))
		if m.Jealousy < 0 || m.Jealousy > 4 {
			t.Fatalf("Jealousy = %d out of bounds after %q", m.Jealousy, text)
		}
	}
}

// Apply is a pure function of (state, text, now): the record carries
// the evaluation time, not the wall clock
func TestApplyStampsEvaluationTime(t *testing.T) {
	e := newTestEngine()
	m := NewSenderMemory("user-1")
	past := time.Now().Add(-time.Hour)

	e.Apply(m, "hello", past)

	if !m.UpdatedAt.Equal(past) {
		t.Errorf("UpdatedAt = %v, want the injected evaluation time %v", m.UpdatedAt, past)
	}
}

// Lexicon matching is substring containment, not word-boundary: this
// is inherited behavior the engine must preserve.
func TestSubstringMatching(t *testing.T) {
	c := NewLexiconClassifier(nil, nil)

	if !c.IsTrigger("i expect you to come") { // "ex" inside "expect"
		t.Error("Substring containment should match partial words")
	}
	if !c.IsApology("sorry!") {
		t.Error("Expected apology match")
	}
	if c.IsTrigger("hello there") {
		t.Error("Unexpected trigger match")
	}
}
