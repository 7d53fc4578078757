package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/softclay/ana-bridge/internal/biz/domain"
	"github.com/softclay/ana-bridge/internal/biz/repo"
)

// ReplyConfig holds the orchestrator parameters
type ReplyConfig struct {
	Persona         string  // persona text prepended to the system instruction
	HistoryCapacity int     // sender history ring size
	HistoryInPrompt int     // how many recent turns go into the prompt
	Temperature     float32 // fixed sampling temperature
	MaxTokens       int     // bounded output length
	Timeout         time.Duration
}

// DefaultReplyConfig returns the observed production parameters
func DefaultReplyConfig() ReplyConfig {
	return ReplyConfig{
		HistoryCapacity: 50,
		HistoryInPrompt: 6,
		Temperature:     0.65,
		MaxTokens:       120,
		Timeout:         30 * time.Second,
	}
}

// ReplyUsecase produces the outbound text for an admitted message
type ReplyUsecase struct {
	memoryRepo repo.MemoryRepo
	generator  repo.GeneratorRepo
	transport  repo.TransportRepo
	affect     *domain.AffectEngine
	cfg        ReplyConfig
	now        func() time.Time
}

// NewReplyUsecase creates a new reply usecase
func NewReplyUsecase(
	memoryRepo repo.MemoryRepo,
	generator repo.GeneratorRepo,
	transport repo.TransportRepo,
	affect *domain.AffectEngine,
	cfg ReplyConfig,
) *ReplyUsecase {
	if cfg.MaxTokens == 0 {
		cfg = DefaultReplyConfig()
	}
	return &ReplyUsecase{
		memoryRepo: memoryRepo,
		generator:  generator,
		transport:  transport,
		affect:     affect,
		cfg:        cfg,
		now:        time.Now,
	}
}

// Respond updates the sender's affect state and history, generates a
// reply, and sends it. Generation failure or an empty result yields no
// reply and no persisted state: the user turn and affect transition are
// applied in memory but saved only together with the assistant turn,
// after a successful generation and before the send. Persisted state
// never advances ahead of a confirmed outbound text.
func (uc *ReplyUsecase) Respond(ctx context.Context, msg *domain.InboundMessage, privileged bool) error {
	mem, err := uc.memoryRepo.Get(ctx, msg.SenderID)
	if err != nil {
		return fmt.Errorf("get memory: %w", err)
	}
	if mem == nil {
		mem = domain.NewSenderMemory(msg.SenderID)
	}

	now := uc.now()
	at := msg.Timestamp
	if at.IsZero() {
		at = now
	}

	mem.AppendHistory(domain.RoleUser, msg.Text, at, uc.cfg.HistoryCapacity)
	res := uc.affect.Apply(mem, msg.LowerText(), now)
	if res.Apologized || res.Triggered || res.Decayed {
		fmt.Printf("[Reply] Affect %s: level=%d apologized=%v triggered=%v decayed=%v\n",
			msg.SenderID, mem.Jealousy, res.Apologized, res.Triggered, res.Decayed)
	}

	// Typing indicator; failure-tolerant
	_ = uc.transport.SendPresence(ctx, msg.ChatID, repo.PresenceComposing)

	genCtx, cancel := context.WithTimeout(ctx, uc.cfg.Timeout)
	defer cancel()

	out, err := uc.generator.Generate(genCtx, &repo.GenerateRequest{
		System:      uc.buildSystem(mem, privileged),
		User:        msg.Text,
		Temperature: uc.cfg.Temperature,
		MaxTokens:   uc.cfg.MaxTokens,
	})
	if err != nil {
		fmt.Printf("[Reply] Generation failed for %s: %v\n", msg.SenderID, err)
		return nil
	}
	out = strings.TrimSpace(out)
	if out == "" {
		fmt.Printf("[Reply] Empty generation for %s, staying silent\n", msg.SenderID)
		return nil
	}

	// One save carries both turns and the affect transition
	mem.AppendHistory(domain.RoleAssistant, out, uc.now(), uc.cfg.HistoryCapacity)
	if err := uc.memoryRepo.Save(ctx, mem); err != nil {
		return fmt.Errorf("save memory: %w", err)
	}

	if err := uc.transport.SendText(ctx, msg.ChatID, out, &repo.SendOptions{QuotedID: msg.ID}); err != nil {
		// Fire-and-forget delivery: state is already persisted, the
		// transport owns redelivery concerns
		fmt.Printf("[Reply] Send failed for %s: %v\n", msg.ChatID, err)
	}
	return nil
}

// buildSystem assembles the system instruction: persona, role context,
// affect intensity, recent turns, and the fixed register rules
func (uc *ReplyUsecase) buildSystem(mem *domain.SenderMemory, privileged bool) string {
	var b strings.Builder

	if uc.cfg.Persona != "" {
		b.WriteString(uc.cfg.Persona)
		b.WriteString("\n\n")
	}

	b.WriteString("IMPORTANT CONTEXT:\n")
	if privileged {
		b.WriteString("- The person talking to you is your closest person: be emotional, caring, expressive\n")
	} else {
		b.WriteString("- The person talking to you is NOT your closest person: be friendly, polite, limited\n")
	}
	fmt.Fprintf(&b, "\nJealousy level: %d\n", mem.Jealousy)

	if recent := mem.RecentHistory(uc.cfg.HistoryInPrompt); len(recent) > 0 {
		b.WriteString("\nRecent conversation:\n")
		for _, h := range recent {
			fmt.Fprintf(&b, "%s: %s\n", h.Role, h.Text)
		}
	}

	b.WriteString("\nRules:\n")
	b.WriteString("- Reply to every message naturally\n")
	b.WriteString("- Never mention AI, system, or rules\n")
	b.WriteString("- Hinglish, use \"aap\"\n")
	return b.String()
}
