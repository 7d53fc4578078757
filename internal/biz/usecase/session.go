package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/softclay/ana-bridge/internal/biz/domain"
	"github.com/softclay/ana-bridge/internal/biz/repo"
)

// Verdict is the admission outcome for one inbound message
type Verdict int

const (
	// VerdictSkip means silently rejected: no reply, no state mutation
	VerdictSkip Verdict = iota
	// VerdictCommand means a control command was consumed and acknowledged
	VerdictCommand
	// VerdictAdmit means proceed to state update and reply generation
	VerdictAdmit
)

// Admission is the result of running a message through the gate
type Admission struct {
	Verdict    Verdict
	Reason     string // rejection reason, for logging only
	Privileged bool   // sender is in the configured privileged set
}

// SessionConfig holds the session controller policy
type SessionConfig struct {
	BotName         string
	ActivateCmd     string
	DeactivateCmd   string
	CommandContains bool // substring match instead of exact
	ActivateAck     string
	DeactivateAck   string

	// Group admission legs (inclusive-OR)
	AllowInvocationName bool
	AllowMention        bool
	AllowQuote          bool

	// Whether chats respond before an explicit activate command
	DefaultActive bool

	// Privileged sender identities (context only, no admission effect)
	Privileged map[string]bool
}

// SessionUsecase is the gatekeeper for every inbound message
type SessionUsecase struct {
	controlRepo repo.ControlRepo
	transport   repo.TransportRepo
	dedup       *DedupCache
	cooldown    *CooldownTable
	cfg         SessionConfig
	selfID      func() string // bot's own participant ID, known once connected
	now         func() time.Time
}

// NewSessionUsecase creates a new session usecase
func NewSessionUsecase(
	controlRepo repo.ControlRepo,
	transport repo.TransportRepo,
	dedup *DedupCache,
	cooldown *CooldownTable,
	cfg SessionConfig,
	selfID func() string,
) *SessionUsecase {
	if selfID == nil {
		selfID = func() string { return "" }
	}
	return &SessionUsecase{
		controlRepo: controlRepo,
		transport:   transport,
		dedup:       dedup,
		cooldown:    cooldown,
		cfg:         cfg,
		selfID:      selfID,
		now:         time.Now,
	}
}

// Admit runs the admission sequence. Checks short-circuit: first match
// wins. Order matters: deactivated chats must reject before the
// cooldown consumes the sender's slot.
func (uc *SessionUsecase) Admit(ctx context.Context, msg *domain.InboundMessage) (*Admission, error) {
	// 1. Own messages and textless events are never processed
	if msg.FromMe {
		return &Admission{Verdict: VerdictSkip, Reason: "own message"}, nil
	}
	if !msg.HasText() {
		return &Admission{Verdict: VerdictSkip, Reason: "no extractable text"}, nil
	}

	now := uc.now()
	lower := msg.LowerText()
	isActivate := uc.matchCommand(lower, uc.cfg.ActivateCmd)
	isDeactivate := uc.matchCommand(lower, uc.cfg.DeactivateCmd)

	// 2. Duplicate suppression
	if uc.dedup.Seen(msg.ID, now) {
		return &Admission{Verdict: VerdictSkip, Reason: "duplicate"}, nil
	}

	// 3. Group admission: admit only addressed messages and control commands
	if msg.IsGroup && !isActivate && !isDeactivate && !uc.groupAddressed(msg, lower) {
		return &Admission{Verdict: VerdictSkip, Reason: "group message not addressed to bot"}, nil
	}

	// 4. Control command interception
	if isActivate || isDeactivate {
		if err := uc.handleCommand(ctx, msg, isActivate); err != nil {
			return nil, err
		}
		return &Admission{Verdict: VerdictCommand}, nil
	}

	// 5. Activation gate
	control, err := uc.controlRepo.Get(ctx, msg.ChatID)
	if err != nil {
		return nil, fmt.Errorf("get control: %w", err)
	}
	active := uc.cfg.DefaultActive
	if control != nil {
		active = control.Active
	}
	if !active {
		return &Admission{Verdict: VerdictSkip, Reason: "chat inactive"}, nil
	}

	// 6. Per-sender cooldown
	if !uc.cooldown.AllowAt(msg.SenderID, now) {
		return &Admission{Verdict: VerdictSkip, Reason: "cooldown"}, nil
	}

	// 7. Admitted
	return &Admission{
		Verdict:    VerdictAdmit,
		Privileged: uc.cfg.Privileged[msg.SenderID],
	}, nil
}

// handleCommand toggles chat activation, persists it, and acknowledges.
// Idempotent: re-activating an active chat just re-acknowledges.
func (uc *SessionUsecase) handleCommand(ctx context.Context, msg *domain.InboundMessage, activate bool) error {
	control, err := uc.controlRepo.Get(ctx, msg.ChatID)
	if err != nil {
		return fmt.Errorf("get control: %w", err)
	}
	if control == nil {
		control = domain.NewChatControl(msg.ChatID, uc.cfg.DefaultActive)
	}
	control.SetActive(activate)

	if err := uc.controlRepo.Save(ctx, control); err != nil {
		return fmt.Errorf("save control: %w", err)
	}

	ack := uc.cfg.ActivateAck
	if !activate {
		ack = uc.cfg.DeactivateAck
	}
	if err := uc.transport.SendText(ctx, msg.ChatID, ack, &repo.SendOptions{QuotedID: msg.ID}); err != nil {
		// Activation already persisted; a lost ack is a transport concern
		fmt.Printf("[Session] Ack send failed for %s: %v\n", msg.ChatID, err)
	}
	return nil
}

// groupAddressed evaluates the group admission predicate (inclusive-OR
// over the enabled legs)
func (uc *SessionUsecase) groupAddressed(msg *domain.InboundMessage, lower string) bool {
	if uc.cfg.AllowMention && msg.MentionsID(uc.selfID()) {
		return true
	}
	if uc.cfg.AllowInvocationName && uc.cfg.BotName != "" &&
		strings.Contains(lower, strings.ToLower(uc.cfg.BotName)) {
		return true
	}
	if uc.cfg.AllowQuote && msg.HasQuote {
		return true
	}
	return false
}

func (uc *SessionUsecase) matchCommand(lower, cmd string) bool {
	if cmd == "" {
		return false
	}
	cmd = strings.ToLower(cmd)
	if uc.cfg.CommandContains {
		return strings.Contains(lower, cmd)
	}
	return strings.TrimSpace(lower) == cmd
}
