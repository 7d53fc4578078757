package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/softclay/ana-bridge/internal/biz/domain"
	"github.com/softclay/ana-bridge/internal/biz/repo"
	"github.com/softclay/ana-bridge/internal/biz/usecase"
)

type memControlRepo struct {
	mu       sync.Mutex
	controls map[string]*domain.ChatControl
}

func (m *memControlRepo) Get(ctx context.Context, chatID string) (*domain.ChatControl, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.controls[chatID], nil
}

func (m *memControlRepo) Save(ctx context.Context, c *domain.ChatControl) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.controls[c.ChatID] = c
	return nil
}

func (m *memControlRepo) Close() error { return nil }

type memMemoryRepo struct {
	mu       sync.Mutex
	memories map[string]*domain.SenderMemory
}

func (m *memMemoryRepo) Get(ctx context.Context, senderID string) (*domain.SenderMemory, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.memories[senderID], nil
}

func (m *memMemoryRepo) Save(ctx context.Context, mem *domain.SenderMemory) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.memories[mem.SenderID] = mem
	return nil
}

func (m *memMemoryRepo) ListAll(ctx context.Context) ([]*domain.SenderMemory, error) {
	return nil, nil
}

func (m *memMemoryRepo) Close() error { return nil }

type scriptedGenerator struct {
	mu    sync.Mutex
	calls int
}

func (g *scriptedGenerator) Generate(ctx context.Context, req *repo.GenerateRequest) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	return "reply", nil
}

func (g *scriptedGenerator) callCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

type recordingTransport struct {
	mu    sync.Mutex
	texts []string
	sent  chan struct{}
}

func newRecordingTransport() *recordingTransport {
	return &recordingTransport{sent: make(chan struct{}, 16)}
}

func (t *recordingTransport) SendText(ctx context.Context, chatID, text string, opts *repo.SendOptions) error {
	t.mu.Lock()
	t.texts = append(t.texts, text)
	t.mu.Unlock()
	t.sent <- struct{}{}
	return nil
}

func (t *recordingTransport) SendPresence(ctx context.Context, chatID, state string) error {
	return nil
}

func (t *recordingTransport) sentTexts() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]string, len(t.texts))
	copy(out, t.texts)
	return out
}

func newTestService(tr *recordingTransport, gen *scriptedGenerator) *ConversationService {
	ctrl := &memControlRepo{controls: make(map[string]*domain.ChatControl)}
	mem := &memMemoryRepo{memories: make(map[string]*domain.SenderMemory)}

	sessionUC := usecase.NewSessionUsecase(
		ctrl, tr,
		usecase.NewDedupCache(60*time.Second),
		usecase.NewCooldownTable(time.Millisecond),
		usecase.SessionConfig{
			BotName:       "ana",
			ActivateCmd:   "@start-ana",
			DeactivateCmd: "@stop-ana",
			ActivateAck:   "on",
			DeactivateAck: "off",
		},
		nil,
	)
	replyUC := usecase.NewReplyUsecase(
		mem, gen, tr,
		domain.NewAffectEngine(nil, domain.DefaultAffectConfig()),
		usecase.DefaultReplyConfig(),
	)
	return NewConversationService(sessionUC, replyUC)
}

func waitSend(t *testing.T, tr *recordingTransport) {
	t.Helper()
	select {
	case <-tr.sent:
	case <-time.After(2 * time.Second):
		t.Fatal("Timed out waiting for a send")
	}
}

func TestBatchActivationThenReply(t *testing.T) {
	tr := newRecordingTransport()
	gen := &scriptedGenerator{}
	svc := newTestService(tr, gen)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	svc.Start(ctx)

	svc.HandleBatch([]*domain.InboundMessage{
		{ID: "m1", ChatID: "chat-1", SenderID: "user@s.net", Text: "@start-ana"},
	})
	waitSend(t, tr) // activation ack, sent inline

	svc.HandleBatch([]*domain.InboundMessage{
		{ID: "m2", ChatID: "chat-1", SenderID: "user@s.net", Text: "hello"},
	})
	waitSend(t, tr) // generated reply, sent by the worker

	texts := tr.sentTexts()
	if len(texts) != 2 || texts[0] != "on" || texts[1] != "reply" {
		t.Fatalf("Sent = %v, want ack then reply", texts)
	}
	if gen.callCount() != 1 {
		t.Errorf("Generator calls = %d, want 1", gen.callCount())
	}
}

func TestBatchSkipsInactiveChat(t *testing.T) {
	tr := newRecordingTransport()
	gen := &scriptedGenerator{}
	svc := newTestService(tr, gen)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	svc.Start(ctx)

	svc.HandleBatch([]*domain.InboundMessage{
		{ID: "m1", ChatID: "chat-1", SenderID: "user@s.net", Text: "hello"},
		{ID: "m2", ChatID: "chat-1", SenderID: "user@s.net", Text: "anyone there?"},
	})

	// Give any stray worker a moment to misbehave
	time.Sleep(50 * time.Millisecond)

	if got := tr.sentTexts(); len(got) != 0 {
		t.Errorf("Sent = %v, want nothing from an inactive chat", got)
	}
	if gen.callCount() != 0 {
		t.Errorf("Generator calls = %d, want 0", gen.callCount())
	}
}

func TestSameSenderSerialized(t *testing.T) {
	tr := newRecordingTransport()
	gen := &scriptedGenerator{}
	svc := newTestService(tr, gen)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	svc.Start(ctx)

	// Activate first
	svc.HandleBatch([]*domain.InboundMessage{
		{ID: "m1", ChatID: "chat-1", SenderID: "user@s.net", Text: "@start-ana"},
	})
	waitSend(t, tr)

	// Cooldown interval is a millisecond, so spaced messages all admit
	for _, id := range []string{"m2", "m3", "m4"} {
		time.Sleep(5 * time.Millisecond)
		svc.HandleBatch([]*domain.InboundMessage{
			{ID: id, ChatID: "chat-1", SenderID: "user@s.net", Text: "msg " + id},
		})
	}
	for i := 0; i < 3; i++ {
		waitSend(t, tr)
	}

	if gen.callCount() != 3 {
		t.Errorf("Generator calls = %d, want 3", gen.callCount())
	}
}
