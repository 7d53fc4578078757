package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/softclay/ana-bridge/internal/biz/domain"
	"github.com/softclay/ana-bridge/internal/biz/usecase"
)

// ConversationService consumes inbound message batches and drives the
// admit → update-state → generate → persist → send pipeline.
//
// Batches are filtered in arrival order. Admitted messages are handed
// to a per-sender worker so a generation in flight is never overtaken
// by a later message from the same sender, while different senders
// proceed in parallel.
type ConversationService struct {
	sessionUC *usecase.SessionUsecase
	replyUC   *usecase.ReplyUsecase

	ctx       context.Context
	workersMu sync.Mutex
	workers   map[string]chan job
}

type job struct {
	msg        *domain.InboundMessage
	privileged bool
}

// NewConversationService creates a new conversation service
func NewConversationService(sessionUC *usecase.SessionUsecase, replyUC *usecase.ReplyUsecase) *ConversationService {
	return &ConversationService{
		sessionUC: sessionUC,
		replyUC:   replyUC,
		workers:   make(map[string]chan job),
	}
}

// Start binds the service lifetime to ctx; workers exit when it ends
func (s *ConversationService) Start(ctx context.Context) {
	s.ctx = ctx
}

// HandleBatch processes one transport batch in order. Admission runs
// inline; only admitted messages queue work.
func (s *ConversationService) HandleBatch(msgs []*domain.InboundMessage) {
	ctx := s.ctx
	if ctx == nil {
		ctx = context.Background()
	}

	for _, msg := range msgs {
		adm, err := s.sessionUC.Admit(ctx, msg)
		if err != nil {
			fmt.Printf("[Service] Admission error for %s: %v\n", msg.ID, err)
			continue
		}

		switch adm.Verdict {
		case usecase.VerdictSkip:
			// No reply, no state mutation
		case usecase.VerdictCommand:
			fmt.Printf("[Service] Control command handled in %s\n", msg.ChatID)
		case usecase.VerdictAdmit:
			s.dispatch(ctx, job{msg: msg, privileged: adm.Privileged})
		}
	}
}

// dispatch queues the job on the sender's worker, creating it lazily
func (s *ConversationService) dispatch(ctx context.Context, j job) {
	s.workersMu.Lock()
	ch, ok := s.workers[j.msg.SenderID]
	if !ok {
		ch = make(chan job, 16)
		s.workers[j.msg.SenderID] = ch
		go s.senderWorker(ctx, ch)
	}
	s.workersMu.Unlock()

	select {
	case ch <- j:
	case <-ctx.Done():
	}
}

// senderWorker serializes processing for one sender
func (s *ConversationService) senderWorker(ctx context.Context, ch chan job) {
	for {
		select {
		case <-ctx.Done():
			return
		case j := <-ch:
			if err := s.replyUC.Respond(ctx, j.msg, j.privileged); err != nil {
				fmt.Printf("[Service] Reply error for %s: %v\n", j.msg.SenderID, err)
			}
		}
	}
}
