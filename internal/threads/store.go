package threads

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"gathergrove/internal/cache"
	"gathergrove/internal/models"
)

const cacheKey = "threads/state"

// Store is the session-local message-thread store. Threads have no server
// sync; they live in memory and are mirrored to the key-value cache after
// every mutation for warm-start.
type Store struct {
	mu       sync.Mutex
	threads  map[string]models.Thread
	messages map[string][]models.Message

	kv     cache.Store
	logger *zap.Logger
}

type cachedState struct {
	Threads  map[string]models.Thread    `json:"threads"`
	Messages map[string][]models.Message `json:"messages"`
}

func NewStore(kv cache.Store, logger *zap.Logger) *Store {
	return &Store{
		threads:  map[string]models.Thread{},
		messages: map[string][]models.Message{},
		kv:       kv,
		logger:   logger,
	}
}

// WarmStart loads cached threads; a missing or corrupt entry means starting
// empty.
func (s *Store) WarmStart(ctx context.Context) {
	if s.kv == nil {
		return
	}
	b, found, err := s.kv.Get(ctx, cacheKey)
	if err != nil || !found {
		return
	}
	var state cachedState
	if err := json.Unmarshal(b, &state); err != nil {
		if s.logger != nil {
			s.logger.Warn("discarding corrupt cached threads", zap.Error(err))
		}
		return
	}
	s.mu.Lock()
	if state.Threads != nil {
		s.threads = state.Threads
	}
	if state.Messages != nil {
		s.messages = state.Messages
	}
	s.mu.Unlock()
}

// Threads lists every thread, most recently active first.
func (s *Store) Threads() []models.Thread {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Thread, 0, len(s.threads))
	for _, th := range s.threads {
		out = append(out, th)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].LastActivity.After(out[j].LastActivity)
	})
	return out
}

// Messages returns a thread's messages in send order.
func (s *Store) Messages(threadID string) []models.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	msgs := s.messages[threadID]
	out := make([]models.Message, len(msgs))
	copy(out, msgs)
	return out
}

// Append adds a message, creating the thread lazily on first use.
func (s *Store) Append(ctx context.Context, threadID string, from models.Person, body string) models.Message {
	now := time.Now().UTC()
	msg := models.Message{
		ID:       uuid.NewString(),
		ThreadID: threadID,
		From:     from,
		Body:     body,
		SentAt:   now,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	th, ok := s.threads[threadID]
	if !ok {
		th = models.Thread{ID: threadID}
	}
	if from.ID != "" && !hasParticipant(th.Participants, from.ID) {
		th.Participants = append(th.Participants, from)
	}
	th.LastActivity = now
	s.threads[threadID] = th
	s.messages[threadID] = append(s.messages[threadID], msg)
	s.persistLocked(ctx)
	return msg
}

// MarkRead records that the viewer has seen everything up to now.
func (s *Store) MarkRead(ctx context.Context, threadID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	th, ok := s.threads[threadID]
	if !ok {
		return
	}
	th.LastReadAt = time.Now().UTC()
	s.threads[threadID] = th
	s.persistLocked(ctx)
}

// Unread counts messages sent after the viewer's last read mark.
func (s *Store) Unread(threadID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	th, ok := s.threads[threadID]
	if !ok {
		return 0
	}
	n := 0
	for _, msg := range s.messages[threadID] {
		if msg.SentAt.After(th.LastReadAt) {
			n++
		}
	}
	return n
}

func (s *Store) persistLocked(ctx context.Context) {
	if s.kv == nil {
		return
	}
	b, err := json.Marshal(cachedState{Threads: s.threads, Messages: s.messages})
	if err != nil {
		return
	}
	if err := s.kv.Set(ctx, cacheKey, b, 0); err != nil && s.logger != nil {
		s.logger.Warn("threads cache write failed", zap.Error(err))
	}
}

func hasParticipant(people []models.Person, id string) bool {
	for _, p := range people {
		if p.ID == id {
			return true
		}
	}
	return false
}
