package usecase

import (
	"context"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/lqnhat/chatcore/internal/models"
)

// In-memory repositories backing the usecase tests. They mirror the mongo
// implementations' contracts: ErrNotFound on missing records, strict $gt
// semantics on time filters, atomic-looking toggles under a mutex.

type fakeConversationRepo struct {
	mu    sync.Mutex
	convs map[primitive.ObjectID]*models.Conversation
}

func newFakeConversationRepo() *fakeConversationRepo {
	return &fakeConversationRepo{convs: map[primitive.ObjectID]*models.Conversation{}}
}

func (r *fakeConversationRepo) GetOrCreateDirect(_ context.Context, userA, userB primitive.ObjectID) (*models.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := models.DirectConversationKey(userA, userB)
	for _, conv := range r.convs {
		if conv.DirectKey == key {
			return conv, nil
		}
	}
	conv := &models.Conversation{
		ID:        primitive.NewObjectID(),
		Members:   []primitive.ObjectID{userA, userB},
		DirectKey: key,
		CreatedAt: time.Now(),
	}
	r.convs[conv.ID] = conv
	return conv, nil
}

func (r *fakeConversationRepo) CreateGroup(_ context.Context, conv *models.Conversation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	conv.ID = primitive.NewObjectID()
	conv.IsGroup = true
	conv.CreatedAt = time.Now()
	r.convs[conv.ID] = conv
	return nil
}

func (r *fakeConversationRepo) GetByID(_ context.Context, id primitive.ObjectID) (*models.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	conv, ok := r.convs[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return conv, nil
}

func (r *fakeConversationRepo) ListByMember(_ context.Context, userID primitive.ObjectID) ([]*models.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Conversation
	for _, conv := range r.convs {
		if conv.HasMember(userID) {
			out = append(out, conv)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *fakeConversationRepo) SetLastRead(_ context.Context, conversationID, userID primitive.ObjectID, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	conv, ok := r.convs[conversationID]
	if !ok {
		return models.ErrNotFound
	}
	if conv.LastRead == nil {
		conv.LastRead = map[string]time.Time{}
	}
	conv.LastRead[userID.Hex()] = at
	return nil
}

type fakeMessageRepo struct {
	mu       sync.Mutex
	messages []*models.Message
}

func newFakeMessageRepo() *fakeMessageRepo {
	return &fakeMessageRepo{}
}

// add seeds a message with a caller-controlled creation time.
func (r *fakeMessageRepo) add(msg *models.Message) *models.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	if msg.ID.IsZero() {
		msg.ID = primitive.NewObjectID()
	}
	r.messages = append(r.messages, msg)
	return msg
}

func (r *fakeMessageRepo) Create(_ context.Context, message *models.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	message.ID = primitive.NewObjectID()
	message.CreatedAt = time.Now()
	r.messages = append(r.messages, message)
	return nil
}

func (r *fakeMessageRepo) GetByID(_ context.Context, id primitive.ObjectID) (*models.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.messages {
		if m.ID == id {
			return m, nil
		}
	}
	return nil, models.ErrNotFound
}

func (r *fakeMessageRepo) ListByConversation(_ context.Context, conversationID primitive.ObjectID) ([]*models.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Message
	for _, m := range r.messages {
		if m.ConversationID == conversationID {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *fakeMessageRepo) GetLatest(_ context.Context, conversationID primitive.ObjectID) (*models.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var latest *models.Message
	for _, m := range r.messages {
		if m.ConversationID != conversationID {
			continue
		}
		if latest == nil || m.CreatedAt.After(latest.CreatedAt) {
			latest = m
		}
	}
	return latest, nil
}

func (r *fakeMessageRepo) CountUnread(_ context.Context, conversationID, userID primitive.ObjectID, since time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, m := range r.messages {
		if m.ConversationID == conversationID && m.SenderID != userID && m.CreatedAt.After(since) {
			count++
		}
	}
	return count, nil
}

func (r *fakeMessageRepo) SoftDelete(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.messages {
		if m.ID == id {
			m.IsDeleted = true
			m.Body = ""
			return nil
		}
	}
	return models.ErrNotFound
}

func (r *fakeMessageRepo) ToggleReaction(_ context.Context, messageID, userID primitive.ObjectID, emoji string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.messages {
		if m.ID != messageID {
			continue
		}
		for i, reaction := range m.Reactions {
			if reaction.UserID == userID && reaction.Emoji == emoji {
				m.Reactions = append(m.Reactions[:i], m.Reactions[i+1:]...)
				return false, nil
			}
		}
		m.Reactions = append(m.Reactions, models.Reaction{UserID: userID, Emoji: emoji})
		return true, nil
	}
	return false, models.ErrNotFound
}

type fakePresenceRepo struct {
	mu   sync.Mutex
	seen map[primitive.ObjectID]time.Time
}

func newFakePresenceRepo() *fakePresenceRepo {
	return &fakePresenceRepo{seen: map[primitive.ObjectID]time.Time{}}
}

func (r *fakePresenceRepo) Upsert(_ context.Context, userID primitive.ObjectID, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seen[userID] = at
	return nil
}

func (r *fakePresenceRepo) ListSince(_ context.Context, cutoff time.Time) ([]*models.Presence, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Presence
	for userID, at := range r.seen {
		if at.After(cutoff) {
			out = append(out, &models.Presence{UserID: userID, LastSeenAt: at})
		}
	}
	return out, nil
}

type typingKey struct {
	conv primitive.ObjectID
	user primitive.ObjectID
}

type fakeTypingRepo struct {
	mu      sync.Mutex
	markers map[typingKey]time.Time
}

func newFakeTypingRepo() *fakeTypingRepo {
	return &fakeTypingRepo{markers: map[typingKey]time.Time{}}
}

func (r *fakeTypingRepo) Upsert(_ context.Context, conversationID, userID primitive.ObjectID, expiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.markers[typingKey{conversationID, userID}] = expiresAt
	return nil
}

func (r *fakeTypingRepo) ListActive(_ context.Context, conversationID primitive.ObjectID, now time.Time) ([]*models.TypingMarker, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.TypingMarker
	for key, expiresAt := range r.markers {
		if key.conv == conversationID && expiresAt.After(now) {
			out = append(out, &models.TypingMarker{
				ConversationID: key.conv,
				UserID:         key.user,
				ExpiresAt:      expiresAt,
			})
		}
	}
	return out, nil
}

type fakeUserRepo struct {
	mu    sync.Mutex
	users []*models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{}
}

func (r *fakeUserRepo) Sync(_ context.Context, user *models.User) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.ExternalID == user.ExternalID {
			return u, nil
		}
	}
	stored := *user
	stored.ID = primitive.NewObjectID()
	stored.CreatedAt = time.Now()
	r.users = append(r.users, &stored)
	return &stored, nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, models.ErrNotFound
}

func (r *fakeUserRepo) GetByExternalID(_ context.Context, externalID string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.ExternalID == externalID {
			return u, nil
		}
	}
	return nil, models.ErrNotFound
}

func (r *fakeUserRepo) Search(_ context.Context, query string) ([]*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.User
	for _, u := range r.users {
		if query == "" || strings.Contains(strings.ToLower(u.Name), strings.ToLower(query)) {
			out = append(out, u)
		}
	}
	return out, nil
}

// fakeBroadcaster records fanout calls and signals each on a channel so
// tests can wait for the detached post-commit goroutines.
type fakeBroadcaster struct {
	mu     sync.Mutex
	events []string
	ch     chan string
}

func newFakeBroadcaster() *fakeBroadcaster {
	return &fakeBroadcaster{ch: make(chan string, 32)}
}

func (b *fakeBroadcaster) record(event string) {
	b.mu.Lock()
	b.events = append(b.events, event)
	b.mu.Unlock()
	select {
	case b.ch <- event:
	default:
	}
}

func (b *fakeBroadcaster) MessageNew(*models.Conversation, *models.Message)      { b.record("message.new") }
func (b *fakeBroadcaster) MessageDeleted(*models.Conversation, *models.Message)  { b.record("message.deleted") }
func (b *fakeBroadcaster) MessageReaction(*models.Conversation, *models.Message) { b.record("message.reaction") }
func (b *fakeBroadcaster) Typing(*models.Conversation, primitive.ObjectID)       { b.record("typing") }
func (b *fakeBroadcaster) ConversationUpdated(*models.Conversation)              { b.record("conversation.updated") }
func (b *fakeBroadcaster) PresenceChanged(*models.Presence)                      { b.record("presence") }

func (b *fakeBroadcaster) seen(event string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, e := range b.events {
		if e == event {
			return true
		}
	}
	return false
}

// wait blocks until the named event arrives or the test times out.
func (b *fakeBroadcaster) wait(t *testing.T, event string) {
	t.Helper()
	if b.seen(event) {
		return
	}
	deadline := time.After(2 * time.Second)
	for {
		select {
		case got := <-b.ch:
			if got == event {
				return
			}
		case <-deadline:
			t.Fatalf("timed out waiting for %q fanout", event)
		}
	}
}

type fakePublisher struct {
	mu      sync.Mutex
	sent    []*models.Message
	deleted []*models.Message
}

func newFakePublisher() *fakePublisher {
	return &fakePublisher{}
}

func (p *fakePublisher) MessageSent(_ context.Context, message *models.Message) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sent = append(p.sent, message)
}

func (p *fakePublisher) MessageDeleted(_ context.Context, message *models.Message) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.deleted = append(p.deleted, message)
}

func (p *fakePublisher) sentCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.sent)
}

func (p *fakePublisher) deletedCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.deleted)
}
