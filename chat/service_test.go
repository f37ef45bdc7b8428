package chat

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"swappo-chat-service/model"
)

type fakeStore struct {
	mu       sync.Mutex
	nextID   uint
	messages map[string][]model.ChatMessage
	entries  map[[2]uint]*model.InboxEntry

	appendErr error
	bumpErr   error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		messages: map[string][]model.ChatMessage{},
		entries:  map[[2]uint]*model.InboxEntry{},
	}
}

func (f *fakeStore) AppendMessage(msg *model.ChatMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.appendErr != nil {
		return f.appendErr
	}
	f.nextID++
	msg.ID = f.nextID
	msg.CreatedAt = time.Now()
	f.messages[msg.RoomID] = append(f.messages[msg.RoomID], *msg)
	return nil
}

func (f *fakeStore) UpsertOwn(ownerID uint, peerID uint, preview string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries[[2]uint{ownerID, peerID}] = &model.InboxEntry{
		OwnerID:      ownerID,
		PeerID:       peerID,
		Preview:      preview,
		LastActivity: at,
		Unread:       0,
	}
	return nil
}

func (f *fakeStore) BumpPeer(ownerID uint, peerID uint, preview string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.bumpErr != nil {
		return f.bumpErr
	}
	key := [2]uint{ownerID, peerID}
	if entry, ok := f.entries[key]; ok {
		entry.Preview = preview
		entry.LastActivity = at
		entry.Unread++
		return nil
	}
	f.entries[key] = &model.InboxEntry{
		OwnerID:      ownerID,
		PeerID:       peerID,
		Preview:      preview,
		LastActivity: at,
		Unread:       1,
	}
	return nil
}

func (f *fakeStore) ResetUnread(ownerID uint, peerID uint) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	entry, ok := f.entries[[2]uint{ownerID, peerID}]
	if !ok {
		return false, nil
	}
	entry.Unread = 0
	return true, nil
}

func (f *fakeStore) ListInbox(ownerID uint) ([]model.InboxEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var entries []model.InboxEntry
	for key, entry := range f.entries {
		if key[0] == ownerID {
			entries = append(entries, *entry)
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].LastActivity.After(entries[j].LastActivity)
	})
	return entries, nil
}

func (f *fakeStore) ListMessages(roomID string) ([]model.ChatMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.ChatMessage{}, f.messages[roomID]...), nil
}

func (f *fakeStore) entry(ownerID, peerID uint) *model.InboxEntry {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.entries[[2]uint{ownerID, peerID}]
}

type fakeProfiles struct {
	known map[uint]Profile
}

func (p *fakeProfiles) Get(ctx context.Context, id uint) (Profile, error) {
	if profile, ok := p.known[id]; ok {
		return profile, nil
	}
	return Profile{}, errors.New("profile not found")
}

func newTestService(store Store) *Service {
	return NewService(store, &fakeProfiles{known: map[uint]Profile{
		1: {ID: 1, DisplayName: "ana", AvatarURL: "https://cdn.swappo.io/a/1.png"},
		2: {ID: 2, DisplayName: "bo"},
	}}, nil)
}

func TestSendAppendsOneMessage(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	before := time.Now()

	msg, err := svc.Send(context.Background(), 1, 2, "hello")
	if err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if msg.Body != "hello" || msg.SenderID != 1 || msg.RecipientID != 2 {
		t.Errorf("unexpected stored message: %+v", msg)
	}
	if msg.CreatedAt.Before(before) {
		t.Error("expected a server-assigned timestamp at or after the call")
	}

	messages, _ := store.ListMessages(RoomIDFor(1, 2))
	if len(messages) != 1 {
		t.Fatalf("expected exactly 1 message, got %d", len(messages))
	}
}

func TestSendTrimsBody(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)

	msg, err := svc.Send(context.Background(), 1, 2, "  hello  ")
	if err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if msg.Body != "hello" {
		t.Errorf("expected trimmed body, got %q", msg.Body)
	}
}

func TestSendPreconditions(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	ctx := context.Background()

	cases := []struct {
		name      string
		sender    uint
		recipient uint
		body      string
		want      error
	}{
		{"empty body", 1, 2, "", ErrEmptyBody},
		{"whitespace body", 1, 2, "   ", ErrEmptyBody},
		{"no sender", 0, 2, "hi", ErrNoIdentity},
		{"no recipient", 1, 0, "hi", ErrNoIdentity},
		{"self send", 1, 1, "hi", ErrSamePeer},
	}

	for _, tc := range cases {
		if _, err := svc.Send(ctx, tc.sender, tc.recipient, tc.body); !errors.Is(err, tc.want) {
			t.Errorf("%s: expected %v, got %v", tc.name, tc.want, err)
		}
	}

	// None of the rejected sends may have touched the store.
	if len(store.messages) != 0 {
		t.Errorf("expected no messages, got %d rooms", len(store.messages))
	}
	if len(store.entries) != 0 {
		t.Errorf("expected no inbox entries, got %d", len(store.entries))
	}
}

func TestUnreadLifecycle(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	ctx := context.Background()

	// Counterpart 2 writes to owner 1.
	if _, err := svc.Send(ctx, 2, 1, "want to trade?"); err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if entry := store.entry(1, 2); entry == nil || entry.Unread != 1 {
		t.Fatalf("expected owner 1 unread 1, got %+v", store.entry(1, 2))
	}
	if entry := store.entry(2, 1); entry == nil || entry.Unread != 0 {
		t.Fatalf("expected sender 2 unread 0, got %+v", store.entry(2, 1))
	}

	// Owner 1 replies: their own entry resets, the peer's increments.
	if _, err := svc.Send(ctx, 1, 2, "sure"); err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if entry := store.entry(1, 2); entry.Unread != 0 {
		t.Errorf("expected owner 1 unread 0 after reply, got %d", entry.Unread)
	}
	if entry := store.entry(2, 1); entry.Unread != 1 {
		t.Errorf("expected peer 2 unread 1 after reply, got %d", entry.Unread)
	}
}

func TestOpenRoomResetsOnlyOwner(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	ctx := context.Background()

	svc.Send(ctx, 1, 2, "hi")
	svc.Send(ctx, 2, 1, "one")
	svc.Send(ctx, 2, 1, "two")

	// Give the peer unread of their own so the open provably leaves it alone.
	store.BumpPeer(2, 1, "two", time.Now())

	if entry := store.entry(1, 2); entry.Unread != 2 {
		t.Fatalf("expected owner unread 2 before opening, got %d", entry.Unread)
	}

	view, err := svc.OpenRoom(ctx, 1, 2)
	if err != nil {
		t.Fatalf("OpenRoom failed: %v", err)
	}
	if len(view.Messages) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(view.Messages))
	}
	if view.Messages[0].Body != "hi" || view.Messages[2].Body != "two" {
		t.Error("expected oldest-first ordering")
	}

	if entry := store.entry(1, 2); entry.Unread != 0 {
		t.Errorf("expected opener unread 0, got %d", entry.Unread)
	}
	if entry := store.entry(2, 1); entry.Unread != 1 {
		t.Errorf("expected peer unread untouched at 1, got %d", entry.Unread)
	}
}

func TestOpenRoomFirstEver(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	ctx := context.Background()

	// Never talked before: no entry, no history, no error.
	view, err := svc.OpenRoom(ctx, 1, 2)
	if err != nil {
		t.Fatalf("OpenRoom on unseen peer failed: %v", err)
	}
	if len(view.Messages) != 0 {
		t.Errorf("expected empty history, got %d messages", len(view.Messages))
	}

	// The first send afterwards creates both sides' entries.
	if _, err := svc.Send(ctx, 1, 2, "hi"); err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if store.entry(1, 2) == nil || store.entry(2, 1) == nil {
		t.Error("expected both inbox entries after first send")
	}
}

func TestConcurrentSendsAreLossless(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	ctx := context.Background()

	const sends = 10
	var wg sync.WaitGroup
	for i := 0; i < sends; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.Send(ctx, 2, 1, "ping"); err != nil {
				t.Errorf("Send failed: %v", err)
			}
		}()
	}
	wg.Wait()

	if entry := store.entry(1, 2); entry.Unread != sends {
		t.Errorf("expected unread %d, got %d", sends, entry.Unread)
	}
	messages, _ := store.ListMessages(RoomIDFor(1, 2))
	if len(messages) != sends {
		t.Errorf("expected %d messages, got %d", sends, len(messages))
	}
}

func TestInboxEnrichment(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	ctx := context.Background()

	svc.Send(ctx, 2, 1, "older")
	time.Sleep(5 * time.Millisecond)
	svc.Send(ctx, 99, 1, "newer") // 99 has no profile

	views, err := svc.Inbox(ctx, 1)
	if err != nil {
		t.Fatalf("Inbox failed: %v", err)
	}
	if len(views) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(views))
	}

	// Most recently active first.
	if views[0].Preview != "newer" {
		t.Errorf("expected most recent conversation first, got %q", views[0].Preview)
	}

	// The unknown peer degrades to the placeholder without failing the batch.
	if views[0].Peer.DisplayName != "unknown user" {
		t.Errorf("expected fallback profile, got %q", views[0].Peer.DisplayName)
	}
	if views[1].Peer.DisplayName != "bo" {
		t.Errorf("expected joined profile 'bo', got %q", views[1].Peer.DisplayName)
	}
}

func TestSendStopsOnAppendFailure(t *testing.T) {
	store := newFakeStore()
	store.appendErr = errors.New("boom")
	svc := newTestService(store)

	if _, err := svc.Send(context.Background(), 1, 2, "hi"); err == nil {
		t.Fatal("expected an error")
	}
	if len(store.entries) != 0 {
		t.Error("expected no summary writes after a failed append")
	}
}

func TestSendPartialFailureLeavesLogIntact(t *testing.T) {
	store := newFakeStore()
	store.bumpErr = errors.New("recipient summary write failed")
	svc := newTestService(store)

	if _, err := svc.Send(context.Background(), 1, 2, "hi"); err == nil {
		t.Fatal("expected an error")
	}

	// No compensation: the appended message and the sender's own summary
	// stay behind; only the recipient's summary is missing.
	messages, _ := store.ListMessages(RoomIDFor(1, 2))
	if len(messages) != 1 {
		t.Errorf("expected the appended message to remain, got %d", len(messages))
	}
	if store.entry(1, 2) == nil {
		t.Error("expected the sender's summary to remain")
	}
	if store.entry(2, 1) != nil {
		t.Error("expected no recipient summary after the failed bump")
	}
}

func TestOnSentCallback(t *testing.T) {
	store := newFakeStore()
	var got *model.ChatMessage
	svc := NewService(store, &fakeProfiles{known: map[uint]Profile{}}, func(msg *model.ChatMessage) {
		got = msg
	})

	if _, err := svc.Send(context.Background(), 1, 2, "hi"); err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if got == nil || got.Body != "hi" {
		t.Errorf("expected callback with the stored message, got %+v", got)
	}
}
