package chat

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"swappo-chat-service/model"
)

var (
	ErrEmptyBody  = errors.New("message body is empty")
	ErrNoIdentity = errors.New("sender or recipient is missing")
	ErrSamePeer   = errors.New("sender and recipient are the same user")
)

// Service is the one place the chat protocol lives. The REST controller and
// the socket router are both thin consumers of it.
type Service struct {
	store    Store
	profiles Profiles
	onSent   func(*model.ChatMessage)
}

// NewService wires the protocol over a store and a profile directory.
// onSent, when non-nil, is invoked after every stored message so the caller
// can fan the event out to the rest of the platform.
func NewService(store Store, profiles Profiles, onSent func(*model.ChatMessage)) *Service {
	return &Service{
		store:    store,
		profiles: profiles,
		onSent:   onSent,
	}
}

// InboxView is one profile-enriched conversation summary.
type InboxView struct {
	Peer         Profile   `json:"peer"`
	Preview      string    `json:"preview"`
	LastActivity time.Time `json:"last_activity"`
	Unread       int       `json:"unread"`
}

// RoomView is the ordered history of one conversation.
type RoomView struct {
	RoomID   string              `json:"room_id"`
	Messages []model.ChatMessage `json:"messages"`
}

// Send stores one message and refreshes both sides' inbox summaries: the
// sender's entry is rewritten with unread zero, the recipient's entry gets
// the new preview and an unread increment. The three writes are independent;
// there is no surrounding transaction and no compensation if a later write
// fails after an earlier one succeeded. The room log is the source of truth,
// the summaries are caches that may transiently lag it.
func (s *Service) Send(ctx context.Context, senderID uint, recipientID uint, body string) (*model.ChatMessage, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, ErrEmptyBody
	}
	if senderID == 0 || recipientID == 0 {
		return nil, ErrNoIdentity
	}
	if senderID == recipientID {
		return nil, ErrSamePeer
	}

	msg := &model.ChatMessage{
		RoomID:      RoomIDFor(senderID, recipientID),
		SenderID:    senderID,
		RecipientID: recipientID,
		Body:        body,
	}
	if err := s.store.AppendMessage(msg); err != nil {
		return nil, err
	}

	at := msg.CreatedAt
	if err := s.store.UpsertOwn(senderID, recipientID, body, at); err != nil {
		return nil, err
	}
	if err := s.store.BumpPeer(recipientID, senderID, body, at); err != nil {
		return nil, err
	}

	if s.onSent != nil {
		s.onSent(msg)
	}
	return msg, nil
}

// OpenRoom returns the conversation history oldest-first and zeroes the
// opener's unread counter. The reset is best-effort: a pair that has never
// talked has no entry, and opening their empty room is still a success.
func (s *Service) OpenRoom(ctx context.Context, ownerID uint, peerID uint) (*RoomView, error) {
	if ownerID == 0 || peerID == 0 {
		return nil, ErrNoIdentity
	}
	if ownerID == peerID {
		return nil, ErrSamePeer
	}

	// Only the opener's own counter moves; the peer's copy is untouched.
	s.store.ResetUnread(ownerID, peerID)

	roomID := RoomIDFor(ownerID, peerID)
	messages, err := s.store.ListMessages(roomID)
	if err != nil {
		return nil, err
	}
	return &RoomView{RoomID: roomID, Messages: messages}, nil
}

// MarkRead zeroes the owner's unread counter for one peer without loading
// the history. Missing entries are reported as ok.
func (s *Service) MarkRead(ctx context.Context, ownerID uint, peerID uint) error {
	if ownerID == 0 || peerID == 0 {
		return ErrNoIdentity
	}
	_, err := s.store.ResetUnread(ownerID, peerID)
	return err
}

// Inbox returns the owner's conversations most-recently-active first, each
// joined with the peer's profile. Joins run concurrently and settle
// independently: one failed lookup degrades its own entry to the fallback
// placeholder and leaves the rest alone.
func (s *Service) Inbox(ctx context.Context, ownerID uint) ([]InboxView, error) {
	if ownerID == 0 {
		return nil, ErrNoIdentity
	}

	entries, err := s.store.ListInbox(ownerID)
	if err != nil {
		return nil, err
	}

	views := make([]InboxView, len(entries))
	var wg sync.WaitGroup
	for i, entry := range entries {
		views[i] = InboxView{
			Peer:         Fallback(entry.PeerID),
			Preview:      entry.Preview,
			LastActivity: entry.LastActivity,
			Unread:       entry.Unread,
		}

		wg.Add(1)
		go func(i int, peerID uint) {
			defer wg.Done()
			if profile, err := s.profiles.Get(ctx, peerID); err == nil {
				views[i].Peer = profile
			}
		}(i, entry.PeerID)
	}
	wg.Wait()

	return views, nil
}

// Transcript returns a room's history without touching unread counters.
// Used by moderation, never by the participants' own session.
func (s *Service) Transcript(ctx context.Context, a uint, b uint) ([]model.ChatMessage, error) {
	if a == 0 || b == 0 {
		return nil, ErrNoIdentity
	}
	return s.store.ListMessages(RoomIDFor(a, b))
}

// Peers lists the user ids present in the owner's inbox, most recent first.
func (s *Service) Peers(ctx context.Context, ownerID uint) ([]uint, error) {
	entries, err := s.store.ListInbox(ownerID)
	if err != nil {
		return nil, err
	}
	peers := make([]uint, 0, len(entries))
	for _, entry := range entries {
		peers = append(peers, entry.PeerID)
	}
	return peers, nil
}
