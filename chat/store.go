package chat

import (
	"time"

	"swappo-chat-service/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store is the persistence boundary of the chat protocol. Inbox writes are
// scoped by the id of the user whose inbox row is touched, not by the
// authenticated actor: UpsertOwn is called by the owner on their own row,
// BumpPeer is called by the other side against a row they do not own. The
// only mutations a sender may perform on a foreign row are the preview
// fields and a relative unread increment.
type Store interface {
	AppendMessage(msg *model.ChatMessage) error
	UpsertOwn(ownerID uint, peerID uint, preview string, at time.Time) error
	BumpPeer(ownerID uint, peerID uint, preview string, at time.Time) error
	ResetUnread(ownerID uint, peerID uint) (bool, error)
	ListInbox(ownerID uint) ([]model.InboxEntry, error)
	ListMessages(roomID string) ([]model.ChatMessage, error)
}

type gormStore struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) AppendMessage(msg *model.ChatMessage) error {
	return s.db.Create(msg).Error
}

// UpsertOwn creates or replaces the owner's own summary of the conversation
// with their peer. The owner wrote the last message, so unread goes to zero.
func (s *gormStore) UpsertOwn(ownerID uint, peerID uint, preview string, at time.Time) error {
	entry := model.InboxEntry{
		OwnerID:      ownerID,
		PeerID:       peerID,
		Preview:      preview,
		LastActivity: at,
		Unread:       0,
	}
	return s.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "owner_id"}, {Name: "peer_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"preview":       preview,
			"last_activity": at,
			"unread":        0,
			"updated_at":    at,
		}),
	}).Create(&entry).Error
}

// BumpPeer creates or refreshes the recipient's summary of the conversation.
// The unread bump is an in-database increment, so two senders racing on the
// same row never lose a count.
func (s *gormStore) BumpPeer(ownerID uint, peerID uint, preview string, at time.Time) error {
	entry := model.InboxEntry{
		OwnerID:      ownerID,
		PeerID:       peerID,
		Preview:      preview,
		LastActivity: at,
		Unread:       1,
	}
	return s.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "owner_id"}, {Name: "peer_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"preview":       preview,
			"last_activity": at,
			"unread":        gorm.Expr("unread + 1"),
			"updated_at":    at,
		}),
	}).Create(&entry).Error
}

// ResetUnread zeroes the owner's unread counter for one peer. The bool
// reports whether an entry existed; a pair that has never exchanged a
// message has nothing to reset and that is not an error.
func (s *gormStore) ResetUnread(ownerID uint, peerID uint) (bool, error) {
	res := s.db.Model(&model.InboxEntry{}).
		Where("owner_id = ? AND peer_id = ?", ownerID, peerID).
		Update("unread", 0)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (s *gormStore) ListInbox(ownerID uint) ([]model.InboxEntry, error) {
	var entries []model.InboxEntry
	err := s.db.
		Where(&model.InboxEntry{OwnerID: ownerID}).
		Order("last_activity desc").
		Find(&entries).Error
	return entries, err
}

func (s *gormStore) ListMessages(roomID string) ([]model.ChatMessage, error) {
	var messages []model.ChatMessage
	err := s.db.
		Where(&model.ChatMessage{RoomID: roomID}).
		Order("created_at asc, id asc").
		Find(&messages).Error
	return messages, err
}
