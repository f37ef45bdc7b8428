package model

import (
	"time"

	"gorm.io/gorm"
)

// ChatMessage is one entry of a room log. Rows are append-only: nothing in
// the service updates or deletes them after creation.
type ChatMessage struct {
	gorm.Model
	RoomID      string `gorm:"index;not null" json:"room_id"`
	SenderID    uint   `gorm:"not null" json:"sender_id"`
	RecipientID uint   `gorm:"not null" json:"recipient_id"`
	Body        string `gorm:"not null" json:"body"`
}

// InboxEntry is one conversation summary in a user's inbox. Each side of a
// conversation has its own row: (owner, peer) and (peer, owner) are
// independent records with independent unread counts.
type InboxEntry struct {
	gorm.Model
	OwnerID      uint      `gorm:"uniqueIndex:idx_inbox_owner_peer;not null" json:"owner_id"`
	PeerID       uint      `gorm:"uniqueIndex:idx_inbox_owner_peer;not null" json:"peer_id"`
	Preview      string    `gorm:"not null" json:"preview"`
	LastActivity time.Time `gorm:"index;not null" json:"last_activity"`
	Unread       int       `gorm:"not null;default:0" json:"unread"`
}
