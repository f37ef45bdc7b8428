package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"swappo-chat-service/model"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const profileCacheTTL = 5 * time.Minute

// Profile is the display identity of a peer, joined onto inbox entries.
type Profile struct {
	ID          uint   `json:"id"`
	DisplayName string `json:"display_name"`
	AvatarURL   string `json:"avatar_url"`
}

// Fallback is the placeholder shown when a peer's profile cannot be
// resolved; a broken join must never take the inbox down with it.
func Fallback(id uint) Profile {
	return Profile{ID: id, DisplayName: "unknown user"}
}

type Profiles interface {
	Get(ctx context.Context, id uint) (Profile, error)
}

// Directory resolves profiles from Postgres through a Redis read-through
// cache. The cache is optional; with a nil client every lookup hits the
// database.
type Directory struct {
	db    *gorm.DB
	cache *redis.Client
}

func NewDirectory(db *gorm.DB, cache *redis.Client) *Directory {
	return &Directory{db: db, cache: cache}
}

func profileCacheKey(id uint) string {
	return fmt.Sprintf("profile:%d", id)
}

func (d *Directory) Get(ctx context.Context, id uint) (Profile, error) {
	if d.cache != nil {
		if raw, err := d.cache.Get(ctx, profileCacheKey(id)).Result(); err == nil {
			profile := Profile{}
			if err := json.Unmarshal([]byte(raw), &profile); err == nil {
				return profile, nil
			}
		}
	}

	user := new(model.User)
	if err := d.db.First(&user, id).Error; err != nil {
		return Profile{}, err
	}

	profile := Profile{
		ID:          user.ID,
		DisplayName: user.Username,
		AvatarURL:   user.AvatarURL,
	}

	if d.cache != nil {
		if raw, err := json.Marshal(profile); err == nil {
			d.cache.Set(ctx, profileCacheKey(id), raw, profileCacheTTL)
		}
	}

	return profile, nil
}

// Invalidate drops a cached profile after the platform reports it changed.
func (d *Directory) Invalidate(ctx context.Context, id uint) {
	if d.cache != nil {
		d.cache.Del(ctx, profileCacheKey(id))
	}
}
