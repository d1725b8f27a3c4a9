package model

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/uptrace/bun"
)

// One announcement already posted to a platform. The history is what
// keeps a rerun of the announcer on the same day from posting the same
// event twice.
type Announcement struct {
	bun.BaseModel `bun:"table:announcements"`

	ID       string `bun:"id,pk"`               // required
	Source   string `bun:"source,notnull"`      // required
	Platform string `bun:"platform,notnull"`    // required
	Message  string `bun:"message,notnull"`     // required
	PostedAt int64  `bun:"posted_at,notnull"`   // required, unix seconds
}

// The identity of one announcement: same source, platform, event start
// and title means "already posted". The separator keeps adjacent fields
// from gluing into a colliding concatenation.
func AnnouncementID(sourceName, platform, eventStart, eventTitle string) string {
	h := sha256.New()
	for _, part := range []string{sourceName, platform, eventStart, eventTitle} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Whether this announcement was already posted
func (a *Announcement) Exists(ctx context.Context, db bun.IDB) (bool, error) {
	exists, err := db.NewSelect().
		Model((*Announcement)(nil)).
		Where("id = ?", a.ID).
		Exists(ctx)
	if err != nil {
		return false, fmt.Errorf("(*Announcement).Exists: %w", err)
	}
	return exists, nil
}

func (a *Announcement) Insert(ctx context.Context, db bun.IDB) error {
	switch {
	case a.ID == "":
		return fmt.Errorf("(*Announcement).Insert: ID is blank")
	case a.Source == "":
		return fmt.Errorf("(*Announcement).Insert: Source is blank")
	case a.Platform == "":
		return fmt.Errorf("(*Announcement).Insert: Platform is blank")
	}

	if _, err := db.NewInsert().
		Model(a).
		Exec(ctx); err != nil {
		return fmt.Errorf("(*Announcement).Insert: %w", err)
	}
	return nil
}
