package domain

import (
	"errors"
	"time"
)

var (
	ErrSermonNotFound         = errors.New("sermon not found")
	ErrSermonAlreadyPublished = errors.New("sermon is already published")
)

type SermonStatus string

const (
	SermonDraft     SermonStatus = "draft"
	SermonPublished SermonStatus = "published"
	SermonArchived  SermonStatus = "archived"
)

type Sermon struct {
	ID        string
	Title     string
	Speaker   string
	Series    *string
	Scripture *string
	Summary   string
	MediaURL  *string
	Status    SermonStatus

	PreachedAt  time.Time
	PublishedAt *time.Time
	ViewCount   int64

	CreatedBy string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (s *Sermon) OwnerID() string { return s.CreatedBy }
