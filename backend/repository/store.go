// Package repository persists catalog tracks, users and their track
// instances. Every implementation treats a user and everything nested in it
// as one unit of consistency.
package repository

import (
	"context"

	"trackpoint/backend/models"
)

// TrackFilter narrows catalog listings.
type TrackFilter struct {
	Search       string // matched against title and description, case-insensitive
	Author       string
	FeaturedOnly bool
	Sort         string // "newest", "title"; insertion order otherwise
}

// Advance is one progression step for a single track instance. It is
// applied only if the instance is still at ExpectedVersion.
type Advance struct {
	UserID          string
	TrackID         string
	ExpectedVersion int
	// CurrentCheckpoint is the pointer value after the step.
	CurrentCheckpoint string
	Completed         bool
	// Passed is the checkpoint the user moved past, if any.
	Passed string
}

// Store is the persistence contract of the progression engine and the
// catalog endpoints.
type Store interface {
	CreateTrack(ctx context.Context, track *models.Track) error
	ListTracks(ctx context.Context, filter TrackFilter) ([]models.Track, error)
	GetTrack(ctx context.Context, trackID string) (*models.Track, error)
	SetFeatured(ctx context.Context, trackID string, featured bool) (*models.Track, error)

	CreateUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, userID string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	DeleteUser(ctx context.Context, userID string) error

	// AppendUserTrack adds track to the end of the user's list.
	AppendUserTrack(ctx context.Context, userID string, track *models.Track) error
	// ApplyAdvance fails with a Conflict error when the instance moved on
	// since it was read.
	ApplyAdvance(ctx context.Context, adv Advance) error
	// ReplaceTask overwrites title, description and completed of exactly
	// one task in a single conditional write.
	ReplaceTask(ctx context.Context, ref models.TaskRef, task models.Task) (*models.Task, error)

	CreateSuggestion(ctx context.Context, suggestion *models.Suggestion) error

	Close(ctx context.Context) error
}

// ApplyTo performs the step on an in-memory copy of the track, exactly as a
// store persists it.
func (adv Advance) ApplyTo(track *models.Track) {
	track.CurrentCheckpoint = adv.CurrentCheckpoint
	track.Completed = adv.Completed
	track.Version++
	for i := range track.Checkpoints {
		cp := &track.Checkpoints[i]
		if adv.Passed != "" && cp.ID == adv.Passed {
			cp.Completed = true
			cp.Current = false
		}
		if !adv.Completed && cp.ID == adv.CurrentCheckpoint {
			cp.Current = true
		}
	}
}
