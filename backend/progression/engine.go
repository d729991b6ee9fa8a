// Package progression moves a user through the checkpoints of their track
// instances and edits the tasks nested inside them.
//
// A track instance is NotStarted while its currentCheckpoint is empty,
// InProgress while it points at one of its checkpoints and Completed once
// the user advanced past the last one. Completed is terminal.
package progression

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"trackpoint/backend/apperrors"
	"trackpoint/backend/models"
	"trackpoint/backend/repository"
	"trackpoint/backend/utils"
)

type Status string

const (
	StatusStarted  Status = "started"
	StatusAdvanced Status = "advanced"
	StatusFinished Status = "finished"
)

// Result is the outcome of one AdvanceCheckpoint call.
type Result struct {
	Status Status        `json:"status"`
	Track  *models.Track `json:"track"`
}

type Engine struct {
	store  repository.Store
	logger *zap.Logger
}

func NewEngine(store repository.Store, logger *zap.Logger) *Engine {
	return &Engine{store: store, logger: logger.Named("progression")}
}

// AssignTrack appends an independent copy of payload to the user's tracks.
// A payload that carries nothing but an _id is resolved against the
// catalog. Assigning the same track twice yields two instances.
func (e *Engine) AssignTrack(ctx context.Context, userID string, payload models.Track) (*models.Track, error) {
	if err := utils.RequireIDs("userID", userID); err != nil {
		return nil, err
	}

	tmpl := payload
	if isReference(payload) {
		if !models.IsValidID(payload.ID) {
			return nil, apperrors.Validation("a valid track _id must be set in the body")
		}
		stored, err := e.store.GetTrack(ctx, payload.ID)
		if err != nil {
			return nil, err
		}
		tmpl = *stored
	} else if err := utils.ValidateStruct(payload); err != nil {
		return nil, err
	}

	instance := tmpl.Instantiate()
	if models.IsValidID(tmpl.ID) {
		instance.SourceID = tmpl.ID
	}
	if err := e.store.AppendUserTrack(ctx, userID, &instance); err != nil {
		return nil, err
	}

	e.logger.Info("track assigned",
		zap.String("user_id", userID),
		zap.String("track_id", instance.ID),
		zap.String("source_id", instance.SourceID),
		zap.Int("checkpoints", len(instance.Checkpoints)))
	return &instance, nil
}

func isReference(payload models.Track) bool {
	return payload.ID != "" && payload.Title == "" && len(payload.Checkpoints) == 0
}

// AdvanceCheckpoint moves the track one checkpoint forward. The write is
// rejected with a Conflict error if the instance changed after it was read;
// callers retry.
func (e *Engine) AdvanceCheckpoint(ctx context.Context, userID, trackID string) (*Result, error) {
	if err := utils.RequireIDs("userID", userID, "trackID", trackID); err != nil {
		return nil, err
	}

	user, err := e.store.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(user.Tracks) == 0 {
		return nil, apperrors.Validation("no tracks")
	}
	track, err := user.FindTrack(trackID)
	if err != nil {
		return nil, err
	}
	if track.Completed {
		return &Result{Status: StatusFinished, Track: track}, nil
	}

	adv, status, err := nextStep(track)
	if err != nil {
		e.logger.Error("corrupt progression pointer",
			zap.String("user_id", userID),
			zap.String("track_id", track.ID),
			zap.String("current_checkpoint", track.CurrentCheckpoint))
		return nil, err
	}
	adv.UserID = userID

	if err := e.store.ApplyAdvance(ctx, adv); err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			e.logger.Warn("concurrent advance rejected",
				zap.String("user_id", userID),
				zap.String("track_id", track.ID),
				zap.Int("expected_version", adv.ExpectedVersion))
		}
		return nil, err
	}
	adv.ApplyTo(track)

	e.logger.Debug("checkpoint advanced",
		zap.String("user_id", userID),
		zap.String("track_id", track.ID),
		zap.String("status", string(status)),
		zap.String("current_checkpoint", track.CurrentCheckpoint))
	return &Result{Status: status, Track: track}, nil
}

// nextStep computes the transition out of the track's current state.
func nextStep(track *models.Track) (repository.Advance, Status, error) {
	adv := repository.Advance{TrackID: track.ID, ExpectedVersion: track.Version}

	if track.CurrentCheckpoint == "" {
		if len(track.Checkpoints) == 0 {
			adv.Completed = true
			return adv, StatusFinished, nil
		}
		adv.CurrentCheckpoint = track.Checkpoints[0].ID
		return adv, StatusStarted, nil
	}

	_, idx, err := track.FindCheckpoint(track.CurrentCheckpoint)
	if err != nil {
		return adv, "", apperrors.InvariantViolation(fmt.Sprintf(
			"track %s points at checkpoint %s which it does not contain", track.ID, track.CurrentCheckpoint))
	}

	adv.Passed = track.CurrentCheckpoint
	if idx+1 == len(track.Checkpoints) {
		adv.CurrentCheckpoint = track.CurrentCheckpoint
		adv.Completed = true
		return adv, StatusFinished, nil
	}
	adv.CurrentCheckpoint = track.Checkpoints[idx+1].ID
	return adv, StatusAdvanced, nil
}

func (e *Engine) GetUserTrack(ctx context.Context, userID, trackID string) (*models.Track, error) {
	if err := utils.RequireIDs("userID", userID, "trackID", trackID); err != nil {
		return nil, err
	}
	user, err := e.store.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return user.FindTrack(trackID)
}

func (e *Engine) ListUserTracks(ctx context.Context, userID string) ([]models.Track, error) {
	if err := utils.RequireIDs("userID", userID); err != nil {
		return nil, err
	}
	user, err := e.store.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return user.Tracks, nil
}

// UpdateTask replaces title, description and completed of one task. Parent
// checkpoint and track flags are left alone.
func (e *Engine) UpdateTask(ctx context.Context, ref models.TaskRef, payload models.Task) (*models.Task, error) {
	err := utils.RequireIDs(
		"userID", ref.UserID,
		"trackID", ref.TrackID,
		"checkpointID", ref.CheckpointID,
		"taskID", ref.TaskID,
	)
	if err != nil {
		return nil, err
	}
	if err := utils.ValidateStruct(payload); err != nil {
		return nil, err
	}

	user, err := e.store.GetUser(ctx, ref.UserID)
	if err != nil {
		return nil, err
	}
	track, err := user.FindTrack(ref.TrackID)
	if err != nil {
		return nil, err
	}
	ref.TrackID = track.ID

	task, err := e.store.ReplaceTask(ctx, ref, payload)
	if err != nil {
		return nil, err
	}
	e.logger.Debug("task replaced",
		zap.String("user_id", ref.UserID),
		zap.String("track_id", ref.TrackID),
		zap.String("checkpoint_id", ref.CheckpointID),
		zap.String("task_id", ref.TaskID),
		zap.Bool("completed", task.Completed))
	return task, nil
}

// Overview summarizes where the user stands across all track instances.
func (e *Engine) Overview(ctx context.Context, userID string) (*models.ProgressOverview, error) {
	tracks, err := e.ListUserTracks(ctx, userID)
	if err != nil {
		return nil, err
	}

	var overview models.ProgressOverview
	for i := range tracks {
		track := &tracks[i]
		overview.TotalTracks++
		switch track.State() {
		case models.StateNotStarted:
			overview.NotStarted++
		case models.StateInProgress:
			overview.InProgress++
		case models.StateCompleted:
			overview.CompletedTracks++
		}
		for j := range track.Checkpoints {
			cp := &track.Checkpoints[j]
			overview.TotalCheckpoints++
			if cp.Completed {
				overview.PassedCheckpoints++
			}
			for k := range cp.Tasks {
				overview.TotalTasks++
				if cp.Tasks[k].Completed {
					overview.CompletedTasks++
				}
			}
		}
	}
	return &overview, nil
}
