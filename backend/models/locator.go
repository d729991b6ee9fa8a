package models

import "trackpoint/backend/apperrors"

// TaskRef addresses one task nested inside a user document.
type TaskRef struct {
	UserID       string
	TrackID      string
	CheckpointID string
	TaskID       string
}

// FindTrack resolves trackID against the user's instances in list order.
// An instance id match wins; otherwise the first instance copied from the
// catalog track trackID is returned.
func (u *User) FindTrack(trackID string) (*Track, error) {
	for i := range u.Tracks {
		if u.Tracks[i].ID == trackID {
			return &u.Tracks[i], nil
		}
	}
	for i := range u.Tracks {
		if u.Tracks[i].SourceID == trackID {
			return &u.Tracks[i], nil
		}
	}
	return nil, apperrors.NotFound("no track found for the given trackID")
}

// FindCheckpoint returns the checkpoint with the given id and its index.
func (t *Track) FindCheckpoint(checkpointID string) (*Checkpoint, int, error) {
	for i := range t.Checkpoints {
		if t.Checkpoints[i].ID == checkpointID {
			return &t.Checkpoints[i], i, nil
		}
	}
	return nil, -1, apperrors.NotFound("no checkpoint found for the given checkpointID")
}

func (c *Checkpoint) FindTask(taskID string) (*Task, error) {
	for i := range c.Tasks {
		if c.Tasks[i].ID == taskID {
			return &c.Tasks[i], nil
		}
	}
	return nil, apperrors.NotFound("no task found for the given taskID")
}

// LocateTask walks track, checkpoint and task in turn and fails at the
// first level where nothing matches. The returned pointers alias u.
func (u *User) LocateTask(ref TaskRef) (*Track, *Checkpoint, *Task, error) {
	track, err := u.FindTrack(ref.TrackID)
	if err != nil {
		return nil, nil, nil, err
	}
	checkpoint, _, err := track.FindCheckpoint(ref.CheckpointID)
	if err != nil {
		return nil, nil, nil, err
	}
	task, err := checkpoint.FindTask(ref.TaskID)
	if err != nil {
		return nil, nil, nil, err
	}
	return track, checkpoint, task, nil
}
