package models

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trackpoint/backend/apperrors"
)

func sampleUser() User {
	return User{
		ID: "650000000000000000000001",
		Tracks: []Track{
			{
				ID:       "650000000000000000000010",
				SourceID: "650000000000000000000099",
				Checkpoints: []Checkpoint{
					{ID: "650000000000000000000100", Tasks: []Task{
						{ID: "650000000000000000001000", Title: "read"},
						{ID: "650000000000000000001001", Title: "write"},
					}},
					{ID: "650000000000000000000101"},
				},
			},
			{ID: "650000000000000000000011", SourceID: "650000000000000000000099"},
		},
	}
}

func TestLocateTaskReturnsAliasedPointer(t *testing.T) {
	u := sampleUser()
	ref := TaskRef{
		TrackID:      "650000000000000000000010",
		CheckpointID: "650000000000000000000100",
		TaskID:       "650000000000000000001001",
	}

	_, _, task, err := u.LocateTask(ref)
	require.NoError(t, err)
	task.Completed = true

	assert.True(t, u.Tracks[0].Checkpoints[0].Tasks[1].Completed)
	assert.False(t, u.Tracks[0].Checkpoints[0].Tasks[0].Completed)
}

func TestLocateTaskReportsMissingLevel(t *testing.T) {
	u := sampleUser()
	tests := []struct {
		name string
		ref  TaskRef
		want string
	}{
		{"track", TaskRef{TrackID: "650000000000000000000fff"}, "no track found for the given trackID"},
		{"checkpoint", TaskRef{TrackID: "650000000000000000000010", CheckpointID: "650000000000000000000fff"}, "no checkpoint found for the given checkpointID"},
		{"task", TaskRef{TrackID: "650000000000000000000010", CheckpointID: "650000000000000000000101", TaskID: "650000000000000000001000"}, "no task found for the given taskID"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, _, err := u.LocateTask(tt.ref)
			require.Error(t, err)
			assert.True(t, errors.Is(err, apperrors.ErrNotFound))
			assert.Equal(t, []string{tt.want}, apperrors.MessagesOf(err))
		})
	}
}

func TestFindTrackPrefersInstanceIDThenFirstCopy(t *testing.T) {
	u := sampleUser()

	byInstance, err := u.FindTrack("650000000000000000000011")
	require.NoError(t, err)
	assert.Equal(t, "650000000000000000000011", byInstance.ID)

	bySource, err := u.FindTrack("650000000000000000000099")
	require.NoError(t, err)
	assert.Equal(t, "650000000000000000000010", bySource.ID)
}

func TestCloneSharesNothing(t *testing.T) {
	u := sampleUser()
	c := u.Clone()
	c.Tracks[0].Checkpoints[0].Tasks[0].Title = "changed"
	c.Tracks[0].Checkpoints[0].Completed = true

	assert.Equal(t, "read", u.Tracks[0].Checkpoints[0].Tasks[0].Title)
	assert.False(t, u.Tracks[0].Checkpoints[0].Completed)
}

func TestTrackState(t *testing.T) {
	tr := Track{}
	assert.Equal(t, StateNotStarted, tr.State())
	tr.CurrentCheckpoint = "650000000000000000000100"
	assert.Equal(t, StateInProgress, tr.State())
	tr.Completed = true
	assert.Equal(t, StateCompleted, tr.State())
}

func TestInstantiateDeepCopiesWithFreshIDs(t *testing.T) {
	owner := "650000000000000000000001"
	tmpl := Track{
		ID:                NewID(),
		UserID:            &owner,
		Title:             "Go basics",
		CurrentCheckpoint: "stale",
		Completed:         true,
		Version:           4,
		Checkpoints: []Checkpoint{
			{ID: NewID(), Title: "A", Completed: true, Current: true, Tasks: []Task{{ID: NewID(), Title: "t1", Completed: true}, {ID: NewID(), Title: "t2"}}},
			{ID: NewID(), Title: "B"},
		},
	}

	inst := tmpl.Instantiate()

	assert.NotEqual(t, tmpl.ID, inst.ID)
	assert.True(t, IsValidID(inst.ID))
	assert.Nil(t, inst.UserID)
	assert.Empty(t, inst.CurrentCheckpoint)
	assert.False(t, inst.Completed)
	assert.Zero(t, inst.Version)
	require.Len(t, inst.Checkpoints, 2)
	for i, cp := range inst.Checkpoints {
		assert.NotEqual(t, tmpl.Checkpoints[i].ID, cp.ID)
		assert.Equal(t, tmpl.Checkpoints[i].Title, cp.Title)
		assert.Equal(t, inst.ID, cp.TrackID)
		assert.Equal(t, i, cp.Position)
		assert.False(t, cp.Completed)
		assert.False(t, cp.Current)
	}
	require.Len(t, inst.Checkpoints[0].Tasks, 2)
	assert.Equal(t, "t1", inst.Checkpoints[0].Tasks[0].Title)
	assert.Equal(t, 1, inst.Checkpoints[0].Tasks[1].Position)
	assert.False(t, inst.Checkpoints[0].Tasks[0].Completed)
	assert.NotNil(t, inst.Checkpoints[1].Tasks)

	inst.Checkpoints[0].Tasks[0].Title = "edited"
	assert.Equal(t, "t1", tmpl.Checkpoints[0].Tasks[0].Title)
	assert.True(t, tmpl.Completed)
}
