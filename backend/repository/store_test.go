package repository

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"trackpoint/backend/apperrors"
	"trackpoint/backend/config"
	"trackpoint/backend/models"
	"trackpoint/backend/utils"
)

func newSQLiteStore(t *testing.T) Store {
	t.Helper()
	cfg := &config.Config{
		DBDriver:   "sqlite",
		SQLitePath: "file:" + uuid.NewString() + "?mode=memory&cache=shared",
	}
	db, err := utils.InitDB(cfg, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, utils.Migrate(db))
	s := NewGormStore(db)
	t.Cleanup(func() { _ = s.Close(context.Background()) })
	return s
}

func newMongoStore(t *testing.T) Store {
	t.Helper()
	uri := os.Getenv("MONGODB_URI")
	if uri == "" {
		t.Skip("MONGODB_URI not set")
	}
	ctx := context.Background()
	s, err := NewMongoStore(ctx, uri, "tracks_test_"+models.NewID())
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = s.Drop(ctx)
		_ = s.Close(ctx)
	})
	return s
}

// forEachStore runs fn against every Store implementation.
func forEachStore(t *testing.T, fn func(t *testing.T, s Store)) {
	stores := map[string]func(t *testing.T) Store{
		"memory": func(*testing.T) Store { return NewMemoryStore() },
		"sqlite": newSQLiteStore,
		"mongo":  newMongoStore,
	}
	for name, newStore := range stores {
		t.Run(name, func(t *testing.T) {
			fn(t, newStore(t))
		})
	}
}

func template(title string, checkpoints ...string) models.Track {
	t := models.Track{Title: title, Description: title + " description", Author: "tester"}
	for _, cp := range checkpoints {
		t.Checkpoints = append(t.Checkpoints, models.Checkpoint{
			Title: cp,
			Tasks: []models.Task{
				{Title: cp + "-1", Description: "first"},
				{Title: cp + "-2", Description: "second"},
			},
		})
	}
	return t.Instantiate()
}

func seedUser(t *testing.T, s Store, email string) *models.User {
	t.Helper()
	user := &models.User{ID: models.NewID(), UserInfo: models.UserInfo{Email: email, Password: "hash"}}
	require.NoError(t, s.CreateUser(context.Background(), user))
	return user
}

func seedInstance(t *testing.T, s Store, userID string, checkpoints ...string) models.Track {
	t.Helper()
	inst := template("track", checkpoints...)
	require.NoError(t, s.AppendUserTrack(context.Background(), userID, &inst))
	return inst
}

func ids(track models.Track) []string {
	var out []string
	for _, cp := range track.Checkpoints {
		out = append(out, cp.ID)
		for _, task := range cp.Tasks {
			out = append(out, task.ID)
		}
	}
	return out
}

var ignoreTimes = cmpopts.IgnoreFields(models.Track{}, "CreatedAt", "UpdatedAt")

func TestRoundTripKeepsOrderAndIDs(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		user := seedUser(t, s, "round@trip.io")
		first := seedInstance(t, s, user.ID, "A", "B", "C")
		second := seedInstance(t, s, user.ID, "X")

		loaded, err := s.GetUser(ctx, user.ID)
		require.NoError(t, err)
		require.Len(t, loaded.Tracks, 2)

		assert.Equal(t, first.ID, loaded.Tracks[0].ID)
		assert.Equal(t, second.ID, loaded.Tracks[1].ID)
		assert.Equal(t, ids(first), ids(loaded.Tracks[0]))
		assert.Equal(t, ids(second), ids(loaded.Tracks[1]))
		assert.Equal(t, "A-2", loaded.Tracks[0].Checkpoints[0].Tasks[1].Title)
		assert.Equal(t, "C", loaded.Tracks[0].Checkpoints[2].Title)
		assert.Equal(t, 1, loaded.Tracks[1].Position)
	})
}

func TestApplyAdvanceRejectsStaleVersion(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		user := seedUser(t, s, "cas@trip.io")
		inst := seedInstance(t, s, user.ID, "A", "B")
		a, b := inst.Checkpoints[0].ID, inst.Checkpoints[1].ID

		require.NoError(t, s.ApplyAdvance(ctx, Advance{
			UserID: user.ID, TrackID: inst.ID, ExpectedVersion: 0, CurrentCheckpoint: a,
		}))

		err := s.ApplyAdvance(ctx, Advance{
			UserID: user.ID, TrackID: inst.ID, ExpectedVersion: 0, CurrentCheckpoint: b, Passed: a,
		})
		assert.True(t, errors.Is(err, apperrors.ErrConflict), "got %v", err)

		require.NoError(t, s.ApplyAdvance(ctx, Advance{
			UserID: user.ID, TrackID: inst.ID, ExpectedVersion: 1, CurrentCheckpoint: b, Passed: a,
		}))

		loaded, err := s.GetUser(ctx, user.ID)
		require.NoError(t, err)
		track := loaded.Tracks[0]
		assert.Equal(t, b, track.CurrentCheckpoint)
		assert.Equal(t, 2, track.Version)
		assert.False(t, track.Completed)
		assert.True(t, track.Checkpoints[0].Completed)
		assert.False(t, track.Checkpoints[0].Current)
		assert.True(t, track.Checkpoints[1].Current)
		assert.False(t, track.Checkpoints[1].Completed)
	})
}

func TestApplyAdvanceUnknownTargets(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		user := seedUser(t, s, "missing@trip.io")

		err := s.ApplyAdvance(ctx, Advance{UserID: user.ID, TrackID: models.NewID()})
		assert.True(t, errors.Is(err, apperrors.ErrNotFound), "got %v", err)

		err = s.ApplyAdvance(ctx, Advance{UserID: models.NewID(), TrackID: models.NewID()})
		assert.True(t, errors.Is(err, apperrors.ErrNotFound), "got %v", err)
	})
}

func TestReplaceTaskTouchesExactlyOneTask(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		user := seedUser(t, s, "replace@trip.io")
		inst := seedInstance(t, s, user.ID, "A", "B")
		other := seedInstance(t, s, user.ID, "A", "B")

		before, err := s.GetUser(ctx, user.ID)
		require.NoError(t, err)

		ref := models.TaskRef{
			UserID:       user.ID,
			TrackID:      inst.ID,
			CheckpointID: inst.Checkpoints[1].ID,
			TaskID:       inst.Checkpoints[1].Tasks[0].ID,
		}
		got, err := s.ReplaceTask(ctx, ref, models.Task{Title: "x", Completed: true})
		require.NoError(t, err)
		assert.Equal(t, ref.TaskID, got.ID)
		assert.Equal(t, "x", got.Title)
		assert.Equal(t, "", got.Description)
		assert.True(t, got.Completed)

		after, err := s.GetUser(ctx, user.ID)
		require.NoError(t, err)

		want := before.Clone()
		task := &want.Tracks[0].Checkpoints[1].Tasks[0]
		task.Title, task.Description, task.Completed = "x", "", true
		if diff := cmp.Diff(want, *after, ignoreTimes); diff != "" {
			t.Errorf("unexpected change (-want +got):\n%s", diff)
		}
		assert.Equal(t, ids(other), ids(after.Tracks[1]))
	})
}

func TestReplaceTaskNamesMissingLevel(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		user := seedUser(t, s, "levels@trip.io")
		inst := seedInstance(t, s, user.ID, "A", "B")

		ref := models.TaskRef{
			UserID:       user.ID,
			TrackID:      inst.ID,
			CheckpointID: inst.Checkpoints[0].ID,
			TaskID:       inst.Checkpoints[1].Tasks[0].ID,
		}
		_, err := s.ReplaceTask(ctx, ref, models.Task{Title: "x"})
		require.Error(t, err)
		assert.Equal(t, []string{"no task found for the given taskID"}, apperrors.MessagesOf(err))

		ref.CheckpointID = models.NewID()
		_, err = s.ReplaceTask(ctx, ref, models.Task{Title: "x"})
		assert.Equal(t, []string{"no checkpoint found for the given checkpointID"}, apperrors.MessagesOf(err))

		ref.UserID = models.NewID()
		_, err = s.ReplaceTask(ctx, ref, models.Task{Title: "x"})
		assert.Equal(t, []string{"no user found for the given id"}, apperrors.MessagesOf(err))
	})
}

func TestCatalog(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		golang := template("Learn Go", "syntax", "concurrency")
		running := template("Running habit", "week 1")
		running.Featured = true
		require.NoError(t, s.CreateTrack(ctx, &golang))
		require.NoError(t, s.CreateTrack(ctx, &running))

		all, err := s.ListTracks(ctx, TrackFilter{})
		require.NoError(t, err)
		require.Len(t, all, 2)
		assert.Equal(t, golang.ID, all[0].ID)
		assert.Equal(t, ids(golang), ids(all[0]))

		featured, err := s.ListTracks(ctx, TrackFilter{FeaturedOnly: true})
		require.NoError(t, err)
		require.Len(t, featured, 1)
		assert.Equal(t, running.ID, featured[0].ID)

		found, err := s.ListTracks(ctx, TrackFilter{Search: "learn"})
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, golang.ID, found[0].ID)

		updated, err := s.SetFeatured(ctx, golang.ID, true)
		require.NoError(t, err)
		assert.True(t, updated.Featured)

		_, err = s.GetTrack(ctx, models.NewID())
		assert.True(t, errors.Is(err, apperrors.ErrNotFound))
		_, err = s.SetFeatured(ctx, models.NewID(), true)
		assert.True(t, errors.Is(err, apperrors.ErrNotFound))
	})
}

func TestCatalogTemplateIsNotAliasedByInstances(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		tmpl := template("Template", "A")
		require.NoError(t, s.CreateTrack(ctx, &tmpl))
		user := seedUser(t, s, "alias@trip.io")

		inst := tmpl.Instantiate()
		inst.SourceID = tmpl.ID
		require.NoError(t, s.AppendUserTrack(ctx, user.ID, &inst))
		_, err := s.SetFeatured(ctx, tmpl.ID, true)
		require.NoError(t, err)

		loaded, err := s.GetUser(ctx, user.ID)
		require.NoError(t, err)
		assert.False(t, loaded.Tracks[0].Featured)
		assert.Equal(t, tmpl.ID, loaded.Tracks[0].SourceID)

		catalog, err := s.ListTracks(ctx, TrackFilter{})
		require.NoError(t, err)
		assert.Len(t, catalog, 1, "instances must not leak into the catalog")
	})
}

func TestUsers(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		user := seedUser(t, s, "someone@trip.io")
		seedInstance(t, s, user.ID, "A")

		dup := &models.User{ID: models.NewID(), UserInfo: models.UserInfo{Email: "someone@trip.io", Password: "x"}}
		err := s.CreateUser(ctx, dup)
		assert.True(t, errors.Is(err, apperrors.ErrValidation), "got %v", err)

		byEmail, err := s.GetUserByEmail(ctx, "someone@trip.io")
		require.NoError(t, err)
		assert.Equal(t, user.ID, byEmail.ID)
		assert.Equal(t, "hash", byEmail.UserInfo.Password)

		err = s.AppendUserTrack(ctx, models.NewID(), &models.Track{ID: models.NewID()})
		assert.True(t, errors.Is(err, apperrors.ErrNotFound))

		require.NoError(t, s.DeleteUser(ctx, user.ID))
		_, err = s.GetUser(ctx, user.ID)
		assert.True(t, errors.Is(err, apperrors.ErrNotFound))
		assert.True(t, errors.Is(s.DeleteUser(ctx, user.ID), apperrors.ErrNotFound))
	})
}

func TestCreateSuggestion(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		suggestion := &models.Suggestion{ID: models.NewID(), Suggestion: "a track about sourdough"}
		require.NoError(t, s.CreateSuggestion(context.Background(), suggestion))
		assert.False(t, suggestion.CreatedAt.IsZero())
	})
}
