package repository

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"trackpoint/backend/apperrors"
	"trackpoint/backend/models"
)

// GormStore keeps tracks, checkpoints and tasks in their own tables. The
// user document is reassembled with ordered preloads.
type GormStore struct {
	DB *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{DB: db}
}

func orderByPosition(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}

func (s *GormStore) CreateTrack(ctx context.Context, track *models.Track) error {
	track.UserID = nil
	if err := s.DB.WithContext(ctx).Create(track).Error; err != nil {
		return apperrors.Store("create track", err)
	}
	return nil
}

func (s *GormStore) ListTracks(ctx context.Context, filter TrackFilter) ([]models.Track, error) {
	query := s.DB.WithContext(ctx).
		Preload("Checkpoints", orderByPosition).
		Preload("Checkpoints.Tasks", orderByPosition).
		Where("user_id IS NULL")

	if filter.FeaturedOnly {
		query = query.Where("featured = ?", true)
	}
	if filter.Author != "" {
		query = query.Where("author = ?", filter.Author)
	}
	if filter.Search != "" {
		pattern := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("(LOWER(title) LIKE ? OR LOWER(description) LIKE ?)", pattern, pattern)
	}

	switch filter.Sort {
	case "newest":
		query = query.Order("created_at DESC")
	case "title":
		query = query.Order("title ASC")
	default:
		query = query.Order("created_at ASC").Order("id ASC")
	}

	tracks := []models.Track{}
	if err := query.Find(&tracks).Error; err != nil {
		return nil, apperrors.Store("list tracks", err)
	}
	return tracks, nil
}

func (s *GormStore) GetTrack(ctx context.Context, trackID string) (*models.Track, error) {
	var track models.Track
	err := s.DB.WithContext(ctx).
		Preload("Checkpoints", orderByPosition).
		Preload("Checkpoints.Tasks", orderByPosition).
		First(&track, "id = ? AND user_id IS NULL", trackID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, trackNotFound()
		}
		return nil, apperrors.Store("get track", err)
	}
	return &track, nil
}

func (s *GormStore) SetFeatured(ctx context.Context, trackID string, featured bool) (*models.Track, error) {
	res := s.DB.WithContext(ctx).Model(&models.Track{}).
		Where("id = ? AND user_id IS NULL", trackID).
		Update("featured", featured)
	if res.Error != nil {
		return nil, apperrors.Store("feature track", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, trackNotFound()
	}
	return s.GetTrack(ctx, trackID)
}

func (s *GormStore) CreateUser(ctx context.Context, user *models.User) error {
	db := s.DB.WithContext(ctx)

	var count int64
	if err := db.Model(&models.User{}).Where("email = ?", user.UserInfo.Email).Count(&count).Error; err != nil {
		return apperrors.Store("check email", err)
	}
	if count > 0 {
		return apperrors.Validation("Email already exists")
	}

	if err := db.Omit("Tracks").Create(user).Error; err != nil {
		return apperrors.Store("create user", err)
	}
	if user.Tracks == nil {
		user.Tracks = []models.Track{}
	}
	return nil
}

func (s *GormStore) GetUser(ctx context.Context, userID string) (*models.User, error) {
	return s.loadUser(s.DB.WithContext(ctx), userID)
}

func (s *GormStore) loadUser(db *gorm.DB, userID string) (*models.User, error) {
	var user models.User
	err := db.
		Preload("Tracks", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC").Order("created_at ASC").Order("id ASC")
		}).
		Preload("Tracks.Checkpoints", orderByPosition).
		Preload("Tracks.Checkpoints.Tasks", orderByPosition).
		First(&user, "id = ?", userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, userNotFound()
		}
		return nil, apperrors.Store("load user", err)
	}
	if user.Tracks == nil {
		user.Tracks = []models.Track{}
	}
	return &user, nil
}

func (s *GormStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := s.DB.WithContext(ctx).First(&user, "email = ?", email).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("no user found for the given email")
		}
		return nil, apperrors.Store("find user by email", err)
	}
	return &user, nil
}

// DeleteUser removes the user and every track, checkpoint and task it owns.
func (s *GormStore) DeleteUser(ctx context.Context, userID string) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.User{}).Where("id = ?", userID).Count(&count).Error; err != nil {
			return apperrors.Store("find user", err)
		}
		if count == 0 {
			return apperrors.NotFound("could not find a user with the given id")
		}

		trackIDs := tx.Model(&models.Track{}).Select("id").Where("user_id = ?", userID)
		checkpointIDs := tx.Model(&models.Checkpoint{}).Select("id").Where("track_id IN (?)", trackIDs)

		if err := tx.Where("checkpoint_id IN (?)", checkpointIDs).Delete(&models.Task{}).Error; err != nil {
			return apperrors.Store("delete tasks", err)
		}
		if err := tx.Where("track_id IN (?)", trackIDs).Delete(&models.Checkpoint{}).Error; err != nil {
			return apperrors.Store("delete checkpoints", err)
		}
		if err := tx.Where("user_id = ?", userID).Delete(&models.Track{}).Error; err != nil {
			return apperrors.Store("delete tracks", err)
		}
		if err := tx.Where("id = ?", userID).Delete(&models.User{}).Error; err != nil {
			return apperrors.Store("delete user", err)
		}
		return nil
	})
}

func (s *GormStore) AppendUserTrack(ctx context.Context, userID string, track *models.Track) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var users int64
		if err := tx.Model(&models.User{}).Where("id = ?", userID).Count(&users).Error; err != nil {
			return apperrors.Store("find user", err)
		}
		if users == 0 {
			return userNotFound()
		}

		var position int64
		if err := tx.Model(&models.Track{}).Where("user_id = ?", userID).Count(&position).Error; err != nil {
			return apperrors.Store("count user tracks", err)
		}

		owner := userID
		track.UserID = &owner
		track.Position = int(position)
		if err := tx.Create(track).Error; err != nil {
			return apperrors.Store("append user track", err)
		}
		return nil
	})
}

// ApplyAdvance moves the pointer with a compare-and-swap on the version
// column, then updates the checkpoint flags in the same transaction.
func (s *GormStore) ApplyAdvance(ctx context.Context, adv Advance) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Track{}).
			Where("id = ? AND user_id = ? AND version = ?", adv.TrackID, adv.UserID, adv.ExpectedVersion).
			Updates(map[string]interface{}{
				"current_checkpoint": adv.CurrentCheckpoint,
				"completed":          adv.Completed,
				"version":            gorm.Expr("version + 1"),
			})
		if res.Error != nil {
			return apperrors.Store("advance track", res.Error)
		}
		if res.RowsAffected == 0 {
			return s.explainAdvanceMiss(tx, adv)
		}

		if adv.Passed != "" {
			err := tx.Model(&models.Checkpoint{}).
				Where("id = ? AND track_id = ?", adv.Passed, adv.TrackID).
				Updates(map[string]interface{}{"completed": true, "current": false}).Error
			if err != nil {
				return apperrors.Store("complete checkpoint", err)
			}
		}
		if !adv.Completed && adv.CurrentCheckpoint != "" {
			err := tx.Model(&models.Checkpoint{}).
				Where("id = ? AND track_id = ?", adv.CurrentCheckpoint, adv.TrackID).
				Update("current", true).Error
			if err != nil {
				return apperrors.Store("mark current checkpoint", err)
			}
		}
		return nil
	})
}

func (s *GormStore) explainAdvanceMiss(tx *gorm.DB, adv Advance) error {
	var count int64
	if err := tx.Model(&models.User{}).Where("id = ?", adv.UserID).Count(&count).Error; err != nil {
		return apperrors.Store("find user", err)
	}
	if count == 0 {
		return userNotFound()
	}
	if err := tx.Model(&models.Track{}).Where("id = ? AND user_id = ?", adv.TrackID, adv.UserID).Count(&count).Error; err != nil {
		return apperrors.Store("find track", err)
	}
	if count == 0 {
		return trackNotFound()
	}
	return apperrors.Conflict(conflictMessage)
}

// ReplaceTask issues one UPDATE whose WHERE clause pins user, track,
// checkpoint and task, so concurrent edits to sibling tasks never collide.
func (s *GormStore) ReplaceTask(ctx context.Context, ref models.TaskRef, task models.Task) (*models.Task, error) {
	db := s.DB.WithContext(ctx)

	ownedTracks := db.Model(&models.Track{}).Select("id").
		Where("id = ? AND user_id = ?", ref.TrackID, ref.UserID)
	ownedCheckpoints := db.Model(&models.Checkpoint{}).Select("id").
		Where("id = ? AND track_id IN (?)", ref.CheckpointID, ownedTracks)

	res := db.Model(&models.Task{}).
		Where("id = ? AND checkpoint_id IN (?)", ref.TaskID, ownedCheckpoints).
		Updates(map[string]interface{}{
			"title":       task.Title,
			"description": task.Description,
			"completed":   task.Completed,
		})
	if res.Error != nil {
		return nil, apperrors.Store("replace task", res.Error)
	}
	if res.RowsAffected == 0 {
		user, err := s.loadUser(db, ref.UserID)
		if err != nil {
			return nil, err
		}
		if _, _, _, err := user.LocateTask(ref); err != nil {
			return nil, err
		}
		return nil, apperrors.Conflict(conflictMessage)
	}

	var out models.Task
	if err := db.First(&out, "id = ?", ref.TaskID).Error; err != nil {
		return nil, apperrors.Store("reload task", err)
	}
	return &out, nil
}

func (s *GormStore) CreateSuggestion(ctx context.Context, suggestion *models.Suggestion) error {
	if err := s.DB.WithContext(ctx).Create(suggestion).Error; err != nil {
		return apperrors.Store("create suggestion", err)
	}
	return nil
}

func (s *GormStore) Close(context.Context) error {
	sqlDB, err := s.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
