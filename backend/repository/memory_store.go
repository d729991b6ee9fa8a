package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"trackpoint/backend/apperrors"
	"trackpoint/backend/models"
)

const conflictMessage = "the track was modified by another request, retry"

func userNotFound() error {
	return apperrors.NotFound("no user found for the given id")
}

func trackNotFound() error {
	return apperrors.NotFound("no track found for the given trackID")
}

// MemoryStore keeps everything in process memory. Documents are cloned on
// the way in and out so callers never alias stored state.
type MemoryStore struct {
	mu          sync.RWMutex
	tracks      map[string]*models.Track
	trackOrder  []string
	users       map[string]*models.User
	suggestions []models.Suggestion
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		tracks: make(map[string]*models.Track),
		users:  make(map[string]*models.User),
	}
}

// Catalog methods
func (s *MemoryStore) CreateTrack(_ context.Context, track *models.Track) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.tracks[track.ID]; exists {
		return apperrors.Validation("a track with this id already exists")
	}
	now := time.Now().UTC()
	track.CreatedAt, track.UpdatedAt = now, now
	stored := track.Clone()
	s.tracks[track.ID] = &stored
	s.trackOrder = append(s.trackOrder, track.ID)
	return nil
}

func (s *MemoryStore) ListTracks(_ context.Context, filter TrackFilter) ([]models.Track, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	search := strings.ToLower(filter.Search)
	result := make([]models.Track, 0, len(s.trackOrder))
	for _, id := range s.trackOrder {
		track := s.tracks[id]
		if filter.FeaturedOnly && !track.Featured {
			continue
		}
		if filter.Author != "" && track.Author != filter.Author {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(track.Title), search) &&
			!strings.Contains(strings.ToLower(track.Description), search) {
			continue
		}
		result = append(result, track.Clone())
	}

	switch filter.Sort {
	case "newest":
		sort.SliceStable(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	case "title":
		sort.SliceStable(result, func(i, j int) bool { return result[i].Title < result[j].Title })
	}
	return result, nil
}

func (s *MemoryStore) GetTrack(_ context.Context, trackID string) (*models.Track, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	track, ok := s.tracks[trackID]
	if !ok {
		return nil, trackNotFound()
	}
	out := track.Clone()
	return &out, nil
}

func (s *MemoryStore) SetFeatured(_ context.Context, trackID string, featured bool) (*models.Track, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	track, ok := s.tracks[trackID]
	if !ok {
		return nil, trackNotFound()
	}
	track.Featured = featured
	track.UpdatedAt = time.Now().UTC()
	out := track.Clone()
	return &out, nil
}

// User methods
func (s *MemoryStore) CreateUser(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if existing.UserInfo.Email == user.UserInfo.Email {
			return apperrors.Validation("Email already exists")
		}
	}
	if user.UserInfo.Created.IsZero() {
		user.UserInfo.Created = time.Now().UTC()
	}
	if user.Tracks == nil {
		user.Tracks = []models.Track{}
	}
	stored := user.Clone()
	s.users[user.ID] = &stored
	return nil
}

func (s *MemoryStore) GetUser(_ context.Context, userID string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[userID]
	if !ok {
		return nil, userNotFound()
	}
	out := user.Clone()
	return &out, nil
}

func (s *MemoryStore) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, user := range s.users {
		if user.UserInfo.Email == email {
			out := user.Clone()
			return &out, nil
		}
	}
	return nil, apperrors.NotFound("no user found for the given email")
}

func (s *MemoryStore) DeleteUser(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[userID]; !ok {
		return apperrors.NotFound("could not find a user with the given id")
	}
	delete(s.users, userID)
	return nil
}

// Progression methods
func (s *MemoryStore) AppendUserTrack(_ context.Context, userID string, track *models.Track) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[userID]
	if !ok {
		return userNotFound()
	}
	owner := userID
	now := time.Now().UTC()
	track.UserID = &owner
	track.Position = len(user.Tracks)
	track.CreatedAt, track.UpdatedAt = now, now
	user.Tracks = append(user.Tracks, track.Clone())
	return nil
}

func (s *MemoryStore) ApplyAdvance(_ context.Context, adv Advance) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[adv.UserID]
	if !ok {
		return userNotFound()
	}
	for i := range user.Tracks {
		track := &user.Tracks[i]
		if track.ID != adv.TrackID {
			continue
		}
		if track.Version != adv.ExpectedVersion {
			return apperrors.Conflict(conflictMessage)
		}
		adv.ApplyTo(track)
		track.UpdatedAt = time.Now().UTC()
		return nil
	}
	return trackNotFound()
}

func (s *MemoryStore) ReplaceTask(_ context.Context, ref models.TaskRef, task models.Task) (*models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[ref.UserID]
	if !ok {
		return nil, userNotFound()
	}
	_, _, stored, err := user.LocateTask(ref)
	if err != nil {
		return nil, err
	}
	stored.Title = task.Title
	stored.Description = task.Description
	stored.Completed = task.Completed
	out := *stored
	return &out, nil
}

func (s *MemoryStore) CreateSuggestion(_ context.Context, suggestion *models.Suggestion) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	suggestion.CreatedAt = time.Now().UTC()
	s.suggestions = append(s.suggestions, *suggestion)
	return nil
}

func (s *MemoryStore) Close(context.Context) error {
	return nil
}
