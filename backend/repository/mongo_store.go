package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"trackpoint/backend/apperrors"
	"trackpoint/backend/models"
)

// MongoStore embeds track instances inside the user document, the way the
// data is shaped on the wire. Nested writes use positional array filters so
// each update touches exactly the addressed elements.
type MongoStore struct {
	client      *mongo.Client
	users       *mongo.Collection
	tracks      *mongo.Collection
	suggestions *mongo.Collection
}

func NewMongoStore(ctx context.Context, uri, database string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	db := client.Database(database)
	s := &MongoStore{
		client:      client,
		users:       db.Collection("users"),
		tracks:      db.Collection("tracks"),
		suggestions: db.Collection("suggestion"),
	}

	_, err = s.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "userInfo.email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("create email index: %w", err)
	}
	return s, nil
}

// hydrate fills the fields that are implicit in the document layout.
func hydrate(user *models.User) {
	if user.Tracks == nil {
		user.Tracks = []models.Track{}
	}
	for i := range user.Tracks {
		track := &user.Tracks[i]
		owner := user.ID
		track.UserID = &owner
		track.Position = i
		hydrateTrack(track)
	}
}

func hydrateTrack(track *models.Track) {
	for i := range track.Checkpoints {
		cp := &track.Checkpoints[i]
		cp.TrackID = track.ID
		cp.Position = i
		for j := range cp.Tasks {
			cp.Tasks[j].CheckpointID = cp.ID
			cp.Tasks[j].Position = j
		}
	}
}

func (s *MongoStore) CreateTrack(ctx context.Context, track *models.Track) error {
	now := time.Now().UTC()
	track.UserID = nil
	track.CreatedAt, track.UpdatedAt = now, now
	if _, err := s.tracks.InsertOne(ctx, track); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperrors.Validation("a track with this id already exists")
		}
		return apperrors.Store("create track", err)
	}
	return nil
}

func (s *MongoStore) ListTracks(ctx context.Context, filter TrackFilter) ([]models.Track, error) {
	query := bson.M{}
	if filter.FeaturedOnly {
		query["featured"] = true
	}
	if filter.Author != "" {
		query["author"] = filter.Author
	}
	if filter.Search != "" {
		pattern := bson.M{"$regex": regexp.QuoteMeta(filter.Search), "$options": "i"}
		query["$or"] = bson.A{bson.M{"title": pattern}, bson.M{"description": pattern}}
	}

	opts := options.Find()
	switch filter.Sort {
	case "newest":
		opts.SetSort(bson.D{{Key: "createdAt", Value: -1}})
	case "title":
		opts.SetSort(bson.D{{Key: "title", Value: 1}})
	default:
		opts.SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}})
	}

	cursor, err := s.tracks.Find(ctx, query, opts)
	if err != nil {
		return nil, apperrors.Store("list tracks", err)
	}
	tracks := []models.Track{}
	if err := cursor.All(ctx, &tracks); err != nil {
		return nil, apperrors.Store("decode tracks", err)
	}
	for i := range tracks {
		hydrateTrack(&tracks[i])
	}
	return tracks, nil
}

func (s *MongoStore) GetTrack(ctx context.Context, trackID string) (*models.Track, error) {
	var track models.Track
	if err := s.tracks.FindOne(ctx, bson.M{"_id": trackID}).Decode(&track); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, trackNotFound()
		}
		return nil, apperrors.Store("get track", err)
	}
	hydrateTrack(&track)
	return &track, nil
}

func (s *MongoStore) SetFeatured(ctx context.Context, trackID string, featured bool) (*models.Track, error) {
	var track models.Track
	err := s.tracks.FindOneAndUpdate(ctx,
		bson.M{"_id": trackID},
		bson.M{"$set": bson.M{"featured": featured, "updatedAt": time.Now().UTC()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&track)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, trackNotFound()
		}
		return nil, apperrors.Store("feature track", err)
	}
	hydrateTrack(&track)
	return &track, nil
}

func (s *MongoStore) CreateUser(ctx context.Context, user *models.User) error {
	if user.UserInfo.Created.IsZero() {
		user.UserInfo.Created = time.Now().UTC()
	}
	if user.Tracks == nil {
		user.Tracks = []models.Track{}
	}
	if _, err := s.users.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperrors.Validation("Email already exists")
		}
		return apperrors.Store("create user", err)
	}
	return nil
}

func (s *MongoStore) GetUser(ctx context.Context, userID string) (*models.User, error) {
	var user models.User
	if err := s.users.FindOne(ctx, bson.M{"_id": userID}).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, userNotFound()
		}
		return nil, apperrors.Store("load user", err)
	}
	hydrate(&user)
	return &user, nil
}

func (s *MongoStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := s.users.FindOne(ctx, bson.M{"userInfo.email": email}).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.NotFound("no user found for the given email")
		}
		return nil, apperrors.Store("find user by email", err)
	}
	hydrate(&user)
	return &user, nil
}

func (s *MongoStore) DeleteUser(ctx context.Context, userID string) error {
	res, err := s.users.DeleteOne(ctx, bson.M{"_id": userID})
	if err != nil {
		return apperrors.Store("delete user", err)
	}
	if res.DeletedCount == 0 {
		return apperrors.NotFound("could not find a user with the given id")
	}
	return nil
}

func (s *MongoStore) AppendUserTrack(ctx context.Context, userID string, track *models.Track) error {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	owner := userID
	track.UserID = &owner
	track.Position = len(user.Tracks)
	track.CreatedAt, track.UpdatedAt = now, now

	res, err := s.users.UpdateOne(ctx, bson.M{"_id": userID}, bson.M{"$push": bson.M{"tracks": track}})
	if err != nil {
		return apperrors.Store("append user track", err)
	}
	if res.MatchedCount == 0 {
		return userNotFound()
	}
	return nil
}

func (s *MongoStore) ApplyAdvance(ctx context.Context, adv Advance) error {
	filter := bson.M{
		"_id":    adv.UserID,
		"tracks": bson.M{"$elemMatch": bson.M{"_id": adv.TrackID, "version": adv.ExpectedVersion}},
	}
	set := bson.M{
		"tracks.$[t].currentCheckpoint": adv.CurrentCheckpoint,
		"tracks.$[t].completed":         adv.Completed,
		"tracks.$[t].updatedAt":         time.Now().UTC(),
	}
	arrayFilters := []interface{}{bson.M{"t._id": adv.TrackID, "t.version": adv.ExpectedVersion}}
	if adv.Passed != "" {
		set["tracks.$[t].checkpoints.$[passed].completed"] = true
		set["tracks.$[t].checkpoints.$[passed].current"] = false
		arrayFilters = append(arrayFilters, bson.M{"passed._id": adv.Passed})
	}
	if !adv.Completed && adv.CurrentCheckpoint != "" {
		set["tracks.$[t].checkpoints.$[next].current"] = true
		arrayFilters = append(arrayFilters, bson.M{"next._id": adv.CurrentCheckpoint})
	}
	update := bson.M{
		"$set": set,
		"$inc": bson.M{"tracks.$[t].version": 1},
	}

	res, err := s.users.UpdateOne(ctx, filter, update,
		options.Update().SetArrayFilters(options.ArrayFilters{Filters: arrayFilters}))
	if err != nil {
		return apperrors.Store("advance track", err)
	}
	if res.MatchedCount > 0 {
		return nil
	}

	user, err := s.GetUser(ctx, adv.UserID)
	if err != nil {
		return err
	}
	for i := range user.Tracks {
		if user.Tracks[i].ID == adv.TrackID {
			return apperrors.Conflict(conflictMessage)
		}
	}
	return trackNotFound()
}

func (s *MongoStore) ReplaceTask(ctx context.Context, ref models.TaskRef, task models.Task) (*models.Task, error) {
	filter := bson.M{
		"_id": ref.UserID,
		"tracks": bson.M{"$elemMatch": bson.M{
			"_id": ref.TrackID,
			"checkpoints": bson.M{"$elemMatch": bson.M{
				"_id":       ref.CheckpointID,
				"tasks._id": ref.TaskID,
			}},
		}},
	}
	const path = "tracks.$[t].checkpoints.$[c].tasks.$[k]."
	update := bson.M{"$set": bson.M{
		path + "title":       task.Title,
		path + "description": task.Description,
		path + "completed":   task.Completed,
	}}
	arrayFilters := []interface{}{
		bson.M{"t._id": ref.TrackID},
		bson.M{"c._id": ref.CheckpointID},
		bson.M{"k._id": ref.TaskID},
	}

	res, err := s.users.UpdateOne(ctx, filter, update,
		options.Update().SetArrayFilters(options.ArrayFilters{Filters: arrayFilters}))
	if err != nil {
		return nil, apperrors.Store("replace task", err)
	}

	user, err := s.GetUser(ctx, ref.UserID)
	if err != nil {
		return nil, err
	}
	_, _, stored, err := user.LocateTask(ref)
	if err != nil {
		return nil, err
	}
	if res.MatchedCount == 0 {
		return nil, apperrors.Conflict(conflictMessage)
	}
	out := *stored
	return &out, nil
}

func (s *MongoStore) CreateSuggestion(ctx context.Context, suggestion *models.Suggestion) error {
	suggestion.CreatedAt = time.Now().UTC()
	if _, err := s.suggestions.InsertOne(ctx, suggestion); err != nil {
		return apperrors.Store("create suggestion", err)
	}
	return nil
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// Drop removes every collection the store owns. Used by tests.
func (s *MongoStore) Drop(ctx context.Context) error {
	for _, c := range []*mongo.Collection{s.users, s.tracks, s.suggestions} {
		if err := c.Drop(ctx); err != nil {
			return err
		}
	}
	return nil
}
