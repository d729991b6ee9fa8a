package models

import "time"

// Track is either a catalog template (UserID == nil) or a user's personal
// instance of one. Instances carry the progression state.
type Track struct {
	ID                string       `gorm:"primaryKey;size:24" bson:"_id" json:"_id"`
	UserID            *string      `gorm:"size:24;index" bson:"-" json:"-"`
	SourceID          string       `gorm:"size:24;index" bson:"sourceId,omitempty" json:"sourceId,omitempty"`
	Position          int          `gorm:"not null;default:0" bson:"-" json:"-"`
	Title             string       `bson:"title" json:"title"`
	Description       string       `bson:"description" json:"description"`
	Author            string       `bson:"author" json:"author"`
	Checkpoints       []Checkpoint `gorm:"foreignKey:TrackID" bson:"checkpoints" json:"checkpoints" validate:"dive"`
	CurrentCheckpoint string       `gorm:"size:24;not null;default:''" bson:"currentCheckpoint" json:"currentCheckpoint"`
	Completed         bool         `gorm:"not null;default:false" bson:"completed" json:"completed"`
	Featured          bool         `gorm:"not null;default:false;index" bson:"featured" json:"featured"`
	Version           int          `gorm:"not null;default:0" bson:"version" json:"version"`
	CreatedAt         time.Time    `bson:"createdAt" json:"createdAt"`
	UpdatedAt         time.Time    `bson:"updatedAt" json:"updatedAt"`
}

type Checkpoint struct {
	ID          string `gorm:"primaryKey;size:24" bson:"_id" json:"_id"`
	TrackID     string `gorm:"size:24;index;not null" bson:"-" json:"-"`
	Position    int    `gorm:"not null;default:0" bson:"-" json:"-"`
	Title       string `gorm:"not null" bson:"title" json:"title" validate:"required"`
	Description string `bson:"description" json:"description"`
	Tasks       []Task `gorm:"foreignKey:CheckpointID" bson:"tasks" json:"tasks" validate:"dive"`
	Completed   bool   `gorm:"not null;default:false" bson:"completed" json:"completed"`
	Current     bool   `gorm:"not null;default:false" bson:"current" json:"current"`
}

type Task struct {
	ID           string `gorm:"primaryKey;size:24" bson:"_id" json:"_id"`
	CheckpointID string `gorm:"size:24;index;not null" bson:"-" json:"-"`
	Position     int    `gorm:"not null;default:0" bson:"-" json:"-"`
	Title        string `gorm:"not null" bson:"title" json:"title" validate:"required"`
	Description  string `bson:"description" json:"description"`
	Completed    bool   `gorm:"not null;default:false" bson:"completed" json:"completed"`
}

// Clone returns a deep copy sharing no slices with t.
func (t Track) Clone() Track {
	out := t
	if t.UserID != nil {
		userID := *t.UserID
		out.UserID = &userID
	}
	if t.Checkpoints != nil {
		out.Checkpoints = make([]Checkpoint, len(t.Checkpoints))
		for i := range t.Checkpoints {
			out.Checkpoints[i] = t.Checkpoints[i].Clone()
		}
	}
	return out
}

func (c Checkpoint) Clone() Checkpoint {
	out := c
	if c.Tasks != nil {
		out.Tasks = make([]Task, len(c.Tasks))
		copy(out.Tasks, c.Tasks)
	}
	return out
}

// Instantiate returns a deep copy of t with fresh identifiers at every
// level, positions matching slice order and all progression state cleared.
// The copy carries no owner; callers set UserID and SourceID as needed.
func (t Track) Instantiate() Track {
	out := t.Clone()
	out.ID = NewID()
	out.UserID = nil
	out.SourceID = ""
	out.Position = 0
	out.CurrentCheckpoint = ""
	out.Completed = false
	out.Featured = false
	out.Version = 0
	out.CreatedAt = time.Time{}
	out.UpdatedAt = time.Time{}
	if out.Checkpoints == nil {
		out.Checkpoints = []Checkpoint{}
	}
	for i := range out.Checkpoints {
		cp := &out.Checkpoints[i]
		cp.ID = NewID()
		cp.TrackID = out.ID
		cp.Position = i
		cp.Completed = false
		cp.Current = false
		if cp.Tasks == nil {
			cp.Tasks = []Task{}
		}
		for j := range cp.Tasks {
			task := &cp.Tasks[j]
			task.ID = NewID()
			task.CheckpointID = cp.ID
			task.Position = j
			task.Completed = false
		}
	}
	return out
}

// IsTemplate reports whether t belongs to the catalog rather than a user.
func (t *Track) IsTemplate() bool {
	return t.UserID == nil
}
