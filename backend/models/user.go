package models

import "time"

// User is the root aggregate. It owns its track instances and everything
// nested below them.
type User struct {
	ID       string   `gorm:"primaryKey;size:24" bson:"_id" json:"_id"`
	UserInfo UserInfo `gorm:"embedded" bson:"userInfo" json:"userInfo"`
	Tracks   []Track  `gorm:"foreignKey:UserID" bson:"tracks" json:"tracks"`
}

type UserInfo struct {
	Email    string    `gorm:"uniqueIndex;not null" bson:"email" json:"email"`
	Password string    `gorm:"not null" bson:"password" json:"-"`
	Created  time.Time `bson:"created" json:"created"`
}

func (u User) Clone() User {
	out := u
	if u.Tracks != nil {
		out.Tracks = make([]Track, len(u.Tracks))
		for i := range u.Tracks {
			out.Tracks[i] = u.Tracks[i].Clone()
		}
	}
	return out
}
