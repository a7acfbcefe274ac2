package models

import (
	"time"
)

type User struct {
	ID         ID        `gorm:"primaryKey;autoIncrement:false" json:"_id"`
	Fullname   string    `gorm:"size:100;not null" json:"fullname"`
	Username   string    `gorm:"size:60;uniqueIndex;not null" json:"username"`
	Email      string    `gorm:"size:200;uniqueIndex;not null" json:"-"`
	Password   string    `gorm:"not null" json:"-"` // bcrypt hash
	ProfileImg string    `json:"profile_img"`
	Bio        string    `gorm:"size:200" json:"bio"`
	Admin      bool      `gorm:"default:false" json:"-"`
	CreatedAt  time.Time `json:"joinedAt"`
}

// PersonalInfo is the public author summary embedded in comments and notifications.
type PersonalInfo struct {
	Fullname   string `json:"fullname"`
	Username   string `json:"username"`
	ProfileImg string `json:"profile_img"`
}

type UserSummary struct {
	ID           ID           `json:"_id"`
	PersonalInfo PersonalInfo `json:"personal_info"`
}

func (u User) Summary() UserSummary {
	return UserSummary{
		ID: u.ID,
		PersonalInfo: PersonalInfo{
			Fullname:   u.Fullname,
			Username:   u.Username,
			ProfileImg: u.ProfileImg,
		},
	}
}
