package models

import "strings"

type User struct {
	BaseModel
	Username     string `json:"username" gorm:"type:varchar(150);uniqueIndex;not null"`
	PasswordHash string `json:"-" gorm:"type:text;not null"`
	FirstName    string `json:"firstName" gorm:"type:varchar(150);not null;default:''"`
	LastName     string `json:"lastName" gorm:"type:varchar(150);not null;default:''"`
	Email        string `json:"email" gorm:"type:varchar(254);not null;default:''"`
}

// FullName falls back to the username when no name was given.
func (u User) FullName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Username
	}
	return name
}

func (u User) String() string {
	return u.Username
}
