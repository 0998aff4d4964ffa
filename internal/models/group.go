package models

import "regexp"

type Group struct {
	BaseModel
	Title       string `json:"title" gorm:"type:varchar(200);not null"`
	Slug        string `json:"slug" gorm:"type:varchar(200);uniqueIndex;not null"`
	Description string `json:"description" gorm:"type:text;not null;default:''"`
}

var slugPattern = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)

// ValidSlug reports whether s can be used as a group slug in a URL path.
func ValidSlug(s string) bool {
	return slugPattern.MatchString(s)
}

func (g Group) String() string {
	return g.Title
}
