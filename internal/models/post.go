package models

import "github.com/google/uuid"

// LabelLength is how many characters of a post's text make up its label.
const LabelLength = 15

type Post struct {
	BaseModel
	Text     string     `json:"text" gorm:"type:text;not null"`
	AuthorID uuid.UUID  `json:"authorID" gorm:"type:uuid;not null;index"`
	GroupID  *uuid.UUID `json:"groupID,omitempty" gorm:"type:uuid;index"`
	Author   User       `json:"author" gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE"`
	Group    *Group     `json:"group,omitempty" gorm:"foreignKey:GroupID;constraint:OnDelete:SET NULL"`
}

// Label is the post text cut to its first LabelLength characters.
func (p Post) Label() string {
	runes := []rune(p.Text)
	if len(runes) <= LabelLength {
		return p.Text
	}
	return string(runes[:LabelLength])
}

func (p Post) String() string {
	return p.Label()
}
