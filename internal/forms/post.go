package forms

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/yatube/yatube/internal/models"
)

const (
	MsgRequired      = "This field is required."
	MsgInvalidChoice = "Select a valid choice. That choice is not one of the available choices."
)

// GroupChecker answers whether a group id refers to a stored group.
type GroupChecker interface {
	GroupExists(ctx context.Context, id uuid.UUID) (bool, error)
}

// PostForm carries the user-editable fields of a post. The author is never
// part of the form.
type PostForm struct {
	Text  string `form:"text"`
	Group string `form:"group"`

	Errors    map[string]string `form:"-"`
	groupID   *uuid.UUID
	validated bool
}

// NewPostForm returns a form pre-populated from post, or an empty form.
func NewPostForm(post *models.Post) *PostForm {
	form := &PostForm{Errors: map[string]string{}}
	if post == nil {
		return form
	}
	form.Text = post.Text
	if post.GroupID != nil {
		form.Group = post.GroupID.String()
	}
	return form
}

func BindPostForm(c *fiber.Ctx) (*PostForm, error) {
	form := &PostForm{}
	if err := c.BodyParser(form); err != nil {
		return nil, err
	}
	form.Errors = map[string]string{}
	return form, nil
}

// Validate reports whether the form may be saved. A non-nil error means the
// check itself could not run.
func (f *PostForm) Validate(ctx context.Context, groups GroupChecker) (bool, error) {
	f.Errors = map[string]string{}
	f.groupID = nil
	f.validated = false

	f.Text = strings.TrimSpace(f.Text)
	if f.Text == "" {
		f.Errors["text"] = MsgRequired
	}

	f.Group = strings.TrimSpace(f.Group)
	if f.Group != "" {
		id, err := uuid.Parse(f.Group)
		if err != nil {
			f.Errors["group"] = MsgInvalidChoice
		} else {
			exists, err := groups.GroupExists(ctx, id)
			if err != nil {
				return false, err
			}
			if !exists {
				f.Errors["group"] = MsgInvalidChoice
			} else {
				f.groupID = &id
			}
		}
	}

	f.validated = true
	return len(f.Errors) == 0, nil
}

// Valid reports whether Validate ran to completion and found no errors.
func (f *PostForm) Valid() bool {
	return f.validated && len(f.Errors) == 0
}

// Apply copies validated values onto post. Call only after Validate succeeded.
func (f *PostForm) Apply(post *models.Post) {
	post.Text = f.Text
	post.GroupID = f.groupID
	if f.groupID == nil {
		post.Group = nil
	}
}

// Selected reports whether id is the currently chosen group, for rendering.
func (f *PostForm) Selected(id uuid.UUID) bool {
	return f.Group == id.String()
}
