package services

import "github.com/yatube/yatube/internal/models"

type AccessService struct{}

func NewAccessService() *AccessService {
	return &AccessService{}
}

// CanEditPost is the single authorization point for editing. Any signed-in
// user may edit any post; restrict to the author by comparing
// actor.ID with post.AuthorID here.
func (a *AccessService) CanEditPost(actor *models.User, post *models.Post) bool {
	return actor != nil && post != nil
}
