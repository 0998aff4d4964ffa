package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/yatube/yatube/internal/models"
	"gorm.io/gorm"
)

type GroupService struct {
	DB *gorm.DB
}

func NewGroupService(db *gorm.DB) *GroupService {
	return &GroupService{DB: db}
}

func (s *GroupService) GroupExists(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	if err := s.DB.WithContext(ctx).Model(&models.Group{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// List returns every group ordered by title, for the post form's choices.
func (s *GroupService) List(ctx context.Context) ([]models.Group, error) {
	var groups []models.Group
	err := s.DB.WithContext(ctx).Order("title ASC").Find(&groups).Error
	return groups, err
}

func (s *GroupService) GetBySlug(ctx context.Context, slug string) (*models.Group, error) {
	var group models.Group
	if err := s.DB.WithContext(ctx).First(&group, "slug = ?", slug).Error; err != nil {
		return nil, notFound(err)
	}
	return &group, nil
}

// Create adds a group. An empty slug is derived from the title.
func (s *GroupService) Create(ctx context.Context, title, slug, description string) (*models.Group, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, errors.New("title is required")
	}

	slug = strings.TrimSpace(slug)
	if slug == "" {
		slug = Slugify(title)
	}
	if !models.ValidSlug(slug) {
		return nil, ErrInvalidSlug
	}

	var count int64
	if err := s.DB.WithContext(ctx).Model(&models.Group{}).Where("slug = ?", slug).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrSlugTaken
	}

	group := models.Group{
		Title:       title,
		Slug:        slug,
		Description: strings.TrimSpace(description),
	}
	if err := s.DB.WithContext(ctx).Create(&group).Error; err != nil {
		return nil, err
	}
	return &group, nil
}

// Slugify lowercases s, joins words with hyphens and drops every character
// that is not an ASCII letter, digit, hyphen or underscore.
func Slugify(s string) string {
	var b strings.Builder
	pendingHyphen := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_':
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
		case r == '-' || r == ' ' || r == '\t':
			pendingHyphen = true
		}
	}
	return b.String()
}
