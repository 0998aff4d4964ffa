package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/yatube/yatube/internal/forms"
	"github.com/yatube/yatube/internal/models"
	"github.com/yatube/yatube/pkg/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PostsPerPage is the fixed size of every post feed page.
const PostsPerPage = 10

type PostPage = utils.PageOf[models.Post]

type PostService struct {
	DB *gorm.DB

	groups *GroupService
	users  *UserService
}

func NewPostService(db *gorm.DB) *PostService {
	return &PostService{DB: db, groups: NewGroupService(db), users: NewUserService(db)}
}

// Index returns one page of every post, newest first.
func (s *PostService) Index(ctx context.Context, rawPage string) (PostPage, error) {
	return s.paginate(ctx, rawPage, func(db *gorm.DB) *gorm.DB { return db })
}

// GroupFeed resolves a group by slug and returns one page of its posts.
func (s *PostService) GroupFeed(ctx context.Context, slug string, rawPage string) (*models.Group, PostPage, error) {
	group, err := s.groups.GetBySlug(ctx, slug)
	if err != nil {
		return nil, PostPage{}, err
	}

	page, err := s.paginate(ctx, rawPage, func(db *gorm.DB) *gorm.DB {
		return db.Where("posts.group_id = ?", group.ID)
	})
	if err != nil {
		return nil, PostPage{}, err
	}
	return group, page, nil
}

// ProfileFeed resolves an author by username and returns one page of their posts.
func (s *PostService) ProfileFeed(ctx context.Context, username string, rawPage string) (*models.User, PostPage, error) {
	author, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, PostPage{}, err
	}

	page, err := s.paginate(ctx, rawPage, func(db *gorm.DB) *gorm.DB {
		return db.Where("posts.author_id = ?", author.ID)
	})
	if err != nil {
		return nil, PostPage{}, err
	}
	return author, page, nil
}

// PostFilter narrows List to one group and/or one author. Empty fields match
// everything.
type PostFilter struct {
	GroupSlug string
	Username  string
}

// List returns one page of posts matching filter, newest first. An unknown
// group or author yields ErrNotFound.
func (s *PostService) List(ctx context.Context, filter PostFilter, rawPage string) (PostPage, error) {
	var scopes []func(*gorm.DB) *gorm.DB

	if filter.GroupSlug != "" {
		group, err := s.groups.GetBySlug(ctx, filter.GroupSlug)
		if err != nil {
			return PostPage{}, err
		}
		scopes = append(scopes, func(db *gorm.DB) *gorm.DB { return db.Where("posts.group_id = ?", group.ID) })
	}
	if filter.Username != "" {
		author, err := s.users.GetByUsername(ctx, filter.Username)
		if err != nil {
			return PostPage{}, err
		}
		scopes = append(scopes, func(db *gorm.DB) *gorm.DB { return db.Where("posts.author_id = ?", author.ID) })
	}

	return s.paginate(ctx, rawPage, func(db *gorm.DB) *gorm.DB { return db.Scopes(scopes...) })
}

func (s *PostService) paginate(ctx context.Context, rawPage string, filter func(*gorm.DB) *gorm.DB) (PostPage, error) {
	var total int64
	if err := s.DB.WithContext(ctx).Model(&models.Post{}).Scopes(filter).Count(&total).Error; err != nil {
		return PostPage{}, err
	}

	page := utils.NewPage(total, rawPage, PostsPerPage)

	posts := make([]models.Post, 0, page.Len())
	query := s.DB.WithContext(ctx).
		Model(&models.Post{}).
		Scopes(filter).
		Preload("Author").
		Preload("Group").
		Order("posts.created_at DESC").
		Order("posts.id DESC")
	if err := utils.ApplyPagination(query, page).Find(&posts).Error; err != nil {
		return PostPage{}, err
	}

	return PostPage{Page: page, Items: posts}, nil
}

// Get loads a post with its author and group. Malformed ids are reported as
// ErrNotFound, like ids that do not exist.
func (s *PostService) Get(ctx context.Context, rawID string) (*models.Post, error) {
	id, err := uuid.Parse(strings.TrimSpace(rawID))
	if err != nil {
		return nil, ErrNotFound
	}

	var post models.Post
	if err := s.DB.WithContext(ctx).Preload("Author").Preload("Group").First(&post, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &post, nil
}

func (s *PostService) CountByAuthor(ctx context.Context, authorID uuid.UUID) (int64, error) {
	var count int64
	err := s.DB.WithContext(ctx).Model(&models.Post{}).Where("author_id = ?", authorID).Count(&count).Error
	return count, err
}

// CountByGroup maps each group id to its number of posts. Groups without
// posts are absent.
func (s *PostService) CountByGroup(ctx context.Context) (map[uuid.UUID]int64, error) {
	var rows []struct {
		GroupID uuid.UUID
		Total   int64
	}
	err := s.DB.WithContext(ctx).
		Model(&models.Post{}).
		Select("group_id, COUNT(*) AS total").
		Where("group_id IS NOT NULL").
		Group("group_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[uuid.UUID]int64, len(rows))
	for _, row := range rows {
		counts[row.GroupID] = row.Total
	}
	return counts, nil
}

func (s *PostService) Count(ctx context.Context) (int64, error) {
	var count int64
	err := s.DB.WithContext(ctx).Model(&models.Post{}).Count(&count).Error
	return count, err
}

// Create stores a new post written by actor. The form must already have
// passed Validate; nothing is written otherwise.
func (s *PostService) Create(ctx context.Context, actor *models.User, form *forms.PostForm) (*models.Post, error) {
	if actor == nil {
		return nil, errors.New("create post: missing actor")
	}
	if form == nil || !form.Valid() {
		return nil, ErrInvalidForm
	}

	post := models.Post{AuthorID: actor.ID}
	form.Apply(&post)

	if err := s.DB.WithContext(ctx).Omit(clause.Associations).Create(&post).Error; err != nil {
		return nil, err
	}

	post.Author = *actor
	return &post, nil
}

// Update rewrites text and group from a validated form. The editing actor
// becomes the post's author.
func (s *PostService) Update(ctx context.Context, actor *models.User, post *models.Post, form *forms.PostForm) error {
	if actor == nil || post == nil {
		return errors.New("update post: missing actor or post")
	}
	if form == nil || !form.Valid() {
		return ErrInvalidForm
	}

	form.Apply(post)

	var groupValue interface{}
	if post.GroupID != nil {
		groupValue = *post.GroupID
	}

	err := s.DB.WithContext(ctx).
		Model(&models.Post{BaseModel: models.BaseModel{ID: post.ID}}).
		Updates(map[string]interface{}{
			"text":      post.Text,
			"group_id":  groupValue,
			"author_id": actor.ID,
		}).Error
	if err != nil {
		return err
	}

	post.AuthorID = actor.ID
	post.Author = *actor
	return nil
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
