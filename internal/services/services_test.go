package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/yatube/yatube/internal/database"
	"github.com/yatube/yatube/internal/forms"
	"github.com/yatube/yatube/internal/models"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(database.SQLiteDSN(":memory:")), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed opening in-memory sqlite database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed getting sql.DB from gorm: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := database.Migrate(db); err != nil {
		t.Fatalf("failed automigrating models: %v", err)
	}
	return db
}

func createUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	user := &models.User{Username: username, PasswordHash: "x"}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed creating user: %v", err)
	}
	return user
}

func createGroup(t *testing.T, db *gorm.DB, title, slug string) *models.Group {
	t.Helper()
	group := &models.Group{Title: title, Slug: slug, Description: "description of " + title}
	if err := db.Create(group).Error; err != nil {
		t.Fatalf("failed creating group: %v", err)
	}
	return group
}

// seedPosts writes n posts one second apart so feed order is deterministic;
// the last post written is the newest.
func seedPosts(t *testing.T, db *gorm.DB, n int, author *models.User, group *models.Group) []models.Post {
	t.Helper()
	base := time.Now().Add(-time.Hour)
	posts := make([]models.Post, 0, n)
	for i := 0; i < n; i++ {
		post := models.Post{Text: fmt.Sprintf("%s post %02d", author.Username, i), AuthorID: author.ID}
		post.CreatedAt = base.Add(time.Duration(i) * time.Second)
		if group != nil {
			post.GroupID = &group.ID
		}
		if err := db.Omit("Author", "Group").Create(&post).Error; err != nil {
			t.Fatalf("failed creating post: %v", err)
		}
		posts = append(posts, post)
	}
	return posts
}

func validForm(t *testing.T, groups *GroupService, text, group string) *forms.PostForm {
	t.Helper()
	form := &forms.PostForm{Text: text, Group: group}
	ok, err := form.Validate(context.Background(), groups)
	if err != nil {
		t.Fatalf("Validate returned error: %v", err)
	}
	if !ok {
		t.Fatalf("expected form to be valid, got %v", form.Errors)
	}
	return form
}

func TestPostService_Index(t *testing.T) {
	db := newTestDB(t)
	svc := NewPostService(db)
	author := createUser(t, db, "leo")
	group := createGroup(t, db, "Cats", "cats")
	posts := seedPosts(t, db, 13, author, group)
	ctx := context.Background()

	t.Run("first page holds ten newest posts", func(t *testing.T) {
		page, err := svc.Index(ctx, "")
		if err != nil {
			t.Fatalf("Index returned error: %v", err)
		}
		if len(page.Items) != 10 {
			t.Fatalf("expected 10 posts, got %d", len(page.Items))
		}
		if page.Items[0].ID != posts[12].ID {
			t.Fatalf("expected newest post first, got %q", page.Items[0].Text)
		}
		if page.Items[0].Author.Username != "leo" {
			t.Fatalf("expected author to be preloaded, got %+v", page.Items[0].Author)
		}
		if page.Items[0].Group == nil || page.Items[0].Group.Slug != "cats" {
			t.Fatalf("expected group to be preloaded, got %+v", page.Items[0].Group)
		}
	})

	t.Run("second page holds the remainder", func(t *testing.T) {
		page, err := svc.Index(ctx, "2")
		if err != nil {
			t.Fatalf("Index returned error: %v", err)
		}
		if len(page.Items) != 3 {
			t.Fatalf("expected 3 posts, got %d", len(page.Items))
		}
		if page.Items[2].ID != posts[0].ID {
			t.Fatalf("expected oldest post last, got %q", page.Items[2].Text)
		}
	})

	t.Run("out of range page clamps to last", func(t *testing.T) {
		page, err := svc.Index(ctx, "40")
		if err != nil {
			t.Fatalf("Index returned error: %v", err)
		}
		if page.Number != 2 || len(page.Items) != 3 {
			t.Fatalf("expected last page with 3 posts, got page %d with %d", page.Number, len(page.Items))
		}
	})

	t.Run("non-numeric page is first page", func(t *testing.T) {
		page, err := svc.Index(ctx, "last")
		if err != nil {
			t.Fatalf("Index returned error: %v", err)
		}
		if page.Number != 1 || len(page.Items) != 10 {
			t.Fatalf("expected first page, got page %d with %d", page.Number, len(page.Items))
		}
	})
}

func TestPostService_GroupFeed(t *testing.T) {
	db := newTestDB(t)
	svc := NewPostService(db)
	author := createUser(t, db, "leo")
	cats := createGroup(t, db, "Cats", "cats")
	dogs := createGroup(t, db, "Dogs", "dogs")
	seedPosts(t, db, 12, author, cats)
	seedPosts(t, db, 2, author, dogs)
	seedPosts(t, db, 1, author, nil)
	ctx := context.Background()

	group, page, err := svc.GroupFeed(ctx, "cats", "2")
	if err != nil {
		t.Fatalf("GroupFeed returned error: %v", err)
	}
	if group.ID != cats.ID {
		t.Fatalf("expected cats group, got %s", group.Slug)
	}
	if page.Total != 12 || len(page.Items) != 2 {
		t.Fatalf("expected 12 posts total and 2 on page 2, got %d and %d", page.Total, len(page.Items))
	}
	for _, post := range page.Items {
		if post.GroupID == nil || *post.GroupID != cats.ID {
			t.Fatalf("post %q does not belong to cats", post.Text)
		}
	}

	if _, _, err := svc.GroupFeed(ctx, "birds", ""); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown slug, got %v", err)
	}

	_, emptyPage, err := NewPostService(db).GroupFeed(ctx, "dogs", "")
	if err != nil {
		t.Fatalf("GroupFeed returned error: %v", err)
	}
	if len(emptyPage.Items) != 2 {
		t.Fatalf("expected 2 dog posts, got %d", len(emptyPage.Items))
	}
}

func TestPostService_ProfileFeed(t *testing.T) {
	db := newTestDB(t)
	svc := NewPostService(db)
	leo := createUser(t, db, "leo")
	anna := createUser(t, db, "anna")
	seedPosts(t, db, 11, leo, nil)
	seedPosts(t, db, 4, anna, nil)
	ctx := context.Background()

	author, page, err := svc.ProfileFeed(ctx, "anna", "")
	if err != nil {
		t.Fatalf("ProfileFeed returned error: %v", err)
	}
	if author.ID != anna.ID {
		t.Fatalf("expected anna, got %s", author.Username)
	}
	if len(page.Items) != 4 {
		t.Fatalf("expected 4 posts, got %d", len(page.Items))
	}
	for _, post := range page.Items {
		if post.AuthorID != anna.ID {
			t.Fatalf("post %q does not belong to anna", post.Text)
		}
	}

	count, err := svc.CountByAuthor(ctx, leo.ID)
	if err != nil || count != 11 {
		t.Fatalf("expected 11 posts by leo, got %d (%v)", count, err)
	}

	if _, _, err := svc.ProfileFeed(ctx, "nobody", ""); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown username, got %v", err)
	}
}

func TestPostService_Get(t *testing.T) {
	db := newTestDB(t)
	svc := NewPostService(db)
	author := createUser(t, db, "leo")
	posts := seedPosts(t, db, 1, author, nil)
	ctx := context.Background()

	post, err := svc.Get(ctx, posts[0].ID.String())
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if post.Text != posts[0].Text || post.Author.Username != "leo" {
		t.Fatalf("unexpected post %+v", post)
	}

	for _, id := range []string{"not-a-uuid", "", "00000000-0000-0000-0000-000000000001"} {
		if _, err := svc.Get(ctx, id); !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound for %q, got %v", id, err)
		}
	}
}

func TestPostService_Create(t *testing.T) {
	db := newTestDB(t)
	svc := NewPostService(db)
	groups := NewGroupService(db)
	author := createUser(t, db, "leo")
	cats := createGroup(t, db, "Cats", "cats")
	ctx := context.Background()

	t.Run("stores valid post with actor as author", func(t *testing.T) {
		before, _ := svc.Count(ctx)
		post, err := svc.Create(ctx, author, validForm(t, groups, "Hello cats", cats.ID.String()))
		if err != nil {
			t.Fatalf("Create returned error: %v", err)
		}
		after, _ := svc.Count(ctx)
		if after != before+1 {
			t.Fatalf("expected count %d, got %d", before+1, after)
		}

		var stored models.Post
		if err := db.First(&stored, "id = ?", post.ID).Error; err != nil {
			t.Fatalf("expected post to be stored: %v", err)
		}
		if stored.AuthorID != author.ID {
			t.Fatalf("expected author %s, got %s", author.ID, stored.AuthorID)
		}
		if stored.GroupID == nil || *stored.GroupID != cats.ID {
			t.Fatalf("expected group cats, got %v", stored.GroupID)
		}
		if stored.CreatedAt.IsZero() {
			t.Fatal("expected creation timestamp to be set")
		}
	})

	t.Run("refuses unvalidated or invalid form", func(t *testing.T) {
		before, _ := svc.Count(ctx)

		invalid := &forms.PostForm{Text: ""}
		if ok, _ := invalid.Validate(ctx, groups); ok {
			t.Fatal("expected empty form to be invalid")
		}
		if _, err := svc.Create(ctx, author, invalid); !errors.Is(err, ErrInvalidForm) {
			t.Fatalf("expected ErrInvalidForm, got %v", err)
		}
		if _, err := svc.Create(ctx, author, &forms.PostForm{Text: "never validated"}); !errors.Is(err, ErrInvalidForm) {
			t.Fatalf("expected ErrInvalidForm for unvalidated form, got %v", err)
		}
		blank := &forms.PostForm{Text: "   ", Group: cats.ID.String(), Errors: map[string]string{}}
		if _, err := svc.Create(ctx, author, blank); !errors.Is(err, ErrInvalidForm) {
			t.Fatalf("expected ErrInvalidForm for unvalidated blank form, got %v", err)
		}

		after, _ := svc.Count(ctx)
		if after != before {
			t.Fatalf("expected no rows written, count went from %d to %d", before, after)
		}
	})
}

func TestPostService_Update(t *testing.T) {
	db := newTestDB(t)
	svc := NewPostService(db)
	groups := NewGroupService(db)
	leo := createUser(t, db, "leo")
	anna := createUser(t, db, "anna")
	cats := createGroup(t, db, "Cats", "cats")
	posts := seedPosts(t, db, 2, leo, cats)
	ctx := context.Background()

	post, err := svc.Get(ctx, posts[0].ID.String())
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	createdAt := post.CreatedAt
	before, _ := svc.Count(ctx)

	if err := svc.Update(ctx, anna, post, validForm(t, groups, "Edited text", "")); err != nil {
		t.Fatalf("Update returned error: %v", err)
	}

	reloaded, err := svc.Get(ctx, posts[0].ID.String())
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if reloaded.Text != "Edited text" {
		t.Fatalf("expected edited text, got %q", reloaded.Text)
	}
	if reloaded.AuthorID != anna.ID {
		t.Fatalf("expected editor to become author, got %s", reloaded.AuthorID)
	}
	if reloaded.GroupID != nil {
		t.Fatalf("expected group to be cleared, got %v", reloaded.GroupID)
	}
	if !reloaded.CreatedAt.Equal(createdAt) {
		t.Fatalf("expected creation time to stay %v, got %v", createdAt, reloaded.CreatedAt)
	}

	after, _ := svc.Count(ctx)
	if after != before {
		t.Fatalf("expected count to stay %d, got %d", before, after)
	}

	untouched, err := svc.Get(ctx, posts[1].ID.String())
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if untouched.Text != posts[1].Text || untouched.AuthorID != leo.ID {
		t.Fatalf("expected other post untouched, got %+v", untouched)
	}

	if err := svc.Update(ctx, anna, post, &forms.PostForm{Text: ""}); !errors.Is(err, ErrInvalidForm) {
		t.Fatalf("expected ErrInvalidForm, got %v", err)
	}

	blank := &forms.PostForm{Text: "   ", Errors: map[string]string{}}
	if err := svc.Update(ctx, anna, post, blank); !errors.Is(err, ErrInvalidForm) {
		t.Fatalf("expected ErrInvalidForm for unvalidated form, got %v", err)
	}
	stored, err := svc.Get(ctx, post.ID.String())
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if strings.TrimSpace(stored.Text) == "" {
		t.Fatal("expected unvalidated update not to reach storage")
	}
}

func TestPostService_List(t *testing.T) {
	db := newTestDB(t)
	svc := NewPostService(db)
	ctx := context.Background()

	leo := createUser(t, db, "leo")
	anna := createUser(t, db, "anna")
	cats := createGroup(t, db, "Cats", "cats")
	dogs := createGroup(t, db, "Dogs", "dogs")
	seedPosts(t, db, 3, leo, cats)
	seedPosts(t, db, 2, anna, cats)
	seedPosts(t, db, 4, anna, dogs)

	testCases := []struct {
		name   string
		filter PostFilter
		want   int64
	}{
		{name: "no filter", filter: PostFilter{}, want: 9},
		{name: "by group", filter: PostFilter{GroupSlug: "cats"}, want: 5},
		{name: "by author", filter: PostFilter{Username: "anna"}, want: 6},
		{name: "by group and author", filter: PostFilter{GroupSlug: "cats", Username: "anna"}, want: 2},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			page, err := svc.List(ctx, tc.filter, "1")
			if err != nil {
				t.Fatalf("List returned error: %v", err)
			}
			if page.Total != tc.want || int64(len(page.Items)) != tc.want {
				t.Fatalf("expected %d posts, got total=%d items=%d", tc.want, page.Total, len(page.Items))
			}
		})
	}

	t.Run("unknown group", func(t *testing.T) {
		if _, err := svc.List(ctx, PostFilter{GroupSlug: "birds"}, ""); !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("unknown author", func(t *testing.T) {
		if _, err := svc.List(ctx, PostFilter{Username: "nobody"}, ""); !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestPostService_CountByGroup(t *testing.T) {
	db := newTestDB(t)
	svc := NewPostService(db)

	leo := createUser(t, db, "leo")
	cats := createGroup(t, db, "Cats", "cats")
	dogs := createGroup(t, db, "Dogs", "dogs")
	empty := createGroup(t, db, "Birds", "birds")
	seedPosts(t, db, 3, leo, cats)
	seedPosts(t, db, 1, leo, dogs)
	seedPosts(t, db, 2, leo, nil)

	counts, err := svc.CountByGroup(context.Background())
	if err != nil {
		t.Fatalf("CountByGroup returned error: %v", err)
	}
	if counts[cats.ID] != 3 || counts[dogs.ID] != 1 {
		t.Fatalf("unexpected counts: %v", counts)
	}
	if _, ok := counts[empty.ID]; ok {
		t.Fatalf("expected group without posts to be absent, got %v", counts)
	}
}

func TestGroupService(t *testing.T) {
	db := newTestDB(t)
	svc := NewGroupService(db)
	ctx := context.Background()

	group, err := svc.Create(ctx, "Cats & Dogs", "", "pets")
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if group.Slug != "cats-dogs" {
		t.Fatalf("expected derived slug cats-dogs, got %q", group.Slug)
	}

	if _, err := svc.Create(ctx, "Other", "cats-dogs", ""); !errors.Is(err, ErrSlugTaken) {
		t.Fatalf("expected ErrSlugTaken, got %v", err)
	}
	if _, err := svc.Create(ctx, "Bad", "bad slug", ""); !errors.Is(err, ErrInvalidSlug) {
		t.Fatalf("expected ErrInvalidSlug, got %v", err)
	}
	if _, err := svc.Create(ctx, "   ", "x", ""); err == nil {
		t.Fatal("expected error for empty title")
	}

	exists, err := svc.GroupExists(ctx, group.ID)
	if err != nil || !exists {
		t.Fatalf("expected group to exist, got %v (%v)", exists, err)
	}

	if _, err := svc.Create(ctx, "Birds", "birds", ""); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	list, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(list) != 2 || list[0].Title != "Birds" {
		t.Fatalf("expected groups ordered by title, got %+v", list)
	}

	found, err := svc.GetBySlug(ctx, "birds")
	if err != nil || found.Title != "Birds" {
		t.Fatalf("expected Birds, got %+v (%v)", found, err)
	}
	if _, err := svc.GetBySlug(ctx, "fish"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSlugify(t *testing.T) {
	tests := map[string]string{
		"Cats":             "cats",
		"  Cats and Dogs ": "cats-and-dogs",
		"already-a-slug":   "already-a-slug",
		"snake_case title": "snake_case-title",
		"Тестовая группа":  "",
		"C++ -- notes!":    "c-notes",
	}
	for in, want := range tests {
		if got := Slugify(in); got != want {
			t.Errorf("Slugify(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestUserService(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db)
	ctx := context.Background()

	user, err := svc.Create(ctx, NewUser{Username: "leo", Password: "password123", FirstName: "Leo"})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if user.PasswordHash == "password123" {
		t.Fatal("expected password to be hashed")
	}

	if _, err := svc.Create(ctx, NewUser{Username: "leo", Password: "password123"}); !errors.Is(err, ErrUsernameTaken) {
		t.Fatalf("expected ErrUsernameTaken, got %v", err)
	}

	authed, err := svc.Authenticate(ctx, "leo", "password123")
	if err != nil || authed.ID != user.ID {
		t.Fatalf("expected authentication to succeed, got %v", err)
	}
	if _, err := svc.Authenticate(ctx, "leo", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for wrong password, got %v", err)
	}
	if _, err := svc.Authenticate(ctx, "ghost", "password123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown user, got %v", err)
	}

	byName, err := svc.GetByUsername(ctx, "leo")
	if err != nil || byName.ID != user.ID {
		t.Fatalf("expected leo by username, got %+v (%v)", byName, err)
	}
	if _, err := svc.GetByUsername(ctx, "ghost"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown username, got %v", err)
	}
}

func TestAccessService_CanEditPost(t *testing.T) {
	access := NewAccessService()
	author := &models.User{Username: "leo"}
	other := &models.User{Username: "anna"}
	post := &models.Post{Text: "x"}

	if !access.CanEditPost(author, post) || !access.CanEditPost(other, post) {
		t.Fatal("expected any signed-in user to be able to edit")
	}
	if access.CanEditPost(nil, post) {
		t.Fatal("expected anonymous users to be refused")
	}
}
