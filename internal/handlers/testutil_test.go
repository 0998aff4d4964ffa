package handlers_test

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/yatube/yatube/internal/config"
	"github.com/yatube/yatube/internal/database"
	"github.com/yatube/yatube/internal/models"
	"github.com/yatube/yatube/internal/server"
	"github.com/yatube/yatube/pkg/logger"
	"github.com/yatube/yatube/pkg/utils"
	"gorm.io/gorm"
)

const testCookieName = "yatube_session"

type testEnv struct {
	app *fiber.App
	db  *gorm.DB
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger.SetOutput(io.Discard)

	db, err := gorm.Open(sqlite.Open(database.SQLiteDSN(":memory:")), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed opening in-memory sqlite database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed getting sql.DB from gorm: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	if err := database.Migrate(db); err != nil {
		t.Fatalf("failed automigrating models: %v", err)
	}

	cfg := &config.Config{
		Session: config.SessionConfig{
			Secret:          "test-secret",
			ExpirationHours: 24,
			CookieName:      testCookieName,
		},
		Server: config.ServerConfig{ReadTimeout: 10 * time.Second},
	}

	return &testEnv{app: server.New(db, cfg), db: db}
}

func createTestUser(t *testing.T, db *gorm.DB, username, password string) (*models.User, map[string]string) {
	t.Helper()

	hash, err := utils.HashPassword(password)
	if err != nil {
		t.Fatalf("failed hashing password: %v", err)
	}

	user := &models.User{
		Username:     username,
		PasswordHash: hash,
		FirstName:    "Test",
		LastName:     strings.ToUpper(username[:1]) + username[1:],
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed creating test user: %v", err)
	}

	token, err := utils.GenerateToken(user)
	if err != nil {
		t.Fatalf("failed generating session token: %v", err)
	}

	return user, sessionHeaders(token)
}

func sessionHeaders(token string) map[string]string {
	return map[string]string{"Cookie": testCookieName + "=" + token}
}

func createTestGroup(t *testing.T, db *gorm.DB, title, slug string) *models.Group {
	t.Helper()

	group := &models.Group{Title: title, Slug: slug, Description: "About " + title}
	if err := db.Create(group).Error; err != nil {
		t.Fatalf("failed creating test group: %v", err)
	}
	return group
}

// createTestPosts writes n posts a second apart; the last one is the newest.
func createTestPosts(t *testing.T, db *gorm.DB, n int, author *models.User, group *models.Group, prefix string) []models.Post {
	t.Helper()

	base := time.Now().Add(-time.Hour)
	posts := make([]models.Post, 0, n)
	for i := 0; i < n; i++ {
		post := models.Post{Text: fmt.Sprintf("%s number %d", prefix, i), AuthorID: author.ID}
		post.CreatedAt = base.Add(time.Duration(i) * time.Second)
		if group != nil {
			post.GroupID = &group.ID
		}
		if err := db.Omit("Author", "Group").Create(&post).Error; err != nil {
			t.Fatalf("failed creating test post: %v", err)
		}
		posts = append(posts, post)
	}
	return posts
}

func countPosts(t *testing.T, db *gorm.DB) int64 {
	t.Helper()

	var count int64
	if err := db.Model(&models.Post{}).Count(&count).Error; err != nil {
		t.Fatalf("failed counting posts: %v", err)
	}
	return count
}

func performRequest(t *testing.T, app *fiber.App, method, path string, body io.Reader, headers map[string]string) *http.Response {
	t.Helper()

	req := httptest.NewRequest(method, path, body)
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := app.Test(req, int((10 * time.Second).Milliseconds()))
	if err != nil {
		t.Fatalf("request %s %s failed: %v", method, path, err)
	}

	return resp
}

func performFormRequest(t *testing.T, app *fiber.App, path string, values url.Values, headers map[string]string) *http.Response {
	t.Helper()

	requestHeaders := map[string]string{"Content-Type": fiber.MIMEApplicationForm}
	for key, value := range headers {
		requestHeaders[key] = value
	}

	return performRequest(t, app, http.MethodPost, path, strings.NewReader(values.Encode()), requestHeaders)
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed reading response body: %v", err)
	}
	return string(raw)
}

func assertStatus(t *testing.T, resp *http.Response, expected int) {
	t.Helper()
	if resp.StatusCode != expected {
		t.Fatalf("expected status %d, got %d", expected, resp.StatusCode)
	}
}

func assertRedirect(t *testing.T, resp *http.Response, location string) {
	t.Helper()
	assertStatus(t, resp, http.StatusFound)
	if got := resp.Header.Get("Location"); got != location {
		t.Fatalf("expected redirect to %q, got %q", location, got)
	}
}

func postCards(body string) int {
	return strings.Count(body, `<article class="post">`)
}
