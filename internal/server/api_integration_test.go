package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"sync"
	"testing"

	"pulse/internal/config"
	"pulse/internal/database"
	"pulse/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// The server is built once: the Prometheus middleware registers collectors
// in the default registry and cannot be constructed twice in one process.
var (
	testSetup    sync.Once
	testApp      *fiber.App
	testSetupErr error
)

func testServerApp(t *testing.T) *fiber.App {
	t.Helper()

	testSetup.Do(func() {
		db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		if err != nil {
			testSetupErr = err
			return
		}
		sqlDB, err := db.DB()
		if err != nil {
			testSetupErr = err
			return
		}
		sqlDB.SetMaxOpenConns(1)
		if err := database.Migrate(db); err != nil {
			testSetupErr = err
			return
		}

		uploadDir, err := os.MkdirTemp("", "pulse-uploads")
		if err != nil {
			testSetupErr = err
			return
		}

		cfg := &config.Config{
			JWTSecret:    "integration-test-secret-at-least-32-chars",
			Port:         "8420",
			Env:          "test",
			TrendingDays: 7,
			UploadDir:    uploadDir,
			MaxUploadMB:  10,
		}

		srv, err := NewServerWithDeps(cfg, db, nil)
		if err != nil {
			testSetupErr = err
			return
		}

		app := fiber.New(fiber.Config{
			ErrorHandler: func(c *fiber.Ctx, err error) error {
				return models.RespondWithError(c, fiber.StatusInternalServerError,
					models.NewInternalError(err))
			},
		})
		srv.SetupMiddleware(app)
		srv.SetupRoutes(app)
		srv.StartRealtime()
		testApp = app
	})

	require.NoError(t, testSetupErr)
	return testApp
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, body interface{}) (int, map[string]interface{}) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var parsed map[string]interface{}
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &parsed), "body: %s", raw)
	}
	return resp.StatusCode, parsed
}

func registerUser(t *testing.T, app *fiber.App, username string) (token string, id uint) {
	t.Helper()
	status, body := doJSON(t, app, http.MethodPost, "/api/auth/register", "", fiber.Map{
		"username": username,
		"email":    username + "@example.com",
		"password": "SecurePass12!@",
	})
	require.Equal(t, fiber.StatusCreated, status, "register %s: %v", username, body)
	token = body["token"].(string)
	id = uint(body["user"].(map[string]interface{})["id"].(float64))
	return token, id
}

func items(t *testing.T, body map[string]interface{}, key string) []interface{} {
	t.Helper()
	v, ok := body[key]
	require.True(t, ok, "missing %q in %v", key, body)
	if v == nil {
		return nil
	}
	return v.([]interface{})
}

func TestAPI_SocialFlow(t *testing.T) {
	app := testServerApp(t)

	aliceToken, _ := registerUser(t, app, "flow_alice")
	bobToken, _ := registerUser(t, app, "flow_bob")

	t.Run("register validation", func(t *testing.T) {
		status, _ := doJSON(t, app, http.MethodPost, "/api/auth/register", "", fiber.Map{
			"username": "flow_weak",
			"email":    "flow_weak@example.com",
			"password": "weak",
		})
		assert.Equal(t, fiber.StatusBadRequest, status)

		status, body := doJSON(t, app, http.MethodPost, "/api/auth/register", "", fiber.Map{
			"username": "flow_alice",
			"email":    "elsewhere@example.com",
			"password": "SecurePass12!@",
		})
		assert.Equal(t, fiber.StatusConflict, status)
		assert.Equal(t, "CONFLICT", body["code"])
	})

	t.Run("login", func(t *testing.T) {
		status, body := doJSON(t, app, http.MethodPost, "/api/auth/login", "", fiber.Map{
			"email":    "flow_alice@example.com",
			"password": "SecurePass12!@",
		})
		require.Equal(t, fiber.StatusOK, status)
		assert.NotEmpty(t, body["token"])

		status, body = doJSON(t, app, http.MethodPost, "/api/auth/login", "", fiber.Map{
			"email":    "flow_alice@example.com",
			"password": "WrongPass12!@",
		})
		assert.Equal(t, fiber.StatusUnauthorized, status)
		assert.Equal(t, "Invalid credentials", body["error"])

		// Unknown email reads identically to a wrong password.
		status, body = doJSON(t, app, http.MethodPost, "/api/auth/login", "", fiber.Map{
			"email":    "flow_nobody@example.com",
			"password": "SecurePass12!@",
		})
		assert.Equal(t, fiber.StatusUnauthorized, status)
		assert.Equal(t, "Invalid credentials", body["error"])
	})

	t.Run("me", func(t *testing.T) {
		status, body := doJSON(t, app, http.MethodGet, "/api/auth/me", aliceToken, nil)
		require.Equal(t, fiber.StatusOK, status)
		assert.Equal(t, "flow_alice", body["username"])

		status, _ = doJSON(t, app, http.MethodGet, "/api/auth/me", "", nil)
		assert.Equal(t, fiber.StatusUnauthorized, status)
	})

	t.Run("token refresh", func(t *testing.T) {
		status, body := doJSON(t, app, http.MethodPost, "/api/auth/refresh", aliceToken, nil)
		require.Equal(t, fiber.StatusOK, status)
		fresh, ok := body["token"].(string)
		require.True(t, ok)
		require.NotEmpty(t, fresh)

		// The re-issued token authenticates like the original.
		status, body = doJSON(t, app, http.MethodGet, "/api/auth/me", fresh, nil)
		require.Equal(t, fiber.StatusOK, status)
		assert.Equal(t, "flow_alice", body["username"])

		status, _ = doJSON(t, app, http.MethodPost, "/api/auth/refresh", "", nil)
		assert.Equal(t, fiber.StatusUnauthorized, status)
	})

	var postID string

	t.Run("create post with hashtags", func(t *testing.T) {
		status, _ := doJSON(t, app, http.MethodPost, "/api/posts/", aliceToken, fiber.Map{
			"content": "   ",
		})
		assert.Equal(t, fiber.StatusBadRequest, status)

		status, body := doJSON(t, app, http.MethodPost, "/api/posts/", aliceToken, fiber.Map{
			"content": "first post about #GoLang and #sunsets",
		})
		require.Equal(t, fiber.StatusCreated, status, "body: %v", body)
		postID = fmt.Sprintf("%.0f", body["id"].(float64))
		assert.Equal(t, "flow_alice", body["user"].(map[string]interface{})["username"])
	})

	t.Run("follow and notification", func(t *testing.T) {
		status, body := doJSON(t, app, http.MethodPost, "/api/users/flow_alice/follow", bobToken, nil)
		require.Equal(t, fiber.StatusOK, status)
		assert.Equal(t, true, body["following"])

		status, _ = doJSON(t, app, http.MethodPost, "/api/users/flow_bob/follow", bobToken, nil)
		assert.Equal(t, fiber.StatusBadRequest, status)

		status, body = doJSON(t, app, http.MethodGet, "/api/users/flow_alice", bobToken, nil)
		require.Equal(t, fiber.StatusOK, status)
		assert.Equal(t, float64(1), body["followers_count"])
		assert.Equal(t, true, body["is_following"])

		status, body = doJSON(t, app, http.MethodGet, "/api/notifications/", aliceToken, nil)
		require.Equal(t, fiber.StatusOK, status)
		notifs := items(t, body, "notifications")
		require.Len(t, notifs, 1)
		first := notifs[0].(map[string]interface{})
		assert.Equal(t, "follow", first["type"])
		assert.Equal(t, "flow_bob started following you", first["message"])
	})

	t.Run("like toggle", func(t *testing.T) {
		status, body := doJSON(t, app, http.MethodPost, "/api/posts/"+postID+"/like", bobToken, nil)
		require.Equal(t, fiber.StatusOK, status)
		assert.Equal(t, true, body["liked"])
		assert.Equal(t, float64(1), body["likes_count"])

		status, body = doJSON(t, app, http.MethodPost, "/api/posts/"+postID+"/like", bobToken, nil)
		require.Equal(t, fiber.StatusOK, status)
		assert.Equal(t, false, body["liked"])
		assert.Equal(t, float64(0), body["likes_count"])

		status, body = doJSON(t, app, http.MethodPost, "/api/posts/"+postID+"/like", bobToken, nil)
		require.Equal(t, fiber.StatusOK, status)
		assert.Equal(t, true, body["liked"])
	})

	t.Run("comment and reply", func(t *testing.T) {
		status, _ := doJSON(t, app, http.MethodPost, "/api/comments/", bobToken, fiber.Map{
			"content": "no post reference",
		})
		assert.Equal(t, fiber.StatusBadRequest, status)

		status, body := doJSON(t, app, http.MethodPost, "/api/comments/", bobToken, fiber.Map{
			"post_id": json.Number(postID),
			"content": "great post",
		})
		require.Equal(t, fiber.StatusCreated, status, "body: %v", body)
		parentID := body["id"].(float64)

		status, body = doJSON(t, app, http.MethodPost, "/api/comments/", aliceToken, fiber.Map{
			"post_id":           json.Number(postID),
			"content":           "thanks!",
			"parent_comment_id": parentID,
		})
		require.Equal(t, fiber.StatusCreated, status, "body: %v", body)

		status, body = doJSON(t, app, http.MethodGet, "/api/comments/post/"+postID, "", nil)
		require.Equal(t, fiber.StatusOK, status)
		comments := items(t, body, "comments")
		require.Len(t, comments, 1)
		top := comments[0].(map[string]interface{})
		assert.Equal(t, "great post", top["content"])
		assert.Equal(t, float64(1), top["replies_count"])

		replyPath := fmt.Sprintf("/api/comments/%.0f/replies", parentID)
		status, body = doJSON(t, app, http.MethodGet, replyPath, "", nil)
		require.Equal(t, fiber.StatusOK, status)
		require.Len(t, items(t, body, "replies"), 1)
	})

	t.Run("notification inbox lifecycle", func(t *testing.T) {
		// follow + like + comment so far, all targeted at alice
		status, body := doJSON(t, app, http.MethodGet, "/api/notifications/unread-count", aliceToken, nil)
		require.Equal(t, fiber.StatusOK, status)
		unread := body["unread_count"].(float64)
		require.GreaterOrEqual(t, unread, float64(3))

		status, body = doJSON(t, app, http.MethodGet, "/api/notifications/", aliceToken, nil)
		require.Equal(t, fiber.StatusOK, status)
		notifs := items(t, body, "notifications")
		firstID := fmt.Sprintf("%.0f", notifs[0].(map[string]interface{})["id"].(float64))

		// Another user cannot touch alice's notifications.
		status, _ = doJSON(t, app, http.MethodPut, "/api/notifications/"+firstID+"/read", bobToken, nil)
		assert.Equal(t, fiber.StatusForbidden, status)

		status, _ = doJSON(t, app, http.MethodPut, "/api/notifications/"+firstID+"/read", aliceToken, nil)
		require.Equal(t, fiber.StatusOK, status)

		status, body = doJSON(t, app, http.MethodGet, "/api/notifications/unread-count", aliceToken, nil)
		require.Equal(t, fiber.StatusOK, status)
		assert.Equal(t, unread-1, body["unread_count"].(float64))

		status, _ = doJSON(t, app, http.MethodPut, "/api/notifications/read-all", aliceToken, nil)
		require.Equal(t, fiber.StatusOK, status)

		status, body = doJSON(t, app, http.MethodGet, "/api/notifications/unread-count", aliceToken, nil)
		require.Equal(t, fiber.StatusOK, status)
		assert.Equal(t, float64(0), body["unread_count"].(float64))
	})

	t.Run("feed membership", func(t *testing.T) {
		status, body := doJSON(t, app, http.MethodGet, "/api/posts/feed", bobToken, nil)
		require.Equal(t, fiber.StatusOK, status)
		posts := items(t, body, "posts")
		require.NotEmpty(t, posts)
		seen := false
		for _, p := range posts {
			if fmt.Sprintf("%.0f", p.(map[string]interface{})["id"].(float64)) == postID {
				seen = true
			}
		}
		assert.True(t, seen, "bob follows alice, so her post belongs in his feed")
	})

	t.Run("trending posts", func(t *testing.T) {
		status, body := doJSON(t, app, http.MethodGet, "/api/posts/trending", "", nil)
		require.Equal(t, fiber.StatusOK, status)
		posts := items(t, body, "posts")
		require.NotEmpty(t, posts)
		top := posts[0].(map[string]interface{})
		assert.NotNil(t, top["engagement_score"])
	})

	t.Run("hashtags", func(t *testing.T) {
		status, body := doJSON(t, app, http.MethodGet, "/api/hashtags/trending", "", nil)
		require.Equal(t, fiber.StatusOK, status)
		tags := map[string]bool{}
		for _, h := range items(t, body, "hashtags") {
			tags[h.(map[string]interface{})["tag"].(string)] = true
		}
		assert.True(t, tags["golang"])
		assert.True(t, tags["sunsets"])

		// Tag browsing is case-insensitive because tags are stored folded.
		status, body = doJSON(t, app, http.MethodGet, "/api/hashtags/GoLang/posts", "", nil)
		require.Equal(t, fiber.StatusOK, status)
		require.Len(t, items(t, body, "posts"), 1)

		status, body = doJSON(t, app, http.MethodGet, "/api/hashtags/search/sun", "", nil)
		require.Equal(t, fiber.StatusOK, status)
		require.NotEmpty(t, items(t, body, "hashtags"))

		status, _ = doJSON(t, app, http.MethodGet, "/api/hashtags/neverused/posts", "", nil)
		assert.Equal(t, fiber.StatusNotFound, status)
	})

	t.Run("profile update and search", func(t *testing.T) {
		status, body := doJSON(t, app, http.MethodPut, "/api/users/me", aliceToken, fiber.Map{
			"bio":       "taking photos",
			"full_name": "Alice Flow",
		})
		require.Equal(t, fiber.StatusOK, status)
		assert.Equal(t, "taking photos", body["bio"])

		status, body = doJSON(t, app, http.MethodGet, "/api/users/search/flow_alice", "", nil)
		require.Equal(t, fiber.StatusOK, status)
		assert.NotEmpty(t, items(t, body, "users"))
	})

	t.Run("posts by user", func(t *testing.T) {
		status, body := doJSON(t, app, http.MethodGet, "/api/posts/user/flow_alice", "", nil)
		require.Equal(t, fiber.StatusOK, status)
		assert.NotEmpty(t, items(t, body, "posts"))

		status, _ = doJSON(t, app, http.MethodGet, "/api/posts/user/flow_nobody", "", nil)
		assert.Equal(t, fiber.StatusNotFound, status)
	})

	t.Run("delete post ownership", func(t *testing.T) {
		status, _ := doJSON(t, app, http.MethodDelete, "/api/posts/"+postID, bobToken, nil)
		assert.Equal(t, fiber.StatusForbidden, status)

		status, _ = doJSON(t, app, http.MethodDelete, "/api/posts/"+postID, aliceToken, nil)
		require.Equal(t, fiber.StatusOK, status)

		status, _ = doJSON(t, app, http.MethodGet, "/api/posts/"+postID, "", nil)
		assert.Equal(t, fiber.StatusNotFound, status)
	})

	t.Run("websocket requires token", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/ws", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("health", func(t *testing.T) {
		status, body := doJSON(t, app, http.MethodGet, "/health/live", "", nil)
		assert.Equal(t, fiber.StatusOK, status)
		assert.Equal(t, "up", body["status"])

		status, body = doJSON(t, app, http.MethodGet, "/health", "", nil)
		assert.Equal(t, fiber.StatusOK, status)
		checks := body["checks"].(map[string]interface{})
		assert.Equal(t, "healthy", checks["database"])
		assert.Equal(t, "unavailable", checks["redis"])
	})
}

func TestAPI_Upload(t *testing.T) {
	app := testServerApp(t)
	token, _ := registerUser(t, app, "upload_user")

	buildUpload := func(filename, contentType string) (*bytes.Buffer, string) {
		var buf bytes.Buffer
		writer := multipart.NewWriter(&buf)
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="media"; filename="%s"`, filename))
		header.Set("Content-Type", contentType)
		part, err := writer.CreatePart(header)
		require.NoError(t, err)
		_, err = part.Write([]byte("fake image bytes"))
		require.NoError(t, err)
		require.NoError(t, writer.Close())
		return &buf, writer.FormDataContentType()
	}

	t.Run("accepted image", func(t *testing.T) {
		buf, contentType := buildUpload("photo.png", "image/png")
		req := httptest.NewRequest(http.MethodPost, "/api/uploads", buf)
		req.Header.Set("Content-Type", contentType)
		req.Header.Set("Authorization", "Bearer "+token)

		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		require.Equal(t, fiber.StatusCreated, resp.StatusCode)

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, "image", body["media_type"])
		assert.Contains(t, body["media_url"], "/uploads/")
		assert.Contains(t, body["media_url"], ".png")
	})

	t.Run("unsupported type", func(t *testing.T) {
		buf, contentType := buildUpload("script.sh", "application/x-sh")
		req := httptest.NewRequest(http.MethodPost, "/api/uploads", buf)
		req.Header.Set("Content-Type", contentType)
		req.Header.Set("Authorization", "Bearer "+token)

		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})

	t.Run("missing file", func(t *testing.T) {
		status, _ := doJSON(t, app, http.MethodPost, "/api/uploads", token, fiber.Map{})
		assert.Equal(t, fiber.StatusBadRequest, status)
	})
}
