//go:build e2e
// +build e2e

package e2e_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"fambook-go/internal/config"
	"fambook-go/internal/db"
	contentdomain "fambook-go/internal/domain/content"
	familydomain "fambook-go/internal/domain/family"
	notifdomain "fambook-go/internal/domain/notification"
	rootsdomain "fambook-go/internal/domain/roots"
	userdomain "fambook-go/internal/domain/user"
	contentrepo "fambook-go/internal/repository/postgres/content"
	familyrepo "fambook-go/internal/repository/postgres/family"
	notifrepo "fambook-go/internal/repository/postgres/notification"
	rootsrepo "fambook-go/internal/repository/postgres/roots"
	userrepo "fambook-go/internal/repository/postgres/user"
	"fambook-go/internal/transport/httpserver"
	"fambook-go/internal/transport/httpserver/handler"
	"fambook-go/pkg/logger"
	"gorm.io/gorm"
)

type testEnv struct {
	server     *httptest.Server
	authServer *httptest.Server
	db         *gorm.DB
}

func setupE2E(t *testing.T) *testEnv {
	t.Helper()

	dsn := os.Getenv("E2E_DB_DSN")
	if dsn == "" {
		t.Skip("E2E_DB_DSN not set; skipping e2e tests")
	}

	authServer := newAuthServer(t)
	log := logger.NewNop()

	cfg := config.Config{
		HTTPPort: "0",
		CORS:     config.CORSConfig{AllowedOrigins: []string{"*"}},
		DB:       config.DBConfig{DSN: dsn},
		Auth: config.AuthConfig{
			ProviderURL: authServer.URL,
			APIKey:      "test-key",
			Timeout:     2 * time.Second,
		},
		Uploads: config.UploadsConfig{MaxFileBytes: 1 << 20, DefaultAlbumLimit: 10},
	}

	dbConn, err := db.NewPostgres(cfg.DB, log)
	if err != nil {
		t.Fatalf("db connect: %v", err)
	}
	if err := db.Migrate(dbConn, log); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := cleanDB(dbConn); err != nil {
		t.Fatalf("clean db: %v", err)
	}

	users := userdomain.NewService(userrepo.NewPostgres(dbConn))
	families := familydomain.NewService(familyrepo.NewPostgres(dbConn))
	roots := rootsdomain.NewService(rootsrepo.NewPostgres(dbConn), families)
	content := contentdomain.NewService(
		contentrepo.NewPostgres(dbConn),
		families,
		newMemStorage(),
		log,
		cfg.Uploads.MaxFileBytes,
		cfg.Uploads.DefaultAlbumLimit,
	)
	notifications := notifdomain.NewService(notifrepo.NewPostgres(dbConn))

	handlers := handler.New(users, families, roots, content, notifications, log)
	router := httpserver.NewRouter(cfg, handlers, users, log)
	server := httptest.NewServer(router)

	return &testEnv{server: server, authServer: authServer, db: dbConn}
}

func (e *testEnv) Close() {
	e.server.Close()
	e.authServer.Close()
	sqlDB, err := e.db.DB()
	if err == nil {
		_ = sqlDB.Close()
	}
}

// newAuthServer mimics the identity provider: any non-empty bearer token is a
// valid user whose external id is the token itself.
func newAuthServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("apikey") != "test-key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		auth := r.Header.Get("Authorization")
		token := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
		if !strings.HasPrefix(auth, "Bearer ") || token == "" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		payload := map[string]interface{}{
			"id":    token,
			"email": token + "@example.com",
			"user_metadata": map[string]interface{}{
				"name":       "User " + token,
				"avatar_url": "https://example.com/avatar.png",
			},
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(payload)
	}))
}

// memStorage stands in for the blob store so e2e runs need no bucket.
type memStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newMemStorage() *memStorage {
	return &memStorage{objects: make(map[string][]byte)}
}

func (s *memStorage) Upload(ctx context.Context, key, contentType string, size int64, body io.Reader) (string, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	s.objects[key] = data
	s.mu.Unlock()
	return "mem://" + key, nil
}

func (s *memStorage) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	delete(s.objects, key)
	s.mu.Unlock()
	return nil
}

func cleanDB(dbConn *gorm.DB) error {
	return dbConn.WithContext(context.Background()).Exec(
		"TRUNCATE TABLE notifications, memories, likes, comments, media, albums, posts, " +
			"root_relations, root_nodes, family_roots, family_members, families, " +
			"work_histories, educations, users RESTART IDENTITY CASCADE",
	).Error
}

func requestJSON(t *testing.T, client *http.Client, method, url, token string, payload interface{}) (*http.Response, []byte) {
	t.Helper()

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, url, body)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read response: %v", err)
	}
	return resp, respBody
}

type apiEnvelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func decodeData(t *testing.T, body []byte, dst interface{}) {
	t.Helper()
	var env apiEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		t.Fatalf("decode envelope: %v: %s", err, string(body))
	}
	if !env.Success {
		t.Fatalf("expected success envelope, got %s", string(body))
	}
	if dst != nil {
		if err := json.Unmarshal(env.Data, dst); err != nil {
			t.Fatalf("decode data: %v: %s", err, string(env.Data))
		}
	}
}

type familyResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	JoinToken string `json:"joinToken"`
}

type memberResponse struct {
	MemberID string `json:"memberId"`
	UserID   string `json:"userId"`
	Role     string `json:"role"`
	Status   string `json:"status"`
}

type postResponse struct {
	ID       string `json:"id"`
	FamilyID string `json:"familyId"`
	Text     string `json:"text"`
}

func TestE2EHealthAndAuth(t *testing.T) {
	env := setupE2E(t)
	defer env.Close()

	client := &http.Client{Timeout: 5 * time.Second}

	resp, body := requestJSON(t, client, http.MethodGet, env.server.URL+"/api/health", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, string(body))
	}

	resp, body = requestJSON(t, client, http.MethodGet, env.server.URL+"/api/users/me", "", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d: %s", resp.StatusCode, string(body))
	}

	resp, body = requestJSON(t, client, http.MethodGet, env.server.URL+"/api/users/me", "token-a", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, string(body))
	}
	var me struct {
		Email    string `json:"email"`
		FullName string `json:"fullName"`
	}
	decodeData(t, body, &me)
	if me.Email != "token-a@example.com" {
		t.Fatalf("expected synced email, got %q", me.Email)
	}
}

func TestE2EFamilyJoinFlow(t *testing.T) {
	env := setupE2E(t)
	defer env.Close()

	client := &http.Client{Timeout: 5 * time.Second}
	creator, joiner := "creator-1", "joiner-1"

	resp, body := requestJSON(t, client, http.MethodPost, env.server.URL+"/api/families/create", creator, map[string]string{
		"name": "The Pereiras",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.StatusCode, string(body))
	}
	var family familyResponse
	decodeData(t, body, &family)
	if family.ID == "" || family.JoinToken == "" {
		t.Fatalf("expected family id and join token, got %s", string(body))
	}

	resp, body = requestJSON(t, client, http.MethodPost, env.server.URL+"/api/families/join", joiner, map[string]string{
		"token": family.JoinToken,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, string(body))
	}

	// Pending members cannot see the family yet.
	resp, body = requestJSON(t, client, http.MethodGet, env.server.URL+"/api/families/"+family.ID, joiner, nil)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 before approval, got %d: %s", resp.StatusCode, string(body))
	}

	resp, body = requestJSON(t, client, http.MethodGet, env.server.URL+"/api/families/"+family.ID+"/requests", creator, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, string(body))
	}
	var requests []memberResponse
	decodeData(t, body, &requests)
	if len(requests) != 1 {
		t.Fatalf("expected one pending request, got %d", len(requests))
	}

	resp, body = requestJSON(t, client, http.MethodPost,
		env.server.URL+"/api/families/"+family.ID+"/requests/"+requests[0].MemberID+"/approve", creator, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, string(body))
	}

	resp, body = requestJSON(t, client, http.MethodGet, env.server.URL+"/api/families/"+family.ID+"/members", creator, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, string(body))
	}
	var members []memberResponse
	decodeData(t, body, &members)
	if len(members) != 2 {
		t.Fatalf("expected 2 members, got %d", len(members))
	}

	// The join notifications reached the requester.
	resp, body = requestJSON(t, client, http.MethodGet, env.server.URL+"/api/notifications/unread-count", joiner, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, string(body))
	}
	var unread struct {
		Count int64 `json:"count"`
	}
	decodeData(t, body, &unread)
	if unread.Count == 0 {
		t.Fatalf("expected unread notifications for joiner")
	}
}

func TestE2EPostFlow(t *testing.T) {
	env := setupE2E(t)
	defer env.Close()

	client := &http.Client{Timeout: 5 * time.Second}
	author := "author-1"

	resp, body := requestJSON(t, client, http.MethodPost, env.server.URL+"/api/families/create", author, map[string]string{
		"name": "Post Family",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.StatusCode, string(body))
	}
	var family familyResponse
	decodeData(t, body, &family)

	post := createPost(t, client, env.server.URL, author, family.ID, "first post")

	resp, body = requestJSON(t, client, http.MethodGet, env.server.URL+"/api/feed?familyId="+family.ID, author, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, string(body))
	}
	var feed []json.RawMessage
	decodeData(t, body, &feed)
	if len(feed) != 1 {
		t.Fatalf("expected 1 feed post, got %d", len(feed))
	}

	resp, body = requestJSON(t, client, http.MethodPost, env.server.URL+"/api/posts/"+post.ID+"/like", author, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, string(body))
	}
	var likeState struct {
		Liked bool `json:"liked"`
	}
	decodeData(t, body, &likeState)
	if !likeState.Liked {
		t.Fatalf("expected liked=true")
	}

	resp, body = requestJSON(t, client, http.MethodPost, env.server.URL+"/api/posts/"+post.ID+"/comments", author, map[string]string{
		"text": "nice one",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.StatusCode, string(body))
	}

	resp, body = requestJSON(t, client, http.MethodDelete, env.server.URL+"/api/posts/"+post.ID, author, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, string(body))
	}

	resp, body = requestJSON(t, client, http.MethodGet, env.server.URL+"/api/posts/"+post.ID, author, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d: %s", resp.StatusCode, string(body))
	}
}

func createPost(t *testing.T, client *http.Client, baseURL, token, familyID, text string) postResponse {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	if err := writer.WriteField("familyId", familyID); err != nil {
		t.Fatalf("write field: %v", err)
	}
	if err := writer.WriteField("text", text); err != nil {
		t.Fatalf("write field: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	req, err := http.NewRequest(http.MethodPost, baseURL+"/api/posts", &buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read response: %v", err)
	}
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.StatusCode, string(body))
	}

	var post postResponse
	decodeData(t, body, &post)
	return post
}
