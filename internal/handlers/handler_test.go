package handlers_test

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/shortpost/shortpost/internal/cache"
	"github.com/shortpost/shortpost/internal/config"
	"github.com/shortpost/shortpost/internal/handlers"
	"github.com/shortpost/shortpost/internal/middleware"
	"github.com/shortpost/shortpost/internal/models"
	"github.com/shortpost/shortpost/internal/store"
	"github.com/shortpost/shortpost/internal/utils"
)

const testSecret = "test-secret"

// stubStore is an in-memory Store that counts reads, so tests can assert
// that a cached listing never touches the store.
type stubStore struct {
	mu         sync.Mutex
	users      map[string]*models.User
	posts      map[int64]*models.Post
	nextUserID int64
	nextPostID int64

	userQueries int
	listQueries int
}

func newStubStore() *stubStore {
	return &stubStore{
		users: make(map[string]*models.User),
		posts: make(map[int64]*models.Post),
	}
}

func (s *stubStore) CreateUser(_ context.Context, email, passwordHash string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[email]; ok {
		return nil, store.ErrDuplicate
	}
	s.nextUserID++
	u := &models.User{ID: s.nextUserID, Email: email, PasswordHash: passwordHash, CreatedAt: time.Now().UTC()}
	s.users[email] = u
	return u, nil
}

func (s *stubStore) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.userQueries++
	u, ok := s.users[email]
	if !ok {
		return nil, store.ErrNotFound
	}
	return u, nil
}

func (s *stubStore) CreatePost(_ context.Context, userID int64, text string) (*models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextPostID++
	p := &models.Post{ID: s.nextPostID, UserID: userID, Text: text, CreatedAt: time.Now().UTC()}
	s.posts[p.ID] = p
	return p, nil
}

func (s *stubStore) GetPostByID(_ context.Context, id int64) (*models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.posts[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return p, nil
}

func (s *stubStore) ListPostsByUser(_ context.Context, userID int64) ([]models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listQueries++
	posts := []models.Post{}
	for _, p := range s.posts {
		if p.UserID == userID {
			posts = append(posts, *p)
		}
	}
	sort.Slice(posts, func(i, j int) bool { return posts[i].ID > posts[j].ID })
	return posts, nil
}

func (s *stubStore) DeletePost(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.posts[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.posts, id)
	return nil
}

func (s *stubStore) queryCounts() (userQueries, listQueries int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.userQueries, s.listQueries
}

var _ store.Store = (*stubStore)(nil)

// newTestApp wires the handlers the same way cmd/api does, against a stub
// store and a miniredis-backed cache.
func newTestApp(t *testing.T) (http.Handler, *stubStore) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	postCache := cache.NewRedisWithClient(client, 5*time.Minute)

	cfg := &config.Config{
		JWTSecret:      testSecret,
		TokenTTL:       30 * time.Minute,
		PostsCacheTTL:  5 * time.Minute,
		MaxUploadBytes: 1_000_000,
	}

	st := newStubStore()
	h := handlers.NewHandler(zerolog.Nop(), st, postCache, cfg)

	r := chi.NewRouter()
	r.Post("/signup", h.Auth.SignUp)
	r.Post("/login", h.Auth.Login)
	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWTSecret))
		r.Post("/addPost", h.Posts.AddPost)
		r.Get("/getPosts", h.Posts.GetPosts)
		r.Delete("/deletePost", h.Posts.DeletePost)
	})

	return r, st
}

func createUser(t *testing.T, st *stubStore, email string) *models.User {
	t.Helper()
	u, err := st.CreateUser(context.Background(), email, "irrelevant-hash")
	require.NoError(t, err)
	return u
}

func bearer(t *testing.T, email string) string {
	t.Helper()
	tok, err := utils.GenerateToken(email, testSecret, 30*time.Minute)
	require.NoError(t, err)
	return "Bearer " + tok
}

func expiredBearer(t *testing.T, email string) string {
	t.Helper()
	tok, err := utils.GenerateToken(email, testSecret, -time.Minute)
	require.NoError(t, err)
	return "Bearer " + tok
}

// multipartBody builds an addPost form with a text field and a file part of
// the given size.
func multipartBody(t *testing.T, text string, fileSize int) (string, string) {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("text", text))

	fw, err := mw.CreateFormFile("file", "upload.bin")
	require.NoError(t, err)
	_, err = fw.Write(bytes.Repeat([]byte("a"), fileSize))
	require.NoError(t, err)

	require.NoError(t, mw.Close())
	return buf.String(), mw.FormDataContentType()
}
