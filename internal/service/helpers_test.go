package service

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"go-shop-api/internal/model"
	"go-shop-api/internal/password"
	"go-shop-api/internal/token"
	"go-shop-api/internal/whitelist"
	"go-shop-api/pkg/apierror"
)

type memoryUsers struct {
	mu      sync.Mutex
	byID    map[string]model.User
	byEmail map[string]string
}

func newMemoryUsers() *memoryUsers {
	return &memoryUsers{byID: map[string]model.User{}, byEmail: map[string]string{}}
}

func (m *memoryUsers) Create(_ context.Context, u model.User) (model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	email := strings.ToLower(strings.TrimSpace(u.Email))
	if _, ok := m.byEmail[email]; ok {
		return model.User{}, model.ErrEmailTaken
	}
	u.ID = uuid.NewString()
	u.Email = email
	u.CreatedAt = time.Now().UTC()
	m.byID[u.ID] = u
	m.byEmail[email] = u.ID
	return u, nil
}

func (m *memoryUsers) FindByEmail(_ context.Context, email string) (model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id, ok := m.byEmail[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		return model.User{}, model.ErrUserNotFound
	}
	return m.byID[id], nil
}

func (m *memoryUsers) FindByID(_ context.Context, id string) (model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.byID[id]
	if !ok {
		return model.User{}, model.ErrUserNotFound
	}
	return u, nil
}

type recordingObserver struct {
	mu    sync.Mutex
	calls []string
}

func (r *recordingObserver) ObserveAuth(op string, outcome string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, op+":"+outcome)
}

func (r *recordingObserver) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

type authFixture struct {
	svc      *AuthService
	users    *memoryUsers
	codec    *token.Codec
	mr       *miniredis.Miniredis
	observer *recordingObserver
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	hasher, err := password.NewBcrypt(bcrypt.MinCost)
	require.NoError(t, err)
	codec, err := token.NewCodec("test-secret", 15*time.Minute, 7*24*time.Hour)
	require.NoError(t, err)

	users := newMemoryUsers()
	observer := &recordingObserver{}
	wl := whitelist.New(whitelist.NewRedisStore(client), codec.TTL(token.PurposeRefresh))

	svc, err := NewAuthService(users, hasher, codec, wl, observer)
	require.NoError(t, err)

	return &authFixture{svc: svc, users: users, codec: codec, mr: mr, observer: observer}
}

func requireAPIError(t *testing.T, err error, kind apierror.Kind, status int) {
	t.Helper()

	var apiErr *apierror.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, kind, apiErr.Kind)
	require.Equal(t, status, apiErr.HTTPStatus)
}
