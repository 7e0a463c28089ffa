package user

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockRepository struct {
	users map[uuid.UUID]*User
}

func newMockRepository() *mockRepository {
	return &mockRepository{users: map[uuid.UUID]*User{}}
}

func (m *mockRepository) Create(ctx context.Context, user *User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	user.CreatedAt = time.Now()
	cp := *user
	m.users[user.ID] = &cp
	return nil
}

func (m *mockRepository) FindByID(ctx context.Context, id uuid.UUID) (*User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *mockRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *mockRepository) FindAll(ctx context.Context) ([]User, error) {
	var out []User
	for _, u := range m.users {
		out = append(out, *u)
	}
	return out, nil
}

func (m *mockRepository) Update(ctx context.Context, user *User) error {
	if _, ok := m.users[user.ID]; !ok {
		return ErrUserNotFound
	}
	cp := *user
	m.users[user.ID] = &cp
	return nil
}

func (m *mockRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := m.users[id]; !ok {
		return ErrUserNotFound
	}
	delete(m.users, id)
	return nil
}

func (m *mockRepository) Count(ctx context.Context) (int64, error) {
	return int64(len(m.users)), nil
}

type mockPurger struct {
	purged []uuid.UUID
	err    error
}

func (p *mockPurger) PurgeOwner(ctx context.Context, userID uuid.UUID) error {
	if p.err != nil {
		return p.err
	}
	p.purged = append(p.purged, userID)
	return nil
}

func TestCreateUser(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMockRepository(), &mockPurger{})

	u, err := svc.CreateUser(ctx, CreateUserInput{Name: "  Jane ", Email: " Jane@Example.COM ", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "Jane", u.Name)
	assert.Equal(t, "jane@example.com", u.Email)
	assert.True(t, u.IsActive)
	assert.NotEqual(t, "secret1", u.PasswordHash)

	_, err = svc.CreateUser(ctx, CreateUserInput{Name: "Other", Email: "jane@example.com", Password: "x"})
	assert.ErrorIs(t, err, ErrEmailExists)

	_, err = svc.CreateUser(ctx, CreateUserInput{Name: " ", Email: "a@b.c", Password: "x"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestAuthenticate(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMockRepository(), nil)

	created, err := svc.CreateUser(ctx, CreateUserInput{Name: "Jane", Email: "jane@example.com", Password: "secret1"})
	require.NoError(t, err)

	tests := []struct {
		name     string
		email    string
		password string
		wantErr  error
	}{
		{"valid", "JANE@example.com", "secret1", nil},
		{"wrong password", "jane@example.com", "nope", ErrInvalidCredentials},
		{"unknown email", "who@example.com", "secret1", ErrInvalidCredentials},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := svc.Authenticate(ctx, tt.email, tt.password)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, created.ID, u.ID)
		})
	}
}

func TestAuthenticate_DisabledAccountCanSignIn(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMockRepository(), nil)

	created, err := svc.CreateUser(ctx, CreateUserInput{Name: "Jane", Email: "jane@example.com", Password: "secret1"})
	require.NoError(t, err)
	_, err = svc.SetActive(ctx, created.ID, false)
	require.NoError(t, err)

	u, err := svc.Authenticate(ctx, "jane@example.com", "secret1")
	require.NoError(t, err)
	assert.False(t, u.IsActive)
}

func TestUpdateProfile_EmailUniqueness(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMockRepository(), nil)

	a, err := svc.CreateUser(ctx, CreateUserInput{Name: "A", Email: "a@example.com", Password: "x"})
	require.NoError(t, err)
	_, err = svc.CreateUser(ctx, CreateUserInput{Name: "B", Email: "b@example.com", Password: "x"})
	require.NoError(t, err)

	_, err = svc.UpdateProfile(ctx, a.ID, UpdateProfileInput{Name: "A", Email: "b@example.com"})
	assert.ErrorIs(t, err, ErrEmailExists)

	// keeping your own address is fine
	u, err := svc.UpdateProfile(ctx, a.ID, UpdateProfileInput{Name: "Alice", Email: "A@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "Alice", u.Name)
	assert.Equal(t, "a@example.com", u.Email)
}

func TestDeleteUser_PurgesContent(t *testing.T) {
	ctx := context.Background()
	repo := newMockRepository()
	purger := &mockPurger{}
	svc := NewService(repo, purger)

	u, err := svc.CreateUser(ctx, CreateUserInput{Name: "A", Email: "a@example.com", Password: "x"})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteUser(ctx, u.ID))
	assert.Equal(t, []uuid.UUID{u.ID}, purger.purged)

	_, err = svc.GetUser(ctx, u.ID)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestDeleteUser_PurgeFailureKeepsAccount(t *testing.T) {
	ctx := context.Background()
	repo := newMockRepository()
	svc := NewService(repo, &mockPurger{err: errors.New("disk")})

	u, err := svc.CreateUser(ctx, CreateUserInput{Name: "A", Email: "a@example.com", Password: "x"})
	require.NoError(t, err)

	assert.Error(t, svc.DeleteUser(ctx, u.ID))
	_, err = svc.GetUser(ctx, u.ID)
	assert.NoError(t, err)
}
