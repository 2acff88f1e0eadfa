package mock

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/garnizeh/jobboard/pkg/models"
	"github.com/garnizeh/jobboard/pkg/repository"
)

// Test helpers and mocks
type Mocks struct {
	UserRepo *mockUserRepo
	ProfRepo *mockProfileRepo
	Docs     *DocumentStore
}

func NewMocks() *Mocks {
	return &Mocks{
		UserRepo: &mockUserRepo{users: make(map[string]*models.User)},
		ProfRepo: &mockProfileRepo{profiles: make(map[string]*models.UserProfile)},
		Docs:     NewDocumentStore(),
	}
}

var (
	_ repository.UserRepo    = (*mockUserRepo)(nil)
	_ repository.ProfileRepo = (*mockProfileRepo)(nil)
)

type mockUserRepo struct {
	mu        sync.Mutex
	users     map[string]*models.User
	next      int
	CreateErr error
}

func (m *mockUserRepo) CreateUser(ctx context.Context, u *models.User) (string, error) {
	if m.CreateErr != nil {
		return "", m.CreateErr
	}
	if u == nil {
		return "", errors.New("user is nil")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	email := strings.ToLower(strings.TrimSpace(u.Email))
	for _, existing := range m.users {
		if existing.Email == email {
			return "", fmt.Errorf("email %s already registered", email)
		}
	}
	m.next++
	id := fmt.Sprintf("user-%d", m.next)
	m.users[id] = &models.User{ID: id, Name: u.Name, Email: email, PasswordHash: u.PasswordHash}
	return id, nil
}

func (m *mockUserRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *mockUserRepo) UpdateUser(ctx context.Context, u *models.User) error {
	if u == nil {
		return errors.New("user is nil")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m *mockUserRepo) DeleteUser(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.users, id)
	return nil
}

type mockProfileRepo struct {
	mu        sync.Mutex
	profiles  map[string]*models.UserProfile
	next      int64
	CreateErr error
}

func (m *mockProfileRepo) CreateProfile(ctx context.Context, p *models.UserProfile) (int64, error) {
	if m.CreateErr != nil {
		return 0, m.CreateErr
	}
	if p == nil {
		return 0, errors.New("profile is nil")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.next++
	cp := *p
	cp.ID = m.next
	m.profiles[p.UserID] = &cp
	return cp.ID, nil
}

func (m *mockProfileRepo) GetByUserID(ctx context.Context, userID string) (*models.UserProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.profiles[userID]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, nil
}

func (m *mockProfileRepo) UpdateProfile(ctx context.Context, p *models.UserProfile) error {
	if p == nil {
		return errors.New("profile is nil")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *p
	m.profiles[p.UserID] = &cp
	return nil
}

func (m *mockProfileRepo) ListNotifiable(ctx context.Context) ([]models.UserProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.UserProfile
	for _, p := range m.profiles {
		if p.Preferences.Notifications {
			out = append(out, *p)
		}
	}
	return out, nil
}
