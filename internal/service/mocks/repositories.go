package mocks

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/SergeiKhy/linkstack/internal/models"
	"github.com/SergeiKhy/linkstack/internal/repository"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// failures lets tests inject an error for a method and count its calls
type failures struct {
	fmu   sync.Mutex
	errs  map[string]error
	calls map[string]int
}

// Fail makes every following call of method return err; nil clears it
func (f *failures) Fail(method string, err error) {
	f.fmu.Lock()
	defer f.fmu.Unlock()
	if f.errs == nil {
		f.errs = make(map[string]error)
	}
	f.errs[method] = err
}

// Calls returns how many times method was invoked
func (f *failures) Calls(method string) int {
	f.fmu.Lock()
	defer f.fmu.Unlock()
	return f.calls[method]
}

func (f *failures) hit(method string) error {
	f.fmu.Lock()
	defer f.fmu.Unlock()
	if f.calls == nil {
		f.calls = make(map[string]int)
	}
	f.calls[method]++
	return f.errs[method]
}

// MockUserRepository implements repository.UserRepository for testing
type MockUserRepository struct {
	failures
	mu    sync.RWMutex
	users map[uuid.UUID]models.User
}

func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{users: make(map[uuid.UUID]models.User)}
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	if err := m.hit("Create"); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	user.Email = strings.ToLower(user.Email)
	for _, u := range m.users {
		if u.Email == user.Email {
			return repository.ErrEmailTaken
		}
	}
	m.users[user.ID] = *user
	return nil
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if err := m.hit("GetByEmail"); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, u := range m.users {
		if u.Email == strings.ToLower(email) {
			return &u, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if err := m.hit("GetByID"); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return &u, nil
}

// MockProfileRepository implements repository.ProfileRepository for testing
type MockProfileRepository struct {
	failures
	mu       sync.RWMutex
	profiles []models.Profile
}

func NewMockProfileRepository() *MockProfileRepository {
	return &MockProfileRepository{}
}

func (m *MockProfileRepository) Create(ctx context.Context, profile *models.Profile) error {
	if err := m.hit("Create"); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, p := range m.profiles {
		if strings.EqualFold(p.Username, profile.Username) {
			return repository.ErrUsernameExists
		}
	}
	if profile.CreatedAt.IsZero() {
		profile.CreatedAt = time.Now()
	}
	m.profiles = append(m.profiles, *profile)
	return nil
}

func (m *MockProfileRepository) ListByOwner(ctx context.Context, userID uuid.UUID) ([]models.Profile, error) {
	if err := m.hit("ListByOwner"); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := []models.Profile{}
	for _, p := range m.profiles {
		if p.ID == userID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *MockProfileRepository) GetByUsername(ctx context.Context, username string) (*models.Profile, error) {
	if err := m.hit("GetByUsername"); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, p := range m.profiles {
		if strings.EqualFold(p.Username, username) {
			return &p, nil
		}
	}
	return nil, repository.ErrProfileNotFound
}

func (m *MockProfileRepository) UsernameExists(ctx context.Context, username string) (bool, error) {
	if err := m.hit("UsernameExists"); err != nil {
		return false, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, p := range m.profiles {
		if strings.EqualFold(p.Username, username) {
			return true, nil
		}
	}
	return false, nil
}

func (m *MockProfileRepository) Update(ctx context.Context, profile *models.Profile) error {
	if err := m.hit("Update"); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, p := range m.profiles {
		if p.ID == profile.ID && p.Username == profile.Username {
			m.profiles[i] = *profile
			return nil
		}
	}
	return repository.ErrProfileNotFound
}

// MockLinkRepository implements repository.LinkRepository for testing
type MockLinkRepository struct {
	failures
	mu    sync.RWMutex
	links map[uuid.UUID]models.Link
}

func NewMockLinkRepository() *MockLinkRepository {
	return &MockLinkRepository{links: make(map[uuid.UUID]models.Link)}
}

func (m *MockLinkRepository) Create(ctx context.Context, link *models.Link) error {
	if err := m.hit("Create"); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	m.links[link.ID] = *link
	return nil
}

func (m *MockLinkRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Link, error) {
	if err := m.hit("GetByID"); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	link, ok := m.links[id]
	if !ok {
		return nil, repository.ErrLinkNotFound
	}
	return &link, nil
}

func (m *MockLinkRepository) ListByProfile(ctx context.Context, userID uuid.UUID, profile string) ([]models.Link, error) {
	if err := m.hit("ListByProfile"); err != nil {
		return nil, err
	}
	return m.list(userID, profile, false), nil
}

func (m *MockLinkRepository) ListActiveByProfile(ctx context.Context, userID uuid.UUID, profile string) ([]models.Link, error) {
	if err := m.hit("ListActiveByProfile"); err != nil {
		return nil, err
	}
	return m.list(userID, profile, true), nil
}

func (m *MockLinkRepository) list(userID uuid.UUID, profile string, activeOnly bool) []models.Link {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := []models.Link{}
	for _, l := range m.links {
		if l.UserID != userID || l.Profile != profile || (activeOnly && !l.IsActive) {
			continue
		}
		out = append(out, l)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Position != out[j].Position {
			return out[i].Position < out[j].Position
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

func (m *MockLinkRepository) Update(ctx context.Context, link *models.Link) error {
	if err := m.hit("Update"); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.links[link.ID]
	if !ok || stored.UserID != link.UserID {
		return repository.ErrLinkNotFound
	}
	stored.Title = link.Title
	stored.URL = link.URL
	stored.Icon = link.Icon
	m.links[link.ID] = stored
	return nil
}

func (m *MockLinkRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	if err := m.hit("Delete"); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.links[id]
	if !ok || stored.UserID != userID {
		return repository.ErrLinkNotFound
	}
	delete(m.links, id)
	return nil
}

// ApplyPositions is all-or-nothing like the real transaction
func (m *MockLinkRepository) ApplyPositions(ctx context.Context, userID uuid.UUID, profile string, updates []models.PositionUpdate) error {
	if err := m.hit("ApplyPositions"); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range updates {
		stored, ok := m.links[u.ID]
		if !ok || stored.UserID != userID || stored.Profile != profile {
			return repository.ErrLinkNotFound
		}
	}
	for _, u := range updates {
		stored := m.links[u.ID]
		stored.IsActive = u.IsActive
		stored.Position = u.Position
		m.links[u.ID] = stored
	}
	return nil
}

// Stored returns the persisted copy of a link for assertions
func (m *MockLinkRepository) Stored(id uuid.UUID) (models.Link, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	link, ok := m.links[id]
	return link, ok
}

// MockClickRepository implements repository.ClickRepository for testing
type MockClickRepository struct {
	failures
	mu     sync.RWMutex
	clicks []models.Click
}

func NewMockClickRepository() *MockClickRepository {
	return &MockClickRepository{}
}

func (m *MockClickRepository) RecordClick(ctx context.Context, click *models.Click) error {
	if err := m.hit("RecordClick"); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clicks = append(m.clicks, *click)
	return nil
}

func (m *MockClickRepository) ListByProfile(ctx context.Context, userID uuid.UUID, profile string) ([]models.Click, error) {
	if err := m.hit("ListByProfile"); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := []models.Click{}
	for _, c := range m.clicks {
		if c.UserID == userID && c.Profile == profile {
			out = append(out, c)
		}
	}
	return out, nil
}

// Count returns the number of recorded clicks
func (m *MockClickRepository) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.clicks)
}

// MockVisitorRepository implements repository.VisitorRepository for testing
type MockVisitorRepository struct {
	failures
	mu     sync.RWMutex
	visits []models.Visit
}

func NewMockVisitorRepository() *MockVisitorRepository {
	return &MockVisitorRepository{}
}

func (m *MockVisitorRepository) Exists(ctx context.Context, ownerID uuid.UUID, pagePath, visitorKey string, day time.Time) (bool, error) {
	if err := m.hit("Exists"); err != nil {
		return false, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.exists(ownerID, pagePath, visitorKey, day), nil
}

func (m *MockVisitorRepository) exists(ownerID uuid.UUID, pagePath, visitorKey string, day time.Time) bool {
	for _, v := range m.visits {
		if v.UserID == ownerID && v.PagePath == pagePath && v.VisitorKey == visitorKey && v.VisitDay.Equal(day) {
			return true
		}
	}
	return false
}

// Insert enforces the same uniqueness as the dedup index
func (m *MockVisitorRepository) Insert(ctx context.Context, visit *models.Visit) (bool, error) {
	if err := m.hit("Insert"); err != nil {
		return false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.exists(visit.UserID, visit.PagePath, visit.VisitorKey, visit.VisitDay) {
		return false, nil
	}
	m.visits = append(m.visits, *visit)
	return true, nil
}

func (m *MockVisitorRepository) ListByPage(ctx context.Context, ownerID uuid.UUID, pagePath string) ([]models.Visit, error) {
	if err := m.hit("ListByPage"); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := []models.Visit{}
	for _, v := range m.visits {
		if v.UserID == ownerID && v.PagePath == pagePath {
			out = append(out, v)
		}
	}
	return out, nil
}

// Count returns the number of stored visits
func (m *MockVisitorRepository) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.visits)
}

// MockCacheRepository implements repository.CacheRepository for testing
type MockCacheRepository struct {
	failures
	mu    sync.RWMutex
	cache map[string]models.PublicProfile
}

func NewMockCacheRepository() *MockCacheRepository {
	return &MockCacheRepository{cache: make(map[string]models.PublicProfile)}
}

func (m *MockCacheRepository) GetPublicProfile(ctx context.Context, username string) (*models.PublicProfile, error) {
	if err := m.hit("GetPublicProfile"); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	page, ok := m.cache[strings.ToLower(username)]
	if !ok {
		return nil, redis.Nil
	}
	return &page, nil
}

func (m *MockCacheRepository) SetPublicProfile(ctx context.Context, page *models.PublicProfile, ttl time.Duration) error {
	if err := m.hit("SetPublicProfile"); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cache[strings.ToLower(page.Profile.Username)] = *page
	return nil
}

func (m *MockCacheRepository) DeletePublicProfile(ctx context.Context, username string) error {
	if err := m.hit("DeletePublicProfile"); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.cache, strings.ToLower(username))
	return nil
}

// Cached reports whether a public page is cached
func (m *MockCacheRepository) Cached(username string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.cache[strings.ToLower(username)]
	return ok
}

// MockPreferenceRepository implements repository.PreferenceRepository for testing
type MockPreferenceRepository struct {
	failures
	mu    sync.RWMutex
	prefs map[uuid.UUID]string
}

func NewMockPreferenceRepository() *MockPreferenceRepository {
	return &MockPreferenceRepository{prefs: make(map[uuid.UUID]string)}
}

func (m *MockPreferenceRepository) GetSelectedProfile(ctx context.Context, userID uuid.UUID) (string, error) {
	if err := m.hit("GetSelectedProfile"); err != nil {
		return "", err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.prefs[userID], nil
}

func (m *MockPreferenceRepository) SetSelectedProfile(ctx context.Context, userID uuid.UUID, username string) error {
	if err := m.hit("SetSelectedProfile"); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prefs[userID] = username
	return nil
}

func (m *MockPreferenceRepository) ClearSelectedProfile(ctx context.Context, userID uuid.UUID) error {
	if err := m.hit("ClearSelectedProfile"); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.prefs, userID)
	return nil
}
