package service

import (
	"context"
	"errors"
	"sync"

	"github.com/SergeiKhy/linkstack/internal/models"
	"github.com/SergeiKhy/linkstack/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type userSession struct {
	profile *ProfileContext
	links   map[string]*LinkManager
}

// SessionRegistry хранит ProfileContext и LinkManager каждого вошедшего пользователя.
// Состояние сбрасывается по событиям входа и выхода.
type SessionRegistry struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*userSession

	users       repository.UserRepository
	profileRepo repository.ProfileRepository
	prefRepo    repository.PreferenceRepository
	linkRepo    repository.LinkRepository
	cacheRepo   repository.CacheRepository
	linkOpts    LinkManagerOptions
	logger      *zap.Logger
}

func NewSessionRegistry(
	users repository.UserRepository,
	profileRepo repository.ProfileRepository,
	prefRepo repository.PreferenceRepository,
	linkRepo repository.LinkRepository,
	cacheRepo repository.CacheRepository,
	events *AuthEvents,
	linkOpts LinkManagerOptions,
	logger *zap.Logger,
) *SessionRegistry {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &SessionRegistry{
		sessions:    make(map[uuid.UUID]*userSession),
		users:       users,
		profileRepo: profileRepo,
		prefRepo:    prefRepo,
		linkRepo:    linkRepo,
		cacheRepo:   cacheRepo,
		linkOpts:    linkOpts,
		logger:      logger,
	}
	if events != nil {
		events.Subscribe(r.handleAuthEvent)
	}
	return r
}

// При входе состояние строится заново, при выходе очищается
func (r *SessionRegistry) handleAuthEvent(event AuthEvent) {
	r.mu.Lock()
	s, ok := r.sessions[event.UserID]
	delete(r.sessions, event.UserID)
	r.mu.Unlock()

	if ok && event.Type == AuthSignedOut {
		s.profile.Clear()
	}
}

// Context возвращает контекст профилей пользователя, загружая его при первом обращении.
// Неудачная загрузка не кешируется и повторяется на следующем запросе.
func (r *SessionRegistry) Context(ctx context.Context, userID uuid.UUID) (*ProfileContext, error) {
	r.mu.Lock()
	s, ok := r.sessions[userID]
	r.mu.Unlock()
	if ok {
		return s.profile, nil
	}

	user, err := r.users.GetByID(ctx, userID)
	if err != nil {
		// Токен пережил удалённого пользователя
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}

	pc := NewProfileContext(user, r.profileRepo, r.prefRepo, r.logger)
	if err := pc.Load(ctx); err != nil {
		r.logger.Warn("Не удалось загрузить профили пользователя",
			zap.String("user_id", userID.String()),
			zap.Error(err),
		)
		return pc, err
	}

	s = &userSession{profile: pc, links: make(map[string]*LinkManager)}
	pc.OnSwitch(func(string) { r.dropLinks(userID) })

	r.mu.Lock()
	defer r.mu.Unlock()
	// Параллельный запрос мог зарегистрировать сессию раньше
	if existing, ok := r.sessions[userID]; ok {
		return existing.profile, nil
	}
	r.sessions[userID] = s
	return pc, nil
}

// Links возвращает менеджер ссылок текущего профиля пользователя
func (r *SessionRegistry) Links(ctx context.Context, userID uuid.UUID) (*LinkManager, *models.Profile, error) {
	pc, err := r.Context(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	current := pc.Current()
	if current == nil {
		return nil, nil, ErrNoProfile
	}

	r.mu.Lock()
	s, ok := r.sessions[userID]
	if ok {
		if m, ok := s.links[current.Username]; ok {
			r.mu.Unlock()
			return m, current, nil
		}
	}
	r.mu.Unlock()

	m := NewLinkManager(r.linkRepo, r.cacheRepo, userID, current.Username, r.linkOpts, r.logger)
	if err := m.Load(ctx); err != nil {
		return nil, current, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[userID]; ok {
		if existing, ok := s.links[current.Username]; ok {
			return existing, current, nil
		}
		s.links[current.Username] = m
	}
	return m, current, nil
}

// dropLinks данные профиля перечитываются после переключения
func (r *SessionRegistry) dropLinks(userID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[userID]; ok {
		s.links = make(map[string]*LinkManager)
	}
}

// Drop забывает состояние пользователя
func (r *SessionRegistry) Drop(userID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, userID)
}
