package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/SergeiKhy/linkstack/internal/config"
	"github.com/SergeiKhy/linkstack/internal/models"
	"github.com/SergeiKhy/linkstack/internal/repository"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// PasswordHasher абстракция хеширования паролей
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(hash, password string) bool
}

type bcryptHasher struct {
	cost int
}

// NewBcryptHasher при cost == 0 используется bcrypt.DefaultCost
func NewBcryptHasher(cost int) PasswordHasher {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return bcryptHasher{cost: cost}
}

func (b bcryptHasher) Hash(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), b.cost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

func (b bcryptHasher) Verify(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// AuthEventType тип изменения состояния аутентификации
type AuthEventType string

const (
	AuthSignedIn  AuthEventType = "signed_in"
	AuthSignedOut AuthEventType = "signed_out"
)

type AuthEvent struct {
	Type   AuthEventType
	UserID uuid.UUID
}

// AuthEvents рассылает события входа и выхода подписчикам внутри процесса
type AuthEvents struct {
	mu     sync.RWMutex
	nextID int
	subs   map[int]func(AuthEvent)
}

func NewAuthEvents() *AuthEvents {
	return &AuthEvents{subs: make(map[int]func(AuthEvent))}
}

// Subscribe возвращает функцию отписки
func (b *AuthEvents) Subscribe(fn func(AuthEvent)) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	b.subs[id] = fn

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.subs, id)
	}
}

func (b *AuthEvents) Publish(event AuthEvent) {
	b.mu.RLock()
	subs := make([]func(AuthEvent), 0, len(b.subs))
	for _, fn := range b.subs {
		subs = append(subs, fn)
	}
	b.mu.RUnlock()

	for _, fn := range subs {
		fn(event)
	}
}

// Session выданный токен сессии
type Session struct {
	Token     string
	ExpiresAt time.Time
	User      *models.User
}

// AuthService регистрация, вход и проверка токенов сессии
type AuthService interface {
	SignUp(ctx context.Context, creds models.Credentials) (*Session, error)
	SignIn(ctx context.Context, creds models.Credentials) (*Session, error)
	SignOut(ctx context.Context, userID uuid.UUID)
	ParseToken(token string) (uuid.UUID, error)
	CurrentUser(ctx context.Context, userID uuid.UUID) (*models.User, error)
}

type authService struct {
	users      repository.UserRepository
	hasher     PasswordHasher
	events     *AuthEvents
	secret     []byte
	sessionTTL time.Duration
	now        func() time.Time
	logger     *zap.Logger
}

func NewAuthService(
	users repository.UserRepository,
	hasher PasswordHasher,
	events *AuthEvents,
	cfg config.AuthConfig,
	logger *zap.Logger,
) AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	ttl := cfg.SessionTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &authService{
		users:      users,
		hasher:     hasher,
		events:     events,
		secret:     []byte(cfg.JWTSecret),
		sessionTTL: ttl,
		now:        time.Now,
		logger:     logger,
	}
}

func (s *authService) SignUp(ctx context.Context, creds models.Credentials) (*Session, error) {
	hash, err := s.hasher.Hash(creds.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		ID:           uuid.New(),
		Email:        creds.Email,
		PasswordHash: hash,
		CreatedAt:    s.now(),
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			return nil, ErrEmailInUse
		}
		return nil, err
	}

	s.logger.Info("Пользователь зарегистрирован", zap.String("user_id", user.ID.String()))
	return s.issue(user)
}

func (s *authService) SignIn(ctx context.Context, creds models.Credentials) (*Session, error) {
	user, err := s.users.GetByEmail(ctx, creds.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !s.hasher.Verify(user.PasswordHash, creds.Password) {
		return nil, ErrInvalidCredentials
	}

	return s.issue(user)
}

// SignOut токен остаётся валидным до истечения, cookie очищает HTTP-слой
func (s *authService) SignOut(ctx context.Context, userID uuid.UUID) {
	s.events.Publish(AuthEvent{Type: AuthSignedOut, UserID: userID})
}

func (s *authService) ParseToken(token string) (uuid.UUID, error) {
	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !parsed.Valid {
		return uuid.Nil, ErrInvalidToken
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, ErrInvalidToken
	}
	return userID, nil
}

func (s *authService) CurrentUser(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	return user, nil
}

func (s *authService) issue(user *models.User) (*Session, error) {
	now := s.now()
	expiresAt := now.Add(s.sessionTTL)

	claims := &jwt.RegisteredClaims{
		Subject:   user.ID.String(),
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	s.events.Publish(AuthEvent{Type: AuthSignedIn, UserID: user.ID})

	return &Session{Token: token, ExpiresAt: expiresAt, User: user}, nil
}
