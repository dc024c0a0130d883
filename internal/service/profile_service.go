package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/SergeiKhy/linkstack/internal/media"
	"github.com/SergeiKhy/linkstack/internal/models"
	"github.com/SergeiKhy/linkstack/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	usernameMinLen = 3
	usernameMaxLen = 30
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// Имена, совпадающие с маршрутами сервиса или служебными страницами
var reservedUsernames = map[string]bool{
	"admin": true, "api": true, "www": true, "mail": true, "ftp": true,
	"localhost": true, "root": true, "support": true, "help": true, "info": true,
	"blog": true, "news": true, "shop": true, "store": true, "app": true,
	"mobile": true, "dashboard": true, "profile": true, "settings": true,
	"login": true, "register": true, "signup": true, "signin": true, "auth": true,
	"oauth": true, "callback": true, "webhook": true, "analytics": true,
	"about": true, "contact": true, "privacy": true, "terms": true, "legal": true,
	"dmca": true, "media": true, "docs": true, "swagger": true, "health": true,
}

// ValidateUsername проверяет формат имени без обращения к хранилищу
func ValidateUsername(username string) error {
	switch {
	case len(username) < usernameMinLen:
		return ErrUsernameTooShort
	case len(username) > usernameMaxLen:
		return ErrUsernameTooLong
	case !usernamePattern.MatchString(username):
		return ErrUsernameChars
	case strings.ContainsAny(username[:1], "-_") || strings.ContainsAny(username[len(username)-1:], "-_"):
		return ErrUsernameEdge
	case reservedUsernames[strings.ToLower(username)]:
		return ErrUsernameReserved
	}
	return nil
}

// ProfileService создание и сохранение профилей, загрузка изображений
type ProfileService interface {
	CheckUsername(ctx context.Context, username string) error
	Create(ctx context.Context, userID uuid.UUID, input models.CreateProfileInput) (*models.Profile, error)
	// Save сохраняет черновик профиля целиком
	Save(ctx context.Context, profile *models.Profile) error
	SaveTheme(ctx context.Context, userID uuid.UUID, username string, theme models.ThemeConfig) (*models.Profile, error)
	UploadAvatar(ctx context.Context, userID uuid.UUID, username string, upload Upload) (*models.Profile, error)
	RemoveAvatar(ctx context.Context, userID uuid.UUID, username string) (*models.Profile, error)
	UploadBackground(ctx context.Context, userID uuid.UUID, username string, upload Upload) (*models.Profile, error)
	RemoveBackground(ctx context.Context, userID uuid.UUID, username string) (*models.Profile, error)
}

// Upload загружаемый файл
type Upload struct {
	Filename string
	Size     int64
	Body     io.Reader
}

type profileService struct {
	profileRepo repository.ProfileRepository
	cacheRepo   repository.CacheRepository
	store       media.ObjectStore
	now         func() time.Time
	logger      *zap.Logger
}

func NewProfileService(
	profileRepo repository.ProfileRepository,
	cacheRepo repository.CacheRepository,
	store media.ObjectStore,
	logger *zap.Logger,
) ProfileService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &profileService{
		profileRepo: profileRepo,
		cacheRepo:   cacheRepo,
		store:       store,
		now:         time.Now,
		logger:      logger,
	}
}

func (s *profileService) CheckUsername(ctx context.Context, username string) error {
	username = strings.TrimSpace(username)
	if err := ValidateUsername(username); err != nil {
		return err
	}

	exists, err := s.profileRepo.UsernameExists(ctx, username)
	if err != nil {
		return fmt.Errorf("failed to check username: %w", err)
	}
	if exists {
		return ErrUsernameTaken
	}
	return nil
}

func (s *profileService) Create(ctx context.Context, userID uuid.UUID, input models.CreateProfileInput) (*models.Profile, error) {
	username := strings.TrimSpace(input.Username)
	if err := s.CheckUsername(ctx, username); err != nil {
		return nil, err
	}

	profile := &models.Profile{
		ID:          userID,
		Username:    strings.ToLower(username),
		ThemeConfig: models.DefaultTheme(),
		CreatedAt:   s.now(),
	}
	if name := strings.TrimSpace(input.DisplayName); name != "" {
		profile.DisplayName = &name
	}

	if err := s.profileRepo.Create(ctx, profile); err != nil {
		// Имя могли занять между проверкой и вставкой
		if errors.Is(err, repository.ErrUsernameExists) {
			return nil, ErrUsernameTaken
		}
		return nil, err
	}

	s.logger.Info("Профиль создан",
		zap.String("user_id", userID.String()),
		zap.String("username", profile.Username),
	)
	return profile, nil
}

func (s *profileService) Save(ctx context.Context, profile *models.Profile) error {
	if err := profile.ThemeConfig.Validate(); err != nil {
		return err
	}
	if err := s.profileRepo.Update(ctx, profile); err != nil {
		return s.mapNotFound(err)
	}
	s.invalidate(ctx, profile.Username)
	return nil
}

func (s *profileService) SaveTheme(ctx context.Context, userID uuid.UUID, username string, theme models.ThemeConfig) (*models.Profile, error) {
	if err := theme.Validate(); err != nil {
		return nil, err
	}
	return s.updateStored(ctx, userID, username, func(p *models.Profile) {
		theme.BackgroundImage = p.ThemeConfig.BackgroundImage
		p.ThemeConfig = theme
	})
}

func (s *profileService) UploadAvatar(ctx context.Context, userID uuid.UUID, username string, upload Upload) (*models.Profile, error) {
	data, err := s.prepare(media.KindAvatar, upload, media.CompressAvatar)
	if err != nil {
		return nil, err
	}

	objectPath := media.ObjectPath(media.KindAvatar, userID, s.now())
	if err := s.store.Upload(ctx, objectPath, bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("failed to upload avatar: %w", err)
	}
	publicURL := s.store.PublicURL(objectPath)

	var previous *string
	profile, err := s.updateStored(ctx, userID, username, func(p *models.Profile) {
		previous = p.AvatarURL
		p.AvatarURL = &publicURL
	})
	if err != nil {
		s.removeObject(ctx, &publicURL)
		return nil, err
	}

	if previous == nil || *previous != publicURL {
		s.removeObject(ctx, previous)
	}
	return profile, nil
}

func (s *profileService) RemoveAvatar(ctx context.Context, userID uuid.UUID, username string) (*models.Profile, error) {
	var previous *string
	profile, err := s.updateStored(ctx, userID, username, func(p *models.Profile) {
		previous = p.AvatarURL
		p.AvatarURL = nil
	})
	if err != nil {
		return nil, err
	}
	s.removeObject(ctx, previous)
	return profile, nil
}

func (s *profileService) UploadBackground(ctx context.Context, userID uuid.UUID, username string, upload Upload) (*models.Profile, error) {
	data, err := s.prepare(media.KindBackground, upload, media.CompressBackground)
	if err != nil {
		return nil, err
	}

	objectPath := media.ObjectPath(media.KindBackground, userID, s.now())
	if err := s.store.Upload(ctx, objectPath, bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("failed to upload background: %w", err)
	}
	publicURL := s.store.PublicURL(objectPath)

	var previous *string
	profile, err := s.updateStored(ctx, userID, username, func(p *models.Profile) {
		previous = p.ThemeConfig.BackgroundImage
		p.ThemeConfig.BackgroundImage = &publicURL
	})
	if err != nil {
		s.removeObject(ctx, &publicURL)
		return nil, err
	}

	if previous == nil || *previous != publicURL {
		s.removeObject(ctx, previous)
	}
	return profile, nil
}

func (s *profileService) RemoveBackground(ctx context.Context, userID uuid.UUID, username string) (*models.Profile, error) {
	var previous *string
	profile, err := s.updateStored(ctx, userID, username, func(p *models.Profile) {
		previous = p.ThemeConfig.BackgroundImage
		p.ThemeConfig.BackgroundImage = nil
	})
	if err != nil {
		return nil, err
	}
	s.removeObject(ctx, previous)
	return profile, nil
}

// prepare валидирует и сжимает изображение до загрузки в хранилище
func (s *profileService) prepare(kind media.Kind, upload Upload, compress func(io.Reader) ([]byte, error)) ([]byte, error) {
	if err := media.ValidateUpload(kind, upload.Filename, upload.Size); err != nil {
		return nil, err
	}
	return compress(upload.Body)
}

// updateStored меняет одно поле сохранённого профиля, не трогая несохранённый черновик
func (s *profileService) updateStored(ctx context.Context, userID uuid.UUID, username string, apply func(p *models.Profile)) (*models.Profile, error) {
	profile, err := s.profileRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, s.mapNotFound(err)
	}
	if profile.ID != userID {
		return nil, ErrProfileNotFound
	}

	apply(profile)

	if err := s.profileRepo.Update(ctx, profile); err != nil {
		return nil, s.mapNotFound(err)
	}
	s.invalidate(ctx, profile.Username)
	return profile, nil
}

// removeObject удаляет старый файл, если он лежит в нашем хранилище
func (s *profileService) removeObject(ctx context.Context, url *string) {
	if url == nil {
		return
	}
	objectPath, ok := s.store.PathFromURL(*url)
	if !ok {
		return
	}
	if err := s.store.Remove(ctx, objectPath); err != nil {
		s.logger.Warn("Не удалось удалить файл", zap.String("path", objectPath), zap.Error(err))
	}
}

func (s *profileService) invalidate(ctx context.Context, username string) {
	if err := s.cacheRepo.DeletePublicProfile(ctx, username); err != nil {
		s.logger.Warn("Не удалось сбросить кеш профиля", zap.String("username", username), zap.Error(err))
	}
}

func (s *profileService) mapNotFound(err error) error {
	if errors.Is(err, repository.ErrProfileNotFound) {
		return ErrProfileNotFound
	}
	return err
}
