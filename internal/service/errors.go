package service

import "errors"

// Ошибки валидации: возвращаются до обращения к хранилищу
var (
	ErrEmptyTitle      = errors.New("название ссылки не может быть пустым")
	ErrEmptyURL        = errors.New("URL ссылки не может быть пустым")
	ErrInvalidURL      = errors.New("невалидный URL")
	ErrUnknownIcon     = errors.New("неизвестная иконка")
	ErrIndexOutOfRange = errors.New("индекс вне диапазона")

	ErrUsernameTooShort = errors.New("имя пользователя должно быть не короче 3 символов")
	ErrUsernameTooLong  = errors.New("имя пользователя должно быть не длиннее 30 символов")
	ErrUsernameChars    = errors.New("имя пользователя может содержать только буквы, цифры, '_' и '-'")
	ErrUsernameEdge     = errors.New("имя пользователя не может начинаться или заканчиваться на '_' или '-'")
	ErrUsernameReserved = errors.New("это имя пользователя зарезервировано")
)

// Остальные ошибки сервиса
var (
	ErrUsernameTaken      = errors.New("имя пользователя уже занято")
	ErrLinkNotFound       = errors.New("ссылка не найдена")
	ErrProfileNotFound    = errors.New("профиль не найден")
	ErrNoProfile          = errors.New("профиль не выбран")
	ErrInvalidCredentials = errors.New("неверный email или пароль")
	ErrEmailInUse         = errors.New("email уже зарегистрирован")
	ErrInvalidToken       = errors.New("невалидный токен сессии")
)

var validationErrors = []error{
	ErrEmptyTitle,
	ErrEmptyURL,
	ErrInvalidURL,
	ErrUnknownIcon,
	ErrIndexOutOfRange,
	ErrUsernameTooShort,
	ErrUsernameTooLong,
	ErrUsernameChars,
	ErrUsernameEdge,
	ErrUsernameReserved,
}

// IsValidation сообщает, что ошибка вызвана некорректным вводом
func IsValidation(err error) bool {
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
