// inapa-event-attendance/internal/gcal/credentials.go

package gcal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"golang.org/x/oauth2/jwt"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// ErrNoCredentials возвращается, когда ни одна стратегия аутентификации не
// сработала. Для системы это не фатальная ошибка: вызывающий код обязан
// деградировать до выдачи только локальных данных.
var ErrNoCredentials = errors.New("gcal: ни одна стратегия аутентификации Google не сработала")

// CredentialStrategy — одна стратегия получения аутентифицированного клиента
// Calendar API.
type CredentialStrategy interface {
	Name() string
	Acquire(ctx context.Context) (*calendar.Service, error)
}

// ServiceAccountStrategy — сервисный аккаунт (client email + приватный ключ),
// область доступа только на чтение.
type ServiceAccountStrategy struct {
	ClientEmail string
	PrivateKey  string
}

func (s ServiceAccountStrategy) Name() string { return "service_account" }

func (s ServiceAccountStrategy) Acquire(ctx context.Context) (*calendar.Service, error) {
	if s.ClientEmail == "" || s.PrivateKey == "" {
		return nil, errors.New("GOOGLE_CLIENT_EMAIL или GOOGLE_PRIVATE_KEY не заданы")
	}
	conf := &jwt.Config{
		Email: s.ClientEmail,
		// В переменных окружения перенос строки обычно экранирован как \n.
		PrivateKey: []byte(strings.ReplaceAll(s.PrivateKey, `\n`, "\n")),
		Scopes:     []string{calendar.CalendarReadonlyScope},
		TokenURL:   google.JWTTokenURL,
	}
	return newServiceWithValidation(ctx, conf.TokenSource(ctx))
}

// RefreshTokenStrategy — OAuth2 с сохраненным refresh-токеном; access-токен
// обновляется по требованию.
type RefreshTokenStrategy struct {
	ClientID     string
	ClientSecret string
	RefreshToken string
}

func (s RefreshTokenStrategy) Name() string { return "oauth_refresh_token" }

func (s RefreshTokenStrategy) Acquire(ctx context.Context) (*calendar.Service, error) {
	if s.ClientID == "" || s.ClientSecret == "" || s.RefreshToken == "" {
		return nil, errors.New("OAuth-параметры (client id/secret/refresh token) заданы не полностью")
	}
	conf := &oauth2.Config{
		ClientID:     s.ClientID,
		ClientSecret: s.ClientSecret,
		Endpoint:     google.Endpoint,
		Scopes:       []string{calendar.CalendarScope},
	}
	token := &oauth2.Token{RefreshToken: s.RefreshToken}
	return newServiceWithValidation(ctx, conf.TokenSource(ctx, token))
}

// ImpersonationStrategy — сервисный аккаунт с domain-wide delegation,
// действующий от имени конкретного пользователя домена.
type ImpersonationStrategy struct {
	ClientEmail string
	PrivateKey  string
	Subject     string
}

func (s ImpersonationStrategy) Name() string { return "domain_impersonation" }

func (s ImpersonationStrategy) Acquire(ctx context.Context) (*calendar.Service, error) {
	if s.ClientEmail == "" || s.PrivateKey == "" || s.Subject == "" {
		return nil, errors.New("параметры делегирования (client email/private key/subject) заданы не полностью")
	}
	conf := &jwt.Config{
		Email:      s.ClientEmail,
		PrivateKey: []byte(strings.ReplaceAll(s.PrivateKey, `\n`, "\n")),
		Subject:    s.Subject,
		Scopes:     []string{calendar.CalendarScope},
		TokenURL:   google.JWTTokenURL,
	}
	return newServiceWithValidation(ctx, conf.TokenSource(ctx))
}

// newServiceWithValidation запрашивает токен, чтобы проверить учетные данные
// сразу, а не при первом обращении к API.
func newServiceWithValidation(ctx context.Context, ts oauth2.TokenSource) (*calendar.Service, error) {
	if _, err := ts.Token(); err != nil {
		return nil, fmt.Errorf("проверка учетных данных не прошла: %w", err)
	}
	client := oauth2.NewClient(ctx, ts)
	return calendar.NewService(ctx, option.WithHTTPClient(client))
}

// StrategiesFromEnv собирает цепочку стратегий из переменных окружения
// в фиксированном порядке приоритета.
func StrategiesFromEnv() []CredentialStrategy {
	return []CredentialStrategy{
		ServiceAccountStrategy{
			ClientEmail: os.Getenv("GOOGLE_CLIENT_EMAIL"),
			PrivateKey:  os.Getenv("GOOGLE_PRIVATE_KEY"),
		},
		RefreshTokenStrategy{
			ClientID:     os.Getenv("GOOGLE_OAUTH_CLIENT_ID"),
			ClientSecret: os.Getenv("GOOGLE_OAUTH_CLIENT_SECRET"),
			RefreshToken: os.Getenv("GOOGLE_REFRESH_TOKEN"),
		},
		ImpersonationStrategy{
			ClientEmail: os.Getenv("GOOGLE_CLIENT_EMAIL"),
			PrivateKey:  os.Getenv("GOOGLE_PRIVATE_KEY"),
			Subject:     os.Getenv("GOOGLE_IMPERSONATE_EMAIL"),
		},
	}
}

// AcquireService перебирает стратегии по порядку и возвращает первый успешно
// созданный клиент. Если все стратегии провалились — ErrNoCredentials.
func AcquireService(ctx context.Context, strategies ...CredentialStrategy) (*calendar.Service, error) {
	for _, s := range strategies {
		svc, err := s.Acquire(ctx)
		if err != nil {
			slog.Warn("Стратегия аутентификации Google не сработала", "strategy", s.Name(), "error", err)
			continue
		}
		slog.Info("Клиент Google Calendar создан", "strategy", s.Name())
		return svc, nil
	}
	return nil, ErrNoCredentials
}
