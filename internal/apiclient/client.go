// Пакет apiclient — HTTP-клиент REST API odontoforense.
// Подставляет bearer-токен активной сессии; ответ 401 завершает сессию.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bigkaa/odontoforense/internal/domain/model"
	"github.com/bigkaa/odontoforense/internal/session"
)

// maxErrorBody — сколько байт тела ошибки читать при разборе.
const maxErrorBody = 64 << 10

// Client — HTTP-клиент REST API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	session    *session.Session
	logger     *slog.Logger
}

// New создаёт клиент.
// baseURL — базовый URL API (например, http://localhost:8040).
// timeout — таймаут HTTP-запросов (OF_API_TIMEOUT).
func New(baseURL string, timeout time.Duration, sess *session.Session, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		session:    sess,
		logger:     logger.With(slog.String("component", "api_client")),
	}
}

// Session возвращает сессию клиента.
func (c *Client) Session() *session.Session {
	return c.session
}

// Do выполняет запрос и декодирует JSON-ответ в out (если out != nil).
// Ошибки API возвращаются как *RemoteError.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	var reader io.Reader = http.NoBody
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("сериализация тела запроса %s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, reader)
	if err != nil {
		return fmt.Errorf("создание запроса %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	// Без активной сессии запрос уходит без токена: сервер решит сам
	if token, err := c.session.Token(ctx); err == nil {
		req.Header.Set("Authorization", "Bearer "+token)
	} else if !errors.Is(err, session.ErrNoSession) {
		return err
	}

	resp, err := c.httpClient.Do(req) //nolint:gosec // URL из конфигурации
	if err != nil {
		c.logger.Warn("Запрос к API не выполнен",
			slog.String("method", method),
			slog.String("path", path),
			slog.String("error", err.Error()),
		)
		return &RemoteError{Message: GenericMessage, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		c.session.Invalidate()
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeError(resp)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &RemoteError{
			Status:  resp.StatusCode,
			Message: GenericMessage,
			Err:     fmt.Errorf("декодирование ответа %s %s: %w", method, path, err),
		}
	}
	return nil
}

// --- Аутентификация ---

// LoginResult — ответ POST /auth/login.
type LoginResult struct {
	Token string     `json:"token"`
	User  model.User `json:"usuario"`
}

// Login выполняет вход и начинает сессию.
func (c *Client) Login(ctx context.Context, email, password string) (LoginResult, error) {
	var res LoginResult
	body := map[string]string{"email": email, "senha": password}
	if err := c.Do(ctx, http.MethodPost, "/auth/login", nil, body, &res); err != nil {
		return LoginResult{}, err
	}
	c.session.Begin(res.Token, res.User)
	c.logger.Info("Вход выполнен", slog.String("user_id", res.User.ID))
	return res, nil
}

// RegisterRequest — тело POST /auth/register.
type RegisterRequest struct {
	Name     string     `json:"nome"`
	Email    string     `json:"email"`
	Password string     `json:"senha"` //nolint:gosec // поле запроса, не секрет
	Role     model.Role `json:"cargo"`
}

// Register регистрирует пользователя.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (model.User, error) {
	var u model.User
	if err := c.Do(ctx, http.MethodPost, "/auth/register", nil, req, &u); err != nil {
		return model.User{}, err
	}
	return u, nil
}

// Logout отзывает токен на сервере и завершает сессию.
// Сессия завершается и при ошибке сервера.
func (c *Client) Logout(ctx context.Context) error {
	defer c.session.End()
	if !c.session.Active() {
		return nil
	}
	return c.Do(ctx, http.MethodPost, "/auth/logout", nil, nil, nil)
}

// --- Dashboard ---

// Dashboard запрашивает сводку GET /dashboard.
func (c *Client) Dashboard(ctx context.Context) (model.DashboardSnapshot, error) {
	var snap model.DashboardSnapshot
	if err := c.Do(ctx, http.MethodGet, "/dashboard", nil, nil, &snap); err != nil {
		return model.DashboardSnapshot{}, err
	}
	return snap, nil
}

// Summarize реализует сводку дашборда через удалённый API.
func (c *Client) Summarize(ctx context.Context) (model.DashboardSnapshot, error) {
	return c.Dashboard(ctx)
}
