package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/bigkaa/odontoforense/internal/domain/model"
	"github.com/bigkaa/odontoforense/internal/session"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *session.Session) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	sess := session.New()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(srv.URL+"/", 5*time.Second, sess, logger), sess
}

func TestDo_SendsBearerAndQuery(t *testing.T) {
	var gotAuth, gotQuery string
	c, sess := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotQuery = r.URL.Query().Get("casoId")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id":"v1","casoId":"c1"}]`))
	})
	sess.Begin("tok-123", model.User{ID: "u1"})

	var out []model.Victim
	err := c.Do(context.Background(), http.MethodGet, "/vitimas", url.Values{"casoId": {"c1"}}, nil, &out)
	if err != nil {
		t.Fatalf("Do() вернул ошибку: %v", err)
	}
	if gotAuth != "Bearer tok-123" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if gotQuery != "c1" {
		t.Errorf("casoId = %q", gotQuery)
	}
	if len(out) != 1 || out[0].ID != "v1" {
		t.Errorf("out = %+v", out)
	}
}

func TestDo_WithoutSessionSendsNoToken(t *testing.T) {
	var gotAuth string
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusNoContent)
	})
	if err := c.Do(context.Background(), http.MethodGet, "/health/live", nil, nil, nil); err != nil {
		t.Fatalf("Do() вернул ошибку: %v", err)
	}
	if gotAuth != "" {
		t.Errorf("Authorization = %q, ожидалось пусто", gotAuth)
	}
}

func TestDo_UnauthorizedEndsSession(t *testing.T) {
	c, sess := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"code":"UNAUTHORIZED","message":"Token expirado"}}`))
	})
	var ended session.EndReason
	sess.OnEnd(func(r session.EndReason) { ended = r })
	sess.Begin("tok", model.User{ID: "u1"})

	err := c.Do(context.Background(), http.MethodGet, "/casos", nil, nil, nil)

	var re *RemoteError
	if !errors.As(err, &re) {
		t.Fatalf("ожидалась *RemoteError, получено %T: %v", err, err)
	}
	if re.Status != http.StatusUnauthorized || re.Message != "Token expirado" || re.Code != "UNAUTHORIZED" {
		t.Errorf("RemoteError = %+v", re)
	}
	if sess.Active() {
		t.Error("сессия должна завершиться после 401")
	}
	if ended != session.EndUnauthorized {
		t.Errorf("OnEnd reason = %q", ended)
	}
}

func TestDo_ServerMessageSurfaced(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"code":"VALIDATION_ERROR","message":"Título é obrigatório"}}`))
	})
	err := c.Do(context.Background(), http.MethodPost, "/casos", nil, map[string]string{}, nil)
	if err == nil || err.Error() != "Título é obrigatório" {
		t.Errorf("Do() = %v, ожидалось сообщение сервера", err)
	}
	if !errors.Is(err, ErrRemote) {
		t.Error("ошибка должна оборачивать ErrRemote")
	}
	if StatusOf(err) != http.StatusBadRequest {
		t.Errorf("StatusOf() = %d", StatusOf(err))
	}
}

func TestDo_GenericMessageFallback(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`<html>bad gateway</html>`))
	})
	err := c.Do(context.Background(), http.MethodGet, "/casos", nil, nil, nil)
	if err == nil || err.Error() != GenericMessage {
		t.Errorf("Do() = %v, ожидалось общее сообщение", err)
	}
}

func TestDo_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	c := New(base, time.Second, session.New(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	err := c.Do(context.Background(), http.MethodGet, "/casos", nil, nil, nil)

	var re *RemoteError
	if !errors.As(err, &re) || re.Status != 0 || re.Message != GenericMessage {
		t.Errorf("Do() = %#v", err)
	}
}

func TestLoginAndLogout(t *testing.T) {
	var logoutAuth string
	c, sess := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/login":
			var body map[string]string
			_ = json.NewDecoder(r.Body).Decode(&body)
			if body["email"] != "perito@example.com" || body["senha"] != "segredo" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			_ = json.NewEncoder(w).Encode(LoginResult{
				Token: "tok-login",
				User:  model.User{ID: "u1", Role: model.RoleExaminer},
			})
		case "/auth/logout":
			logoutAuth = r.Header.Get("Authorization")
			w.WriteHeader(http.StatusNoContent)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	res, err := c.Login(context.Background(), "perito@example.com", "segredo")
	if err != nil {
		t.Fatalf("Login() вернул ошибку: %v", err)
	}
	if res.User.ID != "u1" || !sess.Active() {
		t.Fatalf("сессия не начата: %+v", res)
	}

	if err := c.Logout(context.Background()); err != nil {
		t.Fatalf("Logout() вернул ошибку: %v", err)
	}
	if logoutAuth != "Bearer tok-login" {
		t.Errorf("Authorization при выходе = %q", logoutAuth)
	}
	if sess.Active() {
		t.Error("сессия должна быть завершена")
	}
}

func TestDashboard(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/dashboard" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(`{"totalCasos":4,"casosEmAndamento":2,"atividade":[{"periodo":"2024-01","casos":1}]}`))
	})
	snap, err := c.Summarize(context.Background())
	if err != nil {
		t.Fatalf("Summarize() вернул ошибку: %v", err)
	}
	if snap.TotalCases != 4 || snap.CasesInProgress != 2 || len(snap.Activity) != 1 {
		t.Errorf("snapshot = %+v", snap)
	}
}
