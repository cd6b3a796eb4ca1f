package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/taskwise/web/internal/session"
	"github.com/taskwise/web/internal/taskwise"
)

func newManager() *session.Manager {
	return session.NewManager(session.NewMemoryStore(), time.Hour, false)
}

func okHandler(called *bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*called = true
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequireAuth(t *testing.T) {
	tests := []struct {
		name       string
		sess       *session.Session
		wantStatus int
		wantNext   bool
	}{
		{"sem sessão", nil, http.StatusFound, false},
		{"sessão anônima", &session.Session{ID: "s1"}, http.StatusFound, false},
		{"sessão autenticada", &session.Session{ID: "s1", Token: "tok"}, http.StatusOK, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var called bool
			handler := RequireAuth(okHandler(&called))

			r := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
			if tc.sess != nil {
				r = r.WithContext(ContextWithSession(r.Context(), tc.sess))
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, r)

			if w.Code != tc.wantStatus {
				t.Fatalf("status = %d, esperava %d", w.Code, tc.wantStatus)
			}
			if called != tc.wantNext {
				t.Fatalf("next chamado = %v, esperava %v", called, tc.wantNext)
			}
			if tc.wantStatus == http.StatusFound {
				if loc := w.Header().Get("Location"); loc != "/login" {
					t.Fatalf("Location = %q, esperava /login", loc)
				}
			}
		})
	}
}

func TestRequireAdmin(t *testing.T) {
	admin := &taskwise.User{ID: "u1", Role: taskwise.RoleAdmin}
	dev := &taskwise.User{ID: "u2", Role: "Dev"}

	tests := []struct {
		name     string
		sess     *session.Session
		referer  string
		wantNext bool
		wantLoc  string
	}{
		{"admin passa", &session.Session{ID: "s1", Token: "tok", User: admin}, "", true, ""},
		{"não-admin volta ao referer", &session.Session{ID: "s2", Token: "tok", User: dev}, "/sprints", false, "/sprints"},
		{"não-admin sem referer vai ao dashboard", &session.Session{ID: "s3", Token: "tok", User: dev}, "", false, "/dashboard"},
		{"anônimo vai ao login", &session.Session{ID: "s4"}, "", false, "/login"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			manager := newManager()
			var called bool
			handler := RequireAdmin(manager)(okHandler(&called))

			r := httptest.NewRequest(http.MethodPost, "/sprints", nil)
			if tc.referer != "" {
				r.Header.Set("Referer", tc.referer)
			}
			r = r.WithContext(ContextWithSession(r.Context(), tc.sess))
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, r)

			if called != tc.wantNext {
				t.Fatalf("next chamado = %v, esperava %v", called, tc.wantNext)
			}
			if tc.wantLoc != "" {
				if loc := w.Header().Get("Location"); loc != tc.wantLoc {
					t.Fatalf("Location = %q, esperava %q", loc, tc.wantLoc)
				}
			}
			if !tc.wantNext && tc.wantLoc != "/login" {
				if len(tc.sess.Flashes) != 1 || tc.sess.Flashes[0].Type != session.FlashWarning {
					t.Fatalf("esperava um flash de aviso, obteve %+v", tc.sess.Flashes)
				}
			}
		})
	}
}

func TestTimezoneCapturesQueryParam(t *testing.T) {
	manager := newManager()
	sess := &session.Session{ID: "s1"}
	if err := manager.Save(context.Background(), sess); err != nil {
		t.Fatalf("seed da sessão: %v", err)
	}

	var called bool
	handler := Timezone(manager)(okHandler(&called))

	r := httptest.NewRequest(http.MethodGet, "/dashboard?tz=America/Recife", nil)
	r = r.WithContext(ContextWithSession(r.Context(), sess))
	handler.ServeHTTP(httptest.NewRecorder(), r)

	if !called {
		t.Fatal("next não foi chamado")
	}
	if sess.Timezone != "America/Recife" {
		t.Fatalf("timezone = %q, esperava America/Recife", sess.Timezone)
	}

	// Última escrita vence.
	r = httptest.NewRequest(http.MethodGet, "/dashboard?tz=Europe/Lisbon", nil)
	r = r.WithContext(ContextWithSession(r.Context(), sess))
	handler.ServeHTTP(httptest.NewRecorder(), r)

	if sess.Timezone != "Europe/Lisbon" {
		t.Fatalf("timezone = %q, esperava Europe/Lisbon", sess.Timezone)
	}
}

func TestSessionsInjectsSession(t *testing.T) {
	manager := newManager()

	var seen *session.Session
	handler := Sessions(manager)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetSession(r.Context())
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/login", nil))

	if seen == nil || seen.ID == "" {
		t.Fatalf("sessão não injetada: %+v", seen)
	}

	cookies := w.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Value != seen.ID {
		t.Fatalf("cookie de sessão não gravado: %+v", cookies)
	}
}
