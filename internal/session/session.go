// Package session mantém o estado de navegação do usuário (token da API,
// usuário logado, timezone e mensagens flash) atrás de um Store chaveado
// por cookie HTTP-only.
package session

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/taskwise/web/internal/taskwise"
)

const cookieName = "taskwise_session"

// ErrNotFound indica sessão inexistente ou expirada no Store.
var ErrNotFound = errors.New("session: não encontrada")

// Tipos de mensagem flash exibidos pelos templates.
const (
	FlashInfo    = "info"
	FlashSuccess = "success"
	FlashWarning = "warning"
	FlashDanger  = "danger"
)

// Flash é uma mensagem de vida única, consumida na próxima renderização.
type Flash struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// Session guarda o estado por navegador. O token e o usuário vêm da API
// TaskWise no login; tudo aqui vive apenas enquanto a sessão durar.
type Session struct {
	ID       string         `json:"id"`
	Token    string         `json:"token"`
	User     *taskwise.User `json:"user,omitempty"`
	Timezone string         `json:"timezone,omitempty"`
	Flashes  []Flash        `json:"flashes,omitempty"`
}

// Authenticated indica sessão com token da API.
func (s *Session) Authenticated() bool {
	return s.Token != ""
}

// IsAdmin indica usuário logado com papel Admin.
func (s *Session) IsAdmin() bool {
	return s.User != nil && s.User.IsAdmin()
}

// AddFlash enfileira uma mensagem para a próxima página renderizada.
func (s *Session) AddFlash(kind, message string) {
	s.Flashes = append(s.Flashes, Flash{Type: kind, Message: message})
}

// TakeFlashes devolve a fila de mensagens e a esvazia. Entrega no máximo
// uma vez: a fila zera junto com a leitura.
func (s *Session) TakeFlashes() []Flash {
	flashes := s.Flashes
	s.Flashes = nil
	return flashes
}

// Store persiste sessões chaveadas pelo id do cookie.
type Store interface {
	Get(ctx context.Context, id string) (*Session, error)
	Save(ctx context.Context, session *Session, ttl time.Duration) error
	Delete(ctx context.Context, id string) error
}

// Manager liga o Store ao cookie de sessão do navegador.
type Manager struct {
	store  Store
	ttl    time.Duration
	secure bool
}

// NewManager cria o gerenciador de sessões.
func NewManager(store Store, ttl time.Duration, secure bool) *Manager {
	return &Manager{store: store, ttl: ttl, secure: secure}
}

// Load recupera a sessão do cookie, criando uma nova (e gravando o cookie)
// quando ausente ou expirada.
func (m *Manager) Load(w http.ResponseWriter, r *http.Request) (*Session, error) {
	if cookie, err := r.Cookie(cookieName); err == nil && cookie.Value != "" {
		sess, err := m.store.Get(r.Context(), cookie.Value)
		if err == nil {
			return sess, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return nil, err
		}
	}

	sess := &Session{ID: uuid.NewString()}
	if err := m.store.Save(r.Context(), sess, m.ttl); err != nil {
		return nil, err
	}
	m.setCookie(w, sess.ID, int(m.ttl.Seconds()))
	return sess, nil
}

// Save persiste o estado corrente da sessão.
func (m *Manager) Save(ctx context.Context, session *Session) error {
	return m.store.Save(ctx, session, m.ttl)
}

// Renew troca o id da sessão mantendo o estado, invalidando o cookie
// anterior. Chamado após o login para fechar a janela de fixação.
func (m *Manager) Renew(ctx context.Context, w http.ResponseWriter, session *Session) error {
	if session.ID != "" {
		if err := m.store.Delete(ctx, session.ID); err != nil {
			return err
		}
	}
	session.ID = uuid.NewString()
	if err := m.store.Save(ctx, session, m.ttl); err != nil {
		return err
	}
	m.setCookie(w, session.ID, int(m.ttl.Seconds()))
	return nil
}

// Destroy encerra a sessão e limpa o cookie.
func (m *Manager) Destroy(ctx context.Context, w http.ResponseWriter, session *Session) error {
	if err := m.store.Delete(ctx, session.ID); err != nil {
		return err
	}
	m.setCookie(w, "", -1)
	return nil
}

func (m *Manager) setCookie(w http.ResponseWriter, value string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   maxAge,
	})
}
