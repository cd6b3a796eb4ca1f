package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/taskwise/web/internal/taskwise"
)

func TestTakeFlashesDrainsQueue(t *testing.T) {
	sess := &Session{ID: "s1"}
	sess.AddFlash(FlashDanger, "falhou")
	sess.AddFlash(FlashInfo, "aviso")

	flashes := sess.TakeFlashes()
	if len(flashes) != 2 {
		t.Fatalf("esperava 2 flashes, obteve %d", len(flashes))
	}
	if flashes[0].Type != FlashDanger || flashes[0].Message != "falhou" {
		t.Fatalf("flash inesperado: %+v", flashes[0])
	}
	if got := sess.TakeFlashes(); len(got) != 0 {
		t.Fatalf("fila deveria estar vazia, obteve %d", len(got))
	}
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	sess := &Session{ID: "abc", Token: "tok", Timezone: "America/Sao_Paulo"}
	sess.User = &taskwise.User{ID: "u1", Name: "Ana", Role: taskwise.RoleAdmin}
	if err := store.Save(ctx, sess, time.Hour); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := store.Get(ctx, "abc")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Token != "tok" || got.User == nil || got.User.Name != "Ana" {
		t.Fatalf("sessão incompleta: %+v", got)
	}

	// Cópia defensiva: mutação no valor devolvido não vaza para o store.
	got.Token = "outro"
	again, err := store.Get(ctx, "abc")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if again.Token != "tok" {
		t.Fatalf("store mutado por fora: %q", again.Token)
	}
}

func TestMemoryStoreExpiry(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	sess := &Session{ID: "exp"}
	if err := store.Save(ctx, sess, -time.Second); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := store.Get(ctx, "exp"); err != ErrNotFound {
		t.Fatalf("esperava ErrNotFound, obteve %v", err)
	}
}

func TestMemoryStoreDelete(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	if err := store.Save(ctx, &Session{ID: "del"}, time.Hour); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := store.Delete(ctx, "del"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.Get(ctx, "del"); err != ErrNotFound {
		t.Fatalf("esperava ErrNotFound, obteve %v", err)
	}
}

func TestManagerCreatesAndReloadsSession(t *testing.T) {
	manager := NewManager(NewMemoryStore(), time.Hour, false)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	sess, err := manager.Load(rec, req)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if sess.ID == "" {
		t.Fatal("sessão sem id")
	}

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != cookieName {
		t.Fatalf("cookie de sessão não gravado: %v", cookies)
	}
	if !cookies[0].HttpOnly {
		t.Fatal("cookie deveria ser HttpOnly")
	}

	sess.Token = "tok"
	if err := manager.Save(req.Context(), sess); err != nil {
		t.Fatalf("save: %v", err)
	}

	req2 := httptest.NewRequest(http.MethodGet, "/", nil)
	req2.AddCookie(cookies[0])
	again, err := manager.Load(httptest.NewRecorder(), req2)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if again.ID != sess.ID || again.Token != "tok" {
		t.Fatalf("sessão não recuperada: %+v", again)
	}
}

func TestManagerRenewRotatesID(t *testing.T) {
	store := NewMemoryStore()
	manager := NewManager(store, time.Hour, false)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	sess, err := manager.Load(rec, req)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	oldID := sess.ID

	sess.Token = "tok"
	rec2 := httptest.NewRecorder()
	if err := manager.Renew(req.Context(), rec2, sess); err != nil {
		t.Fatalf("renew: %v", err)
	}

	if sess.ID == oldID {
		t.Fatal("renew deveria trocar o id da sessão")
	}
	if _, err := store.Get(req.Context(), oldID); err != ErrNotFound {
		t.Fatalf("id antigo deveria sumir do store, obteve %v", err)
	}

	renewed, err := store.Get(req.Context(), sess.ID)
	if err != nil {
		t.Fatalf("get renovada: %v", err)
	}
	if renewed.Token != "tok" {
		t.Fatalf("estado perdido na renovação: %+v", renewed)
	}

	cookies := rec2.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Value != sess.ID {
		t.Fatalf("cookie não acompanhou o novo id: %v", cookies)
	}
}

func TestManagerDestroyClearsCookie(t *testing.T) {
	manager := NewManager(NewMemoryStore(), time.Hour, false)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	sess, err := manager.Load(rec, req)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	rec2 := httptest.NewRecorder()
	if err := manager.Destroy(req.Context(), rec2, sess); err != nil {
		t.Fatalf("destroy: %v", err)
	}

	cookies := rec2.Result().Cookies()
	if len(cookies) != 1 || cookies[0].MaxAge != -1 {
		t.Fatalf("cookie não limpo: %v", cookies)
	}

	req2 := httptest.NewRequest(http.MethodGet, "/", nil)
	req2.AddCookie(rec.Result().Cookies()[0])
	fresh, err := manager.Load(httptest.NewRecorder(), req2)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if fresh.ID == sess.ID {
		t.Fatal("sessão destruída não deveria ser recuperável")
	}
}
