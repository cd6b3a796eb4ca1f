package taskwise

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestClientHeaders(t *testing.T) {
	var got http.Header
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		_ = json.NewEncoder(w).Encode([]Sprint{})
	}))
	defer server.Close()

	tests := []struct {
		name      string
		factoryTZ string
		token     string
		tz        string
		wantAuth  string
		wantTZ    string
	}{
		{"token e timezone explícitos", "America/Recife", "tok-1", "Europe/Lisbon", "Bearer tok-1", "Europe/Lisbon"},
		{"timezone cai para o default da fábrica", "America/Recife", "tok-1", "", "Bearer tok-1", "America/Recife"},
		{"sem default resolve UTC", "", "", "", "", "UTC"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			client := NewFactory(server.URL, tc.factoryTZ).Client(tc.token, tc.tz)
			if _, err := client.ListSprints(context.Background()); err != nil {
				t.Fatalf("ListSprints: %v", err)
			}
			if auth := got.Get("Authorization"); auth != tc.wantAuth {
				t.Fatalf("Authorization = %q, esperava %q", auth, tc.wantAuth)
			}
			if tz := got.Get("X-Timezone"); tz != tc.wantTZ {
				t.Fatalf("X-Timezone = %q, esperava %q", tz, tc.wantTZ)
			}
		})
	}
}

func TestClientDecodesAPIError(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantMessage string
	}{
		{"campo message", 422, `{"message":"estimativas fora de ordem"}`, "estimativas fora de ordem"},
		{"primeiro item de errors", 400, `{"errors":["título obrigatório","outro"]}`, "título obrigatório"},
		{"corpo vazio", 500, ``, ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer server.Close()

			client := NewFactory(server.URL, "").Client("tok", "")
			_, err := client.GetTask(context.Background(), "t1")
			if err == nil {
				t.Fatal("esperava erro")
			}
			if got := ErrorStatus(err); got != tc.status {
				t.Fatalf("ErrorStatus = %d, esperava %d", got, tc.status)
			}
			if got := ErrorMessage(err, "fallback"); tc.wantMessage != "" && got != tc.wantMessage {
				t.Fatalf("ErrorMessage = %q, esperava %q", got, tc.wantMessage)
			}
			if tc.wantMessage == "" && ErrorMessage(err, "fallback") != "fallback" {
				t.Fatalf("mensagem vazia deveria cair no fallback")
			}
		})
	}
}

func TestClientStatusChangePayload(t *testing.T) {
	var payload map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&payload)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := NewFactory(server.URL, "").Client("tok", "")

	err := client.UpdateTaskStatus(context.Background(), "t1", StatusChange{
		Status:        TaskBloqueada,
		Reason:        "dependência externa",
		ResponsibleID: "u9",
	})
	if err != nil {
		t.Fatalf("UpdateTaskStatus: %v", err)
	}

	block, ok := payload["block"].(map[string]any)
	if !ok {
		t.Fatalf("payload sem bloco aninhado: %v", payload)
	}
	if block["reason"] != "dependência externa" || block["responsibleId"] != "u9" {
		t.Fatalf("bloco incompleto: %v", block)
	}

	payload = nil
	if err := client.UpdateTaskStatus(context.Background(), "t1", StatusChange{Status: TaskConcluida}); err != nil {
		t.Fatalf("UpdateTaskStatus: %v", err)
	}
	if _, ok := payload["block"]; ok {
		t.Fatalf("transição comum não deveria enviar bloco: %v", payload)
	}
}

func TestErrorStatusOfPlainError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // força falha de rede

	client := NewFactory(server.URL, "").Client("", "")
	_, err := client.ListSprints(context.Background())
	if err == nil {
		t.Fatal("esperava erro de rede")
	}
	if ErrorStatus(err) != 0 {
		t.Fatalf("erro de rede não tem status, obteve %d", ErrorStatus(err))
	}
	if ErrorMessage(err, "fallback") != "fallback" {
		t.Fatal("erro de rede deveria usar o fallback")
	}
}
