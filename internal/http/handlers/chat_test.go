package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestChatRepliesFromLLM(t *testing.T) {
	ta := newTestApp(t)

	body := `{"message":"how tall is the dome?","site_name":"Taj Mahal","site_id":"taj-mahal"}`
	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(body))
	rec := httptest.NewRecorder()
	ta.app.Chat(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", rec.Code, rec.Body.String())
	}
	var resp struct {
		Reply string `json:"reply"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Reply != "The dome rises 35 metres." {
		t.Fatalf("reply = %q", resp.Reply)
	}

	// The system prompt goes first, then the user turn.
	if len(ta.chatter.last) != 2 {
		t.Fatalf("messages sent = %d, want 2", len(ta.chatter.last))
	}
	if ta.chatter.last[0].Role != "system" || !strings.Contains(ta.chatter.last[0].Content, "Taj Mahal") {
		t.Fatalf("system prompt missing site name: %+v", ta.chatter.last[0])
	}
	if ta.chatter.last[1].Role != "user" || ta.chatter.last[1].Content != "how tall is the dome?" {
		t.Fatalf("user turn = %+v", ta.chatter.last[1])
	}
}

func TestChatCarriesHistory(t *testing.T) {
	ta := newTestApp(t)

	body := `{"message":"and the minarets?","site_name":"Taj Mahal","site_id":"taj-mahal",` +
		`"history":[{"role":"user","content":"how tall is the dome?"},{"role":"assistant","content":"35 metres."}]}`
	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(body))
	rec := httptest.NewRecorder()
	ta.app.Chat(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if len(ta.chatter.last) != 4 {
		t.Fatalf("messages sent = %d, want system + 2 history + user", len(ta.chatter.last))
	}
	if ta.chatter.last[2].Role != "assistant" {
		t.Fatalf("history order lost: %+v", ta.chatter.last)
	}
}

func TestChatValidation(t *testing.T) {
	ta := newTestApp(t)

	cases := []struct {
		name string
		body string
	}{
		{"empty message", `{"message":"  ","site_name":"Taj Mahal"}`},
		{"missing message", `{"site_name":"Taj Mahal"}`},
		{"malformed json", `{"message":`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(tc.body))
			rec := httptest.NewRecorder()
			ta.app.Chat(rec, req)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rec.Code)
			}
		})
	}
}

func TestChatMapsLLMFailureToBadGateway(t *testing.T) {
	ta := newTestApp(t)
	ta.chatter.err = errUpstream

	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(`{"message":"hello"}`))
	rec := httptest.NewRecorder()
	ta.app.Chat(rec, req)

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "upstream") {
		t.Fatalf("body = %s, want upstream error code", rec.Body.String())
	}
}
