package service

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gabriel-adutra/deploy-of-an-API-for-text-generation-from-images-using-an-LLM-and-Docker/internal/config"
)

const completionJSON = `{
  "id": "chatcmpl-1",
  "object": "chat.completion",
  "created": 1700000000,
  "model": "vision-test",
  "choices": [{
    "index": 0,
    "finish_reason": "stop",
    "message": {"role": "assistant", "content": "two dogs"}
  }]
}`

func newTestOpenAI(t *testing.T, handler http.HandlerFunc) *OpenAIAnswerer {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewOpenAIAnswerer(log.New(io.Discard, "", 0), config.OpenAIConfig{
		APIKey:     "test-key",
		BaseURL:    srv.URL + "/v1/",
		Model:      "vision-test",
		MaxRetries: 0,
	}, 3)
}

func testPrepared() *PreparedImage {
	return &PreparedImage{Data: []byte{0xff, 0xd8, 0xff}, MIMEType: "image/jpeg", Format: PNG, Width: 1, Height: 1}
}

func TestOpenAIAnswer(t *testing.T) {
	var body string
	a := newTestOpenAI(t, func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("authorization = %q", got)
		}
		b, _ := io.ReadAll(r.Body)
		body = string(b)

		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, completionJSON)
	})

	answer, err := a.Answer(context.Background(), "how many dogs?", testPrepared())
	if err != nil {
		t.Fatalf("Answer() error = %v", err)
	}
	if answer != "two dogs" {
		t.Errorf("answer = %q", answer)
	}

	for _, want := range []string{
		`"model":"vision-test"`,
		"Question: how many dogs?",
		"data:image/jpeg;base64,/9j/",
		"at most 3 words",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("request body missing %q:\n%s", want, body)
		}
	}
}

func TestOpenAIAnswerError(t *testing.T) {
	a := newTestOpenAI(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		io.WriteString(w, `{"error":{"message":"bad image","type":"invalid_request_error"}}`)
	})

	if _, err := a.Answer(context.Background(), "q", testPrepared()); err == nil {
		t.Fatal("Answer() error = nil, want error")
	}
}

func TestOpenAIAnswerStream(t *testing.T) {
	a := newTestOpenAI(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		for _, d := range []string{"two", " dogs"} {
			fmt.Fprintf(w, "data: {\"id\":\"c1\",\"object\":\"chat.completion.chunk\",\"created\":1,\"model\":\"vision-test\",\"choices\":[{\"index\":0,\"delta\":{\"content\":%q}}]}\n\n", d)
		}
		io.WriteString(w, "data: [DONE]\n\n")
	})

	var got strings.Builder
	err := a.AnswerStream(context.Background(), "how many?", testPrepared(), func(delta string) bool {
		got.WriteString(delta)
		return true
	})
	if err != nil {
		t.Fatalf("AnswerStream() error = %v", err)
	}
	if got.String() != "two dogs" {
		t.Errorf("streamed = %q", got.String())
	}
}
