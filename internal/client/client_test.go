package client

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
)

var testImage = &File{Name: "cat.png", Data: []byte("\x89PNG fake image bytes")}

func quietLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func TestSubmitShowsAnswer(t *testing.T) {
	var (
		mu                       sync.Mutex
		gotQuestion, gotFileName string
		gotImage                 []byte
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
			return
		}
		gotQuestion = r.FormValue("question")
		f, h, err := r.FormFile("image")
		if err != nil {
			t.Errorf("form file: %v", err)
			return
		}
		defer f.Close()
		gotFileName = h.Filename
		gotImage, _ = io.ReadAll(f)
		if r.Header.Get("X-Request-Id") == "" {
			t.Error("missing X-Request-Id header")
		}

		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"answer":"X"}`)
	}))
	defer srv.Close()

	view := &RecordingView{}
	s := NewSubmitter(srv.URL, view, WithLogger(quietLogger()))

	if err := s.Submit(context.Background(), Form{Image: testImage, Question: "what is it?"}); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if got, want := view.Text(), "Answer: X"; got != want {
		t.Errorf("text = %q, want %q", got, want)
	}
	if gotQuestion != "what is it?" {
		t.Errorf("question = %q", gotQuestion)
	}
	if gotFileName != "cat.png" {
		t.Errorf("file name = %q", gotFileName)
	}
	if string(gotImage) != string(testImage.Data) {
		t.Errorf("image bytes = %q", gotImage)
	}
	if len(view.Alerts()) != 0 {
		t.Errorf("unexpected alerts: %v", view.Alerts())
	}
}

func TestSubmitFailuresShowFixedMessage(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "boom", http.StatusInternalServerError)
			},
		},
		{
			name: "bad request",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "missing image", http.StatusBadRequest)
			},
		},
		{
			name: "not json",
			handler: func(w http.ResponseWriter, r *http.Request) {
				io.WriteString(w, "<html>oops</html>")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			view := &RecordingView{}
			err := NewSubmitter(srv.URL, view, WithLogger(quietLogger())).
				Submit(context.Background(), Form{Image: testImage, Question: "q"})
			if err == nil {
				t.Fatal("Submit() error = nil, want error")
			}
			if got := view.Text(); got != ErrorMessage {
				t.Errorf("text = %q, want %q", got, ErrorMessage)
			}
		})
	}
}

func TestSubmitNetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	view := &RecordingView{}
	err := NewSubmitter(url, view, WithLogger(quietLogger())).
		Submit(context.Background(), Form{Image: testImage, Question: "q"})
	if err == nil {
		t.Fatal("Submit() error = nil, want error")
	}
	if got := view.Text(); got != ErrorMessage {
		t.Errorf("text = %q, want %q", got, ErrorMessage)
	}
}

func TestSubmitWithoutImage(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer srv.Close()

	view := &RecordingView{}
	view.SetText("previous")
	err := NewSubmitter(srv.URL, view, WithLogger(quietLogger())).
		Submit(context.Background(), Form{Question: "anything"})

	if !errors.Is(err, ErrNoImage) {
		t.Fatalf("Submit() error = %v, want ErrNoImage", err)
	}
	if n := calls.Load(); n != 0 {
		t.Errorf("server got %d requests, want 0", n)
	}
	alerts := view.Alerts()
	if len(alerts) != 1 || alerts[0] != NoImageMessage {
		t.Errorf("alerts = %v, want [%q]", alerts, NoImageMessage)
	}
	if view.Text() != "previous" {
		t.Errorf("text changed to %q", view.Text())
	}
}

func TestSubmitMissingAnswerField(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{}`)
	}))
	defer srv.Close()

	view := &RecordingView{}
	if err := NewSubmitter(srv.URL, view).Submit(context.Background(), Form{Image: testImage}); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if got := view.Text(); got != "Answer: " {
		t.Errorf("text = %q, want %q", got, "Answer: ")
	}
}

func TestNewSubmitterDefaultEndpoint(t *testing.T) {
	s := NewSubmitter("", &RecordingView{})
	if s.endpoint != DefaultEndpoint {
		t.Errorf("endpoint = %q, want %q", s.endpoint, DefaultEndpoint)
	}
}

func TestOpenFile(t *testing.T) {
	f, err := OpenFile("")
	if err != nil || f != nil {
		t.Fatalf("OpenFile(\"\") = %v, %v; want nil, nil", f, err)
	}

	path := filepath.Join(t.TempDir(), "photo.jpg")
	if err := os.WriteFile(path, []byte("jpeg"), 0o600); err != nil {
		t.Fatal(err)
	}
	f, err = OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile() error = %v", err)
	}
	if f.Name != "photo.jpg" || string(f.Data) != "jpeg" {
		t.Errorf("OpenFile() = %+v", f)
	}

	if _, err := OpenFile(filepath.Join(t.TempDir(), "missing.png")); err == nil {
		t.Error("OpenFile(missing) error = nil")
	}
}
