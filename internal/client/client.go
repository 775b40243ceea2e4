// Package client submits an image and a question to the VQA endpoint and
// renders the outcome on a View, the way the upload form on the web page does.
package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
)

const (
	DefaultEndpoint = "http://localhost:3000/vqa"

	NoImageMessage = "Selecione uma imagem!"
	ErrorMessage   = "Error processing the request."

	imageField    = "image"
	questionField = "question"
)

var ErrNoImage = errors.New("no image selected")

// View is the surface a submission reports to.
type View interface {
	// Alert shows a blocking notice to the user.
	Alert(message string)
	// SetText replaces the text of the response area.
	SetText(text string)
}

type File struct {
	Name string
	Data []byte
}

// Form holds the two inputs of a submission. Image is nil when no file is selected.
type Form struct {
	Image    *File
	Question string
}

type answerResponse struct {
	Answer string `json:"answer"`
}

type Submitter struct {
	endpoint   string
	httpClient *http.Client
	logger     *log.Logger
	view       View
}

type Option func(*Submitter)

func WithHTTPClient(c *http.Client) Option {
	return func(s *Submitter) {
		s.httpClient = c
	}
}

func WithLogger(l *log.Logger) Option {
	return func(s *Submitter) {
		s.logger = l
	}
}

func NewSubmitter(endpoint string, view View, opts ...Option) *Submitter {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	s := &Submitter{
		endpoint:   endpoint,
		httpClient: http.DefaultClient,
		logger:     log.Default(),
		view:       view,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit sends the form and writes either "Answer: <answer>" or ErrorMessage
// to the view. Without an image it only raises an alert and sends nothing.
// The returned error is for the caller; the view never sees its details.
func (s *Submitter) Submit(ctx context.Context, form Form) error {
	if form.Image == nil {
		s.view.Alert(NoImageMessage)
		return ErrNoImage
	}

	answer, err := s.Ask(ctx, form)
	if err != nil {
		s.logger.Printf("vqa request failed: %v\n", err)
		s.view.SetText(ErrorMessage)
		return err
	}

	s.view.SetText(FormatAnswer(answer))
	return nil
}

// Ask performs the request and returns the raw answer.
func (s *Submitter) Ask(ctx context.Context, form Form) (string, error) {
	if form.Image == nil {
		return "", ErrNoImage
	}

	body, contentType, err := encodeForm(form)
	if err != nil {
		return "", fmt.Errorf("build form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", uuid.NewString())

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("bad status %d: %s",
			resp.StatusCode,
			strings.TrimSpace(string(b)),
		)
	}

	var data answerResponse
	if err := sonic.ConfigDefault.NewDecoder(resp.Body).Decode(&data); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	return data.Answer, nil
}

func FormatAnswer(answer string) string {
	return "Answer: " + answer
}

func encodeForm(form Form) (*bytes.Buffer, string, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile(imageField, form.Image.Name)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(form.Image.Data); err != nil {
		return nil, "", err
	}
	if err := writer.WriteField(questionField, form.Question); err != nil {
		return nil, "", err
	}
	if err := writer.Close(); err != nil {
		return nil, "", err
	}
	return body, writer.FormDataContentType(), nil
}
