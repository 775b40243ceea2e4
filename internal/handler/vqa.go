package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/bytedance/sonic"
	"github.com/gabriel-adutra/deploy-of-an-API-for-text-generation-from-images-using-an-LLM-and-Docker/internal/models"
	"github.com/gabriel-adutra/deploy-of-an-API-for-text-generation-from-images-using-an-LLM-and-Docker/internal/service"
)

const (
	imageField    = "image"
	questionField = "question"

	multipartMemory = 8 << 20
)

type vqaService interface {
	Model() string
	Answer(ctx context.Context, req *models.VQARequest) (*models.VQAResponse, error)
	AnswerStream(ctx context.Context, req *models.VQARequest) (<-chan models.StreamChunk, error)
}

type VQAHandler struct {
	service        vqaService
	version        string
	maxUploadBytes int64
}

func NewVQAHandler(service vqaService, version string, maxUploadBytes int64) *VQAHandler {
	return &VQAHandler{
		service:        service,
		version:        version,
		maxUploadBytes: maxUploadBytes,
	}
}

// Info godoc
// @Summary API information
// @Description Service name, version, endpoints and usage of the VQA endpoint.
// @Tags info
// @Produce json
// @Success 200 {object} models.APIInfo
// @Router / [get]
func (h *VQAHandler) Info(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, models.NewAPIInfo(h.version, h.service.Model()))
}

// Answer godoc
// @Summary Answer a question about an image
// @Description Multipart upload of an image file and a question; returns a short answer.
// @Tags vqa
// @Accept multipart/form-data
// @Produce json
// @Param question formData string true "Question about the image"
// @Param image formData file true "Image file"
// @Success 200 {object} models.VQAResponse
// @Failure 400 {string} string
// @Failure 500 {string} string
// @Router /vqa [post]
func (h *VQAHandler) Answer(w http.ResponseWriter, r *http.Request) {
	req, status, err := h.readRequest(w, r)
	if err != nil {
		http.Error(w, err.Error(), status)
		return
	}

	resp, err := h.service.Answer(r.Context(), req)
	if err != nil {
		http.Error(w, fmt.Sprintf("service error: %s", err), serviceErrorStatus(err))
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// AnswerStream godoc
// @Summary Stream an answer about an image
// @Description Same input as /vqa; the answer is sent as server-sent events.
// @Tags vqa
// @Accept multipart/form-data
// @Produce text/event-stream
// @Param question formData string true "Question about the image"
// @Param image formData file true "Image file"
// @Success 200 {object} models.StreamChunk "Stream of answer deltas (SSE)"
// @Failure 400 {string} string
// @Failure 500 {string} string
// @Failure 501 {string} string
// @Router /vqa/stream [post]
func (h *VQAHandler) AnswerStream(w http.ResponseWriter, r *http.Request) {
	req, status, err := h.readRequest(w, r)
	if err != nil {
		http.Error(w, err.Error(), status)
		return
	}

	stream, err := h.service.AnswerStream(r.Context(), req)
	if err != nil {
		http.Error(w, fmt.Sprintf("service error: %s", err), serviceErrorStatus(err))
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	flusher := http.NewResponseController(w)

	for chunk := range stream {
		if chunk.Err != nil {
			fmt.Fprintf(w, "event: error\ndata: %v\n\n", chunk.Err)
			flusher.Flush()
			return
		}

		data, err := sonic.Marshal(chunk)
		if err != nil {
			fmt.Fprintf(w, "event: error\ndata: marshal error %v\n\n", err)
			flusher.Flush()
			return
		}

		fmt.Fprintf(w, "event: message\ndata: %s\n\n", data)
		flusher.Flush()

		if chunk.Done {
			fmt.Fprintf(w, "event: done\ndata: {}\n\n")
			flusher.Flush()
			return
		}
	}
}

func Health(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, "ok")
}

func (h *VQAHandler) readRequest(w http.ResponseWriter, r *http.Request) (*models.VQARequest, int, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, http.StatusRequestEntityTooLarge, fmt.Errorf("upload exceeds %d bytes", tooLarge.Limit)
		}
		return nil, http.StatusBadRequest, fmt.Errorf("invalid multipart form: %s", err)
	}

	file, header, err := r.FormFile(imageField)
	if err != nil {
		return nil, http.StatusBadRequest, fmt.Errorf("missing %q file: %s", imageField, err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, http.StatusBadRequest, fmt.Errorf("failed to read image: %s", err)
	}

	req := &models.VQARequest{
		Question:    r.FormValue(questionField),
		Image:       data,
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
	}
	if err := req.Validate(); err != nil {
		return nil, http.StatusBadRequest, fmt.Errorf("request validation failed: %s", err)
	}
	return req, 0, nil
}

func serviceErrorStatus(err error) int {
	switch {
	case errors.Is(err, service.ErrUnsupportedImage):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrStreamingUnsupported):
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := sonic.Marshal(v)
	if err != nil {
		http.Error(w, fmt.Sprintf("failed to encode: %s", err), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(data)
}
