package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/gabriel-adutra/deploy-of-an-API-for-text-generation-from-images-using-an-LLM-and-Docker/internal/config"
	"github.com/gabriel-adutra/deploy-of-an-API-for-text-generation-from-images-using-an-LLM-and-Docker/internal/metrics"
	"github.com/gabriel-adutra/deploy-of-an-API-for-text-generation-from-images-using-an-LLM-and-Docker/internal/models"
)

var ErrStreamingUnsupported = errors.New("answerer does not support streaming")

type Cache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key string, value string) error
}

// Answerer produces a short answer to a question about a prepared image.
type Answerer interface {
	Model() string
	Answer(ctx context.Context, question string, img *PreparedImage) (string, error)
}

// StreamAnswerer is an Answerer that can emit the answer incrementally.
// onDelta returns false to stop the stream early.
type StreamAnswerer interface {
	Answerer
	AnswerStream(ctx context.Context, question string, img *PreparedImage, onDelta func(string) bool) error
}

type VQAService struct {
	logger      *log.Logger
	answerer    Answerer
	cache       Cache
	jpegQuality int
	maxPixels   int64
}

func NewVQAService(logger *log.Logger, answerer Answerer, cfg config.VQAConfig) *VQAService {
	return &VQAService{
		logger:      logger,
		answerer:    answerer,
		jpegQuality: cfg.JPEGQuality,
		maxPixels:   cfg.MaxPixels,
	}
}

func (s *VQAService) SetCacheClient(cache Cache) {
	s.cache = cache
}

func (s *VQAService) Model() string {
	return s.answerer.Model()
}

func (s *VQAService) Answer(ctx context.Context, req *models.VQARequest) (*models.VQAResponse, error) {
	key := s.cacheKey(req)
	if cached, ok := s.fromCache(ctx, key); ok {
		return &models.VQAResponse{Answer: cached}, nil
	}

	img, err := s.prepare(req)
	if err != nil {
		return nil, err
	}

	answer, err := s.answerer.Answer(ctx, req.Question, img)
	if err != nil {
		return nil, err
	}
	metrics.AnswersTotal(metrics.SourceModel)

	response := &models.VQAResponse{Answer: cleanAnswer(answer)}
	s.toCache(ctx, key, response.Answer)
	return response, nil
}

func (s *VQAService) AnswerStream(ctx context.Context, req *models.VQARequest) (<-chan models.StreamChunk, error) {
	ch := make(chan models.StreamChunk, 1)

	key := s.cacheKey(req)
	if cached, ok := s.fromCache(ctx, key); ok {
		ch <- models.StreamChunk{Answer: cached, Done: true}
		close(ch)
		return ch, nil
	}

	streamer, ok := s.answerer.(StreamAnswerer)
	if !ok {
		return nil, ErrStreamingUnsupported
	}

	img, err := s.prepare(req)
	if err != nil {
		return nil, err
	}

	go func() {
		defer close(ch)

		sendOrStop := func(msg models.StreamChunk) bool {
			select {
			case ch <- msg:
				return true
			case <-ctx.Done():
				return false
			}
		}

		var builder strings.Builder
		err := streamer.AnswerStream(ctx, req.Question, img, func(delta string) bool {
			builder.WriteString(delta)
			return sendOrStop(models.StreamChunk{Delta: delta})
		})
		if err != nil {
			sendOrStop(models.StreamChunk{Err: err})
			return
		}
		if ctx.Err() != nil {
			return
		}
		metrics.AnswersTotal(metrics.SourceModel)

		answer := cleanAnswer(builder.String())
		s.toCache(ctx, key, answer)
		sendOrStop(models.StreamChunk{Answer: answer, Done: true})
	}()

	return ch, nil
}

func (s *VQAService) prepare(req *models.VQARequest) (*PreparedImage, error) {
	s.logger.Printf("start preprocessing image: %s\n", req.FileName)
	defer s.logger.Printf("finish preprocessing image: %s\n", req.FileName)

	img, err := prepareImage(req.Image, s.jpegQuality, s.maxPixels)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare %s: %w", req.FileName, err)
	}
	return img, nil
}

func (s *VQAService) fromCache(ctx context.Context, key string) (string, bool) {
	if s.cache == nil {
		return "", false
	}
	cached, found, err := s.cache.Get(ctx, key)
	if err != nil {
		s.logger.Printf("cache get error: %v\n", err)
		return "", false
	}
	if found {
		s.logger.Println("served from cache")
		metrics.AnswersTotal(metrics.SourceCache)
	}
	return cached, found
}

func (s *VQAService) toCache(ctx context.Context, key, answer string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, key, answer); err != nil {
		s.logger.Printf("failed to set cache: %v\n", err)
	}
}

// cacheKey fingerprints the image bytes, the question and the model name.
func (s *VQAService) cacheKey(req *models.VQARequest) string {
	h := sha256.New()
	h.Write(req.Image)
	h.Write([]byte{0})
	h.Write([]byte(strings.TrimSpace(req.Question)))
	h.Write([]byte{0})
	h.Write([]byte(s.answerer.Model()))
	return hex.EncodeToString(h.Sum(nil))
}

func cleanAnswer(answer string) string {
	return strings.TrimSpace(answer)
}
