package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gabriel-adutra/deploy-of-an-API-for-text-generation-from-images-using-an-LLM-and-Docker/internal/cache"
	"github.com/gabriel-adutra/deploy-of-an-API-for-text-generation-from-images-using-an-LLM-and-Docker/internal/config"
	"github.com/gabriel-adutra/deploy-of-an-API-for-text-generation-from-images-using-an-LLM-and-Docker/internal/handler"
	"github.com/gabriel-adutra/deploy-of-an-API-for-text-generation-from-images-using-an-LLM-and-Docker/internal/service"
	"github.com/joho/godotenv"
)

const version = "1.0.0"

// @title Visual Question Answering API
// @version 1.0.0
// @description Answers questions about uploaded images with a vision-language model.
// @BasePath /
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := log.Default()

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logger.Printf("failed to load .env: %v\n", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	answerer, err := newAnswerer(ctx, logger, cfg)
	if err != nil {
		log.Fatalf("answerer error: %v", err)
	}
	vqaService := service.NewVQAService(logger, answerer, cfg.VQA)

	if cfg.CacheEnable {
		redisCache := cache.NewRedisCache(
			cfg.RedisConfig.Addr,
			cfg.RedisConfig.Password,
			cfg.RedisConfig.DB,
			cfg.RedisConfig.TTL,
		)
		defer redisCache.Close()
		if err := redisCache.Ping(ctx); err != nil {
			logger.Printf("redis unreachable, answers will not be cached until it is: %v\n", err)
		}
		vqaService.SetCacheClient(redisCache)
		logger.Println("set redis as cache")
	}

	h := handler.NewVQAHandler(vqaService, version, cfg.Server.MaxUploadBytes)

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: handler.NewRouter(h, cfg.Server),
	}

	go func() {
		logger.Printf("server started :%s, provider %s, model %s\n", cfg.Server.Port, cfg.VQA.Provider, answerer.Model())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("listen error: %v", err)
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatalf("server forced to shutdown: %v", err)
	}
	logger.Println("server stopped")
}

func newAnswerer(ctx context.Context, logger *log.Logger, cfg *config.Config) (service.Answerer, error) {
	if cfg.VQA.Provider == config.ProviderGemini {
		return service.NewGeminiAnswerer(ctx, logger, cfg.Gemini, cfg.VQA.MaxAnswerWords)
	}
	return service.NewOpenAIAnswerer(logger, cfg.OpenAI, cfg.VQA.MaxAnswerWords), nil
}
