package main

import (
	"context"
	"crypto/rand"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/csrf"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/taskwise/web/internal/config"
	"github.com/taskwise/web/internal/session"
	"github.com/taskwise/web/internal/taskwise"
	"github.com/taskwise/web/internal/web"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("web encerrada com erro")
	}
}

func run() error {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	var store session.Store = session.NewMemoryStore()
	if cfg.RedisURL != "" {
		redisOpts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("redis parse: %w", err)
		}
		redisClient := redis.NewClient(redisOpts)
		defer redisClient.Close()
		store = session.NewRedisStore(redisClient)
	} else {
		log.Warn().Msg("REDIS_URL ausente; sessões em memória não sobrevivem a restart")
	}

	sessions := session.NewManager(store, cfg.SessionTTL, cfg.Production)
	api := taskwise.NewFactory(cfg.APIBaseURL, cfg.DefaultTimezone)

	handler, err := web.NewRouter(cfg, sessions, api)
	if err != nil {
		return fmt.Errorf("router: %w", err)
	}

	protected := csrf.Protect(csrfKey(cfg), csrf.Secure(cfg.Production), csrf.Path("/"))(handler)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: protected,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Msgf("TaskWise web ouvindo em :%d", cfg.Port)
		errCh <- srv.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info().Str("signal", sig.String()).Msg("encerrando...")
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// csrfKey usa a chave do ambiente; sem ela (só fora de produção, o config
// barra o resto) gera uma aleatória por processo.
func csrfKey(cfg *config.Config) []byte {
	if cfg.CSRFKey != "" {
		return []byte(cfg.CSRFKey)
	}
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		log.Fatal().Err(err).Msg("falha ao gerar chave CSRF")
	}
	log.Warn().Msg("CSRF_KEY ausente; usando chave aleatória por processo")
	return key
}
