package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"ISSNotifier/internal/config"
	"ISSNotifier/internal/domain"
	"ISSNotifier/internal/infrastructure/mail"
	"ISSNotifier/internal/infrastructure/opennotify"
	"ISSNotifier/internal/infrastructure/scheduler"
	"ISSNotifier/internal/infrastructure/sunrise"
	"ISSNotifier/internal/logging"
	"ISSNotifier/internal/metrics"
	"ISSNotifier/internal/ports"
	"ISSNotifier/internal/sky"
	"ISSNotifier/internal/usecase"
)

const defaultRequestTimeout = 10 * time.Second

// Application wires configs to the watcher and the optional metrics endpoint.
type Application struct {
	cfg     config.Config
	watcher *usecase.Watcher
	server  *http.Server
	logger  *slog.Logger
}

// New builds a runnable application instance.
func New(cfg config.Config, baseLogger *slog.Logger) *Application {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	position := opennotify.NewClient(
		cfg.Position.URL,
		httpClient(cfg.Position.Timeout),
		baseLogger.With("component", "position"),
	)

	night := sky.NewNightDeterminer(
		newSunTimesSource(cfg.SunTimes, baseLogger.With("component", "suntimes")),
		sky.HourClock(strings.ToLower(cfg.SunTimes.HourClock)),
		baseLogger.With("component", "night"),
	)

	sender := mail.NewSMTPSender(mail.SMTPConfig{
		Host:     cfg.Mail.Host,
		Port:     cfg.Mail.Port,
		Username: cfg.Mail.Username,
		Password: cfg.Mail.Password,
		StartTLS: cfg.Mail.StartTLS,
		Timeout:  cfg.Mail.Timeout,
	})
	notifier := mail.NewNotifier(sender, mail.Message{
		From:    cfg.Mail.From,
		To:      cfg.Mail.Recipient,
		Subject: cfg.Mail.Subject,
		Body:    cfg.Mail.Body,
	}, baseLogger.With("component", "notifier"))

	watcher := usecase.NewWatcher(usecase.WatcherDeps{
		Position: position,
		Night:    night,
		Notifier: notifier,
		Sleeper:  scheduler.NewTimerSleeper(),
		Logger:   baseLogger.With("component", "watcher"),
	}, usecase.WatcherSettings{
		Observer: domain.Coordinates{
			Latitude:  cfg.Observer.Latitude,
			Longitude: cfg.Observer.Longitude,
		},
		Tolerance:    cfg.Loop.ToleranceDegrees,
		PollInterval: cfg.Loop.PollInterval,
		Cooldown:     cfg.Loop.Cooldown,
		RetryDelay:   cfg.Loop.RetryDelay,
	})

	application := &Application{cfg: cfg, watcher: watcher, logger: baseLogger}
	if cfg.Metrics.ListenAddr != "" {
		application.server = &http.Server{
			Addr:              cfg.Metrics.ListenAddr,
			Handler:           newMux(),
			ReadHeaderTimeout: 5 * time.Second,
		}
	}
	return application
}

func newSunTimesSource(cfg config.SunTimesConfig, logger *slog.Logger) ports.SunTimesSource {
	if cfg.Provider == config.ProviderLocal {
		return sunrise.NewLocal()
	}
	return sunrise.NewClient(cfg.URL, httpClient(cfg.Timeout), logger)
}

func httpClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	return &http.Client{Timeout: timeout}
}

func newMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	mux.HandleFunc("/healthz", healthz)
	return mux
}

// healthz returns 200 "ok\n" unconditionally.
func healthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok\n"))
}

// Run polls until ctx is cancelled.
func (a *Application) Run(ctx context.Context) error {
	if a.watcher == nil {
		return nil
	}

	if a.server != nil {
		go func() {
			a.logger.Info("metrics endpoint listening", "addr", a.server.Addr)
			if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				a.logger.Error("metrics endpoint stopped", "error", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := a.server.Shutdown(shutdownCtx); err != nil {
				a.logger.Warn("metrics endpoint shutdown", "error", err)
			}
		}()
	}

	if err := a.watcher.Run(ctx); err != nil {
		return fmt.Errorf("watcher: %w", err)
	}
	return nil
}
