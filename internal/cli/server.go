package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"vmm-exam-service/internal/app"
	"vmm-exam-service/internal/catalog"
	"vmm-exam-service/internal/config"
	"vmm-exam-service/internal/logger"
	transport "vmm-exam-service/internal/transport/http"
	"vmm-exam-service/internal/validator"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the exam server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := config.LoadOrDefault(configPath)
	if err != nil {
		return err
	}
	log := logger.Setup(cfg.Log.Level, cfg.Log.Format)

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg, log); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	be, err := openBackend(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer be.Close()

	rnd := app.NewRand(cfg.Exam.Seed)
	pol, err := buildPolicies(cfg, rnd)
	if err != nil {
		return err
	}

	results := app.NewResultStore(be.records, log)
	leaderboard := app.NewLeaderboardManager(be.records, rnd, log)
	exam := app.NewExamService(be.sessionStore(cfg), be.bankRepository(cfg), cfg.Questions.Bank, app.SessionDeps{
		Policy:           pol.exam,
		Results:          results,
		Validator:        validator.New(),
		Rand:             rnd,
		Duration:         config.TTLDuration(cfg.Exam.Duration, app.DefaultExamDuration),
		IdentifierPrefix: cfg.Exam.IdentifierPrefix,
		Log:              log,
	}, leaderboard)
	lookup := app.NewResultLookupService(results, leaderboard, pol.lookup, rnd, log)
	practice := app.NewPracticeService(catalog.PracticeBank(), pol.practice)

	api := transport.NewAPI(exam, lookup, leaderboard, practice, log)
	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      api.Router(cfg.CORS.AllowedOrigins),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("starting exam service")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("failed to start server")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Info().Msg("shutting down server...")
	case <-ctx.Done():
		log.Info().Msg("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
