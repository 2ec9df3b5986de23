package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"scramble-game-service/internal/app"
	"scramble-game-service/internal/config"
	"scramble-game-service/internal/domain"
	"scramble-game-service/internal/infra/memory"
	"scramble-game-service/internal/infra/postgres"
	infraredis "scramble-game-service/internal/infra/redis"
	"scramble-game-service/internal/jobs"
	transport "scramble-game-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the scramble game server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
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

	var redisClient *goredis.Client
	if cfg.Redis.Addr != "" {
		redisClient = goredis.NewClient(&goredis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}
	redisTTL := config.TTLDuration(cfg.Redis.TTL, 10*time.Minute)

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
	}

	seenCapacity := cfg.SeenCapacity()
	sentenceCapacity := cfg.Game.SentenceSeenCapacity
	if sentenceCapacity <= 0 {
		sentenceCapacity = seenCapacity
	}

	var seen app.SeenStore
	if redisClient != nil {
		seen = infraredis.NewSeenStore(redisClient, seenCapacity).
			WithModeCapacity(domain.ModeSentence, sentenceCapacity)
	} else {
		seen = memory.NewSeenStore(seenCapacity).
			WithModeCapacity(domain.ModeSentence, sentenceCapacity)
	}

	var loader memory.QuestionLoader = memory.NewStaticQuestionLoader(sampleQuestions())
	if pool != nil {
		loader = postgres.NewQuestionLoader(pool)
	}

	questionTTL := config.TTLDuration(cfg.Questions.TTL, 10*time.Minute)
	var questions app.QuestionRepository
	if redisClient != nil {
		questions = infraredis.NewQuestionRepository(redisClient, loader, questionTTL)
	} else {
		questions = memory.NewQuestionRepository(loader, questionTTL)
	}

	var rounds app.RoundStore = memory.NewRoundStore()
	if redisClient != nil {
		rounds = infraredis.NewRoundStore(rounds, redisClient, redisTTL)
	}

	var scores app.ScoreLog = memory.NewScoreLog()
	if pool != nil {
		scores = postgres.NewScoreLog(pool)
	}

	selector := app.NewContentSelector(questions, seen)
	ranking := app.NewRankingEngine(memory.NewLeaderboardStore())
	service := app.NewRoundService(rounds, selector, app.NewScrambleEngine(), ranking, scores)
	if redisClient != nil {
		service = service.WithAchievements(infraredis.NewAchievementPublisher(redisClient))
	}

	scheduler := jobs.NewScheduler(
		rounds,
		ranking,
		config.TTLDuration(cfg.Game.RoundTimeout, config.DefaultRoundTimeout),
		config.TTLDuration(cfg.Game.SweepInterval, config.DefaultSweepInterval),
		config.TTLDuration(cfg.Game.RecomputeInterval, config.DefaultRecomputeInterval),
		logger.With().Str("component", "jobs").Logger(),
	)

	jobCtx, stopJobs := context.WithCancel(ctx)
	defer stopJobs()
	go scheduler.Run(jobCtx)

	wsHandler := transport.NewWSHandler(service, logger.With().Str("component", "ws").Logger())

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/ws", wsHandler.ServeWS)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		logger.Info().Str("port", finalPort).Msg("starting scramble game service")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("failed to start server")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		logger.Info().Msg("shutting down server")
	case <-ctx.Done():
		logger.Info().Msg("context canceled, shutting down server")
	}
	stopJobs()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// sampleQuestions provides a minimal catalog for running without Postgres;
// production deployments load the catalog from the questions table.
func sampleQuestions() []domain.Question {
	return []domain.Question{
		{
			ID:         "idiom-easy-1",
			Mode:       domain.ModeIdiom,
			Difficulty: domain.DifficultyEasy,
			Text:       "一心一意",
			Meta: domain.QuestionMeta{
				Definition: "wholeheartedly, with single-minded devotion",
				Pinyin:     "yī xīn yī yì",
				Example:    "他一心一意地工作。",
			},
		},
		{
			ID:         "idiom-easy-2",
			Mode:       domain.ModeIdiom,
			Difficulty: domain.DifficultyEasy,
			Text:       "四面八方",
			Meta: domain.QuestionMeta{
				Definition: "from all directions",
				Pinyin:     "sì miàn bā fāng",
				Example:    "客人从四面八方赶来。",
			},
		},
		{
			ID:         "sentence-easy-1",
			Mode:       domain.ModeSentence,
			Difficulty: domain.DifficultyEasy,
			Text:       "我喜欢苹果",
			Tokens:     []string{"我", "喜欢", "苹果"},
			Meta: domain.QuestionMeta{
				Definition:  "I like apples",
				GrammarNote: "subject + verb + object",
			},
		},
		{
			ID:         "sentence-easy-2",
			Mode:       domain.ModeSentence,
			Difficulty: domain.DifficultyEasy,
			Text:       "他在学校学习中文",
			Tokens:     []string{"他", "在", "学校", "学习", "中文"},
			Meta: domain.QuestionMeta{
				Definition:  "He studies Chinese at school",
				GrammarNote: "subject + location phrase + verb + object",
			},
		},
	}
}
