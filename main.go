package main

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/hanzi-game/internal/config"
	"github.com/robalobadob/hanzi-game/internal/db"
	"github.com/robalobadob/hanzi-game/internal/history"
	"github.com/robalobadob/hanzi-game/internal/httpserver"
	"github.com/robalobadob/hanzi-game/internal/kv"
	"github.com/robalobadob/hanzi-game/internal/metrics"
	"github.com/robalobadob/hanzi-game/internal/prefs"
	"github.com/robalobadob/hanzi-game/internal/progress"
	"github.com/robalobadob/hanzi-game/internal/store"
	"github.com/robalobadob/hanzi-game/internal/users"
	"github.com/robalobadob/hanzi-game/internal/words"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	catalog, err := words.Load(cfg.WordsFile, cfg.LevelsFile)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load word catalog")
	}
	nWords, nLevels := catalog.Stats()
	log.Info().Int("words", nWords).Int("levels", nLevels).Msg("catalog loaded")

	conn, err := db.Open(cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.DBDriver).Msg("open database")
	}
	defer conn.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := db.Migrate(ctx, conn); err != nil {
		log.Fatal().Err(err).Msg("migrate")
	}
	cancel()

	records := openKV(cfg, conn)
	m := metrics.New()
	sessions := store.NewMemoryStore()
	sweeper := store.NewSweeper(sessions, cfg.SessionIdleTTL, m.SetActive)
	if err := sweeper.Start(cfg.SweepInterval()); err != nil {
		log.Fatal().Err(err).Msg("start session sweeper")
	}
	defer sweeper.Stop()

	srv := httpserver.New(cfg, httpserver.Deps{
		Catalog:  catalog,
		Sessions: sessions,
		Progress: progress.NewService(records, progress.NewTracker(catalog, time.Local), nil),
		Prefs:    prefs.NewStore(records),
		Users:    users.NewRepo(conn),
		History:  history.NewRepo(conn),
		Metrics:  m,
	})
	log.Info().Str("port", cfg.Port).Str("kv", cfg.KVBackend).Msg("starting hanzi server")
	if err := srv.Start(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

// openKV selects the record store backing progress and preferences.
func openKV(cfg config.Config, conn *sqlx.DB) kv.Store {
	switch cfg.KVBackend {
	case "memory":
		log.Warn().Msg("KV_BACKEND=memory: progress is lost on restart")
		return kv.NewMemory()
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Ping(ctx).Err(); err != nil {
			log.Fatal().Err(err).Str("addr", cfg.RedisAddr).Msg("connect redis")
		}
		return kv.NewRedis(client, "hanzi:")
	default:
		return kv.NewSQL(conn)
	}
}
