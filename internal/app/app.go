package app

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/lqnhat/chatcore/internal/config"
	"github.com/lqnhat/chatcore/internal/repo/events"
	"github.com/lqnhat/chatcore/internal/repo/mongodb"
	"github.com/lqnhat/chatcore/internal/server"
	"github.com/lqnhat/chatcore/internal/server/ws"
	"github.com/lqnhat/chatcore/internal/usecase"
)

func Invoke(funcs ...any) *fx.App {
	conf := config.MustLoad()
	log := newLogger(conf)
	log.Debugw("config loaded", "addr", conf.Server.Addr, "database", conf.Database.Database)
	return fx.New(
		fx.WithLogger(func() fxevent.Logger {
			l := &fxevent.ZapLogger{
				Logger: log.Desugar(),
			}
			l.UseLogLevel(zapcore.DebugLevel)
			return l
		}),
		fx.Provide(
			newMongoDB,

			server.NewController,
			server.NewUserController,
			server.NewChatController,

			ws.NewHub,
			ws.NewBroadcaster,
			ws.NewHandler,

			events.NewPublisher,

			usecase.NewUserUsecase,
			usecase.NewPresenceUsecase,
			usecase.NewTypingUsecase,
			usecase.NewConversationUsecase,
			usecase.NewMessageUsecase,

			mongodb.NewUserRepository,
			mongodb.NewConversationRepository,
			mongodb.NewMessageRepository,
			mongodb.NewPresenceRepository,
			mongodb.NewTypingRepository,
		),
		fx.Supply(conf, log),
		fx.Invoke(EnsureIndexes),
		fx.Invoke(funcs...),
	)
}

func newLogger(conf *config.Config) *zap.SugaredLogger {
	level, err := zapcore.ParseLevel(conf.Log.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	logger, err := cfg.Build()
	if err != nil {
		panic(err)
	}
	return logger.Sugar()
}

// EnsureIndexes creates the collection indexes before the server accepts
// traffic. The unique indexes back the upsert-based dedup paths, so the
// app must not start without them.
func EnsureIndexes(lc fx.Lifecycle, db *mongodb.DB) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return mongodb.EnsureIndexes(ctx, db)
		},
	})
}
