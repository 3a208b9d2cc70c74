package logger

import (
	"log/slog"
	"os"

	"github.com/fatih/color"

	"github.com/linemk/ecommerce-api/internal/lib/logger/handlers/slogpretty"
)

const (
	EnvLocal = "local"
	EnvDev   = "dev"
	EnvProd  = "prod"
)

// SetupLogger выбирает обработчик логов по окружению: локально — цветной
// человекочитаемый вывод, в dev — JSON с debug-уровнем, иначе JSON с info.
func SetupLogger(env string) *slog.Logger {
	switch env {
	case EnvLocal:
		return setupPrettySlog()
	case EnvDev:
		return slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	default:
		return slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	}
}

func setupPrettySlog() *slog.Logger {
	color.NoColor = false

	opts := slogpretty.PrettyHandlerOptions{
		SlogOpts: &slog.HandlerOptions{
			Level: slog.LevelDebug,
		},
	}

	return slog.New(opts.NewPrettyHandler(os.Stdout))
}
