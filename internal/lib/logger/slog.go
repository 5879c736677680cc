package logger

import (
	"log/slog"
	"os"
	"strings"
)

// New создаёт и настраивает новый экземпляр slog.Logger
// уровень и формат логирования определяются строковыми параметрами из конфига
func New(levelStr, format string) *slog.Logger {
	var level slog.Level

	// преобразуем строковый уровень из конфига в slog.Level
	switch strings.ToUpper(levelStr) {
	case "DEBUG":
		level = slog.LevelDebug
	case "INFO":
		level = slog.LevelInfo
	case "WARN":
		level = slog.LevelWarn
	case "ERROR":
		level = slog.LevelError
	default:
		// по умолчанию используем INFO, если в конфиге указано что-то некорректное
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		AddSource: true, // нужно, чтобы видеть файл и строку, откуда был вызов лога
		Level:     level,
	}

	// json для продакшена, text для локальной разработки
	var handler slog.Handler
	if strings.EqualFold(format, "json") {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}
