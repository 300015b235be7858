package utils

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// logger.go - настройка логирования
//
// Назначение:
// Инициализация структурированного логирования на базе zap.
//
// Поток журнала:
// - консоль: человекочитаемые строки с таймштампом
// - файл (опционально): тот же формат, дописывается в конец
//
// Каждая строка несёт таймштамп, уровень и сообщение - найденные сигналы,
// пропуски, retry и фатальные состояния попадают сюда с контекстом
// (код бумаги, причина).

// InitLogger создаёт и настраивает logger
//
// Параметры:
//   - level: debug, info, warn, error
//   - format: console (строки) или json
//   - logFile: путь к файлу журнала, "" отключает файловый вывод
func InitLogger(level, format, logFile string) (*zap.SugaredLogger, error) {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05")
	encCfg.EncodeLevel = zapcore.CapitalLevelEncoder

	var encoder zapcore.Encoder
	switch format {
	case "json":
		encoder = zapcore.NewJSONEncoder(encCfg)
	default:
		encoder = zapcore.NewConsoleEncoder(encCfg)
	}

	cores := []zapcore.Core{
		zapcore.NewCore(encoder, zapcore.Lock(os.Stdout), lvl),
	}

	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log file %s: %w", logFile, err)
		}
		cores = append(cores, zapcore.NewCore(encoder, zapcore.Lock(f), lvl))
	}

	logger := zap.New(zapcore.NewTee(cores...))
	return logger.Sugar(), nil
}

// NopLogger возвращает logger, отбрасывающий весь вывод (для тестов)
func NopLogger() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}
