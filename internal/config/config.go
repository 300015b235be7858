package config

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"time"
)

// Config содержит всю конфигурацию приложения
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Provider ProviderConfig
	Monitor  MonitorConfig
	Security SecurityConfig
	Logging  LoggingConfig
}

// ServerConfig - настройки HTTP сервера (API, /metrics, /ws/stream)
type ServerConfig struct {
	Port int
	Host string
}

// DatabaseConfig - настройки подключения к БД
//
// БД опциональна: при Enabled=false позиции живут только в памяти процесса,
// журнал уведомлений не ведётся.
type DatabaseConfig struct {
	Enabled  bool
	Driver   string
	Host     string
	Port     int
	Name     string
	User     string
	Password string
	SSLMode  string
}

// ProviderConfig - настройки клиента поставщика рыночных данных
type ProviderConfig struct {
	BaseURL        string        // базовый URL HTTP API поставщика
	RequestTimeout time.Duration // таймаут одного запроса
	RateLimit      float64       // запросов в секунду к поставщику
	RateBurst      int           // размер burst для лимитера
}

// MonitorConfig - параметры ядра сканирования и сопровождения позиций
type MonitorConfig struct {
	// Пороги решающего правила
	PulseThreshold float64 // минимальный импульс акции между циклами (доля, 0.015 = 1.5%)
	MinBondChange  float64 // изменение облигации ниже этого считается отставанием (доля)

	// Стоп-правила для позиций
	StopProfit float64 // фиксация прибыли при pnl >= порога (доля)
	StopLoss   float64 // ограничение убытка при pnl <= порога (отрицательная доля)

	// Цикл опроса
	CheckInterval time.Duration // пауза между циклами
	MaxWorkers    int           // ширина пула оценки пар

	// Retry для минутных данных
	RetryTimes int
	RetryDelay time.Duration

	// Торговые сессии: утро 09:30-11:30, день 13:00 - SessionEndHour
	SessionEndHour int

	// Кэш цен базовых акций
	CacheShards int

	// Файл наблюдения и файл журнала
	WatchlistFile string
	LogFile       string

	// Сколько последних сигналов держать для API
	OpportunityBuffer int
}

// SecurityConfig - настройки безопасности API
type SecurityConfig struct {
	// bcrypt-хэш токена для Authorization: Bearer.
	// Пустое значение отключает аутентификацию (режим разработки).
	APITokenHash string
}

// LoggingConfig - настройки логирования
type LoggingConfig struct {
	Level  string
	Format string
}

// Load загружает конфигурацию из переменных окружения
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port: getEnvAsInt("SERVER_PORT", 8080),
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
		},
		Database: DatabaseConfig{
			Enabled:  getEnvAsBool("DB_ENABLED", false),
			Driver:   getEnv("DB_DRIVER", "postgres"),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			Name:     getEnv("DB_NAME", "bondmonitor"),
			User:     getEnv("DB_USER", "user"),
			Password: getEnv("DB_PASSWORD", "password"),
			SSLMode:  getEnv("DB_SSL_MODE", "disable"),
		},
		Provider: ProviderConfig{
			BaseURL:        getEnv("PROVIDER_BASE_URL", "http://localhost:9000"),
			RequestTimeout: getEnvAsDuration("PROVIDER_TIMEOUT", 10*time.Second),
			RateLimit:      getEnvAsFloat("PROVIDER_RATE_LIMIT", 5),
			RateBurst:      getEnvAsInt("PROVIDER_RATE_BURST", 5),
		},
		Monitor: MonitorConfig{
			PulseThreshold: getEnvAsFloat("PULSE_THRESHOLD", 0.015),
			MinBondChange:  getEnvAsFloat("MIN_BOND_CHANGE", 0.005),
			StopProfit:     getEnvAsFloat("STOP_PROFIT", 0.008),
			StopLoss:       getEnvAsFloat("STOP_LOSS", -0.005),

			CheckInterval: getEnvAsDuration("CHECK_INTERVAL", 30*time.Second),
			MaxWorkers:    getEnvAsInt("MAX_WORKERS", 10),

			RetryTimes: getEnvAsInt("RETRY_TIMES", 3),
			RetryDelay: getEnvAsDuration("RETRY_DELAY", 2*time.Second),

			SessionEndHour: getEnvAsInt("SESSION_END_HOUR", 15),

			CacheShards: getEnvAsInt("CACHE_SHARDS", 16),

			WatchlistFile: getEnv("WATCHLIST_FILE", "watchlist.json"),
			LogFile:       getEnv("LOG_FILE", "monitor.log"),

			OpportunityBuffer: getEnvAsInt("OPPORTUNITY_BUFFER", 100),
		},
		Security: SecurityConfig{
			APITokenHash: getEnv("API_TOKEN_HASH", ""),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "console"),
		},
	}

	if err := cfg.validateRanges(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validateRanges проверяет числовые диапазоны параметров.
// Конфигурация неизменяема после загрузки, поэтому все инварианты
// проверяются здесь один раз.
func (c *Config) validateRanges() error {
	// Валидация портов
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}

	if c.Database.Enabled && (c.Database.Port < 1 || c.Database.Port > 65535) {
		return fmt.Errorf("DB_PORT must be between 1 and 65535, got %d", c.Database.Port)
	}

	// Пороги должны быть конечными числами
	for name, v := range map[string]float64{
		"PULSE_THRESHOLD": c.Monitor.PulseThreshold,
		"MIN_BOND_CHANGE": c.Monitor.MinBondChange,
		"STOP_PROFIT":     c.Monitor.StopProfit,
		"STOP_LOSS":       c.Monitor.StopLoss,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%s must be a finite number, got %v", name, v)
		}
	}

	if c.Monitor.PulseThreshold <= 0 {
		return fmt.Errorf("PULSE_THRESHOLD must be positive, got %v", c.Monitor.PulseThreshold)
	}

	if c.Monitor.MinBondChange < 0 {
		return fmt.Errorf("MIN_BOND_CHANGE cannot be negative, got %v", c.Monitor.MinBondChange)
	}

	if c.Monitor.StopProfit <= 0 {
		return fmt.Errorf("STOP_PROFIT must be positive, got %v", c.Monitor.StopProfit)
	}

	if c.Monitor.StopLoss >= 0 {
		return fmt.Errorf("STOP_LOSS must be negative, got %v", c.Monitor.StopLoss)
	}

	// Валидация цикла опроса
	if c.Monitor.CheckInterval <= 0 {
		return fmt.Errorf("CHECK_INTERVAL must be positive, got %v", c.Monitor.CheckInterval)
	}

	if c.Monitor.MaxWorkers < 1 {
		return fmt.Errorf("MAX_WORKERS must be at least 1, got %d", c.Monitor.MaxWorkers)
	}

	// Валидация retry параметров
	if c.Monitor.RetryTimes < 0 {
		return fmt.Errorf("RETRY_TIMES cannot be negative, got %d", c.Monitor.RetryTimes)
	}

	if c.Monitor.RetryDelay < 0 {
		return fmt.Errorf("RETRY_DELAY cannot be negative, got %v", c.Monitor.RetryDelay)
	}

	// Дневная сессия начинается в 13:00, заканчиваться должна позже
	if c.Monitor.SessionEndHour < 14 || c.Monitor.SessionEndHour > 23 {
		return fmt.Errorf("SESSION_END_HOUR must be between 14 and 23, got %d", c.Monitor.SessionEndHour)
	}

	if c.Monitor.CacheShards < 1 {
		return fmt.Errorf("CACHE_SHARDS must be at least 1, got %d", c.Monitor.CacheShards)
	}

	if c.Monitor.OpportunityBuffer < 1 {
		return fmt.Errorf("OPPORTUNITY_BUFFER must be at least 1, got %d", c.Monitor.OpportunityBuffer)
	}

	if c.Monitor.WatchlistFile == "" {
		return fmt.Errorf("WATCHLIST_FILE cannot be empty")
	}

	// Валидация провайдера
	if c.Provider.BaseURL == "" {
		return fmt.Errorf("PROVIDER_BASE_URL cannot be empty")
	}

	if c.Provider.RequestTimeout <= 0 {
		return fmt.Errorf("PROVIDER_TIMEOUT must be positive, got %v", c.Provider.RequestTimeout)
	}

	if c.Provider.RateLimit <= 0 {
		return fmt.Errorf("PROVIDER_RATE_LIMIT must be positive, got %v", c.Provider.RateLimit)
	}

	if c.Provider.RateBurst < 1 {
		return fmt.Errorf("PROVIDER_RATE_BURST must be at least 1, got %d", c.Provider.RateBurst)
	}

	return nil
}

// DSN возвращает строку подключения к базе данных
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

// DSNWithoutPassword возвращает строку подключения без пароля (для логирования)
func (d DatabaseConfig) DSNWithoutPassword() string {
	return fmt.Sprintf("host=%s port=%d user=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Name, d.SSLMode)
}

// Вспомогательные функции для чтения переменных окружения

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
