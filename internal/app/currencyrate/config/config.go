package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config содержит все настройки Currency Rate Service
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Kafka     KafkaConfig
	Providers ProvidersConfig
	Sync      SyncConfig
	Log       LogConfig
}

// ServerConfig - настройки HTTP сервера
type ServerConfig struct {
	Port string // Порт HTTP сервера
}

// DatabaseConfig - настройки подключения к PostgreSQL
type DatabaseConfig struct {
	Host     string // Хост PostgreSQL
	Port     string // Порт PostgreSQL
	User     string // Имя пользователя БД
	Password string // Пароль БД
	DBName   string // Имя базы данных
	SSLMode  string // Режим SSL (disable/require/verify-full)
}

// RedisConfig - настройки подключения к Redis
// Используется для кэша курсов и рассчитанных цен с TTL
type RedisConfig struct {
	Host     string        // Хост Redis
	Port     string        // Порт Redis
	Password string        // Пароль Redis
	DB       int           // Номер БД Redis
	CacheTTL time.Duration // TTL кэша курсов и цен
}

// KafkaConfig - настройки Kafka для публикации событий обновления курсов
type KafkaConfig struct {
	Brokers []string // Список брокеров Kafka (формат: host:port)
	Topic   string   // Топик для событий курсов
	Enabled bool     // Публикация событий может быть выключена
}

// ProvidersConfig - настройки внешних API курсов валют.
// Базовые адреса переопределяются в тестах на httptest сервер
type ProvidersConfig struct {
	NBPBaseURL         string // Базовый URL API НБП
	FrankfurterBaseURL string // Базовый URL API Frankfurter
	TimeoutSec         int    // Таймаут HTTP запроса в секундах
}

// SyncConfig - настройки пакетного обновления курсов
type SyncConfig struct {
	CronSchedule string // Расписание обновления (стандартный 5-польный cron)
	Days         int    // Глубина истории при обновлении, в днях
}

// LogConfig - настройки логирования
type LogConfig struct {
	Level string // Уровень логирования (debug/info/warn/error)
}

// Load загружает конфигурацию из переменных окружения
func Load() (*Config, error) {
	ttlMinutes := getEnvInt("REDIS_CACHE_TTL_MINUTES", 60)

	return &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "8080"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "currencyrate_service"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
			CacheTTL: time.Duration(ttlMinutes) * time.Minute,
		},
		Kafka: KafkaConfig{
			Brokers: []string{getEnv("KAFKA_BROKERS", "localhost:9092")},
			Topic:   getEnv("KAFKA_TOPIC", "currency_rate_events"),
			Enabled: getEnvBool("KAFKA_ENABLED", true),
		},
		Providers: ProvidersConfig{
			NBPBaseURL:         getEnv("NBP_API_URL", "https://api.nbp.pl/api/exchangerates"),
			FrankfurterBaseURL: getEnv("FRANKFURTER_API_URL", "https://api.frankfurter.dev/v1"),
			TimeoutSec:         getEnvInt("PROVIDER_API_TIMEOUT", 15),
		},
		Sync: SyncConfig{
			// По умолчанию обновляем курсы каждые 6 часов
			CronSchedule: getEnv("CRON_REFRESH_RATES", "0 */6 * * *"),
			Days:         getEnvInt("SYNC_DAYS", 30),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}, nil
}

// DSN возвращает строку подключения к PostgreSQL в формате libpq
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// Address возвращает адрес Redis в формате host:port
func (c *RedisConfig) Address() string {
	return c.Host + ":" + c.Port
}

// getEnv получает значение переменной окружения или возвращает значение по умолчанию
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt получает значение переменной окружения как int
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvBool получает значение переменной окружения как bool
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
