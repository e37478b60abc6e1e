package config

import (
	"errors"
	"fmt"
	"os"
	"time"
	_ "time/tzdata"

	"github.com/BurntSushi/toml"

	"github.com/m04kA/SMC-BarberService/internal/domain"
	"github.com/m04kA/SMC-BarberService/pkg/types"
)

var ErrInvalidConfig = errors.New("invalid config")

// Config конфигурация сервиса
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Database DatabaseConfig `toml:"database"`
	Logs     LogsConfig     `toml:"logs"`
	Metrics  MetricsConfig  `toml:"metrics"`
	Redis    RedisConfig    `toml:"redis"`
	Business BusinessConfig `toml:"business"`
	Bot      BotConfig      `toml:"bot"`
	WhatsApp WhatsAppConfig `toml:"whatsapp"`
	Calendar CalendarConfig `toml:"calendar"`
}

type ServerConfig struct {
	HTTPPort        int `toml:"http_port"`
	ReadTimeout     int `toml:"read_timeout"`
	WriteTimeout    int `toml:"write_timeout"`
	IdleTimeout     int `toml:"idle_timeout"`
	ShutdownTimeout int `toml:"shutdown_timeout"`
}

type DatabaseConfig struct {
	Host            string `toml:"host"`
	Port            int    `toml:"port"`
	User            string `toml:"user"`
	Password        string `toml:"password"`
	DBName          string `toml:"dbname"`
	SSLMode         string `toml:"sslmode"`
	MaxOpenConns    int    `toml:"max_open_conns"`
	MaxIdleConns    int    `toml:"max_idle_conns"`
	ConnMaxLifetime int    `toml:"conn_max_lifetime"`
}

// DSN строка подключения для lib/pq
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode)
}

type LogsConfig struct {
	File       string `toml:"file"`
	Level      string `toml:"level"`
	MaxSizeMB  int    `toml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups"`
	MaxAgeDays int    `toml:"max_age_days"`
	Compress   bool   `toml:"compress"`
}

type MetricsConfig struct {
	Enabled     bool   `toml:"enabled"`
	Path        string `toml:"path"`
	ServiceName string `toml:"service_name"`
}

// RedisConfig если выключен, блокировки по телефону живут в памяти процесса
type RedisConfig struct {
	Enabled   bool   `toml:"enabled"`
	Addr      string `toml:"addr"`
	Password  string `toml:"password"`
	DB        int    `toml:"db"`
	PoolSize  int    `toml:"pool_size"`
	KeyPrefix string `toml:"key_prefix"`
}

// BusinessConfig параметры заведения (один часовой пояс, одно обеденное окно для всех)
type BusinessConfig struct {
	Name               string `toml:"name"`
	Address            string `toml:"address"`
	Timezone           string `toml:"timezone"`
	LunchStart         string `toml:"lunch_start"`
	LunchEnd           string `toml:"lunch_end"`
	DefaultSlotMinutes int    `toml:"default_slot_minutes"`
	DefaultPhoneRegion string `toml:"default_phone_region"`
	TrackingCodePrefix string `toml:"tracking_code_prefix"`
}

// Location часовой пояс заведения
func (b BusinessConfig) Location() (*time.Location, error) {
	return time.LoadLocation(b.Timezone)
}

// Lunch обеденное окно
func (b BusinessConfig) Lunch() domain.TimeRange {
	return domain.TimeRange{
		Start: types.TimeString(b.LunchStart),
		End:   types.TimeString(b.LunchEnd),
	}
}

type BotConfig struct {
	IdleTimeoutMs            int64 `toml:"idle_timeout_ms"`
	SweepIntervalSeconds     int   `toml:"sweep_interval_seconds"`
	LockTTLSeconds           int   `toml:"lock_ttl_seconds"`
	LockWaitSeconds          int   `toml:"lock_wait_seconds"`
	SideEffectTimeoutSeconds int   `toml:"side_effect_timeout_seconds"`
}

func (b BotConfig) IdleTimeout() time.Duration {
	return time.Duration(b.IdleTimeoutMs) * time.Millisecond
}

func (b BotConfig) SweepInterval() time.Duration {
	return time.Duration(b.SweepIntervalSeconds) * time.Second
}

func (b BotConfig) LockTTL() time.Duration {
	return time.Duration(b.LockTTLSeconds) * time.Second
}

func (b BotConfig) LockWait() time.Duration {
	return time.Duration(b.LockWaitSeconds) * time.Second
}

func (b BotConfig) SideEffectTimeout() time.Duration {
	return time.Duration(b.SideEffectTimeoutSeconds) * time.Second
}

type WhatsAppConfig struct {
	BaseURL       string `toml:"base_url"`
	PhoneNumberID string `toml:"phone_number_id"`
	AccessToken   string `toml:"access_token"`
	VerifyToken   string `toml:"verify_token"`
	AppSecret     string `toml:"app_secret"` // пустой отключает проверку X-Hub-Signature-256
	Timeout       int    `toml:"timeout_seconds"`
}

// CalendarConfig внешний календарь; пустой URL отключает синхронизацию
type CalendarConfig struct {
	URL             string `toml:"url"`
	APIKey          string `toml:"api_key"`
	Timeout         int    `toml:"timeout_seconds"`
	CacheSize       int    `toml:"cache_size"`
	CacheTTLSeconds int    `toml:"cache_ttl_seconds"`
}

func (c CalendarConfig) Enabled() bool {
	return c.URL != ""
}

// Load читает конфигурацию из TOML файла, подставляет значения по умолчанию и валидирует
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(string(data))
}

// Parse разбирает конфигурацию из строки
func Parse(data string) (*Config, error) {
	var cfg Config
	if _, err := toml.Decode(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	setDefault(&c.Server.HTTPPort, 8080)
	setDefault(&c.Server.ReadTimeout, 15)
	setDefault(&c.Server.WriteTimeout, 15)
	setDefault(&c.Server.IdleTimeout, 60)
	setDefault(&c.Server.ShutdownTimeout, 10)

	setDefault(&c.Database.Port, 5432)
	setDefault(&c.Database.MaxOpenConns, 25)
	setDefault(&c.Database.MaxIdleConns, 5)
	setDefault(&c.Database.ConnMaxLifetime, 300)
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}

	if c.Logs.Level == "" {
		c.Logs.Level = "info"
	}

	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}
	if c.Metrics.ServiceName == "" {
		c.Metrics.ServiceName = "barberservice"
	}

	if c.Redis.KeyPrefix == "" {
		c.Redis.KeyPrefix = "barber:lock:"
	}

	if c.Business.Timezone == "" {
		c.Business.Timezone = "America/Bogota"
	}
	if c.Business.LunchStart == "" {
		c.Business.LunchStart = domain.DefaultLunchStart
	}
	if c.Business.LunchEnd == "" {
		c.Business.LunchEnd = domain.DefaultLunchEnd
	}
	setDefault(&c.Business.DefaultSlotMinutes, domain.DefaultSlotDurationMinutes)
	if c.Business.DefaultPhoneRegion == "" {
		c.Business.DefaultPhoneRegion = "CO"
	}
	if c.Business.TrackingCodePrefix == "" {
		c.Business.TrackingCodePrefix = "BB"
	}

	if c.Bot.IdleTimeoutMs == 0 {
		c.Bot.IdleTimeoutMs = 300000
	}
	setDefault(&c.Bot.SweepIntervalSeconds, 60)
	setDefault(&c.Bot.LockTTLSeconds, 30)
	setDefault(&c.Bot.LockWaitSeconds, 10)
	setDefault(&c.Bot.SideEffectTimeoutSeconds, 3)

	if c.WhatsApp.BaseURL == "" {
		c.WhatsApp.BaseURL = "https://graph.facebook.com/v19.0"
	}
	setDefault(&c.WhatsApp.Timeout, 5)

	setDefault(&c.Calendar.Timeout, 3)
	setDefault(&c.Calendar.CacheSize, 256)
	setDefault(&c.Calendar.CacheTTLSeconds, 60)
}

// Validate проверяет значения, от которых зависит корректность расписания
func (c *Config) Validate() error {
	if _, err := c.Business.Location(); err != nil {
		return fmt.Errorf("%w: business.timezone %q: %v", ErrInvalidConfig, c.Business.Timezone, err)
	}
	if err := c.Business.Lunch().Validate(); err != nil {
		return fmt.Errorf("%w: business lunch window %s-%s: %v",
			ErrInvalidConfig, c.Business.LunchStart, c.Business.LunchEnd, err)
	}
	if c.Business.DefaultSlotMinutes < domain.MinDurationMinutes ||
		c.Business.DefaultSlotMinutes > domain.MaxDurationMinutes {
		return fmt.Errorf("%w: business.default_slot_minutes must be in [%d, %d]",
			ErrInvalidConfig, domain.MinDurationMinutes, domain.MaxDurationMinutes)
	}
	if c.Bot.IdleTimeoutMs < 0 {
		return fmt.Errorf("%w: bot.idle_timeout_ms must not be negative", ErrInvalidConfig)
	}
	if c.Redis.Enabled && c.Redis.Addr == "" {
		return fmt.Errorf("%w: redis.addr is required when redis is enabled", ErrInvalidConfig)
	}
	return nil
}

func setDefault(v *int, def int) {
	if *v == 0 {
		*v = def
	}
}
