package config

import (
	"fmt"
	"time"

	"github.com/BurntSushi/toml"
)

// Config конфигурация сервиса, загружается из config.toml
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Database DatabaseConfig `toml:"database"`
	Logs     LogsConfig     `toml:"logs"`
	Metrics  MetricsConfig  `toml:"metrics"`
	Clinic   ClinicConfig   `toml:"clinic"`
	Payment  PaymentConfig  `toml:"payment"`
	Events   EventsConfig   `toml:"events"`
	Expirer  ExpirerConfig  `toml:"expirer"`
}

// ServerConfig настройки HTTP-сервера
type ServerConfig struct {
	HTTPPort        int `toml:"http_port"`
	ReadTimeout     int `toml:"read_timeout"`
	WriteTimeout    int `toml:"write_timeout"`
	IdleTimeout     int `toml:"idle_timeout"`
	ShutdownTimeout int `toml:"shutdown_timeout"`
}

// DatabaseConfig настройки подключения к PostgreSQL
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

// DSN собирает строку подключения
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// LogsConfig настройки логирования
type LogsConfig struct {
	File  string `toml:"file"`
	Level string `toml:"level"`
}

// MetricsConfig настройки Prometheus-метрик
type MetricsConfig struct {
	Enabled     bool   `toml:"enabled"`
	Path        string `toml:"path"`
	ServiceName string `toml:"service_name"`
}

// ClinicConfig бизнес-настройки клиники
type ClinicConfig struct {
	// Timezone фиксированная таймзона клиники (IANA), вся интервальная
	// арифметика и группировка по дням выполняется в ней
	Timezone string `toml:"timezone"`

	// PointsToTomanRate курс обмена бонусных баллов на томаны
	PointsToTomanRate int `toml:"points_to_toman_rate"`

	// PointsEarnRate сколько томанов оплаченной записи дают один бонусный
	// балл при завершении визита
	PointsEarnRate int `toml:"points_earn_rate"`

	// GuestGenderScope политика фильтра рабочих часов для пациентов
	// без указанного пола: "ALL" - только общие часы (по умолчанию),
	// "FEMALE"/"MALE" - считать гостя пациентом этого пола
	GuestGenderScope string `toml:"guest_gender_scope"`

	// SlotRangeDays горизонт выдачи слотов по умолчанию, если клиент
	// не передал конец диапазона
	SlotRangeDays int `toml:"slot_range_days"`
}

// Location парсит таймзону клиники
func (c ClinicConfig) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("config: invalid clinic timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// PaymentConfig настройки клиента платежного шлюза
type PaymentConfig struct {
	MerchantID  string `toml:"merchant_id"`
	BaseURL     string `toml:"base_url"`
	CallbackURL string `toml:"callback_url"`
	Timeout     int    `toml:"timeout"`
	Sandbox     bool   `toml:"sandbox"`
}

// EventsConfig настройки публикации событий в RabbitMQ
type EventsConfig struct {
	Enabled  bool   `toml:"enabled"`
	URL      string `toml:"url"`
	Exchange string `toml:"exchange"`
}

// ExpirerConfig настройки фонового отменятора неоплаченных записей
type ExpirerConfig struct {
	Enabled bool `toml:"enabled"`
	// IntervalMinutes период запуска задачи
	IntervalMinutes int `toml:"interval_minutes"`
	// PendingTTLMinutes сколько минут запись может ждать оплаты
	PendingTTLMinutes int `toml:"pending_ttl_minutes"`
}

// Load читает и валидирует конфигурацию из toml-файла
func Load(path string) (*Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("config: failed to decode %s: %w", path, err)
	}

	applyDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.HTTPPort == 0 {
		cfg.Server.HTTPPort = 8080
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 10
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 25
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = "/metrics"
	}
	if cfg.Metrics.ServiceName == "" {
		cfg.Metrics.ServiceName = "clinic-booking-service"
	}
	if cfg.Clinic.Timezone == "" {
		cfg.Clinic.Timezone = "Asia/Tehran"
	}
	if cfg.Clinic.PointsToTomanRate == 0 {
		cfg.Clinic.PointsToTomanRate = 100
	}
	if cfg.Clinic.PointsEarnRate == 0 {
		cfg.Clinic.PointsEarnRate = 10000
	}
	if cfg.Clinic.GuestGenderScope == "" {
		cfg.Clinic.GuestGenderScope = "ALL"
	}
	if cfg.Clinic.SlotRangeDays == 0 {
		cfg.Clinic.SlotRangeDays = 30
	}
	if cfg.Expirer.IntervalMinutes == 0 {
		cfg.Expirer.IntervalMinutes = 5
	}
	if cfg.Expirer.PendingTTLMinutes == 0 {
		cfg.Expirer.PendingTTLMinutes = 30
	}
	if cfg.Payment.Timeout == 0 {
		cfg.Payment.Timeout = 10
	}
}

func validate(cfg *Config) error {
	if cfg.Database.Host == "" || cfg.Database.DBName == "" {
		return fmt.Errorf("config: database host and dbname are required")
	}
	if _, err := cfg.Clinic.Location(); err != nil {
		return err
	}
	switch cfg.Clinic.GuestGenderScope {
	case "ALL", "MALE", "FEMALE":
	default:
		return fmt.Errorf("config: guest_gender_scope must be one of ALL, MALE, FEMALE, got %q", cfg.Clinic.GuestGenderScope)
	}
	return nil
}
