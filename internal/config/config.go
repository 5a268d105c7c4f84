package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/org-structure-seeder/internal/domain"
)

// Поддерживаемые хранилища
const (
	StorePostgres = "postgres"
	StoreSQLite   = "sqlite"
	StoreRedis    = "redis"
	StoreDynamoDB = "dynamodb"
	StoreMemory   = "memory"
)

// Config содержит настройки приложения
type Config struct {
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	DynamoDB  DynamoDBConfig  `mapstructure:"dynamodb"`
	Generator GeneratorConfig `mapstructure:"generator"`
	LogLevel  string          `mapstructure:"log_level"`
}

// DatabaseConfig - настройки подключения к SQL-хранилищу
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	// Path - файл базы SQLite
	Path string `mapstructure:"path"`
	// ConnectAttempts - число попыток подключения с паузой в секунду
	ConnectAttempts int `mapstructure:"connect_attempts"`
}

// DSN возвращает строку подключения к PostgreSQL
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// RedisConfig - настройки Redis
type RedisConfig struct {
	Addr      string `mapstructure:"addr"`
	Password  string `mapstructure:"password"`
	DB        int    `mapstructure:"db"`
	KeyPrefix string `mapstructure:"key_prefix"`
}

// DynamoDBConfig - настройки DynamoDB
type DynamoDBConfig struct {
	Region      string `mapstructure:"region"`
	Endpoint    string `mapstructure:"endpoint"`
	TablePrefix string `mapstructure:"table_prefix"`
}

// GeneratorConfig - параметры генерации по умолчанию
type GeneratorConfig struct {
	Store              string        `mapstructure:"store"`
	Mode               string        `mapstructure:"mode"`
	ChunkSize          int           `mapstructure:"chunk_size"`
	Workers            int           `mapstructure:"workers"`
	Seed               uint64        `mapstructure:"seed"`
	Timeout            time.Duration `mapstructure:"timeout"`
	CompanyCount       int           `mapstructure:"company_count"`
	BranchesPerCompany int           `mapstructure:"branches_per_company"`
	DeptsPerBranch     int           `mapstructure:"depts_per_branch"`
	EmployeesPerDept   int           `mapstructure:"employees_per_dept"`
}

// Counts возвращает размер иерархии из настроек
func (g GeneratorConfig) Counts() domain.GenerateConfig {
	return domain.GenerateConfig{
		CompanyCount:       g.CompanyCount,
		BranchesPerCompany: g.BranchesPerCompany,
		DeptsPerBranch:     g.DeptsPerBranch,
		EmployeesPerDept:   g.EmployeesPerDept,
	}
}

// Переменные окружения исходного сервиса сохраняют прежние имена
var legacyEnv = map[string]string{
	"database.host":     "DB_HOST",
	"database.port":     "DB_PORT",
	"database.user":     "DB_USER",
	"database.password": "DB_PASSWORD",
	"database.name":     "DB_NAME",
	"database.sslmode":  "DB_SSLMODE",
}

// SetDefaults регистрирует значения по умолчанию и привязку к окружению.
// Остальные ключи читаются из SEEDER_<KEY>, например SEEDER_GENERATOR_CHUNK_SIZE.
func SetDefaults(v *viper.Viper) {
	defaults := domain.DefaultGenerateConfig()

	v.SetDefault("log_level", "info")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.name", "orgstructure")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.path", "seeder.db")
	v.SetDefault("database.connect_attempts", 30)

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.key_prefix", "seeder:")

	v.SetDefault("dynamodb.region", "us-east-1")
	v.SetDefault("dynamodb.endpoint", "")
	v.SetDefault("dynamodb.table_prefix", "seeder_")

	v.SetDefault("generator.store", StorePostgres)
	v.SetDefault("generator.mode", string(domain.ModeReference))
	v.SetDefault("generator.chunk_size", 1000)
	v.SetDefault("generator.workers", 1)
	v.SetDefault("generator.seed", 0)
	v.SetDefault("generator.timeout", 10*time.Minute)
	v.SetDefault("generator.company_count", defaults.CompanyCount)
	v.SetDefault("generator.branches_per_company", defaults.BranchesPerCompany)
	v.SetDefault("generator.depts_per_branch", defaults.DeptsPerBranch)
	v.SetDefault("generator.employees_per_dept", defaults.EmployeesPerDept)

	v.SetEnvPrefix("SEEDER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range legacyEnv {
		_ = v.BindEnv(key, "SEEDER_"+strings.ToUpper(strings.ReplaceAll(key, ".", "_")), env)
	}
}

// Load загружает конфигурацию из viper (файл, окружение, флаги)
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}
