package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/unibench/unibench/internal/pkg/apperrors"
)

// Config structure represents the harness configuration
type Config struct {
	Database struct {
		Host            string `yaml:"host" env:"DB_HOST"`
		Port            string `yaml:"port" env:"DB_PORT"`
		User            string `yaml:"user" env:"DB_USER"`
		Password        string `yaml:"password" env:"DB_PASSWORD"`
		DBName          string `yaml:"dbname" env:"DB_NAME"`
		SSLMode         string `yaml:"sslmode" env:"DB_SSLMODE"`
		MaxIdleConns    int    `yaml:"max_idle_conns" env:"DB_MAX_IDLE_CONNS"`
		MaxOpenConns    int    `yaml:"max_open_conns" env:"DB_MAX_OPEN_CONNS"`
		ConnMaxLifetime string `yaml:"conn_max_lifetime" env:"DB_CONN_MAX_LIFETIME"`
	} `yaml:"database"`

	Benchmark struct {
		// Scales enumerates student populations to measure, smallest first.
		// The indexed pass runs against the last (largest) scale only.
		Scales         []int  `yaml:"scales"`
		BatchSize      int    `yaml:"batch_size" env:"BENCH_BATCH_SIZE"`
		QueryTimeout   string `yaml:"query_timeout" env:"BENCH_QUERY_TIMEOUT"`
		EnrollmentsMin int    `yaml:"enrollments_min" env:"BENCH_ENROLLMENTS_MIN"`
		EnrollmentsMax int    `yaml:"enrollments_max" env:"BENCH_ENROLLMENTS_MAX"`
		Departments    int    `yaml:"departments" env:"BENCH_DEPARTMENTS"`
		Teachers       int    `yaml:"teachers" env:"BENCH_TEACHERS"`
		Courses        int    `yaml:"courses" env:"BENCH_COURSES"`
		FlushRetries   int    `yaml:"flush_retries" env:"BENCH_FLUSH_RETRIES"`
		Seed           int64  `yaml:"seed" env:"BENCH_SEED"`
	} `yaml:"benchmark"`

	Report struct {
		OutputDir    string `yaml:"output_dir" env:"REPORT_OUTPUT_DIR"`
		ProgressFile string `yaml:"progress_file" env:"REPORT_PROGRESS_FILE"`
	} `yaml:"report"`

	Logging struct {
		Level  string `yaml:"level" env:"LOG_LEVEL"`
		Format string `yaml:"format" env:"LOG_FORMAT"`
	} `yaml:"logging"`
}

// LoadConfig loads configuration from a file and environment variables
func LoadConfig(configPath string) (*Config, error) {
	config := &Config{}
	setDefaults(config)

	// Try to read config file if it exists
	if _, err := os.Stat(configPath); err == nil {
		file, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		err = yaml.Unmarshal(file, config)
		if err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	// Override with environment variables
	if err := processStructFields(config); err != nil {
		return nil, fmt.Errorf("failed to load from environment: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// setDefaults sets default values for the configuration
func setDefaults(config *Config) {
	// Database defaults
	config.Database.Host = "localhost"
	config.Database.Port = "5432"
	config.Database.User = "postgres"
	config.Database.Password = "postgres"
	config.Database.DBName = "uni"
	config.Database.SSLMode = "disable"
	config.Database.MaxIdleConns = 2
	config.Database.MaxOpenConns = 5
	config.Database.ConnMaxLifetime = "1h"

	// Benchmark defaults mirror the four lab scales
	config.Benchmark.Scales = []int{1000, 10000, 100000, 1000000}
	config.Benchmark.BatchSize = 1000
	config.Benchmark.QueryTimeout = "5m"
	config.Benchmark.EnrollmentsMin = 5
	config.Benchmark.EnrollmentsMax = 10
	config.Benchmark.Departments = 10
	config.Benchmark.Teachers = 100
	config.Benchmark.Courses = 200
	config.Benchmark.FlushRetries = 3
	config.Benchmark.Seed = 0

	// Report defaults
	config.Report.OutputDir = "results"
	config.Report.ProgressFile = "progress.json"

	// Logging defaults
	config.Logging.Level = "info"
	config.Logging.Format = "console"
}

// validateConfig ensures that the configuration is valid
func validateConfig(config *Config) error {
	if config.Database.Host == "" {
		return fmt.Errorf("%w: database host is required", apperrors.ErrInvalidConfig)
	}

	if len(config.Benchmark.Scales) == 0 {
		return fmt.Errorf("%w: at least one scale is required", apperrors.ErrInvalidConfig)
	}

	prev := 0
	for _, scale := range config.Benchmark.Scales {
		if scale <= 0 {
			return fmt.Errorf("%w: scale must be positive, got %d", apperrors.ErrInvalidConfig, scale)
		}
		if scale <= prev {
			return fmt.Errorf("%w: scales must be strictly increasing", apperrors.ErrInvalidConfig)
		}
		prev = scale
	}

	if config.Benchmark.BatchSize <= 0 {
		return fmt.Errorf("%w: batch size must be positive", apperrors.ErrInvalidConfig)
	}

	if config.Benchmark.EnrollmentsMin < 0 ||
		config.Benchmark.EnrollmentsMax < config.Benchmark.EnrollmentsMin {
		return fmt.Errorf("%w: enrollment range [%d,%d] is invalid", apperrors.ErrInvalidConfig,
			config.Benchmark.EnrollmentsMin, config.Benchmark.EnrollmentsMax)
	}

	if config.Benchmark.Courses < config.Benchmark.EnrollmentsMax {
		return fmt.Errorf("%w: course count %d cannot satisfy %d distinct enrollments per student",
			apperrors.ErrInvalidConfig, config.Benchmark.Courses, config.Benchmark.EnrollmentsMax)
	}

	if config.Benchmark.Departments <= 0 || config.Benchmark.Teachers <= 0 {
		return fmt.Errorf("%w: reference table sizes must be positive", apperrors.ErrInvalidConfig)
	}

	if config.Benchmark.FlushRetries < 0 {
		return fmt.Errorf("%w: flush retries must not be negative", apperrors.ErrInvalidConfig)
	}

	if _, err := time.ParseDuration(config.Benchmark.QueryTimeout); err != nil {
		return fmt.Errorf("%w: invalid query timeout format: %v", apperrors.ErrInvalidConfig, err)
	}

	if _, err := time.ParseDuration(config.Database.ConnMaxLifetime); err != nil {
		return fmt.Errorf("%w: invalid connection max lifetime format: %v", apperrors.ErrInvalidConfig, err)
	}

	return nil
}

// QueryTimeout returns the parsed per-query timeout ceiling
func (c *Config) QueryTimeout() time.Duration {
	d, err := time.ParseDuration(c.Benchmark.QueryTimeout)
	if err != nil {
		// validateConfig already rejected unparseable values
		return 5 * time.Minute
	}
	return d
}

// LargestScale returns the last configured scale
func (c *Config) LargestScale() int {
	return c.Benchmark.Scales[len(c.Benchmark.Scales)-1]
}

// GetPostgresConnectionString returns postgres connection string
func (c *Config) GetPostgresConnectionString() string {
	sslMode := c.Database.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.DBName,
		sslMode,
	)
}
