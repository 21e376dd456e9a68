package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

const EnvConfigPath = "CONFIG_PATH"

type Config struct {
	Env         string `yaml:"env" env:"ENV" env-default:"local"`
	HTTPServer  `yaml:"http_server"`
	Report      Report   `yaml:"report"`
	Database    Database `yaml:"database"`
	Admin       Admin    `yaml:"admin"`
	FrontendDir string   `yaml:"frontend_dir" env:"FRONTEND_DIR"`
	ErrorLog    string   `yaml:"error_log" env:"ERROR_LOG" env-default:"errors.log"`
}

type HTTPServer struct {
	Address     string        `yaml:"address" env:"HTTP_ADDRESS" env-default:"localhost:4001"`
	Timeout     time.Duration `yaml:"timeout" env-default:"4s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
	// RequestTimeout bounds one report build
	RequestTimeout time.Duration `yaml:"request_timeout" env-default:"30s"`
	AllowedOrigins []string      `yaml:"allowed_origins" env-default:"http://localhost:5173"`
}

// Report holds the defaults applied to every report run.
type Report struct {
	Sheet string `yaml:"sheet" env:"REPORT_SHEET"`
	// Columns are "field=header" or "field=#index" directives.
	Columns []string `yaml:"columns"`
	// Aliases extend the built-in header aliases, keyed by field name.
	Aliases     map[string][]string `yaml:"aliases"`
	MaxUploadMB int64               `yaml:"max_upload_mb" env-default:"32"`
	MaxFiles    int                 `yaml:"max_files" env-default:"10"`
}

// AliasDirectives flattens Aliases into "field=alias" directives in a stable order.
func (r Report) AliasDirectives() []string {
	fields := make([]string, 0, len(r.Aliases))
	for f := range r.Aliases {
		fields = append(fields, f)
	}
	slices.Sort(fields)

	var out []string
	for _, f := range fields {
		for _, a := range r.Aliases[f] {
			out = append(out, f+"="+a)
		}
	}
	return out
}

func (r Report) MaxUploadBytes() int64 {
	return r.MaxUploadMB << 20
}

// Database is an optional MySQL table used as a report source.
type Database struct {
	Host        string        `yaml:"host" env:"DB_HOST" env-default:"localhost"`
	Port        int           `yaml:"port" env:"DB_PORT" env-default:"3306"`
	User        string        `yaml:"user" env:"DB_USER"`
	Password    string        `yaml:"password" env:"DB_PASSWORD"`
	Name        string        `yaml:"name" env:"DB_NAME"`
	ImportQuery string        `yaml:"import_query"`
	Timeout     time.Duration `yaml:"timeout" env-default:"5s"`
}

func (d Database) Enabled() bool {
	return d.Name != "" && d.ImportQuery != ""
}

type Admin struct {
	Login    string `yaml:"login" env:"ADMIN_LOGIN"`
	Password string `yaml:"password" env:"ADMIN_PASSWORD"`
}

// Load reads the YAML file at path, falling back to CONFIG_PATH. Without
// either, only environment variables and defaults are used.
func Load(path string) (*Config, error) {
	const op = "config.Load"

	if path == "" {
		path = os.Getenv(EnvConfigPath)
	}

	var cfg Config
	if path == "" {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		return &cfg, nil
	}

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%s: config file does not exist: %s", op, path)
	}
	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return nil, fmt.Errorf("%s: cannot read config: %w", op, err)
	}
	return &cfg, nil
}
