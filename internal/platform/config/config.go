// Package config carga la configuración del registro con viper:
// defaults, archivo opcional (config.yaml) y variables de entorno.
package config

import (
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/spf13/viper"
)

// Secret evita que un token termine impreso en logs.
type Secret string

func (s Secret) String() string { return "[REDACTED]" }

func (s Secret) Value() string { return string(s) }

type Config struct {
	AppName string
	Port    string

	// DatabaseURL: postgres://..., sqlite://archivo.db o vacío (SQLite local mari.db).
	DatabaseURL Secret

	LogLevel  string
	LogFormat string

	// TutorMode: "independent" (cada atención guarda su propio tutor) o "shared".
	TutorMode string
	Timezone  string

	// DefaultActor se registra en auditoría cuando el request no trae usuario.
	DefaultActor string

	AuthUser  string
	AuthToken Secret
	// AuthDebugHeader habilita X-Debug-User-ID cuando no hay AUTH_TOKEN.
	AuthDebugHeader bool

	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// envKeys mapea claves de viper a las variables que ya usa el despliegue.
var envKeys = map[string]string{
	"app_name":           "APP_NAME",
	"port":               "PORT",
	"database_url":       "DATABASE_URL",
	"log_level":          "LOG_LEVEL",
	"log_format":         "LOG_FORMAT",
	"tutor_mode":         "TUTOR_MODE",
	"timezone":           "TIMEZONE",
	"default_actor":      "DEFAULT_ACTOR",
	"auth.user":          "AUTH_USER",
	"auth.token":         "AUTH_TOKEN",
	"auth.debug_header":  "AUTH_DEBUG_HEADER",
	"http.read_timeout":  "HTTP_READ_TIMEOUT",
	"http.write_timeout": "HTTP_WRITE_TIMEOUT",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app_name", "vet-registry")
	v.SetDefault("port", "8080")
	v.SetDefault("database_url", "")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
	v.SetDefault("tutor_mode", "independent")
	v.SetDefault("timezone", "America/Argentina/Buenos_Aires")
	v.SetDefault("default_actor", "mariateresa")
	v.SetDefault("auth.user", "mariateresa")
	v.SetDefault("auth.token", "")
	v.SetDefault("auth.debug_header", false)
	v.SetDefault("http.read_timeout", 5*time.Second)
	v.SetDefault("http.write_timeout", 10*time.Second)
}

// Load lee configuración. file puede ser vacío: en ese caso se busca
// config.yaml en el directorio actual y, si no existe, se sigue con defaults + env.
func Load(file string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for key, env := range envKeys {
		if err := v.BindEnv(key, env); err != nil {
			return nil, errors.Wrapf(err, "bind env %s", env)
		}
	}

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, errors.Wrap(err, "read config")
		}
	}

	cfg := &Config{
		AppName:         v.GetString("app_name"),
		Port:            v.GetString("port"),
		DatabaseURL:     Secret(v.GetString("database_url")),
		LogLevel:        v.GetString("log_level"),
		LogFormat:       v.GetString("log_format"),
		TutorMode:       strings.ToLower(strings.TrimSpace(v.GetString("tutor_mode"))),
		Timezone:        v.GetString("timezone"),
		DefaultActor:    strings.TrimSpace(v.GetString("default_actor")),
		AuthUser:        strings.TrimSpace(v.GetString("auth.user")),
		AuthToken:       Secret(v.GetString("auth.token")),
		AuthDebugHeader: v.GetBool("auth.debug_header"),
		ReadTimeout:     v.GetDuration("http.read_timeout"),
		WriteTimeout:    v.GetDuration("http.write_timeout"),
	}

	if err := cfg.validate(); err != nil {
		return nil, errors.Wrap(err, "config validation")
	}
	return cfg, nil
}

func (c *Config) Addr() string {
	return ":" + c.Port
}

// Location resuelve Timezone. Se valida en Load, así que acá no falla.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

func (c *Config) validate() error {
	switch c.TutorMode {
	case "independent", "shared":
	default:
		return errors.Newf("TUTOR_MODE must be independent or shared, got %q", c.TutorMode)
	}

	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return errors.Wrapf(err, "TIMEZONE %q", c.Timezone)
	}

	if strings.TrimSpace(c.Port) == "" {
		return errors.New("PORT is required")
	}

	if c.DefaultActor == "" {
		return errors.New("DEFAULT_ACTOR must not be blank")
	}

	return nil
}
