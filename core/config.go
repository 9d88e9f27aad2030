package core

import (
	"net"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

type (
	ServerConfig struct {
		Host                      string
		Port                      string
		JWTExpirationDelta        time.Duration
		JWTRefreshExpirationDelta time.Duration
		ShutdownTimeout           time.Duration
	}

	DatabaseConfig struct {
		Engine        string
		Name          string
		Host          string
		Port          string
		User          string
		Password      string
		AdminUser     string
		AdminPassword string
		DisableTLS    bool
	}

	AssignmentConfig struct {
		// AllowReevaluation controls whether a "checked" submission may be
		// evaluated again, overwriting its marks.
		AllowReevaluation bool
	}

	Config struct {
		Env      string // DEV (local; default), TEST, QA, PROD
		Debug    bool
		TestMode bool
		AppName  string
		Build    string
		WorkDir  string

		SecretKey                 []byte
		PasswordResetTimeoutDelta time.Duration

		FrontendBaseURL  string
		DefaultFromEmail mail.Address
		SendgridAPIKey   string
		RollbarToken     string

		Server     ServerConfig
		Database   DatabaseConfig
		Assignment AssignmentConfig
	}
)

func (c ServerConfig) Address() string   { return net.JoinHostPort(c.Host, c.Port) }
func (c DatabaseConfig) Address() string { return net.JoinHostPort(c.Host, c.Port) }

// NewConfig loads the app configuration from built-in defaults,
// `config/.env.<env>` (if present) and the environment; the environment wins.
func NewConfig(workDir string) (*Config, error) {
	v := viper.New()
	v.SetTypeByDefaultValue(true)

	v.SetDefault("debug", true)
	v.SetDefault("appName", "Darasa")
	v.SetDefault("build", "dev")
	v.SetDefault("secretKey", "v2q%x3ggzk)&jkql5bu=-+y^qe8mt0(n*doq9b#u0on16_3r#o")
	v.SetDefault("passwordResetTimeoutDelta", 3*24*time.Hour)
	v.SetDefault("frontendBaseUrl", "http://localhost:8080")
	v.SetDefault("defaultFromEmail", "noreply@localhost")
	v.SetDefault("sendgridApiKey", "")
	v.SetDefault("rollbarToken", "")

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", "8000")
	v.SetDefault("server.jwtExpirationDelta", 7*24*time.Hour)
	v.SetDefault("server.jwtRefreshExpirationDelta", 4*time.Hour)
	v.SetDefault("server.shutdownTimeout", 5*time.Second)

	v.SetDefault("database.engine", "postgres")
	v.SetDefault("database.name", "darasa")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.user", "darasa")
	v.SetDefault("database.password", "darasa")
	v.SetDefault("database.adminUser", "")
	v.SetDefault("database.adminPassword", "")
	v.SetDefault("database.disableTls", true)

	v.SetDefault("assignment.allowReevaluation", true)

	env := strings.ToUpper(os.Getenv("ENV"))
	if env == "" {
		env = "DEV"
	}

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(workDir, "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err = godotenv.Load(dotEnvPath); err != nil {
			return nil, errors.Wrapf(err, "loading %s", dotEnvPath)
		}
	} else if !os.IsNotExist(err) {
		return nil, errors.Wrapf(err, "checking %s", dotEnvPath)
	}

	v.SetEnvPrefix(env)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	conf := &Config{
		Env:      env,
		Debug:    v.GetBool("debug") && env != "PROD",
		TestMode: env == "TEST",
		AppName:  v.GetString("appName"),
		Build:    v.GetString("build"),
		WorkDir:  workDir,

		SecretKey:                 []byte(v.GetString("secretKey")),
		PasswordResetTimeoutDelta: v.GetDuration("passwordResetTimeoutDelta"),

		FrontendBaseURL:  v.GetString("frontendBaseUrl"),
		DefaultFromEmail: mail.Address{Name: v.GetString("appName"), Address: v.GetString("defaultFromEmail")},
		SendgridAPIKey:   v.GetString("sendgridApiKey"),
		RollbarToken:     v.GetString("rollbarToken"),

		Server: ServerConfig{
			Host:                      v.GetString("server.host"),
			Port:                      v.GetString("server.port"),
			JWTExpirationDelta:        v.GetDuration("server.jwtExpirationDelta"),
			JWTRefreshExpirationDelta: v.GetDuration("server.jwtRefreshExpirationDelta"),
			ShutdownTimeout:           v.GetDuration("server.shutdownTimeout"),
		},
		Database: DatabaseConfig{
			Engine:        v.GetString("database.engine"),
			Name:          v.GetString("database.name"),
			Host:          v.GetString("database.host"),
			Port:          v.GetString("database.port"),
			User:          v.GetString("database.user"),
			Password:      v.GetString("database.password"),
			AdminUser:     v.GetString("database.adminUser"),
			AdminPassword: v.GetString("database.adminPassword"),
			DisableTLS:    v.GetBool("database.disableTls"),
		},
		Assignment: AssignmentConfig{
			AllowReevaluation: v.GetBool("assignment.allowReevaluation"),
		},
	}
	return conf, nil
}
