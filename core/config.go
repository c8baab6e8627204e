package core

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

type (
	Config struct {
		Debug    bool
		TestMode bool
		Env      string // DEV (default), TEST, QA, PROD
		AppName  string
		Build    string

		SecretKey        []byte
		PassMark         float64
		DefaultFromEmail string
		SendgridAPIKey   string
		RollbarToken     string

		Server       ServerConfig
		Database     DatabaseConfig
		Google       GoogleConfig
		Notification NotificationConfig
	}

	ServerConfig struct {
		Host               string
		Port               int
		CookieDomain       string
		SecureCookies      bool
		JWTExpirationDelta time.Duration
		AllowedOrigins     []string
		AllowedOriginRegex string
	}

	DatabaseConfig struct {
		Engine        string
		Host          string
		Port          int
		Name          string
		User          string
		Password      string
		AdminUser     string
		AdminPassword string
		DisableTLS    bool
	}

	GoogleConfig struct {
		ClientID    string
		AdminEmails []string
	}

	NotificationConfig struct {
		SweepInterval time.Duration
	}
)

func (c DatabaseConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func (c ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// NewConfig loads the app configuration from the environment.
// An optional `config/.env.<env>` file is loaded first if present.
func NewConfig() (*Config, error) {
	conf := viper.New()
	conf.SetTypeByDefaultValue(true)

	// defaults
	conf.SetDefault("debug", true)
	conf.SetDefault("appName", "MEA Student Portal")
	conf.SetDefault("build", "dev")
	conf.SetDefault("secretKey", "h2(h!x)#*c2(#yg4h^$cegm2emy-poq5-wer)enb$+57=dz&uox")
	conf.SetDefault("passMark", 35)
	conf.SetDefault("defaultFromEmail", "noreply@middleeastacademy.in")
	conf.SetDefault("serverHost", "")
	conf.SetDefault("serverPort", 8000)
	conf.SetDefault("cookieDomain", "")
	conf.SetDefault("secureCookies", false)
	conf.SetDefault("jwtExpirationDelta", 24*time.Hour)
	conf.SetDefault("allowedOrigins", []string{"http://localhost:3000"})
	conf.SetDefault("allowedOriginRegex", `^https://.*\.vercel\.app$`)
	conf.SetDefault("databaseEngine", "postgres")
	conf.SetDefault("databaseHost", "localhost")
	conf.SetDefault("databasePort", 5432)
	conf.SetDefault("databaseName", "mea_portal")
	conf.SetDefault("databaseUser", "")
	conf.SetDefault("databasePassword", "")
	conf.SetDefault("databaseAdminUser", "")
	conf.SetDefault("databaseAdminPassword", "")
	conf.SetDefault("databaseDisableTLS", true)
	conf.SetDefault("googleClientID", "")
	conf.SetDefault("googleAdminEmails", []string{})
	conf.SetDefault("notificationSweepInterval", time.Hour)

	env := os.Getenv("ENV")
	if env == "" {
		env = "DEV"
	}
	conf.SetEnvPrefix(env)

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(Getwd(), "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err = godotenv.Load(dotEnvPath); err != nil {
			return nil, errors.Wrapf(err, "loading %s", dotEnvPath)
		}
	} else if !os.IsNotExist(err) {
		return nil, errors.Wrapf(err, "checking %s", dotEnvPath)
	}
	conf.AutomaticEnv()

	return &Config{
		Debug:            conf.GetBool("debug"),
		TestMode:         env == "TEST",
		Env:              env,
		AppName:          conf.GetString("appName"),
		Build:            conf.GetString("build"),
		SecretKey:        []byte(conf.GetString("secretKey")),
		PassMark:         conf.GetFloat64("passMark"),
		DefaultFromEmail: conf.GetString("defaultFromEmail"),
		SendgridAPIKey:   conf.GetString("sendgridApiKey"),
		RollbarToken:     conf.GetString("rollbarToken"),
		Server: ServerConfig{
			Host:               conf.GetString("serverHost"),
			Port:               conf.GetInt("serverPort"),
			CookieDomain:       conf.GetString("cookieDomain"),
			SecureCookies:      conf.GetBool("secureCookies"),
			JWTExpirationDelta: conf.GetDuration("jwtExpirationDelta"),
			AllowedOrigins:     conf.GetStringSlice("allowedOrigins"),
			AllowedOriginRegex: conf.GetString("allowedOriginRegex"),
		},
		Database: DatabaseConfig{
			Engine:        conf.GetString("databaseEngine"),
			Host:          conf.GetString("databaseHost"),
			Port:          conf.GetInt("databasePort"),
			Name:          conf.GetString("databaseName"),
			User:          conf.GetString("databaseUser"),
			Password:      conf.GetString("databasePassword"),
			AdminUser:     conf.GetString("databaseAdminUser"),
			AdminPassword: conf.GetString("databaseAdminPassword"),
			DisableTLS:    conf.GetBool("databaseDisableTLS"),
		},
		Google: GoogleConfig{
			ClientID:    conf.GetString("googleClientID"),
			AdminEmails: conf.GetStringSlice("googleAdminEmails"),
		},
		Notification: NotificationConfig{
			SweepInterval: conf.GetDuration("notificationSweepInterval"),
		},
	}, nil
}
