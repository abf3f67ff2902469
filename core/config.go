package core

import (
	"fmt"
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
	Config struct {
		Env      string
		Debug    bool
		TestMode bool
		Build    string

		AppName          string
		SecretKey        []byte
		FrontendBaseURL  string
		DefaultFromEmail mail.Address

		SendgridAPIKey string
		RollbarToken   string

		PasswordResetTimeoutDelta time.Duration

		Server   serverConfig
		Database databaseConfig
		Daycare  daycareConfig
	}

	serverConfig struct {
		Host               string
		Port               int
		JWTExpirationDelta time.Duration
		ShutdownTimeout    time.Duration
	}

	databaseConfig struct {
		Engine        string
		Name          string
		User          string
		Password      string
		AdminUser     string
		AdminPassword string
		Host          string
		Port          int
		DisableTLS    bool
	}

	// daycareConfig carries the DCFS-driven business knobs.
	daycareConfig struct {
		PickupCutoff         time.Duration // clock time as offset since midnight
		LatePickupGrace      time.Duration
		LateFeePerMinute     float64
		ExpiryWarningDays    int
		MinEmergencyContacts int
	}
)

func (c serverConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func (c databaseConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// NewConfig loads the application configuration from the environment,
// optionally seeded by a config/.env.<env> file.
func NewConfig() (*Config, error) {
	conf := viper.New()
	conf.SetTypeByDefaultValue(true)

	// defaults
	conf.SetDefault("debug", true)
	conf.SetDefault("appName", "Bounce Around Daycare")
	conf.SetDefault("secretKey", "wak4-jma)xrb$+57=dz&uoxh2(h!x)#*c2(#yg4h^$cegm2emy")
	conf.SetDefault("frontendBaseURL", "http://localhost:5173")
	conf.SetDefault("defaultFromEmail", "noreply@localhost")
	conf.SetDefault("jwtExpirationDelta", 30*time.Minute)
	conf.SetDefault("passwordResetTimeoutDelta", 3*24*time.Hour)
	conf.SetDefault("serverHost", "0.0.0.0")
	conf.SetDefault("serverPort", 8000)
	conf.SetDefault("shutdownTimeout", 5*time.Second)
	conf.SetDefault("databaseEngine", "postgres")
	conf.SetDefault("databaseName", "daycare")
	conf.SetDefault("databaseHost", "localhost")
	conf.SetDefault("databasePort", 5432)
	conf.SetDefault("databaseDisableTLS", true)
	conf.SetDefault("pickupCutoff", "18:00")
	conf.SetDefault("latePickupGrace", 15*time.Minute)
	conf.SetDefault("lateFeePerMinute", 1.00)
	conf.SetDefault("expiryWarningDays", 30)
	conf.SetDefault("minEmergencyContacts", 2)

	env := os.Getenv("ENV") // DEV (local; default), TEST, QA, PROD
	if env == "" {
		env = "DEV"
	}

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join("config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err = godotenv.Load(dotEnvPath); err != nil {
			return nil, errors.Wrapf(err, "loading %s", dotEnvPath)
		}
	} else if !os.IsNotExist(err) {
		return nil, errors.Wrapf(err, "checking %s", dotEnvPath)
	}
	conf.SetEnvPrefix(env)
	conf.AutomaticEnv()

	cutoff, err := ParseClockTime(conf.GetString("pickupCutoff"))
	if err != nil {
		return nil, errors.Wrap(err, "parsing pickupCutoff")
	}

	cfg := &Config{
		Env:                       env,
		Debug:                     conf.GetBool("debug"),
		TestMode:                  env == "TEST",
		Build:                     conf.GetString("build"),
		AppName:                   conf.GetString("appName"),
		SecretKey:                 []byte(conf.GetString("secretKey")),
		FrontendBaseURL:           conf.GetString("frontendBaseURL"),
		DefaultFromEmail:          mail.Address{Address: conf.GetString("defaultFromEmail")},
		SendgridAPIKey:            conf.GetString("sendgridAPIKey"),
		RollbarToken:              conf.GetString("rollbarToken"),
		PasswordResetTimeoutDelta: conf.GetDuration("passwordResetTimeoutDelta"),
	}
	cfg.Server = serverConfig{
		Host:               conf.GetString("serverHost"),
		Port:               conf.GetInt("serverPort"),
		JWTExpirationDelta: conf.GetDuration("jwtExpirationDelta"),
		ShutdownTimeout:    conf.GetDuration("shutdownTimeout"),
	}
	cfg.Database = databaseConfig{
		Engine:        conf.GetString("databaseEngine"),
		Name:          conf.GetString("databaseName"),
		User:          conf.GetString("databaseUser"),
		Password:      conf.GetString("databasePassword"),
		AdminUser:     conf.GetString("databaseAdminUser"),
		AdminPassword: conf.GetString("databaseAdminPassword"),
		Host:          conf.GetString("databaseHost"),
		Port:          conf.GetInt("databasePort"),
		DisableTLS:    conf.GetBool("databaseDisableTLS"),
	}
	cfg.Daycare = daycareConfig{
		PickupCutoff:         cutoff,
		LatePickupGrace:      conf.GetDuration("latePickupGrace"),
		LateFeePerMinute:     conf.GetFloat64("lateFeePerMinute"),
		ExpiryWarningDays:    conf.GetInt("expiryWarningDays"),
		MinEmergencyContacts: conf.GetInt("minEmergencyContacts"),
	}
	return cfg, nil
}

// ParseClockTime parses an "HH:MM" string into an offset since midnight.
func ParseClockTime(s string) (time.Duration, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return 0, err
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, nil
}
