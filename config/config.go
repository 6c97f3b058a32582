// Package config contains code to set the default values and read
// config files to be used throughout the whole application
package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"slices"
	"time"

	"myfuture/api/internal/auth"

	"github.com/spf13/pflag"
	v "github.com/spf13/viper"
)

var validLogLevels = []string{"debug", "info", "warn", "error", "fatal"}
var validDBDrivers = []string{"sqlite", "postgres"}

func genSecret() string {
	b := make([]byte, 64)
	rand.Read(b)
	return hex.EncodeToString(b)
}

// Setup prepares everything config-related so that the app can
// start working. Function will return an error if something
// is critically wrong and the application can't run because of
// that.
func Setup() error {
	pflag.Parse()
	v.BindPFlags(pflag.CommandLine)

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")

	v.AutomaticEnv()

	//
	// ENVS
	//
	v.BindEnv("app.log_level", "myfuture_log_level")
	v.BindEnv("app.environment", "myfuture_environment")

	v.BindEnv("host.port", "myfuture_host_port")

	v.BindEnv("frontend.base_url", "myfuture_frontend_base_url")
	v.BindEnv("cors.allow_origins", "myfuture_cors_allow_origins")

	v.BindEnv("database.driver", "myfuture_database_driver")
	v.BindEnv("database.dsn", "myfuture_database_dsn")

	v.BindEnv("jwt.secret", "myfuture_jwt_secret")
	v.BindEnv("jwt.access_token_minutes", "myfuture_jwt_access_token_minutes")

	v.BindEnv("security.bcrypt_cost", "myfuture_bcrypt_cost")

	v.BindEnv("verification.token_hours", "myfuture_verification_token_hours")
	v.BindEnv("verification.secret", "myfuture_verification_secret")

	v.BindEnv("reset.token_minutes", "myfuture_reset_token_minutes")
	v.BindEnv("reset.cooldown_seconds", "myfuture_reset_cooldown_seconds")
	v.BindEnv("reset.secret", "myfuture_reset_secret")

	v.BindEnv("google.client_id", "myfuture_google_client_id")
	v.BindEnv("google.tokeninfo_url", "myfuture_google_tokeninfo_url")

	//
	// Defaults
	//
	v.SetDefault("app.log_level", "info")
	v.SetDefault("app.environment", "development")

	v.SetDefault("host.port", 8080)

	v.SetDefault("frontend.base_url", "http://localhost:8080")
	v.SetDefault("cors.allow_origins", []string{
		"http://localhost:8080",
		"http://127.0.0.1:8080",
		"http://localhost:5173",
		"http://127.0.0.1:5173",
	})

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "myfuture.db")

	v.SetDefault("jwt.access_token_minutes", 30)

	v.SetDefault("security.bcrypt_cost", 12)

	v.SetDefault("verification.token_hours", 24)

	v.SetDefault("reset.token_minutes", 30)
	v.SetDefault("reset.cooldown_seconds", 60)

	v.SetDefault("google.tokeninfo_url", "https://oauth2.googleapis.com/tokeninfo")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(v.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("failed to read config file, %w", err)
		}
	}

	if !slices.Contains(validLogLevels, v.GetString("app.log_level")) {
		return errors.New("invalid log level provided")
	}

	if v.GetInt("host.port") <= 0 {
		return errors.New("invalid port provided")
	}

	if !slices.Contains(validDBDrivers, v.GetString("database.driver")) {
		return errors.New("invalid database driver provided")
	}

	if v.GetString("database.dsn") == "" {
		return errors.New("no database dsn provided")
	}

	if v.GetInt("jwt.access_token_minutes") <= 0 {
		return errors.New("jwt.access_token_minutes must be bigger than 0")
	}

	if v.GetInt("verification.token_hours") <= 0 {
		return errors.New("verification.token_hours must be bigger than 0")
	}

	if v.GetInt("reset.token_minutes") <= 0 {
		return errors.New("reset.token_minutes must be bigger than 0")
	}

	if v.GetInt("reset.cooldown_seconds") < 0 {
		return errors.New("reset.cooldown_seconds can't be negative")
	}

	if v.GetString("jwt.secret") == "" {
		fmt.Println("WARNING: You haven't set a JWT secret, so it has been generated for you. Please set it as an environment variable or in the config.toml file.\nYour random JWT secret:\n\n" + genSecret() + "\n\nPaste it into your config.toml file.")
		os.Exit(0)
	}

	if v.GetString("google.client_id") == "" {
		fmt.Println("[WARNING]: google.client_id is not set. Google sign-in will reject every request")
	}

	return nil
}

// Auth builds the config struct injected into the auth service. The
// per-purpose token secrets fall back to the JWT secret when unset.
func Auth() auth.Config {
	jwtSecret := []byte(v.GetString("jwt.secret"))

	verificationSecret := []byte(v.GetString("verification.secret"))
	if len(verificationSecret) == 0 {
		verificationSecret = jwtSecret
	}

	resetSecret := []byte(v.GetString("reset.secret"))
	if len(resetSecret) == 0 {
		resetSecret = jwtSecret
	}

	return auth.Config{
		JWTSecret:           jwtSecret,
		AccessTokenValidity: time.Duration(v.GetInt("jwt.access_token_minutes")) * time.Minute,

		VerificationSecret: verificationSecret,
		ResetSecret:        resetSecret,

		VerificationTokenValidity: time.Duration(v.GetInt("verification.token_hours")) * time.Hour,
		ResetTokenValidity:        time.Duration(v.GetInt("reset.token_minutes")) * time.Minute,
		ResetRequestCooldown:      time.Duration(v.GetInt("reset.cooldown_seconds")) * time.Second,

		BcryptCost: v.GetInt("security.bcrypt_cost"),
	}
}
