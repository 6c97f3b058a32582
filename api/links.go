package api

import (
	"net/url"
	"strings"

	"github.com/spf13/viper"
)

// Verification and reset links point at the frontend, which calls back
// into the API with the token. Link construction stays out of the auth
// core on purpose.

func buildVerifyLink(token string) string {
	return frontendBase() + "/verify-email?token=" + url.QueryEscape(token)
}

func buildResetLink(token string) string {
	return frontendBase() + "/reset-password?token=" + url.QueryEscape(token)
}

func frontendBase() string {
	base := strings.TrimRight(strings.TrimSpace(viper.GetString("frontend.base_url")), "/")

	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		scheme := "https"
		if viper.GetString("app.environment") == "development" {
			scheme = "http"
		}

		base = scheme + "://" + base
	}

	return base
}
