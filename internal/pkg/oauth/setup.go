package oauth

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/markbates/goth"
	"github.com/markbates/goth/gothic"
	"github.com/markbates/goth/providers/github"
	"github.com/markbates/goth/providers/google"
	gothfiber "github.com/shareed2k/goth_fiber"

	"github.com/yatube/yatube/internal/pkg/cache"
	"github.com/yatube/yatube/internal/pkg/env"
)

// SessionDB keeps OAuth state apart from app sessions and the page cache.
const SessionDB = 3

// Setup registers the providers whose keys are configured and returns their
// names. With none configured the OAuth routes answer 404.
func Setup() []string {
	base := strings.TrimRight(env.GetEnv("PUBLIC_DOMAIN", ""), "/")
	if base == "" {
		base = "http://localhost:" + env.GetEnv("APP_PORT", "4000")
	}

	goth.ClearProviders()
	var providers []goth.Provider
	if key := env.GetEnv("GITHUB_KEY", ""); key != "" {
		providers = append(providers, github.New(
			key,
			env.GetEnv("GITHUB_SECRET", ""),
			base+"/auth/oauth/github/callback",
			"user:email",
		))
	}
	if key := env.GetEnv("GOOGLE_KEY", ""); key != "" {
		providers = append(providers, google.New(
			key,
			env.GetEnv("GOOGLE_SECRET", ""),
			base+"/auth/oauth/google/callback",
			"email", "profile",
		))
	}
	if len(providers) == 0 {
		return nil
	}
	goth.UseProviders(providers...)

	gothfiber.SessionStore = session.New(session.Config{
		Storage:        cache.NewStorage(SessionDB),
		KeyLookup:      "cookie:" + gothic.SessionName,
		CookieHTTPOnly: true,
		CookieSameSite: "Lax",
		CookieSecure:   !env.IsDev(),
		Expiration:     time.Hour,
	})

	names := Enabled()
	log.Infof("[OAuth] Enabled providers: %s", strings.Join(names, ", "))
	return names
}

// Enabled lists the registered provider names.
func Enabled() []string {
	var names []string
	for name := range goth.GetProviders() {
		names = append(names, name)
	}
	return names
}

// IsEnabled reports whether provider was registered by Setup.
func IsEnabled(provider string) bool {
	_, err := goth.GetProvider(provider)
	return err == nil
}
