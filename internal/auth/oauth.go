package auth

import (
	"log/slog"

	"creatures-server/internal/auth/providers"
	"creatures-server/internal/shared/config"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
	"golang.org/x/oauth2/google"
)

// OAuthConfig bundles the configured OAuth providers for route setup.
type OAuthConfig struct {
	GoogleProvider   *providers.GoogleProvider
	GitHubProvider   *providers.GitHubProvider
	GoogleConfigured bool
	GitHubConfigured bool
}

func NewOAuthConfig() *OAuthConfig {
	cfg := config.GlobalConfig
	logger := slog.With("component", "oauth_config", "operation", "setup")

	googleConfig := &oauth2.Config{
		ClientID:     cfg.OAuth.Google.ClientID,
		ClientSecret: cfg.OAuth.Google.ClientSecret,
		RedirectURL:  cfg.OAuth.Google.RedirectURL,
		Scopes:       cfg.OAuth.Google.Scopes,
		Endpoint:     google.Endpoint,
	}

	githubConfig := &oauth2.Config{
		ClientID:     cfg.OAuth.GitHub.ClientID,
		ClientSecret: cfg.OAuth.GitHub.ClientSecret,
		RedirectURL:  cfg.OAuth.GitHub.RedirectURL,
		Scopes:       cfg.OAuth.GitHub.Scopes,
		Endpoint:     github.Endpoint,
	}

	oauthConfig := &OAuthConfig{
		GoogleProvider:   providers.NewGoogleProvider(googleConfig),
		GitHubProvider:   providers.NewGitHubProvider(githubConfig),
		GoogleConfigured: cfg.GoogleOAuthConfigured(),
		GitHubConfigured: cfg.GitHubOAuthConfigured(),
	}

	logger.Info("OAuth providers configured",
		"google_configured", oauthConfig.GoogleConfigured,
		"github_configured", oauthConfig.GitHubConfigured,
	)

	return oauthConfig
}
