package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
	"golang.org/x/oauth2/google"

	"github.com/staynest/staynest-backend/internal/config"
)

const (
	ProviderGoogle = "google"
	ProviderGitHub = "github"
)

// OAuthProvider wraps one external identity provider: its authorization-code
// configuration plus profile retrieval after the token exchange.
type OAuthProvider struct {
	Name   string
	Config *oauth2.Config
}

// NewOAuthProviders builds the configured providers keyed by name. Providers
// without credentials are omitted; their routes then respond 404.
func NewOAuthProviders(cfg *config.Config) map[string]*OAuthProvider {
	providers := make(map[string]*OAuthProvider)

	if cfg.Google.ClientID != "" {
		providers[ProviderGoogle] = &OAuthProvider{
			Name: ProviderGoogle,
			Config: &oauth2.Config{
				ClientID:     cfg.Google.ClientID,
				ClientSecret: cfg.Google.ClientSecret,
				RedirectURL:  cfg.Host + "/auth/google/callback",
				Scopes:       []string{"openid", "email", "profile"},
				Endpoint:     google.Endpoint,
			},
		}
	}
	if cfg.GitHub.ClientID != "" {
		providers[ProviderGitHub] = &OAuthProvider{
			Name: ProviderGitHub,
			Config: &oauth2.Config{
				ClientID:     cfg.GitHub.ClientID,
				ClientSecret: cfg.GitHub.ClientSecret,
				RedirectURL:  cfg.Host + "/auth/github/callback",
				Scopes:       []string{"user:email"},
				Endpoint:     github.Endpoint,
			},
		}
	}
	return providers
}

// FetchProfile retrieves the external profile for an exchanged token.
func (p *OAuthProvider) FetchProfile(ctx context.Context, token *oauth2.Token) (ExternalProfile, error) {
	client := p.Config.Client(ctx, token)
	switch p.Name {
	case ProviderGoogle:
		return fetchGoogleProfile(client)
	case ProviderGitHub:
		return fetchGitHubProfile(client)
	}
	return ExternalProfile{}, fmt.Errorf("unknown provider %q", p.Name)
}

func getJSON(client *http.Client, url string, out any) error {
	resp, err := client.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s returned %d", url, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func fetchGoogleProfile(client *http.Client) (ExternalProfile, error) {
	var info struct {
		ID         string `json:"id"`
		Email      string `json:"email"`
		GivenName  string `json:"given_name"`
		FamilyName string `json:"family_name"`
	}
	if err := getJSON(client, "https://www.googleapis.com/oauth2/v2/userinfo", &info); err != nil {
		return ExternalProfile{}, err
	}
	if info.Email == "" {
		return ExternalProfile{}, errors.New("google profile has no email")
	}
	return ExternalProfile{
		Provider:   ProviderGoogle,
		ExternalID: info.ID,
		Email:      info.Email,
		Firstname:  info.GivenName,
		Lastname:   info.FamilyName,
	}, nil
}

func fetchGitHubProfile(client *http.Client) (ExternalProfile, error) {
	var user struct {
		ID    int64  `json:"id"`
		Login string `json:"login"`
		Name  string `json:"name"`
		Email string `json:"email"`
	}
	if err := getJSON(client, "https://api.github.com/user", &user); err != nil {
		return ExternalProfile{}, err
	}

	email := user.Email
	if email == "" {
		// Private emails are not on /user; ask the emails endpoint for the
		// primary verified address.
		var emails []struct {
			Email    string `json:"email"`
			Primary  bool   `json:"primary"`
			Verified bool   `json:"verified"`
		}
		if err := getJSON(client, "https://api.github.com/user/emails", &emails); err != nil {
			return ExternalProfile{}, err
		}
		for _, e := range emails {
			if e.Primary && e.Verified {
				email = e.Email
				break
			}
		}
	}
	if email == "" {
		return ExternalProfile{}, errors.New("no verified email found on GitHub account")
	}

	displayName := user.Name
	if displayName == "" {
		displayName = user.Login
	}
	firstname, lastname := splitName(displayName)

	return ExternalProfile{
		Provider:   ProviderGitHub,
		ExternalID: fmt.Sprintf("%d", user.ID),
		Email:      email,
		Firstname:  firstname,
		Lastname:   lastname,
	}, nil
}

// splitName splits a display name into first and remaining parts.
func splitName(name string) (string, string) {
	parts := strings.Fields(name)
	if len(parts) == 0 {
		return "", ""
	}
	if len(parts) == 1 {
		return parts[0], ""
	}
	return parts[0], strings.Join(parts[1:], " ")
}
