// internal/app/features/authgoogle/provider.go
package authgoogle

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/dalemusser/venuehub/internal/app/system/identity"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const userInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

// Provider is the OAuth leg of the flow: where to send the browser, and how
// to turn the returned code into an identity assertion.
type Provider interface {
	AuthCodeURL(state, verifier string) string
	Assertion(ctx context.Context, code, verifier string) (identity.Assertion, error)
}

// GoogleProvider talks to Google's OAuth2 and userinfo endpoints.
type GoogleProvider struct {
	cfg *oauth2.Config
}

// NewGoogleProvider builds a provider whose callback is redirectURL.
func NewGoogleProvider(clientID, clientSecret, redirectURL string) *GoogleProvider {
	return &GoogleProvider{cfg: &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURL,
		Scopes: []string{
			"openid",
			"https://www.googleapis.com/auth/userinfo.email",
			"https://www.googleapis.com/auth/userinfo.profile",
		},
		Endpoint: google.Endpoint,
	}}
}

// AuthCodeURL returns the consent URL with a PKCE S256 challenge for verifier.
func (p *GoogleProvider) AuthCodeURL(state, verifier string) string {
	return p.cfg.AuthCodeURL(state, oauth2.S256ChallengeOption(verifier))
}

// googleUserInfo represents user info returned from Google.
type googleUserInfo struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"verified_email"`
	GivenName     string `json:"given_name"`
	FamilyName    string `json:"family_name"`
	Picture       string `json:"picture"`
}

// Assertion exchanges code and fetches the profile. An address Google has
// not verified is dropped, which routes the user to the email form.
func (p *GoogleProvider) Assertion(ctx context.Context, code, verifier string) (identity.Assertion, error) {
	token, err := p.cfg.Exchange(ctx, code, oauth2.VerifierOption(verifier))
	if err != nil {
		return identity.Assertion{}, fmt.Errorf("exchange code: %w", err)
	}

	client := p.cfg.Client(ctx, token)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, userInfoURL, nil)
	if err != nil {
		return identity.Assertion{}, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return identity.Assertion{}, fmt.Errorf("fetch user info: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return identity.Assertion{}, fmt.Errorf("user info: unexpected status %d", resp.StatusCode)
	}

	var info googleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return identity.Assertion{}, fmt.Errorf("decode user info: %w", err)
	}

	email := info.Email
	if !info.EmailVerified {
		email = ""
	}
	return identity.Assertion{
		Provider:       "google",
		ProviderUserID: info.ID,
		Email:          email,
		GivenName:      info.GivenName,
		FamilyName:     info.FamilyName,
		AvatarURL:      info.Picture,
	}, nil
}
