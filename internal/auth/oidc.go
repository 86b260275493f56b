package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"golang.org/x/oauth2"

	"github.com/sakif/alive-sleep/internal/config"
)

// Provider runs the OpenID Connect authorization-code flow against Auth0.
//
// Only the subject matters to the rest of the app. The profile fields ride
// along in the session for display.
type Provider struct {
	issuer   string
	clientID string
	config   *oauth2.Config
}

func NewProvider(cfg config.Auth0Config, callbackURL string) *Provider {
	return &Provider{
		issuer:   cfg.IssuerBaseURL,
		clientID: cfg.ClientID,
		config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  callbackURL,
			Scopes:       []string{"openid", "profile", "email"},
			Endpoint: oauth2.Endpoint{
				AuthURL:   cfg.IssuerBaseURL + "/authorize",
				TokenURL:  cfg.IssuerBaseURL + "/oauth/token",
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
	}
}

// AuthURL is where the browser goes to log in. state comes back untouched
// on the callback and must match the state cookie.
func (p *Provider) AuthURL(state string) string {
	return p.config.AuthCodeURL(state)
}

// Exchange trades the callback code for tokens and reads the userinfo endpoint.
func (p *Provider) Exchange(ctx context.Context, code string) (*Identity, error) {
	tok, err := p.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("auth: exchanging code: %w", err)
	}

	resp, err := p.config.Client(ctx, tok).Get(p.issuer + "/userinfo")
	if err != nil {
		return nil, fmt.Errorf("auth: calling userinfo: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("auth: userinfo returned status %d", resp.StatusCode)
	}

	var id Identity
	if err := json.NewDecoder(resp.Body).Decode(&id); err != nil {
		return nil, fmt.Errorf("auth: decoding userinfo: %w", err)
	}
	if id.Subject == "" {
		return nil, fmt.Errorf("auth: userinfo returned no subject")
	}
	return &id, nil
}

// LogoutURL ends the provider session and sends the browser to returnTo.
func (p *Provider) LogoutURL(returnTo string) string {
	q := url.Values{}
	q.Set("client_id", p.clientID)
	q.Set("returnTo", returnTo)
	return p.issuer + "/v2/logout?" + q.Encode()
}
