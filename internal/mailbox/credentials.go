package mailbox

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
)

// OAuthCredentials holds the pieces of an already-consented Gmail grant.
// The interactive consent flow lives outside this service; operators supply
// a refresh token obtained from it.
type OAuthCredentials struct {
	ClientID     string
	ClientSecret string
	RefreshToken string
}

// TokenSource builds a self-refreshing token source from the stored grant.
func (c OAuthCredentials) TokenSource(ctx context.Context) oauth2.TokenSource {
	cfg := &oauth2.Config{
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		Endpoint:     google.Endpoint,
		Scopes:       []string{gmail.GmailModifyScope},
	}
	return cfg.TokenSource(ctx, &oauth2.Token{RefreshToken: c.RefreshToken})
}

// CredentialsFromEnv reads the Gmail grant from the environment.
func CredentialsFromEnv() (OAuthCredentials, error) {
	creds := OAuthCredentials{
		ClientID:     os.Getenv("GMAIL_CLIENT_ID"),
		ClientSecret: os.Getenv("GMAIL_CLIENT_SECRET"),
		RefreshToken: os.Getenv("GMAIL_REFRESH_TOKEN"),
	}
	if creds.ClientID == "" || creds.ClientSecret == "" || creds.RefreshToken == "" {
		return OAuthCredentials{}, fmt.Errorf("CredentialsFromEnv: GMAIL_CLIENT_ID, GMAIL_CLIENT_SECRET and GMAIL_REFRESH_TOKEN must be set")
	}
	return creds, nil
}
