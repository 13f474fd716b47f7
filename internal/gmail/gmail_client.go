package gmail

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"business-admin/internal/logger"
	"business-admin/internal/model"
	"business-admin/internal/repository"
	"business-admin/internal/service"
)

const (
	me         = "me"
	inboxQuery = "in:inbox is:unread"
)

// Scopes requested at sign-in so the stored tokens can read and label mail.
var Scopes = []string{gmail.GmailModifyScope}

// NewOAuthConfig builds the Google OAuth2 config shared by sign-in and the
// inbox client.
func NewOAuthConfig(clientID, clientSecret, redirectURL string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURL,
		Endpoint:     google.Endpoint,
		Scopes:       Scopes,
	}
}

type gmailClient struct {
	oauth    *oauth2.Config
	userRepo repository.UserRepository
	logger   *logger.Logger
}

// NewGmailClient returns a client that talks to each user's mailbox with the
// tokens stored on the user and persists them again after a refresh.
func NewGmailClient(oauth *oauth2.Config, userRepo repository.UserRepository, logger *logger.Logger) service.GmailClient {
	return &gmailClient{
		oauth:    oauth,
		userRepo: userRepo,
		logger:   logger,
	}
}

func (g *gmailClient) serviceFor(ctx context.Context, user *model.User) (*gmail.Service, error) {
	stored := &oauth2.Token{
		AccessToken:  user.AccessToken,
		RefreshToken: user.RefreshToken,
		Expiry:       user.TokenExpiry,
		TokenType:    "Bearer",
	}
	ts := g.oauth.TokenSource(ctx, stored)
	current, err := ts.Token()
	if err != nil {
		return nil, fmt.Errorf("refresh token for %s: %w", user.Email, err)
	}

	if current.AccessToken != stored.AccessToken {
		user.AccessToken = current.AccessToken
		user.TokenExpiry = current.Expiry
		if current.RefreshToken != "" {
			user.RefreshToken = current.RefreshToken
		}
		if err := g.userRepo.Update(ctx, user); err != nil {
			g.logger.Warn("Could not store refreshed token for user:", user.ID, err)
		}
	}

	svc, err := gmail.NewService(ctx, option.WithTokenSource(oauth2.ReuseTokenSource(current, ts)))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gmail service: %w", err)
	}
	return svc, nil
}

func (g *gmailClient) ListInbox(ctx context.Context, user *model.User, maxResults int64) ([]*model.Email, error) {
	svc, err := g.serviceFor(ctx, user)
	if err != nil {
		return nil, err
	}

	list, err := svc.Users.Messages.List(me).Q(inboxQuery).MaxResults(maxResults).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list inbox messages: %w", err)
	}

	emails := make([]*model.Email, 0, len(list.Messages))
	for _, msg := range list.Messages {
		message, err := svc.Users.Messages.Get(me, msg.Id).Format("full").Context(ctx).Do()
		if err != nil {
			g.logger.Error("Failed to get message:", msg.Id, err)
			continue
		}
		emails = append(emails, toEmail(user.ID, message))
	}

	g.logger.Info("Fetched", len(emails), "unread emails from Gmail for", user.Email)
	return emails, nil
}

func (g *gmailClient) MarkAsRead(ctx context.Context, user *model.User, messageID string) error {
	svc, err := g.serviceFor(ctx, user)
	if err != nil {
		return err
	}

	modifyRequest := &gmail.ModifyMessageRequest{RemoveLabelIds: []string{"UNREAD"}}
	if _, err := svc.Users.Messages.Modify(me, messageID, modifyRequest).Context(ctx).Do(); err != nil {
		return fmt.Errorf("failed to mark email as read: %w", err)
	}

	g.logger.Debug("Marked email as read:", messageID)
	return nil
}
