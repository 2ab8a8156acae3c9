package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
)

// AWSSESEmailService sends account lifecycle emails using AWS SES.
type AWSSESEmailService struct {
	sesClient   *ses.Client
	fromAddress string
	frontendURL string
	logger      *slog.Logger
}

// NewAWSSESEmailService creates a new AWS SES email service. frontendURL
// is the storefront base URL the activation/reset links point at.
func NewAWSSESEmailService(region, fromAddress, frontendURL string, logger *slog.Logger) (*AWSSESEmailService, error) {
	cfg, err := config.LoadDefaultConfig(context.Background(), config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &AWSSESEmailService{
		sesClient:   ses.NewFromConfig(cfg),
		fromAddress: fromAddress,
		frontendURL: frontendURL,
		logger:      logger,
	}, nil
}

// activationLink builds the frontend URL the activation email points
// at. The frontend forwards both segments to the activation endpoint,
// which addresses the account by id.
func (s *AWSSESEmailService) activationLink(accountID int64, token string) string {
	return fmt.Sprintf("%s/activate/%d/%s", s.frontendURL, accountID, token)
}

func (s *AWSSESEmailService) passwordResetLink(token string) string {
	return fmt.Sprintf("%s/reset-password/%s", s.frontendURL, token)
}

// SendActivationEmail sends the account activation email.
func (s *AWSSESEmailService) SendActivationEmail(ctx context.Context, accountID int64, email, fullName, token string) error {
	activationLink := s.activationLink(accountID, token)

	htmlBody := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background-color: #f8f9fa; padding: 20px; text-align: center; border-radius: 4px; }
        .button { display: inline-block; background-color: #0066cc; color: white; padding: 12px 24px; text-decoration: none; border-radius: 4px; margin: 20px 0; }
        .footer { color: #666; font-size: 12px; margin-top: 20px; padding-top: 20px; border-top: 1px solid #eee; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>Activate Your Bookstore Account</h1>
        </div>
        <p>Hi %s,</p>
        <p>Thank you for signing up. Click the link below to activate your account:</p>
        <p><a href="%s" class="button">Activate Account</a></p>
        <p>Or copy and paste this link in your browser:<br><code>%s</code></p>
        <p>This link will expire in 24 hours. If you didn't create this account, you can ignore this email.</p>
        <div class="footer">
            <p>This is an automated message. Please do not reply to this email.</p>
        </div>
    </div>
</body>
</html>
`, fullName, activationLink, activationLink)

	textBody := fmt.Sprintf(`Activate Your Bookstore Account

Hi %s,

Thank you for signing up. Click the link below to activate your account:

%s

This link will expire in 24 hours. If you didn't create this account, you can ignore this email.
`, fullName, activationLink)

	return s.send(ctx, email, "Activate Your Bookstore Account", htmlBody, textBody)
}

// SendPasswordResetEmail sends the password reset email.
func (s *AWSSESEmailService) SendPasswordResetEmail(ctx context.Context, email, fullName, token string) error {
	resetLink := s.passwordResetLink(token)

	htmlBody := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background-color: #f8f9fa; padding: 20px; text-align: center; border-radius: 4px; }
        .button { display: inline-block; background-color: #0066cc; color: white; padding: 12px 24px; text-decoration: none; border-radius: 4px; margin: 20px 0; }
        .footer { color: #666; font-size: 12px; margin-top: 20px; padding-top: 20px; border-top: 1px solid #eee; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>Reset Your Password</h1>
        </div>
        <p>Hi %s,</p>
        <p>We received a request to reset your password. Click the link below to choose a new one:</p>
        <p><a href="%s" class="button">Reset Password</a></p>
        <p>Or copy and paste this link in your browser:<br><code>%s</code></p>
        <p>This link will expire in 1 hour. If you didn't request a reset, you can ignore this email.</p>
        <div class="footer">
            <p>This is an automated message. Please do not reply to this email.</p>
        </div>
    </div>
</body>
</html>
`, fullName, resetLink, resetLink)

	textBody := fmt.Sprintf(`Reset Your Password

Hi %s,

We received a request to reset your password. Click the link below to choose a new one:

%s

This link will expire in 1 hour. If you didn't request a reset, you can ignore this email.
`, fullName, resetLink)

	return s.send(ctx, email, "Reset Your Bookstore Password", htmlBody, textBody)
}

func (s *AWSSESEmailService) send(ctx context.Context, to, subject, htmlBody, textBody string) error {
	input := &ses.SendEmailInput{
		Source: aws.String(s.fromAddress),
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Message: &types.Message{
			Subject: &types.Content{
				Data: aws.String(subject),
			},
			Body: &types.Body{
				Html: &types.Content{
					Data: aws.String(htmlBody),
				},
				Text: &types.Content{
					Data: aws.String(textBody),
				},
			},
		},
	}

	if _, err := s.sesClient.SendEmail(ctx, input); err != nil {
		return fmt.Errorf("failed to send email via SES: %w", err)
	}

	s.logger.Info("email sent", slog.String("subject", subject))
	return nil
}

var _ ActivationMailer = (*AWSSESEmailService)(nil)
