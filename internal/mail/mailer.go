// Package mail sends transactional email. The Mailer interface decouples the
// invitation flow from the SMTP transport so tests can capture outbound mail.
package mail

import (
	"context"
	"fmt"
	"log/slog"

	gomail "github.com/wneessen/go-mail"

	"github.com/scorrilo/budbudbud/internal/config"
)

// Invite carries everything the invite template needs.
type Invite struct {
	// To is the invitee's email address.
	To string
	// Name is the invitee's group-scoped display name.
	Name string
	// Inviter is the inviting member's display name.
	Inviter string
	// GroupName is the group the invitee was added to.
	GroupName string
	// MemberSummary is a human-readable list of current members,
	// e.g. "Alice and Bob" or "Alice, Bob and Carol".
	MemberSummary string
	// URL is the sign-in callback embedding the raw invite token.
	URL string
}

// Mailer dispatches invitation email.
type Mailer interface {
	SendInvite(ctx context.Context, inv Invite) error
}

// SMTPMailer delivers mail over SMTP.
type SMTPMailer struct {
	client *gomail.Client
	from   string
}

// NewSMTPMailer creates a mailer from SMTP configuration.
func NewSMTPMailer(cfg config.SMTPConfig) (*SMTPMailer, error) {
	client, err := gomail.NewClient(cfg.Host,
		gomail.WithPort(cfg.Port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(cfg.Username),
		gomail.WithPassword(cfg.Password),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create mail client: %w", err)
	}
	return &SMTPMailer{client: client, from: cfg.From}, nil
}

// SendInvite renders and sends the invitation email.
func (m *SMTPMailer) SendInvite(ctx context.Context, inv Invite) error {
	body, err := renderInvite(inv)
	if err != nil {
		return err
	}

	msg := gomail.NewMsg()
	if err := msg.From(m.from); err != nil {
		return fmt.Errorf("invalid sender address: %w", err)
	}
	if err := msg.To(inv.To); err != nil {
		return fmt.Errorf("invalid recipient address: %w", err)
	}
	msg.Subject(fmt.Sprintf("%s has invited you to budbudbud", inv.Inviter))
	msg.SetBodyString(gomail.TypeTextPlain, body.Text)
	msg.AddAlternativeString(gomail.TypeTextHTML, body.HTML)

	if err := m.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("failed to send invite: %w", err)
	}
	return nil
}

// LogMailer logs invites instead of sending them. Used when SMTP is not
// configured (local development).
type LogMailer struct{}

// SendInvite logs the invite.
func (LogMailer) SendInvite(_ context.Context, inv Invite) error {
	slog.Info("Invite email suppressed (no SMTP configured)",
		"to", inv.To,
		"inviter", inv.Inviter,
		"group", inv.GroupName,
		"url", inv.URL,
	)
	return nil
}
