package registration

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"

	"github.com/International-Combat-Archery-Alliance/email"

	"github.com/gulf-dental-association/member-portal/events"
	"github.com/gulf-dental-association/member-portal/users"
)

//go:embed templates
var templates embed.FS

func SendJoinConfirmationEmail(ctx context.Context, emailSender email.Sender, fromAddress string, member EventMember, event events.Event, user users.User) error {
	htmlBody, err := makeHtmlBody(event, member, user)
	if err != nil {
		return err
	}

	textOnlyBody, err := makeTextOnlyBody(event, member, user)
	if err != nil {
		return err
	}

	return emailSender.SendEmail(ctx, email.Email{
		FromAddress: fromAddress,
		ToAddresses: []string{user.Email},
		Subject:     fmt.Sprintf("You're registered - %q", event.Title),
		HTMLBody:    htmlBody,
		TextBody:    textOnlyBody,
	})
}

func makeHtmlBody(event events.Event, member EventMember, user users.User) (string, error) {
	tmpl, err := template.ParseFS(templates, "templates/join-confirmation.tmpl")
	if err != nil {
		return "", fmt.Errorf("failed to parse email template: %w", err)
	}

	var buf bytes.Buffer
	err = tmpl.Execute(&buf, map[string]any{
		"Event":  event,
		"Member": member,
		"User":   user,
	})
	if err != nil {
		return "", fmt.Errorf("failed to execute email template: %w", err)
	}

	return buf.String(), nil
}

func makeTextOnlyBody(event events.Event, member EventMember, user users.User) (string, error) {
	tmpl, err := template.ParseFS(templates, "templates/join-confirmation-textonly.tmpl")
	if err != nil {
		return "", fmt.Errorf("failed to parse email template: %w", err)
	}

	var buf bytes.Buffer
	err = tmpl.Execute(&buf, map[string]any{
		"Event":  event,
		"Member": member,
		"User":   user,
	})
	if err != nil {
		return "", fmt.Errorf("failed to execute email template: %w", err)
	}

	return buf.String(), nil
}
