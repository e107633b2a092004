package service

import (
	"context"
	"fmt"
	"time"

	"roomgate-backend/internal/domain"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

type emailService struct {
	apiKey    string
	fromEmail string
	fromName  string
}

func NewEmailService(apiKey, fromEmail, fromName string) EmailService {
	return &emailService{
		apiKey:    apiKey,
		fromEmail: fromEmail,
		fromName:  fromName,
	}
}

func (s *emailService) send(to, toName, subject, plainText string) error {
	from := mail.NewEmail(s.fromName, s.fromEmail)
	recipient := mail.NewEmail(toName, to)

	message := mail.NewSingleEmail(from, subject, recipient, plainText, "")

	client := sendgrid.NewSendClient(s.apiKey)
	response, err := client.Send(message)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	if response.StatusCode >= 400 {
		return fmt.Errorf("sendgrid error: status %d, body: %s", response.StatusCode, response.Body)
	}
	return nil
}

func (s *emailService) SendJoinRequestNotice(ctx context.Context, creatorEmail, creatorName, requesterName, roomSlug string) error {
	subject := fmt.Sprintf("New join request for your room %q", roomSlug)
	body := fmt.Sprintf("Hello %s,\n\n%s is asking to join your room %q. Head to your dashboard to approve or deny the request.\n\nBest regards,\nThe RoomGate Team",
		creatorName, requesterName, roomSlug)
	return s.send(creatorEmail, creatorName, subject, body)
}

func (s *emailService) SendDecisionNotice(ctx context.Context, requesterEmail, requesterName, creatorName string, status domain.JoinRequestStatus, reason string) error {
	subject := fmt.Sprintf("Your join request to %s was %s", creatorName, decisionWord(status))
	body := fmt.Sprintf("Hello %s,\n\nYour request to join %s's room has been %s.",
		requesterName, creatorName, decisionWord(status))
	if reason != "" {
		body += fmt.Sprintf("\n\nReason: %s", reason)
	}
	if status == domain.JoinRequestStatusApproved {
		body += "\n\nYour access is time-limited; join within the next few minutes."
	}
	body += "\n\nBest regards,\nThe RoomGate Team"
	return s.send(requesterEmail, requesterName, subject, body)
}

func (s *emailService) SendPendingDigest(ctx context.Context, creatorEmail, creatorName string, pendingCount int, oldest time.Time) error {
	subject := fmt.Sprintf("%d join request(s) waiting for your decision", pendingCount)
	body := fmt.Sprintf("Hello %s,\n\nYou have %d join request(s) waiting for a decision; the oldest arrived on %s.\n\nBest regards,\nThe RoomGate Team",
		creatorName, pendingCount, oldest.Format("2006-01-02 15:04 MST"))
	return s.send(creatorEmail, creatorName, subject, body)
}

func decisionWord(status domain.JoinRequestStatus) string {
	if status == domain.JoinRequestStatusApproved {
		return "approved"
	}
	return "denied"
}
