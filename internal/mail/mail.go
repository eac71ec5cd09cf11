// Package mail renders account e-mails.
package mail

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"text/template"
	"time"

	"github.com/charmbracelet/log"
)

//go:embed templates/*.txt
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.txt"))

// Mailer sends account e-mails.
type Mailer interface {
	SendVerificationCode(ctx context.Context, to, code string, expiresIn time.Duration) error
}

type verificationData struct {
	From      string
	To        string
	Code      string
	ExpiresIn string
}

// RenderVerification returns the full text of a verification e-mail.
func RenderVerification(from, to, code string, expiresIn time.Duration) (string, error) {
	var buf bytes.Buffer
	err := templates.ExecuteTemplate(&buf, "verification.txt", verificationData{
		From:      from,
		To:        to,
		Code:      code,
		ExpiresIn: expiresIn.Round(time.Minute).String(),
	})
	if err != nil {
		return "", fmt.Errorf("failed to render verification mail: %w", err)
	}
	return buf.String(), nil
}

// LogMailer writes messages to the logger instead of delivering them.
type LogMailer struct {
	From   string
	Logger *log.Logger
}

// NewLogMailer creates a mailer that logs messages sent from from.
func NewLogMailer(from string, logger *log.Logger) *LogMailer {
	if logger == nil {
		logger = log.Default()
	}
	return &LogMailer{From: from, Logger: logger}
}

func (m *LogMailer) SendVerificationCode(_ context.Context, to, code string, expiresIn time.Duration) error {
	body, err := RenderVerification(m.From, to, code, expiresIn)
	if err != nil {
		return err
	}
	m.Logger.Info("verification mail", "to", to, "body", body)
	return nil
}

var _ Mailer = (*LogMailer)(nil)
