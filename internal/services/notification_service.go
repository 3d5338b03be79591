// internal/services/notification_service.go
package services

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/smtp"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/javajoker/rights-backend/internal/config"
	"github.com/javajoker/rights-backend/internal/models"
	"github.com/javajoker/rights-backend/internal/utils"
)

type NotificationService struct {
	db     *gorm.DB
	config *config.Config
	send   func(to, subject, body string) error
}

type EmailTemplate struct {
	Subject string
	Body    string
}

type expiringRow struct {
	Partner   string
	Territory string
	Platform  string
	EndDate   string
	URL       string
}

func NewNotificationService(db *gorm.DB, config *config.Config) *NotificationService {
	s := &NotificationService{
		db:     db,
		config: config,
	}
	s.send = s.sendEmail
	return s
}

func (s *NotificationService) SendInviteEmail(user *models.User, token string) error {
	data := map[string]interface{}{
		"Name":      displayName(user),
		"InviteURL": fmt.Sprintf("%s/accept-invite?token=%s", s.config.Frontend.BaseURL, token),
		"ExpiresIn": fmt.Sprintf("%d hours", s.config.Auth.InviteTTL),
		"Role":      user.Role,
	}
	return s.deliver(user.Email, "invite", data)
}

func (s *NotificationService) SendPasswordResetEmail(user *models.User, token string) error {
	data := map[string]interface{}{
		"Name":      displayName(user),
		"ResetURL":  fmt.Sprintf("%s/reset-password?token=%s", s.config.Frontend.BaseURL, token),
		"ExpiresIn": fmt.Sprintf("%d hour(s)", s.config.Auth.ResetTTL),
	}
	return s.deliver(user.Email, "password_reset", data)
}

// NotifyExpiringContracts sends one digest to every active Legal and Admin
// user and stores an in-app notification per contract. Returns the number
// of users notified.
func (s *NotificationService) NotifyExpiringContracts(ctx context.Context, contracts []models.Contract) (int, error) {
	if len(contracts) == 0 {
		return 0, nil
	}

	var recipients []models.User
	if err := s.db.WithContext(ctx).
		Where("role IN ? AND is_active = ?", []models.UserRole{models.UserRoleLegal, models.UserRoleAdmin}, true).
		Find(&recipients).Error; err != nil {
		return 0, fmt.Errorf("failed to load recipients: %w", err)
	}

	rows := make([]expiringRow, 0, len(contracts))
	for _, c := range contracts {
		rows = append(rows, expiringRow{
			Partner:   c.Partner,
			Territory: c.Territory,
			Platform:  c.Platform,
			EndDate:   utils.FormatDatePtr(c.EndDate),
			URL:       fmt.Sprintf("%s/contracts/%s", s.config.Frontend.BaseURL, c.ID),
		})
	}

	notified := 0
	for i := range recipients {
		user := &recipients[i]

		notifications := make([]models.Notification, 0, len(contracts))
		for j := range contracts {
			contractID := contracts[j].ID
			notifications = append(notifications, models.Notification{
				UserID:              &user.ID,
				Type:                "contract_expiring",
				Title:               "Contract expiring soon",
				Message:             fmt.Sprintf("Contract with %s ends on %s", contracts[j].Partner, utils.FormatDatePtr(contracts[j].EndDate)),
				Priority:            "high",
				RelatedResourceType: "contract",
				RelatedResourceID:   &contractID,
			})
		}
		if err := s.db.WithContext(ctx).Create(&notifications).Error; err != nil {
			return notified, fmt.Errorf("failed to create notifications: %w", err)
		}

		data := map[string]interface{}{
			"Name":      displayName(user),
			"Contracts": rows,
			"Days":      s.config.Notifications.ExpiryWindowDays,
		}
		if err := s.deliver(user.Email, "contracts_expiring", data); err != nil {
			logrus.WithError(err).WithField("email", user.Email).Error("Failed to send expiry digest")
			continue
		}
		notified++
	}

	return notified, nil
}

func (s *NotificationService) ListNotifications(ctx context.Context, userID uuid.UUID, unreadOnly bool) ([]models.Notification, error) {
	query := s.db.WithContext(ctx).Where("user_id = ?", userID)
	if unreadOnly {
		query = query.Where("status = ?", "unread")
	}

	var notifications []models.Notification
	if err := query.Order("created_at DESC").Limit(100).Find(&notifications).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch notifications: %w", err)
	}
	return notifications, nil
}

func (s *NotificationService) MarkNotificationRead(ctx context.Context, userID, id uuid.UUID) error {
	result := s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(map[string]interface{}{"status": "read", "read_at": gorm.Expr("NOW()")})
	if result.Error != nil {
		return fmt.Errorf("failed to update notification: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("notification %s: %w", id, ErrNotFound)
	}
	return nil
}

// Helper methods
func (s *NotificationService) deliver(to, templateType string, data interface{}) error {
	tmpl := s.getEmailTemplate(templateType)
	body, err := s.renderTemplate(tmpl.Body, data)
	if err != nil {
		return fmt.Errorf("failed to render email template: %w", err)
	}
	return s.send(to, tmpl.Subject, body)
}

func (s *NotificationService) sendEmail(to, subject, body string) error {
	if s.config.Email.SMTPHost == "" {
		logrus.WithFields(logrus.Fields{"to": to, "subject": subject}).Info("SMTP not configured, email skipped")
		return nil
	}

	auth := smtp.PlainAuth("", s.config.Email.SMTPUsername, s.config.Email.SMTPPassword, s.config.Email.SMTPHost)

	msg := []byte(fmt.Sprintf("From: %s <%s>\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=\"UTF-8\"\r\n\r\n%s",
		s.config.Email.FromName, s.config.Email.FromEmail, to, subject, body))

	addr := fmt.Sprintf("%s:%s", s.config.Email.SMTPHost, s.config.Email.SMTPPort)
	return smtp.SendMail(addr, auth, s.config.Email.FromEmail, []string{to}, msg)
}

func (s *NotificationService) renderTemplate(templateStr string, data interface{}) (string, error) {
	tmpl, err := template.New("email").Parse(templateStr)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}

	return buf.String(), nil
}

func (s *NotificationService) getEmailTemplate(templateType string) EmailTemplate {
	templates := map[string]EmailTemplate{
		"invite": {
			Subject: "You have been invited to Rights & Royalties",
			Body: `
<!DOCTYPE html>
<html>
<body>
	<h2>Hello {{.Name}},</h2>
	<p>You have been invited as {{.Role}}. Set your password using the link below:</p>
	<a href="{{.InviteURL}}">Accept invitation</a>
	<p>The link expires in {{.ExpiresIn}}.</p>
</body>
</html>`,
		},
		"password_reset": {
			Subject: "Password Reset Request",
			Body: `
<!DOCTYPE html>
<html>
<body>
	<h2>Hello {{.Name}},</h2>
	<p>Use the link below to choose a new password:</p>
	<a href="{{.ResetURL}}">Reset password</a>
	<p>The link expires in {{.ExpiresIn}}. If you did not ask for this, ignore this email.</p>
</body>
</html>`,
		},
		"contracts_expiring": {
			Subject: "Contracts expiring soon",
			Body: `
<!DOCTYPE html>
<html>
<body>
	<h2>Hello {{.Name}},</h2>
	<p>The following contracts end within {{.Days}} days and will not renew automatically:</p>
	<table>
		<tr><th>Partner</th><th>Territory</th><th>Platform</th><th>End date</th></tr>
		{{range .Contracts}}<tr><td><a href="{{.URL}}">{{.Partner}}</a></td><td>{{.Territory}}</td><td>{{.Platform}}</td><td>{{.EndDate}}</td></tr>
		{{end}}
	</table>
</body>
</html>`,
		},
	}

	if template, exists := templates[templateType]; exists {
		return template
	}

	return EmailTemplate{
		Subject: "Notification",
		Body:    "<p>{{.Message}}</p>",
	}
}

func displayName(user *models.User) string {
	if user.Name != "" {
		return user.Name
	}
	return user.Email
}
