package services

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log"
	"sync"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"google.golang.org/api/option"

	"github.com/npomfret/splitifyd-sub010/config"
	"github.com/npomfret/splitifyd-sub010/currency"
	"github.com/npomfret/splitifyd-sub010/database"
	"github.com/npomfret/splitifyd-sub010/models"
)

// NotificationService fans group events out to members as FCM pushes and
// SendGrid emails. Either channel degrades to a no-op when its
// credentials are absent; balances never depend on notification success.
type NotificationService struct {
	fcm      *messaging.Client
	sendgrid *sendgrid.Client
}

var (
	notifService *NotificationService
	notifOnce    sync.Once
)

func GetNotificationService() *NotificationService {
	notifOnce.Do(func() {
		notifService = &NotificationService{}

		app, err := firebase.NewApp(context.Background(), nil,
			option.WithCredentialsFile(config.AppConfig.FirebaseCredPath))
		if err != nil {
			log.Println("Firebase unavailable, push notifications disabled:", err)
		} else if client, err := app.Messaging(context.Background()); err != nil {
			log.Println("FCM client init failed, push notifications disabled:", err)
		} else {
			notifService.fcm = client
		}

		if config.AppConfig.SendGridAPIKey != "" {
			notifService.sendgrid = sendgrid.NewSendClient(config.AppConfig.SendGridAPIKey)
		} else {
			log.Println("SendGrid API key not set, email notifications disabled")
		}
	})
	return notifService
}

func (ns *NotificationService) sendPush(fcmToken string, title string, body string, data map[string]string) {
	if ns.fcm == nil || fcmToken == "" {
		return
	}

	_, err := ns.fcm.Send(context.Background(), &messaging.Message{
		Token: fcmToken,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: data,
	})
	if err != nil {
		log.Printf("FCM send error: %v", err)
	}
}

func (ns *NotificationService) sendEmail(toEmail string, toName string, subject string, htmlBody string) {
	if ns.sendgrid == nil || toEmail == "" {
		return
	}

	from := mail.NewEmail(config.AppConfig.AppName, config.AppConfig.SendGridFrom)
	to := mail.NewEmail(toName, toEmail)
	message := mail.NewSingleEmail(from, subject, to, "", htmlBody)

	resp, err := ns.sendgrid.Send(message)
	if err != nil {
		log.Printf("Email send error: %v", err)
		return
	}
	if resp.StatusCode >= 300 {
		log.Printf("SendGrid returned status: %d", resp.StatusCode)
	}
}

// formatAmount renders an amount at its currency's precision.
func formatAmount(code string, amount float64) string {
	return fmt.Sprintf("%s %.*f", code, currency.Decimals(code), amount)
}

// NotifyExpenseAdded sends push + email to all split participants
func (ns *NotificationService) NotifyExpenseAdded(expense models.Expense, splits []models.ExpenseSplit, payer models.User, group models.Group) {
	for _, split := range splits {
		if split.UserID == expense.PaidBy {
			continue // Don't notify the payer
		}

		var user models.User
		if err := database.DB.First(&user, split.UserID).Error; err != nil {
			continue
		}

		title := fmt.Sprintf("%s added an expense", payer.Name)
		body := fmt.Sprintf("You owe %s for \"%s\" in %s", formatAmount(expense.Currency, split.OwedAmount), expense.Description, group.Name)

		// Push notification
		ns.sendPush(user.FCMToken, title, body, map[string]string{
			"type":       models.ActivityExpenseAdded,
			"expense_id": expense.ID.String(),
			"group_id":   expense.GroupID.String(),
		})

		// Email notification
		htmlBody := buildExpenseEmailHTML(payer.Name, user.Name, expense.Description,
			formatAmount(expense.Currency, expense.Amount),
			formatAmount(expense.Currency, split.OwedAmount), group.Name)
		ns.sendEmail(user.Email, user.Name, fmt.Sprintf("%s added \"%s\" in %s", payer.Name, expense.Description, group.Name), htmlBody)
	}
}

// NotifySettlement sends push + email to the payee
func (ns *NotificationService) NotifySettlement(settlement models.Settlement, payer models.User, payee models.User, group models.Group) {
	amount := formatAmount(settlement.Currency, settlement.Amount)
	title := fmt.Sprintf("%s paid you", payer.Name)
	body := fmt.Sprintf("%s paid you %s in %s", payer.Name, amount, group.Name)

	// Push
	ns.sendPush(payee.FCMToken, title, body, map[string]string{
		"type":     models.ActivitySettlement,
		"group_id": settlement.GroupID.String(),
	})

	// Email
	htmlBody := buildSettlementEmailHTML(payer.Name, payee.Name, amount, group.Name)
	ns.sendEmail(payee.Email, payee.Name, fmt.Sprintf("%s settled up with you in %s", payer.Name, group.Name), htmlBody)
}

// NotifyMemberAdded sends push + email to the newly added member
func (ns *NotificationService) NotifyMemberAdded(group models.Group, adder models.User, newMember models.User) {
	title := fmt.Sprintf("You were added to \"%s\"", group.Name)
	body := fmt.Sprintf("%s added you to the group \"%s\"", adder.Name, group.Name)

	// Push
	ns.sendPush(newMember.FCMToken, title, body, map[string]string{
		"type":     "member_added",
		"group_id": group.ID.String(),
	})

	// Email
	htmlBody := buildMemberAddedEmailHTML(adder.Name, newMember.Name, group.Name)
	ns.sendEmail(newMember.Email, newMember.Name, title, htmlBody)
}

// NotifyInvitation sends email to non-registered users
func (ns *NotificationService) NotifyInvitation(email string, inviterName string, groupName string) {
	subject := fmt.Sprintf("%s invited you to join \"%s\" on %s", inviterName, groupName, config.AppConfig.AppName)
	htmlBody := buildInvitationEmailHTML(inviterName, groupName)
	ns.sendEmail(email, "", subject, htmlBody)
}

// ============================================================
// EMAIL TEMPLATES
// ============================================================

func buildExpenseEmailHTML(payerName, userName, description, totalAmount, owedAmount, groupName string) string {
	tmpl := `
<!DOCTYPE html>
<html>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px; background-color: #f5f5f5;">
	<div style="background: white; border-radius: 12px; padding: 32px; box-shadow: 0 2px 8px rgba(0,0,0,0.1);">
		<h2 style="color: #1DB954; margin-top: 0;">New Expense Added</h2>
		<p>Hi <strong>{{.UserName}}</strong>,</p>
		<p><strong>{{.PayerName}}</strong> added a new expense in <strong>{{.GroupName}}</strong>:</p>
		<div style="background: #f8f9fa; border-radius: 8px; padding: 16px; margin: 16px 0;">
			<p style="margin: 4px 0; font-size: 18px;"><strong>{{.Description}}</strong></p>
			<p style="margin: 4px 0; color: #666;">Total: {{.TotalAmount}}</p>
			<p style="margin: 4px 0; color: #e53e3e; font-size: 18px;"><strong>Your share: {{.OwedAmount}}</strong></p>
		</div>
		<p style="color: #999; font-size: 12px; margin-top: 24px;">— {{.AppName}}</p>
	</div>
</body>
</html>`

	t, _ := template.New("expense").Parse(tmpl)
	var buf bytes.Buffer
	t.Execute(&buf, map[string]interface{}{
		"PayerName":   payerName,
		"UserName":    userName,
		"Description": description,
		"TotalAmount": totalAmount,
		"OwedAmount":  owedAmount,
		"GroupName":   groupName,
		"AppName":     config.AppConfig.AppName,
	})
	return buf.String()
}

func buildSettlementEmailHTML(payerName, payeeName, amount, groupName string) string {
	return fmt.Sprintf(`
<!DOCTYPE html>
<html>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px; background-color: #f5f5f5;">
	<div style="background: white; border-radius: 12px; padding: 32px; box-shadow: 0 2px 8px rgba(0,0,0,0.1);">
		<h2 style="color: #1DB954; margin-top: 0;">Payment Recorded</h2>
		<p>Hi <strong>%s</strong>,</p>
		<p><strong>%s</strong> recorded a payment of <strong>%s</strong> to you in <strong>%s</strong>.</p>
		<p>Check the app to see your updated balances.</p>
		<p style="color: #999; font-size: 12px; margin-top: 24px;">— %s</p>
	</div>
</body>
</html>`, payeeName, payerName, amount, groupName, config.AppConfig.AppName)
}

func buildMemberAddedEmailHTML(adderName, memberName, groupName string) string {
	return fmt.Sprintf(`
<!DOCTYPE html>
<html>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px; background-color: #f5f5f5;">
	<div style="background: white; border-radius: 12px; padding: 32px; box-shadow: 0 2px 8px rgba(0,0,0,0.1);">
		<h2 style="color: #1DB954; margin-top: 0;">You've been added to a group!</h2>
		<p>Hi <strong>%s</strong>,</p>
		<p><strong>%s</strong> added you to the group <strong>"%s"</strong>.</p>
		<p>Open the app to start splitting expenses with your group!</p>
		<p style="color: #999; font-size: 12px; margin-top: 24px;">— %s</p>
	</div>
</body>
</html>`, memberName, adderName, groupName, config.AppConfig.AppName)
}

func buildInvitationEmailHTML(inviterName, groupName string) string {
	return fmt.Sprintf(`
<!DOCTYPE html>
<html>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px; background-color: #f5f5f5;">
	<div style="background: white; border-radius: 12px; padding: 32px; box-shadow: 0 2px 8px rgba(0,0,0,0.1);">
		<h2 style="color: #1DB954; margin-top: 0;">You're invited!</h2>
		<p><strong>%s</strong> invited you to join <strong>"%s"</strong> on %s.</p>
		<p>%s makes it easy to split expenses with friends, roommates, and groups.</p>
		<div style="margin: 24px 0;">
			<a href="%s" style="background: #1DB954; color: white; padding: 12px 32px; border-radius: 8px; text-decoration: none; font-weight: bold;">Join Now</a>
		</div>
		<p style="color: #999; font-size: 12px; margin-top: 24px;">— %s</p>
	</div>
</body>
</html>`, inviterName, groupName, config.AppConfig.AppName, config.AppConfig.AppName, config.AppConfig.AppURL, config.AppConfig.AppName)
}
