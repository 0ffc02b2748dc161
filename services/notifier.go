// services/notifier.go
package services

import (
	"fmt"
	"log"
	"net/smtp"
	"os"
	"strings"
	"time"

	"glowdesk-backend/models"
	"glowdesk-backend/utils"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
	"gorm.io/gorm"
)

type Notifier struct {
	db     *gorm.DB
	client *twilio.RestClient

	smtpAddr string
	smtpFrom string
}

func NewNotifier(db *gorm.DB) *Notifier {
	// Initialize Twilio client
	accountSid := os.Getenv("TWILIO_ACCOUNT_SID")
	authToken := os.Getenv("TWILIO_AUTH_TOKEN")

	smtpHost := os.Getenv("SMTP_HOST")
	smtpPort := os.Getenv("SMTP_PORT")
	smtpFrom := os.Getenv("SMTP_FROM")
	if smtpFrom == "" {
		smtpFrom = "no-reply@glowdesk.local"
	}

	return &Notifier{
		db: db,
		client: twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: accountSid,
			Password: authToken,
		}),
		smtpAddr: smtpHost + ":" + smtpPort,
		smtpFrom: smtpFrom,
	}
}

func (n *Notifier) StartScheduler() {
	c := cron.New()

	// Reminders daily at 9 AM, unpaid bill sweep every 5 minutes
	c.AddFunc("0 9 * * *", n.SendDailyReminders)
	c.AddFunc("*/5 * * * *", n.ExpireUnpaidBills)

	c.Start()
	log.Println("Notification scheduler started")
}

func (n *Notifier) SendDailyReminders() {
	log.Println("Starting daily reminder processing...")

	var businesses []models.Business
	if err := n.db.Find(&businesses).Error; err != nil {
		log.Printf("Failed to fetch businesses: %v", err)
		return
	}

	for _, business := range businesses {
		n.sendAppointmentReminders(business)
		if business.BirthdayReminders {
			n.sendBirthdayGreetings(business)
		}
	}

	log.Println("Daily reminder processing completed")
}

// sendAppointmentReminders messages every customer with a booking
// starting tomorrow.
func (n *Notifier) sendAppointmentReminders(business models.Business) {
	tomorrow := utils.BeginningOfDay(time.Now()).AddDate(0, 0, 1)
	dayAfter := tomorrow.AddDate(0, 0, 1)

	var appointments []models.Appointment
	err := n.db.Where(
		"business_id = ? AND status = ? AND start_time >= ? AND start_time < ?",
		business.ID, models.AppointmentBooked, tomorrow, dayAfter,
	).Find(&appointments).Error
	if err != nil {
		log.Printf("Business %s: failed to fetch tomorrow's appointments: %v", business.ID, err)
		return
	}

	template := n.activeTemplate(business, "appointment")
	for _, appt := range appointments {
		var svc models.Service
		serviceName := "your appointment"
		if err := n.db.First(&svc, "id = ?", appt.ServiceID).Error; err == nil {
			serviceName = svc.Name
		}

		message := template
		message = strings.ReplaceAll(message, "[CustomerName]", appt.CustomerName)
		message = strings.ReplaceAll(message, "[ServiceName]", serviceName)
		message = strings.ReplaceAll(message, "[Time]", utils.FormatClock(appt.StartTime))

		n.deliver(business, "appointment", appt.CustomerPhone, appt.CustomerEmail,
			"Appointment reminder", message, nil)
	}
}

func (n *Notifier) sendBirthdayGreetings(business models.Business) {
	var customers []models.Customer
	err := n.db.Where("business_id = ? AND is_active = ? AND birthday IS NOT NULL", business.ID, true).
		Find(&customers).Error
	if err != nil {
		log.Printf("Business %s: failed to fetch customers: %v", business.ID, err)
		return
	}

	now := time.Now()
	template := n.activeTemplate(business, "birthday")
	for _, customer := range customers {
		if customer.Birthday.Month() != now.Month() || customer.Birthday.Day() != now.Day() {
			continue
		}
		message := strings.ReplaceAll(template, "[CustomerName]", customer.Name)
		customerID := customer.ID
		n.deliver(business, "birthday", customer.Phone, customer.Email,
			"Happy birthday!", message, &customerID)
	}
}

func (n *Notifier) activeTemplate(business models.Business, templateType string) string {
	var template models.NotificationTemplate
	err := n.db.Where("business_id = ? AND type = ? AND is_active = ?", business.ID, templateType, true).
		First(&template).Error
	if err == nil {
		return template.Message
	}

	switch templateType {
	case "appointment":
		return "Hi [CustomerName], this is a reminder of [ServiceName] tomorrow at [Time]. See you soon!"
	default:
		return "Hi [CustomerName], " + business.Name + " wishes you a very happy birthday!"
	}
}

// deliver picks the channel from the business toggles and the contact
// data available, sends, and logs the attempt.
func (n *Notifier) deliver(business models.Business, eventType, phone, email, subject, message string, customerID *uuid.UUID) {
	sent := false

	if business.SMSNotifications && phone != "" {
		channel, errMsg := n.sendSMS(phone, message)
		n.logAttempt(business, eventType, channel, phone, message, errMsg, customerID)
		sent = errMsg == ""
	}

	if business.EmailNotifications && email != "" && !sent {
		errMsg := ""
		if err := n.sendEmail(email, subject, message); err != nil {
			errMsg = err.Error()
		}
		n.logAttempt(business, eventType, "email", email, message, errMsg, customerID)
	}
}

// sendSMS dispatches via Twilio, preferring WhatsApp for E.164 numbers.
func (n *Notifier) sendSMS(phone, message string) (channel, errMsg string) {
	channel = "sms"
	to := phone
	if strings.HasPrefix(phone, "+") {
		to = "whatsapp:" + phone
		channel = "whatsapp"
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetTo(to)
	params.SetBody(message)
	if channel == "whatsapp" {
		params.SetFrom("whatsapp:" + os.Getenv("TWILIO_WHATSAPP_NUMBER"))
	} else {
		params.SetFrom(os.Getenv("TWILIO_PHONE_NUMBER"))
	}

	resp, err := n.client.Api.CreateMessage(params)
	if err != nil {
		log.Printf("Failed to send message to %s: %v", phone, err)
		return channel, err.Error()
	}
	if resp.Sid != nil {
		log.Printf("Message sent to %s, SID: %s", phone, *resp.Sid)
	}
	return channel, ""
}

func (n *Notifier) sendEmail(to, subject, body string) error {
	msg := fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n%s\r\n",
		n.smtpFrom, to, subject, body,
	)
	return smtp.SendMail(n.smtpAddr, nil, n.smtpFrom, []string{to}, []byte(msg))
}

func (n *Notifier) logAttempt(business models.Business, eventType, channel, recipient, message, errMsg string, customerID *uuid.UUID) {
	status := "sent"
	if errMsg != "" {
		status = "failed"
	}

	entry := models.NotificationLog{
		BusinessID:   business.ID,
		Type:         eventType,
		Message:      message,
		Status:       status,
		ErrorMessage: errMsg,
		Channel:      channel,
		Recipient:    recipient,
		SentAt:       time.Now(),
	}
	if customerID != nil {
		id := *customerID
		entry.CustomerID = &id
	}

	if err := n.db.Create(&entry).Error; err != nil {
		log.Printf("Failed to log notification for %s: %v", recipient, err)
	}
}

// ExpireUnpaidBills sweeps unpaid bills past their expiry so abandoned
// checkouts release their slots.
func (n *Notifier) ExpireUnpaidBills() {
	var expired []models.Bill
	err := n.db.Where("paid = ? AND expires_at < ?", false, time.Now()).Find(&expired).Error
	if err != nil {
		log.Printf("Failed to fetch expired bills: %v", err)
		return
	}

	for _, bill := range expired {
		tx := n.db.Begin()
		if err := tx.Where("bill_id = ?", bill.ID).Delete(&models.BillItem{}).Error; err != nil {
			tx.Rollback()
			log.Printf("Failed to delete items of expired bill %s: %v", bill.BillNumber, err)
			continue
		}
		if err := tx.Delete(&bill).Error; err != nil {
			tx.Rollback()
			log.Printf("Failed to delete expired bill %s: %v", bill.BillNumber, err)
			continue
		}
		tx.Commit()
		log.Printf("Expired unpaid bill %s", bill.BillNumber)
	}
}
