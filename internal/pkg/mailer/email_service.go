package mailer

import (
	"fmt"

	"gopkg.in/gomail.v2"
)

type IEmailService interface {
	SendLicenseKey(toEmail, licenseKey, planName string) error
	SendPaymentFailed(toEmail, planName string) error
}

type emailService struct {
	dialer      *gomail.Dialer
	senderEmail string
}

func NewEmailService(host string, port int, username, password, senderEmail string) IEmailService {
	d := gomail.NewDialer(host, port, username, password)

	return &emailService{
		dialer:      d,
		senderEmail: senderEmail,
	}
}

func (s *emailService) SendLicenseKey(toEmail, licenseKey, planName string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.senderEmail)
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", "Your CalExt License Key")

	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>Thank you for subscribing to CalExt!</h2>
			<p>Your <strong>%s</strong> subscription is ready. Use this license key in the extension settings:</p>
			<h1 style="color: #4CAF50; letter-spacing: 3px; font-family: monospace;">%s</h1>
			<p>Open the extension, go to Settings, and paste the key to unlock your premium features.</p>
			<p>If you didn't purchase this, please contact support.</p>
		</div>
	`, planName, licenseKey)

	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		fmt.Printf("[MAILER ERROR] Failed to send license key to %s: %v\n", toEmail, err)
		return err
	}

	fmt.Printf("[MAILER] License key sent to %s\n", toEmail)
	return nil
}

func (s *emailService) SendPaymentFailed(toEmail, planName string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.senderEmail)
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", "Payment failed for your CalExt subscription")

	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>We couldn't process your payment</h2>
			<p>The latest charge for your <strong>%s</strong> subscription failed. Your premium features stay active during the grace period while we retry.</p>
			<p>Please update your payment method to avoid interruption.</p>
			<p>If you believe this is a mistake, contact support.</p>
		</div>
	`, planName)

	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		fmt.Printf("[MAILER ERROR] Failed to send payment failure notice to %s: %v\n", toEmail, err)
		return err
	}

	fmt.Printf("[MAILER] Payment failure notice sent to %s\n", toEmail)
	return nil
}
