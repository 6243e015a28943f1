package mail

import (
	"context"
	"fmt"
	"time"

	gomail "github.com/wneessen/go-mail"
)

// Sender delivers verification codes out of band.
type Sender interface {
	SendOTP(ctx context.Context, to, code string) error
}

// SMTPSender sends OTP emails over SMTP.
type SMTPSender struct {
	client *gomail.Client
	from   string
}

// NewSMTPSender builds a sender for the given SMTP endpoint. Port 465 uses
// implicit TLS; everything else negotiates STARTTLS.
func NewSMTPSender(host string, port int, user, pass, from string) (*SMTPSender, error) {
	opts := []gomail.Option{
		gomail.WithPort(port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(user),
		gomail.WithPassword(pass),
		gomail.WithTLSPortPolicy(gomail.TLSMandatory),
	}
	if port == 465 {
		opts = append(opts, gomail.WithSSLPort(false))
	}
	client, err := gomail.NewClient(host, opts...)
	if err != nil {
		return nil, fmt.Errorf("smtp client: %w", err)
	}
	return &SMTPSender{client: client, from: from}, nil
}

// SendOTP emails the 6-digit code to the recipient.
func (s *SMTPSender) SendOTP(ctx context.Context, to, code string) error {
	msg := gomail.NewMsg()
	if err := msg.From(s.from); err != nil {
		return fmt.Errorf("set from: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("set to: %w", err)
	}
	msg.Subject(fmt.Sprintf("%s is your SalesBuddy verification code", code))
	msg.SetBodyString(gomail.TypeTextHTML, otpBody(code))

	if err := s.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("send otp email: %w", err)
	}
	return nil
}

func otpBody(code string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
</head>
<body style="margin:0; padding:0; background-color:#f8fafc; font-family:-apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif;">
  <div style="max-width:480px; margin:40px auto; background:#ffffff; border-radius:16px; overflow:hidden; box-shadow:0 4px 24px rgba(0,0,0,0.08);">
    <div style="background:linear-gradient(135deg, #6366f1 0%%, #4f46e5 100%%); padding:32px 32px 24px;">
      <h1 style="margin:0; color:#ffffff; font-size:22px; font-weight:700;">SalesBuddy AI</h1>
      <p style="margin:8px 0 0; color:rgba(255,255,255,0.85); font-size:14px;">Email Verification</p>
    </div>
    <div style="padding:32px;">
      <p style="margin:0 0 8px; color:#334155; font-size:16px;">Hi there,</p>
      <p style="margin:0 0 24px; color:#64748b; font-size:14px; line-height:1.6;">
        Use the verification code below to complete your sign-in. This code expires in <strong>10 minutes</strong>.
      </p>
      <div style="background:#f1f5f9; border-radius:12px; padding:20px; text-align:center; margin:0 0 24px;">
        <span style="font-size:36px; font-weight:700; letter-spacing:8px; color:#1e293b; font-family:'Courier New', monospace;">%s</span>
      </div>
      <p style="margin:0 0 4px; color:#94a3b8; font-size:13px;">
        If you didn't request this code, you can safely ignore this email.
      </p>
    </div>
    <div style="padding:16px 32px; background:#f8fafc; border-top:1px solid #e2e8f0;">
      <p style="margin:0; color:#94a3b8; font-size:12px; text-align:center;">
        &copy; %d Zoxima Technologies &middot; SalesBuddy AI
      </p>
    </div>
  </div>
</body>
</html>`, code, time.Now().Year())
}
