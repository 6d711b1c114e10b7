package mailer

import (
	"bytes"
	"fmt"
	htmpl "html/template"
)

const verifyEmailTmpl = `<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"><title>Email Verification</title></head>
<body style="margin:0;padding:0;background-color:#f4f4f4;font-family:Arial,sans-serif;">
  <div style="max-width:600px;margin:40px auto 0;background-color:#ffffff;padding:40px;border-radius:8px;">
    <h1 style="color:#333;font-size:24px;text-align:center;">Verify Your Email Address</h1>
    <div style="background-color:#f8f9fa;border-left:4px solid #0066cc;padding:15px;margin-bottom:20px;">
      <p style="color:#666;margin:0;">This verification link will expire in {{.ExpiresInText}}</p>
    </div>
    <p style="color:#666;line-height:1.6;text-align:center;">
      To complete your registration and verify your email address, please click the button below:
    </p>
    <div style="text-align:center;margin:30px 0;">
      <a href="{{.VerifyURL}}" style="display:inline-block;background-color:#0066cc;color:#fff;text-decoration:none;padding:12px 30px;border-radius:4px;font-weight:bold;">Verify Email Address</a>
    </div>
    <p style="color:#999;font-size:14px;">If the button doesn't work, copy and paste this URL into your browser:</p>
    <p style="background-color:#f8f9fa;padding:10px;border-radius:4px;word-break:break-all;font-size:14px;color:#666;">{{.VerifyURL}}</p>
    <p style="text-align:center;color:#999;font-size:13px;">If you didn't request this verification, please ignore this email.</p>
  </div>
</body>
</html>`

var templates = map[string]*htmpl.Template{
	"verify_email": htmpl.Must(htmpl.New("verify_email").Parse(verifyEmailTmpl)),
}

// Render returns subject, text and html bodies for a named template.
func Render(name string, data EmailData) (subject, text, html string, err error) {
	t, ok := templates[name]
	if !ok {
		return "", "", "", fmt.Errorf("unknown email template %q", name)
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", "", "", err
	}
	switch name {
	case "verify_email":
		subject = "Email Verification"
		text = "Verify your email address: " + data.VerifyURL
	}
	return subject, text, buf.String(), nil
}
