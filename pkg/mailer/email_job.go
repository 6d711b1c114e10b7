package mailer

// EmailJob is the JSON payload put on the RabbitMQ queue for sending email.
// Either set Subject/Text/HTML directly or name a Template and its Data.
type EmailJob struct {
	To       string    `json:"to"`
	Subject  string    `json:"subject,omitempty"`
	Text     string    `json:"text,omitempty"`
	HTML     string    `json:"html,omitempty"`
	Template string    `json:"template,omitempty"` // e.g. "verify_email"
	Data     EmailData `json:"data,omitempty"`
}

// EmailData carries the fields templates render.
type EmailData struct {
	Name          string `json:"Name"`
	Email         string `json:"Email"`
	AppName       string `json:"AppName"`
	VerifyURL     string `json:"VerifyURL"`
	ExpiresInText string `json:"ExpiresInText"`
}
