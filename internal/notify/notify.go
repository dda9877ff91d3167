package notify

import (
	"bytes"
	"fmt"
	"io"

	"github.com/apex/log"
	"github.com/reportdesk/internal/models"
	"github.com/slack-go/slack"
	"gopkg.in/gomail.v2"
)

// Notifier posts housekeeping notices to Slack and mails out generated
// reports. Both channels are optional; an unconfigured channel is a
// no-op and a failed send is logged, never surfaced to the user.
type Notifier struct {
	slackClient *slack.Client
	emailDialer *gomail.Dialer
	config      *Config
}

type Config struct {
	SlackToken     string
	SlackChannel   string
	SMTPHost       string
	SMTPPort       int
	EmailFrom      string
	EmailPassword  string
	EmailReceivers []string
}

func NewNotifier(config *Config) *Notifier {
	n := &Notifier{config: config}
	if config.SlackToken != "" {
		n.slackClient = slack.New(config.SlackToken)
	}
	if config.SMTPHost != "" {
		n.emailDialer = gomail.NewDialer(config.SMTPHost, config.SMTPPort, config.EmailFrom, config.EmailPassword)
	}
	return n
}

// LinkAdded posts a notice for a single new directory entry.
func (n *Notifier) LinkAdded(link *models.Link) {
	n.postSlack(fmt.Sprintf("New link added: %s (%s)", link.Name, link.Category), link.URL)
}

// BulkImportDone posts the outcome of a CSV bulk upload.
func (n *Notifier) BulkImportDone(added, skipped int) {
	n.postSlack(fmt.Sprintf("Bulk link import finished: %d added, %d skipped", added, skipped), "")
}

func (n *Notifier) postSlack(title, text string) {
	if n.slackClient == nil {
		return
	}

	attachment := slack.Attachment{
		Color: "#36a64f",
		Title: title,
		Text:  text,
	}
	_, _, err := n.slackClient.PostMessage(
		n.config.SlackChannel,
		slack.MsgOptionAttachments(attachment),
	)
	if err != nil {
		log.WithError(err).Warn("slack notice failed")
	}
}

// MailReport sends the finished PDF to the configured recipients. It
// does nothing when no SMTP host or no recipients are configured.
func (n *Notifier) MailReport(subject string, pdf []byte) {
	if n.emailDialer == nil || len(n.config.EmailReceivers) == 0 {
		return
	}

	m := gomail.NewMessage()
	m.SetHeader("From", n.config.EmailFrom)
	m.SetHeader("To", n.config.EmailReceivers...)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", "The requested activity report is attached.")
	m.Attach("report.pdf", gomail.SetCopyFunc(func(w io.Writer) error {
		_, err := io.Copy(w, bytes.NewReader(pdf))
		return err
	}))

	if err := n.emailDialer.DialAndSend(m); err != nil {
		log.WithError(err).Warn("report mail failed")
	}
}
