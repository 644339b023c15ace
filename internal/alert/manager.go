// Package alert fans endpoint health alerts out to the configured email
// and chat channels. Channel failures are logged by callers; they never
// stop the monitoring loop.
package alert

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/slack-go/slack"
	"gopkg.in/gomail.v2"

	"github.com/reportdeck/internal/models"
	"github.com/reportdeck/internal/notify"
)

type Config struct {
	SlackToken     string
	SlackChannel   string
	SMTPHost       string
	SMTPPort       int
	EmailFrom      string
	EmailPassword  string
	EmailReceivers []string
}

type Manager struct {
	slackClient *slack.Client
	webhook     *notify.SlackNotifier
	emailDialer *gomail.Dialer
	config      *Config
	log         zerolog.Logger
}

// NewManager builds the alert fan-out. A non-nil webhook notifier takes
// precedence over the token-based Slack client.
func NewManager(config *Config, webhook *notify.SlackNotifier, log zerolog.Logger) *Manager {
	return &Manager{
		slackClient: slack.New(config.SlackToken),
		webhook:     webhook,
		emailDialer: gomail.NewDialer(config.SMTPHost, config.SMTPPort, config.EmailFrom, config.EmailPassword),
		config:      config,
		log:         log.With().Str("component", "alert").Logger(),
	}
}

// EndpointDown notifies all channels that an endpoint crossed the failure
// threshold. Called once per crossing, not on every subsequent failure.
func (m *Manager) EndpointDown(ep *models.MonitoredEndpoint, failures int, detail string) {
	if err := m.sendSlack(ep, failures, detail, false); err != nil {
		m.log.Error().Str("endpoint", ep.Name).Err(err).Msg("failed to send slack alert")
	}
	if err := m.sendEmail(ep, failures, detail, false); err != nil {
		m.log.Error().Str("endpoint", ep.Name).Err(err).Msg("failed to send email alert")
	}
}

// EndpointRecovered notifies that a previously alerting endpoint is
// healthy again.
func (m *Manager) EndpointRecovered(ep *models.MonitoredEndpoint) {
	if err := m.sendSlack(ep, 0, "", true); err != nil {
		m.log.Error().Str("endpoint", ep.Name).Err(err).Msg("failed to send slack recovery notice")
	}
	if err := m.sendEmail(ep, 0, "", true); err != nil {
		m.log.Error().Str("endpoint", ep.Name).Err(err).Msg("failed to send email recovery notice")
	}
}

func (m *Manager) sendSlack(ep *models.MonitoredEndpoint, failures int, detail string, recovered bool) error {
	if m.webhook != nil {
		return m.webhook.NotifyEndpoint(ep, failures, detail, recovered)
	}
	if m.config.SlackToken == "" {
		return nil
	}

	color := "#ff0000"
	title := fmt.Sprintf("Endpoint down: %s", ep.Name)
	if recovered {
		color = "#36a64f"
		title = fmt.Sprintf("Endpoint recovered: %s", ep.Name)
	}

	attachment := slack.Attachment{
		Color: color,
		Title: title,
		Fields: []slack.AttachmentField{
			{
				Title: "URL",
				Value: ep.URL,
				Short: false,
			},
			{
				Title: "Consecutive Failures",
				Value: strconv.Itoa(failures),
				Short: true,
			},
			{
				Title: "Last Status",
				Value: strconv.Itoa(ep.LastStatus),
				Short: true,
			},
		},
		Footer: "Reportdeck Endpoint Monitor",
		Ts:     json.Number(strconv.FormatInt(time.Now().Unix(), 10)),
	}
	if detail != "" {
		attachment.Text = detail
	}

	_, _, err := m.slackClient.PostMessage(
		m.config.SlackChannel,
		slack.MsgOptionAttachments(attachment),
	)
	return err
}

func (m *Manager) sendEmail(ep *models.MonitoredEndpoint, failures int, detail string, recovered bool) error {
	if m.config.SMTPHost == "" || len(m.config.EmailReceivers) == 0 {
		return nil
	}

	subject := fmt.Sprintf("Endpoint Alert: %s is down", ep.Name)
	if recovered {
		subject = fmt.Sprintf("Endpoint Alert: %s recovered", ep.Name)
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.config.EmailFrom)
	msg.SetHeader("To", m.config.EmailReceivers...)
	msg.SetHeader("Subject", subject)

	body := fmt.Sprintf(`
		Endpoint: %s
		URL: %s
		Consecutive Failures: %d
		Last Status: %d
		Detail: %s
		Time: %s
	`, ep.Name, ep.URL, failures, ep.LastStatus, detail,
		time.Now().Format(time.RFC3339))

	msg.SetBody("text/plain", body)

	return m.emailDialer.DialAndSend(msg)
}
