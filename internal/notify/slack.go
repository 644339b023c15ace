package notify

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/reportdeck/internal/models"
)

// SlackNotifier posts endpoint alerts to an incoming-webhook URL. It is the
// token-free alternative to the API client in internal/alert.
type SlackNotifier struct {
	WebhookURL string
	Channel    string
	Username   string
}

type SlackMessage struct {
	Channel     string       `json:"channel,omitempty"`
	Username    string       `json:"username,omitempty"`
	IconEmoji   string       `json:"icon_emoji,omitempty"`
	Attachments []Attachment `json:"attachments"`
}

type Attachment struct {
	Color  string  `json:"color"`
	Title  string  `json:"title"`
	Text   string  `json:"text"`
	Fields []Field `json:"fields"`
	Footer string  `json:"footer"`
	Ts     int64   `json:"ts"`
}

type Field struct {
	Title string `json:"title"`
	Value string `json:"value"`
	Short bool   `json:"short"`
}

func NewSlackNotifier(webhookURL, channel, username string) *SlackNotifier {
	return &SlackNotifier{
		WebhookURL: webhookURL,
		Channel:    channel,
		Username:   username,
	}
}

func (s *SlackNotifier) NotifyEndpoint(ep *models.MonitoredEndpoint, failures int, detail string, recovered bool) error {
	color := "#FF0000"
	title := fmt.Sprintf("Reportdeck Alert: %s is down", ep.Name)
	emoji := ":red_circle:"
	if recovered {
		color = "#36a64f"
		title = fmt.Sprintf("Reportdeck Alert: %s recovered", ep.Name)
		emoji = ":white_check_mark:"
	}

	msg := &SlackMessage{
		Channel:   s.Channel,
		Username:  s.Username,
		IconEmoji: emoji,
		Attachments: []Attachment{
			{
				Color: color,
				Title: title,
				Text:  detail,
				Fields: []Field{
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
				Ts:     time.Now().Unix(),
			},
		},
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal slack message: %v", err)
	}

	resp, err := http.Post(s.WebhookURL, "application/json", bytes.NewBuffer(payload))
	if err != nil {
		return fmt.Errorf("failed to send slack message: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("slack API returned non-200 status code: %d", resp.StatusCode)
	}

	return nil
}
