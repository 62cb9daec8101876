// pkg/registry/schema.go
package registry

// TemplateRegistry is the notification template catalogue loaded at startup.
type TemplateRegistry struct {
	Version     string     `json:"version"`
	LastUpdated string     `json:"lastUpdated"`
	Templates   []Template `json:"templates"`
}

type Template struct {
	Type        string   `json:"type"`
	Description string   `json:"description"`
	Subject     string   `json:"subject"`
	Body        string   `json:"body"`
	SMS         string   `json:"sms,omitempty"`
	Channels    []string `json:"channels"`
	Variables   []string `json:"variables"`
}

// Supports reports whether the template may be sent on channel.
func (t Template) Supports(channel string) bool {
	for _, c := range t.Channels {
		if c == channel {
			return true
		}
	}
	return false
}

// Channels
const (
	ChannelEmail = "email"
	ChannelSMS   = "sms"
)
