package gateway

import "strings"

// acknowledger is implemented by response bodies that carry an explicit
// success indicator. A body without one is treated as a rejection.
type acknowledger interface {
	accepted() (reason string, ok bool)
}

// acceptedPhrases are the "status" strings the registry and control services
// use instead of a boolean success flag.
var acceptedPhrases = map[string]struct{}{
	"move command sent": {},
	"drone registered":  {},
	"request created":   {},
	"request updated":   {},
	"user registered":   {},
}

// ackEnvelope is embedded in every acknowledged response.
type ackEnvelope struct {
	Success *bool  `json:"success"`
	Status  string `json:"status"`
	Message string `json:"message"`
	Error   string `json:"error"`
}

func (a *ackEnvelope) accepted() (string, bool) {
	if a.Success != nil {
		if *a.Success {
			return "", true
		}
		return a.reason(), false
	}
	if _, ok := acceptedPhrases[strings.ToLower(strings.TrimSpace(a.Status))]; ok {
		return "", true
	}
	if r := a.reason(); r != "" {
		return r, false
	}
	return "missing acknowledgement", false
}

func (a *ackEnvelope) reason() string {
	switch {
	case a.Error != "":
		return a.Error
	case a.Message != "":
		return a.Message
	default:
		return a.Status
	}
}

func (a *ackEnvelope) text() string {
	if a.Message != "" {
		return a.Message
	}
	return a.Status
}
