package webhook

import (
	"encoding/json"
	"errors"
	"strings"
)

// EvolutionEvent is the normalized form of an inbound Evolution API webhook.
// The Evolution payload schema is an external contract we do not own; several
// field aliases are accepted for every value we care about.
type EvolutionEvent struct {
	InstanceName string
	State        string
	Event        string
	QRCode       string
}

var ErrMissingInstanceName = errors.New("webhook payload missing instance name")

// instanceNamePaths, statePaths and eventPaths are probed in order; the first
// non-empty match wins.
var (
	instanceNamePaths = [][]string{
		{"instance", "instanceName"},
		{"instanceName"},
		{"data", "instance"},
		{"data", "instanceName"},
		{"instance"},
	}
	statePaths = [][]string{
		{"instance", "state"},
		{"state"},
		{"data", "state"},
		{"data", "status"},
	}
	eventPaths = [][]string{
		{"event"},
		{"data", "event"},
		{"type"},
	}
	qrCodePaths = [][]string{
		{"qrcode", "base64"},
		{"data", "qrcode", "base64"},
		{"base64"},
	}
)

// ParseEvolutionEvent normalizes a webhook body that may be a single JSON
// object or a one-element array of objects.
func ParseEvolutionEvent(payload []byte) (*EvolutionEvent, error) {
	body, err := unwrapBody(payload)
	if err != nil {
		return nil, err
	}

	out := &EvolutionEvent{
		InstanceName: firstStringAt(body, instanceNamePaths),
		State:        firstStringAt(body, statePaths),
		Event:        firstStringAt(body, eventPaths),
		QRCode:       firstStringAt(body, qrCodePaths),
	}
	if out.InstanceName == "" {
		return nil, ErrMissingInstanceName
	}
	return out, nil
}

// unwrapBody decodes the payload and takes the first element if the external
// system delivered an array.
func unwrapBody(payload []byte) (map[string]interface{}, error) {
	var raw interface{}
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, err
	}

	if list, ok := raw.([]interface{}); ok {
		if len(list) == 0 {
			return nil, errors.New("webhook payload is an empty array")
		}
		raw = list[0]
	}

	body, ok := raw.(map[string]interface{})
	if !ok {
		return nil, errors.New("webhook payload is not a JSON object")
	}
	return body, nil
}

func firstStringAt(body map[string]interface{}, paths [][]string) string {
	for _, path := range paths {
		if v := stringAt(body, path); v != "" {
			return v
		}
	}
	return ""
}

func stringAt(body map[string]interface{}, path []string) string {
	var current interface{} = body
	for _, key := range path {
		m, ok := current.(map[string]interface{})
		if !ok {
			return ""
		}
		current, ok = m[key]
		if !ok {
			return ""
		}
	}
	s, ok := current.(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(s)
}
