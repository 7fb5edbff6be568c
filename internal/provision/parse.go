package provision

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/JakeFAU/demo-launcher/internal/instance"
)

// Keys the provisioning script must print in its final JSON line.
const (
	KeyInstanceID = "InstanceId"
	KeyPublicIP   = "PublicIpAddress"
	KeyPublicDNS  = "PublicDnsName"
)

// ParseDetails decodes the last non-empty line of provisioning output. Earlier
// lines are progress chatter and are ignored.
func ParseDetails(stdout string) (instance.Details, error) {
	line := lastNonEmptyLine(stdout)

	var payload map[string]json.RawMessage
	if err := json.Unmarshal([]byte(line), &payload); err != nil {
		return instance.Details{}, &instance.ParseError{Line: line, Err: err}
	}
	if payload == nil {
		return instance.Details{}, &instance.ParseError{Line: line, Err: errors.New("expected a JSON object, got null")}
	}

	var d instance.Details
	fields := []struct {
		key string
		dst *string
	}{
		{KeyInstanceID, &d.InstanceID},
		{KeyPublicIP, &d.PublicIP},
		{KeyPublicDNS, &d.PublicDNS},
	}
	for _, f := range fields {
		raw, ok := payload[f.key]
		if !ok {
			return instance.Details{}, &instance.MissingFieldError{Field: f.key}
		}
		if string(raw) == "null" {
			return instance.Details{}, &instance.ParseError{
				Line: line,
				Err:  fmt.Errorf("field %s: expected a string, got null", f.key),
			}
		}
		if err := json.Unmarshal(raw, f.dst); err != nil {
			return instance.Details{}, &instance.ParseError{
				Line: line,
				Err:  fmt.Errorf("field %s: %w", f.key, err),
			}
		}
	}
	return d, nil
}

func lastNonEmptyLine(s string) string {
	lines := strings.Split(s, "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			return line
		}
	}
	return ""
}
