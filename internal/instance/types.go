// Package instance defines the demo instance records exchanged over HTTP and
// the collaborator interfaces the launcher and API depend on.
package instance

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// DefaultDemoPort is the port the demo environment listens on inside the instance.
const DefaultDemoPort = 8080

// TerminationDetails is the static explanation returned with every kill acknowledgment.
const TerminationDetails = "Termination is running in the background. Check logs for completion status."

// Details identifies a freshly provisioned instance.
type Details struct {
	InstanceID string `json:"instance_id"`
	PublicIP   string `json:"public_ip"`
	PublicDNS  string `json:"public_dns"`
	// DemoPort is not serialized; it only feeds URL. Zero means DefaultDemoPort.
	DemoPort int `json:"-"`
}

// URL returns the address of the demo environment hosted on the instance.
func (d Details) URL() string {
	port := d.DemoPort
	if port == 0 {
		port = DefaultDemoPort
	}
	return fmt.Sprintf("http://%s:%d", d.PublicDNS, port)
}

// MarshalJSON adds the derived url field.
func (d Details) MarshalJSON() ([]byte, error) {
	type plain Details
	payload := struct {
		plain
		URL string `json:"url"`
	}{
		plain: plain(d),
		URL:   d.URL(),
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal instance details: %w", err)
	}
	return b, nil
}

// TerminationRequest is the body accepted by the kill endpoint.
type TerminationRequest struct {
	InstanceID string `json:"instance_id"`
}

// Validate reports whether the request names an instance.
func (r TerminationRequest) Validate() error {
	if strings.TrimSpace(r.InstanceID) == "" {
		return errors.New("instance_id required")
	}
	return nil
}

// TerminationResponse acknowledges that teardown was scheduled. It says nothing
// about the eventual outcome.
type TerminationResponse struct {
	Message string `json:"message"`
	Details string `json:"details"`
}

// NewTerminationResponse builds the acknowledgment for instanceID.
func NewTerminationResponse(instanceID string) TerminationResponse {
	return TerminationResponse{
		Message: "Termination process initiated for instance " + instanceID,
		Details: TerminationDetails,
	}
}
