package models

import (
	"encoding/json"
	"fmt"
)

// BoardResponse represents the full feed document of a departure board
type BoardResponse struct {
	LocationName       Text              `json:"locationName"`
	CRS                Text              `json:"crs"`
	FilterLocationName Text              `json:"filterLocationName"`
	GeneratedAt        Text              `json:"generatedAt"`
	PlatformAvailable  bool              `json:"platformAvailable"`
	TrainServices      []ServiceResponse `json:"trainServices"`
	NrccMessages       []MessageResponse `json:"nrccMessages"`
}

// MessageResponse is a feed-level advisory message. The text arrives under
// "Value" or "value" depending on the feed revision.
type MessageResponse struct {
	Text    string
	HasText bool
}

// UnmarshalJSON implements json.Unmarshaler
func (m *MessageResponse) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return fmt.Errorf("invalid message: %w", err)
	}

	// A null field counts as absent so the other spelling is tried
	for _, key := range []string{"Value", "value"} {
		raw, ok := fields[key]
		if !ok {
			continue
		}
		var text Text
		if err := json.Unmarshal(raw, &text); err != nil {
			return fmt.Errorf("invalid message %s: %w", key, err)
		}
		if text != "" {
			m.Text = string(text)
			m.HasText = true
			return nil
		}
	}
	return nil
}
