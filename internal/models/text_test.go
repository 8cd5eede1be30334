package models

import (
	"encoding/json"
	"testing"

	"github.com/mobil-koeln/moko-board/internal/testutil"
)

func TestText_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"string", `"Plat 4"`, "Plat 4", false},
		{"null", `null`, "", false},
		{"number", `12`, "12", false},
		{"bool", `true`, "true", false},
		{"array", `["Lift out of order", null, "Ticket office closed"]`, "Lift out of order | Ticket office closed", false},
		{"object", `{"a": 1}`, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got Text
			err := json.Unmarshal([]byte(tt.input), &got)
			if tt.wantErr {
				testutil.AssertError(t, err)
				return
			}
			testutil.AssertNil(t, err)
			testutil.AssertEqual(t, string(got), tt.want)
		})
	}
}

func TestText_MissingField(t *testing.T) {
	var v struct {
		Platform Text `json:"platform"`
	}
	testutil.AssertNil(t, json.Unmarshal([]byte(`{}`), &v))
	testutil.AssertEqual(t, v.Platform.String(), "")
}

func TestMessageResponse_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		hasText bool
	}{
		{"capital field", `{"Value": "Disruption at Reading"}`, "Disruption at Reading", true},
		{"lower field", `{"value": "Strike action"}`, "Strike action", true},
		{"capital preferred", `{"Value": "A", "value": "B"}`, "A", true},
		{"null capital falls back", `{"Value": null, "value": "B"}`, "B", true},
		{"neither", `{"category": "x"}`, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var m MessageResponse
			testutil.AssertNil(t, json.Unmarshal([]byte(tt.input), &m))
			testutil.AssertEqual(t, m.Text, tt.want)
			testutil.AssertEqual(t, m.HasText, tt.hasText)
		})
	}
}
