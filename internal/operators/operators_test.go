package operators

import "testing"

func TestGetOperator(t *testing.T) {
	tests := []struct {
		name     string
		code     string
		wantCode string
		wantName string
		wantNil  bool
	}{
		{
			name:     "Great Western Railway",
			code:     "GW",
			wantCode: "GW",
			wantName: "Great Western Railway",
		},
		{
			name:     "Elizabeth line",
			code:     "XR",
			wantCode: "XR",
			wantName: "Elizabeth line",
		},
		{
			name:     "lower case",
			code:     "hx",
			wantCode: "HX",
			wantName: "Heathrow Express",
		},
		{
			name:     "padded",
			code:     " GR ",
			wantCode: "GR",
			wantName: "London North Eastern Railway",
		},
		{
			name:    "unknown operator",
			code:    "QQ",
			wantNil: true,
		},
		{
			name:    "empty",
			code:    "",
			wantNil: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			op := GetOperator(tt.code)

			if tt.wantNil {
				if op != nil {
					t.Errorf("GetOperator() = %v, want nil", op)
				}
				return
			}

			if op == nil {
				t.Fatalf("GetOperator() returned nil, want operator")
			}
			if op.Code != tt.wantCode {
				t.Errorf("Code = %q, want %q", op.Code, tt.wantCode)
			}
			if op.Name != tt.wantName {
				t.Errorf("Name = %q, want %q", op.Name, tt.wantName)
			}
		})
	}
}

func TestGetOperator_ReturnsCopy(t *testing.T) {
	op := GetOperator("GW")
	op.Name = "changed"

	if got := Name("GW"); got != "Great Western Railway" {
		t.Errorf("Name() = %q after mutating a result", got)
	}
}

func TestAllOperatorsHaveMatchingCodes(t *testing.T) {
	for code, op := range operators {
		if op.Code != code {
			t.Errorf("operators[%q].Code = %q", code, op.Code)
		}
		if op.Name == "" {
			t.Errorf("operators[%q] has no name", code)
		}
	}
}
