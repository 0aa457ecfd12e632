package validation

import (
	"strings"
	"testing"
)

type sampleRequest struct {
	Username string `validate:"required,min=3,max=50"`
	Email    string `validate:"required,email"`
	Role     string `validate:"omitempty,oneof=admin auditor viewer"`
}

func TestStruct(t *testing.T) {
	tests := []struct {
		name      string
		req       sampleRequest
		wantError string
	}{
		{
			name: "valid request",
			req:  sampleRequest{Username: "alice", Email: "alice@example.com", Role: "auditor"},
		},
		{
			name:      "missing username",
			req:       sampleRequest{Email: "alice@example.com"},
			wantError: "Username: field is required",
		},
		{
			name:      "short username",
			req:       sampleRequest{Username: "al", Email: "alice@example.com"},
			wantError: "Username: must be at least 3",
		},
		{
			name:      "bad email",
			req:       sampleRequest{Username: "alice", Email: "not-an-email"},
			wantError: "Email: must be a valid email address",
		},
		{
			name:      "bad role",
			req:       sampleRequest{Username: "alice", Email: "alice@example.com", Role: "root"},
			wantError: "Role: must be one of",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Struct(&tt.req)
			if tt.wantError == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantError) {
				t.Fatalf("error = %v, want containing %q", err, tt.wantError)
			}
		})
	}
}

func TestStruct_Nil(t *testing.T) {
	if err := Struct(nil); err == nil {
		t.Fatal("expected error for nil value")
	}
}
