package errors

import (
	"errors"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeInvalidQuery, "test message: %s", "value")

	if err.Code != ErrCodeInvalidQuery {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeInvalidQuery)
	}

	if err.Message != "test message: value" {
		t.Errorf("Message = %v, want %v", err.Message, "test message: value")
	}

	expected := "INVALID_QUERY: test message: value"
	if err.Error() != expected {
		t.Errorf("Error() = %v, want %v", err.Error(), expected)
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := Wrap(ErrCodeUpstreamUnavailable, cause, "failed to fetch")

	if err.Code != ErrCodeUpstreamUnavailable {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeUpstreamUnavailable)
	}

	if err.Cause != cause {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}

	unwrapped := errors.Unwrap(err)
	if unwrapped != cause {
		t.Errorf("Unwrap() = %v, want %v", unwrapped, cause)
	}

	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false, want true")
	}
}

func TestIs(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		code     Code
		expected bool
	}{
		{
			name:     "matching code",
			err:      New(ErrCodeInvalidQuery, "test"),
			code:     ErrCodeInvalidQuery,
			expected: true,
		},
		{
			name:     "non-matching code",
			err:      New(ErrCodeInvalidQuery, "test"),
			code:     ErrCodeUpstreamUnavailable,
			expected: false,
		},
		{
			name:     "wrapped error",
			err:      Wrap(ErrCodeUpstreamUnavailable, New(ErrCodeMalformedResponse, "inner"), "outer"),
			code:     ErrCodeUpstreamUnavailable,
			expected: true,
		},
		{
			name:     "non-Error type",
			err:      errors.New("plain error"),
			code:     ErrCodeInvalidQuery,
			expected: false,
		},
		{
			name:     "nil error",
			err:      nil,
			code:     ErrCodeInvalidQuery,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.code); got != tt.expected {
				t.Errorf("Is() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestGetCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected Code
	}{
		{
			name:     "Error type",
			err:      New(ErrCodeMalformedResponse, "test"),
			expected: ErrCodeMalformedResponse,
		},
		{
			name:     "plain error",
			err:      errors.New("plain"),
			expected: "",
		},
		{
			name:     "nil",
			err:      nil,
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetCode(tt.err); got != tt.expected {
				t.Errorf("GetCode() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestValidateHost(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid hostname", "play.example.com", false},
		{"valid ip", "203.0.113.7", false},
		{"valid with dash", "mc-eu.example.net", false},
		{"single label", "localhost", false},

		{"empty", "", true},
		{"too long", string(make([]byte, 300)), true},
		{"with space", "play example.com", true},
		{"with slash", "example.com/status", true},
		{"with backslash", "example\\com", true},
		{"with query", "example.com?x=1", true},
		{"with fragment", "example.com#frag", true},
		{"with userinfo", "admin@example.com", true},
		{"control char", "foo\x01bar", true},
		{"newline", "foo\nbar", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateHost(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateHost(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidQuery) {
				t.Errorf("ValidateHost(%q) code = %v, want INVALID_QUERY", tt.input, GetCode(err))
			}
		})
	}
}

func TestValidatePort(t *testing.T) {
	tests := []struct {
		name    string
		port    int
		wantErr bool
	}{
		{"default sentinel", 0, false},
		{"min", 1, false},
		{"java default", 25565, false},
		{"bedrock default", 19132, false},
		{"max", 65535, false},

		{"negative", -1, true},
		{"too large", 65536, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePort(tt.port)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePort(%d) error = %v, wantErr %v", tt.port, err, tt.wantErr)
			}
		})
	}
}
