package shares

import (
	"encoding/base64"
	"testing"
)

func TestNewToken_URLSafe(t *testing.T) {
	token, err := NewToken()
	if err != nil {
		t.Fatalf("NewToken returned error: %v", err)
	}

	// 32 bytes en base64url sin padding => 43 chars
	if len(token) != 43 {
		t.Fatalf("expected 43-char token, got %d (%q)", len(token), token)
	}

	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		t.Fatalf("token is not valid base64url: %v", err)
	}
	if len(raw) != tokenBytes {
		t.Fatalf("expected %d raw bytes, got %d", tokenBytes, len(raw))
	}
}

func TestNewToken_Unique(t *testing.T) {
	const n = 1000
	seen := make(map[string]struct{}, n)
	for i := 0; i < n; i++ {
		token, err := NewToken()
		if err != nil {
			t.Fatalf("NewToken returned error: %v", err)
		}
		if _, dup := seen[token]; dup {
			t.Fatalf("duplicate token after %d generations", i)
		}
		seen[token] = struct{}{}
	}
}
