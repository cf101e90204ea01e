package appid

import (
	"strings"
	"testing"
)

func TestNewLengthAndAlphabet(t *testing.T) {
	for i := 0; i < 1000; i++ {
		id := New()
		if len(id) != Length {
			t.Fatalf("len(New()) = %d, want %d", len(id), Length)
		}
		for _, c := range id {
			if !((c >= 'a' && c <= 'z') || (c >= '0' && c <= '9')) {
				t.Fatalf("id %q contains %q, want lowercase letter or digit", id, c)
			}
		}
	}
}

func TestNewCollisions(t *testing.T) {
	seen := make(map[string]struct{}, 10000)
	for i := 0; i < 10000; i++ {
		id := New()
		if _, dup := seen[id]; dup {
			t.Fatalf("duplicate id %q after %d iterations", id, i)
		}
		seen[id] = struct{}{}
	}
}

func TestHostnameRoundTrip(t *testing.T) {
	id := "a1b2c3d4e5"
	hostname := Hostname(id, "us-east-1")

	if hostname != "a1b2c3d4e5.execute-api.us-east-1.amazonaws.com" {
		t.Errorf("Hostname() = %q", hostname)
	}

	parsed, ok := Parse(hostname)
	if !ok {
		t.Fatal("Parse() ok = false for a derived hostname")
	}
	if parsed != id {
		t.Errorf("Parse() = %q, want %q", parsed, id)
	}
}

func TestHostnameDeterministic(t *testing.T) {
	a := Hostname("0123456789", "eu-west-2")
	b := Hostname("0123456789", "eu-west-2")
	if a != b {
		t.Errorf("Hostname not deterministic: %q vs %q", a, b)
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		wantID string
		wantOK bool
	}{
		{"convention hostname", "abc123wxyz.execute-api.us-east-1.amazonaws.com", "abc123wxyz", true},
		{"unrelated container", "postgres-main", "", false},
		{"service marker only", "abc.execute-api.internal", "", false},
		{"domain marker only", "abc.amazonaws.com", "", false},
		{"empty", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, ok := Parse(tt.input)
			if ok != tt.wantOK {
				t.Fatalf("Parse(%q) ok = %v, want %v", tt.input, ok, tt.wantOK)
			}
			if id != tt.wantID {
				t.Errorf("Parse(%q) = %q, want %q", tt.input, id, tt.wantID)
			}
		})
	}
}

func TestMatches(t *testing.T) {
	if !Matches("x.execute-api.us-east-1.amazonaws.com") {
		t.Error("Matches should accept a convention name")
	}
	if Matches("redis") {
		t.Error("Matches should reject an unrelated name")
	}
	if !strings.Contains(Hostname("x", "r"), "execute-api") {
		t.Error("Hostname must embed the service marker")
	}
}
