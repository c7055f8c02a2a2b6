package observability

import (
	"testing"
)

func TestDetectPII(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected bool
	}{
		{
			name:     "no PII",
			text:     "What is the weather like today?",
			expected: false,
		},
		{
			name:     "year is not a phone number",
			text:     "refund policy 2024",
			expected: false,
		},
		{
			name:     "contains email",
			text:     "Contact me at john.doe@example.com for more info",
			expected: true,
		},
		{
			name:     "contains phone",
			text:     "Call me at 555-123-4567",
			expected: true,
		},
		{
			name:     "contains SSN",
			text:     "My SSN is 123-45-6789",
			expected: true,
		},
		{
			name:     "contains credit card",
			text:     "Use card 4532015112830366",
			expected: true,
		},
		{
			name:     "contains IP address",
			text:     "Server at 192.168.1.1",
			expected: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := DetectPII(tt.text)
			if result != tt.expected {
				t.Errorf("DetectPII() = %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestDetectAllPII_Ordering(t *testing.T) {
	detections := DetectAllPII("Contact: user@example.com then admin@test.org")

	if len(detections) != 2 {
		t.Fatalf("DetectAllPII() found %d detections, want 2", len(detections))
	}
	if detections[0].Value != "user@example.com" || detections[1].Value != "admin@test.org" {
		t.Errorf("unexpected detection order: %+v", detections)
	}
	for _, d := range detections {
		if d.Type != PIITypeEmail {
			t.Errorf("Detection type = %v, want %v", d.Type, PIITypeEmail)
		}
	}
}

func TestRedactPII(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected string
	}{
		{
			name:     "no PII",
			text:     "Hello world",
			expected: "Hello world",
		},
		{
			name:     "redact email",
			text:     "Contact user@example.com for help",
			expected: "Contact [EMAIL_REDACTED] for help",
		},
		{
			name:     "redact phone",
			text:     "Call 555-123-4567 today",
			expected: "Call [PHONE_REDACTED] today",
		},
		{
			name:     "SSN wins over overlapping phone match",
			text:     "SSN: 123-45-6789",
			expected: "SSN: [SSN_REDACTED]",
		},
		{
			name:     "card wins over overlapping phone match",
			text:     "Card number: 4532015112830366",
			expected: "Card number: [CC_REDACTED]",
		},
		{
			name:     "IP wins over overlapping phone match",
			text:     "Server at 192.168.1.1",
			expected: "Server at [IP_REDACTED]",
		},
		{
			name:     "redact multiple",
			text:     "Email: admin@test.com, Phone: 555-123-4567",
			expected: "Email: [EMAIL_REDACTED], Phone: [PHONE_REDACTED]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := RedactPII(tt.text)
			if result != tt.expected {
				t.Errorf("RedactPII() = %q, want %q", result, tt.expected)
			}
		})
	}
}

func TestQueryPreview(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		maxRunes int
		expected string
	}{
		{
			name:     "short query unchanged",
			query:    "refund policy",
			maxRunes: 50,
			expected: "refund policy",
		},
		{
			name:     "trimmed and truncated",
			query:    "  hello world  ",
			maxRunes: 5,
			expected: "hello…",
		},
		{
			name:     "redacts before truncating",
			query:    "contact me at a@b.io please",
			maxRunes: 10,
			expected: "contact me…",
		},
		{
			name:     "truncates on rune boundaries",
			query:    "żółć gęślą jaźń",
			maxRunes: 4,
			expected: "żółć…",
		},
		{
			name:     "zero disables truncation",
			query:    "a fairly long query",
			maxRunes: 0,
			expected: "a fairly long query",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := QueryPreview(tt.query, tt.maxRunes); got != tt.expected {
				t.Errorf("QueryPreview() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestLuhnCheck(t *testing.T) {
	tests := []struct {
		name   string
		number string
		valid  bool
	}{
		{name: "valid Visa", number: "4532015112830366", valid: true},
		{name: "valid Amex", number: "374245455400126", valid: true},
		{name: "invalid checksum", number: "4532015112830367", valid: false},
		{name: "too short", number: "123456", valid: false},
		{name: "too long", number: "12345678901234567890", valid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := luhnCheck(tt.number)
			if result != tt.valid {
				t.Errorf("luhnCheck(%s) = %v, want %v", tt.number, result, tt.valid)
			}
		})
	}
}

func TestLooksLikeSSN(t *testing.T) {
	tests := []struct {
		name  string
		ssn   string
		valid bool
	}{
		{name: "valid SSN", ssn: "123456789", valid: true},
		{name: "starts with 000", ssn: "000123456", valid: false},
		{name: "middle 00", ssn: "123001234", valid: false},
		{name: "ends with 0000", ssn: "123450000", valid: false},
		{name: "starts with 666", ssn: "666123456", valid: false},
		{name: "starts with 9", ssn: "912345678", valid: false},
		{name: "wrong length", ssn: "12345678", valid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := looksLikeSSN(tt.ssn)
			if result != tt.valid {
				t.Errorf("looksLikeSSN(%s) = %v, want %v", tt.ssn, result, tt.valid)
			}
		})
	}
}

func BenchmarkRedactPII(b *testing.B) {
	text := "Email: admin@test.com, Phone: 555-123-4567, SSN: 123-45-6789, Card: 4532015112830366"

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		RedactPII(text)
	}
}
