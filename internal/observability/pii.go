package observability

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"
)

// PIIType represents different types of PII that can be detected
type PIIType string

const (
	PIITypeEmail      PIIType = "email"
	PIITypePhone      PIIType = "phone"
	PIITypeSSN        PIIType = "ssn"
	PIITypeCreditCard PIIType = "credit_card"
	PIITypeIPAddress  PIIType = "ip_address"
)

// minPhoneDigits keeps years and short numbers out of phone detections
const minPhoneDigits = 7

// piiPriority breaks ties between detections covering the same span; the
// broad phone patterns also match IPs, SSNs and card numbers.
var piiPriority = map[PIIType]int{
	PIITypeEmail:      0,
	PIITypeCreditCard: 1,
	PIITypeSSN:        2,
	PIITypeIPAddress:  3,
	PIITypePhone:      4,
}

// PIIDetection represents a detected PII instance
type PIIDetection struct {
	Type     PIIType
	Value    string
	StartPos int
	EndPos   int
}

var (
	// Email pattern - RFC 5322 simplified
	emailPattern = regexp.MustCompile(`\b[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}\b`)

	// Phone patterns - US and international formats
	phonePatterns = []*regexp.Regexp{
		regexp.MustCompile(`\b(\+?1[-.]?)?\(?([0-9]{3})\)?[-.]?([0-9]{3})[-.]?([0-9]{4})\b`),
		regexp.MustCompile(`\+?\b[0-9]{1,4}[-.\s]?(\([0-9]{1,4}\)|[0-9]{1,4})[-.\s]?[0-9]{1,4}[-.\s]?[0-9]{1,9}\b`),
	}

	// SSN pattern - XXX-XX-XXXX or XXXXXXXXX
	ssnPatterns = []*regexp.Regexp{
		regexp.MustCompile(`\b[0-9]{3}-[0-9]{2}-[0-9]{4}\b`),
		regexp.MustCompile(`\b[0-9]{9}\b`),
	}

	// Credit card patterns - major card types
	creditCardPatterns = []*regexp.Regexp{
		regexp.MustCompile(`\b4[0-9]{12}(?:[0-9]{3})?\b`),      // Visa
		regexp.MustCompile(`\b5[1-5][0-9]{14}\b`),              // MasterCard
		regexp.MustCompile(`\b3[47][0-9]{13}\b`),               // American Express
		regexp.MustCompile(`\b6(?:011|5[0-9]{2})[0-9]{12}\b`),  // Discover
		regexp.MustCompile(`\b(?:2131|1800|35\d{3})\d{11}\b`), // JCB
	}

	// IP address patterns - IPv4 and IPv6
	ipPatterns = []*regexp.Regexp{
		regexp.MustCompile(`\b(?:(?:25[0-5]|2[0-4][0-9]|[01]?[0-9][0-9]?)\.){3}(?:25[0-5]|2[0-4][0-9]|[01]?[0-9][0-9]?)\b`),
		regexp.MustCompile(`\b(?:[0-9a-fA-F]{1,4}:){7}[0-9a-fA-F]{1,4}\b`),
	}
)

// DetectPII returns true if the text likely contains PII.
func DetectPII(text string) bool {
	return len(DetectAllPII(text)) > 0
}

// DetectAllPII returns all PII detections in the text, ordered by position.
// Detections from different patterns may overlap.
func DetectAllPII(text string) []PIIDetection {
	var detections []PIIDetection
	add := func(t PIIType, match []int) {
		detections = append(detections, PIIDetection{
			Type:     t,
			Value:    text[match[0]:match[1]],
			StartPos: match[0],
			EndPos:   match[1],
		})
	}

	for _, match := range emailPattern.FindAllStringIndex(text, -1) {
		add(PIITypeEmail, match)
	}

	for _, pattern := range phonePatterns {
		for _, match := range pattern.FindAllStringIndex(text, -1) {
			if countDigits(text[match[0]:match[1]]) < minPhoneDigits {
				continue
			}
			add(PIITypePhone, match)
		}
	}

	for i, pattern := range ssnPatterns {
		for _, match := range pattern.FindAllStringIndex(text, -1) {
			// Additional validation for 9-digit numbers
			if i == 1 && !looksLikeSSN(text[match[0]:match[1]]) {
				continue
			}
			add(PIITypeSSN, match)
		}
	}

	for _, pattern := range creditCardPatterns {
		for _, match := range pattern.FindAllStringIndex(text, -1) {
			if luhnCheck(text[match[0]:match[1]]) {
				add(PIITypeCreditCard, match)
			}
		}
	}

	for _, pattern := range ipPatterns {
		for _, match := range pattern.FindAllStringIndex(text, -1) {
			add(PIITypeIPAddress, match)
		}
	}

	sort.SliceStable(detections, func(i, j int) bool {
		if detections[i].StartPos != detections[j].StartPos {
			return detections[i].StartPos < detections[j].StartPos
		}
		if detections[i].EndPos != detections[j].EndPos {
			return detections[i].EndPos > detections[j].EndPos
		}
		return piiPriority[detections[i].Type] < piiPriority[detections[j].Type]
	})
	return detections
}

// RedactPII replaces every detected PII span with a typed placeholder.
// Overlapping spans are merged and take the type of the first detection.
func RedactPII(text string) string {
	detections := DetectAllPII(text)
	if len(detections) == 0 {
		return text
	}

	var b strings.Builder
	cursor := 0
	for i := 0; i < len(detections); {
		span := detections[i]
		end := span.EndPos
		j := i + 1
		for j < len(detections) && detections[j].StartPos < end {
			if detections[j].EndPos > end {
				end = detections[j].EndPos
			}
			j++
		}
		b.WriteString(text[cursor:span.StartPos])
		b.WriteString(getRedactionString(span.Type))
		cursor = end
		i = j
	}
	b.WriteString(text[cursor:])
	return b.String()
}

// QueryPreview returns a log-safe prefix of query: PII is redacted first,
// then the result is cut to at most maxRunes runes with a trailing ellipsis.
// maxRunes <= 0 disables truncation.
func QueryPreview(query string, maxRunes int) string {
	redacted := RedactPII(strings.TrimSpace(query))
	if maxRunes <= 0 || utf8.RuneCountInString(redacted) <= maxRunes {
		return redacted
	}
	runes := []rune(redacted)
	return string(runes[:maxRunes]) + "…"
}

// getRedactionString returns an appropriate redaction string for the PII type
func getRedactionString(piiType PIIType) string {
	switch piiType {
	case PIITypeEmail:
		return "[EMAIL_REDACTED]"
	case PIITypePhone:
		return "[PHONE_REDACTED]"
	case PIITypeSSN:
		return "[SSN_REDACTED]"
	case PIITypeCreditCard:
		return "[CC_REDACTED]"
	case PIITypeIPAddress:
		return "[IP_REDACTED]"
	default:
		return "[REDACTED]"
	}
}

func countDigits(s string) int {
	n := 0
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			n++
		}
	}
	return n
}

// looksLikeSSN performs basic validation on a 9-digit number to check if it looks like an SSN
func looksLikeSSN(s string) bool {
	if len(s) != 9 {
		return false
	}

	// SSN cannot be all zeros in any group
	if s[:3] == "000" || s[3:5] == "00" || s[5:] == "0000" {
		return false
	}

	// SSN cannot start with 666 or 9
	if strings.HasPrefix(s, "666") || strings.HasPrefix(s, "9") {
		return false
	}

	return true
}

// luhnCheck validates a credit card number using the Luhn algorithm
func luhnCheck(cardNumber string) bool {
	cardNumber = strings.ReplaceAll(cardNumber, " ", "")
	cardNumber = strings.ReplaceAll(cardNumber, "-", "")

	if len(cardNumber) < 13 || len(cardNumber) > 19 {
		return false
	}

	sum := 0
	isSecond := false

	// Traverse from right to left
	for i := len(cardNumber) - 1; i >= 0; i-- {
		digit := int(cardNumber[i] - '0')

		if isSecond {
			digit *= 2
			if digit > 9 {
				digit -= 9
			}
		}

		sum += digit
		isSecond = !isSecond
	}

	return sum%10 == 0
}
