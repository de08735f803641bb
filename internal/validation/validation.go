package validation

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/nahidhasan98/catalog-sync-webhook/internal/catalog"
	"github.com/nahidhasan98/catalog-sync-webhook/internal/errors"
	"github.com/nahidhasan98/catalog-sync-webhook/internal/models"
)

// DefaultMaxCommits bounds the commits accepted in one push
const DefaultMaxCommits = 2048

// maxMessageLength is the longest notification the notifier sends
const maxMessageLength = 4096

// WhatsApp JID patterns
var (
	// Individual JID pattern: number@s.whatsapp.net
	individualJIDPattern = regexp.MustCompile(`^\d{10,15}@s\.whatsapp\.net$`)

	// Group JID pattern: groupid@g.us
	groupJIDPattern = regexp.MustCompile(`^\d+(-\d+)?@g\.us$`)

	// Business JID pattern: number@c.us
	businessJIDPattern = regexp.MustCompile(`^\d{10,15}@c\.us$`)

	nonDigitPattern  = regexp.MustCompile(`\D`)
	newlineRunRegexp = regexp.MustCompile(`\n{3,}`)
)

// Validator provides validation methods
type Validator struct {
	maxCommits int
}

// New creates a new validator instance
func New() *Validator {
	return &Validator{maxCommits: DefaultMaxCommits}
}

// WithMaxCommits returns a validator accepting at most n commits per push
func (v *Validator) WithMaxCommits(n int) *Validator {
	return &Validator{maxCommits: n}
}

// ValidatePushEvent checks a parsed push before it is relayed. Only catalog paths
// must be clean.
func (v *Validator) ValidatePushEvent(event models.PushEvent) *errors.AppError {
	if event == nil {
		return errors.InvalidRequest("Request body is required")
	}

	if strings.TrimSpace(event.GetRef()) == "" {
		return errors.InvalidRequest("'ref' field is required")
	}

	if v.maxCommits > 0 && event.GetCommitCount() > v.maxCommits {
		return errors.InvalidRequest(fmt.Sprintf("Too many commits in push (maximum %d)", v.maxCommits))
	}

	// Paths outside the catalog are dropped later and may hold anything git allows
	for _, commit := range event.GetFileChanges() {
		for _, p := range concat(commit.Added, commit.Modified, commit.Removed) {
			if catalog.IsWhitelisted(p) && !IsCleanPath(p) {
				return errors.InvalidRequest(fmt.Sprintf("Invalid path in push: '%s'", p))
			}
		}
	}

	return nil
}

// IsCleanPath reports whether p is a relative '/'-separated path without empty,
// '.' or '..' segments
func IsCleanPath(p string) bool {
	if p == "" || strings.HasPrefix(p, "/") || strings.ContainsAny(p, "\\\x00") {
		return false
	}
	for _, seg := range strings.Split(p, "/") {
		if seg == "" || seg == "." || seg == ".." {
			return false
		}
	}
	return true
}

// IsValidJID checks if a JID is valid WhatsApp format
func (v *Validator) IsValidJID(jid string) bool {
	jid = strings.TrimSpace(jid)

	return individualJIDPattern.MatchString(jid) ||
		groupJIDPattern.MatchString(jid) ||
		businessJIDPattern.MatchString(jid)
}

// NormalizeJID normalizes a JID to proper WhatsApp format
func (v *Validator) NormalizeJID(jid string) (string, *errors.AppError) {
	jid = strings.TrimSpace(jid)

	// If already in proper format, return as is
	if v.IsValidJID(jid) {
		return jid, nil
	}

	// Try to normalize phone number to individual JID
	if phoneNumber := v.extractPhoneNumber(jid); phoneNumber != "" {
		normalizedJID := phoneNumber + "@s.whatsapp.net"
		if v.IsValidJID(normalizedJID) {
			return normalizedJID, nil
		}
	}

	return "", errors.InvalidRequest(fmt.Sprintf("Invalid WhatsApp JID: '%s'", jid))
}

// extractPhoneNumber extracts a phone number from various formats
func (v *Validator) extractPhoneNumber(input string) string {
	phone := nonDigitPattern.ReplaceAllString(input, "")

	// Check if it's a valid phone number length (10-15 digits)
	if len(phone) >= 10 && len(phone) <= 15 {
		return phone
	}

	return ""
}

// SanitizeMessage prepares a notification for sending
func (v *Validator) SanitizeMessage(message string) string {
	message = strings.TrimSpace(message)
	message = strings.ReplaceAll(message, "\x00", "")

	// Limit consecutive newlines
	message = newlineRunRegexp.ReplaceAllString(message, "\n\n")

	if len(message) > maxMessageLength {
		message = strings.ToValidUTF8(message[:maxMessageLength-3], "") + "..."
	}

	return message
}

func concat(lists ...[]string) []string {
	var out []string
	for _, l := range lists {
		out = append(out, l...)
	}
	return out
}
