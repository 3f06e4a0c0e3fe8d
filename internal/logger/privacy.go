package logger

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

const defaultHashSalt = "expense-tracker-default-log-salt"

var hashSalt = defaultHashSalt

// SetHashSalt sets the salt used for privacy hashes. Empty keeps the default.
func SetHashSalt(salt string) {
	if salt == "" {
		salt = defaultHashSalt
	}
	hashSalt = salt
}

func hash(value string) string {
	sum := sha256.Sum256([]byte(value + ":" + hashSalt))
	return hex.EncodeToString(sum[:])[:8]
}

// HashUserID creates a privacy-preserving hash of a chat user ID.
// This allows tracking user actions without exposing actual user IDs.
func HashUserID(userID int64) string {
	return hash(fmt.Sprintf("%d", userID))
}

// HashText hashes free text such as a description for correlation in logs.
func HashText(text string) string {
	return hash(text)
}

// SanitizeDescription redacts a description but keeps its shape for debugging.
func SanitizeDescription(desc string) string {
	if desc == "" {
		return "<empty>"
	}
	return fmt.Sprintf("<redacted: %d words, %d chars>", len(strings.Fields(desc)), len(desc))
}

// SanitizeText is a general-purpose sanitizer for any user-provided text.
func SanitizeText(text string) string {
	if text == "" {
		return "<empty>"
	}
	if len(text) <= 10 {
		return fmt.Sprintf("<%d chars>", len(text))
	}
	return fmt.Sprintf("%s...<%d chars>", text[:3], len(text))
}
