package common

import (
	"regexp"
	"sort"
	"strings"
	"time"
)

var (
	emailRegex    = regexp.MustCompile(`^[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}$`)
	usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)
)

// ValidateUsername checks length and charset. Usernames are case-sensitive,
// so the value is not normalized.
func ValidateUsername(username string) error {
	if len(username) < 3 || len(username) > 50 {
		return ValidationError("Username must be between 3 and 50 characters")
	}

	if !usernameRegex.MatchString(username) {
		return ValidationError("Username can only contain letters, numbers, and underscores")
	}

	return nil
}

func ValidatePassword(password string) error {
	if len(password) < 6 {
		return ValidationError("Password must be at least 6 characters long")
	}

	if len(password) > 100 {
		return ValidationError("Password is too long")
	}

	return nil
}

func ValidateEmail(email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if !emailRegex.MatchString(email) {
		return ValidationError("Invalid email format")
	}

	return nil
}

// CanonicalPair orders two user ids so that (a, b) and (b, a) map to the same key.
func CanonicalPair(a, b string) (string, string) {
	if b < a {
		return b, a
	}
	return a, b
}

// PairKey is the uniqueness key for an unordered pair of user ids.
func PairKey(a, b string) string {
	lo, hi := CanonicalPair(a, b)
	return lo + ":" + hi
}

// UniqueIDs drops empty and repeated ids, keeping first-seen order.
func UniqueIDs(ids ...string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// ContainsID reports whether id is present in ids.
func ContainsID(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// SortedIDs returns a sorted copy.
func SortedIDs(ids []string) []string {
	out := append([]string(nil), ids...)
	sort.Strings(out)
	return out
}

// NextTimestamp returns now, or one millisecond past last when now does not
// come after it. Message cursors rely on timestamps being strictly increasing.
func NextTimestamp(now, last time.Time) time.Time {
	if !now.After(last) {
		return last.Add(time.Millisecond)
	}
	return now
}
