package reddit

import (
	"fmt"
	"strings"
)

// ValidateProfileURL reports whether u looks like a Reddit user profile URL.
func ValidateProfileURL(u string) bool {
	return strings.Contains(u, "reddit.com/user/") || strings.Contains(u, "reddit.com/u/")
}

// ExtractUsername returns the path segment following "user" or "u".
func ExtractUsername(profileURL string) (string, error) {
	s := strings.TrimSpace(profileURL)
	if i := strings.IndexAny(s, "?#"); i >= 0 {
		s = s[:i]
	}
	parts := strings.Split(strings.Trim(s, "/"), "/")
	for i, p := range parts {
		if (p == "user" || p == "u") && i+1 < len(parts) && parts[i+1] != "" {
			return parts[i+1], nil
		}
	}
	return "", fmt.Errorf("invalid reddit profile url: %s", profileURL)
}
