package mailbox

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// LoadCredentials parses the line-oriented `Key: Value` credentials file
// spec.md §6 names (keys "Client ID", "Client Secret", "Tenant ID"),
// grounded on quantumlife-canon-core/internal/config/loader.go's
// stdlib-only line-based parsing (no YAML/JSON needed for this format).
func LoadCredentials(path string) (Credentials, error) {
	file, err := os.Open(path)
	if err != nil {
		return Credentials{}, fmt.Errorf("mailbox: open %s: %w", path, err)
	}
	defer file.Close()

	var creds Credentials
	scanner := bufio.NewScanner(file)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			return Credentials{}, fmt.Errorf("mailbox: %s:%d: expected \"Key: Value\", got %q", path, lineNum, line)
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		switch key {
		case "Client ID":
			creds.ClientID = value
		case "Client Secret":
			creds.ClientSecret = value
		case "Tenant ID":
			creds.TenantID = value
		default:
			return Credentials{}, fmt.Errorf("mailbox: %s:%d: unrecognized key %q", path, lineNum, key)
		}
	}
	if err := scanner.Err(); err != nil {
		return Credentials{}, fmt.Errorf("mailbox: read %s: %w", path, err)
	}

	if creds.ClientID == "" || creds.ClientSecret == "" || creds.TenantID == "" {
		return Credentials{}, fmt.Errorf("mailbox: %s: missing one of Client ID, Client Secret, Tenant ID", path)
	}
	return creds, nil
}
