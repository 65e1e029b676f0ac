// Utilities for importing request headers from a browser "Copy as cURL" command.
package shared

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

var (
	headerRegex = regexp.MustCompile(`-H\s+'([^']+)'|-H\s+"([^"]+)"`)
	cookieRegex = regexp.MustCompile(`-b\s+'([^']+)'|-b\s+"([^"]+)"`)
	urlRegex    = regexp.MustCompile(`https?://[^\s'"]+`)
)

// hop-by-hop and multipart headers that must be generated per request.
var skippedHeaders = map[string]bool{
	"content-length": true,
	"content-type":   true,
	"host":           true,
	"connection":     true,
}

// CurlHeaders represents parsed headers and cookies from a cURL command.
type CurlHeaders struct {
	URL     string            `json:"url,omitempty"`
	Headers map[string]string `json:"headers"`
	Cookie  string            `json:"cookie,omitempty"`
}

// ParseCurlFile reads a .sh file containing a cURL command and extracts headers.
func ParseCurlFile(path string) (*CurlHeaders, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read curl file: %w", err)
	}

	return ParseCurlCommand(content)
}

// ParseCurlCommand parses a cURL command string and extracts the target URL, headers and cookie.
//
// Content-Type, Content-Length, Host and Connection are dropped since the multipart body is rebuilt per submission.
func ParseCurlCommand(data []byte) (*CurlHeaders, error) {
	curlCmd := string(data)
	curlCmd = strings.ReplaceAll(curlCmd, "\\\n", " ")
	curlCmd = strings.ReplaceAll(curlCmd, "\\", "")

	headers := make(map[string]string)
	var cookie string

	for _, match := range headerRegex.FindAllStringSubmatch(curlCmd, -1) {
		key, value, ok := splitHeader(firstGroup(match))
		if !ok {
			continue
		}

		switch lower := strings.ToLower(key); {
		case lower == "cookie":
			if cookie == "" {
				cookie = value
			}
		case skippedHeaders[lower]:
		default:
			headers[key] = value
		}
	}

	if m := cookieRegex.FindStringSubmatch(curlCmd); len(m) > 1 {
		cookie = firstGroup(m)
	}

	if len(headers) == 0 && cookie == "" {
		return nil, fmt.Errorf("%w: no headers found in curl command", ErrInvalidInput)
	}

	return &CurlHeaders{
		URL:     urlRegex.FindString(curlCmd),
		Headers: headers,
		Cookie:  cookie,
	}, nil
}

func firstGroup(match []string) string {
	if match[1] != "" {
		return match[1]
	}
	return match[2]
}

func splitHeader(line string) (string, string, bool) {
	parts := strings.SplitN(line, ":", 2)
	if len(parts) != 2 {
		return "", "", false
	}
	return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1]), true
}

// HTTPHeader converts the parsed values into an [http.Header], cookie included.
func (c *CurlHeaders) HTTPHeader() http.Header {
	h := make(http.Header, len(c.Headers)+1)
	for key, value := range c.Headers {
		h.Set(key, value)
	}
	if c.Cookie != "" {
		h.Set("Cookie", c.Cookie)
	}
	return h
}

// String renders the headers as sorted "Key: Value" lines.
func (c *CurlHeaders) String() string {
	lines := make([]string, 0, len(c.Headers)+1)
	for key, value := range c.Headers {
		lines = append(lines, fmt.Sprintf("%s: %s", key, value))
	}
	sort.Strings(lines)

	if c.Cookie != "" {
		lines = append(lines, fmt.Sprintf("Cookie: %s", c.Cookie))
	}

	return strings.Join(lines, "\n")
}

// WriteHeadersFile saves parsed headers as JSON, readable only by the owner.
func WriteHeadersFile(path string, c *CurlHeaders) error {
	data, err := MarshalJSON(c, true)
	if err != nil {
		return fmt.Errorf("failed to marshal headers: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create headers directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write headers file: %w", err)
	}
	return nil
}

// LoadHeadersFile reads a headers file written by [WriteHeadersFile].
func LoadHeadersFile(path string) (*CurlHeaders, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read headers file: %w", err)
	}

	var c CurlHeaders
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("%w: headers file %s: %v", ErrInvalidConfig, path, err)
	}
	return &c, nil
}
