package utils

import (
	ua "github.com/mssola/user_agent"
)

// ClientInfo holds what request logs record about a caller
type ClientInfo struct {
	Browser string `json:"browser"`
	OS      string `json:"os"`
	IsBot   bool   `json:"is_bot"`
	Mobile  bool   `json:"mobile"`
}

// ParseUserAgent parses a User-Agent string
func ParseUserAgent(userAgent string) ClientInfo {
	if userAgent == "" || userAgent == "Unknown" {
		return ClientInfo{Browser: "Unknown", OS: "Unknown"}
	}

	parser := ua.New(userAgent)

	browser, version := parser.Browser()
	if browser == "" {
		browser = "Unknown"
	} else if version != "" {
		browser = browser + " " + version
	}

	os := parser.OSInfo().Name
	if os == "" {
		os = "Unknown"
	} else if v := parser.OSInfo().Version; v != "" {
		os = os + " " + v
	}

	return ClientInfo{
		Browser: browser,
		OS:      os,
		IsBot:   parser.Bot(),
		Mobile:  parser.Mobile(),
	}
}
