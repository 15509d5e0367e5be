package utils

import "testing"

func TestParseUserAgent(t *testing.T) {
	tests := []struct {
		name        string
		ua          string
		wantDevice  string
		wantBrowser string
		wantOS      string
	}{
		{
			name:        "chrome on windows",
			ua:          "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			wantDevice:  "desktop",
			wantBrowser: "Chrome",
			wantOS:      "Windows",
		},
		{
			name:        "safari on iphone",
			ua:          "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1",
			wantDevice:  "mobile",
			wantBrowser: "Safari",
			wantOS:      "iOS",
		},
		{
			name:        "firefox on linux",
			ua:          "Mozilla/5.0 (X11; Linux x86_64; rv:121.0) Gecko/20100101 Firefox/121.0",
			wantDevice:  "desktop",
			wantBrowser: "Firefox",
			wantOS:      "Linux",
		},
		{
			name:        "edge on windows",
			ua:          "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36 Edg/120.0.0.0",
			wantDevice:  "desktop",
			wantBrowser: "Edge",
			wantOS:      "Windows",
		},
		{
			name:        "googlebot",
			ua:          "Mozilla/5.0 (compatible; Googlebot/2.1; +http://www.google.com/bot.html)",
			wantDevice:  "bot",
			wantBrowser: "",
			wantOS:      "",
		},
		{
			name:        "ipad",
			ua:          "Mozilla/5.0 (iPad; CPU OS 16_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/16.0 Mobile/15E148 Safari/604.1",
			wantDevice:  "tablet",
			wantBrowser: "Safari",
			wantOS:      "iOS",
		},
		{
			name:        "curl",
			ua:          "curl/8.4.0",
			wantDevice:  "desktop",
			wantBrowser: "curl",
			wantOS:      "",
		},
		{
			name:       "empty",
			ua:         "",
			wantDevice: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			device, browser, os := ParseUserAgent(tt.ua)
			if device != tt.wantDevice {
				t.Errorf("device = %q, want %q", device, tt.wantDevice)
			}
			if browser != tt.wantBrowser {
				t.Errorf("browser = %q, want %q", browser, tt.wantBrowser)
			}
			if os != tt.wantOS {
				t.Errorf("os = %q, want %q", os, tt.wantOS)
			}
		})
	}
}

func TestHashVisitor(t *testing.T) {
	a := HashVisitor("1.2.3.4", "agent")
	b := HashVisitor("1.2.3.4", "agent")
	c := HashVisitor("1.2.3.5", "agent")

	if a != b {
		t.Errorf("same inputs produced different hashes")
	}
	if a == c {
		t.Errorf("different inputs produced the same hash")
	}
	if len(a) != 64 {
		t.Errorf("hash length = %d, want 64 hex chars", len(a))
	}
}
