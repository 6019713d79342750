package utils

import (
	"net/http"
	"testing"
)

func TestHeaderRedactor_RedactHeaderValue(t *testing.T) {
	redactor := NewHeaderRedactor()

	tests := []struct {
		name     string
		header   string
		value    string
		expected string
	}{
		{"非敏感头部保持原样", "User-Agent", "Mozilla/5.0", "Mozilla/5.0"},
		{"Bearer令牌", "Authorization", "Bearer abcdef123456", "Bearer ***"},
		{"Basic认证", "Authorization", "Basic dXNlcjpwYXNz", "Basic ***"},
		{"长密钥保留首尾", "X-API-Key", "sk-1234567890abcd", "sk-1***abcd"},
		{"短密钥完全隐藏", "X-Token", "abc", "***"},
		{"Cookie", "Cookie", "sid=1", "***"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := redactor.RedactHeaderValue(tt.header, tt.value)
			if got != tt.expected {
				t.Errorf("期望 %q, 实际 %q", tt.expected, got)
			}
		})
	}
}

func TestHeaderRedactor_RedactToString(t *testing.T) {
	redactor := NewHeaderRedactor()

	headers := http.Header{}
	headers.Set("User-Agent", "ImgSpider")
	headers.Set("Authorization", "Bearer secret-token")
	headers.Set("Accept", "image/*")

	got := redactor.RedactToString(headers)
	expected := "Accept: image/*; Authorization: Bearer ***; User-Agent: ImgSpider"
	if got != expected {
		t.Errorf("期望 %q, 实际 %q", expected, got)
	}
}
