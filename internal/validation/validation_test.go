package validation

import (
	"errors"
	"strings"
	"testing"

	"marketmind/internal/apperr"
	"marketmind/internal/models"
)

func TestValidateSlug(t *testing.T) {
	tests := []struct {
		name string
		slug string
		want bool
	}{
		{"simple", "notion", true},
		{"with hyphen", "notion-ai", true},
		{"with numbers", "gpt-4", true},
		{"numbers only", "12345", true},
		{"empty string", "", false},
		{"too long", strings.Repeat("a", 201), false},
		{"uppercase", "Notion", false},
		{"leading hyphen", "-notion", false},
		{"trailing hyphen", "notion-", false},
		{"double hyphen", "notion--ai", false},
		{"underscore", "notion_ai", false},
		{"space", "notion ai", false},
		{"path traversal attempt", "../etc/passwd", false},
		{"unicode", "日本語", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidateSlug(tt.slug); got != tt.want {
				t.Errorf("ValidateSlug(%q) = %v, want %v", tt.slug, got, tt.want)
			}
		})
	}
}

func TestNormalizeSlug(t *testing.T) {
	if got := NormalizeSlug("  Notion-AI "); got != "notion-ai" {
		t.Errorf("NormalizeSlug() = %q, want %q", got, "notion-ai")
	}
}

func TestValidateURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantOK  bool
		wantMsg string
	}{
		{"https", "https://notion.so", true, ""},
		{"http with path", "http://example.com/pricing?plan=pro", true, ""},
		{"empty", "", false, "URL is required"},
		{"javascript scheme", "javascript:alert(1)", false, "URL must use http:// or https:// scheme"},
		{"data scheme", "data:text/html,hi", false, "URL must use http:// or https:// scheme"},
		{"ftp scheme", "ftp://example.com", false, "URL must use http:// or https:// scheme"},
		{"no host", "https://", false, "URL must have a valid host"},
		{"bad escape", "http://%zz", false, "Invalid URL format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, msg := ValidateURL(tt.url)
			if ok != tt.wantOK || msg != tt.wantMsg {
				t.Errorf("ValidateURL(%q) = (%v, %q), want (%v, %q)", tt.url, ok, msg, tt.wantOK, tt.wantMsg)
			}
		})
	}
}

func TestStruct(t *testing.T) {
	valid := models.ToolCreate{
		Name:       "Notion",
		Slug:       "notion",
		WebsiteURL: "https://notion.so",
	}

	t.Run("valid tool", func(t *testing.T) {
		if err := Struct(valid); err != nil {
			t.Fatalf("Struct() error = %v", err)
		}
	})

	tests := []struct {
		name     string
		input    any
		contains string
	}{
		{
			name:     "missing name",
			input:    models.ToolCreate{Slug: "notion", WebsiteURL: "https://notion.so"},
			contains: "name is required",
		},
		{
			name:     "bad slug",
			input:    models.ToolCreate{Name: "Notion", Slug: "Notion AI", WebsiteURL: "https://notion.so"},
			contains: "slug must contain only lowercase letters",
		},
		{
			name:     "javascript url",
			input:    models.ToolCreate{Name: "Notion", Slug: "notion", WebsiteURL: "javascript:alert(1)"},
			contains: "website_url must be a valid http:// or https:// URL",
		},
		{
			name:     "rating too high",
			input:    models.ReviewInput{Rating: 6},
			contains: "rating must be at most 5",
		},
		{
			name:     "rating missing",
			input:    models.ReviewInput{},
			contains: "rating is required",
		},
		{
			name:     "unknown decision",
			input:    models.AccessDecision{Status: "pending"},
			contains: "status must be one of: approved denied",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Struct(tt.input)
			if err == nil {
				t.Fatal("Struct() expected error, got nil")
			}
			if !errors.Is(err, apperr.ErrValidation) {
				t.Errorf("Struct() error kind = %v, want validation", err)
			}
			if !strings.Contains(err.Error(), tt.contains) {
				t.Errorf("Struct() error = %q, want it to contain %q", err.Error(), tt.contains)
			}
		})
	}
}

func TestStructReportsEveryField(t *testing.T) {
	err := Struct(models.ToolCreate{})
	if err == nil {
		t.Fatal("Struct() expected error, got nil")
	}
	for _, field := range []string{"name", "slug", "website_url"} {
		if !strings.Contains(err.Error(), field+" is required") {
			t.Errorf("Struct() error = %q, missing %s", err.Error(), field)
		}
	}
}
