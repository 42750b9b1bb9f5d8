package urlutil

import "testing"

func TestValidate(t *testing.T) {
	valid := []string{
		"http://example.com",
		"https://careers.example.com/v2/global/en/home.html",
	}
	for _, u := range valid {
		if err := ValidateURL(u); err != nil {
			t.Fatalf("expected valid, got error: %v", err)
		}
	}

	invalid := []string{"ftp://example.com", "//example.com", "http:///"}
	for _, u := range invalid {
		if err := ValidateURL(u); err == nil {
			t.Fatalf("expected invalid for %s", u)
		}
	}
}

func TestResolveURL(t *testing.T) {
	base := "https://careers.example.com/v2/global/en/home.html"

	tests := []struct {
		href string
		want string
	}{
		{"/job/12345/ai-engineer", "https://careers.example.com/job/12345/ai-engineer"},
		{"https://other.example.com/job/1", "https://other.example.com/job/1"},
		{"job/77", "https://careers.example.com/v2/global/en/job/77"},
	}
	for _, tt := range tests {
		if got := ResolveURL(base, tt.href); got != tt.want {
			t.Errorf("ResolveURL(%q): expected %q, got %q", tt.href, tt.want, got)
		}
	}
}
