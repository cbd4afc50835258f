package inputval

import "testing"

func TestIsValidEmail(t *testing.T) {
	tests := []struct {
		email string
		want  bool
	}{
		// Valid emails
		{"user@teamsparta.co", true},
		{"user.name@teamsparta.co", true},
		{"user+tag@example.com", true},
		{"user@subdomain.example.com", true},
		{"a@b.co", true},
		{"user@localhost", true},

		// Invalid emails - empty/whitespace
		{"", false},
		{"   ", false},

		// Invalid emails - missing parts
		{"user", false},
		{"user@", false},
		{"@example.com", false},

		// Invalid emails - bad format
		{".user@example.com", false},
		{"user.@example.com", false},
		{"user..name@example.com", false},
		{"user@.example.com", false},
		{"user@example..com", false},

		// Display name format
		{"User Name <user@example.com>", false},

		// Spaces
		{"user @example.com", false},
		{"user@ example.com", false},
		{"user@exam ple.com", false},
	}

	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			got := IsValidEmail(tt.email)
			if got != tt.want {
				t.Errorf("IsValidEmail(%q) = %v, want %v", tt.email, got, tt.want)
			}
		})
	}
}

func TestEmailInDomain(t *testing.T) {
	tests := []struct {
		email, domain string
		want          bool
	}{
		{"kim@teamsparta.co", "teamsparta.co", true},
		{"Kim@TeamSparta.CO", "teamsparta.co", true},
		{"kim@teamsparta.co", "@teamsparta.co", true},
		{"kim@gmail.com", "teamsparta.co", false},
		{"kim@evil.teamsparta.co", "teamsparta.co", false},
		{"kim@teamsparta.co.evil.com", "teamsparta.co", false},
		{"kim@teamsparta.co", "", false},
		{"not-an-email", "teamsparta.co", false},
	}
	for _, tt := range tests {
		if got := EmailInDomain(tt.email, tt.domain); got != tt.want {
			t.Errorf("EmailInDomain(%q, %q) = %v, want %v", tt.email, tt.domain, got, tt.want)
		}
	}
}

func TestResult_All(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		r := &Result{}
		if r.All() != "" {
			t.Errorf("All() = %q, want empty", r.All())
		}
	})

	t.Run("multiple", func(t *testing.T) {
		r := &Result{
			Errors: []FieldError{
				{Field: "a", Message: "Error 1"},
				{Field: "b", Message: "Error 2"},
			},
		}
		if want := "Error 1; Error 2"; r.All() != want {
			t.Errorf("All() = %q, want %q", r.All(), want)
		}
	})
}

func TestResult_ByField(t *testing.T) {
	r := &Result{}
	r.Add("name", "first")
	r.Add("name", "second")
	r.Add("day", "third")
	got := r.ByField()
	if got["name"] != "first" || got["day"] != "third" || len(got) != 2 {
		t.Errorf("ByField() = %v", got)
	}
	var nilRes *Result
	if nilRes.HasErrors() || len(nilRes.ByField()) != 0 {
		t.Error("nil Result should be empty")
	}
}
