package mask

import "testing"

func TestEmail(t *testing.T) {
	cases := map[string]string{
		"jane.doe@example.com": "j******e@example.com",
		"jo@example.com":       "j*@example.com",
		"a@example.com":        "*@example.com",
		"not-an-email":         "n***********",
	}
	for in, want := range cases {
		if got := Email(in); got != want {
			t.Errorf("Email(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestPhone(t *testing.T) {
	if got := Phone("+15551234567"); got != "********4567" {
		t.Fatalf("unexpected masked phone %q", got)
	}
	if got := Phone("123"); got != "***" {
		t.Fatalf("short phone masked as %q", got)
	}
	if Phone("  ") != "" {
		t.Fatalf("blank phone should stay blank")
	}
}
