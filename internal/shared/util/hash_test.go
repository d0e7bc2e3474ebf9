package util

import "testing"

func TestHashUserKey(t *testing.T) {
	id := "google:12345"
	got := HashUserKey(id)
	if got != HashUserKey(id) {
		t.Fatalf("expected stable hash, got %s", got)
	}
	for _, ch := range got {
		if !((ch >= 'a' && ch <= 'f') || (ch >= '0' && ch <= '9')) {
			t.Fatalf("hash contains non-hex character: %c", ch)
		}
	}
	if len(got) != 16 {
		t.Fatalf("expected 16 hex characters, got %d", len(got))
	}
	if got == HashUserKey("google:54321") {
		t.Fatalf("expected distinct hashes for distinct ids")
	}
}

func TestDisplayFileName(t *testing.T) {
	cases := map[string]string{
		"resume.pdf":              "resume.pdf",
		"  cv.txt ":               "cv.txt",
		"../../etc/passwd":        "passwd",
		`C:\Users\ada\resume.pdf`: "resume.pdf",
		"bad\x00name.txt":         "badname.txt",
		"":                        "",
		"..":                      "",
	}
	for in, want := range cases {
		if got := DisplayFileName(in); got != want {
			t.Fatalf("DisplayFileName(%q) = %q, want %q", in, got, want)
		}
	}
}
