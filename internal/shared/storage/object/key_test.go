package object

import (
	"strings"
	"testing"
)

func TestApplyPrefix(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		prefix string
		key    string
		want   string
	}{
		{name: "no prefix", prefix: "", key: "session/file.pdf", want: "session/file.pdf"},
		{name: "simple prefix", prefix: "root", key: "session/file.pdf", want: "root/session/file.pdf"},
		{name: "prefix trailing slash", prefix: "root/", key: "session/file.pdf", want: "root/session/file.pdf"},
		{name: "prefix and key slashes", prefix: "/root/", key: "/session/file.pdf", want: "root/session/file.pdf"},
		{name: "nested prefix", prefix: "root/sub", key: "session/file.pdf", want: "root/sub/session/file.pdf"},
		{name: "empty key", prefix: "root", key: "", want: "root"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := ApplyPrefix(tt.prefix, tt.key); got != tt.want {
				t.Fatalf("ApplyPrefix(%q, %q) = %q, want %q", tt.prefix, tt.key, got, tt.want)
			}
		})
	}
}

func TestNewKey(t *testing.T) {
	key, err := NewKey("local", "my paper.pdf")
	if err != nil {
		t.Fatalf("NewKey: %v", err)
	}
	parts := strings.Split(key, "/")
	if len(parts) != 2 {
		t.Fatalf("key = %q, want two segments", key)
	}
	if len(parts[0]) != 64 {
		t.Fatalf("session segment = %q", parts[0])
	}
	if !strings.HasSuffix(parts[1], "_my paper.pdf") {
		t.Fatalf("name segment = %q", parts[1])
	}
	if _, err := NewKey("local", "../../etc"); err == nil {
		t.Fatalf("expected error for traversal name")
	}
}
