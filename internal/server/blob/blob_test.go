package blob

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestValidate_Policy(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		size        int64
		wantErr     error
	}{
		{"valid small pdf", "application/pdf", 2 << 20, nil},
		{"exactly at limit", "application/pdf", MaxFileSize, nil},
		{"over limit", "application/pdf", MaxFileSize + 1, ErrTooLarge},
		{"png rejected", "image/png", 1024, ErrUnsupportedType},
		{"empty content type rejected", "", 1024, ErrUnsupportedType},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			err := validate(tt.contentType, tt.size)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestStorageKey_SanitizesName(t *testing.T) {
	at := time.UnixMilli(1700000000000)

	key := storageKey("Mon Diplôme (final).pdf", at)
	if !strings.HasPrefix(key, "diplomas/1700000000000-") {
		t.Fatalf("unexpected prefix: %s", key)
	}
	if strings.ContainsAny(strings.TrimPrefix(key, "diplomas/"), " ()é") {
		t.Fatalf("unsafe characters survived: %s", key)
	}
}

func TestStorageKey_EmptyNameGetsRandomFallback(t *testing.T) {
	at := time.UnixMilli(1700000000000)

	a := storageKey("", at)
	b := storageKey("???", at)

	if !strings.HasSuffix(a, ".pdf") || !strings.HasSuffix(b, ".pdf") {
		t.Fatalf("fallback keys must end in .pdf: %s, %s", a, b)
	}
	if a == b {
		t.Fatalf("fallback keys must not collide: %s", a)
	}
}
