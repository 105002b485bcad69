package encryptor

import (
	"bytes"
	"errors"
	"testing"
)

func TestEncryptDecrypt(t *testing.T) {
	key := bytes.Repeat([]byte{0x42}, KeySize)
	ad := []byte("report.pdf|1700000000")
	plain := []byte("compressed secret bytes")

	sealed, err := Encrypt(plain, key, ad)
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}
	if bytes.Contains(sealed, plain) {
		t.Fatal("plaintext visible in sealed output")
	}

	opened, err := Decrypt(sealed, key, ad)
	if err != nil {
		t.Fatalf("Decrypt failed: %v", err)
	}
	if !bytes.Equal(plain, opened) {
		t.Errorf("Decrypt = %q, want %q", opened, plain)
	}
}

func TestDecryptRejectsTampering(t *testing.T) {
	key := bytes.Repeat([]byte{0x01}, KeySize)
	sealed, err := Encrypt([]byte("payload"), key, []byte("run-a"))
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}

	flipped := append([]byte(nil), sealed...)
	flipped[len(flipped)-1] ^= 0x01

	tests := []struct {
		name   string
		sealed []byte
		key    []byte
		ad     []byte
	}{
		{"other run", sealed, key, []byte("run-b")},
		{"flipped tag", flipped, key, []byte("run-a")},
		{"wrong key", sealed, bytes.Repeat([]byte{0x02}, KeySize), []byte("run-a")},
		{"truncated", sealed[:10], key, []byte("run-a")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Decrypt(tt.sealed, tt.key, tt.ad); !errors.Is(err, ErrAuthentication) {
				t.Errorf("expected ErrAuthentication, got %v", err)
			}
		})
	}
}

func TestShortKey(t *testing.T) {
	if _, err := Encrypt([]byte("x"), []byte("short"), nil); err == nil {
		t.Error("expected error for a 5 byte key")
	}
}
