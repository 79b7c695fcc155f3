package authutil

import "testing"

func TestRequiresPassword(t *testing.T) {
	tests := []struct {
		method string
		want   bool
	}{
		{"password", true},
		{" Password ", true},
		{"trust", false},
		{"", false},
	}
	for _, tc := range tests {
		if got := RequiresPassword(tc.method); got != tc.want {
			t.Errorf("RequiresPassword(%q) = %v, want %v", tc.method, got, tc.want)
		}
	}
}

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("correct horse")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if !CheckPassword("correct horse", hash) {
		t.Error("expected matching password to check")
	}
	if CheckPassword("wrong horse", hash) {
		t.Error("expected wrong password to fail")
	}
}

func TestHashPassword_TooShort(t *testing.T) {
	if _, err := HashPassword("short"); err != ErrPasswordTooShort {
		t.Errorf("expected ErrPasswordTooShort, got %v", err)
	}
}

func TestCheckPassword_EmptyHash(t *testing.T) {
	if CheckPassword("anything", "") {
		t.Error("empty hash never matches")
	}
}
