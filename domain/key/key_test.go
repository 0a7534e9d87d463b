package key_test

import (
	"testing"

	"github.com/jihun-01/scratcha-dashboard/domain/key"
)

func TestStatusToggle(t *testing.T) {
	if key.StatusActive.Toggle() != key.StatusInactive {
		t.Error("active should toggle to inactive")
	}
	if key.StatusInactive.Toggle() != key.StatusActive {
		t.Error("inactive should toggle to active")
	}
}

func TestMasked(t *testing.T) {
	tests := []struct {
		secret string
		want   string
	}{
		{"sk-1234567890abcdef", "sk-1***********cdef"},
		{"short", "short"},
		{"12345678", "12345678"},
		{"123456789", "1234*6789"},
	}
	for _, tt := range tests {
		k := key.Key{Secret: tt.secret}
		if got := k.Masked(); got != tt.want {
			t.Errorf("Masked(%q) = %q, want %q", tt.secret, got, tt.want)
		}
	}
}

func TestFilterByApp(t *testing.T) {
	keys := []key.Key{
		{ID: 1, AppID: 1},
		{ID: 2, AppID: 2},
		{ID: 3, AppID: 1},
	}

	got := key.FilterByApp(keys, 1)
	if len(got) != 2 || got[0].ID != 1 || got[1].ID != 3 {
		t.Errorf("FilterByApp = %+v", got)
	}
	if key.FilterByApp(keys, 9) != nil {
		t.Error("unknown app should yield nil")
	}
}

func TestAnyActive(t *testing.T) {
	if key.AnyActive(nil) {
		t.Error("empty list should not be active")
	}
	inactive := []key.Key{{Status: key.StatusInactive}, {Status: key.StatusInactive}}
	if key.AnyActive(inactive) {
		t.Error("all-inactive list should not be active")
	}
	mixed := append(inactive, key.Key{Status: key.StatusActive})
	if !key.AnyActive(mixed) {
		t.Error("one active key should make the list active")
	}
}
