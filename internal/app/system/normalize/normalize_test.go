// internal/app/system/normalize/normalize_test.go

package normalize

import "testing"

func TestEmail(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"user@example.com", "user@example.com"},
		{"USER@EXAMPLE.COM", "user@example.com"},
		{"  User@Example.Com  ", "user@example.com"},
		{"", ""},
		{"   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := Email(tt.input)
			if got != tt.want {
				t.Errorf("Email(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestName(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Sari Dewi", "Sari Dewi"},
		{"  Sari Dewi  ", "Sari Dewi"},
		{"", ""},
		{"   ", ""},
		{"UPPERCASE NAME", "UPPERCASE NAME"}, // Name preserves case
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := Name(tt.input)
			if got != tt.want {
				t.Errorf("Name(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestAuthMethod(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"password", "password"},
		{"PASSWORD", "password"},
		{"  Google  ", "google"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := AuthMethod(tt.input)
			if got != tt.want {
				t.Errorf("AuthMethod(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestStatus(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		// canonical passes through
		{"pending", "pending"},
		{"approved", "approved"},
		{"rejected", "rejected"},
		{"cancelled", "cancelled"},
		// first legacy generation: upper-case English
		{"PENDING", "pending"},
		{"CONFIRMED", "approved"},
		{"APPROVED", "approved"},
		{"REJECTED", "rejected"},
		{"CANCELLED", "cancelled"},
		{"CANCELED", "cancelled"},
		// second legacy generation: Indonesian
		{"menunggu", "pending"},
		{"disetujui", "approved"},
		{"ditolak", "rejected"},
		{"dibatalkan", "cancelled"},
		{"Menunggu", "pending"},
		// whitespace and garbage
		{"  pending  ", "pending"},
		{"", "pending"},
		{"???", "pending"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := Status(tt.input)
			if got != tt.want {
				t.Errorf("Status(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestRegRole(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"participant", "participant"},
		{"volunteer", "volunteer"},
		{"PARTICIPANT", "participant"},
		{"VOLUNTEER", "volunteer"},
		{"peserta", "participant"},
		{"relawan", "volunteer"},
		{"Peserta", "participant"},
		{"", "participant"},
		{"organizer", "participant"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := RegRole(tt.input)
			if got != tt.want {
				t.Errorf("RegRole(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestStatusIdempotent(t *testing.T) {
	inputs := []string{"PENDING", "CONFIRMED", "menunggu", "disetujui", "ditolak", "dibatalkan", "junk", ""}
	for _, in := range inputs {
		once := Status(in)
		if twice := Status(once); twice != once {
			t.Errorf("Status not idempotent for %q: %q -> %q", in, once, twice)
		}
		if !IsValidStatus(once) {
			t.Errorf("Status(%q) = %q is not canonical", in, once)
		}
	}
}

func TestRegRoleIdempotent(t *testing.T) {
	inputs := []string{"PARTICIPANT", "peserta", "relawan", "junk", ""}
	for _, in := range inputs {
		once := RegRole(in)
		if twice := RegRole(once); twice != once {
			t.Errorf("RegRole not idempotent for %q: %q -> %q", in, once, twice)
		}
		if !IsValidRegRole(once) {
			t.Errorf("RegRole(%q) = %q is not canonical", in, once)
		}
	}
}
