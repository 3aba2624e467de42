package authgoogle

import (
	"net/http"
	"testing"

	"github.com/dalemusser/communityhub/internal/testutil"
	"go.uber.org/zap"
)

func TestIsConfigured(t *testing.T) {
	tests := []struct {
		name   string
		id     string
		secret string
		want   bool
	}{
		{"both set", "client-id", "client-secret", true},
		{"missing secret", "client-id", "", false},
		{"missing id", "", "client-secret", false},
		{"neither", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := &Handler{ClientID: tt.id, ClientSecret: tt.secret}
			if got := h.IsConfigured(); got != tt.want {
				t.Errorf("IsConfigured() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestServeLogin_NotConfigured(t *testing.T) {
	h := &Handler{Log: zap.NewNop()}

	req := testutil.NewRequest(http.MethodGet, "/auth/google")
	rec := testutil.NewRecorder()

	h.ServeLogin(rec.ResponseRecorder, req)

	rec.AssertRedirect(t, "/login?error=google_not_configured")
}

func TestServeCallback_ProviderDenied(t *testing.T) {
	h := &Handler{ClientID: "id", ClientSecret: "secret", Log: zap.NewNop()}

	req := testutil.NewRequest(http.MethodGet, "/auth/google/callback?error=access_denied")
	rec := testutil.NewRecorder()

	h.ServeCallback(rec.ResponseRecorder, req)

	rec.AssertRedirect(t, "/login?error=google_denied")
}
