package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBasicAuth(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	tests := []struct {
		name       string
		login      string
		password   string
		setAuth    func(r *http.Request)
		wantStatus int
	}{
		{
			name:       "valid",
			login:      "admin",
			password:   "segreta",
			setAuth:    func(r *http.Request) { r.SetBasicAuth("admin", "segreta") },
			wantStatus: http.StatusNoContent,
		},
		{
			name:       "wrong password",
			login:      "admin",
			password:   "segreta",
			setAuth:    func(r *http.Request) { r.SetBasicAuth("admin", "sbagliata") },
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "no header",
			login:      "admin",
			password:   "segreta",
			setAuth:    func(*http.Request) {},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "bearer token",
			login:      "admin",
			password:   "segreta",
			setAuth:    func(r *http.Request) { r.Header.Set("Authorization", "Bearer abc") },
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "not configured",
			login:      "",
			password:   "",
			setAuth:    func(r *http.Request) { r.SetBasicAuth("", "") },
			wantStatus: http.StatusForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/admin/import", nil)
			tt.setAuth(req)
			rr := httptest.NewRecorder()

			BasicAuth(tt.login, tt.password)(ok).ServeHTTP(rr, req)

			assert.Equal(t, tt.wantStatus, rr.Code)
			if tt.wantStatus == http.StatusUnauthorized {
				assert.Contains(t, rr.Header().Get("WWW-Authenticate"), "Basic realm=")
			}
		})
	}
}
