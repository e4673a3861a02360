package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func doRequest(handler http.Handler, method, apiKey string) int {
	req := httptest.NewRequest(method, "/", nil)
	if apiKey != "" {
		req.Header.Set("X-API-KEY", apiKey)
	}
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w.Code
}

func TestWriteProtect(t *testing.T) {
	tests := []struct {
		name   string
		keys   []string
		method string
		apiKey string
		want   int
	}{
		{"GET passes without key", []string{"secret"}, http.MethodGet, "", http.StatusOK},
		{"HEAD passes without key", []string{"secret"}, http.MethodHead, "", http.StatusOK},
		{"OPTIONS passes without key", []string{"secret"}, http.MethodOptions, "", http.StatusOK},
		{"POST without key rejected", []string{"secret"}, http.MethodPost, "", http.StatusUnauthorized},
		{"PUT without key rejected", []string{"secret"}, http.MethodPut, "", http.StatusUnauthorized},
		{"PATCH without key rejected", []string{"secret"}, http.MethodPatch, "", http.StatusUnauthorized},
		{"DELETE without key rejected", []string{"secret"}, http.MethodDelete, "", http.StatusUnauthorized},
		{"POST with valid key passes", []string{"secret"}, http.MethodPost, "secret", http.StatusOK},
		{"DELETE with valid key passes", []string{"secret"}, http.MethodDelete, "secret", http.StatusOK},
		{"POST with wrong key rejected", []string{"secret"}, http.MethodPost, "wrong", http.StatusUnauthorized},
		{"second configured key accepted", []string{"k1", "k2"}, http.MethodPost, "k2", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := WriteProtect(NewAuthConfigWithKeys(tt.keys))(okHandler())
			if got := doRequest(handler, tt.method, tt.apiKey); got != tt.want {
				t.Errorf("status = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestWriteProtect_NoKeysConfiguredDisablesAuth(t *testing.T) {
	handler := WriteProtect(NewAuthConfigWithKeys(nil))(okHandler())

	for _, method := range []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete} {
		if got := doRequest(handler, method, ""); got != http.StatusOK {
			t.Errorf("%s with auth disabled: status = %d, want %d", method, got, http.StatusOK)
		}
	}
}
