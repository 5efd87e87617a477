package controllers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGoogleLogin(t *testing.T) {
	s := newTestServer(t, serverOptions{})

	tests := []struct {
		name           string
		body           interface{}
		expectedStatus int
		isManager      bool
	}{
		{name: "manager", body: map[string]string{"credential": managerToken}, expectedStatus: http.StatusOK, isManager: true},
		{name: "signed in but not a manager", body: map[string]string{"credential": strangerToken}, expectedStatus: http.StatusOK},
		{name: "invalid credential", body: map[string]string{"credential": "forged"}, expectedStatus: http.StatusUnauthorized},
		{name: "missing credential", body: map[string]string{}, expectedStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.request(http.MethodPost, "/api/v1/auth/google", "", tt.body)
			require.Equal(t, tt.expectedStatus, w.Code, w.Body.String())
			if tt.expectedStatus == http.StatusOK {
				data := decodeResponse(t, w)["data"].(map[string]interface{})
				assert.Equal(t, tt.isManager, data["isManager"])
				assert.Equal(t, "Test User", data["name"])
			}
		})
	}
}

func TestAuthMe(t *testing.T) {
	s := newTestServer(t, serverOptions{})

	tests := []struct {
		name           string
		token          string
		expectedStatus int
		isManager      bool
	}{
		{name: "manager", token: managerToken, expectedStatus: http.StatusOK, isManager: true},
		{name: "signed in but not a manager", token: strangerToken, expectedStatus: http.StatusOK},
		{name: "unknown token", token: "forged", expectedStatus: http.StatusUnauthorized},
		{name: "no token", expectedStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.request(http.MethodGet, "/api/v1/auth/me", tt.token, nil)
			require.Equal(t, tt.expectedStatus, w.Code, w.Body.String())
			if tt.expectedStatus != http.StatusOK {
				return
			}
			data := decodeResponse(t, w)["data"].(map[string]interface{})
			assert.Equal(t, tt.isManager, data["isManager"])
			assert.Equal(t, "Test User", data["name"])
			assert.Equal(t, "google|"+data["email"].(string), data["id"])
		})
	}
}
