package climod

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClientListFollowers(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/followers/list", r.URL.Path)
		json.NewEncoder(w).Encode([]FollowerRow{{IP: "10.0.0.2", Phi: 0.5}})
	}))
	defer srv.Close()

	client := NewClient(strings.TrimPrefix(srv.URL, "http://"), false, false)
	rows, err := client.ListFollowers()
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, "10.0.0.2", rows[0].IP)
}

func TestClientAddFollowerPostsIP(t *testing.T) {
	var gotIP string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			IP string `json:"ip"`
		}
		json.NewDecoder(r.Body).Decode(&body)
		gotIP = body.IP
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}))
	defer srv.Close()

	client := NewClient(strings.TrimPrefix(srv.URL, "http://"), false, false)
	require.NoError(t, client.AddFollower("10.0.0.9"))
	require.Equal(t, "10.0.0.9", gotIP)
}

func TestClientReturnsErrorOnNonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": "bad ip"})
	}))
	defer srv.Close()

	client := NewClient(strings.TrimPrefix(srv.URL, "http://"), false, false)
	require.Error(t, client.AddFollower("garbage"))
}

func TestClientHealthzReflectsStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := NewClient(strings.TrimPrefix(srv.URL, "http://"), false, false)
	ready, err := client.Healthz()
	require.NoError(t, err)
	require.False(t, ready, "expected ready=false for 503 response")
}
