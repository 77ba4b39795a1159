package authclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// authAPI is a scripted stand-in for the server: an access cookie is
// either "stale" or "fresh", and refresh upgrades it when the refresh
// cookie is present.
type authAPI struct {
	mu           sync.Mutex
	meCalls      int
	refreshCalls int
	loginCalls   int
	refreshFails bool
	refreshNoop  bool
}

func (a *authAPI) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/auth/me/", func(w http.ResponseWriter, r *http.Request) {
		a.mu.Lock()
		a.meCalls++
		a.mu.Unlock()

		cookie, err := r.Cookie("access_token")
		if err != nil || cookie.Value != "fresh" {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"error": "Authentication credentials were not provided."})
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"id": 7, "email": "user@example.com", "first_name": "Ana", "last_name": "Pop", "user_type": "teacher",
		})
	})

	mux.HandleFunc("/auth/token/refresh/", func(w http.ResponseWriter, r *http.Request) {
		a.mu.Lock()
		a.refreshCalls++
		fails, noop := a.refreshFails, a.refreshNoop
		a.mu.Unlock()

		if fails {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"error": "Invalid or expired refresh token."})
			return
		}
		if _, err := r.Cookie("refresh_token"); err != nil {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"error": "No refresh token found."})
			return
		}
		if !noop {
			http.SetCookie(w, &http.Cookie{Name: "access_token", Value: "fresh", Path: "/"})
		}
		json.NewEncoder(w).Encode(map[string]string{"message": "Token refreshed successfully."})
	})

	mux.HandleFunc("/auth/login/", func(w http.ResponseWriter, r *http.Request) {
		a.mu.Lock()
		a.loginCalls++
		a.mu.Unlock()

		var in map[string]string
		json.NewDecoder(r.Body).Decode(&in)
		if in["password"] != "password123" {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"error": "Invalid email or password."})
			return
		}
		http.SetCookie(w, &http.Cookie{Name: "access_token", Value: "fresh", Path: "/"})
		http.SetCookie(w, &http.Cookie{Name: "refresh_token", Value: "rt", Path: "/auth/token/refresh/"})
		json.NewEncoder(w).Encode(map[string]interface{}{
			"message": "Login successful.",
			"user":    map[string]interface{}{"id": 7, "email": in["email"], "user_type": "teacher"},
		})
	})

	mux.HandleFunc("/auth/logout/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{"error": "boom"})
	})

	return mux
}

func newTestClient(t *testing.T, api *authAPI, nav Navigator) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(api.handler())
	t.Cleanup(server.Close)

	client, err := New(Config{BaseURL: server.URL, Navigator: nav})
	require.NoError(t, err)
	return client, server
}

func seedCookies(t *testing.T, client *Client, server *httptest.Server, access string, withRefresh bool) {
	t.Helper()
	u, err := client.base.Parse("/")
	require.NoError(t, err)
	cookies := []*http.Cookie{{Name: "access_token", Value: access, Path: "/"}}
	if withRefresh {
		cookies = append(cookies, &http.Cookie{Name: "refresh_token", Value: "rt", Path: "/auth/token/refresh/"})
	}
	client.http.Jar.SetCookies(u, cookies)
}

func TestExpiredAccessTokenRefreshedAndRetried(t *testing.T) {
	api := &authAPI{}
	client, server := newTestClient(t, api, nil)
	seedCookies(t, client, server, "stale", true)

	user, err := client.Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "user@example.com", user.Email)
	assert.Equal(t, 2, api.meCalls)
	assert.Equal(t, 1, api.refreshCalls)
}

func TestRetryHappensAtMostOnce(t *testing.T) {
	api := &authAPI{refreshNoop: true}
	client, server := newTestClient(t, api, nil)
	// Refresh reports success but leaves the stale access token in
	// place, so the retried request fails again. It must not loop.
	seedCookies(t, client, server, "stale", true)

	_, err := client.Me(context.Background())
	require.Error(t, err)
	assert.True(t, IsUnauthorized(err))
	assert.Equal(t, 2, api.meCalls)
	assert.Equal(t, 1, api.refreshCalls)
}

func TestRefreshFailureRedirectsAndKeepsOriginalError(t *testing.T) {
	api := &authAPI{refreshFails: true}
	var redirectedFrom string
	client, server := newTestClient(t, api, NavigatorFunc(func(from string) {
		redirectedFrom = from
	}))
	seedCookies(t, client, server, "stale", true)

	_, err := client.Me(context.Background())
	require.Error(t, err)

	apiErr, ok := err.(*APIError)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	// The caller sees its own request's failure, not the refresh's.
	assert.Equal(t, "Authentication credentials were not provided.", apiErr.Message)

	assert.Equal(t, mePath, redirectedFrom)
	assert.Equal(t, SessionUnauthenticated, client.Session().State())
	assert.Equal(t, 1, api.meCalls)
}

func TestFailedLoginDoesNotTriggerRefresh(t *testing.T) {
	api := &authAPI{}
	client, _ := newTestClient(t, api, nil)

	_, err := client.Login(context.Background(), "user@example.com", "wrong")
	require.Error(t, err)
	assert.True(t, IsUnauthorized(err))
	assert.Equal(t, 0, api.refreshCalls)
}

func TestLoginAuthenticatesSession(t *testing.T) {
	api := &authAPI{}
	client, _ := newTestClient(t, api, nil)

	res, err := client.Login(context.Background(), "user@example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, "Login successful.", res.Message)

	state, user := client.Session().Snapshot()
	assert.Equal(t, SessionAuthenticated, state)
	require.NotNil(t, user)
	assert.Equal(t, "user@example.com", user.Email)

	// The freshly issued cookies satisfy /me/ without a refresh.
	_, err = client.Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, api.refreshCalls)
}

func TestLogoutClearsSessionEvenWhenServerFails(t *testing.T) {
	api := &authAPI{}
	client, _ := newTestClient(t, api, nil)

	_, err := client.Login(context.Background(), "user@example.com", "password123")
	require.NoError(t, err)

	err = client.Logout(context.Background())
	require.Error(t, err)
	assert.Equal(t, SessionUnauthenticated, client.Session().State())
}

func TestResolveBootstrapsFromCookies(t *testing.T) {
	api := &authAPI{}
	client, server := newTestClient(t, api, nil)
	seedCookies(t, client, server, "fresh", false)

	state := client.Resolve(context.Background())
	assert.Equal(t, SessionAuthenticated, state)

	_, user := client.Session().Snapshot()
	require.NotNil(t, user)
	assert.Equal(t, "teacher", user.AccountType)
}

func TestResolveWithoutCookiesIsUnauthenticated(t *testing.T) {
	api := &authAPI{}
	client, _ := newTestClient(t, api, nil)

	state := client.Resolve(context.Background())
	assert.Equal(t, SessionUnauthenticated, state)
}

func TestConcurrentRequestsSurviveStaleToken(t *testing.T) {
	api := &authAPI{}
	client, server := newTestClient(t, api, nil)
	seedCookies(t, client, server, "stale", true)

	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = client.Me(context.Background())
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		assert.NoError(t, err)
	}
	assert.GreaterOrEqual(t, api.refreshCalls, 1)
}

func TestSingleflightSharesInFlightResult(t *testing.T) {
	var sf singleflight
	started := make(chan struct{})
	release := make(chan struct{})
	wantErr := errors.New("flight failed")

	go sf.Do(func() error {
		close(started)
		<-release
		return wantErr
	})
	<-started

	// Joins the in-flight call instead of starting its own.
	done := make(chan error, 1)
	go func() {
		done <- sf.Do(func() error { return nil })
	}()

	time.Sleep(50 * time.Millisecond)
	close(release)
	assert.Equal(t, wantErr, <-done)
}
