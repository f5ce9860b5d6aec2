package utils

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func TestTokenStore_RoundTrip(t *testing.T) {
	store := &TokenStore{Dir: filepath.Join(t.TempDir(), "tokens")}

	tok, err := store.Load("test")
	require.NoError(t, err)
	assert.Nil(t, tok, "no token saved yet")

	want := &oauth2.Token{AccessToken: "abc", RefreshToken: "def", Expiry: time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)}
	require.NoError(t, store.Save("test", want))

	info, err := os.Stat(filepath.Join(store.Dir, "token-test.json"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(tokenFilePerms), info.Mode().Perm())

	got, err := store.Load("test")
	require.NoError(t, err)
	assert.Equal(t, want.AccessToken, got.AccessToken)
	assert.Equal(t, want.RefreshToken, got.RefreshToken)
	assert.True(t, want.Expiry.Equal(got.Expiry))

	require.NoError(t, store.Delete("test"))
	require.NoError(t, store.Delete("test"), "deleting a missing token is not an error")
	got, err = store.Load("test")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestTokenStore_CorruptFile(t *testing.T) {
	store := &TokenStore{Dir: t.TempDir()}
	require.NoError(t, os.WriteFile(filepath.Join(store.Dir, "token-prod.json"), []byte("{"), 0600))

	_, err := store.Load("prod")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse token file")
}

func TestMissingScopes(t *testing.T) {
	assert.Empty(t, MissingScopes([]string{ScopeGmailSend, "openid", ScopeSheets}))
	assert.Equal(t, []string{ScopeGmailSend}, MissingScopes([]string{ScopeSheets}))
	assert.Equal(t, RequiredScopes, MissingScopes(nil))
}

func tokenInfoServer(t *testing.T, scopes ...string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("access_token") == "" {
			http.Error(w, "missing token", http.StatusBadRequest)
			return
		}
		fmt.Fprintf(w, `{"scope": %q}`, strings.Join(scopes, " "))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestAuthenticator_ReusesStoredToken(t *testing.T) {
	srv := tokenInfoServer(t, ScopeSheets, ScopeGmailSend)
	store := &TokenStore{Dir: t.TempDir()}
	stored := &oauth2.Token{AccessToken: "stored", Expiry: time.Now().Add(time.Hour)}
	require.NoError(t, store.Save("test", stored))

	a := &Authenticator{OAuth: &oauth2.Config{}, Store: store, Env: "test", TokenInfoURL: srv.URL}

	tok, err := a.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "stored", tok.AccessToken)
}

func TestAuthenticator_DeletesTokenMissingScopes(t *testing.T) {
	srv := tokenInfoServer(t, ScopeSheets)
	store := &TokenStore{Dir: t.TempDir()}
	require.NoError(t, store.Save("test", &oauth2.Token{AccessToken: "narrow", Expiry: time.Now().Add(time.Hour)}))

	a := &Authenticator{OAuth: &oauth2.Config{}, Store: store, Env: "test", TokenInfoURL: srv.URL}

	assert.Nil(t, a.reuseStored(context.Background()))
	tok, err := store.Load("test")
	require.NoError(t, err)
	assert.Nil(t, tok, "rejected token is removed from disk")
}
