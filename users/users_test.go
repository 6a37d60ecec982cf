package users_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jrsteele09/etokisana-client/token"
	"github.com/jrsteele09/etokisana-client/transport"
	"github.com/jrsteele09/etokisana-client/users"
	"github.com/stretchr/testify/require"
)

func TestHasRole(t *testing.T) {
	tests := []struct {
		role    string
		allowed string
		want    bool
	}{
		{"Admin", "Utilisateur,Admin", true},
		{"Admin", "Utilisateur, Admin", true},
		{"Utilisateur", "Admin", false},
		{"Moderateur", "", true},
		{"", "Admin", false},
		{"admin", "Admin", false},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, users.HasRole(tt.role, tt.allowed), "%s in %q", tt.role, tt.allowed)
	}

	require.True(t, users.AnyRole([]string{"Moderateur", "Admin"}, "Admin"))
	require.False(t, users.AnyRole(nil, "Admin"))
	require.True(t, users.AnyRole(nil, " "))
}

func TestProfile(t *testing.T) {
	var p users.Profile
	require.NoError(t, json.Unmarshal([]byte(`{"userId":"u-9","userName":"Rabe","userFirstname":"Hery","userEmail":"hery@example.com"}`), &p))
	require.Equal(t, "u-9", p.Identifier())
	require.Equal(t, "Hery Rabe", p.DisplayName())

	p.ID = "u-10"
	require.Equal(t, "u-10", p.Identifier())
}

func TestService(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /users", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "5", r.URL.Query().Get("limit"))
		_, _ = w.Write([]byte(`{"data":[{"id":"u-1","userEmail":"a@example.com"}],"total":1}`))
	})
	mux.HandleFunc("PATCH /users/activate/{id}", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":"` + r.PathValue("id") + `","userValidated":true}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	tokens, err := token.NewStore(srv.URL)
	require.NoError(t, err)
	client, err := transport.New(srv.URL, tokens)
	require.NoError(t, err)
	svc := users.NewService(client)

	page, err := svc.List(context.Background(), transport.ListParams{Limit: 5})
	require.NoError(t, err)
	require.Equal(t, 1, page.Total)
	require.Equal(t, "a@example.com", page.Data[0].Email)

	p, err := svc.Activate(context.Background(), "u-1")
	require.NoError(t, err)
	require.True(t, p.Validated)
	require.Equal(t, "u-1", p.Identifier())
}
