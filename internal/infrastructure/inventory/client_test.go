package inventory

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeductArtwork(t *testing.T) {
	var gotPath string
	var gotBody map[string]int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	err := NewClient(srv.URL, srv.Client()).DeductArtwork(context.Background(), "a-1", 2)
	require.NoError(t, err)

	assert.Equal(t, "/artwork/a-1/inventory", gotPath)
	assert.Equal(t, map[string]int64{"deduct": 2}, gotBody)
}

func TestDeductEditionSet(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	err := NewClient(srv.URL, srv.Client()).DeductEditionSet(context.Background(), "a-1", "es-1", 1)
	require.NoError(t, err)
	assert.Equal(t, "/artwork/a-1/edition_set/es-1/inventory", gotPath)
}

func TestUndeductArtwork(t *testing.T) {
	var gotBody map[string]int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	err := NewClient(srv.URL, srv.Client()).UndeductArtwork(context.Background(), "a-1", 3)
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"undeduct": 3}, gotBody)
}

func TestDeductFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	err := NewClient(srv.URL, srv.Client()).DeductArtwork(context.Background(), "a-1", 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status 422")
}
