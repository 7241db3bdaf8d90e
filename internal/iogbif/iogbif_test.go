package iogbif_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gnames/gn"
	"github.com/gnames/sp7tree/internal/iogbif"
	"github.com/gnames/sp7tree/pkg/config"
	"github.com/gnames/sp7tree/pkg/errcode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gbifServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/species/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/v1/species/":
			assert.Equal(t, "Plantae", r.URL.Query().Get("kingdom"))
			assert.Equal(t, "999", r.URL.Query().Get("limit"))
			var results []map[string]any
			if r.URL.Query().Get("name") == "Draba incana" {
				results = []map[string]any{
					{"key": 3052629, "taxonomicStatus": "ACCEPTED", "taxonID": "gbif:3052629"},
					{"key": 7000001, "taxonomicStatus": "SYNONYM", "taxonID": "gbif:7000001"},
					{"key": 8000001, "taxonomicStatus": "ACCEPTED", "taxonID": "ipni:12345-1"},
				}
			}
			_ = json.NewEncoder(w).Encode(map[string]any{"results": results})
		case "/v1/species/3052629/":
			_ = json.NewEncoder(w).Encode(map[string]any{
				"key":             3052629,
				"nubKey":          3052629,
				"scientificName":  "Draba incana L.",
				"authorship":      "L. ",
				"rank":            "SPECIES",
				"taxonomicStatus": "ACCEPTED",
				"kingdom":         "Plantae",
				"family":          "Brassicaceae",
				"genus":           "Draba",
				"species":         "Draba incana",
			})
		default:
			http.NotFound(w, r)
		}
	})
	mux.HandleFunc("/broken/species/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return ts
}

func TestMatchName(t *testing.T) {
	ts := gbifServer(t)
	cfg := config.New()
	cfg.Update([]config.Option{config.OptAuthorityBaseURL(ts.URL + "/v1/")})
	m, err := iogbif.New(cfg)
	require.NoError(t, err)

	ms, err := m.MatchName(context.Background(), "species", "Draba incana", 4, "Plantae")
	require.NoError(t, err)
	require.Len(t, ms, 1)
	assert.Equal(t, "3052629", ms[0].Key)
	assert.Equal(t, "L.", ms[0].Authorship)
	assert.Equal(t, "Draba", ms[0].ParentName())

	ms, err = m.MatchName(context.Background(), "species", "Nonexistus", 4, "Plantae")
	require.NoError(t, err)
	assert.Empty(t, ms)
}

func TestMatchNameError(t *testing.T) {
	ts := gbifServer(t)
	cfg := config.New()
	cfg.Update([]config.Option{config.OptAuthorityBaseURL(ts.URL + "/broken/")})
	m, err := iogbif.New(cfg)
	require.NoError(t, err)

	_, err = m.MatchName(context.Background(), "species", "Draba", 4, "Plantae")
	require.Error(t, err)
	gnErr, ok := err.(*gn.Error)
	require.True(t, ok)
	assert.Equal(t, errcode.AuthorityRequestError, gnErr.Code)
}
