// Package iogbif implements authority.Matcher with the GBIF species API.
// Only accepted names of the GBIF backbone are returned.
// This is an impure I/O package.
package iogbif

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gnames/sp7tree/pkg/authority"
	"github.com/gnames/sp7tree/pkg/config"
	"github.com/google/uuid"
)

const (
	searchLimit    = 999
	statusAccepted = "ACCEPTED"
	backbonePrefix = "gbif:"
)

type gbifio struct {
	base *url.URL
	hc   *http.Client
}

// usage is a name usage of GBIF search and detail responses.
type usage struct {
	Key             int    `json:"key"`
	NubKey          int    `json:"nubKey"`
	TaxonID         string `json:"taxonID"`
	ScientificName  string `json:"scientificName"`
	Authorship      string `json:"authorship"`
	Rank            string `json:"rank"`
	TaxonomicStatus string `json:"taxonomicStatus"`
	Kingdom         string `json:"kingdom"`
	Class           string `json:"class"`
	Order           string `json:"order"`
	Family          string `json:"family"`
	Genus           string `json:"genus"`
	Species         string `json:"species"`
}

type searchResponse struct {
	Results []usage `json:"results"`
}

// New creates a GBIF Matcher.
func New(cfg *config.Config) (authority.Matcher, error) {
	base, err := url.Parse(cfg.Authority.BaseURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, RequestError(cfg.Authority.BaseURL,
			fmt.Errorf("invalid base url %q", cfg.Authority.BaseURL))
	}
	return &gbifio{
		base: base,
		hc: &http.Client{
			Timeout: time.Duration(cfg.Authority.TimeoutSec) * time.Second,
		},
	}, nil
}

// MatchName searches names in a kingdom and returns details of accepted
// backbone usages. The collection id is not used by GBIF.
func (g *gbifio) MatchName(
	ctx context.Context,
	kind, name string,
	_ int,
	groupHint string,
) ([]authority.Match, error) {
	q := url.Values{}
	q.Set("kingdom", groupHint)
	q.Set("name", name)
	q.Set("limit", strconv.Itoa(searchLimit))

	var sr searchResponse
	if err := g.getJSON(ctx, kind+"/", q, &sr); err != nil {
		return nil, err
	}

	var res []authority.Match
	for _, u := range sr.Results {
		if u.TaxonomicStatus != statusAccepted ||
			!strings.Contains(u.TaxonID, backbonePrefix) {
			continue
		}
		var d usage
		if err := g.getJSON(ctx, fmt.Sprintf("%s/%d/", kind, u.Key), nil, &d); err != nil {
			return nil, err
		}
		res = append(res, toMatch(d))
	}
	slog.Debug("GBIF match", "name", name, "kingdom", groupHint,
		"results", len(sr.Results), "accepted", len(res))
	return res, nil
}

func toMatch(u usage) authority.Match {
	key := u.NubKey
	if key == 0 {
		key = u.Key
	}
	return authority.Match{
		Key:            strconv.Itoa(key),
		ScientificName: u.ScientificName,
		Authorship:     strings.TrimSpace(u.Authorship),
		Rank:           u.Rank,
		Status:         u.TaxonomicStatus,
		Kingdom:        u.Kingdom,
		Class:          u.Class,
		Order:          u.Order,
		Family:         u.Family,
		Genus:          u.Genus,
		Species:        u.Species,
	}
}

func (g *gbifio) getJSON(
	ctx context.Context,
	path string,
	q url.Values,
	out any,
) error {
	u := g.base.JoinPath(path)
	if strings.HasSuffix(path, "/") && !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	if q != nil {
		u.RawQuery = q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return RequestError(u.String(), err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())

	resp, err := g.hc.Do(req)
	if err != nil {
		return RequestError(u.String(), err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return RequestError(u.String(),
			fmt.Errorf("unexpected status %d", resp.StatusCode))
	}
	if err = json.NewDecoder(resp.Body).Decode(out); err != nil {
		return RequestError(u.String(), err)
	}
	return nil
}
