// Package iospecify implements specify.Service over the Specify 7 REST
// API. A session keeps cookies in a jar and sends the anti-forgery token
// with every call.
// This is an impure I/O package.
package iospecify

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gnames/sp7tree/pkg/config"
	"github.com/gnames/sp7tree/pkg/specify"
	"github.com/google/uuid"
)

const (
	csrfCookie  = "csrftoken"
	loginPath   = "context/login/"
	userPath    = "context/user.json"
	objectsPath = "api/specify/"
	treePath    = "api/specify_tree/"
)

// specifyio implements specify.Service.
type specifyio struct {
	cfg   config.SpecifyConfig
	base  *url.URL
	jar   *cookiejar.Jar
	hc    *http.Client
	merge *http.Client
	token string
}

// New creates a Specify API client. Call Login before any write.
func New(cfg *config.Config) (specify.Service, error) {
	base, err := url.Parse(cfg.Specify.BaseURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, RequestError("PARSE", cfg.Specify.BaseURL,
			fmt.Errorf("invalid base url %q", cfg.Specify.BaseURL))
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}

	tr := http.DefaultTransport.(*http.Transport).Clone()
	if !config.Bool(cfg.Specify.VerifyTLS) {
		tr.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}

	return &specifyio{
		cfg:  cfg.Specify,
		base: base,
		jar:  jar,
		hc: &http.Client{
			Jar:       jar,
			Transport: tr,
			Timeout:   time.Duration(cfg.Specify.TimeoutSec) * time.Second,
		},
		merge: &http.Client{
			Jar:       jar,
			Transport: tr,
			Timeout:   time.Duration(cfg.Specify.MergeTimeoutSec) * time.Second,
		},
	}, nil
}

// Connect creates a client, finds the collection and logs in. It returns
// the id of the collection of the session.
func Connect(ctx context.Context, cfg *config.Config) (specify.Service, int, error) {
	if err := cfg.ValidateSpecify(); err != nil {
		return nil, 0, err
	}
	s, err := New(cfg)
	if err != nil {
		return nil, 0, err
	}

	collID := cfg.Specify.CollectionID
	if collID == 0 {
		colls, err := s.Collections(ctx)
		if err != nil {
			return nil, 0, err
		}
		var ok bool
		if collID, ok = colls[cfg.Specify.Collection]; !ok {
			return nil, 0, CollectionNotFoundError(cfg.Specify.Collection, colls)
		}
	}

	if _, err = s.Login(ctx, cfg.Specify.Username, cfg.Specify.Password, collID); err != nil {
		return nil, 0, err
	}
	return s, collID, nil
}

func (s *specifyio) Collections(ctx context.Context) (map[string]int, error) {
	var res struct {
		Collections map[string]int `json:"collections"`
	}
	_, err := s.doJSON(ctx, s.hc, http.MethodGet, loginPath, nil, nil, &res)
	if err != nil {
		return nil, err
	}
	return res.Collections, nil
}

func (s *specifyio) Login(
	ctx context.Context,
	username, password string,
	collectionID int,
) (string, error) {
	// the first call only sets the csrftoken cookie
	if _, err := s.doJSON(ctx, s.hc, http.MethodGet, loginPath, nil, nil, nil); err != nil {
		return "", err
	}
	s.token = s.cookie(csrfCookie)

	body := map[string]any{
		"username":   username,
		"password":   password,
		"collection": collectionID,
	}
	st, err := s.doJSON(ctx, s.hc, http.MethodPut, loginPath, nil, body, nil)
	if err != nil {
		return "", LoginError(username, collectionID, st, err)
	}
	// a new token is issued after login
	s.token = s.cookie(csrfCookie)

	st, err = s.doJSON(ctx, s.hc, http.MethodGet, userPath, nil, nil, nil)
	if err != nil {
		s.token = ""
		return "", LoginError(username, collectionID, st, err)
	}
	slog.Info("Logged in to Specify", "url", s.base.String(),
		"user", username, "collection_id", collectionID)
	return s.token, nil
}

func (s *specifyio) Logout(ctx context.Context) error {
	if s.token == "" {
		return nil
	}
	body := map[string]any{"username": nil, "password": nil, "collection": nil}
	_, err := s.doJSON(ctx, s.hc, http.MethodPut, loginPath, nil, body, nil)
	s.token = ""
	return err
}

func (s *specifyio) GetObject(
	ctx context.Context,
	kind string,
	id int,
) (specify.Object, error) {
	var res specify.Object
	st, err := s.doJSON(ctx, s.hc, http.MethodGet, objectPath(kind, id), nil, nil, &res)
	if st == http.StatusNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (s *specifyio) GetObjects(
	ctx context.Context,
	kind string,
	q specify.Query,
) ([]specify.Object, error) {
	vals := url.Values{}
	vals.Set("limit", strconv.Itoa(q.Limit))
	vals.Set("offset", strconv.Itoa(q.Offset))
	for k, v := range q.Filters {
		vals.Set(k, v)
	}
	if q.OrderBy != "" {
		vals.Set("orderby", q.OrderBy)
	}

	var res struct {
		Objects []specify.Object `json:"objects"`
	}
	_, err := s.doJSON(ctx, s.hc, http.MethodGet, objectsPath+kind+"/", vals, nil, &res)
	if err != nil {
		return nil, err
	}
	return res.Objects, nil
}

func (s *specifyio) CreateObject(
	ctx context.Context,
	kind string,
	obj specify.Object,
) (specify.Object, error) {
	if err := s.loggedIn(); err != nil {
		return nil, err
	}
	var res specify.Object
	_, err := s.doJSON(ctx, s.hc, http.MethodPost, objectsPath+kind+"/", nil, obj, &res)
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (s *specifyio) UpdateObject(
	ctx context.Context,
	kind string,
	id int,
	obj specify.Object,
) (specify.Object, error) {
	if err := s.loggedIn(); err != nil {
		return nil, err
	}
	var res specify.Object
	_, err := s.doJSON(ctx, s.hc, http.MethodPut, objectPath(kind, id), nil, obj, &res)
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (s *specifyio) DeleteObject(ctx context.Context, kind string, id int) error {
	if err := s.loggedIn(); err != nil {
		return err
	}
	_, err := s.doJSON(ctx, s.hc, http.MethodDelete, objectPath(kind, id), nil, nil, nil)
	return err
}

func (s *specifyio) MergeNodes(
	ctx context.Context,
	treeKind string,
	sourceID, targetID int,
) (int, error) {
	return s.treeAction(ctx, treeKind, "merge", sourceID, targetID)
}

func (s *specifyio) MoveNode(
	ctx context.Context,
	treeKind string,
	nodeID, parentID int,
) (int, error) {
	return s.treeAction(ctx, treeKind, "move", nodeID, parentID)
}

// treeAction posts a form with the target id and returns the status of
// the response. Non-2xx statuses are not errors, callers decide what they
// mean.
func (s *specifyio) treeAction(
	ctx context.Context,
	treeKind, action string,
	id, targetID int,
) (int, error) {
	if err := s.loggedIn(); err != nil {
		return 0, err
	}
	path := fmt.Sprintf("%s%s/%d/%s/", treePath, treeKind, id, action)
	form := url.Values{"target": {strconv.Itoa(targetID)}}.Encode()

	resp, err := s.send(ctx, s.merge, http.MethodPost, path, nil,
		[]byte(form), "application/x-www-form-urlencoded")
	if err != nil {
		return 0, err
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, resp.Body)

	slog.Debug("Tree action", "action", action, "id", id, "target", targetID,
		"status", resp.StatusCode)
	return resp.StatusCode, nil
}

// doJSON sends a JSON request and decodes a JSON response into out. It
// returns the status of the response, also on errors.
func (s *specifyio) doJSON(
	ctx context.Context,
	hc *http.Client,
	method, path string,
	query url.Values,
	reqBody any,
	out any,
) (int, error) {
	var body []byte
	var contentType string
	if reqBody != nil {
		var err error
		if body, err = json.Marshal(reqBody); err != nil {
			return 0, DecodeError(method, path, err)
		}
		contentType = "application/json"
	}

	resp, err := s.send(ctx, hc, method, path, query, body, contentType)
	if err != nil {
		return 0, err
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, RequestError(method, path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp.StatusCode, StatusError(method, path, resp.StatusCode, respBody)
	}
	if out == nil || len(bytes.TrimSpace(respBody)) == 0 {
		return resp.StatusCode, nil
	}

	dec := json.NewDecoder(bytes.NewReader(respBody))
	dec.UseNumber()
	if err = dec.Decode(out); err != nil {
		return resp.StatusCode, DecodeError(method, path, err)
	}
	return resp.StatusCode, nil
}

// send builds and sends a request, retrying on 429 and 5xx statuses.
func (s *specifyio) send(
	ctx context.Context,
	hc *http.Client,
	method, path string,
	query url.Values,
	body []byte,
	contentType string,
) (*http.Response, error) {
	u := s.base.JoinPath(path)
	if strings.HasSuffix(path, "/") && !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	if query != nil {
		u.RawQuery = query.Encode()
	}

	newReq := func() (*http.Request, error) {
		var rd io.Reader
		if body != nil {
			rd = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, u.String(), rd)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		if contentType != "" {
			req.Header.Set("Content-Type", contentType)
		}
		if s.token != "" {
			req.Header.Set("X-CSRFToken", s.token)
		}
		req.Header.Set("Referer", s.base.String())
		req.Header.Set("X-Request-ID", uuid.NewString())
		return req, nil
	}

	resp, err := doWithRetry(ctx, hc, newReq, s.cfg.Retries)
	if err != nil {
		return nil, RequestError(method, u.Path, err)
	}
	return resp, nil
}

func (s *specifyio) cookie(name string) string {
	for _, c := range s.jar.Cookies(s.base) {
		if c.Name == name {
			return c.Value
		}
	}
	return ""
}

func (s *specifyio) loggedIn() error {
	if s.token == "" {
		return NotLoggedInError()
	}
	return nil
}

func objectPath(kind string, id int) string {
	return fmt.Sprintf("%s%s/%d/", objectsPath, kind, id)
}
