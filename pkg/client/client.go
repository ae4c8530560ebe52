// Package client talks to the council API the way the portals do: every
// request carries the stored bearer token, and a 401 or 403 answer clears it.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/aldoetobex/council-case-backend/internal/admin"
	"github.com/aldoetobex/council-case-backend/internal/auth"
	"github.com/aldoetobex/council-case-backend/internal/cases"
	"github.com/aldoetobex/council-case-backend/pkg/calendar"
	"github.com/aldoetobex/council-case-backend/pkg/models"
)

// APIError is a non-2xx answer. Fields carries per-field validation messages.
type APIError struct {
	Status  int
	Code    string
	Message string
	Fields  map[string][]string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api: %d %s", e.Status, http.StatusText(e.Status))
	}
	return fmt.Sprintf("api: %d %s", e.Status, e.Message)
}

// IsAuthError reports whether err is a 401 or 403 answer, after which the
// stored token has been cleared.
func IsAuthError(err error) bool {
	var ae *APIError
	return errors.As(err, &ae) && (ae.Status == http.StatusUnauthorized || ae.Status == http.StatusForbidden)
}

type Client struct {
	baseURL string
	http    *http.Client
	store   TokenStore
	log     *zap.Logger
}

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option { return func(c *Client) { c.http = h } }
func WithLogger(l *zap.Logger) Option      { return func(c *Client) { c.log = l } }

// New builds a client for baseURL, e.g. http://localhost:3000/api.
func New(baseURL string, store TokenStore, opts ...Option) *Client {
	if store == nil {
		store = &MemoryStore{}
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
		store:   store,
		log:     zap.NewNop(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Store exposes the token store.
func (c *Client) Store() TokenStore { return c.store }

func (c *Client) do(ctx context.Context, method, path string, q url.Values, in, out any) error {
	u := c.baseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if tok := c.store.Token(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	res, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode >= 300 {
		return c.fail(method, path, res)
	}
	if out == nil {
		return nil
	}
	if w, ok := out.(io.Writer); ok {
		_, err = io.Copy(w, res.Body)
		return err
	}
	return json.NewDecoder(res.Body).Decode(out)
}

func (c *Client) fail(method, path string, res *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	var payload struct {
		Message string              `json:"message"`
		Code    string              `json:"code"`
		Errors  map[string][]string `json:"errors"`
	}
	_ = json.Unmarshal(raw, &payload)
	apiErr := &APIError{Status: res.StatusCode, Code: payload.Code, Message: payload.Message, Fields: payload.Errors}
	if apiErr.Message == "" {
		apiErr.Message = strings.TrimSpace(string(raw))
	}

	if res.StatusCode == http.StatusUnauthorized || res.StatusCode == http.StatusForbidden {
		if err := c.store.Clear(); err != nil {
			c.log.Warn("token clear failed", zap.Error(err))
		}
	}
	c.log.Debug("api request failed",
		zap.String("method", method), zap.String("path", path), zap.Int("status", res.StatusCode))
	return apiErr
}

/* ================================= Auth ================================= */

// Login authenticates and stores the returned token.
func (c *Client) Login(ctx context.Context, email, password string) (*auth.AuthResponse, error) {
	var out auth.AuthResponse
	if err := c.do(ctx, http.MethodPost, "/login", nil, auth.LoginRequest{Email: email, Password: password}, &out); err != nil {
		return nil, err
	}
	if err := c.store.SetToken(out.Token); err != nil {
		return nil, err
	}
	return &out, nil
}

// Signup registers an end user and stores the returned token.
func (c *Client) Signup(ctx context.Context, in auth.SignupRequest) (*auth.AuthResponse, error) {
	var out auth.AuthResponse
	if err := c.do(ctx, http.MethodPost, "/signup", nil, in, &out); err != nil {
		return nil, err
	}
	if err := c.store.SetToken(out.Token); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Logout() error { return c.store.Clear() }

func (c *Client) Me(ctx context.Context) (*auth.UserProfile, error) {
	var out auth.UserProfile
	if err := c.do(ctx, http.MethodGet, "/me", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

/* ================================= Cases ================================ */

var collections = map[models.CaseKind]string{
	models.KindReconciliation: "/reconciliations",
	models.KindMarriage:       "/marriages",
	models.KindFatwa:          "/fatwas",
}

func collection(kind models.CaseKind) (string, error) {
	p, ok := collections[kind]
	if !ok {
		return "", fmt.Errorf("unknown case kind %q", kind)
	}
	return p, nil
}

// ListScope picks which listing endpoint a role reads.
type ListScope string

const (
	ScopeAll      ListScope = ""               // admin
	ScopeMine     ListScope = "my-cases"       // user
	ScopeAssigned ListScope = "my-assignments" // shaykh
)

type ListOptions struct {
	Scope    ListScope
	Status   models.CaseStatus
	Query    string
	Page     int
	PageSize int
}

func (o ListOptions) values() url.Values {
	q := url.Values{}
	if o.Status != "" {
		q.Set("status", string(o.Status))
	}
	if o.Query != "" {
		q.Set("q", o.Query)
	}
	if o.Page > 0 {
		q.Set("page", strconv.Itoa(o.Page))
	}
	if o.PageSize > 0 {
		q.Set("pageSize", strconv.Itoa(o.PageSize))
	}
	return q
}

func (c *Client) ListCases(ctx context.Context, kind models.CaseKind, opts ListOptions) (*models.Page[cases.CaseListItem], error) {
	base, err := collection(kind)
	if err != nil {
		return nil, err
	}
	if opts.Scope != ScopeAll {
		base += "/" + string(opts.Scope)
	}
	var out models.Page[cases.CaseListItem]
	if err := c.do(ctx, http.MethodGet, base, opts.values(), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateCase submits a case and returns its id and reference number.
func (c *Client) CreateCase(ctx context.Context, kind models.CaseKind, in cases.CreateCaseRequest) (id, ref string, err error) {
	base, err := collection(kind)
	if err != nil {
		return "", "", err
	}
	var out struct {
		ID          string `json:"id"`
		ReferenceNo string `json:"referenceNo"`
	}
	if err := c.do(ctx, http.MethodPost, base, nil, in, &out); err != nil {
		return "", "", err
	}
	return out.ID, out.ReferenceNo, nil
}

func (c *Client) GetCase(ctx context.Context, kind models.CaseKind, id string) (*cases.CaseDetail, error) {
	return c.caseCall(ctx, kind, http.MethodGet, "/"+url.PathEscape(id), nil)
}

func (c *Client) caseCall(ctx context.Context, kind models.CaseKind, method, path string, in any) (*cases.CaseDetail, error) {
	base, err := collection(kind)
	if err != nil {
		return nil, err
	}
	var out cases.CaseDetail
	if err := c.do(ctx, method, base+path, nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Assign(ctx context.Context, kind models.CaseKind, id, shaykhID string) (*cases.CaseDetail, error) {
	return c.caseCall(ctx, kind, http.MethodPut, "/assign/"+url.PathEscape(id), cases.AssignRequest{ShaykhID: shaykhID})
}

func (c *Client) Complete(ctx context.Context, kind models.CaseKind, id string, in cases.CompleteRequest) (*cases.CaseDetail, error) {
	return c.caseCall(ctx, kind, http.MethodPut, "/complete/"+url.PathEscape(id), in)
}

func (c *Client) Cancel(ctx context.Context, kind models.CaseKind, id, reason string) (*cases.CaseDetail, error) {
	return c.caseCall(ctx, kind, http.MethodPut, "/cancel/"+url.PathEscape(id), cases.CancelRequest{Reason: reason})
}

func (c *Client) AddMeeting(ctx context.Context, kind models.CaseKind, id string, in cases.MeetingRequest) (*cases.CaseDetail, error) {
	return c.caseCall(ctx, kind, http.MethodPost, "/meetings/"+url.PathEscape(id), in)
}

// Answer resolves a fatwa with its answer.
func (c *Client) Answer(ctx context.Context, id, answer string) (*cases.CaseDetail, error) {
	return c.caseCall(ctx, models.KindFatwa, http.MethodPut, "/answer/"+url.PathEscape(id), cases.CompleteRequest{Answer: answer})
}

// Notes writes the caller's notes: admin notes for admins, shaykh notes for shaykhs.
func (c *Client) Notes(ctx context.Context, kind models.CaseKind, id, notes string) (*cases.CaseDetail, error) {
	return c.caseCall(ctx, kind, http.MethodPut, "/notes/"+url.PathEscape(id), cases.NotesRequest{Notes: notes})
}

func (c *Client) Feedback(ctx context.Context, kind models.CaseKind, id string, in cases.FeedbackRequest) (*cases.CaseDetail, error) {
	return c.caseCall(ctx, kind, http.MethodPost, "/feedback/"+url.PathEscape(id), in)
}

// UpdateMeeting sends a partial update; nil fields stay as they are.
func (c *Client) UpdateMeeting(ctx context.Context, kind models.CaseKind, id, meetingID string, in cases.UpdateMeetingRequest) (*cases.CaseDetail, error) {
	return c.caseCall(ctx, kind, http.MethodPut, "/meetings/"+url.PathEscape(id)+"/"+url.PathEscape(meetingID), in)
}

// Meetings lists one kind's meetings with from <= date <= to.
func (c *Client) Meetings(ctx context.Context, kind models.CaseKind, from, to string) ([]calendar.SourceMeeting, error) {
	base, err := collection(kind)
	if err != nil {
		return nil, err
	}
	q := url.Values{}
	if from != "" {
		q.Set("from", from)
	}
	if to != "" {
		q.Set("to", to)
	}
	var out []calendar.SourceMeeting
	if err := c.do(ctx, http.MethodGet, base+"/meetings", q, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

/* ============================ Admin / schedule ========================== */

func (c *Client) Shaykhs(ctx context.Context) ([]admin.Shaykh, error) {
	var out []admin.Shaykh
	if err := c.do(ctx, http.MethodGet, "/admin/shaykhs", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateShaykh(ctx context.Context, in admin.CreateShaykhRequest) (*admin.Shaykh, error) {
	var out admin.Shaykh
	if err := c.do(ctx, http.MethodPost, "/admin/shaykhs", nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) SetShaykhActive(ctx context.Context, id string, active bool) (*admin.Shaykh, error) {
	var out admin.Shaykh
	if err := c.do(ctx, http.MethodPut, "/admin/shaykhs/"+url.PathEscape(id)+"/active", nil, admin.ActiveRequest{Active: &active}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Stats(ctx context.Context) (*admin.Stats, error) {
	var out admin.Stats
	if err := c.do(ctx, http.MethodGet, "/admin/stats", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func scheduleQuery(view calendar.View, date string) url.Values {
	q := url.Values{}
	if view != "" {
		q.Set("view", string(view))
	}
	if date != "" {
		q.Set("date", date)
	}
	return q
}

// Schedule reads the server-side aggregated calendar.
func (c *Client) Schedule(ctx context.Context, view calendar.View, date string) (*calendar.Schedule, error) {
	var out calendar.Schedule
	if err := c.do(ctx, http.MethodGet, "/schedule", scheduleQuery(view, date), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ExportSchedule streams the xlsx export into w.
func (c *Client) ExportSchedule(ctx context.Context, view calendar.View, date string, w io.Writer) error {
	return c.do(ctx, http.MethodGet, "/schedule/export", scheduleQuery(view, date), nil, w)
}
