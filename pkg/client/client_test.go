package client

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/aldoetobex/council-case-backend/config"
	"github.com/aldoetobex/council-case-backend/internal/admin"
	"github.com/aldoetobex/council-case-backend/internal/auth"
	"github.com/aldoetobex/council-case-backend/internal/cases"
	"github.com/aldoetobex/council-case-backend/internal/server"
	"github.com/aldoetobex/council-case-backend/internal/testutil"
	"github.com/aldoetobex/council-case-backend/pkg/calendar"
	"github.com/aldoetobex/council-case-backend/pkg/models"
)

const password = "secret123"

func seedAccount(t *testing.T, db *gorm.DB, role models.Role, email, name string) models.User {
	t.Helper()
	hash, err := auth.HashPassword(password)
	require.NoError(t, err)
	u := models.User{Email: email, PasswordHash: hash, Role: role, Name: name, Active: true}
	require.NoError(t, db.Create(&u).Error)
	return u
}

type env struct {
	url    string
	db     *gorm.DB
	shaykh models.User
}

func newEnv(t *testing.T) *env {
	t.Helper()
	db := testutil.OpenTestDB(t)
	seedAccount(t, db, models.RoleAdmin, "admin@council.test", "Council Admin")
	shaykh := seedAccount(t, db, models.RoleShaykh, "yusuf@council.test", "Shaykh Yusuf")
	seedAccount(t, db, models.RoleUser, "aisha@council.test", "Aisha")

	app := server.New(db, &config.Config{AllowedOrigins: []string{"*"}, Timezone: "UTC"})
	srv := httptest.NewServer(adaptor.FiberApp(app))
	t.Cleanup(srv.Close)
	return &env{url: srv.URL + "/api", db: db, shaykh: shaykh}
}

func (e *env) login(t *testing.T, email string) *Client {
	t.Helper()
	c := New(e.url, &MemoryStore{})
	_, err := c.Login(context.Background(), email, password)
	require.NoError(t, err)
	return c
}

func TestLoginStoresToken(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	c := New(e.url, &MemoryStore{})
	_, err := c.Me(ctx)
	require.Error(t, err)
	assert.True(t, IsAuthError(err))

	res, err := c.Login(ctx, "aisha@council.test", password)
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, res.Role)
	assert.Equal(t, res.Token, c.Store().Token())

	me, err := c.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Aisha", me.Name)

	require.NoError(t, c.Logout())
	assert.Empty(t, c.Store().Token())
}

func TestForbiddenClearsToken(t *testing.T) {
	e := newEnv(t)
	user := e.login(t, "aisha@council.test")
	require.NotEmpty(t, user.Store().Token())

	_, err := user.Shaykhs(context.Background())
	require.Error(t, err)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusForbidden, apiErr.Status)
	assert.Equal(t, "FORBIDDEN", apiErr.Code)
	assert.Empty(t, user.Store().Token())

	// subsequent calls go out without a token
	_, err = user.Me(context.Background())
	var again *APIError
	require.ErrorAs(t, err, &again)
	assert.Equal(t, http.StatusUnauthorized, again.Status)
}

func TestValidationErrorKeepsToken(t *testing.T) {
	e := newEnv(t)
	user := e.login(t, "aisha@council.test")
	ctx := context.Background()

	_, _, err := user.CreateCase(ctx, models.KindReconciliation, cases.CreateCaseRequest{})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Contains(t, apiErr.Fields, "issueDescription")
	assert.NotEmpty(t, user.Store().Token())
}

func TestWorkflowAndSchedules(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	user := e.login(t, "aisha@council.test")
	adm := e.login(t, "admin@council.test")
	shaykh := e.login(t, "yusuf@council.test")

	id, ref, err := user.CreateCase(ctx, models.KindMarriage, cases.CreateCaseRequest{
		Parties: []cases.PartyInput{
			{Role: models.PartyGroom, Name: "Yusuf"},
			{Role: models.PartyBride, Name: "Amina"},
		},
		PreferredDate: "2030-05-01",
	})
	require.NoError(t, err)
	assert.Contains(t, ref, "MAR-")

	page, err := adm.ListCases(ctx, models.KindMarriage, ListOptions{Status: models.CasePending})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)

	d, err := adm.Assign(ctx, models.KindMarriage, id, e.shaykh.ID.String())
	require.NoError(t, err)
	assert.Equal(t, models.CaseAssigned, d.Status)

	d, err = shaykh.AddMeeting(ctx, models.KindMarriage, id, cases.MeetingRequest{Date: "2030-05-01"})
	require.NoError(t, err)
	assert.Equal(t, models.CaseInProgress, d.Status)
	require.Len(t, d.Upcoming, 1)

	mine, err := shaykh.ListCases(ctx, models.KindMarriage, ListOptions{Scope: ScopeAssigned})
	require.NoError(t, err)
	assert.EqualValues(t, 1, mine.Total)

	feed, err := shaykh.Meetings(ctx, models.KindMarriage, "2030-05-01", "2030-05-31")
	require.NoError(t, err)
	require.Len(t, feed, 1)
	assert.Equal(t, "Yusuf", feed[0].PartyA)

	anchor := time.Date(2030, 5, 1, 0, 0, 0, 0, time.UTC)
	local := adm.LocalSchedule(ctx, calendar.ViewMonth, anchor, time.UTC)
	remote, err := adm.Schedule(ctx, calendar.ViewMonth, "2030-05-01")
	require.NoError(t, err)
	assert.Equal(t, remote.Total, local.Total)
	assert.Equal(t, 1, local.Total)
	require.Len(t, local.Days["2030-05-01"], 1)
	assert.Equal(t, "09:00", local.Days["2030-05-01"][0].Time)
	assert.Equal(t, remote.Days["2030-05-01"][0].Title, local.Days["2030-05-01"][0].Title)

	var xlsx bytes.Buffer
	require.NoError(t, adm.ExportSchedule(ctx, calendar.ViewMonth, "2030-05-01", &xlsx))
	assert.Greater(t, xlsx.Len(), 0)

	_, err = user.Cancel(ctx, models.KindMarriage, id, "")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Contains(t, apiErr.Fields, "reason")

	d, err = user.Cancel(ctx, models.KindMarriage, id, "Postponed by the families")
	require.NoError(t, err)
	assert.Equal(t, models.CaseCancelled, d.Status)
}

func TestSignupAndStaffActions(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	adm := e.login(t, "admin@council.test")

	user := New(e.url, &MemoryStore{})
	res, err := user.Signup(ctx, auth.SignupRequest{Name: "Zainab", Email: "zainab@council.test", Password: password})
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, res.Role)
	assert.Equal(t, res.Token, user.Store().Token())

	id, _, err := user.CreateCase(ctx, models.KindReconciliation, cases.CreateCaseRequest{
		Parties: []cases.PartyInput{
			{Role: models.PartyHusband, Name: "Omar"},
			{Role: models.PartyWife, Name: "Zainab"},
		},
		IssueDescription: "Disagreement about finances",
	})
	require.NoError(t, err)

	idris, err := adm.CreateShaykh(ctx, admin.CreateShaykhRequest{Name: "Shaykh Idris", Email: "idris@council.test", Password: password})
	require.NoError(t, err)
	assert.True(t, idris.Active)
	_, err = adm.Assign(ctx, models.KindReconciliation, id, idris.ID.String())
	require.NoError(t, err)

	shaykh := e.login(t, "idris@council.test")
	d, err := shaykh.AddMeeting(ctx, models.KindReconciliation, id, cases.MeetingRequest{Date: "2030-05-02", Time: "11:00"})
	require.NoError(t, err)
	require.Len(t, d.Upcoming, 1)

	hall := "Community hall"
	d, err = shaykh.UpdateMeeting(ctx, models.KindReconciliation, id, d.Upcoming[0].ID.String(), cases.UpdateMeetingRequest{Location: &hall})
	require.NoError(t, err)
	require.Len(t, d.Upcoming, 1)
	assert.Equal(t, hall, d.Upcoming[0].Location)
	assert.Equal(t, "11:00", d.Upcoming[0].Time)
	assert.Equal(t, models.MeetingScheduled, d.Upcoming[0].Status)

	d, err = shaykh.Notes(ctx, models.KindReconciliation, id, "Both parties attended")
	require.NoError(t, err)
	assert.Equal(t, "Both parties attended", d.ShaykhNotes)

	d, err = user.Feedback(ctx, models.KindReconciliation, id, cases.FeedbackRequest{Comment: "Very patient mediation", Rating: 5})
	require.NoError(t, err)
	require.Len(t, d.Feedback, 1)
	assert.Equal(t, "Zainab", d.Feedback[0].UserName)

	off, err := adm.SetShaykhActive(ctx, idris.ID.String(), false)
	require.NoError(t, err)
	assert.False(t, off.Active)

	_, err = shaykh.Notes(ctx, models.KindReconciliation, id, "one more")
	require.Error(t, err)
	assert.True(t, IsAuthError(err))
	assert.Empty(t, shaykh.Store().Token())

	_, err = adm.SetShaykhActive(ctx, idris.ID.String(), true)
	require.NoError(t, err)
	_, err = user.Signup(ctx, auth.SignupRequest{Name: "Zainab", Email: "zainab@council.test", Password: password})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusConflict, apiErr.Status)
}

func TestAnswerFatwa(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	user := e.login(t, "aisha@council.test")
	adm := e.login(t, "admin@council.test")
	shaykh := e.login(t, "yusuf@council.test")

	id, ref, err := user.CreateCase(ctx, models.KindFatwa, cases.CreateCaseRequest{Question: "May prayers be combined while travelling?"})
	require.NoError(t, err)
	assert.Contains(t, ref, "FTW-")
	_, err = adm.Assign(ctx, models.KindFatwa, id, e.shaykh.ID.String())
	require.NoError(t, err)

	_, err = shaykh.Answer(ctx, id, "")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Contains(t, apiErr.Fields, "answer")

	d, err := shaykh.Answer(ctx, id, "Yes, within the known conditions.")
	require.NoError(t, err)
	assert.Equal(t, models.CaseResolved, d.Status)
	assert.Equal(t, "Yes, within the known conditions.", d.Answer)
}

func TestLocalScheduleIsolatesFailingFeed(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/marriages/meetings", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":true,"message":"boom"}`, http.StatusInternalServerError)
	})
	mux.HandleFunc("/api/reconciliations/meetings", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.Equal(t, "2024-06-09", r.URL.Query().Get("from"))
		assert.Equal(t, "2024-06-15", r.URL.Query().Get("to"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id":"6a1f0c7e-1111-4c3b-9d52-3a7f5c2b9e10","caseId":"0b7e2c1a-2222-4f8e-8b3a-7d1c9e5f4a20",` +
			`"date":"2024-06-11","time":"","partyA":"Omar","partyB":"Fatima","status":"scheduled"}]`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	store := &MemoryStore{}
	require.NoError(t, store.SetToken("tok"))
	c := New(srv.URL+"/api", store)

	s := c.LocalSchedule(context.Background(), calendar.ViewWeek, time.Date(2024, 6, 12, 0, 0, 0, 0, time.UTC), nil)
	assert.Equal(t, []string{"marriage meetings unavailable"}, s.Warnings)
	require.Equal(t, 1, s.Total)
	ev := s.Days["2024-06-11"][0]
	assert.Equal(t, "10:00", ev.Time)
	assert.Equal(t, "Reconciliation: Omar & Fatima", ev.Title)
	require.NotNil(t, ev.Layout)
	assert.Equal(t, 120, ev.Layout.Top)
	assert.Equal(t, "tok", store.Token(), "a 500 keeps the token")
}

func TestFileStore(t *testing.T) {
	s := NewFileStore(filepath.Join(t.TempDir(), "nested", "token"))
	assert.Empty(t, s.Token())

	require.NoError(t, s.SetToken("abc"))
	assert.Equal(t, "abc", s.Token())

	require.NoError(t, s.Clear())
	assert.Empty(t, s.Token())
	require.NoError(t, s.Clear(), "clearing twice is fine")
}
