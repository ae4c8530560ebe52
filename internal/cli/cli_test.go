package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/aldoetobex/council-case-backend/config"
	"github.com/aldoetobex/council-case-backend/internal/auth"
	"github.com/aldoetobex/council-case-backend/internal/cases"
	"github.com/aldoetobex/council-case-backend/internal/server"
	"github.com/aldoetobex/council-case-backend/internal/testutil"
	"github.com/aldoetobex/council-case-backend/pkg/calendar"
	"github.com/aldoetobex/council-case-backend/pkg/client"
	"github.com/aldoetobex/council-case-backend/pkg/models"
)

const password = "secret123"

type env struct {
	url    string
	dir    string
	shaykh models.User
}

func seed(t *testing.T, db *gorm.DB, role models.Role, email, name string) models.User {
	t.Helper()
	hash, err := auth.HashPassword(password)
	require.NoError(t, err)
	u := models.User{Email: email, PasswordHash: hash, Role: role, Name: name, Active: true}
	require.NoError(t, db.Create(&u).Error)
	return u
}

func newEnv(t *testing.T) *env {
	t.Helper()
	db := testutil.OpenTestDB(t)
	seed(t, db, models.RoleAdmin, "admin@council.test", "Council Admin")
	shaykh := seed(t, db, models.RoleShaykh, "yusuf@council.test", "Shaykh Yusuf")
	seed(t, db, models.RoleUser, "aisha@council.test", "Aisha")

	srv := httptest.NewServer(adaptor.FiberApp(server.New(db, &config.Config{AllowedOrigins: []string{"*"}, Timezone: "UTC"})))
	t.Cleanup(srv.Close)
	return &env{url: srv.URL + "/api", dir: t.TempDir(), shaykh: shaykh}
}

func (e *env) tokenFile(who string) string { return filepath.Join(e.dir, who+".token") }

// run executes councilctl as who, sharing who's token file across calls.
func (e *env) run(t *testing.T, who string, args ...string) (string, string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--server", e.url, "--token-file", e.tokenFile(who), "--tz", "UTC"}, args...))
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func (e *env) mustRun(t *testing.T, who string, args ...string) string {
	t.Helper()
	out, stderr, err := e.run(t, who, args...)
	require.NoError(t, err, "councilctl %v\nstderr:\n%s", args, stderr)
	return out
}

func TestLoginWritesTokenFile(t *testing.T) {
	e := newEnv(t)

	out := e.mustRun(t, "admin", "login", "--email", "admin@council.test", "--password", password)
	assert.Contains(t, out, "Signed in as admin@council.test (admin)")
	b, err := os.ReadFile(e.tokenFile("admin"))
	require.NoError(t, err)
	assert.NotEmpty(t, bytes.TrimSpace(b))

	out = e.mustRun(t, "admin", "whoami")
	assert.Contains(t, out, "Council Admin")

	e.mustRun(t, "admin", "logout")
	_, err = os.Stat(e.tokenFile("admin"))
	assert.True(t, os.IsNotExist(err))
}

func TestLoginRequiresCredentials(t *testing.T) {
	e := newEnv(t)
	t.Setenv("COUNCIL_PASSWORD", "")
	_, stderr, err := e.run(t, "admin", "login", "--email", "admin@council.test")
	require.Error(t, err)
	assert.Contains(t, stderr, "--password")
}

func TestForbiddenDropsToken(t *testing.T) {
	e := newEnv(t)
	e.mustRun(t, "aisha", "login", "--email", "aisha@council.test", "--password", password)

	_, stderr, err := e.run(t, "aisha", "shaykhs")
	require.Error(t, err)
	assert.Contains(t, stderr, "login")
	_, statErr := os.Stat(e.tokenFile("aisha"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestCaseWorkflowAndSchedule(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	user := client.New(e.url, &client.MemoryStore{})
	_, err := user.Login(ctx, "aisha@council.test", password)
	require.NoError(t, err)
	id, ref, err := user.CreateCase(ctx, models.KindMarriage, cases.CreateCaseRequest{
		Parties: []cases.PartyInput{
			{Role: models.PartyGroom, Name: "Yusuf"},
			{Role: models.PartyBride, Name: "Amina"},
		},
	})
	require.NoError(t, err)

	e.mustRun(t, "admin", "login", "--email", "admin@council.test", "--password", password)

	out := e.mustRun(t, "admin", "cases", "list", "--kind", "marriage", "--status", "pending")
	assert.Contains(t, out, ref)
	assert.Contains(t, out, "Pending")
	assert.Contains(t, out, "Yusuf & Amina")

	out = e.mustRun(t, "admin", "case", "assign", "marriage", id, "--shaykh", e.shaykh.ID.String())
	assert.Contains(t, out, "Assigned")
	assert.Contains(t, out, "Shaykh Yusuf")

	out = e.mustRun(t, "admin", "case", "meet", "marriage", id, "--date", "2030-05-01", "--location", "Main hall")
	assert.Contains(t, out, "In Progress")
	assert.Contains(t, out, "Upcoming meetings")
	assert.Contains(t, out, "Main hall")

	out = e.mustRun(t, "admin", "schedule", "--view", "month", "--date", "2030-05-01", "--local")
	assert.Contains(t, out, "2030-05-01")
	assert.Contains(t, out, "09:00")
	assert.Contains(t, out, "Marriage: Yusuf & Amina")
	assert.Contains(t, out, "meetings: 1")

	raw := e.mustRun(t, "admin", "--json", "schedule", "--view", "week", "--date", "2030-05-01")
	var s calendar.Schedule
	require.NoError(t, json.Unmarshal([]byte(raw), &s))
	assert.Equal(t, calendar.ViewWeek, s.View)
	assert.Equal(t, 1, s.Total)

	xlsx := filepath.Join(e.dir, "may.xlsx")
	out = e.mustRun(t, "admin", "schedule", "--date", "2030-05-01", "--xlsx", xlsx)
	assert.Contains(t, out, "Wrote")
	info, err := os.Stat(xlsx)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))

	_, stderr, err := e.run(t, "admin", "case", "show", "divorce", id)
	require.Error(t, err)
	assert.Contains(t, stderr, "unknown case kind")
}

func TestScheduleRejectsBadInput(t *testing.T) {
	e := newEnv(t)

	_, stderr, err := e.run(t, "admin", "schedule", "--view", "year")
	require.Error(t, err)
	assert.Contains(t, stderr, "unknown calendar view")

	_, stderr, err = e.run(t, "admin", "schedule", "--local", "--date", "01/05/2030")
	require.Error(t, err)
	assert.Contains(t, stderr, "invalid --date")
}
