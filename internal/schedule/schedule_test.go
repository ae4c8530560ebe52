package schedule

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"github.com/aldoetobex/council-case-backend/internal/auth"
	"github.com/aldoetobex/council-case-backend/internal/cases"
	"github.com/aldoetobex/council-case-backend/internal/testutil"
	"github.com/aldoetobex/council-case-backend/pkg/calendar"
	"github.com/aldoetobex/council-case-backend/pkg/models"
)

type failing struct{ kind models.CaseKind }

func (f failing) Kind() models.CaseKind { return f.kind }
func (f failing) Fetch(context.Context, calendar.Window) ([]calendar.SourceMeeting, error) {
	return nil, errors.New("connection reset")
}

func seedCase(t *testing.T, db *gorm.DB, kind models.CaseKind, shaykh uuid.UUID, a, b models.Party, dates ...string) {
	t.Helper()
	cs := models.Case{
		Kind: kind, UserID: uuid.New(), Status: models.CaseInProgress,
		AssignedShaykhID: &shaykh, Parties: []models.Party{a, b},
	}
	require.NoError(t, db.Create(&cs).Error)
	for _, d := range dates {
		require.NoError(t, db.Create(&models.Meeting{CaseID: cs.ID, Date: d, Status: models.MeetingScheduled}).Error)
	}
}

func newHandler(t *testing.T) (*Handler, models.User) {
	t.Helper()
	db := testutil.OpenTestDB(t)
	shaykh := testutil.SeedUser(t, db, models.RoleShaykh, "Shaykh Yusuf")
	other := testutil.SeedUser(t, db, models.RoleShaykh, "Shaykh Harun")

	seedCase(t, db, models.KindMarriage, shaykh.ID,
		models.Party{Role: models.PartyGroom, Name: "Yusuf"}, models.Party{Role: models.PartyBride, Name: "Amina"},
		"2024-06-10", "2024-07-03")
	seedCase(t, db, models.KindReconciliation, other.ID,
		models.Party{Role: models.PartyHusband, Name: "Omar"}, models.Party{Role: models.PartyWife, Name: "Fatima"},
		"2024-06-10", "2024-06-12")

	h := NewHandler(db, time.UTC)
	h.now = func() time.Time { return time.Date(2024, 6, 12, 12, 0, 0, 0, time.UTC) }
	return h, shaykh
}

func mount(h *Handler, userID uuid.UUID, role models.Role) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: auth.ErrorHandler})
	h.Register(app.Group("/api/schedule", testutil.InjectAuth(userID, role)))
	return app
}

func TestSchedule_AdminMonth(t *testing.T) {
	h, _ := newHandler(t)
	app := mount(h, uuid.New(), models.RoleAdmin)

	resp := testutil.JSON(t, app, http.MethodGet, "/api/schedule?date=2024-06-10", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var s calendar.Schedule
	testutil.Decode(t, resp, &s)

	assert.Equal(t, calendar.ViewMonth, s.View)
	assert.Equal(t, "2024-06-01", s.From)
	assert.Equal(t, "2024-06-30", s.To)
	assert.Equal(t, 3, s.Total)
	assert.Empty(t, s.Warnings)

	day := s.Days["2024-06-10"]
	require.Len(t, day, 2)
	assert.Equal(t, "Marriage: Yusuf & Amina", day[0].Title)
	assert.Equal(t, "09:00", day[0].Time)
	assert.Equal(t, "Reconciliation: Omar & Fatima", day[1].Title)
	assert.Equal(t, "10:00", day[1].Time)
	assert.Equal(t, "Shaykh Harun", day[1].Shaykh)
}

func TestSchedule_ShaykhWeekIsScoped(t *testing.T) {
	h, shaykh := newHandler(t)
	app := mount(h, shaykh.ID, models.RoleShaykh)

	// no date: the week around "now" (2024-06-12)
	resp := testutil.JSON(t, app, http.MethodGet, "/api/schedule?view=week", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var s calendar.Schedule
	testutil.Decode(t, resp, &s)

	assert.Equal(t, "2024-06-09", s.From)
	assert.Equal(t, "2024-06-15", s.To)
	require.Equal(t, 1, s.Total)
	ev := s.Days["2024-06-10"][0]
	assert.Equal(t, models.KindMarriage, ev.Source)
	require.NotNil(t, ev.Layout)
	assert.Equal(t, 60, ev.Layout.Top) // 09:00
}

func TestSchedule_SourceFailure(t *testing.T) {
	h, _ := newHandler(t)
	base := h.sources
	h.sources = func(scope cases.Scope) []calendar.Source {
		src := base(scope)
		return []calendar.Source{failing{kind: models.KindMarriage}, src[1]}
	}
	app := mount(h, uuid.New(), models.RoleAdmin)

	resp := testutil.JSON(t, app, http.MethodGet, "/api/schedule?date=2024-06-01", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var s calendar.Schedule
	testutil.Decode(t, resp, &s)
	assert.Equal(t, []string{"marriage meetings unavailable"}, s.Warnings)
	assert.Equal(t, 2, s.Total)
}

func TestSchedule_BadInput(t *testing.T) {
	h, _ := newHandler(t)
	app := mount(h, uuid.New(), models.RoleAdmin)

	resp := testutil.JSON(t, app, http.MethodGet, "/api/schedule?view=day", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp = testutil.JSON(t, app, http.MethodGet, "/api/schedule?date=10-06-2024", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSchedule_Export(t *testing.T) {
	h, _ := newHandler(t)
	app := mount(h, uuid.New(), models.RoleAdmin)

	resp := testutil.JSON(t, app, http.MethodGet, "/api/schedule/export?date=2024-06-10", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get(fiber.HeaderContentDisposition), "schedule-2024-06-01-2024-06-30.xlsx")

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	f, err := excelize.OpenReader(bytes.NewReader(body))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Schedule")
	require.NoError(t, err)
	assert.Len(t, rows, 4) // header + 3 events
}
