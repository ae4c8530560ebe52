package admin

import (
	"net/http"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/aldoetobex/council-case-backend/internal/auth"
	"github.com/aldoetobex/council-case-backend/internal/testutil"
	"github.com/aldoetobex/council-case-backend/pkg/models"
)

func newTestApp(t *testing.T) (*fiber.App, *gorm.DB, models.User) {
	t.Helper()
	db := testutil.OpenTestDB(t)
	admin := testutil.SeedUser(t, db, models.RoleAdmin, "Council Admin")

	h := NewHandler(db, time.UTC)
	h.now = func() time.Time { return time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC) }

	app := fiber.New(fiber.Config{ErrorHandler: auth.ErrorHandler})
	g := app.Group("/api/admin", testutil.InjectAuth(admin.ID, models.RoleAdmin), auth.RequireRole(models.RoleAdmin))
	h.Register(g)
	return app, db, admin
}

func seedCase(t *testing.T, db *gorm.DB, kind models.CaseKind, status models.CaseStatus, shaykh *uuid.UUID) models.Case {
	t.Helper()
	cs := models.Case{Kind: kind, UserID: uuid.New(), Status: status, AssignedShaykhID: shaykh}
	require.NoError(t, db.Create(&cs).Error)
	return cs
}

func TestCreateAndListShaykhs(t *testing.T) {
	app, db, _ := newTestApp(t)

	resp := testutil.JSON(t, app, http.MethodPost, "/api/admin/shaykhs", fiber.Map{
		"name": "Shaykh Yusuf", "email": " Yusuf@Council.org", "password": "secret123",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created Shaykh
	testutil.Decode(t, resp, &created)
	assert.Equal(t, models.RoleShaykh, created.Role)
	assert.Equal(t, "yusuf@council.org", created.Email)

	resp = testutil.JSON(t, app, http.MethodPost, "/api/admin/shaykhs", fiber.Map{
		"name": "Shaykh Yusuf", "email": "yusuf@council.org", "password": "secret123",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = testutil.JSON(t, app, http.MethodPost, "/api/admin/shaykhs", fiber.Map{"name": "Y"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	id := created.ID
	seedCase(t, db, models.KindReconciliation, models.CaseAssigned, &id)
	seedCase(t, db, models.KindMarriage, models.CaseInProgress, &id)
	seedCase(t, db, models.KindMarriage, models.CaseResolved, &id)
	testutil.SeedUser(t, db, models.RoleShaykh, "Shaykh Anas")

	resp = testutil.JSON(t, app, http.MethodGet, "/api/admin/shaykhs", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list []Shaykh
	testutil.Decode(t, resp, &list)
	require.Len(t, list, 2)
	assert.Equal(t, "Shaykh Anas", list[0].Name)
	assert.EqualValues(t, 0, list[0].OpenCases)
	assert.Equal(t, "Shaykh Yusuf", list[1].Name)
	assert.EqualValues(t, 2, list[1].OpenCases)
}

func TestSetActive(t *testing.T) {
	app, db, admin := newTestApp(t)
	shaykh := testutil.SeedUser(t, db, models.RoleShaykh, "Shaykh Yusuf")

	resp := testutil.JSON(t, app, http.MethodPut, "/api/admin/shaykhs/"+shaykh.ID.String()+"/active", fiber.Map{"active": false})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var u models.User
	require.NoError(t, db.First(&u, "id = ?", shaykh.ID).Error)
	assert.False(t, u.Active)

	resp = testutil.JSON(t, app, http.MethodPut, "/api/admin/shaykhs/"+admin.ID.String()+"/active", fiber.Map{"active": false})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode, "only shaykhs can be toggled")

	resp = testutil.JSON(t, app, http.MethodPut, "/api/admin/shaykhs/"+shaykh.ID.String()+"/active", fiber.Map{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestStats(t *testing.T) {
	app, db, _ := newTestApp(t)
	shaykh := testutil.SeedUser(t, db, models.RoleShaykh, "Shaykh Yusuf")

	seedCase(t, db, models.KindReconciliation, models.CasePending, nil)
	seedCase(t, db, models.KindReconciliation, models.CasePending, nil)
	active := seedCase(t, db, models.KindMarriage, models.CaseInProgress, &shaykh.ID)
	seedCase(t, db, models.KindFatwa, models.CaseResolved, &shaykh.ID)

	for _, m := range []models.Meeting{
		{CaseID: active.ID, Date: "2024-06-12", Status: models.MeetingScheduled},
		{CaseID: active.ID, Date: "2024-06-01", Status: models.MeetingScheduled},
		{CaseID: active.ID, Date: "2024-06-20", Status: models.MeetingCancelled},
	} {
		require.NoError(t, db.Create(&m).Error)
	}

	resp := testutil.JSON(t, app, http.MethodGet, "/api/admin/stats", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var st Stats
	testutil.Decode(t, resp, &st)
	assert.EqualValues(t, 4, st.Total)
	assert.EqualValues(t, 2, st.Unassigned)
	assert.EqualValues(t, 2, st.ByKind[models.KindReconciliation][models.CasePending])
	assert.EqualValues(t, 1, st.ByKind[models.KindMarriage][models.CaseInProgress])
	assert.EqualValues(t, 0, st.ByKind[models.KindFatwa][models.CaseCancelled])
	assert.EqualValues(t, 1, st.UpcomingMeetings[models.KindMarriage])
	assert.EqualValues(t, 0, st.UpcomingMeetings[models.KindReconciliation])
}
