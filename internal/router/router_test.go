package router

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"mdsq/internal/auth"
	"mdsq/internal/config"
	"mdsq/internal/db"
	"mdsq/internal/errors"
	"mdsq/internal/handler"
	"mdsq/internal/metrics"
	"mdsq/internal/model"
	"mdsq/internal/repository"
	"mdsq/internal/service"
)

const (
	producer     = "Productor"
	collaborator = "Colaborador"
)

type testServer struct {
	e       *echo.Echo
	members service.MemberService
}

func newTestServer(t *testing.T, mode string) *testServer {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	gormDB, err := db.Open("sqlite", dsn)
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gormDB))
	t.Cleanup(func() {
		if sqlDB, err := gormDB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	cfg := &config.Config{AuthMode: mode, JWTSecret: "test-secret", CORSAllowOrigins: []string{"*"}}
	logger := zap.NewNop()
	registry := prometheus.NewRegistry()
	m := metrics.New(registry)
	store := repository.NewStore(gormDB)
	jwtService := auth.NewJWTService(cfg.JWTSecret)

	members := service.NewMemberService(store, nil, logger)
	integrity := service.NewIntegrityService(store, nil, m, logger)
	handlers := Handlers{
		Auth:       handler.NewAuthHandler(service.NewAuthService(store.Users(), store.Members(), jwtService, auth.NewTokenStore(nil), logger)),
		Member:     handler.NewMemberHandler(members, integrity),
		Label:      handler.NewLabelHandler(service.NewLabelService(store, logger)),
		Ministry:   handler.NewMinistryHandler(service.NewMinistryService(store, nil, logger), integrity),
		Service:    handler.NewServiceHandler(service.NewPlanService(store, nil, m, logger), service.NewAssignmentService(store, nil, m, logger)),
		Attendance: handler.NewAttendanceHandler(service.NewAttendanceService(store, 20, m, logger)),
	}

	e := echo.New()
	Register(e, cfg, logger, registry, jwtService, handlers)
	return &testServer{e: e, members: members}
}

// do sends a JSON request. headers are key/value pairs.
func (s *testServer) do(t *testing.T, method, path string, body interface{}, headers ...string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) as(t *testing.T, role, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	return s.do(t, method, path, body, RoleHeader, role)
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), dst), rec.Body.String())
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp errors.ErrorResponse
	decode(t, rec, &resp)
	return resp.Code
}

func (s *testServer) createMember(t *testing.T, first, last string) model.Member {
	t.Helper()
	rec := s.as(t, collaborator, http.MethodPost, "/api/members", map[string]interface{}{
		"first_name": first,
		"last_name":  last,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var m model.Member
	decode(t, rec, &m)
	return m
}

func (s *testServer) createTeam(t *testing.T, ministryName, teamName string) model.Team {
	t.Helper()
	rec := s.as(t, collaborator, http.MethodPost, "/api/ministries", map[string]string{"name": ministryName})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var ministry model.Ministry
	decode(t, rec, &ministry)

	rec = s.as(t, collaborator, http.MethodPost, "/api/ministries/"+ministry.ID.String()+"/teams", map[string]string{"name": teamName})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var team model.Team
	decode(t, rec, &team)
	return team
}

func (s *testServer) createService(t *testing.T, body map[string]interface{}) service.ServiceDetail {
	t.Helper()
	rec := s.as(t, producer, http.MethodPost, "/api/services", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var detail service.ServiceDetail
	decode(t, rec, &detail)
	return detail
}

func TestHealthAndMetrics(t *testing.T) {
	s := newTestServer(t, "header")

	rec := s.do(t, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())

	// touch a counter so the family is exported
	s.as(t, collaborator, http.MethodPost, "/api/services", map[string]interface{}{"name": "x", "date": "2025-06-01T10:00"})

	rec = s.do(t, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `mdsq_permission_denied_total{operation="create_service"} 1`)
}

func TestServicePlan_TimelineAndReplace(t *testing.T) {
	s := newTestServer(t, "header")

	detail := s.createService(t, map[string]interface{}{
		"name": "Sunday 10am",
		"date": "2025-06-01T10:00",
		"items": []map[string]interface{}{
			{"type": "WALK_IN", "title": "Walk in", "duration": 3},
			{"type": "MESSAGE", "title": "Message", "duration": "30"},
		},
	})

	assert.Equal(t, model.DefaultServiceType, detail.Type)
	assert.Equal(t, 33, detail.TotalDuration)
	require.Len(t, detail.Items, 2)
	assert.Equal(t, "10:00", detail.Items[0].StartsAt.In(time.Local).Format("15:04"))
	assert.Equal(t, "10:03", detail.Items[1].StartsAt.In(time.Local).Format("15:04"))
	assert.Equal(t, 0, detail.Items[0].Order)
	assert.Equal(t, 1, detail.Items[1].Order)

	path := "/api/services/" + detail.ID.String()
	rec := s.as(t, "Pastora", http.MethodPut, path, map[string]interface{}{
		"name": "Sunday 10am",
		"date": "2025-06-01T10:00",
		"items": []map[string]interface{}{
			{"type": "MESSAGE", "title": "Message", "duration": 40},
			{"type": "unknown tag", "title": "Prayer", "duration": "05:00"},
			{"type": "CLOSING_SONG", "title": "Closing", "duration": 4},
		},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = s.as(t, collaborator, http.MethodGet, path, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var got service.ServiceDetail
	decode(t, rec, &got)
	require.Len(t, got.Items, 3)
	assert.Equal(t, "Message", got.Items[0].Title)
	assert.Equal(t, model.ItemGeneric, got.Items[1].Type)
	assert.Equal(t, 5, got.Items[1].Duration)
	assert.Equal(t, 49, got.TotalDuration)
	assert.Equal(t, "10:45", got.Items[2].StartsAt.In(time.Local).Format("15:04"))

	rec = s.as(t, collaborator, http.MethodGet, "/api/services", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list []service.ServiceDetail
	decode(t, rec, &list)
	assert.Len(t, list, 1)
}

func TestServicePlan_Errors(t *testing.T) {
	s := newTestServer(t, "header")

	tests := []struct {
		name       string
		role       string
		method     string
		path       string
		body       interface{}
		wantStatus int
		wantCode   string
	}{
		{
			name: "collaborator cannot create", role: collaborator, method: http.MethodPost, path: "/api/services",
			body:       map[string]interface{}{"name": "x", "date": "2025-06-01T10:00"},
			wantStatus: http.StatusForbidden, wantCode: "PERMISSION_DENIED",
		},
		{
			name: "no role cannot create", role: "", method: http.MethodPost, path: "/api/services",
			body:       map[string]interface{}{"name": "x", "date": "2025-06-01T10:00"},
			wantStatus: http.StatusForbidden, wantCode: "PERMISSION_DENIED",
		},
		{
			name: "bad date is permission error for collaborator", role: collaborator, method: http.MethodPost, path: "/api/services",
			body:       map[string]interface{}{"name": "x", "date": "next sunday"},
			wantStatus: http.StatusForbidden, wantCode: "PERMISSION_DENIED",
		},
		{
			name: "bad date", role: producer, method: http.MethodPost, path: "/api/services",
			body:       map[string]interface{}{"name": "x", "date": "next sunday"},
			wantStatus: http.StatusBadRequest, wantCode: "INVALID_DATE",
		},
		{
			name: "missing name", role: producer, method: http.MethodPost, path: "/api/services",
			body:       map[string]interface{}{"date": "2025-06-01T10:00"},
			wantStatus: http.StatusBadRequest, wantCode: "MISSING_NAME",
		},
		{
			name: "item without title", role: producer, method: http.MethodPost, path: "/api/services",
			body: map[string]interface{}{"name": "x", "date": "2025-06-01T10:00", "items": []map[string]interface{}{
				{"type": "MESSAGE", "title": " ", "duration": 5},
			}},
			wantStatus: http.StatusBadRequest, wantCode: "MISSING_TITLE",
		},
		{
			name: "replace unknown service", role: producer, method: http.MethodPut, path: "/api/services/" + uuid.NewString(),
			body:       map[string]interface{}{"name": "x", "date": "2025-06-01T10:00"},
			wantStatus: http.StatusNotFound, wantCode: "SERVICE_NOT_FOUND",
		},
		{
			name: "invalid id", role: producer, method: http.MethodGet, path: "/api/services/not-a-uuid",
			wantStatus: http.StatusBadRequest, wantCode: "INVALID_UUID",
		},
		{
			name: "leader cannot delete", role: "Líder", method: http.MethodDelete, path: "/api/services/" + uuid.NewString(),
			wantStatus: http.StatusForbidden, wantCode: "PERMISSION_DENIED",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.as(t, tt.role, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			assert.Equal(t, tt.wantCode, errorCode(t, rec))
		})
	}
}

func TestDirectory_MembersAndTeams(t *testing.T) {
	s := newTestServer(t, "header")

	rec := s.as(t, collaborator, http.MethodPost, "/api/members", map[string]interface{}{
		"first_name": "Ana",
		"last_name":  "Gómez",
		"email":      "Ana@Example.com",
		"password":   "secret1",
		"birth_date": "1990-03-14",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var ana model.Member
	decode(t, rec, &ana)
	assert.True(t, ana.HasLogin())
	assert.Equal(t, model.DefaultChurchRole, ana.ChurchRole)

	rec = s.as(t, collaborator, http.MethodPost, "/api/members", map[string]interface{}{
		"first_name": "Other",
		"last_name":  "Person",
		"email":      "ana@example.com",
		"password":   "secret2",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "DUPLICATE_EMAIL", errorCode(t, rec))

	rec = s.as(t, collaborator, http.MethodPost, "/api/members", map[string]interface{}{"first_name": "Solo"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "MISSING_NAME", errorCode(t, rec))

	rec = s.as(t, collaborator, http.MethodPost, "/api/members", map[string]interface{}{
		"first_name": "Bad", "last_name": "Email", "email": "not-an-email",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", errorCode(t, rec))

	rec = s.as(t, collaborator, http.MethodGet, "/api/members/birthdays?month=3&day=14", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var birthdays []model.Member
	decode(t, rec, &birthdays)
	require.Len(t, birthdays, 1)
	assert.Equal(t, ana.ID, birthdays[0].ID)

	rec = s.as(t, collaborator, http.MethodGet, "/api/members/birthdays?month=13&day=1", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	team := s.createTeam(t, "Worship", "Band")
	teamPath := "/api/teams/" + team.ID.String() + "/members"
	rec = s.as(t, collaborator, http.MethodPost, teamPath, map[string]string{"member_id": ana.ID.String()})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	rec = s.as(t, collaborator, http.MethodPost, teamPath, map[string]string{"member_id": ana.ID.String()})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "ALREADY_IN_TEAM", errorCode(t, rec))

	rec = s.as(t, collaborator, http.MethodGet, "/api/ministries", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var tree []model.Ministry
	decode(t, rec, &tree)
	require.Len(t, tree, 1)
	require.Len(t, tree[0].Teams, 1)
	assert.Len(t, tree[0].Teams[0].Members, 1)

	rec = s.as(t, collaborator, http.MethodDelete, "/api/members/"+ana.ID.String(), nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.as(t, collaborator, http.MethodGet, "/api/members/"+ana.ID.String(), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "MEMBER_NOT_FOUND", errorCode(t, rec))

	// the freed email can be registered again
	rec = s.as(t, collaborator, http.MethodPost, "/api/members", map[string]interface{}{
		"first_name": "Ana", "last_name": "Again", "email": "ana@example.com", "password": "secret3",
	})
	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func TestLabelsAndAccess(t *testing.T) {
	s := newTestServer(t, "header")
	member := s.createMember(t, "Luis", "Pérez")

	rec := s.as(t, collaborator, http.MethodPost, "/api/labels", map[string]string{"name": "Youth", "color": "#ff0000"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var label model.Label
	decode(t, rec, &label)

	rec = s.as(t, collaborator, http.MethodPost, "/api/labels", map[string]string{"name": "Youth"})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "DUPLICATE_LABEL", errorCode(t, rec))

	access := map[string]interface{}{"church_role": "Productor", "label_ids": []string{label.ID.String()}}
	path := "/api/admin/members/" + member.ID.String()

	rec = s.as(t, producer, http.MethodPut, path, access)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.as(t, "PASTOR", http.MethodPut, path, access)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var updated model.Member
	decode(t, rec, &updated)
	assert.Equal(t, "Productor", updated.ChurchRole)
	require.Len(t, updated.Labels, 1)
	assert.Equal(t, "Youth", updated.Labels[0].Name)

	rec = s.as(t, collaborator, http.MethodDelete, "/api/labels/"+label.ID.String(), nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.as(t, collaborator, http.MethodGet, "/api/members/"+member.ID.String(), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var reloaded model.Member
	decode(t, rec, &reloaded)
	assert.Equal(t, member.ID, reloaded.ID)
	assert.Empty(t, reloaded.Labels)
}

func TestAssignments(t *testing.T) {
	s := newTestServer(t, "header")
	member := s.createMember(t, "Sara", "Ruiz")
	team := s.createTeam(t, "Media", "Cameras")
	detail := s.createService(t, map[string]interface{}{"name": "Sunday", "date": "2025-06-01T10:00"})

	rec := s.as(t, collaborator, http.MethodPost, "/api/teams/"+team.ID.String()+"/members", map[string]string{"member_id": member.ID.String()})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	path := "/api/services/" + detail.ID.String() + "/assignments"
	body := map[string]string{"team_id": team.ID.String(), "member_id": member.ID.String()}

	rec = s.as(t, collaborator, http.MethodPost, path, body)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.as(t, producer, http.MethodPost, path, body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var assignment model.ServiceAssignment
	decode(t, rec, &assignment)

	rec = s.as(t, producer, http.MethodPost, path, body)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "ALREADY_ASSIGNED", errorCode(t, rec))

	rec = s.as(t, collaborator, http.MethodGet, path, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var roster []service.RosterTeam
	decode(t, rec, &roster)
	require.Len(t, roster, 1)
	require.Len(t, roster[0].Assigned, 1)
	assert.Equal(t, assignment.ID, roster[0].Assigned[0].AssignmentID)
	assert.Empty(t, roster[0].Available)

	rec = s.as(t, producer, http.MethodDelete, "/api/assignments/"+assignment.ID.String(), nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.as(t, producer, http.MethodDelete, "/api/assignments/"+assignment.ID.String(), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAttendance(t *testing.T) {
	s := newTestServer(t, "header")
	member := s.createMember(t, "Marta", "Díaz")

	rec := s.as(t, "Recepción", http.MethodPost, "/api/attendance", map[string]string{"member_id": member.ID.String()})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = s.as(t, "Recepción", http.MethodPost, "/api/attendance", map[string]string{"member_id": uuid.NewString()})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.as(t, "Recepción", http.MethodPost, "/api/attendance", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", errorCode(t, rec))

	rec = s.as(t, "Recepción", http.MethodGet, "/api/attendance", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var records []model.Attendance
	decode(t, rec, &records)
	require.Len(t, records, 1)
	assert.Equal(t, member.ID, records[0].MemberID)
}

func TestJWTMode(t *testing.T) {
	s := newTestServer(t, "jwt")

	_, err := s.members.CreateMember(context.Background(), service.MemberInput{
		FirstName:  "Paula",
		LastName:   "Vega",
		Email:      "paula@example.com",
		Password:   "secret1",
		ChurchRole: producer,
	})
	require.NoError(t, err)

	rec := s.do(t, http.MethodGet, "/api/services", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "UNAUTHORIZED", errorCode(t, rec))

	// the role header is ignored in jwt mode
	rec = s.do(t, http.MethodGet, "/api/services", nil, RoleHeader, "Pastor")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/auth/login", map[string]string{"email": "paula@example.com", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "INVALID_CREDENTIALS", errorCode(t, rec))

	rec = s.do(t, http.MethodPost, "/api/auth/login", map[string]string{"email": "PAULA@example.com", "password": "secret1"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var login handler.AuthResponse
	decode(t, rec, &login)
	assert.Equal(t, producer, login.Role)
	assert.Equal(t, auth.RoleProducer, login.RoleClass)
	require.NotEmpty(t, login.AccessToken)

	bearer := "Bearer " + login.AccessToken
	rec = s.do(t, http.MethodPost, "/api/services", map[string]interface{}{"name": "Sunday", "date": "2025-06-01T10:00"},
		echo.HeaderAuthorization, bearer)
	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = s.do(t, http.MethodGet, "/api/services", nil, echo.HeaderAuthorization, bearer+"x")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
