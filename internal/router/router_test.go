package router

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"userboard/internal/handler"
	"userboard/internal/model"
	"userboard/internal/repository"
	"userboard/internal/service"
)

func newTestServer(t *testing.T) *echo.Echo {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// One connection, otherwise each pooled conn gets its own :memory: database.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&model.User{}))

	userRepo := repository.NewUserRepository(db)
	userService := service.NewUserService(userRepo, nil)
	userHandler := handler.NewUserHandler(userService)

	e := echo.New()
	Register(e, userHandler)
	return e
}

func do(e *echo.Echo, method, path, body string) (*httptest.ResponseRecorder, handler.Response) {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	var resp handler.Response
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	return rec, resp
}

func TestUserCRUDFlow(t *testing.T) {
	e := newTestServer(t)

	// Create
	rec, resp := do(e, http.MethodPost, "/api/users",
		`{"username":"alice","email":"a@x.com","password":"pw"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	require.True(t, resp.OK)
	created := resp.Data.(map[string]interface{})
	assert.Equal(t, "a@x.com", created["email"])
	assert.NotContains(t, rec.Body.String(), "password")
	id := uint(created["id"].(float64))

	// Duplicate email is rejected, first user untouched
	rec, resp = do(e, http.MethodPost, "/api/users",
		`{"username":"impostor","email":"a@x.com","password":"pw2"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, resp.OK)

	// List contains the user
	rec, resp = do(e, http.MethodGet, "/api/users", "")
	require.Equal(t, http.StatusOK, rec.Code)
	list := resp.Data.([]interface{})
	require.Len(t, list, 1)
	assert.Equal(t, "alice", list[0].(map[string]interface{})["username"])

	// Partial update changes only the username
	rec, resp = do(e, http.MethodPut, fmt.Sprintf("/api/users/%d", id),
		`{"username":"alice2"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	updated := resp.Data.(map[string]interface{})
	assert.Equal(t, "alice2", updated["username"])
	assert.Equal(t, "a@x.com", updated["email"])

	// Delete returns the record
	rec, resp = do(e, http.MethodDelete, fmt.Sprintf("/api/users/%d", id), "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "alice2", resp.Data.(map[string]interface{})["username"])

	// Gone from the list
	rec, resp = do(e, http.MethodGet, "/api/users", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, resp.Data)

	// Second delete of the same id is a 404
	rec, resp = do(e, http.MethodDelete, fmt.Sprintf("/api/users/%d", id), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.False(t, resp.OK)
}

func TestRoutingErrorsUseEnvelope(t *testing.T) {
	e := newTestServer(t)

	rec, resp := do(e, http.MethodPatch, "/api/users", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.False(t, resp.OK)
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)

	rec, resp = do(e, http.MethodGet, "/api/nothing", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.False(t, resp.OK)
}

func TestHealthz(t *testing.T) {
	e := newTestServer(t)
	rec, _ := do(e, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}
