package tasks_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/tasknest/tasknest/auth"
	"github.com/tasknest/tasknest/tasks"
)

// MockTasks implements tasks.Tasks
type MockTasks struct {
	mock.Mock
}

func (m *MockTasks) Create(ctx context.Context, record *tasks.Task) (*tasks.Task, error) {
	args := m.Called(ctx, record)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tasks.Task), args.Error(1)
}

func (m *MockTasks) ListByUser(ctx context.Context, userID uuid.UUID) ([]*tasks.Task, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*tasks.Task), args.Error(1)
}

func (m *MockTasks) UpdateOwned(ctx context.Context, id, userID uuid.UUID, changes tasks.TaskChanges) (*tasks.Task, error) {
	args := m.Called(ctx, id, userID, changes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tasks.Task), args.Error(1)
}

func (m *MockTasks) DeleteOwned(ctx context.Context, id, userID uuid.UUID) error {
	args := m.Called(ctx, id, userID)
	return args.Error(0)
}

type taskTestEnv struct {
	app     *fiber.App
	repo    *MockTasks
	service auth.TokenService
	userID  uuid.UUID
}

func newTaskTestEnv(t *testing.T) *taskTestEnv {
	t.Helper()

	repo := new(MockTasks)

	service := auth.NewTokenService(
		[]byte("test-signing-key-not-for-production"),
		1,
		"tasknest",
		jwt.ClaimStrings{"tasknest-api"},
		nil,
	)

	errorHandler := auth.RenderError(nil)
	protected := auth.ProtectedRoute(taskTestConfig{}, service, errorHandler)

	ctrl := tasks.NewTaskController(
		tasks.WithTasksRepository(repo),
	)

	app := fiber.New()
	api := app.Group("/api")
	tasks.RegisterTaskRoutes(api, ctrl, protected)

	return &taskTestEnv{
		app:     app,
		repo:    repo,
		service: service,
		userID:  uuid.New(),
	}
}

type taskTestConfig struct{}

func (taskTestConfig) GetSigningKey() string    { return "test-signing-key-not-for-production" }
func (taskTestConfig) GetSigningMethod() string { return "HS256" }
func (taskTestConfig) GetContextKey() string    { return "user" }
func (taskTestConfig) GetTokenExpiration() int  { return 1 }
func (taskTestConfig) GetAuthScheme() string    { return "Bearer" }
func (taskTestConfig) GetIssuer() string        { return "tasknest" }
func (taskTestConfig) GetAudience() []string    { return []string{"tasknest-api"} }

type tokenIdentity struct {
	id string
}

func (t tokenIdentity) ID() string       { return t.id }
func (t tokenIdentity) Username() string { return "peperone" }
func (t tokenIdentity) Email() string    { return "pepe@example.com" }
func (t tokenIdentity) Role() string     { return auth.RoleUser }

func (e *taskTestEnv) token(t *testing.T) string {
	t.Helper()
	token, err := e.service.Generate(tokenIdentity{id: e.userID.String()})
	require.NoError(t, err)
	return token
}

func (e *taskTestEnv) doJSON(t *testing.T, method, target, body, token string) (int, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}

	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	res, err := e.app.Test(req, 30000)
	require.NoError(t, err)

	raw, err := io.ReadAll(res.Body)
	require.NoError(t, err)

	decoded := map[string]any{}
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &decoded), "body: %s", raw)
	}

	return res.StatusCode, decoded
}

func TestTaskEndpointsRequireToken(t *testing.T) {
	env := newTaskTestEnv(t)

	tests := []struct {
		method string
		target string
	}{
		{"POST", "/api/tasks/"},
		{"GET", "/api/tasks/"},
		{"PUT", "/api/tasks/" + uuid.NewString()},
		{"DELETE", "/api/tasks/" + uuid.NewString()},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.target, func(t *testing.T) {
			status, _ := env.doJSON(t, tt.method, tt.target, `{}`, "")
			assert.Equal(t, fiber.StatusUnauthorized, status)
		})
	}
}

func TestTaskCreate(t *testing.T) {
	env := newTaskTestEnv(t)

	var created *tasks.Task
	env.repo.On("Create", mock.Anything, mock.AnythingOfType("*tasks.Task")).
		Run(func(args mock.Arguments) {
			created = args.Get(1).(*tasks.Task)
		}).
		Return(&tasks.Task{
			ID:          uuid.New(),
			UserID:      env.userID,
			Description: "write the report",
			Category:    "work",
			Priority:    tasks.PriorityHigh,
		}, nil)

	status, body := env.doJSON(t, "POST", "/api/tasks/", `{
		"description": "write the report",
		"category": "work",
		"priority": "high"
	}`, env.token(t))

	assert.Equal(t, fiber.StatusCreated, status)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Task created successfully", body["message"])

	// Owner comes from the verified token, not from the payload.
	require.NotNil(t, created)
	assert.Equal(t, env.userID, created.UserID)
}

func TestTaskCreateValidation(t *testing.T) {
	env := newTaskTestEnv(t)

	tests := []struct {
		name string
		body string
	}{
		{"missing description", `{"priority": "high"}`},
		{"bad priority", `{"description": "x", "priority": "urgent"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := env.doJSON(t, "POST", "/api/tasks/", tt.body, env.token(t))

			assert.Equal(t, fiber.StatusBadRequest, status)
			assert.Equal(t, false, body["success"])
		})
	}

	env.repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestTaskList(t *testing.T) {
	env := newTaskTestEnv(t)

	env.repo.On("ListByUser", mock.Anything, env.userID).Return([]*tasks.Task{
		{ID: uuid.New(), UserID: env.userID, Description: "one"},
		{ID: uuid.New(), UserID: env.userID, Description: "two"},
	}, nil)

	status, body := env.doJSON(t, "GET", "/api/tasks/", "", env.token(t))

	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, true, body["success"])

	data, ok := body["data"].([]any)
	require.True(t, ok)
	assert.Len(t, data, 2)
}

func TestTaskUpdate(t *testing.T) {
	env := newTaskTestEnv(t)
	taskID := uuid.New()

	env.repo.On("UpdateOwned", mock.Anything, taskID, env.userID, mock.AnythingOfType("tasks.TaskChanges")).
		Return(&tasks.Task{
			ID:          taskID,
			UserID:      env.userID,
			Description: "updated",
			Completed:   true,
		}, nil)

	status, body := env.doJSON(t, "PUT", "/api/tasks/"+taskID.String(), `{
		"description": "updated",
		"completed": true
	}`, env.token(t))

	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Task updated successfully", body["message"])
}

// Acting on another user's task renders the same 404 as a missing task.
func TestTaskUpdateNotOwned(t *testing.T) {
	env := newTaskTestEnv(t)
	taskID := uuid.New()

	env.repo.On("UpdateOwned", mock.Anything, taskID, env.userID, mock.AnythingOfType("tasks.TaskChanges")).
		Return(nil, repository.NewRecordNotFound())

	status, body := env.doJSON(t, "PUT", "/api/tasks/"+taskID.String(), `{
		"completed": true
	}`, env.token(t))

	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Task not found", body["message"])
}

func TestTaskUpdateBadID(t *testing.T) {
	env := newTaskTestEnv(t)

	status, body := env.doJSON(t, "PUT", "/api/tasks/not-a-uuid", `{
		"completed": true
	}`, env.token(t))

	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, "Task not found", body["message"])

	env.repo.AssertNotCalled(t, "UpdateOwned", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestTaskDelete(t *testing.T) {
	env := newTaskTestEnv(t)
	taskID := uuid.New()

	env.repo.On("DeleteOwned", mock.Anything, taskID, env.userID).Return(nil)

	status, body := env.doJSON(t, "DELETE", "/api/tasks/"+taskID.String(), "", env.token(t))

	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Task deleted successfully", body["message"])
}

func TestTaskDeleteNotFound(t *testing.T) {
	env := newTaskTestEnv(t)
	taskID := uuid.New()

	env.repo.On("DeleteOwned", mock.Anything, taskID, env.userID).
		Return(repository.NewRecordNotFound())

	status, body := env.doJSON(t, "DELETE", "/api/tasks/"+taskID.String(), "", env.token(t))

	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, "Task not found", body["message"])
}
