package v1

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rabotim/marketplace/internal/models"
	"github.com/rabotim/marketplace/internal/search"
	"github.com/rabotim/marketplace/internal/services"
)

const (
	testIssuer     = "rabotim-id"
	testSigningKey = "test-signing-key"
)

type stubTaskService struct {
	searchQuery  search.Query
	searchResult []models.Task
	searchErr    error
	created      *services.CreateTaskParams
	statusParams *services.UpdateTaskStatusParams
	statusErr    error
}

func (s *stubTaskService) CreateTask(_ context.Context, params services.CreateTaskParams) (*models.Task, error) {
	s.created = &params
	return &models.Task{
		ID:        "task-1",
		PosterID:  params.PosterID,
		Title:     params.Title,
		Category:  params.Category,
		Location:  params.Location,
		Price:     params.Price,
		PriceType: params.PriceType,
		CreatedAt: time.Now(),
		Status:    models.StatusActive,
	}, nil
}

func (s *stubTaskService) GetTaskByID(context.Context, string) (*models.Task, error) {
	return nil, services.ErrTaskNotFound
}

func (s *stubTaskService) SearchTasks(_ context.Context, q search.Query, _, _ uint32) ([]models.Task, error) {
	s.searchQuery = q
	return s.searchResult, s.searchErr
}

func (s *stubTaskService) UpdateTaskStatus(_ context.Context, params services.UpdateTaskStatusParams) (*models.Task, error) {
	s.statusParams = &params
	if s.statusErr != nil {
		return nil, s.statusErr
	}
	return &models.Task{ID: params.TaskID, PosterID: params.PosterID, Status: params.Status}, nil
}

func (s *stubTaskService) ApplyToTask(context.Context, string) error {
	return nil
}

type stubAlertService struct {
	createErr error
}

func (s *stubAlertService) CreateSubscription(_ context.Context, params services.SubscriptionParams) (*models.AlertSubscription, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	return &models.AlertSubscription{
		ID:         "sub-1",
		UserID:     params.UserID,
		Categories: params.Categories,
		Locations:  params.Locations,
		MinBudget:  params.MinBudget,
		MaxBudget:  params.MaxBudget,
		Frequency:  params.Frequency,
		Active:     true,
		CreatedAt:  time.Now(),
	}, nil
}

func (s *stubAlertService) ListSubscriptions(context.Context, string) ([]models.AlertSubscription, error) {
	return nil, nil
}

func (s *stubAlertService) UpdateSubscription(context.Context, string, services.SubscriptionParams) (*models.AlertSubscription, error) {
	return nil, services.ErrSubscriptionNotFound
}

func (s *stubAlertService) DeleteSubscription(context.Context, string, string) error {
	return nil
}

func (s *stubAlertService) ActiveSubscriptions(context.Context) ([]models.AlertSubscription, error) {
	return nil, nil
}

type stubNotifyService struct{}

func (stubNotifyService) DispatchTask(context.Context, *models.Task) (int, error) {
	return 0, nil
}

func (stubNotifyService) ListNotifications(context.Context, string, uint32) ([]models.Notification, error) {
	return nil, nil
}

func (stubNotifyService) FlushDigest(context.Context, models.Frequency) ([]models.Notification, error) {
	return nil, nil
}

func newTestRouter(tasks services.TaskService, alerts services.AlertService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	handler := New(zerolog.Nop(), tasks, alerts, stubNotifyService{}, testIssuer, testSigningKey)

	router := gin.New()
	router.GET("/tasks", handler.HandleSearchTasks)
	router.POST("/tasks", handler.HandleAuthMiddleware, handler.HandleCreateTask)
	router.PATCH("/tasks/:id/status", handler.HandleAuthMiddleware, handler.HandleSetTaskStatus)
	router.POST("/alerts", handler.HandleAuthMiddleware, handler.HandleCreateAlert)
	return router
}

func signTestToken(t *testing.T, subject, issuer string) string {
	t.Helper()
	claims := jwt.RegisteredClaims{
		Issuer:    issuer,
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSigningKey))
	require.NoError(t, err)
	return token
}

func TestHandleSearchTasks(t *testing.T) {
	t.Run("Should pass query parameters through to the search query", func(t *testing.T) {
		tasks := &stubTaskService{}
		router := newTestRouter(tasks, &stubAlertService{})

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet,
			"/tasks?q=ремонт&category=repair&location=София&price_min=100&price_max=500&urgent=true&sort=price_low", nil)
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "ремонт", tasks.searchQuery.FreeText)
		assert.Equal(t, models.CategoryRepair, tasks.searchQuery.Category)
		assert.Equal(t, "София", tasks.searchQuery.Location)
		require.NotNil(t, tasks.searchQuery.PriceMin)
		assert.Equal(t, 100.0, *tasks.searchQuery.PriceMin)
		require.NotNil(t, tasks.searchQuery.PriceMax)
		assert.Equal(t, 500.0, *tasks.searchQuery.PriceMax)
		assert.True(t, tasks.searchQuery.UrgentOnly)
		assert.Equal(t, search.SortPriceLow, tasks.searchQuery.Sort)
	})
	t.Run("Should reject an unparsable price bound", func(t *testing.T) {
		router := newTestRouter(&stubTaskService{}, &stubAlertService{})

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/tasks?price_min=cheap", nil)
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHandleCreateTask(t *testing.T) {
	t.Run("Should create a task for the token subject", func(t *testing.T) {
		tasks := &stubTaskService{}
		router := newTestRouter(tasks, &stubAlertService{})

		body := `{"title":"Ремонт на баня","category":"repair","location":"София","price":2500,"price_type":"fixed"}`
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/tasks", strings.NewReader(body))
		req.Header.Set("Authorization", "Bearer "+signTestToken(t, "user-7", testIssuer))
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusCreated, rec.Code)
		require.NotNil(t, tasks.created)
		assert.Equal(t, "user-7", tasks.created.PosterID)
		assert.Equal(t, models.CategoryRepair, tasks.created.Category)
	})
	t.Run("Should reject a missing bearer token", func(t *testing.T) {
		router := newTestRouter(&stubTaskService{}, &stubAlertService{})

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/tasks", strings.NewReader(`{}`))
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
	t.Run("Should reject a token from another issuer", func(t *testing.T) {
		router := newTestRouter(&stubTaskService{}, &stubAlertService{})

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/tasks", strings.NewReader(`{}`))
		req.Header.Set("Authorization", "Bearer "+signTestToken(t, "user-7", "someone-else"))
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
	t.Run("Should reject an invalid body", func(t *testing.T) {
		router := newTestRouter(&stubTaskService{}, &stubAlertService{})

		body := `{"title":"","category":"repair","location":"София","price":-5,"price_type":"fixed"}`
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/tasks", strings.NewReader(body))
		req.Header.Set("Authorization", "Bearer "+signTestToken(t, "user-7", testIssuer))
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHandleSetTaskStatus(t *testing.T) {
	t.Run("Should map a forbidden transition to 409", func(t *testing.T) {
		tasks := &stubTaskService{statusErr: services.ErrInvalidTransition}
		router := newTestRouter(tasks, &stubAlertService{})

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPatch, "/tasks/task-1/status", strings.NewReader(`{"status":"active"}`))
		req.Header.Set("Authorization", "Bearer "+signTestToken(t, "user-7", testIssuer))
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusConflict, rec.Code)
	})
	t.Run("Should map foreign ownership to 403", func(t *testing.T) {
		tasks := &stubTaskService{statusErr: services.ErrNotTaskPoster}
		router := newTestRouter(tasks, &stubAlertService{})

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPatch, "/tasks/task-1/status", strings.NewReader(`{"status":"assigned"}`))
		req.Header.Set("Authorization", "Bearer "+signTestToken(t, "user-9", testIssuer))
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}

func TestHandleCreateAlert(t *testing.T) {
	t.Run("Should map an unbounded subscription to 400", func(t *testing.T) {
		alerts := &stubAlertService{createErr: services.ErrSubscriptionUnbounded}
		router := newTestRouter(&stubTaskService{}, alerts)

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/alerts", strings.NewReader(`{}`))
		req.Header.Set("Authorization", "Bearer "+signTestToken(t, "user-7", testIssuer))
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
	t.Run("Should create a bounded subscription", func(t *testing.T) {
		router := newTestRouter(&stubTaskService{}, &stubAlertService{})

		body := `{"categories":["repair"],"locations":["София"],"min_budget":1000,"max_budget":3000,"frequency":"daily"}`
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/alerts", strings.NewReader(body))
		req.Header.Set("Authorization", "Bearer "+signTestToken(t, "user-7", testIssuer))
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusCreated, rec.Code)
	})
}
