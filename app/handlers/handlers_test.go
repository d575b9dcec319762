package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	businessflow "github.com/amirphl/taskserial/business_flow"
	"github.com/amirphl/taskserial/repository"
	testingutil "github.com/amirphl/taskserial/testing"
	"github.com/amirphl/taskserial/utils"
	"github.com/gofiber/fiber/v3"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   struct {
		Code    string `json:"code"`
		Details any    `json:"details"`
	} `json:"error"`
}

// stubSequenceStore hands out numbers from memory or fails every call with err
type stubSequenceStore struct {
	mu       sync.Mutex
	counters map[string]uint64
	err      error
}

func (s *stubSequenceStore) NextValue(ctx context.Context, prefix string) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return 0, s.err
	}
	s.counters[prefix]++
	return s.counters[prefix], nil
}

type handlerEnv struct {
	app      *fiber.App
	store    *stubSequenceStore
	fixtures *testingutil.TestFixtures
}

func newHandlerEnv(t *testing.T) *handlerEnv {
	t.Helper()

	testDB, err := testingutil.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { testDB.TeardownTestDB() })

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	store := &stubSequenceStore{counters: make(map[string]uint64)}
	categoryRepo := repository.NewTaskCategoryRepository(testDB.DB)
	registry := businessflow.NewPrefixRegistry(categoryRepo)
	serials := businessflow.NewSerialNumberFlow(store, registry, logger)
	categories := businessflow.NewCategoryFlow(categoryRepo, registry, logger)

	serialHandler := NewSerialNumberHandler(serials, registry, logger)
	categoryHandler := NewCategoryHandler(categories, logger)

	app := fiber.New()
	api := app.Group("/api/v1")
	api.Post("/serial-numbers", serialHandler.Generate)
	api.Post("/serial-numbers/validate", serialHandler.Validate)
	api.Get("/prefixes/:prefix/uniqueness", serialHandler.CheckPrefixUniqueness)
	api.Get("/categories/:id/prefix-suggestion", serialHandler.SuggestPrefix)
	api.Post("/categories", categoryHandler.Create)
	api.Put("/categories/:id/prefix", categoryHandler.AssignPrefix)

	return &handlerEnv{
		app:      app,
		store:    store,
		fixtures: testingutil.NewTestFixtures(testDB),
	}
}

func (e *handlerEnv) do(t *testing.T, method, path string, body any) (*http.Response, envelope) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := e.app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp, env
}

func TestGenerateSerialNumber(t *testing.T) {
	env := newHandlerEnv(t)

	t.Run("by prefix", func(t *testing.T) {
		resp, body := env.do(t, http.MethodPost, "/api/v1/serial-numbers", map[string]string{"prefix": "wd"})
		require.Equal(t, fiber.StatusCreated, resp.StatusCode)
		assert.True(t, body.Success)

		var data struct {
			SerialNumber string `json:"serial_number"`
			Prefix       string `json:"prefix"`
			Number       uint64 `json:"number"`
		}
		require.NoError(t, json.Unmarshal(body.Data, &data))
		assert.Equal(t, "WD-00001", data.SerialNumber)
		assert.Equal(t, "WD", data.Prefix)
		assert.Equal(t, uint64(1), data.Number)

		_, body = env.do(t, http.MethodPost, "/api/v1/serial-numbers", map[string]string{"prefix": "WD"})
		require.NoError(t, json.Unmarshal(body.Data, &data))
		assert.Equal(t, "WD-00002", data.SerialNumber)
	})

	t.Run("by category", func(t *testing.T) {
		category, err := env.fixtures.CreateTestCategory("Customer Support", utils.ToPtr("CS"))
		require.NoError(t, err)

		resp, body := env.do(t, http.MethodPost, "/api/v1/serial-numbers", map[string]string{"category_id": category.UUID.String()})
		require.Equal(t, fiber.StatusCreated, resp.StatusCode)
		assert.Contains(t, string(body.Data), "CS-00001")
	})

	t.Run("category without prefix", func(t *testing.T) {
		category, err := env.fixtures.CreateTestCategory("Research", nil)
		require.NoError(t, err)

		resp, body := env.do(t, http.MethodPost, "/api/v1/serial-numbers", map[string]string{"category_id": category.UUID.String()})
		assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
		assert.Equal(t, "PREFIX_NOT_ASSIGNED", body.Error.Code)
	})

	t.Run("unknown category", func(t *testing.T) {
		resp, body := env.do(t, http.MethodPost, "/api/v1/serial-numbers", map[string]string{"category_id": "6f1c1d36-5d1c-4d0e-9d76-0b8f5e6f4b11"})
		assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "CATEGORY_NOT_FOUND", body.Error.Code)
	})

	t.Run("invalid prefix", func(t *testing.T) {
		resp, body := env.do(t, http.MethodPost, "/api/v1/serial-numbers", map[string]string{"prefix": "TOOLONG"})
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "VALIDATION_ERROR", body.Error.Code)
	})

	t.Run("neither or both fields", func(t *testing.T) {
		resp, _ := env.do(t, http.MethodPost, "/api/v1/serial-numbers", map[string]string{})
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

		resp, _ = env.do(t, http.MethodPost, "/api/v1/serial-numbers", map[string]string{
			"prefix":      "WD",
			"category_id": "6f1c1d36-5d1c-4d0e-9d76-0b8f5e6f4b11",
		})
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})
}

func TestGenerateSerialNumberStoreFailures(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		status     int
		code       string
		retryAfter string
	}{
		{
			name:       "conflict",
			err:        fmt.Errorf("%w: lost race", repository.ErrSerializationConflict),
			status:     fiber.StatusConflict,
			code:       "SERIALIZATION_CONFLICT",
			retryAfter: "1",
		},
		{
			name:   "unavailable",
			err:    fmt.Errorf("%w: connection refused", repository.ErrStoreUnavailable),
			status: fiber.StatusServiceUnavailable,
			code:   "STORE_UNAVAILABLE",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newHandlerEnv(t)
			env.store.err = tt.err

			resp, body := env.do(t, http.MethodPost, "/api/v1/serial-numbers", map[string]string{"prefix": "WD"})
			assert.Equal(t, tt.status, resp.StatusCode)
			assert.Equal(t, tt.code, body.Error.Code)
			assert.Equal(t, tt.retryAfter, resp.Header.Get(fiber.HeaderRetryAfter))
		})
	}
}

func TestValidateSerialNumber(t *testing.T) {
	env := newHandlerEnv(t)

	resp, body := env.do(t, http.MethodPost, "/api/v1/serial-numbers/validate", map[string]string{"serial_number": "WD-00042"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var data struct {
		Valid  bool    `json:"valid"`
		Prefix *string `json:"prefix"`
		Number *uint64 `json:"number"`
	}
	require.NoError(t, json.Unmarshal(body.Data, &data))
	assert.True(t, data.Valid)
	require.NotNil(t, data.Prefix)
	assert.Equal(t, "WD", *data.Prefix)
	require.NotNil(t, data.Number)
	assert.Equal(t, uint64(42), *data.Number)

	_, body = env.do(t, http.MethodPost, "/api/v1/serial-numbers/validate", map[string]string{"serial_number": "WD-42"})
	data.Prefix, data.Number = nil, nil
	require.NoError(t, json.Unmarshal(body.Data, &data))
	assert.False(t, data.Valid)
	assert.Nil(t, data.Prefix)
	assert.Nil(t, data.Number)

	resp, _ = env.do(t, http.MethodPost, "/api/v1/serial-numbers/validate", map[string]string{})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestCheckPrefixUniqueness(t *testing.T) {
	env := newHandlerEnv(t)
	_, err := env.fixtures.CreateTestCategory("Web Development", utils.ToPtr("WD"))
	require.NoError(t, err)

	var data struct {
		Prefix   string `json:"prefix"`
		IsUnique bool   `json:"is_unique"`
	}

	resp, body := env.do(t, http.MethodGet, "/api/v1/prefixes/wd/uniqueness", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(body.Data, &data))
	assert.Equal(t, "WD", data.Prefix)
	assert.False(t, data.IsUnique)

	_, body = env.do(t, http.MethodGet, "/api/v1/prefixes/QA/uniqueness", nil)
	require.NoError(t, json.Unmarshal(body.Data, &data))
	assert.True(t, data.IsUnique)

	resp, body = env.do(t, http.MethodGet, "/api/v1/prefixes/ABCDEF/uniqueness", nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "INVALID_FORMAT", body.Error.Code)
}

func TestSuggestPrefix(t *testing.T) {
	env := newHandlerEnv(t)
	_, err := env.fixtures.CreateTestCategory("Cloud Services", utils.ToPtr("CS"))
	require.NoError(t, err)
	category, err := env.fixtures.CreateTestCategory("Customer Support", nil)
	require.NoError(t, err)

	resp, body := env.do(t, http.MethodGet, "/api/v1/categories/"+category.UUID.String()+"/prefix-suggestion", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var data struct {
		CategoryName string `json:"category_name"`
		Prefix       string `json:"prefix"`
		IsUnique     bool   `json:"is_unique"`
	}
	require.NoError(t, json.Unmarshal(body.Data, &data))
	assert.Equal(t, "CS1", data.Prefix)
	assert.True(t, data.IsUnique)
	assert.Equal(t, "Customer Support", data.CategoryName)

	resp, body = env.do(t, http.MethodGet, "/api/v1/categories/not-a-uuid/prefix-suggestion", nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "CATEGORY_NOT_FOUND", body.Error.Code)
}

func TestCategoryEndpoints(t *testing.T) {
	env := newHandlerEnv(t)

	resp, body := env.do(t, http.MethodPost, "/api/v1/categories", map[string]string{"name": "Web Development", "prefix": "wd"})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var created struct {
		ID     string  `json:"id"`
		Prefix *string `json:"prefix"`
	}
	require.NoError(t, json.Unmarshal(body.Data, &created))
	require.NotNil(t, created.Prefix)
	assert.Equal(t, "WD", *created.Prefix)

	resp, body = env.do(t, http.MethodPost, "/api/v1/categories", map[string]string{"name": "Warehouse Duty", "prefix": "WD"})
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
	assert.Equal(t, "PREFIX_TAKEN", body.Error.Code)
	assert.Empty(t, resp.Header.Get(fiber.HeaderRetryAfter))

	resp, _ = env.do(t, http.MethodPost, "/api/v1/categories", map[string]string{"prefix": "QA"})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, body = env.do(t, http.MethodPut, "/api/v1/categories/"+created.ID+"/prefix", map[string]string{"prefix": "web"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(body.Data, &created))
	assert.Equal(t, "WEB", *created.Prefix)

	resp, _ = env.do(t, http.MethodPut, "/api/v1/categories/"+created.ID+"/prefix", map[string]string{"prefix": "W-B"})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, body = env.do(t, http.MethodPut, "/api/v1/categories/6f1c1d36-5d1c-4d0e-9d76-0b8f5e6f4b11/prefix", map[string]string{"prefix": "NEW"})
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "CATEGORY_NOT_FOUND", body.Error.Code)
}
