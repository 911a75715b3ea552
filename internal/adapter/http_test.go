// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 FitSync Authors

package adapter

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fitsync/fitsync/internal/config"
	"github.com/fitsync/fitsync/internal/logger"
	"github.com/fitsync/fitsync/models"
)

// newTestAdapter builds an httpRemoteAdapter pointed at the test server.
func newTestAdapter(t *testing.T, serverURL string) *httpRemoteAdapter {
	t.Helper()
	log := logger.Nop()
	adapterCfg := config.ClientAdapter{Address: serverURL, RequestTimeout: 5 * time.Second}
	appCfg := config.ClientApp{APIToken: "test-token", UserID: "user-1"}

	a, err := NewHTTPRemoteAdapter(adapterCfg, appCfg, log)
	require.NoError(t, err)
	return a.(*httpRemoteAdapter)
}

func TestNewHTTPRemoteAdapter_InvalidAddress(t *testing.T) {
	_, err := NewHTTPRemoteAdapter(config.ClientAdapter{Address: "   "}, config.ClientApp{}, logger.Nop())
	require.Error(t, err)
}

// ── List ────────────────────────────────────────────────────────────────────

func TestList_DecodesNestedRows(t *testing.T) {
	rows := []models.EntityRow{
		{
			ID:     "srv-1",
			UserID: "user-1",
			Type:   "workout",
			Name:   "Push Day",
			Exercises: []models.ExerciseRow{
				{
					ID: "e-2", WorkoutID: "srv-1", Name: "Dips", OrderIndex: 1,
				},
				{
					ID: "e-1", WorkoutID: "srv-1", Name: "Bench Press", OrderIndex: 0,
					Sets: []models.SetRow{{ID: "s-1", ExerciseID: "e-1", Reps: 5, WeightKg: 80}},
				},
			},
		},
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/entities", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(rows)
	}))
	defer srv.Close()

	a := newTestAdapter(t, srv.URL)
	got, err := a.List(context.Background(), nil)

	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Len(t, got[0].Exercises, 2)
	// children come back re-sorted by their explicit order index
	assert.Equal(t, "Bench Press", got[0].Exercises[0].Name)
	assert.Equal(t, "Dips", got[0].Exercises[1].Name)
	assert.Empty(t, got[0].SyncStatus)
}

func TestList_SinceQueryParam(t *testing.T) {
	since := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, since.Format(time.RFC3339Nano), r.URL.Query().Get("updated_since"))
		_, _ = w.Write([]byte("[]"))
	}))
	defer srv.Close()

	a := newTestAdapter(t, srv.URL)
	got, err := a.List(context.Background(), &since)

	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestList_Unauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte("token expired"))
	}))
	defer srv.Close()

	a := newTestAdapter(t, srv.URL)
	_, err := a.List(context.Background(), nil)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

// ── Create ──────────────────────────────────────────────────────────────────

func TestCreate_ReturnsServerAssignedID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/entities", r.URL.Path)

		var row models.EntityRow
		require.NoError(t, json.NewDecoder(r.Body).Decode(&row))
		assert.Equal(t, "local-abc", row.ID)

		row.ID = "srv-42"
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(row)
	}))
	defer srv.Close()

	a := newTestAdapter(t, srv.URL)
	got, err := a.Create(context.Background(), models.Entity{
		ID:     "local-abc",
		UserID: "user-1",
		Type:   models.EntityWorkout,
		Name:   "Push Day",
	})

	require.NoError(t, err)
	assert.Equal(t, "srv-42", got.ID)
	assert.Equal(t, "Push Day", got.Name)
}

func TestCreate_Unprocessable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte("date out of range"))
	}))
	defer srv.Close()

	a := newTestAdapter(t, srv.URL)
	_, err := a.Create(context.Background(), models.Entity{Type: models.EntityWorkout})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnprocessable)
	assert.True(t, IsPermanent(err))
}

// ── Update / Delete ─────────────────────────────────────────────────────────

func TestUpdate_TargetsEntityPath(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/api/entities/srv-7", r.URL.Path)

		var row models.EntityRow
		require.NoError(t, json.NewDecoder(r.Body).Decode(&row))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(row)
	}))
	defer srv.Close()

	a := newTestAdapter(t, srv.URL)
	got, err := a.Update(context.Background(), models.Entity{
		ID:   "srv-7",
		Type: models.EntityRestDay,
		Name: "Recovery",
	})

	require.NoError(t, err)
	assert.Equal(t, "srv-7", got.ID)
}

func TestUpdate_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	a := newTestAdapter(t, srv.URL)
	_, err := a.Update(context.Background(), models.Entity{ID: "srv-gone"})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDelete_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/api/entities/srv-7", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	a := newTestAdapter(t, srv.URL)
	require.NoError(t, a.Delete(context.Background(), "srv-7"))
}

// ── Templates ───────────────────────────────────────────────────────────────

func TestCreateTemplate_RoundTrip(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/templates", r.URL.Path)

		var row models.TemplateRow
		require.NoError(t, json.NewDecoder(r.Body).Decode(&row))
		row.ID = "tpl-1"
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(row)
	}))
	defer srv.Close()

	a := newTestAdapter(t, srv.URL)
	got, err := a.CreateTemplate(context.Background(), models.WorkoutTemplate{
		ID:     "local-tpl",
		UserID: "user-1",
		Name:   "5x5",
		Exercises: []models.Exercise{
			{Name: "Squat", Sets: []models.Set{{Reps: 5, Weight: 100}}},
		},
	})

	require.NoError(t, err)
	assert.Equal(t, "tpl-1", got.ID)
	require.Len(t, got.Exercises, 1)
	assert.Equal(t, "Squat", got.Exercises[0].Name)
}

// ── Ping ────────────────────────────────────────────────────────────────────

func TestPing_Online(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/health", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	a := newTestAdapter(t, srv.URL)
	assert.NoError(t, a.Ping(context.Background()))
}

func TestPing_ServerDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	a := newTestAdapter(t, srv.URL)
	assert.Error(t, a.Ping(context.Background()))
}
