package ticketing

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"cybot-be/internal/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Create(t *testing.T) {
	var got createRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/complaints", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"complaint_id":"622A9F6E","message":"ok"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", time.Second)
	receipt, err := c.Create(context.Background(), Submission{
		Name:    "Jane Doe",
		Phone:   "1234567890",
		Email:   "jane@example.com",
		Details: "Package never arrived",
	})
	require.NoError(t, err)
	assert.Equal(t, "622A9F6E", receipt.ID)

	assert.Equal(t, createRequest{
		Name:             "Jane Doe",
		PhoneNumber:      "1234567890",
		Email:            "jane@example.com",
		ComplaintDetails: "Package never arrived",
	}, got)
}

func TestClient_CreateResponses(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantID  string
		wantErr bool
	}{
		{"complaint_id", http.StatusOK, `{"complaint_id":"ABC123"}`, "ABC123", false},
		{"id fallback", http.StatusOK, `{"id":"XYZ789"}`, "XYZ789", false},
		{"numeric id", http.StatusOK, `{"complaint_id":12345678}`, "12345678", false},
		{"null id falls back", http.StatusOK, `{"complaint_id":null,"id":"XYZ789"}`, "XYZ789", false},
		{"no id", http.StatusOK, `{"message":"stored"}`, "", true},
		{"server error", http.StatusInternalServerError, `boom`, "", true},
		{"not json", http.StatusOK, `<html>`, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			receipt, err := NewClient(srv.URL, time.Second).Create(context.Background(), Submission{})
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, receipt.ID)
		})
	}
}

func TestClient_Fetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/complaints/ABC123":
			_, _ = w.Write([]byte(`{"_id":"ABC123","name":"Jane Doe","phone_number":"1234567890","email":"jane@example.com","complaint_details":"late","created_at":"2024-03-01T10:20:30Z"}`))
		case "/api/complaints/BROKEN1":
			w.WriteHeader(http.StatusBadGateway)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)

	complaint, err := c.Fetch(context.Background(), "ABC123")
	require.NoError(t, err)
	assert.Equal(t, "ABC123", complaint.ID())
	assert.Equal(t, "Jane Doe", complaint.Name)
	assert.Equal(t, "2024-03-01T10:20:30Z", complaint.CreatedAt)

	_, err = c.Fetch(context.Background(), "MISSING1")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = c.Fetch(context.Background(), "BROKEN1")
	assert.Error(t, err)
	assert.False(t, errors.Is(err, ErrNotFound))
}

func TestClient_FetchLooseTypes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"complaint_id":90210345,"name":"Jane Doe","phone_number":1234567890,"email":null,"complaint_details":"late","created_at":{"$date":"2024-03-01"}}`))
	}))
	defer srv.Close()

	complaint, err := NewClient(srv.URL, time.Second).Fetch(context.Background(), "90210345")
	require.NoError(t, err)
	assert.Equal(t, "90210345", complaint.ID())
	assert.Equal(t, "1234567890", complaint.PhoneNumber)
	assert.Empty(t, complaint.Email)
	assert.Equal(t, "late", complaint.ComplaintDetails)
	assert.JSONEq(t, `{"$date":"2024-03-01"}`, complaint.CreatedAt)
}

func TestComplaint_RoundTripsThroughCache(t *testing.T) {
	in := Complaint{ComplaintID: "ABC123", Name: "Jane Doe", PhoneNumber: "1234567890"}
	raw, err := json.Marshal(in)
	require.NoError(t, err)

	var out Complaint
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.Equal(t, in, out)
}

func TestClient_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	_, err := NewClient(srv.URL, time.Second).Create(context.Background(), Submission{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API error")
}

type memoryKV struct {
	mu     sync.Mutex
	data   map[string]string
	getErr error
}

func newMemoryKV() *memoryKV {
	return &memoryKV{data: map[string]string{}}
}

func (m *memoryKV) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return "", false, m.getErr
	}
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memoryKV) Set(_ context.Context, key, value string, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *memoryKV) Del(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

type countingService struct {
	fetches int
}

func (s *countingService) Create(_ context.Context, _ Submission) (*Receipt, error) {
	return &Receipt{ID: "NEW123"}, nil
}

func (s *countingService) Fetch(_ context.Context, id string) (*Complaint, error) {
	s.fetches++
	if id == "MISSING1" {
		return nil, ErrNotFound
	}
	return &Complaint{ComplaintID: id, Name: "Jane Doe"}, nil
}

func TestCachedClient_Fetch(t *testing.T) {
	svc := &countingService{}
	kv := newMemoryKV()
	c := NewCachedClient(svc, kv, time.Minute, logger.NewNopLogger())
	ctx := context.Background()

	first, err := c.Fetch(ctx, "ABC123")
	require.NoError(t, err)
	second, err := c.Fetch(ctx, "ABC123")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, svc.fetches)

	_, err = c.Fetch(ctx, "MISSING1")
	assert.ErrorIs(t, err, ErrNotFound)
	_, cached := kv.data[cacheKey("MISSING1")]
	assert.False(t, cached)
}

func TestCachedClient_CacheFailureFallsThrough(t *testing.T) {
	svc := &countingService{}
	kv := newMemoryKV()
	kv.getErr = errors.New("connection refused")
	c := NewCachedClient(svc, kv, time.Minute, logger.NewNopLogger())

	complaint, err := c.Fetch(context.Background(), "ABC123")
	require.NoError(t, err)
	assert.Equal(t, "ABC123", complaint.ID())
	assert.Equal(t, 1, svc.fetches)
}

func TestCachedClient_CreateInvalidates(t *testing.T) {
	kv := newMemoryKV()
	kv.data[cacheKey("NEW123")] = `{"complaint_id":"NEW123","name":"stale"}`
	c := NewCachedClient(&countingService{}, kv, time.Minute, logger.NewNopLogger())

	receipt, err := c.Create(context.Background(), Submission{Name: "Jane"})
	require.NoError(t, err)
	assert.Equal(t, "NEW123", receipt.ID)
	assert.NotContains(t, kv.data, cacheKey("NEW123"))
}
