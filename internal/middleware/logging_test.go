package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/AnshRaj112/graceway-backend/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

var testActor = models.Actor{ID: primitive.NewObjectID(), Role: models.RoleUser}

func TestRequestLogger(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	var seen string
	h := RequestLogger(zap.New(core))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestID(r.Context())
		w.WriteHeader(http.StatusNotFound)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/prayers/abc", nil))

	id := rec.Header().Get(headerRequestID)
	_, err := uuid.Parse(id)
	require.NoError(t, err)
	assert.Equal(t, id, seen)

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, zapcore.WarnLevel, entry.Level)
	fields := entry.ContextMap()
	assert.Equal(t, int64(http.StatusNotFound), fields["status"])
	assert.Equal(t, "/api/prayers/abc", fields["path"])
	assert.Equal(t, id, fields["request_id"])
}

func TestRequestLoggerKeepsIncomingID(t *testing.T) {
	core, _ := observer.New(zapcore.InfoLevel)
	h := RequestLogger(zap.New(core))(ok)

	incoming := uuid.NewString()
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set(headerRequestID, incoming)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)
	assert.Equal(t, incoming, rec.Header().Get(headerRequestID))

	r.Header.Set(headerRequestID, "<script>")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, r)
	assert.NotEqual(t, "<script>", rec.Header().Get(headerRequestID))
}

func TestCORS(t *testing.T) {
	h := CORS([]string{"https://graceway.app"})(ok)

	r := httptest.NewRequest(http.MethodOptions, "/api/prayers", nil)
	r.Header.Set("Origin", "https://graceway.app")
	r.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)
	assert.Equal(t, "https://graceway.app", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))

	r = httptest.NewRequest(http.MethodGet, "/api/prayers", nil)
	r.Header.Set("Origin", "https://evil.example.com")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, r)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}
