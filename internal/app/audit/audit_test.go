package audit

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emre/campuserp/internal/app/models"
)

type captureRecorder struct {
	mu      sync.Mutex
	entries []*models.AuditLog
}

func (r *captureRecorder) Record(ctx context.Context, entry *models.AuditLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entry)
	return nil
}

func (r *captureRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

func (r *captureRecorder) last() *models.AuditLog {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.entries) == 0 {
		return nil
	}
	return r.entries[len(r.entries)-1]
}

func newAuditRouter(recorder Recorder, handler gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set("userID", int64(7))
		c.Set("role", string(models.RoleAdmin))
	})
	router.Use(Middleware(recorder))
	router.POST("/resource", handler)
	router.POST("/resource/fail", handler)
	router.GET("/resource", handler)
	return router
}

func TestMiddlewareRecordsMutation(t *testing.T) {
	recorder := &captureRecorder{}
	router := newAuditRouter(recorder, func(c *gin.Context) {
		Set(c, "user.create", "user", 99, "Created user jdoe")
		c.JSON(http.StatusCreated, gin.H{"id": 99})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/resource", nil)
	req.Header.Set("User-Agent", "campuserp-test/1.0")
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code)

	assert.Eventually(t, func() bool { return recorder.count() == 1 }, time.Second, 10*time.Millisecond)

	entry := recorder.last()
	require.NotNil(t, entry)
	assert.Equal(t, "user.create", entry.Action)
	assert.Equal(t, "user", entry.ResourceType)
	assert.Equal(t, int64(99), entry.ResourceID)
	assert.Equal(t, "Created user jdoe", entry.Description)
	assert.Equal(t, int64(7), entry.ActorID)
	assert.Equal(t, models.RoleAdmin, entry.ActorRole)
	assert.Equal(t, "campuserp-test/1.0", entry.UserAgent)
	assert.False(t, entry.CreatedAt.IsZero())
}

func TestMiddlewareSkipsReads(t *testing.T) {
	recorder := &captureRecorder{}
	router := newAuditRouter(recorder, func(c *gin.Context) {
		Set(c, "user.read", "user", 99, "should never be stored")
		c.JSON(http.StatusOK, gin.H{})
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/resource", nil))
	require.Equal(t, http.StatusOK, w.Code)

	time.Sleep(50 * time.Millisecond)
	assert.Zero(t, recorder.count())
}

func TestMiddlewareSkipsFailedResponses(t *testing.T) {
	recorder := &captureRecorder{}
	router := newAuditRouter(recorder, func(c *gin.Context) {
		Set(c, "user.create", "user", 99, "creation that failed")
		c.JSON(http.StatusConflict, gin.H{})
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("POST", "/resource/fail", nil))
	require.Equal(t, http.StatusConflict, w.Code)

	time.Sleep(50 * time.Millisecond)
	assert.Zero(t, recorder.count())
}

func TestMiddlewareIgnoresRequestsWithoutEntry(t *testing.T) {
	recorder := &captureRecorder{}
	router := newAuditRouter(recorder, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{})
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("POST", "/resource", nil))
	require.Equal(t, http.StatusOK, w.Code)

	time.Sleep(50 * time.Millisecond)
	assert.Zero(t, recorder.count())
}

func TestMiddlewareKeepsLastEntryOnly(t *testing.T) {
	recorder := &captureRecorder{}
	router := newAuditRouter(recorder, func(c *gin.Context) {
		Set(c, "fee.create", "fee", 1, "first declaration")
		Set(c, "fee.pay", "fee", 2, "second declaration wins")
		c.JSON(http.StatusOK, gin.H{})
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("POST", "/resource", nil))
	require.Equal(t, http.StatusOK, w.Code)

	assert.Eventually(t, func() bool { return recorder.count() == 1 }, time.Second, 10*time.Millisecond)
	assert.Equal(t, "fee.pay", recorder.last().Action)
}
