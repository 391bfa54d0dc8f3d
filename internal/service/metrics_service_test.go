package service

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMetricsHandlerExposesDomainCounters(t *testing.T) {
	m := NewMetricsService()
	m.RecordEnrollment("created")
	m.RecordWizardStep(wizardStepInstructor, "committed")
	m.RecordImageStored()
	m.ObserveHTTPRequest(http.MethodGet, "/api/v1/courses", http.StatusOK, 10*time.Millisecond)
	m.RecordCacheOperation(true, time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := rec.Body.String()

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, body, `teachspace_enrollments_total{outcome="created"} 1`)
	assert.Contains(t, body, `teachspace_course_wizard_steps_total{outcome="committed",step="instructor"} 1`)
	assert.Contains(t, body, "teachspace_images_stored_total 1")
	assert.Contains(t, body, "cache_hit_ratio 1")
}

func TestMetricsNilSafe(t *testing.T) {
	var m *MetricsService
	m.RecordEnrollment("created")
	m.RecordImageStored()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
