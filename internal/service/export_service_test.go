package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sarafrika/elimika-availability-api/internal/models"
	appErrors "github.com/sarafrika/elimika-availability-api/pkg/errors"
)

func newExportFixture() *ExportService {
	timeline := NewTimelineService(ownerRulesStub{rules: []models.AvailabilityRule{tuesdayRule("rule-1")}}, ownerBookingsStub{}, nil, nil, TimelineConfig{}, nil)
	return NewExportService(timeline, nil, nil, nil, nil)
}

func TestExportServiceCSV(t *testing.T) {
	svc := newExportFixture()

	result, err := svc.Generate(context.Background(), timelineRequest(), "csv")
	require.NoError(t, err)
	assert.Equal(t, "text/csv", result.ContentType)
	assert.True(t, strings.HasSuffix(result.Filename, ".csv"))

	body := string(result.Payload)
	assert.Contains(t, body, "date,start,end,status,kind,reason,source")
	assert.Contains(t, body, "2025-10-07")
	assert.Contains(t, body, "AVAILABLE")
}

func TestExportServiceICS(t *testing.T) {
	svc := newExportFixture()

	result, err := svc.Generate(context.Background(), timelineRequest(), "ics")
	require.NoError(t, err)
	assert.Equal(t, "text/calendar", result.ContentType)

	body := string(result.Payload)
	assert.Contains(t, body, "BEGIN:VCALENDAR")
	assert.Contains(t, body, "BEGIN:VEVENT")
	assert.Contains(t, body, "rule-1-20251007@elimika")
}

func TestExportServicePDF(t *testing.T) {
	svc := newExportFixture()

	result, err := svc.Generate(context.Background(), timelineRequest(), "pdf")
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", result.ContentType)
	assert.True(t, len(result.Payload) > 0)
	assert.Equal(t, "%PDF", string(result.Payload[:4]))
}

func TestExportServiceUnsupportedFormat(t *testing.T) {
	svc := newExportFixture()

	_, err := svc.Generate(context.Background(), timelineRequest(), "xlsx")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
