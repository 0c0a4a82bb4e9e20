package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/sarafrika/elimika-availability-api/internal/dto"
	"github.com/sarafrika/elimika-availability-api/internal/models"
	appErrors "github.com/sarafrika/elimika-availability-api/pkg/errors"
	"github.com/sarafrika/elimika-availability-api/pkg/export"
)

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

type icsRenderer interface {
	Render(events []export.Event) ([]byte, error)
}

// ExportResult is a rendered schedule export.
type ExportResult struct {
	Payload     []byte
	ContentType string
	Filename    string
}

// ExportService renders an owner's computed timeline as CSV, PDF or an
// iCalendar feed.
type ExportService struct {
	timeline *TimelineService
	csv      csvRenderer
	pdf      pdfRenderer
	ics      icsRenderer
	logger   *zap.Logger
}

// NewExportService constructs an ExportService.
func NewExportService(timeline *TimelineService, csv csvRenderer, pdf pdfRenderer, ics icsRenderer, logger *zap.Logger) *ExportService {
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	if ics == nil {
		ics = export.NewICSExporter("")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{timeline: timeline, csv: csv, pdf: pdf, ics: ics, logger: logger}
}

// Generate computes the timeline and renders it in the requested format.
func (s *ExportService) Generate(ctx context.Context, req dto.TimelineRequest, format string) (*ExportResult, error) {
	resp, _, err := s.timeline.Compute(ctx, req)
	if err != nil {
		return nil, err
	}

	base := fmt.Sprintf("schedule-%s-%s", req.OwnerID, resp.WindowStart.Format("2006-01-02"))
	switch strings.ToLower(format) {
	case "csv":
		payload, err := s.csv.Render(timelineDataset(resp.Instances))
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv export")
		}
		return &ExportResult{Payload: payload, ContentType: "text/csv", Filename: base + ".csv"}, nil
	case "pdf":
		title := fmt.Sprintf("Schedule %s to %s", resp.WindowStart.Format("2006-01-02"), resp.WindowEnd.Format("2006-01-02"))
		payload, err := s.pdf.Render(timelineDataset(resp.Instances), title)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf export")
		}
		return &ExportResult{Payload: payload, ContentType: "application/pdf", Filename: base + ".pdf"}, nil
	case "ics":
		payload, err := s.ics.Render(timelineEvents(resp.Instances))
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render ics export")
		}
		return &ExportResult{Payload: payload, ContentType: "text/calendar", Filename: base + ".ics"}, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}
}

func timelineDataset(instances []models.ScheduleInstance) export.Dataset {
	headers := []string{"date", "start", "end", "status", "kind", "reason", "source"}
	rows := make([]map[string]string, 0, len(instances))
	for _, inst := range instances {
		reason := ""
		if inst.BlockReason != nil {
			reason = *inst.BlockReason
		}
		rows = append(rows, map[string]string{
			"date":   inst.Date.Format("2006-01-02"),
			"start":  inst.Start.Format("15:04"),
			"end":    inst.End.Format("15:04"),
			"status": string(inst.Status),
			"kind":   string(inst.RuleKind),
			"reason": reason,
			"source": inst.SourceRuleID,
		})
	}
	return export.Dataset{Headers: headers, Rows: rows}
}

func timelineEvents(instances []models.ScheduleInstance) []export.Event {
	events := make([]export.Event, 0, len(instances))
	for _, inst := range instances {
		summary := string(inst.Status)
		description := ""
		if inst.BlockReason != nil {
			description = *inst.BlockReason
		}
		events = append(events, export.Event{
			UID:         fmt.Sprintf("%s-%s@elimika", inst.SourceRuleID, inst.Date.Format("20060102")),
			Summary:     summary,
			Description: description,
			Start:       inst.Start,
			End:         inst.End,
			Tentative:   inst.Status == models.InstanceAvailable,
		})
	}
	return events
}
