package worker

import (
	"context"
	"fmt"
	"log/slog"

	"bankstat/internal/amqp"
	"bankstat/internal/services"
)

// ReportBuilder builds a report and writes it through the configured sink.
type ReportBuilder interface {
	BuildAndSave(ctx context.Context, name string, p services.Params, filename string) (services.Result, error)
}

// ReportWorker turns queued report requests into saved report files.
type ReportWorker struct {
	builder ReportBuilder
}

func NewReportWorker(builder ReportBuilder) *ReportWorker {
	return &ReportWorker{builder: builder}
}

// HandleReportRequest processes a single report request from AMQP. Requests
// that can never succeed are logged and acknowledged; other failures are
// returned so the message is retried.
func (w *ReportWorker) HandleReportRequest(ctx context.Context, msg *amqp.ReportRequestMessage) error {
	slog.InfoContext(ctx, "Processing report request",
		"id", msg.ID,
		"report", msg.Report,
		"requested_at", msg.Timestamp)

	res, err := w.builder.BuildAndSave(ctx, msg.Report, services.ParamsFromMessage(msg), msg.Filename)
	if err != nil {
		if services.IsInvalidInput(err) {
			slog.WarnContext(ctx, "Dropping invalid report request",
				"id", msg.ID,
				"report", msg.Report,
				"error", err)
			return nil
		}
		return fmt.Errorf("build %s report: %w", msg.Report, err)
	}

	slog.InfoContext(ctx, "Report request completed",
		"id", msg.ID,
		"report", msg.Report,
		"records", res.Records,
		"path", res.Path)
	return nil
}
