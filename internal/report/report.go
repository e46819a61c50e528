// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sergei Gurin

// Package report turns a run summary into the human-readable digest handed
// to the notification sink. Delivery itself (mail, chat, ...) is the sink's
// concern; this package only renders and dispatches.
package report

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/sgurin/geosync/internal/logger"
	"github.com/sgurin/geosync/models"
)

// Notifier is the sink a finished run is reported to. ok mirrors
// summary.Status() != StatusFailed for sinks that only want a flag.
type Notifier interface {
	Notify(ctx context.Context, summary *models.RunSummary, ok bool) error
}

// Render formats the summary as the plain-text digest used for
// notifications and archival.
func Render(summary *models.RunSummary) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Feature layer sync %s\n", summary.Started.Format("2006-01-02"))
	b.WriteString(strings.Repeat("=", 20) + "\n\n")

	fmt.Fprintf(&b, "Run ID: %s\n", summary.RunID)
	fmt.Fprintf(&b, "Start time: %s\n", summary.Started.Format("15:04:05"))
	fmt.Fprintf(&b, "End time: %s\n", summary.Finished.Format("15:04:05"))
	fmt.Fprintf(&b, "Duration: %s\n", summary.Duration().Round(time.Millisecond))

	if summary.SourceFile != "" {
		fmt.Fprintf(&b, "%d rows read from %s (%d rejected)\n", summary.RowsRead, summary.SourceFile, summary.RowsRejected)
	}
	fmt.Fprintf(&b, "%d features inserted, %d updated", summary.Inserted, summary.Updated)
	if summary.Deleted > 0 {
		fmt.Fprintf(&b, ", %d deleted", summary.Deleted)
	}
	if summary.WriteFailures > 0 {
		fmt.Fprintf(&b, ", %d write failures", summary.WriteFailures)
	}
	b.WriteString("\n")

	if summary.SymbologyUpdated {
		b.WriteString("Symbology: updated\n")
	} else {
		b.WriteString("Symbology: unchanged\n")
	}
	fmt.Fprintf(&b, "Status: %s\n", summary.Status())

	if len(summary.Warnings) > 0 {
		b.WriteString("\nWarnings:\n")
		for _, warning := range summary.Warnings {
			fmt.Fprintf(&b, "  - %s\n", warning)
		}
	}
	if len(summary.RejectionSamples) > 0 {
		b.WriteString("\nRejection samples:\n")
		for _, sample := range summary.RejectionSamples {
			fmt.Fprintf(&b, "  - %s\n", sample)
		}
	}
	if summary.Error != "" {
		fmt.Fprintf(&b, "\nError: %s\n", summary.Error)
	}

	return b.String()
}

// LogNotifier writes the digest to the structured log. It is always wired so
// the hosting platform's log collector sees every run outcome even when no
// webhook is configured.
type LogNotifier struct {
	logger *logger.Logger
}

func NewLogNotifier(log *logger.Logger) *LogNotifier {
	return &LogNotifier{logger: log}
}

// Notify implements [Notifier].
func (n *LogNotifier) Notify(_ context.Context, summary *models.RunSummary, ok bool) error {
	event := n.logger.Info()
	if !ok {
		event = n.logger.Error()
	}
	event.
		Str("run_id", summary.RunID).
		Str("status", string(summary.Status())).
		Str("report", Render(summary)).
		Msg("run finished")
	return nil
}

// WebhookNotifier POSTs the summary to a configured endpoint as JSON. The
// receiving side owns mail/chat delivery.
type WebhookNotifier struct {
	client *resty.Client
	url    string
}

func NewWebhookNotifier(url string) *WebhookNotifier {
	return &WebhookNotifier{client: resty.New(), url: url}
}

// Notify implements [Notifier].
func (n *WebhookNotifier) Notify(ctx context.Context, summary *models.RunSummary, ok bool) error {
	payload := struct {
		OK      bool               `json:"ok"`
		Status  models.RunStatus   `json:"status"`
		Report  string             `json:"report"`
		Summary *models.RunSummary `json:"summary"`
	}{OK: ok, Status: summary.Status(), Report: Render(summary), Summary: summary}

	resp, err := n.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(payload).
		Post(n.url)
	if err != nil {
		return fmt.Errorf("notify webhook: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("notify webhook: http %d", resp.StatusCode())
	}
	return nil
}

// Multi fans a notification out to every sink, returning the first error
// after all sinks have been attempted.
type Multi []Notifier

// Notify implements [Notifier].
func (m Multi) Notify(ctx context.Context, summary *models.RunSummary, ok bool) error {
	var firstErr error
	for _, notifier := range m {
		if err := notifier.Notify(ctx, summary, ok); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
