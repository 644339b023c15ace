// Package report executes scheduled reports: it resolves the content
// source, renders and uploads the delivery artifact, substitutes email
// placeholders and dispatches the result, then settles bookkeeping so the
// schedule keeps going after a failed run.
package report

import (
	"context"
	"fmt"
	"html/template"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/reportdeck/internal/mailer"
	"github.com/reportdeck/internal/models"
	"github.com/reportdeck/internal/objectstore"
	"github.com/reportdeck/internal/render"
	"github.com/reportdeck/internal/schedule"
)

// Store is the slice of persistence the executor needs.
type Store interface {
	UpdateScheduledReport(ctx context.Context, id uint, patch map[string]any) error
	CreateReportExecution(ctx context.Context, exec *models.ReportExecution) error
	LatestArtifactURL(ctx context.Context, reportID uint) (string, error)
	GetTemplateByID(ctx context.Context, id uint) (*models.ReportTemplate, error)
	GetPresentationByID(ctx context.Context, id uint) (*models.Presentation, error)
	GetEmailTemplateByID(ctx context.Context, id uint) (*models.EmailTemplate, error)
}

// ExecutionResult is the settled outcome of one run.
type ExecutionResult struct {
	Success     bool       `json:"success"`
	ArtifactURL string     `json:"artifact_url,omitempty"`
	Error       string     `json:"error,omitempty"`
	StartedAt   time.Time  `json:"started_at"`
	FinishedAt  time.Time  `json:"finished_at"`
	NextRunAt   *time.Time `json:"next_run_at,omitempty"`
}

type Executor struct {
	store    Store
	renderer render.Renderer
	objects  objectstore.Store
	mail     mailer.Sender
	baseURL  string
	log      zerolog.Logger
	now      func() time.Time
}

func NewExecutor(store Store, renderer render.Renderer, objects objectstore.Store, mail mailer.Sender, baseURL string, log zerolog.Logger) *Executor {
	return &Executor{
		store:    store,
		renderer: renderer,
		objects:  objects,
		mail:     mail,
		baseURL:  baseURL,
		log:      log.With().Str("component", "report-executor").Logger(),
		now:      time.Now,
	}
}

// Execute runs the full pipeline for one report and settles bookkeeping.
// Errors never propagate: they come back inside the result. Each call is
// independent; concurrent executions share nothing but the store.
func (x *Executor) Execute(ctx context.Context, rep *models.ScheduledReport) ExecutionResult {
	started := x.now().UTC()
	artifactURL, runErr := x.run(ctx, rep)
	finished := x.now().UTC()

	result := ExecutionResult{
		Success:     runErr == nil,
		ArtifactURL: artifactURL,
		StartedAt:   started,
		FinishedAt:  finished,
	}
	if runErr != nil {
		result.Error = runErr.Error()
		x.log.Error().
			Uint("report_id", rep.ID).
			Str("report", rep.Name).
			Err(runErr).
			Msg("report execution failed")
	} else {
		x.log.Info().
			Uint("report_id", rep.ID).
			Str("report", rep.Name).
			Str("artifact_url", artifactURL).
			Msg("report executed")
	}

	// Recompute the next run even after a failure so one bad run never
	// stalls the schedule.
	patch := map[string]any{
		"execution_count":  rep.ExecutionCount + 1,
		"last_executed_at": finished,
	}
	rep.ExecutionCount++
	rep.LastExecutedAt = &finished

	if runErr == nil {
		patch["success_count"] = rep.SuccessCount + 1
		patch["last_error"] = ""
		rep.SuccessCount++
		rep.LastError = ""
	} else {
		patch["error_count"] = rep.ErrorCount + 1
		patch["last_error"] = runErr.Error()
		rep.ErrorCount++
		rep.LastError = runErr.Error()
	}

	if rep.Recurring() {
		next := schedule.NextExecutionOrFallback(*rep.CronExpression, rep.Timezone, finished)
		patch["next_run_at"] = next
		rep.NextRunAt = &next
		result.NextRunAt = &next
	}

	// Storage failures are best-effort: logged, not rolled back.
	if err := x.store.UpdateScheduledReport(ctx, rep.ID, patch); err != nil {
		x.log.Error().Uint("report_id", rep.ID).Err(err).Msg("failed to persist execution bookkeeping")
	}
	exec := &models.ReportExecution{
		ReportID:    rep.ID,
		Success:     result.Success,
		ArtifactURL: artifactURL,
		Error:       result.Error,
		StartedAt:   started,
		FinishedAt:  finished,
	}
	if err := x.store.CreateReportExecution(ctx, exec); err != nil {
		x.log.Error().Uint("report_id", rep.ID).Err(err).Msg("failed to persist execution record")
	}

	return result
}

func (x *Executor) run(ctx context.Context, rep *models.ScheduledReport) (string, error) {
	content, err := x.resolveContent(ctx, rep)
	if err != nil {
		return "", err
	}

	// A failed fresh render does not abort delivery; the email goes out
	// without the broken reference, falling back to the previous artifact
	// link when one exists.
	artifactURL := ""
	var artifact render.Artifact
	var renderErr error
	artifact, renderErr = x.renderer.Render(content, rep.FormatSettings)
	if renderErr != nil {
		renderErr = fmt.Errorf("%w: %v", ErrRenderFailure, renderErr)
	} else {
		key := fmt.Sprintf("reports/%d/%s%s", rep.ID, uuid.NewString(), artifact.Extension)
		artifactURL, err = x.objects.Upload(ctx, key, artifact.Bytes, artifact.ContentType)
		if err != nil {
			renderErr = fmt.Errorf("%w: upload: %v", ErrRenderFailure, err)
			artifactURL = ""
		}
	}

	linkURL := artifactURL
	if linkURL == "" {
		if prev, err := x.store.LatestArtifactURL(ctx, rep.ID); err == nil {
			linkURL = prev
		}
	}

	subject, body := x.resolveEmail(ctx, rep)

	nextRun := time.Time{}
	if rep.Recurring() {
		nextRun = schedule.NextExecutionOrFallback(*rep.CronExpression, rep.Timezone, x.now().UTC())
	}

	vars := builtinVariables(rep, x.now(), nextRun, linkURL, x.baseURL)
	for name, value := range customVariables(rep.TemplateVariables, x.now()) {
		vars[name] = value
	}
	subject = substitute(subject, vars)
	body = substitute(body, vars)

	msg := mailer.Message{
		To:      rep.Recipients,
		CC:      rep.CCList,
		BCC:     rep.BCCList,
		Subject: subject,
		HTML:    body,
	}
	if renderErr == nil && len(artifact.Bytes) > 0 {
		msg.Attachments = []mailer.Attachment{{
			Filename:    fmt.Sprintf("%s%s", sanitizeFilename(rep.Name), artifact.Extension),
			ContentType: artifact.ContentType,
			Data:        artifact.Bytes,
		}}
	}

	if err := x.mail.Send(msg); err != nil {
		return artifactURL, fmt.Errorf("%w: %v", ErrDeliveryFailure, err)
	}

	// The email went out; a render failure still settles as an error so
	// the resource surfaces its failing badge.
	return artifactURL, renderErr
}

func (x *Executor) resolveContent(ctx context.Context, rep *models.ScheduledReport) (render.Content, error) {
	switch {
	case rep.PresentationID != 0:
		pres, err := x.store.GetPresentationByID(ctx, rep.PresentationID)
		if err != nil {
			return render.Content{}, fmt.Errorf("%w: presentation %d: %v", ErrContentNotFound, rep.PresentationID, err)
		}
		content := render.Content{Title: pres.Name}
		for _, slide := range pres.Slides {
			content.Sections = append(content.Sections, render.Section{
				Heading: slide.Title,
				Body:    template.HTML(slide.Content),
			})
		}
		return content, nil

	case rep.TemplateID != 0:
		tmpl, err := x.store.GetTemplateByID(ctx, rep.TemplateID)
		if err != nil {
			return render.Content{}, fmt.Errorf("%w: template %d: %v", ErrContentNotFound, rep.TemplateID, err)
		}
		return render.Content{
			Title:    tmpl.Name,
			Sections: []render.Section{{Body: template.HTML(tmpl.HTML)}},
		}, nil
	}

	return render.Content{}, fmt.Errorf("%w: report %d has no content source", ErrContentNotFound, rep.ID)
}

func (x *Executor) resolveEmail(ctx context.Context, rep *models.ScheduledReport) (subject, body string) {
	subject = rep.EmailSubject
	body = rep.EmailBody

	if rep.EmailTemplateID != 0 {
		tmpl, err := x.store.GetEmailTemplateByID(ctx, rep.EmailTemplateID)
		if err != nil {
			// Missing email template falls back to the inline body.
			x.log.Warn().
				Uint("report_id", rep.ID).
				Uint("email_template_id", rep.EmailTemplateID).
				Err(err).
				Msg("email template missing, using inline body")
		} else {
			body = tmpl.HTML
			if subject == "" {
				subject = tmpl.Subject
			}
		}
	}

	if subject == "" {
		subject = fmt.Sprintf("Report: %s", rep.Name)
	}
	if body == "" {
		body = "<p>Your report {report_name} is ready: <a href=\"{pdf_download_url}\">{pdf_download_url}</a></p>"
	}
	return subject, body
}

func sanitizeFilename(name string) string {
	out := make([]rune, 0, len(name))
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			out = append(out, r)
		case r == ' ':
			out = append(out, '_')
		}
	}
	if len(out) == 0 {
		return "report"
	}
	return string(out)
}
