package report

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reportdeck/internal/mailer"
	"github.com/reportdeck/internal/models"
	"github.com/reportdeck/internal/render"
)

type fakeStore struct {
	templates      map[uint]*models.ReportTemplate
	presentations  map[uint]*models.Presentation
	emailTemplates map[uint]*models.EmailTemplate
	latestArtifact string

	patches []map[string]any
	execs   []*models.ReportExecution
}

func (f *fakeStore) UpdateScheduledReport(ctx context.Context, id uint, patch map[string]any) error {
	f.patches = append(f.patches, patch)
	return nil
}

func (f *fakeStore) CreateReportExecution(ctx context.Context, exec *models.ReportExecution) error {
	f.execs = append(f.execs, exec)
	return nil
}

func (f *fakeStore) LatestArtifactURL(ctx context.Context, reportID uint) (string, error) {
	return f.latestArtifact, nil
}

func (f *fakeStore) GetTemplateByID(ctx context.Context, id uint) (*models.ReportTemplate, error) {
	if tmpl, ok := f.templates[id]; ok {
		return tmpl, nil
	}
	return nil, fmt.Errorf("template %d not found", id)
}

func (f *fakeStore) GetPresentationByID(ctx context.Context, id uint) (*models.Presentation, error) {
	if pres, ok := f.presentations[id]; ok {
		return pres, nil
	}
	return nil, fmt.Errorf("presentation %d not found", id)
}

func (f *fakeStore) GetEmailTemplateByID(ctx context.Context, id uint) (*models.EmailTemplate, error) {
	if tmpl, ok := f.emailTemplates[id]; ok {
		return tmpl, nil
	}
	return nil, fmt.Errorf("email template %d not found", id)
}

type fakeRenderer struct {
	err error
}

func (f *fakeRenderer) Render(content render.Content, settings models.FormatSettings) (render.Artifact, error) {
	if f.err != nil {
		return render.Artifact{}, f.err
	}
	return render.Artifact{
		Bytes:       []byte("<html>" + content.Title + "</html>"),
		ContentType: "text/html; charset=utf-8",
		Extension:   ".html",
	}, nil
}

type fakeObjects struct {
	err  error
	keys []string
}

func (f *fakeObjects) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.keys = append(f.keys, key)
	return "https://files.test/" + key, nil
}

type fakeMailer struct {
	err  error
	sent []mailer.Message
}

func (f *fakeMailer) Send(msg mailer.Message) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msg)
	return nil
}

func cronExpr(expr string) *string { return &expr }

func testReport() *models.ScheduledReport {
	rep := &models.ScheduledReport{
		Name:           "Weekly Sales",
		TemplateID:     1,
		CronExpression: cronExpr("0 9 * * 1"),
		Timezone:       "UTC",
		Status:         models.ReportStatusActive,
		Recipients:     []string{"team@example.com"},
		EmailSubject:   "{report_name} for {date}",
		EmailBody:      "Report {report_name} generated at {execution_date}",
	}
	rep.ID = 1
	return rep
}

func newTestExecutor(store *fakeStore, renderer *fakeRenderer, objects *fakeObjects, mail *fakeMailer) *Executor {
	if store.templates == nil {
		store.templates = map[uint]*models.ReportTemplate{
			1: {Name: "Sales", HTML: "<p>totals</p>"},
		}
	}
	return NewExecutor(store, renderer, objects, mail, "https://app.test", zerolog.Nop())
}

func TestExecute_Success(t *testing.T) {
	store := &fakeStore{}
	mail := &fakeMailer{}
	x := newTestExecutor(store, &fakeRenderer{}, &fakeObjects{}, mail)
	rep := testReport()

	result := x.Execute(context.Background(), rep)

	require.True(t, result.Success)
	assert.Contains(t, result.ArtifactURL, "https://files.test/reports/1/")
	require.NotNil(t, result.NextRunAt)

	require.Len(t, mail.sent, 1)
	msg := mail.sent[0]
	assert.Equal(t, []string{"team@example.com"}, msg.To)
	assert.Contains(t, msg.Subject, "Weekly Sales")
	assert.Contains(t, msg.HTML, "Weekly Sales")
	assert.NotContains(t, msg.HTML, "{report_name}")
	require.Len(t, msg.Attachments, 1)
	assert.Equal(t, "Weekly_Sales.html", msg.Attachments[0].Filename)

	// Bookkeeping: counts, cleared error and recomputed next run.
	require.Len(t, store.patches, 1)
	patch := store.patches[0]
	assert.Equal(t, 1, patch["execution_count"])
	assert.Equal(t, 1, patch["success_count"])
	assert.Equal(t, "", patch["last_error"])
	assert.NotNil(t, patch["next_run_at"])

	assert.Equal(t, rep.ExecutionCount, rep.SuccessCount+rep.ErrorCount)

	require.Len(t, store.execs, 1)
	assert.True(t, store.execs[0].Success)
}

func TestExecute_ContentNotFound(t *testing.T) {
	store := &fakeStore{templates: map[uint]*models.ReportTemplate{}}
	mail := &fakeMailer{}
	x := newTestExecutor(store, &fakeRenderer{}, &fakeObjects{}, mail)
	rep := testReport()

	result := x.Execute(context.Background(), rep)

	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "content not found")
	assert.Empty(t, mail.sent, "no email goes out without a content source")

	require.Len(t, store.patches, 1)
	assert.Equal(t, 1, store.patches[0]["error_count"])
	assert.Equal(t, rep.ExecutionCount, rep.SuccessCount+rep.ErrorCount)
}

func TestExecute_DeliveryFailureKeepsSchedule(t *testing.T) {
	store := &fakeStore{}
	mail := &fakeMailer{err: errors.New("smtp unreachable")}
	x := newTestExecutor(store, &fakeRenderer{}, &fakeObjects{}, mail)
	rep := testReport()

	result := x.Execute(context.Background(), rep)

	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "delivery failure")

	// A failed run must not stall the schedule.
	require.NotNil(t, result.NextRunAt)
	require.Len(t, store.patches, 1)
	assert.NotNil(t, store.patches[0]["next_run_at"])
	assert.Equal(t, "delivery failure: smtp unreachable", rep.LastError)
	assert.Equal(t, rep.ExecutionCount, rep.SuccessCount+rep.ErrorCount)
}

func TestExecute_RenderFailureStillDelivers(t *testing.T) {
	store := &fakeStore{latestArtifact: "https://files.test/reports/1/previous.html"}
	mail := &fakeMailer{}
	x := newTestExecutor(store, &fakeRenderer{err: errors.New("template exploded")}, &fakeObjects{}, mail)
	rep := testReport()
	rep.EmailBody = "Download: {pdf_download_url}"

	result := x.Execute(context.Background(), rep)

	// The email still goes out, without the broken attachment, linking
	// the previous artifact instead.
	require.Len(t, mail.sent, 1)
	assert.Empty(t, mail.sent[0].Attachments)
	assert.Contains(t, mail.sent[0].HTML, "previous.html")

	// The run still settles as an error so the failing badge shows.
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "render failure")
}

func TestExecute_UploadFailureSkipsAttachment(t *testing.T) {
	store := &fakeStore{}
	mail := &fakeMailer{}
	x := newTestExecutor(store, &fakeRenderer{}, &fakeObjects{err: errors.New("disk full")}, mail)
	rep := testReport()

	result := x.Execute(context.Background(), rep)

	assert.False(t, result.Success)
	assert.Empty(t, result.ArtifactURL)
	require.Len(t, mail.sent, 1)
	assert.Empty(t, mail.sent[0].Attachments)
}

func TestExecute_OneShotComputesNoNextRun(t *testing.T) {
	store := &fakeStore{}
	mail := &fakeMailer{}
	x := newTestExecutor(store, &fakeRenderer{}, &fakeObjects{}, mail)

	rep := testReport()
	rep.CronExpression = nil
	rep.OneShot = true
	rep.Status = models.ReportStatusCompleted

	result := x.Execute(context.Background(), rep)

	require.True(t, result.Success)
	assert.Nil(t, result.NextRunAt)
	require.Len(t, store.patches, 1)
	_, hasNext := store.patches[0]["next_run_at"]
	assert.False(t, hasNext)
}

func TestExecute_EmailTemplateBody(t *testing.T) {
	store := &fakeStore{
		emailTemplates: map[uint]*models.EmailTemplate{
			4: {Subject: "Scheduled delivery", HTML: "<p>{custom_content}</p>"},
		},
	}
	mail := &fakeMailer{}
	x := newTestExecutor(store, &fakeRenderer{}, &fakeObjects{}, mail)

	rep := testReport()
	rep.EmailSubject = ""
	rep.EmailTemplateID = 4
	rep.CustomContent = "Numbers are up."

	result := x.Execute(context.Background(), rep)

	require.True(t, result.Success)
	require.Len(t, mail.sent, 1)
	assert.Equal(t, "Scheduled delivery", mail.sent[0].Subject)
	assert.Contains(t, mail.sent[0].HTML, "Numbers are up.")
}

func TestExecute_PresentationContent(t *testing.T) {
	store := &fakeStore{
		presentations: map[uint]*models.Presentation{
			2: {
				Name: "Q1 Deck",
				Slides: []models.Slide{
					{Position: 0, Title: "Overview", Content: "<p>intro</p>"},
					{Position: 1, Title: "Numbers", Content: "<p>charts</p>"},
				},
			},
		},
	}
	mail := &fakeMailer{}
	x := newTestExecutor(store, &fakeRenderer{}, &fakeObjects{}, mail)

	rep := testReport()
	rep.TemplateID = 0
	rep.PresentationID = 2

	result := x.Execute(context.Background(), rep)

	require.True(t, result.Success)
	require.Len(t, mail.sent, 1)
	require.Len(t, mail.sent[0].Attachments, 1)
	assert.Contains(t, string(mail.sent[0].Attachments[0].Data), "Q1 Deck")
}
