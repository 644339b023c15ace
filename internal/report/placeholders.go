package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/reportdeck/internal/models"
)

const (
	dateLayout     = "2006-01-02"
	timeLayout     = "15:04"
	dateTimeLayout = "2006-01-02 15:04"
)

// substitute does a global literal find/replace per token. Unknown tokens
// are left untouched.
func substitute(s string, vars map[string]string) string {
	for name, value := range vars {
		s = strings.ReplaceAll(s, "{"+name+"}", value)
	}
	return s
}

// builtinVariables is the closed token set every subject/body supports.
func builtinVariables(rep *models.ScheduledReport, now, next time.Time, artifactURL, baseURL string) map[string]string {
	weekStart := startOfWeek(now)
	weekEnd := weekStart.AddDate(0, 0, 6)
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	monthEnd := monthStart.AddDate(0, 1, -1)

	nextExecution := "not scheduled"
	if !next.IsZero() {
		nextExecution = next.Format(dateTimeLayout)
	}

	baseURL = strings.TrimRight(baseURL, "/")

	return map[string]string{
		"date":             now.Format(dateLayout),
		"time":             now.Format(timeLayout),
		"report_name":      rep.Name,
		"execution_date":   now.Format(dateLayout),
		"execution_time":   now.Format(timeLayout),
		"next_execution":   nextExecution,
		"week_start":       weekStart.Format(dateLayout),
		"week_end":         weekEnd.Format(dateLayout),
		"month_start":      monthStart.Format(dateLayout),
		"month_end":        monthEnd.Format(dateLayout),
		"pdf_download_url": artifactURL,
		"report_url":       fmt.Sprintf("%s/reports/%d", baseURL, rep.ID),
		"dashboard_url":    baseURL,
		"custom_content":   rep.CustomContent,
	}
}

// customVariables resolves user-declared variables per kind. Query and
// formula variables are not executed live by the engine; they resolve to a
// labeled placeholder.
func customVariables(vars []models.TemplateVariable, now time.Time) map[string]string {
	resolved := make(map[string]string, len(vars))
	for _, v := range vars {
		switch v.Kind {
		case models.VariableStatic:
			resolved[v.Name] = v.Value
		case models.VariableTimestamp:
			resolved[v.Name] = now.Format(dateTimeLayout)
		case models.VariableQuery:
			resolved[v.Name] = fmt.Sprintf("[query: %s]", v.Value)
		case models.VariableFormula:
			resolved[v.Name] = fmt.Sprintf("[formula: %s]", v.Value)
		}
	}
	return resolved
}

// startOfWeek returns the Monday of now's week.
func startOfWeek(now time.Time) time.Time {
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	back := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -back)
}
