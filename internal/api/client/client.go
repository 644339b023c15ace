package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/reportdeck/internal/models"
	"github.com/reportdeck/internal/report"
)

type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

func NewClient() (*Client, error) {
	baseURL := os.Getenv("REPORTDECK_API_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}

	token := os.Getenv("REPORTDECK_TOKEN")
	if token == "" {
		return nil, fmt.Errorf("REPORTDECK_TOKEN environment variable is not set")
	}

	return &Client{
		baseURL: baseURL,
		token:   token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}, nil
}

type ListedReport struct {
	models.ScheduledReport
	ScheduleDescription string `json:"schedule_description"`
}

func (c *Client) ListReports() ([]ListedReport, error) {
	var reports []ListedReport
	if err := c.do(http.MethodGet, "/api/v1/reports", nil, &reports); err != nil {
		return nil, err
	}
	return reports, nil
}

func (c *Client) ExecuteReport(id uint) (*report.ExecutionResult, error) {
	var result report.ExecutionResult
	if err := c.do(http.MethodPost, fmt.Sprintf("/api/v1/reports/%d/execute", id), nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) DeleteReport(id uint) error {
	return c.do(http.MethodDelete, fmt.Sprintf("/api/v1/reports/%d", id), nil, nil)
}

func (c *Client) ListReportExecutions(id uint, limit int) ([]models.ReportExecution, error) {
	var execs []models.ReportExecution
	path := fmt.Sprintf("/api/v1/reports/%d/executions?limit=%d", id, limit)
	if err := c.do(http.MethodGet, path, nil, &execs); err != nil {
		return nil, err
	}
	return execs, nil
}

func (c *Client) ListEndpoints() ([]models.MonitoredEndpoint, error) {
	var endpoints []models.MonitoredEndpoint
	if err := c.do(http.MethodGet, "/api/v1/endpoints", nil, &endpoints); err != nil {
		return nil, err
	}
	return endpoints, nil
}

func (c *Client) TestEndpoint(id uint) (*models.EndpointCheck, error) {
	var check models.EndpointCheck
	if err := c.do(http.MethodPost, fmt.Sprintf("/api/v1/endpoints/%d/test", id), nil, &check); err != nil {
		return nil, err
	}
	return &check, nil
}

func (c *Client) do(method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %v", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequest(method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var apiErr struct {
			Error string `json:"error"`
		}
		data, _ := io.ReadAll(resp.Body)
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("API error (%d): %s", resp.StatusCode, apiErr.Error)
		}
		return fmt.Errorf("API error (%d): %s", resp.StatusCode, string(data))
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
