package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"

	"kitchenbot/internal/models"
	"kitchenbot/internal/playground"
)

const defaultBaseURL = "http://localhost:8080"

// ApiClient talks to a running kitchenbot server
type ApiClient struct {
	httpClient *http.Client
	BaseURL    string
	Token      string
}

// RunSummary is one evaluation result as the server returns it
type RunSummary struct {
	RunID    string                 `json:"run_id"`
	Scenario string                 `json:"scenario"`
	Seed     int64                  `json:"seed"`
	Score    int                    `json:"score"`
	Metrics  map[string]interface{} `json:"metrics"`
	Debrief  string                 `json:"debrief,omitempty"`
}

// NewApiClient creates a client for KITCHENBOT_API_URL, authenticating
// evaluation requests with KITCHENBOT_TOKEN when it is set
func NewApiClient() *ApiClient {
	baseURL := os.Getenv("KITCHENBOT_API_URL")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	return &ApiClient{
		httpClient: &http.Client{
			// Waiting evaluations simulate minutes of play
			Timeout: time.Minute * 2,
		},
		BaseURL: baseURL,
		Token:   os.Getenv("KITCHENBOT_TOKEN"),
	}
}

// CheckHealth checks if the API is up and running
func (c *ApiClient) CheckHealth() (bool, error) {
	resp, err := c.httpClient.Get(c.BaseURL + "/health")
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	return resp.StatusCode == http.StatusOK, nil
}

// GetScenarios lists the scenarios the server can evaluate
func (c *ApiClient) GetScenarios() ([]playground.ScenarioInfo, error) {
	var scenarios []playground.ScenarioInfo
	if err := c.getJSON("/api/scenarios", &scenarios); err != nil {
		return nil, err
	}
	return scenarios, nil
}

// Evaluate runs a scenario on the server and waits for the result
func (c *ApiClient) Evaluate(scenario string, seed int64) (*RunSummary, error) {
	data, err := json.Marshal(playground.EvaluationRequest{Scenario: scenario, Seed: seed, Wait: true})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequest(http.MethodPost, c.BaseURL+"/api/evaluate", bytes.NewBuffer(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apiError(resp)
	}

	var summary RunSummary
	if err := json.NewDecoder(resp.Body).Decode(&summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

// GetRuns lists stored runs, newest first
func (c *ApiClient) GetRuns(scenario string, limit int) ([]models.RunRecord, error) {
	q := url.Values{}
	if scenario != "" {
		q.Set("scenario", scenario)
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}

	path := "/api/runs"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var runs []models.RunRecord
	if err := c.getJSON(path, &runs); err != nil {
		return nil, err
	}
	return runs, nil
}

func (c *ApiClient) getJSON(path string, v interface{}) error {
	resp, err := c.httpClient.Get(c.BaseURL + path)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return apiError(resp)
	}
	return json.NewDecoder(resp.Body).Decode(v)
}

// apiError turns an error response into an error, preferring the server's
// own message
func apiError(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)
	var payload struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(body, &payload) == nil && payload.Error != "" {
		return fmt.Errorf("request failed with status %d: %s", resp.StatusCode, payload.Error)
	}
	return fmt.Errorf("request failed with status %d", resp.StatusCode)
}
