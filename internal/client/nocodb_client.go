package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/yourorg/stock-chat-service/internal/model"

	"go.uber.org/zap"
)

// NocoDBClient persists interaction history to an external NocoDB table.
// Writes are best-effort; the caller is expected to drop errors.
type NocoDBClient struct {
	baseURL    string
	token      string
	tableID    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewNocoDBClient creates a new NocoDB history client
func NewNocoDBClient(baseURL, token, tableID string, timeout time.Duration, logger *zap.Logger) *NocoDBClient {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &NocoDBClient{
		baseURL: baseURL,
		token:   token,
		tableID: tableID,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// Configured reports whether the store has usable coordinates
func (c *NocoDBClient) Configured() bool {
	return c.token != "" && c.tableID != ""
}

// nocoRecord is the wire shape of one history row in NocoDB
type nocoRecord struct {
	Question  string `json:"question"`
	Ticker    string `json:"ticker"`
	ChartType string `json:"chart_type"`
	Answer    string `json:"answer"`
	Timestamp string `json:"timestamp"`
}

// Save appends one interaction to the NocoDB table
func (c *NocoDBClient) Save(ctx context.Context, interaction *model.Interaction) error {
	record := nocoRecord{
		Question:  interaction.Question,
		Ticker:    interaction.Ticker,
		ChartType: interaction.ChartType,
		Answer:    interaction.Answer,
		Timestamp: interaction.CreatedAt.Format(time.RFC3339),
	}

	body, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal history record: %w", err)
	}

	reqURL := fmt.Sprintf("%s/api/v1/db/data/noco/%s", c.baseURL, c.tableID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("xc-token", c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to write history record: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("NocoDB returned status code %d: %s", resp.StatusCode, string(bodyBytes))
	}

	return nil
}

// List retrieves logged interactions from the NocoDB table
func (c *NocoDBClient) List(ctx context.Context, limit int) ([]model.Interaction, error) {
	reqURL := fmt.Sprintf("%s/api/v1/db/data/noco/%s?limit=%d", c.baseURL, c.tableID, limit)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("xc-token", c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("Failed to fetch history from NocoDB", zap.Error(err))
		return nil, fmt.Errorf("failed to fetch history: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		c.logger.Error("NocoDB API error response",
			zap.Int("statusCode", resp.StatusCode),
			zap.String("response", string(bodyBytes)))
		return nil, fmt.Errorf("NocoDB returned status code %d", resp.StatusCode)
	}

	var listResp struct {
		List []nocoRecord `json:"list"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&listResp); err != nil {
		return nil, fmt.Errorf("failed to decode history response: %w", err)
	}

	interactions := make([]model.Interaction, 0, len(listResp.List))
	for _, r := range listResp.List {
		createdAt, _ := time.Parse(time.RFC3339, r.Timestamp)
		interactions = append(interactions, model.Interaction{
			Question:  r.Question,
			Ticker:    r.Ticker,
			ChartType: r.ChartType,
			Answer:    r.Answer,
			CreatedAt: createdAt,
		})
	}

	return interactions, nil
}
