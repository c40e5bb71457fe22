package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"fleet-service/internal/config"
	"fleet-service/internal/utils"
)

type OdometerReading struct {
	NormalizedPlate string    `json:"normalized_plate"`
	OdometerKM      int64     `json:"odometer_km"`
	RecordedAt      time.Time `json:"recorded_at"`
}

type odometerResponse struct {
	Data *OdometerReading `json:"data"`
}

// TelematicsClient ходит во внешний телематический сервис за свежим
// пробегом. Сервис необязателен: при пустом URL клиент не создаётся и
// read model работает по сохранённому одометру.
type TelematicsClient struct {
	baseURL       string
	internalToken string
	httpClient    *http.Client
}

func NewTelematicsClient(cfg *config.Config) *TelematicsClient {
	if cfg.ExternalServices.TelematicsServiceURL == "" {
		return nil
	}
	return &TelematicsClient{
		baseURL:       cfg.ExternalServices.TelematicsServiceURL,
		internalToken: cfg.ExternalServices.TelematicsInternalToken,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// LatestOdometer возвращает последнее показание одометра по номеру.
func (c *TelematicsClient) LatestOdometer(ctx context.Context, plate string) (*OdometerReading, error) {
	normalizedPlate := utils.NormalizePlate(plate)
	if normalizedPlate == "" {
		return nil, fmt.Errorf("invalid plate number")
	}

	u, err := url.Parse(c.baseURL + "/internal/telematics/odometer")
	if err != nil {
		return nil, fmt.Errorf("invalid telematics service URL: %w", err)
	}
	q := u.Query()
	q.Set("plate", normalizedPlate)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if c.internalToken != "" {
		req.Header.Set("X-Internal-Token", c.internalToken)
	}

	// Повторяем сетевые ошибки с нарастающей паузой.
	var resp *http.Response
	var lastErr error
	maxRetries := 3
	for attempt := 0; attempt < maxRetries; attempt++ {
		resp, lastErr = c.httpClient.Do(req)
		if lastErr == nil {
			break
		}
		if attempt == maxRetries-1 {
			return nil, fmt.Errorf("failed to execute request after %d attempts: %w", maxRetries, lastErr)
		}
		time.Sleep(time.Duration(attempt+1) * 500 * time.Millisecond)
		req, _ = http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
		if c.internalToken != "" {
			req.Header.Set("X-Internal-Token", c.internalToken)
		}
	}
	if resp == nil {
		return nil, fmt.Errorf("failed to execute request: %w", lastErr)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("telematics service returned status %d: %s", resp.StatusCode, string(body))
	}

	var response odometerResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	return response.Data, nil
}
