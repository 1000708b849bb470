package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	apperrors "gift-market-backend/internal/common/errors"
	"gift-market-backend/internal/features/gift/models"
)

// HTTPFallback re-enters the add flow through POST /gifts/download on the
// public base URL, which may land on another instance.
type HTTPFallback struct {
	baseURL    string
	httpClient *http.Client
}

func NewHTTPFallback(baseURL string, timeout time.Duration) *HTTPFallback {
	return &HTTPFallback{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

type fallbackResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Code    string `json:"code"`
}

func (f *HTTPFallback) DownloadGift(ctx context.Context, owner models.TelegramID, giftLink string) error {
	body, err := json.Marshal(map[string]string{
		"telegramId": owner.String(),
		"gift_link":  giftLink,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.baseURL+"/gifts/download", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("fallback request: %w", err)
	}
	defer resp.Body.Close()

	var out fallbackResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return fmt.Errorf("fallback http %d: decode: %w", resp.StatusCode, err)
	}
	if resp.StatusCode == http.StatusConflict || out.Code == string(apperrors.ErrCodeDuplicate) {
		return fmt.Errorf("fallback http %d: %w", resp.StatusCode, ErrDuplicate)
	}
	if !out.Success {
		return fmt.Errorf("fallback http %d: %s (%s)", resp.StatusCode, out.Error, out.Code)
	}
	return nil
}
