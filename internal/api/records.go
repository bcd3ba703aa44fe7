package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	syncerrors "github.com/studykit/cardsync/internal/errors"
	"github.com/studykit/cardsync/internal/fieldmap"
	"github.com/studykit/cardsync/internal/types"
)

// FilterRule is one clause of the platform's filter query parameter.
type FilterRule struct {
	Field    string `json:"field"`
	Operator string `json:"operator"`
	Value    string `json:"value"`
}

// GetRecord fetches one record in raw format (synchronous).
func GetRecord(ctx context.Context, httpClient HTTPClient, baseURL, recordID string) (Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := types.ValidateRecordID(recordID); err != nil {
		return nil, syncerrors.NewValidationError(err)
	}
	reqURL := fmt.Sprintf("%s/v1/objects/%s/records/%s?format=raw", baseURL, fieldmap.ObjectKey, recordID)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := httpClient.Do(httpReq)
	if err != nil {
		return nil, syncerrors.NewNetworkError("get record", err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch resp.StatusCode {
	case http.StatusOK:
		var rec Record
		if err := json.NewDecoder(resp.Body).Decode(&rec); err != nil {
			return nil, err
		}
		return rec, nil
	case http.StatusNotFound:
		return nil, types.ErrNotFound
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, syncerrors.NewHTTPError(resp.StatusCode, string(body), "get record")
	}
}

// FindRecord locates a record by filter rules, returning the first match.
func FindRecord(ctx context.Context, httpClient HTTPClient, baseURL string, filters []FilterRule) (Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rules, err := json.Marshal(map[string]any{"match": "and", "rules": filters})
	if err != nil {
		return nil, err
	}
	reqURL := fmt.Sprintf("%s/v1/objects/%s/records?format=raw&filters=%s",
		baseURL, fieldmap.ObjectKey, url.QueryEscape(string(rules)))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := httpClient.Do(httpReq)
	if err != nil {
		return nil, syncerrors.NewNetworkError("find record", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, syncerrors.NewHTTPError(resp.StatusCode, string(body), "find record")
	}
	var page struct {
		Records []Record `json:"records"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, err
	}
	if len(page.Records) == 0 {
		return nil, types.ErrNotFound
	}
	return page.Records[0], nil
}

// UpdateRecord issues a partial-field PUT against the record.
func UpdateRecord(ctx context.Context, httpClient HTTPClient, baseURL, recordID string, payload Payload) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return syncerrors.NewValidationError(fmt.Errorf("encode payload: %w", err))
	}
	reqURL := fmt.Sprintf("%s/v1/objects/%s/records/%s", baseURL, fieldmap.ObjectKey, recordID)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPut, reqURL, bytes.NewBuffer(body))
	if err != nil {
		return err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	resp, err := httpClient.Do(httpReq)
	if err != nil {
		return syncerrors.NewNetworkError("update record", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return syncerrors.NewHTTPError(resp.StatusCode, string(respBody), "update record")
	}
	return nil
}
