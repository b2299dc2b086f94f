package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"CallWaitingAI/pkg/outbound"

	"github.com/sirupsen/logrus"
)

type supabaseStorage struct {
	baseURL string
	apiKey  string
	client  *http.Client
	log     *logrus.Logger
}

func newSupabase(baseURL, apiKey string, log *logrus.Logger) IStorage {
	return &supabaseStorage{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 10 * time.Second},
		log:     log,
	}
}

func (s *supabaseStorage) Upsert(ctx context.Context, table, key string, rec Record) (Record, error) {
	endpoint := fmt.Sprintf("%s/rest/v1/%s?on_conflict=%s", s.baseURL, table, url.QueryEscape(key))

	rows, err := s.post(ctx, "supabase.upsert", endpoint, rec, "resolution=merge-duplicates,return=representation")
	if err != nil {
		return nil, err
	}

	return firstRow(rows), nil
}

func (s *supabaseStorage) Insert(ctx context.Context, table string, rec Record) (Record, error) {
	endpoint := fmt.Sprintf("%s/rest/v1/%s", s.baseURL, table)

	rows, err := s.post(ctx, "supabase.insert", endpoint, rec, "return=representation")
	if err != nil {
		return nil, err
	}

	return firstRow(rows), nil
}

func (s *supabaseStorage) UpdateWhere(ctx context.Context, table string, where map[string]interface{}, patch Record) (int64, error) {
	const op = "supabase.update"

	endpoint := fmt.Sprintf("%s/rest/v1/%s", s.baseURL, table)
	query := url.Values{}
	for col, val := range where {
		query.Set(col, fmt.Sprintf("eq.%v", val))
	}
	endpoint += "?" + query.Encode()

	body, err := json.Marshal(patch)
	if err != nil {
		return 0, outbound.NewMalformed(op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, endpoint, bytes.NewReader(body))
	if err != nil {
		return 0, outbound.NewMalformed(op, err)
	}
	s.setHeaders(req, "return=representation")

	resp, err := s.client.Do(req)
	if err != nil {
		return 0, outbound.Classify(op, err)
	}
	defer resp.Body.Close()

	rows, err := decodeRows(op, resp)
	if err != nil {
		return 0, err
	}

	return int64(len(rows)), nil
}

func (s *supabaseStorage) post(ctx context.Context, op, endpoint string, rec Record, prefer string) ([]Record, error) {
	body, err := json.Marshal(rec)
	if err != nil {
		return nil, outbound.NewMalformed(op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, outbound.NewMalformed(op, err)
	}
	s.setHeaders(req, prefer)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, outbound.Classify(op, err)
	}
	defer resp.Body.Close()

	return decodeRows(op, resp)
}

func (s *supabaseStorage) setHeaders(req *http.Request, prefer string) {
	req.Header.Set("apikey", s.apiKey)
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Prefer", prefer)
}

func decodeRows(op string, resp *http.Response) ([]Record, error) {
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, outbound.NewMalformed(op, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, outbound.NewProtocol(op, resp.StatusCode, string(raw))
	}

	var rows []Record
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, outbound.NewMalformed(op, err)
	}

	return rows, nil
}

func firstRow(rows []Record) Record {
	if len(rows) == 0 {
		return nil
	}
	return rows[0]
}
