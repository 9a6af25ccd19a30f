package http

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/rerun-io/rowship/internal/domain"
	"github.com/rerun-io/rowship/internal/ports"
)

const tablesEndpoint = "/v1/ingest/tables"

// tableManifest is the JSON descriptor sent alongside the row payload.
type tableManifest struct {
	TableID        string `json:"table_id"`
	StreamID       string `json:"stream_id"`
	RowCount       int    `json:"row_count"`
	TotalSizeBytes uint64 `json:"total_size_bytes"`
	FirstRowID     uint64 `json:"first_row_id,omitempty"`
	LastRowID      uint64 `json:"last_row_id,omitempty"`
}

// TableSink implements ports.TableSink over HTTP. Each table is posted as a
// multipart body: a "manifest" field describing the table and a "rows" file
// holding the gzip-compressed JSONL rows.
type TableSink struct {
	client ports.HTTPClient
	logger ports.Logger
}

// NewTableSink creates a new HTTP table sink.
func NewTableSink(client ports.HTTPClient, logger ports.Logger) *TableSink {
	return &TableSink{
		client: client,
		logger: logger,
	}
}

// Send transmits one table to the remote service.
func (s *TableSink) Send(ctx context.Context, table domain.Table, metadata ports.SendMetadata) error {
	if table.Empty() {
		return nil
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	manifest := tableManifest{
		TableID:        string(table.ID),
		StreamID:       metadata.StreamID,
		RowCount:       table.RowCount(),
		TotalSizeBytes: table.TotalSizeBytes,
		FirstRowID:     uint64(table.Rows[0].ID),
		LastRowID:      uint64(table.LastRow().ID),
	}
	manifestJSON, err := json.Marshal(manifest)
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}

	manifestPart, err := writer.CreateFormField("manifest")
	if err != nil {
		return fmt.Errorf("create manifest field: %w", err)
	}
	if _, err := manifestPart.Write(manifestJSON); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}

	rowsPart, err := writer.CreateFormFile("rows", string(table.ID)+".jsonl.gz")
	if err != nil {
		return fmt.Errorf("create rows field: %w", err)
	}

	gz := gzip.NewWriter(rowsPart)
	enc := json.NewEncoder(gz)
	for i := range table.Rows {
		if err := enc.Encode(table.Rows[i].ToRecord()); err != nil {
			return fmt.Errorf("encode row: %w", err)
		}
	}
	if err := gz.Close(); err != nil {
		return fmt.Errorf("finalize rows payload: %w", err)
	}

	if err := writer.Close(); err != nil {
		return fmt.Errorf("finalize multipart: %w", err)
	}

	url := metadata.ServiceURL + tablesEndpoint
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+metadata.AuthKey)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("X-Agent-Hostname", metadata.Hostname)
	req.Header.Set("X-Agent-OSArch", metadata.OSArch)
	req.Header.Set("X-Rowship-Stream-Id", metadata.StreamID)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, string(respBody))
	}

	s.logger.Debug("table delivered",
		ports.String("table_id", string(table.ID)),
		ports.Int("rows", table.RowCount()),
		ports.Uint64("bytes", table.TotalSizeBytes),
	)
	return nil
}
