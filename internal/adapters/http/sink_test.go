package http

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rerun-io/rowship/internal/domain"
	"github.com/rerun-io/rowship/internal/ports"
)

// mockLogger implements ports.Logger for testing.
type mockLogger struct{}

func (mockLogger) Debug(msg string, fields ...ports.Field) {}
func (mockLogger) Info(msg string, fields ...ports.Field)  {}
func (mockLogger) Warn(msg string, fields ...ports.Field)  {}
func (mockLogger) Error(msg string, fields ...ports.Field) {}

func testTable(t *testing.T, n int) domain.Table {
	t.Helper()
	rows := make([]domain.Row, 0, n)
	for i := 0; i < n; i++ {
		rows = append(rows, domain.NewRow("sink/test", domain.TimePoint{"tick": int64(i)}, 1, []domain.Cell{
			{Component: "value", Data: []byte{byte(i), byte(i + 1)}},
		}))
	}
	return domain.TableFromRows(domain.NewTableID(), rows)
}

func TestTableSink_Send(t *testing.T) {
	var (
		gotPath    string
		gotAuth    string
		gotStream  string
		gotMan     tableManifest
		gotRecords []domain.RowRecord
	)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotStream = r.Header.Get("X-Rowship-Stream-Id")

		if err := r.ParseMultipartForm(32 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if err := json.Unmarshal([]byte(r.FormValue("manifest")), &gotMan); err != nil {
			t.Errorf("decode manifest: %v", err)
		}

		files := r.MultipartForm.File["rows"]
		if len(files) != 1 {
			t.Fatalf("got %d rows parts, want 1", len(files))
		}
		f, err := files[0].Open()
		if err != nil {
			t.Fatalf("open rows part: %v", err)
		}
		defer f.Close()

		gz, err := gzip.NewReader(f)
		if err != nil {
			t.Fatalf("gunzip rows part: %v", err)
		}
		dec := json.NewDecoder(gz)
		for {
			var rec domain.RowRecord
			if err := dec.Decode(&rec); err == io.EOF {
				break
			} else if err != nil {
				t.Fatalf("decode row record: %v", err)
			}
			gotRecords = append(gotRecords, rec)
		}

		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	sink := NewTableSink(server.Client(), mockLogger{})
	table := testTable(t, 3)
	meta := ports.SendMetadata{
		StreamID:   "stream-1",
		Hostname:   "test-host",
		AuthKey:    "secret",
		ServiceURL: server.URL,
	}

	if err := sink.Send(context.Background(), table, meta); err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	if gotPath != tablesEndpoint {
		t.Errorf("request path = %q, want %q", gotPath, tablesEndpoint)
	}
	if gotAuth != "Bearer secret" {
		t.Errorf("Authorization = %q, want Bearer secret", gotAuth)
	}
	if gotStream != "stream-1" {
		t.Errorf("X-Rowship-Stream-Id = %q, want stream-1", gotStream)
	}
	if gotMan.TableID != string(table.ID) {
		t.Errorf("manifest table_id = %q, want %q", gotMan.TableID, table.ID)
	}
	if gotMan.RowCount != 3 {
		t.Errorf("manifest row_count = %d, want 3", gotMan.RowCount)
	}
	if gotMan.TotalSizeBytes != table.TotalSizeBytes {
		t.Errorf("manifest total_size_bytes = %d, want %d", gotMan.TotalSizeBytes, table.TotalSizeBytes)
	}
	if len(gotRecords) != 3 {
		t.Fatalf("decoded %d row records, want 3", len(gotRecords))
	}
	for i, rec := range gotRecords {
		if rec.EntityPath != "sink/test" {
			t.Errorf("record[%d].EntityPath = %q, want sink/test", i, rec.EntityPath)
		}
		if rec.TimePoint["tick"] != int64(i) {
			t.Errorf("record[%d] tick = %d, want %d (order not preserved)", i, rec.TimePoint["tick"], i)
		}
	}
}

func TestTableSink_SendServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "ingest unavailable", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	sink := NewTableSink(server.Client(), mockLogger{})
	err := sink.Send(context.Background(), testTable(t, 1), ports.SendMetadata{ServiceURL: server.URL})
	if err == nil {
		t.Fatal("Send() error = nil, want server error")
	}
	if !strings.Contains(err.Error(), "503") {
		t.Errorf("Send() error = %v, want status 503 mentioned", err)
	}
}

func TestTableSink_SendEmptyTableIsNoop(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
	}))
	defer server.Close()

	sink := NewTableSink(server.Client(), mockLogger{})
	if err := sink.Send(context.Background(), domain.Table{}, ports.SendMetadata{ServiceURL: server.URL}); err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if requests != 0 {
		t.Errorf("empty table produced %d requests, want 0", requests)
	}
}
