package rowship_test

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/rerun-io/rowship"
)

// ExampleNew demonstrates how to embed the shipping agent in your application.
func ExampleNew() {
	// Create configuration
	cfg := rowship.Config{
		SourceDir:  "/var/log/recordings",
		StreamID:   "my-stream",
		AuthKey:    "your-api-key",
		ServiceURL: "https://api.rowship.io",
	}

	// Create rowship instance
	agent, err := rowship.New(cfg)
	if err != nil {
		fmt.Printf("failed to create rowship: %v\n", err)
		return
	}

	// The instance starts out stopped; Start() begins shipping
	fmt.Printf("created in state: %s\n", agent.Status())

	// Output: created in state: stopped
}

// ExampleNewBatcher demonstrates using the batching engine on its own.
func ExampleNewBatcher() {
	// Seal a table after every two rows
	b, err := rowship.NewBatcher(rowship.BatcherConfig{FlushNumRows: 2})
	if err != nil {
		fmt.Printf("failed to create batcher: %v\n", err)
		return
	}

	b.PushRow(rowship.NewRow("sensor/a", rowship.TimePoint{"tick": 1}, 1, nil))
	b.PushRow(rowship.NewRow("sensor/b", rowship.TimePoint{"tick": 1}, 1, nil))
	b.PushRow(rowship.NewRow("sensor/c", rowship.TimePoint{"tick": 2}, 1, nil))

	// Close seals the remaining row and closes the output channel
	b.Close()

	for table := range b.Tables() {
		fmt.Printf("rows: %d\n", table.RowCount())
	}

	// Output:
	// rows: 2
	// rows: 1
}

// Example_withEventHandler demonstrates how to receive rowship events.
func Example_withEventHandler() {
	// Custom event handler
	handler := &myEventHandler{}

	cfg := rowship.Config{
		SourceDir: "/var/log/recordings",
		StreamID:  "my-stream",
		AuthKey:   "api-key",
	}

	// Create with event handler
	agent, err := rowship.New(cfg, rowship.WithEventHandler(handler))
	if err != nil {
		fmt.Printf("failed to create rowship: %v\n", err)
		return
	}

	_ = agent // Use rowship instance...
}

// myEventHandler implements rowship.EventHandler for event notifications.
type myEventHandler struct {
	rowship.BaseEventHandler // Embed for no-op defaults
}

func (h *myEventHandler) OnSendSuccess(event rowship.SendSuccessEvent) {
	fmt.Printf("Sent %d rows (%d bytes) in %v\n",
		event.RowCount, event.SizeBytes, event.Duration)
}

func (h *myEventHandler) OnSendError(event rowship.SendErrorEvent) {
	fmt.Printf("Send error: %v (rows: %d, retryable: %v)\n",
		event.Error, event.RowCount, event.Retryable)
}

// Example_withMockHTTPClient demonstrates dependency injection for testing.
func Example_withMockHTTPClient() {
	// Create a mock HTTP client for testing
	mockClient := &mockHTTPClient{
		responses: make(chan *http.Response, 10),
	}

	cfg := rowship.Config{
		SourceDir: "/var/log/recordings",
		StreamID:  "test-stream",
		AuthKey:   "test-key",
	}

	// Inject mock HTTP client
	agent, err := rowship.New(cfg, rowship.WithHTTPClient(mockClient))
	if err != nil {
		fmt.Printf("failed to create rowship: %v\n", err)
		return
	}

	_ = agent // Use in tests...
}

// mockHTTPClient implements rowship.HTTPClient for testing.
type mockHTTPClient struct {
	responses chan *http.Response
	requests  []*http.Request
}

func (m *mockHTTPClient) Do(req *http.Request) (*http.Response, error) {
	m.requests = append(m.requests, req)
	select {
	case resp := <-m.responses:
		return resp, nil
	default:
		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       http.NoBody,
		}, nil
	}
}

// Example_withCustomLogger demonstrates injecting a custom logger.
func Example_withCustomLogger() {
	logger := &customLogger{}

	cfg := rowship.Config{
		SourceDir: "/var/log/recordings",
		StreamID:  "my-stream",
		AuthKey:   "api-key",
	}

	// Inject custom logger
	agent, err := rowship.New(cfg, rowship.WithLogger(logger))
	if err != nil {
		fmt.Printf("failed to create rowship: %v\n", err)
		return
	}

	_ = agent // Use rowship instance...
}

// customLogger implements rowship.Logger.
type customLogger struct{}

func (l *customLogger) Debug(msg string, fields ...rowship.LogField) {
	fmt.Printf("[DEBUG] %s\n", msg)
}

func (l *customLogger) Info(msg string, fields ...rowship.LogField) {
	fmt.Printf("[INFO] %s\n", msg)
}

func (l *customLogger) Warn(msg string, fields ...rowship.LogField) {
	fmt.Printf("[WARN] %s\n", msg)
}

func (l *customLogger) Error(msg string, fields ...rowship.LogField) {
	fmt.Printf("[ERROR] %s\n", msg)
}

// ExampleRowship_Status demonstrates controlling the rowship lifecycle.
func ExampleRowship_Status() {
	cfg := rowship.Config{
		StateDir: os.TempDir(),
		StreamID: "example-stream",
		AuthKey:  "api-key",
	}

	// Inject a source and sink so the example needs no record files
	agent, err := rowship.New(cfg,
		rowship.WithSource(emptySource{}),
		rowship.WithSink(discardSink{}),
	)
	if err != nil {
		fmt.Printf("failed to create rowship: %v\n", err)
		return
	}

	// Initial state is Stopped
	fmt.Printf("Initial state is Stopped: %v\n", agent.Status() == rowship.StateStopped)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Start shipping (non-blocking)
	_ = agent.Start(ctx)

	// After Start, state is either Starting or Running
	status := agent.Status()
	validStartState := status == rowship.StateStarting || status == rowship.StateRunning
	fmt.Printf("After Start is Starting/Running: %v\n", validStartState)

	// Stop drains pending tables and waits for the agent to finish
	_ = agent.Stop()
	fmt.Printf("After Stop is Stopped: %v\n", agent.Status() == rowship.StateStopped)

	// Output:
	// Initial state is Stopped: true
	// After Start is Starting/Running: true
	// After Stop is Stopped: true
}

// emptySource implements rowship.RowSource with no records.
type emptySource struct{}

func (emptySource) Open(ctx context.Context, progress rowship.Progress) error {
	return nil
}

func (emptySource) Next(ctx context.Context) (rowship.Row, rowship.SourcePosition, error) {
	return rowship.Row{}, rowship.SourcePosition{}, io.EOF
}

func (emptySource) Close() error {
	return nil
}

// discardSink implements rowship.TableSink by accepting every table.
type discardSink struct{}

func (discardSink) Send(ctx context.Context, table rowship.Table, metadata rowship.SendMetadata) error {
	return nil
}

// Example_version demonstrates version checking.
func Example_version() {
	fmt.Printf("rowship version: %s\n", rowship.Version)

	// Output: rowship version: 1.0.0
}
