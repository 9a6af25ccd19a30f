// Package rowship provides an embeddable agent that batches logged rows
// into tables and ships them to an ingestion service.
//
// Rowship tails append-only JSONL record files, groups the rows with a
// threshold-and-tick batching engine, and delivers the sealed tables over
// HTTP with retries and resumable offsets. It can be used as a standalone
// CLI application or embedded as a library in other Go programs.
//
// # Basic Usage
//
// To embed the shipping agent in your application:
//
//	cfg := rowship.Config{
//	    SourceDir: "/var/log/recordings",
//	    StreamID:  "my-stream",
//	    AuthKey:   "your-api-key",
//	}
//
//	agent, err := rowship.New(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	ctx := context.Background()
//	if err := agent.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
//	// ... run until shutdown signal ...
//
//	if err := agent.Stop(); err != nil {
//	    log.Printf("shutdown error: %v", err)
//	}
//
// # Using the Engine Directly
//
// The batching engine is usable without the agent. Create a [Batcher],
// push rows from any number of goroutines, and drain sealed tables from
// its output channel:
//
//	b, _ := rowship.NewBatcher(rowship.DefaultBatcherConfig())
//	go func() {
//	    for table := range b.Tables() {
//	        // deliver table
//	    }
//	}()
//	b.PushRow(rowship.NewRow("world/robot", rowship.TimePoint{"frame": 1}, 1, cells))
//	b.Close()
//
// Tables are emitted in seal order; Close seals whatever is pending and
// then closes the output channel.
//
// # Configuration
//
// Create a [Config] with at minimum SourceDir and StreamID. All other
// fields have sensible defaults set via [Config.SetDefaults]. The flush
// thresholds can also be tuned per deployment with the
// ROWSHIP_FLUSH_NUM_BYTES, ROWSHIP_FLUSH_NUM_ROWS, and ROWSHIP_FLUSH_TICK
// environment variables (see [BatcherConfig.ApplyEnv]).
//
// # Event Handling
//
// To receive notifications about rowship operations, implement
// [EventHandler] and pass it via [WithEventHandler]:
//
//	handler := &myEventHandler{}
//	agent, err := rowship.New(cfg, rowship.WithEventHandler(handler))
//
// Events are called synchronously from the agent goroutines.
// Implementations should return quickly to avoid blocking shipping.
//
// # Dependency Injection
//
// For testing, you can inject custom implementations of external
// dependencies:
//
//	agent, err := rowship.New(cfg,
//	    rowship.WithHTTPClient(mockClient),
//	    rowship.WithLogger(customLogger),
//	    rowship.WithSink(captureSink),
//	)
//
// # Lifecycle States
//
// A Rowship instance can be in one of five states: [StateStopped],
// [StateStarting], [StateRunning], [StateStopping], or [StateCrashed].
// Use [Rowship.Status] to query the current state. Instances are
// single-use; once stopped, create a new instance to ship again.
//
// # Version
//
// Current version: 1.0.0
// Minimum compatible version: 1.0.0
//
// Use [ModuleVersions] to get versions of all sub-modules.
package rowship
