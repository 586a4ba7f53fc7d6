package config

import "time"

// Poll Cycle Constants
const (
	// DefaultPollInterval is the fixed delay between two status fetches
	DefaultPollInterval = 10 * time.Second

	// DefaultMaxPollAttempts is how many times a pending job is re-polled before timing out
	DefaultMaxPollAttempts = 30

	// DefaultHTTPTimeout bounds a single submit or status request
	DefaultHTTPTimeout = 30 * time.Second
)

// Endpoint Constants
const (
	// DefaultAPIURL is the base address of the analysis service
	DefaultAPIURL = "http://localhost:5000"

	AnalyzePath = "/api/v1/analyze"
	ResultsPath = "/api/v1/results/"
)

// User-facing messages
const (
	MsgValidation     = "Please fill in both the prompt and the brand input."
	MsgSubmitFailed   = "Failed to submit analysis request."
	MsgSubmitError    = "Error submitting analysis: "
	MsgAnalysisFailed = "Analysis failed. Please try again."
	MsgTimedOut       = "Analysis timed out. Please try again later."
	MsgPollError      = "Error checking analysis status: "
)

// Service Constants
const (
	// DefaultPort matches the port the analysis service has always listened on
	DefaultPort = "5000"

	// DefaultQueueName is the job queue consumed by the worker pool
	DefaultQueueName = "ai_analysis"

	// DefaultWorkerCount is the number of concurrent analysis workers
	DefaultWorkerCount = 2

	// DefaultJobTTL is how long job records stay readable in Redis
	DefaultJobTTL = 24 * time.Hour

	// DefaultCacheTTL is how long an analysis result is reused for identical input
	DefaultCacheTTL = 24 * time.Hour

	// DequeueTimeout is how long a worker blocks on an empty queue before checking for shutdown
	DequeueTimeout = 5 * time.Second
)

// Analyzer Constants
const (
	DefaultCohereModel = "command-r-plus"
	Temperature        = 0.7
	MaxTokens          = 500

	// MaxAnalyzeAttempts includes the first call
	MaxAnalyzeAttempts = 3
)

// Kafka Constants
const (
	DefaultEventsTopic   = "analysis-events"
	DefaultRequestsTopic = "analysis-requests"
	DefaultConsumerGroup = "brandpulse-intake"
)
