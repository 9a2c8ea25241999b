package config

import "time"

const (
	defaultPollInterval = 5 * time.Second
	defaultPollTimeout  = 5 * time.Minute
)

// PollingConfig controls how long the client waits for an analysis job.
type PollingConfig struct {
	// Interval is the fixed wait between two status checks.
	Interval time.Duration `env:"POLL_INTERVAL" envDefault:"5s"`

	// Timeout is the wall-clock budget measured from enqueue.
	Timeout time.Duration `env:"POLL_TIMEOUT" envDefault:"5m"`

	// MaxAttempts caps the number of status checks. Zero means deadline only.
	MaxAttempts uint64 `env:"POLL_MAX_ATTEMPTS" envDefault:"0"`

	// FailFast ends polling as soon as the job reports a failed status.
	FailFast bool `env:"POLL_FAIL_FAST" envDefault:"false"`

	// JobIDPath and RecordIDPath are JMESPath expressions applied to the
	// enqueue response and to the job result respectively.
	JobIDPath    string `env:"POLL_JOB_ID_PATH"    envDefault:"job_id"`
	RecordIDPath string `env:"POLL_RECORD_ID_PATH" envDefault:"id"`
}

// Sanitize applies guardrails to polling configuration values.
func (p *PollingConfig) Sanitize() {
	if p.Interval <= 0 {
		p.Interval = defaultPollInterval
	}
	if p.Timeout <= 0 {
		p.Timeout = defaultPollTimeout
	}
	if p.Timeout < p.Interval {
		p.Timeout = p.Interval
	}
	if p.JobIDPath == "" {
		p.JobIDPath = "job_id"
	}
	if p.RecordIDPath == "" {
		p.RecordIDPath = "id"
	}
}
