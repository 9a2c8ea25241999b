// Package analysis runs the analysis submission flow: validate the form,
// enqueue a job, poll it to a terminal status, then reconcile the result
// against the refetched history.
package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fortunes/fortunes-web/internal/apiclient"
	"github.com/fortunes/fortunes-web/internal/core"
	domain "github.com/fortunes/fortunes-web/internal/domain/analysis"
	apperrors "github.com/fortunes/fortunes-web/internal/errors"
	"github.com/fortunes/fortunes-web/internal/observability/metrics"
	"github.com/fortunes/fortunes-web/internal/observability/statsd"
	"github.com/fortunes/fortunes-web/internal/poll"
	jmespath "github.com/jmespath-community/go-jmespath"
)

const (
	enqueuePath = "/api/v1/analyze/enqueue"
	jobsPath    = "/api/v1/jobs/"
)

// User-facing messages.
const (
	MsgFailed = "Analysis failed. Please try again later."
	MsgBusy   = "An analysis is already running."
)

// API is the subset of the HTTP client the engine and history need.
type API interface {
	Fetch(ctx context.Context, req apiclient.Request) (*apiclient.Response, error)
	FetchInline(ctx context.Context, req apiclient.Request) (*apiclient.Response, error)
}

// Phase is the engine's position in the submission state machine.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseSubmitting
	PhasePolling
	PhaseDone
)

func (p Phase) String() string {
	switch p {
	case PhaseSubmitting:
		return "submitting"
	case PhasePolling:
		return "polling"
	case PhaseDone:
		return "done"
	default:
		return "idle"
	}
}

// OutcomeKind discriminates an Outcome.
type OutcomeKind int

const (
	OutcomeSuccess OutcomeKind = iota
	OutcomeTimeout
	OutcomeFailed
	OutcomeRejected
	OutcomeInvalid
	OutcomeBusy
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSuccess:
		return "success"
	case OutcomeTimeout:
		return "timeout"
	case OutcomeRejected:
		return "rejected"
	case OutcomeInvalid:
		return "invalid"
	case OutcomeBusy:
		return "busy"
	default:
		return "failed"
	}
}

// Outcome is the resolved result of one Submit.
type Outcome struct {
	Kind OutcomeKind
	// Display is set on success.
	Display *domain.Display
	// Message is what the user is shown for non-success kinds.
	Message string
	// FieldErrors is set for OutcomeInvalid.
	FieldErrors map[string]string
	JobID       string
	Attempts    int
	// Elapsed is measured from enqueue to resolution.
	Elapsed time.Duration
	Err     error
}

// OK reports success.
func (o Outcome) OK() bool { return o.Kind == OutcomeSuccess }

// EngineOptions bundles dependencies for NewEngine.
type EngineOptions struct {
	API      API
	History  *History
	Notifier core.Notifier
	Policy   poll.Policy
	// FailFast stops polling when the job reports a failed status instead of
	// waiting for the deadline.
	FailFast     bool
	JobIDPath    string
	RecordIDPath string
	Metrics      statsd.Sink
	Logger       *slog.Logger
}

// Engine runs submissions one at a time.
type Engine struct {
	api          API
	history      *History
	notifier     core.Notifier
	policy       poll.Policy
	failFast     bool
	jobIDPath    string
	recordIDPath string
	metrics      statsd.Sink
	logger       *slog.Logger

	busy atomic.Bool

	mu        sync.RWMutex
	phase     Phase
	listeners []func(Phase)
}

// NewEngine validates the JMESPath expressions and creates an Engine.
func NewEngine(opts EngineOptions) (*Engine, error) {
	jobIDPath := defaultExpr(opts.JobIDPath, "job_id")
	recordIDPath := defaultExpr(opts.RecordIDPath, "id")
	for _, expr := range []string{jobIDPath, recordIDPath} {
		if _, err := jmespath.Compile(expr); err != nil {
			return nil, fmt.Errorf("invalid jmespath %q: %w", expr, err)
		}
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	history := opts.History
	if history == nil {
		history = NewHistory(HistoryOptions{API: opts.API, Logger: logger})
	}
	notifier := opts.Notifier
	if notifier == nil {
		notifier = core.NotifierFunc(func(context.Context, string) {})
	}

	return &Engine{
		api:          opts.API,
		history:      history,
		notifier:     notifier,
		policy:       opts.Policy,
		failFast:     opts.FailFast,
		jobIDPath:    jobIDPath,
		recordIDPath: recordIDPath,
		metrics:      opts.Metrics,
		logger:       logger.With("component", "analysis_engine"),
	}, nil
}

// Busy reports whether a submission is in flight.
func (e *Engine) Busy() bool { return e.busy.Load() }

// Phase returns the current state machine phase.
func (e *Engine) Phase() Phase {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.phase
}

// OnPhase registers fn to run on every phase change.
func (e *Engine) OnPhase(fn func(Phase)) {
	e.mu.Lock()
	e.listeners = append(e.listeners, fn)
	e.mu.Unlock()
}

// History returns the engine's history list.
func (e *Engine) History() *History { return e.history }

// Submit validates form and, when valid, runs enqueue, polling and
// reconciliation. A second call while one is in flight returns OutcomeBusy
// without touching the network. Every failure except validation and busy
// produces exactly one notification.
func (e *Engine) Submit(ctx context.Context, form *Form) Outcome {
	if !e.busy.CompareAndSwap(false, true) {
		return Outcome{Kind: OutcomeBusy, Message: MsgBusy, Err: apperrors.Busy(MsgBusy)}
	}
	defer e.busy.Store(false)

	req, ok := form.Validate()
	if !ok {
		return Outcome{
			Kind:        OutcomeInvalid,
			FieldErrors: form.Errors(),
			Err:         apperrors.Validation("invalid analysis form"),
		}
	}

	start := time.Now()
	e.setPhase(PhaseSubmitting)
	out := e.run(ctx, req)
	out.Elapsed = time.Since(start)
	e.setPhase(PhaseDone)

	metrics.EmitAnalysisOutcome(e.metrics, metrics.AnalysisMetric{
		Outcome:  out.Kind.String(),
		Attempts: out.Attempts,
		Duration: out.Elapsed,
		Err:      out.Err,
	})

	if out.Kind != OutcomeSuccess {
		e.logger.WarnContext(ctx, "analysis did not succeed",
			"outcome", out.Kind.String(), "job_id", out.JobID, "attempts", out.Attempts, "error", out.Err)
		if !apiclient.IsRedirected(out.Err) {
			e.notifier.Notify(ctx, out.Message)
		}
	} else {
		e.logger.InfoContext(ctx, "analysis complete", "job_id", out.JobID, "record_id", out.Display.ID)
	}
	return out
}

func (e *Engine) run(ctx context.Context, req domain.Request) Outcome {
	jobID, out, ok := e.enqueue(ctx, req)
	if !ok {
		return out
	}

	e.setPhase(PhasePolling)
	res := poll.Poll(ctx, e.policy, e.check(jobID))
	switch res.Kind {
	case poll.KindTimeout:
		return Outcome{Kind: OutcomeTimeout, Message: MsgFailed, JobID: jobID, Attempts: res.Attempts, Err: res.Err}
	case poll.KindFailed:
		return Outcome{Kind: OutcomeFailed, Message: MsgFailed, JobID: jobID, Attempts: res.Attempts, Err: res.Err}
	}

	out = e.reconcile(ctx, res.Payload)
	out.JobID = jobID
	out.Attempts = res.Attempts
	return out
}

func (e *Engine) enqueue(ctx context.Context, req domain.Request) (string, Outcome, bool) {
	resp, err := e.api.Fetch(ctx, apiclient.PostJSON(enqueuePath, req))
	if err != nil {
		return "", failed(err), false
	}
	if resp.StatusCode == http.StatusUnprocessableEntity {
		detail := resp.Detail()
		return "", Outcome{Kind: OutcomeRejected, Message: detail, Err: apperrors.Rejected(detail)}, false
	}
	if !resp.OK() {
		return "", failed(apperrors.Failedf("enqueue: %s", resp.Status())), false
	}

	var body any
	if err := resp.DecodeJSON(&body); err != nil {
		return "", failed(err), false
	}
	raw, err := jmespath.Search(e.jobIDPath, body)
	if err != nil {
		return "", failed(err), false
	}
	jobID, ok := idString(raw)
	if !ok {
		return "", failed(apperrors.Failed("enqueue response has no job id")), false
	}
	return jobID, Outcome{}, true
}

// check polls the job status. Status checks use the inline 401 policy: a
// job status is public and any non-2xx is just "not ready yet".
func (e *Engine) check(jobID string) poll.CheckFunc {
	path := jobsPath + url.PathEscape(jobID)
	return func(ctx context.Context) (poll.Step, error) {
		resp, err := e.api.FetchInline(ctx, apiclient.Get(path))
		if err != nil {
			return poll.Step{}, err
		}
		if !resp.OK() {
			return poll.Step{}, fmt.Errorf("job status: %s", resp.Status())
		}
		var st domain.JobStatus
		if err := resp.DecodeJSON(&st); err != nil {
			return poll.Step{}, err
		}

		switch domain.ClassifyStatus(st.Status) {
		case domain.StatusComplete:
			return poll.Step{State: poll.Done, Payload: st.Result}, nil
		case domain.StatusFailed:
			if e.failFast {
				return poll.Step{State: poll.Abort, Reason: "job reported status " + st.Status}, nil
			}
		}
		e.logger.DebugContext(ctx, "job not ready", "job_id", jobID, "status", st.Status)
		return poll.Step{State: poll.Pending}, nil
	}
}

func (e *Engine) reconcile(ctx context.Context, result any) Outcome {
	if isEmpty(result) {
		return failed(apperrors.Failed("job completed without a result"))
	}
	raw, err := jmespath.Search(e.recordIDPath, result)
	if err != nil {
		return failed(err)
	}
	id, ok := idInt(raw)
	if !ok {
		return failed(apperrors.Failed("job result has no record id"))
	}

	records, err := e.history.Refresh(ctx)
	if err != nil {
		return failed(err)
	}
	rec, ok := domain.FindRecord(records, id)
	if !ok {
		return failed(apperrors.NotFoundf("analysis %d not in history", id))
	}
	d := rec.Display()
	return Outcome{Kind: OutcomeSuccess, Display: &d}
}

func (e *Engine) setPhase(p Phase) {
	e.mu.Lock()
	e.phase = p
	listeners := append([]func(Phase){}, e.listeners...)
	e.mu.Unlock()
	for _, fn := range listeners {
		fn(p)
	}
}

func failed(err error) Outcome {
	return Outcome{Kind: OutcomeFailed, Message: MsgFailed, Err: err}
}

func isEmpty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case map[string]any:
		return len(t) == 0
	case []any:
		return len(t) == 0
	case string:
		return t == ""
	}
	return false
}

// idString accepts a string or an integral JSON number.
func idString(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		t = strings.TrimSpace(t)
		return t, t != ""
	case float64:
		if t != math.Trunc(t) {
			return "", false
		}
		return strconv.FormatInt(int64(t), 10), true
	}
	return "", false
}

func idInt(v any) (int64, bool) {
	switch t := v.(type) {
	case float64:
		if t != math.Trunc(t) {
			return 0, false
		}
		return int64(t), true
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(t), 10, 64)
		return n, err == nil
	}
	return 0, false
}

func defaultExpr(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
