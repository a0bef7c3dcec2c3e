// Package executor runs execution plans phase by phase, with bounded
// intra-phase concurrency and per-declaration failure policies.
package executor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/ShayCichocki/hookline/internal/eventlog"
	"github.com/ShayCichocki/hookline/internal/exec"
	"github.com/ShayCichocki/hookline/pkg/hooks"
)

// DefaultTimeout bounds hooks that declare no timeout of their own.
const DefaultTimeout = 30 * time.Second

// Request is one hook scheduled into a phase, with its command already
// rendered and its cache disposition decided.
type Request struct {
	// Decl is the hook declaration behind this request.
	Decl *hooks.Declaration
	// Command is the rendered command line.
	Command string
	// CacheHit marks a hook served from the incremental cache; no process
	// is spawned and a zero-cost success is produced immediately.
	CacheHit bool
}

// Executor runs hook processes for one event at a time.
type Executor struct {
	runner         exec.CommandRunner
	maxParallel    int64
	defaultTimeout time.Duration
	log            *eventlog.Logger
}

// Option configures an Executor.
type Option func(*Executor)

// WithMaxParallel bounds concurrent hook processes within a phase.
func WithMaxParallel(n int) Option {
	return func(e *Executor) {
		if n > 0 {
			e.maxParallel = int64(n)
		}
	}
}

// WithDefaultTimeout sets the timeout for hooks that declare none.
func WithDefaultTimeout(d time.Duration) Option {
	return func(e *Executor) {
		if d > 0 {
			e.defaultTimeout = d
		}
	}
}

// WithLogger sets the event logger. Defaults to a no-op logger.
func WithLogger(l *eventlog.Logger) Option {
	return func(e *Executor) {
		e.log = l
	}
}

// New creates an Executor running processes through the given runner.
func New(runner exec.CommandRunner, opts ...Option) *Executor {
	e := &Executor{
		runner:         runner,
		maxParallel:    4,
		defaultTimeout: DefaultTimeout,
		log:            eventlog.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run executes the phases in order. Hooks within a phase run concurrently,
// bounded by the executor's parallelism limit; the next phase starts only
// once the current one fully completed.
//
// A fail_fast failure aborts all later phases: their hooks are marked
// skipped_dependency_failure and never run. Cancelling ctx abandons the
// event between phases: the running phase finishes, completed results are
// kept, and no new work starts.
func (e *Executor) Run(ctx context.Context, ev *hooks.Event, phases [][]Request) []*hooks.Result {
	var results []*hooks.Result
	aborted := false

	for _, phase := range phases {
		if ctx.Err() != nil {
			// Superseded by a newer event: abandon remaining phases but
			// keep everything already produced.
			e.log.Append(eventlog.Record{
				EventID: ev.ID,
				Type:    eventlog.RecordEngineWarning,
				Message: "event superseded, remaining phases abandoned",
			})
			break
		}

		if aborted {
			for _, req := range phase {
				results = append(results, e.skipForDependency(ev, req))
			}
			continue
		}

		phaseResults := e.runPhase(ctx, ev, phase)
		results = append(results, phaseResults...)

		for _, res := range phaseResults {
			if res.Status != hooks.StatusFailure {
				continue
			}
			if decl := findDecl(phase, res); decl != nil && decl.FailurePolicy == hooks.FailFast {
				aborted = true
			}
		}
	}

	return results
}

// runPhase launches all non-cached hooks of one phase concurrently and
// waits for every process to finish before returning.
func (e *Executor) runPhase(ctx context.Context, ev *hooks.Event, phase []Request) []*hooks.Result {
	results := make([]*hooks.Result, len(phase))

	// Processes already launched must be allowed to finish their phase
	// even if the event is superseded mid-flight.
	procCtx := context.WithoutCancel(ctx)
	sem := semaphore.NewWeighted(e.maxParallel)

	var wg sync.WaitGroup
	for i, req := range phase {
		if req.CacheHit {
			results[i] = e.skipForCache(ev, req)
			continue
		}

		wg.Add(1)
		go func(i int, req Request) {
			defer wg.Done()
			if err := sem.Acquire(procCtx, 1); err != nil {
				results[i] = e.failResult(ev, req, fmt.Sprintf("acquire execution slot: %v", err))
				return
			}
			defer sem.Release(1)
			results[i] = e.runHook(procCtx, ev, req)
		}(i, req)
	}
	wg.Wait()

	return results
}

// runHook executes a single hook process and converts the raw outcome
// into a Result.
func (e *Executor) runHook(ctx context.Context, ev *hooks.Event, req Request) *hooks.Result {
	timeout := req.Decl.Timeout
	if timeout == 0 {
		timeout = e.defaultTimeout
	}

	e.log.Append(eventlog.Record{
		EventID: ev.ID,
		Type:    eventlog.RecordHookStarted,
		Plugin:  req.Decl.Plugin,
		Hook:    req.Decl.Hook,
	})

	raw, err := e.runner.Run(ctx, exec.Spec{
		Command: req.Command,
		WorkDir: ev.WorkingDir,
		Env: []string{
			"HOOKLINE_PLUGIN_ROOT=" + req.Decl.PluginRoot,
			"HOOKLINE_EVENT_ID=" + ev.ID,
			"HOOKLINE_SESSION_ID=" + ev.SessionID,
			"HOOKLINE_PHASE=" + string(ev.Phase),
		},
		Timeout: timeout,
	})
	if err != nil {
		return e.failResult(ev, req, err.Error())
	}

	res := &hooks.Result{
		Plugin:       req.Decl.Plugin,
		Hook:         req.Decl.Hook,
		ExitCode:     raw.ExitCode,
		Stdout:       raw.Stdout,
		Stderr:       raw.Stderr,
		Duration:     raw.Duration,
		DeliveryMode: req.Decl.DeliveryMode,
	}

	switch {
	case raw.TimedOut:
		res.Status = hooks.StatusFailure
		res.Stderr = fmt.Sprintf("hook timed out after %s", timeout)
	case raw.ExitCode == 0:
		res.Status = hooks.StatusSuccess
	default:
		res.Status = hooks.StatusFailure
	}

	e.log.Append(eventlog.Record{
		EventID:    ev.ID,
		Type:       eventlog.RecordHookResult,
		Plugin:     req.Decl.Plugin,
		Hook:       req.Decl.Hook,
		Status:     res.Status,
		DurationMS: res.Duration.Milliseconds(),
	})

	return res
}

// skipForCache produces the zero-cost success for a cache-served hook.
func (e *Executor) skipForCache(ev *hooks.Event, req Request) *hooks.Result {
	e.log.Append(eventlog.Record{
		EventID: ev.ID,
		Type:    eventlog.RecordHookSkippedCache,
		Plugin:  req.Decl.Plugin,
		Hook:    req.Decl.Hook,
		Status:  hooks.StatusSkippedCache,
	})
	return &hooks.Result{
		Plugin:       req.Decl.Plugin,
		Hook:         req.Decl.Hook,
		Status:       hooks.StatusSkippedCache,
		ExitCode:     -1,
		DeliveryMode: req.Decl.DeliveryMode,
	}
}

// skipForDependency marks a hook aborted by an earlier fail_fast failure.
func (e *Executor) skipForDependency(ev *hooks.Event, req Request) *hooks.Result {
	e.log.Append(eventlog.Record{
		EventID: ev.ID,
		Type:    eventlog.RecordHookSkippedDependency,
		Plugin:  req.Decl.Plugin,
		Hook:    req.Decl.Hook,
		Status:  hooks.StatusSkippedDependency,
	})
	return &hooks.Result{
		Plugin:       req.Decl.Plugin,
		Hook:         req.Decl.Hook,
		Status:       hooks.StatusSkippedDependency,
		ExitCode:     -1,
		DeliveryMode: req.Decl.DeliveryMode,
	}
}

// failResult records a spawn-level failure as a hook failure.
func (e *Executor) failResult(ev *hooks.Event, req Request, msg string) *hooks.Result {
	res := &hooks.Result{
		Plugin:       req.Decl.Plugin,
		Hook:         req.Decl.Hook,
		Status:       hooks.StatusFailure,
		ExitCode:     -1,
		Stderr:       msg,
		DeliveryMode: req.Decl.DeliveryMode,
	}
	e.log.Append(eventlog.Record{
		EventID: ev.ID,
		Type:    eventlog.RecordHookResult,
		Plugin:  req.Decl.Plugin,
		Hook:    req.Decl.Hook,
		Status:  hooks.StatusFailure,
	})
	return res
}

// findDecl locates the declaration behind a result within a phase.
func findDecl(phase []Request, res *hooks.Result) *hooks.Declaration {
	for _, req := range phase {
		if req.Decl.Key() == res.Key() {
			return req.Decl
		}
	}
	return nil
}
