// Package engine coordinates event processing: matching, dependency
// resolution, cache consultation, execution, and result delivery, with
// the event logger observing every stage.
package engine

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/ShayCichocki/hookline/internal/cache"
	"github.com/ShayCichocki/hookline/internal/delivery"
	"github.com/ShayCichocki/hookline/internal/eventlog"
	"github.com/ShayCichocki/hookline/internal/executor"
	"github.com/ShayCichocki/hookline/internal/registry"
	"github.com/ShayCichocki/hookline/internal/resolve"
	"github.com/ShayCichocki/hookline/pkg/hooks"
)

// Params wires the engine's collaborators.
type Params struct {
	// Registry is the validated hook table.
	Registry *registry.Registry
	// Cache is the incremental store. Required.
	Cache cache.Cache
	// Executor runs the execution plans. Required.
	Executor *executor.Executor
	// Notifier delivers async results. Optional; without one, async
	// results are logged and dropped.
	Notifier delivery.Notifier
	// Log observes every stage. Defaults to a no-op logger.
	Log *eventlog.Logger
	// Reload rebuilds the registry on an explicit Reload call. Optional.
	Reload func() (*registry.Registry, error)
}

// Engine processes normalized events. Multiple events may be processed
// concurrently by independent coordinating flows; the registry is
// read-only between reloads and the cache synchronizes internally.
type Engine struct {
	mu       sync.RWMutex
	registry *registry.Registry

	cache    cache.Cache
	executor *executor.Executor
	notifier delivery.Notifier
	log      *eventlog.Logger
	reload   func() (*registry.Registry, error)
	flows    *flowTracker
}

// Outcome is the per-event processing result handed back to the host
// adapter.
type Outcome struct {
	// EventID is the correlation id, engine-assigned if the host sent none.
	EventID string
	// Results holds every hook's final disposition, inline and async alike.
	Results []*hooks.Result
	// InlineBlock is the tagged block to append to the tool return value.
	// Empty when no inline-mode hook matched.
	InlineBlock string
}

// New creates an Engine from its collaborators.
func New(p Params) *Engine {
	log := p.Log
	if log == nil {
		log = eventlog.Nop()
	}
	return &Engine{
		registry: p.Registry,
		cache:    p.Cache,
		executor: p.Executor,
		notifier: p.Notifier,
		log:      log,
		reload:   p.Reload,
		flows:    newFlowTracker(),
	}
}

// Reload rebuilds the registry from the declaration source. Events being
// processed keep the registry snapshot they started with.
func (e *Engine) Reload() error {
	if e.reload == nil {
		return fmt.Errorf("no registry source configured")
	}
	reg, err := e.reload()
	if err != nil {
		return fmt.Errorf("reload registry: %w", err)
	}
	e.mu.Lock()
	e.registry = reg
	e.mu.Unlock()
	return nil
}

// Process runs one event through the full pipeline. A newer event for an
// overlapping file set supersedes this one between phases.
func (e *Engine) Process(ctx context.Context, ev *hooks.Event) (*Outcome, error) {
	if ev.ID == "" {
		ev.ID = uuid.New().String()
	}
	if !ev.Phase.Valid() {
		return nil, fmt.Errorf("unknown event phase %q", ev.Phase)
	}

	flowCtx, release := e.flows.begin(ctx, ev.ChangedFiles)
	defer release()

	e.mu.RLock()
	reg := e.registry
	e.mu.RUnlock()

	candidates := reg.Match(ev)
	if len(candidates) == 0 {
		return &Outcome{EventID: ev.ID}, nil
	}

	plan, err := resolve.BuildPlan(candidates)
	if err != nil {
		// Resolution-time cycles mean the static registry check missed a
		// conditional cycle. Skip the event's hooks entirely rather than
		// silently reordering.
		e.log.Append(eventlog.Record{
			EventID: ev.ID,
			Type:    eventlog.RecordEngineError,
			Message: err.Error(),
		})
		return nil, fmt.Errorf("resolve event %s: %w", ev.ID, err)
	}

	// Drop entries whose tracked content no longer matches disk before any
	// lookups, so a hook is never skipped against stale content.
	if err := e.cache.InvalidateFiles(ev.ChangedFiles); err != nil {
		e.log.Append(eventlog.Record{
			EventID: ev.ID,
			Type:    eventlog.RecordEngineWarning,
			Message: fmt.Sprintf("cache invalidation: %v", err),
		})
	}

	phases, inputs := e.schedule(ev, plan)
	results := e.executor.Run(flowCtx, ev, phases)
	e.storeSuccesses(ev, results, inputs)

	return e.deliver(ctx, ev, results), nil
}

// hookInputs remembers a scheduled hook's cache key material so successful
// runs can be stored after execution.
type hookInputs struct {
	hash  string
	files []string
}

// schedule converts an execution plan into executor requests, consulting
// the cache for each hook.
func (e *Engine) schedule(ev *hooks.Event, plan *resolve.Plan) ([][]executor.Request, map[string]hookInputs) {
	phases := make([][]executor.Request, 0, len(plan.Phases))
	inputs := make(map[string]hookInputs, plan.HookCount())

	for _, phase := range plan.Phases {
		reqs := make([]executor.Request, 0, len(phase))
		for _, decl := range phase {
			files := registry.FilterFiles(decl, ev.ChangedFiles)
			command := executor.RenderCommand(decl.Command, files)

			hash := e.inputHash(ev, decl, command, files)
			hit := false
			if hash != "" {
				var err error
				hit, err = e.cache.Lookup(cache.Key{Hook: decl.Key(), InputHash: hash})
				if err != nil {
					e.log.Append(eventlog.Record{
						EventID: ev.ID,
						Type:    eventlog.RecordEngineWarning,
						Plugin:  decl.Plugin,
						Hook:    decl.Hook,
						Message: fmt.Sprintf("cache lookup: %v", err),
					})
					hit = false
				}
			}

			inputs[decl.Key()] = hookInputs{hash: hash, files: files}
			e.log.Append(eventlog.Record{
				EventID: ev.ID,
				Type:    eventlog.RecordHookScheduled,
				Plugin:  decl.Plugin,
				Hook:    decl.Hook,
			})
			reqs = append(reqs, executor.Request{
				Decl:     decl,
				Command:  command,
				CacheHit: hit,
			})
		}
		phases = append(phases, reqs)
	}

	return phases, inputs
}

// inputHash computes the cache input hash for one scheduled hook, or ""
// when the hook's inputs cannot be fingerprinted and caching is disabled
// for this run.
func (e *Engine) inputHash(ev *hooks.Event, decl *hooks.Declaration, command string, files []string) string {
	if len(decl.FileFilters) == 0 && len(files) == 0 {
		// Full-project hook: only a caller-supplied fingerprint makes its
		// inputs hashable.
		if ev.Fingerprint == "" {
			return ""
		}
		return cache.HashString(command + "\x00" + ev.Fingerprint)
	}
	if len(files) == 0 {
		return ""
	}
	hash, err := cache.HashInputs(command, files)
	if err != nil {
		e.log.Append(eventlog.Record{
			EventID: ev.ID,
			Type:    eventlog.RecordEngineWarning,
			Plugin:  decl.Plugin,
			Hook:    decl.Hook,
			Message: fmt.Sprintf("hash inputs: %v", err),
		})
		return ""
	}
	return hash
}

// storeSuccesses records cache entries for hooks that ran and succeeded.
// Failures are never stored, so they are retried on the next event even
// with unchanged inputs. When two hooks claim overlapping files the last
// writer wins; a warning is logged so the overlap is visible.
func (e *Engine) storeSuccesses(ev *hooks.Event, results []*hooks.Result, inputs map[string]hookInputs) {
	claimed := make(map[string]string) // file -> first claiming hook

	for _, res := range results {
		if res.Status != hooks.StatusSuccess {
			continue
		}
		in, ok := inputs[res.Key()]
		if !ok || in.hash == "" {
			continue
		}

		for _, f := range in.files {
			if prev, dup := claimed[f]; dup {
				e.log.Append(eventlog.Record{
					EventID: ev.ID,
					Type:    eventlog.RecordEngineWarning,
					Plugin:  res.Plugin,
					Hook:    res.Hook,
					Message: fmt.Sprintf("overlapping cache claim on %s (also tracked by %s); last writer wins", f, prev),
				})
			} else {
				claimed[f] = res.Key()
			}
		}

		if err := e.cache.Store(cache.Key{Hook: res.Key(), InputHash: in.hash}, in.files); err != nil {
			e.log.Append(eventlog.Record{
				EventID: ev.ID,
				Type:    eventlog.RecordEngineWarning,
				Plugin:  res.Plugin,
				Hook:    res.Hook,
				Message: fmt.Sprintf("cache store: %v", err),
			})
		}
	}
}

// deliver splits results by delivery mode, renders the inline block, and
// pushes async results through the notifier.
func (e *Engine) deliver(ctx context.Context, ev *hooks.Event, results []*hooks.Result) *Outcome {
	var inline, async []*hooks.Result
	for _, res := range results {
		if res.DeliveryMode == hooks.DeliveryAsync {
			async = append(async, res)
		} else {
			inline = append(inline, res)
		}
	}

	outcome := &Outcome{
		EventID:     ev.ID,
		Results:     results,
		InlineBlock: delivery.FormatInline(inline),
	}

	if len(async) > 0 {
		payload := &delivery.Payload{
			EventID:     ev.ID,
			Summary:     delivery.Summarize(async),
			HookResults: async,
		}
		if e.notifier == nil {
			e.log.Append(eventlog.Record{
				EventID: ev.ID,
				Type:    eventlog.RecordEngineWarning,
				Message: "no async notifier configured; async results dropped",
			})
		} else if err := e.notifier.Notify(ctx, payload); err != nil {
			// Delivery failure must never block the coordinating flow.
			e.log.Append(eventlog.Record{
				EventID: ev.ID,
				Type:    eventlog.RecordEngineWarning,
				Message: fmt.Sprintf("async delivery dropped: %v", err),
			})
		}
	}

	return outcome
}
