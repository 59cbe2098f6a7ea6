// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package contactcache

import (
	"sync"

	"github.com/juju/clock"
	"github.com/juju/errors"
	"github.com/juju/pubsub/v2"
	"github.com/juju/worker/v4"
	"github.com/juju/worker/v4/catacomb"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/kananoja/nemo-qml-plugin-contacts/core/cache"
	"github.com/kananoja/nemo-qml-plugin-contacts/core/contact"
)

// Logger represents the methods used by the worker to log information.
type Logger interface {
	Tracef(string, ...interface{})
	Debugf(string, ...interface{})
	Infof(string, ...interface{})
	Warningf(string, ...interface{})
	Errorf(string, ...interface{})
}

// PrefsWatcher reports changes of the preferred display label order.
type PrefsWatcher interface {
	worker.Worker
	Changes() <-chan contact.DisplayLabelOrder
}

// Config defines the operation of the Worker.
type Config struct {
	Backend cache.Backend
	Clock   clock.Clock
	Hub     *pubsub.SimpleHub
	Logger  Logger

	// DisplayLabelOrder is the order the cache starts with.
	DisplayLabelOrder contact.DisplayLabelOrder

	// NewPrefsWatcher, if set, returns a watcher whose changes are applied
	// to the cache. The worker owns the watcher.
	NewPrefsWatcher func() (PrefsWatcher, error)

	// PrometheusRegisterer, if set, has the cache metrics registered with
	// it for the lifetime of the worker.
	PrometheusRegisterer prometheus.Registerer
}

// Validate returns an error if config cannot drive the Worker.
func (config Config) Validate() error {
	if config.Backend == nil {
		return errors.NotValidf("nil Backend")
	}
	if config.Clock == nil {
		return errors.NotValidf("nil Clock")
	}
	if config.Hub == nil {
		return errors.NotValidf("nil Hub")
	}
	if config.Logger == nil {
		return errors.NotValidf("nil Logger")
	}
	return errors.Trace(config.DisplayLabelOrder.Validate())
}

// requestEvent carries a batch of results, or the completion, of a backend
// request to the loop.
type requestEvent struct {
	req      cache.Request
	result   cache.Result
	finished bool
	err      error
}

// Worker owns a cache and runs its pipeline: it drives the cache whenever
// it has work, delivers request results and backend changes to it and fires
// its fetch timer.
type Worker struct {
	catacomb catacomb.Catacomb
	config   Config
	cache    *cache.Cache

	events chan requestEvent
	done   chan struct{}

	// wg tracks the goroutines forwarding request events.
	wg sync.WaitGroup
}

// New returns a Worker backed by config, or an error.
func New(config Config) (*Worker, error) {
	if err := config.Validate(); err != nil {
		return nil, errors.Trace(err)
	}
	w := &Worker{
		config: config,
		events: make(chan requestEvent),
		done:   make(chan struct{}),
	}
	c, err := cache.New(cache.Config{
		Backend:           config.Backend,
		Clock:             config.Clock,
		Hub:               config.Hub,
		Logger:            config.Logger,
		DisplayLabelOrder: config.DisplayLabelOrder,
		RequestStarted:    w.requestStarted,
	})
	if err != nil {
		return nil, errors.Trace(err)
	}
	w.cache = c

	err = catacomb.Invoke(catacomb.Plan{
		Site: &w.catacomb,
		Work: w.loop,
	})
	if err != nil {
		return nil, errors.Trace(err)
	}
	return w, nil
}

// Cache returns the cache run by the worker.
func (w *Worker) Cache() *cache.Cache {
	return w.cache
}

// Kill is part of the worker.Worker interface.
func (w *Worker) Kill() {
	w.catacomb.Kill(nil)
}

// Wait is part of the worker.Worker interface.
func (w *Worker) Wait() error {
	return w.catacomb.Wait()
}

// Report returns information that is used in the dependency engine report.
func (w *Worker) Report() map[string]interface{} {
	return w.cache.Report()
}

func (w *Worker) loop() error {
	if w.config.PrometheusRegisterer != nil {
		collector := NewMetricsCollector(w.cache)
		_ = w.config.PrometheusRegisterer.Register(collector)
		defer w.config.PrometheusRegisterer.Unregister(collector)
	}
	defer func() {
		close(w.done)
		w.wg.Wait()
	}()

	changes, err := w.config.Backend.WatchChanges()
	if err != nil {
		return errors.Annotate(err, "watching backend changes")
	}
	if err := w.catacomb.Add(changes); err != nil {
		return errors.Trace(err)
	}

	var prefsChanges <-chan contact.DisplayLabelOrder
	if w.config.NewPrefsWatcher != nil {
		prefs, err := w.config.NewPrefsWatcher()
		if err != nil {
			return errors.Annotate(err, "watching preferences")
		}
		if err := w.catacomb.Add(prefs); err != nil {
			return errors.Trace(err)
		}
		prefsChanges = prefs.Changes()
	}

	w.cache.Start()
	for {
		select {
		case <-w.catacomb.Dying():
			return w.catacomb.ErrDying()
		case <-w.cache.Wake():
			w.cache.Drive()
		case <-w.cache.FetchTimer():
			w.cache.FetchTimerFired()
		case ev := <-w.events:
			if ev.finished {
				w.cache.RequestFinished(ev.req, ev.err)
			} else {
				w.cache.ResultsAvailable(ev.req, ev.result)
			}
		case batch, ok := <-changes.Changes():
			if !ok {
				return errors.New("backend change watcher closed")
			}
			w.config.Logger.Tracef("backend reported %s for %d contacts", batch.Kind, len(batch.Ids))
			w.cache.HandleChange(batch)
		case order, ok := <-prefsChanges:
			if !ok {
				return errors.New("preferences watcher closed")
			}
			if err := w.cache.SetDisplayLabelOrder(order); err != nil {
				w.config.Logger.Warningf("ignoring display label order: %v", err)
			}
		}
	}
}

// requestStarted is called by the cache on the loop goroutine for every
// request it issues.
func (w *Worker) requestStarted(role cache.Role, req cache.Request) {
	w.config.Logger.Tracef("started %s request", role)
	w.wg.Add(1)
	go w.forward(req)
}

// forward passes the events of req to the loop until the request finishes
// or the worker stops. A request still running when the worker stops is
// killed.
func (w *Worker) forward(req cache.Request) {
	defer w.wg.Done()
	results := req.Results()
	for {
		select {
		case <-w.done:
			req.Kill()
			_ = req.Wait()
			return
		case result, ok := <-results:
			if !ok {
				w.send(requestEvent{req: req, finished: true, err: req.Wait()})
				return
			}
			if !w.send(requestEvent{req: req, result: result}) {
				req.Kill()
				_ = req.Wait()
				return
			}
		}
	}
}

func (w *Worker) send(ev requestEvent) bool {
	select {
	case w.events <- ev:
		return true
	case <-w.done:
		return false
	}
}
