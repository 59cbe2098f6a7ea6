// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package sqlite

import (
	"github.com/juju/pubsub/v2"
	"gopkg.in/tomb.v2"

	"github.com/kananoja/nemo-qml-plugin-contacts/core/cache"
)

// changeWatcher delivers committed changes in the order they were
// published. Batches are queued while the consumer is busy.
type changeWatcher struct {
	tomb tomb.Tomb
	in   chan cache.ChangeBatch
	out  chan cache.ChangeBatch
}

func newChangeWatcher(hub *pubsub.SimpleHub) *changeWatcher {
	w := &changeWatcher{
		in:  make(chan cache.ChangeBatch),
		out: make(chan cache.ChangeBatch),
	}
	unsubscribe := hub.Subscribe(changesTopic, w.onChange)
	w.tomb.Go(func() error {
		defer unsubscribe()
		return w.loop()
	})
	return w
}

func (w *changeWatcher) onChange(_ string, data interface{}) {
	batch, ok := data.(cache.ChangeBatch)
	if !ok {
		logger.Criticalf("programming error: topic data expected cache.ChangeBatch, got %T", data)
		return
	}
	select {
	case w.in <- batch:
	case <-w.tomb.Dying():
	}
}

func (w *changeWatcher) loop() error {
	defer close(w.out)

	var pending []cache.ChangeBatch
	for {
		var (
			out  chan cache.ChangeBatch
			next cache.ChangeBatch
		)
		if len(pending) > 0 {
			out = w.out
			next = pending[0]
		}
		select {
		case <-w.tomb.Dying():
			return tomb.ErrDying
		case batch := <-w.in:
			pending = append(pending, batch)
		case out <- next:
			pending = pending[1:]
		}
	}
}

// Changes is part of cache.ChangeWatcher.
func (w *changeWatcher) Changes() <-chan cache.ChangeBatch {
	return w.out
}

// Kill is part of the worker.Worker interface.
func (w *changeWatcher) Kill() {
	w.tomb.Kill(nil)
}

// Wait is part of the worker.Worker interface.
func (w *changeWatcher) Wait() error {
	return w.tomb.Wait()
}
