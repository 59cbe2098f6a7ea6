// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package cache

import (
	"sync"

	"github.com/juju/pubsub/v2"
	"gopkg.in/tomb.v2"

	"github.com/kananoja/nemo-qml-plugin-contacts/core/contact"
)

// PersonWatcher delivers snapshots of one person as the cache updates it.
type PersonWatcher struct {
	tomb    tomb.Tomb
	changes chan *Person
	// We can't send down a closed channel, so protect the sending
	// with a mutex and bool.
	closed bool
	mu     sync.Mutex

	key contact.Key
}

func newPersonWatcher(key contact.Key, hub *pubsub.SimpleHub, current *Person) *PersonWatcher {
	// A single entry buffer holds the latest snapshot; older undelivered
	// snapshots are replaced.
	w := &PersonWatcher{
		changes: make(chan *Person, 1),
		key:     key,
	}
	if current != nil {
		w.changes <- current
	}
	unsub := hub.Subscribe(personTopic(key), w.onUpdate)
	w.tomb.Go(func() error {
		<-w.tomb.Dying()
		unsub()
		return nil
	})
	return w
}

// Changes returns the channel snapshots are delivered on. It is closed when
// the watcher is killed.
func (w *PersonWatcher) Changes() <-chan *Person {
	return w.changes
}

// Kill is part of the worker.Worker interface.
func (w *PersonWatcher) Kill() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return
	}

	// The watcher must be dying or dead before we close the channel.
	// Otherwise readers could fail, but the watcher's tomb would indicate
	// "still alive".
	w.tomb.Kill(nil)
	w.closed = true
	close(w.changes)
}

// Wait is part of the worker.Worker interface.
func (w *PersonWatcher) Wait() error {
	return w.tomb.Wait()
}

func (w *PersonWatcher) onUpdate(_ string, data interface{}) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return
	}

	person, ok := data.(*Person)
	if !ok {
		logger.Criticalf("programming error: topic data expected *Person, got %T", data)
		return
	}
	if person.Key != w.key {
		return
	}

	// Never block inside the mutex: replace an undelivered snapshot with
	// the newer one instead.
	for {
		select {
		case w.changes <- person:
			return
		default:
		}
		select {
		case <-w.changes:
		default:
		}
	}
}
