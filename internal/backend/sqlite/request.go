// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package sqlite

import (
	"context"

	"github.com/juju/errors"
	"github.com/rs/xid"
	"gopkg.in/tomb.v2"

	"github.com/kananoja/nemo-qml-plugin-contacts/core/cache"
)

// request runs one backend operation on its own goroutine.
type request struct {
	tomb    tomb.Tomb
	id      xid.ID
	results chan cache.Result
}

// start runs work as a new request. work delivers results through emit,
// which fails once the request is killed.
func (b *Backend) start(name string, work func(ctx context.Context, emit func(cache.Result) error) error) *request {
	r := &request{
		id:      xid.New(),
		results: make(chan cache.Result),
	}
	b.logger.Tracef("request %s: starting %s", r.id, name)
	r.tomb.Go(func() error {
		defer close(r.results)
		err := work(r.tomb.Context(context.Background()), r.emit)
		if err != nil {
			select {
			case <-r.tomb.Dying():
				// Killed; the failure is a consequence.
				return tomb.ErrDying
			default:
			}
			b.logger.Debugf("request %s: %s failed: %v", r.id, name, err)
			return errors.Annotatef(err, "%s request %s", name, r.id)
		}
		b.logger.Tracef("request %s: %s finished", r.id, name)
		return nil
	})
	return r
}

func (r *request) emit(result cache.Result) error {
	select {
	case r.results <- result:
		return nil
	case <-r.tomb.Dying():
		return tomb.ErrDying
	}
}

// Results is part of cache.Request.
func (r *request) Results() <-chan cache.Result {
	return r.results
}

// Kill is part of the worker.Worker interface.
func (r *request) Kill() {
	r.tomb.Kill(nil)
}

// Wait is part of the worker.Worker interface.
func (r *request) Wait() error {
	return r.tomb.Wait()
}
