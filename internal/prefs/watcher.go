// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package prefs

import (
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/juju/errors"
	"gopkg.in/tomb.v2"

	"github.com/kananoja/nemo-qml-plugin-contacts/core/contact"
)

// Logger represents the methods used by the watcher to log messages.
type Logger interface {
	Debugf(string, ...interface{})
	Warningf(string, ...interface{})
}

// Watcher reports changes of the display label order in a preferences
// file. The directory is watched so that files replaced by rename are
// followed.
type Watcher struct {
	tomb    tomb.Tomb
	path    string
	logger  Logger
	watcher *fsnotify.Watcher
	changes chan contact.DisplayLabelOrder
	current contact.DisplayLabelOrder
}

// NewWatcher returns a watcher for the preferences file at path. Only
// changes from the order in effect when it starts are reported.
func NewWatcher(path string, logger Logger) (*Watcher, error) {
	path = filepath.Clean(path)
	initial, err := Read(path)
	if err != nil {
		return nil, errors.Trace(err)
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Annotate(err, "creating file watcher")
	}
	if err := fw.Add(filepath.Dir(path)); err != nil {
		_ = fw.Close()
		return nil, errors.Annotatef(err, "watching %q", filepath.Dir(path))
	}
	w := &Watcher{
		path:    path,
		logger:  logger,
		watcher: fw,
		changes: make(chan contact.DisplayLabelOrder),
		current: initial.DisplayLabelOrder,
	}
	w.tomb.Go(w.loop)
	return w, nil
}

// Changes delivers the new display label order after each change.
func (w *Watcher) Changes() <-chan contact.DisplayLabelOrder {
	return w.changes
}

// Kill is part of the worker.Worker interface.
func (w *Watcher) Kill() {
	w.tomb.Kill(nil)
}

// Wait is part of the worker.Worker interface.
func (w *Watcher) Wait() error {
	return w.tomb.Wait()
}

func (w *Watcher) loop() error {
	defer func() { _ = w.watcher.Close() }()

	var (
		out     chan contact.DisplayLabelOrder
		pending contact.DisplayLabelOrder
	)
	for {
		select {
		case <-w.tomb.Dying():
			return tomb.ErrDying
		case event, ok := <-w.watcher.Events:
			if !ok {
				return errors.New("file watcher closed")
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			prefs, err := Read(w.path)
			if err != nil {
				w.logger.Warningf("ignoring preferences: %v", err)
				continue
			}
			if prefs.DisplayLabelOrder == w.current {
				continue
			}
			w.logger.Debugf("display label order changed to %s", prefs.DisplayLabelOrder)
			w.current = prefs.DisplayLabelOrder
			pending = prefs.DisplayLabelOrder
			out = w.changes
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return errors.New("file watcher closed")
			}
			w.logger.Warningf("watching %q: %v", w.path, err)
		case out <- pending:
			out = nil
		}
	}
}
