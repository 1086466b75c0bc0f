// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of robometry-go.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// This file implements flusher.go: the periodic background flush thread.
// Shutdown must wake it immediately rather than waiting out the current
// period, so it races a stop channel against a timer in select rather than
// hand-rolling a sync.Cond.
package buffermanager

import (
	"errors"
	"time"

	cclog "github.com/ClusterCockpit/cc-lib/v2/ccLogger"
)

// startFlusher starts the background flusher if it is not already running.
// Callers must hold flushMu.
func (m *Manager) startFlusher() {
	m.metaMu.Lock()
	if m.flusherRunning {
		m.metaMu.Unlock()
		return
	}
	stop := make(chan struct{})
	done := make(chan struct{})
	m.stopCh, m.doneCh = stop, done
	m.flusherRunning = true
	m.metaMu.Unlock()

	go m.runFlusher(stop, done)
}

// stopFlusher signals the flusher to stop and waits for it to exit. Safe
// to call when no flusher is running.
func (m *Manager) stopFlusher() {
	m.metaMu.Lock()
	if !m.flusherRunning {
		m.metaMu.Unlock()
		return
	}
	stop, done := m.stopCh, m.doneCh
	m.flusherRunning = false
	m.metaMu.Unlock()

	close(stop)
	<-done
}

// runFlusher is the periodic thread's loop: wait with timeout save_period,
// wake immediately on stop, and otherwise attempt a non-forced save if the
// channel tree is non-empty.
func (m *Manager) runFlusher(stop, done chan struct{}) {
	defer close(done)

	for {
		period := m.currentSavePeriod()
		if period <= 0 {
			period = time.Second
		}
		timer := time.NewTimer(time.Duration(period * float64(time.Second)))

		select {
		case <-stop:
			timer.Stop()
			return
		case <-timer.C:
		}

		if m.root.empty() {
			continue
		}

		path, err := m.Save(false)
		if err != nil {
			if !errors.Is(err, ErrNothingToWrite) {
				cclog.Errorf("[BUFFERMGR]> periodic flush failed: %v", err)
			}
			continue
		}

		if cb := m.getSaveCallback(); cb != nil {
			ok := cb(path, SaveReasonPeriodic)
			cclog.Debugf("[BUFFERMGR]> save callback returned %v for %s (periodic)", ok, path)
		}
	}
}

func (m *Manager) currentSavePeriod() float64 {
	m.flushMu.Lock()
	defer m.flushMu.Unlock()
	return m.config.SavePeriod
}
