// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of robometry-go.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// This file implements manager.go: Manager, the public facade for
// configuration, channel registration, push, flush, and teardown.
package buffermanager

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	cclog "github.com/ClusterCockpit/cc-lib/v2/ccLogger"
	"github.com/google/uuid"
	"github.com/lestrrat-go/strftime"

	"github.com/robometry/robometry-go/pkg/buffermanager/matfile"
)

// Manager is a type-polymorphic, thread-safe, named-channel buffer
// registry with a background periodic flusher and a MAT-file serializer.
// The zero value is not usable; construct with New or NewFromConfig.
type Manager struct {
	// flushMu is the process-wide flush lock: Save holds it for the entire
	// channel-tree scan, and Configure/AddChannel(s) hold it to serialize
	// structural mutation with a flush in progress.
	flushMu sync.Mutex
	config  BufferConfig
	root    *treeNode

	// metaMu guards fields the flusher goroutine reads without holding
	// flushMu, so starting/stopping it never contends with an in-progress
	// Save.
	metaMu         sync.Mutex
	clock          ClockFunc
	saveCallback   SaveCallback
	flusherRunning bool
	stopCh         chan struct{}
	doneCh         chan struct{}
}

// New constructs an empty manager: no channels, no background flusher,
// n_samples = 0.
func New() *Manager {
	return &Manager{
		config: DefaultBufferConfig(),
		root:   newTreeNode(),
		clock:  wallClock,
	}
}

// NewFromConfig constructs an empty manager and immediately applies config.
func NewFromConfig(cfg BufferConfig) (*Manager, error) {
	m := New()
	if err := m.Configure(cfg); err != nil {
		return nil, err
	}
	return m, nil
}

// MustNewFromConfig is NewFromConfig, aborting the process on failure. This
// is the one documented fatal path in the package; every other entry point
// returns an error instead.
func MustNewFromConfig(cfg BufferConfig) *Manager {
	m, err := NewFromConfig(cfg)
	if err != nil {
		cclog.Fatalf("[BUFFERMGR]> fatal configuration failure: %v", err)
	}
	return m
}

func wallClock() float64 {
	return float64(time.Now().UnixNano()) / 1e9
}

// Configure applies cfg in seven ordered steps: reject an empty filename,
// resize existing channels,
// record the new config, register config.Channels, start or leave the
// flusher, populate the description list, and create the output path.
// Partial failure while registering config.Channels retains whatever
// channels were added before the failing one.
func (m *Manager) Configure(cfg BufferConfig) error {
	if cfg.FileName == "" {
		return ErrEmptyFilename
	}

	m.flushMu.Lock()
	defer m.flushMu.Unlock()

	// Step 2: resize every existing channel's ring buffer; this keeps the
	// most recent samples rather than copying data.
	for _, pc := range m.root.allLeaves() {
		pc.ch.setCapacity(cfg.NSamples)
	}

	// Step 3: record the full config. Channels are re-added below via
	// addChannelLocked, which appends to m.config.Channels itself.
	toAdd := cfg.Channels
	cfg.Channels = nil
	m.config = cfg

	// Step 4.
	for i, info := range toAdd {
		if err := m.addChannelLocked(info); err != nil {
			return fmt.Errorf("[BUFFERMGR]> configure: channel %d (%q): %w", i, info.Name, err)
		}
	}

	// Step 5.
	if cfg.SavePeriodically {
		m.startFlusher()
	}

	// Step 6: description cell-array representation is built lazily at
	// Save time from m.config.DescriptionList; nothing to precompute here
	// beyond keeping the field populated.
	m.config.DescriptionList = append([]string(nil), cfg.DescriptionList...)

	// Step 7.
	if cfg.Path != "" {
		if err := os.MkdirAll(cfg.Path, 0o755); err != nil {
			return fmt.Errorf("[BUFFERMGR]> configure: create path %s: %w", cfg.Path, err)
		}
	}

	return nil
}

// AddChannel registers info, installing an empty ring buffer of capacity
// n_samples and appending info to the config's channel list.
func (m *Manager) AddChannel(info ChannelInfo) error {
	m.flushMu.Lock()
	defer m.flushMu.Unlock()
	return m.addChannelLocked(info)
}

// AddChannels registers each entry of list in order, stopping at (and
// returning) the index of the first failure; channels registered before
// that index remain registered.
func (m *Manager) AddChannels(list []ChannelInfo) (int, error) {
	m.flushMu.Lock()
	defer m.flushMu.Unlock()
	for i, info := range list {
		if err := m.addChannelLocked(info); err != nil {
			return i, err
		}
	}
	return len(list), nil
}

func (m *Manager) addChannelLocked(info ChannelInfo) error {
	if err := info.validate(); err != nil {
		return err
	}
	info.normalize()
	ch := newChannel(info, m.config.NSamples)
	if err := m.root.addLeaf(info.Name, ch); err != nil {
		return err
	}
	m.config.Channels = append(m.config.Channels, info)
	return nil
}

// HasChannel reports whether path names a registered channel.
func (m *Manager) HasChannel(path string) bool {
	_, ok := m.root.getLeaf(path)
	return ok
}

// Push stamps value with the configured clock and delegates to
// PushWithTimestamp.
func (m *Manager) Push(path string, value any) error {
	return m.PushWithTimestamp(path, m.now(), value)
}

// PushWithTimestamp appends (ts, value) to the channel at path under that
// channel's own lock, binding the channel's type on the first successful
// push. ErrUnknownChannel is a programming error for the caller;
// ErrTypeMismatch and ErrShapeMismatch are logged and the record is
// dropped.
func (m *Manager) PushWithTimestamp(path string, ts float64, value any) error {
	ch, ok := m.root.getLeaf(path)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownChannel, path)
	}
	if err := ch.push(ts, value); err != nil {
		cclog.Warnf("[BUFFERMGR]> push to %q dropped: %v", path, err)
		return err
	}
	return nil
}

// Save performs one flush: drains every eligible channel under its lock,
// builds the hierarchical MAT struct, and writes it to
// <path>/<filename>_<index>.mat. Returns ErrNothingToWrite when no channel
// is eligible.
func (m *Manager) Save(forceAll bool) (string, error) {
	m.flushMu.Lock()
	defer m.flushMu.Unlock()
	return m.saveLocked(forceAll)
}

func (m *Manager) saveLocked(forceAll bool) (string, error) {
	cfg := m.config
	includeAll := forceAll || cfg.DataThreshold > cfg.NSamples

	channelFields := m.buildNode(m.root, includeAll, cfg.DataThreshold)
	if len(channelFields) == 0 {
		return "", ErrNothingToWrite
	}

	var topFields []matfile.Field
	if len(cfg.DescriptionList) > 0 {
		cells := make([]matfile.Variable, len(cfg.DescriptionList))
		for i, d := range cfg.DescriptionList {
			cells[i] = matfile.StringVar{Value: d}
		}
		topFields = append(topFields, matfile.Field{
			Name:  "description_list",
			Value: matfile.CellArray{Name: "description_list", Cells: cells},
		})
	}
	topFields = append(topFields, matfile.Field{
		Name:  "yarp_robot_name",
		Value: matfile.StringVar{Name: "yarp_robot_name", Value: cfg.RobotName},
	})
	topFields = append(topFields, channelFields...)

	indexStr, err := m.indexString(cfg)
	if err != nil {
		return "", err
	}
	filePath := filepath.Join(cfg.Path, fmt.Sprintf("%s_%s.mat", cfg.FileName, indexStr))

	if exists, err := fileExists(filePath); err != nil {
		return "", fmt.Errorf("[BUFFERMGR]> stat %s: %w", filePath, err)
	} else if exists {
		// time_since_epoch indices are decimal seconds at microsecond
		// precision; a collision is possible when flush cadence outruns
		// that resolution. Disambiguate once with a short random suffix
		// before surfacing ErrFileExists, rather than failing
		// the flush on the first coarse-clock collision.
		if cfg.FileIndexing == "" || cfg.FileIndexing == "time_since_epoch" {
			disambiguated := filepath.Join(cfg.Path, fmt.Sprintf("%s_%s-%s.mat", cfg.FileName, indexStr, shortUUID()))
			exists, err := fileExists(disambiguated)
			if err != nil {
				return "", fmt.Errorf("[BUFFERMGR]> stat %s: %w", disambiguated, err)
			}
			if !exists {
				filePath = disambiguated
			} else {
				return "", fmt.Errorf("%w: %s", ErrFileExists, disambiguated)
			}
		} else {
			return "", fmt.Errorf("%w: %s", ErrFileExists, filePath)
		}
	}

	compress := cfg.EnableCompression
	if cfg.MatFileVersion == MatFileV73 || cfg.MatFileVersion == MatFileV4 {
		cclog.Warnf("[BUFFERMGR]> mat_file_version %s is not natively supported; writing a v5 container instead", cfg.MatFileVersion)
	}

	w, err := matfile.Create(filePath, compress)
	if err != nil {
		return "", err
	}
	defer w.Close()

	top := matfile.StructVar{Name: cfg.FileName, Fields: topFields}
	if err := w.Write(top); err != nil {
		return "", fmt.Errorf("[BUFFERMGR]> write %s: %w", filePath, err)
	}
	return filePath, nil
}

// buildNode recursively renders node into MAT struct fields in
// insertion-traversal order, so interior channel-tree nodes become nested
// structs.
func (m *Manager) buildNode(node *treeNode, includeAll bool, threshold int) []matfile.Field {
	node.mu.RLock()
	order := append([]string(nil), node.childOrder...)
	children := make(map[string]*treeNode, len(node.children))
	for k, v := range node.children {
		children[k] = v
	}
	node.mu.RUnlock()

	var fields []matfile.Field
	for _, name := range order {
		child := children[name]
		if child.leaf != nil {
			if v, ok := drainLeaf(name, child.leaf, includeAll, threshold); ok {
				fields = append(fields, matfile.Field{Name: name, Value: v})
			}
			continue
		}
		sub := m.buildNode(child, includeAll, threshold)
		if len(sub) > 0 {
			fields = append(fields, matfile.Field{Name: name, Value: matfile.StructVar{Name: name, Fields: sub}})
		}
	}
	return fields
}

// drainLeaf checks eligibility, drains, and clears one channel under its
// own lock, returning the per-channel MAT struct. Channels with zero
// buffered samples are always skipped.
func drainLeaf(name string, ch *channel, includeAll bool, threshold int) (matfile.Variable, bool) {
	ch.mu.Lock()
	defer ch.mu.Unlock()

	n := ch.buf.len()
	if n == 0 {
		return nil, false
	}
	if !includeAll && n < threshold {
		return nil, false
	}

	records := ch.buf.snapshot()
	ch.buf.clear()

	data := ch.encode("data", ch.info, records)

	dims := append(append([]int(nil), ch.info.Dimensions...), len(records))
	dimsF := make([]float64, len(dims))
	for i, d := range dims {
		dimsF[i] = float64(d)
	}

	elementsNames := make([]matfile.Variable, len(ch.info.ElementsNames))
	for i, en := range ch.info.ElementsNames {
		elementsNames[i] = matfile.StringVar{Value: en}
	}

	ts := make([]float64, len(records))
	for i, r := range records {
		ts[i] = r.ts
	}

	return matfile.StructVar{
		Name: name,
		Fields: []matfile.Field{
			{Name: "data", Value: data},
			{Name: "dimensions", Value: matfile.NumericArray{Name: "dimensions", Dims: []int{1, len(dims)}, Data: dimsF}},
			{Name: "elements_names", Value: matfile.CellArray{Name: "elements_names", Cells: elementsNames}},
			{Name: "name", Value: matfile.StringVar{Name: "name", Value: name}},
			{Name: "timestamps", Value: matfile.NumericArray{Name: "timestamps", Dims: []int{1, len(records)}, Data: ts}},
		},
	}, true
}

// indexString computes the <index_string> filename component: the clock
// value as a high-precision decimal for time_since_epoch, or a
// strftime-style rendering of local time otherwise.
func (m *Manager) indexString(cfg BufferConfig) (string, error) {
	if cfg.FileIndexing == "" || cfg.FileIndexing == "time_since_epoch" {
		return strconv.FormatFloat(m.now(), 'f', 6, 64), nil
	}
	f, err := strftime.New(cfg.FileIndexing)
	if err != nil {
		return "", fmt.Errorf("[BUFFERMGR]> invalid file_indexing pattern %q: %w", cfg.FileIndexing, err)
	}
	return f.FormatString(time.Now()), nil
}

// fileExists reports whether path names an existing file, distinguishing
// a genuine stat failure from "does not exist".
func fileExists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, err
}

// shortUUID returns the first segment of a random UUID, enough entropy to
// disambiguate a coarse-clock filename collision without producing an
// unwieldy file name.
func shortUUID() string {
	id := uuid.New().String()
	if i := strings.IndexByte(id, '-'); i >= 0 {
		return id[:i]
	}
	return id
}

// GetConfig returns a copy of the manager's current configuration.
func (m *Manager) GetConfig() BufferConfig {
	m.flushMu.Lock()
	defer m.flushMu.Unlock()
	return m.config.clone()
}

// SetFileName updates the output base filename.
func (m *Manager) SetFileName(name string) {
	m.flushMu.Lock()
	defer m.flushMu.Unlock()
	m.config.FileName = name
}

// SetDefaultPath updates the output directory, creating it if missing.
func (m *Manager) SetDefaultPath(path string) error {
	m.flushMu.Lock()
	defer m.flushMu.Unlock()
	if path != "" {
		if err := os.MkdirAll(path, 0o755); err != nil {
			return fmt.Errorf("[BUFFERMGR]> set default path %s: %w", path, err)
		}
	}
	m.config.Path = path
	return nil
}

// EnableCompression toggles zlib compression for future Save calls.
func (m *Manager) EnableCompression(enable bool) {
	m.flushMu.Lock()
	defer m.flushMu.Unlock()
	m.config.EnableCompression = enable
}

// SetDescriptionList replaces the description strings stamped into future
// output files.
func (m *Manager) SetDescriptionList(descriptions []string) {
	m.flushMu.Lock()
	defer m.flushMu.Unlock()
	m.config.DescriptionList = append([]string(nil), descriptions...)
}

// Resize is an alias of SetCapacity.
func (m *Manager) Resize(n int) {
	m.SetCapacity(n)
}

// SetCapacity changes n_samples and resizes every existing channel's ring
// buffer, preserving its most recent records.
func (m *Manager) SetCapacity(n int) {
	m.flushMu.Lock()
	defer m.flushMu.Unlock()
	m.config.NSamples = n
	for _, pc := range m.root.allLeaves() {
		pc.ch.setCapacity(n)
	}
}

// SetClock installs fn as the source of Push's implicit timestamp.
func (m *Manager) SetClock(fn ClockFunc) {
	m.metaMu.Lock()
	defer m.metaMu.Unlock()
	if fn == nil {
		fn = wallClock
	}
	m.clock = fn
}

func (m *Manager) now() float64 {
	m.metaMu.Lock()
	fn := m.clock
	m.metaMu.Unlock()
	return fn()
}

// SetSaveCallback installs fn to be invoked after every successful periodic
// flush and after the final flush in Close (not after a direct Save call).
func (m *Manager) SetSaveCallback(fn SaveCallback) {
	m.metaMu.Lock()
	defer m.metaMu.Unlock()
	m.saveCallback = fn
}

func (m *Manager) getSaveCallback() SaveCallback {
	m.metaMu.Lock()
	defer m.metaMu.Unlock()
	return m.saveCallback
}

// EnablePeriodicSave starts the background flusher if it is not already
// running.
func (m *Manager) EnablePeriodicSave() {
	m.flushMu.Lock()
	defer m.flushMu.Unlock()
	m.startFlusher()
}

// DisablePeriodicSave stops the background flusher, waiting for it to
// exit. It is idempotent.
func (m *Manager) DisablePeriodicSave() {
	m.stopFlusher()
}

// Close signals the flusher to stop and, if auto_save is configured,
// performs one final forced flush, invoking the save callback with reason
// last_call.
func (m *Manager) Close() error {
	m.stopFlusher()

	m.flushMu.Lock()
	autoSave := m.config.AutoSave
	defer m.flushMu.Unlock()

	if !autoSave {
		return nil
	}
	path, err := m.saveLocked(true)
	if err != nil {
		if errors.Is(err, ErrNothingToWrite) {
			return nil
		}
		return err
	}
	if cb := m.getSaveCallback(); cb != nil {
		ok := cb(path, SaveReasonLastCall)
		cclog.Debugf("[BUFFERMGR]> save callback returned %v for %s (last_call)", ok, path)
	}
	return nil
}
