// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of robometry-go.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// telemetry-dump is a thin example binary: it wires a synthetic periodic
// "device" goroutine into a buffermanager.Manager purely to exercise
// Push/Save end to end. It contains no core logic; a real robot process
// would call the library directly from its own control loop instead of
// spawning a fake producer like this one.
package main

import (
	"flag"
	"math"
	"os"
	"os/signal"
	"syscall"
	"time"

	cclog "github.com/ClusterCockpit/cc-lib/v2/ccLogger"

	"github.com/robometry/robometry-go/pkg/buffermanager"
)

func main() {
	var (
		flagFileName  string
		flagPath      string
		flagNSamples  int
		flagPeriod    float64
		flagRate      float64
		flagCompress  bool
		flagRobotName string
	)
	flag.StringVar(&flagFileName, "filename", "telemetry", "Base name of output .mat files")
	flag.StringVar(&flagPath, "path", "./dump", "Directory to write output files into")
	flag.IntVar(&flagNSamples, "n-samples", 200, "Ring-buffer capacity per channel")
	flag.Float64Var(&flagPeriod, "save-period", 1.0, "Seconds between background flushes")
	flag.Float64Var(&flagRate, "rate", 100.0, "Synthetic device push rate in Hz")
	flag.BoolVar(&flagCompress, "compress", true, "Enable zlib compression of output files")
	flag.StringVar(&flagRobotName, "robot-name", "icub-demo", "Robot name stamped into each file")
	flag.Parse()

	cfg := buffermanager.DefaultBufferConfig()
	cfg.FileName = flagFileName
	cfg.Path = flagPath
	cfg.NSamples = flagNSamples
	cfg.SavePeriod = flagPeriod
	cfg.SavePeriodically = true
	cfg.AutoSave = true
	cfg.DataThreshold = flagNSamples / 4
	cfg.EnableCompression = flagCompress
	cfg.RobotName = flagRobotName
	cfg.DescriptionList = []string{"synthetic telemetry-dump example session"}
	cfg.Channels = []buffermanager.ChannelInfo{
		{Name: "encoders::left_arm", Dimensions: []int{3}, ElementsNames: []string{"shoulder", "elbow", "wrist"}, UnitsOfMeasure: []string{"deg"}},
		{Name: "encoders::right_arm", Dimensions: []int{3}, ElementsNames: []string{"shoulder", "elbow", "wrist"}, UnitsOfMeasure: []string{"deg"}},
		{Name: "imu::orientation", Dimensions: []int{4}},
	}

	mgr, err := buffermanager.NewFromConfig(cfg)
	if err != nil {
		cclog.Fatalf("[BUFFERMGR]> configure failed: %v", err)
	}
	mgr.SetSaveCallback(func(path string, reason buffermanager.SaveReason) bool {
		cclog.Infof("[BUFFERMGR]> wrote %s (%s)", path, reason)
		return true
	})

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	tick := time.NewTicker(time.Duration(float64(time.Second) / flagRate))
	defer tick.Stop()

	var t float64
	for {
		select {
		case <-stop:
			if err := mgr.Close(); err != nil {
				cclog.Errorf("[BUFFERMGR]> final flush failed: %v", err)
			}
			return
		case <-tick.C:
			t += 1.0 / flagRate
			pushSyntheticDevice(mgr, t)
		}
	}
}

// pushSyntheticDevice stands in for a real robot I/O adapter: it generates
// plausible arm-encoder and IMU values and calls the library's push entry
// points.
func pushSyntheticDevice(mgr *buffermanager.Manager, t float64) {
	left := []float64{30 * math.Sin(t), 45 * math.Cos(t), 10 * math.Sin(2*t)}
	right := []float64{-30 * math.Sin(t), -45 * math.Cos(t), -10 * math.Sin(2*t)}
	orientation := []float64{math.Cos(t / 2), math.Sin(t / 2), 0, 0}

	if err := mgr.Push("encoders::left_arm", left); err != nil {
		cclog.Warnf("[BUFFERMGR]> push left_arm: %v", err)
	}
	if err := mgr.Push("encoders::right_arm", right); err != nil {
		cclog.Warnf("[BUFFERMGR]> push right_arm: %v", err)
	}
	if err := mgr.Push("imu::orientation", orientation); err != nil {
		cclog.Warnf("[BUFFERMGR]> push imu::orientation: %v", err)
	}
}
