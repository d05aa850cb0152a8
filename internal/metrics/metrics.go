// github.com/kse2/pwsafe - a library for reading and writing Password Safe files
// Copyright (C) 2026  pwsafe contributors
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

// Package metrics instruments File load/save with prometheus
// counters and duration histograms. Ambient observability, not
// excluded by the Non-goals (those exclude CLI/GUI/network transport,
// not metrics).
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	loadsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pwsafe",
		Name:      "loads_total",
		Help:      "Completed File.Load calls, by outcome.",
	}, []string{"version", "outcome"})

	savesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pwsafe",
		Name:      "saves_total",
		Help:      "Completed File.Save calls, by outcome.",
	}, []string{"version", "outcome"})

	loadDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "pwsafe",
		Name:      "load_duration_seconds",
		Help:      "Time spent in File.Load.",
		Buckets:   prometheus.DefBuckets,
	})

	saveDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "pwsafe",
		Name:      "save_duration_seconds",
		Help:      "Time spent in File.Save.",
		Buckets:   prometheus.DefBuckets,
	})
)

func init() {
	prometheus.MustRegister(loadsTotal, savesTotal, loadDuration, saveDuration)
}

// ObserveLoad records one File.Load call's outcome and duration.
func ObserveLoad(version string, ok bool, elapsed time.Duration) {
	loadsTotal.WithLabelValues(version, outcome(ok)).Inc()
	loadDuration.Observe(elapsed.Seconds())
}

// ObserveSave records one File.Save call's outcome and duration.
func ObserveSave(version string, ok bool, elapsed time.Duration) {
	savesTotal.WithLabelValues(version, outcome(ok)).Inc()
	saveDuration.Observe(elapsed.Seconds())
}

func outcome(ok bool) string {
	if ok {
		return "ok"
	}
	return "error"
}
