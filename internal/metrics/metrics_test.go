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

package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveLoadIncrementsCounter(t *testing.T) {
	before := testutil.ToFloat64(loadsTotal.WithLabelValues("v3", "ok"))
	ObserveLoad("v3", true, 5*time.Millisecond)
	after := testutil.ToFloat64(loadsTotal.WithLabelValues("v3", "ok"))
	assert.Equal(t, before+1, after)
}

func TestObserveSaveRecordsErrorOutcome(t *testing.T) {
	before := testutil.ToFloat64(savesTotal.WithLabelValues("v1", "error"))
	ObserveSave("v1", false, time.Millisecond)
	after := testutil.ToFloat64(savesTotal.WithLabelValues("v1", "error"))
	assert.Equal(t, before+1, after)
}

func TestOutcomeLabel(t *testing.T) {
	assert.Equal(t, "ok", outcome(true))
	assert.Equal(t, "error", outcome(false))
}
