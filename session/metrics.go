// Copyright (c) 2024-present RTCSync, Inc. All Rights Reserved.
// See LICENSE.txt for license information.

package session

// Metrics is the interface through which the session reports telemetry.
type Metrics interface {
	IncEvents(evType string)
	IncEventsDropped(reason string)
	IncStateTransitions(state string)
	SetMembers(val float64)
}

type nullMetrics struct{}

func (nullMetrics) IncEvents(_ string)           {}
func (nullMetrics) IncEventsDropped(_ string)    {}
func (nullMetrics) IncStateTransitions(_ string) {}
func (nullMetrics) SetMembers(_ float64)         {}
