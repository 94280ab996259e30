// Copyright 2025 The OpenChoreo Authors
// SPDX-License-Identifier: Apache-2.0

// Package metrics exposes Prometheus instrumentation for the decision and
// quota engines.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Decisions collects outcome counts from the Decision Engine.
type Decisions struct {
	total *prometheus.CounterVec
}

// NewDecisions registers and returns a Decisions collector. Pass nil to use
// the default global registerer.
func NewDecisions(reg prometheus.Registerer) *Decisions {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	d := &Decisions{
		total: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rbac_decisions_total",
			Help: "Count of authorization decisions by resource and result.",
		}, []string{"resource", "result"}),
	}
	reg.MustRegister(d.total)
	return d
}

// Observe records a single decision outcome. result is expected to be
// "allow", "deny", or "error".
func (d *Decisions) Observe(resourceName, result string) {
	if d == nil {
		return
	}
	d.total.WithLabelValues(resourceName, result).Inc()
}

// Quota collects rejection counts from the Quota Enforcer.
type Quota struct {
	rejections *prometheus.CounterVec
}

// NewQuota registers and returns a Quota collector. Pass nil to use the
// default global registerer.
func NewQuota(reg prometheus.Registerer) *Quota {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	q := &Quota{
		rejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rbac_quota_rejections_total",
			Help: "Count of resource instance creations rejected for exceeding quota.",
		}, []string{"resource_id", "scope"}),
	}
	reg.MustRegister(q.rejections)
	return q
}

// ObserveRejection records a single quota rejection.
func (q *Quota) ObserveRejection(resourceID, scope string) {
	if q == nil {
		return
	}
	q.rejections.WithLabelValues(resourceID, scope).Inc()
}
