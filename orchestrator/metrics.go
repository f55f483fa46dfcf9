// Copyright 2025 Complia
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package orchestrator

import "github.com/prometheus/client_golang/prometheus"

var (
	promAuditsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "complia_audits_total",
			Help: "Total number of audit pipeline runs",
		},
		[]string{"status"},
	)
	promAuditDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "complia_audit_duration_milliseconds",
			Help:    "Audit pipeline duration in milliseconds",
			Buckets: []float64{100, 500, 1000, 2000, 5000, 10000, 30000, 60000, 120000},
		},
	)
	promAuditIssues = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "complia_audit_issues_total",
			Help: "Total number of compliance issues discovered",
		},
	)
	promPermitRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "complia_permit_requests_total",
			Help: "Total number of permit analysis runs",
		},
		[]string{"status"},
	)
	promExplanations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "complia_explanations_total",
			Help: "Total number of explanation runs",
		},
		[]string{"status"},
	)
)

func init() {
	prometheus.MustRegister(
		promAuditsTotal,
		promAuditDuration,
		promAuditIssues,
		promPermitRequests,
		promExplanations,
	)
}
