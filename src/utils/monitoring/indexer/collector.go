package monitor_indexer

import (
	"github.com/prometheus/client_golang/prometheus"
)

type Collector struct {
	monitor *Monitor

	// Run
	UpForSeconds *prometheus.Desc

	// Errors
	ClaimFailures            *prometheus.Desc
	InsertFailures           *prometheus.Desc
	SyncStatusInsertFailures *prometheus.Desc
	ListenerFailures         *prometheus.Desc
	BlockNumberMissing       *prometheus.Desc
	ReceiptDecodeFailures    *prometheus.Desc

	// State
	BlocksClaimed      *prometheus.Desc
	LogsIndexed        *prometheus.Desc
	CyclesCommitted    *prometheus.Desc
	CyclesAborted      *prometheus.Desc
	SchemaFallbacks    *prometheus.Desc
	SyncStatusQueued   *prometheus.Desc
	ListenerLastNumber *prometheus.Desc
	LastCycleBatchSize *prometheus.Desc
}

func NewCollector() *Collector {
	return &Collector{
		UpForSeconds: prometheus.NewDesc("up_for_seconds", "", nil, nil),

		// Errors
		ClaimFailures:            prometheus.NewDesc("claim_failures", "", nil, nil),
		InsertFailures:           prometheus.NewDesc("insert_failures", "", nil, nil),
		SyncStatusInsertFailures: prometheus.NewDesc("sync_status_insert_failures", "", nil, nil),
		ListenerFailures:         prometheus.NewDesc("listener_failures", "", nil, nil),
		BlockNumberMissing:       prometheus.NewDesc("block_number_missing", "", nil, nil),
		ReceiptDecodeFailures:    prometheus.NewDesc("receipt_decode_failures", "", nil, nil),

		// State
		BlocksClaimed:      prometheus.NewDesc("blocks_claimed", "", nil, nil),
		LogsIndexed:        prometheus.NewDesc("logs_indexed", "", nil, nil),
		CyclesCommitted:    prometheus.NewDesc("cycles_committed", "", nil, nil),
		CyclesAborted:      prometheus.NewDesc("cycles_aborted", "", nil, nil),
		SchemaFallbacks:    prometheus.NewDesc("schema_fallbacks", "", nil, nil),
		SyncStatusQueued:   prometheus.NewDesc("sync_status_queued", "", nil, nil),
		ListenerLastNumber: prometheus.NewDesc("listener_last_number", "", nil, nil),
		LastCycleBatchSize: prometheus.NewDesc("last_cycle_batch_size", "", nil, nil),
	}
}

func (self *Collector) WithMonitor(m *Monitor) *Collector {
	self.monitor = m
	return self
}

func (self *Collector) Describe(ch chan<- *prometheus.Desc) {
	// Run
	ch <- self.UpForSeconds

	// Errors
	ch <- self.ClaimFailures
	ch <- self.InsertFailures
	ch <- self.SyncStatusInsertFailures
	ch <- self.ListenerFailures
	ch <- self.BlockNumberMissing
	ch <- self.ReceiptDecodeFailures

	// State
	ch <- self.BlocksClaimed
	ch <- self.LogsIndexed
	ch <- self.CyclesCommitted
	ch <- self.CyclesAborted
	ch <- self.SchemaFallbacks
	ch <- self.SyncStatusQueued
	ch <- self.ListenerLastNumber
	ch <- self.LastCycleBatchSize
}

// Collect implements required collect function for all prometheus collectors
func (self *Collector) Collect(ch chan<- prometheus.Metric) {
	// Run
	ch <- prometheus.MustNewConstMetric(self.UpForSeconds, prometheus.GaugeValue, float64(self.monitor.Report.Run.State.UpForSeconds.Load()))

	// Errors
	ch <- prometheus.MustNewConstMetric(self.ClaimFailures, prometheus.CounterValue, float64(self.monitor.Report.Indexer.Errors.ClaimFailures.Load()))
	ch <- prometheus.MustNewConstMetric(self.InsertFailures, prometheus.CounterValue, float64(self.monitor.Report.Indexer.Errors.InsertFailures.Load()))
	ch <- prometheus.MustNewConstMetric(self.SyncStatusInsertFailures, prometheus.CounterValue, float64(self.monitor.Report.Indexer.Errors.SyncStatusInsertFailures.Load()))
	ch <- prometheus.MustNewConstMetric(self.ListenerFailures, prometheus.CounterValue, float64(self.monitor.Report.Indexer.Errors.ListenerFailures.Load()))
	ch <- prometheus.MustNewConstMetric(self.BlockNumberMissing, prometheus.CounterValue, float64(self.monitor.Report.Indexer.Errors.BlockNumberMissing.Load()))
	ch <- prometheus.MustNewConstMetric(self.ReceiptDecodeFailures, prometheus.CounterValue, float64(self.monitor.Report.Indexer.Errors.ReceiptDecodeFailures.Load()))

	// State
	ch <- prometheus.MustNewConstMetric(self.BlocksClaimed, prometheus.CounterValue, float64(self.monitor.Report.Indexer.State.BlocksClaimed.Load()))
	ch <- prometheus.MustNewConstMetric(self.LogsIndexed, prometheus.CounterValue, float64(self.monitor.Report.Indexer.State.LogsIndexed.Load()))
	ch <- prometheus.MustNewConstMetric(self.CyclesCommitted, prometheus.CounterValue, float64(self.monitor.Report.Indexer.State.CyclesCommitted.Load()))
	ch <- prometheus.MustNewConstMetric(self.CyclesAborted, prometheus.CounterValue, float64(self.monitor.Report.Indexer.State.CyclesAborted.Load()))
	ch <- prometheus.MustNewConstMetric(self.SchemaFallbacks, prometheus.CounterValue, float64(self.monitor.Report.Indexer.State.SchemaFallbacks.Load()))
	ch <- prometheus.MustNewConstMetric(self.SyncStatusQueued, prometheus.CounterValue, float64(self.monitor.Report.Indexer.State.SyncStatusQueued.Load()))
	ch <- prometheus.MustNewConstMetric(self.ListenerLastNumber, prometheus.GaugeValue, float64(self.monitor.Report.Indexer.State.ListenerLastNumber.Load()))
	ch <- prometheus.MustNewConstMetric(self.LastCycleBatchSize, prometheus.GaugeValue, float64(self.monitor.Report.Indexer.State.LastCycleBatchSize.Load()))
}
