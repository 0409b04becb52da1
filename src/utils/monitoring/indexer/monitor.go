package monitor_indexer

import (
	"net/http"
	"time"

	"github.com/logsync/indexer/src/utils/monitoring/report"
	"github.com/logsync/indexer/src/utils/task"

	"github.com/gammazero/deque"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// Stores and computes monitor counters
type Monitor struct {
	*task.Task

	Report report.Report

	historySize int

	collector *Collector

	// Indexing speed
	logsIndexed *deque.Deque[uint64]
}

func NewMonitor() (self *Monitor) {
	self = new(Monitor)

	self.Report = report.Report{
		Run:     &report.RunReport{},
		Indexer: &report.IndexerReport{},
	}

	// Initialization
	self.Report.Run.State.StartTimestamp.Store(time.Now().Unix())

	self.collector = NewCollector().WithMonitor(self)

	self.Task = task.NewTask(nil, "monitor").
		WithPeriodicSubtaskFunc(time.Minute, self.monitorLogs)
	return
}

func (self *Monitor) WithMaxHistorySize(maxHistorySize int) *Monitor {
	self.historySize = maxHistorySize
	self.logsIndexed = deque.New[uint64](self.historySize)
	return self
}

func (self *Monitor) GetReport() *report.Report {
	return &self.Report
}

func (self *Monitor) GetPrometheusCollector() (collector prometheus.Collector) {
	return self.collector
}

// Measure log indexing speed, sampled once a minute
func (self *Monitor) monitorLogs() (err error) {
	loaded := self.Report.Indexer.State.LogsIndexed.Load()
	if loaded == 0 {
		// Neglect the first 0
		return
	}

	self.logsIndexed.PushBack(loaded)
	if self.logsIndexed.Len() > self.historySize {
		self.logsIndexed.PopFront()
	}
	value := float64(self.logsIndexed.Back()-self.logsIndexed.Front()) / float64(self.logsIndexed.Len())
	self.Report.Indexer.State.AverageLogsPerMinute.Store(value)
	return
}

func (self *Monitor) IsOK() bool {
	now := time.Now().Unix()
	if now-self.Report.Run.State.StartTimestamp.Load() < 300 {
		return true
	}

	// Indexer is up long enough, aborts shouldn't dominate commits
	committed := self.Report.Indexer.State.CyclesCommitted.Load()
	aborted := self.Report.Indexer.State.CyclesAborted.Load()
	return committed > 0 && aborted < committed
}

func (self *Monitor) OnGetState(c *gin.Context) {
	self.Report.Run.State.UpForSeconds.Store(uint64(time.Now().Unix() - self.Report.Run.State.StartTimestamp.Load()))

	c.JSON(http.StatusOK, &self.Report)
}

func (self *Monitor) OnGetHealth(c *gin.Context) {
	if self.IsOK() {
		c.Status(http.StatusOK)
	} else {
		c.Status(http.StatusServiceUnavailable)
	}
}
