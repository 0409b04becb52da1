package monitor_indexer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

func TestMonitorTestSuite(t *testing.T) {
	suite.Run(t, new(MonitorTestSuite))
}

type MonitorTestSuite struct {
	suite.Suite
}

func (s *MonitorTestSuite) TestLogsPerMinute() {
	monitor := NewMonitor().WithMaxHistorySize(5)

	// Two one-minute samples, 120 logs apart
	monitor.Report.Indexer.State.LogsIndexed.Store(100)
	assert.Nil(s.T(), monitor.monitorLogs())
	monitor.Report.Indexer.State.LogsIndexed.Store(220)
	assert.Nil(s.T(), monitor.monitorLogs())

	assert.Equal(s.T(), 60.0, monitor.Report.Indexer.State.AverageLogsPerMinute.Load())
}

func (s *MonitorTestSuite) TestHistoryIsBounded() {
	monitor := NewMonitor().WithMaxHistorySize(2)

	for i := uint64(1); i <= 5; i++ {
		monitor.Report.Indexer.State.LogsIndexed.Store(i * 10)
		assert.Nil(s.T(), monitor.monitorLogs())
	}

	assert.Equal(s.T(), 2, monitor.logsIndexed.Len())
}

func (s *MonitorTestSuite) TestIsOKWhileYoung() {
	monitor := NewMonitor().WithMaxHistorySize(2)

	// Freshly started, no committed cycle yet
	assert.True(s.T(), monitor.IsOK())
}
