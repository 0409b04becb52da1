package task

import (
	"sync"
	"testing"
	"time"

	"github.com/logsync/indexer/src/utils/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

func TestProcessorTestSuite(t *testing.T) {
	suite.Run(t, new(ProcessorTestSuite))
}

type ProcessorTestSuite struct {
	suite.Suite
	config *config.Config
}

func (s *ProcessorTestSuite) SetupSuite() {
	s.config = config.Default()
}

type flushRecorder struct {
	mtx     sync.Mutex
	batches [][]int
}

func (self *flushRecorder) record(batch []int) error {
	self.mtx.Lock()
	defer self.mtx.Unlock()
	copied := make([]int, len(batch))
	copy(copied, batch)
	self.batches = append(self.batches, copied)
	return nil
}

func (self *flushRecorder) get() [][]int {
	self.mtx.Lock()
	defer self.mtx.Unlock()
	return self.batches
}

func (s *ProcessorTestSuite) TestFlushesFullBatches() {
	input := make(chan int)
	recorder := new(flushRecorder)

	processor := NewProcessor[int, int](s.config, "test-processor").
		WithBatchSize(3).
		WithInputChannel(input).
		WithOnProcess(func(in int) ([]int, error) {
			return []int{in}, nil
		}).
		WithOnFlush(time.Hour, recorder.record)

	err := processor.Start()
	assert.Nil(s.T(), err)

	for i := 0; i < 3; i++ {
		input <- i
	}
	close(input)

	processor.StopWait()

	assert.Equal(s.T(), [][]int{{0, 1, 2}}, recorder.get())
}

func (s *ProcessorTestSuite) TestFlushesRemainderOnClose() {
	input := make(chan int)
	recorder := new(flushRecorder)

	processor := NewProcessor[int, int](s.config, "test-processor").
		WithBatchSize(10).
		WithInputChannel(input).
		WithOnProcess(func(in int) ([]int, error) {
			return []int{in, in * 10}, nil
		}).
		WithOnFlush(time.Hour, recorder.record)

	err := processor.Start()
	assert.Nil(s.T(), err)

	input <- 1
	input <- 2
	close(input)

	processor.StopWait()

	assert.Equal(s.T(), [][]int{{1, 10, 2, 20}}, recorder.get())
}

func (s *ProcessorTestSuite) TestSkipsFailedItems() {
	input := make(chan int)
	recorder := new(flushRecorder)

	processor := NewProcessor[int, int](s.config, "test-processor").
		WithBatchSize(10).
		WithInputChannel(input).
		WithOnProcess(func(in int) ([]int, error) {
			if in%2 != 0 {
				return nil, assert.AnError
			}
			return []int{in}, nil
		}).
		WithOnFlush(time.Hour, recorder.record)

	err := processor.Start()
	assert.Nil(s.T(), err)

	for i := 0; i < 4; i++ {
		input <- i
	}
	close(input)

	processor.StopWait()

	assert.Equal(s.T(), [][]int{{0, 2}}, recorder.get())
}

func (s *ProcessorTestSuite) TestFlushesOnInterval() {
	input := make(chan int)
	recorder := new(flushRecorder)

	processor := NewProcessor[int, int](s.config, "test-processor").
		WithBatchSize(100).
		WithInputChannel(input).
		WithOnProcess(func(in int) ([]int, error) {
			return []int{in}, nil
		}).
		WithOnFlush(10*time.Millisecond, recorder.record)

	err := processor.Start()
	assert.Nil(s.T(), err)

	input <- 7

	assert.Eventually(s.T(), func() bool {
		batches := recorder.get()
		return len(batches) == 1 && len(batches[0]) == 1 && batches[0][0] == 7
	}, time.Second, 5*time.Millisecond)

	close(input)
	processor.StopWait()
}
