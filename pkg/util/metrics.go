package util

import (
	"time"

	"github.com/influxdata/influxdb-client-go/api/write"
)

// TimeOperationMicroseconds runs op and returns how long it took.
func TimeOperationMicroseconds(op func()) int64 {
	start := time.Now()
	op()
	return time.Since(start).Microseconds()
}

// MockWriteAPI is a no-op stand-in for the InfluxDB write API, used when no
// metrics backend is configured.
type MockWriteAPI struct{}

func (m *MockWriteAPI) WriteRecord(line string)       {}
func (m *MockWriteAPI) WritePoint(point *write.Point) {}
func (m *MockWriteAPI) Flush()                        {}
func (m *MockWriteAPI) Close()                        {}
func (m *MockWriteAPI) Errors() <-chan error          { return nil }
