// internal/metrics/metrics_test.go
package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.CycleDone()
		m.WaitPoll()
		m.Transaction("read")
		m.Retry()
		m.Error(KindTransport)
		m.SetEnergy("A", 1)
	})
	assert.NoError(t, m.WriteTextfile("/nonexistent/x.prom"))
}

func TestCounters(t *testing.T) {
	m := New()
	m.CycleDone()
	m.CycleDone()
	m.WaitPoll()
	m.Transaction("read")
	m.Transaction("read")
	m.Transaction("write")
	m.Error(KindSink)
	m.SetEnergy("B", 2.5)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.cycles))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.waitPolls))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.transactions.WithLabelValues("read")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.errors.WithLabelValues(KindSink)))
	assert.Equal(t, 2.5, testutil.ToFloat64(m.energy.WithLabelValues("B")))
}

func TestWriteTextfile(t *testing.T) {
	m := New()
	m.CycleDone()

	path := filepath.Join(t.TempDir(), "ade9000.prom")
	require.NoError(t, m.WriteTextfile(path))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(b), "ade9000_cycles_total 1"))

	// empty path disables the textfile
	assert.NoError(t, m.WriteTextfile(""))
}
