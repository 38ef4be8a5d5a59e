package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestNew_Singleton(t *testing.T) {
	m1 := New()
	m2 := New()
	assert.Same(t, m1, m2)
}

func TestDocumentsTotal(t *testing.T) {
	m := New()
	c := m.DocumentsTotal.WithLabelValues("email", "400")
	before := testutil.ToFloat64(c)
	c.Inc()
	assert.InDelta(t, before+1, testutil.ToFloat64(c), 0.001)
}
