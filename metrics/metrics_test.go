package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/halvardsen/snaplerp"
)

func TestRecorderCollectsCurrentCounters(t *testing.T) {
	t.Parallel()

	want := snaplerp.Metrics{
		Admitted:       5,
		Rejected:       2,
		Computed:       3,
		Underfull:      1,
		Warming:        1,
		SegmentsPopped: 4,
		CatchupEngaged: 1,
		Overshoots:     1,
	}

	r := NewRecorder("snaplerpd_test", func() snaplerp.Metrics { return want })

	reg := prometheus.NewPedanticRegistry()
	require.NoError(t, reg.Register(r))

	families, err := reg.Gather()
	require.NoError(t, err)

	counterValue := func(fqName string) float64 {
		for _, f := range families {
			if f.GetName() == fqName {
				return f.GetMetric()[0].GetCounter().GetValue()
			}
		}
		t.Fatalf("metric family %q not found", fqName)
		return 0
	}

	assert.Equal(t, float64(want.Admitted), counterValue("snaplerpd_test_buffer_admitted_total"))
	assert.Equal(t, float64(want.Rejected), counterValue("snaplerpd_test_buffer_rejected_total"))
	assert.Equal(t, float64(want.Computed), counterValue("snaplerpd_test_buffer_computed_total"))
	assert.Equal(t, float64(want.Overshoots), counterValue("snaplerpd_test_buffer_overshoots_total"))
}
