package observability

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Register(t *testing.T) {
	m := NewMetrics()
	reg := prometheus.NewRegistry()
	require.NoError(t, m.Register(reg))

	m.ScriptLoads.Inc()
	m.RenderBlocks.Inc()
	m.RenderBlocks.Inc()
	m.RenderDuration.Observe(0.0001)

	families, err := reg.Gather()
	require.NoError(t, err)

	byName := make(map[string]float64)
	for _, fam := range families {
		if len(fam.Metric) == 1 && fam.Metric[0].Counter != nil {
			byName[fam.GetName()] = fam.Metric[0].Counter.GetValue()
		}
	}
	assert.Equal(t, 1.0, byName["scriptnode_script_loads_total"])
	assert.Equal(t, 2.0, byName["scriptnode_render_blocks_total"])
	assert.Equal(t, 0.0, byName["scriptnode_render_errors_total"])

	// Double registration on the same registry must fail, not panic.
	assert.Error(t, m.Register(reg))
}
