package sim

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lazyservo/core"
)

func TestBenchMoveThenSleep(t *testing.T) {
	bench := NewBench(core.DefaultConfig(), 1000)
	trace := bench.Run(Script{{AtUS: 500000, Target: 0.75}}, 3000000)

	require.Len(t, trace.Samples, 3001)
	assert.Equal(t, []Write{
		{AtUS: 0, Pulse: 1500, Attached: true},
		{AtUS: 500000, Pulse: 2000, Attached: true},
	}, bench.Driver.Effective())

	assert.Equal(t, core.Stats{Writes: 2, Wakeups: 1, Sleeps: 1}, trace.Stats)
	assert.Equal(t, uint64(2500000), trace.AttachedTime())

	last := trace.Samples[len(trace.Samples)-1]
	assert.False(t, last.Attached)
	assert.Equal(t, core.MonitorAsleep, last.State)
	assert.Zero(t, last.Pulse)
}

func TestBenchIgnoresJitter(t *testing.T) {
	cfg := core.DefaultConfig()
	cfg.Threshold = 0.01
	bench := NewBench(cfg, 1000)

	script := Script{
		{AtUS: 100000, Target: 0.505},
		{AtUS: 200000, Target: 0.495},
		{AtUS: 300000, Target: 0.5},
	}
	trace := bench.Run(script, 1000000)

	assert.Equal(t, uint32(1), trace.Stats.Writes)
	for _, s := range trace.Samples {
		assert.Equal(t, uint16(1500), s.Pulse)
	}
}

func TestBenchWakeOnDemand(t *testing.T) {
	cfg := core.DefaultConfig()
	cfg.DozingTimeoutUS = 0
	bench := NewBench(cfg, 1000)

	trace := bench.Run(Script{{AtUS: 250000, Target: 0.9}}, 400000)

	effective := bench.Driver.Effective()
	require.Len(t, effective, 2)
	assert.Equal(t, uint64(250000), effective[1].AtUS)
	assert.Equal(t, uint16(2300), effective[1].Pulse)
	assert.Equal(t, uint32(2), trace.Stats.Wakeups)
	assert.Zero(t, bench.Driver.Writes[0].AtUS)
}

func TestBenchSetNow(t *testing.T) {
	bench := NewBench(core.DefaultConfig(), 1000)

	// 150000 falls between two check intervals
	trace := bench.Run(Script{{AtUS: 150000, Target: 1, Now: true}}, 300000)

	effective := bench.Driver.Effective()
	require.Len(t, effective, 2)
	assert.Equal(t, uint64(150000), effective[1].AtUS)
	assert.Equal(t, uint16(2500), effective[1].Pulse)
	assert.Equal(t, []float64{1500, 2500}, []float64{trace.Pulses()[149], trace.Pulses()[150]})
}

func TestBenchAttachFailure(t *testing.T) {
	bench := NewBench(core.DefaultConfig(), 1000)
	bench.Driver.AttachErr = errors.New("no pwm channel")

	trace := bench.Run(nil, 10000)

	assert.Equal(t, uint32(1), trace.Stats.Faults)
	assert.Empty(t, bench.Driver.Effective())
	require.Len(t, bench.Driver.Writes, 1)
	assert.False(t, bench.Driver.Writes[0].Attached)
}

func TestParseScript(t *testing.T) {
	script, err := ParseScript([]byte(`
- {at_us: 500000, target: 0.8, now: true}
- {at_us: 0, target: 0.2}
`))
	require.NoError(t, err)
	assert.Equal(t, Script{
		{AtUS: 0, Target: 0.2},
		{AtUS: 500000, Target: 0.8, Now: true},
	}, script)
	assert.Equal(t, uint64(500000), script.End())

	_, err = ParseScript([]byte(`- {at_us: 0, target: 1.5}`))
	assert.Error(t, err)

	_, err = ParseScript([]byte(`at_us: [`))
	assert.Error(t, err)
}
