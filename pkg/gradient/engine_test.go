package gradient

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// deterministicEntropy feeds newEngineWithEntropy a fixed byte stream so
// tests that construct an Engine directly don't depend on crypto/rand.
func deterministicEntropy(seed int64) *bytes.Reader {
	r := rand.New(rand.NewSource(seed))
	buf := make([]byte, 64)
	for i := 0; i < len(buf); i += 4 {
		binary.LittleEndian.PutUint32(buf[i:], r.Uint32())
	}
	return bytes.NewReader(buf)
}

func newTestEngine(t *testing.T, cfg *Config) *Engine {
	t.Helper()
	if cfg == nil {
		cfg = DefaultConfig()
	}
	e, err := newEngineWithEntropy(cfg, deterministicEntropy(1))
	require.NoError(t, err)
	return e
}

func TestScenarioS1MinimizeByteMask(t *testing.T) {
	e := newTestEngine(t, nil)
	defer e.Close()

	f := func(x []uint64) uint64 { return x[0] & 0xFF }
	x0 := []uint64{0x80}

	outX, outF, err := e.Minimize(f, x0)
	require.NoError(t, err)
	assert.Equal(t, uint64(0x00), outX[0])
	assert.Equal(t, int64(0), outF)
}

func TestScenarioS2MaximizeNegatedByteMask(t *testing.T) {
	e := newTestEngine(t, nil)
	defer e.Close()

	f := func(x []uint64) uint64 { return uint64(-int64(x[0] & 0xFF)) }
	x0 := []uint64{0x10}

	outX, outF, err := e.Maximize(f, x0)
	require.NoError(t, err)
	assert.Equal(t, uint64(0x00), outX[0])
	assert.Equal(t, int64(0), outF)
}

func TestScenarioS3MinimizeTwoCoordinateManhattan(t *testing.T) {
	e := newTestEngine(t, nil)
	defer e.Close()

	f := func(x []uint64) uint64 {
		a := int64(x[0]&0xFF) - 0x40
		if a < 0 {
			a = -a
		}
		b := int64(x[1]&0xFF) - 0xC0
		if b < 0 {
			b = -b
		}
		return uint64(a + b)
	}
	x0 := []uint64{0x00, 0x00}

	outX, outF, err := e.Minimize(f, x0)
	require.NoError(t, err)
	assert.Equal(t, []uint64{0x40, 0xC0}, outX)
	assert.Equal(t, int64(0), outF)
}

func TestScenarioS4ConstantObjectiveIsImmediateExtremum(t *testing.T) {
	f := func(x []uint64) uint64 { return 42 }
	x0 := []uint64{0x55}

	t.Run("minimize", func(t *testing.T) {
		e := newTestEngine(t, nil)
		defer e.Close()
		outX, outF, err := e.Minimize(f, x0)
		require.NoError(t, err)
		assert.Equal(t, []uint64{0x55}, outX)
		assert.Equal(t, int64(42), outF)
	})

	t.Run("maximize", func(t *testing.T) {
		e := newTestEngine(t, nil)
		defer e.Close()
		outX, outF, err := e.Maximize(f, x0)
		require.NoError(t, err)
		assert.Equal(t, []uint64{0x55}, outX)
		assert.Equal(t, int64(42), outF)
	})

	t.Run("descendOnceReportsAtExtremum", func(t *testing.T) {
		e := newTestEngine(t, nil)
		defer e.Close()
		outX, outF, atExtremum, err := e.DescendOnce(f, x0)
		require.NoError(t, err)
		assert.True(t, atExtremum)
		assert.Equal(t, []uint64{0x55}, outX)
		assert.Equal(t, int64(42), outF)
	})

	t.Run("ascendOnceReportsAtExtremum", func(t *testing.T) {
		e := newTestEngine(t, nil)
		defer e.Close()
		outX, outF, atExtremum, err := e.AscendOnce(f, x0)
		require.NoError(t, err)
		assert.True(t, atExtremum)
		assert.Equal(t, []uint64{0x55}, outX)
		assert.Equal(t, int64(42), outF)
	})
}

func TestScenarioS5MinimizeThreeCoordinateWeightedSum(t *testing.T) {
	e := newTestEngine(t, nil)
	defer e.Close()

	f := func(x []uint64) uint64 {
		return (x[0] & 0xFF) + 2*(x[1]&0xFF) + 4*(x[2]&0xFF)
	}
	x0 := []uint64{0xFF, 0xFF, 0xFF}

	outX, outF, err := e.Minimize(f, x0)
	require.NoError(t, err)
	assert.Equal(t, []uint64{0x00, 0x00, 0x00}, outX)
	assert.Equal(t, int64(0), outF)
}

func TestScenarioS6HighBitsAreNeverDisturbed(t *testing.T) {
	e := newTestEngine(t, nil)
	defer e.Close()

	const upper = uint64(0xDEADBEEFDEADBE00)
	f := func(x []uint64) uint64 { return uint64(int64(int8(x[0] & 0xFF))) }
	x0 := []uint64{upper | 0x80}

	outX, _, err := e.Minimize(f, x0)
	require.NoError(t, err)
	assert.Equal(t, upper, outX[0]&0xFFFFFFFFFFFFFF00)
}

func TestMinimizeIsDeterministicForDeterministicObjective(t *testing.T) {
	f := func(x []uint64) uint64 {
		return (x[0] & 0xFF) + 3*(x[1]&0xFF)
	}
	x0 := []uint64{0xAB, 0x77}

	e1 := newTestEngine(t, nil)
	defer e1.Close()
	out1, f1, err := e1.Minimize(f, x0)
	require.NoError(t, err)

	e2 := newTestEngine(t, nil)
	defer e2.Close()
	out2, f2, err := e2.Minimize(f, x0)
	require.NoError(t, err)

	assert.Equal(t, out1, out2)
	assert.Equal(t, f1, f2)
}

func TestMinimizeNeverWorsensTheObjective(t *testing.T) {
	f := func(x []uint64) uint64 {
		return (x[0] & 0xFF) + 5*(x[1]&0xFF) + (x[2] & 0xFF)
	}
	x0 := []uint64{0x9A, 0x4C, 0xE1}

	e := newTestEngine(t, nil)
	defer e.Close()

	f0 := int64(f(x0))
	_, outF, err := e.Minimize(f, x0)
	require.NoError(t, err)
	assert.LessOrEqual(t, outF, f0)
}

func TestMinimizeRejectsEmptyAssignment(t *testing.T) {
	e := newTestEngine(t, nil)
	defer e.Close()

	_, _, err := e.Minimize(func(x []uint64) uint64 { return 0 }, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrEmptyAssignment))
}

func TestMethodsRejectClosedEngine(t *testing.T) {
	e := newTestEngine(t, nil)
	require.NoError(t, e.Close())

	f := func(x []uint64) uint64 { return 0 }
	x0 := []uint64{0x01}

	_, _, err := e.Minimize(f, x0)
	assert.True(t, errors.Is(err, ErrEngineClosed))

	_, _, err = e.Maximize(f, x0)
	assert.True(t, errors.Is(err, ErrEngineClosed))

	_, _, _, err = e.DescendOnce(f, x0)
	assert.True(t, errors.Is(err, ErrEngineClosed))

	_, _, _, err = e.AscendOnce(f, x0)
	assert.True(t, errors.Is(err, ErrEngineClosed))
}

func TestStatisticsTrackEvalsAndEpochs(t *testing.T) {
	e := newTestEngine(t, nil)
	defer e.Close()

	f := func(x []uint64) uint64 { return x[0] & 0xFF }
	_, _, err := e.Minimize(f, []uint64{0xFF})
	require.NoError(t, err)

	stats := e.Statistics()
	assert.Greater(t, stats.Epochs, 0)
	assert.Greater(t, stats.ObjectiveEvals, 0)
}

func TestDoesNotMutateCallerInput(t *testing.T) {
	e := newTestEngine(t, nil)
	defer e.Close()

	f := func(x []uint64) uint64 { return (x[0] & 0xFF) + (x[1] & 0xFF) }
	x0 := []uint64{0xFE, 0xFD}
	x0Copy := append([]uint64{}, x0...)

	_, _, err := e.Minimize(f, x0)
	require.NoError(t, err)
	assert.Equal(t, x0Copy, x0)
}

func TestNewEngineDefaultsConfigWhenNil(t *testing.T) {
	e, err := NewEngine(nil)
	require.NoError(t, err)
	defer e.Close()

	f := func(x []uint64) uint64 { return x[0] & 0xFF }
	_, _, err = e.Minimize(f, []uint64{0x02})
	require.NoError(t, err)
}
