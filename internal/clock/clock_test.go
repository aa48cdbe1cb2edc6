package clock

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_RejectsBadInput(t *testing.T) {
	_, err := New(0, 10, 0)
	require.Error(t, err)

	_, err = New(10, 5, 0.5)
	require.Error(t, err)

	st, err := New(0, 1, 0.5)
	require.NoError(t, err)
	assert.Equal(t, 0, st.StartDay)
	assert.Equal(t, 1, st.EndDay)
}

func TestSimTime_TotalStepsAndStepsPerDay(t *testing.T) {
	st, err := New(0, 2, 1.0)
	require.NoError(t, err)
	assert.Equal(t, 48, st.TotalSteps())
	assert.Equal(t, 24, st.StepsPerDay())

	half, err := New(0, 1, 0.5)
	require.NoError(t, err)
	assert.Equal(t, 48, half.TotalSteps())
	assert.Equal(t, 48, half.StepsPerDay())
}

func TestSimTime_Iter_VisitsEveryStepInOrder(t *testing.T) {
	st, err := New(0, 1, 1.0)
	require.NoError(t, err)

	var hours []float64
	st.Iter(func(s Step) bool {
		hours = append(hours, s.Hour)
		assert.Equal(t, 1.0, s.Delta)
		return true
	})
	require.Len(t, hours, 24)
	assert.Equal(t, 0.0, hours[0])
	assert.Equal(t, 23.0, hours[23])
}

func TestSimTime_Iter_StopsEarly(t *testing.T) {
	st, err := New(0, 1, 1.0)
	require.NoError(t, err)

	count := 0
	st.Iter(func(s Step) bool {
		count++
		return s.Idx < 4
	})
	assert.Equal(t, 5, count)
}

func TestIndexOf_AlignsWithSeriesStart(t *testing.T) {
	assert.Equal(t, 0, IndexOf(0, 0, 1.0))
	assert.Equal(t, 5, IndexOf(5, 0, 1.0))
	assert.Equal(t, 10, IndexOf(5, 0, 0.5))
	assert.Equal(t, -1, IndexOf(-1, 0, 1.0))
}
