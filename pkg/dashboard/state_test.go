package dashboard

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"f1trackrenderer/pkg/model"
)

var monza = Selection{Year: 2023, Race: "Italian Grand Prix", Session: model.Race}

func TestStateTransitions(t *testing.T) {
	var s State
	assert.Equal(t, StatusUnloaded, s.Status())

	_, err := s.Loaded(&model.Session{})
	assert.ErrorIs(t, err, ErrInvalidTransition)

	loading, err := s.StartLoading(monza)
	require.NoError(t, err)
	assert.Equal(t, StatusLoading, loading.Status())
	assert.Equal(t, StatusUnloaded, s.Status(), "receiver must not change")

	_, err = loading.StartLoading(monza)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	loaded, err := loading.Loaded(&model.Session{Year: 2023})
	require.NoError(t, err)
	assert.True(t, loaded.IsLoaded())
	assert.Equal(t, monza, loaded.Selection())

	_, err = loaded.StartLoading(monza)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	other := Selection{Year: 2023, Race: "Monaco", Session: model.Qualifying}
	reloading, err := loaded.StartLoading(other)
	require.NoError(t, err)
	assert.Nil(t, reloading.Session())

	failed, err := reloading.Failed(errors.New("boom"))
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, failed.Status())
	assert.EqualError(t, failed.Err(), "boom")

	_, err = failed.Failed(errors.New("again"))
	assert.ErrorIs(t, err, ErrInvalidTransition)

	retry, err := failed.StartLoading(other)
	require.NoError(t, err)
	assert.Nil(t, retry.Err())
}

func TestStoreUpdateKeepsStateOnError(t *testing.T) {
	st := NewStore(0)
	_, err := st.Update("a", func(s State) (State, error) { return s.StartLoading(monza) })
	require.NoError(t, err)

	got, err := st.Update("a", func(s State) (State, error) { return s.StartLoading(monza) })
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, StatusLoading, got.Status())
	assert.Equal(t, StatusUnloaded, st.Get("b").Status())
	assert.Equal(t, 1, st.Len())
}
