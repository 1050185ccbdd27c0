package lockmail_test

import (
	"errors"
	"testing"
	"time"

	"github.com/ProtonMail/gluon/async"
	"github.com/lockmail/go-lockmail-api"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestFuture_Get(t *testing.T) {
	job := lockmail.NewFuture(async.NoopPanicHandler{}, func() (string, error) {
		return "done", nil
	})

	res, err := job.Get()
	require.NoError(t, err)
	require.Equal(t, "done", res)
}

func TestGroup_ResultAbandonsLateFutures(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	group := lockmail.NewGroup[int](async.NoopPanicHandler{})

	group.Add(func() (int, error) {
		return 0, errors.New("first future fails")
	})

	// These are never collected; their goroutines must still finish.
	for i := 0; i < 4; i++ {
		group.Add(func() (int, error) {
			time.Sleep(10 * time.Millisecond)

			return 0, nil
		})
	}

	_, err := group.Result()
	require.Error(t, err)
}
