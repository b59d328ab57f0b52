package domain

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHooksRunInOrderAndStopOnError(t *testing.T) {
	reg := NewHookRegistry[*[]string]()
	reg.OnBeforeSave(func(ctx context.Context, log *[]string) error {
		*log = append(*log, "derive")
		return nil
	})
	reg.OnBeforeSave(func(ctx context.Context, log *[]string) error {
		return errors.New("tank 9 unknown")
	})
	reg.OnBeforeSave(func(ctx context.Context, log *[]string) error {
		*log = append(*log, "unreachable")
		return nil
	})

	var log []string
	err := reg.Run(context.Background(), BeforeSave, &log)

	assert.EqualError(t, err, "tank 9 unknown")
	assert.Equal(t, []string{"derive"}, log)
	assert.NoError(t, reg.Run(context.Background(), AfterDelete, &log))
}
