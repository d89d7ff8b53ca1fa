package bus

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pollboard/pkg/errors"
)

type fakeCommand struct {
	valid bool
}

func (c fakeCommand) Validate() error {
	if !c.valid {
		return errors.NewValidationError("invalid command")
	}
	return nil
}

func TestCommandBus_DispatchesByType(t *testing.T) {
	b := NewCommandBus()

	handled := false
	err := b.Register(fakeCommand{}, CommandHandlerFunc(func(ctx context.Context, cmd Command) error {
		handled = true
		return nil
	}))
	require.NoError(t, err)

	require.NoError(t, b.Send(context.Background(), fakeCommand{valid: true}))
	assert.True(t, handled)
}

func TestCommandBus_ValidatesBeforeDispatch(t *testing.T) {
	b := NewCommandBus()

	err := b.Register(fakeCommand{}, CommandHandlerFunc(func(ctx context.Context, cmd Command) error {
		t.Fatal("handler must not run for an invalid command")
		return nil
	}))
	require.NoError(t, err)

	err = b.Send(context.Background(), fakeCommand{valid: false})
	assert.True(t, errors.IsValidation(err))
}

func TestCommandBus_RejectsDuplicateRegistration(t *testing.T) {
	b := NewCommandBus()
	noop := CommandHandlerFunc(func(ctx context.Context, cmd Command) error { return nil })

	require.NoError(t, b.Register(fakeCommand{}, noop))
	assert.Error(t, b.Register(fakeCommand{}, noop))
}

func TestCommandBus_UnregisteredCommand(t *testing.T) {
	b := NewCommandBus()
	assert.Error(t, b.Send(context.Background(), fakeCommand{valid: true}))
}

func TestCommandBus_MiddlewareWrapsHandlers(t *testing.T) {
	var order []string
	mw := func(name string) Middleware {
		return func(next CommandHandler) CommandHandler {
			return CommandHandlerFunc(func(ctx context.Context, cmd Command) error {
				order = append(order, name)
				return next.Handle(ctx, cmd)
			})
		}
	}

	b := NewCommandBus(mw("outer"), mw("inner"))
	require.NoError(t, b.Register(fakeCommand{}, CommandHandlerFunc(func(ctx context.Context, cmd Command) error {
		order = append(order, "handler")
		return nil
	})))

	require.NoError(t, b.Send(context.Background(), fakeCommand{valid: true}))
	assert.Equal(t, []string{"outer", "inner", "handler"}, order)
}
