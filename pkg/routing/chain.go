package routing

import "errors"

// ErrNoSender is returned by send helpers when no transport is wired into
// the context.
var ErrNoSender = errors.New("no sender available")

// chain runs handlers middleware-style. Control flows inward through next
// calls and the result is decided on the way back out: each handler's
// non-nil return overwrites the result of the handlers it wrapped, so the
// outermost handler that returns a value wins. Once a result exists,
// further next calls are no-ops.
type chain struct {
	ctx      *Context
	handlers []Handler
	index    int
	result   any
	done     bool
}

func newChain(ctx *Context, handlers []Handler) *chain {
	ch := &chain{ctx: ctx, handlers: handlers}
	ctx.next = ch.step
	return ch
}

// run starts the chain at the first handler and returns the final result.
func (ch *chain) run() (any, error) {
	if err := ch.step(); err != nil {
		return ch.result, err
	}
	return ch.result, nil
}

func (ch *chain) step() error {
	if ch.done || ch.index >= len(ch.handlers) {
		return nil
	}
	handler := ch.handlers[ch.index]
	ch.index++

	result, err := handler(ch.ctx, ch.step)
	if err != nil {
		return err
	}
	if result != nil {
		ch.result = result
		ch.done = true
	}
	return nil
}
