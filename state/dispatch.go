package state

import (
	"fmt"
)

// Dispatch Dispatches the function to run on the main thread without waiting for it to complete
func (e *Env) Dispatch(fun func(*State) error) {
	defer func() {
		if r := recover(); r != nil {
			e.Cancel(fmt.Errorf("panic: %v", r))
		}
	}()
	e.DispatchChannel <- fun
}

// DispatchWait Dispatches the function to run on the main thread and wait for it to complete
func (e *Env) DispatchWait(fun func(*State) (any, error)) (any, error) {
	type result struct {
		val any
		err error
	}
	ret := make(chan result, 1)
	e.Dispatch(func(s *State) error {
		res, err := fun(s)
		ret <- result{res, err}
		return err
	})
	select {
	case res := <-ret:
		return res.val, res.err
	case <-e.Context.Done():
		return nil, e.Context.Err()
	}
}
