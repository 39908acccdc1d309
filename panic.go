package zin

import "fmt"

// protect runs f and returns its result. A panic inside f is recovered and
// returned as an error wrapping ErrPanic.
func protect[R any](f func() (R, error)) (result R, err error) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		var zero R
		result = zero
		if e, ok := r.(error); ok {
			err = fmt.Errorf("%w: %w", ErrPanic, e)
			return
		}
		err = fmt.Errorf("%w: %v", ErrPanic, r)
	}()
	return f()
}

// protectErr is protect for functions that only return an error.
func protectErr(f func() error) error {
	_, err := protect(func() (struct{}, error) {
		return struct{}{}, f()
	})
	return err
}
