package que_test

import (
	"testing"

	"github.com/gpedic/go-que/pkg/que"
)

func ok(value any) func(que.Changes[string, any]) (any, error) {
	return func(que.Changes[string, any]) (any, error) {
		return value, nil
	}
}

func fail(err error) func(que.Changes[string, any]) (any, error) {
	return func(que.Changes[string, any]) (any, error) {
		return nil, err
	}
}

// recovered runs fn and returns the value it panicked with.
func recovered(t *testing.T, fn func()) (value any) {
	t.Helper()

	defer func() {
		value = recover()
		if value == nil {
			t.Fatal("expected a panic")
		}
	}()

	fn()

	return nil
}

type recorder struct {
	calls []que.Changes[string, any]
}

func (r *recorder) Write(changes que.Changes[string, any]) (any, error) {
	r.calls = append(r.calls, changes)

	return "written", nil
}
