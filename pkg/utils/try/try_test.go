package try_test

import (
	"errors"
	"testing"

	"github.com/fnndsc/chrisctl/pkg/utils/try"
)

type fataler struct {
	fatal  [][]any
	helper int
}

func (f *fataler) Fatal(args ...any) {
	f.fatal = append(f.fatal, args)
}

func (f *fataler) Helper() {
	f.helper += 1
}

func TestTry(t *testing.T) {
	t.Run("when it does not have error, OrFatal returns the value without calling Fatal", func(t *testing.T) {
		f := &fataler{}
		actual := try.To(42, nil).OrFatal(f)
		if actual != 42 {
			t.Errorf("unexpected result: (actual, expected) = (%d, %d)", actual, 42)
		}
		if len(f.fatal) != 0 || f.helper != 0 {
			t.Errorf("Fatal or Helper is called unexpectedly: %+v", f)
		}
		if d := try.To(42, nil).OrDefault(7); d != 42 {
			t.Errorf("OrDefault returns default for ok: %d", d)
		}
	})

	t.Run("when it has error, OrFatal calls Helper and Fatal with the error", func(t *testing.T) {
		expected := errors.New("fake error")
		f := &fataler{}
		actual := try.To(42, expected).OrFatal(f)
		if actual != 0 {
			t.Errorf("OrFatal returns non-zero value: %d", actual)
		}
		if f.helper != 1 {
			t.Errorf("Helper is not called once: %d", f.helper)
		}
		if len(f.fatal) != 1 || len(f.fatal[0]) != 1 || !errors.Is(f.fatal[0][0].(error), expected) {
			t.Errorf("Fatal is not called with the error: %+v", f.fatal)
		}
		if d := try.To(42, expected).OrDefault(7); d != 7 {
			t.Errorf("OrDefault does not return default: %d", d)
		}
		if _, err := try.To(42, expected).Get(); !errors.Is(err, expected) {
			t.Errorf("Get does not return the error: %v", err)
		}
	})
}
