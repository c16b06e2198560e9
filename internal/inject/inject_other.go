//go:build !darwin && !linux

package inject

type otherInjector struct{}

func newPlatformInjector() Injector {
	return &otherInjector{}
}

func (otherInjector) Backspace(n int) error      { return ErrNotAvailable }
func (otherInjector) TypeText(text string) error { return ErrNotAvailable }

var _ Injector = (*otherInjector)(nil)
