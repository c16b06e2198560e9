//go:build !darwin && !linux

package tap

import "context"

// otherSource is the stub for platforms without an interception backend.
// Start fails, the engine logs the degraded condition, and runs inert.
type otherSource struct {
	scope Scope
}

func newPlatformSource(scope Scope) Source {
	return &otherSource{scope: scope}
}

func (o *otherSource) Start(ctx context.Context, fn Callback) error {
	return ErrNotAvailable
}

func (o *otherSource) Stop() error { return nil }

func (o *otherSource) Available() (bool, string) {
	return false, "keyboard interception not available on this platform"
}

func (o *otherSource) Scope() Scope { return o.scope }

var _ Source = (*otherSource)(nil)
