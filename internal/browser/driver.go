package browser

import "context"

// Driver is the small capability surface the booking engine needs from
// a browser page. Every method blocks until its target element resolves
// or the wait times out; timeouts surface as errors.
type Driver interface {
	// Navigate loads url and waits for the load event.
	Navigate(ctx context.Context, url string) error
	// WaitNavigation blocks until the current document is ready again,
	// for flows where a click triggers a page change.
	WaitNavigation(ctx context.Context) error
	// WaitVisible blocks until the selector matches a visible element.
	WaitVisible(ctx context.Context, sel string) error
	// WaitAny races waits on several selectors and returns the selector
	// that settled first, cancelling the losers.
	WaitAny(ctx context.Context, sels ...string) (string, error)
	// Click waits for the selector and clicks its first match.
	Click(ctx context.Context, sel string) error
	// ClickIfPresent clicks the first match when one exists right now,
	// without waiting.
	ClickIfPresent(ctx context.Context, sel string) error
	// Type waits for the selector and sends text as keystrokes.
	Type(ctx context.Context, sel, text string) error
	// Clear empties the matched input's value.
	Clear(ctx context.Context, sel string) error
	// Reload reloads the current page.
	Reload(ctx context.Context) error
	// Close tears the session down. Idempotent.
	Close() error
}
