package browser

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/chromedp/chromedp/kb"
)

// Options configure the headless Chrome session.
type Options struct {
	// ExecPath overrides the Chrome binary location. Empty means let
	// chromedp find one.
	ExecPath string
	Headless bool
	// WaitTimeout bounds every element wait. Zero means one minute.
	WaitTimeout time.Duration
}

// Session is a chromedp-backed Driver. One Session owns one browser and
// one page for the duration of a booking attempt.
type Session struct {
	ctx          context.Context
	cancelCtx    context.CancelFunc
	cancelAlloc  context.CancelFunc
	waitTimeout  time.Duration
	typeKeyDelay time.Duration
	closed       bool
}

var _ Driver = (*Session)(nil)

// NewSession launches a browser and opens its page.
func NewSession(parent context.Context, opts Options) (*Session, error) {
	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("disable-gpu", true),
	)
	if opts.ExecPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(opts.ExecPath))
	}
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(parent, allocOpts...)
	ctx, cancelCtx := chromedp.NewContext(allocCtx)
	if err := chromedp.Run(ctx); err != nil {
		cancelCtx()
		cancelAlloc()
		return nil, fmt.Errorf("start chrome: %w", err)
	}

	timeout := opts.WaitTimeout
	if timeout == 0 {
		timeout = time.Minute
	}
	return &Session{
		ctx:          ctx,
		cancelCtx:    cancelCtx,
		cancelAlloc:  cancelAlloc,
		waitTimeout:  timeout,
		typeKeyDelay: 50 * time.Millisecond,
	}, nil
}

func (s *Session) Navigate(ctx context.Context, url string) error {
	return s.run(ctx, chromedp.Navigate(url))
}

func (s *Session) WaitNavigation(ctx context.Context) error {
	return s.run(ctx, chromedp.WaitReady("body", chromedp.ByQuery))
}

func (s *Session) WaitVisible(ctx context.Context, sel string) error {
	return s.run(ctx, chromedp.WaitVisible(target(sel), matcher(sel)))
}

func (s *Session) WaitAny(ctx context.Context, sels ...string) (string, error) {
	raceCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	type settled struct {
		sel string
		err error
	}
	ch := make(chan settled, len(sels))
	for _, sel := range sels {
		go func(sel string) {
			ch <- settled{sel, s.run(raceCtx, chromedp.WaitVisible(target(sel), matcher(sel)))}
		}(sel)
	}

	var firstErr error
	for range sels {
		st := <-ch
		if st.err == nil {
			return st.sel, nil
		}
		if firstErr == nil && !errors.Is(st.err, context.Canceled) {
			firstErr = st.err
		}
	}
	if firstErr == nil {
		firstErr = context.Canceled
	}
	return "", fmt.Errorf("waiting for any of %s: %w", strings.Join(sels, ", "), firstErr)
}

func (s *Session) Click(ctx context.Context, sel string) error {
	return s.run(ctx, chromedp.Click(target(sel), matcher(sel)))
}

func (s *Session) ClickIfPresent(ctx context.Context, sel string) error {
	// Probe without waiting: querySelector via Evaluate, then click only
	// when the element exists.
	var present bool
	if err := s.run(ctx, chromedp.Evaluate(fmt.Sprintf("document.querySelector(%q) !== null", sel), &present)); err != nil {
		return err
	}
	if !present {
		return nil
	}
	return s.Click(ctx, sel)
}

func (s *Session) Type(ctx context.Context, sel, text string) error {
	if err := s.run(ctx, chromedp.WaitVisible(target(sel), matcher(sel))); err != nil {
		return err
	}
	// One keystroke at a time; the site's form listeners drop pasted
	// values.
	for _, r := range text {
		key := string(r)
		if r == '\n' {
			key = kb.Enter
		}
		if err := s.run(ctx, chromedp.SendKeys(target(sel), key, matcher(sel))); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(s.typeKeyDelay):
		}
	}
	return nil
}

func (s *Session) Clear(ctx context.Context, sel string) error {
	return s.run(ctx, chromedp.Clear(target(sel), matcher(sel)))
}

func (s *Session) Reload(ctx context.Context) error {
	return s.run(ctx, chromedp.Reload())
}

func (s *Session) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.cancelCtx()
	s.cancelAlloc()
	return nil
}

// run executes actions against the session page, bounded by the wait
// timeout and the caller's context.
func (s *Session) run(ctx context.Context, actions ...chromedp.Action) error {
	opCtx, cancel := context.WithTimeout(s.ctx, s.waitTimeout)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()
	if err := chromedp.Run(opCtx, actions...); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return err
	}
	return nil
}

// target strips the xpath= prefix the checkout flow uses for the card
// expiry panels; matcher picks the query strategy to go with it.
func target(sel string) string {
	return strings.TrimPrefix(sel, "xpath=")
}

func matcher(sel string) chromedp.QueryOption {
	if strings.HasPrefix(sel, "xpath=") || strings.HasPrefix(sel, "//") {
		return chromedp.BySearch
	}
	return chromedp.ByQuery
}
