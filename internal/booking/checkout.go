package booking

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/example/camp-scheduler/internal/browser"
	"github.com/example/camp-scheduler/internal/reservation"
)

// Selectors of the one supported site. The whole flow assumes this
// exact markup.
const (
	selLogin         = "#login"
	selWelcome       = "#welcomeButton"
	selCookieConsent = "#login-cookie-consent"
	selEmail         = "#email"
	selPassword      = "#password"

	selAddToStay    = "#addToStay"
	selClaimSuccess = "#mat-checkbox-1-input"
	selClaimFailure = "#genericDialog"

	selConfirmDetails       = "#confirmReservationDetails"
	selProceedCheckout      = "#proceedToCheckout"
	selPolicyCheckbox       = "#mat-checkbox-2-input"
	selConfirmPolicies      = "#confirmPolicies"
	selConfirmAccount       = "#confirmAccountDetails"
	selConfirmOccupant      = "#confirmOccupant"
	selPartySize            = "#booking-1-sub-capacity-1-field"
	selPartyInfoNext        = "#partyInfoButton"
	selConfirmAdditional    = "#confirmAdditionalInformation"
	selAddOns               = "#addOnsOptions"
	selCardNumber           = "#cardNumber"
	selCardHolder           = "#cardHolderName"
	selCardExpiryMonth      = "#cardExpiryMonth"
	selCardExpiryMonthPanel = "#cardExpiryMonth-panel"
	selCardExpiryYear       = "#cardExpiryYear"
	selCardExpiryYearPanel  = "#cardExpiryYear-panel"
	selCardCvv              = "#cardCvv"
	selApplyPayment         = "#applyPayment"
)

// Login authenticates the page unless it already shows the signed-in
// marker. The two waits race; first settled wins.
func Login(ctx context.Context, d browser.Driver, auth reservation.AuthDetails) error {
	sel, err := d.WaitAny(ctx, selLogin, selWelcome)
	if err != nil {
		return err
	}
	if sel == selWelcome {
		log.Info().Msg("already logged in, skipping")
		return nil
	}
	if err := d.Click(ctx, selLogin); err != nil {
		return err
	}
	if err := d.WaitNavigation(ctx); err != nil {
		return err
	}
	// The consent banner only shows on the first visit of a session.
	if err := d.ClickIfPresent(ctx, selCookieConsent); err != nil {
		return err
	}
	if err := d.Type(ctx, selEmail, auth.Email); err != nil {
		return err
	}
	if err := d.Type(ctx, selPassword, auth.Password); err != nil {
		return err
	}
	if err := d.Type(ctx, selEmail, "\n"); err != nil {
		return err
	}
	return d.WaitNavigation(ctx)
}

// ClaimAndCheckout claims the slot on the current results page, looping
// on the site's rejection dialog until the retry deadline passes, then
// walks the checkout form to the payment step. An exhausted claim
// deadline returns ErrRetryable; every other failure is terminal for
// the attempt.
func (e *Engine) ClaimAndCheckout(ctx context.Context, d browser.Driver, det reservation.ReservationDetails) error {
	var retryTime, interval time.Duration = 0, defaultClaimInterval
	if det.RetryDetails != nil {
		retryTime = time.Duration(det.RetryDetails.RetryTimeInMins) * time.Minute
		if det.RetryDetails.RetryIntervalInSecs > 0 {
			interval = time.Duration(det.RetryDetails.RetryIntervalInSecs) * time.Second
		}
	}
	deadline := e.now().Add(retryTime)

	for {
		if err := d.Click(ctx, selAddToStay); err != nil {
			return err
		}
		sel, err := d.WaitAny(ctx, selClaimSuccess, selClaimFailure)
		if err != nil {
			return err
		}
		if sel == selClaimSuccess {
			break
		}
		if e.now().Before(deadline) {
			log.Info().Dur("interval", interval).Msg("could not add reservation, retrying")
			if err := e.sleep(ctx, interval); err != nil {
				return err
			}
			if err := d.Reload(ctx); err != nil {
				return err
			}
			continue
		}
		log.Info().Msg("could not add reservation, retry limit exceeded, exiting")
		return reservation.ErrRetryable
	}

	return e.checkout(ctx, d, det)
}

type stepKind int

const (
	stepClick stepKind = iota
	stepType
	stepClear
	stepWait
)

type step struct {
	kind stepKind
	sel  string
	text string
}

// checkout walks the multi-step form in strict order. Each step blocks
// until its element appears; no step is skipped.
func (e *Engine) checkout(ctx context.Context, d browser.Driver, det reservation.ReservationDetails) error {
	monthSel := fmt.Sprintf("xpath=//span[contains(., '%d')]", det.CardDetails.ExpiringMonth)
	yearSel := fmt.Sprintf("xpath=//span[contains(., '%d')]", det.CardDetails.ExpiringYear)

	steps := []step{
		{stepClick, selClaimSuccess, ""},
		{stepClick, selConfirmDetails, ""},
		{stepClick, selProceedCheckout, ""},
		{stepClick, selPolicyCheckbox, ""},
		{stepClick, selConfirmPolicies, ""},
		{stepClick, selConfirmAccount, ""},
		{stepClick, selConfirmOccupant, ""},
		{stepClear, selPartySize, ""},
		{stepType, selPartySize, strconv.Itoa(det.PartyInfo.Adults)},
		{stepClick, selPartyInfoNext, ""},
		{stepClick, selConfirmAdditional, ""},
		{stepClick, selAddOns, ""},
		{stepType, selCardNumber, det.CardDetails.Number},
		{stepType, selCardHolder, det.CardDetails.NameOnCard},
		{stepClick, selCardExpiryMonth, ""},
		{stepWait, selCardExpiryMonthPanel, ""},
		{stepClick, monthSel, ""},
		{stepClick, selCardExpiryYear, ""},
		{stepWait, selCardExpiryYearPanel, ""},
		{stepClick, yearSel, ""},
		{stepType, selCardCvv, det.CardDetails.SecurityCode},
		{stepClick, selApplyPayment, ""},
	}

	for _, st := range steps {
		var err error
		switch st.kind {
		case stepClick:
			err = d.Click(ctx, st.sel)
		case stepType:
			err = d.Type(ctx, st.sel, st.text)
		case stepClear:
			err = d.Clear(ctx, st.sel)
		case stepWait:
			err = d.WaitVisible(ctx, st.sel)
		}
		if err != nil {
			return fmt.Errorf("checkout step %s: %w", st.sel, err)
		}
	}
	return nil
}
