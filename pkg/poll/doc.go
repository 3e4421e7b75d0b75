// Package poll waits for an externally observed condition with a bounded
// budget.
//
// Remote UI operations (code generation, publishing, syncing) expose no
// events or webhooks, only DOM state. Callers describe one check of that
// state as a Probe and hand it to Run together with a Config. Run drives
// the probe until it observes completion, a probe failure, or the
// deadline, and always returns exactly one classified Outcome:
//
//   - Success: the probe reported Done.
//   - Timeout: the budget ran out (or the caller cancelled) while the
//     probe was still Pending. Retrying with a longer budget may help.
//   - Failed: the probe could not perform its check. Retrying is futile
//     until an operator looks at the cause.
//
// # Example
//
//	cfg, err := poll.NewConfig(90*time.Second, 3*time.Second, 5*time.Minute)
//	if err != nil {
//	    return err
//	}
//	outcome := poll.Run(ctx, cfg, func(ctx context.Context) poll.Observation[string] {
//	    busy, err := page.IsVisible(stopButton)
//	    if err != nil {
//	        return poll.ProbeFailed[string](err)
//	    }
//	    if busy {
//	        return poll.Pending[string]()
//	    }
//	    return poll.Done(page.URL())
//	})
//
// Run never lets a probe error or panic escape; it is reported as Failed.
package poll
