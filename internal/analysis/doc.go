// Package analysis looks for oscillation in replayed signals.
//
// [AmplitudeSpectrum] turns a uniformly sampled signal into its one-sided
// amplitude spectrum; [Spectrum.Dominant] picks the strongest non-DC
// component. A throttle output that rings at a steady frequency is the
// usual symptom of too much Kp or Kd:
//
//	sp, err := analysis.AmplitudeSpectrum(throttle, dt)
//	if err == nil {
//	    f, amp := sp.Dominant()
//	}
package analysis
