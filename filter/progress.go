package filter

// ProgressFunc receives a completion percentage in [0, 100].
// Values arrive in non-decreasing order within one run.
type ProgressFunc func(percent int)

// progressStep is the minimum increase between two reported values.
const progressStep = 5

// progressReporter throttles progress to steps of at least progressStep
// points and keeps the sequence non-decreasing.
type progressReporter struct {
	fn   ProgressFunc
	last int
}

func newProgress(fn ProgressFunc) *progressReporter {
	return &progressReporter{fn: fn}
}

// report forwards percent if it is at least progressStep above the last
// forwarded value, or if it is 100 and 100 has not been sent yet.
func (p *progressReporter) report(percent int) {
	if p.fn == nil {
		return
	}
	percent = min(max(percent, 0), 100)
	if percent < p.last+progressStep && (percent != 100 || p.last == 100) {
		return
	}
	p.last = percent
	p.fn(percent)
}

// done reports completion.
func (p *progressReporter) done() {
	p.report(100)
}
