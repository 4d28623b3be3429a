package grid

// debouncer tracks the latest pending value for one filter field. Each Reset invalidates
// every earlier tick.
type debouncer struct {
	seq   int
	value string
	armed bool
}

func (d *debouncer) Reset(value string) int {
	d.seq++
	d.value = value
	d.armed = true
	return d.seq
}

// Fire returns the pending value if seq belongs to the latest Reset and nothing has fired since.
func (d *debouncer) Fire(seq int) (string, bool) {
	if !d.armed || seq != d.seq {
		return "", false
	}
	d.armed = false
	return d.value, true
}

func (d *debouncer) Cancel() {
	d.seq++
	d.armed = false
}
