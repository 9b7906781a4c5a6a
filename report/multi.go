package report

import (
	"errors"

	"github.com/IvanBrykalov/lrutier/residency"
)

type multi []residency.Sink

// Multi reports every snapshot to each sink in order. A failing sink does
// not stop the others; all errors are joined. Nil sinks are skipped.
func Multi(sinks ...residency.Sink) residency.Sink {
	m := make(multi, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			m = append(m, s)
		}
	}
	return m
}

func (m multi) Report(snap residency.Snapshot) error {
	var errs []error
	for _, s := range m {
		if err := s.Report(snap); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
