package export

import (
	"fmt"
	"io"

	"github.com/forestrie/go-bespoke-array/profile"
)

const ruleWidth = 72

func rule() string {
	b := make([]byte, ruleWidth)
	for i := range b {
		b[i] = '='
	}
	return string(b) + "\n"
}

// WriteReport renders the frozen tables as the plain-text report a human
// reviews after an export run: a Sources section describing what every
// allocation site observed, then a Sinks section describing what every
// consumption site observed, in that order, each preceded by a rule line.
func WriteReport(w io.Writer, tables *profile.Tables, statics profile.StaticStrings) error {
	sources := sortProfileData(tables, statics)
	sinks := sortSinkData(tables)

	if err := writeSources(w, sources, statics); err != nil {
		return err
	}
	return writeSinks(w, sinks)
}

func writeSources(w io.Writer, sources []SourceOutputData, statics profile.StaticStrings) error {
	if _, err := io.WriteString(w, rule()); err != nil {
		return err
	}
	if _, err := io.WriteString(w, "Sources:\n\n"); err != nil {
		return err
	}

	for _, s := range sources {
		sk := s.Profile.Source()
		if _, err := fmt.Fprintf(w, "%s [%d/%d sampled, %.2f weight]\n",
			sk.Symbol(), s.Profile.LoggingArraysEmitted(), s.Profile.SampleCount(), s.Weight); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "  %s\n", sk.ShowInst()); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "  %d reads, %d writes, %d distinct sinks\n",
			s.ReadCount, s.WriteCount, s.NumDistinctSinks); err != nil {
			return err
		}

		if _, err := io.WriteString(w, "  Read operations:\n"); err != nil {
			return err
		}
		if err := writeOperationSet(w, s.ReadOperations, statics); err != nil {
			return err
		}

		if _, err := io.WriteString(w, "  Write operations:\n"); err != nil {
			return err
		}
		if err := writeOperationSet(w, s.WriteOperations, statics); err != nil {
			return err
		}

		if _, err := io.WriteString(w, "  Entry Type Escalations:\n"); err != nil {
			return err
		}
		for _, esc := range s.Escalations {
			if _, err := fmt.Fprintf(w, "  %6dx %s -> %s\n", esc.Count, esc.Before, esc.After); err != nil {
				return err
			}
		}

		if _, err := io.WriteString(w, "  Entry Type Operations:\n"); err != nil {
			return err
		}
		for _, use := range s.Uses {
			if _, err := fmt.Fprintf(w, "  %6dx %s\n", use.Count, use.Types); err != nil {
				return err
			}
		}

		if _, err := io.WriteString(w, "\n"); err != nil {
			return err
		}
	}
	return nil
}

func writeOperationSet(w io.Writer, ops []OperationOutputData, statics profile.StaticStrings) error {
	for _, op := range ops {
		if len(op.Events) == 1 {
			ev := op.Events[0]
			if _, err := fmt.Fprintf(w, "  %6dx %s\n", ev.Count, ev.Event.String(statics)); err != nil {
				return err
			}
			continue
		}

		if _, err := fmt.Fprintf(w, "  %6dx %s\n", op.TotalCount, op.Operation); err != nil {
			return err
		}
		for _, ev := range op.Events {
			if _, err := fmt.Fprintf(w, "        %6dx %s\n", ev.Count, ev.Event.String(statics)); err != nil {
				return err
			}
		}
	}
	return nil
}

func writeSinks(w io.Writer, sinks []SinkOutputData) error {
	if _, err := io.WriteString(w, rule()); err != nil {
		return err
	}
	if _, err := io.WriteString(w, "Sinks:\n\n"); err != nil {
		return err
	}

	for _, s := range sinks {
		sk := s.Profile.Sink()
		if _, err := fmt.Fprintf(w, "%s [%d/%d sampled]\n", sk.Symbol(), s.SampledCount, s.Weight); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "  %s\n", sk.ShowInst()); err != nil {
			return err
		}

		if err := writeTypeCounts(w, "Array", s.ArrCounts); err != nil {
			return err
		}
		if err := writeTypeCounts(w, "Key", s.KeyCounts); err != nil {
			return err
		}
		if err := writeTypeCounts(w, "Value", s.ValCounts); err != nil {
			return err
		}

		if _, err := io.WriteString(w, "\n"); err != nil {
			return err
		}
	}
	return nil
}

func writeTypeCounts(w io.Writer, label string, counts []NamedCount) error {
	if _, err := fmt.Fprintf(w, "  %s Type Counts:\n", label); err != nil {
		return err
	}
	for _, c := range counts {
		if _, err := fmt.Fprintf(w, "  %6dx %s\n", c.Count, c.Name); err != nil {
			return err
		}
	}
	return nil
}
