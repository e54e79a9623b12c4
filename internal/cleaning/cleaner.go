// Package cleaning repairs a raw table through a fixed sequence of steps and
// records every material change in a Report.
package cleaning

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/KaramelBytes/tidyloom-cli/internal/issues"
	"github.com/KaramelBytes/tidyloom-cli/internal/ordered"
	"github.com/KaramelBytes/tidyloom-cli/internal/table"
)

// Report is the audit trail of one Clean call. Nil sections are absent.
type Report struct {
	Steps         []string                    `json:"steps" yaml:"steps"`
	RowsRemoved   int                         `json:"rows_removed" yaml:"rows_removed"`
	MissingReport *ordered.Map[string]        `json:"missing_report,omitempty" yaml:"missing_report,omitempty"`
	OutlierReport *ordered.Map[OutlierDetail] `json:"outlier_report,omitempty" yaml:"outlier_report,omitempty"`
	FinalShape    *table.Shape                `json:"final_shape,omitempty" yaml:"final_shape,omitempty"`
}

// OutlierDetail describes how one numeric column was clamped.
type OutlierDetail struct {
	LowerBound    float64 `json:"lower_bound" yaml:"lower_bound"`
	UpperBound    float64 `json:"upper_bound" yaml:"upper_bound"`
	OutliersCount int     `json:"outliers_count" yaml:"outliers_count"`
}

func newReport() *Report { return &Report{Steps: []string{}} }

func (r *Report) note(format string, args ...any) {
	r.Steps = append(r.Steps, fmt.Sprintf(format, args...))
}

// StepError wraps the failure of one named cleaning step.
type StepError struct {
	Step string
	Err  error
}

func (e *StepError) Error() string { return fmt.Sprintf("%s: %v", e.Step, e.Err) }
func (e *StepError) Unwrap() error { return e.Err }

// Cleaner runs the cleaning pipeline.
type Cleaner struct {
	logger *zap.Logger
}

// NewCleaner returns a cleaner logging to logger; nil disables logging.
func NewCleaner(logger *zap.Logger) *Cleaner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cleaner{logger: logger.Named("cleaning")}
}

// Clean repairs t in place and returns it with the report and any issues.
// It never fails: a failing step stops the pipeline, is logged as an issue,
// and the partially cleaned table is returned as is.
func (c *Cleaner) Clean(t *table.Table) (*table.Table, *Report, *issues.Log) {
	rep := newReport()
	log := issues.New()
	if t.Empty() {
		log.Addf("cleaning failed: %v", table.ErrNoData)
		c.logger.Warn("cleaning skipped", zap.Error(table.ErrNoData))
		return t, rep, log
	}

	before := t.Rows()
	for _, s := range pipeline {
		if err := c.run(s, t, rep); err != nil {
			rep.RowsRemoved = before - t.Rows()
			log.Addf("cleaning failed: %v", err)
			c.logger.Error("cleaning step failed", zap.String("step", s.name), zap.Error(err))
			return t, rep, log
		}
		c.logger.Debug("cleaning step done", zap.String("step", s.name), zap.Int("rows", t.Rows()))
	}
	rep.RowsRemoved = before - t.Rows()
	shape := t.Shape()
	rep.FinalShape = &shape

	c.logger.Info("cleaning finished",
		zap.Int("rows_removed", rep.RowsRemoved),
		zap.Int("imputed_columns", rep.MissingReport.Len()),
		zap.Int("clamped_columns", rep.OutlierReport.Len()),
		zap.Stringer("final_shape", shape))
	return t, rep, log
}

func (c *Cleaner) run(s step, t *table.Table, rep *Report) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &StepError{Step: s.name, Err: fmt.Errorf("panic: %v", r)}
		}
	}()
	if err := s.run(t, rep); err != nil {
		return &StepError{Step: s.name, Err: err}
	}
	return nil
}
