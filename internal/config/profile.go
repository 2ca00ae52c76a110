package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"sprint-pulse/internal/report"
)

// WorkflowProfile overrides the status vocabulary of a Productive workspace.
//
//	status_order: [Not Started, In Progress, Complete]
//	overflow_status: Spillover
//	complete_statuses: [Complete, Approved for Production]
//	closed_category_id: 3
type WorkflowProfile struct {
	StatusOrder      []string `yaml:"status_order"`
	OverflowStatus   *string  `yaml:"overflow_status"`
	CompleteStatuses []string `yaml:"complete_statuses"`
	ClosedCategoryID int      `yaml:"closed_category_id"`
}

// LoadProfile reads a YAML workflow profile from path.
func LoadProfile(path string) (*WorkflowProfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read workflow profile: %w", err)
	}
	return ParseProfile(data)
}

// ParseProfile decodes a workflow profile. Unknown keys are rejected.
func ParseProfile(data []byte) (*WorkflowProfile, error) {
	var p WorkflowProfile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("invalid workflow profile: %w", err)
	}
	if p.ClosedCategoryID < 0 {
		return nil, fmt.Errorf("invalid workflow profile: closed_category_id must be positive, got %d", p.ClosedCategoryID)
	}
	return &p, nil
}

// Apply overlays the fields the profile sets onto opts.
func (p *WorkflowProfile) Apply(opts *report.Options) {
	if p == nil {
		return
	}
	if len(p.StatusOrder) > 0 {
		opts.StatusOrder.Canonical = append([]string(nil), p.StatusOrder...)
	}
	if p.OverflowStatus != nil {
		opts.StatusOrder.Overflow = *p.OverflowStatus
	}
	if p.CompleteStatuses != nil {
		opts.CompleteStatuses = append([]string(nil), p.CompleteStatuses...)
	}
	if p.ClosedCategoryID > 0 {
		opts.ClosedCategory = p.ClosedCategoryID
	}
}
