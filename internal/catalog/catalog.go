/*
Package catalog imports workflow documents from YAML or JSON.

A document holds either a single workflow:

	name: Slack Notification Bot
	description: sends slack alerts
	category: notification
	tags: [slack, alerts]
	isPublic: true

or a list of them:

	workflows:
	  - name: Slack Notification Bot
	  - name: CSV Importer

JSON documents use the same keys.
*/
package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/khanglvm/workflow-hub/internal/storage"
)

// ErrEmptyDocument is returned when a document holds no workflows.
var ErrEmptyDocument = errors.New("document contains no workflows")

// document is the list form of a catalog file.
type document struct {
	Workflows []storage.Workflow `yaml:"workflows"`
}

// Options override fields on every parsed workflow.
type Options struct {
	// CreatedBy replaces the owner when non-empty.
	CreatedBy string

	// IsPublic replaces the visibility when non-nil.
	IsPublic *bool
}

// Parse decodes data into validated, normalized workflows.
func Parse(data []byte, opts Options) ([]storage.Workflow, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal workflows: %w", err)
	}

	workflows := doc.Workflows
	if len(workflows) == 0 {
		var single storage.Workflow
		if err := yaml.Unmarshal(data, &single); err != nil {
			return nil, fmt.Errorf("failed to unmarshal workflow: %w", err)
		}
		if single.Name == "" && single.Description == "" && len(single.Tags) == 0 {
			return nil, ErrEmptyDocument
		}
		workflows = []storage.Workflow{single}
	}

	now := time.Now()
	out := make([]storage.Workflow, 0, len(workflows))
	for i, wf := range workflows {
		if opts.CreatedBy != "" {
			wf.CreatedBy = opts.CreatedBy
		}
		if opts.IsPublic != nil {
			wf.IsPublic = *opts.IsPublic
		}

		prepared, err := storage.PrepareWorkflow(wf, now)
		if err != nil {
			return nil, fmt.Errorf("workflow %d (%q): %w", i+1, wf.Name, err)
		}
		out = append(out, prepared)
	}

	return out, nil
}

// Load reads and parses a catalog file.
func Load(path string, opts Options) ([]storage.Workflow, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data, opts)
}

// LoadReader parses a catalog from r, such as stdin.
func LoadReader(r io.Reader, opts Options) ([]storage.Workflow, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return Parse(data, opts)
}

// Saver persists workflows.
type Saver interface {
	SaveWorkflow(ctx context.Context, wf storage.Workflow) (storage.Workflow, error)
}

// Import saves every workflow in order and returns the stored copies. It
// stops at the first failure; workflows saved before it stay saved.
func Import(ctx context.Context, s Saver, workflows []storage.Workflow) ([]storage.Workflow, error) {
	saved := make([]storage.Workflow, 0, len(workflows))
	for _, wf := range workflows {
		stored, err := s.SaveWorkflow(ctx, wf)
		if err != nil {
			return saved, fmt.Errorf("failed to save %q: %w", wf.Name, err)
		}
		saved = append(saved, stored)
	}
	return saved, nil
}

// Marshal renders workflows as a YAML catalog document.
func Marshal(workflows []storage.Workflow) ([]byte, error) {
	data, err := yaml.Marshal(document{Workflows: workflows})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal workflows: %w", err)
	}
	return data, nil
}
