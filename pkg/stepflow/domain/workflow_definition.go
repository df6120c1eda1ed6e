package domain

import "time"

type WorkflowDefinition struct {
	ID      string    `json:"id" yaml:"id"`
	Name    string    `json:"name" yaml:"name"`
	Steps   []Step    `json:"steps" yaml:"steps"`
	Created time.Time `json:"created" yaml:"-"`
}
