// Package seed loads authored stories from YAML files into the database.
package seed

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"fallen-dragon-server/shared/models"
)

// File is the YAML layout of a story file.
type File struct {
	Story StoryDef `yaml:"story"`
}

type StoryDef struct {
	Title       string   `yaml:"title"`
	Description string   `yaml:"description"`
	Acts        []ActDef `yaml:"acts"`
}

type ActDef struct {
	Number  int         `yaml:"number"`
	Text    string      `yaml:"text"`
	Ending  bool        `yaml:"ending"`
	Choices []ChoiceDef `yaml:"choices"`
}

type ChoiceDef struct {
	Text string `yaml:"text"`
	Next int    `yaml:"next"`
}

// ReadFile reads and parses a story file. It does not validate it.
func ReadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes a story file. Unknown keys are rejected.
func Parse(data []byte) (*File, error) {
	var f File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("%w: parse seed file: %v", models.ErrInvalidInput, err)
	}
	return &f, nil
}

// Validate checks the story graph: act numbers are positive and unique, act 1
// exists, every positive choice target exists and every non-ending act has a choice.
// All problems are reported at once.
func (f *File) Validate() error {
	var errs []error
	s := f.Story

	if strings.TrimSpace(s.Title) == "" {
		errs = append(errs, errors.New("story title is empty"))
	}
	if len(s.Acts) == 0 {
		errs = append(errs, errors.New("story has no acts"))
	}

	numbers := make(map[int]bool, len(s.Acts))
	for _, act := range s.Acts {
		switch {
		case act.Number <= 0:
			errs = append(errs, fmt.Errorf("act number %d is not positive", act.Number))
		case numbers[act.Number]:
			errs = append(errs, fmt.Errorf("act %d is defined twice", act.Number))
		}
		numbers[act.Number] = true
	}
	if len(s.Acts) > 0 && !numbers[1] {
		errs = append(errs, errors.New("act 1 is missing"))
	}

	for _, act := range s.Acts {
		if strings.TrimSpace(act.Text) == "" {
			errs = append(errs, fmt.Errorf("act %d has no text", act.Number))
		}
		if !act.Ending && len(act.Choices) == 0 {
			errs = append(errs, fmt.Errorf("act %d is not an ending and has no choices", act.Number))
		}
		for i, c := range act.Choices {
			if strings.TrimSpace(c.Text) == "" {
				errs = append(errs, fmt.Errorf("act %d choice %d has no text", act.Number, i+1))
			}
			if !models.IsTerminalActNumber(c.Next) && !numbers[c.Next] {
				errs = append(errs, fmt.Errorf("act %d choice %q leads to missing act %d", act.Number, c.Text, c.Next))
			}
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", models.ErrInvalidInput, errors.Join(errs...))
	}
	return nil
}

// ToModel converts the file into a story graph without ids.
func (f *File) ToModel() *models.Story {
	story := &models.Story{
		Title:       strings.TrimSpace(f.Story.Title),
		Description: strings.TrimSpace(f.Story.Description),
		Acts:        make([]*models.Act, 0, len(f.Story.Acts)),
	}
	for _, a := range f.Story.Acts {
		act := &models.Act{
			ActNumber: a.Number,
			Text:      strings.TrimSpace(a.Text),
			IsEnding:  a.Ending,
			Choices:   make([]*models.Choice, 0, len(a.Choices)),
		}
		for _, c := range a.Choices {
			act.Choices = append(act.Choices, &models.Choice{Text: strings.TrimSpace(c.Text), NextActNumber: c.Next})
		}
		story.Acts = append(story.Acts, act)
	}
	return story
}
