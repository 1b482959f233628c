package quiz

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed questions.yaml
var defaultQuestions []byte

// ErrEmptyQuestionnaire is returned when a questionnaire has no usable questions.
var ErrEmptyQuestionnaire = errors.New("quiz: questionnaire has no questions")

// Choice is one answer option of a question.
type Choice struct {
	Label       string `yaml:"label"`
	Affirmative bool   `yaml:"affirmative"`
}

// Question is immutable once loaded.
type Question struct {
	Prompt  string   `yaml:"prompt"`
	Options []Choice `yaml:"options"`
}

type questionnaireFile struct {
	Questions []Question `yaml:"questions"`
}

// LoadQuestions reads the questionnaire from path, or the embedded default when path is empty.
func LoadQuestions(path string) ([]Question, error) {
	data := defaultQuestions
	if path = strings.TrimSpace(path); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("quiz: read questionnaire %s: %w", path, err)
		}
		data = raw
	}
	return ParseQuestions(data)
}

// ParseQuestions decodes and validates a YAML questionnaire.
func ParseQuestions(data []byte) ([]Question, error) {
	var file questionnaireFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("quiz: decode questionnaire: %w", err)
	}
	if len(file.Questions) == 0 {
		return nil, ErrEmptyQuestionnaire
	}
	for i, q := range file.Questions {
		if strings.TrimSpace(q.Prompt) == "" {
			return nil, fmt.Errorf("quiz: question %d has empty prompt", i+1)
		}
		if len(q.Options) == 0 {
			return nil, fmt.Errorf("quiz: question %d has no options", i+1)
		}
		for j, opt := range q.Options {
			if strings.TrimSpace(opt.Label) == "" {
				return nil, fmt.Errorf("quiz: question %d option %d has empty label", i+1, j+1)
			}
		}
	}
	return file.Questions, nil
}
