package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// SampleQuestion is one entry in the sample question catalog served to
// clients that want a starting point for queries.
type SampleQuestion struct {
	ID       string `yaml:"id,omitempty" json:"id,omitempty"`
	Question string `yaml:"question" json:"question"`
	Category string `yaml:"category,omitempty" json:"category,omitempty"`
	Type     string `yaml:"type,omitempty" json:"type,omitempty"`
}

// sampleQuestionFile is the on-disk YAML layout.
type sampleQuestionFile struct {
	Questions []SampleQuestion `yaml:"questions"`
}

// fallbackQuestions is used when no question file is configured or the
// configured file cannot be parsed into at least one usable entry.
var fallbackQuestions = []string{
	"Thuế suất VAT cho dịch vụ giáo dục là bao nhiêu?",
	"Điều kiện được miễn thuế thu nhập cá nhân?",
	"Thời hạn nộp thuế GTGT hàng tháng là khi nào?",
	"Cách tính thuế thu nhập doanh nghiệp?",
	"Thu nhập nào được miễn thuế TNDN?",
	"Doanh nghiệp nào được ưu đãi thuế TNDN?",
	"Thuế suất thuế TNDN hiện hành là bao nhiêu?",
	"Chi phí nào được trừ khi tính thuế TNDN?",
}

// DefaultSampleQuestions returns the built-in question set.
func DefaultSampleQuestions() []SampleQuestion {
	questions := make([]SampleQuestion, 0, len(fallbackQuestions))
	for _, q := range fallbackQuestions {
		questions = append(questions, SampleQuestion{
			Question: q,
			Category: "General",
		})
	}
	return questions
}

// LoadSampleQuestions reads sample questions from a YAML file. An empty
// path returns the built-in set. Entries without question text are
// dropped; entries without a category are filed under "General".
func LoadSampleQuestions(path string) ([]SampleQuestion, error) {
	if path == "" {
		return DefaultSampleQuestions(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read sample questions: %w", err)
	}

	var file sampleQuestionFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse sample questions: %w", err)
	}

	questions := make([]SampleQuestion, 0, len(file.Questions))
	for _, q := range file.Questions {
		if q.Question == "" {
			continue
		}
		if q.Category == "" {
			q.Category = "General"
		}
		questions = append(questions, q)
	}

	if len(questions) == 0 {
		return DefaultSampleQuestions(), nil
	}

	return questions, nil
}
