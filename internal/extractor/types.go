package extractor

// Turn is one reconstructed message of a structured chat export.
type Turn struct {
	Time   string
	Author string
	Body   string
}

// QAPair is an inferred question/answer association.
//
// Confidence only records which rule closed the pair; it is not calibrated.
type QAPair struct {
	Question       string  `json:"question" yaml:"question"`
	Answer         string  `json:"answer" yaml:"answer"`
	QuestionAuthor string  `json:"questionAuthor,omitempty" yaml:"question_author,omitempty"`
	AnswerAuthor   string  `json:"answerAuthor,omitempty" yaml:"answer_author,omitempty"`
	Confidence     float64 `json:"confidence" yaml:"confidence"`
}

const (
	// ConfidenceStructured is assigned when a structured pair is closed by the
	// next question or by end of input.
	ConfidenceStructured = 0.8
	// ConfidenceInterrupted is assigned when a buffered structured pair is
	// closed by a different question.
	ConfidenceInterrupted = 0.7
	// ConfidencePlain is assigned to every pair from free-form text.
	ConfidencePlain = 0.6
)

// Length thresholds, counted in Unicode code points.
const (
	minPlainQuestionLen = 5
	minAnswerLen        = 10
	implicitAnswerLen   = 20
)
