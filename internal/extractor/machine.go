package extractor

// phase is the state of a single extraction pass.
type phase int

const (
	idle phase = iota
	questionOpen
	answerOpen // question and answer both buffered
)

func (p phase) String() string {
	switch p {
	case questionOpen:
		return "question_open"
	case answerOpen:
		return "question_and_answer_open"
	default:
		return "idle"
	}
}

// machine buffers at most one pair. Pairs are only emitted from answerOpen.
type machine struct {
	phase          phase
	question       string
	questionAuthor string
	answer         string
	answerAuthor   string
	pairs          []QAPair
}

func newMachine() *machine {
	return &machine{pairs: []QAPair{}}
}

// open starts a new question and discards any buffered answer.
func (m *machine) open(question, author string) {
	m.phase = questionOpen
	m.question = question
	m.questionAuthor = author
	m.answer = ""
	m.answerAuthor = ""
}

// addAnswer starts the answer buffer or appends to it. The first
// contributing author is kept.
func (m *machine) addAnswer(text, author string) {
	switch m.phase {
	case questionOpen:
		m.answer = text
		m.answerAuthor = author
		m.phase = answerOpen
	case answerOpen:
		m.answer += "\n" + text
	}
}

// continueAnswer appends a continuation line to an open answer only.
func (m *machine) continueAnswer(line string) {
	if m.phase == answerOpen {
		m.answer += "\n" + line
	}
}

// emit closes a complete pair with the given confidence and returns to idle.
// It is a no-op unless both question and answer are buffered.
func (m *machine) emit(confidence float64) {
	if m.phase != answerOpen {
		return
	}
	m.pairs = append(m.pairs, QAPair{
		Question:       m.question,
		Answer:         m.answer,
		QuestionAuthor: m.questionAuthor,
		AnswerAuthor:   m.answerAuthor,
		Confidence:     confidence,
	})
	m.phase = idle
	m.question, m.questionAuthor = "", ""
	m.answer, m.answerAuthor = "", ""
}
