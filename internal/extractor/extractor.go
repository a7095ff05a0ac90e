// Package extractor infers question/answer pairs from exported chat
// transcripts.
//
// Two input shapes are handled. Structured exports carry one message per
// line as "HH:MM<TAB>author<TAB>message" (the LINE talk history format);
// anything else is treated as free-form text. Classification is rule based
// and order sensitive, so the rule tables in rules.go are evaluated strictly
// in declaration order.
package extractor

import (
	"iter"
	"strings"
)

const bom = "\ufeff"

// Extract returns the question/answer pairs found in text. It never fails;
// input without recognisable pairs yields an empty, non-nil slice.
func Extract(text string) []QAPair {
	text = strings.TrimPrefix(text, bom)
	if isStructured(text) {
		return extractStructured(text)
	}
	return extractPlain(text)
}

// Filter keeps pairs whose confidence is at least minConfidence.
func Filter(pairs []QAPair, minConfidence float64) []QAPair {
	out := make([]QAPair, 0, len(pairs))
	for _, p := range pairs {
		if p.Confidence >= minConfidence {
			out = append(out, p)
		}
	}
	return out
}

// isStructured reports whether the first non-blank line starts with a
// "HH:MM<TAB>" timestamp.
func isStructured(text string) bool {
	next, stop := iter.Pull(nonBlankLines(text))
	defer stop()
	line, ok := next()
	return ok && structuredLine.MatchString(line)
}

// segment is either a parsed turn or a continuation line.
type segment struct {
	turn         Turn
	continuation string
	isTurn       bool
}

// segments lazily scans a structured export. Blank lines and date headers
// are skipped; lines that do not parse as messages are continuations.
func segments(text string) iter.Seq[segment] {
	return func(yield func(segment) bool) {
		for line := range nonBlankLines(text) {
			if dateHeader.MatchString(line) {
				continue
			}
			m := messageLine.FindStringSubmatch(line)
			var s segment
			if m == nil {
				s = segment{continuation: line}
			} else {
				s = segment{
					turn:   Turn{Time: m[1], Author: m[2], Body: strings.TrimSpace(m[3])},
					isTurn: true,
				}
			}
			if !yield(s) {
				return
			}
		}
	}
}

func extractStructured(text string) []QAPair {
	m := newMachine()
	for s := range segments(text) {
		if !s.isTurn {
			m.continueAnswer(s.continuation)
			continue
		}
		m.structuredTurn(s.turn)
	}
	m.emit(ConfidenceStructured)
	return m.pairs
}

// structuredTurn applies the transition rules for one turn in their fixed
// order.
func (m *machine) structuredTurn(t Turn) {
	body := t.Body
	question := isQuestion(body)
	answer := isAnswer(body, m.phase != idle, question)

	switch {
	case question:
		m.emit(ConfidenceStructured)
		m.open(body, t.Author)
	case m.phase != idle && answer:
		m.addAnswer(body, t.Author)
	case m.phase == questionOpen && runeLen(body) > implicitAnswerLen:
		m.addAnswer(body, t.Author)
	}

	if question && m.phase == answerOpen && m.question != body {
		m.emit(ConfidenceInterrupted)
		m.open(body, t.Author)
	}
}

func extractPlain(text string) []QAPair {
	m := newMachine()
	for line := range nonBlankLines(text) {
		n := runeLen(line)
		switch {
		case n > minPlainQuestionLen && isPlainQuestion(line):
			m.emit(ConfidencePlain)
			m.open(line, "")
		case m.phase != idle && n > minAnswerLen:
			m.addAnswer(line, "")
		}
	}
	m.emit(ConfidencePlain)
	return m.pairs
}

// nonBlankLines yields the trimmed, non-empty lines of text.
func nonBlankLines(text string) iter.Seq[string] {
	return func(yield func(string) bool) {
		for line := range strings.Lines(text) {
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			if !yield(line) {
				return
			}
		}
	}
}
