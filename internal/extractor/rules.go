package extractor

import (
	"regexp"
	"unicode/utf8"
)

// rule is one named entry of an ordered classification table.
type rule struct {
	name string
	re   *regexp.Regexp
}

// questionRules classify structured turns. Order is priority order.
var questionRules = []rule{
	{"ends-with-question-mark", regexp.MustCompile(`[？?]$`)},
	{"starts-with-interrogative", regexp.MustCompile(`^(何|どう|なぜ|なんで|どこ|いつ|誰|どの|どんな|いくつ)`)},
	{"interrogative-phrase", regexp.MustCompile(`(どうすれば|どうしたら|どうやったら|何で|なぜ|なんで)`)},
	{"capability-query", regexp.MustCompile(`(できますか|できます？|可能ですか|可能？)`)},
	{"definition-query", regexp.MustCompile(`(って何|とは何|ってどういう|って何ですか)`)},
}

// answerRules mark a structured turn as an answer regardless of length.
var answerRules = []rule{
	{"acknowledgement", regexp.MustCompile(`^(かしこまりました|了解|わかりました|承知|OK|了解しました)`)},
	{"confirmation", regexp.MustCompile(`^(はい|いいえ|そうです|違います)`)},
	{"first-person", regexp.MustCompile(`^(自分|私|僕|俺)`)},
}

// plainQuestionRules is the reduced table used for free-form text.
var plainQuestionRules = []rule{
	{"ends-with-question-mark", regexp.MustCompile(`[？?]$`)},
	{"starts-with-interrogative", regexp.MustCompile(`^(何|どう|なぜ|なんで|どこ|いつ|誰|どの|どんな)`)},
	{"interrogative-phrase", regexp.MustCompile(`(どうすれば|どうしたら|できますか|可能ですか)`)},
}

var (
	structuredLine = regexp.MustCompile(`^\d{2}:\d{2}\t`)
	dateHeader     = regexp.MustCompile(`^\d{4}/\d{2}/\d{2}`)
	messageLine    = regexp.MustCompile(`^(\d{2}:\d{2})\t([^\t]+)\t(.+)$`)
)

// firstMatch returns the name of the first rule in rules matching s.
func firstMatch(rules []rule, s string) (string, bool) {
	for _, r := range rules {
		if r.re.MatchString(s) {
			return r.name, true
		}
	}
	return "", false
}

func isQuestion(body string) bool {
	_, ok := firstMatch(questionRules, body)
	return ok
}

// isAnswer reports whether body answers the open question. The length
// fallback only applies while a question is open.
func isAnswer(body string, questionOpen, question bool) bool {
	if _, ok := firstMatch(answerRules, body); ok {
		return true
	}
	return questionOpen && !question && runeLen(body) > minAnswerLen
}

func isPlainQuestion(line string) bool {
	_, ok := firstMatch(plainQuestionRules, line)
	return ok
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}
