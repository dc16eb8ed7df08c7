package quizgen

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/asadullah4bls/evalai/internal/quiz"
)

// untitledQuestion stands in for MCQ question text that could not be found.
// The structural validator rejects it.
const untitledQuestion = "Untitled Question"

var (
	unitBoundary = regexp.MustCompile(`(?m)^[ \t]*Q\d+\.[ \t]*`)

	// An option label counts only at the start of the unit, after
	// whitespace, or inside an opening parenthesis: "A) x", "(B) y".
	optionMarker = regexp.MustCompile(`(?:^|[\s(])([A-D])\)`)

	correctMarker     = regexp.MustCompile(`(?i)correct\s+answer\s*:`)
	correctLetter     = regexp.MustCompile(`^[\s*(]*([A-D])\b`)
	answerMarker      = regexp.MustCompile(`(?i)\banswer\s*:`)
	explanationMarker = regexp.MustCompile(`(?i)\bexplanation\s*:`)
)

// Drop records one unit that did not become a question.
type Drop struct {
	Unit   int
	Reason string
}

// Result is the outcome of parsing one reply.
type Result struct {
	Questions []quiz.Question
	Dropped   []Drop
}

// Parser turns a free-text reply into validated questions.
type Parser struct {
	validators []Validator
}

// NewParser creates a Parser that runs validators in order on every unit.
func NewParser(validators ...Validator) *Parser {
	return &Parser{validators: validators}
}

// DefaultParser uses DefaultValidators.
func DefaultParser() *Parser {
	return NewParser(DefaultValidators()...)
}

// Parse splits text into units at "Qn." line starts and parses each one on
// its own. Units that fail to parse, fail validation, do not match declared,
// or repeat an earlier question are dropped. Output keeps discovery order.
func (p *Parser) Parse(text string, declared quiz.QuestionType) Result {
	var res Result
	seen := make(map[string]struct{})

	for i, unit := range SplitUnits(text) {
		q, err := p.unit(unit, declared)
		if err != nil {
			res.Dropped = append(res.Dropped, Drop{Unit: i, Reason: err.Error()})
			continue
		}
		key := strings.ToLower(strings.TrimSpace(q.Question))
		if _, dup := seen[key]; dup {
			res.Dropped = append(res.Dropped, Drop{Unit: i, Reason: "duplicate question"})
			continue
		}
		seen[key] = struct{}{}
		res.Questions = append(res.Questions, q)
	}
	return res
}

// unit parses and validates one unit. A panic is reported as an error so
// it cannot take down sibling units.
func (p *Parser) unit(unit string, declared quiz.QuestionType) (q quiz.Question, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("parse panic: %v", r)
		}
	}()

	q = parseUnit(unit)
	if q.Type != declared {
		return q, fmt.Errorf("got %s in %s batch", q.Type, declared)
	}
	if verr := p.validate(&q); verr != nil {
		return q, verr
	}
	return q, nil
}

func (p *Parser) validate(q *quiz.Question) *ValidationError {
	for _, v := range p.validators {
		if verr := v.Validate(q); verr != nil {
			return verr
		}
	}
	return nil
}

// SplitUnits returns the trimmed, non-empty pieces of text between "Qn."
// markers. Text before the first marker is a unit of its own.
func SplitUnits(text string) []string {
	var units []string
	for _, part := range unitBoundary.Split(text, -1) {
		if part = strings.TrimSpace(part); part != "" {
			units = append(units, part)
		}
	}
	return units
}

// unitMode is the parse state chosen for a unit by classify.
type unitMode int

const (
	modeSAQ unitMode = iota
	modeMCQ
)

type option struct {
	label      string
	start, end int // marker span; start includes a leading "("
}

// classify picks MCQ mode when an option label appears before the first
// "Correct Answer:" or "Explanation:" marker, and SAQ mode otherwise.
// Labels must advance: a marker whose label is not after the last accepted
// one, such as the "(A)" in "D) Both (A) and (B)", is option text.
func classify(unit string) (unitMode, []option) {
	limit := len(unit)
	for _, re := range []*regexp.Regexp{correctMarker, explanationMarker} {
		if loc := re.FindStringIndex(unit); loc != nil && loc[0] < limit {
			limit = loc[0]
		}
	}

	var opts []option
	for _, m := range optionMarker.FindAllStringSubmatchIndex(unit[:limit], -1) {
		label := unit[m[2]:m[3]]
		if n := len(opts); n > 0 && label <= opts[n-1].label {
			continue
		}
		start := m[2]
		if start > 0 && unit[start-1] == '(' {
			start--
		}
		opts = append(opts, option{label: label, start: start, end: m[1]})
	}
	if len(opts) == 0 {
		return modeSAQ, nil
	}
	return modeMCQ, opts
}

func parseUnit(unit string) quiz.Question {
	mode, opts := classify(unit)
	switch mode {
	case modeMCQ:
		return parseMCQ(unit, opts)
	default:
		return parseSAQ(unit)
	}
}

// parseMCQ reads question text, options A-D, the correct letter and the
// explanation. Each option runs to the next accepted option,
// "Correct Answer:", "Explanation:" or the end of the unit.
func parseMCQ(unit string, opts []option) quiz.Question {
	q := quiz.Question{
		Type:     quiz.MCQ,
		Question: untitledQuestion,
		Options:  make(map[string]string, 4),
	}

	// Boundaries that end an option's text.
	stops := make([]int, 0, len(opts)+2)
	for _, o := range opts {
		stops = append(stops, o.start)
	}
	for _, re := range []*regexp.Regexp{correctMarker, explanationMarker} {
		if loc := re.FindStringIndex(unit); loc != nil {
			stops = append(stops, loc[0])
		}
	}
	sort.Ints(stops)

	for _, o := range opts {
		if o.label == "A" && q.Question == untitledQuestion {
			q.Question = strings.TrimSpace(unit[:o.start])
		}
		end := len(unit)
		if i := sort.SearchInts(stops, o.end); i < len(stops) {
			end = stops[i]
		}
		q.Options[o.label] = collapse(unit[o.end:end])
	}

	if loc := correctMarker.FindStringIndex(unit); loc != nil {
		if m := correctLetter.FindStringSubmatch(unit[loc[1]:]); m != nil {
			q.CorrectAnswer = m[1]
		}
	}
	q.Explanation = explanationAfter(unit)
	return q
}

// parseSAQ reads question text up to "Answer:" or "Correct Answer:", the
// answer up to "Explanation:", and the explanation.
func parseSAQ(unit string) quiz.Question {
	q := quiz.Question{Type: quiz.SAQ}

	expl := len(unit)
	if loc := explanationMarker.FindStringIndex(unit); loc != nil {
		expl = loc[0]
	}

	loc := answerMarker.FindStringIndex(unit)
	if c := correctMarker.FindStringIndex(unit); c != nil && (loc == nil || c[0] <= loc[0]) {
		loc = c
	}
	if loc == nil {
		q.Question = strings.TrimSpace(unit[:expl])
	} else {
		q.Question = strings.TrimSpace(unit[:loc[0]])
		if loc[1] <= expl {
			q.Answer = strings.TrimSpace(unit[loc[1]:expl])
		} else {
			q.Answer = strings.TrimSpace(unit[loc[1]:])
		}
	}
	q.Explanation = explanationAfter(unit)
	return q
}

func explanationAfter(unit string) string {
	loc := explanationMarker.FindStringIndex(unit)
	if loc == nil {
		return ""
	}
	return collapse(unit[loc[1]:])
}

// collapse folds all whitespace runs to single spaces.
func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
