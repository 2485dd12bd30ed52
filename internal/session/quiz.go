package session

import (
	"math"
	"sync"

	"github.com/cognitypin/cognitypin/internal/content"
	"github.com/cognitypin/cognitypin/internal/events"
)

// QuizState is the lifecycle state of a QuizSession.
type QuizState string

const (
	NotStarted    QuizState = "not_started"
	InProgress    QuizState = "in_progress"
	QuizCompleted QuizState = "completed"
)

// Unanswered marks a question with no selected option.
const Unanswered = -1

// QuizSession drives a multiple-choice quiz over one article's questions.
type QuizSession struct {
	mu         sync.Mutex
	articleID  string
	pub        events.Publisher
	state      QuizState
	questions  []content.QuizQuestion
	selections []int
	index      int
	score      int
}

// NewQuiz creates a quiz for articleID. pub may be nil.
func NewQuiz(articleID string, pub events.Publisher) *QuizSession {
	return &QuizSession{articleID: articleID, pub: pub, state: NotStarted}
}

// Start begins the quiz. It returns false and leaves the session unchanged
// when questions is empty.
func (q *QuizSession) Start(questions []content.QuizQuestion) bool {
	if len(questions) == 0 {
		return false
	}
	q.mu.Lock()
	defer q.mu.Unlock()

	q.questions = append([]content.QuizQuestion(nil), questions...)
	q.selections = make([]int, len(questions))
	for i := range q.selections {
		q.selections[i] = Unanswered
	}
	q.index = 0
	q.score = 0
	q.state = InProgress
	return true
}

// SelectAnswer records option for the current question. It returns false
// when the quiz is not in progress or option is not one of the choices.
func (q *QuizSession) SelectAnswer(option int) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.state != InProgress || q.index < 0 || q.index >= len(q.selections) {
		return false
	}
	if option < 0 || option >= len(q.questions[q.index].Options) {
		return false
	}
	q.selections[q.index] = option
	return true
}

// Next advances to the next question, or completes the quiz on the last one.
func (q *QuizSession) Next() {
	q.mu.Lock()
	if q.state != InProgress {
		q.mu.Unlock()
		return
	}
	if q.index < len(q.questions)-1 {
		q.index++
		q.mu.Unlock()
		return
	}
	q.mu.Unlock()
	q.Complete()
}

// Previous steps back one question; it does nothing on the first.
func (q *QuizSession) Previous() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.state == InProgress && q.index > 0 {
		q.index--
	}
}

// Complete scores the quiz and publishes QuizCompleted. It reports whether
// this call completed the quiz.
func (q *QuizSession) Complete() bool {
	q.mu.Lock()
	if q.state != InProgress {
		q.mu.Unlock()
		return false
	}
	q.score = score(q.correct(), len(q.questions))
	q.state = QuizCompleted
	ev := events.QuizCompleted(q.articleID, q.score)
	q.mu.Unlock()

	if q.pub != nil {
		q.pub.Publish(ev)
	}
	return true
}

func (q *QuizSession) correct() int {
	n := 0
	for i, sel := range q.selections {
		if sel == q.questions[i].CorrectIndex {
			n++
		}
	}
	return n
}

func score(correct, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(100 * float64(correct) / float64(total)))
}

// Close discards the quiz and returns it to NotStarted.
func (q *QuizSession) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.questions = nil
	q.selections = nil
	q.index = 0
	q.score = 0
	q.state = NotStarted
}

func (q *QuizSession) ArticleID() string {
	return q.articleID
}

func (q *QuizSession) State() QuizState {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.state
}

// CurrentQuestion returns the question at the current index.
func (q *QuizSession) CurrentQuestion() (content.QuizQuestion, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.index >= len(q.questions) {
		return content.QuizQuestion{}, false
	}
	return q.questions[q.index], true
}

func (q *QuizSession) Index() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.index
}

func (q *QuizSession) HasSelection() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.index < len(q.selections) && q.selections[q.index] != Unanswered
}

func (q *QuizSession) IsFirst() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.index == 0
}

func (q *QuizSession) IsLast() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.questions) > 0 && q.index == len(q.questions)-1
}

// Progress returns (index+1)/total, or 0 before the quiz starts.
func (q *QuizSession) Progress() float64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.progress()
}

func (q *QuizSession) progress() float64 {
	if len(q.questions) == 0 {
		return 0
	}
	return float64(q.index+1) / float64(len(q.questions))
}

// Score returns the final score. It is 0 until the quiz completes.
func (q *QuizSession) Score() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.state != QuizCompleted {
		return 0
	}
	return q.score
}

// QuestionView is a question as shown to the reader. The answer key is
// only revealed once the quiz is complete.
type QuestionView struct {
	ID           string   `json:"id"`
	Question     string   `json:"question"`
	Options      []string `json:"options"`
	Selected     int      `json:"selected"`
	CorrectIndex *int     `json:"correctIndex,omitempty"`
	Explanation  string   `json:"explanation,omitempty"`
}

// QuizSnapshot is a point-in-time view of a QuizSession.
type QuizSnapshot struct {
	ArticleID    string         `json:"articleId"`
	State        QuizState      `json:"state"`
	Index        int            `json:"index"`
	Total        int            `json:"total"`
	Current      *QuestionView  `json:"current,omitempty"`
	HasSelection bool           `json:"hasSelection"`
	IsFirst      bool           `json:"isFirst"`
	IsLast       bool           `json:"isLast"`
	Progress     float64        `json:"progress"`
	Score        *int           `json:"score,omitempty"`
	Correct      int            `json:"correct,omitempty"`
	Results      []QuestionView `json:"results,omitempty"`
}

func (q *QuizSession) Snapshot() QuizSnapshot {
	q.mu.Lock()
	defer q.mu.Unlock()

	snap := QuizSnapshot{
		ArticleID: q.articleID,
		State:     q.state,
		Index:     q.index,
		Total:     len(q.questions),
		IsFirst:   q.index == 0,
		IsLast:    len(q.questions) > 0 && q.index == len(q.questions)-1,
		Progress:  q.progress(),
	}
	done := q.state == QuizCompleted
	if q.index < len(q.questions) {
		v := q.view(q.index, done)
		snap.Current = &v
		snap.HasSelection = q.selections[q.index] != Unanswered
	}
	if done {
		s := q.score
		snap.Score = &s
		snap.Correct = q.correct()
		for i := range q.questions {
			snap.Results = append(snap.Results, q.view(i, true))
		}
	}
	return snap
}

func (q *QuizSession) view(i int, reveal bool) QuestionView {
	qq := q.questions[i]
	v := QuestionView{
		ID:       qq.ID,
		Question: qq.Question,
		Options:  qq.Options,
		Selected: q.selections[i],
	}
	if reveal {
		c := qq.CorrectIndex
		v.CorrectIndex = &c
		v.Explanation = qq.Explanation
	}
	return v
}
