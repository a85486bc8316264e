package domain

import "time"

// Option is one selectable answer of a question.
type Option struct {
	ID       string `json:"id"`
	Text     string `json:"text"`
	Feedback string `json:"feedback,omitempty"`
}

// Question models an MCQ question. CorrectOption is empty when the bank carries no key.
type Question struct {
	ID            int      `json:"id"`
	Prompt        string   `json:"prompt"`
	Options       []Option `json:"options"`
	CorrectOption string   `json:"correctOption,omitempty"`
}

// HasOption reports whether optionID belongs to the question.
func (q Question) HasOption(optionID string) bool {
	for _, opt := range q.Options {
		if opt.ID == optionID {
			return true
		}
	}
	return false
}

// QuestionBank is an ordered, immutable collection of questions.
type QuestionBank struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Questions []Question `json:"questions"`
}

// Lookup returns the question with the given id.
func (b QuestionBank) Lookup(id int) (Question, bool) {
	for _, q := range b.Questions {
		if q.ID == id {
			return q, true
		}
	}
	return Question{}, false
}

// Len returns the number of questions in the bank.
func (b QuestionBank) Len() int {
	return len(b.Questions)
}

// Public strips the answer key so the bank can be shown to candidates.
func (b QuestionBank) Public() QuestionBank {
	out := QuestionBank{ID: b.ID, Title: b.Title, Questions: make([]Question, len(b.Questions))}
	for i, q := range b.Questions {
		opts := make([]Option, len(q.Options))
		for j, o := range q.Options {
			opts[j] = Option{ID: o.ID, Text: o.Text}
		}
		out.Questions[i] = Question{ID: q.ID, Prompt: q.Prompt, Options: opts}
	}
	return out
}

// Candidate holds registration input. Identifier is assigned at submission.
type Candidate struct {
	Name       string `json:"name" validate:"required"`
	City       string `json:"city" validate:"required"`
	Phone      string `json:"phone" validate:"required,len=10,number"`
	Email      string `json:"email" validate:"required,loose_email"`
	Branch     string `json:"branch" validate:"required,branch"`
	Identifier string `json:"identifier,omitempty" validate:"-"`
}

// AnswerSet maps question id to the chosen option id.
type AnswerSet map[int]string

// Clone returns an independent copy of the set.
func (a AnswerSet) Clone() AnswerSet {
	out := make(AnswerSet, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// Unanswered lists the bank question ids missing from the set, in bank order.
func (a AnswerSet) Unanswered(bank QuestionBank) []int {
	var missing []int
	for _, q := range bank.Questions {
		if _, ok := a[q.ID]; !ok {
			missing = append(missing, q.ID)
		}
	}
	return missing
}

// Correct counts answers matching the bank's answer key.
func (a AnswerSet) Correct(bank QuestionBank) int {
	n := 0
	for _, q := range bank.Questions {
		if q.CorrectOption != "" && a[q.ID] == q.CorrectOption {
			n++
		}
	}
	return n
}

// Status is the three-way outcome classification.
type Status string

const (
	StatusSelected   Status = "Selected"
	StatusWaitlisted Status = "Waitlisted"
	StatusRejected   Status = "Rejected"
)

// Result is the persisted single-candidate outcome record.
type Result struct {
	Name       string    `json:"name"`
	Identifier string    `json:"identifier"`
	Score      int       `json:"score"`
	Branch     string    `json:"branch"`
	Timestamp  time.Time `json:"timestamp"`
	Status     Status    `json:"status"`
	IsTopper   bool      `json:"isTopper"`
	Answers    AnswerSet `json:"answers,omitempty"`
}

// ResultView is a Result decorated with display-only remarks.
type ResultView struct {
	Result
	Remark             string `json:"remark"`
	AdditionalFeedback string `json:"additionalFeedback,omitempty"`
}

// LeaderboardEntry is one ranked topper.
type LeaderboardEntry struct {
	Name       string  `json:"name"`
	City       string  `json:"city"`
	Identifier string  `json:"identifier"`
	Score      float64 `json:"score"`
	Award      string  `json:"award"`
	Role       string  `json:"position"`
}

// RankedEntry pairs an entry with its 1-based rank.
type RankedEntry struct {
	Rank int `json:"rank"`
	LeaderboardEntry
}

// Leaderboard captures the ordered topper list.
type Leaderboard struct {
	Entries   []RankedEntry `json:"entries"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

// RankEntries assigns rank = index + 1 to already ordered entries.
func RankEntries(entries []LeaderboardEntry) []RankedEntry {
	out := make([]RankedEntry, len(entries))
	for i, e := range entries {
		out[i] = RankedEntry{Rank: i + 1, LeaderboardEntry: e}
	}
	return out
}

// PracticeFeedback is the remark for one practice question.
type PracticeFeedback struct {
	QuestionID int    `json:"questionId"`
	Prompt     string `json:"prompt"`
	Choice     string `json:"choice"`
	Remark     string `json:"remark"`
}

// PracticeReport is the outcome of a practice attempt.
type PracticeReport struct {
	Score     int                `json:"score"`
	Placement string             `json:"placement"`
	Feedback  []PracticeFeedback `json:"feedback"`
}
