package app

import (
	"vmm-exam-service/internal/catalog"
	"vmm-exam-service/internal/domain"
)

// FeedbackKey addresses one canned remark.
type FeedbackKey struct {
	QuestionID int
	OptionID   string
}

// FeedbackBank is a lookup table of per-answer remarks.
type FeedbackBank map[FeedbackKey]string

// FeedbackFromBank collects option feedback carried by a question bank.
func FeedbackFromBank(bank domain.QuestionBank) FeedbackBank {
	fb := make(FeedbackBank)
	for _, q := range bank.Questions {
		for _, opt := range q.Options {
			if opt.Feedback != "" {
				fb[FeedbackKey{QuestionID: q.ID, OptionID: opt.ID}] = opt.Feedback
			}
		}
	}
	return fb
}

// Remark returns the remark for an answer, or the no-answer remark.
func (f FeedbackBank) Remark(questionID int, optionID string) string {
	if remark, ok := f[FeedbackKey{QuestionID: questionID, OptionID: optionID}]; ok {
		return remark
	}
	return catalog.NoAnswerRemark
}

// Decorate attaches display remarks to a result. The result itself is untouched.
func Decorate(r domain.Result, rnd Rand) domain.ResultView {
	view := domain.ResultView{Result: r, Remark: catalog.DefaultRemark}
	if remarks := catalog.StatusRemarks[r.Status]; len(remarks) > 0 {
		view.Remark = remarks[rnd.Intn(len(remarks))]
	}
	if r.Status == domain.StatusRejected {
		view.AdditionalFeedback = catalog.RejectionFeedback[rnd.Intn(len(catalog.RejectionFeedback))]
	}
	return view
}
