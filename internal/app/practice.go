package app

import (
	"fmt"
	"strconv"

	"vmm-exam-service/internal/catalog"
	"vmm-exam-service/internal/domain"
)

// PracticeService grades the untimed mock test. Reports are not persisted.
type PracticeService struct {
	bank     domain.QuestionBank
	feedback FeedbackBank
	policy   Evaluator
}

func NewPracticeService(bank domain.QuestionBank, policy Evaluator) *PracticeService {
	return &PracticeService{bank: bank, feedback: FeedbackFromBank(bank), policy: policy}
}

func (s *PracticeService) Bank() domain.QuestionBank {
	return s.bank
}

// Grade requires an answer for every practice question.
func (s *PracticeService) Grade(answers domain.AnswerSet) (domain.PracticeReport, error) {
	verr := &domain.ValidationError{Fields: map[string]string{}}
	for _, id := range answers.Unanswered(s.bank) {
		verr.Fields[strconv.Itoa(id)] = "is required"
	}
	for id, choice := range answers {
		q, ok := s.bank.Lookup(id)
		if !ok {
			verr.Fields[strconv.Itoa(id)] = "unknown question"
		} else if !q.HasOption(choice) {
			verr.Fields[strconv.Itoa(id)] = fmt.Sprintf("unknown option %q", choice)
		}
	}
	if len(verr.Fields) > 0 {
		return domain.PracticeReport{}, verr
	}

	outcome, err := s.policy.Evaluate(Attempt{
		Answers:   answers.Clone(),
		Questions: s.bank.Len(),
		Correct:   answers.Correct(s.bank),
		Reason:    SubmitManual,
	})
	if err != nil {
		return domain.PracticeReport{}, fmt.Errorf("grade practice: %w", err)
	}

	report := domain.PracticeReport{
		Score:     outcome.Score,
		Placement: catalog.Placement(outcome.Score),
		Feedback:  make([]domain.PracticeFeedback, 0, s.bank.Len()),
	}
	for _, q := range s.bank.Questions {
		report.Feedback = append(report.Feedback, domain.PracticeFeedback{
			QuestionID: q.ID,
			Prompt:     q.Prompt,
			Choice:     answers[q.ID],
			Remark:     s.feedback.Remark(q.ID, answers[q.ID]),
		})
	}
	return report, nil
}
