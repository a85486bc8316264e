package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vmm-exam-service/internal/catalog"
	"vmm-exam-service/internal/config"
	"vmm-exam-service/internal/domain"
)

func TestPracticeGradeRequiresEveryAnswer(t *testing.T) {
	svc := NewPracticeService(catalog.PracticeBank(), newPolicy(t, config.Default().Scoring.Practice, &scriptedRand{}))

	_, err := svc.Grade(domain.AnswerSet{1: "c", 2: "d"})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Fields, 3)
	assert.Contains(t, verr.Fields, "5")

	_, err = svc.Grade(domain.AnswerSet{1: "c", 2: "d", 3: "a", 4: "a", 5: "z"})
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields["5"], "unknown option")
}

func TestPracticeGradeReport(t *testing.T) {
	// 0.8 falls on the high side of the practice fail probability, 70+15
	rnd := &scriptedRand{floats: []float64{0.8, 0.5}, ints: []int{15}}
	svc := NewPracticeService(catalog.PracticeBank(), newPolicy(t, config.Default().Scoring.Practice, rnd))

	report, err := svc.Grade(domain.AnswerSet{1: "c", 2: "d", 3: "a", 4: "a", 5: "a"})
	require.NoError(t, err)

	assert.Equal(t, 85, report.Score)
	assert.Equal(t, catalog.Placement(85), report.Placement)
	require.Len(t, report.Feedback, 5)
	assert.Equal(t, 1, report.Feedback[0].QuestionID)
	assert.Equal(t, "Perfect! Customer service champion!", report.Feedback[0].Remark)
	for _, fb := range report.Feedback {
		assert.NotEqual(t, catalog.NoAnswerRemark, fb.Remark, "question %d", fb.QuestionID)
	}
}

func TestFeedbackBankDefaultsToNoAnswer(t *testing.T) {
	fb := FeedbackFromBank(catalog.PracticeBank())

	assert.Equal(t, "Smart business decision!", fb.Remark(3, "a"))
	assert.Equal(t, catalog.NoAnswerRemark, fb.Remark(3, ""))
	assert.Equal(t, catalog.NoAnswerRemark, fb.Remark(42, "a"))
	assert.Equal(t, catalog.NoAnswerRemark, FeedbackBank{}.Remark(1, "a"))
}
