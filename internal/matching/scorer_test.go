package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/TheeNate/JobPilot/internal/model"
)

func tech(certs ...string) model.Technician {
	return model.Technician{ID: "t1", Name: "Test Tech", Certifications: certs}
}

func TestScore_NoJobType(t *testing.T) {
	assert.Equal(t, 50, Score(tech("UT Level II"), ""))
	assert.Equal(t, 50, Score(tech(), "   "))
}

func TestScore_SingleTopTierCert(t *testing.T) {
	// base 35 + top tier 35 = 70
	assert.Equal(t, 70, Score(tech("UT Level II"), "UT"))
}

func TestScore_NoCertifications(t *testing.T) {
	assert.Equal(t, 35, Score(tech(), "UT Inspection"))
}

func TestScore_TierBonuses(t *testing.T) {
	tests := []struct {
		name string
		cert string
		want int
	}{
		{"level three", "UT Level III", 70},
		{"level two", "UT Level II", 70},
		{"level one", "UT Level I", 55},
		{"bare mention", "UT", 45},
		{"bare mention with words", "UT Inspection", 45},
		{"bare mention certified", "UT Certified", 45},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Score(tech(tt.cert), "UT"))
		})
	}
}

func TestScore_DisciplineBonusDoesNotStack(t *testing.T) {
	// Two UT certs only count the best one: base 35 + 35 + breadth 4 = 74.
	assert.Equal(t, 74, Score(tech("UT Level II", "UT Level I"), "UT"))
}

func TestScore_MultipleDisciplines(t *testing.T) {
	// base 35 + UT top 35 + MT entry 20 + breadth 4 = 94
	assert.Equal(t, 94, Score(tech("UT Level III", "MT Level I"), "UT MT Inspection"))
}

func TestScore_GeneralExperienceBonus(t *testing.T) {
	// base 35 + generic 10 + ndt general 5 + breadth 4 = 54
	assert.Equal(t, 54, Score(tech("UT", "NDT Trainee"), "UT"))
}

func TestScore_SafetyAndIndustryBonuses(t *testing.T) {
	// base 35 + top 35 + breadth 7 + safety 5 + industry 5 = 87
	got := Score(tech("UT Level II", "OSHA 30", "API 510"), "Ultrasonic Inspection")
	assert.Equal(t, 87, got)
}

func TestScore_ClampedAt100(t *testing.T) {
	got := Score(
		tech("UT Level III", "RT Level III", "MT Level III", "PT Level III", "OSHA 30", "API 510", "ASNT NDT Level III"),
		"UT RT MT PT Inspection",
	)
	assert.Equal(t, 100, got)
}

func TestScore_Bounds(t *testing.T) {
	techs := []model.Technician{
		tech(),
		tech("UT"),
		tech("UT Level III", "RT Level III", "MT Level III", "PT Level III", "VT Level III", "OSHA", "API"),
	}
	jobTypes := []string{"", "UT", "UT RT MT PT VT", "Routine Maintenance"}

	for _, tc := range techs {
		for _, jt := range jobTypes {
			got := Score(tc, jt)
			assert.GreaterOrEqual(t, got, 0)
			assert.LessOrEqual(t, got, 100)
		}
	}
}

func TestScore_TokenMatchingDoesNotFalsePositive(t *testing.T) {
	// "ROUTINE" contains the letters UT but is not a UT certification.
	assert.Equal(t, 35, Score(tech("Routine Maintenance Training"), "UT"))
}

func TestScore_Deterministic(t *testing.T) {
	tc := tech("UT Level II", "OSHA 10")
	first := Score(tc, "UT Inspection")
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Score(tc, "UT Inspection"))
	}
}

func TestRequestedDisciplines(t *testing.T) {
	assert.Equal(t, []string{"UT"}, requestedDisciplines("UT Inspection"))
	assert.Equal(t, []string{"UT", "MT"}, requestedDisciplines("ut and mt survey"))
	assert.Equal(t, []string{"UT"}, requestedDisciplines("Ultrasonic (UT) thickness"))
	assert.Empty(t, requestedDisciplines("General Maintenance"))
}
