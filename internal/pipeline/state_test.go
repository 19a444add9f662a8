package pipeline

import (
	"testing"

	"github.com/DusanPaal/claim-management/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestValidateTransitionAllowsGraphEdges(t *testing.T) {
	assert.NoError(t, ValidateTransition(domain.StatusRegistrationSuccess, domain.StatusExtracted))
	assert.NoError(t, ValidateTransition(domain.StatusExtracted, domain.StatusCompleted))
	assert.NoError(t, ValidateTransition(domain.StatusCompleted, domain.StatusMailCompletedMoved))
	assert.NoError(t, ValidateTransition(domain.StatusCompleted, domain.StatusArchived))
}

func TestValidateTransitionRejectsSkippedEdges(t *testing.T) {
	err := ValidateTransition(domain.StatusRegistrationSuccess, domain.StatusCompleted)
	assert.Error(t, err)
}

func TestValidateTransitionAllowsReplay(t *testing.T) {
	assert.NoError(t, ValidateTransition(domain.StatusCompleted, domain.StatusCompleted))
}

func TestStageOfRoutesStatuses(t *testing.T) {
	assert.Equal(t, StageExtract, StageOf(domain.StatusExtracted))
	assert.Equal(t, StageCreate, StageOf(domain.StatusCompleted))
	assert.Equal(t, StageDispatch, StageOf(domain.StatusMailDuplicateMoved))
	assert.Equal(t, StageArchive, StageOf(domain.StatusArchived))
	assert.Equal(t, Stage(""), StageOf(domain.StatusRegistrationSuccess))
}
