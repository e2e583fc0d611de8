package crewforge_test

import (
	"errors"
	"testing"

	"github.com/m-mizutani/crewforge"
	"github.com/m-mizutani/gt"
)

func TestAnalysisResultValidate(t *testing.T) {
	valid := validAnalysis()
	gt.NoError(t, valid.Validate())

	lowComplexity := *valid
	lowComplexity.Complexity = 0
	gt.True(t, errors.Is(lowComplexity.Validate(), crewforge.ErrInvalidResult))

	highComplexity := *valid
	highComplexity.Complexity = 11
	gt.Error(t, highComplexity.Validate())

	badProcess := *valid
	badProcess.RecommendedProcessType = "parallel"
	gt.True(t, errors.Is(badProcess.Validate(), crewforge.ErrInvalidResult))
}

func TestPlanningResultValidate(t *testing.T) {
	valid := validPlanning()
	gt.NoError(t, valid.Validate())

	badAlgorithm := *valid
	badAlgorithm.SelectedAlgorithm = "monte-carlo"
	gt.True(t, errors.Is(badAlgorithm.Validate(), crewforge.ErrInvalidResult))

	badScore := *valid
	badScore.VerificationScore = 10.5
	gt.Error(t, badScore.Validate())
}

func TestImplementationResultValidate(t *testing.T) {
	valid := validImplementation("worker")
	gt.NoError(t, valid.Validate())

	noAgents := *valid
	noAgents.Agents = nil
	gt.True(t, errors.Is(noAgents.Validate(), crewforge.ErrInvalidResult))

	noTasks := *valid
	noTasks.Tasks = nil
	gt.True(t, errors.Is(noTasks.Validate(), crewforge.ErrInvalidResult))

	badWorkflow := *valid
	badWorkflow.Workflow.ProcessType = ""
	gt.Error(t, badWorkflow.Validate())
}

func TestEvaluationResultValidate(t *testing.T) {
	gt.NoError(t, evalResult(0, nil, nil).Validate())
	gt.NoError(t, evalResult(10, nil, nil).Validate())
	gt.Error(t, evalResult(-0.1, nil, nil).Validate())
	gt.Error(t, evalResult(10.1, nil, nil).Validate())
}

func TestPlanningAlgorithmValidate(t *testing.T) {
	for _, algorithm := range []crewforge.PlanningAlgorithm{
		crewforge.AlgorithmBestOfN,
		crewforge.AlgorithmTreeOfThoughts,
		crewforge.AlgorithmRebase,
	} {
		gt.NoError(t, algorithm.Validate())
	}
	gt.Error(t, crewforge.PlanningAlgorithm("beam-search").Validate())
}
