package results

import (
	"github.com/moznion/go-optional"
	"github.com/stratbench-lab/stratbench/internal/optimizer"
	"github.com/stratbench-lab/stratbench/internal/strategy"
)

func sampleSweep() optimizer.Result {
	candidates := []optimizer.Candidate{
		{
			Index:        0,
			Parameters:   strategy.ParameterSet{"fast": 5, "slow": 30},
			TrainScore:   optional.Some(1.4),
			TestScore:    optional.Some(1.1),
			OverfitRatio: optional.Some(1.4 / 1.1),
			Rank:         1,
		},
		{
			Index:        1,
			Parameters:   strategy.ParameterSet{"fast": 10, "slow": 30},
			TrainScore:   optional.Some(0.9),
			TestScore:    optional.Some(0.7),
			OverfitRatio: optional.Some(0.9 / 0.7),
			Rank:         2,
		},
		{
			Index:      2,
			Parameters: strategy.ParameterSet{"fast": 40, "slow": 30},
			Failure:    "fast period must be below slow period",
		},
	}

	return optimizer.Result{
		ScoreMetric:    "sharpe_ratio",
		Candidates:     candidates,
		Best:           candidates[0],
		Splits:         3,
		Failed:         1,
		BestTestScore:  1.1,
		WorstTestScore: 0.7,
		MeanTestScore:  0.9,
	}
}

func (suite *StoreTestSuite) TestSaveAndListSweeps() {
	sweepID, err := suite.store.SaveSweep("AAPL", "sma_crossover", sampleSweep())
	suite.Require().NoError(err)
	suite.NotEmpty(sweepID)

	sweeps, err := suite.store.ListSweeps()
	suite.Require().NoError(err)
	suite.Require().Len(sweeps, 1)

	suite.Equal(sweepID, sweeps[0].ID)
	suite.Equal("AAPL", sweeps[0].Symbol)
	suite.Equal("sma_crossover", sweeps[0].Strategy)
	suite.Equal("sharpe_ratio", sweeps[0].ScoreMetric)
	suite.Equal(3, sweeps[0].Splits)
	suite.Equal(1, sweeps[0].Failed)
	suite.Equal(0, sweeps[0].BestIndex)
	suite.False(sweeps[0].CreatedAt.IsZero())
}

func (suite *StoreTestSuite) TestCandidateRoundTrip() {
	original := sampleSweep()

	sweepID, err := suite.store.SaveSweep("SPY", "sma_crossover", original)
	suite.Require().NoError(err)

	candidates, err := suite.store.GetCandidates(sweepID)
	suite.Require().NoError(err)
	suite.Require().Len(candidates, 3)

	for i, candidate := range candidates {
		want := original.Candidates[i]
		suite.Equal(want.Index, candidate.Index)
		suite.Equal(want.Parameters, candidate.Parameters)
		suite.Equal(want.Rank, candidate.Rank)
		suite.Equal(want.Failure, candidate.Failure)
	}

	suite.InDelta(1.4, candidates[0].TrainScore.Unwrap(), 1e-9)
	suite.InDelta(1.1, candidates[0].TestScore.Unwrap(), 1e-9)
}

func (suite *StoreTestSuite) TestFailedCandidatePersistsWithoutScores() {
	sweepID, err := suite.store.SaveSweep("SPY", "sma_crossover", sampleSweep())
	suite.Require().NoError(err)

	candidates, err := suite.store.GetCandidates(sweepID)
	suite.Require().NoError(err)

	failed := candidates[2]
	suite.True(failed.Failed())
	suite.True(failed.TrainScore.IsNone())
	suite.True(failed.TestScore.IsNone())
	suite.True(failed.OverfitRatio.IsNone())
}

func (suite *StoreTestSuite) TestGetCandidatesUnknownSweep() {
	candidates, err := suite.store.GetCandidates("no-such-sweep")
	suite.Require().NoError(err)
	suite.Empty(candidates)
}
