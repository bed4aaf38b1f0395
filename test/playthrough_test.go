package test

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/outpost31/simulator/internal/story"
)

func TestDefaultScenariosPass(t *testing.T) {
	suite, err := NewSuite(io.Discard)
	require.NoError(t, err)

	suite.Run(context.Background(), Scenarios())

	results := suite.GetResults()
	require.Len(t, results, len(Scenarios()))
	for _, r := range results {
		assert.True(t, r.Passed, "%s: %s", r.ScenarioName, r.Reason)
	}
}

func TestWrongExpectationFails(t *testing.T) {
	suite, err := NewSuite(io.Discard)
	require.NoError(t, err)

	suite.Run(context.Background(), []Scenario{{
		Name:         "Expecting a win without evidence",
		Steps:        []int{0, Last, 0},
		ExpectedNode: story.NodeEndingSuccess,
	}})

	r := suite.GetResults()[0]
	assert.False(t, r.Passed)
	assert.Equal(t, story.NodeEndingFailure, r.ActualNode)
	assert.Equal(t, 3, r.Steps)
}
