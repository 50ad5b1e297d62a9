package app

import (
	"context"
	"testing"

	"gokinet/adapters/memstore"
	"gokinet/domain/kinetics"
	"gokinet/internal/config"
	"gokinet/internal/errors"
	"gokinet/internal/testkit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService() *AnalysisService {
	return NewAnalysisService(memstore.New(), config.DefaultFittingConfig())
}

// TestAnalyzeTable_FullPipeline runs the synthetic reference dataset end
// to end and checks the fitted constants land near the true values
func TestAnalyzeTable_FullPipeline(t *testing.T) {
	service := newTestService()
	ctx := context.Background()

	genConfig := testkit.DefaultGeneratorConfig()
	table := testkit.NewGenerator(genConfig).Table()

	analysis, err := service.AnalyzeTable(ctx, table, "sample.xlsx")
	require.NoError(t, err)
	require.NotNil(t, analysis)

	assert.False(t, analysis.ID == "", "analysis should get an ID")
	assert.Equal(t, "sample.xlsx", analysis.SourceName)
	assert.Equal(t, len(genConfig.Times), analysis.Series.Len())
	assert.NotEmpty(t, analysis.SelectedIndices)
	assert.Equal(t, 0, analysis.SelectedIndices[0], "selection always keeps the first point")

	// 2% measurement noise keeps the recovered k1 close to the truth
	assert.InDelta(t, genConfig.RateK1, analysis.PFO.RateMagnitude(), 0.01)
	assert.Greater(t, analysis.PFO.R2, 0.95)
	assert.Equal(t, kinetics.ModelPFO, analysis.BetterModel(),
		"first-order data should fit PFO better")

	// The run must be retrievable from the store
	stored, err := service.Get(ctx, analysis.ID)
	require.NoError(t, err)
	assert.Equal(t, analysis.ID, stored.ID)

	// Summary statistics reflect the processed series
	assert.Equal(t, analysis.Series.Len(), analysis.Summary.PointCount)
	assert.Equal(t, 0.0, analysis.Summary.TimeMin)
	assert.Equal(t, 60.0, analysis.Summary.TimeMax)
	assert.Equal(t, genConfig.InitialConc, analysis.Summary.InitialConc)
}

// TestAnalyzeTable_ValidationFailure verifies pipeline errors surface
// with their codes intact
func TestAnalyzeTable_ValidationFailure(t *testing.T) {
	service := newTestService()

	table := testkit.NewGenerator(testkit.DefaultGeneratorConfig()).Table()
	table.Headers = []string{"unrelated"}

	_, err := service.AnalyzeTable(context.Background(), table, "broken.xlsx")
	require.Error(t, err)
	assert.Equal(t, errors.CodeValidationError, errors.GetCode(err))
}

// TestAnalyzePoints verifies manual entry including the A0 fallback
func TestAnalyzePoints(t *testing.T) {
	service := newTestService()
	ctx := context.Background()

	times := []float64{0, 5, 10, 20, 30}
	concs := []float64{100, 78, 61, 37, 22}

	// Explicit A0
	analysis, err := service.AnalyzePoints(ctx, "manual", times, concs, 100)
	require.NoError(t, err)
	assert.Equal(t, "manual", analysis.SourceName)
	assert.Equal(t, 100.0, analysis.Series.Points[0].InitialConc)

	// Zero A0 falls back to the first concentration
	analysis, err = service.AnalyzePoints(ctx, "", times, concs, 0)
	require.NoError(t, err)
	assert.Equal(t, "manual", analysis.SourceName)
	assert.Equal(t, concs[0], analysis.Series.Points[0].InitialConc)
}

// TestAnalyzePoints_InvalidInput verifies the shape checks
func TestAnalyzePoints_InvalidInput(t *testing.T) {
	service := newTestService()
	ctx := context.Background()

	_, err := service.AnalyzePoints(ctx, "manual", nil, nil, 0)
	require.Error(t, err)
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))

	_, err = service.AnalyzePoints(ctx, "manual", []float64{0, 5}, []float64{100}, 0)
	require.Error(t, err)
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
}

// TestListAndDelete verifies history management through the service
func TestListAndDelete(t *testing.T) {
	service := newTestService()
	ctx := context.Background()

	first, err := service.AnalyzePoints(ctx, "manual", []float64{0, 5, 10}, []float64{100, 78, 61}, 100)
	require.NoError(t, err)
	second, err := service.AnalyzePoints(ctx, "manual", []float64{0, 5, 10}, []float64{100, 80, 64}, 100)
	require.NoError(t, err)

	listed, err := service.List(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, listed, 2)

	require.NoError(t, service.Delete(ctx, first.ID))

	listed, err = service.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, second.ID, listed[0].ID)
}

// TestAnalyzeUpload_CSV verifies the upload path accepts raw CSV bytes
func TestAnalyzeUpload_CSV(t *testing.T) {
	service := newTestService()

	content := "time;conc;conc0\n0;100;100\n5;78;100\n10;61;100\n20;37;100\n"
	analysis, err := service.AnalyzeUpload(context.Background(), "run.csv", []byte(content), "")
	require.NoError(t, err)
	assert.Equal(t, "run.csv", analysis.SourceName)
	assert.Equal(t, 4, analysis.Series.Len())
}
