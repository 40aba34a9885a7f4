package repository

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mongoInfra "github.com/braindler/braindler-multimodal/internal/infra/mongo"
	"github.com/braindler/braindler-multimodal/internal/models"
)

// newTestRepo connects to COPYDETECT_TEST_MONGO_URI and uses a throwaway
// database dropped at the end of the test.
func newTestRepo(t *testing.T) *MongoRepository {
	t.Helper()
	uri := os.Getenv("COPYDETECT_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("COPYDETECT_TEST_MONGO_URI not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongoInfra.NewClient(ctx, uri, "copydetect_test_"+uuid.New().String()[:8])
	require.NoError(t, err)
	t.Cleanup(func() {
		ctx := context.Background()
		_ = client.Database.Drop(ctx)
		client.Close(ctx)
	})
	return NewMongoRepository(client)
}

func TestCasesRepository(t *testing.T) {
	repo := NewCasesRepository(newTestRepo(t))
	ctx := context.Background()
	require.NoError(t, repo.EnsureIndexes(ctx))

	legalCase := &models.LegalCase{
		ID:   "case-1",
		Name: "State v. Doe",
		Prosecutor: models.DocumentGroup{Name: "prosecutor", Documents: []models.Document{
			{ID: "indictment", Pages: map[int]string{1: "first page", 2: "second page"}},
		}},
		Status: models.StepQueued,
	}
	require.NoError(t, repo.InsertCase(ctx, legalCase))
	assert.False(t, legalCase.CreatedAt.IsZero())

	got, err := repo.GetCase(ctx, "case-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "State v. Doe", got.Name)
	assert.Equal(t, legalCase.Prosecutor.Merge(), got.Prosecutor.Merge())

	require.NoError(t, repo.UpdateStatus(ctx, "case-1", models.StepCompleted))
	got, err = repo.GetCase(ctx, "case-1")
	require.NoError(t, err)
	assert.Equal(t, models.StepCompleted, got.Status)

	assert.Error(t, repo.InsertCase(ctx, &models.LegalCase{ID: "case-1"}), "case ids are unique")
	assert.Error(t, repo.UpdateStatus(ctx, "missing", models.StepFailed))

	missing, err := repo.GetCase(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestReportsRepositoryLatest(t *testing.T) {
	repo := NewReportsRepository(newTestRepo(t))
	ctx := context.Background()
	require.NoError(t, repo.EnsureIndexes(ctx))

	none, err := repo.GetLatestReport(ctx, "case-1")
	require.NoError(t, err)
	assert.Nil(t, none)

	require.NoError(t, repo.InsertReport(ctx, &models.CaseReport{CaseID: "case-1", Status: "failed", Error: "timeout"}))
	time.Sleep(5 * time.Millisecond)
	require.NoError(t, repo.InsertReport(ctx, &models.CaseReport{
		CaseID: "case-1",
		Status: "completed",
		Result: &models.DuplicationResult{
			OverallSimilarity: 72.5,
			Verdict:           models.Verdict{Category: models.CategorySerious},
		},
	}))

	latest, err := repo.GetLatestReport(ctx, "case-1")
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, "completed", latest.Status)
	require.NotNil(t, latest.Result)
	assert.Equal(t, 72.5, latest.Result.OverallSimilarity)
	assert.Equal(t, models.CategorySerious, latest.Result.Verdict.Category)
}
