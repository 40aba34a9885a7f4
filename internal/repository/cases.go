package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/braindler/braindler-multimodal/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const casesCollection = "legal_cases"

type CasesRepository struct {
	mongoRepo *MongoRepository
}

func NewCasesRepository(mongoRepo *MongoRepository) *CasesRepository {
	return &CasesRepository{
		mongoRepo: mongoRepo,
	}
}

func (r *CasesRepository) EnsureIndexes(ctx context.Context) error {
	err := r.mongoRepo.CreateIndexes(ctx, casesCollection, []mongo.IndexModel{
		{Keys: bson.D{{Key: "caseId", Value: 1}}, Options: options.Index().SetUnique(true)},
	})
	if err != nil {
		return fmt.Errorf("failed to create case indexes: %w", err)
	}
	return nil
}

func (r *CasesRepository) InsertCase(ctx context.Context, legalCase *models.LegalCase) error {
	legalCase.CreatedAt = time.Now()

	err := r.mongoRepo.InsertOne(ctx, casesCollection, legalCase)
	if err != nil {
		return fmt.Errorf("failed to insert case: %w", err)
	}

	return nil
}

// GetCase returns nil, nil when the case does not exist.
func (r *CasesRepository) GetCase(ctx context.Context, caseID string) (*models.LegalCase, error) {
	filter := bson.M{"caseId": caseID}

	var legalCase models.LegalCase
	err := r.mongoRepo.FindOne(ctx, casesCollection, filter).Decode(&legalCase)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find case: %w", err)
	}

	return &legalCase, nil
}

func (r *CasesRepository) UpdateStatus(ctx context.Context, caseID string, step models.Step) error {
	filter := bson.M{"caseId": caseID}
	update := bson.M{"$set": bson.M{"status": step}}

	res, err := r.mongoRepo.UpdateOne(ctx, casesCollection, filter, update)
	if err != nil {
		return fmt.Errorf("failed to update case status: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("case %s not found", caseID)
	}

	return nil
}
