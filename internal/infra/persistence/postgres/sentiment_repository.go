package postgres

import (
	"context"
	"encoding/json"

	"pulse/internal/domain/entity"
	domainerrors "pulse/internal/domain/errors"
	"pulse/internal/domain/repository"
	"pulse/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// sentimentRepository implements the repository.SentimentRepository interface using GORM.
type sentimentRepository struct {
	db *gorm.DB
}

// NewSentimentRepository is the constructor for sentimentRepository.
func NewSentimentRepository(db *gorm.DB) repository.SentimentRepository {
	return &sentimentRepository{
		db: db,
	}
}

// Replace stores the result and its derived tags for a review, removing any
// prior result and tags first. Callers that need atomicity run this inside
// TransactionManager.Execute; the deletes and inserts then share one
// transaction.
func (repo *sentimentRepository) Replace(ctx context.Context, result *entity.SentimentResult, tags []*entity.ReviewTag) error {
	resultM, err := fromSentimentDomain(result)
	if err != nil {
		return errors.Wrap(err, "failed to encode sentiment result")
	}

	db := repo.db.WithContext(ctx)

	if err := db.Where("review_id = ?", result.ReviewID).Delete(&model.SentimentResultModel{}).Error; err != nil {
		return domainerrors.NewDatabaseExecuteError(err, "failed to delete prior sentiment result")
	}
	if err := db.Where("review_id = ?", result.ReviewID).Delete(&model.ReviewTagModel{}).Error; err != nil {
		return domainerrors.NewDatabaseExecuteError(err, "failed to delete prior review tags")
	}

	if err := db.Create(resultM).Error; err != nil {
		if isForeignKeyConstraintViolation(err) {
			return repository.ErrReviewNotFound
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create sentiment result")
	}

	result.ID = resultM.ID
	result.CreatedAt = resultM.CreatedAt

	if len(tags) == 0 {
		return nil
	}

	tagModels := make([]*model.ReviewTagModel, 0, len(tags))
	for _, tag := range tags {
		tagModels = append(tagModels, fromReviewTagDomain(tag))
	}

	if err := db.CreateInBatches(tagModels, 100).Error; err != nil {
		return domainerrors.NewDatabaseExecuteError(err, "failed to create review tags")
	}

	for i, tagM := range tagModels {
		tags[i].ID = tagM.ID
		tags[i].CreatedAt = tagM.CreatedAt
	}

	return nil
}

// FindByReviewID retrieves the sentiment result owned by a review.
func (repo *sentimentRepository) FindByReviewID(ctx context.Context, reviewID uuid.UUID) (*entity.SentimentResult, error) {
	var resultM model.SentimentResultModel

	if err := repo.db.WithContext(ctx).
		Where("review_id = ?", reviewID).
		First(&resultM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrSentimentNotFound
		}

		return nil, errors.Wrap(err, "failed to find sentiment result by review id")
	}

	return toSentimentDomain(&resultM)
}

// FindTagsByReviewID retrieves the tags attached to a review.
func (repo *sentimentRepository) FindTagsByReviewID(ctx context.Context, reviewID uuid.UUID) ([]*entity.ReviewTag, error) {
	var tagModels []*model.ReviewTagModel

	if err := repo.db.WithContext(ctx).
		Where("review_id = ?", reviewID).
		Order("created_at ASC").
		Find(&tagModels).Error; err != nil {
		return nil, errors.Wrap(err, "failed to find review tags")
	}

	tags := make([]*entity.ReviewTag, 0, len(tagModels))
	for _, tagM := range tagModels {
		tags = append(tags, toReviewTagDomain(tagM))
	}

	return tags, nil
}

// --- Mapper Functions ---

// toSentimentDomain converts a GORM SentimentResultModel to a domain SentimentResult entity.
func toSentimentDomain(data *model.SentimentResultModel) (*entity.SentimentResult, error) {
	if data == nil {
		return nil, nil
	}

	var topics, keyPhrases []string
	var metadata map[string]string

	if len(data.Topics) > 0 {
		if err := json.Unmarshal(data.Topics, &topics); err != nil {
			return nil, errors.Wrap(err, "failed to decode sentiment topics")
		}
	}
	if len(data.KeyPhrases) > 0 {
		if err := json.Unmarshal(data.KeyPhrases, &keyPhrases); err != nil {
			return nil, errors.Wrap(err, "failed to decode sentiment key phrases")
		}
	}
	if len(data.Metadata) > 0 {
		if err := json.Unmarshal(data.Metadata, &metadata); err != nil {
			return nil, errors.Wrap(err, "failed to decode sentiment metadata")
		}
	}

	return &entity.SentimentResult{
		ID:         data.ID,
		ReviewID:   data.ReviewID,
		Label:      entity.SentimentLabel(data.Label),
		Score:      data.Score,
		Confidence: data.Confidence,
		Topics:     topics,
		KeyPhrases: keyPhrases,
		Metadata:   metadata,
		CreatedAt:  data.CreatedAt,
	}, nil
}

// fromSentimentDomain converts a domain SentimentResult entity to a GORM SentimentResultModel.
func fromSentimentDomain(data *entity.SentimentResult) (*model.SentimentResultModel, error) {
	if data == nil {
		return nil, nil
	}

	topics, err := json.Marshal(data.Topics)
	if err != nil {
		return nil, err
	}
	keyPhrases, err := json.Marshal(data.KeyPhrases)
	if err != nil {
		return nil, err
	}
	metadata, err := json.Marshal(data.Metadata)
	if err != nil {
		return nil, err
	}

	return &model.SentimentResultModel{
		ID:         data.ID,
		ReviewID:   data.ReviewID,
		Label:      string(data.Label),
		Score:      data.Score,
		Confidence: data.Confidence,
		Topics:     datatypes.JSON(topics),
		KeyPhrases: datatypes.JSON(keyPhrases),
		Metadata:   datatypes.JSON(metadata),
	}, nil
}

// toReviewTagDomain converts a GORM ReviewTagModel to a domain ReviewTag entity.
func toReviewTagDomain(data *model.ReviewTagModel) *entity.ReviewTag {
	if data == nil {
		return nil
	}

	return &entity.ReviewTag{
		ID:         data.ID,
		ReviewID:   data.ReviewID,
		Name:       data.Name,
		Category:   entity.TagCategory(data.Category),
		Confidence: data.Confidence,
		CreatedAt:  data.CreatedAt,
	}
}

// fromReviewTagDomain converts a domain ReviewTag entity to a GORM ReviewTagModel.
func fromReviewTagDomain(data *entity.ReviewTag) *model.ReviewTagModel {
	if data == nil {
		return nil
	}

	return &model.ReviewTagModel{
		ID:         data.ID,
		ReviewID:   data.ReviewID,
		Name:       data.Name,
		Category:   string(data.Category),
		Confidence: data.Confidence,
	}
}
