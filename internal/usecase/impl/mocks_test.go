package impl

import (
	"context"
	"io"
	"log/slog"
	"time"

	"pulse/internal/domain/entity"
	"pulse/internal/domain/repository"
	"pulse/internal/domain/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// Hand-written testify doubles for the repository and service interfaces the
// usecase layer depends on.

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fixedClock pins the pipeline's notion of now for deterministic assertions.
type fixedClock struct {
	now time.Time
}

func (c *fixedClock) Now() time.Time { return c.now }

type mockUserRepository struct {
	mock.Mock
}

func (m *mockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *mockUserRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *mockUserRepository) Create(ctx context.Context, user *entity.User) error {
	args := m.Called(ctx, user)

	return args.Error(0)
}

func (m *mockUserRepository) Update(ctx context.Context, user *entity.User) error {
	args := m.Called(ctx, user)

	return args.Error(0)
}

type mockBusinessRepository struct {
	mock.Mock
}

func (m *mockBusinessRepository) Create(ctx context.Context, business *entity.Business) error {
	args := m.Called(ctx, business)

	return args.Error(0)
}

func (m *mockBusinessRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Business, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*entity.Business), args.Error(1)
}

func (m *mockBusinessRepository) FindByUser(ctx context.Context, userID uuid.UUID) ([]*entity.Business, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]*entity.Business), args.Error(1)
}

func (m *mockBusinessRepository) Update(ctx context.Context, business *entity.Business) error {
	args := m.Called(ctx, business)

	return args.Error(0)
}

func (m *mockBusinessRepository) CreateListing(ctx context.Context, listing *entity.BusinessListing) error {
	args := m.Called(ctx, listing)

	return args.Error(0)
}

func (m *mockBusinessRepository) FindListing(ctx context.Context, businessID uuid.UUID, platform entity.Platform) (*entity.BusinessListing, error) {
	args := m.Called(ctx, businessID, platform)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*entity.BusinessListing), args.Error(1)
}

func (m *mockBusinessRepository) FindMonitoredListings(ctx context.Context) ([]*entity.BusinessListing, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]*entity.BusinessListing), args.Error(1)
}

func (m *mockBusinessRepository) MarkListingFetched(ctx context.Context, listingID uuid.UUID, fetchedAt time.Time) error {
	args := m.Called(ctx, listingID, fetchedAt)

	return args.Error(0)
}

type mockReviewRepository struct {
	mock.Mock
}

func (m *mockReviewRepository) Create(ctx context.Context, review *entity.Review) error {
	args := m.Called(ctx, review)

	return args.Error(0)
}

func (m *mockReviewRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Review, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*entity.Review), args.Error(1)
}

func (m *mockReviewRepository) FindByBusiness(ctx context.Context, businessID uuid.UUID, limit, offset int) ([]*entity.Review, error) {
	args := m.Called(ctx, businessID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]*entity.Review), args.Error(1)
}

func (m *mockReviewRepository) ClaimForProcessing(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)

	return args.Bool(0), args.Error(1)
}

func (m *mockReviewRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status entity.ReviewStatus, errorMessage string) error {
	args := m.Called(ctx, id, status, errorMessage)

	return args.Error(0)
}

func (m *mockReviewRepository) SummarizeForUser(ctx context.Context, userID uuid.UUID, since time.Time) (*repository.ReviewSummary, error) {
	args := m.Called(ctx, userID, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*repository.ReviewSummary), args.Error(1)
}

type mockSentimentRepository struct {
	mock.Mock
}

func (m *mockSentimentRepository) Replace(ctx context.Context, result *entity.SentimentResult, tags []*entity.ReviewTag) error {
	args := m.Called(ctx, result, tags)

	return args.Error(0)
}

func (m *mockSentimentRepository) FindByReviewID(ctx context.Context, reviewID uuid.UUID) (*entity.SentimentResult, error) {
	args := m.Called(ctx, reviewID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*entity.SentimentResult), args.Error(1)
}

func (m *mockSentimentRepository) FindTagsByReviewID(ctx context.Context, reviewID uuid.UUID) ([]*entity.ReviewTag, error) {
	args := m.Called(ctx, reviewID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]*entity.ReviewTag), args.Error(1)
}

type mockNotificationRepository struct {
	mock.Mock
}

func (m *mockNotificationRepository) Create(ctx context.Context, record *entity.NotificationRecord) error {
	args := m.Called(ctx, record)

	return args.Error(0)
}

func (m *mockNotificationRepository) ExistsForReview(ctx context.Context, reviewID uuid.UUID, typ entity.NotificationType) (bool, error) {
	args := m.Called(ctx, reviewID, typ)

	return args.Bool(0), args.Error(1)
}

func (m *mockNotificationRepository) FindByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entity.NotificationRecord, error) {
	args := m.Called(ctx, userID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]*entity.NotificationRecord), args.Error(1)
}

func (m *mockNotificationRepository) FindDue(ctx context.Context, now time.Time, limit int) ([]*entity.NotificationRecord, error) {
	args := m.Called(ctx, now, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]*entity.NotificationRecord), args.Error(1)
}

func (m *mockNotificationRepository) MarkSent(ctx context.Context, id uuid.UUID, sentAt time.Time) error {
	args := m.Called(ctx, id, sentAt)

	return args.Error(0)
}

func (m *mockNotificationRepository) MarkFailed(ctx context.Context, id uuid.UUID, errorMessage string) error {
	args := m.Called(ctx, id, errorMessage)

	return args.Error(0)
}

type mockPreferenceRepository struct {
	mock.Mock
}

func (m *mockPreferenceRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*entity.UserPreference, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*entity.UserPreference), args.Error(1)
}

func (m *mockPreferenceRepository) Upsert(ctx context.Context, pref *entity.UserPreference) error {
	args := m.Called(ctx, pref)

	return args.Error(0)
}

func (m *mockPreferenceRepository) FindWithWeeklySummary(ctx context.Context) ([]*entity.UserPreference, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]*entity.UserPreference), args.Error(1)
}

func (m *mockPreferenceRepository) FindWithMonthlyReport(ctx context.Context) ([]*entity.UserPreference, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]*entity.UserPreference), args.Error(1)
}

// mockTransactionManager executes the callback against a factory of mocks,
// without any real transaction semantics.
type mockTransactionManager struct {
	mock.Mock
	factory repository.RepositoryFactory
	execErr error
}

func (m *mockTransactionManager) Execute(ctx context.Context, fn func(txRepoFactory repository.RepositoryFactory) error) error {
	if m.execErr != nil {
		return m.execErr
	}

	return fn(m.factory)
}

type mockRepositoryFactory struct {
	reviewRepo       repository.ReviewRepository
	sentimentRepo    repository.SentimentRepository
	notificationRepo repository.NotificationRepository
}

func (f *mockRepositoryFactory) NewReviewRepository() repository.ReviewRepository {
	return f.reviewRepo
}

func (f *mockRepositoryFactory) NewSentimentRepository() repository.SentimentRepository {
	return f.sentimentRepo
}

func (f *mockRepositoryFactory) NewNotificationRepository() repository.NotificationRepository {
	return f.notificationRepo
}

type mockReviewSource struct {
	mock.Mock
	platform entity.Platform
}

func (m *mockReviewSource) Platform() entity.Platform {
	return m.platform
}

func (m *mockReviewSource) FetchReviews(ctx context.Context, externalID string) ([]service.RawReview, error) {
	args := m.Called(ctx, externalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]service.RawReview), args.Error(1)
}

type mockSourceRegistry struct {
	mock.Mock
}

func (m *mockSourceRegistry) Source(platform entity.Platform) (service.ReviewSource, error) {
	args := m.Called(platform)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(service.ReviewSource), args.Error(1)
}

type mockEventPublisher struct {
	mock.Mock
}

func (m *mockEventPublisher) PublishReviewEvent(ctx context.Context, event *service.ReviewEvent) error {
	args := m.Called(ctx, event)

	return args.Error(0)
}

func (m *mockEventPublisher) Close() error {
	args := m.Called()

	return args.Error(0)
}

type mockSentimentAnalyzer struct {
	mock.Mock
}

func (m *mockSentimentAnalyzer) Analyze(text string) (*service.Analysis, error) {
	args := m.Called(text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*service.Analysis), args.Error(1)
}

type mockMailer struct {
	mock.Mock
}

func (m *mockMailer) Send(ctx context.Context, mail *service.Mail) error {
	args := m.Called(ctx, mail)

	return args.Error(0)
}

type mockPasswordHasher struct {
	mock.Mock
}

func (m *mockPasswordHasher) Hash(password string) (string, error) {
	args := m.Called(password)

	return args.String(0), args.Error(1)
}

func (m *mockPasswordHasher) Check(password, hash string) bool {
	args := m.Called(password, hash)

	return args.Bool(0)
}

type mockTokenService struct {
	mock.Mock
}

func (m *mockTokenService) GenerateToken(userID uuid.UUID) (string, error) {
	args := m.Called(userID)

	return args.String(0), args.Error(1)
}

func (m *mockTokenService) ValidateToken(token string) (uuid.UUID, error) {
	args := m.Called(token)

	return args.Get(0).(uuid.UUID), args.Error(1)
}
