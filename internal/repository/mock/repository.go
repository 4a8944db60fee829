package mock

import (
	"context"

	"github.com/abrezinsky/armyroster/internal/repository"
)

// Repository wraps a real repository and allows injecting errors for testing.
//
// Usage:
//
//	realRepo := testutil.NewTestRepository(t)
//	mockRepo := mock.NewRepository(realRepo)
//	mockRepo.UpdateDraftError = errors.New("database error")
//	svc := services.NewDraftService(log, mockRepo, store, settings)
//	_, err := svc.AddEntry(ctx, draftID, req)
//	// err now wraps the injected error
type Repository struct {
	repository.FullRepository

	// ===== Draft Errors =====
	ListDraftsError  error
	GetDraftError    error
	CreateDraftError error
	UpdateDraftError error
	DeleteDraftError error

	// ===== Settings Errors =====
	GetSettingError    error
	SetSettingError    error
	DeleteSettingError error
}

// NewRepository creates a mock repository wrapping a real one
func NewRepository(real repository.FullRepository) *Repository {
	return &Repository{
		FullRepository: real,
	}
}

// ===== Draft Methods =====

func (m *Repository) ListDrafts(ctx context.Context) ([]repository.DraftRecord, error) {
	if m.ListDraftsError != nil {
		return nil, m.ListDraftsError
	}
	return m.FullRepository.ListDrafts(ctx)
}

func (m *Repository) GetDraft(ctx context.Context, id int64) (*repository.DraftRecord, error) {
	if m.GetDraftError != nil {
		return nil, m.GetDraftError
	}
	return m.FullRepository.GetDraft(ctx, id)
}

func (m *Repository) CreateDraft(ctx context.Context, d repository.DraftRecord) (int64, error) {
	if m.CreateDraftError != nil {
		return 0, m.CreateDraftError
	}
	return m.FullRepository.CreateDraft(ctx, d)
}

func (m *Repository) UpdateDraft(ctx context.Context, d repository.DraftRecord) error {
	if m.UpdateDraftError != nil {
		return m.UpdateDraftError
	}
	return m.FullRepository.UpdateDraft(ctx, d)
}

func (m *Repository) DeleteDraft(ctx context.Context, id int64) error {
	if m.DeleteDraftError != nil {
		return m.DeleteDraftError
	}
	return m.FullRepository.DeleteDraft(ctx, id)
}

// ===== Settings Methods =====

func (m *Repository) GetSetting(ctx context.Context, key string) (string, error) {
	if m.GetSettingError != nil {
		return "", m.GetSettingError
	}
	return m.FullRepository.GetSetting(ctx, key)
}

func (m *Repository) SetSetting(ctx context.Context, key, value string) error {
	if m.SetSettingError != nil {
		return m.SetSettingError
	}
	return m.FullRepository.SetSetting(ctx, key, value)
}

func (m *Repository) DeleteSetting(ctx context.Context, key string) error {
	if m.DeleteSettingError != nil {
		return m.DeleteSettingError
	}
	return m.FullRepository.DeleteSetting(ctx, key)
}

var _ repository.FullRepository = (*Repository)(nil)
