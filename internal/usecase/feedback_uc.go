package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/fqrmix/what-is-the-price-now/internal/domain/model"
	"github.com/fqrmix/what-is-the-price-now/internal/domain/ports/repository"
)

// FeedbackUseCase stores free-form user feedback.
type FeedbackUseCase struct {
	feedback repository.FeedbackRepository
	log      *zerolog.Logger
}

func NewFeedbackUseCase(feedback repository.FeedbackRepository, logger *zerolog.Logger) *FeedbackUseCase {
	return &FeedbackUseCase{feedback: feedback, log: logger}
}

func (uc *FeedbackUseCase) Submit(ctx context.Context, userID int64, message string) error {
	f := &model.Feedback{
		ID:        uuid.NewString(),
		UserID:    userID,
		Message:   message,
		CreatedAt: time.Now(),
	}
	if err := uc.feedback.Save(ctx, f); err != nil {
		return err
	}
	uc.log.Info().Int64("user_id", userID).Msg("feedback stored")
	return nil
}
