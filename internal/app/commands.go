package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"review_analyzer/internal/adapters/observability"
	"review_analyzer/internal/domain"
)

// createInput is validated field by field in declaration order, tags left to right,
// which fixes the precedence: unknown location, then empty location, then empty body.
type createInput struct {
	Location   string `validate:"validlocation,required"`
	ReviewBody string `validate:"required"`
}

type CommandService struct {
	repo      domain.ReviewRepository
	locations domain.LocationSet
	clock     clockwork.Clock
	validate  *validator.Validate
}

func NewCommandService(r domain.ReviewRepository, locs domain.LocationSet, clock clockwork.Clock) *CommandService {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.RegisterValidation("validlocation", func(fl validator.FieldLevel) bool {
		return locs.Contains(fl.Field().String())
	}); err != nil {
		panic(fmt.Sprintf("register validlocation: %v", err))
	}
	return &CommandService{repo: r, locations: locs, clock: clock, validate: v}
}

// CreateReview validates the submission and appends it with a fresh id and timestamp.
func (s *CommandService) CreateReview(ctx context.Context, in domain.NewReview) (domain.Review, error) {
	if err := s.check(createInput{Location: in.Location, ReviewBody: in.ReviewBody}); err != nil {
		observability.ObserveValidationFailure(reason(err))
		return domain.Review{}, err
	}

	rv := domain.Review{
		ReviewBody: in.ReviewBody,
		Location:   in.Location,
		Timestamp:  domain.FormatTimestamp(s.clock.Now()),
		ReviewId:   uuid.New().String(),
	}
	if err := s.repo.Append(ctx, rv); err != nil {
		return domain.Review{}, fmt.Errorf("append review: %w", err)
	}
	observability.ObserveCreated(rv.Location)
	log.Info().Str("review_id", rv.ReviewId).Str("location", rv.Location).Msg("review created")
	return rv, nil
}

func (s *CommandService) check(in createInput) error {
	err := s.validate.Struct(in)
	if err == nil {
		return nil
	}
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) || len(ves) == 0 {
		return err
	}
	first := ves[0]
	switch {
	case first.Field() == "Location" && first.Tag() == "validlocation":
		return domain.ErrInvalidLocation
	case first.Field() == "Location":
		return domain.ErrMissingLocation
	default:
		return domain.ErrMissingReviewBody
	}
}

func reason(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidLocation):
		return "invalid_location"
	case errors.Is(err, domain.ErrMissingLocation):
		return "missing_location"
	case errors.Is(err, domain.ErrMissingReviewBody):
		return "missing_review_body"
	}
	return "other"
}
