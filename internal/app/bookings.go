package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"stages_recup/internal/adapters/observability"
	"stages_recup/internal/domain"
)

// maxRefAttempts bounds the insert-then-retry loop used to close the
// reference allocation race. Collisions only happen when two requests read
// the same per-year count, so a small bound is enough.
const maxRefAttempts = 3

type CreateBookingInput struct {
	StageID           string
	Civilite          string
	Nom               string
	Prenom            string
	DateNaissance     string // calendar date, YYYY-MM-DD
	Adresse           string
	CodePostal        string
	Ville             string
	Email             string
	EmailConfirmation string
	TelephoneMobile   string
	GuaranteeSerenite bool
	CGVAccepted       bool
}

type BookingService struct {
	stages       domain.StageRepository
	bookings     domain.BookingRepository
	storeTimeout time.Duration
	now          func() time.Time // swapped out in tests
}

func NewBookingService(s domain.StageRepository, b domain.BookingRepository, storeTimeout time.Duration) *BookingService {
	return &BookingService{stages: s, bookings: b, storeTimeout: storeTimeout, now: time.Now}
}

// CreateBooking validates the applicant input, allocates a unique
// BK-YYYY-NNNNNN reference and persists the booking. Validation failures are
// reported before any store access.
func (s *BookingService) CreateBooking(ctx context.Context, in CreateBookingInput) (domain.Booking, error) {
	birth, err := validateInput(in)
	if err != nil {
		return domain.Booking{}, err
	}

	ctx, cancel := s.storeCtx(ctx)
	defer cancel()

	if _, err := s.stages.GetStage(ctx, in.StageID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Booking{}, &domain.ValidationError{Field: "stage_id", Reason: "unknown stage"}
		}
		return domain.Booking{}, storeErr(err, "verify stage")
	}

	year := s.now().UTC().Year()
	prefix := fmt.Sprintf("BK-%04d-", year)

	for attempt := 1; attempt <= maxRefAttempts; attempt++ {
		n, err := s.bookings.CountByReferencePrefix(ctx, prefix)
		if err != nil {
			return domain.Booking{}, storeErr(err, "count references")
		}
		b := domain.Booking{
			ID:                uuid.NewString(),
			StageID:           in.StageID,
			Reference:         fmt.Sprintf("%s%06d", prefix, n+1),
			Civilite:          in.Civilite,
			Nom:               in.Nom,
			Prenom:            in.Prenom,
			DateNaissance:     birth,
			Adresse:           in.Adresse,
			CodePostal:        in.CodePostal,
			Ville:             in.Ville,
			Email:             in.Email,
			EmailConfirmation: in.EmailConfirmation,
			TelephoneMobile:   in.TelephoneMobile,
			GuaranteeSerenite: in.GuaranteeSerenite,
			CGVAccepted:       true,
		}
		err = s.bookings.InsertBooking(ctx, b)
		if err == nil {
			log.Info().Str("reference", b.Reference).Str("stage_id", b.StageID).Msg("booking created")
			return b, nil
		}
		if errors.Is(err, domain.ErrDuplicateReference) {
			// another request won the same sequence number; re-read and retry
			observability.ObserveBookingRefRetry()
			log.Warn().Str("reference", b.Reference).Int("attempt", attempt).Msg("booking reference collision, retrying")
			continue
		}
		return domain.Booking{}, storeErr(err, "insert booking")
	}
	return domain.Booking{}, fmt.Errorf("reference allocation retries exhausted: %w", domain.ErrDependency)
}

func (s *BookingService) storeCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.storeTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.storeTimeout)
}

func validateInput(in CreateBookingInput) (time.Time, error) {
	required := []struct{ field, val string }{
		{"stage_id", in.StageID},
		{"civilite", in.Civilite},
		{"nom", in.Nom},
		{"prenom", in.Prenom},
		{"date_naissance", in.DateNaissance},
		{"adresse", in.Adresse},
		{"code_postal", in.CodePostal},
		{"ville", in.Ville},
		{"email", in.Email},
		{"email_confirmation", in.EmailConfirmation},
		{"telephone_mobile", in.TelephoneMobile},
	}
	for _, r := range required {
		if strings.TrimSpace(r.val) == "" {
			return time.Time{}, &domain.ValidationError{Field: r.field}
		}
	}
	// Historically the form never compared the two email fields; requiring
	// them to match catches typos at no cost. Format is still not checked.
	if in.Email != in.EmailConfirmation {
		return time.Time{}, &domain.ValidationError{Field: "email_confirmation", Reason: "does not match email"}
	}
	if !in.CGVAccepted {
		return time.Time{}, &domain.ValidationError{Field: "cgv_accepted", Reason: "must be accepted"}
	}
	birth, err := time.Parse("2006-01-02", in.DateNaissance)
	if err != nil {
		return time.Time{}, &domain.ValidationError{Field: "date_naissance", Reason: "must be a YYYY-MM-DD date"}
	}
	return birth, nil
}
