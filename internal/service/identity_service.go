package service

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/gema-progress-api/internal/models"
	"github.com/noah-isme/gema-progress-api/internal/repository"
)

// ErrIdentityNotFound indicates no interpretation of a subject reference led
// to a known student or account. Callers treat it as "zero eligible
// students", never as a hard failure.
var ErrIdentityNotFound = errors.New("identity not found")

// MatchStrategy tags which lookup resolved a subject reference; surfaced for
// debugging identifier-shape mismatches.
type MatchStrategy string

const (
	// MatchOwnerAccount means the reference equalled a profile's owning account id.
	MatchOwnerAccount MatchStrategy = "owner-account"
	// MatchStudentID means the reference equalled a profile primary key.
	MatchStudentID MatchStrategy = "student-id"
	// MatchDirectAccount means the reference is an account id with no profile.
	MatchDirectAccount MatchStrategy = "direct-account"
)

// ResolvedIdentity is the canonical identity every downstream lookup keys on.
type ResolvedIdentity struct {
	StudentID models.StudentID
	Strategy  MatchStrategy
}

// IdentityResolver normalises a subject reference of unknown provenance into
// the one canonical student identity. It is the only conversion boundary
// between account and student identifiers.
type IdentityResolver interface {
	Resolve(ctx context.Context, ref string) (ResolvedIdentity, error)
}

type identityResolver struct {
	profiles repository.StudentProfileRepository
	accounts repository.AccountRepository
	logger   zerolog.Logger
}

// NewIdentityResolver builds the resolver.
func NewIdentityResolver(profiles repository.StudentProfileRepository, accounts repository.AccountRepository, logger zerolog.Logger) IdentityResolver {
	return &identityResolver{
		profiles: profiles,
		accounts: accounts,
		logger:   logger.With().Str("component", "identity_resolver").Logger(),
	}
}

// Resolve tries the lookup strategies in a fixed order, first match wins:
// profile by owning account, profile by primary key, then the reference used
// directly as an account id.
func (r *identityResolver) Resolve(ctx context.Context, ref string) (ResolvedIdentity, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ResolvedIdentity{}, ErrValidation
	}

	profile, err := r.profiles.FindByAccount(ctx, models.AccountID(ref))
	if err == nil {
		r.logger.Debug().Str("ref", ref).Str("strategy", string(MatchOwnerAccount)).Msg("identity resolved")
		return ResolvedIdentity{StudentID: profile.ID, Strategy: MatchOwnerAccount}, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return ResolvedIdentity{}, wrapPersistence("lookup profile by account", err)
	}

	profile, err = r.profiles.FindByID(ctx, models.StudentID(ref))
	if err == nil {
		r.logger.Debug().Str("ref", ref).Str("strategy", string(MatchStudentID)).Msg("identity resolved")
		return ResolvedIdentity{StudentID: profile.ID, Strategy: MatchStudentID}, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return ResolvedIdentity{}, wrapPersistence("lookup profile by id", err)
	}

	exists, err := r.accounts.Exists(ctx, models.AccountID(ref))
	if err != nil {
		return ResolvedIdentity{}, wrapPersistence("lookup account", err)
	}
	if exists {
		r.logger.Debug().Str("ref", ref).Str("strategy", string(MatchDirectAccount)).Msg("identity resolved")
		return ResolvedIdentity{StudentID: models.StudentID(ref), Strategy: MatchDirectAccount}, nil
	}

	r.logger.Debug().Str("ref", ref).Msg("no identity interpretation matched")
	return ResolvedIdentity{}, ErrIdentityNotFound
}
