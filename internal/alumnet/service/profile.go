package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aussiebroadwan/alumnet/internal/alumnet/domain"
	"github.com/aussiebroadwan/alumnet/internal/alumnet/store"
	"github.com/aussiebroadwan/alumnet/pkg/httpx"
	"github.com/aussiebroadwan/alumnet/pkg/slogx"
)

var ErrProfileNotFound = errors.New("profile not found")

// ProfileService lets alumni and students maintain the profile created with
// their account.
type ProfileService struct {
	Store store.Store
}

// Get returns the caller's own profile. Admin accounts have none.
func (s *ProfileService) Get(ctx context.Context, p httpx.Principal) (domain.Profile, error) {
	profile, err := s.Store.Profiles().GetProfileByUserID(ctx, p.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Profile{}, ErrProfileNotFound
		}
		return domain.Profile{}, err
	}
	return profile, nil
}

// Update merges u into the caller's profile and returns the stored result.
func (s *ProfileService) Update(ctx context.Context, p httpx.Principal, u domain.ProfileUpdate) (domain.Profile, error) {
	var updated domain.Profile
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		current, err := tx.Profiles().GetProfileByUserID(ctx, p.UserID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrProfileNotFound
			}
			return err
		}

		current.Data, err = u.Apply(current.Data)
		if err != nil {
			return err
		}
		if err := tx.Profiles().UpdateProfile(ctx, current); err != nil {
			return fmt.Errorf("update profile: %w", err)
		}

		updated, err = tx.Profiles().GetProfileByUserID(ctx, p.UserID)
		return err
	})
	if err != nil {
		return domain.Profile{}, err
	}

	slogx.FromContext(ctx).Info("profile updated",
		slog.String("user_id", p.UserID),
		slog.String("user_type", string(updated.Data.UserType())),
	)
	return updated, nil
}
