// README: Fleet service applies verification and activation rules.
package fleet

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"roadbook/internal/types"
)

type Service struct {
	repo Repository
	log  logrus.FieldLogger
}

func NewService(repo Repository, log logrus.FieldLogger) *Service {
	return &Service{repo: repo, log: log}
}

func (s *Service) Get(ctx context.Context, id types.ID) (*Vehicle, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) ListEligible(ctx context.Context) ([]Vehicle, error) {
	return s.repo.ListEligible(ctx)
}

func (s *Service) SetVerification(ctx context.Context, id types.ID, status VerificationStatus) error {
	if !status.Valid() {
		return fmt.Errorf("%w: unknown verification status %q", types.ErrValidation, status)
	}
	if err := s.repo.UpdateVerification(ctx, id, status); err != nil {
		return err
	}
	s.log.WithFields(logrus.Fields{"vehicle_id": id, "verification": status}).Info("vehicle verification updated")
	return nil
}

// SetActive turns a vehicle on or off. Activation checks the photo rule
// against the stored vehicle; deactivation always succeeds.
func (s *Service) SetActive(ctx context.Context, id types.ID, active bool) error {
	if active {
		v, err := s.repo.Get(ctx, id)
		if err != nil {
			return err
		}
		if !v.HasPhotos() {
			return fmt.Errorf("%w: %v", types.ErrValidation, ErrPhotosRequired)
		}
	}
	if err := s.repo.UpdateActive(ctx, id, active); err != nil {
		return err
	}
	s.log.WithFields(logrus.Fields{"vehicle_id": id, "active": active}).Info("vehicle activation updated")
	return nil
}
