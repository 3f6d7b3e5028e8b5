package requests

import (
	"context"
	"errors"
	"time"

	"timeoff/internal/domain/auth"
)

var (
	ErrNotFound       = errors.New("request not found")
	ErrForbidden      = errors.New("forbidden")
	ErrAlreadyDecided = errors.New("request already decided")
)

type Service struct {
	Store *Store
}

func NewService(store *Store) *Service {
	return &Service{Store: store}
}

// Submit records a new request. It always enters the ledger as pending and
// owned by the submitting user; date ordering is intentionally not checked.
func (s *Service) Submit(ctx context.Context, userID, requestType string, startDate, endDate time.Time, reason string) (string, error) {
	return s.Store.Create(ctx, userID, requestType, startDate, endDate, reason)
}

// ListFor returns the manage view: reviewers see every pending request
// system-wide, everyone else sees only their own requests.
func (s *Service) ListFor(ctx context.Context, roleName, userID string) ([]TimeOffRequest, error) {
	if auth.IsReviewer(roleName) {
		return s.Store.ListPending(ctx)
	}
	return s.Store.ListByUser(ctx, userID)
}

// HistoryFor returns decided requests, with the same role split as ListFor.
func (s *Service) HistoryFor(ctx context.Context, roleName, userID string) ([]TimeOffRequest, error) {
	if auth.IsReviewer(roleName) {
		return s.Store.ListDecided(ctx)
	}
	return s.Store.ListDecidedByUser(ctx, userID)
}

func (s *Service) PendingQueue(ctx context.Context) ([]TimeOffRequest, error) {
	return s.Store.ListPending(ctx)
}

func (s *Service) PendingCountFor(ctx context.Context, userID string) (int, error) {
	return s.Store.PendingCountByUser(ctx, userID)
}

func (s *Service) Approve(ctx context.Context, requestID, reviewerID, roleName string) error {
	return s.decide(ctx, requestID, reviewerID, roleName, StatusApproved)
}

func (s *Service) Reject(ctx context.Context, requestID, reviewerID, roleName string) error {
	return s.decide(ctx, requestID, reviewerID, roleName, StatusRejected)
}

func (s *Service) decide(ctx context.Context, requestID, reviewerID, roleName, status string) error {
	if !auth.IsReviewer(roleName) {
		return ErrForbidden
	}
	return s.Store.Decide(ctx, requestID, reviewerID, status)
}
