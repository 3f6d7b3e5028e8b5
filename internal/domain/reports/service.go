package reports

import "context"

type Service struct {
	Store *Store
}

func NewService(store *Store) *Service {
	return &Service{Store: store}
}

func (s *Service) WorkData(ctx context.Context) ([]WorkData, error) {
	approvals, err := s.Store.ApprovalsByUser(ctx)
	if err != nil {
		return nil, err
	}
	return Compute(approvals), nil
}
