package service

import (
	"context"

	"decision-ledger-be/internal/repository/contract"
	"decision-ledger-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

// decisionCandidates feeds the search engine from the decision table. Each
// search runs outside a transaction on its own unit of work.
type decisionCandidates struct {
	uowFactory unitofwork.RepositoryFactory
}

func NewDecisionCandidateSource(uowFactory unitofwork.RepositoryFactory) *decisionCandidates {
	return &decisionCandidates{uowFactory: uowFactory}
}

func (s *decisionCandidates) VectorCandidates(ctx context.Context, workspaceID uuid.UUID, embedding []float32, k int) ([]contract.ScoredDecision, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	return uow.DecisionRepository().VectorCandidates(ctx, workspaceID, embedding, k)
}

func (s *decisionCandidates) KeywordCandidates(ctx context.Context, workspaceID uuid.UUID, query string, k int) ([]contract.ScoredDecision, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	return uow.DecisionRepository().KeywordCandidates(ctx, workspaceID, query, k)
}
