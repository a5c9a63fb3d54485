package storage

import (
	"fmt"
	"sort"

	"github.com/ethereum/go-ethereum/common"
	"github.com/samber/lo"

	"github.com/AvaProtocol/gasless-vote/model"
	"github.com/AvaProtocol/gasless-vote/pkg/logger"
	"github.com/AvaProtocol/gasless-vote/storage/schema"
)

// Journal keeps a record of every terminal vote attempt. Nothing in the vote
// pipeline reads it back to make a decision.
type Journal struct {
	db     Storage
	logger logger.Logger
}

func NewJournal(db Storage, lgr logger.Logger) *Journal {
	return &Journal{db: db, logger: logger.Component(lgr, "journal")}
}

// Record persists attempt and bumps the counter of its status.
func (j *Journal) Record(attempt *model.VoteAttempt) error {
	data, err := attempt.ToJSON()
	if err != nil {
		return fmt.Errorf("failed to encode attempt %s: %w", attempt.ID, err)
	}

	if err := j.db.Set(schema.AttemptStorageKey(attempt), data); err != nil {
		return fmt.Errorf("failed to store attempt %s: %w", attempt.ID, err)
	}
	if _, err := j.db.IncCounter(schema.AttemptCounterKey(attempt.Status)); err != nil {
		j.logger.Warn("failed to bump attempt counter", "status", attempt.Status, "error", err)
	}
	return nil
}

// List returns attempts, newest first. A zero voter lists every voter.
func (j *Journal) List(voter common.Address, limit int) ([]*model.VoteAttempt, error) {
	prefix := schema.AttemptPrefix()
	if voter != (common.Address{}) {
		prefix = schema.AttemptByVoterPrefix(voter)
	}
	return j.list(prefix, limit)
}

// ListForProposal returns the attempts of voter on one proposal, newest first.
func (j *Journal) ListForProposal(voter common.Address, proposalID uint32) ([]*model.VoteAttempt, error) {
	return j.list(schema.AttemptByProposalPrefix(voter, proposalID), 0)
}

func (j *Journal) list(prefix []byte, limit int) ([]*model.VoteAttempt, error) {
	items, err := j.db.GetByPrefix(prefix)
	if err != nil {
		return nil, err
	}

	attempts := lo.FilterMap(items, func(item *KeyValueItem, _ int) (*model.VoteAttempt, bool) {
		attempt := &model.VoteAttempt{}
		if err := attempt.FromStorageData(item.Value); err != nil {
			j.logger.Warn("skipping corrupt attempt record", "key", string(item.Key), "error", err)
			return nil, false
		}
		return attempt, true
	})

	// keys group by voter and proposal first; ulids order by time
	sort.SliceStable(attempts, func(a, b int) bool {
		return attempts[a].ID > attempts[b].ID
	})

	if limit > 0 && len(attempts) > limit {
		attempts = attempts[:limit]
	}
	return attempts, nil
}

// Count returns how many attempts ended with status.
func (j *Journal) Count(status model.AttemptStatus) (uint64, error) {
	return j.db.GetCounter(schema.AttemptCounterKey(status))
}

// CountForProposal returns how many attempts voter made on one proposal.
func (j *Journal) CountForProposal(voter common.Address, proposalID uint32) (int64, error) {
	return j.db.CountKeysByPrefix(schema.AttemptByProposalPrefix(voter, proposalID))
}
