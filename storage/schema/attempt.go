package schema

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"github.com/AvaProtocol/gasless-vote/model"
)

// Key layout
//
//	attempt:<voter>:<proposal>:<ulid>  -> model.VoteAttempt json
//	counter:attempt:<status>           -> decimal count
//
// voter is lowercase hex. ulids sort by time, so a prefix scan returns attempts oldest first.
const (
	attemptPrefix = "attempt:"
	counterPrefix = "counter:attempt:"
)

func AttemptStorageKey(a *model.VoteAttempt) []byte {
	return []byte(fmt.Sprintf("%s%s:%d:%s", attemptPrefix, strings.ToLower(a.Voter.Hex()), a.ProposalID, a.ID))
}

func AttemptPrefix() []byte {
	return []byte(attemptPrefix)
}

func AttemptByVoterPrefix(voter common.Address) []byte {
	return []byte(fmt.Sprintf("%s%s:", attemptPrefix, strings.ToLower(voter.Hex())))
}

func AttemptByProposalPrefix(voter common.Address, proposalID uint32) []byte {
	return []byte(fmt.Sprintf("%s%s:%d:", attemptPrefix, strings.ToLower(voter.Hex()), proposalID))
}

func AttemptCounterKey(status model.AttemptStatus) []byte {
	return []byte(counterPrefix + string(status))
}
