package model

import (
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseVoteChoice(t *testing.T) {
	tests := []struct {
		in      string
		want    VoteChoice
		wantErr bool
	}{
		{"yes", VoteYes, false},
		{"YES", VoteYes, false},
		{" no ", VoteNo, false},
		{"abstain", VoteAbstain, false},
		{"2", VoteAbstain, false},
		{"maybe", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseVoteChoice(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestVoteIntentValidate(t *testing.T) {
	voter := common.HexToAddress("0x804e49e8C4eDb560AE7c48B554f6d2e27Bb81557")

	t.Run("valid", func(t *testing.T) {
		intent := &VoteIntent{ProposalID: 42, Choice: VoteYes, Voter: voter}
		assert.NoError(t, intent.Validate())
	})

	t.Run("zero voter", func(t *testing.T) {
		intent := &VoteIntent{ProposalID: 42, Choice: VoteYes}
		assert.Error(t, intent.Validate())
	})

	t.Run("choice out of range", func(t *testing.T) {
		intent := &VoteIntent{ProposalID: 42, Choice: VoteChoice(3), Voter: voter}
		assert.Error(t, intent.Validate())
	})

	t.Run("token without id", func(t *testing.T) {
		intent := &VoteIntent{
			ProposalID: 42,
			Choice:     VoteNo,
			Voter:      voter,
			Tokens:     []NFTVote{{TokenAddress: common.HexToAddress("0xc1")}},
		}
		assert.Error(t, intent.Validate())

		intent.Tokens[0].TokenID = big.NewInt(3)
		assert.NoError(t, intent.Validate())
	})
}

func TestAttemptKeyIsCaseInsensitive(t *testing.T) {
	voter := common.HexToAddress("0x804e49e8C4eDb560AE7c48B554f6d2e27Bb81557")
	intent := &VoteIntent{ProposalID: 42, Voter: voter}
	assert.Equal(t, "0x804e49e8c4edb560ae7c48b554f6d2e27bb81557:42", intent.Key())
}

func TestVoteAttemptStorageRoundTrip(t *testing.T) {
	intent := &VoteIntent{ProposalID: 42, Choice: VoteAbstain, Voter: common.HexToAddress("0x01")}
	attempt := NewVoteAttempt(intent, time.UnixMilli(1700000000000))
	attempt.Path = PathGasless
	attempt.Status = AttemptSucceeded
	attempt.UserOpHash = "0xabc"

	data, err := attempt.ToJSON()
	require.NoError(t, err)

	var loaded VoteAttempt
	require.NoError(t, loaded.FromStorageData(data))
	assert.Equal(t, attempt, &loaded)
	assert.Len(t, loaded.ID, 26)
}
