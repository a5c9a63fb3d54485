package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/AvaProtocol/gasless-vote/model"
	"github.com/AvaProtocol/gasless-vote/pkg/logger"
)

// Notification is the single user-facing message of a terminal attempt.
type Notification struct {
	Success bool
	Title   string
	Message string

	Intent *model.VoteIntent
	Result *Result
}

type Notifier interface {
	Notify(ctx context.Context, n Notification)
}

// LogNotifier writes notifications to the logger. It is the default when no
// UI is attached.
type LogNotifier struct {
	logger logger.Logger
}

func NewLogNotifier(lgr logger.Logger) *LogNotifier {
	return &LogNotifier{logger: logger.Component(lgr, "notifier")}
}

func (n *LogNotifier) Notify(ctx context.Context, msg Notification) {
	if msg.Success {
		n.logger.Info(msg.Title, "message", msg.Message, "proposal", msg.Intent.ProposalID)
		return
	}
	n.logger.Error(msg.Title, "message", msg.Message, "proposal", msg.Intent.ProposalID)
}

// NotifierFunc adapts a plain function to Notifier.
type NotifierFunc func(ctx context.Context, n Notification)

func (f NotifierFunc) Notify(ctx context.Context, n Notification) {
	f(ctx, n)
}

func successNotification(intent *model.VoteIntent, res *Result) Notification {
	n := Notification{Success: true, Title: "Vote submitted", Intent: intent, Result: res}
	switch {
	case res.Path == model.PathGasless:
		n.Message = fmt.Sprintf("Your %s vote on proposal %d was accepted for sponsorship. No gas was charged.", intent.Choice, intent.ProposalID)
	case res.FellBack:
		n.Message = fmt.Sprintf("Sponsorship was unavailable, so your %s vote on proposal %d was sent from your wallet.", intent.Choice, intent.ProposalID)
	default:
		n.Message = fmt.Sprintf("Your %s vote on proposal %d was sent.", intent.Choice, intent.ProposalID)
	}
	return n
}

func failureNotification(intent *model.VoteIntent, res *Result) Notification {
	n := Notification{Title: "Vote failed", Intent: intent, Result: res}

	cause := res.Err
	var pErr *Error
	if errors.As(res.Err, &pErr) {
		cause = pErr.Err
	}

	switch Classify(res.Err) {
	case KindSigner:
		n.Title = "Vote cancelled"
		n.Message = "The signature request was rejected. Nothing was sent."
	case KindTimeout:
		n.Message = "The bundler did not answer in time. The vote may still be processed; check the proposal before voting again."
	case KindChainRead:
		n.Message = fmt.Sprintf("Could not read from the chain: %v", cause)
	case KindWalletCreation:
		n.Message = fmt.Sprintf("Smart wallet creation failed: %v", cause)
	case KindPaymasterInsufficient:
		n.Message = "The sponsorship paymaster cannot cover this vote right now."
	default:
		n.Message = cause.Error()
	}
	return n
}
