package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"math/big"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/samber/lo"

	"github.com/AvaProtocol/gasless-vote/core/pipeline"
	"github.com/AvaProtocol/gasless-vote/model"
)

// terminalPrompter asks y/N questions on the command's stdin.
type terminalPrompter struct {
	mu        sync.Mutex
	in        *bufio.Reader
	out       io.Writer
	assumeYes bool
}

func newTerminalPrompter(in io.Reader, out io.Writer, assumeYes bool) *terminalPrompter {
	return &terminalPrompter{in: bufio.NewReader(in), out: out, assumeYes: assumeYes}
}

func (p *terminalPrompter) ask(ctx context.Context, question string) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.assumeYes {
		fmt.Fprintf(p.out, "%s [y/N] y\n", question)
		return true, nil
	}
	if err := ctx.Err(); err != nil {
		return false, err
	}

	fmt.Fprintf(p.out, "%s [y/N] ", question)
	line, err := p.in.ReadString('\n')
	if err != nil && err != io.EOF {
		return false, err
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes", nil
}

func (p *terminalPrompter) ConfirmWalletCreation(ctx context.Context, owner, wallet common.Address) (bool, error) {
	return p.ask(ctx, fmt.Sprintf("No smart wallet is deployed for %s. Deploy %s now (paid by you, one time only)?", owner.Hex(), wallet.Hex()))
}

func (p *terminalPrompter) ConfirmSignature(ctx context.Context, signer common.Address, data []byte) (bool, error) {
	return p.ask(ctx, fmt.Sprintf("Sign user operation hash %s with %s?", hexutil.Encode(data), signer.Hex()))
}

func printNotifier(out io.Writer) pipeline.Notifier {
	return pipeline.NotifierFunc(func(ctx context.Context, n pipeline.Notification) {
		fmt.Fprintf(out, "%s: %s\n", n.Title, n.Message)
	})
}

// parseTokens reads repeated --token 0xaddr:id values.
func parseTokens(values []string) ([]model.NFTVote, error) {
	var parseErr error
	tokens := lo.FilterMap(values, func(v string, _ int) (model.NFTVote, bool) {
		addr, id, ok := strings.Cut(v, ":")
		if !ok || !common.IsHexAddress(addr) {
			parseErr = fmt.Errorf("invalid token %q, expected 0xaddress:id", v)
			return model.NFTVote{}, false
		}
		tokenID, ok := new(big.Int).SetString(id, 0)
		if !ok || tokenID.Sign() < 0 {
			parseErr = fmt.Errorf("invalid token id in %q", v)
			return model.NFTVote{}, false
		}
		return model.NFTVote{TokenAddress: common.HexToAddress(addr), TokenID: tokenID}, true
	})
	if parseErr != nil {
		return nil, parseErr
	}
	return tokens, nil
}
