package testutil

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// CallHandler answers one eth_call. args are the decoded method inputs; the
// returned values are packed with the method outputs.
type CallHandler func(args []interface{}) ([]interface{}, error)

type handler struct {
	method abi.Method
	fn     CallHandler
}

// Call is one recorded eth_call.
type Call struct {
	To     common.Address
	Method string
	Args   []interface{}
}

// FakeChain is an in-memory chain reader. Contract calls are routed by target
// address and 4-byte selector to handlers registered with Handle.
type FakeChain struct {
	mu sync.Mutex

	handlers map[common.Address]map[[4]byte]handler
	code     map[common.Address][]byte
	calls    []Call

	GasPrice    *big.Int
	Block       uint64
	Chain       *big.Int
	GasPriceErr error
	CodeErr     error
	BlockErr    error
}

func NewFakeChain() *FakeChain {
	return &FakeChain{
		handlers: make(map[common.Address]map[[4]byte]handler),
		code:     make(map[common.Address][]byte),
		GasPrice: big.NewInt(1_000_000_000),
		Block:    100,
		Chain:    big.NewInt(11155111),
	}
}

// Handle registers fn for method of parsed deployed at addr. It panics on an unknown method.
func (f *FakeChain) Handle(addr common.Address, parsed *abi.ABI, method string, fn CallHandler) {
	m, ok := parsed.Methods[method]
	if !ok {
		panic(fmt.Sprintf("unknown method %s", method))
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.handlers[addr] == nil {
		f.handlers[addr] = make(map[[4]byte]handler)
	}
	var selector [4]byte
	copy(selector[:], m.ID)
	f.handlers[addr][selector] = handler{method: m, fn: fn}
}

// Returns registers a handler that always answers with outputs.
func (f *FakeChain) Returns(addr common.Address, parsed *abi.ABI, method string, outputs ...interface{}) {
	f.Handle(addr, parsed, method, func([]interface{}) ([]interface{}, error) {
		return outputs, nil
	})
}

// Reverts registers a handler that always fails with err.
func (f *FakeChain) Reverts(addr common.Address, parsed *abi.ABI, method string, err error) {
	f.Handle(addr, parsed, method, func([]interface{}) ([]interface{}, error) {
		return nil, err
	})
}

func (f *FakeChain) SetCode(addr common.Address, code []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.code[addr] = code
}

func (f *FakeChain) CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if msg.To == nil {
		return nil, errors.New("fake chain: contract creation is not supported")
	}
	if len(msg.Data) < 4 {
		return nil, errors.New("fake chain: calldata shorter than a selector")
	}

	var selector [4]byte
	copy(selector[:], msg.Data[:4])

	f.mu.Lock()
	h, ok := f.handlers[*msg.To][selector]
	f.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("fake chain: no handler for %x at %s", selector, msg.To.Hex())
	}

	args, err := h.method.Inputs.Unpack(msg.Data[4:])
	if err != nil {
		return nil, fmt.Errorf("fake chain: bad input for %s: %w", h.method.Name, err)
	}

	f.mu.Lock()
	f.calls = append(f.calls, Call{To: *msg.To, Method: h.method.Name, Args: args})
	f.mu.Unlock()

	out, err := h.fn(args)
	if err != nil {
		return nil, err
	}
	return h.method.Outputs.Pack(out...)
}

func (f *FakeChain) CodeAt(ctx context.Context, contract common.Address, blockNumber *big.Int) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.CodeErr != nil {
		return nil, f.CodeErr
	}
	return f.code[contract], nil
}

func (f *FakeChain) SuggestGasPrice(ctx context.Context) (*big.Int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.GasPriceErr != nil {
		return nil, f.GasPriceErr
	}
	return new(big.Int).Set(f.GasPrice), nil
}

func (f *FakeChain) BlockNumber(ctx context.Context) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.BlockErr != nil {
		return 0, f.BlockErr
	}
	return f.Block, nil
}

func (f *FakeChain) ChainID(ctx context.Context) (*big.Int, error) {
	return new(big.Int).Set(f.Chain), nil
}

// Calls returns how many times method was called on any contract.
func (f *FakeChain) Calls(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	n := 0
	for _, c := range f.calls {
		if c.Method == method {
			n++
		}
	}
	return n
}

// CallLog returns a copy of every recorded call in order.
func (f *FakeChain) CallLog() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Call(nil), f.calls...)
}
