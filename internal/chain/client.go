// Package chain holds the Ethereum side of tpkm: dialing the RPC endpoint,
// loading the registry ABI and exposing a typed facade over the contract.
// Every contract error is translated here, so the rest of the code only
// ever sees the errs taxonomy.
package chain

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/charmbracelet/log"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/tacopkm/tpkm/internal/errs"
	"github.com/tacopkm/tpkm/internal/keystore"
)

//go:embed registry_abi.json
var registryABIJSON []byte

const dialRetries = 3

// loadRegistryABI parses the bundled ABI once per process.
var loadRegistryABI = sync.OnceValues(func() (*abi.ABI, error) {
	var bundle struct {
		ABI json.RawMessage `json:"abi"`
	}
	if err := json.Unmarshal(registryABIJSON, &bundle); err != nil {
		return nil, fmt.Errorf("failed to parse bundled registry ABI: %w", err)
	}
	parsed, err := abi.JSON(bytes.NewReader(bundle.ABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse bundled registry ABI: %w", err)
	}
	return &parsed, nil
})

// Client is the per-command connection to one network: an RPC handle, the
// canonical contract address, and (after Attach) a signer.
type Client struct {
	eth      *ethclient.Client
	chainID  *big.Int
	contract common.Address
	registry *Registry
	signer   *bind.TransactOpts
	logger   *log.Logger
}

// Dial connects to rpcURL and probes both the endpoint and the contract:
// the chain id confirms RPC reachability, a code lookup confirms a contract
// actually lives at contractAddr. Transient failures are retried with
// exponential backoff before surfacing as RPC_UNREACHABLE.
func Dial(ctx context.Context, logger *log.Logger, rpcURL, contractAddr string) (*Client, error) {
	registryABI, err := loadRegistryABI()
	if err != nil {
		return nil, errs.Wrap(errs.KindUnknown, err, "%s", err)
	}
	if !common.IsHexAddress(contractAddr) {
		return nil, errs.New(errs.KindValidation, "invalid contract address %q", contractAddr)
	}
	addr := common.HexToAddress(contractAddr)

	c := &Client{contract: addr, logger: logger}
	probe := func() error {
		eth, err := ethclient.DialContext(ctx, rpcURL)
		if err != nil {
			return err
		}
		chainID, err := eth.ChainID(ctx)
		if err != nil {
			eth.Close()
			return err
		}
		code, err := eth.CodeAt(ctx, addr, nil)
		if err != nil {
			eth.Close()
			return err
		}
		if len(code) == 0 {
			eth.Close()
			return backoff.Permanent(errs.New(errs.KindConfigMissing, "no contract code at %s", addr.Hex()).
				WithHint("check the contract address and the active network"))
		}
		c.eth = eth
		c.chainID = chainID
		return nil
	}
	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), dialRetries), ctx)
	if err := backoff.RetryNotify(probe, policy, func(err error, _ time.Duration) {
		logger.Debugf("RPC probe failed, retrying: %s", err)
	}); err != nil {
		if typed, ok := errAs(err); ok {
			return nil, typed
		}
		return nil, errs.Wrap(errs.KindRPCUnreachable, err, "cannot reach RPC endpoint %s", rpcURL).
			WithHint("check the RPC URL of the active network and that the node is running")
	}

	c.registry = &Registry{
		client:  c,
		bound:   bind.NewBoundContract(addr, *registryABI, c.eth, c.eth, c.eth),
		decoder: customErrorDecoder(registryABI),
	}
	logger.Debugf("connected to chain %s, registry at %s", c.chainID, addr.Hex())
	return c, nil
}

func errAs(err error) (*errs.Error, bool) {
	var typed *errs.Error
	if errors.As(err, &typed) {
		return typed, true
	}
	return nil, false
}

// Attach loads a decrypted wallet for signing. Reads never need it.
func (c *Client) Attach(w *keystore.Wallet) error {
	opts, err := w.TransactOpts(c.chainID)
	if err != nil {
		return err
	}
	c.signer = opts
	return nil
}

// Signer returns the attached signing address.
func (c *Client) Signer() (common.Address, bool) {
	if c.signer == nil {
		return common.Address{}, false
	}
	return c.signer.From, true
}

// Registry returns the typed contract facade.
func (c *Client) Registry() *Registry {
	return c.registry
}

// ContractAddress returns the canonical (checksummed) registry address.
func (c *Client) ContractAddress() common.Address {
	return c.contract
}

// ChainID returns the probed chain id.
func (c *Client) ChainID() *big.Int {
	return c.chainID
}

// BalanceAt reports addr's balance in wei.
func (c *Client) BalanceAt(ctx context.Context, addr common.Address) (*big.Int, error) {
	balance, err := c.eth.BalanceAt(ctx, addr, nil)
	if err != nil {
		return nil, errs.Translate(err)
	}
	return balance, nil
}

// Close releases the RPC connection.
func (c *Client) Close() {
	if c.eth != nil {
		c.eth.Close()
	}
}

func (c *Client) transactOpts(ctx context.Context, value *big.Int) (*bind.TransactOpts, error) {
	if c.signer == nil {
		return nil, errs.New(errs.KindAuth, "this operation needs a wallet for signing").
			WithHint("run 'tpkm wallet create' or set TPKM_WALLET_PASSWORD for non-interactive use")
	}
	opts := *c.signer
	opts.Context = ctx
	opts.Value = value
	return &opts, nil
}

// customErrorDecoder decodes raw revert data against the registry ABI's
// custom errors, feeding the translator's second extraction stage.
func customErrorDecoder(registryABI *abi.ABI) errs.RevertDecoder {
	return func(data []byte) (string, bool) {
		for name, abiErr := range registryABI.Errors {
			values, err := abiErr.Unpack(data)
			if err != nil {
				continue
			}
			return fmt.Sprintf("%s%v", name, values), true
		}
		return "", false
	}
}
