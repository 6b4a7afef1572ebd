package netconf

import (
	"github.com/charmbracelet/log"
	"github.com/spf13/viper"

	"github.com/tacopkm/tpkm/internal/errs"
)

// DefaultIPFSURL is used when neither the profile nor the environment names
// an IPFS API endpoint.
const DefaultIPFSURL = "http://127.0.0.1:5001/api/v0"

// Endpoints is the resolved network configuration a command runs against.
type Endpoints struct {
	RPCURL          string
	ContractAddress string
	IPFSURL         string
	Source          string
}

// Effective resolves the endpoints with the documented precedence: a valid
// active profile wins, then the RPC_URL / CONTRACT_ADDRESS environment
// variables. Chain endpoints that stay unresolved are fatal; the IPFS URL
// alone falls back to the local daemon default. A broken or partial active
// profile downgrades to the environment with a warning instead of masking
// it.
func (s *Store) Effective(logger *log.Logger) (*Endpoints, error) {
	ipfsURL := viper.GetString("IPFS_API_URL")
	if ipfsURL == "" {
		ipfsURL = DefaultIPFSURL
	}

	if s.Active != "" {
		p, ok := s.networks[s.Active]
		if !ok {
			logger.Warnf("active network %q is not in %s, falling back to environment variables", s.Active, s.path)
		} else if err := p.Validate(); err != nil {
			logger.Warnf("active network %q has an invalid endpoint (%s), falling back to environment variables", s.Active, err)
		} else {
			return &Endpoints{
				RPCURL:          p.RPCURL,
				ContractAddress: p.ContractAddress,
				IPFSURL:         ipfsURL,
				Source:          "network profile " + s.Active,
			}, nil
		}
	}

	rpcURL := viper.GetString("RPC_URL")
	contract := viper.GetString("CONTRACT_ADDRESS")
	if rpcURL != "" && contract != "" {
		if err := ValidateRPCURL(rpcURL); err != nil {
			return nil, err
		}
		checksummed, err := ValidateContractAddress(contract)
		if err != nil {
			return nil, err
		}
		return &Endpoints{
			RPCURL:          rpcURL,
			ContractAddress: checksummed,
			IPFSURL:         ipfsURL,
			Source:          "environment",
		}, nil
	}

	return nil, errs.New(errs.KindConfigMissing, "no network configured").
		WithHint("run 'tpkm config add <name> --rpc <url> --contract <address> --set-active' or export RPC_URL and CONTRACT_ADDRESS")
}
