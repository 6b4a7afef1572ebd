// Package netconf manages the named network profiles stored at
// ~/.tacopkm/networks.json and resolves the effective endpoints used by
// every chain-touching command.
package netconf

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"

	"github.com/ethereum/go-ethereum/common"

	"github.com/tacopkm/tpkm/internal/errs"
	"github.com/tacopkm/tpkm/internal/util"
)

const FileName = "networks.json"

// Profile is one named {rpcUrl, contractAddress} entry. Unknown JSON fields
// are preserved across load/save for forward compatibility.
type Profile struct {
	RPCURL          string
	ContractAddress string

	extra map[string]json.RawMessage
}

func (p Profile) MarshalJSON() ([]byte, error) {
	m := make(map[string]json.RawMessage, len(p.extra)+2)
	for k, v := range p.extra {
		m[k] = v
	}
	rpc, err := json.Marshal(p.RPCURL)
	if err != nil {
		return nil, err
	}
	contract, err := json.Marshal(p.ContractAddress)
	if err != nil {
		return nil, err
	}
	m["rpcUrl"] = rpc
	m["contractAddress"] = contract
	return json.Marshal(m)
}

func (p *Profile) UnmarshalJSON(data []byte) error {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	if raw, ok := m["rpcUrl"]; ok {
		if err := json.Unmarshal(raw, &p.RPCURL); err != nil {
			return err
		}
		delete(m, "rpcUrl")
	}
	if raw, ok := m["contractAddress"]; ok {
		if err := json.Unmarshal(raw, &p.ContractAddress); err != nil {
			return err
		}
		delete(m, "contractAddress")
	}
	p.extra = m
	return nil
}

// Validate checks the profile is usable as a chain endpoint.
func (p Profile) Validate() error {
	if err := ValidateRPCURL(p.RPCURL); err != nil {
		return err
	}
	if _, err := ValidateContractAddress(p.ContractAddress); err != nil {
		return err
	}
	return nil
}

// Store is the on-disk profile collection plus the active selector.
type Store struct {
	Active   string
	networks map[string]Profile

	path  string
	extra map[string]json.RawMessage
}

// Load reads the store from the default location. A missing file yields an
// empty store.
func Load() (*Store, error) {
	dir, err := util.ConfigDir()
	if err != nil {
		return nil, err
	}
	return LoadFrom(filepath.Join(dir, FileName))
}

// LoadFrom reads the store from an explicit path.
func LoadFrom(path string) (*Store, error) {
	s := &Store{path: path, networks: make(map[string]Profile)}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if raw, ok := m["activeNetwork"]; ok {
		// null means no active selection
		var active *string
		if err := json.Unmarshal(raw, &active); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
		if active != nil {
			s.Active = *active
		}
		delete(m, "activeNetwork")
	}
	if raw, ok := m["networks"]; ok {
		if err := json.Unmarshal(raw, &s.networks); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
		delete(m, "networks")
	}
	s.extra = m
	return s, nil
}

// Save writes the store back with two-space indentation, preserving any
// unknown top-level fields.
func (s *Store) Save() error {
	m := make(map[string]json.RawMessage, len(s.extra)+2)
	for k, v := range s.extra {
		m[k] = v
	}
	var active *string
	if s.Active != "" {
		active = &s.Active
	}
	rawActive, err := json.Marshal(active)
	if err != nil {
		return err
	}
	rawNetworks, err := json.Marshal(s.networks)
	if err != nil {
		return err
	}
	m["activeNetwork"] = rawActive
	m["networks"] = rawNetworks
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return err
	}
	if err := os.WriteFile(s.path, append(data, '\n'), 0600); err != nil {
		return fmt.Errorf("failed to write %s: %w", s.path, err)
	}
	return nil
}

// Path returns the file this store reads and writes.
func (s *Store) Path() string {
	return s.path
}

// Names returns the profile names sorted alphabetically.
func (s *Store) Names() []string {
	names := make([]string, 0, len(s.networks))
	for name := range s.networks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Get returns the named profile.
func (s *Store) Get(name string) (Profile, bool) {
	p, ok := s.networks[name]
	return p, ok
}

// Add upserts a profile after validating its endpoints.
func (s *Store) Add(name, rpcURL, contractAddr string, setActive bool) error {
	if name == "" {
		return errs.New(errs.KindValidation, "network name cannot be empty")
	}
	if err := ValidateRPCURL(rpcURL); err != nil {
		return err
	}
	checksummed, err := ValidateContractAddress(contractAddr)
	if err != nil {
		return err
	}
	prev, existed := s.networks[name]
	p := Profile{RPCURL: rpcURL, ContractAddress: checksummed}
	if existed {
		p.extra = prev.extra
	}
	s.networks[name] = p
	if setActive {
		s.Active = name
	}
	return nil
}

// SetActive selects an existing profile.
func (s *Store) SetActive(name string) error {
	if _, ok := s.networks[name]; !ok {
		return errs.New(errs.KindNotFound, "network %q is not configured", name).
			WithHint("run 'tpkm config add %s --rpc <url> --contract <address>' to add it", name)
	}
	s.Active = name
	return nil
}

// Remove deletes a profile. Removing the active profile clears the active
// selector; the returned flag tells the caller to warn about it.
func (s *Store) Remove(name string) (clearedActive bool, err error) {
	if _, ok := s.networks[name]; !ok {
		return false, errs.New(errs.KindNotFound, "network %q is not configured", name)
	}
	delete(s.networks, name)
	if s.Active == name {
		s.Active = ""
		return true, nil
	}
	return false, nil
}

// ValidateRPCURL requires an http(s) or ws(s) URL.
func ValidateRPCURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return errs.New(errs.KindValidation, "invalid RPC URL %q", raw)
	}
	switch u.Scheme {
	case "http", "https", "ws", "wss":
	default:
		return errs.New(errs.KindValidation, "invalid RPC URL %q: scheme must be http, https, ws or wss", raw)
	}
	if u.Host == "" {
		return errs.New(errs.KindValidation, "invalid RPC URL %q: missing host", raw)
	}
	return nil
}

// ValidateContractAddress requires a well-formed 20-byte hex address and
// returns it in EIP-55 checksum form.
func ValidateContractAddress(addr string) (string, error) {
	if !common.IsHexAddress(addr) {
		return "", errs.New(errs.KindValidation, "invalid contract address %q", addr)
	}
	return common.HexToAddress(addr).Hex(), nil
}
