package chain

import (
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// Dependency is one (library, constraint) pair attached to a published
// version. Field names mirror the on-chain tuple components.
type Dependency struct {
	Name       string
	Constraint string
}

// LibraryInfo is the on-chain library record.
type LibraryInfo struct {
	Owner           common.Address
	Description     string
	Tags            []string
	IsPrivate       bool
	Language        string
	LicenseFee      *big.Int
	LicenseRequired bool
}

// VersionInfo is the on-chain record for one (library, version).
type VersionInfo struct {
	IPFSHash     string
	Publisher    common.Address
	PublishedAt  time.Time
	Deprecated   bool
	Dependencies []Dependency
}
