// Package publisher implements the publish pipeline: manifest validation,
// ownership pre-check, deterministic archiving, IPFS upload and the
// registry commit.
package publisher

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/ethereum/go-ethereum/common"

	"github.com/tacopkm/tpkm/internal/archive"
	"github.com/tacopkm/tpkm/internal/chain"
	"github.com/tacopkm/tpkm/internal/errs"
	"github.com/tacopkm/tpkm/internal/libconfig"
)

// Registry is the contract surface the publisher needs.
type Registry interface {
	LibraryInfo(ctx context.Context, name string) (*chain.LibraryInfo, error)
	PublishVersion(ctx context.Context, name, version, ipfsHash string, deps []chain.Dependency) (common.Hash, error)
}

// Store uploads archive bytes and returns their CID.
type Store interface {
	Add(ctx context.Context, r io.Reader) (string, error)
}

// Publisher runs one publish per call. TempDir is where the intermediate
// archive lands; it defaults to the system temp directory.
type Publisher struct {
	reg    Registry
	store  Store
	logger *log.Logger
	signer common.Address

	TempDir string
}

// Result reports what a successful publish committed.
type Result struct {
	Name         string
	Version      string
	CID          string
	TxHash       common.Hash
	Dependencies []chain.Dependency
}

func New(reg Registry, store Store, logger *log.Logger, signer common.Address) *Publisher {
	return &Publisher{reg: reg, store: store, logger: logger, signer: signer, TempDir: os.TempDir()}
}

// Publish loads dir's manifest, verifies the signer owns the library,
// archives the directory, uploads it and commits the version record. The
// chain transaction is the commit point: an uploaded archive whose commit
// fails is left on IPFS (content-addressed, so a retry reuses it). The temp
// archive is deleted on every exit path.
func (p *Publisher) Publish(ctx context.Context, dir, versionOverride string) (*Result, error) {
	cfg, err := libconfig.Load(dir)
	if err != nil {
		return nil, err
	}
	if versionOverride != "" {
		cfg.Version = versionOverride
	}
	deps, err := cfg.Validate(p.logger)
	if err != nil {
		return nil, err
	}

	// predictable failures are caught before any archiving or gas spend
	lib, err := p.reg.LibraryInfo(ctx, cfg.Name)
	if err != nil {
		if errs.IsKind(err, errs.KindNotFound) {
			return nil, errs.New(errs.KindNotFound, "library %q is not registered", cfg.Name).
				WithHint("run 'tpkm register %s' first", cfg.Name)
		}
		return nil, err
	}
	if lib.Owner != p.signer {
		return nil, errs.New(errs.KindPermission,
			"library %q is owned by %s, not by the loaded wallet %s", cfg.Name, lib.Owner.Hex(), p.signer.Hex())
	}

	tmpPath := filepath.Join(p.TempDir, fmt.Sprintf("tpkm-%s-%d.tgz",
		strings.ToLower(p.signer.Hex()[2:10]), time.Now().UnixNano()))
	defer func() {
		if err := os.Remove(tmpPath); err != nil && !os.IsNotExist(err) {
			p.logger.Debugf("failed to remove temp archive %s: %s", tmpPath, err)
		}
	}()

	if err := p.buildArchive(dir, tmpPath); err != nil {
		return nil, err
	}

	cid, err := p.upload(ctx, tmpPath)
	if err != nil {
		return nil, err
	}
	p.logger.Debugf("uploaded archive for %s@%s as %s", cfg.Name, cfg.Version, cid)

	txHash, err := p.reg.PublishVersion(ctx, cfg.Name, cfg.Version, cid, deps)
	if err != nil {
		return nil, err
	}

	return &Result{
		Name:         cfg.Name,
		Version:      cfg.Version,
		CID:          cid,
		TxHash:       txHash,
		Dependencies: deps,
	}, nil
}

func (p *Publisher) buildArchive(dir, tmpPath string) error {
	f, err := os.Create(tmpPath)
	if err != nil {
		return errs.Wrap(errs.KindUnknown, err, "failed to create temp archive %s", tmpPath)
	}
	warn := func(format string, args ...any) {
		p.logger.Warnf(format, args...)
	}
	if err := archive.Pack(dir, f, warn); err != nil {
		f.Close()
		return errs.Wrap(errs.KindUnknown, err, "failed to archive %s: %s", dir, err)
	}
	return f.Close()
}

func (p *Publisher) upload(ctx context.Context, tmpPath string) (string, error) {
	f, err := os.Open(tmpPath)
	if err != nil {
		return "", errs.Wrap(errs.KindUnknown, err, "failed to reopen temp archive %s", tmpPath)
	}
	defer f.Close()
	return p.store.Add(ctx, f)
}
