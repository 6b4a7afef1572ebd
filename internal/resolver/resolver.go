// Package resolver implements recursive dependency resolution and
// installation: depth-first semver selection with cycle and conflict
// detection, access pre-flight, and streaming extraction from the
// content-addressed store.
package resolver

import (
	"context"
	"io"
	"path/filepath"
	"strings"

	"github.com/Masterminds/semver"
	"github.com/charmbracelet/log"
	"github.com/ethereum/go-ethereum/common"

	"github.com/tacopkm/tpkm/internal/access"
	"github.com/tacopkm/tpkm/internal/archive"
	"github.com/tacopkm/tpkm/internal/chain"
	"github.com/tacopkm/tpkm/internal/errs"
	"github.com/tacopkm/tpkm/internal/util"
)

// DefaultInstallRoot is where installed libraries land, relative to the
// caller's working directory.
const DefaultInstallRoot = "tpkm_installed_libs"

// Registry is the on-chain read surface the resolver consumes.
type Registry interface {
	LibraryInfo(ctx context.Context, name string) (*chain.LibraryInfo, error)
	VersionNumbers(ctx context.Context, name string) ([]string, error)
	VersionInfo(ctx context.Context, name, version string) (*chain.VersionInfo, error)
	HasAccess(ctx context.Context, name string, user common.Address) (bool, error)
}

// Store streams archive bytes by CID.
type Store interface {
	Cat(ctx context.Context, cid string) (io.ReadCloser, error)
}

// ResolvedSet maps each library touched in one run to the exact version
// chosen for it. Every constraint seen for a name during the run is
// satisfied by its entry.
type ResolvedSet map[string]*semver.Version

// Installer drives one install run. Resolution is strictly sequential and
// depth-first: the resolved set is the conflict oracle and must see every
// decision before the next one is made.
type Installer struct {
	reg    Registry
	store  Store
	logger *log.Logger
	root   string
	caller *common.Address

	// OnInstalled is called after each library is extracted.
	OnInstalled func(name, version string)
}

// New builds an installer rooted at root. A nil caller skips the access
// pre-flight (the contract still enforces it server-side).
func New(reg Registry, store Store, logger *log.Logger, root string, caller *common.Address) *Installer {
	if root == "" {
		root = DefaultInstallRoot
	}
	return &Installer{reg: reg, store: store, logger: logger, root: root, caller: caller}
}

// Root returns the install root directory.
func (in *Installer) Root() string {
	return in.root
}

// Install resolves and installs name plus its transitive dependencies.
// An empty spec means "latest stable": the highest non-prerelease version
// becomes the top-level constraint. On failure, directories extracted so
// far stay on disk as a best-effort cache; the resolved set is discarded.
func (in *Installer) Install(ctx context.Context, name, spec string) (ResolvedSet, error) {
	if err := util.ValidateLibraryName(name); err != nil {
		return nil, errs.New(errs.KindValidation, "%s", err)
	}
	constraint := spec
	if constraint == "" {
		latest, err := in.latestStable(ctx, name)
		if err != nil {
			return nil, err
		}
		constraint = latest.String()
		in.logger.Debugf("resolved latest stable of %q to %s", name, constraint)
	}

	if in.caller != nil {
		granted, err := in.reg.HasAccess(ctx, name, *in.caller)
		if err != nil {
			return nil, err
		}
		if !granted {
			return nil, in.denial(ctx, name)
		}
	}

	resolved := make(ResolvedSet)
	if err := in.resolve(ctx, name, constraint, nil, resolved); err != nil {
		return nil, err
	}
	return resolved, nil
}

// latestStable picks the highest non-prerelease published version.
func (in *Installer) latestStable(ctx context.Context, name string) (*semver.Version, error) {
	available, err := in.versions(ctx, name)
	if err != nil {
		return nil, err
	}
	var latest *semver.Version
	for _, v := range available {
		if v.Prerelease() != "" {
			continue
		}
		if latest == nil || v.GreaterThan(latest) {
			latest = v
		}
	}
	if latest == nil {
		return nil, errs.New(errs.KindNotFound, "library %q has no stable versions", name).
			WithHint("pre-release versions must be requested explicitly, e.g. 'tpkm install %s@<version>'", name)
	}
	return latest, nil
}

func (in *Installer) resolve(ctx context.Context, name, constraint string, via []string, resolved ResolvedSet) error {
	rng, err := semver.NewConstraint(constraint)
	if err != nil {
		return errs.New(errs.KindValidation, "invalid version constraint %q for %q%s", constraint, name, viaSuffix(via))
	}

	if existing, ok := resolved[name]; ok {
		if rng.Check(existing) {
			in.logger.Debugf("%q already resolved to %s, satisfies %q", name, existing, constraint)
			return nil
		}
		return errs.New(errs.KindConflict,
			"version conflict for %q: already resolved to %s, but %q is required%s",
			name, existing, constraint, viaSuffix(via)).
			WithReason(errs.ReasonVersionConflict)
	}

	available, err := in.versions(ctx, name)
	if err != nil {
		return err
	}
	chosen := maxSatisfying(available, rng)
	if chosen == nil {
		return errs.New(errs.KindNotFound,
			"no published version of %q satisfies %q (available: %s)%s",
			name, constraint, versionList(available), viaSuffix(via))
	}

	if in.caller != nil {
		granted, err := in.reg.HasAccess(ctx, name, *in.caller)
		if err != nil {
			return err
		}
		if !granted {
			return in.denial(ctx, name)
		}
	}

	// mark before any side effect so cycles terminate
	resolved[name] = chosen

	vi, err := in.reg.VersionInfo(ctx, name, chosen.String())
	if err != nil {
		return err
	}
	if badCID(vi.IPFSHash) {
		delete(resolved, name)
		return errs.New(errs.KindBadRecord, "version %s of %q has no usable IPFS hash on-chain", chosen, name)
	}
	if vi.Deprecated {
		in.logger.Warnf("%s@%s is deprecated%s", name, chosen, viaSuffix(via))
	}

	target := filepath.Join(in.root, name, chosen.String())
	if err := in.download(ctx, vi.IPFSHash, target); err != nil {
		return err
	}
	in.logger.Debugf("installed %s@%s into %s", name, chosen, target)
	if in.OnInstalled != nil {
		in.OnInstalled(name, chosen.String())
	}

	childVia := append(via, name+"@"+chosen.String())
	for _, dep := range vi.Dependencies {
		if dep.Name == "" || dep.Constraint == "" {
			return errs.New(errs.KindValidation, "version %s of %q carries a malformed dependency entry", chosen, name)
		}
		if err := in.resolve(ctx, dep.Name, dep.Constraint, childVia, resolved); err != nil {
			return err
		}
	}
	return nil
}

func (in *Installer) download(ctx context.Context, cid, target string) error {
	rc, err := in.store.Cat(ctx, cid)
	if err != nil {
		return err
	}
	defer rc.Close()
	if err := archive.Extract(rc, target); err != nil {
		return errs.Wrap(errs.KindBadRecord, err, "archive %s is not a valid tpkm package: %s", cid, err)
	}
	return nil
}

// versions fetches and parses the published version list, skipping strings
// that are not valid semver.
func (in *Installer) versions(ctx context.Context, name string) ([]*semver.Version, error) {
	raw, err := in.reg.VersionNumbers(ctx, name)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, errs.New(errs.KindNotFound, "library %q has no published versions", name)
	}
	parsed := make([]*semver.Version, 0, len(raw))
	for _, s := range raw {
		v, err := semver.NewVersion(s)
		if err != nil {
			in.logger.Debugf("skipping malformed on-chain version %q of %q", s, name)
			continue
		}
		parsed = append(parsed, v)
	}
	if len(parsed) == 0 {
		return nil, errs.New(errs.KindNotFound, "library %q has no parseable versions", name)
	}
	return parsed, nil
}

// denial composes the access-denied abort for name by inspecting its
// library record.
func (in *Installer) denial(ctx context.Context, name string) error {
	lib, err := in.reg.LibraryInfo(ctx, name)
	if err != nil {
		return errs.New(errs.KindPermission, "access to %q denied", name)
	}
	state := access.PrivateUnauthorized
	if lib.LicenseRequired {
		state = access.PublicLicensedUnowned
	}
	return access.Denial(state, name, lib)
}

// maxSatisfying returns the highest version matching rng, or nil.
// Prereleases only match when the constraint explicitly admits them.
func maxSatisfying(available []*semver.Version, rng *semver.Constraints) *semver.Version {
	var best *semver.Version
	for _, v := range available {
		if !rng.Check(v) {
			continue
		}
		if best == nil || v.GreaterThan(best) {
			best = v
		}
	}
	return best
}

// badCID detects the empty / null-like / zero-sentinel hashes some registry
// versions carry instead of a CID.
func badCID(s string) bool {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "", "null", "nil", "undefined":
		return true
	}
	if rest, ok := strings.CutPrefix(s, "0x"); ok {
		return strings.Count(rest, "0") == len(rest)
	}
	return false
}

func versionList(versions []*semver.Version) string {
	parts := make([]string, len(versions))
	for i, v := range versions {
		parts[i] = v.String()
	}
	return strings.Join(parts, ", ")
}

func viaSuffix(via []string) string {
	if len(via) == 0 {
		return ""
	}
	return " (required via " + strings.Join(via, " > ") + ")"
}
