// Package info assembles the library / version / access view shown by
// 'tpkm info'.
package info

import (
	"context"
	"sort"

	"github.com/Masterminds/semver"
	"github.com/ethereum/go-ethereum/common"

	"github.com/tacopkm/tpkm/internal/access"
	"github.com/tacopkm/tpkm/internal/chain"
	"github.com/tacopkm/tpkm/internal/errs"
)

// Registry is the read surface the view needs.
type Registry interface {
	access.Registry
	LibraryInfo(ctx context.Context, name string) (*chain.LibraryInfo, error)
	VersionNumbers(ctx context.Context, name string) ([]string, error)
	VersionInfo(ctx context.Context, name, version string) (*chain.VersionInfo, error)
}

// View is everything the command renders. Restricted views carry the
// library record and the access note but no version data.
type View struct {
	Name       string
	Library    *chain.LibraryInfo
	Access     access.State
	AccessNote string
	Restricted bool

	Versions      []string
	VersionNumber string
	Version       *chain.VersionInfo
}

// Build fetches the records for name and gates the detail level on the
// caller's access. When version is non-empty the version record is
// included; listVersions adds the full version list sorted ascending.
func Build(ctx context.Context, reg Registry, name, version string, listVersions bool, caller *common.Address) (*View, error) {
	lib, err := reg.LibraryInfo(ctx, name)
	if err != nil {
		return nil, err
	}
	state, err := access.Determine(ctx, reg, name, lib, caller)
	if err != nil {
		return nil, err
	}
	v := &View{
		Name:       name,
		Library:    lib,
		Access:     state,
		AccessNote: access.Explain(state, name, lib),
	}
	if !access.Viewable(state, lib) {
		v.Restricted = true
		return v, nil
	}

	if listVersions {
		raw, err := reg.VersionNumbers(ctx, name)
		if err != nil && !errs.IsKind(err, errs.KindNotFound) {
			return nil, err
		}
		v.Versions = sortVersions(raw)
	}

	if version != "" {
		vi, err := reg.VersionInfo(ctx, name, version)
		if err != nil {
			return nil, err
		}
		v.VersionNumber = version
		v.Version = vi
	}
	return v, nil
}

// sortVersions orders parseable versions ascending by semver; unparseable
// strings keep their on-chain order at the end.
func sortVersions(raw []string) []string {
	type entry struct {
		s string
		v *semver.Version
	}
	parsed := make([]entry, 0, len(raw))
	var malformed []string
	for _, s := range raw {
		v, err := semver.NewVersion(s)
		if err != nil {
			malformed = append(malformed, s)
			continue
		}
		parsed = append(parsed, entry{s: s, v: v})
	}
	sort.SliceStable(parsed, func(i, j int) bool {
		return parsed[i].v.LessThan(parsed[j].v)
	})
	out := make([]string, 0, len(raw))
	for _, e := range parsed {
		out = append(out, e.s)
	}
	return append(out, malformed...)
}
