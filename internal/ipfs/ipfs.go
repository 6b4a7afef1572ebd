// Package ipfs wraps the Kubo HTTP RPC API for the two operations tpkm
// needs: adding an archive and streaming one back by CID.
package ipfs

import (
	"context"
	"io"
	"strings"

	shell "github.com/ipfs/go-ipfs-api"

	"github.com/tacopkm/tpkm/internal/errs"
)

// Client talks to one IPFS daemon.
type Client struct {
	sh     *shell.Shell
	apiURL string
}

// Dial prepares a client for apiURL. The URL may carry the /api/v0 suffix
// (the configured default does); the shell adds it back per request.
func Dial(apiURL string) *Client {
	base := strings.TrimSuffix(strings.TrimSuffix(apiURL, "/"), "/api/v0")
	return &Client{sh: shell.NewShell(base), apiURL: apiURL}
}

// Probe issues a version query. Any command that needs IPFS calls this
// first; failure means the daemon is unreachable and is fatal.
func (c *Client) Probe(ctx context.Context) error {
	var out struct {
		Version string `json:"Version"`
	}
	if err := c.sh.Request("version").Exec(ctx, &out); err != nil {
		return errs.Wrap(errs.KindIPFSUnreachable, err, "cannot reach IPFS daemon at %s", c.apiURL).
			WithHint("start the IPFS daemon or set IPFS_API_URL to a reachable node")
	}
	return nil
}

// Add stores r's bytes and returns the resulting CID. The object is pinned
// on the daemon.
func (c *Client) Add(ctx context.Context, r io.Reader) (string, error) {
	cid, err := c.sh.Add(r, shell.Pin(true))
	if err != nil {
		return "", errs.Wrap(errs.KindUnknown, err, "IPFS add failed: %s", err)
	}
	if cid == "" {
		return "", errs.New(errs.KindBadRecord, "IPFS daemon returned an empty CID")
	}
	return cid, nil
}

// Cat returns a stream of the object named by cid. The caller closes it.
func (c *Client) Cat(ctx context.Context, cid string) (io.ReadCloser, error) {
	resp, err := c.sh.Request("cat", cid).Send(ctx)
	if err != nil {
		return nil, c.classifyCat(err, cid)
	}
	if resp.Error != nil {
		resp.Close()
		return nil, c.classifyCat(resp.Error, cid)
	}
	return resp.Output, nil
}

// classifyCat maps the daemon's "DAG node not found" family of replies to
// IPFS_NOT_FOUND, keeping the offending CID in the message.
func (c *Client) classifyCat(err error, cid string) error {
	msg := strings.ToLower(err.Error())
	for _, marker := range []string{"not found", "no link named", "invalid path", "invalid cid"} {
		if strings.Contains(msg, marker) {
			return errs.Wrap(errs.KindIPFSNotFound, err, "IPFS object %s not found", cid).
				WithHint("the archive may not be pinned on any reachable node")
		}
	}
	return errs.Wrap(errs.KindUnknown, err, "IPFS cat %s failed: %s", cid, err)
}
