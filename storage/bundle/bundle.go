// Package bundle moves archive objects between stores as deterministic TAR files.
package bundle

import (
	"archive/tar"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/ipfs/go-cid"

	"github.com/composable-auto-assessment/generator/cidutil"
	"github.com/composable-auto-assessment/generator/storage"
)

// FormatVersion is the current bundle index schema version.
const FormatVersion = 1

const (
	indexName   = "index.json"
	blockPrefix = "objects/"
)

var epoch0 = time.Unix(0, 0).UTC()

// ExportOptions controls bundle export behavior.
type ExportOptions struct {
	// Labels is optional, non-authoritative metadata mapping names (e.g. output
	// prefixes) to CIDs.
	Labels map[string]cid.Cid
	// IncludeIndex controls whether index.json is included.
	IncludeIndex bool
}

// Export writes a TAR bundle holding the objects for ids.
//
// Entry order is lexicographic and headers are normalized, so the same objects
// always produce the same bytes. Every object is checked against its CID first.
func Export(w io.Writer, cas storage.CAS, ids []cid.Cid, opts ExportOptions) error {
	if cas == nil {
		return fmt.Errorf("bundle: nil archive")
	}

	uniq := make(map[string]cid.Cid, len(ids))
	for _, id := range ids {
		if !id.Defined() {
			return storage.ErrInvalidCID
		}
		uniq[id.String()] = id
	}
	names := make([]string, 0, len(uniq))
	for s := range uniq {
		names = append(names, s)
	}
	sort.Strings(names)

	tw := tar.NewWriter(w)
	fail := func(err error) error {
		_ = tw.Close()
		return err
	}

	objects := make([]indexObject, 0, len(names))
	for _, s := range names {
		id := uniq[s]
		b, err := cas.Get(id)
		if err != nil {
			return fail(err)
		}
		if !cidutil.Matches(id, b) {
			return fail(storage.ErrCIDMismatch)
		}
		alg, _, err := cidutil.Decode(id)
		if err != nil {
			return fail(err)
		}
		if err := writeFile(tw, blockPrefix+s, b); err != nil {
			return fail(err)
		}
		objects = append(objects, indexObject{CID: s, Algorithm: string(alg), Size: len(b)})
	}

	if opts.IncludeIndex {
		idx := indexJSON{Version: FormatVersion, CIDCodec: "raw", Objects: objects}
		if len(opts.Labels) > 0 {
			keys := make([]string, 0, len(opts.Labels))
			for k := range opts.Labels {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				if k == "" {
					return fail(fmt.Errorf("bundle: empty label key"))
				}
				v := opts.Labels[k]
				if !v.Defined() {
					return fail(storage.ErrInvalidCID)
				}
				idx.Labels = append(idx.Labels, indexLabel{Name: k, CID: v.String()})
			}
		}
		b, err := json.Marshal(idx)
		if err != nil {
			return fail(err)
		}
		if err := writeFile(tw, indexName, append(b, '\n')); err != nil {
			return fail(err)
		}
	}

	return tw.Close()
}

// ImportOptions controls bundle import behavior.
type ImportOptions struct {
	// IgnoreUnknown skips unknown TAR entries instead of failing.
	IgnoreUnknown bool
}

// Import reads a bundle from r into cas, failing on unknown entries.
//
// Objects are re-put, so cas must address new objects with the same algorithm
// the bundle's CIDs name; otherwise Import fails with storage.ErrCIDMismatch.
func Import(r io.Reader, cas storage.CAS) (int, error) {
	return ImportWithOptions(r, cas, ImportOptions{})
}

// ImportWithOptions is Import with explicit options. It returns the number of
// objects imported.
func ImportWithOptions(r io.Reader, cas storage.CAS, opts ImportOptions) (int, error) {
	if cas == nil {
		return 0, fmt.Errorf("bundle: nil archive")
	}

	tr := tar.NewReader(r)
	seen := map[string]struct{}{}

	for {
		h, err := tr.Next()
		if err == io.EOF {
			return len(seen), nil
		}
		if err != nil {
			return len(seen), err
		}
		name := cleanTarPath(h.Name)
		if name == "" {
			return len(seen), fmt.Errorf("bundle: invalid entry path: %q", h.Name)
		}
		if h.Typeflag != tar.TypeReg {
			if opts.IgnoreUnknown {
				continue
			}
			return len(seen), fmt.Errorf("bundle: unexpected tar entry type: %v (%s)", h.Typeflag, name)
		}
		if name == indexName {
			_, _ = io.Copy(io.Discard, tr)
			continue
		}
		if !strings.HasPrefix(name, blockPrefix) {
			if opts.IgnoreUnknown {
				_, _ = io.Copy(io.Discard, tr)
				continue
			}
			return len(seen), fmt.Errorf("bundle: unknown entry: %s", name)
		}

		id, derr := cid.Decode(strings.TrimPrefix(name, blockPrefix))
		if derr != nil || !id.Defined() {
			return len(seen), storage.ErrInvalidCID
		}
		data, rerr := io.ReadAll(tr)
		if rerr != nil {
			return len(seen), rerr
		}
		if !cidutil.Matches(id, data) {
			return len(seen), storage.ErrCIDMismatch
		}
		key := id.String()
		if _, ok := seen[key]; ok {
			return len(seen), fmt.Errorf("bundle: duplicate object entry: %s", key)
		}

		putID, perr := cas.Put(data)
		if perr != nil {
			return len(seen), perr
		}
		if !putID.Equals(id) {
			return len(seen), storage.ErrCIDMismatch
		}
		seen[key] = struct{}{}
	}
}

type indexJSON struct {
	Version  int           `json:"version"`
	CIDCodec string        `json:"cidCodec"`
	Objects  []indexObject `json:"objects"`
	Labels   []indexLabel  `json:"labels,omitempty"`
}

type indexObject struct {
	CID       string `json:"cid"`
	Algorithm string `json:"algorithm"`
	Size      int    `json:"size"`
}

type indexLabel struct {
	Name string `json:"name"`
	CID  string `json:"cid"`
}

func writeFile(tw *tar.Writer, name string, content []byte) error {
	hdr := &tar.Header{
		Name:     name,
		Mode:     0o644,
		Size:     int64(len(content)),
		ModTime:  epoch0,
		Typeflag: tar.TypeReg,
	}
	if err := tw.WriteHeader(hdr); err != nil {
		return err
	}
	_, err := io.Copy(tw, bytes.NewReader(content))
	return err
}

func cleanTarPath(name string) string {
	name = strings.TrimSpace(name)
	name = strings.ReplaceAll(name, "\\", "/")
	name = strings.TrimPrefix(name, "./")
	name = strings.TrimPrefix(name, "/")
	if name == "" {
		return ""
	}
	parts := strings.Split(name, "/")
	for _, part := range parts {
		if part == "" || part == "." || part == ".." {
			return ""
		}
	}
	return strings.Join(parts, "/")
}
