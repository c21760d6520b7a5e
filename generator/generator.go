// Package generator drives a content set through fingerprinting, payload building
// and symbol emission, one symbol per page.
package generator

import (
	"fmt"
	"io"

	"github.com/ipfs/go-cid"
	"github.com/sirupsen/logrus"

	"github.com/composable-auto-assessment/generator/cidutil"
	"github.com/composable-auto-assessment/generator/errs"
	"github.com/composable-auto-assessment/generator/fingerprint"
	"github.com/composable-auto-assessment/generator/framing"
	"github.com/composable-auto-assessment/generator/manifest"
	"github.com/composable-auto-assessment/generator/metadata"
	"github.com/composable-auto-assessment/generator/payload"
	"github.com/composable-auto-assessment/generator/storage"
	"github.com/composable-auto-assessment/generator/symbol"
)

// Generator emits page sets. Encoder and Writer are required; the rest is optional.
type Generator struct {
	Encoder symbol.Encoder
	Writer  symbol.Writer

	// Algorithm selects the fingerprint function. Empty selects fingerprint.Default.
	Algorithm fingerprint.Algorithm

	// Archive, when set, receives the framed content before any page is emitted
	// and the set manifest after the last page.
	Archive storage.CAS

	Logger logrus.FieldLogger
}

// Report describes what EmitSet produced. On failure it still lists the pages
// that were written before the error; those outputs are not rolled back.
type Report struct {
	Fingerprint fingerprint.Fingerprint
	Names       []string
	ContentCID  cid.Cid
	ManifestCID cid.Cid
}

// OutputName returns the deterministic name for one page: "{prefix}-{set_id}-{page}".
func OutputName(prefix string, m metadata.Metadata) string {
	return prefix + "-" + m.String()
}

func (g *Generator) logger() logrus.FieldLogger {
	if g.Logger != nil {
		return g.Logger
	}
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func (g *Generator) algorithm() fingerprint.Algorithm {
	if g.Algorithm == "" {
		return fingerprint.Default
	}
	return g.Algorithm
}

// EmitSet fingerprints set once, then builds, encodes and writes one symbol for
// every page from 1 to terminal.Page, in order. The first failure stops the run.
func (g *Generator) EmitSet(set framing.ContentSet, terminal metadata.Metadata, prefix string) (Report, error) {
	var report Report
	if g.Encoder == nil || g.Writer == nil {
		return report, errs.New(errs.KindConfig, "generator.EmitSet", "Encoder and Writer are required")
	}
	seq, err := metadata.NewSequence(terminal)
	if err != nil {
		return report, err
	}

	alg := g.algorithm()
	framed := framing.Frame(set)
	fp, err := fingerprint.SumWith(alg, framed)
	if err != nil {
		return report, errs.Wrap(errs.KindConfig, "generator.EmitSet", "fingerprint", err)
	}
	report.Fingerprint = fp

	log := g.logger().WithFields(logrus.Fields{
		"fingerprint": fp.String(),
		"algorithm":   string(alg),
		"set":         terminal.SetID,
		"pages":       terminal.Page,
	})

	if g.Archive != nil {
		id, err := g.archiveContent(alg, fp, framed)
		if err != nil {
			return report, err
		}
		report.ContentCID = id
		log = log.WithField("content_cid", id.String())
	}

	report.Names = make([]string, 0, seq.Remaining())
	for m, ok := seq.Next(); ok; m, ok = seq.Next() {
		name := OutputName(prefix, m)
		if err := g.emitPage(fp, m, name); err != nil {
			log.WithError(err).WithField("page", m.Page).Error("page emission failed")
			return report, fmt.Errorf("page %s: %w", m, err)
		}
		report.Names = append(report.Names, name)
		log.WithField("name", name).Debug("page emitted")
	}

	if g.Archive != nil {
		id, err := g.archiveManifest(alg, fp, report, terminal, prefix)
		if err != nil {
			return report, err
		}
		report.ManifestCID = id
		log = log.WithField("manifest_cid", id.String())
	}

	log.Info("set emitted")
	return report, nil
}

func (g *Generator) emitPage(fp fingerprint.Fingerprint, m metadata.Metadata, name string) error {
	p, err := payload.Build(fp, m)
	if err != nil {
		return err
	}
	sym, err := g.Encoder.Encode(p)
	if err != nil {
		if errs.KindOf(err) == "" {
			err = errs.Wrap(errs.KindEncodingFailed, "generator.Encode", "encode "+name, err)
		}
		return err
	}
	if err := g.Writer.Write(sym, name); err != nil {
		if errs.KindOf(err) == "" {
			err = errs.Wrap(errs.KindOutputWriteFailed, "generator.Write", "write "+name, err)
		}
		return err
	}
	return nil
}

func (g *Generator) archiveContent(alg fingerprint.Algorithm, fp fingerprint.Fingerprint, framed []byte) (cid.Cid, error) {
	const op = "generator.Archive"
	id, err := g.Archive.Put(framed)
	if err != nil {
		return cid.Undef, errs.Wrap(errs.KindArchiveFailed, op, "store framed content", err)
	}
	gotAlg, gotFP, err := cidutil.Decode(id)
	if err != nil {
		return cid.Undef, errs.Wrap(errs.KindArchiveFailed, op, "decode content cid", err)
	}
	if gotAlg != alg || gotFP != fp {
		return cid.Undef, errs.Wrap(errs.KindArchiveFailed, op, fmt.Sprintf("archive addressed content as %s/%s", gotAlg, gotFP), storage.ErrCIDMismatch)
	}
	return id, nil
}

func (g *Generator) archiveManifest(alg fingerprint.Algorithm, fp fingerprint.Fingerprint, r Report, terminal metadata.Metadata, prefix string) (cid.Cid, error) {
	const op = "generator.Archive"
	b, err := manifest.Marshal(manifest.Manifest{
		Version:     manifest.Version,
		Algorithm:   alg,
		Fingerprint: fp,
		ContentCID:  r.ContentCID.String(),
		SetID:       terminal.SetID,
		Pages:       terminal.Page,
		Prefix:      prefix,
		Names:       r.Names,
	})
	if err != nil {
		return cid.Undef, errs.Wrap(errs.KindArchiveFailed, op, "encode manifest", err)
	}
	id, err := g.Archive.Put(b)
	if err != nil {
		return cid.Undef, errs.Wrap(errs.KindArchiveFailed, op, "store manifest", err)
	}
	return id, nil
}
