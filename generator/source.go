package generator

import (
	"os"

	"github.com/composable-auto-assessment/generator/errs"
	"github.com/composable-auto-assessment/generator/framing"
	"github.com/composable-auto-assessment/generator/metadata"
)

// ReadContentSet reads each path in order into one ContentSet.
func ReadContentSet(paths ...string) (framing.ContentSet, error) {
	if len(paths) == 0 {
		return nil, errs.New(errs.KindInputUnavailable, "generator.ReadContentSet", "no input files")
	}
	set := make(framing.ContentSet, 0, len(paths))
	for _, p := range paths {
		b, err := os.ReadFile(p)
		if err != nil {
			return nil, errs.Wrap(errs.KindInputUnavailable, "generator.ReadContentSet", "read "+p, err)
		}
		set = append(set, b)
	}
	return set, nil
}

// EmitFiles reads paths and emits them as one set.
func (g *Generator) EmitFiles(paths []string, terminal metadata.Metadata, prefix string) (Report, error) {
	set, err := ReadContentSet(paths...)
	if err != nil {
		return Report{}, err
	}
	return g.EmitSet(set, terminal, prefix)
}
