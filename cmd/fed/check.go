package main

import (
	"context"
	"fmt"

	"github.com/fedflow/fedflow/encode"
	"github.com/fedflow/fedflow/manifest"
	"github.com/fedflow/fedflow/value"

	diffpatch "github.com/sergi/go-diff/diffmatchpatch"
	"github.com/scott-cotton/cli"
)

func check(cfg *CheckConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Check.Parse(cc, args)
	if err != nil {
		return err
	}
	m, s, err := loadSet(manifestPath(args))
	if err != nil {
		return err
	}
	results, err := m.RunExamples(context.Background(), s)
	if err != nil {
		return err
	}
	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
			fmt.Fprintf(cc.Out, "FAIL %s: %v\n", r.Name, r.Err)
			continue
		}
		if r.Pass {
			fmt.Fprintf(cc.Out, "ok   %s\n", r.Name)
			continue
		}
		failed++
		fmt.Fprintf(cc.Out, "FAIL %s:\n%s", r.Name, renderDiff(s, r))
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d examples failed", failed, len(results))
	}
	return nil
}

// renderDiff shows got vs want in display notation, as a character diff
// when both render.
func renderDiff(s *manifest.Set, r manifest.ExampleResult) string {
	c := s.Lookup(r.Comp)
	result := c.TypeSignature().Result
	got, gerr := value.FromGo(r.Got, result)
	want, werr := value.FromGo(r.Want, result)
	if gerr != nil || werr != nil {
		return fmt.Sprintf("  got  %v\n  want %v\n", r.Got, r.Want)
	}
	gs := encode.MustString(got)
	ws := encode.MustString(want)
	dmp := diffpatch.New()
	diffs := dmp.DiffMain(ws, gs, false)
	return fmt.Sprintf("  got  %s\n  want %s\n  diff %s\n", gs, ws, dmp.DiffPrettyText(diffs))
}
