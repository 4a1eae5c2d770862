package main

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

type batchCmd struct {
	Jobs int `short:"j" default:"4" help:"Documents processed at once"`

	Manifest string `arg:"" name:"manifest" help:"JSON list of jobs" type:"existingfile"`
}

// Run processes every job of the manifest. Jobs share nothing but the
// configuration; each opens, renders and saves its own document. Paths in
// the manifest are relative to the manifest's directory.
func (b *batchCmd) Run(e *env) error {
	data, err := os.ReadFile(b.Manifest)
	if err != nil {
		return err
	}

	var jobs []job
	if err := json.Unmarshal(data, &jobs); err != nil {
		return errors.Wrap(err, "parse manifest")
	}

	base := filepath.Dir(b.Manifest)
	for i := range jobs {
		jobs[i] = resolvePaths(base, jobs[i])
	}

	limit := b.Jobs
	if limit < 1 {
		limit = 1
	}
	sem := make(chan struct{}, limit)

	g, ctx := errgroup.WithContext(context.Background())

	for i := range jobs {
		j := jobs[i]

		g.Go(func() error {
			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				return ctx.Err()
			}
			defer func() { <-sem }()

			if err := runJob(e, j); err != nil {
				return errors.Wrapf(err, "job %s", j.Input)
			}

			e.log.WithField("output", j.Output).Info("job done")
			return nil
		})
	}

	return g.Wait()
}

func resolvePaths(base string, j job) job {
	abs := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(base, p)
	}

	j.Input = abs(j.Input)
	j.Annotations = abs(j.Annotations)
	j.Stamps = abs(j.Stamps)
	j.Output = abs(j.Output)

	images := make(map[string]string, len(j.Images))
	for k, v := range j.Images {
		images[k] = abs(v)
	}
	j.Images = images

	return j
}
