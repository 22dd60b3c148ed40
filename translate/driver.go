package translate

import (
	"context"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/minios-linux/yamltr/workerpool"
)

// ---------------------------------------------------------------------------
// Whole documents
// ---------------------------------------------------------------------------

type keyResult struct {
	value *yaml.Node
	stats Stats
}

// Document translates every string value under root using at most workers
// concurrent jobs, one per top-level key. root may be a document node or its
// content node; the returned node has the same kind.
//
// The output keeps the input's key order regardless of completion order. A
// failure escaping a job, or ctx being cancelled, aborts the run: no node is
// returned and the error is.
func (t *Translator) Document(ctx context.Context, root *yaml.Node, workers int) (*yaml.Node, Stats, error) {
	var total Stats
	if root == nil {
		return nil, total, nil
	}

	body := root
	if root.Kind == yaml.DocumentNode {
		if len(root.Content) == 0 {
			return cloneNode(root), total, nil
		}
		body = root.Content[0]
	}

	var (
		out *yaml.Node
		err error
	)
	if body.Kind == yaml.MappingNode {
		out, total, err = t.fanOut(ctx, body, workers)
	} else {
		out, total, err = t.single(ctx, body, workers)
	}
	if err != nil {
		return nil, Stats{}, err
	}
	if err := ctx.Err(); err != nil {
		return nil, Stats{}, err
	}

	if root.Kind == yaml.DocumentNode {
		doc := shallowCopy(root)
		doc.Content = append(doc.Content, out)
		return doc, total, nil
	}
	return out, total, nil
}

// fanOut runs one job per top-level key and collects the results in
// submission order.
func (t *Translator) fanOut(ctx context.Context, m *yaml.Node, workers int) (*yaml.Node, Stats, error) {
	var total Stats

	// Jobs still running when one fails see their backend calls cancelled.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	pool, err := workerpool.New(workers, workerpool.WithPoolLogger(t.log))
	if err != nil {
		return nil, total, err
	}
	defer pool.Release()

	t.log.Info("Translating document", "keys", len(m.Content)/2, "workers", pool.Size())

	jobs := make([]*workerpool.Job[keyResult], 0, len(m.Content)/2)
	for i := 0; i+1 < len(m.Content); i += 2 {
		k, v := m.Content[i], m.Content[i+1]
		path := Path{k.Value}

		job, err := workerpool.Go(ctx, pool, func(ctx context.Context) (keyResult, error) {
			var st Stats
			out := t.walk(ctx, v, path, &st)
			return keyResult{value: out, stats: st}, nil
		})
		if err != nil {
			return nil, total, fmt.Errorf("translating key %q: %w", k.Value, err)
		}
		t.log.Debug("Job submitted", "job", job.ID(), "key", k.Value)
		jobs = append(jobs, job)
	}

	out := shallowCopy(m)
	for i, job := range jobs {
		k := m.Content[2*i]
		res, err := job.Wait(ctx)
		if err != nil {
			return nil, total, fmt.Errorf("translating key %q: %w", k.Value, err)
		}
		out.Content = append(out.Content, cloneNode(k), res.value)
		total.Merge(res.stats)
	}
	return out, total, nil
}

// single translates a non-mapping root as one job.
func (t *Translator) single(ctx context.Context, n *yaml.Node, workers int) (*yaml.Node, Stats, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	pool, err := workerpool.New(workers, workerpool.WithPoolLogger(t.log))
	if err != nil {
		return nil, Stats{}, err
	}
	defer pool.Release()

	job, err := workerpool.Go(ctx, pool, func(ctx context.Context) (keyResult, error) {
		var st Stats
		out := t.walk(ctx, n, nil, &st)
		return keyResult{value: out, stats: st}, nil
	})
	if err != nil {
		return nil, Stats{}, fmt.Errorf("translating document: %w", err)
	}
	res, err := job.Wait(ctx)
	if err != nil {
		return nil, Stats{}, fmt.Errorf("translating document: %w", err)
	}
	return res.value, res.stats, nil
}
