// Package classpath implements the classpath-discovery half of cpscan's
// core: turning a raw, ordered list of classpath strings into a
// deduplicated, canonically ordered list of valid roots, following the
// transitive closure induced by archive manifests.
/*
 * Copyright (c) 2024, NVIDIA CORPORATION. All rights reserved.
 */
package classpath

import (
	"context"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/NVIDIA/cpscan/api"
	"github.com/NVIDIA/cpscan/cmn/cos"
	"github.com/NVIDIA/cpscan/cmn/nlog"
)

// Resolver drives the priority-queue worker pool described in the core's
// component design: validate, order, dedup, and expand manifest-referenced
// archives, emitting a canonicalized classpath in precedence order.
type Resolver struct {
	Spec     api.ScanSpec
	Provider RawClasspathProvider
	Manifest ManifestParser
	Metrics  *Metrics // optional; nil disables instrumentation

	resolver PathResolver
}

// Resolve runs to completion and returns the deduplicated, canonicalized
// classpath in precedence order. Context cancellation (including a caller
// timeout) propagates as ErrInterrupted to every worker via the same path
// an internal failure would.
func (r *Resolver) Resolve(ctx context.Context) ([]string, error) {
	raw, err := r.Provider.RawClasspath()
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, nil
	}

	q := newWorkQueue()
	claims := newClaimMap()
	jre := newJREPathCache()
	out := newValidOut()

	for i, rawPath := range raw {
		q.push(&workItem{elem: &OrderedClasspathElement{
			Key:     RootKey(i, len(raw)),
			RawPath: rawPath,
		}})
	}
	if r.Metrics != nil {
		r.Metrics.setQueueDepth(float64(len(raw)))
	}

	workers := r.Spec.Workers
	if workers < 1 {
		workers = 1
	}

	g, gctx := errgroup.WithContext(ctx)
	stopWatch := make(chan struct{})
	go func() {
		select {
		case <-gctx.Done():
			q.kill()
		case <-stopWatch:
		}
	}()

	st := &dedupState{
		resolver:          r.resolver,
		blacklistSystem:   r.Spec.BlacklistSystemJars,
		knownJREPaths:     jre,
		pathToEarliestKey: claims,
	}

	worker := func() error {
		for {
			if gctx.Err() != nil {
				return cos.ErrInterrupted
			}
			wi, ok := q.pop()
			if !ok {
				if gctx.Err() != nil {
					return cos.ErrInterrupted
				}
				return nil
			}
			r.process(wi.elem, st, q, out)
		}
	}

	// the calling goroutine always runs one worker so Workers=1 still
	// makes progress; the remaining Workers-1 are spawned.
	for i := 1; i < workers; i++ {
		g.Go(worker)
	}
	callerErr := worker()
	waitErr := g.Wait()
	close(stopWatch)

	if callerErr != nil {
		return nil, callerErr
	}
	if waitErr != nil {
		return nil, waitErr
	}

	accepted := out.drain()
	paths := make([]string, len(accepted))
	for i, e := range accepted {
		paths[i] = e.canonicalPath
	}
	return paths, nil
}

// process validates one element, reports the outcome to the queue's
// remaining counter on every exit path, and on acceptance both records the
// element and attempts manifest expansion.
func (r *Resolver) process(elem *OrderedClasspathElement, st *dedupState, q *workQueue, out *validOut) {
	defer func() {
		q.done()
		if r.Metrics != nil {
			q.mu.Lock()
			n := q.remaining
			q.mu.Unlock()
			r.Metrics.setQueueDepth(float64(n))
		}
	}()

	accept, err := elem.Validate(st)
	if err != nil {
		nlog.Warningf("classpath: %s: %v", elem.RawPath, err)
		return
	}
	if !accept {
		if r.Metrics != nil {
			r.Metrics.rejected.Inc()
		}
		return
	}
	if r.Metrics != nil {
		r.Metrics.accepted.Inc()
	}
	out.add(elem)

	if !elem.IsFile() || r.Manifest == nil {
		return
	}
	r.expandManifest(elem, q)
}

// expandManifest parses the archive's Class-Path header (if any) and
// enqueues one child work item per space-delimited reference, at a key
// immediately following elem's and strictly preceding elem's next sibling.
func (r *Resolver) expandManifest(elem *OrderedClasspathElement, q *workQueue) {
	value, ok, err := r.Manifest.ClassPath(elem.canonicalPath)
	if err != nil {
		nlog.Warningf("classpath: %s: manifest read failed: %v", elem.canonicalPath, err)
		return
	}
	if !ok {
		return
	}
	refs := strings.Fields(value)
	if len(refs) == 0 {
		return
	}
	parentDir := elem.Dir(r.resolver)
	for i, ref := range refs {
		q.push(&workItem{elem: &OrderedClasspathElement{
			Key:        elem.Key.Child(i, len(refs)),
			ParentPath: parentDir,
			RawPath:    ref,
		}})
	}
}
