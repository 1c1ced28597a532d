package controller

import "vellum/geom"

// DepGraph tracks the formula access graph as two maps beside the grid —
// forward (cell -> cells it reads) and reverse (cell -> cells that read it)
// — plus the ordered "cells to compute" work list the compute loop drains.
// No cyclic ownership: entries are removed when a code or formula cell is
// deleted.
type DepGraph struct {
	forward map[geom.SheetPosition][]geom.SheetPosition
	reverse map[geom.SheetPosition][]geom.SheetPosition

	queue      []geom.SheetPosition
	queued     map[geom.SheetPosition]bool
	evaluating map[geom.SheetPosition]bool
}

// NewDepGraph returns an empty dependency graph.
func NewDepGraph() *DepGraph {
	return &DepGraph{
		forward:    make(map[geom.SheetPosition][]geom.SheetPosition),
		reverse:    make(map[geom.SheetPosition][]geom.SheetPosition),
		queued:     make(map[geom.SheetPosition]bool),
		evaluating: make(map[geom.SheetPosition]bool),
	}
}

// Enqueue adds pos to the compute work list if it isn't already pending.
func (g *DepGraph) Enqueue(pos geom.SheetPosition) {
	if g.queued[pos] {
		return
	}
	g.queued[pos] = true
	g.queue = append(g.queue, pos)
}

// EnqueueDependents adds every cell that last read pos to the work list —
// called after pos's value changes, so its dependents recompute.
func (g *DepGraph) EnqueueDependents(pos geom.SheetPosition) {
	for _, dep := range g.reverse[pos] {
		g.Enqueue(dep)
	}
}

// PopQueue removes and returns the oldest pending position, or false if the
// work list is empty.
func (g *DepGraph) PopQueue() (geom.SheetPosition, bool) {
	if len(g.queue) == 0 {
		return geom.SheetPosition{}, false
	}
	pos := g.queue[0]
	g.queue = g.queue[1:]
	delete(g.queued, pos)
	return pos, true
}

// Clear empties the work list without touching the recorded dependency
// edges. No code path in this package calls it.
func (g *DepGraph) Clear() {
	g.queue = nil
	g.queued = make(map[geom.SheetPosition]bool)
}

// BeginEvaluating marks pos as currently being evaluated, for cycle
// detection, and reports whether pos was already on the evaluation stack
// (a self-referential or mutually-referential cycle).
func (g *DepGraph) BeginEvaluating(pos geom.SheetPosition) bool {
	if g.evaluating[pos] {
		return true
	}
	g.evaluating[pos] = true
	return false
}

// EndEvaluating clears pos's in-progress marker once its evaluation
// (successful or not) completes.
func (g *DepGraph) EndEvaluating(pos geom.SheetPosition) {
	delete(g.evaluating, pos)
}

// RecordAccesses replaces pos's recorded dependencies with accesses,
// updating the reverse index so each newly- or no-longer-read cell's
// dependent set stays accurate.
func (g *DepGraph) RecordAccesses(pos geom.SheetPosition, accesses []geom.SheetPosition) {
	g.removeForward(pos)
	deduped := dedupPositions(accesses)
	if len(deduped) == 0 {
		delete(g.forward, pos)
		return
	}
	g.forward[pos] = deduped
	for _, dep := range deduped {
		g.reverse[dep] = appendUnique(g.reverse[dep], pos)
	}
}

// Remove drops every edge touching pos, both as a dependent and as a
// dependency, used when a code or formula cell is deleted.
func (g *DepGraph) Remove(pos geom.SheetPosition) {
	g.removeForward(pos)
	delete(g.forward, pos)
	for dep := range g.reverse {
		g.reverse[dep] = removePosition(g.reverse[dep], pos)
	}
	delete(g.reverse, pos)
}

func (g *DepGraph) removeForward(pos geom.SheetPosition) {
	for _, dep := range g.forward[pos] {
		g.reverse[dep] = removePosition(g.reverse[dep], pos)
	}
}

func dedupPositions(in []geom.SheetPosition) []geom.SheetPosition {
	seen := make(map[geom.SheetPosition]bool, len(in))
	var out []geom.SheetPosition
	for _, p := range in {
		if seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out
}

func appendUnique(list []geom.SheetPosition, pos geom.SheetPosition) []geom.SheetPosition {
	for _, p := range list {
		if p == pos {
			return list
		}
	}
	return append(list, pos)
}

func removePosition(list []geom.SheetPosition, pos geom.SheetPosition) []geom.SheetPosition {
	for i, p := range list {
		if p == pos {
			return append(list[:i], list[i+1:]...)
		}
	}
	return list
}
