// Package pkg provides the libraries behind the treemap tool.
//
// # Overview
//
// A treemap draws a weighted tree as nested rectangles whose areas follow
// the leaf weights. The pkg directory is organized as follows:
//
//  1. [treemap] - the engine: weighted nodes, layout, zoom, hit testing and
//     the [treemap.Map] façade; strategies live in treemap/split
//  2. [source] - TM3, XML and JSON readers producing trees of beans
//  3. [color] - value to color mapping for presentation
//  4. [export] - flat JSON snapshots of a laid-out map
//  5. [pipeline] - orchestration (load → layout → export) with caching
//  6. [cache], [session], [server] - infrastructure for the CLI and HTTP API
//  7. [config], [errors], [observability], [buildinfo] - ambient support
//
// # Architecture
//
//	TM3 / XML / JSON document
//	         ↓
//	    [source] package (parse into *treemap.Node with bean payloads)
//	         ↓
//	    [treemap] package (Layout with a split strategy, ZoomTo, Hit)
//	         ↓
//	    [export] package (rectangles with labels and fills)
//	         ↓
//	    layout JSON, terminal view or HTTP response
//
// # Quick Start
//
//	root, err := source.ReadFile("disk.tm3", source.Options{})
//	if err != nil {
//	    return err
//	}
//	m := treemap.NewMap(root, split.Squarified{})
//	m.SetViewport(treemap.Rect{W: 800, H: 600})
//	if err := m.Layout(); err != nil {
//	    return err
//	}
//	leaf, ok := m.Hit(120, 40)
//
// Most callers go through [pipeline.Runner], which adds validation, caching
// and observability hooks around the same steps.
package pkg
