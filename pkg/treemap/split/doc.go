// Package split provides the rectangle subdivision strategies for treemap
// layouts.
//
// Every strategy implements [treemap.Strategy]: a pure function from a
// rectangle and an ordered list of weights to one rectangle per weight.
//
//   - [Squarified]: rows along the shorter side, minimizing elongation (default)
//   - [SortedWeightOrder]: balanced binary cuts over items sorted by weight
//   - [WeightOrder]: balanced binary cuts in item order
//   - [Slice]: parallel strips in item order
//   - [EqualCount]: binary cuts by item count
//
// Strategies can be looked up by name with [ByName], which is how the CLI,
// the configuration file and the HTTP API select them.
package split
