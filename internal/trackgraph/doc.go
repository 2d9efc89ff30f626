// Package trackgraph holds the track graph consumed by the motion analysis.
//
// Responsibilities: spots (point observations), edges linking temporally
// adjacent spots, and the Graph interface through which an upstream
// tracking framework hands tracks to the analysis.
// Key types: Spot, Edge, Graph, MemoryGraph.
//
// Dependency rule: trackgraph depends on nothing else in this module.
// Edges are stored undirected; callers that need direction compare frames.
package trackgraph
