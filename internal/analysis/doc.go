// Package analysis computes read-only projections of a study's codes and
// excerpts: co-occurrence pairs, hierarchy trees, usage counts and graphs.
//
// Every function is pure. The usage counters here are the only place code
// usage is computed; the study package copies their results into the cached
// Code fields, so cached and fresh counts cannot disagree.
package analysis
