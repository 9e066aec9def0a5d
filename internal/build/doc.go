// Package build runs a site build as an ordered pipeline of named stages.
//
// A Builder discovers templates, resolves plugins, resets the destination, runs
// beforeBuild hooks, renders content items and static templates, computes the set
// of source paths that must not be copied, copies the remaining source tree and
// finally runs afterBuild hooks. Stages run sequentially; the first failing stage
// aborts the build and the context is checked between stages.
package build
