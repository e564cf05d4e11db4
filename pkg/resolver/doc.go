// Package resolver completes a scaffolded package descriptor.
//
// A Pipeline runs the scaffolding tool, loads the descriptor it generated,
// walks the repository's remote resources (repository, owner, license,
// default-branch head, tags), probes the project tree for a version source and
// an icon, and writes the eleven metadata fields back in place. Every step runs
// in order and the first failure aborts the run; whatever the scaffolding tool
// wrote is left on disk.
package resolver
