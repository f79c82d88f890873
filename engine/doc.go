// Package engine defines the contract between the mip front-end and the
// engines that solve its models.
//
// An Engine owns the numerical work. It stores the model as columns and
// rows, transforms it, accepts primal candidates and runs the actual
// solve; the front-end in package mip validates input, forwards calls
// and keeps handles. Engines register themselves by name (see Register)
// so callers can select one at session creation.
//
// Engines follow a three stage lifecycle. In StageProblem the model is
// mutable. Transform moves the engine to StageTransformed, where primal
// candidates can be built and offered. Solve leaves the engine in
// StageSolved with a Status, and FreeTransform returns it to
// StageProblem, dropping candidates and results. Calls made in the
// wrong stage fail with CodeInvalidCall.
package engine
