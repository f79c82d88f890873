// Package milo provides mixed-integer linear optimization through
// exchangeable solver engines and a high level API to build models.
//
// milo ships the following engines:
//   - relax (pure Go root-node solver, the default)
//   - scip (drives a SCIP binary found on the PATH)
//
// Models are built and solved through the mip package; engines plug in
// through the engine package.
package milo

import (
	"github.com/blang/semver/v4"

	"github.com/go-opt/milo/engine"
	_ "github.com/go-opt/milo/engine/relax"
	_ "github.com/go-opt/milo/engine/scip"
)

var Version = semver.MustParse("0.1.0")

// Engines returns the names of the registered solver engines.
func Engines() []string {
	return engine.Names()
}
