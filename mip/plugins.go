package mip

import "github.com/go-opt/milo/engine"

// BranchingNames lists the engine's registered branching rule names.
func (s *Session) BranchingNames() []string { return s.eng.PluginNames(engine.Branching) }

// ConflictNames lists the engine's registered conflict handler names.
func (s *Session) ConflictNames() []string { return s.eng.PluginNames(engine.Conflict) }

// DisplayNames lists the engine's registered display column names.
func (s *Session) DisplayNames() []string { return s.eng.PluginNames(engine.Display) }

// HeuristicNames lists the engine's registered heuristic names.
func (s *Session) HeuristicNames() []string { return s.eng.PluginNames(engine.Heuristic) }

// PresolverNames lists the engine's registered presolver names.
func (s *Session) PresolverNames() []string { return s.eng.PluginNames(engine.Presolver) }

// PropagatorNames lists the engine's registered propagator names.
func (s *Session) PropagatorNames() []string { return s.eng.PluginNames(engine.Propagator) }

// SelectorNames lists the engine's registered node selector names.
func (s *Session) SelectorNames() []string { return s.eng.PluginNames(engine.Selector) }

// SeparatorNames lists the engine's registered separator names.
func (s *Session) SeparatorNames() []string { return s.eng.PluginNames(engine.Separator) }
