package capability

import (
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-water/internal/config"
	"github.com/Faultbox/midgard-water/internal/logger"
)

// Persister stores corrected water settings so later negotiations start from them.
type Persister interface {
	PersistWater(config.WaterConfig) error
}

// Changes describes how the enabled set moved during a reload.
type Changes struct {
	Previous Request
	Current  Request
	First    bool // no set existed before this negotiation
}

// Any reports whether any enabled flag differs.
func (c Changes) Any() bool {
	return c.First || c.Previous != c.Current
}

// LayoutChanged reports whether chunk buffer layout may differ, which
// happens when translucency or the shader path flips.
func (c Changes) LayoutChanged() bool {
	if c.First {
		return true
	}
	return c.Previous.Translucency != c.Current.Translucency ||
		c.Previous.Shaders != c.Current.Shaders
}

// Negotiator owns the negotiated Set between configuration reloads.
type Negotiator struct {
	facts     Facts
	persister Persister
	log       *zap.Logger

	current     Set
	requested   config.WaterConfig // last configuration passed to Reload
	last        config.WaterConfig // requested, with corrections applied
	initialized bool

	// refused holds techniques dropped at runtime (e.g. a shader that failed
	// to link); they stay off across reloads but are never persisted.
	refused map[string]string
}

// NewNegotiator creates a negotiator for the probed hardware facts.
// persister may be nil when corrections should not be saved.
func NewNegotiator(facts Facts, persister Persister) *Negotiator {
	return &Negotiator{
		facts:     facts,
		persister: persister,
		log:       logger.Named("capability"),
		refused:   make(map[string]string),
	}
}

// Facts returns the hardware facts negotiations run against.
func (n *Negotiator) Facts() Facts {
	return n.facts
}

// Current returns the last negotiated set.
func (n *Negotiator) Current() Set {
	return n.current
}

// Reload negotiates w against the hardware facts. An unchanged configuration
// is a no-op, whether it matches the last request or its corrected form.
// Refused techniques are written back through the persister.
func (n *Negotiator) Reload(w config.WaterConfig) (Set, Changes) {
	if n.initialized && (w == n.requested || w == n.last) {
		return n.current, Changes{Previous: n.current.Request, Current: n.current.Request}
	}

	req := RequestFromConfig(w)
	set, corrections := Negotiate(req, n.facts)
	for _, c := range corrections {
		n.log.Warn("water technique not supported, disabled",
			zap.String("technique", c.Technique),
			zap.String("reason", c.Reason),
		)
	}

	persisted := w
	if len(corrections) > 0 {
		persisted = Corrected(req, corrections).Apply(w)
		if n.persister != nil {
			if err := n.persister.PersistWater(persisted); err != nil {
				n.log.Error("failed to persist corrected water config", zap.Error(err))
			}
		}
	}

	n.requested = w
	set = n.applyRefused(set)
	return n.commit(set, persisted)
}

// Refuse switches off an enabled technique for the rest of the process,
// e.g. after its shader program failed to load. It is not persisted.
func (n *Negotiator) Refuse(technique, reason string) (Set, Changes) {
	n.refused[technique] = reason
	n.log.Warn("water technique refused at runtime",
		zap.String("technique", technique),
		zap.String("reason", reason),
	)
	set, _ := Negotiate(RequestFromConfig(n.last), n.facts)
	return n.commit(n.applyRefused(set), n.last)
}

func (n *Negotiator) applyRefused(set Set) Set {
	if len(n.refused) == 0 {
		return set
	}
	req := set.Request
	for name := range n.refused {
		for _, dep := range dependencies {
			if dep.name == name {
				*dep.flag(&req) = false
			}
		}
	}
	// Re-run so dependent rows (animated bump) see the reduced set.
	reduced, _ := Negotiate(req, n.facts)
	return reduced
}

func (n *Negotiator) commit(set Set, persisted config.WaterConfig) (Set, Changes) {
	changes := Changes{
		Previous: n.current.Request,
		Current:  set.Request,
		First:    !n.initialized,
	}
	n.current = set
	n.last = persisted
	n.initialized = true

	n.log.Info("water techniques negotiated",
		zap.Stringer("technique", set.Technique()),
		zap.Bool("reflections", set.Reflections),
		zap.Bool("bump_mapping", set.BumpMapping),
		zap.Bool("translucency", set.Translucency),
		zap.Bool("shaders", set.Shaders),
		zap.Bool("animated_bump", set.AnimatedBump),
	)
	return set, changes
}
