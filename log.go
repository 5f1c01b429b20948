package bitecs

import (
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Registries are silent by default; SetLogger turns on structured
// lifecycle logging. Only cold paths log (definitions, table growth,
// merges, cleanup). Scans and dispatch never do.

// SetLogger installs a logger on the registry. The registry id is added
// to the logger context so clone/merge logs from several registries
// stay attributable.
func (r *Registry) SetLogger(logger zerolog.Logger) {
	r.log = logger.With().Str("registry_id", r.id.String()).Logger()
}

// RegistryID returns the unique id assigned to this registry at
// construction.
func (r *Registry) RegistryID() uuid.UUID {
	return r.id
}

func (r *Registry) logDefine(id int, meta ComponentMeta) {
	r.log.Debug().
		Int("component_id", id).
		Int("typesize", int(meta.Typesize)).
		Int("frequency", int(meta.Frequency)).
		Bool("tag", meta.Typesize == 0).
		Msg("component defined")
}

func (r *Registry) logGrow(oldCap, newCap int) {
	r.log.Debug().
		Int("old_capacity", oldCap).
		Int("new_capacity", newCap).
		Msg("entity table grown")
}

func (r *Registry) logMerge(from *Registry, moved int) {
	r.log.Debug().
		Str("from_registry_id", from.id.String()).
		Int("entities_moved", moved).
		Msg("registry merged")
}

func (r *Registry) logCleanup(freed int) {
	r.log.Debug().
		Int("chunks_freed", freed).
		Msg("cleanup done")
}
