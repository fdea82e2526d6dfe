package reducer

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/shivasurya/code-pathfinder/pathreduce/graph/ast"
	"github.com/shivasurya/code-pathfinder/pathreduce/graph/cfg"
)

// Snapshot is the on-disk form of a built Reducer: the same frozen maps
// the in-memory Reducer carries, serialized so the `build` CLI subcommand
// can hand a `reduce` invocation in a later process the result of an
// expensive GNFA compilation without re-parsing the original CFGs.
type Snapshot struct {
	K               int                                 `json:"k"`
	Mode            Mode                                `json:"mode"`
	RegexOf         map[cfg.FunID]*ast.RegExp            `json:"regex_of"`
	FirstOf         map[cfg.FunID]cfg.BlockID            `json:"first_of"`
	FunStartingWith map[cfg.BlockID]cfg.FunID            `json:"fun_starting_with"`
	LastsOf         map[cfg.FunID]map[cfg.BlockID]bool   `json:"lasts_of"`
	LoopHeadsOf     map[cfg.FunID]map[cfg.BlockID]bool   `json:"loop_heads_of"`
}

// ToSnapshot captures r's frozen maps for serialization.
func (r *Reducer) ToSnapshot() Snapshot {
	return Snapshot{
		K:               r.k,
		Mode:            r.mode,
		RegexOf:         r.regexOf,
		FirstOf:         r.firstOf,
		FunStartingWith: r.funStartingWith,
		LastsOf:         r.lastsOf,
		LoopHeadsOf:     r.loopHeadsOf,
	}
}

// FromSnapshot rebuilds a Reducer from a previously-saved Snapshot without
// re-running GNFA elimination. It trusts the snapshot's maps as already
// well-formed; it does not re-validate them.
func FromSnapshot(s Snapshot) *Reducer {
	return &Reducer{
		k:               s.K,
		mode:            s.Mode,
		regexOf:         s.RegexOf,
		firstOf:         s.FirstOf,
		funStartingWith: s.FunStartingWith,
		lastsOf:         s.LastsOf,
		loopHeadsOf:     s.LoopHeadsOf,
	}
}

// WriteSnapshot serializes r as indented JSON: a plain, human-inspectable
// on-disk format rather than a binary encoding.
func WriteSnapshot(w io.Writer, r *Reducer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r.ToSnapshot()); err != nil {
		return fmt.Errorf("reducer: writing snapshot: %w", err)
	}
	return nil
}

// ReadSnapshot deserializes a Reducer previously written by WriteSnapshot.
func ReadSnapshot(r io.Reader) (*Reducer, error) {
	var s Snapshot
	if err := json.NewDecoder(r).Decode(&s); err != nil {
		return nil, fmt.Errorf("reducer: reading snapshot: %w", err)
	}
	return FromSnapshot(s), nil
}
