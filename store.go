package collage

import "github.com/rs/zerolog"

// Persister receives sticker state for durable storage. Calls are
// fire-and-forget from the engine's point of view: errors are logged, never
// surfaced, and a failed persist does not block any interaction.
type Persister interface {
	Persist(id int, s Sticker) error
}

// Store is the in-memory ordered sticker registry. It owns selection,
// pin, and z-order bookkeeping; the gesture machine, physics adapter, and
// layout solver all reference stickers through it. Single-threaded, like
// everything else in this package.
type Store struct {
	stickers []*Sticker
	deleted  []*Sticker // soft-deleted, restorable until dropped

	selected int // sticker ID, 0 = none
	nextID   int
	nextZ    int

	minWidth float64
	maxWidth float64

	persister Persister
	log       *zerolog.Logger
}

// NewStore creates an empty registry. A nil logger gets a console writer;
// a nil persister makes Persist a no-op.
func NewStore(persister Persister, logger *zerolog.Logger) *Store {
	if logger == nil {
		l := zerolog.New(zerolog.NewConsoleWriter())
		logger = &l
	}
	return &Store{
		nextID:    1,
		nextZ:     1,
		minWidth:  DefaultTuning().MinWidth,
		maxWidth:  1e9,
		persister: persister,
		log:       logger,
	}
}

// SetWidthBounds updates the clamp range applied by UpdateSize and Add.
// The engine calls this whenever the viewport changes.
func (st *Store) SetWidthBounds(min, max float64) {
	st.minWidth = min
	st.maxWidth = max
	for _, s := range st.stickers {
		s.Width = clamp(s.Width, min, max)
	}
}

// Add registers a sticker, assigning its ID and a top z-index. The position
// is sanitized and the width clamped before the sticker becomes visible.
func (st *Store) Add(s Sticker) *Sticker {
	s.ID = st.nextID
	st.nextID++
	s.ZIndex = st.nextZ
	st.nextZ++
	if s.Aspect <= 0 {
		s.Aspect = 1
	}
	if s.BaseWidth <= 0 {
		s.BaseWidth = s.Width
	}
	s.Width = clamp(s.Width, st.minWidth, st.maxWidth)
	var fixed bool
	s.X, s.YPercent, fixed = SanitizePosition(s.X, s.YPercent)
	added := &s
	st.stickers = append(st.stickers, added)
	if fixed {
		st.log.Warn().Int("sticker", s.ID).Msg("corrupted position corrected on add")
	}
	st.persistSticker(added)
	return added
}

// All returns the stickers in insertion order. The returned slice MUST NOT
// be mutated by the caller.
func (st *Store) All() []*Sticker {
	return st.stickers
}

// ByID returns the sticker with the given ID, or nil.
func (st *Store) ByID(id int) *Sticker {
	for _, s := range st.stickers {
		if s.ID == id {
			return s
		}
	}
	return nil
}

// TopAt returns the topmost sticker whose rotated display box contains the
// absolute point, or nil. Ties cannot occur: z-indices are unique.
func (st *Store) TopAt(vp Viewport, x, y float64) *Sticker {
	var best *Sticker
	for _, s := range st.stickers {
		if !s.ContainsPoint(vp, x, y) {
			continue
		}
		if best == nil || s.ZIndex > best.ZIndex {
			best = s
		}
	}
	return best
}

// Select marks the sticker as selected and brings it to the front.
func (st *Store) Select(id int) {
	s := st.ByID(id)
	if s == nil {
		return
	}
	st.selected = id
	s.ZIndex = st.nextZ
	st.nextZ++
}

// Selected returns the currently selected sticker, or nil.
func (st *Store) Selected() *Sticker {
	if st.selected == 0 {
		return nil
	}
	return st.ByID(st.selected)
}

// Deselect clears the selection.
func (st *Store) Deselect() {
	st.selected = 0
}

// TogglePin flips the sticker's pinned flag and persists it.
func (st *Store) TogglePin(id int) {
	s := st.ByID(id)
	if s == nil {
		return
	}
	s.Pinned = !s.Pinned
	st.persistSticker(s)
}

// UpdatePosition writes a sanitized hybrid position. If the input was
// corrupted, the correction itself is persisted so it does not recur.
func (st *Store) UpdatePosition(id int, x, yPercent float64) {
	s := st.ByID(id)
	if s == nil {
		return
	}
	nx, ny, fixed := SanitizePosition(x, yPercent)
	s.X = nx
	s.YPercent = ny
	if fixed {
		st.log.Warn().Int("sticker", id).Msg("corrupted position corrected")
		st.persistSticker(s)
	}
}

// UpdateRotation writes the rotation in degrees, unnormalized.
func (st *Store) UpdateRotation(id int, deg float64) {
	if s := st.ByID(id); s != nil {
		s.Rotation = deg
	}
}

// UpdateSize writes the width, clamped to the store's bounds.
func (st *Store) UpdateSize(id int, width float64) {
	if s := st.ByID(id); s != nil {
		s.Width = clamp(width, st.minWidth, st.maxWidth)
	}
}

// SoftDelete removes the sticker from the canvas but keeps the record so a
// host-driven undo window can bring it back with Restore.
func (st *Store) SoftDelete(id int) {
	for i, s := range st.stickers {
		if s.ID == id {
			st.stickers = append(st.stickers[:i], st.stickers[i+1:]...)
			st.deleted = append(st.deleted, s)
			if st.selected == id {
				st.selected = 0
			}
			return
		}
	}
}

// Restore returns a soft-deleted sticker to the canvas, on top.
func (st *Store) Restore(id int) *Sticker {
	for i, s := range st.deleted {
		if s.ID == id {
			st.deleted = append(st.deleted[:i], st.deleted[i+1:]...)
			s.ZIndex = st.nextZ
			st.nextZ++
			st.stickers = append(st.stickers, s)
			st.persistSticker(s)
			return s
		}
	}
	return nil
}

// DropDeleted discards a soft-deleted sticker for good. Called by the host
// when the undo window expires.
func (st *Store) DropDeleted(id int) {
	for i, s := range st.deleted {
		if s.ID == id {
			st.deleted = append(st.deleted[:i], st.deleted[i+1:]...)
			return
		}
	}
}

// PersistAll pushes every live sticker to the persister in one batch.
func (st *Store) PersistAll() {
	for _, s := range st.stickers {
		st.persistSticker(s)
	}
}

// Persist pushes a single sticker to the persister.
func (st *Store) Persist(id int) {
	if s := st.ByID(id); s != nil {
		st.persistSticker(s)
	}
}

func (st *Store) persistSticker(s *Sticker) {
	if st.persister == nil {
		return
	}
	if err := st.persister.Persist(s.ID, *s); err != nil {
		st.log.Error().Err(err).Int("sticker", s.ID).Msg("persist failed")
	}
}
