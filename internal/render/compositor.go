package render

import (
	"errors"
	"fmt"
	"log/slog"

	"sup2srt/internal/logging"
	"sup2srt/internal/pgs"
)

// ErrComposition marks display set sequences the compositor cannot apply.
var ErrComposition = errors.New("render: invalid composition")

type object struct {
	width    uint16
	height   uint16
	finished bool
	data     []byte
	bitmap   Bitmap
}

// Compositor replays display sets in stream order and collects the timed
// subtitle bitmaps they produce. Objects and palettes live for one epoch;
// a display set's presentation time closes every subtitle the previous
// display set opened.
type Compositor struct {
	logger *slog.Logger

	started bool
	width   uint16
	height  uint16
	epoch   int

	objects  map[uint16]*object
	palettes map[uint8]Palette

	subtitles []Subtitle
	open      []int
}

// NewCompositor creates a compositor. A nil logger is replaced with a no-op
// logger.
func NewCompositor(logger *slog.Logger) *Compositor {
	return &Compositor{
		logger:   logging.NewComponentLogger(logger, "render"),
		objects:  make(map[uint16]*object),
		palettes: make(map[uint8]Palette),
	}
}

// Push applies one display set.
func (c *Compositor) Push(ds pgs.DisplaySet) error {
	if !c.started {
		if ds.PCS.State != pgs.CompositionEpochStart {
			return fmt.Errorf("%w: first display set does not start an epoch", ErrComposition)
		}
		c.started = true
		c.width = ds.PCS.Width
		c.height = ds.PCS.Height
	}
	if ds.PCS.Width != c.width || ds.PCS.Height != c.height {
		return fmt.Errorf("%w: display dimensions changed from %dx%d to %dx%d",
			ErrComposition, c.width, c.height, ds.PCS.Width, ds.PCS.Height)
	}

	now := ds.PTS()
	for _, idx := range c.open {
		c.subtitles[idx].End = now
	}
	c.open = c.open[:0]

	if ds.PCS.State == pgs.CompositionEpochStart {
		c.epoch++
		clear(c.objects)
		clear(c.palettes)
		c.logger.Debug("epoch start", logging.Int("epoch", c.epoch), logging.Duration("pts", now))
	}

	for _, pds := range ds.PDS {
		c.palettes[pds.ID] = NewPalette(pds)
	}

	if len(ds.ODS) > 0 {
		palette, ok := c.palettes[ds.PCS.PaletteID]
		if !ok {
			return fmt.Errorf("%w: PCS references undefined palette %d", ErrComposition, ds.PCS.PaletteID)
		}
		for _, ods := range ds.ODS {
			if err := c.applyODS(ods, palette); err != nil {
				return err
			}
		}
	}

	for _, comp := range ds.PCS.Objects {
		obj, ok := c.objects[comp.ObjectID]
		if !ok {
			c.logger.Warn("composition references unknown object", logging.Int("object_id", int(comp.ObjectID)))
			continue
		}
		if !obj.finished {
			c.logger.Warn("composition references unfinished object", logging.Int("object_id", int(comp.ObjectID)))
			continue
		}

		bitmap := obj.bitmap
		if comp.Crop != nil {
			cx, cy := int(comp.Crop.X), int(comp.Crop.Y)
			cw, ch := int(comp.Crop.Width), int(comp.Crop.Height)
			if cw == 0 || ch == 0 || cx+cw > bitmap.Width || cy+ch > bitmap.Height {
				return fmt.Errorf("%w: object %d crop %dx%d at (%d,%d) exceeds object bounds %dx%d",
					ErrComposition, comp.ObjectID, cw, ch, cx, cy, bitmap.Width, bitmap.Height)
			}
			bitmap = bitmap.Crop(cx, cy, cw, ch)
		}

		c.open = append(c.open, len(c.subtitles))
		c.subtitles = append(c.subtitles, Subtitle{Begin: now, Bitmap: bitmap})
	}

	return nil
}

func (c *Compositor) applyODS(ods pgs.ODS, palette Palette) error {
	obj, ok := c.objects[ods.ObjectID]
	if !ok {
		obj = &object{width: ods.Width, height: ods.Height}
		c.objects[ods.ObjectID] = obj
	}

	switch ods.Sequence {
	case pgs.SequenceFirstAndLast:
		obj.width = ods.Width
		obj.height = ods.Height
		obj.data = append(obj.data[:0], ods.Data...)
		obj.finished = true
	case pgs.SequenceFirst:
		obj.width = ods.Width
		obj.height = ods.Height
		obj.data = append(obj.data[:0], ods.Data...)
		obj.finished = false
		return nil
	case pgs.SequenceLast:
		if obj.finished {
			return fmt.Errorf("%w: last fragment for already finished object %d", ErrComposition, ods.ObjectID)
		}
		obj.data = append(obj.data, ods.Data...)
		obj.finished = true
	}

	indexed, err := pgs.DecodeRLE(obj.data, obj.width, obj.height)
	if err != nil {
		return fmt.Errorf("object %d: %w", ods.ObjectID, err)
	}
	obj.bitmap = palette.Render(indexed, int(obj.width), int(obj.height))
	return nil
}

// Subtitles returns everything composed so far. Subtitles the stream never
// cleared keep a zero End.
func (c *Compositor) Subtitles() []Subtitle {
	return c.subtitles
}
