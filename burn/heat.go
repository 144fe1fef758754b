package burn

import (
	"gonum.org/v1/gonum/floats"

	"github.com/pxlsim/pixelworld/canvas"
	"github.com/pxlsim/pixelworld/chunk"
	"github.com/pxlsim/pixelworld/coord"
	"github.com/pxlsim/pixelworld/pixel"
)

// HeatPass runs the downsampled heat-diffusion subsystem, sequentially over
// every loaded chunk: sample each heat cell's source temperature from its
// pixels, blend it with its four neighbours' prior values, cool the
// result, and ignite flammable pixels once their cell crosses their
// material's ignition threshold.
type HeatPass struct {
	Reg   *pixel.Registry
	Rates Rates
	Seed  uint64
}

// heatCellKey addresses one heat cell by its owning chunk and its
// chunk-local heat coordinates (lhx, lhy); it is where Run writes a
// scratch value back once every cell has been computed.
type heatCellKey struct {
	ch       *chunk.Chunk
	lhx, lhy int32
}

// Run executes one heat-subsystem tick over every chunk loaded in c.
func (p HeatPass) Run(c *canvas.Canvas, tick uint64, dirty *canvas.DirtySet) {
	type scratchEntry struct {
		key   heatCellKey
		value uint8
	}
	var scratch []scratchEntry

	c.ForEachChunk(func(cpos coord.ChunkPos, ch *chunk.Chunk) {
		side := ch.HeatSide()
		origin := coord.ChunkToWorldOrigin(cpos, c.Edge())
		originHX := origin.X / ch.HeatEdge
		originHY := origin.Y / ch.HeatEdge

		for lhy := int32(0); lhy < side; lhy++ {
			for lhx := int32(0); lhx < side; lhx++ {
				source := p.sourceTemp(ch, lhx, lhy)
				self := ch.Heat(lhx, lhy)

				neighbourVals := make([]float64, 0, len(cardinalOffsets))
				for _, off := range cardinalOffsets {
					nch, nlhx, nlhy, ok := lookupHeatCell(c, ch.HeatEdge, originHX+lhx+off[0], originHY+lhy+off[1])
					if !ok {
						continue
					}
					neighbourVals = append(neighbourVals, float64(nch.Heat(nlhx, nlhy)))
				}
				var neighbourAvg float32
				if len(neighbourVals) > 0 {
					neighbourAvg = float32(floats.Sum(neighbourVals) / float64(len(neighbourVals)))
				} else {
					neighbourAvg = float32(self)
				}

				blended := p.Rates.CoolingFactor * (0.5*float32(self) + 0.5*neighbourAvg)
				next := blended
				if float32(source) > next {
					next = float32(source)
				}
				scratch = append(scratch, scratchEntry{
					key:   heatCellKey{ch: ch, lhx: lhx, lhy: lhy},
					value: clampHeat(next),
				})
			}
		}
	})

	for _, e := range scratch {
		e.key.ch.SetHeat(e.key.lhx, e.key.lhy, e.value)
	}

	c.ForEachChunk(func(cpos coord.ChunkPos, ch *chunk.Chunk) {
		p.igniteFromHeat(c, cpos, ch, tick, dirty)
	})
}

// sourceTemp samples a heat cell's pixels for their contribution before
// diffusion: the sum of every non-void pixel's material base temperature,
// plus the configured burning contribution for every pixel currently on
// fire.
func (p HeatPass) sourceTemp(ch *chunk.Chunk, lhx, lhy int32) uint8 {
	var sum uint32
	base := ch.HeatEdge
	for y := lhy * base; y < (lhy+1)*base; y++ {
		for x := lhx * base; x < (lhx+1)*base; x++ {
			px := ch.Surface.Get(x, y)
			if px.IsVoid() {
				continue
			}
			mat, ok := p.Reg.Get(px.Material)
			if !ok {
				continue
			}
			sum += uint32(mat.BaseTemperature)
			if px.Flags.Has(pixel.FlagBurning) {
				sum += uint32(p.Rates.BurningHeat)
			}
		}
	}
	return clampHeat(float32(sum))
}

// lookupHeatCell resolves a global heat coordinate to its owning chunk's
// local heat cell, or ok=false if that chunk isn't loaded. heatEdge is the
// heat cell edge length, uniform across all chunks in a world: the heat
// coordinate is scaled back to a pixel position and resolved to its chunk.
func lookupHeatCell(c *canvas.Canvas, heatEdge, hxWorld, hyWorld int32) (*chunk.Chunk, int32, int32, bool) {
	edge := c.Edge()
	pixelPos := coord.WorldPos{X: hxWorld * heatEdge, Y: hyWorld * heatEdge}
	cpos, lpos := coord.WorldToChunkLocal(pixelPos, edge)
	ch, ok := c.Get(cpos)
	if !ok {
		return nil, 0, 0, false
	}
	lhx, lhy := ch.HeatCellOf(lpos.X, lpos.Y)
	return ch, lhx, lhy, true
}

// clampHeat truncates a blended float heat value to the uint8 range.
func clampHeat(v float32) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v)
}

// igniteFromHeat sets FlagBurning on flammable, not-yet-burning pixels
// whose heat cell has reached their material's ignition threshold.
func (p HeatPass) igniteFromHeat(c *canvas.Canvas, cpos coord.ChunkPos, ch *chunk.Chunk, tick uint64, dirty *canvas.DirtySet) {
	side := ch.HeatSide()
	origin := coord.ChunkToWorldOrigin(cpos, c.Edge())
	base := ch.HeatEdge

	for lhy := int32(0); lhy < side; lhy++ {
		for lhx := int32(0); lhx < side; lhx++ {
			cellHeat := ch.Heat(lhx, lhy)
			if cellHeat == 0 {
				continue
			}
			for ly := lhy * base; ly < (lhy+1)*base; ly++ {
				for lx := lhx * base; lx < (lhx+1)*base; lx++ {
					px := ch.Surface.Get(lx, ly)
					if px.IsVoid() || px.Flags.Has(pixel.FlagBurning) {
						continue
					}
					mat, ok := p.Reg.Get(px.Material)
					if !ok || !mat.Flammable() || cellHeat < mat.IgnitionThresh {
						continue
					}
					wx, wy := origin.X+lx, origin.Y+ly
					px.Flags = px.Flags.Set(pixel.FlagBurning)
					ch.Surface.Set(lx, ly, px)
					canvas.PropagateBoundary(c, coord.WorldPos{X: wx, Y: wy}, ch.TileEdge, dirty)
				}
			}
		}
	}
}
