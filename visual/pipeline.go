package visual

// Analyser exposes per-frame snapshots of the audio passing through the
// analysis tap.
type Analyser interface {
	FFTSize() int
	// BinCount is FFTSize()/2.
	BinCount() int
	SampleRate() int
	// TimeDomain fills dst with samples as bytes centred on 128.
	TimeDomain(dst []byte)
	// Frequency fills dst with bin magnitudes scaled to [0, 255].
	Frequency(dst []byte)
}

// Options sizes the pipeline's surfaces.
type Options struct {
	Width, Height int
	MelBands      int
	UseMel        bool
}

// Pipeline owns the three surfaces and draws all of them from one pair of
// snapshots per tick. It never touches transport state.
type Pipeline struct {
	Waveform    *Waveform
	Spectrum    *Spectrum
	Spectrogram *Spectrogram

	src    Analyser
	useMel bool
	linear ColumnStrategy
	mel    *MelColumns

	timeBuf []byte
	freqBuf []byte
}

// NewPipeline allocates the surfaces described by opts.
func NewPipeline(opts Options) *Pipeline {
	if opts.MelBands < 1 {
		opts.MelBands = DefaultMelBands
	}
	return &Pipeline{
		Waveform:    NewWaveform(NewCanvas(opts.Width, opts.Height, Background)),
		Spectrum:    NewSpectrum(NewCanvas(opts.Width, opts.Height, Background)),
		Spectrogram: NewSpectrogram(NewCanvas(opts.Width, opts.Height, Background)),
		useMel:      opts.UseMel,
		linear:      LinearColumns{},
		mel:         NewMelColumns(opts.MelBands),
	}
}

// Attach binds the pipeline to the analyser of a newly loaded buffer.
func (p *Pipeline) Attach(a Analyser) {
	p.src = a
	if a == nil {
		return
	}
	p.timeBuf = make([]byte, a.FFTSize())
	p.freqBuf = make([]byte, a.BinCount())
}

// Detach drops the analyser; Render becomes a no-op.
func (p *Pipeline) Detach() { p.src = nil }

// Attached reports whether an analyser is bound.
func (p *Pipeline) Attached() bool { return p.src != nil }

func (p *Pipeline) UseMel() bool    { return p.useMel }
func (p *Pipeline) SetMel(on bool)   { p.useMel = on }
func (p *Pipeline) ToggleMel() bool { p.useMel = !p.useMel; return p.useMel }

// MelStrategy exposes the Mel painter and its cached band layout.
func (p *Pipeline) MelStrategy() *MelColumns { return p.mel }

// strategy picks the spectrogram column painter for this tick.
func (p *Pipeline) strategy() ColumnStrategy {
	if p.useMel {
		return p.mel
	}
	return p.linear
}

// Render pulls one time-domain and one frequency snapshot and redraws every
// surface from them.
func (p *Pipeline) Render() {
	if p.src == nil {
		return
	}
	p.src.TimeDomain(p.timeBuf)
	p.src.Frequency(p.freqBuf)
	p.Waveform.Draw(p.timeBuf)
	p.Spectrum.Draw(p.freqBuf)
	p.Spectrogram.Draw(p.freqBuf, p.strategy(), p.src.FFTSize(), p.src.SampleRate())
}

// ClearLive blanks the waveform and spectrum. The spectrogram keeps its
// history.
func (p *Pipeline) ClearLive() {
	p.Waveform.Canvas.Clear()
	p.Spectrum.Canvas.Clear()
}

// Reset blanks every surface, spectrogram history included.
func (p *Pipeline) Reset() {
	p.ClearLive()
	p.Spectrogram.Canvas.Clear()
}
