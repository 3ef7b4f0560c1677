package ui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Play     key.Binding
	Stop     key.Binding
	Back     key.Binding
	Forward  key.Binding
	VolUp    key.Binding
	VolDown  key.Binding
	Faster   key.Binding
	Slower   key.Binding
	RateZero key.Binding
	Mel      key.Binding
	Next     key.Binding
	Prev     key.Binding
	Focus    key.Binding
	Filter   key.Binding
	Straight key.Binding
	Export   key.Binding
	Help     key.Binding
	Quit     key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Play:     key.NewBinding(key.WithKeys(" ", "space"), key.WithHelp("spc", "play/pause")),
		Stop:     key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "stop")),
		Back:     key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←", "seek back")),
		Forward:  key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→", "seek fwd")),
		VolUp:    key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "vol up")),
		VolDown:  key.NewBinding(key.WithKeys("-"), key.WithHelp("-", "vol down")),
		Faster:   key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "faster")),
		Slower:   key.NewBinding(key.WithKeys("["), key.WithHelp("[", "slower")),
		RateZero: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "1.00x")),
		Mel:      key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "mel")),
		Next:     key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "next file")),
		Prev:     key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "prev file")),
		Focus:    key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "audio/image")),
		Filter:   key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "filter")),
		Straight: key.NewBinding(key.WithKeys("0"), key.WithHelp("0", "reset image")),
		Export:   key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "export png")),
		Help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// focusOn enables the bindings that only make sense in one panel.
func (k *keyMap) focusOn(f focusArea) {
	audio := f == focusAudio
	for _, b := range []*key.Binding{&k.Play, &k.Stop, &k.VolUp, &k.VolDown, &k.Faster, &k.Slower, &k.RateZero, &k.Mel} {
		b.SetEnabled(audio)
	}
	k.Filter.SetEnabled(!audio)
	k.Straight.SetEnabled(!audio)
	if audio {
		k.Back.SetHelp("←", "seek back")
		k.Forward.SetHelp("→", "seek fwd")
	} else {
		k.Back.SetHelp("←", "rotate left")
		k.Forward.SetHelp("→", "rotate right")
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Play, k.Back, k.Forward, k.Filter, k.Focus, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Play, k.Stop, k.Back, k.Forward},
		{k.VolUp, k.VolDown, k.Faster, k.Slower, k.RateZero},
		{k.Mel, k.Filter, k.Straight, k.Export},
		{k.Next, k.Prev, k.Focus, k.Help, k.Quit},
	}
}
