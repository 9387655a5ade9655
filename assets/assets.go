// Package assets embeds the click sounds shipped with the metronome.
package assets

import "embed"

// FS holds clicks/click-0.wav through clicks/click-3.wav.
//
//go:embed clicks/*.wav
var FS embed.FS
