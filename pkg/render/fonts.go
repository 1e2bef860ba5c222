package render

import (
	"sync"

	"github.com/flopp/go-findfont"
)

// Label fonts are located on the host at first use. The candidates cover
// the common Linux and macOS system fonts; any hit is acceptable since
// labels only need a legible sans face.
var fontCandidates = []string{
	"DejaVuSans.ttf",
	"LiberationSans-Regular.ttf",
	"Arial.ttf",
	"Helvetica.ttc",
}

var (
	fontOnce sync.Once
	fontFile string
)

// labelFontPath returns the path of a usable system font, or the empty
// string when none is installed. Callers degrade to unlabeled output.
func labelFontPath() string {
	fontOnce.Do(func() {
		for _, name := range fontCandidates {
			if path, err := findfont.Find(name); err == nil {
				fontFile = path
				return
			}
		}
	})
	return fontFile
}
