// Package engine is a small deterministic engine that manipulates image
// lists without touching pixel values. It stands in for a native engine in
// tests and in the command-line tool.
//
// A command is a sequence of whitespace-separated words applied left to
// right:
//
//	print, echo text            log the list or a message
//	display                     accepted and ignored
//	rm, rm[i,j,...]             remove all or the selected images
//	keep[i,j,...]               keep only the selected images
//	reverse                     reverse the list
//	dup, dup[i]                 append a copy of the last or selected image
//	new W,H,D,S[,value]         append a new image filled with value
//	name[i] text                rename image i
//
// Indices may be negative to count from the end.
package engine

import (
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/ironsheep/pixel-marshal/internal/collection"
	"github.com/ironsheep/pixel-marshal/internal/pixel"
)

// Engine runs list commands. It keeps no state between calls.
type Engine struct{}

// New returns an engine.
func New() *Engine {
	return &Engine{}
}

type entry struct {
	img  *pixel.Buffer
	name string
}

// Run applies command to list. On error the list is left unchanged.
func (e *Engine) Run(command string, list *collection.Collection) error {
	entries := make([]entry, len(list.Images))
	for i, img := range list.Images {
		entries[i].img = img
		if i < len(list.Names) {
			entries[i].name = list.Names[i]
		}
	}

	words := strings.Fields(command)
	for pos := 0; pos < len(words); pos++ {
		word, sel, err := splitSelection(words[pos])
		if err != nil {
			return err
		}

		arg := func() (string, error) {
			if pos+1 >= len(words) {
				return "", fmt.Errorf("command '%s' requires an argument", word)
			}
			pos++
			return words[pos], nil
		}

		switch word {
		case "print":
			for i, en := range entries {
				Logger().Info("image", zap.Int("index", i), zap.String("name", en.name), zap.Stringer("buffer", en.img))
			}
		case "echo":
			text, err := arg()
			if err != nil {
				return err
			}
			Logger().Info(text)
		case "display":
			Logger().Debug("display requested, no display available")
		case "rm":
			if sel == nil {
				entries = nil
				continue
			}
			idx, err := resolve(sel, len(entries))
			if err != nil {
				return err
			}
			entries = filter(entries, idx, false)
		case "keep":
			if sel == nil {
				continue
			}
			idx, err := resolve(sel, len(entries))
			if err != nil {
				return err
			}
			entries = filter(entries, idx, true)
		case "reverse":
			for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
				entries[i], entries[j] = entries[j], entries[i]
			}
		case "dup":
			if sel == nil {
				sel = []int{-1}
			}
			idx, err := resolve(sel, len(entries))
			if err != nil {
				return err
			}
			for _, i := range idx {
				entries = append(entries, entry{img: entries[i].img.Clone(), name: entries[i].name})
			}
		case "new":
			spec, err := arg()
			if err != nil {
				return err
			}
			img, err := newImage(spec)
			if err != nil {
				return err
			}
			entries = append(entries, entry{img: img})
		case "name":
			text, err := arg()
			if err != nil {
				return err
			}
			if sel == nil {
				sel = []int{-1}
			}
			idx, err := resolve(sel, len(entries))
			if err != nil {
				return err
			}
			for _, i := range idx {
				entries[i].name = text
			}
		default:
			return fmt.Errorf("unknown command '%s'", words[pos])
		}
	}

	images := make([]*pixel.Buffer, len(entries))
	names := make([]string, len(entries))
	for i, en := range entries {
		images[i] = en.img
		names[i] = en.name
	}
	// unnamed trailing images are reported without a name
	for len(names) > 0 && names[len(names)-1] == "" {
		names = names[:len(names)-1]
	}
	list.Images = images
	list.Names = names
	return nil
}

// splitSelection splits "rm[0,2]" into "rm" and [0 2].
func splitSelection(word string) (string, []int, error) {
	name, rest, ok := strings.Cut(word, "[")
	if !ok {
		return word, nil, nil
	}
	body, ok := strings.CutSuffix(rest, "]")
	if !ok || body == "" {
		return "", nil, fmt.Errorf("malformed selection in '%s'", word)
	}
	var sel []int
	for _, f := range strings.Split(body, ",") {
		i, err := strconv.Atoi(strings.TrimSpace(f))
		if err != nil {
			return "", nil, fmt.Errorf("malformed selection in '%s'", word)
		}
		sel = append(sel, i)
	}
	return name, sel, nil
}

// resolve maps possibly negative indices onto [0, n).
func resolve(sel []int, n int) ([]int, error) {
	out := make([]int, len(sel))
	for k, i := range sel {
		j := i
		if j < 0 {
			j += n
		}
		if j < 0 || j >= n {
			return nil, fmt.Errorf("invalid selection [%d] for a list of %d images", i, n)
		}
		out[k] = j
	}
	return out, nil
}

func filter(entries []entry, idx []int, keep bool) []entry {
	selected := make(map[int]bool, len(idx))
	for _, i := range idx {
		selected[i] = true
	}
	out := make([]entry, 0, len(entries))
	for i, en := range entries {
		if selected[i] == keep {
			out = append(out, en)
		}
	}
	return out
}

// newImage parses "W,H,D,S[,value]".
func newImage(spec string) (*pixel.Buffer, error) {
	parts := strings.Split(spec, ",")
	if len(parts) != 4 && len(parts) != 5 {
		return nil, fmt.Errorf("new expects W,H,D,S[,value], got '%s'", spec)
	}
	var dims [4]int
	for i := 0; i < 4; i++ {
		d, err := strconv.Atoi(parts[i])
		if err != nil {
			return nil, fmt.Errorf("new: invalid dimension '%s'", parts[i])
		}
		dims[i] = d
	}
	img, err := pixel.Zeros(dims[0], dims[1], dims[2], dims[3])
	if err != nil {
		return nil, err
	}
	if len(parts) == 5 {
		v, err := strconv.ParseFloat(parts[4], 32)
		if err != nil {
			return nil, fmt.Errorf("new: invalid value '%s'", parts[4])
		}
		values := make([]float32, img.Layout().ElementCount())
		for i := range values {
			values[i] = float32(v)
		}
		return pixel.FromFloats(values, dims[0], dims[1], dims[2], dims[3])
	}
	return img, nil
}
