package invoke

import (
	"github.com/ironsheep/pixel-marshal/internal/collection"
	"github.com/ironsheep/pixel-marshal/internal/marshalerr"
	"github.com/ironsheep/pixel-marshal/internal/pixel"
)

const acceptedImages = "*pixel.Buffer or a sequence of them (*[]*pixel.Buffer, *[]any, *collection.Collection)"

type imagesKind int

const (
	imagesNone imagesKind = iota
	imagesSingle
	imagesMany
)

// imagesArg is the resolved images argument. Exactly one target is set for
// imagesMany.
type imagesArg struct {
	kind   imagesKind
	single *pixel.Buffer
	inputs []*pixel.Buffer

	buffers *[]*pixel.Buffer
	values  *[]any
	coll    *collection.Collection
}

func resolveImages(op string, images any) (imagesArg, error) {
	switch v := images.(type) {
	case nil:
		return imagesArg{kind: imagesNone}, nil
	case *pixel.Buffer:
		if v == nil {
			return imagesArg{}, marshalerr.New(marshalerr.TypeMismatch, op, "images is a nil *pixel.Buffer")
		}
		return imagesArg{kind: imagesSingle, single: v, inputs: []*pixel.Buffer{v}}, nil
	case *[]*pixel.Buffer:
		if v == nil {
			return imagesArg{}, nilPointer(op, "images", images)
		}
		if err := checkBuffers(op, *v); err != nil {
			return imagesArg{}, err
		}
		return imagesArg{kind: imagesMany, inputs: *v, buffers: v}, nil
	case *[]any:
		if v == nil {
			return imagesArg{}, nilPointer(op, "images", images)
		}
		inputs := make([]*pixel.Buffer, len(*v))
		for i, e := range *v {
			b, ok := e.(*pixel.Buffer)
			if !ok || b == nil {
				return imagesArg{}, marshalerr.New(marshalerr.TypeMismatch, op,
					"images[%d] must be a *pixel.Buffer, got %T", i, e)
			}
			inputs[i] = b
		}
		return imagesArg{kind: imagesMany, inputs: inputs, values: v}, nil
	case *collection.Collection:
		if v == nil {
			return imagesArg{}, nilPointer(op, "images", images)
		}
		if err := checkBuffers(op, v.Images); err != nil {
			return imagesArg{}, err
		}
		return imagesArg{kind: imagesMany, inputs: v.Images, coll: v}, nil
	}
	return imagesArg{}, marshalerr.New(marshalerr.TypeMismatch, op,
		"images must be a %s, got %T", acceptedImages, images)
}

func checkBuffers(op string, bufs []*pixel.Buffer) error {
	for i, b := range bufs {
		if b == nil {
			return marshalerr.New(marshalerr.TypeMismatch, op, "images[%d] must be a *pixel.Buffer, got nil", i)
		}
	}
	return nil
}

// namesArg is the resolved names argument.
type namesArg struct {
	inputs []string

	strings *[]string
	values  *[]any
}

func resolveNames(op string, names any, images imagesArg) (namesArg, error) {
	if names == nil {
		if images.coll != nil {
			return namesArg{inputs: images.coll.Names}, nil
		}
		return namesArg{}, nil
	}

	if images.kind == imagesSingle {
		s, ok := names.(string)
		if ok {
			return namesArg{inputs: []string{s}}, nil
		}
		if isSequence(names) {
			return namesArg{}, marshalerr.New(marshalerr.TypeMismatch, op,
				"images is a single item but names is a sequence (%T)", names)
		}
		return namesArg{}, marshalerr.New(marshalerr.TypeMismatch, op,
			"names must be a string when images is a single item, got %T", names)
	}

	switch v := names.(type) {
	case string:
		if images.kind == imagesNone {
			return namesArg{inputs: []string{v}}, nil
		}
	case *[]string:
		if v == nil {
			return namesArg{}, nilPointer(op, "names", names)
		}
		return namesArg{inputs: *v, strings: v}, nil
	case *[]any:
		if v == nil {
			return namesArg{}, nilPointer(op, "names", names)
		}
		inputs := make([]string, len(*v))
		for i, e := range *v {
			s, ok := e.(string)
			if !ok {
				return namesArg{}, marshalerr.New(marshalerr.TypeMismatch, op,
					"names[%d] must be a string, got %T", i, e)
			}
			inputs[i] = s
		}
		return namesArg{inputs: inputs, values: v}, nil
	}

	return namesArg{}, marshalerr.New(marshalerr.TypeMismatch, op,
		"names must be a sequence of strings (*[]string or *[]any) when images is a sequence, got %T", names)
}

// isSequence reports whether v is one of the slice shapes a caller might
// pass as names.
func isSequence(v any) bool {
	switch v.(type) {
	case []string, *[]string, []any, *[]any, [][]byte:
		return true
	}
	return false
}

func nilPointer(op, arg string, v any) error {
	return marshalerr.New(marshalerr.TypeMismatch, op, "%s is a nil %T", arg, v)
}
